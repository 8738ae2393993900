package repository

import (
	"context"

	"github.com/santechrwanda/broker-sub002/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type SecurityRepository interface {
	Upsert(ctx context.Context, s *model.Security) error
	FindBySymbol(ctx context.Context, symbol string) (*model.Security, error)
	List(ctx context.Context) ([]model.Security, error)
}

type securityRepo struct{ db *gorm.DB }

func NewSecurityRepository(db *gorm.DB) SecurityRepository { return &securityRepo{db: db} }

// Upsert inserts or refreshes a quote keyed by symbol. The feed cron calls
// this for every snapshot row.
func (r *securityRepo) Upsert(ctx context.Context, s *model.Security) error {
	return translate(r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "symbol"}},
		DoUpdates: clause.AssignmentColumns([]string{"name", "price", "change", "volume", "updated_at"}),
	}).Create(s).Error)
}

func (r *securityRepo) FindBySymbol(ctx context.Context, symbol string) (*model.Security, error) {
	var s model.Security
	err := r.db.WithContext(ctx).Where("symbol = ?", symbol).First(&s).Error
	if err != nil {
		return nil, translate(err)
	}
	return &s, nil
}

func (r *securityRepo) List(ctx context.Context) ([]model.Security, error) {
	var securities []model.Security
	err := r.db.WithContext(ctx).Order("symbol").Find(&securities).Error
	return securities, translate(err)
}
