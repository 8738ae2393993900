package repository

import (
	"context"

	"github.com/santechrwanda/broker-sub002/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ReportRepository interface {
	Create(ctx context.Context, rep *model.Report) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Report, error)
	List(ctx context.Context) ([]model.Report, error)
	Update(ctx context.Context, rep *model.Report) error
}

type reportRepo struct{ db *gorm.DB }

func NewReportRepository(db *gorm.DB) ReportRepository { return &reportRepo{db: db} }

func (r *reportRepo) Create(ctx context.Context, rep *model.Report) error {
	return translate(r.db.WithContext(ctx).Create(rep).Error)
}

func (r *reportRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Report, error) {
	var rep model.Report
	err := r.db.WithContext(ctx).First(&rep, "id = ?", id).Error
	if err != nil {
		return nil, translate(err)
	}
	return &rep, nil
}

func (r *reportRepo) List(ctx context.Context) ([]model.Report, error) {
	var reports []model.Report
	err := r.db.WithContext(ctx).Order("created_at DESC").Find(&reports).Error
	return reports, translate(err)
}

func (r *reportRepo) Update(ctx context.Context, rep *model.Report) error {
	return translate(r.db.WithContext(ctx).Save(rep).Error)
}
