package repository

import (
	"context"
	"time"

	"github.com/santechrwanda/broker-sub002/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// CommissionRow is one teller's aggregate over a reporting period.
type CommissionRow struct {
	TellerID   uuid.UUID       `gorm:"column:teller_id"`
	TellerName string          `gorm:"column:teller_name"`
	Trades     int64           `gorm:"column:trades"`
	Gross      decimal.Decimal `gorm:"column:gross"`
	Commission decimal.Decimal `gorm:"column:commission"`
}

// TradeQuery narrows listings; zero values mean unbounded.
type TradeQuery struct {
	Symbol string
	From   time.Time
	To     time.Time
}

type TradeRepository interface {
	Create(ctx context.Context, t *model.Trade) error
	List(ctx context.Context, q TradeQuery) ([]model.Trade, error)
	ListByTeller(ctx context.Context, tellerID uuid.UUID, q TradeQuery) ([]model.Trade, error)
	SummarizeCommissions(ctx context.Context, from, to time.Time) ([]CommissionRow, error)
}

type tradeRepo struct{ db *gorm.DB }

func NewTradeRepository(db *gorm.DB) TradeRepository { return &tradeRepo{db: db} }

func (r *tradeRepo) Create(ctx context.Context, t *model.Trade) error {
	return translate(r.db.WithContext(ctx).Create(t).Error)
}

func (r *tradeRepo) List(ctx context.Context, q TradeQuery) ([]model.Trade, error) {
	var trades []model.Trade
	err := r.scoped(ctx, q).Order("created_at DESC").Find(&trades).Error
	return trades, translate(err)
}

func (r *tradeRepo) ListByTeller(ctx context.Context, tellerID uuid.UUID, q TradeQuery) ([]model.Trade, error) {
	var trades []model.Trade
	err := r.scoped(ctx, q).Where("teller_id = ?", tellerID).Order("created_at DESC").Find(&trades).Error
	return trades, translate(err)
}

// SummarizeCommissions aggregates gross and commission per teller over
// [from, to). Drives the commission report worker.
func (r *tradeRepo) SummarizeCommissions(ctx context.Context, from, to time.Time) ([]CommissionRow, error) {
	var rows []CommissionRow
	err := r.db.WithContext(ctx).
		Table("trades").
		Select(`trades.teller_id AS teller_id,
			users.name AS teller_name,
			COUNT(*) AS trades,
			COALESCE(SUM(trades.gross), 0) AS gross,
			COALESCE(SUM(trades.commission), 0) AS commission`).
		Joins("JOIN users ON users.id = trades.teller_id").
		Where("trades.created_at >= ? AND trades.created_at < ?", from, to).
		Group("trades.teller_id, users.name").
		Order("commission DESC").
		Scan(&rows).Error
	return rows, translate(err)
}

func (r *tradeRepo) scoped(ctx context.Context, q TradeQuery) *gorm.DB {
	db := r.db.WithContext(ctx).Model(&model.Trade{})
	if q.Symbol != "" {
		db = db.Where("symbol = ?", q.Symbol)
	}
	if !q.From.IsZero() {
		db = db.Where("created_at >= ?", q.From)
	}
	if !q.To.IsZero() {
		db = db.Where("created_at < ?", q.To)
	}
	return db
}
