package service

import (
	"context"
	"time"

	"github.com/santechrwanda/broker-sub002/internal/dto"
	"github.com/santechrwanda/broker-sub002/internal/model"
	"github.com/santechrwanda/broker-sub002/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TradeService records counter operations and lists them for reporting.
type TradeService interface {
	Record(ctx context.Context, tellerID uuid.UUID, req dto.RecordTradeRequest) (*dto.TradeResponse, error)
	List(ctx context.Context, filter dto.TradeFilter) ([]dto.TradeResponse, error)
	ListByTeller(ctx context.Context, tellerID uuid.UUID, filter dto.TradeFilter) ([]dto.TradeResponse, error)
}

type tradeService struct {
	repo repository.TradeRepository
	rate decimal.Decimal
}

// NewTradeService parses the commission rate once; a malformed rate falls
// back to 2%.
func NewTradeService(repo repository.TradeRepository, commissionRate string) TradeService {
	rate, err := decimal.NewFromString(commissionRate)
	if err != nil || rate.IsNegative() {
		rate = decimal.NewFromFloat(0.02)
	}
	return &tradeService{repo: repo, rate: rate}
}

// Record computes gross = price × quantity and freezes the commission at the
// current configured rate.
func (s *tradeService) Record(ctx context.Context, tellerID uuid.UUID, req dto.RecordTradeRequest) (*dto.TradeResponse, error) {
	gross := req.Price.Mul(decimal.NewFromInt(req.Quantity))
	trade := &model.Trade{
		Symbol:     req.Symbol,
		Side:       req.Side,
		Quantity:   req.Quantity,
		Price:      req.Price,
		Gross:      gross,
		Commission: gross.Mul(s.rate).Round(4),
		Customer:   req.Customer,
		TellerID:   tellerID,
	}
	if err := s.repo.Create(ctx, trade); err != nil {
		return nil, err
	}
	resp := toTradeResponse(trade)
	return &resp, nil
}

func (s *tradeService) List(ctx context.Context, filter dto.TradeFilter) ([]dto.TradeResponse, error) {
	trades, err := s.repo.List(ctx, toTradeQuery(filter))
	if err != nil {
		return nil, err
	}
	return toTradeResponses(trades), nil
}

func (s *tradeService) ListByTeller(ctx context.Context, tellerID uuid.UUID, filter dto.TradeFilter) ([]dto.TradeResponse, error) {
	trades, err := s.repo.ListByTeller(ctx, tellerID, toTradeQuery(filter))
	if err != nil {
		return nil, err
	}
	return toTradeResponses(trades), nil
}

func toTradeQuery(filter dto.TradeFilter) repository.TradeQuery {
	q := repository.TradeQuery{Symbol: filter.Symbol}
	if t, err := time.Parse(time.RFC3339, filter.From); err == nil {
		q.From = t
	}
	if t, err := time.Parse(time.RFC3339, filter.To); err == nil {
		q.To = t
	}
	return q
}

func toTradeResponses(trades []model.Trade) []dto.TradeResponse {
	resp := make([]dto.TradeResponse, len(trades))
	for i := range trades {
		resp[i] = toTradeResponse(&trades[i])
	}
	return resp
}

func toTradeResponse(t *model.Trade) dto.TradeResponse {
	return dto.TradeResponse{
		ID:         t.ID.String(),
		Symbol:     t.Symbol,
		Side:       t.Side,
		Quantity:   t.Quantity,
		Price:      t.Price,
		Gross:      t.Gross,
		Commission: t.Commission,
		Customer:   t.Customer,
		TellerID:   t.TellerID.String(),
		CreatedAt:  t.CreatedAt.Format(time.RFC3339),
	}
}
