package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/santechrwanda/broker-sub002/internal/dto"
	"github.com/santechrwanda/broker-sub002/internal/infra"
	"github.com/santechrwanda/broker-sub002/internal/model"
	"github.com/santechrwanda/broker-sub002/internal/repository"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// ErrSecurityNotFound is returned for unknown symbols.
var ErrSecurityNotFound = errors.New("security not found")

const (
	quoteCachePrefix = "market:quote:"
	quoteCacheTTL    = 30 * time.Second
)

// MarketService serves the market board. Quotes are refreshed from the
// upstream feed through the circuit breaker and cached briefly in Redis.
// Only quotes are cached — the user directory is never read through a cache.
type MarketService interface {
	List(ctx context.Context) ([]dto.SecurityResponse, error)
	GetBySymbol(ctx context.Context, symbol string) (*dto.SecurityResponse, error)
	Upsert(ctx context.Context, req dto.UpsertSecurityRequest) (*dto.SecurityResponse, error)
	Refresh(ctx context.Context) (int, error)
	FeedState() string
}

type marketService struct {
	repo repository.SecurityRepository
	rdb  *redis.Client
	feed *infra.FeedClient
	cb   *infra.CircuitBreaker
}

func NewMarketService(repo repository.SecurityRepository, rdb *redis.Client, feed *infra.FeedClient, cb *infra.CircuitBreaker) MarketService {
	return &marketService{repo: repo, rdb: rdb, feed: feed, cb: cb}
}

func (s *marketService) List(ctx context.Context) ([]dto.SecurityResponse, error) {
	securities, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	resp := make([]dto.SecurityResponse, len(securities))
	for i := range securities {
		resp[i] = toSecurityResponse(&securities[i])
	}
	return resp, nil
}

// GetBySymbol serves from the Redis snapshot when fresh, falling back to
// Postgres. A cache failure is logged and ignored — Redis being down must
// not take the market board with it.
func (s *marketService) GetBySymbol(ctx context.Context, symbol string) (*dto.SecurityResponse, error) {
	if s.rdb != nil {
		if cached, err := s.rdb.Get(ctx, quoteCachePrefix+symbol).Bytes(); err == nil {
			var resp dto.SecurityResponse
			if json.Unmarshal(cached, &resp) == nil {
				return &resp, nil
			}
		}
	}

	sec, err := s.repo.FindBySymbol(ctx, symbol)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrSecurityNotFound
		}
		return nil, err
	}
	resp := toSecurityResponse(sec)
	s.cacheQuote(ctx, &resp)
	return &resp, nil
}

// Upsert lets admins/managers list a security manually (e.g. a new issue not
// yet carried by the feed).
func (s *marketService) Upsert(ctx context.Context, req dto.UpsertSecurityRequest) (*dto.SecurityResponse, error) {
	sec := &model.Security{
		Symbol:    req.Symbol,
		Name:      req.Name,
		Price:     req.Price,
		UpdatedAt: time.Now(),
	}
	if err := s.repo.Upsert(ctx, sec); err != nil {
		return nil, err
	}
	resp := toSecurityResponse(sec)
	s.cacheQuote(ctx, &resp)
	return &resp, nil
}

// Refresh pulls a snapshot from the upstream feed through the circuit breaker
// and upserts every row. Returns the number of refreshed quotes. When the
// breaker is open the call fast-fails with infra.ErrCircuitOpen.
func (s *marketService) Refresh(ctx context.Context) (int, error) {
	var quotes []infra.FeedQuote
	err := s.cb.Execute(func() error {
		snapshot, err := s.feed.GetSnapshot(ctx)
		if err != nil {
			return err
		}
		quotes = snapshot
		return nil
	})
	if err != nil {
		return 0, err
	}

	now := time.Now()
	refreshed := 0
	for _, q := range quotes {
		sec := &model.Security{
			Symbol:    q.Symbol,
			Name:      q.Name,
			Price:     q.Price,
			Change:    q.Change,
			Volume:    q.Volume,
			UpdatedAt: now,
		}
		if err := s.repo.Upsert(ctx, sec); err != nil {
			log.Error().Err(err).Str("symbol", q.Symbol).Msg("market: quote upsert failed")
			continue
		}
		resp := toSecurityResponse(sec)
		s.cacheQuote(ctx, &resp)
		refreshed++
	}
	return refreshed, nil
}

// FeedState reports the circuit breaker state for the health endpoint.
func (s *marketService) FeedState() string { return s.cb.State().String() }

func (s *marketService) cacheQuote(ctx context.Context, resp *dto.SecurityResponse) {
	if s.rdb == nil {
		return
	}
	data, err := json.Marshal(resp)
	if err != nil {
		return
	}
	if err := s.rdb.Set(ctx, quoteCachePrefix+resp.Symbol, data, quoteCacheTTL).Err(); err != nil {
		log.Debug().Err(err).Str("symbol", resp.Symbol).Msg("market: quote cache write failed")
	}
}

func toSecurityResponse(sec *model.Security) dto.SecurityResponse {
	return dto.SecurityResponse{
		Symbol:    sec.Symbol,
		Name:      sec.Name,
		Price:     sec.Price,
		Change:    sec.Change,
		Volume:    sec.Volume,
		UpdatedAt: sec.UpdatedAt.Format(time.RFC3339),
	}
}
