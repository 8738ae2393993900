package infra

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/shopspring/decimal"
)

// FeedQuote is one row of the upstream market-data snapshot.
type FeedQuote struct {
	Symbol string          `json:"symbol"`
	Name   string          `json:"name"`
	Price  decimal.Decimal `json:"price"`
	Change decimal.Decimal `json:"change"`
	Volume int64           `json:"volume"`
}

// FeedClient is an HTTP client for the external market-data feed. All calls
// go through the circuit breaker owned by the market service, so a downed
// feed degrades the board to last-stored quotes instead of cascading.
type FeedClient struct {
	baseURL    string
	httpClient *http.Client
}

func NewFeedClient(baseURL string) *FeedClient {
	return &FeedClient{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
}

// GetSnapshot fetches the full quote board from the feed.
func (c *FeedClient) GetSnapshot(ctx context.Context) ([]FeedQuote, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/quotes", nil)
	if err != nil {
		return nil, fmt.Errorf("feed: create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("feed: unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("feed: returned %d", resp.StatusCode)
	}

	var quotes []FeedQuote
	if err := json.NewDecoder(resp.Body).Decode(&quotes); err != nil {
		return nil, fmt.Errorf("feed: decode snapshot: %w", err)
	}
	return quotes, nil
}
