// Package market fetches trading-pool snapshots for campaign tokens from
// the market-data service. Enrichment is best-effort: failures degrade to
// an empty result and never block funding-percentage computation.
package market

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"curvefund/internal/domain"
)

// DefaultTimeout bounds one pools request.
const DefaultTimeout = 10 * time.Second

// Client queries the pools endpoint of a market-data service.
type Client struct {
	baseURL string
	client  *http.Client
	logger  *log.Logger
}

// Option configures Client.
type Option func(*Client)

// WithHTTPClient sets a custom http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.client = hc
	}
}

// WithTimeout sets the request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.client.Timeout = d
	}
}

// NewClient creates a market-data client for the given base URL
// (e.g. https://datapi.jup.ag).
func NewClient(baseURL string, logger *log.Logger, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: DefaultTimeout},
		logger:  logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// poolsResponse mirrors the wire shape of the pools endpoint. Only the
// fields the reconciler consumes are decoded.
type poolsResponse struct {
	Pools []pool `json:"pools"`
}

type pool struct {
	ID           string      `json:"id"`
	Liquidity    float64     `json:"liquidity"`
	Volume24h    float64     `json:"volume24h"`
	BondingCurve interface{} `json:"bondingCurve"` // number, or string when graduated
	BaseAsset    baseAsset   `json:"baseAsset"`
}

type baseAsset struct {
	ID            string   `json:"id"`
	Mcap          float64  `json:"mcap"`
	GraduatedPool string   `json:"graduatedPool"`
	Stats24h      *stats24 `json:"stats24h"`
}

type stats24 struct {
	NumBuys     int64   `json:"numBuys"`
	NumSells    int64   `json:"numSells"`
	PriceChange float64 `json:"priceChange"`
	BuyVolume   float64 `json:"buyVolume"`
}

// FetchBatch fetches snapshots for all mints in one round trip. Mints with
// no tracked pool are absent from the result. Transport and decode failures
// yield an empty map and a warning, never an error: market data must not
// block reconciliation.
func (c *Client) FetchBatch(ctx context.Context, mints []string) map[string]domain.MarketSnapshot {
	result := make(map[string]domain.MarketSnapshot)
	if len(mints) == 0 {
		return result
	}

	escaped := make([]string, len(mints))
	for i, mint := range mints {
		escaped[i] = url.QueryEscape(mint)
	}
	reqURL := fmt.Sprintf("%s/v1/pools?assetIds=%s", c.baseURL, strings.Join(escaped, ","))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		c.logger.Printf("market: build request: %v", err)
		return result
	}

	resp, err := c.client.Do(req)
	if err != nil {
		c.logger.Printf("market: pools request failed: %v", err)
		return result
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.logger.Printf("market: pools returned status %d", resp.StatusCode)
		return result
	}

	var body poolsResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		c.logger.Printf("market: decode pools response: %v", err)
		return result
	}

	for _, p := range body.Pools {
		mint := p.BaseAsset.ID
		if mint == "" {
			// Older responses key pools by the asset id directly.
			mint = p.ID
		}
		if mint == "" {
			continue
		}
		result[mint] = toSnapshot(p)
	}

	return result
}

// FetchOne fetches the snapshot for a single mint. The second return
// value reports whether a snapshot was found.
func (c *Client) FetchOne(ctx context.Context, mint string) (domain.MarketSnapshot, bool) {
	snapshots := c.FetchBatch(ctx, []string{mint})
	s, ok := snapshots[mint]
	return s, ok
}

// toSnapshot maps a wire pool into the domain snapshot.
func toSnapshot(p pool) domain.MarketSnapshot {
	s := domain.MarketSnapshot{
		PoolID:        p.ID,
		Volume24h:     p.Volume24h,
		Liquidity:     p.Liquidity,
		MarketCap:     p.BaseAsset.Mcap,
		GraduatedPool: p.BaseAsset.GraduatedPool,
	}

	// A numeric bondingCurve is in-progress completion; a string (or
	// absence) means the pool has graduated and tracking stopped.
	if bc, ok := p.BondingCurve.(float64); ok {
		s.BondingCurve = &bc
	}

	if st := p.BaseAsset.Stats24h; st != nil {
		s.Buys24h = st.NumBuys
		s.Sells24h = st.NumSells
		s.PriceChange = st.PriceChange
		if s.Volume24h == 0 {
			s.Volume24h = st.BuyVolume
		}
	}

	return s
}
