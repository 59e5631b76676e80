// Package markets serves the cosmetic market-data widget: a handful of
// coin quotes and USD exchange rates, refreshed on a slow timer. Stale or
// fallback data is acceptable; nothing here carries a correctness
// requirement.
package markets

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

const (
	defaultCoinsURL = "https://api.coingecko.com/api/v3/coins/markets?vs_currency=usd&order=market_cap_desc&per_page=5&page=1&sparkline=false"
	defaultRatesURL = "https://api.exchangerate-api.com/v4/latest/USD"

	// DefaultRefreshInterval matches the widget's multi-minute cadence.
	DefaultRefreshInterval = 5 * time.Minute
)

// fallbackRates is served when the exchange-rate fetch fails.
var fallbackRates = map[string]float64{
	"EUR": 0.85,
	"GBP": 0.73,
	"JPY": 110,
	"MXN": 20.5,
	"CAD": 1.25,
}

type Coin struct {
	ID             string  `json:"id"`
	Name           string  `json:"name"`
	Symbol         string  `json:"symbol"`
	CurrentPrice   float64 `json:"current_price"`
	PriceChange24h float64 `json:"price_change_percentage_24h"`
}

type Snapshot struct {
	Coins     []Coin             `json:"coins"`
	Rates     map[string]float64 `json:"rates"`
	UpdatedAt time.Time          `json:"updated_at"`
}

type Service struct {
	client   *http.Client
	coinsURL string
	ratesURL string

	mu       sync.RWMutex
	snapshot Snapshot
}

// Option configures a Service.
type Option func(*Service)

// WithEndpoints overrides the quote endpoints. Used by tests.
func WithEndpoints(coinsURL, ratesURL string) Option {
	return func(s *Service) {
		s.coinsURL = coinsURL
		s.ratesURL = ratesURL
	}
}

// WithClient overrides the HTTP client.
func WithClient(client *http.Client) Option {
	return func(s *Service) {
		s.client = client
	}
}

func NewService(opts ...Option) *Service {
	s := &Service{
		client:   &http.Client{Timeout: 10 * time.Second},
		coinsURL: defaultCoinsURL,
		ratesURL: defaultRatesURL,
		snapshot: Snapshot{Rates: fallbackRates},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Snapshot returns the most recently fetched market data. Before the
// first successful refresh it holds only the fallback rates.
func (s *Service) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot
}

// Refresh fetches coins and rates concurrently and swaps the snapshot.
// A failed rates fetch falls back to the static table; a failed coins
// fetch keeps the previous coins.
func (s *Service) Refresh(ctx context.Context) error {
	var (
		coins []Coin
		rates map[string]float64
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		coins, err = s.fetchCoins(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		rates, err = s.fetchRates(gctx)
		if err != nil {
			slog.WarnContext(gctx, "Exchange rates unavailable, using fallback", "error", err)
			rates = fallbackRates
			return nil
		}
		return nil
	})

	err := g.Wait()

	s.mu.Lock()
	defer s.mu.Unlock()
	if coins != nil {
		s.snapshot.Coins = coins
	}
	s.snapshot.Rates = rates
	s.snapshot.UpdatedAt = time.Now().UTC()

	return err
}

// Run refreshes immediately and then on every tick until ctx is done.
func (s *Service) Run(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		interval = DefaultRefreshInterval
	}

	if err := s.Refresh(ctx); err != nil {
		slog.WarnContext(ctx, "Initial market data refresh failed", "error", err)
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := s.Refresh(ctx); err != nil {
				slog.WarnContext(ctx, "Market data refresh failed", "error", err)
			}
		}
	}
}

func (s *Service) fetchCoins(ctx context.Context) ([]Coin, error) {
	var coins []Coin
	if err := s.getJSON(ctx, s.coinsURL, &coins); err != nil {
		return nil, fmt.Errorf("fetch coins: %w", err)
	}
	return coins, nil
}

func (s *Service) fetchRates(ctx context.Context) (map[string]float64, error) {
	var payload struct {
		Rates map[string]float64 `json:"rates"`
	}
	if err := s.getJSON(ctx, s.ratesURL, &payload); err != nil {
		return nil, fmt.Errorf("fetch rates: %w", err)
	}
	return payload.Rates, nil
}

func (s *Service) getJSON(ctx context.Context, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	return json.NewDecoder(resp.Body).Decode(out)
}
