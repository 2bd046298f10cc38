// Package feed talks to the brokerage data feed: underlying and
// volatility-index quotes plus raw same-day option chains. Everything
// downstream of this package works on parsed snapshots and never
// touches the network.
package feed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/pintscoredd/zerodte/internal/config"
)

// Quote is one underlying or index quote from the feed.
type Quote struct {
	Symbol string  `json:"symbol"`
	Last   float64 `json:"last"`
	VWAP   float64 `json:"vwap"`
}

// ChainEntry is one raw option row as the feed reports it.
type ChainEntry struct {
	Symbol       string  `json:"symbol"`
	Bid          float64 `json:"bid"`
	Ask          float64 `json:"ask"`
	Last         float64 `json:"last"`
	IV           float64 `json:"iv"`
	Delta        float64 `json:"delta"`
	Gamma        float64 `json:"gamma"`
	Theta        float64 `json:"theta"`
	Vega         float64 `json:"vega"`
	OpenInterest int     `json:"open_interest"`
	Volume       int     `json:"volume"`
}

// ChainResponse is the raw chain for one ticker and expiry.
type ChainResponse struct {
	Ticker  string       `json:"ticker"`
	Expiry  string       `json:"expiry"`
	Entries []ChainEntry `json:"entries"`
}

// Client interface for testability
type Client interface {
	Quote(ctx context.Context, symbol string) (Quote, error)
	Chain(ctx context.Context, ticker, expiry string) (ChainResponse, error)
}

type HTTPClient struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	limiter    *rate.Limiter
	breaker    *gobreaker.CircuitBreaker
	retryCount int
	retryDelay time.Duration
	logger     *zap.Logger
}

func NewClient(cfg config.FeedConfig, logger *zap.Logger) *HTTPClient {
	transport := &http.Transport{
		MaxIdleConns:       100,
		MaxConnsPerHost:    10,
		IdleConnTimeout:    90 * time.Second,
		DisableCompression: false,
	}

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "feed",
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		// A 404 is a valid answer, not a feed outage.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, ErrNotFound)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("feed circuit breaker state change",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
	})

	rps := cfg.RatePerSecond
	if rps < 1 {
		rps = 1
	}

	return &HTTPClient{
		httpClient: &http.Client{
			Transport: transport,
			Timeout:   time.Duration(cfg.TimeoutSec) * time.Second,
		},
		baseURL:    cfg.BaseURL,
		apiKey:     cfg.APIKey,
		limiter:    rate.NewLimiter(rate.Limit(rps), rps*2),
		breaker:    breaker,
		retryCount: cfg.RetryCount,
		retryDelay: time.Duration(cfg.RetryDelay) * time.Second,
		logger:     logger,
	}
}

func (c *HTTPClient) Quote(ctx context.Context, symbol string) (Quote, error) {
	body, err := c.get(ctx, fmt.Sprintf("%s/v1/quotes/%s", c.baseURL, symbol))
	if err != nil {
		return Quote{}, err
	}

	var q Quote
	if err := json.Unmarshal(body, &q); err != nil {
		return Quote{}, fmt.Errorf("decoding quote: %w", err)
	}
	return q, nil
}

func (c *HTTPClient) Chain(ctx context.Context, ticker, expiry string) (ChainResponse, error) {
	body, err := c.get(ctx, fmt.Sprintf("%s/v1/chains/%s?expiry=%s", c.baseURL, ticker, expiry))
	if err != nil {
		return ChainResponse{}, err
	}

	var cr ChainResponse
	if err := json.Unmarshal(body, &cr); err != nil {
		return ChainResponse{}, fmt.Errorf("decoding chain: %w", err)
	}
	return cr, nil
}

// get runs one rate-limited, breaker-guarded, retried GET.
func (c *HTTPClient) get(ctx context.Context, url string) ([]byte, error) {
	// Wait for rate limiter
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	out, err := c.breaker.Execute(func() (interface{}, error) {
		return c.getWithRetry(ctx, url)
	})
	if err != nil {
		return nil, err
	}
	return out.([]byte), nil
}

func (c *HTTPClient) getWithRetry(ctx context.Context, url string) ([]byte, error) {
	c.logger.Debug("requesting", zap.String("url", url))

	var lastErr error
	for attempt := 0; attempt <= c.retryCount; attempt++ {
		if attempt > 0 {
			delay := c.retryDelay * time.Duration(1<<(attempt-1)) // Exponential backoff
			c.logger.Debug("retrying request", zap.Int("attempt", attempt), zap.Duration("delay", delay))

			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(delay):
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, fmt.Errorf("creating request: %w", err)
		}

		req.Header.Set("Authorization", "Bearer "+c.apiKey)
		req.Header.Set("Accept", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = err
			continue
		}

		// Read body before closing for error messages
		body, readErr := io.ReadAll(resp.Body)
		_ = resp.Body.Close()

		if readErr != nil {
			lastErr = readErr
			continue
		}

		if resp.StatusCode == http.StatusNotFound {
			return nil, ErrNotFound
		}

		if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
			return nil, ErrAuthFailed
		}

		if resp.StatusCode == http.StatusTooManyRequests {
			lastErr = ErrRateLimited
			continue
		}

		if resp.StatusCode >= 500 {
			lastErr = fmt.Errorf("server error: %d", resp.StatusCode)
			continue
		}

		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(body))
		}

		return body, nil
	}

	return nil, fmt.Errorf("max retries exceeded: %w", lastErr)
}
