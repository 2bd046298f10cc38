package notify

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/pintscoredd/zerodte/internal/engine"
	"github.com/pintscoredd/zerodte/internal/score"
)

// Notifier is the interface for pushing analysis results.
type Notifier interface {
	SendRecommendation(ctx context.Context, ticker string, rec engine.Recommendation) error
	SendFailure(ctx context.Context, ticker string, err error) error
}

// Client implements the ntfy notification client.
type Client struct {
	httpClient *http.Client
	config     *Config
	logger     *zap.Logger
}

// NewClient creates a new ntfy client.
func NewClient(cfg *Config, logger *zap.Logger) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		config: cfg,
		logger: logger,
	}
}

// SendRecommendation pushes an actionable trade idea.
func (c *Client) SendRecommendation(ctx context.Context, ticker string, rec engine.Recommendation) error {
	if !c.config.Enabled {
		return nil
	}

	title := fmt.Sprintf("%s: %s", ticker, rec.Headline)
	message := FormatRecommendation(rec)

	tag := "chart_with_upwards_trend"
	if rec.Bias == score.Bearish {
		tag = "chart_with_downwards_trend"
	}
	tags := c.config.Tags + "," + tag

	priority := c.config.Priority
	if rec.Confidence == engine.High {
		priority = "high"
	}

	return c.send(ctx, title, message, tags, priority)
}

// SendFailure reports a ticker whose analysis could not complete.
func (c *Client) SendFailure(ctx context.Context, ticker string, err error) error {
	if !c.config.Enabled {
		return nil
	}

	title := fmt.Sprintf("Analysis Failed: %s", ticker)
	message := FormatFailureMessage(ticker, err)
	tags := c.config.Tags + ",x"
	priority := "high" // Override to high priority for failures

	return c.send(ctx, title, message, tags, priority)
}

func (c *Client) send(ctx context.Context, title, message, tags, priority string) error {
	url := fmt.Sprintf("%s/%s", strings.TrimSuffix(c.config.Server, "/"), c.config.Topic)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, strings.NewReader(message))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set("Title", title)
	req.Header.Set("Priority", priority)
	req.Header.Set("Tags", tags)

	if c.config.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.config.Token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("failed to send notification", zap.Error(err))
		return fmt.Errorf("sending notification: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	// Drain response body to allow connection reuse
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.Warn("notification failed",
			zap.Int("status", resp.StatusCode),
			zap.String("url", url),
		)
		return fmt.Errorf("notification failed with status: %d", resp.StatusCode)
	}

	c.logger.Debug("notification sent", zap.String("title", title))
	return nil
}

// NoopNotifier is a no-op implementation for when notifications are disabled.
type NoopNotifier struct{}

// SendRecommendation is a no-op.
func (n *NoopNotifier) SendRecommendation(_ context.Context, _ string, _ engine.Recommendation) error {
	return nil
}

// SendFailure is a no-op.
func (n *NoopNotifier) SendFailure(_ context.Context, _ string, _ error) error {
	return nil
}

// New creates the appropriate notifier based on config.
func New(cfg *Config, logger *zap.Logger) Notifier {
	if !cfg.Enabled {
		return &NoopNotifier{}
	}
	return NewClient(cfg, logger)
}
