// Package service contains adapters to the platform services the matchmaking
// core depends on: the push gateway, the in-app notification service, and ID
// generation. External calls go through a retrier and a circuit breaker so a
// degraded service never stalls matching.
package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/tradepals/match-core/internal/domain/notification"
	"github.com/tradepals/match-core/internal/domain/shared"
	"github.com/tradepals/match-core/pkg/circuitbreaker"
	"github.com/tradepals/match-core/pkg/retry"
)

// ══════════════════════════════════════════════════════════════════════════════
// PUSH GATEWAY CLIENT
// ══════════════════════════════════════════════════════════════════════════════

// PushConfig contains configuration for the push gateway client.
type PushConfig struct {
	// BaseURL is the push gateway base URL.
	BaseURL string

	// APIKey authenticates the core against the gateway.
	APIKey string

	// Timeout is the HTTP request timeout.
	Timeout time.Duration

	// Logger for structured logging.
	Logger *slog.Logger
}

// DefaultPushConfig returns sensible defaults.
func DefaultPushConfig(baseURL, apiKey string) PushConfig {
	return PushConfig{
		BaseURL: baseURL,
		APIKey:  apiKey,
		Timeout: 10 * time.Second,
	}
}

// PushGatewayClient implements notification.PushSender against the platform
// push gateway.
type PushGatewayClient struct {
	config     PushConfig
	httpClient *http.Client
	retrier    *retry.Retrier
	breaker    *circuitbreaker.CircuitBreaker
	logger     *slog.Logger
}

// NewPushGatewayClient creates a new PushGatewayClient.
func NewPushGatewayClient(config PushConfig) *PushGatewayClient {
	if config.Logger == nil {
		config.Logger = slog.Default()
	}
	if config.Timeout <= 0 {
		config.Timeout = 10 * time.Second
	}

	logger := config.Logger
	breaker := circuitbreaker.PushGatewayBreaker(func(name string, from, to circuitbreaker.State) {
		logger.Warn("circuit state changed", "breaker", name, "from", from.String(), "to", to.String())
	})

	return &PushGatewayClient{
		config:     config,
		httpClient: &http.Client{Timeout: config.Timeout},
		retrier:    retry.PushRetrier(),
		breaker:    breaker,
		logger:     logger,
	}
}

type pushRequest struct {
	UserID  string            `json:"user_id"`
	Kind    string            `json:"kind"`
	Title   string            `json:"title"`
	Message string            `json:"message"`
	Data    map[string]string `json:"data,omitempty"`
}

// Push implements notification.PushSender.
func (c *PushGatewayClient) Push(ctx context.Context, n notification.Notification) error {
	body := pushRequest{
		UserID:  n.UserID.String(),
		Kind:    string(n.Kind),
		Title:   n.Title,
		Message: n.Message,
		Data:    n.Data,
	}

	err := c.breaker.Execute(ctx, func(ctx context.Context) error {
		return c.retrier.Do(ctx, func(ctx context.Context) error {
			return c.send(ctx, "/v1/push", body)
		})
	})
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrPushFailed, err)
	}
	return nil
}

// send performs one POST to the gateway. 5xx responses are retryable, 4xx
// responses are permanent.
func (c *PushGatewayClient) send(ctx context.Context, path string, body interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return retry.Permanent(fmt.Errorf("marshal push payload: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.BaseURL+path, bytes.NewReader(payload))
	if err != nil {
		return retry.Permanent(fmt.Errorf("create request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.config.APIKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return retry.Retryable(fmt.Errorf("http request: %w", err))
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return nil
	case resp.StatusCode >= 500:
		return retry.Retryable(fmt.Errorf("gateway returned %d", resp.StatusCode))
	default:
		return retry.Permanent(fmt.Errorf("gateway returned %d", resp.StatusCode))
	}
}
