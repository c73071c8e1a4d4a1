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
	"github.com/tradepals/match-core/pkg/retry"
)

// ══════════════════════════════════════════════════════════════════════════════
// IN-APP NOTIFIER
// ══════════════════════════════════════════════════════════════════════════════

// NotifierConfig contains configuration for the in-app notification client.
type NotifierConfig struct {
	// BaseURL is the notification service base URL.
	BaseURL string

	// APIKey authenticates the core against the service.
	APIKey string

	// Timeout is the HTTP request timeout.
	Timeout time.Duration

	// Logger for structured logging.
	Logger *slog.Logger
}

// NotificationClient implements notification.Notifier against the platform
// notification service.
type NotificationClient struct {
	config     NotifierConfig
	httpClient *http.Client
	retrier    *retry.Retrier
	logger     *slog.Logger
}

// NewNotificationClient creates a new NotificationClient.
func NewNotificationClient(config NotifierConfig) *NotificationClient {
	if config.Logger == nil {
		config.Logger = slog.Default()
	}
	if config.Timeout <= 0 {
		config.Timeout = 10 * time.Second
	}

	return &NotificationClient{
		config:     config,
		httpClient: &http.Client{Timeout: config.Timeout},
		retrier:    retry.PushRetrier(),
		logger:     config.Logger,
	}
}

// Notify implements notification.Notifier.
func (c *NotificationClient) Notify(ctx context.Context, n notification.Notification) error {
	body := map[string]interface{}{
		"user_id": n.UserID.String(),
		"kind":    string(n.Kind),
		"title":   n.Title,
		"message": n.Message,
	}
	if len(n.Data) > 0 {
		body["data"] = n.Data
	}

	err := c.retrier.Do(ctx, func(ctx context.Context) error {
		return c.post(ctx, "/v1/notifications", body)
	})
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrNotificationFailed, err)
	}
	return nil
}

func (c *NotificationClient) post(ctx context.Context, path string, body interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return retry.Permanent(fmt.Errorf("marshal notification: %w", err))
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
		return retry.Retryable(fmt.Errorf("notification service returned %d", resp.StatusCode))
	default:
		return retry.Permanent(fmt.Errorf("notification service returned %d", resp.StatusCode))
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// LOGGING NOTIFIER
// ══════════════════════════════════════════════════════════════════════════════

// LogNotifier implements notification.Notifier by logging only. Used in
// development when no notification service is configured.
type LogNotifier struct {
	logger *slog.Logger
}

// NewLogNotifier creates a new LogNotifier.
func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogNotifier{logger: logger}
}

// Notify implements notification.Notifier.
func (n *LogNotifier) Notify(_ context.Context, notif notification.Notification) error {
	n.logger.Info("notification",
		"user_id", notif.UserID.String(),
		"kind", string(notif.Kind),
		"title", notif.Title,
	)
	return nil
}

// LogPushSender implements notification.PushSender by logging only.
type LogPushSender struct {
	logger *slog.Logger
}

// NewLogPushSender creates a new LogPushSender.
func NewLogPushSender(logger *slog.Logger) *LogPushSender {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogPushSender{logger: logger}
}

// Push implements notification.PushSender.
func (p *LogPushSender) Push(_ context.Context, notif notification.Notification) error {
	p.logger.Info("push",
		"user_id", notif.UserID.String(),
		"kind", string(notif.Kind),
		"title", notif.Title,
	)
	return nil
}
