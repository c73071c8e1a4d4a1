package eventhandler

import (
	"context"
	"log/slog"
	"strings"

	"github.com/tradepals/match-core/internal/domain/filter"
	"github.com/tradepals/match-core/internal/domain/notification"
	"github.com/tradepals/match-core/internal/domain/shared"
)

// ═══════════════════════════════════════════════════════════════════════════
// ON FILTER REVIEWED HANDLER
// Tells the user what happened to their filter change request: queued,
// auto-approved, approved, or rejected with the reason.
// ═══════════════════════════════════════════════════════════════════════════

// OnFilterReviewedHandler reacts to filter workflow events.
type OnFilterReviewedHandler struct {
	notifier notification.Notifier
	push     notification.PushSender
	logger   *slog.Logger
}

// NewOnFilterReviewedHandler creates a new OnFilterReviewedHandler.
func NewOnFilterReviewedHandler(
	notifier notification.Notifier,
	push notification.PushSender,
	logger *slog.Logger,
) *OnFilterReviewedHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &OnFilterReviewedHandler{
		notifier: notifier,
		push:     push,
		logger:   logger.With("handler", "on_filter_reviewed"),
	}
}

// Handle implements shared.EventHandler.
func (h *OnFilterReviewedHandler) Handle(event shared.Event) error {
	ctx := context.Background()

	e, ok := event.(shared.FilterReviewedEvent)
	if !ok {
		h.logger.Warn("received unexpected event", "event_type", event.EventType())
		return nil
	}

	n := notification.Notification{
		UserID: shared.UserID(e.UserID),
		Data:   map[string]string{"requestId": e.RequestID, "status": e.Status},
	}

	switch event.EventType() {
	case shared.EventFilterSubmitted:
		n.Kind = notification.KindFilterPending
		n.Title = "Filter change received"
		n.Message = "Your match filter change is queued for review."
	case shared.EventFilterAutoApproved, shared.EventFilterApproved:
		n.Kind = notification.KindFilterApproved
		n.Title = "Filter change approved"
		n.Message = "Your match filters were updated: " + strings.Join(e.Filters, ", ")
	case shared.EventFilterRejected:
		n.Kind = notification.KindFilterRejected
		n.Title = "Filter change rejected"
		n.Message = "Your match filter change was rejected."
		if e.Reason != "" {
			n.Message += " Reason: " + e.Reason
		}
		n.Data["rejectedFilters"] = filter.RejectAll
	default:
		return nil
	}

	if err := h.notifier.Notify(ctx, n); err != nil {
		h.logger.Error("notification delivery failed",
			"user_id", e.UserID,
			"kind", n.Kind,
			"error", err,
		)
	}
	if err := h.push.Push(ctx, n); err != nil {
		h.logger.Error("push delivery failed",
			"user_id", e.UserID,
			"kind", n.Kind,
			"error", err,
		)
	}
	return nil
}

// EventTypes returns the event types this handler subscribes to.
func (h *OnFilterReviewedHandler) EventTypes() []shared.EventType {
	return []shared.EventType{
		shared.EventFilterSubmitted,
		shared.EventFilterAutoApproved,
		shared.EventFilterApproved,
		shared.EventFilterRejected,
	}
}
