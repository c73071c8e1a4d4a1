// Package eventhandler contains domain event handlers. They are the reactive
// part of the system: matching and the filter workflow finish their decisions
// synchronously and publish events; handlers here pick them up off the bus
// and run the notify/push side effects. A failed side effect is logged and
// dropped, never surfaced to the request that caused it.
package eventhandler

import (
	"context"
	"log/slog"
	"strconv"

	"github.com/tradepals/match-core/internal/domain/notification"
	"github.com/tradepals/match-core/internal/domain/shared"
)

// ═══════════════════════════════════════════════════════════════════════════
// ON MATCH FORMED HANDLER
// Notifies the requesting user when group formation or rematching produced
// something worth looking at.
// ═══════════════════════════════════════════════════════════════════════════

// OnMatchFormedHandler reacts to matching events.
type OnMatchFormedHandler struct {
	notifier notification.Notifier
	push     notification.PushSender
	logger   *slog.Logger
}

// NewOnMatchFormedHandler creates a new OnMatchFormedHandler.
func NewOnMatchFormedHandler(
	notifier notification.Notifier,
	push notification.PushSender,
	logger *slog.Logger,
) *OnMatchFormedHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &OnMatchFormedHandler{
		notifier: notifier,
		push:     push,
		logger:   logger.With("handler", "on_match_formed"),
	}
}

// Handle implements shared.EventHandler.
func (h *OnMatchFormedHandler) Handle(event shared.Event) error {
	ctx := context.Background()

	var n notification.Notification
	switch e := event.(type) {
	case shared.MatchGroupFormedEvent:
		n = notification.Notification{
			UserID:  shared.UserID(e.SeedUserID),
			Kind:    notification.KindMatchFound,
			Title:   "New trading groups found",
			Message: "We found new trading pals for you. Take a look!",
			Data: map[string]string{
				"groupCount": strconv.Itoa(e.GroupCount),
				"topScore":   strconv.Itoa(e.TopScore),
			},
		}
	case shared.RematchProducedEvent:
		n = notification.Notification{
			UserID:  shared.UserID(e.UserID),
			Kind:    notification.KindRematchFound,
			Title:   "Worth another look",
			Message: "Some traders you passed on are now a much better fit.",
			Data: map[string]string{
				"candidateCount": strconv.Itoa(e.CandidateCount),
			},
		}
	default:
		h.logger.Warn("received unexpected event", "event_type", event.EventType())
		return nil
	}

	h.deliver(ctx, n)
	return nil
}

// deliver sends both channels best effort.
func (h *OnMatchFormedHandler) deliver(ctx context.Context, n notification.Notification) {
	if err := h.notifier.Notify(ctx, n); err != nil {
		h.logger.Error("notification delivery failed",
			"user_id", n.UserID,
			"kind", n.Kind,
			"error", err,
		)
	}
	if err := h.push.Push(ctx, n); err != nil {
		h.logger.Error("push delivery failed",
			"user_id", n.UserID,
			"kind", n.Kind,
			"error", err,
		)
	}
}

// EventTypes returns the event types this handler subscribes to.
func (h *OnMatchFormedHandler) EventTypes() []shared.EventType {
	return []shared.EventType{shared.EventMatchGroupFormed, shared.EventRematchProduced}
}
