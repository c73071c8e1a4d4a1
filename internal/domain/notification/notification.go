// Package notification defines the outbound notification ports. Delivery is
// owned by external services; the core only hands off messages, always
// fire-and-forget. A failed delivery is logged by the adapter and never
// surfaces as a request failure.
package notification

import (
	"context"

	"github.com/tradepals/match-core/internal/domain/shared"
)

// Kind classifies outbound notifications.
type Kind string

const (
	KindMatchFound     Kind = "match_found"
	KindRematchFound   Kind = "rematch_found"
	KindFilterApproved Kind = "filter_approved"
	KindFilterRejected Kind = "filter_rejected"
	KindFilterPending  Kind = "filter_pending"
)

// Notification is one outbound message to a user.
type Notification struct {
	UserID  shared.UserID
	Kind    Kind
	Title   string
	Message string
	Data    map[string]string
}

// Notifier delivers in-app notifications.
type Notifier interface {
	Notify(ctx context.Context, n Notification) error
}

// PushSender delivers push alerts to the user's devices.
type PushSender interface {
	Push(ctx context.Context, n Notification) error
}
