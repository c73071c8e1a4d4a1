// Package shared contains common domain types, errors, events, and value objects
// that are used across all domain packages.
package shared

import (
	"time"
)

// EventType represents the type of domain event.
type EventType string

// Domain event types - each represents something significant that happened
// in the matchmaking core. Notification side effects hang off these events
// so they are never dispatched inline with scoring.
const (
	// Matching events
	EventMatchGroupFormed EventType = "matching.group_formed"
	EventRematchProduced  EventType = "matching.rematch_produced"
	EventMatchSkipped     EventType = "matching.skipped"

	// Filter workflow events
	EventFilterSubmitted    EventType = "filter.submitted"
	EventFilterAutoApproved EventType = "filter.auto_approved"
	EventFilterApproved     EventType = "filter.approved"
	EventFilterRejected     EventType = "filter.rejected"

	// Trust policy events
	EventTrustCriteriaReplaced EventType = "trust.criteria_replaced"
)

// Event is the base interface for all domain events.
type Event interface {
	// EventType returns the type of the event.
	EventType() EventType

	// OccurredAt returns when the event occurred.
	OccurredAt() time.Time

	// AggregateID returns the ID of the aggregate that produced this event.
	AggregateID() string

	// Payload returns the event data as a map for serialization.
	Payload() map[string]interface{}
}

// EventHandler processes a single event.
type EventHandler func(event Event) error

// EventPublisher publishes domain events to interested subscribers.
type EventPublisher interface {
	Publish(event Event) error
}

// EventBus is a publisher that also manages subscriptions.
type EventBus interface {
	EventPublisher

	// Subscribe registers a handler for a specific event type.
	Subscribe(eventType EventType, handler EventHandler) error

	// Close shuts the bus down after draining in-flight handlers.
	Close() error
}

// BaseEvent provides common event functionality.
type BaseEvent struct {
	Type          EventType `json:"type"`
	Timestamp     time.Time `json:"timestamp"`
	AggregateId   string    `json:"aggregate_id"`
	CorrelationID string    `json:"correlation_id,omitempty"`
}

// EventType implements Event interface.
func (e BaseEvent) EventType() EventType {
	return e.Type
}

// OccurredAt implements Event interface.
func (e BaseEvent) OccurredAt() time.Time {
	return e.Timestamp
}

// AggregateID implements Event interface.
func (e BaseEvent) AggregateID() string {
	return e.AggregateId
}

// NewBaseEvent creates a new base event.
func NewBaseEvent(eventType EventType, aggregateID string) BaseEvent {
	return BaseEvent{
		Type:        eventType,
		Timestamp:   time.Now().UTC(),
		AggregateId: aggregateID,
	}
}

// WithCorrelationID sets the correlation ID for tracing.
func (e BaseEvent) WithCorrelationID(id string) BaseEvent {
	e.CorrelationID = id
	return e
}

// ═══════════════════════════════════════════════════════════════════════════
// Matching Events
// ═══════════════════════════════════════════════════════════════════════════

// MatchGroupFormedEvent is emitted when group formation produces at least one group.
type MatchGroupFormedEvent struct {
	BaseEvent
	SeedUserID string   `json:"seed_user_id"`
	GroupIDs   []string `json:"group_ids"`
	GroupCount int      `json:"group_count"`
	TopScore   int      `json:"top_score"`
}

// Payload implements Event interface.
func (e MatchGroupFormedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"seed_user_id": e.SeedUserID,
		"group_ids":    e.GroupIDs,
		"group_count":  e.GroupCount,
		"top_score":    e.TopScore,
	}
}

// NewMatchGroupFormedEvent creates a new MatchGroupFormedEvent.
func NewMatchGroupFormedEvent(seedUserID string, groupIDs []string, topScore int) MatchGroupFormedEvent {
	return MatchGroupFormedEvent{
		BaseEvent:  NewBaseEvent(EventMatchGroupFormed, seedUserID),
		SeedUserID: seedUserID,
		GroupIDs:   groupIDs,
		GroupCount: len(groupIDs),
		TopScore:   topScore,
	}
}

// RematchProducedEvent is emitted when rematching surfaces improved candidates.
type RematchProducedEvent struct {
	BaseEvent
	UserID         string `json:"user_id"`
	CandidateCount int    `json:"candidate_count"`
}

// Payload implements Event interface.
func (e RematchProducedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"user_id":         e.UserID,
		"candidate_count": e.CandidateCount,
	}
}

// NewRematchProducedEvent creates a new RematchProducedEvent.
func NewRematchProducedEvent(userID string, candidateCount int) RematchProducedEvent {
	return RematchProducedEvent{
		BaseEvent:      NewBaseEvent(EventRematchProduced, userID),
		UserID:         userID,
		CandidateCount: candidateCount,
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Filter Workflow Events
// ═══════════════════════════════════════════════════════════════════════════

// FilterReviewedEvent is emitted for every filter workflow outcome
// (submission queued, auto-approval, admin approval, admin rejection).
type FilterReviewedEvent struct {
	BaseEvent
	UserID    string   `json:"user_id"`
	RequestID string   `json:"request_id,omitempty"`
	Status    string   `json:"status"`
	Filters   []string `json:"filters,omitempty"`
	Reason    string   `json:"reason,omitempty"`
}

// Payload implements Event interface.
func (e FilterReviewedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"user_id":    e.UserID,
		"request_id": e.RequestID,
		"status":     e.Status,
		"filters":    e.Filters,
		"reason":     e.Reason,
	}
}

// NewFilterReviewedEvent creates a new FilterReviewedEvent.
func NewFilterReviewedEvent(eventType EventType, userID, requestID, status string, filters []string, reason string) FilterReviewedEvent {
	return FilterReviewedEvent{
		BaseEvent: NewBaseEvent(eventType, userID),
		UserID:    userID,
		RequestID: requestID,
		Status:    status,
		Filters:   filters,
		Reason:    reason,
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Trust Policy Events
// ═══════════════════════════════════════════════════════════════════════════

// TrustCriteriaReplacedEvent is emitted when an admin swaps the trust policy.
type TrustCriteriaReplacedEvent struct {
	BaseEvent
	PriorityCount int `json:"priority_count"`
	GeneralCount  int `json:"general_count"`
}

// Payload implements Event interface.
func (e TrustCriteriaReplacedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"priority_count": e.PriorityCount,
		"general_count":  e.GeneralCount,
	}
}

// NewTrustCriteriaReplacedEvent creates a new TrustCriteriaReplacedEvent.
func NewTrustCriteriaReplacedEvent(priorityCount, generalCount int) TrustCriteriaReplacedEvent {
	return TrustCriteriaReplacedEvent{
		BaseEvent:     NewBaseEvent(EventTrustCriteriaReplaced, "trust-criteria"),
		PriorityCount: priorityCount,
		GeneralCount:  generalCount,
	}
}
