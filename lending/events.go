package lending

import (
	"context"
	"time"
)

// Event types published when a student's standing changes.
const (
	EventSuspended   = "student.suspended"
	EventUnsuspended = "student.unsuspended"
	EventTrustScore  = "student.trust_score"
)

type Event struct {
	Type       string     `json:"type"`
	StudentID  string     `json:"studentId"`
	TrustScore *float64   `json:"trustScore,omitempty"`
	EndDate    *time.Time `json:"endDate,omitempty"`
	Reason     string     `json:"reason,omitempty"`
	At         time.Time  `json:"at"`
}

// EventSink receives standing-change events. The notification layer
// subscribes on the other side; delivery failures are logged, never
// allowed to fail the operation that produced them.
type EventSink interface {
	Publish(ctx context.Context, ev Event) error
}

// NopSink drops events. Used when no event transport is configured.
type NopSink struct{}

func (NopSink) Publish(context.Context, Event) error { return nil }
