// Package events publishes domain events (member, payment and expense
// changes) so other club tools can react to them.
package events

import (
	"context"
	"time"
)

const (
	MemberCreated    = "member.created"
	MemberDeleted    = "member.deleted"
	PasswordChanged  = "member.password_changed"
	PaymentsRecorded = "payments.recorded"
	ExpenseCreated   = "expense.created"
	ExpenseDeleted   = "expense.deleted"
)

type Event struct {
	Type       string    `json:"type"`
	OccurredAt time.Time `json:"occurredAt"`
	Data       any       `json:"data"`
}

func New(eventType string, data any) Event {
	return Event{Type: eventType, OccurredAt: time.Now().UTC(), Data: data}
}

type Publisher interface {
	Publish(ctx context.Context, e Event) error
}

// Noop drops every event. It is used when no broker is configured.
type Noop struct{}

func (Noop) Publish(context.Context, Event) error { return nil }
