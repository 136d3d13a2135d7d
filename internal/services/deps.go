package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/markjakearzadon/clubdues-gobackend/internal/auth"
	"github.com/markjakearzadon/clubdues-gobackend/internal/events"
	"github.com/markjakearzadon/clubdues-gobackend/internal/metrics"
	"github.com/markjakearzadon/clubdues-gobackend/internal/store"
)

// DefaultBootstrapAdminID is the reserved id of the pre-provisioned admin.
const DefaultBootstrapAdminID = "brahmastra01"

// Deps is built once at startup and handed to every service. Tests build
// one over the memory store.
type Deps struct {
	Members  store.MemberStore
	Expenses store.ExpenseStore

	Hasher  *auth.Hasher
	Tokens  *auth.TokenManager
	Revoker auth.Revoker

	Events  events.Publisher
	Metrics *metrics.Metrics
	Logger  *slog.Logger

	// Now is the clock used for paid dates and the dashboard period.
	Now func() time.Time

	BootstrapAdminID string
}

func (d Deps) withDefaults() Deps {
	if d.Now == nil {
		d.Now = time.Now
	}
	if d.Hasher == nil {
		d.Hasher = auth.NewHasher(0)
	}
	if d.Revoker == nil {
		d.Revoker = auth.NewMemoryRevoker().WithClock(d.Now)
	}
	if d.Events == nil {
		d.Events = events.Noop{}
	}
	if d.Logger == nil {
		d.Logger = slog.Default()
	}
	if d.BootstrapAdminID == "" {
		d.BootstrapAdminID = DefaultBootstrapAdminID
	}
	return d
}

// publish sends a domain event. Broker failures never fail the operation.
func (d Deps) publish(ctx context.Context, eventType string, data any) {
	if err := d.Events.Publish(ctx, events.New(eventType, data)); err != nil {
		d.Logger.WarnContext(ctx, "Failed to publish event", "type", eventType, "error", err)
	}
}
