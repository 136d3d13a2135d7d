package services

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/markjakearzadon/clubdues-gobackend/internal/auth"
	"github.com/markjakearzadon/clubdues-gobackend/internal/events"
	"github.com/markjakearzadon/clubdues-gobackend/internal/models"
	"github.com/markjakearzadon/clubdues-gobackend/internal/store/memory"
)

var testNow = time.Date(2024, time.March, 15, 12, 0, 0, 0, time.UTC)

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (p *recordingPublisher) Publish(_ context.Context, e events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return nil
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

func newTestDeps(t *testing.T) (Deps, *recordingPublisher) {
	t.Helper()
	mem := memory.New()
	pub := &recordingPublisher{}
	now := func() time.Time { return testNow }
	return Deps{
		Members:  mem.Members(),
		Expenses: mem.Expenses(),
		Hasher:   auth.NewHasher(bcrypt.MinCost),
		Tokens:   auth.NewTokenManager("test-secret-0123456789", time.Hour).WithClock(now),
		Events:   pub,
		Logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		Now:      now,
	}, pub
}

func addMember(t *testing.T, d Deps, id string, role models.Role) {
	t.Helper()
	_, err := NewMemberService(d).Create(context.Background(), NewMember{
		MemberID:   id,
		MemberName: "Member " + id,
		Password:   "pw-" + id,
		Role:       string(role),
	})
	require.NoError(t, err)
}

func amount(v float64) *float64 { return &v }
