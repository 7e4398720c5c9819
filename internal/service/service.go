// Package service implements the business rules for teams, tournaments,
// matches and users. Every exported operation authorizes the caller and then
// runs inside a single store transaction.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"tournament-backend/internal/auth"
	apperrors "tournament-backend/internal/errors"
	"tournament-backend/internal/events"
	"tournament-backend/internal/metrics"
	"tournament-backend/internal/model"
	"tournament-backend/internal/store"
)

type Deps struct {
	Store  *store.Store
	Clock  clockwork.Clock
	Events events.Publisher
}

type base struct {
	store  *store.Store
	clock  clockwork.Clock
	events events.Publisher
}

func newBase(d Deps) base {
	b := base{store: d.Store, clock: d.Clock, events: d.Events}
	if b.clock == nil {
		b.clock = clockwork.NewRealClock()
	}
	if b.events == nil {
		b.events = events.LogPublisher{}
	}
	return b
}

func (b base) now() time.Time {
	return b.clock.Now().UTC()
}

// today is the current calendar date at UTC midnight.
func (b base) today() time.Time {
	return dateOnly(b.now())
}

// audit appends an entry attributed to the principal in ctx.
func (b base) audit(ctx context.Context, q *store.Queries, action, format string, args ...any) error {
	return q.RecordAudit(ctx, model.AuditEntry{
		ActorID:   auth.ActorID(ctx),
		Action:    action,
		Details:   fmt.Sprintf(format, args...),
		CreatedAt: b.now(),
	})
}

// publish emits a domain event; failures are logged and never returned.
func (b base) publish(ctx context.Context, typ string, data any) {
	if err := b.events.Publish(ctx, events.New(typ, b.now(), data)); err != nil {
		metrics.EventPublishFailures.Inc()
		log.Warn().Err(err).Str("type", typ).Msg("publish event failed")
	}
}

// run executes fn in one transaction and returns its value.
func run[T any](ctx context.Context, st *store.Store, fn func(q *store.Queries) (T, error)) (T, error) {
	var out T
	err := st.Run(ctx, func(q *store.Queries) error {
		var err error
		out, err = fn(q)
		return err
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return out, nil
}

// notFound swaps store.ErrNotFound for the domain error.
func notFound(err error, domainErr error) error {
	if errors.Is(err, store.ErrNotFound) {
		return domainErr
	}
	return err
}

// mustExist returns domainErr when exists reports false.
func mustExist(exists bool, err error, domainErr error) error {
	if err != nil {
		return err
	}
	if !exists {
		return domainErr
	}
	return nil
}

// invalidStatus is returned for a status outside the enum, matching what
// request binding reports.
func invalidStatus() error {
	return apperrors.Validation("Validation failed", map[string]string{"status": "is not a valid status"})
}

func blank(s string) bool {
	return strings.TrimSpace(s) == ""
}

func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
