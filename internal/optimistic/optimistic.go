// Package optimistic applies local state changes before the server confirms
// them and reverts them when the server refuses.
package optimistic

import (
	"context"
	"fmt"
	"sync"

	apperrors "github.com/julianstephens/pokrok/internal/errors"
	"github.com/julianstephens/pokrok/internal/logger"
	"github.com/julianstephens/pokrok/internal/metrics"
)

// ErrInFlight is returned by Start when the mutation key is already pending.
var ErrInFlight = apperrors.ErrInFlight

// Notifier surfaces a failed mutation to the user.
type Notifier interface {
	Notify(ctx context.Context, title, message string) error
}

// Mutation describes one optimistic change.
type Mutation[T any] struct {
	// Kind labels the mutation in logs and metrics ("habit_toggle").
	Kind string
	Key  string
	// Apply changes local state and returns the snapshot to restore on failure.
	Apply func() T
	// Request performs the server call.
	Request func(ctx context.Context) (T, error)
	// Commit adopts the server's response. Optional.
	Commit func(T)
	// Rollback restores the snapshot returned by Apply. Optional.
	Rollback func(T)
	// FailureMessage is shown to the user when the request fails.
	FailureMessage string
}

// Syncer runs mutations against a shared guard.
type Syncer struct {
	guard    *Guard
	notifier Notifier
}

func NewSyncer(notifier Notifier) *Syncer {
	return &Syncer{guard: NewGuard(), notifier: notifier}
}

func (s *Syncer) Guard() *Guard {
	return s.guard
}

// Pending is a mutation that has been applied locally and awaits its request.
type Pending[T any] struct {
	syncer   *Syncer
	m        Mutation[T]
	snapshot T
	once     sync.Once
}

// Start acquires the mutation key and applies the change locally. A second
// mutation for a key that is still pending is dropped with ErrInFlight.
func Start[T any](s *Syncer, m Mutation[T]) (*Pending[T], error) {
	if m.Request == nil {
		return nil, fmt.Errorf("mutation %q has no request", m.Kind)
	}
	if !s.guard.TryAcquire(m.Key) {
		logger.Debug("Dropping duplicate mutation", "kind", m.Kind, "key", m.Key)
		return nil, ErrInFlight
	}
	p := &Pending[T]{syncer: s, m: m}
	if m.Apply != nil {
		p.snapshot = m.Apply()
	}
	return p, nil
}

// Resolve issues the request, then commits or rolls back. The key is released
// either way. Only the first call has any effect.
func (p *Pending[T]) Resolve(ctx context.Context) (T, error) {
	var (
		result T
		err    error
	)
	p.once.Do(func() {
		defer p.syncer.guard.Release(p.m.Key)

		result, err = p.m.Request(ctx)
		if err == nil {
			if p.m.Commit != nil {
				p.m.Commit(result)
			}
			return
		}

		if p.m.Rollback != nil {
			p.m.Rollback(p.snapshot)
		}
		metrics.Rollbacks.WithLabelValues(p.m.Kind).Inc()
		logger.Error("Optimistic update rolled back", "kind", p.m.Kind, "key", p.m.Key, "error", err)
		p.syncer.notify(ctx, p.m.failureMessage(err))
	})
	return result, err
}

// Execute starts m and resolves it immediately.
func Execute[T any](ctx context.Context, s *Syncer, m Mutation[T]) (T, error) {
	p, err := Start(s, m)
	if err != nil {
		var zero T
		return zero, err
	}
	return p.Resolve(ctx)
}

func (m Mutation[T]) failureMessage(err error) string {
	if m.FailureMessage != "" {
		return m.FailureMessage
	}
	return fmt.Sprintf("Could not save change: %v", err)
}

func (s *Syncer) notify(ctx context.Context, message string) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.Notify(ctx, "Pokrok", message); err != nil {
		logger.Warn("Failed to deliver notification", "error", err)
	}
}
