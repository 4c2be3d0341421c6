// Package schedule runs the bot's periodic work: status rotation, the daily ping reset and the
// expiry sweep.
package schedule

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/disgoorg/snowflake/v2"
	"golang.org/x/sync/errgroup"

	"github.com/disgoorg/slotbot/internal/domain/mentions"
	"github.com/disgoorg/slotbot/internal/gateways/store"
)

const (
	PresenceInterval = 30 * time.Second
	ResetInterval    = 60 * time.Second
	ExpiryInterval   = 1800 * time.Second

	dmConcurrency = 4
	tickTimeout   = 5 * time.Minute
)

// Platform is the slice of the chat platform the loops talk to.
type Platform interface {
	SetPresence(ctx context.Context, text string) error
	SendDM(ctx context.Context, userID snowflake.ID, content string) error
}

// Slots is the slot lifecycle as seen by the loops.
type Slots interface {
	LiveOwners(ctx context.Context) []snowflake.ID
	SweepExpired(ctx context.Context, now time.Time) ([]store.Record, error)
}

// ProcessManager starts named background processes bound to its own lifetime.
type ProcessManager interface {
	StartProcess(name, description string, fn func(ctx context.Context))
}

type Scheduler struct {
	platform Platform
	slots    Slots
	limiter  *mentions.Limiter
	statuses []string
	now      func() time.Time

	mu   sync.Mutex
	next int
}

type Option func(*Scheduler)

func WithClock(now func() time.Time) Option {
	return func(s *Scheduler) { s.now = now }
}

func New(platform Platform, slots Slots, limiter *mentions.Limiter, statuses []string, opts ...Option) *Scheduler {
	s := &Scheduler{
		platform: platform,
		slots:    slots,
		limiter:  limiter,
		statuses: statuses,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start launches the three loops on pm.
func (s *Scheduler) Start(pm ProcessManager) {
	pm.StartProcess("presence", "rotate bot status", func(ctx context.Context) {
		Every(ctx, PresenceInterval, s.RotatePresence)
	})
	pm.StartProcess("ping-reset", "reset daily @here counters at midnight", func(ctx context.Context) {
		Every(ctx, ResetInterval, func(ctx context.Context) { s.ResetPings(ctx) })
	})
	pm.StartProcess("slot-expiry", "expire slots past their expiry date", func(ctx context.Context) {
		Every(ctx, ExpiryInterval, func(ctx context.Context) { s.SweepExpired(ctx) })
	})
}

// Every calls tick right away and then on every interval until ctx is done. Ticks run on the
// calling goroutine, so a slow tick delays the next one instead of overlapping it.
func Every(ctx context.Context, interval time.Duration, tick func(ctx context.Context)) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		runTick(ctx, tick)
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func runTick(ctx context.Context, tick func(ctx context.Context)) {
	ctx, cancel := context.WithTimeout(ctx, tickTimeout)
	defer cancel()
	tick(ctx)
}

// RotatePresence shows the next configured status as a watching activity.
func (s *Scheduler) RotatePresence(ctx context.Context) {
	if len(s.statuses) == 0 {
		return
	}
	s.mu.Lock()
	text := s.statuses[s.next%len(s.statuses)]
	s.next = (s.next + 1) % len(s.statuses)
	s.mu.Unlock()

	if err := s.platform.SetPresence(ctx, text); err != nil {
		slog.Warn("Failed to update presence",
			slog.String("type", "sys"),
			slog.String("status", text),
			slog.Any("error", err))
	}
}

// ResetPings zeroes the mention counters once the midnight boundary has passed and tells every
// live slot owner. It returns the number of owners that were messaged.
func (s *Scheduler) ResetPings(ctx context.Context) int {
	if !s.limiter.ResetIfDue(s.now()) {
		return 0
	}

	owners := s.slots.LiveOwners(ctx)
	slog.Info("Ping counters reset",
		slog.String("type", "sys"),
		slog.Int("owners", len(owners)),
		slog.Time("next_reset", s.limiter.Boundary()))

	content := fmt.Sprintf("Pings have been reset! You can now use %d pings again on your slot.", s.limiter.Limit())

	var (
		mu   sync.Mutex
		sent int
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(dmConcurrency)
	for _, owner := range owners {
		g.Go(func() error {
			if err := s.platform.SendDM(gctx, owner, content); err != nil {
				slog.Warn("Failed to send reset DM",
					slog.String("type", "sys"),
					slog.String("user_id", owner.String()),
					slog.Any("error", err))
				return nil
			}
			mu.Lock()
			sent++
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()
	return sent
}

// SweepExpired expires every live slot whose expiry date has passed.
func (s *Scheduler) SweepExpired(ctx context.Context) []store.Record {
	expired, err := s.slots.SweepExpired(ctx, s.now())
	if err != nil {
		slog.Error("Expiry sweep failed",
			slog.String("type", "error"),
			slog.Any("error", err))
	}
	return expired
}
