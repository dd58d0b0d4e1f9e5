package infrastructure

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// DefaultPollInterval is how often polled screens are refetched.
const DefaultPollInterval = 30 * time.Second

// Refresher refetches one screen for every session that has it open.
type Refresher interface {
	Refresh(ctx context.Context, screen string) error
}

// Poller refreshes screens on a fixed interval. Each tick replaces the collections wholesale.
type Poller struct {
	cron      *cron.Cron
	refresher Refresher
	interval  time.Duration
	timeout   time.Duration
	entries   map[string]cron.EntryID
}

func NewPoller(refresher Refresher, interval time.Duration) *Poller {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	return &Poller{
		cron:      cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		refresher: refresher,
		interval:  interval,
		timeout:   interval,
		entries:   make(map[string]cron.EntryID),
	}
}

// Spec is the cron expression used for every polled screen, e.g. "@every 30s".
func (p *Poller) Spec() string {
	return fmt.Sprintf("@every %s", p.interval)
}

// Watch schedules screens. Watching a screen twice is a no-op.
func (p *Poller) Watch(screens ...string) error {
	for _, screen := range screens {
		if _, ok := p.entries[screen]; ok {
			continue
		}
		id, err := p.cron.AddFunc(p.Spec(), func() { p.tick(screen) })
		if err != nil {
			return fmt.Errorf("schedule %s: %w", screen, err)
		}
		p.entries[screen] = id
		slog.Info("poller watching screen", slog.String("screen", screen), slog.String("spec", p.Spec()))
	}
	return nil
}

func (p *Poller) tick(screen string) {
	ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
	defer cancel()
	if err := p.refresher.Refresh(ctx, screen); err != nil {
		slog.Warn("poller refresh failed", slog.String("screen", screen), slog.Any("error", err))
	}
}

// Start runs the schedule in the background.
func (p *Poller) Start() { p.cron.Start() }

// Stop halts the schedule and waits for running refreshes until ctx is done.
func (p *Poller) Stop(ctx context.Context) {
	done := p.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
	}
}
