package client

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Drainer is satisfied by Queue.
type Drainer interface {
	Drain(ctx context.Context) (DrainResult, error)
}

// Watcher drains the offline queue at start and whenever the API becomes
// reachable again. Reachability is probed on an interval; draining is not.
type Watcher struct {
	probe    func(ctx context.Context) bool
	drainer  Drainer
	interval time.Duration
	logger   *zap.Logger
	// OnDrain, when set, receives the result of every drain attempt.
	OnDrain func(DrainResult, error)
}

// NewWatcher builds a watcher probing every interval.
func NewWatcher(probe func(ctx context.Context) bool, drainer Drainer, interval time.Duration, logger *zap.Logger) *Watcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	if interval <= 0 {
		interval = 5 * time.Second
	}
	return &Watcher{probe: probe, drainer: drainer, interval: interval, logger: logger}
}

// Run blocks until ctx is done.
func (w *Watcher) Run(ctx context.Context) error {
	reachable := w.probe(ctx)
	if reachable {
		w.drain(ctx)
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			now := w.probe(ctx)
			if now && !reachable {
				w.logger.Info("api reachable again")
				w.drain(ctx)
			} else if !now && reachable {
				w.logger.Info("api unreachable")
			}
			reachable = now
		}
	}
}

func (w *Watcher) drain(ctx context.Context) {
	result, err := w.drainer.Drain(ctx)
	if err != nil {
		w.logger.Warn("drain offline queue", zap.Error(err))
	}
	if w.OnDrain != nil {
		w.OnDrain(result, err)
	}
}
