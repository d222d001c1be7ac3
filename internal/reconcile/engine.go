// Package reconcile applies a parsed organizer configuration to the store.
// Each level of the tree is synced the same way: compute the desired stable
// IDs, delete stored children whose IDs are absent, then upsert the rest.
// The whole sync is one transaction, so readers observe either the old or
// the new state.
package reconcile

import (
	"context"
	"log/slog"
	"time"

	"github.com/papapumpkin/lineup/internal/model"
	"github.com/papapumpkin/lineup/internal/store"
	"github.com/papapumpkin/lineup/internal/telemetry"
)

// Engine syncs configurations into a store.
type Engine struct {
	store   *store.Store
	logger  *slog.Logger
	emitter *telemetry.Emitter
	now     func() time.Time
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger. The default discards records.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// WithEmitter sets the telemetry emitter. A nil emitter disables telemetry.
func WithEmitter(em *telemetry.Emitter) Option {
	return func(e *Engine) { e.emitter = em }
}

// WithClock overrides the clock used to stamp posts without a timestamp.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// New returns an Engine writing to s.
func New(s *store.Store, opts ...Option) *Engine {
	e := &Engine{
		store:  s,
		logger: slog.New(slog.DiscardHandler),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// SyncOptions controls a single sync.
type SyncOptions struct {
	// DryRun computes the report inside the transaction and rolls back.
	DryRun bool
}

// Sync makes the store's subtree for cfg's organizer match cfg. On error the
// transaction is rolled back and the store is unchanged.
func (e *Engine) Sync(ctx context.Context, cfg model.OrganizerConfiguration, opts SyncOptions) (*Report, error) {
	report := &Report{
		RunID:       telemetry.NewRunID(),
		OrganizerID: cfg.Info.ID.String(),
		DryRun:      opts.DryRun,
	}
	e.emit(report, telemetry.KindSyncStart, map[string]any{"events": len(cfg.Events), "dry_run": opts.DryRun})
	e.logger.Debug("sync started", "run", report.RunID, "organizer", report.OrganizerID, "dry_run", opts.DryRun)

	if err := e.run(ctx, cfg, opts, report); err != nil {
		e.emit(report, telemetry.KindSyncFailed, map[string]any{"error": err.Error()})
		e.logger.Error("sync failed", "run", report.RunID, "organizer", report.OrganizerID, "error", err)
		return nil, err
	}

	e.emit(report, telemetry.KindSyncDone, map[string]any{
		"created":   report.Count(ActionCreate),
		"updated":   report.Count(ActionUpdate),
		"deleted":   report.Count(ActionDelete),
		"unchanged": report.Unchanged,
		"dry_run":   opts.DryRun,
	})
	e.logger.Info("sync finished",
		"run", report.RunID,
		"organizer", report.OrganizerID,
		"created", report.Count(ActionCreate),
		"updated", report.Count(ActionUpdate),
		"deleted", report.Count(ActionDelete),
		"unchanged", report.Unchanged,
		"dry_run", opts.DryRun,
	)
	return report, nil
}

func (e *Engine) run(ctx context.Context, cfg model.OrganizerConfiguration, opts SyncOptions, report *Report) error {
	tx, err := e.store.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback() //nolint:errcheck // rollback after commit is a no-op

	s := &syncer{tx: tx, report: report, now: e.now().UTC()}
	if err := s.organizer(ctx, cfg); err != nil {
		return err
	}
	if opts.DryRun {
		return tx.Rollback()
	}
	return tx.Commit()
}

func (e *Engine) emit(r *Report, kind string, data map[string]any) {
	err := e.emitter.Emit(telemetry.Event{
		Kind:      kind,
		RunID:     r.RunID,
		Organizer: r.OrganizerID,
		Data:      data,
	})
	if err != nil {
		e.logger.Warn("telemetry emit failed", "kind", kind, "error", err)
	}
}
