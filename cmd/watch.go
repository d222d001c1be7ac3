package cmd

import (
	"context"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/papapumpkin/lineup/internal/reconcile"
	"github.com/papapumpkin/lineup/internal/telemetry"
	"github.com/papapumpkin/lineup/internal/watch"
)

var watchCmd = &cobra.Command{
	Use:   "watch <path>",
	Short: "Sync an organizer directory, then re-sync whenever it changes",
	Args:  cobra.ExactArgs(1),
	RunE:  runWatch,
}

func runWatch(cmd *cobra.Command, args []string) error {
	s, err := newSession()
	if err != nil {
		return err
	}
	defer s.Close()

	ctx := cmd.Context()
	st, err := s.openStore(ctx)
	if err != nil {
		return err
	}
	defer st.Close()

	root := args[0]
	eng := s.engine(st)
	resync := func(ctx context.Context) error {
		_, err := syncTree(ctx, s.fs, eng, s.printer, root, s.loadOptions(), reconcile.SyncOptions{})
		return err
	}
	if err := resync(ctx); err != nil {
		s.printer.Error(err.Error())
	}

	w, err := watch.New(root, s.cfg.Watch.Debounce, s.logger)
	if err != nil {
		return err
	}
	if err := w.Start(); err != nil {
		return err
	}
	defer w.Stop()

	s.printer.Info("watching " + root + " for changes (Ctrl-C to stop)")
	watchLoop(ctx, w.Changes, s.logger, s.emitter, resync)
	return nil
}

// watchLoop re-syncs on every batch until ctx is done or changes is closed.
// A failed sync is logged and the loop keeps running.
func watchLoop(ctx context.Context, changes <-chan watch.Batch, logger *slog.Logger, em *telemetry.Emitter, resync func(context.Context) error) {
	for {
		select {
		case <-ctx.Done():
			return
		case b, ok := <-changes:
			if !ok {
				return
			}
			logger.Info("change detected", "files", len(b.Files))
			_ = em.Emit(telemetry.Event{
				Kind: telemetry.KindWatchChange,
				Data: map[string]any{"files": b.Files},
			})
			if err := resync(ctx); err != nil {
				logger.Error("sync failed", "error", err)
			}
		}
	}
}

func init() {
	rootCmd.AddCommand(watchCmd)
}
