package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/papapumpkin/lineup/internal/loader"
	"github.com/papapumpkin/lineup/internal/reconcile"
	"github.com/papapumpkin/lineup/internal/ui"
)

var syncCmd = &cobra.Command{
	Use:   "sync <path>",
	Short: "Reconcile an organizer directory into the database",
	Args:  cobra.ExactArgs(1),
	RunE:  runSync,
}

func runSync(cmd *cobra.Command, args []string) error {
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

	dryRun, _ := cmd.Flags().GetBool("dry-run")
	lopts := s.loadOptions()
	lopts.OrganizerID, _ = cmd.Flags().GetString("organizer-id")
	lopts.SourceURL, _ = cmd.Flags().GetString("source-url")

	_, err = syncTree(ctx, s.fs, s.engine(st), s.printer, args[0], lopts, reconcile.SyncOptions{DryRun: dryRun})
	return err
}

// syncTree loads and validates root, then reconciles it. Nothing is written
// when loading or validation fails.
func syncTree(ctx context.Context, fs afero.Fs, eng *reconcile.Engine, p *ui.Printer, root string, lopts loader.Options, sopts reconcile.SyncOptions) (*reconcile.Report, error) {
	cfg, err := loader.Load(fs, root, lopts)
	if err != nil {
		return nil, err
	}
	if errs := loader.Validate(cfg); len(errs) > 0 {
		p.ValidationResult(cfg.Info.Name, errs)
		return nil, fmt.Errorf("%w: %d error(s)", errInvalidTree, len(errs))
	}
	r, err := eng.Sync(ctx, cfg, sopts)
	if err != nil {
		return nil, err
	}
	p.SyncReport(r)
	return r, nil
}

func init() {
	syncCmd.Flags().Bool("dry-run", false, "compute the changes, then roll them back")
	syncCmd.Flags().String("organizer-id", "", "override the organizer ID from organizer-info.yml")
	syncCmd.Flags().String("source-url", "", "override the source URL from organizer-info.yml")
	rootCmd.AddCommand(syncCmd)
}
