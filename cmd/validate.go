package cmd

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/papapumpkin/lineup/internal/loader"
	"github.com/papapumpkin/lineup/internal/model"
	"github.com/papapumpkin/lineup/internal/orphans"
	"github.com/papapumpkin/lineup/internal/ui"
)

var errEventNotFound = errors.New("event not found")

var validateCmd = &cobra.Command{
	Use:   "validate <path>",
	Short: "Parse an organizer directory and report errors and orphans",
	Args:  cobra.ExactArgs(1),
	RunE:  runValidate,
}

type validateOptions struct {
	event      string
	fixOrphans bool
	dryRun     bool
	threshold  float64
}

func runValidate(cmd *cobra.Command, args []string) error {
	s, err := newSession()
	if err != nil {
		return err
	}
	defer s.Close()

	opts := validateOptions{threshold: s.cfg.Orphans.Threshold}
	opts.event, _ = cmd.Flags().GetString("event")
	opts.fixOrphans, _ = cmd.Flags().GetBool("fix-orphans")
	opts.dryRun, _ = cmd.Flags().GetBool("dry-run")

	return validateTree(s.fs, s.printer, s.logger, args[0], s.loadOptions(), opts)
}

// validateTree loads root, prints validation and orphan results, and applies
// orphan fixes when asked. Orphans never fail validation.
func validateTree(fs afero.Fs, p *ui.Printer, logger *slog.Logger, root string, lopts loader.Options, opts validateOptions) error {
	cfg, err := loader.Load(fs, root, lopts)
	if err != nil {
		return err
	}
	p.Loaded(cfg)

	events := cfg.Events
	if opts.event != "" {
		events = nil
		for _, ev := range cfg.Events {
			if ev.Info.Name == opts.event || ev.Dir == opts.event {
				events = append(events, ev)
			}
		}
		if len(events) == 0 {
			return fmt.Errorf("%w: %s", errEventNotFound, opts.event)
		}
	}

	errs := loader.Validate(cfg)
	p.ValidationResult(cfg.Info.Name, errs)

	for _, ev := range events {
		if err := checkOrphans(fs, p, logger, root, ev, opts); err != nil {
			return err
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %d error(s)", errInvalidTree, len(errs))
	}
	return nil
}

func checkOrphans(fs afero.Fs, p *ui.Printer, logger *slog.Logger, root string, ev model.EventConfiguration, opts validateOptions) error {
	res := orphans.Detect(ev, opts.threshold)
	p.Orphans(res)
	logger.Debug("orphan detection",
		"event", ev.Info.Name,
		"artists", len(res.OrphanedArtists),
		"performances", len(res.OrphanedPerformances),
		"candidates", len(res.Candidates),
	)
	if !opts.fixOrphans || len(res.Candidates) == 0 {
		return nil
	}
	changes, err := orphans.ApplyFixes(fs, filepath.Join(root, ev.Dir), orphans.Best(res.Candidates), opts.dryRun)
	if err != nil {
		return err
	}
	p.FileChanges(changes, opts.dryRun)
	return nil
}

func init() {
	validateCmd.Flags().String("event", "", "only check the event with this name or directory")
	validateCmd.Flags().Bool("fix-orphans", false, "rewrite schedule files to use the closest artist name")
	validateCmd.Flags().Bool("dry-run", false, "with --fix-orphans, show the rewrites without writing")
	validateCmd.Flags().Float64("threshold", 0, "minimum similarity for an orphan fix (default 0.6)")
	_ = viper.BindPFlag("orphans.threshold", validateCmd.Flags().Lookup("threshold"))
	rootCmd.AddCommand(validateCmd)
}
