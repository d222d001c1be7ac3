package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/papapumpkin/lineup/internal/festivalpro"
	"github.com/papapumpkin/lineup/internal/loader"
	"github.com/papapumpkin/lineup/internal/ui"
)

var festivalproCmd = &cobra.Command{
	Use:   "festivalpro-import <json> <eventDir>",
	Short: "Convert a FestivalPro JSON export into schedule files",
	Args:  cobra.ExactArgs(2),
	RunE:  runFestivalpro,
}

type importOptions struct {
	timeZone    string
	dayBoundary string
	dryRun      bool
}

func runFestivalpro(cmd *cobra.Command, args []string) error {
	s, err := newSession()
	if err != nil {
		return err
	}
	defer s.Close()

	opts := importOptions{dayBoundary: s.cfg.Import.DayBoundary}
	opts.timeZone, _ = cmd.Flags().GetString("time-zone")
	opts.dryRun, _ = cmd.Flags().GetBool("dry-run")
	return importSchedules(s.fs, s.printer, args[0], args[1], opts)
}

// importSchedules writes the export at jsonPath into eventDir. Times are
// rendered in --time-zone when given, else in the event's declared zone,
// else in UTC.
func importSchedules(fs afero.Fs, p *ui.Printer, jsonPath, eventDir string, opts importOptions) error {
	data, err := afero.ReadFile(fs, jsonPath)
	if err != nil {
		return fmt.Errorf("reading export: %w", err)
	}
	if ok, err := afero.DirExists(fs, eventDir); err != nil || !ok {
		return fmt.Errorf("festivalpro: %w: %s", festivalpro.ErrEventDir, eventDir)
	}

	boundary, err := festivalpro.ParseDayBoundary(opts.dayBoundary)
	if err != nil {
		return err
	}

	var (
		loc *time.Location
		ok  bool
	)
	if opts.timeZone != "" {
		loc, ok = loader.ResolveLocation(opts.timeZone)
		if !ok {
			return fmt.Errorf("unknown time zone %q", opts.timeZone)
		}
	} else {
		loc, ok, err = loader.EventLocation(fs, eventDir)
		if err != nil {
			return err
		}
		if !ok {
			p.Warn("event time zone unresolved; writing times in UTC")
			loc = time.UTC
		}
	}

	res, err := festivalpro.Import(fs, data, eventDir, festivalpro.Options{
		Location:    loc,
		DayBoundary: boundary,
		DryRun:      opts.dryRun,
	})
	if err != nil {
		return err
	}
	p.ImportResult(res, opts.dryRun)
	return nil
}

func init() {
	festivalproCmd.Flags().Bool("dry-run", false, "print the files that would be written")
	festivalproCmd.Flags().String("time-zone", "", "zone to write times in (default: the event's time zone)")
	festivalproCmd.Flags().String("day-boundary", "", "time of day a festival day starts, HH:MM (default 06:00)")
	_ = viper.BindPFlag("import.day_boundary", festivalproCmd.Flags().Lookup("day-boundary"))
	rootCmd.AddCommand(festivalproCmd)
}
