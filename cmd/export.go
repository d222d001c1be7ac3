package cmd

import (
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/papapumpkin/lineup/internal/loader"
	"github.com/papapumpkin/lineup/internal/telemetry"
	"github.com/papapumpkin/lineup/internal/ui"
)

var exportCmd = &cobra.Command{
	Use:   "export <path> <out>",
	Short: "Rewrite an organizer directory in canonical form",
	Args:  cobra.ExactArgs(2),
	RunE:  runExport,
}

func runExport(cmd *cobra.Command, args []string) error {
	s, err := newSession()
	if err != nil {
		return err
	}
	defer s.Close()

	force, _ := cmd.Flags().GetBool("force")
	return exportTree(s.fs, s.printer, s.emitter, args[0], args[1], s.loadOptions(), force)
}

func exportTree(fs afero.Fs, p *ui.Printer, em *telemetry.Emitter, root, out string, lopts loader.Options, force bool) error {
	cfg, err := loader.Load(fs, root, lopts)
	if err != nil {
		return err
	}
	if err := loader.Export(fs, cfg, out, loader.ExportOptions{Overwrite: force}); err != nil {
		return err
	}
	_ = em.Emit(telemetry.Event{
		Kind:      telemetry.KindExportDone,
		Organizer: string(cfg.Info.ID),
		Data:      map[string]any{"output": out, "events": len(cfg.Events)},
	})
	p.Success("exported " + cfg.Info.Name + " to " + out)
	return nil
}

func init() {
	exportCmd.Flags().Bool("force", false, "replace the output directory if it exists")
	rootCmd.AddCommand(exportCmd)
}
