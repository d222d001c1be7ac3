package cmd

import (
	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show row counts for every table in the database",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
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

		counts, err := st.TableCounts(ctx)
		if err != nil {
			return err
		}
		s.printer.TableCounts(string(st.Driver()), counts)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
