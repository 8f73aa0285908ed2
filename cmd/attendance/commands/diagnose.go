package commands

import (
	"github.com/spf13/cobra"
)

var explainSegment string

var diagnoseCmd = &cobra.Command{
	Use:   "diagnose",
	Short: "Print the data-quality report of the configured sources",
	RunE: func(cmd *cobra.Command, args []string) error {
		res, err := svc.Quality(cmd.Context())
		if err != nil {
			return err
		}
		return printJSON(cmd, res)
	},
}

var explainCmd = &cobra.Command{
	Use:   "explain <employee> <YYYY-MM-DD>",
	Short: "Explain whether an employee counts in the segment on a date",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ex, err := svc.Explain(cmd.Context(), args[0], args[1], explainSegment)
		if err != nil {
			return err
		}
		return printJSON(cmd, ex)
	},
}

func init() {
	explainCmd.Flags().StringVar(&explainSegment, "segment", "", "segment tag (default: configured segment)")
	diagnoseCmd.AddCommand(explainCmd)
	rootCmd.AddCommand(diagnoseCmd)
}
