package commands

import (
	"fmt"
	"path/filepath"

	"office-attendance/internal/badge"

	"github.com/spf13/cobra"
)

var (
	mergeNoBackup bool
	mergeKeep     int
)

var mergeCmd = &cobra.Command{
	Use:   "merge <new-export.csv>",
	Short: "Merge a new badge export into the master badge log",
	Long: `Merge a new badge export into the master badge log (BADGE_LOG_PATH).

Swipes already present are skipped. The previous master file is backed up
next to it and only the newest backups are kept.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		master := cfg.BadgeLogPath
		res, err := badge.Merge(master, args[0], master, cfg.Location, !mergeNoBackup)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "existing: %d, incoming: %d, added: %d, total: %d\n", res.Existing, res.Incoming, res.Added, res.Total)
		if res.Undated > 0 {
			fmt.Fprintf(out, "rows kept without a usable timestamp: %d\n", res.Undated)
		}
		if res.BackupPath != "" {
			fmt.Fprintf(out, "backup: %s\n", res.BackupPath)
		}

		if mergeKeep > 0 {
			removed, err := badge.PruneBackups(filepath.Dir(master), filepath.Base(master), mergeKeep)
			if err != nil {
				return err
			}
			for _, p := range removed {
				fmt.Fprintf(out, "removed backup: %s\n", p)
			}
		}
		return nil
	},
}

func init() {
	mergeCmd.Flags().BoolVar(&mergeNoBackup, "no-backup", false, "do not back up the master file")
	mergeCmd.Flags().IntVar(&mergeKeep, "keep", 5, "number of backups to keep (0 keeps all)")
	rootCmd.AddCommand(mergeCmd)
}
