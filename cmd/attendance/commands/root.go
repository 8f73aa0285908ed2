package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"office-attendance/internal/config"
	"office-attendance/internal/logging"
	"office-attendance/internal/mcp"
	"office-attendance/internal/service"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var (
	// Version, Commit, and BuildDate are set at build time via ldflags.
	Version   = "dev"
	Commit    = "none"
	BuildDate = "unknown"

	verbose bool
	cfg     *config.AppConfig
	svc     *service.AttendanceService
)

var rootCmd = &cobra.Command{
	Use:   "attendance",
	Short: "Office attendance reporting from badge access logs",
	Long: `Joins badge access logs with the HR roster and employment status history
and reports office attendance against the employees eligible on each day.

Without a subcommand the MCP server runs on stdio.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logging.Init(verbose)

		var err error
		cfg, err = config.Load()
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to load configuration")
		}
		svc = service.NewAttendanceService(cfg)

		log.Info().
			Str("version", Version).
			Str("commit", Commit).
			Str("buildDate", BuildDate).
			Str("command", cmd.Name()).
			Msg("Attendance starting")
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		server, err := mcp.NewServer(cfg, svc, Version)
		if err != nil {
			return err
		}
		return server.Start(cmd.Context())
	},
}

// Execute runs the root command with a context cancelled on SIGINT/SIGTERM.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
}

// addQueryFlags registers the window and segment flags shared by report commands.
func addQueryFlags(cmd *cobra.Command, q *service.Query) {
	cmd.Flags().StringVar(&q.Start, "start", "", "first day of the window (YYYY-MM-DD)")
	cmd.Flags().StringVar(&q.End, "end", "", "last day of the window (YYYY-MM-DD)")
	cmd.Flags().IntVar(&q.Days, "days", 0, "days ending on the latest badge date (default DEFAULT_ANALYSIS_DAYS)")
	cmd.Flags().StringVar(&q.Segment, "segment", "", "segment tag (default: configured segment)")
}

func printJSON(cmd *cobra.Command, v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), string(out))
	return err
}
