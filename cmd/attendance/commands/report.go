package commands

import (
	"fmt"
	"path/filepath"

	"office-attendance/internal/report"
	"office-attendance/internal/service"

	"github.com/pkg/browser"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var (
	reportQuery service.Query
	section     string

	exportQuery   service.Query
	exportFormats string
	exportFacts   bool
	exportOpen    bool
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Print one report table as JSON",
	Long: `Print one report table as JSON.

Sections: period, daily, weekly, stability, division, employees, facts, session.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		var (
			data any
			err  error
		)
		switch section {
		case "period":
			data, err = svc.Period(ctx, reportQuery)
		case "daily":
			data, err = svc.Daily(ctx, reportQuery)
		case "weekly":
			data, err = svc.Weekly(ctx, reportQuery)
		case "stability":
			data, err = svc.Stability(ctx, reportQuery)
		case "division":
			data, err = svc.Division(ctx, reportQuery)
		case "employees":
			data, err = svc.Employees(ctx, reportQuery)
		case "facts":
			data, err = svc.Facts(ctx, reportQuery)
		case "session":
			data, err = svc.Session(ctx)
		default:
			return fmt.Errorf("unknown section %q", section)
		}
		if err != nil {
			return err
		}
		return printJSON(cmd, data)
	},
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write the report tables to EXPORT_DIR as CSV, JSON, Markdown or SQLite",
	RunE: func(cmd *cobra.Command, args []string) error {
		formats, err := report.ParseFormats(exportFormats)
		if err != nil {
			return err
		}
		r, err := svc.Report(cmd.Context(), exportQuery, exportFacts)
		if err != nil {
			return err
		}
		paths, err := report.Export(cmd.Context(), cfg.ExportDir, r, formats)
		if err != nil {
			return err
		}
		for _, p := range paths {
			fmt.Fprintln(cmd.OutOrStdout(), p)
		}

		if exportOpen && len(paths) > 0 {
			target := paths[0]
			for _, p := range paths {
				if filepath.Ext(p) == ".md" {
					target = p
				}
			}
			if err := browser.OpenFile(target); err != nil {
				log.Warn().Err(err).Str("path", target).Msg("Failed to open export")
			}
		}
		return nil
	},
}

func init() {
	addQueryFlags(reportCmd, &reportQuery)
	reportCmd.Flags().StringVar(&section, "section", "period", "table to print")
	rootCmd.AddCommand(reportCmd)

	addQueryFlags(exportCmd, &exportQuery)
	exportCmd.Flags().StringVar(&exportFormats, "format", "csv", "comma separated formats: csv, json, md, sqlite")
	exportCmd.Flags().BoolVar(&exportFacts, "facts", false, "include the employee-day fact table")
	exportCmd.Flags().BoolVar(&exportOpen, "open", false, "open the written report (Markdown if exported) with the default application")
	rootCmd.AddCommand(exportCmd)
}
