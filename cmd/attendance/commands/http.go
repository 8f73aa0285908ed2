package commands

import (
	"office-attendance/internal/api"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
)

var httpAddr string

var httpCmd = &cobra.Command{
	Use:   "http",
	Short: "Serve the attendance reports over HTTP",
	RunE: func(cmd *cobra.Command, args []string) error {
		if !verbose {
			gin.SetMode(gin.ReleaseMode)
		}
		addr := cfg.HTTPAddr
		if httpAddr != "" {
			addr = httpAddr
		}
		// Load eagerly so source problems surface at startup.
		if _, err := svc.Session(cmd.Context()); err != nil {
			return err
		}
		return api.Serve(cmd.Context(), addr, api.SetupRouter(cfg, svc))
	},
}

func init() {
	httpCmd.Flags().StringVar(&httpAddr, "addr", "", "listen address (default HTTP_ADDR)")
	rootCmd.AddCommand(httpCmd)
}
