/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/go-kit/log/level"
	"github.com/spf13/cobra"

	"github.com/ssargent/minfmt/pkg/api"
	"github.com/ssargent/minfmt/pkg/config"
)

// autoAPIKey in the configuration asks serve to generate a key per run.
const autoAPIKey = "auto"

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long: `Start the minfmt REST API. Requests under /api/v1 must carry the
configured key in the X-API-Key header; /metrics is open for scraping.

Examples:
  minfmt serve
  minfmt serve --bind 0.0.0.0 --port 9000 --api-key mysecretkey`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := container.Config()
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("bind") {
			cfg.Server.Bind, _ = cmd.Flags().GetString("bind")
		}
		if cmd.Flags().Changed("port") {
			cfg.Server.Port, _ = cmd.Flags().GetInt("port")
		}
		if key, _ := cmd.Flags().GetString("api-key"); key != "" {
			cfg.Server.APIKey = key
		}
		if cfg.Server.APIKey == "" || cfg.Server.APIKey == autoAPIKey {
			key, err := config.GenerateSecureKey(32)
			if err != nil {
				return err
			}
			cfg.Server.APIKey = key
			fmt.Fprintf(cmd.OutOrStdout(), "Generated API key for this run: %s\n", key)
		}

		dc, err := container.Codec()
		if err != nil {
			return err
		}
		jobs, err := container.Catalog()
		if err != nil {
			return err
		}
		var store api.JobStore
		if jobs != nil {
			defer jobs.Close()
			store = jobs
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		logger := container.Logger()
		level.Info(logger).Log("msg", "metrics available", "url", fmt.Sprintf("http://%s:%d/metrics", cfg.Server.Bind, cfg.Server.Port))

		starter := container.GetServerFactory().CreateServerStarter(logger)
		return starter.StartServer(ctx, dc, store, api.ServerConfig{
			Bind:         cfg.Server.Bind,
			Port:         cfg.Server.Port,
			APIKey:       cfg.Server.APIKey,
			MaxBodyBytes: cfg.Server.MaxBodyBytes,
		})
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("bind", "127.0.0.1", "Address to bind server to")
	serveCmd.Flags().IntP("port", "p", 8090, "Port to listen on")
	serveCmd.Flags().String("api-key", "", "API key required in X-API-Key (default: from config)")
}
