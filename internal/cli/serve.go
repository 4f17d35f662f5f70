package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"docquery/internal/api"
)

var (
	serveHost string
	servePort int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API server",
	Long: `Run the document query HTTP API.

Endpoints:
  GET  /health             liveness and backend status
  POST /api/v1/query       answer questions against a document (bearer auth)
  GET  /api/v1/config      sanitized configuration (bearer auth)
  GET  /api/v1/cache/info  cached document references (bearer auth)`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveHost, "host", "", "bind host (default from config)")
	serveCmd.Flags().IntVar(&servePort, "port", 0, "bind port (default from config)")
}

func runServe(cmd *cobra.Command, args []string) error {
	engine, cleanup, err := buildEngine(cfg, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	apiKey := cfg.Server.APIKey()
	if apiKey == "" {
		logger.Warn("no API key set, authenticated endpoints will reject all requests",
			"env", cfg.Server.APIKeyEnv)
	}

	host := cfg.Server.Host
	if serveHost != "" {
		host = serveHost
	}
	port := cfg.Server.Port
	if servePort > 0 {
		port = servePort
	}

	server := api.NewServer(engine, apiKey, sanitizedConfig(cfg), logger)
	if err := server.ListenAndServe(host, port); err != nil {
		return fmt.Errorf("server failed: %w", err)
	}
	return nil
}
