package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/onnwee/optimize-kit/backend/internal/config"
	"github.com/onnwee/optimize-kit/backend/internal/logger"
	"github.com/onnwee/optimize-kit/backend/internal/server"
)

func newServeCmd() *cobra.Command {
	var (
		envFile    string
		addr       string
		routesFile string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the demo API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			envErr := godotenv.Load(envFile)

			cfg := config.Load()
			if addr != "" {
				cfg.ListenAddr = addr
			}
			if routesFile != "" {
				cfg.RoutesFile = routesFile
			}
			logger.Init(cfg.LogLevel)
			if envErr != nil {
				logger.Info("env file not loaded, using process environment", "file", envFile)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return server.Run(ctx, cfg)
		},
	}

	cmd.Flags().StringVar(&envFile, "env-file", ".env", "dotenv file to load before reading the environment")
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides LISTEN_ADDR)")
	cmd.Flags().StringVar(&routesFile, "routes", "", "route policy file (overrides ROUTES_FILE)")
	return cmd
}
