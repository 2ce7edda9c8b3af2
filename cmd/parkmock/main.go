// parkmock - contract-driven mock API server for the parking-reservation app.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/parkit/parkmock/pkg/config"
	"github.com/parkit/parkmock/pkg/contract"
	"github.com/parkit/parkmock/pkg/engine"
	"github.com/parkit/parkmock/pkg/logging"
	"github.com/parkit/parkmock/pkg/seed"
	"github.com/parkit/parkmock/pkg/store"
)

// Build-time variables set via ldflags.
var (
	version = "dev"
	commit  = "unknown"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "parkmock",
		Short:         "Contract-driven mock API server for the parking-reservation app",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newServeCmd(), newVersionCmd())
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "parkmock %s (%s)\n", version, commit)
		},
	}
}

func newServeCmd() *cobra.Command {
	var (
		configFile string
		specFile   string
		listenAddr string
		seedFile   string
		pathPrefix string
		logLevel   string
		logFormat  string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the mock server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			// Environment from an optional .env file; absence is fine.
			_ = godotenv.Load()

			cfg := config.Default()
			if configFile != "" {
				loaded, err := config.Load(configFile)
				if err != nil {
					return err
				}
				cfg = loaded
			}
			cfg.ApplyEnv()

			// Flags take priority over file and environment.
			if specFile != "" {
				cfg.SpecFile = specFile
			}
			if listenAddr != "" {
				cfg.ListenAddr = listenAddr
			}
			if seedFile != "" {
				cfg.SeedFile = seedFile
			}
			if cmd.Flags().Changed("path-prefix") {
				cfg.PathPrefix = pathPrefix
			}
			if logLevel != "" {
				cfg.Log.Level = logLevel
			}
			if logFormat != "" {
				cfg.Log.Format = logFormat
			}

			if err := cfg.Validate(); err != nil {
				return err
			}
			return runServe(cmd.Context(), cfg)
		},
	}

	cmd.Flags().StringVarP(&configFile, "config", "c", "", "path to YAML config file")
	cmd.Flags().StringVar(&specFile, "spec", "", "path to the OpenAPI contract")
	cmd.Flags().StringVarP(&listenAddr, "listen", "l", "", "listen address (default :4280)")
	cmd.Flags().StringVar(&seedFile, "seed", "", "path to a YAML seed document")
	cmd.Flags().StringVar(&pathPrefix, "path-prefix", "/api", "path prefix stripped before routing")
	cmd.Flags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")
	cmd.Flags().StringVar(&logFormat, "log-format", "", "log format (text, json)")

	return cmd
}

func runServe(ctx context.Context, cfg *config.Config) error {
	log := logging.New(logging.Config{
		Level:  logging.ParseLevel(cfg.Log.Level),
		Format: logging.ParseFormat(cfg.Log.Format),
	})

	apiContract, err := contract.Load(cfg.SpecFile)
	if err != nil {
		return err
	}
	log.Info("contract loaded", "spec", cfg.SpecFile, "operations", len(apiContract.OperationIDs()))

	seedData := seed.Default()
	if cfg.SeedFile != "" {
		seedData, err = seed.Load(cfg.SeedFile)
		if err != nil {
			return err
		}
	}
	st := store.New()
	seedData.Apply(st)

	handler, err := engine.New(
		apiContract,
		st,
		engine.Credentials{Email: cfg.Auth.Email, Password: cfg.Auth.Password},
		engine.WithLogger(log),
		engine.WithPathPrefix(cfg.PathPrefix),
	)
	if err != nil {
		return err
	}

	server := engine.NewServer(engine.ServerConfig{
		ListenAddr:     cfg.ListenAddr,
		AllowedOrigins: cfg.AllowedOrigins,
		AccessLog:      cfg.AccessLog,
	}, handler, log)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() { errCh <- server.Start() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	}
}
