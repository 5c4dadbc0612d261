package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"fsanano/catalog/internal/config"
	"fsanano/catalog/internal/logger"
	"fsanano/catalog/internal/seed"

	"github.com/spf13/cobra"
)

var (
	// Used for flags.
	cfgFile  string
	seedOpts seed.Options

	rootCmd = &cobra.Command{
		Use:   "catalog",
		Short: "catalog serves users, items and their orders over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serveCmd.RunE(cmd, args)
		},
		SilenceUsage: true,
	}

	serveCmd = &cobra.Command{
		Use:   "serve",
		Short: "Create missing tables and start the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := bootstrap()
			if err != nil {
				return err
			}
			defer log.Sync()

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return serve(ctx, cfg, log)
		},
	}

	migrateCmd = &cobra.Command{
		Use:   "migrate",
		Short: "Create the users, items and orders tables if absent",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := bootstrap()
			if err != nil {
				return err
			}
			defer log.Sync()

			_, closeStore, err := openStore(cmd.Context(), cfg, log)
			if err != nil {
				return err
			}
			defer closeStore()
			log.Info("schema is up to date", "backend", cfg.StoreBackend)
			return nil
		},
	}

	seedCmd = &cobra.Command{
		Use:   "seed",
		Short: "Fill the store with fake users, items and orders",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := bootstrap()
			if err != nil {
				return err
			}
			defer log.Sync()

			st, closeStore, err := openStore(cmd.Context(), cfg, log)
			if err != nil {
				return err
			}
			defer closeStore()

			res, err := seed.Run(cmd.Context(), st, seedOpts)
			if err != nil {
				return fmt.Errorf("seeding failed: %w", err)
			}
			log.Info("seeded store", "users", res.Users, "items", res.Items, "orders", res.Orders)
			return nil
		},
	}
)

// Initialize commands
func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (environment variables take precedence)")

	seedCmd.Flags().IntVar(&seedOpts.Users, "users", 10, "number of users to create")
	seedCmd.Flags().IntVar(&seedOpts.Items, "items", 5, "number of items to create")
	seedCmd.Flags().IntVar(&seedOpts.MaxOrders, "max-orders", 3, "maximum orders per user")
	seedCmd.Flags().Uint64Var(&seedOpts.Seed, "seed", 0, "random seed (0 picks one)")

	rootCmd.AddCommand(serveCmd, migrateCmd, seedCmd)
}

func bootstrap() (*config.Config, *logger.Logger, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	log, err := logger.New(cfg.LogMode)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to build logger: %w", err)
	}
	return cfg, log, nil
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
