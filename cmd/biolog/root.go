package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/katsunarinishio0430-cmd/biolog-app/config"
	"github.com/katsunarinishio0430-cmd/biolog-app/estimator"
	"github.com/katsunarinishio0430-cmd/biolog-app/store"
	"github.com/katsunarinishio0430-cmd/biolog-app/tracker"
)

type rootOptions struct {
	sqlitePath string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:           "biolog",
		Short:         "biolog tracks workouts, meals and daily energy balance",
		Long:          "biolog logs workouts and meals to the configured record store and rebuilds the per-day energy balance summary.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVar(&opts.sqlitePath, "sqlite", "", "Use this SQLite file instead of the configured store")

	cmd.AddCommand(
		newSummaryCmd(opts),
		newWorkoutCmd(opts),
		newMealCmd(opts),
		newProfileCmd(opts),
		newBMRCmd(),
		newEstimateCmd(),
	)
	return cmd
}

// env is what a store-backed command runs with.
type env struct {
	cfg *config.Config
	svc *tracker.Service
	log *zap.SugaredLogger
}

// withService loads config, opens the store and runs fn.
func withService(ctx context.Context, opts *rootOptions, fn func(env) error) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if opts.sqlitePath != "" {
		cfg.StoreBackend = "sqlite"
		cfg.SQLitePath = opts.sqlitePath
	}
	log, err := config.NewLogger(cfg.Env, cfg.LogLevel)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	st, err := store.Open(ctx, store.Options{
		Backend:    cfg.StoreBackend,
		DSN:        cfg.DBURL,
		SQLitePath: cfg.SQLitePath,
	})
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()

	return fn(env{cfg: cfg, svc: tracker.New(st, log), log: log})
}

// newEstimator builds the configured estimator for one-off CLI use.
func newEstimator(cfg *config.Config) (*estimator.Client, error) {
	return estimator.New(estimator.Config{
		Provider: cfg.EstimatorProvider,
		APIKey:   cfg.EstimatorAPIKey(),
		BaseURL:  cfg.EstimatorBaseURL(),
		Model:    cfg.EstimatorModel(),
		Timeout:  cfg.EstimatorTimeout,
	})
}
