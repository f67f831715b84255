package main

import (
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/leengari/linkplanner/internal/collection"
	"github.com/leengari/linkplanner/internal/logging"
	"github.com/leengari/linkplanner/internal/network"
	"github.com/leengari/linkplanner/internal/planner"
	"github.com/leengari/linkplanner/internal/repl"
)

func newReplCmd() *cobra.Command {
	var sourceSize, targetSize int
	cmd := &cobra.Command{
		Use:   "repl",
		Short: "plans specifications typed one per line",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			opts, err := cfg.PlannerOptions()
			if err != nil {
				return err
			}
			p := planner.New(collection.Fixed(sourceSize), collection.Fixed(targetSize), opts...)
			return repl.Start(cmd.InOrStdin(), cmd.OutOrStdout(), p, cfg.Catalog())
		},
	}
	cmd.Flags().IntVar(&sourceSize, "source-size", 1000, "number of source records")
	cmd.Flags().IntVar(&targetSize, "target-size", 1000, "number of target records")
	return cmd
}

func newServeCmd() *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "answers JSON planning requests over TCP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			logger, cleanup, err := logging.SetupLogger(cfg.Logging, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer cleanup()
			slog.SetDefault(logger)

			opts, err := cfg.PlannerOptions()
			if err != nil {
				return err
			}
			opts = append(opts, planner.WithObservers(planner.NewLoggingObserver()))
			// sizes come with each request
			p := planner.New(collection.Fixed(0), collection.Fixed(0), opts...)

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return network.NewServer(p).ListenAndServe(ctx, addr)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", ":4747", "listen address")
	return cmd
}
