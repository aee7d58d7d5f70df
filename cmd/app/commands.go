package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"FinLab/internal/di"
	"FinLab/pkg/config"
	"FinLab/pkg/server"
)

type rootOptions struct {
	configPath string
	trainFrac  float64
	valFrac    float64
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:           "finlab",
		Short:         "Daily-bar dataset, regime labels and baseline classifier",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.PersistentFlags().StringVar(&opts.configPath, "config", "config/config.yaml", "config file path")

	root.AddCommand(downloadCmd(opts))
	root.AddCommand(buildCmd(opts))
	root.AddCommand(trainCmd(opts))
	root.AddCommand(runCmd(opts))
	root.AddCommand(serveCmd(opts))
	return root
}

// withApp loads config, wires the app, runs fn and releases resources.
func withApp(cmd *cobra.Command, opts *rootOptions, fn func(a *server.App) error) error {
	cfg, err := config.LoadWithEnv(opts.configPath)
	if err != nil {
		return fmt.Errorf("config load failed: %w", err)
	}
	if err := applySplitFlags(cmd, cfg, opts); err != nil {
		return err
	}

	app, err := di.InitializeApp(cfg)
	if err != nil {
		return fmt.Errorf("app initialization failed: %w", err)
	}
	defer app.Close()

	if err := fn(app); err != nil {
		app.Logger().Error(cmd.Name() + " failed: " + err.Error())
		return err
	}
	return nil
}

func applySplitFlags(cmd *cobra.Command, cfg *config.Config, opts *rootOptions) error {
	changed := false
	if f := cmd.Flags().Lookup("train-frac"); f != nil && f.Changed {
		cfg.Dataset.TrainFrac = opts.trainFrac
		changed = true
	}
	if f := cmd.Flags().Lookup("val-frac"); f != nil && f.Changed {
		cfg.Dataset.ValFrac = opts.valFrac
		changed = true
	}
	if !changed {
		return nil
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid split flags: %w", err)
	}
	return nil
}

func addSplitFlags(cmd *cobra.Command, opts *rootOptions) {
	cmd.Flags().Float64Var(&opts.trainFrac, "train-frac", 0.70, "fraction of unique dates assigned to train")
	cmd.Flags().Float64Var(&opts.valFrac, "val-frac", 0.15, "fraction of unique dates assigned to val")
}

func downloadCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "download",
		Short: "Download daily CSVs for the configured tickers",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, opts, func(a *server.App) error {
				return a.Download(cmd.Context())
			})
		},
	}
}

func buildCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "build",
		Short: "Clean raw CSVs, build features and split into the model dataset",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, opts, func(a *server.App) error {
				return a.Build(cmd.Context(), a.SplitParams())
			})
		},
	}
	addSplitFlags(cmd, opts)
	return cmd
}

func trainCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "train",
		Short: "Fit the baseline per ticker and write the report",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, opts, func(a *server.App) error {
				return a.Train(cmd.Context())
			})
		},
	}
}

func runCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Build the dataset, then train the baseline",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, opts, func(a *server.App) error {
				return a.Run(cmd.Context(), a.SplitParams())
			})
		},
	}
	addSplitFlags(cmd, opts)
	return cmd
}

func serveCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve reports and dataset summaries over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, opts, func(a *server.App) error {
				return a.Serve(cmd.Context())
			})
		},
	}
}
