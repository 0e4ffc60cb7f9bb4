package main

import (
	"context"
	"fmt"
	"time"

	"datacatalog/internal/config"
	"datacatalog/internal/facets"
	"datacatalog/internal/logger"
	"datacatalog/internal/normalizer"
	"datacatalog/internal/source"
	"datacatalog/internal/store"

	"github.com/spf13/cobra"
)

// app carries the state shared by all subcommands.
type app struct {
	cfgFile  string
	logLevel string
	source   string

	cfg *config.Config
	log *logger.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:           "catalog",
		Short:         "Browse and export a dataset catalog",
		Long:          `catalog loads a dataset catalog, computes facet statistics and exports the static browser bundle.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
		PersistentPostRunE: func(_ *cobra.Command, _ []string) error {
			if a.log != nil {
				return a.log.Close()
			}

			return nil
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.cfgFile, "config", "", "path to YAML configuration file")
	flags.StringVar(&a.logLevel, "log-level", "", "log level override (debug, info, warn, error)")
	flags.StringVar(&a.source, "source", "", "catalog location override (file path or http(s) URL)")

	root.AddCommand(
		newExportCmd(a),
		newStatsCmd(a),
		newSearchCmd(a),
		newVerifyCmd(a),
	)

	return root
}

// setup loads the configuration and applies flag overrides.
func (a *app) setup(cmd *cobra.Command) error {
	cfg := config.Default()

	if a.cfgFile != "" {
		loaded, err := config.LoadConfig(a.cfgFile)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		cfg = loaded
	}

	if cmd.Flags().Changed("log-level") {
		cfg.Logging.Level = a.logLevel
	}

	if cmd.Flags().Changed("source") {
		cfg.Catalog.Source = a.source
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	a.cfg = cfg
	a.log = logger.New(cfg.Logging)
	a.log.Debug("configuration loaded", "config", cfg.String())

	return nil
}

// catalog is a loaded and normalized catalog with its store.
type catalog struct {
	result normalizer.Result
	engine *facets.Engine
	store  *store.Store
}

// loadCatalog fetches, normalizes and indexes the configured catalog.
// Progress goes to stderr so command output stays machine readable.
func (a *app) loadCatalog(ctx context.Context, cmd *cobra.Command) (*catalog, error) {
	out := cmd.ErrOrStderr()
	start := time.Now()

	fmt.Fprintf(out, "📂 Loading catalog: %s\n", a.cfg.Catalog.Source)

	raw, err := source.NewLoader(a.cfg.Catalog.Retry, a.log).Load(ctx, a.cfg.Catalog.Source)
	if err != nil {
		return nil, err
	}

	result := normalizer.NewProcessor(a.log).Process(*raw)
	if len(result.Issues) > 0 {
		fmt.Fprintf(out, "⚠️  %d record issues (see log)\n", len(result.Issues))
	}

	engine, err := facets.NewEngine(facets.OptionsFromConfig(a.cfg.Facets))
	if err != nil {
		return nil, err
	}

	s, err := store.New(result.Datasets, normalizer.CountryNames(result.Datasets), facets.ValueCounts{}, engine,
		store.WithLogger(a.log.With("component", "store")))
	if err != nil {
		return nil, err
	}

	fmt.Fprintf(out, "📊 %d datasets normalized in %s\n", len(result.Datasets), time.Since(start).Round(time.Millisecond))

	return &catalog{result: result, engine: engine, store: s}, nil
}
