package main

import (
	"fmt"
	"time"

	"datacatalog/internal/export"
	"datacatalog/internal/formatter"

	"github.com/spf13/cobra"
)

func newExportCmd(a *app) *cobra.Command {
	var outDir string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the catalog bundle, dataset details and report",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Flags().Changed("out") {
				a.cfg.Output.Dir = outDir
			}

			return a.runExport(cmd)
		},
	}

	cmd.Flags().StringVar(&outDir, "out", "", "output directory override")

	return cmd
}

func (a *app) runExport(cmd *cobra.Command) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	cat, err := a.loadCatalog(ctx, cmd)
	if err != nil {
		return err
	}

	generatedAt := time.Now().UTC()
	writer := export.NewWriter(a.cfg.Output, a.log)

	path, err := writer.WriteBundle(export.Build(cat.result.Datasets, cat.engine, generatedAt))
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "✅ Bundle written: %s\n", path)

	if a.cfg.Output.Details {
		n, err := writer.WriteDetails(cat.result.Datasets, generatedAt)
		if err != nil {
			return err
		}

		fmt.Fprintf(out, "✅ %d dataset pages written\n", n)
	}

	if a.cfg.Output.Report {
		state, err := cat.store.Snapshot()
		if err != nil {
			return err
		}

		opts := formatter.DefaultReportOptions()
		opts.GeneratedAt = generatedAt

		path, err := writer.WriteReport(formatter.CatalogReport(state, opts))
		if err != nil {
			return err
		}

		fmt.Fprintf(out, "✅ Report written: %s\n", path)
	}

	return nil
}
