package main

import (
	"fmt"
	"os"

	"datacatalog/internal/formatter"
	"datacatalog/pkg/metadata"

	"github.com/spf13/cobra"
)

func newVerifyCmd(_ *app) *cobra.Command {
	var write bool

	cmd := &cobra.Command{
		Use:   "verify <report.md>...",
		Short: "Check that exported reports were not edited",
		Long: `Check the metadata hash of exported Markdown reports.

With --write, each report's tables are re-aligned and the report is signed again.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			failed := 0

			for _, path := range args {
				content, err := os.ReadFile(path)
				if err != nil {
					return fmt.Errorf("failed to read %s: %w", path, err)
				}

				if write {
					formatted, err := formatter.FormatMarkdown(string(content))
					if err != nil {
						return err
					}

					if err := os.WriteFile(path, []byte(formatted), 0o644); err != nil {
						return fmt.Errorf("failed to write %s: %w", path, err)
					}

					content = []byte(formatted)
				}

				if ok, err := metadata.Verify(string(content)); !ok {
					fmt.Fprintf(out, "❌ %s: %v\n", path, err)
					failed++

					continue
				}

				meta, _ := metadata.Extract(string(content))
				fmt.Fprintf(out, "✅ %s: %d datasets, generated %s\n", path, meta.Datasets, meta.GeneratedAt.Format("2006-01-02 15:04"))
			}

			if failed > 0 {
				return fmt.Errorf("%d of %d reports failed verification", failed, len(args))
			}

			return nil
		},
	}

	cmd.Flags().BoolVar(&write, "write", false, "re-align tables and re-sign signed reports in place")

	return cmd
}
