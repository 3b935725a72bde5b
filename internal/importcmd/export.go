package importcmd

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/lehigh-university-libraries/doccatalog/internal/catalog"
	"github.com/lehigh-university-libraries/doccatalog/internal/config"
	"github.com/lehigh-university-libraries/doccatalog/internal/export"
	"github.com/spf13/cobra"
)

// NewExportCmd creates the export command
func NewExportCmd(cfg *config.Config) *cobra.Command {
	var format string
	var output string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the manifest as JSON, YAML, CSV or Parquet",
		Long: `Writes the manifest in another format. The format is taken from --format,
or from the --output file extension when --format is not given.`,
		Example: `  # YAML to stdout
  doccatalog export --format yaml

  # Parquet file for analysis
  doccatalog export --output catalog.parquet`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if format == "" {
				if output == "" {
					format = export.FormatJSON
				} else {
					f, err := export.FormatFromPath(output)
					if err != nil {
						return err
					}
					format = f
				}
			}
			if format == export.FormatParquet && output == "" {
				return fmt.Errorf("--output is required for parquet")
			}

			return executeExport(catalog.Open(*cfg), format, output, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "", "Output format ("+strings.Join(export.Formats, ", ")+")")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (default stdout)")

	return cmd
}

func executeExport(ws *catalog.Workspace, format, output string, stdout io.Writer) error {
	m, _ := ws.Manifest()

	if output == "" {
		return export.Write(stdout, format, ws.Store().Path(), m)
	}

	file, err := os.Create(output)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer file.Close()

	w := bufio.NewWriter(file)
	if err := export.Write(w, format, ws.Store().Path(), m); err != nil {
		return err
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("failed to close output file: %w", err)
	}

	slog.Info("Exported manifest", "format", format, "output", output, "entries", len(m))
	return nil
}
