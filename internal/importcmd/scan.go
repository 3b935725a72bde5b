package importcmd

import (
	"fmt"
	"io"
	"strconv"

	"github.com/lehigh-university-libraries/doccatalog/internal/catalog"
	"github.com/lehigh-university-libraries/doccatalog/internal/config"
	"github.com/lehigh-university-libraries/doccatalog/internal/manifest"
	"github.com/spf13/cobra"
)

// NewScanCmd creates the scan command, a dry run of import
func NewScanCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "scan",
		Short: "List documents that are not yet cataloged",
		Long: `Lists the files in the source directory that an import would offer, in the
order it would offer them. Nothing is written.`,
		Example: `  doccatalog scan
  doccatalog scan --source videos --ext .mp4`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return executeScan(catalog.Open(*cfg), cmd.OutOrStdout())
		},
	}
}

func executeScan(ws *catalog.Workspace, out io.Writer) error {
	snapshot, err := ws.Pending()
	if err != nil {
		return fmt.Errorf("failed to scan for new documents: %w", err)
	}

	if snapshot.LoadState != manifest.Loaded && snapshot.LoadState != manifest.Missing {
		fmt.Fprintf(out, "Warning: %s is %s; treating it as empty.\n", ws.Store().Path(), snapshot.LoadState)
	}

	cfg := ws.Config()
	if len(snapshot.Candidates) == 0 {
		fmt.Fprintf(out, "No new %s files found to import.\n", cfg.Extension)
		return nil
	}

	rows := make([][]string, 0, len(snapshot.Candidates))
	for i, c := range snapshot.Candidates {
		rows = append(rows, []string{strconv.Itoa(i + 1), c.Name, c.Path, c.DefaultTitle()})
	}

	fmt.Fprintln(out, renderTable(
		[]column{right("#"), left("File"), left("Path"), left("Default Title")},
		rows,
	))
	fmt.Fprintf(out, "%d new, %d already cataloged\n", len(snapshot.Candidates), len(snapshot.Manifest))
	return nil
}
