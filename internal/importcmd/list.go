package importcmd

import (
	"fmt"
	"io"
	"sort"
	"strconv"

	"github.com/lehigh-university-libraries/doccatalog/internal/catalog"
	"github.com/lehigh-university-libraries/doccatalog/internal/config"
	"github.com/lehigh-university-libraries/doccatalog/internal/models"
	"github.com/spf13/cobra"
)

// NewListCmd creates the list command
func NewListCmd(cfg *config.Config) *cobra.Command {
	var category string
	var docType string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Show the entries in the manifest",
		Example: `  doccatalog list
  doccatalog list --category rules
  doccatalog list --only-type video`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return executeList(catalog.Open(*cfg), category, docType, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVar(&category, "category", "", "Only show entries in this category")
	cmd.Flags().StringVar(&docType, "only-type", "", "Only show entries of this type")

	return cmd
}

// NewCategoriesCmd creates the categories command
func NewCategoriesCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "categories",
		Short: "Show the categories used in the manifest",
		RunE: func(cmd *cobra.Command, args []string) error {
			return executeCategories(catalog.Open(*cfg), cmd.OutOrStdout())
		},
	}
}

func executeList(ws *catalog.Workspace, category, docType string, out io.Writer) error {
	m, _ := ws.Manifest()

	var rows [][]string
	for i, entry := range filterEntries(m, category, docType) {
		rows = append(rows, []string{strconv.Itoa(i + 1), entry.Title, entry.Category, entry.Type, entry.Path})
	}

	if len(rows) == 0 {
		fmt.Fprintln(out, "No matching entries.")
		return nil
	}

	fmt.Fprintln(out, renderTable(
		[]column{right("#"), left("Title"), left("Category"), left("Type"), left("Path")},
		rows,
	))
	fmt.Fprintf(out, "%d of %d entries\n", len(rows), len(m))
	return nil
}

func filterEntries(m models.Manifest, category, docType string) models.Manifest {
	var out models.Manifest
	for _, entry := range m {
		if category != "" && entry.Category != category {
			continue
		}
		if docType != "" && entry.Type != docType {
			continue
		}
		out = append(out, entry)
	}
	return out
}

func executeCategories(ws *catalog.Workspace, out io.Writer) error {
	m, _ := ws.Manifest()
	counts := m.CategoryCounts()

	if len(counts) == 0 {
		fmt.Fprintln(out, "No entries cataloged yet.")
		return nil
	}

	names := make([]string, 0, len(counts))
	for name := range counts {
		names = append(names, name)
	}
	sort.Strings(names)

	rows := make([][]string, 0, len(names))
	for _, name := range names {
		label := name
		if label == "" {
			label = "(none)"
		}
		rows = append(rows, []string{label, strconv.Itoa(counts[name])})
	}

	fmt.Fprintln(out, renderTable([]column{left("Category"), right("Entries")}, rows))
	return nil
}
