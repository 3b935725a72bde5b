package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/lehigh-university-libraries/doccatalog/internal/models"
	"github.com/parquet-go/parquet-go"
	"gopkg.in/yaml.v3"
)

// Supported export formats
const (
	FormatJSON    = "json"
	FormatYAML    = "yaml"
	FormatCSV     = "csv"
	FormatParquet = "parquet"
)

// Formats lists every format Write understands
var Formats = []string{FormatJSON, FormatYAML, FormatCSV, FormatParquet}

// Header is the summary block written at the top of YAML exports
type Header struct {
	Source     string         `yaml:"source"`
	ExportedAt string         `yaml:"exportedat"`
	Entries    int            `yaml:"entries"`
	Categories map[string]int `yaml:"categories"`
}

// Document is the YAML export layout
type Document struct {
	Header  Header                `yaml:"header"`
	Entries []models.CatalogEntry `yaml:"entries"`
}

// FormatFromPath picks a format from the output file extension
func FormatFromPath(path string) (string, error) {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".csv":
		return FormatCSV, nil
	case ".parquet":
		return FormatParquet, nil
	default:
		return "", fmt.Errorf("unsupported file format: %s (supported: .json, .yaml, .csv, .parquet)", ext)
	}
}

// Write encodes manifest in format. source names the manifest file in
// formats that carry a header.
func Write(w io.Writer, format, source string, manifest models.Manifest) error {
	switch format {
	case FormatJSON:
		return writeJSON(w, manifest)
	case FormatYAML:
		return writeYAML(w, source, manifest)
	case FormatCSV:
		return writeCSV(w, manifest)
	case FormatParquet:
		return writeParquet(w, manifest)
	default:
		return fmt.Errorf("unsupported format: %s", format)
	}
}

func writeJSON(w io.Writer, manifest models.Manifest) error {
	if manifest == nil {
		manifest = models.Manifest{}
	}
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(manifest); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}

func writeYAML(w io.Writer, source string, manifest models.Manifest) error {
	doc := Document{
		Header: Header{
			Source:     source,
			ExportedAt: time.Now().Format("2006-01-02_15-04-05"),
			Entries:    len(manifest),
			Categories: manifest.CategoryCounts(),
		},
		Entries: manifest,
	}

	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	if err := encoder.Encode(&doc); err != nil {
		return fmt.Errorf("failed to marshal YAML: %w", err)
	}
	return encoder.Close()
}

func writeCSV(w io.Writer, manifest models.Manifest) error {
	writer := csv.NewWriter(w)

	if err := writer.Write([]string{"title", "description", "path", "category", "type"}); err != nil {
		return err
	}
	for _, entry := range manifest {
		row := []string{entry.Title, entry.Description, entry.Path, entry.Category, entry.Type}
		if err := writer.Write(row); err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}

func writeParquet(w io.Writer, manifest models.Manifest) error {
	writer := parquet.NewGenericWriter[models.CatalogEntry](w)

	if len(manifest) > 0 {
		if _, err := writer.Write(manifest); err != nil {
			_ = writer.Close()
			return fmt.Errorf("failed to write parquet rows: %w", err)
		}
	}

	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to close parquet writer: %w", err)
	}
	return nil
}
