package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"io"
	"reflect"
	"strings"
	"testing"

	"github.com/lehigh-university-libraries/doccatalog/internal/models"
	"github.com/parquet-go/parquet-go"
	"gopkg.in/yaml.v3"
)

var sample = models.Manifest{
	{Title: "Player Handbook", Description: "Core rules, \"2e\"", Path: "pdfs/phb.pdf", Category: "rules", Type: "pdf"},
	{Title: "Intro", Description: "", Path: "videos/intro.mp4", Category: "", Type: "video"},
}

func TestFormatFromPath(t *testing.T) {
	tests := []struct {
		path     string
		expected string
		wantErr  bool
	}{
		{path: "out.json", expected: FormatJSON},
		{path: "out.YAML", expected: FormatYAML},
		{path: "out.yml", expected: FormatYAML},
		{path: "out.csv", expected: FormatCSV},
		{path: "dir/out.parquet", expected: FormatParquet},
		{path: "out.txt", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got, err := FormatFromPath(tt.path)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Expected error=%v, got %v", tt.wantErr, err)
			}
			if got != tt.expected {
				t.Errorf("Expected %s, got %s", tt.expected, got)
			}
		})
	}
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, FormatJSON, "content/list.json", sample); err != nil {
		t.Fatal(err)
	}

	var decoded models.Manifest
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("Export is not valid JSON: %v", err)
	}
	if !reflect.DeepEqual(decoded, sample) {
		t.Errorf("Expected %v, got %v", sample, decoded)
	}
}

func TestWriteJSONEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, FormatJSON, "", nil); err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(buf.String()) != "[]" {
		t.Errorf("Expected empty array, got %q", buf.String())
	}
}

func TestWriteYAML(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, FormatYAML, "content/list.json", sample); err != nil {
		t.Fatal(err)
	}

	var doc Document
	if err := yaml.Unmarshal(buf.Bytes(), &doc); err != nil {
		t.Fatalf("Export is not valid YAML: %v", err)
	}
	if doc.Header.Source != "content/list.json" {
		t.Errorf("Expected source in header, got %s", doc.Header.Source)
	}
	if doc.Header.Entries != 2 {
		t.Errorf("Expected 2 entries in header, got %d", doc.Header.Entries)
	}
	if doc.Header.Categories["rules"] != 1 {
		t.Errorf("Expected rules=1, got %v", doc.Header.Categories)
	}
	if !reflect.DeepEqual(doc.Entries, []models.CatalogEntry(sample)) {
		t.Errorf("Expected entries %v, got %v", sample, doc.Entries)
	}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, FormatCSV, "", sample); err != nil {
		t.Fatal(err)
	}

	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("Export is not valid CSV: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("Expected header plus 2 rows, got %d", len(records))
	}
	if !reflect.DeepEqual(records[0], []string{"title", "description", "path", "category", "type"}) {
		t.Errorf("Unexpected header %v", records[0])
	}
	if records[1][1] != `Core rules, "2e"` {
		t.Errorf("Expected quoted description to survive, got %q", records[1][1])
	}
}

func TestWriteParquet(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, FormatParquet, "", sample); err != nil {
		t.Fatal(err)
	}

	file, err := parquet.OpenFile(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	if err != nil {
		t.Fatalf("Export is not valid parquet: %v", err)
	}
	if file.NumRows() != 2 {
		t.Fatalf("Expected 2 rows, got %d", file.NumRows())
	}

	reader := parquet.NewGenericReader[models.CatalogEntry](file)
	defer reader.Close()

	rows := make([]models.CatalogEntry, 2)
	n, err := reader.Read(rows)
	if err != nil && err != io.EOF {
		t.Fatal(err)
	}
	if n != 2 {
		t.Fatalf("Expected to read 2 rows, got %d", n)
	}
	if !reflect.DeepEqual(models.Manifest(rows), sample) {
		t.Errorf("Expected %v, got %v", sample, rows)
	}
}

func TestWriteUnsupportedFormat(t *testing.T) {
	if err := Write(io.Discard, "xml", "", sample); err == nil {
		t.Error("Expected error for unsupported format")
	}
}
