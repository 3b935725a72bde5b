package importcmd

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/lehigh-university-libraries/doccatalog/internal/export"
	"github.com/lehigh-university-libraries/doccatalog/internal/models"
)

var cataloged = models.Manifest{
	{Title: "Handbook", Path: "pdfs/a.pdf", Category: "rules", Type: "pdf"},
	{Title: "Intro", Path: "videos/intro.mp4", Category: "", Type: "video"},
	{Title: "Keep", Path: "pdfs/k.pdf", Category: "adventures", Type: "pdf"},
	{Title: "Monsters", Path: "pdfs/m.pdf", Category: "rules", Type: "pdf"},
}

func TestRenderTable(t *testing.T) {
	out := renderTable([]column{right("#"), left("Default Title")}, [][]string{{"1", "a.pdf"}, {"12", "b.pdf"}})

	if !strings.Contains(out, "Default Title") {
		t.Errorf("Expected header as written, got:\n%s", out)
	}
	if strings.Contains(out, "DEFAULT TITLE") {
		t.Errorf("Expected header not to be upper-cased, got:\n%s", out)
	}
	if !strings.Contains(out, "│  1 │") {
		t.Errorf("Expected right-aligned numbers, got:\n%s", out)
	}
	if renderTable(nil, nil) != "" {
		t.Error("Expected empty table without columns")
	}
}

func TestExecuteScan(t *testing.T) {
	ws := testWorkspace(t, "b.pdf", "a.pdf", "notes.txt")
	if err := ws.Store().Save(models.Manifest{{Title: "A", Path: "pdfs/a.pdf", Type: "pdf"}}); err != nil {
		t.Fatal(err)
	}

	var out bytes.Buffer
	if err := executeScan(ws, &out); err != nil {
		t.Fatal(err)
	}

	output := out.String()
	if !strings.Contains(output, "pdfs/b.pdf") {
		t.Errorf("Expected b.pdf to be listed, got:\n%s", output)
	}
	if strings.Contains(output, "pdfs/a.pdf") || strings.Contains(output, "notes.txt") {
		t.Errorf("Expected only uncataloged PDFs, got:\n%s", output)
	}
	if !strings.Contains(output, "1 new, 1 already cataloged") {
		t.Errorf("Expected counts, got:\n%s", output)
	}

	// scan is read-only
	got, _ := ws.Store().Load()
	if len(got) != 1 {
		t.Errorf("Expected manifest untouched, got %v", got)
	}
}

func TestExecuteScanNothingNew(t *testing.T) {
	ws := testWorkspace(t)

	var out bytes.Buffer
	if err := executeScan(ws, &out); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "No new .pdf files found") {
		t.Errorf("Unexpected output:\n%s", out.String())
	}
}

func TestFilterEntries(t *testing.T) {
	tests := []struct {
		name     string
		category string
		docType  string
		expected []string
	}{
		{name: "all", expected: []string{"Handbook", "Intro", "Keep", "Monsters"}},
		{name: "category", category: "rules", expected: []string{"Handbook", "Monsters"}},
		{name: "type", docType: "video", expected: []string{"Intro"}},
		{name: "both", category: "adventures", docType: "pdf", expected: []string{"Keep"}},
		{name: "none", category: "maps", expected: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var titles []string
			for _, entry := range filterEntries(cataloged, tt.category, tt.docType) {
				titles = append(titles, entry.Title)
			}
			if !reflect.DeepEqual(titles, tt.expected) {
				t.Errorf("Expected %v, got %v", tt.expected, titles)
			}
		})
	}
}

func TestExecuteList(t *testing.T) {
	ws := testWorkspace(t)
	if err := ws.Store().Save(cataloged); err != nil {
		t.Fatal(err)
	}

	var out bytes.Buffer
	if err := executeList(ws, "rules", "", &out); err != nil {
		t.Fatal(err)
	}
	output := out.String()
	if !strings.Contains(output, "Monsters") || strings.Contains(output, "Intro") {
		t.Errorf("Unexpected list output:\n%s", output)
	}
	if !strings.Contains(output, "2 of 4 entries") {
		t.Errorf("Expected counts, got:\n%s", output)
	}
}

func TestExecuteCategories(t *testing.T) {
	ws := testWorkspace(t)

	var out bytes.Buffer
	if err := executeCategories(ws, &out); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "No entries cataloged yet") {
		t.Errorf("Unexpected output for empty manifest:\n%s", out.String())
	}

	if err := ws.Store().Save(cataloged); err != nil {
		t.Fatal(err)
	}
	out.Reset()
	if err := executeCategories(ws, &out); err != nil {
		t.Fatal(err)
	}
	output := out.String()
	for _, want := range []string{"rules", "adventures", "(none)"} {
		if !strings.Contains(output, want) {
			t.Errorf("Expected %q in output:\n%s", want, output)
		}
	}
}

func TestExecuteExportStdout(t *testing.T) {
	ws := testWorkspace(t)
	if err := ws.Store().Save(cataloged); err != nil {
		t.Fatal(err)
	}

	var out bytes.Buffer
	if err := executeExport(ws, export.FormatJSON, "", &out); err != nil {
		t.Fatal(err)
	}

	var decoded models.Manifest
	if err := json.Unmarshal(out.Bytes(), &decoded); err != nil {
		t.Fatalf("Expected JSON on stdout: %v", err)
	}
	if !reflect.DeepEqual(decoded, cataloged) {
		t.Errorf("Expected %v, got %v", cataloged, decoded)
	}
}

func TestExecuteExportFile(t *testing.T) {
	ws := testWorkspace(t)
	if err := ws.Store().Save(cataloged); err != nil {
		t.Fatal(err)
	}

	output := filepath.Join(t.TempDir(), "catalog.csv")
	var stdout bytes.Buffer
	if err := executeExport(ws, export.FormatCSV, output, &stdout); err != nil {
		t.Fatal(err)
	}
	if stdout.Len() != 0 {
		t.Errorf("Expected nothing on stdout, got %q", stdout.String())
	}

	data, err := os.ReadFile(output)
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != len(cataloged)+1 {
		t.Errorf("Expected header plus %d rows, got %d", len(cataloged), len(lines))
	}
}

func TestExportCommandFormatFromOutput(t *testing.T) {
	cfg := testWorkspace(t).Config()
	output := filepath.Join(t.TempDir(), "catalog.yaml")

	cmd := NewExportCmd(&cfg)
	cmd.SetArgs([]string{"--output", output})
	cmd.SetOut(&bytes.Buffer{})
	if err := cmd.Execute(); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(output)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "header:") {
		t.Errorf("Expected YAML export, got:\n%s", data)
	}
}

func TestExportCommandParquetNeedsOutput(t *testing.T) {
	cfg := testWorkspace(t).Config()

	cmd := NewExportCmd(&cfg)
	cmd.SetArgs([]string{"--format", "parquet"})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	if err := cmd.Execute(); err == nil {
		t.Error("Expected error for parquet without --output")
	}
}
