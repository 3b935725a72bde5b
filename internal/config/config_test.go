package config

import (
	"testing"

	"github.com/spf13/pflag"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{
		"CATALOG_MANIFEST", "CATALOG_SOURCE_DIR", "CATALOG_EXTENSION", "CATALOG_DOC_TYPE",
		"CATALOG_SUGGEST_PROVIDER", "CATALOG_SUGGEST_MODEL", "CATALOG_LOCK", "PORT",
	} {
		t.Setenv(key, "")
	}

	cfg := Load()

	if cfg.ManifestPath != "content/list.json" {
		t.Errorf("Expected default manifest path, got %s", cfg.ManifestPath)
	}
	if cfg.SourceDir != "pdfs" {
		t.Errorf("Expected default source dir, got %s", cfg.SourceDir)
	}
	if cfg.Extension != ".pdf" {
		t.Errorf("Expected default extension, got %s", cfg.Extension)
	}
	if cfg.DocType != "pdf" {
		t.Errorf("Expected default doc type, got %s", cfg.DocType)
	}
	if cfg.SuggestProvider != "" {
		t.Errorf("Expected suggestions off by default, got %s", cfg.SuggestProvider)
	}
	if !cfg.Lock {
		t.Error("Expected lock on by default")
	}
	if cfg.Port != "8888" {
		t.Errorf("Expected default port 8888, got %s", cfg.Port)
	}
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("CATALOG_MANIFEST", "site/catalog.json")
	t.Setenv("CATALOG_SOURCE_DIR", "videos")
	t.Setenv("CATALOG_EXTENSION", "mp4")
	t.Setenv("CATALOG_DOC_TYPE", "video")
	t.Setenv("CATALOG_SUGGEST_PROVIDER", "gemini")
	t.Setenv("CATALOG_LOCK", "false")

	cfg := Load()

	if cfg.ManifestPath != "site/catalog.json" || cfg.SourceDir != "videos" {
		t.Errorf("Unexpected paths: %+v", cfg)
	}
	if cfg.Extension != "mp4" || cfg.DocType != "video" {
		t.Errorf("Unexpected document settings: %+v", cfg)
	}
	if cfg.SuggestProvider != "gemini" {
		t.Errorf("Expected gemini provider, got %s", cfg.SuggestProvider)
	}
	if cfg.Lock {
		t.Error("Expected lock disabled")
	}
}

func TestLoadInvalidBoolFallsBack(t *testing.T) {
	t.Setenv("CATALOG_LOCK", "sometimes")
	if !Load().Lock {
		t.Error("Expected invalid bool to fall back to default")
	}
}

func TestValidate(t *testing.T) {
	valid := Config{ManifestPath: "content/list.json", SourceDir: "pdfs", Extension: ".pdf", DocType: "pdf"}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{name: "valid", mutate: func(c *Config) {}, wantErr: false},
		{name: "missing manifest", mutate: func(c *Config) { c.ManifestPath = " " }, wantErr: true},
		{name: "missing source", mutate: func(c *Config) { c.SourceDir = "" }, wantErr: true},
		{name: "missing extension", mutate: func(c *Config) { c.Extension = "" }, wantErr: true},
		{name: "missing doc type", mutate: func(c *Config) { c.DocType = "" }, wantErr: true},
		{name: "known provider", mutate: func(c *Config) { c.SuggestProvider = "ollama" }, wantErr: false},
		{name: "unknown provider", mutate: func(c *Config) { c.SuggestProvider = "claude" }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.mutate(&cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Expected error=%v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestFlagsOverrideEnvironment(t *testing.T) {
	t.Setenv("CATALOG_SOURCE_DIR", "from-env")
	t.Setenv("CATALOG_DOC_TYPE", "video")
	t.Setenv("PORT", "9000")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("source", "", "")
	flags.String("type", "", "")
	flags.Bool("lock", true, "")

	v := NewViper()
	for key, name := range map[string]string{KeySourceDir: "source", KeyDocType: "type", KeyLock: "lock"} {
		if err := v.BindPFlag(key, flags.Lookup(name)); err != nil {
			t.Fatal(err)
		}
	}

	if err := flags.Parse([]string{"--source", "from-flag", "--lock=false"}); err != nil {
		t.Fatal(err)
	}

	cfg := FromViper(v)
	if cfg.SourceDir != "from-flag" {
		t.Errorf("Expected flag to win over env, got %s", cfg.SourceDir)
	}
	if cfg.DocType != "video" {
		t.Errorf("Expected env when flag is unset, got %s", cfg.DocType)
	}
	if cfg.Lock {
		t.Error("Expected --lock=false to disable the lock")
	}
	if cfg.Port != "9000" {
		t.Errorf("Expected PORT from env, got %s", cfg.Port)
	}
	if cfg.ManifestPath != "content/list.json" {
		t.Errorf("Expected default manifest, got %s", cfg.ManifestPath)
	}
}
