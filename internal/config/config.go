package config

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/lehigh-university-libraries/doccatalog/internal/scanner"
	"github.com/spf13/cast"
	"github.com/spf13/viper"
)

// Config holds the importer settings shared by every command
type Config struct {
	ManifestPath string
	SourceDir    string
	Extension    string
	DocType      string

	// Metadata suggestions; empty provider disables them
	SuggestProvider string
	SuggestModel    string

	// Advisory lock next to the manifest while a session is open
	Lock bool

	Port string
}

// Settings keys. Each is read from CATALOG_<KEY> (PORT for the port) and
// can be overridden by the flag bound to it.
const (
	KeyManifest        = "manifest"
	KeySourceDir       = "source_dir"
	KeyExtension       = "extension"
	KeyDocType         = "doc_type"
	KeySuggestProvider = "suggest_provider"
	KeySuggestModel    = "suggest_model"
	KeyLock            = "lock"
	KeyPort            = "port"
)

// NewViper returns a viper instance with the defaults and environment
// bindings for every setting. Flags are bound by the caller with BindPFlag.
func NewViper() *viper.Viper {
	v := viper.New()

	v.SetEnvPrefix("CATALOG")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()
	_ = v.BindEnv(KeyPort, "PORT")

	v.SetDefault(KeyManifest, "content/list.json")
	v.SetDefault(KeySourceDir, "pdfs")
	v.SetDefault(KeyExtension, ".pdf")
	v.SetDefault(KeyDocType, "pdf")
	v.SetDefault(KeySuggestProvider, "")
	v.SetDefault(KeySuggestModel, "")
	v.SetDefault(KeyLock, true)
	v.SetDefault(KeyPort, "8888")

	return v
}

// FromViper builds a Config from flags, environment and defaults, in that
// order of precedence
func FromViper(v *viper.Viper) Config {
	lock, err := cast.ToBoolE(v.Get(KeyLock))
	if err != nil {
		slog.Warn("Ignoring invalid lock setting", "value", v.Get(KeyLock), "error", err)
		lock = true
	}

	return Config{
		ManifestPath:    v.GetString(KeyManifest),
		SourceDir:       v.GetString(KeySourceDir),
		Extension:       v.GetString(KeyExtension),
		DocType:         v.GetString(KeyDocType),
		SuggestProvider: v.GetString(KeySuggestProvider),
		SuggestModel:    v.GetString(KeySuggestModel),
		Lock:            lock,
		Port:            v.GetString(KeyPort),
	}
}

// Load reads the configuration from the environment alone. Call it after
// godotenv has populated the environment from .env.
func Load() Config {
	return FromViper(NewViper())
}

// Validate checks the settings the import workflow cannot run without
func (c Config) Validate() error {
	if strings.TrimSpace(c.ManifestPath) == "" {
		return fmt.Errorf("manifest path is required")
	}
	if strings.TrimSpace(c.SourceDir) == "" {
		return fmt.Errorf("source directory is required")
	}
	if scanner.NormalizeExtension(c.Extension) == "" {
		return fmt.Errorf("extension is required")
	}
	if strings.TrimSpace(c.DocType) == "" {
		return fmt.Errorf("document type is required")
	}

	switch c.SuggestProvider {
	case "", "ollama", "openai", "gemini":
	default:
		return fmt.Errorf("unsupported suggest provider: %s (supported: ollama, openai, gemini)", c.SuggestProvider)
	}

	return nil
}
