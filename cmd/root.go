package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/lehigh-university-libraries/doccatalog/internal/config"
	"github.com/lehigh-university-libraries/doccatalog/internal/importcmd"
	"github.com/lehigh-university-libraries/doccatalog/internal/scanner"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

func NewRootCmd() *cobra.Command {
	cfg := &config.Config{}
	v := config.NewViper()
	var verbose bool

	cmd := &cobra.Command{
		Use:   "doccatalog",
		Short: "Incrementally catalog a directory of documents into a JSON manifest",
		Long: `doccatalog keeps a JSON manifest of documents (title, description, path,
category, type) in step with a directory of files.

It finds files that are not cataloged yet and walks through them one at a time,
in the terminal or in a browser, writing the manifest only when every file has
been decided.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Load .env file if present (ignore errors)
			_ = godotenv.Load()

			level := slog.LevelInfo
			if verbose {
				level = slog.LevelDebug
			}
			slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

			*cfg = config.FromViper(v)
			cfg.Extension = scanner.NormalizeExtension(cfg.Extension)
			return cfg.Validate()
		},
	}

	flags := cmd.PersistentFlags()
	flags.String("manifest", "", "Manifest JSON file (env CATALOG_MANIFEST, default content/list.json)")
	flags.String("source", "", "Directory to scan for documents (env CATALOG_SOURCE_DIR, default pdfs)")
	flags.String("ext", "", "File extension to import (env CATALOG_EXTENSION, default .pdf)")
	flags.String("type", "", "Type recorded on new entries (env CATALOG_DOC_TYPE, default pdf)")
	flags.String("suggest", "", "Suggest metadata with an LLM provider: ollama, openai, gemini (env CATALOG_SUGGEST_PROVIDER)")
	flags.String("model", "", "Model for --suggest (env CATALOG_SUGGEST_MODEL)")
	flags.Bool("lock", true, "Hold a lock file next to the manifest while importing (env CATALOG_LOCK)")
	flags.BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	serveCmd := newServeCmd(cfg)

	// Flags win over CATALOG_* environment variables, which win over defaults
	bindFlag(v, config.KeyManifest, flags.Lookup("manifest"))
	bindFlag(v, config.KeySourceDir, flags.Lookup("source"))
	bindFlag(v, config.KeyExtension, flags.Lookup("ext"))
	bindFlag(v, config.KeyDocType, flags.Lookup("type"))
	bindFlag(v, config.KeySuggestProvider, flags.Lookup("suggest"))
	bindFlag(v, config.KeySuggestModel, flags.Lookup("model"))
	bindFlag(v, config.KeyLock, flags.Lookup("lock"))
	bindFlag(v, config.KeyPort, serveCmd.Flags().Lookup("port"))

	// Add subcommands
	cmd.AddCommand(importcmd.NewImportCmd(cfg))
	cmd.AddCommand(importcmd.NewScanCmd(cfg))
	cmd.AddCommand(importcmd.NewListCmd(cfg))
	cmd.AddCommand(importcmd.NewCategoriesCmd(cfg))
	cmd.AddCommand(importcmd.NewExportCmd(cfg))
	cmd.AddCommand(serveCmd)

	return cmd
}

func bindFlag(v *viper.Viper, key string, flag *pflag.Flag) {
	if err := v.BindPFlag(key, flag); err != nil {
		panic(fmt.Sprintf("failed to bind flag for %s: %v", key, err))
	}
}
