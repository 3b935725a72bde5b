package importcmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/lehigh-university-libraries/doccatalog/internal/catalog"
	"github.com/lehigh-university-libraries/doccatalog/internal/config"
	"github.com/lehigh-university-libraries/doccatalog/internal/manifest"
	"github.com/lehigh-university-libraries/doccatalog/internal/models"
	"github.com/lehigh-university-libraries/doccatalog/internal/session"
	"github.com/lehigh-university-libraries/doccatalog/internal/suggest"
	"github.com/muesli/cancelreader"
	"github.com/spf13/cobra"
)

// suggester pre-fills metadata for a candidate
type suggester interface {
	Suggest(ctx context.Context, candidate models.Candidate, categories []string) (suggest.Suggestion, error)
}

// NewImportCmd creates the interactive import command
func NewImportCmd(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Catalog new documents one at a time",
		Long: `Scans the source directory for documents that are not yet in the manifest
and walks through them one at a time. For each document you can add it with a
title, description and category, skip it, or quit.

Nothing is written until every document has been decided. Quitting (or Ctrl+C)
leaves the manifest exactly as it was.

At a prompt, press Enter to keep the value in brackets or type "-" to leave
the field empty.`,
		Example: `  # Import PDFs from ./pdfs into content/list.json
  doccatalog import

  # Import videos into a different manifest
  doccatalog import --source videos --ext .mp4 --type video --manifest site/list.json

  # Pre-fill titles and categories with a local model
  doccatalog import --suggest ollama --model llama3`,
		RunE: func(cmd *cobra.Command, args []string) error {
			var sg suggester
			if cfg.SuggestProvider != "" {
				provider, err := suggest.NewProvider(cfg.SuggestProvider)
				if err != nil {
					return err
				}
				sg = suggest.NewService(provider, cfg.SuggestModel)
			}

			return executeImport(cmd.Context(), catalog.Open(*cfg), sg, os.Stdin, cmd.OutOrStdout())
		},
	}

	return cmd
}

func executeImport(ctx context.Context, ws *catalog.Workspace, sg suggester, in io.Reader, out io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg := ws.Config()

	unlock, err := ws.Lock()
	if err != nil {
		return err
	}
	defer unlock()

	s, snapshot, err := ws.StartSession()
	if errors.Is(err, session.ErrNothingToImport) {
		fmt.Fprintf(out, "No new %s files found to import.\n", cfg.Extension)
		return nil
	}
	if err != nil {
		return err
	}

	if snapshot.LoadState == manifest.Corrupt || snapshot.LoadState == manifest.Unreadable {
		fmt.Fprintf(out, "Warning: %s is %s and will be replaced by the entries imported now.\n",
			ws.Store().Path(), snapshot.LoadState)
	}

	input, err := cancelreader.NewReader(in)
	if err != nil {
		// regular files cannot be polled; they never block either
		slog.Debug("Input is not cancelable", "error", err)
	} else {
		defer input.Close()
		stop := context.AfterFunc(ctx, func() { input.Cancel() })
		defer stop()
		in = input
	}

	p := newPrompter(in, out)
	fmt.Fprintf(out, "%d new %s files to catalog (%d already in %s)\n\n",
		s.Len(), cfg.Extension, len(snapshot.Manifest), ws.Store().Path())

	for s.State() == session.Active {
		err := decide(ctx, s, sg, p, out)
		if errors.Is(err, errQuit) || errors.Is(err, context.Canceled) {
			summary := s.Summary()
			slog.Info("Import abandoned", "decided", summary.Added+summary.Skipped, "queued", summary.Queued)
			fmt.Fprintln(out, "Import abandoned; manifest left unchanged.")
			return nil
		}
		if err != nil {
			return err
		}
	}

	return finalize(ctx, s, p, ws.Store().Path(), out)
}

// decide collects one accept/skip decision for the current candidate
func decide(ctx context.Context, s *session.Session, sg suggester, p *prompter, out io.Writer) error {
	candidate, err := s.Current()
	if err != nil {
		return err
	}
	position, total := s.Progress()

	fmt.Fprintf(out, "Processing file %d of %d\n", position, total)
	fmt.Fprintf(out, "  File: %s\n", candidate.Name)

	act, err := p.askAction(ctx)
	if err != nil {
		return err
	}

	switch act {
	case actionQuit:
		return errQuit
	case actionSkip:
		fmt.Fprintln(out)
		return s.Skip()
	}

	categories := s.DistinctCategories()
	defaults := suggest.Suggestion{Title: candidate.DefaultTitle()}
	if sg != nil {
		suggested, err := sg.Suggest(ctx, candidate, categories)
		if err != nil {
			slog.Warn("Metadata suggestion failed, using file name", "path", candidate.Path, "error", err)
		} else {
			defaults = suggested
		}
	}

	title, err := p.askDefault(ctx, "  Title", defaults.Title)
	if err != nil {
		return err
	}
	description, err := p.askDefault(ctx, "  Description", defaults.Description)
	if err != nil {
		return err
	}
	category, err := p.askCategory(ctx, categories, defaults.Category)
	if err != nil {
		return err
	}

	fmt.Fprintln(out)
	return s.Accept(title, description, category)
}

// finalize saves the manifest, offering to retry while the save fails
func finalize(ctx context.Context, s *session.Session, p *prompter, manifestPath string, out io.Writer) error {
	result, err := s.Finalize()
	for err != nil {
		var persistErr *session.PersistError
		if !errors.As(err, &persistErr) {
			return err
		}

		fmt.Fprintf(out, "Failed to save %s: %v\n", manifestPath, persistErr.Err)
		fmt.Fprintf(out, "%d entries are still pending.\n", persistErr.Pending)

		retry, askErr := p.confirm(ctx, "Retry save?")
		if askErr != nil || !retry {
			return err
		}
		result, err = s.RetrySave()
	}

	slog.Info("Manifest updated", "path", manifestPath, "entries", result.Total, "added", result.Added)
	fmt.Fprintf(out, "Updated %s with %d entries (%d added, %d skipped)\n",
		manifestPath, result.Total, result.Added, result.Skipped)
	return nil
}
