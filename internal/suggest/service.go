package suggest

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/lehigh-university-libraries/doccatalog/internal/gemini"
	"github.com/lehigh-university-libraries/doccatalog/internal/models"
	"github.com/lehigh-university-libraries/doccatalog/internal/ollama"
	"github.com/lehigh-university-libraries/doccatalog/internal/openai"
	"github.com/lehigh-university-libraries/doccatalog/internal/providers"
)

// Suggestion is pre-filled metadata the operator can accept or edit
type Suggestion struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Category    string `json:"category"`
}

// Service asks an LLM to propose metadata from a file name and the
// categories already in use. File contents are never read.
type Service struct {
	provider providers.Provider
	model    string
}

// NewProvider returns the provider registered under name
func NewProvider(name string) (providers.Provider, error) {
	switch name {
	case "ollama":
		return ollama.New(), nil
	case "openai":
		return openai.New(), nil
	case "gemini":
		return gemini.New(), nil
	default:
		return nil, fmt.Errorf("unsupported provider: %s", name)
	}
}

// NewService builds a suggestion service. An empty model uses the
// provider's default.
func NewService(provider providers.Provider, model string) *Service {
	if model == "" {
		model = provider.DefaultModel()
	}
	return &Service{provider: provider, model: model}
}

// Suggest proposes metadata for candidate. The result is only a default:
// the caller falls back to the file-name title when it fails.
func (s *Service) Suggest(ctx context.Context, candidate models.Candidate, categories []string) (Suggestion, error) {
	raw, err := s.provider.Generate(ctx, providers.Config{
		Model:       s.model,
		Temperature: 0.1,
		System:      systemPrompt,
		Prompt:      buildPrompt(candidate, categories),
		JSON:        true,
	})
	if err != nil {
		return Suggestion{}, fmt.Errorf("failed to get suggestion from %s: %w", s.provider.Name(), err)
	}

	suggestion, err := parseSuggestion(raw)
	if err != nil {
		slog.Warn("Unusable suggestion", "provider", s.provider.Name(), "response", raw, "error", err)
		return Suggestion{}, err
	}
	if suggestion.Title == "" {
		suggestion.Title = candidate.DefaultTitle()
	}

	slog.Debug("Suggested metadata",
		"provider", s.provider.Name(),
		"model", s.model,
		"path", candidate.Path,
		"title", suggestion.Title,
		"category", suggestion.Category)

	return suggestion, nil
}

const systemPrompt = `You help catalog documents for a small document library.
Given only a file name and the categories already in use, propose:
  - title: a clean, human readable title (fix separators and capitalization, keep the wording)
  - description: one short sentence, or "" if the name gives no hint
  - category: reuse an existing category when one fits, otherwise propose a short new one

Respond with ONLY a JSON object: {"title": "...", "description": "...", "category": "..."}`

func buildPrompt(candidate models.Candidate, categories []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "File name: %s\n", candidate.Name)
	fmt.Fprintf(&b, "Catalog path: %s\n", candidate.Path)
	if len(categories) > 0 {
		fmt.Fprintf(&b, "Existing categories: %s\n", strings.Join(categories, ", "))
	} else {
		b.WriteString("Existing categories: none yet\n")
	}
	return b.String()
}

// parseSuggestion accepts a bare JSON object, optionally wrapped in a
// markdown code fence or surrounded by chatter
func parseSuggestion(raw string) (Suggestion, error) {
	text := strings.TrimSpace(raw)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start == -1 || end < start {
		return Suggestion{}, fmt.Errorf("no JSON object in response")
	}

	var suggestion Suggestion
	if err := json.Unmarshal([]byte(text[start:end+1]), &suggestion); err != nil {
		return Suggestion{}, fmt.Errorf("failed to parse suggestion JSON: %w", err)
	}

	suggestion.Title = strings.TrimSpace(suggestion.Title)
	suggestion.Description = strings.TrimSpace(suggestion.Description)
	suggestion.Category = strings.TrimSpace(suggestion.Category)
	return suggestion, nil
}
