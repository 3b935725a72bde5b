package providers

import (
	"context"
)

// Config represents the configuration for an LLM provider
type Config struct {
	Model       string
	Temperature float64
	System      string // instructions, sent as a system message where supported
	Prompt      string
	JSON        bool // ask the provider for a JSON object response
}

// Provider defines the interface for an LLM provider
type Provider interface {
	Name() string
	DefaultModel() string
	Generate(ctx context.Context, config Config) (string, error)
}
