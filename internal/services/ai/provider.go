package ai

import (
	"context"

	"github.com/benvon/devotional/internal/models"
)

// ResponseFormat selects plain text or a JSON object response
type ResponseFormat string

const (
	FormatText ResponseFormat = "text"
	FormatJSON ResponseFormat = "json"
)

// GenerationRequest is a single call to the generative service
type GenerationRequest struct {
	// Operation names the gateway operation for logging
	Operation         string
	SystemInstruction string
	History           []models.ChatMessage
	Prompt            string
	Temperature       *float64
	Format            ResponseFormat
}

// Generator is the interface for generative text providers
type Generator interface {
	Generate(ctx context.Context, req GenerationRequest) (string, error)
}

// ProviderFactory creates a generator from provider settings
type ProviderFactory func(config map[string]string) (Generator, error)

// ProviderRegistry stores available providers by name
type ProviderRegistry struct {
	providers map[string]ProviderFactory
}

// NewProviderRegistry creates a new provider registry
func NewProviderRegistry() *ProviderRegistry {
	return &ProviderRegistry{
		providers: make(map[string]ProviderFactory),
	}
}

// Register registers a provider factory
func (r *ProviderRegistry) Register(name string, factory ProviderFactory) {
	r.providers[name] = factory
}

// GetProvider builds the named provider
func (r *ProviderRegistry) GetProvider(name string, config map[string]string) (Generator, error) {
	factory, ok := r.providers[name]
	if !ok {
		return nil, &ErrProviderNotFound{Name: name}
	}
	return factory(config)
}

// ErrProviderNotFound is returned when a provider is not registered
type ErrProviderNotFound struct {
	Name string
}

func (e *ErrProviderNotFound) Error() string {
	return "AI provider not found: " + e.Name
}
