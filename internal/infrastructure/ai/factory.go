// Package ai adapts chat-completion backends into the proposer and
// reviewer ports. Wire-format differences between backends live in small
// adapter structs; everything else is shared.
package ai

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/doeshing/cmdgate/internal/domain"
)

type providerKind string

const (
	kindAnthropic providerKind = "anthropic"
	kindOpenAI    providerKind = "openai"
	kindOllama    providerKind = "ollama"
	kindOffline   providerKind = "offline"
)

// Factory builds providers for configured model definitions, sharing one
// HTTP client across them.
type Factory struct {
	httpClient *http.Client
}

func NewFactory() *Factory {
	return &Factory{
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}
}

// ForModel selects a backend from the model's endpoint and name. Models
// without a recognizable endpoint fall back to the deterministic offline
// provider so the pipeline stays usable without credentials.
func (f *Factory) ForModel(model domain.ModelDefinition, platform domain.Platform) (provider, error) {
	switch inferProviderKind(model.Endpoint, model.Name) {
	case kindAnthropic:
		return newHTTPProvider("anthropic", model, f.httpClient, anthropicAdapter()), nil
	case kindOpenAI:
		return newHTTPProvider("openai", model, f.httpClient, openaiAdapter()), nil
	case kindOllama:
		return newHTTPProvider("ollama", model, f.httpClient, ollamaAdapter()), nil
	case kindOffline:
		return newOfflineProvider(platform), nil
	default:
		return nil, fmt.Errorf("unsupported model %q", model.Name)
	}
}

// ProposerFor builds a proposer backed by the model's provider.
func (f *Factory) ProposerFor(model domain.ModelDefinition, platform domain.Platform) (*CommandProposer, error) {
	p, err := f.ForModel(model, platform)
	if err != nil {
		return nil, err
	}
	return NewProposer(p, model, platform), nil
}

// ReviewerFor builds a generative reviewer backed by the model's provider.
func (f *Factory) ReviewerFor(model domain.ModelDefinition, platform domain.Platform) (*GenerativeReviewer, error) {
	p, err := f.ForModel(model, platform)
	if err != nil {
		return nil, err
	}
	return NewReviewer(p, platform), nil
}

// OfflineProposer builds a proposer over the deterministic offline
// provider, independent of any configuration.
func OfflineProposer(platform domain.Platform) *CommandProposer {
	return NewProposer(newOfflineProvider(platform), domain.ModelDefinition{}, platform)
}

func inferProviderKind(endpoint string, name string) providerKind {
	nameLower := strings.ToLower(name)

	switch {
	case strings.Contains(endpoint, "anthropic.com"):
		return kindAnthropic
	case strings.Contains(endpoint, "openai.com"):
		return kindOpenAI
	case strings.Contains(nameLower, "ollama"), strings.Contains(endpoint, "11434"), strings.Contains(endpoint, "localhost"):
		return kindOllama
	default:
		return kindOffline
	}
}
