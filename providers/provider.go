package providers

import (
	"fmt"
	"strings"
)

// APIShape selects which wire protocol a model speaks.
type APIShape string

const (
	APIShapeOpenAI    APIShape = "openai"
	APIShapeAnthropic APIShape = "anthropic"
)

// OllamaBaseURL is the OpenAI-compatible endpoint of a local Ollama runtime.
const OllamaBaseURL = "http://localhost:11434/v1"

// Route is the resolved backend for a LiteLLM-style model identifier.
type Route struct {
	Shape APIShape
	// Model is the identifier with the provider prefix stripped,
	// as sent on the wire.
	Model string
	// BaseURL is the default endpoint for this route, empty for the
	// SDK default.
	BaseURL string
	// Ollama marks routes to a local Ollama runtime, which accept
	// Ollama-specific options such as num_ctx.
	Ollama bool
}

var supportedPrefixes = []string{"ollama", "ollama_chat", "openai", "anthropic"}

// ParseModel resolves a LiteLLM-style model identifier such as
// "ollama_chat/qwen3:30b-a3b-q4_K_M" or "anthropic/claude-sonnet-4-20250514".
// An identifier without a prefix is treated as an OpenAI model.
func ParseModel(model string) (Route, error) {
	if model == "" {
		return Route{}, fmt.Errorf("requires model")
	}
	prefix, name, found := strings.Cut(model, "/")
	if !found {
		return Route{Shape: APIShapeOpenAI, Model: model}, nil
	}
	if name == "" {
		return Route{}, fmt.Errorf("invalid model identifier: %s", model)
	}
	switch prefix {
	case "ollama", "ollama_chat":
		return Route{Shape: APIShapeOpenAI, Model: name, BaseURL: OllamaBaseURL, Ollama: true}, nil
	case "openai":
		return Route{Shape: APIShapeOpenAI, Model: name}, nil
	case "anthropic":
		return Route{Shape: APIShapeAnthropic, Model: name}, nil
	default:
		return Route{}, fmt.Errorf("unsupported model prefix: %s\navailable: %s", prefix, strings.Join(supportedPrefixes, ", "))
	}
}
