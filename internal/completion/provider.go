// Package completion defines the language-model surface the rest of the
// service depends on. Handlers and services talk to Provider; the OpenAI
// client lives behind it so tests can substitute canned responses.
package completion

import (
	"context"

	"github.com/sashabaranov/go-openai/jsonschema"

	"github.com/lucidia/lucid-server/internal/model"
)

// FunctionDef describes a callable function offered to the model during a
// function-forced chat completion.
type FunctionDef struct {
	Name        string
	Description string
	Parameters  jsonschema.Definition
}

// Provider is the completion backend contract.
type Provider interface {
	// TextCompletion answers a single prompt with no conversation state.
	TextCompletion(ctx context.Context, prompt string) (string, error)

	// ChatCompletion continues a conversation and returns the assistant reply.
	ChatCompletion(ctx context.Context, messages []model.ChatMessage) (string, error)

	// FunctionCompletion forces the model to call fn and returns the parsed
	// arguments object.
	FunctionCompletion(ctx context.Context, messages []model.ChatMessage, fn FunctionDef) (map[string]interface{}, error)

	// GenerateImage renders prompt at the given size ("256x256" etc.) and
	// returns a URL to the result.
	GenerateImage(ctx context.Context, prompt, size string) (string, error)
}
