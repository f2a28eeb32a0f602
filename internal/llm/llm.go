// Package llm abstracts the text-completion collaborator used by the
// model-assisted extraction strategy.
package llm

import (
	"context"
	"encoding/json"
	"errors"
)

// Client is a completion collaborator that answers a prompt with a single
// JSON object.
type Client interface {
	Complete(ctx context.Context, prompt string) (json.RawMessage, error)
}

// ErrNotConfigured is returned by the placeholder client.
var ErrNotConfigured = errors.New("llm client not configured")

// PlaceholderClient stands in until a provider is wired. Every call fails,
// which the extraction layer degrades to a fallback invoice.
type PlaceholderClient struct{}

// Complete returns ErrNotConfigured.
func (PlaceholderClient) Complete(ctx context.Context, prompt string) (json.RawMessage, error) {
	_ = ctx
	_ = prompt
	return nil, ErrNotConfigured
}
