package provider

import "context"

// Request is a single text-completion request.
type Request struct {
	System    string
	Prompt    string
	MaxTokens int
}

// Provider produces text for a prompt. Implementations block until the
// full response is available; callers control cancellation via ctx.
type Provider interface {
	Complete(ctx context.Context, req Request) (string, error)
	Name() string
	ModelName() string
}
