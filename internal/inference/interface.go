package inference

import (
	"context"
)

//go:generate mockgen -source=interface.go -destination=../mocks/inference/mock_client.go -package=mock_inference

// Client rewrites text through a remote language model.
type Client interface {
	Rewrite(ctx context.Context, req RewriteRequest) (RewriteResponse, error)
}

// RewriteRequest holds the prompts sent to the provider.
type RewriteRequest struct {
	SystemPrompt string
	UserPrompt   string
}

// RewriteResponse holds the provider output, trimmed of surrounding whitespace.
type RewriteResponse struct {
	Text  string
	Model string
	Usage Usage
}

type Usage struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}
