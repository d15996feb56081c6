package llm

import "context"

// ChatMessage represents one chat turn. ImageURL, when set, is a data URI
// attached as an image part alongside the text content.
type ChatMessage struct {
	Role     string
	Content  string
	ImageURL string
}

// Client defines the behaviour required by the advisor handlers.
type Client interface {
	ChatCompletion(ctx context.Context, messages []ChatMessage, temperature float64, maxTokens int) (string, error)
}
