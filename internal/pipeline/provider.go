package pipeline

import "context"

// ChatMessage is one entry of the ordered message list sent to the provider.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// completer abstracts the chat-completion backend so the pipeline can be
// exercised against fakes. Implementations return the assistant message
// content on success and errors from the package taxonomy on failure.
type completer interface {
	Complete(ctx context.Context, msgs []ChatMessage) (string, error)
}
