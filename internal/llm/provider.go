// Package llm abstracts chat completion backends behind a small interface so
// the conversation loop does not care which provider answers.
package llm

import "context"

// Message roles understood by the chat backends.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is a single turn in a conversation.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Request carries everything a backend needs to produce the next assistant
// turn. Messages must alternate user/assistant and end with a user message.
type Request struct {
	SystemPrompt string
	Messages     []Message
}

// Response is the assistant's reply plus the token usage the provider
// reported for the exchange.
type Response struct {
	Content      string
	InputTokens  int
	OutputTokens int
}

// Backend produces assistant replies. Invoke makes exactly one attempt; it
// never retries, and callers decide how to surface failures.
type Backend interface {
	Invoke(ctx context.Context, req Request) (*Response, error)
}
