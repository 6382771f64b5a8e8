package llm

import (
	"context"
	"log/slog"
	"regexp"
	"strings"
)

const (
	// NotConfiguredMessage is returned when no completion provider is set up.
	NotConfiguredMessage = "LLM is not configured. Set llm_provider and its API key."
	// FailureMessage is returned when the provider call fails.
	FailureMessage = "I'm having trouble generating a response."
)

var htmlTag = regexp.MustCompile(`<[^>]*>`)

// CleanMessages prepares chat history for a provider: messages with an
// unknown role are dropped, HTML tags are stripped, newlines collapse to
// spaces and empty messages are dropped. An empty result becomes a single
// "Hello" user message.
func CleanMessages(messages []Message) []Message {
	cleaned := make([]Message, 0, len(messages))
	for _, m := range messages {
		switch m.Role {
		case RoleSystem, RoleUser, RoleAssistant:
		default:
			continue
		}
		content := htmlTag.ReplaceAllString(m.Content, "")
		content = strings.ReplaceAll(content, "\r\n", " ")
		content = strings.ReplaceAll(content, "\n", " ")
		content = strings.TrimSpace(content)
		if content == "" {
			continue
		}
		cleaned = append(cleaned, Message{Role: m.Role, Content: content})
	}
	if len(cleaned) == 0 {
		cleaned = append(cleaned, Message{Role: RoleUser, Content: "Hello"})
	}
	return cleaned
}

// GenerateAnswer runs an open-ended completion over the cleaned messages.
// It never returns an error: a nil provider or a failed call yields a fixed
// user-facing message.
func GenerateAnswer(ctx context.Context, p Provider, messages []Message) string {
	if p == nil {
		return NotConfiguredMessage
	}
	resp, err := p.Complete(ctx, CompletionRequest{
		Messages:    CleanMessages(messages),
		MaxTokens:   1024,
		Temperature: 0.7,
	})
	if err != nil {
		slog.Warn("completion failed", "provider", p.Name(), "error", err)
		return FailureMessage
	}
	content := strings.TrimSpace(resp.Content)
	if content == "" {
		return FailureMessage
	}
	return content
}
