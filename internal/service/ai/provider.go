// Package ai wraps the external completion provider.
package ai

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"

	"github.com/liuwen/deepchat/internal/config"
)

// Completer produces one completed reply for one prompt.
type Completer interface {
	Complete(ctx context.Context, promptText string) (string, error)
}

// Service drives an Ark-served chat model through an eino chain. Each call
// carries only the prompt text: prior conversation turns are deliberately
// not forwarded, so every completion is answered statelessly.
type Service struct {
	chain        compose.Runnable[map[string]any, *schema.Message]
	systemPrompt string
	timeout      time.Duration
}

// NewService compiles the completion chain from the provider configuration.
func NewService(ctx context.Context, cfg config.AIConfig) (*Service, error) {
	chatModel, err := cfg.NewChatModel(ctx)
	if err != nil {
		return nil, fmt.Errorf("create chat model: %w", err)
	}

	promptTemplate := prompt.FromMessages(
		schema.FString,
		schema.SystemMessage("{system}"),
		schema.UserMessage("{query}"),
	)

	chain := compose.NewChain[map[string]any, *schema.Message]()
	chain.AppendChatTemplate(promptTemplate)
	chain.AppendChatModel(chatModel)

	runnable, err := chain.Compile(ctx)
	if err != nil {
		return nil, fmt.Errorf("compile completion chain: %w", err)
	}

	return &Service{
		chain:        runnable,
		systemPrompt: cfg.SystemPrompt,
		timeout:      cfg.Timeout,
	}, nil
}

// Complete returns the model's reply for the prompt, bounded by the
// configured deadline.
func (s *Service) Complete(ctx context.Context, promptText string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	response, err := s.chain.Invoke(ctx, map[string]any{
		"system": s.systemPrompt,
		"query":  promptText,
	})
	if err != nil {
		if ctx.Err() != nil {
			return "", fmt.Errorf("completion provider: %w", ctx.Err())
		}
		return "", fmt.Errorf("completion provider: %w", err)
	}

	log.Printf("[ai] completion generated, length=%d", len(response.Content))
	return response.Content, nil
}
