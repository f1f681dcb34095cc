package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

// ModelResponse carries the raw model text and the provider's token
// accounting. The token counts are authoritative: they are written to
// the usage ledger as-is, never re-estimated.
type ModelResponse struct {
	Text         string
	InputTokens  int64
	OutputTokens int64
}

// ModelInvoker wraps the external generation call. The orchestrator
// treats the returned text as untrusted even in structured-output
// mode.
type ModelInvoker interface {
	Invoke(ctx context.Context, systemPrompt, userPrompt string, structuredOutput bool) (*ModelResponse, error)
}

type openAIInvoker struct {
	client  *openai.Client
	model   string
	timeout time.Duration
}

// NewOpenAIInvoker creates a ModelInvoker over an injected OpenAI
// client. The client is constructed once at process start and shared;
// the invoker itself is stateless.
func NewOpenAIInvoker(client *openai.Client, model string, timeout time.Duration) ModelInvoker {
	if timeout <= 0 {
		timeout = 90 * time.Second
	}
	return &openAIInvoker{client: client, model: model, timeout: timeout}
}

// Invoke performs a single chat completion. When structuredOutput is
// set it requests the provider's native JSON mode; callers still have
// to parse defensively because that guarantee is not absolute.
func (s *openAIInvoker) Invoke(ctx context.Context, systemPrompt, userPrompt string, structuredOutput bool) (*ModelResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	req := openai.ChatCompletionRequest{
		Model: s.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: userPrompt},
		},
	}
	if structuredOutput {
		req.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		}
	}

	start := time.Now()
	resp, err := s.client.CreateChatCompletion(ctx, req)
	if err != nil {
		log.Printf("ERROR: [ModelInvoker] CreateChatCompletion failed for model %s after %v: %v", s.model, time.Since(start), err)
		return nil, fmt.Errorf("model invocation failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		log.Printf("ERROR: [ModelInvoker] Model %s returned no choices.", s.model)
		return nil, errors.New("model returned an empty response")
	}

	log.Printf("INFO: [ModelInvoker] Model %s responded in %v (prompt=%d, completion=%d tokens).",
		s.model, time.Since(start), resp.Usage.PromptTokens, resp.Usage.CompletionTokens)

	return &ModelResponse{
		Text:         resp.Choices[0].Message.Content,
		InputTokens:  int64(resp.Usage.PromptTokens),
		OutputTokens: int64(resp.Usage.CompletionTokens),
	}, nil
}
