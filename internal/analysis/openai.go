package analysis

import (
	"context"
	"fmt"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/okian/spreadline/pkg/metrics"
)

const systemPrompt = "You are a sharp college football betting analyst. " +
	"In at most 150 words, assess the matchup you are given. " +
	"You must reference the model spread against the market line, " +
	"and you must end with an explicit pick."

// completionAPI is the slice of the OpenAI client this provider uses;
// tests substitute a stub.
type completionAPI interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// OpenAI is the credential-backed provider.
type OpenAI struct {
	client    completionAPI
	model     string
	maxTokens int
}

// OpenAIOption applies a configuration option to the OpenAI provider.
type OpenAIOption func(*OpenAI)

// WithModel overrides the completion model.
func WithModel(model string) OpenAIOption {
	return func(p *OpenAI) {
		if model != "" {
			p.model = model
		}
	}
}

// WithMaxTokens bounds the output length.
func WithMaxTokens(n int) OpenAIOption {
	return func(p *OpenAI) {
		if n > 0 {
			p.maxTokens = n
		}
	}
}

// WithCompletionAPI overrides the completion client, mainly for tests.
func WithCompletionAPI(c completionAPI) OpenAIOption {
	return func(p *OpenAI) {
		if c != nil {
			p.client = c
		}
	}
}

// NewOpenAI creates the LLM-backed provider.
func NewOpenAI(apiKey string, opts ...OpenAIOption) *OpenAI {
	p := &OpenAI{
		client:    openai.NewClient(apiKey),
		model:     openai.GPT4oMini,
		maxTokens: 400,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Analyze sends the matchup block to the model and returns the first text
// segment of its response, or the placeholder when the response is empty.
func (p *OpenAI) Analyze(ctx context.Context, in Input) (string, error) {
	metrics.RecordAnalysisRequest()
	start := time.Now()
	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:     p.model,
		MaxTokens: p.maxTokens,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: in.Prompt()},
		},
	})
	metrics.RecordAnalysisLatency(float64(time.Since(start).Milliseconds()))
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrCompletion, err)
	}

	if len(resp.Choices) == 0 {
		return Placeholder, nil
	}
	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	if text == "" {
		return Placeholder, nil
	}
	return text, nil
}
