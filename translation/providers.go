package translation

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	cohere "github.com/cohere-ai/cohere-go/v2"
	cohereclient "github.com/cohere-ai/cohere-go/v2/client"
	openai "github.com/sashabaranov/go-openai"
)

// Provider abstracts the remote capability that performs one instructed
// text completion. Implementations return the model's text output.
type Provider interface {
	Complete(ctx context.Context, instruction, input string) (string, error)
	Name() string
}

// NewProvider selects a provider: Cohere when a key is supplied,
// otherwise OpenAI via the given client.
func NewProvider(cohereKey string, openaiClient *openai.Client) Provider {
	if cohereKey != "" {
		httpClient := &http.Client{Timeout: 60 * time.Second}
		client := cohereclient.NewClient(
			cohereclient.WithToken(cohereKey),
			cohereclient.WithHTTPClient(httpClient),
		)
		return &CohereProvider{client: client, model: "command-r-plus"}
	}
	return &OpenAIProvider{client: openaiClient, model: openai.GPT4}
}

// OpenAIProvider completes instructions via the chat completions API.
type OpenAIProvider struct {
	client *openai.Client
	model  string
}

func (p *OpenAIProvider) Name() string { return "openai/" + p.model }

func (p *OpenAIProvider) Complete(ctx context.Context, instruction, input string) (string, error) {
	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: p.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: instruction},
			{Role: openai.ChatMessageRoleUser, Content: input},
		},
		Temperature: 0.3,
	})
	if err != nil {
		return "", fmt.Errorf("openai chat error: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("openai chat returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}

// CohereProvider completes instructions via the Cohere chat API.
// SDK: github.com/cohere-ai/cohere-go/v2
type CohereProvider struct {
	client *cohereclient.Client
	model  string
}

func (p *CohereProvider) Name() string { return "cohere/" + p.model }

func (p *CohereProvider) Complete(ctx context.Context, instruction, input string) (string, error) {
	temperature := 0.3
	resp, err := p.client.Chat(ctx, &cohere.ChatRequest{
		Model:       &p.model,
		Preamble:    &instruction,
		Message:     input,
		Temperature: &temperature,
	})
	if err != nil {
		return "", fmt.Errorf("cohere chat error: %w", err)
	}
	if resp == nil {
		return "", errors.New("cohere chat returned empty response")
	}
	return resp.Text, nil
}
