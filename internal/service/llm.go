package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/sashabaranov/go-openai"

	"github.com/dossierr/case-assistant/internal/config"
)

// LLMClient talks to an OpenAI-compatible backend (OpenAI, LM Studio, ...)
// for both completions and embeddings.
type LLMClient struct {
	client     *openai.Client
	chatModel  string
	embedModel string
}

func NewLLMClient(cfg *config.Config) *LLMClient {
	oaiCfg := openai.DefaultConfig(cfg.LLMAPIKey)
	oaiCfg.BaseURL = cfg.LLMBaseURL
	return &LLMClient{
		client:     openai.NewClientWithConfig(oaiCfg),
		chatModel:  cfg.ChatModel,
		embedModel: cfg.EmbedModel,
	}
}

// Generate runs the assembled prompt through the chat model.
func (l *LLMClient) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := l.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: l.chatModel,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		Temperature: 0.2,
	})
	if err != nil {
		if denied(err) {
			return "", fmt.Errorf("%w: %v", ErrAccessDenied, err)
		}
		return "", fmt.Errorf("%w: %v", ErrGenerationFailed, err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: backend returned no choices", ErrGenerationFailed)
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

// Embed returns the embedding vector for one text.
func (l *LLMClient) Embed(ctx context.Context, text string) ([]float32, error) {
	resp, err := l.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Model: openai.EmbeddingModel(l.embedModel),
		Input: []string{text},
	})
	if err != nil {
		if denied(err) {
			return nil, fmt.Errorf("%w: %v", ErrAccessDenied, err)
		}
		return nil, fmt.Errorf("embedding: %w", err)
	}
	if len(resp.Data) == 0 {
		return nil, fmt.Errorf("embedding: backend returned no data")
	}
	return resp.Data[0].Embedding, nil
}

// Models lists what the backend serves.
func (l *LLMClient) Models(ctx context.Context) ([]openai.Model, error) {
	resp, err := l.client.ListModels(ctx)
	if err != nil {
		return nil, err
	}
	return resp.Models, nil
}

// denied reports whether the backend rejected our credential or permission.
func denied(err error) bool {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode == http.StatusUnauthorized ||
			apiErr.HTTPStatusCode == http.StatusForbidden
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return reqErr.HTTPStatusCode == http.StatusUnauthorized ||
			reqErr.HTTPStatusCode == http.StatusForbidden
	}
	return false
}
