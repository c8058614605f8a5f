// Package ai wraps the OpenAI API for embeddings and short completions.
package ai

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/packages/param"
)

type Config struct {
	APIKey          string
	BaseURL         string
	EmbeddingModel  string
	CompletionModel string
	Temperature     float64
	MaxTokens       int64
}

type Service struct {
	client *openai.Client
	logger *log.Logger
	cfg    Config
}

func NewOpenAIService(logger *log.Logger, cfg Config) *Service {
	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	client := openai.NewClient(opts...)

	return &Service{
		client: &client,
		logger: logger,
		cfg:    cfg,
	}
}

// Embed returns the embedding of one input.
func (s *Service) Embed(ctx context.Context, input string) ([]float64, error) {
	embedding, err := s.client.Embeddings.New(ctx, openai.EmbeddingNewParams{
		Model: s.cfg.EmbeddingModel,
		Input: openai.EmbeddingNewParamsInputUnion{
			OfString: param.Opt[string]{
				Value: input,
			},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("embedding request failed: %w", err)
	}
	if len(embedding.Data) == 0 {
		return nil, fmt.Errorf("OpenAI returned no embeddings")
	}
	return embedding.Data[0].Embedding, nil
}

// EmbedBatch embeds several inputs in one request, in input order.
func (s *Service) EmbedBatch(ctx context.Context, inputs []string) ([][]float64, error) {
	embedding, err := s.client.Embeddings.New(ctx, openai.EmbeddingNewParams{
		Model: s.cfg.EmbeddingModel,
		Input: openai.EmbeddingNewParamsInputUnion{
			OfArrayOfStrings: inputs,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("embedding request failed: %w", err)
	}
	if len(embedding.Data) != len(inputs) {
		return nil, fmt.Errorf("OpenAI returned %d embeddings for %d inputs", len(embedding.Data), len(inputs))
	}

	embeddings := make([][]float64, len(inputs))
	for _, e := range embedding.Data {
		if e.Index < 0 || int(e.Index) >= len(inputs) {
			return nil, fmt.Errorf("OpenAI returned embedding index %d out of range", e.Index)
		}
		embeddings[e.Index] = e.Embedding
	}
	return embeddings, nil
}

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn is one earlier message of a conversation.
type Turn struct {
	Role    Role
	Content string
}

// Complete runs a single system+user chat completion and returns the
// trimmed reply.
func (s *Service) Complete(ctx context.Context, system, user string) (string, error) {
	return s.Chat(ctx, system, []Turn{{Role: RoleUser, Content: user}})
}

// Chat runs a completion over the system prompt followed by turns, oldest
// first, and returns the trimmed reply.
func (s *Service) Chat(ctx context.Context, system string, turns []Turn) (string, error) {
	params := openai.ChatCompletionNewParams{
		Model:    s.cfg.CompletionModel,
		Messages: chatMessages(system, turns),
	}
	if s.cfg.Temperature > 0 {
		params.Temperature = openai.Float(s.cfg.Temperature)
	}
	if s.cfg.MaxTokens > 0 {
		params.MaxTokens = openai.Int(s.cfg.MaxTokens)
	}

	completion, err := s.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("completion request failed: %w", err)
	}
	if len(completion.Choices) == 0 {
		return "", fmt.Errorf("OpenAI returned no completion choices")
	}

	s.logger.Debug("Completion finished", "model", completion.Model, "turns", len(turns), "tokens", completion.Usage.TotalTokens)
	return strings.TrimSpace(completion.Choices[0].Message.Content), nil
}

func chatMessages(system string, turns []Turn) []openai.ChatCompletionMessageParamUnion {
	msgs := make([]openai.ChatCompletionMessageParamUnion, 0, len(turns)+1)
	msgs = append(msgs, openai.SystemMessage(system))
	for _, t := range turns {
		if t.Role == RoleAssistant {
			msgs = append(msgs, openai.AssistantMessage(t.Content))
		} else {
			msgs = append(msgs, openai.UserMessage(t.Content))
		}
	}
	return msgs
}
