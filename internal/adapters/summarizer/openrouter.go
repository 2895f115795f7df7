package summarizer

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/tiequan12345/DiscordV2Bot/internal/domain"
	"github.com/tiequan12345/DiscordV2Bot/internal/infra/openrouter"
)

const systemPrompt = "You are a helpful assistant for text summarization."

const maxCompletionTokens = 8000

type chatClient interface {
	CreateChatCompletion(ctx context.Context, req openrouter.ChatCompletionRequest) (openrouter.ChatCompletionResponse, error)
}

// OpenRouter строит сводку переписки через OpenRouter Chat Completions.
// Ошибка генерации не прерывает конвейер: вместо сводки возвращается текст
// с описанием ошибки, и дальше он обрабатывается как обычное содержимое.
type OpenRouter struct {
	client  chatClient
	model   string
	prompt  string
	timeout time.Duration
	log     zerolog.Logger
}

// NewOpenRouter создаёт провайдер суммаризации.
func NewOpenRouter(client chatClient, model, prompt string, timeout time.Duration, logger zerolog.Logger) *OpenRouter {
	if model == "" {
		model = "openrouter/quasar-alpha"
	}
	if timeout <= 0 {
		timeout = 180 * time.Second
	}
	return &OpenRouter{client: client, model: model, prompt: prompt, timeout: timeout, log: logger}
}

var _ domain.Summarizer = (*OpenRouter)(nil)

// Summarize строит сводку по переписке. Одна попытка, без ретраев.
func (s *OpenRouter) Summarize(ctx context.Context, conversation string) string {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	s.log.Debug().Str("model", s.model).Str("conversation", clipRunes(conversation, 500)).Msg("summarizer: запрос сводки")

	req := openrouter.ChatCompletionRequest{
		Model:       s.model,
		Temperature: 0.7,
		MaxTokens:   maxCompletionTokens,
		Messages: []openrouter.ChatMessage{
			{Role: openrouter.RoleSystem, Content: systemPrompt},
			{Role: openrouter.RoleUser, Content: s.prompt + "\n" + conversation},
		},
	}

	resp, err := s.client.CreateChatCompletion(ctx, req)
	if err != nil {
		s.log.Error().Err(err).Msg("summarizer: генерация сводки не удалась")
		return fmt.Sprintf("Error generating summary: %v", err)
	}
	if len(resp.Choices) == 0 {
		s.log.Error().Msg("summarizer: пустой ответ модели")
		return "Error generating summary: empty response"
	}
	if resp.Usage != nil {
		s.log.Debug().Str("usage", resp.Usage.String()).Msg("summarizer: статистика токенов")
	}
	return WrapNoPreview(resp.Choices[0].Message.Content)
}

func clipRunes(text string, limit int) string {
	if limit <= 0 {
		return text
	}
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit])
}
