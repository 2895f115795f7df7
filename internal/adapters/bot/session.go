package bot

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog"

	"github.com/tiequan12345/DiscordV2Bot/internal/domain"
	"github.com/tiequan12345/DiscordV2Bot/internal/infra/metrics"
)

// readyTimeout ограничивает ожидание READY после подключения к гейтвею.
const readyTimeout = 30 * time.Second

// gateway покрывает методы discordgo, которыми пользуется транспорт.
type gateway interface {
	Open() error
	Close() error
	AddHandlerOnce(handler interface{}) func()
	Channel(channelID string, options ...discordgo.RequestOption) (*discordgo.Channel, error)
	ChannelMessageSend(channelID, content string, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// Session — основной транспорт доставки: бот-сессия Discord. Жизненный цикл
// линейный: Open подключается к гейтвею, дожидается READY и резолвит
// выходной канал; Send публикует фрагменты; Close разрывает сессию.
type Session struct {
	session   gateway
	channelID string
	log       zerolog.Logger
}

// NewSession создаёт бот-транспорт для выходного канала.
func NewSession(token, channelID string, logger zerolog.Logger) (*Session, error) {
	s, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("bot: создание сессии: %w", err)
	}
	s.Identify.Intents = discordgo.IntentsGuilds
	return &Session{session: s, channelID: channelID, log: logger}, nil
}

var _ domain.SessionTransport = (*Session)(nil)

// Name возвращает имя транспорта.
func (s *Session) Name() string {
	return "bot"
}

// Open подключается к гейтвею, дожидается READY и проверяет доступность
// выходного канала. Любая из неудач означает, что транспорт недоступен.
func (s *Session) Open(ctx context.Context) error {
	ready := make(chan struct{})
	s.session.AddHandlerOnce(func(_ *discordgo.Session, r *discordgo.Ready) {
		s.log.Info().Str("user", r.User.Username).Msg("bot: сессия готова")
		close(ready)
	})

	start := time.Now()
	if err := s.session.Open(); err != nil {
		metrics.ObserveNetworkRequest("bot", "open", s.channelID, start, err)
		return fmt.Errorf("bot: подключение к гейтвею: %w", err)
	}

	select {
	case <-ready:
	case <-ctx.Done():
		_ = s.session.Close()
		return ctx.Err()
	case <-time.After(readyTimeout):
		_ = s.session.Close()
		return errors.New("bot: не дождались READY от гейтвея")
	}

	resolveStart := time.Now()
	_, err := s.session.Channel(s.channelID, discordgo.WithContext(ctx))
	metrics.ObserveNetworkRequest("bot", "resolve_channel", s.channelID, resolveStart, err)
	if err != nil {
		_ = s.session.Close()
		return fmt.Errorf("bot: выходной канал недоступен: %w", err)
	}
	metrics.ObserveNetworkRequest("bot", "open", s.channelID, start, nil)
	return nil
}

// Send публикует один фрагмент в выходной канал.
func (s *Session) Send(ctx context.Context, fragment string) error {
	start := time.Now()
	_, err := s.session.ChannelMessageSend(s.channelID, fragment, discordgo.WithContext(ctx))
	metrics.ObserveNetworkRequest("bot", "send_message", s.channelID, start, err)
	if err != nil {
		return fmt.Errorf("bot: отправка фрагмента: %w", err)
	}
	return nil
}

// Close завершает сессию.
func (s *Session) Close() error {
	if err := s.session.Close(); err != nil {
		return fmt.Errorf("bot: закрытие сессии: %w", err)
	}
	return nil
}
