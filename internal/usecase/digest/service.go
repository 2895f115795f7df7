package digest

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/tiequan12345/DiscordV2Bot/internal/domain"
	"github.com/tiequan12345/DiscordV2Bot/internal/infra/metrics"
)

// ErrNoTransport возвращается когда не настроен ни один транспорт доставки.
var ErrNoTransport = errors.New("не настроен ни один транспорт доставки")

// Options задаёт параметры одного запуска дайджеста.
type Options struct {
	Label      string
	Sources    []domain.Source
	Hours      int
	QuoteStyle bool
	Footer     bool
	NoSend     bool
	SendDelay  time.Duration
}

// Service реализует полный цикл дайджеста: сбор сообщений, суммаризация,
// разбиение на фрагменты и доставка.
type Service struct {
	collector  domain.Collector
	summarizer domain.Summarizer
	splitter   domain.Splitter
	primary    domain.SessionTransport
	fallback   domain.Transport
	log        zerolog.Logger
	opts       Options
}

// NewService создаёт сервис дайджестов. Любой из транспортов может
// отсутствовать, достаточно одного.
func NewService(collector domain.Collector, summarizer domain.Summarizer, splitter domain.Splitter, primary domain.SessionTransport, fallback domain.Transport, logger zerolog.Logger, opts Options) *Service {
	return &Service{collector: collector, summarizer: summarizer, splitter: splitter, primary: primary, fallback: fallback, log: logger, opts: opts}
}

// Run выполняет один запуск: собирает сообщения за окно выборки, строит
// сводку и доставляет её фрагментами в выходной канал.
func (s *Service) Run(ctx context.Context) error {
	start := time.Now()
	defer func() { metrics.DigestRunSeconds.Observe(time.Since(start).Seconds()) }()

	window := domain.NewWindow(time.Now(), s.opts.Hours)
	transcript, err := s.collector.Collect(ctx, s.opts.Sources, window)
	if err != nil {
		return fmt.Errorf("сбор сообщений: %w", err)
	}
	if transcript.Empty() {
		s.log.Info().Msg("digest: сообщений за окно выборки нет")
		return nil
	}

	conversation := BuildConversation(transcript.Messages)
	if strings.TrimSpace(conversation) == "" {
		s.log.Info().Msg("digest: нет текста для суммаризации")
		return nil
	}

	s.log.Info().
		Int("messages", len(transcript.Messages)).
		Int("channels", len(transcript.Names)).
		Msg("digest: генерируем сводку")
	summary := s.summarizer.Summarize(ctx, conversation)

	body := strings.TrimSpace(summary)
	if s.opts.QuoteStyle {
		body = QuoteLines(body)
	}
	text := BuildHeader(s.opts.Label, transcript.Names, len(transcript.Messages)) + body
	if s.opts.Footer {
		text += Footer
	}

	fragments := s.splitter.Split(text)
	if len(fragments) == 0 {
		s.log.Info().Msg("digest: после разбиения не осталось фрагментов")
		return nil
	}
	if s.opts.NoSend {
		s.log.Info().Int("fragments", len(fragments)).Msg("digest: отправка отключена, фрагменты не доставляются")
		return nil
	}

	return s.deliver(ctx, fragments)
}

// Debug собирает сообщения и возвращает отчёт с перепиской, без
// суммаризации и отправки. Пустое окно выборки даёт пустой отчёт.
func (s *Service) Debug(ctx context.Context) (string, error) {
	window := domain.NewWindow(time.Now(), s.opts.Hours)
	transcript, err := s.collector.Collect(ctx, s.opts.Sources, window)
	if err != nil {
		return "", fmt.Errorf("сбор сообщений: %w", err)
	}
	if transcript.Empty() {
		return "", nil
	}
	return debugReport(s.opts.Label, transcript), nil
}

// deliver отправляет фрагменты основным транспортом, а при неполной
// доставке повторяет весь набор резервным.
func (s *Service) deliver(ctx context.Context, fragments []string) error {
	if s.primary == nil && s.fallback == nil {
		return ErrNoTransport
	}

	sent := 0
	if s.primary != nil {
		sent = s.sendPrimary(ctx, fragments)
		if sent == len(fragments) {
			return nil
		}
		s.log.Warn().
			Int("sent", sent).
			Int("total", len(fragments)).
			Msg("digest: основной транспорт доставил не всё, переключаемся на резервный")
	}

	if s.fallback == nil {
		return errors.New("основной транспорт не доставил дайджест, резервный не настроен")
	}

	metrics.FallbackRuns.Inc()
	resent := s.sendAll(ctx, s.fallback, fragments)
	if resent != len(fragments) {
		return fmt.Errorf("резервный транспорт доставил %d из %d фрагментов", resent, len(fragments))
	}
	return nil
}

func (s *Service) sendPrimary(ctx context.Context, fragments []string) int {
	if err := s.primary.Open(ctx); err != nil {
		s.log.Warn().Err(err).Msg("digest: основной транспорт недоступен")
		return 0
	}
	defer func() {
		if err := s.primary.Close(); err != nil {
			s.log.Warn().Err(err).Msg("digest: ошибка закрытия основного транспорта")
		}
	}()
	return s.sendAll(ctx, s.primary, fragments)
}

// sendAll отправляет фрагменты по порядку и возвращает число доставленных.
// Ошибка отдельного фрагмента не прерывает отправку остальных.
func (s *Service) sendAll(ctx context.Context, transport domain.Transport, fragments []string) int {
	sent := 0
	for i, fragment := range fragments {
		if i > 0 && s.opts.SendDelay > 0 {
			select {
			case <-ctx.Done():
				return sent
			case <-time.After(s.opts.SendDelay):
			}
		}
		if err := transport.Send(ctx, fragment); err != nil {
			s.log.Error().Err(err).Str("transport", transport.Name()).Int("fragment", i+1).Msg("digest: фрагмент не доставлен")
			metrics.IncFragmentSent(transport.Name(), err)
			continue
		}
		metrics.IncFragmentSent(transport.Name(), nil)
		sent++
	}
	return sent
}
