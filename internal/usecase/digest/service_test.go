package digest

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/tiequan12345/DiscordV2Bot/internal/domain"
)

type stubCollector struct {
	transcript domain.Transcript
	err        error
	gotSources []domain.Source
}

func (c *stubCollector) Collect(_ context.Context, sources []domain.Source, _ domain.Window) (domain.Transcript, error) {
	c.gotSources = sources
	return c.transcript, c.err
}

type stubSummarizer struct {
	summary string
	got     string
}

func (s *stubSummarizer) Summarize(_ context.Context, conversation string) string {
	s.got = conversation
	return s.summary
}

type stubSplitter struct {
	fragments []string
	got       string
}

func (s *stubSplitter) Split(text string) []string {
	s.got = text
	if s.fragments != nil {
		return s.fragments
	}
	return []string{text}
}

type fakeTransport struct {
	name   string
	failOn map[int]bool // номер вызова, начиная с единицы
	calls  int
	sent   []string
}

func (t *fakeTransport) Name() string { return t.name }

func (t *fakeTransport) Send(_ context.Context, fragment string) error {
	t.calls++
	if t.failOn[t.calls] {
		return errors.New("отправка не удалась")
	}
	t.sent = append(t.sent, fragment)
	return nil
}

type fakeSession struct {
	fakeTransport
	openErr error
	opened  bool
	closed  bool
}

func (s *fakeSession) Open(context.Context) error {
	if s.openErr != nil {
		return s.openErr
	}
	s.opened = true
	return nil
}

func (s *fakeSession) Close() error {
	s.closed = true
	return nil
}

func sampleTranscript() domain.Transcript {
	base := time.Now().UTC()
	return domain.Transcript{
		Messages: []domain.Message{
			{ID: "1", ChannelID: "100", ChannelName: "alpha", Author: "alice", Content: "первое", Timestamp: base.Add(-2 * time.Hour)},
			{ID: "2", ChannelID: "200", ChannelName: "beta", Author: "bob", Content: "второе", Timestamp: base.Add(-1 * time.Hour)},
		},
		Names: []string{"alpha", "beta"},
	}
}

func defaultOptions() Options {
	return Options{Label: "defi", Sources: []domain.Source{{ChannelID: "100"}, {ChannelID: "200"}}, Hours: 12}
}

func TestRunDeliversViaPrimary(t *testing.T) {
	collector := &stubCollector{transcript: sampleTranscript()}
	sum := &stubSummarizer{summary: "сводка"}
	split := &stubSplitter{}
	primary := &fakeSession{fakeTransport: fakeTransport{name: "bot"}}
	fallback := &fakeTransport{name: "user"}
	service := NewService(collector, sum, split, primary, fallback, zerolog.Nop(), defaultOptions())

	if err := service.Run(context.Background()); err != nil {
		t.Fatalf("не ожидали ошибку: %v", err)
	}

	if !primary.opened || !primary.closed {
		t.Fatalf("сессия основного транспорта должна открываться и закрываться")
	}
	if len(primary.sent) != 1 {
		t.Fatalf("ожидали 1 фрагмент, получили %d", len(primary.sent))
	}
	if len(fallback.sent) != 0 {
		t.Fatalf("резервный транспорт не должен использоваться при полной доставке")
	}
	wantHeader := "**Aggregated Summary (defi) of 2 Channels (2 msgs):**\nalpha, beta\n\n"
	if !strings.HasPrefix(primary.sent[0], wantHeader) {
		t.Fatalf("неожиданный заголовок:\n%s", primary.sent[0])
	}
	if !strings.Contains(primary.sent[0], "сводка") {
		t.Fatalf("фрагмент должен содержать сводку")
	}
	if !strings.Contains(sum.got, "[alpha] alice: первое") {
		t.Fatalf("суммаризатор должен получить переписку, получил %q", sum.got)
	}
}

func TestRunResendsWholeSetViaFallback(t *testing.T) {
	collector := &stubCollector{transcript: sampleTranscript()}
	sum := &stubSummarizer{summary: "сводка"}
	split := &stubSplitter{fragments: []string{"f1", "f2", "f3"}}
	primary := &fakeSession{fakeTransport: fakeTransport{name: "bot", failOn: map[int]bool{2: true}}}
	fallback := &fakeTransport{name: "user"}
	service := NewService(collector, sum, split, primary, fallback, zerolog.Nop(), defaultOptions())

	if err := service.Run(context.Background()); err != nil {
		t.Fatalf("полная доставка резервом не должна давать ошибку: %v", err)
	}

	if len(primary.sent) != 2 {
		t.Fatalf("основной транспорт должен доставить 2 из 3, доставил %d", len(primary.sent))
	}
	if !primary.closed {
		t.Fatalf("сессия должна закрываться и при неполной доставке")
	}
	if len(fallback.sent) != 3 {
		t.Fatalf("резерв повторяет весь набор, отправлено %d", len(fallback.sent))
	}
	for i, want := range []string{"f1", "f2", "f3"} {
		if fallback.sent[i] != want {
			t.Fatalf("позиция %d: ожидали %q, получили %q", i, want, fallback.sent[i])
		}
	}
}

func TestRunPrimaryOpenFailureUsesFallback(t *testing.T) {
	collector := &stubCollector{transcript: sampleTranscript()}
	primary := &fakeSession{fakeTransport: fakeTransport{name: "bot"}, openErr: errors.New("гейтвей недоступен")}
	fallback := &fakeTransport{name: "user"}
	service := NewService(collector, &stubSummarizer{summary: "сводка"}, &stubSplitter{}, primary, fallback, zerolog.Nop(), defaultOptions())

	if err := service.Run(context.Background()); err != nil {
		t.Fatalf("не ожидали ошибку: %v", err)
	}
	if len(primary.sent) != 0 {
		t.Fatalf("при сбое открытия сессии фрагменты основным транспортом не идут")
	}
	if len(fallback.sent) != 1 {
		t.Fatalf("резерв должен доставить весь набор, отправлено %d", len(fallback.sent))
	}
}

func TestRunFallbackIncomplete(t *testing.T) {
	collector := &stubCollector{transcript: sampleTranscript()}
	split := &stubSplitter{fragments: []string{"f1", "f2"}}
	primary := &fakeSession{fakeTransport: fakeTransport{name: "bot", failOn: map[int]bool{1: true, 2: true}}}
	fallback := &fakeTransport{name: "user", failOn: map[int]bool{2: true}}
	service := NewService(collector, &stubSummarizer{summary: "сводка"}, split, primary, fallback, zerolog.Nop(), defaultOptions())

	err := service.Run(context.Background())
	if err == nil {
		t.Fatalf("неполная доставка резервом должна давать ошибку")
	}
	if !strings.Contains(err.Error(), "1 из 2") {
		t.Fatalf("ошибка должна называть счёт доставки: %v", err)
	}
}

func TestRunWithoutTransports(t *testing.T) {
	collector := &stubCollector{transcript: sampleTranscript()}
	service := NewService(collector, &stubSummarizer{summary: "сводка"}, &stubSplitter{}, nil, nil, zerolog.Nop(), defaultOptions())

	err := service.Run(context.Background())
	if !errors.Is(err, ErrNoTransport) {
		t.Fatalf("ожидали ErrNoTransport, получили %v", err)
	}
}

func TestRunEmptyTranscript(t *testing.T) {
	collector := &stubCollector{}
	sum := &stubSummarizer{summary: "сводка"}
	service := NewService(collector, sum, &stubSplitter{}, nil, nil, zerolog.Nop(), defaultOptions())

	if err := service.Run(context.Background()); err != nil {
		t.Fatalf("пустое окно выборки завершается без ошибки: %v", err)
	}
	if sum.got != "" {
		t.Fatalf("без сообщений суммаризатор не вызывается")
	}
}

func TestRunNoSendSkipsTransports(t *testing.T) {
	collector := &stubCollector{transcript: sampleTranscript()}
	primary := &fakeSession{fakeTransport: fakeTransport{name: "bot"}}
	fallback := &fakeTransport{name: "user"}
	opts := defaultOptions()
	opts.NoSend = true
	service := NewService(collector, &stubSummarizer{summary: "сводка"}, &stubSplitter{}, primary, fallback, zerolog.Nop(), opts)

	if err := service.Run(context.Background()); err != nil {
		t.Fatalf("не ожидали ошибку: %v", err)
	}
	if primary.opened || len(primary.sent) != 0 || len(fallback.sent) != 0 {
		t.Fatalf("в режиме без отправки транспорты не трогаются")
	}
}

func TestRunQuoteStyleAndFooter(t *testing.T) {
	collector := &stubCollector{transcript: sampleTranscript()}
	sum := &stubSummarizer{summary: "первая строка\n\nвторая строка"}
	split := &stubSplitter{}
	primary := &fakeSession{fakeTransport: fakeTransport{name: "bot"}}
	opts := defaultOptions()
	opts.QuoteStyle = true
	opts.Footer = true
	service := NewService(collector, sum, split, primary, nil, zerolog.Nop(), opts)

	if err := service.Run(context.Background()); err != nil {
		t.Fatalf("не ожидали ошибку: %v", err)
	}
	if !strings.Contains(split.got, "> первая строка\n> вторая строка") {
		t.Fatalf("пустые строки выбрасываются, остальные цитируются:\n%s", split.got)
	}
	if !strings.HasSuffix(split.got, Footer) {
		t.Fatalf("текст должен заканчиваться разделителем")
	}
}

func TestRunCollectorError(t *testing.T) {
	collector := &stubCollector{err: errors.New("сеть недоступна")}
	service := NewService(collector, &stubSummarizer{}, &stubSplitter{}, nil, nil, zerolog.Nop(), defaultOptions())

	if err := service.Run(context.Background()); err == nil {
		t.Fatalf("ошибка сбора должна прерывать запуск")
	}
}

func TestDebugReport(t *testing.T) {
	collector := &stubCollector{transcript: sampleTranscript()}
	service := NewService(collector, &stubSummarizer{}, &stubSplitter{}, nil, nil, zerolog.Nop(), defaultOptions())

	report, err := service.Debug(context.Background())
	if err != nil {
		t.Fatalf("не ожидали ошибку: %v", err)
	}
	sep := strings.Repeat("=", 50)
	if !strings.HasPrefix(report, sep+"\nAGGREGATED CONVERSATION (defi) - 2 messages\nalpha, beta\n") {
		t.Fatalf("неожиданная шапка отчёта:\n%s", report)
	}
	if !strings.Contains(report, "[beta] bob: второе") {
		t.Fatalf("отчёт должен содержать переписку")
	}
	if !strings.HasSuffix(report, sep) {
		t.Fatalf("отчёт должен заканчиваться разделителем")
	}
}

func TestDebugEmptyTranscript(t *testing.T) {
	collector := &stubCollector{}
	service := NewService(collector, &stubSummarizer{}, &stubSplitter{}, nil, nil, zerolog.Nop(), defaultOptions())

	report, err := service.Debug(context.Background())
	if err != nil {
		t.Fatalf("не ожидали ошибку: %v", err)
	}
	if report != "" {
		t.Fatalf("без сообщений отчёт пуст, получили %q", report)
	}
}
