package discord

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/tiequan12345/DiscordV2Bot/internal/domain"
	"github.com/tiequan12345/DiscordV2Bot/internal/infra/metrics"
)

// CollectorConfig задаёт параметры пагинации истории.
type CollectorConfig struct {
	PageSize  int
	PageDelay time.Duration
	MaxPages  int
}

// Collector выгружает историю каналов через REST API. Метаданные и история
// каждого источника запрашиваются параллельно; пагинация внутри источника
// строго последовательна, между страницами выдерживается пауза.
type Collector struct {
	client *Client
	log    zerolog.Logger
	cfg    CollectorConfig
}

// NewCollector создаёт коллектор истории каналов.
func NewCollector(client *Client, logger zerolog.Logger, cfg CollectorConfig) *Collector {
	if cfg.PageSize <= 0 {
		cfg.PageSize = 100
	}
	if cfg.PageDelay < 0 {
		cfg.PageDelay = 0
	}
	if cfg.MaxPages <= 0 {
		cfg.MaxPages = 200
	}
	return &Collector{client: client, log: logger, cfg: cfg}
}

var _ domain.Collector = (*Collector)(nil)

type sourceSlot struct {
	name string
	msgs []domain.Message
}

// Collect собирает сообщения всех источников за окно выборки. Ошибка одного
// источника не прерывает остальных: источник получает имя-заглушку и пустой
// список. Без пользовательского токена сбор вырождается в пустую выгрузку
// с именами-заглушками.
func (c *Collector) Collect(ctx context.Context, sources []domain.Source, window domain.Window) (domain.Transcript, error) {
	c.log.Info().Int("channels", len(sources)).Time("cutoff", window.Cutoff).Msg("collector: выгрузка истории каналов")

	slots := make([]sourceSlot, len(sources))
	var wg sync.WaitGroup
	for i, src := range sources {
		wg.Add(2)
		go func(slot *sourceSlot, src domain.Source) {
			defer wg.Done()
			slot.name = c.resolveName(ctx, src)
		}(&slots[i], src)
		go func(slot *sourceSlot, src domain.Source) {
			defer wg.Done()
			slot.msgs = c.fetchHistory(ctx, src, window)
		}(&slots[i], src)
	}
	wg.Wait()

	transcript := domain.Transcript{Names: make([]string, 0, len(sources))}
	for i := range slots {
		transcript.Names = append(transcript.Names, slots[i].name)
		metrics.AddMessagesRetained(sources[i].ChannelID, len(slots[i].msgs))
		for _, msg := range slots[i].msgs {
			if msg.Content == "" {
				continue
			}
			msg.ChannelName = slots[i].name
			transcript.Messages = append(transcript.Messages, msg)
		}
	}
	sort.SliceStable(transcript.Messages, func(i, j int) bool {
		return transcript.Messages[i].Timestamp.Before(transcript.Messages[j].Timestamp)
	})

	if err := ctx.Err(); err != nil {
		return transcript, err
	}
	return transcript, nil
}

func (c *Collector) resolveName(ctx context.Context, src domain.Source) string {
	if !c.client.Authorized() {
		return src.UnknownName()
	}
	name, err := c.client.ChannelName(ctx, src.ChannelID)
	if err != nil {
		metrics.CollectorErrors.Inc()
		c.log.Warn().Err(err).Str("channel_id", src.ChannelID).Msg("collector: метаданные канала не получены")
		return src.ErrorName()
	}
	if name == "" {
		return src.UnknownName()
	}
	return name
}

func (c *Collector) fetchHistory(ctx context.Context, src domain.Source, window domain.Window) []domain.Message {
	if !c.client.Authorized() {
		return nil
	}

	var collected []domain.Message
	beforeID := ""

	for page := 0; ; page++ {
		if page >= c.cfg.MaxPages {
			c.log.Warn().Str("channel_id", src.ChannelID).Int("pages", page).Msg("collector: достигнут предел страниц")
			break
		}

		msgs, err := c.client.Messages(ctx, src.ChannelID, c.cfg.PageSize, beforeID)
		if err != nil {
			metrics.CollectorErrors.Inc()
			c.log.Warn().Err(err).Str("channel_id", src.ChannelID).Msg("collector: пагинация прервана, оставляем накопленное")
			break
		}
		if len(msgs) == 0 {
			break
		}
		metrics.IncPageFetched(src.ChannelID)

		hitCutoff := false
		for _, m := range msgs {
			ts, err := time.Parse(time.RFC3339, m.Timestamp)
			if err != nil {
				c.log.Debug().Str("channel_id", src.ChannelID).Str("msg_id", m.ID).Msg("collector: сообщение без валидной метки времени пропущено")
				continue
			}
			if window.Contains(ts) {
				collected = append(collected, domain.Message{
					ID:        m.ID,
					ChannelID: src.ChannelID,
					Author:    m.DisplayAuthor(),
					Content:   m.Content,
					Timestamp: ts,
				})
			} else {
				hitCutoff = true
			}
		}
		if hitCutoff {
			break
		}

		beforeID = msgs[len(msgs)-1].ID
		select {
		case <-ctx.Done():
			return filterWindow(collected, window)
		case <-time.After(c.cfg.PageDelay):
		}
	}

	return filterWindow(collected, window)
}

// filterWindow — защитная повторная проверка границы окна перед слиянием.
// Сообщение с меткой времени не позже Cutoff не должно пройти дальше,
// даже если пагинация его пропустила.
func filterWindow(msgs []domain.Message, window domain.Window) []domain.Message {
	inWindow := msgs[:0]
	for _, m := range msgs {
		if window.Contains(m.Timestamp) {
			inWindow = append(inWindow, m)
		}
	}
	if len(inWindow) == 0 {
		return nil
	}
	return inWindow
}
