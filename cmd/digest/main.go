package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/tiequan12345/DiscordV2Bot/internal/adapters/bot"
	"github.com/tiequan12345/DiscordV2Bot/internal/adapters/discord"
	"github.com/tiequan12345/DiscordV2Bot/internal/adapters/summarizer"
	"github.com/tiequan12345/DiscordV2Bot/internal/domain"
	"github.com/tiequan12345/DiscordV2Bot/internal/infra/config"
	apphttp "github.com/tiequan12345/DiscordV2Bot/internal/infra/http"
	applog "github.com/tiequan12345/DiscordV2Bot/internal/infra/log"
	"github.com/tiequan12345/DiscordV2Bot/internal/infra/metrics"
	"github.com/tiequan12345/DiscordV2Bot/internal/infra/openrouter"
	"github.com/tiequan12345/DiscordV2Bot/internal/infra/prompts"
	digestusecase "github.com/tiequan12345/DiscordV2Bot/internal/usecase/digest"
)

func main() {
	_ = godotenv.Load()

	label := flag.String("config", "defi", "метка профиля каналов")
	hours := flag.Int("hours", 0, "окно выборки в часах, 0 — значение из окружения")
	debug := flag.Bool("debug", false, "показать собранную переписку и выйти")
	noSend := flag.Bool("no-send", false, "построить дайджест без отправки")
	flag.Parse()

	cfg := config.Load()
	logger := applog.NewLogger(cfg.AppEnv).With().Str("run_id", uuid.NewString()).Logger()

	metrics.MustRegister(prometheus.DefaultRegisterer)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if *hours > 0 {
		cfg.Digest.Hours = *hours
	}

	profile, err := config.LoadProfile(*label)
	if err != nil {
		logger.Fatal().Err(err).Msg("digest: профиль каналов не загружен")
	}
	if err := cfg.ValidateFor(*debug, *noSend); err != nil {
		logger.Fatal().Err(err).Msg("digest: конфигурация неполна")
	}
	if cfg.Discord.UserToken == "" {
		logger.Warn().Msg("digest: DISCORD_TOKEN не задан, история не выгружается и резервная отправка недоступна")
	}

	if cfg.MetricsAddr != "" {
		srv := apphttp.NewServer(logger.With().Str("component", "http").Logger())
		go func() {
			if err := srv.Start(cfg.MetricsAddr); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error().Err(err).Msg("digest: служебный сервер остановился с ошибкой")
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	restClient := discord.NewClient(cfg.Discord.UserToken, cfg.Discord.BaseURL, cfg.Discord.Timeout)
	collector := discord.NewCollector(restClient, logger.With().Str("component", "collector").Logger(), discord.CollectorConfig{
		PageSize:  cfg.Discord.PageSize,
		PageDelay: cfg.Discord.PageDelay,
		MaxPages:  cfg.Discord.MaxPages,
	})

	prompt, err := prompts.Load(cfg.Digest.PromptDir, profile.Label)
	if err != nil {
		logger.Warn().Err(err).Msg("digest: используем встроенную инструкцию")
	}
	openrouterClient := openrouter.NewClient(cfg.OpenRouter.APIKey, cfg.OpenRouter.BaseURL, cfg.OpenRouter.Timeout)
	summarizerAdapter := summarizer.NewOpenRouter(openrouterClient, cfg.OpenRouter.Model, prompt, cfg.OpenRouter.Timeout, logger.With().Str("component", "summarizer").Logger())

	splitter := discord.Splitter{Limit: cfg.Delivery.FragmentLimit, QuoteAware: cfg.Digest.QuoteStyle}

	var primary domain.SessionTransport
	if cfg.Discord.BotToken != "" {
		session, err := bot.NewSession(cfg.Discord.BotToken, profile.OutputChannelID, logger.With().Str("component", "bot").Logger())
		if err != nil {
			logger.Warn().Err(err).Msg("digest: бот-транспорт не создан, остаётся только резервный")
		} else {
			primary = session
		}
	}
	var fallback domain.Transport
	if cfg.Discord.UserToken != "" {
		fallback = discord.NewFallback(restClient, profile.OutputChannelID)
	}

	service := digestusecase.NewService(collector, summarizerAdapter, splitter, primary, fallback, logger.With().Str("component", "digest").Logger(), digestusecase.Options{
		Label:      profile.Label,
		Sources:    sourcesFromProfile(profile),
		Hours:      cfg.Digest.Hours,
		QuoteStyle: cfg.Digest.QuoteStyle,
		Footer:     cfg.Digest.Footer,
		NoSend:     *noSend,
		SendDelay:  cfg.Delivery.SendDelay,
	})

	if *debug {
		report, err := service.Debug(ctx)
		if err != nil {
			logger.Fatal().Err(err).Msg("digest: сбор переписки не удался")
		}
		if report == "" {
			logger.Info().Msg("digest: сообщений за окно выборки нет")
			return
		}
		fmt.Println(report)
		return
	}

	logger.Info().
		Str("profile", profile.Label).
		Int("hours", cfg.Digest.Hours).
		Int("channels", len(profile.ChannelIDs)).
		Msg("digest: запуск")
	if err := service.Run(ctx); err != nil {
		logger.Fatal().Err(err).Msg("digest: запуск завершился ошибкой")
	}
	logger.Info().Msg("digest: завершено")
}

func sourcesFromProfile(profile config.Profile) []domain.Source {
	sources := make([]domain.Source, 0, len(profile.ChannelIDs))
	for _, id := range profile.ChannelIDs {
		sources = append(sources, domain.Source{ChannelID: id})
	}
	return sources
}
