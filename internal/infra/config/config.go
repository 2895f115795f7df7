package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// ErrNoSummarizerKey возвращается, когда не задан ключ OpenRouter.
var ErrNoSummarizerKey = errors.New("не задан OPENROUTER_API_KEY: сводку сгенерировать нельзя")

// ErrNoSendToken возвращается, когда не задан ни один токен для отправки.
var ErrNoSendToken = errors.New("не заданы ни BOT_TOKEN, ни DISCORD_TOKEN: отправка невозможна")

// AppConfig описывает конфигурацию запуска. Структура заполняется один раз
// на старте и дальше передаётся по значению.
type AppConfig struct {
	AppEnv      string `envconfig:"APP_ENV" default:"dev"`
	MetricsAddr string `envconfig:"METRICS_ADDR"`

	Discord struct {
		UserToken string        `envconfig:"DISCORD_TOKEN"`
		BotToken  string        `envconfig:"BOT_TOKEN"`
		BaseURL   string        `envconfig:"DISCORD_API_BASE_URL" default:"https://discord.com/api/v9"`
		Timeout   time.Duration `envconfig:"DISCORD_HTTP_TIMEOUT" default:"30s"`
		PageSize  int           `envconfig:"DISCORD_PAGE_SIZE" default:"100"`
		PageDelay time.Duration `envconfig:"DISCORD_PAGE_DELAY" default:"500ms"`
		MaxPages  int           `envconfig:"DISCORD_MAX_PAGES" default:"200"`
	} `envconfig:""`

	OpenRouter struct {
		APIKey  string        `envconfig:"OPENROUTER_API_KEY"`
		Model   string        `envconfig:"OPENROUTER_MODEL" default:"openrouter/quasar-alpha"`
		BaseURL string        `envconfig:"OPENROUTER_BASE_URL" default:"https://openrouter.ai/api/v1"`
		Timeout time.Duration `envconfig:"OPENROUTER_TIMEOUT" default:"180s"`
	} `envconfig:""`

	Digest struct {
		Hours      int    `envconfig:"DIGEST_HOURS" default:"12"`
		PromptDir  string `envconfig:"PROMPT_DIR" default:"."`
		QuoteStyle bool   `envconfig:"DIGEST_QUOTE_STYLE" default:"false"`
		Footer     bool   `envconfig:"DIGEST_FOOTER" default:"true"`
	} `envconfig:""`

	Delivery struct {
		FragmentLimit int           `envconfig:"DELIVERY_FRAGMENT_LIMIT" default:"2000"`
		SendDelay     time.Duration `envconfig:"DELIVERY_SEND_DELAY" default:"1s"`
	} `envconfig:""`
}

// Load загружает конфиг из окружения.
func Load() AppConfig {
	var cfg AppConfig
	if err := envconfig.Process("", &cfg); err != nil {
		log.Fatalf("не удалось загрузить конфиг: %v", err)
	}
	return cfg
}

// ValidateFor проверяет, что для выбранного режима заданы обязательные секреты.
// В режиме debug конвейер не ходит ни в LLM, ни в транспорты, поэтому секреты
// не требуются; в режиме noSend не нужны токены отправки.
func (c AppConfig) ValidateFor(debug, noSend bool) error {
	if debug {
		return nil
	}
	if c.OpenRouter.APIKey == "" {
		return ErrNoSummarizerKey
	}
	if noSend {
		return nil
	}
	if c.Discord.BotToken == "" && c.Discord.UserToken == "" {
		return ErrNoSendToken
	}
	return nil
}

// Profile описывает активный профиль дайджеста: из каких каналов собирать
// и куда публиковать результат.
type Profile struct {
	Label           string
	ChannelIDs      []string
	OutputChannelID string
}

// LoadProfile читает настройки профиля label из переменных вида
// {LABEL}_CHANNEL_IDS (список id через запятую) и {LABEL}_OUTPUT_CHANNEL_ID.
func LoadProfile(label string) (Profile, error) {
	prefix := strings.ToUpper(strings.TrimSpace(label))
	if prefix == "" {
		return Profile{}, errors.New("пустая метка профиля")
	}

	var ids []string
	for _, id := range strings.Split(os.Getenv(prefix+"_CHANNEL_IDS"), ",") {
		id = strings.TrimSpace(id)
		if id != "" {
			ids = append(ids, id)
		}
	}
	output := strings.TrimSpace(os.Getenv(prefix + "_OUTPUT_CHANNEL_ID"))

	var missing []string
	if len(ids) == 0 {
		missing = append(missing, prefix+"_CHANNEL_IDS")
	}
	if output == "" {
		missing = append(missing, prefix+"_OUTPUT_CHANNEL_ID")
	}
	if len(missing) > 0 {
		return Profile{}, fmt.Errorf("профиль %q: не заданы переменные %s", label, strings.Join(missing, ", "))
	}

	return Profile{Label: strings.ToLower(label), ChannelIDs: ids, OutputChannelID: output}, nil
}
