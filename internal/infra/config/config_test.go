package config

import (
	"errors"
	"strings"
	"testing"
)

func TestLoadProfile(t *testing.T) {
	t.Setenv("DEFI_CHANNEL_IDS", "111, 222,,333")
	t.Setenv("DEFI_OUTPUT_CHANNEL_ID", "999")

	profile, err := LoadProfile("defi")
	if err != nil {
		t.Fatalf("не ожидали ошибку: %v", err)
	}
	if profile.Label != "defi" {
		t.Fatalf("ожидали метку defi, получили %q", profile.Label)
	}
	if len(profile.ChannelIDs) != 3 {
		t.Fatalf("ожидали 3 канала, получили %d", len(profile.ChannelIDs))
	}
	if profile.ChannelIDs[1] != "222" {
		t.Fatalf("пробелы вокруг id должны отбрасываться: %q", profile.ChannelIDs[1])
	}
	if profile.OutputChannelID != "999" {
		t.Fatalf("неожиданный выходной канал: %q", profile.OutputChannelID)
	}
}

func TestLoadProfileMissingVars(t *testing.T) {
	t.Setenv("ORDINALS_CHANNEL_IDS", "")
	t.Setenv("ORDINALS_OUTPUT_CHANNEL_ID", "")

	_, err := LoadProfile("ordinals")
	if err == nil {
		t.Fatal("ожидали ошибку для пустого профиля")
	}
	if !strings.Contains(err.Error(), "ORDINALS_CHANNEL_IDS") || !strings.Contains(err.Error(), "ORDINALS_OUTPUT_CHANNEL_ID") {
		t.Fatalf("ошибка должна называть недостающие переменные: %v", err)
	}
}

func TestValidateFor(t *testing.T) {
	var cfg AppConfig

	if err := cfg.ValidateFor(true, false); err != nil {
		t.Fatalf("в режиме debug секреты не требуются: %v", err)
	}

	if err := cfg.ValidateFor(false, false); !errors.Is(err, ErrNoSummarizerKey) {
		t.Fatalf("ожидали ErrNoSummarizerKey, получили %v", err)
	}

	cfg.OpenRouter.APIKey = "key"
	if err := cfg.ValidateFor(false, true); err != nil {
		t.Fatalf("в режиме no-send токены отправки не требуются: %v", err)
	}
	if err := cfg.ValidateFor(false, false); !errors.Is(err, ErrNoSendToken) {
		t.Fatalf("ожидали ErrNoSendToken, получили %v", err)
	}

	cfg.Discord.UserToken = "user-token"
	if err := cfg.ValidateFor(false, false); err != nil {
		t.Fatalf("пользовательского токена достаточно для отправки: %v", err)
	}
}
