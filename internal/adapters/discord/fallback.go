package discord

import (
	"context"
	"errors"
	"fmt"

	"github.com/tiequan12345/DiscordV2Bot/internal/domain"
)

// ErrNoUserToken возвращается при попытке резервной отправки без токена.
var ErrNoUserToken = errors.New("пользовательский токен не задан")

// Fallback отправляет фрагменты прямым POST от имени пользователя, без
// постоянной сессии. Используется, когда бот-транспорт недоступен или
// доставил не все фрагменты.
type Fallback struct {
	client    *Client
	channelID string
}

// NewFallback создаёт резервный транспорт поверх REST клиента.
func NewFallback(client *Client, channelID string) *Fallback {
	return &Fallback{client: client, channelID: channelID}
}

var _ domain.Transport = (*Fallback)(nil)

// Name возвращает имя транспорта.
func (f *Fallback) Name() string {
	return "user"
}

// Send публикует один фрагмент в выходной канал.
func (f *Fallback) Send(ctx context.Context, fragment string) error {
	if !f.client.Authorized() {
		return ErrNoUserToken
	}
	if err := f.client.SendMessage(ctx, f.channelID, fragment); err != nil {
		return fmt.Errorf("отправка фрагмента: %w", err)
	}
	return nil
}
