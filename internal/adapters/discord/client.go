package discord

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/tiequan12345/DiscordV2Bot/internal/infra/metrics"
)

const defaultBaseURL = "https://discord.com/api/v9"

// userAgent маскирует запросы под браузер: с дефолтным Go-агентом API
// отклоняет запросы с пользовательским токеном.
const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/94.0.4606.81 Safari/537.36"

// Client выполняет запросы к Discord REST API от имени пользователя.
// Пользовательский токен передаётся в Authorization как есть, без префикса Bearer.
type Client struct {
	http    *http.Client
	baseURL string
	token   string
}

// NewClient создаёт REST клиента Discord.
func NewClient(token, baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	baseURL = strings.TrimRight(baseURL, "/")
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{http: &http.Client{Timeout: timeout}, baseURL: baseURL, token: token}
}

// Authorized сообщает, задан ли пользовательский токен.
func (c *Client) Authorized() bool {
	return c.token != ""
}

type channelInfo struct {
	Name string `json:"name"`
}

// ChannelMessage — сообщение истории канала в формате ответа API.
type ChannelMessage struct {
	ID        string `json:"id"`
	Timestamp string `json:"timestamp"`
	Content   string `json:"content"`
	Author    struct {
		Username   string `json:"username"`
		GlobalName string `json:"global_name"`
	} `json:"author"`
}

// DisplayAuthor возвращает имя автора: глобальное имя, затем username, затем заглушку.
func (m ChannelMessage) DisplayAuthor() string {
	if m.Author.GlobalName != "" {
		return m.Author.GlobalName
	}
	if m.Author.Username != "" {
		return m.Author.Username
	}
	return "Unknown"
}

type createMessageRequest struct {
	Content string `json:"content"`
}

// ChannelName возвращает отображаемое имя канала.
func (c *Client) ChannelName(ctx context.Context, channelID string) (string, error) {
	var info channelInfo
	if err := c.get(ctx, "/channels/"+channelID, "channel_info", channelID, &info); err != nil {
		return "", err
	}
	return info.Name, nil
}

// Messages выгружает одну страницу истории канала, от новых к старым.
// beforeID задаёт курсор пагинации: возвращаются сообщения старше указанного id.
func (c *Client) Messages(ctx context.Context, channelID string, limit int, beforeID string) ([]ChannelMessage, error) {
	path := fmt.Sprintf("/channels/%s/messages?limit=%d", channelID, limit)
	if beforeID != "" {
		path += "&before=" + beforeID
	}
	var msgs []ChannelMessage
	if err := c.get(ctx, path, "messages", channelID, &msgs); err != nil {
		return nil, err
	}
	return msgs, nil
}

// SendMessage публикует сообщение в канал. Успехом считается только статус 200.
func (c *Client) SendMessage(ctx context.Context, channelID, content string) error {
	body, err := json.Marshal(createMessageRequest{Content: content})
	if err != nil {
		return fmt.Errorf("discord: marshal request: %w", err)
	}
	endpoint := fmt.Sprintf("%s/channels/%s/messages", c.baseURL, channelID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("discord: build request: %w", err)
	}
	c.setHeaders(req)

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		metrics.ObserveNetworkRequest("discord", "send_message", channelID, start, err)
		return fmt.Errorf("discord: do request: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		err = fmt.Errorf("discord: send returned %d", resp.StatusCode)
		metrics.ObserveNetworkRequest("discord", "send_message", channelID, start, err)
		return err
	}
	metrics.ObserveNetworkRequest("discord", "send_message", channelID, start, nil)
	return nil
}

func (c *Client) get(ctx context.Context, path, operation, target string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("discord: build request: %w", err)
	}
	c.setHeaders(req)

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		metrics.ObserveNetworkRequest("discord", operation, target, start, err)
		return fmt.Errorf("discord: do request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		metrics.ObserveNetworkRequest("discord", operation, target, start, err)
		return fmt.Errorf("discord: read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		err = fmt.Errorf("discord: unexpected status %d", resp.StatusCode)
		metrics.ObserveNetworkRequest("discord", operation, target, start, err)
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		metrics.ObserveNetworkRequest("discord", operation, target, start, err)
		return fmt.Errorf("discord: decode response: %w", err)
	}
	metrics.ObserveNetworkRequest("discord", operation, target, start, nil)
	return nil
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Authorization", c.token)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", userAgent)
}
