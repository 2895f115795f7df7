package discord

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestSendMessageAcceptsOnlyOK(t *testing.T) {
	var gotAuth, gotAgent, gotBody string
	status := http.StatusOK
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/channels/42/messages" {
			t.Errorf("неожиданный запрос: %s %s", r.Method, r.URL.Path)
		}
		gotAuth = r.Header.Get("Authorization")
		gotAgent = r.Header.Get("User-Agent")
		var req createMessageRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		gotBody = req.Content
		w.WriteHeader(status)
	}))
	defer ts.Close()

	client := NewClient("secret-token", ts.URL, time.Second)
	if err := client.SendMessage(context.Background(), "42", "привет"); err != nil {
		t.Fatalf("ожидали успех на 200: %v", err)
	}
	if gotAuth != "secret-token" {
		t.Fatalf("токен передаётся как есть, без префикса: %q", gotAuth)
	}
	if !strings.Contains(gotAgent, "Mozilla/5.0") {
		t.Fatalf("ожидали браузерный User-Agent, получили %q", gotAgent)
	}
	if gotBody != "привет" {
		t.Fatalf("тело запроса искажено: %q", gotBody)
	}

	// 204 и другие не-200 статусы считаются отказом
	status = http.StatusNoContent
	if err := client.SendMessage(context.Background(), "42", "ещё"); err == nil {
		t.Fatalf("любой статус кроме 200 — ошибка доставки")
	}
}

func TestChannelName(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/channels/42" {
			t.Errorf("неожиданный путь: %s", r.URL.Path)
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"name": "trading-floor"})
	}))
	defer ts.Close()

	client := NewClient("secret-token", ts.URL, time.Second)
	name, err := client.ChannelName(context.Background(), "42")
	if err != nil {
		t.Fatalf("не ожидали ошибку: %v", err)
	}
	if name != "trading-floor" {
		t.Fatalf("ожидали trading-floor, получили %q", name)
	}
}

func TestMessagesBuildsPagingQuery(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("limit") != "50" || q.Get("before") != "777" {
			t.Errorf("неожиданные параметры пагинации: %s", r.URL.RawQuery)
		}
		_, _ = w.Write([]byte(`[]`))
	}))
	defer ts.Close()

	client := NewClient("secret-token", ts.URL, time.Second)
	if _, err := client.Messages(context.Background(), "42", 50, "777"); err != nil {
		t.Fatalf("не ожидали ошибку: %v", err)
	}
}
