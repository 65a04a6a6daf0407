package discord

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"TVRelay/internal/domain/models"
)

func TestSendPostsEmbed(t *testing.T) {
	var got payload
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("content type = %s", ct)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode: %v", err)
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	s := New(srv.URL, time.Second)
	n := models.Notification{Subject: "BUY AAPL", Body: "Symbol: AAPL\nAction: BUY", Timestamp: time.Now()}
	if err := s.Send(context.Background(), n); err != nil {
		t.Fatalf("send: %v", err)
	}

	if got.Content != "**BUY AAPL**" {
		t.Fatalf("content = %q", got.Content)
	}
	if len(got.Embeds) != 1 {
		t.Fatalf("embeds = %d", len(got.Embeds))
	}
	e := got.Embeds[0]
	if e.Title != "🚨 BUY AAPL" || e.Description != n.Body || e.Color != ColorBuy {
		t.Fatalf("embed = %+v", e)
	}
	if e.Footer.Text != footerText {
		t.Fatalf("footer = %q", e.Footer.Text)
	}
}

func TestSendNon204IsFailure(t *testing.T) {
	for _, status := range []int{http.StatusOK, http.StatusBadRequest, http.StatusInternalServerError} {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(status)
		}))
		s := New(srv.URL, time.Second)
		if err := s.Send(context.Background(), models.Notification{Subject: "x"}); err == nil {
			t.Errorf("status %d: expected error", status)
		}
		srv.Close()
	}
}

func TestSendUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	if err := New(url, time.Second).Send(context.Background(), models.Notification{}); err == nil {
		t.Fatalf("expected connection error")
	}
}

func TestEnabled(t *testing.T) {
	if New("", 0).Enabled() {
		t.Fatalf("empty url must be disabled")
	}
	if !New("https://discord.example/api/webhooks/1", 0).Enabled() {
		t.Fatalf("expected enabled")
	}
}

func TestColor(t *testing.T) {
	tests := []struct {
		body string
		want int
	}{
		{"Action: BUY", ColorBuy},
		{"Action: SELL", ColorSell},
		{"BUY and SELL", ColorBuy},
		{"action: buy", ColorNeutral},
		{"nothing", ColorNeutral},
	}
	for _, tt := range tests {
		if got := Color(tt.body); got != tt.want {
			t.Errorf("Color(%q) = %#x, want %#x", tt.body, got, tt.want)
		}
	}
}
