package discord

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"TVRelay/internal/domain/models"
	"TVRelay/internal/domain/repository"
	xhttp "TVRelay/pkg/http"
)

const (
	ColorBuy     = 0x00ff00
	ColorSell    = 0xff0000
	ColorNeutral = 0x0099ff

	footerText = "TradingView Alert System"
)

type embed struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Color       int    `json:"color"`
	Timestamp   string `json:"timestamp"`
	Footer      footer `json:"footer"`
}

type footer struct {
	Text string `json:"text"`
}

type payload struct {
	Content string  `json:"content"`
	Embeds  []embed `json:"embeds"`
}

// Sink posts notifications to a Discord channel webhook.
type Sink struct {
	url    string
	client *xhttp.Client
}

var _ repository.Sink = (*Sink)(nil)

// New returns a Discord sink. An empty url yields a disabled sink.
func New(url string, timeout time.Duration) *Sink {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Sink{url: url, client: xhttp.NewClient(xhttp.WithTimeout(timeout))}
}

func (s *Sink) Name() string  { return models.SinkDiscord }
func (s *Sink) Enabled() bool { return s.url != "" }

// Send posts one embed. Discord answers 204 on success; any other status
// is reported as an error.
func (s *Sink) Send(ctx context.Context, n models.Notification) error {
	resp, err := s.client.SendRequest(ctx, &xhttp.RequestOptions{
		Method:  xhttp.MethodPost,
		URL:     s.url,
		Headers: map[string]string{"Content-Type": "application/json"},
		Body:    buildPayload(n),
	})
	if err != nil {
		return fmt.Errorf("discord: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNoContent {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("discord: unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return nil
}

// Color picks the embed color from the body. The scan is case-sensitive.
func Color(body string) int {
	switch {
	case strings.Contains(body, "BUY"):
		return ColorBuy
	case strings.Contains(body, "SELL"):
		return ColorSell
	default:
		return ColorNeutral
	}
}

func buildPayload(n models.Notification) payload {
	return payload{
		Content: "**" + n.Subject + "**",
		Embeds: []embed{{
			Title:       "🚨 " + n.Subject,
			Description: n.Body,
			Color:       Color(n.Body),
			Timestamp:   n.Timestamp.Format(time.RFC3339),
			Footer:      footer{Text: footerText},
		}},
	}
}
