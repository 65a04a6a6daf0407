package models

import "time"

// Notification is the formatted subject/body pair handed to every sink.
type Notification struct {
	Subject   string    `json:"subject"`
	Body      string    `json:"body"`
	Timestamp time.Time `json:"timestamp"`
}

// DispatchResult is the outcome of one sink for one notification.
type DispatchResult struct {
	Sink    string `json:"sink"`
	Success bool   `json:"success"`
	Skipped bool   `json:"skipped,omitempty"`
	Detail  string `json:"detail,omitempty"`
}

// Delivered reports whether any sink accepted the notification.
func Delivered(results []DispatchResult) bool {
	for _, r := range results {
		if r.Success {
			return true
		}
	}
	return false
}

// Sink names as they appear in dispatch results and status output.
const (
	SinkDiscord  = "discord"
	SinkEmail    = "email"
	SinkTelegram = "telegram"
	SinkKafka    = "kafka"
)
