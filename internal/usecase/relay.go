package usecase

import (
	"context"
	"errors"
	"time"

	"TVRelay/internal/domain/models"
	"TVRelay/internal/domain/repository"
	applogger "TVRelay/pkg/logger"
)

// ErrUnauthorized is returned when the presented key does not match.
var ErrUnauthorized = errors.New("invalid key")

const testMessage = `This is a test from your TradingView notification system!

Your alerts will appear like this when TradingView sends them.

System Status: ✅ WORKING`

// Outcome is what the relay did with one accepted alert.
type Outcome struct {
	Subject string                  `json:"subject"`
	Results []models.DispatchResult `json:"results"`
}

// Relay runs the normalize, authorize, format, dispatch pipeline.
type Relay struct {
	secret     string
	formatter  *Formatter
	dispatcher *Dispatcher
	metrics    repository.Metrics
	l          *applogger.Logger
}

func NewRelay(secret string, formatter *Formatter, dispatcher *Dispatcher, metrics repository.Metrics, l *applogger.Logger) *Relay {
	if l == nil {
		l = applogger.Nop()
	}
	if metrics == nil {
		metrics = nopMetrics{}
	}
	if secret == "" {
		l.Warn("webhook secret is empty, every webhook will be rejected")
	}
	return &Relay{
		secret:     secret,
		formatter:  formatter,
		dispatcher: dispatcher,
		metrics:    metrics,
		l:          l,
	}
}

// Process handles one webhook body. Authorization always completes before
// any sink is contacted.
func (r *Relay) Process(ctx context.Context, contentType string, body []byte) (*Outcome, error) {
	start := time.Now()
	defer func() { r.metrics.RecordLatency("process", time.Since(start).Seconds()) }()

	alert, err := Normalize(contentType, body)
	if err != nil {
		r.metrics.RecordAlert("invalid")
		r.l.Error("webhook payload rejected", applogger.Error(err))
		return nil, err
	}

	if !Authorize(alert.SecretKey(), r.secret) {
		r.metrics.RecordAlert("unauthorized")
		r.l.Warn("invalid webhook key",
			applogger.Bool("key_present", alert.SecretKey() != ""),
			applogger.String("content_type", contentType),
		)
		return nil, ErrUnauthorized
	}

	n := r.formatter.Format(alert)
	results := r.dispatcher.Dispatch(ctx, n)

	r.metrics.RecordAlert("accepted")
	r.l.Info("alert processed",
		applogger.String("subject", n.Subject),
		applogger.String("body", n.Body),
		applogger.Bool("delivered", models.Delivered(results)),
	)
	return &Outcome{Subject: n.Subject, Results: results}, nil
}

// Test pushes a synthetic alert through the formatter and every sink.
func (r *Relay) Test(ctx context.Context) *Outcome {
	n := r.testNotification()
	results := r.dispatcher.Dispatch(ctx, n)
	r.l.Info("test notification sent", applogger.Bool("delivered", models.Delivered(results)))
	return &Outcome{Subject: n.Subject, Results: results}
}

// TestEmail pushes the synthetic alert through the email sink only.
func (r *Relay) TestEmail(ctx context.Context) models.DispatchResult {
	results := r.dispatcher.DispatchTo(ctx, r.testNotification(), models.SinkEmail)
	return results[0]
}

// SinkStatus reports which sinks are enabled.
func (r *Relay) SinkStatus() map[string]bool {
	return r.dispatcher.Status()
}

func (r *Relay) testNotification() models.Notification {
	n := r.formatter.Format(models.TextAlert{Message: testMessage})
	n.Subject = "TEST: " + n.Subject
	return n
}
