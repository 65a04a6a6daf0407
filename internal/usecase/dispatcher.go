package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"TVRelay/internal/domain/models"
	"TVRelay/internal/domain/repository"
	applogger "TVRelay/pkg/logger"
)

const (
	detailNotConfigured = "not configured"
	detailDelivered     = "delivered"
	detailUnknownSink   = "no such sink"
)

// Dispatcher fans one notification out to every configured sink. Sinks run
// concurrently and independently; a failure or panic in one never affects
// the others. Nothing is retried.
type Dispatcher struct {
	sinks   []repository.Sink
	timeout time.Duration
	metrics repository.Metrics
	l       *applogger.Logger
}

func NewDispatcher(l *applogger.Logger, metrics repository.Metrics, timeout time.Duration, sinks ...repository.Sink) *Dispatcher {
	if l == nil {
		l = applogger.Nop()
	}
	if metrics == nil {
		metrics = nopMetrics{}
	}
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Dispatcher{sinks: sinks, timeout: timeout, metrics: metrics, l: l}
}

// Dispatch sends n to all sinks. Results follow sink registration order.
func (d *Dispatcher) Dispatch(ctx context.Context, n models.Notification) []models.DispatchResult {
	return d.dispatch(ctx, n, d.sinks)
}

// DispatchTo sends n only to the named sinks. Unknown names produce a
// failed result instead of an error.
func (d *Dispatcher) DispatchTo(ctx context.Context, n models.Notification, names ...string) []models.DispatchResult {
	selected := make([]repository.Sink, 0, len(names))
	var missing []models.DispatchResult
	for _, name := range names {
		if s := d.lookup(name); s != nil {
			selected = append(selected, s)
			continue
		}
		missing = append(missing, models.DispatchResult{Sink: name, Detail: detailUnknownSink})
	}
	return append(d.dispatch(ctx, n, selected), missing...)
}

// Status reports, per sink name, whether the sink is enabled.
func (d *Dispatcher) Status() map[string]bool {
	out := make(map[string]bool, len(d.sinks))
	for _, s := range d.sinks {
		out[s.Name()] = s.Enabled()
	}
	return out
}

func (d *Dispatcher) lookup(name string) repository.Sink {
	for _, s := range d.sinks {
		if s.Name() == name {
			return s
		}
	}
	return nil
}

func (d *Dispatcher) dispatch(ctx context.Context, n models.Notification, sinks []repository.Sink) []models.DispatchResult {
	// In-flight sink calls are not cancelled when the caller goes away;
	// each one is bounded by the dispatcher timeout instead.
	ctx = context.WithoutCancel(ctx)

	results := make([]models.DispatchResult, len(sinks))
	var wg sync.WaitGroup
	for i, s := range sinks {
		if !s.Enabled() {
			results[i] = models.DispatchResult{Sink: s.Name(), Skipped: true, Detail: detailNotConfigured}
			d.metrics.RecordDelivery(s.Name(), "skipped")
			d.l.Info("sink not configured, notification logged instead",
				applogger.String("sink", s.Name()),
				applogger.String("subject", n.Subject),
				applogger.String("body", n.Body),
			)
			continue
		}
		wg.Add(1)
		go func(i int, s repository.Sink) {
			defer wg.Done()
			results[i] = d.send(ctx, s, n)
		}(i, s)
	}
	wg.Wait()
	return results
}

func (d *Dispatcher) send(ctx context.Context, s repository.Sink, n models.Notification) (res models.DispatchResult) {
	name := s.Name()
	start := time.Now()

	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	defer func() {
		if r := recover(); r != nil {
			res = d.failed(name, n, fmt.Errorf("sink panic: %v", r))
		}
		d.metrics.RecordLatency("sink_"+name, time.Since(start).Seconds())
	}()

	if err := s.Send(ctx, n); err != nil {
		return d.failed(name, n, err)
	}

	d.metrics.RecordDelivery(name, "ok")
	d.l.Info("notification delivered",
		applogger.String("sink", name),
		applogger.String("subject", n.Subject),
		applogger.Duration("duration_ms", time.Since(start)),
	)
	return models.DispatchResult{Sink: name, Success: true, Detail: detailDelivered}
}

// failed records a sink failure and writes the backup log line that keeps
// the alert visible to an operator.
func (d *Dispatcher) failed(name string, n models.Notification, err error) models.DispatchResult {
	d.metrics.RecordDelivery(name, "error")
	d.l.Warn("notification delivery failed",
		applogger.String("sink", name),
		applogger.Error(err),
	)
	d.l.Info("backup notification",
		applogger.String("sink", name),
		applogger.String("subject", n.Subject),
		applogger.String("body", n.Body),
	)
	return models.DispatchResult{Sink: name, Detail: err.Error()}
}

type nopMetrics struct{}

func (nopMetrics) RecordAlert(string) {}
func (nopMetrics) RecordDelivery(string, string) {}
func (nopMetrics) RecordLatency(string, float64) {}
