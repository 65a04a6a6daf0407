package di

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"TVRelay/internal/domain/repository"
	"TVRelay/internal/handler/api"
	internalrepo "TVRelay/internal/repository"
	"TVRelay/internal/service/discord"
	"TVRelay/internal/service/email"
	"TVRelay/internal/service/ratelimit"
	"TVRelay/internal/service/telegram"
	"TVRelay/internal/usecase"
	"TVRelay/pkg/cache"
	"TVRelay/pkg/config"
	xhttp "TVRelay/pkg/http"
	"TVRelay/pkg/http/middleware"
	pkgkafka "TVRelay/pkg/kafka"
	applogger "TVRelay/pkg/logger"
	"TVRelay/pkg/metrics"
	"TVRelay/pkg/server"
)

// ProvideLogger creates the application logger from the log section.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	return applogger.New(&applogger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() repository.Metrics {
	return metrics.New(prometheus.DefaultRegisterer)
}

// ProvideHTTPMetrics creates the request metrics middleware collectors.
func ProvideHTTPMetrics() *middleware.HTTPMetrics {
	return middleware.NewHTTPMetrics(prometheus.DefaultRegisterer)
}

// ProvideKafkaProducer creates a Kafka producer, or nil when Kafka is not
// configured.
func ProvideKafkaProducer(cfg *config.Config) (*pkgkafka.Producer, error) {
	if !cfg.KafkaConfigured() {
		return nil, nil
	}
	return pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.KafkaRequiredAcks()),
		pkgkafka.WithTimeouts(cfg.Kafka.WriteTimeout, cfg.Kafka.WriteTimeout),
		pkgkafka.WithMaxAttempts(1),
	)
}

// ProvideSinks builds every sink in dispatch order. Unconfigured sinks are
// still present so they show up as skipped.
func ProvideSinks(cfg *config.Config, producer *pkgkafka.Producer) []repository.Sink {
	var pub internalrepo.Publisher
	if producer != nil {
		pub = producer
	}
	return []repository.Sink{
		discord.New(cfg.Discord.WebhookURL, cfg.Discord.Timeout),
		email.New(email.Config{
			User:      cfg.Email.User,
			Password:  cfg.Email.Password,
			Recipient: cfg.Email.Recipient,
			Host:      cfg.Email.Host,
			Port:      cfg.Email.Port,
			Timeout:   cfg.Email.Timeout,
		}),
		telegram.New(cfg.Telegram.Token, cfg.Telegram.ChatID, cfg.Telegram.Timeout),
		internalrepo.NewKafkaSink(pub, cfg.Kafka.Topic),
	}
}

// ProvideFormatter creates the formatter on the wall clock.
func ProvideFormatter() *usecase.Formatter {
	return usecase.NewFormatter(time.Now)
}

// ProvideDispatcher bounds each sink call by the slowest configured sink
// timeout plus a small margin.
func ProvideDispatcher(cfg *config.Config, l *applogger.Logger, m repository.Metrics, sinks []repository.Sink) *usecase.Dispatcher {
	return usecase.NewDispatcher(l, m, dispatchTimeout(cfg), sinks...)
}

func dispatchTimeout(cfg *config.Config) time.Duration {
	longest := cfg.Discord.Timeout
	for _, d := range []time.Duration{cfg.Email.Timeout, cfg.Telegram.Timeout, cfg.Kafka.WriteTimeout} {
		if d > longest {
			longest = d
		}
	}
	return longest + 2*time.Second
}

// ProvideRelay creates the webhook pipeline.
func ProvideRelay(cfg *config.Config, f *usecase.Formatter, d *usecase.Dispatcher, m repository.Metrics, l *applogger.Logger) *usecase.Relay {
	return usecase.NewRelay(cfg.WebhookSecret, f, d, m, l)
}

// ProvideRateCounter creates the counter store behind the rate limiter, or
// nil when rate limiting is off. An unreachable Redis falls back to the
// in-memory store.
func ProvideRateCounter(cfg *config.Config, l *applogger.Logger) cache.Counter {
	rl := cfg.RateLimit
	if !rl.Enabled {
		return nil
	}
	if rl.Backend == "redis" {
		rc, err := cache.NewRedisCache(context.Background(),
			cache.WithRedisAddr(rl.Redis.Addr),
			cache.WithRedisPassword(rl.Redis.Password),
			cache.WithRedisDB(rl.Redis.DB),
			cache.WithRedisPrefix(rl.Redis.Prefix),
		)
		if err == nil {
			l.Info("rate limiter using redis", applogger.String("addr", rl.Redis.Addr))
			return rc
		}
		l.Warn("redis unavailable, rate limiter falls back to memory", applogger.Error(err))
	}
	return cache.NewMemoryCache()
}

// ProvideRateLimiter returns nil when rate limiting is off.
func ProvideRateLimiter(cfg *config.Config, counter cache.Counter) repository.RateLimiter {
	if counter == nil {
		return nil
	}
	return ratelimit.New(counter, cfg.RateLimit.Limit, cfg.RateLimit.Window)
}

// ProvideRelayHandler creates the HTTP handler.
func ProvideRelayHandler(cfg *config.Config, l *applogger.Logger, relay *usecase.Relay, limiter repository.RateLimiter) *api.RelayHandler {
	return api.NewRelayHandler(l, relay, limiter, api.EmailInfo{
		User:        cfg.Email.User,
		PasswordSet: cfg.Email.Password != "",
		Recipient:   cfg.Email.Recipient,
	})
}

// ProvideHTTPServer creates the Echo server with the relay routes.
func ProvideHTTPServer(cfg *config.Config, l *applogger.Logger, h *api.RelayHandler, hm *middleware.HTTPMetrics) *xhttp.Server {
	return xhttp.NewServer(h,
		xhttp.WithPort(cfg.Server.Port),
		xhttp.WithTimeouts(cfg.Server.ReadTimeout, cfg.Server.WriteTimeout, cfg.Server.ShutdownTimeout),
		xhttp.WithBodyLimit(cfg.Server.MaxBodyBytes),
		xhttp.WithMetrics(cfg.Metrics.Path, prometheus.DefaultGatherer, hm),
		xhttp.WithLogger(l),
		xhttp.WithTrustedProxies(cfg.Server.TrustedProxies...),
	)
}

// ProvideApp creates the application.
func ProvideApp(
	cfg *config.Config,
	l *applogger.Logger,
	srv *xhttp.Server,
	relay *usecase.Relay,
	producer *pkgkafka.Producer,
	counter cache.Counter,
) *server.App {
	return server.New(cfg, l, srv, relay, producer, counter)
}
