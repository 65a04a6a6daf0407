//go:build wireinject
// +build wireinject

package di

import (
	"github.com/google/wire"

	"TVRelay/pkg/config"
	"TVRelay/pkg/server"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		// Ambient
		ProvideLogger,
		ProvideMetrics,
		ProvideHTTPMetrics,

		// Infrastructure clients
		ProvideKafkaProducer,
		ProvideRateCounter,

		// Sinks and use cases
		ProvideSinks,
		ProvideFormatter,
		ProvideDispatcher,
		ProvideRelay,
		ProvideRateLimiter,

		// HTTP
		ProvideRelayHandler,
		ProvideHTTPServer,

		// Application server
		ProvideApp,
	)
	return &server.App{}, nil
}
