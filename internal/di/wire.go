//go:build wireinject
// +build wireinject

package di

import (
	"TradeGate/pkg/config"
	"TradeGate/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire generates the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		ProvideLogger,
		ProvideMetrics,

		// Infrastructure clients
		ProvideClickHouseClient,
		ProvideCacheService,
		ProvideAuditSink,

		// Collaborators
		ProvideQueryExecutor,
		ProvideIdentityProvider,

		// Use case and HTTP surface
		ProvideQueryService,
		ProvideTradesHandler,

		// Application server
		ProvideApp,
	)
	return &server.App{}, nil
}
