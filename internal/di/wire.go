//go:build wireinject
// +build wireinject

package di

import (
	"github.com/google/wire"

	"RegimePulse/pkg/config"
	"RegimePulse/pkg/server"
)

// InitializeApp builds the full application graph from config.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		ProvideLogger,
		ProvideRecorder,
		ProvideHealthSink,
		ProvideCacheStore,
		ProvideCache,
		ProvideBreaker,
		ProvideFetchClient,
		ProvideFetchers,
		ProvideAnalyzer,
		ProvideClickHouseClient,
		ProvideHistoryStore,
		ProvideKafkaProducer,
		ProvidePublisher,
		ProvideNotifier,
		ProvideAlertQueue,
		ProvidePriceStream,
		ProvideEngine,
		ProvideWatcher,
		ProvideHandler,
		ProvideApp,
	)
	return &server.App{}, nil
}
