package di

import (
	"fmt"

	"TradeGate/internal/domain/repository"
	"TradeGate/internal/handler/api"
	"TradeGate/internal/policy"
	internalrepo "TradeGate/internal/repository"
	"TradeGate/internal/service/identity"
	"TradeGate/internal/usecase"
	"TradeGate/pkg/cache"
	pkgch "TradeGate/pkg/clickhouse"
	"TradeGate/pkg/config"
	xhttp "TradeGate/pkg/http"
	pkgkafka "TradeGate/pkg/kafka"
	xlogger "TradeGate/pkg/logger"
	"TradeGate/pkg/metrics"
	"TradeGate/pkg/server"
)

// ProvideLogger creates the application logger.
func ProvideLogger(cfg *config.Config) (*xlogger.Logger, error) {
	return xlogger.New(&xlogger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	})
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() repository.Metrics {
	return metrics.New()
}

// ProvideClickHouseClient creates a ClickHouse client when the local
// executor backend is selected; otherwise no client is needed.
func ProvideClickHouseClient(cfg *config.Config) (*pkgch.Client, error) {
	if cfg.Executor.Type != "clickhouse" {
		return nil, nil
	}
	client, err := pkgch.NewClient(
		pkgch.WithHost(cfg.ClickHouse.Host),
		pkgch.WithPort(cfg.ClickHouse.Port),
		pkgch.WithDatabase(cfg.ClickHouse.Database),
		pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
		pkgch.WithHTTP(cfg.ClickHouse.UseHTTP),
		pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout, cfg.ClickHouse.WriteTimeout),
		pkgch.WithMaxExecutionTime(cfg.ClickHouse.MaxExecutionTime),
	)
	if err != nil {
		return nil, fmt.Errorf("clickhouse client: %w", err)
	}
	return client, nil
}

// ProvideQueryExecutor selects the executor backend from configuration.
func ProvideQueryExecutor(cfg *config.Config, chClient *pkgch.Client) (repository.QueryExecutor, error) {
	switch cfg.Executor.Type {
	case "clickhouse":
		return internalrepo.NewClickHouseExecutor(chClient), nil
	case "remote":
		client := xhttp.NewClient(xhttp.WithTimeout(cfg.Executor.Timeout))
		return internalrepo.NewRemoteExecutor(
			client,
			cfg.Executor.BaseURL,
			cfg.Executor.AppID,
			internalrepo.WithAPIKey(cfg.Executor.APIKey),
		), nil
	default:
		return nil, fmt.Errorf("unknown executor type %q", cfg.Executor.Type)
	}
}

// ProvideIdentityProvider resolves the client identity from the
// configured environment variable.
func ProvideIdentityProvider(cfg *config.Config) repository.IdentityProvider {
	return identity.FromEnv(cfg.Controls.ClientIDEnv)
}

// ProvideCacheService creates the totals cache: Redis when configured,
// an in-process cache otherwise. Returns nil when caching is disabled.
func ProvideCacheService(cfg *config.Config) (cache.Service, error) {
	if !cfg.Cache.Enabled {
		return nil, nil
	}
	if cfg.Cache.Redis.Enabled {
		c, err := cache.NewRedisCache(
			cache.WithAddr(cfg.Cache.Redis.Host, cfg.Cache.Redis.Port),
			cache.WithCredentials(cfg.Cache.Redis.Password, cfg.Cache.Redis.DB),
			cache.WithPrefix(cfg.Cache.Redis.Prefix),
		)
		if err != nil {
			return nil, fmt.Errorf("redis cache: %w", err)
		}
		return c, nil
	}
	return cache.NewMemoryCache(), nil
}

// ProvideAuditSink creates the Kafka audit sink. Returns nil when audit
// publishing is disabled.
func ProvideAuditSink(cfg *config.Config) (repository.AuditSink, error) {
	if !cfg.Audit.Enabled {
		return nil, nil
	}
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Audit.Brokers),
		pkgkafka.WithCompression(cfg.Audit.Compression),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	return internalrepo.NewKafkaAuditSink(producer, cfg.Audit.Topic), nil
}

// ProvideQueryService assembles the secure query facade.
func ProvideQueryService(
	cfg *config.Config,
	exec repository.QueryExecutor,
	id repository.IdentityProvider,
	cacheSvc cache.Service,
	audit repository.AuditSink,
	m repository.Metrics,
	logger *xlogger.Logger,
) *usecase.SecureQueryService {
	opts := []usecase.Option{
		usecase.WithLagPolicy(policyFromConfig(cfg)),
		usecase.WithThresholdGuard(guardFromConfig(cfg)),
		usecase.WithTable(cfg.Executor.Table),
		usecase.WithMetrics(m),
		usecase.WithLogger(logger),
	}
	if cacheSvc != nil {
		opts = append(opts, usecase.WithCache(cacheSvc, cfg.Cache.TTL))
	}
	if audit != nil {
		opts = append(opts, usecase.WithAudit(audit))
	}
	return usecase.NewSecureQueryService(exec, id, opts...)
}

// ProvideTradesHandler creates the HTTP handler.
func ProvideTradesHandler(logger *xlogger.Logger, svc *usecase.SecureQueryService) *api.TradesHandler {
	return api.NewTradesHandler(logger, svc)
}

// ProvideApp creates the application server and registers infrastructure
// clients for teardown.
func ProvideApp(
	cfg *config.Config,
	logger *xlogger.Logger,
	handler *api.TradesHandler,
	chClient *pkgch.Client,
	cacheSvc cache.Service,
	audit repository.AuditSink,
) *server.App {
	app := server.New(cfg, logger, handler)
	if chClient != nil {
		app.AddCloser(chClient)
	}
	if closer, ok := cacheSvc.(interface{ Close() error }); ok && cacheSvc != nil {
		app.AddCloser(closerFunc(closer.Close))
	}
	if sink, ok := audit.(*internalrepo.KafkaAuditSink); ok && sink != nil {
		app.AddCloser(sink)
	}
	return app
}

type closerFunc func() error

func (f closerFunc) Close() error { return f() }

func policyFromConfig(cfg *config.Config) policy.LagPolicy {
	return policy.NewLagPolicy(cfg.Controls.LagDays)
}

func guardFromConfig(cfg *config.Config) policy.ThresholdGuard {
	return policy.NewThresholdGuard(cfg.Controls.MinContributors)
}
