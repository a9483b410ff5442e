package main

import (
	"context"
	"encoding/json"
	"math/big"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/credverse/credential-portal/internal/config"
	"github.com/credverse/credential-portal/internal/domain"
	"github.com/credverse/credential-portal/internal/infrastructure/contract"
	"github.com/credverse/credential-portal/internal/infrastructure/events"
	"github.com/credverse/credential-portal/internal/infrastructure/provider"
	"github.com/credverse/credential-portal/internal/infrastructure/resume"
	"github.com/credverse/credential-portal/internal/infrastructure/store"
	"github.com/credverse/credential-portal/internal/service"
	"github.com/credverse/credential-portal/shared/contracts"
	"github.com/credverse/credential-portal/shared/logging"
	"github.com/credverse/credential-portal/shared/messaging"
	"github.com/credverse/credential-portal/shared/monitoring"
	sharedredis "github.com/credverse/credential-portal/shared/redis"
	"github.com/credverse/credential-portal/shared/resilience"
)

func main() {
	cfg := config.LoadConfig()

	logger := logging.NewLogger(&logging.Config{
		Level:       logging.LogLevel(cfg.LogLevel),
		Service:     cfg.ServiceName,
		Environment: cfg.Environment,
		Output:      os.Stdout,
		PrettyLog:   cfg.Environment == "development",
	})

	if err := cfg.Validate(); err != nil {
		logger.Fatalf("invalid configuration: %v", err)
	}

	if err := monitoring.InitSentry(&monitoring.SentryConfig{
		DSN:         cfg.SentryDSN,
		Environment: cfg.Environment,
		ServiceName: cfg.ServiceName,
	}); err != nil {
		logger.WithError(err).Warn("sentry initialization failed, continuing without crash reporting")
	}
	defer monitoring.FlushSentry(2 * time.Second)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Wallet provider. Absence is tolerated: the portal runs disconnected
	// and every wallet operation reports provider unavailability.
	var walletProvider domain.WalletProvider
	p, err := dialProvider(ctx, cfg, logger)
	if err != nil {
		logger.WithError(err).Warn("wallet provider unavailable, running disconnected")
	} else {
		walletProvider = p
		defer p.Close()
	}

	// Identity store. Redis is preferred; an unreachable redis downgrades
	// to the in-process slot so the session flow keeps working.
	identityStore := buildStore(ctx, cfg, logger)

	// Notifications. A missing broker downgrades publishing to log-only.
	var amqpClient contracts.AMQPClient
	if rmq := dialRabbitMQ(ctx, cfg, logger); rmq != nil {
		amqpClient = rmq
		defer rmq.Close()
	}
	publisher := events.NewPublisher(amqpClient, logger)

	// Contract binder, only when a provider backend and address exist.
	var binder domain.ContractBinder
	if p != nil && cfg.ContractAddress != "" {
		b, err := contract.NewBinder(p.Backend(), cfg.ContractAddress)
		if err != nil {
			logger.Fatalf("contract binder setup failed: %v", err)
		}
		binder = b
	}

	policy := service.NewNetworkPolicy(walletProvider, cfg.ChainDescriptor(), publisher, logger)
	identity := service.NewIdentityService(identityStore, publisher, logger)
	session := service.NewChainSession(walletProvider, binder, policy, publisher, logger)
	session.SetWalletObserver(identity)
	identity.AttachSession(session)

	credentials := service.NewCredentialService(session,
		resume.NewClient(cfg.ResumeURL, cfg.ResumeTimeout), logger)

	if err := session.Initialize(ctx); err != nil {
		logger.WithError(err).Error("session initialization failed")
		monitoring.CaptureError(err, map[string]string{"phase": "initialize"})
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		session.Run(ctx)
	}()

	metricsServer := newMetricsServer(cfg.MetricsAddr, session, credentials)
	go func() {
		logger.WithField("addr", cfg.MetricsAddr).Info("metrics listener started")
		if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.WithError(err).Error("metrics listener failed")
		}
	}()

	logger.WithFields(map[string]interface{}{
		"chain_id":    cfg.ChainID,
		"environment": cfg.Environment,
	}).Info("credential portal started")

	<-ctx.Done()
	logger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := metricsServer.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Warn("metrics listener shutdown failed")
	}

	if walletProvider != nil {
		walletProvider.Close()
	}
	select {
	case <-done:
	case <-shutdownCtx.Done():
		logger.Warn("reconciliation loop did not stop in time")
	}

	logger.Info("credential portal stopped")
}

func dialProvider(ctx context.Context, cfg *config.Config, logger *logging.Logger) (*provider.Provider, error) {
	if cfg.ProviderRPCURL == "" {
		return nil, domain.ErrProviderUnavailable
	}

	var p *provider.Provider
	err := resilience.Retry(ctx, resilience.DefaultRetryConfig(), func(ctx context.Context) error {
		var err error
		p, err = provider.Dial(ctx, cfg.ProviderRPCURL, cfg.ProviderPollInterval, logger)
		return err
	})
	if err != nil {
		return nil, err
	}
	return p, nil
}

func buildStore(ctx context.Context, cfg *config.Config, logger *logging.Logger) domain.IdentityStore {
	conn := sharedredis.NewRedis(cfg.Redis)
	err := resilience.Retry(ctx, resilience.DefaultRetryConfig(), func(ctx context.Context) error {
		return conn.HealthCheck(ctx)
	})
	if err != nil {
		logger.WithError(err).Warn("redis unreachable, using in-memory identity slot")
		conn.Close()
		return store.NewMemoryStore()
	}

	logger.WithField("addr", cfg.Redis.Addr()).Info("redis identity store connected")
	return store.NewRedisStore(conn.GetClient(), cfg.IdentitySlot)
}

func dialRabbitMQ(ctx context.Context, cfg *config.Config, logger *logging.Logger) *messaging.RabbitMQ {
	var rmq *messaging.RabbitMQ
	err := resilience.Retry(ctx, resilience.DefaultRetryConfig(), func(ctx context.Context) error {
		var err error
		rmq, err = messaging.NewRabbitMQ(cfg.RabbitMQ)
		return err
	})
	if err != nil {
		logger.WithError(err).Warn("rabbitmq unreachable, notifications downgraded to logs")
		return nil
	}

	if err := rmq.DeclareExchange(messaging.ExchangeConfig{
		Name:    contracts.PortalExchange,
		Type:    "topic",
		Durable: true,
	}); err != nil {
		logger.WithError(err).Warn("exchange declaration failed, notifications downgraded to logs")
		rmq.Close()
		return nil
	}

	logger.Info("rabbitmq connected")
	return rmq
}

// newMetricsServer serves prometheus metrics plus two read-only ops
// endpoints: the session snapshot and a certificate lookup.
func newMetricsServer(addr string, session *service.ChainSession, credentials *service.CredentialService) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	mux.HandleFunc("/sessionz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(session.Snapshot())
	})

	mux.HandleFunc("/verifyz", func(w http.ResponseWriter, r *http.Request) {
		tokenID, ok := new(big.Int).SetString(r.URL.Query().Get("token"), 10)
		if !ok {
			http.Error(w, "token must be a decimal token id", http.StatusBadRequest)
			return
		}
		credential, err := credentials.Verify(r.Context(), tokenID)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadGateway)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(credential)
	})

	return &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
}
