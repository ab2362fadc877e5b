// cmd/relay/main.go
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	awsclients "quotation-relay/internal/common/aws"
	"quotation-relay/internal/common/config"
	"quotation-relay/internal/common/database"
	apperrors "quotation-relay/internal/common/errors"
	commonhttp "quotation-relay/internal/common/http"
	"quotation-relay/internal/common/logger"
	"quotation-relay/internal/common/observability"
	"quotation-relay/internal/intercept"
	"quotation-relay/internal/models"
	"quotation-relay/internal/notify"
	"quotation-relay/internal/state"

	ec "quotation-relay/internal/workers/customer/enrich-customer"
	dr "quotation-relay/internal/workers/delivery/deliver-record"
	pq "quotation-relay/internal/workers/quotation/process-quotation"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		boot := logger.New("info", "console")
		boot.Fatal("config load failed", zap.Error(err))
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog).With(map[string]interface{}{"app": cfg.App.Name})

	zapLog.Info("Starting quotation relay...", zap.String("mode", cfg.Proxy.Mode))

	obs, err := observability.New(cfg.App.Name)
	if err != nil {
		zapLog.Warn("otel exporter unavailable, pipeline metrics disabled", zap.Error(err))
	}
	defer obs.Shutdown()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --- State tracker ---
	var tracker state.Tracker
	ttl := time.Duration(cfg.State.TTL) * time.Second
	switch cfg.State.Backend {
	case "redis":
		redis := database.NewRedis(cfg.Database.Redis)
		err = retryWithBackoff(func() error {
			return redis.Ping(ctx)
		}, 10, 2*time.Second, zapLog, "Redis connection")
		if err != nil {
			zapLog.Fatal("redis failed after retries", zap.Error(err))
		}
		defer redis.Close()
		zapLog.Info("Redis connected successfully")
		tracker = state.NewRedisTracker(redis.Client, ttl)
	default:
		tracker = state.NewMemoryTracker(ttl)
	}

	// --- Notifiers ---
	notifier, waitNotifiers := buildNotifier(ctx, cfg, log, zapLog)
	defer waitNotifiers()

	if cfg.Delivery.SinkConfigured() {
		zapLog.Info("Quotation relay loaded, ready to capture quotations")
	} else {
		zapLog.Warn("delivery.sink_url is not set, every delivery will fail")
		notifier.Notify(ctx, models.Signal{
			Kind: models.SignalWarning,
			Text: "Sink URL not set! Set delivery.sink_url before capturing quotations.",
			Code: string(apperrors.ErrCodeConfigMissing),
		})
	}

	// --- Pipeline ---
	deliveryCfg, err := dr.LoadConfig(cfg.Delivery)
	if err != nil {
		zapLog.Fatal("delivery config invalid", zap.Error(err))
	}
	deliverer := dr.NewHandler(dr.HandlerOptions{
		Config:        deliveryCfg,
		Client:        commonhttp.NewClient(deliveryCfg.Timeout),
		Notifier:      notifier,
		Tracker:       tracker,
		Observability: obs,
		Logger:        log,
	})

	credentials := intercept.NewCredentialStore(log)

	lookupCfg := ec.LoadConfig(cfg.Lookup, cfg.Coordinator)
	coordinator := ec.NewHandler(ec.HandlerOptions{
		Config:      lookupCfg,
		Lookup:      ec.NewHTTPLookup(lookupCfg, commonhttp.NewClient(lookupCfg.Timeout), log),
		Credentials: credentials,
		Sender:      deliverer,
		Notifier:    notifier,
		Tracker:     tracker,
		Logger:      log,
	})

	processor := pq.NewHandler(pq.HandlerOptions{
		Config:    pq.LoadConfig(cfg.Delivery),
		Submitter: coordinator,
		Sender:    deliverer,
		Notifier:  notifier,
		Tracker:   tracker,
		Logger:    log,
	})

	observer := intercept.NewObserver(intercept.Options{
		Matcher:      intercept.DefaultMatcher(cfg.Targets.Primary, cfg.Targets.Secondary),
		Credentials:  credentials,
		Sink:         processor,
		Tracker:      tracker,
		Logger:       log,
		TxParam:      cfg.Targets.TransactionID,
		MaxBodyBytes: cfg.Proxy.MaxBodyBytes,
		StateTimeout: config.GetDuration(cfg.State.Timeout),
	})

	proxyHandler, err := newProxy(cfg.Proxy, observer, log)
	if err != nil {
		zapLog.Fatal("proxy setup failed", zap.Error(err))
	}

	go coordinator.Run(ctx)

	// --- Health & Metrics Server ---
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		writeStatus(w, "healthy")
	})
	mux.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
		if !cfg.Delivery.SinkConfigured() {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			_ = json.NewEncoder(w).Encode(map[string]string{"status": "sink not configured"})
			return
		}
		writeStatus(w, "ready")
	})
	mux.HandleFunc("/status", statusHandler(coordinator, cfg.Delivery.SinkConfigured()))
	mux.Handle("/metrics", promhttp.Handler())

	servers := []*http.Server{
		{Addr: cfg.Metrics.Listen, Handler: mux, ReadHeaderTimeout: 10 * time.Second},
		{Addr: cfg.Proxy.Listen, Handler: proxyHandler, ReadHeaderTimeout: 10 * time.Second},
	}
	for _, srv := range servers {
		go func(srv *http.Server) {
			zapLog.Info("listening", zap.String("addr", srv.Addr))
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				zapLog.Error("server failed", zap.String("addr", srv.Addr), zap.Error(err))
				stop()
			}
		}(srv)
	}

	// --- Graceful Shutdown ---
	<-ctx.Done()
	zapLog.Info("Shutdown signal received, stopping relay...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	for _, srv := range servers {
		if err := srv.Shutdown(shutdownCtx); err != nil {
			zapLog.Error("server shutdown failed", zap.String("addr", srv.Addr), zap.Error(err))
		}
	}
	coordinator.Wait()

	zapLog.Info("Quotation relay stopped")
}

// buildNotifier always logs signals and adds SNS and SES when enabled. The
// returned func waits for in-flight remote notifications.
func buildNotifier(ctx context.Context, cfg *config.Config, log logger.Logger, zapLog *zap.Logger) (notify.Notifier, func()) {
	chain := notify.Multi{notify.NewLogNotifier(log)}
	sns, ses := cfg.Notifications.SNS, cfg.Notifications.SES
	if !sns.Enabled && !ses.Enabled {
		return chain, func() {}
	}

	awsCfg, err := awsclients.LoadConfig(ctx, cfg.Notifications.AWS.Region)
	if err != nil {
		zapLog.Error("aws config load failed, remote notifications disabled", zap.Error(err))
		return chain, func() {}
	}

	var remote notify.Multi
	if sns.Enabled {
		remote = append(remote, notify.NewSNSNotifier(awsclients.NewSNSClient(awsCfg), sns.TopicARN, cfg.App.Name, log))
		zapLog.Info("SNS notifications enabled", zap.String("topic", sns.TopicARN))
	}
	if ses.Enabled {
		remote = append(remote, notify.NewSESNotifier(awsclients.NewSESClient(awsCfg), ses.FromEmail, ses.To, cfg.App.Name, log))
		zapLog.Info("SES notifications enabled", zap.Strings("to", ses.To))
	}

	async := notify.NewAsync(remote, log)
	return append(chain, async), async.Wait
}

func writeStatus(w http.ResponseWriter, status string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]string{"status": status})
}
