// Package rationservice wires configuration, the table store client, activity
// recording and the HTTP API into a running process.
package rationservice

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/zhmu-100/RationService/internal/activity"
	"github.com/zhmu-100/RationService/internal/api"
	"github.com/zhmu-100/RationService/internal/api/ratelimit"
	"github.com/zhmu-100/RationService/internal/config"
	"github.com/zhmu-100/RationService/internal/dictionary"
	"github.com/zhmu-100/RationService/internal/foods"
	"github.com/zhmu-100/RationService/internal/health"
	"github.com/zhmu-100/RationService/internal/logger"
	"github.com/zhmu-100/RationService/internal/meals"
	"github.com/zhmu-100/RationService/internal/services"
	"github.com/zhmu-100/RationService/internal/tablestore"
	"github.com/zhmu-100/RationService/internal/tablestore/httpstore"
)

// ServiceName tags logs and activity events.
const ServiceName = "ration-service"

const shutdownTimeout = 10 * time.Second

// Run starts the diet API and blocks until SIGINT/SIGTERM or a server error.
func Run() error {
	cfg, err := config.New()
	if err != nil {
		return err
	}
	log := newLogger(cfg, ServiceName)

	ctx, stop := newServerContext()
	defer stop()
	return Serve(ctx, cfg, log)
}

// Serve runs the diet API until ctx is cancelled.
func Serve(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	log.Info().
		Str("environment", string(cfg.Environment)).
		Int("http_port", cfg.Port).
		Str("db_mode", cfg.DBMode).
		Str("tablestore_url", cfg.TableStoreURL).
		Str("activity_sink", cfg.ActivitySink).
		Msg("Ration service starting")

	store, err := newTableStoreClient(cfg, log)
	if err != nil {
		log.Error().Stack().Err(err).Msg("Table store client unavailable")
		return err
	}

	// The recorder outlives ctx so events logged during shutdown still go out.
	recCtx, stopRec := context.WithCancel(context.Background())
	rec, recDone := newRecorder(ctx, recCtx, cfg, log)
	defer func() {
		stopRec()
		recDone()
	}()

	svcHealth := startHealthCheckers(ctx, cfg, log, store)
	if err := health.WaitUntilHealthy(ctx, svcHealth, startupTimeout(cfg)); err != nil {
		log.Error().Stack().Err(err).Msg("startup health check failed")
		return err
	}

	router := buildRouter(ctx, cfg, log, store, rec, svcHealth)
	server := newHTTPServer(ctx, cfg.HTTPAddr(), router)
	return serveUntilDone(ctx, server, log)
}

func newTableStoreClient(cfg *config.Config, log zerolog.Logger) (tablestore.Client, error) {
	return httpstore.New(cfg.TableStoreURL,
		httpstore.WithTimeout(cfg.DBTimeout()),
		httpstore.WithLogger(log),
	)
}

// newRecorder always logs activity; with ACTIVITY_SINK=redis it also publishes
// to redis, falling back to log-only when redis cannot be reached. The
// returned func blocks until queued events are flushed.
func newRecorder(dialCtx, runCtx context.Context, cfg *config.Config, log zerolog.Logger) (activity.Recorder, func()) {
	logRec := activity.NewLogRecorder(log)
	if cfg.ActivitySink != "redis" {
		return logRec, func() {}
	}

	client, err := activity.DialRedis(dialCtx, activity.RedisOptions{
		Host:     cfg.RedisHost,
		Port:     cfg.RedisPort,
		Password: cfg.RedisPassword,
	}, cfg.RedisConnectTimeout())
	if err != nil {
		log.Warn().Err(err).Msg("activity redis unavailable, recording to log only")
		return logRec, func() {}
	}

	bus := activity.NewBus(cfg.ActivityBuffer)
	redisRec := activity.NewRedisRecorder(ServiceName, activity.Channels{
		Activity: cfg.LoggerActivityChannel,
		Error:    cfg.LoggerErrorChannel,
	}, bus, activity.NewRedisPublisher(client), log)

	done := make(chan struct{})
	go func() {
		defer close(done)
		redisRec.Run(runCtx)
	}()
	log.Info().Str("redis", fmt.Sprintf("%s:%d", cfg.RedisHost, cfg.RedisPort)).Msg("activity events published to redis")

	return activity.Tee(logRec, redisRec), func() {
		<-done
		if dropped := bus.Dropped(); dropped > 0 {
			log.Warn().Int64("dropped", dropped).Msg("activity events dropped")
		}
		_ = client.Close()
	}
}

// buildRouter composes the diet stack over store and mounts it.
func buildRouter(ctx context.Context, cfg *config.Config, log zerolog.Logger, store tablestore.Client, rec activity.Recorder, svcHealth *health.ServiceHealthChecker) *mux.Router {
	foodAsm := foods.NewAssembler(store, dictionary.NewResolver(store))
	foodSvc := services.NewFoodService(foodAsm, foods.NewWriter(store, log), services.WithRecorder(rec))
	mealSvc := services.NewMealService(foodAsm,
		meals.NewAssembler(store, foodAsm, log),
		meals.NewWriter(store),
		services.WithRecorder(rec))

	deps := api.Deps{
		Foods:  foodSvc,
		Meals:  mealSvc,
		Health: api.NewHealthHandler(svcHealth.IsHealthy, svcHealth.Unhealthy),
		Log:    log,
	}
	if cfg.RateLimitRPS > 0 {
		lim := ratelimit.New(cfg.RateLimitRPS, cfg.RateLimitBurst, log)
		lim.StartSweeper(ctx.Done(), time.Minute)
		deps.RateLimit = lim.Middleware
	}
	return api.NewRouter(deps)
}

// startHealthCheckers starts the table store checker and the aggregate.
func startHealthCheckers(ctx context.Context, cfg *config.Config, log zerolog.Logger, store tablestore.Client) *health.ServiceHealthChecker {
	interval := cfg.HealthInterval()

	storeChecker := health.NewTableStoreChecker(store, log, cfg.HealthProbeTimeout())
	go storeChecker.Start(ctx, interval)

	svcHealth := health.NewServiceHealthChecker(log, storeChecker)
	go svcHealth.Start(ctx, interval)
	return svcHealth
}

// startupTimeout is the bootstrap window, extended to cover two probe cycles.
func startupTimeout(cfg *config.Config) time.Duration {
	timeout := cfg.BootstrapTimeout()
	if floor := 2 * cfg.HealthInterval(); timeout < floor {
		timeout = floor
	}
	return timeout
}

func newHTTPServer(ctx context.Context, addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}
}

func serveHTTP(server *http.Server, ln net.Listener, log zerolog.Logger) <-chan error {
	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", ln.Addr().String()).Msg("HTTP server starting")
		if err := server.Serve(ln); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()
	return errCh
}

// serveUntilDone listens on server.Addr and shuts down gracefully once ctx
// is cancelled.
func serveUntilDone(ctx context.Context, server *http.Server, log zerolog.Logger) error {
	ln, err := net.Listen("tcp", server.Addr)
	if err != nil {
		log.Error().Stack().Err(err).Str("addr", server.Addr).Msg("listen failed")
		return err
	}
	errCh := serveHTTP(server, ln, log)

	select {
	case <-ctx.Done():
		log.Info().Msg("Shutting down server")
		ctxShutdown, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(ctxShutdown); err != nil {
			log.Error().Stack().Err(err).Msg("Server forced to shutdown")
			return err
		}
		log.Info().Msg("Server exited")
		return nil
	case err := <-errCh:
		log.Error().Stack().Err(err).Msg("HTTP server failed")
		return err
	}
}

func newLogger(cfg *config.Config, service string) zerolog.Logger {
	return logger.New(logger.Options{
		Service: service,
		Level:   cfg.LogLevel,
	})
}

// newServerContext returns a context cancelled on SIGINT/SIGTERM.
func newServerContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}
