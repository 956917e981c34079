package daemon

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sleepsheep/sheep/internal/api"
	"github.com/sleepsheep/sheep/internal/app/account"
	"github.com/sleepsheep/sheep/internal/app/engagement"
	"github.com/sleepsheep/sheep/internal/clock"
	"github.com/sleepsheep/sheep/internal/domain"
	"github.com/sleepsheep/sheep/internal/health"
	"github.com/sleepsheep/sheep/internal/logging"
	"github.com/sleepsheep/sheep/internal/timemath"
)

// Daemon is the sheep runtime. It wires together all services.
type Daemon struct {
	Config  Config
	Log     *logging.ZapLogger
	Store   domain.Store
	Time    *timemath.TimeMath
	Service *account.Service
	Server  *api.Server
	Health  *health.Checker
	cancel  context.CancelFunc
}

// New loads the config file and creates a Daemon.
func New() (*Daemon, error) {
	cfg, err := LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return NewWithConfig(cfg)
}

// NewWithConfig creates a Daemon with the given configuration.
func NewWithConfig(cfg Config) (*Daemon, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	log, err := logging.New(cfg.LoggerConfig())
	if err != nil {
		return nil, fmt.Errorf("init logging: %w", err)
	}

	loc, err := timemath.LoadLocation(cfg.Schedule.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	store, err := OpenStore(ctx, cfg.Storage, log.Named("store"))
	if err != nil {
		return nil, err
	}

	return wire(cfg, log, store, timemath.New(clock.NewReal(), loc)), nil
}

// wire builds the services on top of an open store.
func wire(cfg Config, log *logging.ZapLogger, store domain.Store, tm *timemath.TimeMath) *Daemon {
	policy := engagement.PolicyFor(cfg.Scoring.ExpectedCheckIns, cfg.Scoring.StreakBonus)

	svc := account.NewService(store, tm, log.Named("account"),
		account.WithScoringPolicy(policy),
		account.WithDefaultSettings(cfg.DefaultSettings()),
	)

	checks := []health.Check{health.StorageCheck("storage", store)}
	if cfg.Storage.Backend == BackendSQLite {
		checks = append(checks, health.DirCheck("data_dir", cfg.Storage.Dir))
	}
	checker := health.NewChecker(log.Named("health"), health.DefaultInterval, checks...)

	srv := api.NewServer(svc, log.Named("api"))
	srv.SetPolicy(policy)
	srv.SetHealth(checker)
	srv.SetCORSOrigins(cfg.API.CORSOrigins)
	if cfg.Telemetry.Prometheus {
		srv.EnableMetrics()
	}

	return &Daemon{
		Config:  cfg,
		Log:     log,
		Store:   store,
		Time:    tm,
		Service: svc,
		Server:  srv,
		Health:  checker,
	}
}

// Serve starts the HTTP server and blocks until shutdown.
func (d *Daemon) Serve(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	d.cancel = cancel

	go d.Health.Run(ctx)

	addr := fmt.Sprintf("%s:%d", d.Config.API.Host, d.Config.API.Port)
	httpServer := &http.Server{
		Addr:         addr,
		Handler:      d.Server.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  2 * time.Minute,
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	go func() {
		select {
		case <-sigCh:
			d.Log.Info("shutdown signal received")
		case <-ctx.Done():
		}

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer shutdownCancel()

		cancel()
		_ = httpServer.Shutdown(shutdownCtx)
	}()

	d.Log.Infof("sheep serving on http://%s (storage: %s)", addr, d.Config.Storage.Backend)
	if d.Config.Telemetry.Prometheus {
		d.Log.Infof("metrics: http://%s/metrics", addr)
	}

	if err := httpServer.ListenAndServe(); err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Close shuts down all daemon resources.
func (d *Daemon) Close() {
	if d.cancel != nil {
		d.cancel()
	}
	if d.Store != nil {
		if err := d.Store.Close(); err != nil {
			d.Log.Warnf("close store: %v", err)
		}
	}
	_ = d.Log.Sync()
}
