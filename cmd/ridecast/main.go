// Package main provides the entrypoint for the ridecast daemon: a
// departure-time advisor that watches short-term forecasts along a fixed
// motorcycle commute and posts the best windows to a chat webhook.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/ridecast/ridecast/internal/advisor"
	"github.com/ridecast/ridecast/internal/agenda"
	"github.com/ridecast/ridecast/internal/config"
	"github.com/ridecast/ridecast/internal/database"
	"github.com/ridecast/ridecast/internal/forecast"
	"github.com/ridecast/ridecast/internal/forecast/openmeteo"
	"github.com/ridecast/ridecast/internal/notify"
	"github.com/ridecast/ridecast/internal/notify/discord"
	"github.com/ridecast/ridecast/internal/route"
	"github.com/ridecast/ridecast/internal/status"
	"github.com/ridecast/ridecast/internal/telemetry"
	"github.com/ridecast/ridecast/internal/version"
)

// Version and BuildTime are set at compile time via ldflags.
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	const serviceName = "ridecast"

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "configuration error:", err)
		os.Exit(1)
	}

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	log := zerolog.New(os.Stdout).
		Level(level).
		With().
		Timestamp().
		Str("service", serviceName).
		Str("version", Version).
		Logger()

	log.Info().
		Str("build_time", BuildTime).
		Msg("starting ridecast")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Telemetry
	shutdownTelemetry, err := telemetry.Init(ctx, telemetry.Config{
		ServiceName:    serviceName,
		ServiceVersion: Version,
		OTLPEndpoint:   cfg.OTLPEndpoint,
		Enabled:        cfg.OTelEnabled,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize telemetry")
	}
	defer func() {
		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancelShutdown()
		if err := shutdownTelemetry(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("failed to shutdown telemetry")
		}
	}()
	if cfg.OTelEnabled {
		log.Info().Str("otlp_endpoint", cfg.OTLPEndpoint).Msg("OpenTelemetry initialized")
	}

	// Update check, best effort
	footer := "ridecast " + Version
	var update *version.Result
	if cfg.VersionTagsURL != "" {
		checker := version.NewChecker(cfg.VersionTagsURL, nil)
		res, err := checker.Check(ctx, Version)
		if err != nil {
			log.Warn().Err(err).Msg("version check failed")
		} else {
			update = res
			if res.UpdateAvailable {
				log.Info().Str("latest", res.Latest).Msg("new version available")
			}
		}
	}

	// Notifications
	notifier := discord.NewSink(discord.ClientConfig{
		WebhookURL:   cfg.WebhookURL,
		MentionUsers: cfg.MentionUsers,
		Footer:       footer,
		Logger:       log,
	})

	// Daily-status persistence
	repo, cleanup, err := newStatusRepository(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize status repository")
	}
	defer cleanup()

	// Forecasts
	provider := openmeteo.NewClient(openmeteo.ClientConfig{
		BaseURL: cfg.ForecastBaseURL,
		Model:   cfg.ForecastModel,
		Logger:  log,
	})
	forecasts := forecast.NewService(forecast.ServiceConfig{
		Provider: provider,
		Logger:   log,
	})

	// Advisor
	params, err := cfg.Params()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid run parameters")
	}
	routes, err := cfg.Routes()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid routes")
	}
	svc, err := advisor.NewService(advisor.ServiceConfig{
		Params:    params,
		Routes:    routes,
		Forecasts: forecasts,
		Notifier:  notifier,
		Logger:    log,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize advisor")
	}

	var calendar *agenda.Client
	if cfg.AgendaURL != "" {
		calendar = agenda.NewClient(agenda.ClientConfig{
			FeedURL: cfg.AgendaURL,
			Logger:  log,
		})
		log.Info().Msg("agenda-driven departure anchors enabled")
	}

	// Health endpoint
	server := newHealthServer(cfg.Port)
	go func() {
		log.Info().Str("addr", server.Addr).Msg("health server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("health server error")
		}
	}()

	// Startup notifications
	startMsg := notify.Compose(notify.KindSystemStart, notify.Message{
		Fields: []notify.Field{{Name: "Interval", Value: cfg.CheckInterval.String()}},
	})
	if err := notifier.Send(ctx, startMsg); err != nil {
		log.Error().Err(err).Msg("startup notification failed")
	}
	if update != nil && update.UpdateAvailable {
		msg := notify.Compose(notify.KindUpdateAvailable, notify.Message{
			Fields: []notify.Field{
				{Name: "Current Version", Value: update.Current},
				{Name: "Latest Version", Value: update.Latest},
			},
		})
		if err := notifier.Send(ctx, msg); err != nil {
			log.Error().Err(err).Msg("update notification failed")
		}
	}

	daemon := &loop{
		cfg:      cfg,
		advisor:  svc,
		calendar: calendar,
		repo:     repo,
		trip:     routes[route.Morning].TripDuration(),
		logger:   log,
	}
	go daemon.run(ctx)

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down")
	cancel()

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancelShutdown()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("health server forced to shutdown")
	}
	log.Info().Msg("stopped")
}

// newStatusRepository picks the configured daily-status backend. The
// returned cleanup closes backend resources and is safe to call always.
func newStatusRepository(ctx context.Context, cfg *config.Config, log zerolog.Logger) (status.Repository, func(), error) {
	switch cfg.StatusBackend {
	case "file":
		return status.NewFileRepository(cfg.StorageDir), func() {}, nil
	case "memory":
		return status.NewMemoryRepository(), func() {}, nil
	case "postgres":
		pool, err := database.Connect(ctx, database.ConfigFromEnv())
		if err != nil {
			return nil, func() {}, err
		}
		repo := status.NewPostgresRepository(pool)
		if err := repo.EnsureSchema(ctx); err != nil {
			pool.Close()
			return nil, func() {}, err
		}
		log.Info().Msg("postgres status backend connected")
		return repo, pool.Close, nil
	default:
		return nil, func() {}, fmt.Errorf("unknown status backend %q", cfg.StatusBackend)
	}
}

func newHealthServer(port string) *http.Server {
	r := chi.NewRouter()
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(httprate.LimitByIP(60, time.Minute))
	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, `{"status":"healthy","version":%q}`, Version)
	})

	return &http.Server{
		Addr:         ":" + port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}
}

// loop is the daemon's periodic check: at most one advisory per day,
// gated by the status repository and, when configured, by the agenda.
type loop struct {
	cfg      *config.Config
	advisor  *advisor.Service
	calendar *agenda.Client
	repo     status.Repository
	trip     time.Duration
	logger   zerolog.Logger
}

func (l *loop) run(ctx context.Context) {
	l.logger.Info().Dur("interval", l.cfg.CheckInterval).Msg("starting checks")

	ticker := time.NewTicker(l.cfg.CheckInterval)
	defer ticker.Stop()

	l.tick(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			l.tick(ctx)
		}
	}
}

func (l *loop) tick(ctx context.Context) {
	now := time.Now()
	day := status.DayKey(now)
	log := l.logger.With().Str("run_id", uuid.NewString()).Str("day", day).Logger()

	sent, err := l.repo.Sent(ctx, day)
	if err != nil {
		log.Error().Err(err).Msg("failed to read notification status")
		return
	}
	if sent {
		return
	}

	svc := l.advisor
	if l.calendar != nil {
		first, last, ok, err := l.calendar.Bounds(ctx, now)
		if err != nil {
			log.Error().Err(err).Msg("failed to fetch agenda")
			return
		}
		if !ok {
			log.Debug().Msg("no classes today, skipping")
			return
		}
		// Advise only while there is still lead time before the first
		// class; past that the morning advice is useless.
		if now.After(first.Add(-l.cfg.AgendaLeadTime)) {
			log.Debug().Time("first_class", first).Msg("past lead time, skipping")
			return
		}

		latest := first.Add(-l.trip)
		morningAnchor := advisor.ClockTime{Hour: latest.Hour(), Minute: latest.Minute()}
		eveningAnchor := advisor.ClockTime{Hour: last.Hour(), Minute: last.Minute()}
		log.Info().
			Time("first_class", first).
			Time("last_class", last).
			Stringer("morning_latest", morningAnchor).
			Stringer("evening_first", eveningAnchor).
			Msg("anchors derived from agenda")
		svc = svc.WithAnchors(morningAnchor, eveningAnchor)
	}

	if err := svc.RunDay(ctx, now); err != nil {
		log.Error().Err(err).Msg("advisory run failed")
		return
	}
	if err := l.repo.MarkSent(ctx, day); err != nil {
		log.Error().Err(err).Msg("failed to record notification status")
	}
}
