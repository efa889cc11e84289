package forecast

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/ridecast/ridecast/internal/route"
)

// ServiceConfig holds configuration for the forecast service.
type ServiceConfig struct {
	// Provider is the forecast data provider.
	Provider Provider

	// Logger for service operations.
	Logger zerolog.Logger
}

// Service provides forecast tables with per-process memoization. Morning
// and evening runs of the same day share one fetch per waypoint set;
// entries live for the process lifetime, forecasts are refetched daily by
// construction of the cache key.
type Service struct {
	provider Provider
	logger   zerolog.Logger

	mu    sync.Mutex
	cache map[string]*Table

	fetches       metric.Int64Counter
	fetchDuration metric.Float64Histogram
}

// NewService creates a new forecast service.
func NewService(cfg ServiceConfig) *Service {
	meter := otel.Meter("ridecast/forecast")

	fetches, _ := meter.Int64Counter("forecast_fetches_total",
		metric.WithDescription("Forecast provider fetches, by outcome"))
	fetchDuration, _ := meter.Float64Histogram("forecast_fetch_duration_seconds",
		metric.WithDescription("Forecast provider fetch latency"))

	return &Service{
		provider:      cfg.Provider,
		logger:        cfg.Logger,
		cache:         make(map[string]*Table),
		fetches:       fetches,
		fetchDuration: fetchDuration,
	}
}

// Table returns the forecast table for the waypoints on the given date,
// fetching from the provider on first use.
func (s *Service) Table(ctx context.Context, waypoints []route.Waypoint, date time.Time) (*Table, error) {
	key := cacheKey(waypoints, date)

	s.mu.Lock()
	defer s.mu.Unlock()

	if table, ok := s.cache[key]; ok {
		s.logger.Debug().Str("key", key).Msg("forecast cache hit")
		return table, nil
	}

	start := time.Now()
	table, err := s.provider.FetchRoute(ctx, waypoints, date)
	elapsed := time.Since(start)

	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	s.fetches.Add(ctx, 1, metric.WithAttributes(
		attribute.String("provider", s.provider.Name()),
		attribute.String("outcome", outcome)))
	s.fetchDuration.Record(ctx, elapsed.Seconds(), metric.WithAttributes(
		attribute.String("provider", s.provider.Name())))

	if err != nil {
		s.logger.Error().Err(err).
			Str("provider", s.provider.Name()).
			Dur("elapsed", elapsed).
			Msg("forecast fetch failed")
		return nil, fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
	}

	s.logger.Info().
		Str("provider", s.provider.Name()).
		Int("waypoints", len(waypoints)).
		Dur("elapsed", elapsed).
		Msg("forecast fetched")

	s.cache[key] = table
	return table, nil
}

// cacheKey identifies a (waypoint set, date) fetch. Waypoints are sorted
// so morning and evening orderings of the same points share an entry.
func cacheKey(waypoints []route.Waypoint, date time.Time) string {
	parts := make([]string, len(waypoints))
	for i, wp := range waypoints {
		parts[i] = fmt.Sprintf("%s@%.4f,%.4f", wp.Name, wp.Lat, wp.Lon)
	}
	sort.Strings(parts)
	return date.Format("2006-01-02") + "|" + strings.Join(parts, ";")
}
