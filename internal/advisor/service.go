package advisor

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/ridecast/ridecast/internal/forecast"
	"github.com/ridecast/ridecast/internal/notify"
	"github.com/ridecast/ridecast/internal/route"
)

// Params are the run parameters of the advisor: anchors, slacks, gear and
// acceptance limits. All of it is configuration passed by construction —
// nothing is looked up ambiently.
type Params struct {
	// MorningLatestDeparture is the wall-clock deadline for the outbound
	// leg.
	MorningLatestDeparture ClockTime

	// MorningEarlySlack bounds how much earlier than the deadline a
	// morning departure may be proposed.
	MorningEarlySlack time.Duration

	// EveningFirstDeparture is the wall-clock time the return leg becomes
	// possible.
	EveningFirstDeparture ClockTime

	// EveningLateSlack bounds how much later than the first possible time
	// an evening departure may be proposed.
	EveningLateSlack time.Duration

	// Gear is the gear level to evaluate; GearAll evaluates all three.
	Gear GearLevel

	// Threshold is the acceptance limit for aggregate risk and
	// discomfort.
	Threshold float64

	// Tolerance is the tie-break band width around the best combined
	// score.
	Tolerance float64

	// Scoring holds the per-observation weather limits.
	Scoring ScoringConfig

	// Locale selects the language of condition descriptions.
	Locale string
}

// Validate checks the run parameters.
func (p Params) Validate() error {
	if !p.Gear.Valid() {
		return fmt.Errorf("%w: %d", ErrInvalidGearLevel, int(p.Gear))
	}
	if p.MorningEarlySlack < 0 || p.EveningLateSlack < 0 {
		return fmt.Errorf("%w: negative slack", ErrInvalidWindow)
	}
	if p.Threshold <= 0 {
		return fmt.Errorf("acceptance threshold must be positive, got %g", p.Threshold)
	}
	if p.Tolerance < 0 {
		return fmt.Errorf("tolerance must not be negative, got %g", p.Tolerance)
	}
	return nil
}

// ServiceConfig wires the advisor's collaborators.
type ServiceConfig struct {
	// Params are the run parameters.
	Params Params

	// Routes maps each run mode to its waypoint sequence.
	Routes map[route.RunMode]route.Route

	// Forecasts supplies forecast tables.
	Forecasts *forecast.Service

	// Notifier delivers advisory messages.
	Notifier notify.Notifier

	// Logger for service operations.
	Logger zerolog.Logger
}

// Service runs the departure advisory: evaluate both legs, combine, and
// notify.
type Service struct {
	params    Params
	routes    map[route.RunMode]route.Route
	forecasts *forecast.Service
	notifier  notify.Notifier
	evaluator *Evaluator
	logger    zerolog.Logger

	tracer trace.Tracer
	runs   metric.Int64Counter
}

// NewService creates the advisor service. It fails fast on malformed
// parameters or routes — these are configuration errors, not runtime
// conditions.
func NewService(cfg ServiceConfig) (*Service, error) {
	if err := cfg.Params.Validate(); err != nil {
		return nil, err
	}
	for mode, rt := range cfg.Routes {
		if rt.Mode != mode {
			return nil, fmt.Errorf("route registered under %s declares mode %s", mode, rt.Mode)
		}
		if err := rt.Validate(); err != nil {
			return nil, fmt.Errorf("route %s: %w", mode, err)
		}
	}
	for _, mode := range []route.RunMode{route.Morning, route.Evening} {
		if _, ok := cfg.Routes[mode]; !ok {
			return nil, fmt.Errorf("missing route for %s", mode)
		}
	}

	meter := otel.Meter("ridecast/advisor")
	runs, _ := meter.Int64Counter("advisor_runs_total",
		metric.WithDescription("Advisory runs, by outcome"))

	return &Service{
		params:    cfg.Params,
		routes:    cfg.Routes,
		forecasts: cfg.Forecasts,
		notifier:  cfg.Notifier,
		evaluator: NewEvaluator(cfg.Params.Scoring, cfg.Params.Threshold, cfg.Logger),
		logger:    cfg.Logger,
		tracer:    otel.Tracer("ridecast/advisor"),
		runs:      runs,
	}, nil
}

// WithAnchors returns a copy of the service with the departure anchors
// replaced and every other parameter kept. Used when the day's agenda
// dictates the windows instead of the configured defaults.
func (s *Service) WithAnchors(morningLatest, eveningFirst ClockTime) *Service {
	clone := *s
	clone.params.MorningLatestDeparture = morningLatest
	clone.params.EveningFirstDeparture = eveningFirst
	return &clone
}

// RunLeg evaluates one leg: build the window, fetch the forecast table,
// and evaluate+select per gear level. An empty window is a valid outcome
// with zero candidates everywhere.
func (s *Service) RunLeg(ctx context.Context, mode route.RunMode, now time.Time) (*LegResult, error) {
	ctx, span := s.tracer.Start(ctx, "advisor.run_leg",
		trace.WithAttributes(attribute.String("mode", mode.String())))
	defer span.End()

	rt := s.routes[mode]

	anchor, slack := s.params.MorningLatestDeparture, s.params.MorningEarlySlack
	if mode == route.Evening {
		anchor, slack = s.params.EveningFirstDeparture, s.params.EveningLateSlack
	}

	window, err := BuildWindow(mode, now, anchor, slack)
	if err != nil {
		return nil, err
	}

	table, err := s.forecasts.Table(ctx, rt.Waypoints, now)
	if err != nil {
		return nil, err
	}

	result := &LegResult{Mode: mode, Route: rt, Table: table, Window: window}
	for _, gear := range s.params.Gear.Levels() {
		candidates := s.evaluator.Evaluate(table, rt, window, gear)
		best := SelectBest(mode, candidates, s.params.Tolerance)
		result.Selections = append(result.Selections, Selection{
			Gear:       gear,
			Candidates: candidates,
			Best:       best,
		})

		evt := s.logger.Info().
			Str("mode", mode.String()).
			Int("gear", int(gear)).
			Int("candidates", len(candidates))
		if best != nil {
			evt = evt.Time("best_departure", best.Departure).
				Float64("risk", best.Risk).
				Float64("discomfort", best.Discomfort)
		}
		evt.Msg("leg evaluated")
	}
	return result, nil
}

// RunDay runs the full daily advisory: both legs, the round-trip
// combination, and all notifications. A forecast fetch failure aborts the
// run after an API-error notification — partial results are never used.
func (s *Service) RunDay(ctx context.Context, now time.Time) error {
	ctx, span := s.tracer.Start(ctx, "advisor.run_day")
	defer span.End()

	morning, err := s.RunLeg(ctx, route.Morning, now)
	if err != nil {
		return s.abort(ctx, err)
	}
	evening, err := s.RunLeg(ctx, route.Evening, now)
	if err != nil {
		return s.abort(ctx, err)
	}

	combo := CombineRoundTrip(morning.Selections, evening.Selections)

	if combo != nil {
		s.logger.Info().
			Int("gear", int(combo.Gear)).
			Float64("total_risk", combo.TotalRisk).
			Float64("total_discomfort", combo.TotalDiscomfort).
			Msg("round trip selected")

		s.send(ctx, RenderRoundTrip(combo, now))
		s.send(ctx, RenderLeg(morning, combo.Gear, now, s.params.Locale))
		s.send(ctx, RenderLeg(evening, combo.Gear, now, s.params.Locale))
	} else {
		s.logger.Warn().Msg("no viable round trip")

		s.send(ctx, RenderNoRoundTrip(now))
		s.send(ctx, RenderLeg(morning, GearAll, now, s.params.Locale))
		s.send(ctx, RenderLeg(evening, GearAll, now, s.params.Locale))
	}

	s.runs.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", "ok")))
	return nil
}

// abort notifies the API-error outcome and surfaces the original error.
func (s *Service) abort(ctx context.Context, err error) error {
	s.runs.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", "error")))
	s.send(ctx, notify.Compose(notify.KindForecastAPIError, notify.Message{
		Fields: []notify.Field{{Name: "Error", Value: err.Error()}},
	}))
	return err
}

// send delivers a notification; delivery failures are logged, never fatal
// to the run.
func (s *Service) send(ctx context.Context, msg notify.Message) {
	if err := s.notifier.Send(ctx, msg); err != nil {
		s.logger.Error().Err(err).Str("title", msg.Title).Msg("notification failed")
	}
}
