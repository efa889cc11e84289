// Package config loads the daemon configuration from the environment,
// with optional .env file support, and turns it into the typed run
// parameters and routes the rest of the program consumes. Nothing here
// is a global: Load returns a value and callers pass down the pieces
// they need.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/ridecast/ridecast/internal/advisor"
	"github.com/ridecast/ridecast/internal/route"
)

// Config is the environment-backed configuration of the ridecast daemon.
// Defaults reproduce the stock Tournai–Mons commute setup so a bare
// deployment only needs a webhook URL.
type Config struct {
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
	Port     string `envconfig:"APP_PORT" default:"8080"`

	// Notification delivery
	WebhookURL   string   `envconfig:"DISCORD_WEBHOOK_URL" required:"true"`
	MentionUsers []string `envconfig:"DISCORD_MENTION_USERS"`

	// Daily-status persistence: "file", "memory" or "postgres"
	StatusBackend string `envconfig:"STATUS_BACKEND" default:"file"`
	StorageDir    string `envconfig:"STORAGE_DIR" default:"data"`

	// Daemon loop
	CheckInterval  time.Duration `envconfig:"CHECK_INTERVAL" default:"5m"`
	AgendaURL      string        `envconfig:"AGENDA_ICS_URL"`
	AgendaLeadTime time.Duration `envconfig:"AGENDA_LEAD_TIME" default:"3h"`

	// Departure windows
	MorningLatestDeparture string        `envconfig:"MORNING_LATEST_DEPARTURE" default:"09:45"`
	MorningEarlySlack      time.Duration `envconfig:"MORNING_EARLY_SLACK" default:"45m"`
	EveningFirstDeparture  string        `envconfig:"EVENING_FIRST_DEPARTURE" default:"11:30"`
	EveningLateSlack       time.Duration `envconfig:"EVENING_LATE_SLACK" default:"30m"`

	// Evaluation parameters
	Gear      int     `envconfig:"GEAR_LEVEL" default:"-1"`
	Threshold float64 `envconfig:"ACCEPTANCE_THRESHOLD" default:"0.5"`
	Tolerance float64 `envconfig:"SCORE_TOLERANCE" default:"0.15"`

	// Weather limits
	MaxRain              float64 `envconfig:"MAX_RAIN_MM" default:"0.2"`
	MaxWind              float64 `envconfig:"MAX_WIND_KMH" default:"25"`
	MaxWindGoodDirection float64 `envconfig:"MAX_WIND_GOOD_DIRECTION_KMH" default:"35"`
	MinTemp              float64 `envconfig:"MIN_TEMP_C" default:"6"`

	// Route: JSON file override, or the built-in Tournai–Mons commute
	RouteFile   string        `envconfig:"ROUTE_FILE"`
	LegDuration time.Duration `envconfig:"LEG_DURATION" default:"15m"`

	// Rendering
	Locale string `envconfig:"LOCALE" default:"en"`

	// Forecast provider; empty values fall back to the client defaults
	ForecastBaseURL string `envconfig:"OPENMETEO_BASE_URL"`
	ForecastModel   string `envconfig:"FORECAST_MODEL"`

	// Telemetry
	OTelEnabled  bool   `envconfig:"OTEL_ENABLED" default:"false"`
	OTLPEndpoint string `envconfig:"OTEL_EXPORTER_OTLP_ENDPOINT" default:"localhost:4317"`

	// Update check; set to an empty value to disable it
	VersionTagsURL string `envconfig:"VERSION_TAGS_URL" default:"https://api.github.com/repos/ridecast/ridecast/tags"`
}

// Load reads an optional .env file, then the process environment. It
// fails fast on a missing required value or an unparseable one.
func Load() (*Config, error) {
	_ = godotenv.Load() //nolint:errcheck // a missing .env file is normal

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	if cfg.CheckInterval <= 0 {
		return nil, fmt.Errorf("CHECK_INTERVAL must be positive, got %s", cfg.CheckInterval)
	}
	if cfg.LegDuration <= 0 {
		return nil, fmt.Errorf("LEG_DURATION must be positive, got %s", cfg.LegDuration)
	}
	return &cfg, nil
}

// Params builds and validates the advisor run parameters.
func (c *Config) Params() (advisor.Params, error) {
	morning, err := advisor.ParseClockTime(c.MorningLatestDeparture)
	if err != nil {
		return advisor.Params{}, fmt.Errorf("MORNING_LATEST_DEPARTURE: %w", err)
	}
	evening, err := advisor.ParseClockTime(c.EveningFirstDeparture)
	if err != nil {
		return advisor.Params{}, fmt.Errorf("EVENING_FIRST_DEPARTURE: %w", err)
	}

	scoring := advisor.DefaultScoringConfig()
	scoring.MaxRain = c.MaxRain
	scoring.MaxWind = c.MaxWind
	scoring.MaxWindGoodDirection = c.MaxWindGoodDirection
	scoring.MinTemp = c.MinTemp

	p := advisor.Params{
		MorningLatestDeparture: morning,
		MorningEarlySlack:      c.MorningEarlySlack,
		EveningFirstDeparture:  evening,
		EveningLateSlack:       c.EveningLateSlack,
		Gear:                   advisor.GearLevel(c.Gear),
		Threshold:              c.Threshold,
		Tolerance:              c.Tolerance,
		Scoring:                scoring,
		Locale:                 c.Locale,
	}
	return p, p.Validate()
}

// Routes builds the morning and evening routes, from the route file when
// configured and from the built-in commute otherwise. The evening route
// is the morning one reversed, with its own wind arcs.
func (c *Config) Routes() (map[route.RunMode]route.Route, error) {
	stops := defaultStops()
	if c.RouteFile != "" {
		loaded, err := loadRouteFile(c.RouteFile)
		if err != nil {
			return nil, err
		}
		stops = loaded
	}

	morning := make([]route.Waypoint, 0, len(stops))
	evening := make([]route.Waypoint, 0, len(stops))
	for _, s := range stops {
		morning = append(morning, route.Waypoint{Name: s.Name, Lat: s.Lat, Lon: s.Lon, Arc: s.MorningArc})
	}
	for i := len(stops) - 1; i >= 0; i-- {
		s := stops[i]
		evening = append(evening, route.Waypoint{Name: s.Name, Lat: s.Lat, Lon: s.Lon, Arc: s.EveningArc})
	}

	routes := map[route.RunMode]route.Route{
		route.Morning: {Mode: route.Morning, Waypoints: morning, LegDuration: c.LegDuration},
		route.Evening: {Mode: route.Evening, Waypoints: evening, LegDuration: c.LegDuration},
	}
	for mode, rt := range routes {
		if err := rt.Validate(); err != nil {
			return nil, fmt.Errorf("%s route: %w", mode, err)
		}
	}
	return routes, nil
}

// stop is one route point in morning order, with the wind arc that
// counts as a tailwind for each direction of travel.
type stop struct {
	Name       string         `json:"name"`
	Lat        float64        `json:"lat"`
	Lon        float64        `json:"lon"`
	MorningArc *route.WindArc `json:"morning_arc"`
	EveningArc *route.WindArc `json:"evening_arc"`
}

// defaultStops is the stock Tournai–Mons commute along the E42.
func defaultStops() []stop {
	return []stop{
		{Name: "Tournai", Lat: 50.6071, Lon: 3.3893, MorningArc: &route.WindArc{Min: 270, Max: 360}},
		{Name: "E42", Lat: 50.549, Lon: 3.525, MorningArc: &route.WindArc{Min: 270, Max: 360}, EveningArc: &route.WindArc{Min: 90, Max: 180}},
		{Name: "E42bis", Lat: 50.474, Lon: 3.742, MorningArc: &route.WindArc{Min: 180, Max: 360}, EveningArc: &route.WindArc{Min: 90, Max: 180}},
		{Name: "Mons", Lat: 50.4541, Lon: 3.9523, EveningArc: &route.WindArc{Min: 45, Max: 135}},
	}
}

func loadRouteFile(path string) ([]stop, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read route file: %w", err)
	}
	var doc struct {
		Waypoints []stop `json:"waypoints"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse route file %s: %w", path, err)
	}
	if len(doc.Waypoints) == 0 {
		return nil, fmt.Errorf("route file %s: no waypoints", path)
	}
	return doc.Waypoints, nil
}
