// Package openmeteo implements the forecast provider against the
// Open-Meteo API, fetching every route waypoint in one batched request.
package openmeteo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/ridecast/ridecast/internal/forecast"
	"github.com/ridecast/ridecast/internal/resilience"
	"github.com/ridecast/ridecast/internal/route"
)

const (
	// ProviderName identifies this forecast provider.
	ProviderName = "openmeteo"

	// DefaultBaseURL is the Open-Meteo forecast endpoint.
	DefaultBaseURL = "https://api.open-meteo.com/v1/forecast"

	// DefaultModel is the forecast model requested. ARPEGE has the best
	// sub-hourly coverage for the Benelux commute corridor.
	DefaultModel = "meteofrance_arpege_europe"
)

// minutelyFields are the 15-minute series required for scoring.
var minutelyFields = []string{
	"precipitation",
	"temperature_2m",
	"wind_speed_10m",
	"wind_direction_10m",
	"weather_code",
}

// hourlyFields are hourly series resampled onto the 15-minute grid.
var hourlyFields = []string{
	"precipitation_probability",
}

// ClientConfig holds configuration for the Open-Meteo client.
type ClientConfig struct {
	// BaseURL is the API base URL (optional).
	BaseURL string

	// Model is the forecast model (optional).
	Model string

	// Location is the timezone forecast timestamps are expressed in
	// (optional, defaults to the system's local timezone).
	Location *time.Location

	// HTTPClient is the HTTP client to use (optional).
	// If nil, uses a resilient client with defaults.
	HTTPClient *resilience.Client

	// Logger for client operations.
	Logger zerolog.Logger
}

// Client is an Open-Meteo API client.
type Client struct {
	baseURL    string
	model      string
	loc        *time.Location
	httpClient *resilience.Client
	logger     zerolog.Logger
}

// NewClient creates a new Open-Meteo client.
func NewClient(cfg ClientConfig) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}

	loc := cfg.Location
	if loc == nil {
		loc = time.Local
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = resilience.NewClient(resilience.DefaultClientConfig(ProviderName))
	}

	return &Client{
		baseURL:    baseURL,
		model:      model,
		loc:        loc,
		httpClient: httpClient,
		logger:     cfg.Logger,
	}
}

// Name returns the provider name.
func (c *Client) Name() string {
	return ProviderName
}

// FetchRoute fetches the day's 15-minute series for every waypoint with a
// single multi-point request and assembles the forecast table.
func (c *Client) FetchRoute(ctx context.Context, waypoints []route.Waypoint, date time.Time) (*forecast.Table, error) {
	reqURL := c.buildURL(waypoints, date)

	c.logger.Debug().
		Str("provider", ProviderName).
		Int("waypoints", len(waypoints)).
		Str("date", date.Format("2006-01-02")).
		Msg("fetching route forecast")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	points, err := decodePoints(body)
	if err != nil {
		return nil, err
	}
	if len(points) != len(waypoints) {
		return nil, fmt.Errorf("%w: got %d points for %d waypoints",
			forecast.ErrUnexpectedResponse, len(points), len(waypoints))
	}

	series := make(map[string]map[time.Time]*forecast.Observation, len(waypoints))
	for i, wp := range waypoints {
		series[wp.Name] = c.toSeries(&points[i])
	}
	return forecast.NewTable(series), nil
}

// buildURL assembles the batched multi-point request: latitudes and
// longitudes as comma-separated lists, one value per waypoint.
func (c *Client) buildURL(waypoints []route.Waypoint, date time.Time) string {
	lats := make([]string, len(waypoints))
	lons := make([]string, len(waypoints))
	for i, wp := range waypoints {
		lats[i] = strconv.FormatFloat(wp.Lat, 'f', -1, 64)
		lons[i] = strconv.FormatFloat(wp.Lon, 'f', -1, 64)
	}

	day := date.Format("2006-01-02")
	q := url.Values{}
	q.Set("latitude", strings.Join(lats, ","))
	q.Set("longitude", strings.Join(lons, ","))
	q.Set("minutely_15", strings.Join(minutelyFields, ","))
	q.Set("hourly", strings.Join(hourlyFields, ","))
	q.Set("start_date", day)
	q.Set("end_date", day)
	q.Set("timezone", "UTC")
	q.Set("models", c.model)

	return c.baseURL + "?" + q.Encode()
}

// decodePoints handles both response shapes: an array for multi-point
// requests and a bare object when only one point was asked for.
func decodePoints(body []byte) ([]pointResponse, error) {
	var points []pointResponse
	if err := json.Unmarshal(body, &points); err == nil {
		return points, nil
	}

	var single pointResponse
	if err := json.Unmarshal(body, &single); err != nil {
		return nil, fmt.Errorf("%w: %s", forecast.ErrUnexpectedResponse, err)
	}
	return []pointResponse{single}, nil
}

// toSeries converts one point's raw series into timestamped observations
// in the client timezone. Null entries stay nil so incomplete samples are
// excluded downstream rather than scored as zero.
func (c *Client) toSeries(p *pointResponse) map[time.Time]*forecast.Observation {
	out := make(map[time.Time]*forecast.Observation, len(p.Minutely.Time))

	probByHour := make(map[time.Time]*float64, len(p.Hourly.Time))
	for i, raw := range p.Hourly.Time {
		ts, err := parseUTC(raw)
		if err != nil {
			continue
		}
		if i < len(p.Hourly.PrecipProbability) {
			probByHour[floorHour(ts.In(c.loc))] = p.Hourly.PrecipProbability[i]
		}
	}

	for i, raw := range p.Minutely.Time {
		ts, err := parseUTC(raw)
		if err != nil {
			c.logger.Warn().Str("time", raw).Msg("skipping unparsable forecast timestamp")
			continue
		}
		local := ts.In(c.loc)

		obs := &forecast.Observation{
			Precipitation: at(p.Minutely.Precipitation, i),
			Temperature:   at(p.Minutely.Temperature, i),
			WindSpeed:     at(p.Minutely.WindSpeed, i),
			WindDirection: at(p.Minutely.WindDirection, i),
		}
		if code := at(p.Minutely.WeatherCode, i); code != nil {
			c := forecast.Code(*code)
			obs.Code = &c
		}
		obs.PrecipProbability = probByHour[floorHour(local)]

		out[local] = obs
	}
	return out
}

// pointResponse is the raw Open-Meteo payload for one coordinate.
type pointResponse struct {
	Minutely struct {
		Time          []string   `json:"time"`
		Precipitation []*float64 `json:"precipitation"`
		Temperature   []*float64 `json:"temperature_2m"`
		WindSpeed     []*float64 `json:"wind_speed_10m"`
		WindDirection []*float64 `json:"wind_direction_10m"`
		WeatherCode   []*float64 `json:"weather_code"`
	} `json:"minutely_15"`
	Hourly struct {
		Time              []string   `json:"time"`
		PrecipProbability []*float64 `json:"precipitation_probability"`
	} `json:"hourly"`
}

// parseUTC parses Open-Meteo's "2006-01-02T15:04" timestamps, which are in
// UTC because the request pins timezone=UTC.
func parseUTC(s string) (time.Time, error) {
	return time.ParseInLocation("2006-01-02T15:04", s, time.UTC)
}

// floorHour returns the wall-clock hour containing t, which is how the
// hourly probability series keys onto the 15-minute grid.
func floorHour(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), 0, 0, 0, t.Location())
}

func at(values []*float64, i int) *float64 {
	if i >= len(values) {
		return nil
	}
	return values[i]
}
