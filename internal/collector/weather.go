// Weather collector backed by the Open-Meteo forecast endpoint.
package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/glasspane/telemetry/internal/metric"
)

// weatherTimeout bounds the forecast HTTP fetch.
const weatherTimeout = 5 * time.Second

// DefaultWeatherBaseURL is the production forecast endpoint.
const DefaultWeatherBaseURL = "https://api.open-meteo.com"

// weatherResponse mirrors the subset of the forecast payload we consume.
type weatherResponse struct {
	Current struct {
		Temperature float64 `json:"temperature_2m"`
		WeatherCode int64   `json:"weather_code"`
	} `json:"current"`
}

// WeatherCollector fetches current temperature and condition for a
// configured latitude/longitude.
type WeatherCollector struct {
	lat     float64
	lon     float64
	baseURL string
	client  *http.Client
	logger  *zap.Logger
}

// NewWeatherCollector creates a weather collector. An empty baseURL selects
// the production endpoint.
func NewWeatherCollector(lat, lon float64, baseURL string, logger *zap.Logger) *WeatherCollector {
	if baseURL == "" {
		baseURL = DefaultWeatherBaseURL
	}
	return &WeatherCollector{
		lat:     lat,
		lon:     lon,
		baseURL: baseURL,
		client:  &http.Client{Timeout: weatherTimeout},
		logger:  logger,
	}
}

// ID returns the collector identifier.
func (c *WeatherCollector) ID() string { return "weather" }

// Label returns the collector display name.
func (c *WeatherCollector) Label() string { return "Weather" }

// Collect fetches the current conditions. On any failure the temperature
// degrades to "N/A" and the condition is omitted.
func (c *WeatherCollector) Collect(ctx context.Context) map[metric.ID]metric.Value {
	out := make(map[metric.ID]metric.Value, 2)
	url := fmt.Sprintf("%s/v1/forecast?latitude=%v&longitude=%v&current=temperature_2m,weather_code",
		c.baseURL, c.lat, c.lon)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		c.logger.Warn("weather request build failed", zap.Error(err))
		out[metric.WeatherTemp] = metric.Str("N/A")
		return out
	}

	resp, err := c.client.Do(req)
	if err != nil {
		c.logger.Warn("weather fetch failed", zap.Error(err))
		out[metric.WeatherTemp] = metric.Str("N/A")
		return out
	}
	defer resp.Body.Close()

	var body weatherResponse
	if resp.StatusCode != http.StatusOK || json.NewDecoder(resp.Body).Decode(&body) != nil {
		c.logger.Warn("weather response unusable", zap.Int("status", resp.StatusCode))
		out[metric.WeatherTemp] = metric.Str("N/A")
		return out
	}

	out[metric.WeatherTemp] = metric.Str(fmt.Sprintf("%.1f°C", body.Current.Temperature))
	out[metric.WeatherCondition] = metric.Str(weatherCodeText(body.Current.WeatherCode))
	return out
}

// weatherCodeText maps WMO weather codes to short descriptions.
func weatherCodeText(code int64) string {
	switch code {
	case 0:
		return "Clear sky"
	case 1, 2, 3:
		return "Partly cloudy"
	case 45, 48:
		return "Fog"
	case 51, 53, 55:
		return "Drizzle"
	case 56, 57:
		return "Freezing Drizzle"
	case 61, 63, 65:
		return "Rain"
	case 66, 67:
		return "Freezing Rain"
	case 71, 73, 75:
		return "Snow"
	case 77:
		return "Snow grains"
	case 80, 81, 82:
		return "Rain showers"
	case 85, 86:
		return "Snow showers"
	case 95:
		return "Thunderstorm"
	case 96, 99:
		return "Thunderstorm (Hail)"
	default:
		return "Unknown"
	}
}
