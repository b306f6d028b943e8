// Package weather looks up current conditions and a 7-day forecast through
// the Open-Meteo geocoding and forecast APIs. No credential is required.
package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"

	"rafiq-chat/internal/logging"
)

const (
	defaultGeocodeURL  = "https://geocoding-api.open-meteo.com/v1/search"
	defaultForecastURL = "https://api.open-meteo.com/v1/forecast"

	requestTimeout = 10 * time.Second
	forecastDays   = 7
)

// conditions maps WMO weather codes to Arabic descriptions.
var conditions = map[int]string{
	0:  "صافي",
	1:  "صافي جزئياً",
	2:  "غائم جزئياً",
	3:  "غائم",
	45: "ضباب",
	48: "ضباب كثيف",
	51: "رذاذ خفيف",
	53: "رذاذ متوسط",
	55: "رذاذ كثيف",
	61: "مطر خفيف",
	63: "مطر متوسط",
	65: "مطر غزير",
	71: "ثلج خفيف",
	73: "ثلج متوسط",
	75: "ثلج كثيف",
	77: "حبات ثلج",
	80: "زخات مطر خفيفة",
	81: "زخات مطر متوسطة",
	82: "زخات مطر عنيفة",
	85: "زخات ثلج خفيفة",
	86: "زخات ثلج كثيفة",
	95: "عاصفة رعدية",
	96: "عاصفة رعدية مع برد خفيف",
	99: "عاصفة رعدية مع برد كثيف",
}

// Condition renders a WMO weather code in Arabic.
func Condition(code int) string {
	if c, ok := conditions[code]; ok {
		return c
	}
	return "غير معروف"
}

// DayForecast is one day of the daily forecast.
type DayForecast struct {
	Date      string `json:"date"`
	Max       int    `json:"max"`
	Min       int    `json:"min"`
	Condition string `json:"condition"`
}

// Report is the structured weather payload surfaced to clients.
type Report struct {
	Location      string        `json:"location"`
	Temperature   int           `json:"temperature"`
	FeelsLike     int           `json:"feelsLike"`
	Humidity      int           `json:"humidity"`
	WindSpeed     int           `json:"windSpeed"`
	Condition     string        `json:"condition"`
	Precipitation float64       `json:"precipitation"`
	Forecast      []DayForecast `json:"forecast"`
}

// NotFoundError reports an unresolvable location name.
type NotFoundError struct {
	Location string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("location %q not found", e.Location)
}

// Client resolves a location name to coordinates and fetches its forecast.
type Client struct {
	httpClient  *http.Client
	geocodeURL  string
	forecastURL string
	log         *zap.Logger
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient overrides the underlying client.
func WithHTTPClient(c *http.Client) Option {
	return func(w *Client) { w.httpClient = c }
}

// WithGeocodeURL overrides the geocoding endpoint (tests).
func WithGeocodeURL(u string) Option {
	return func(w *Client) { w.geocodeURL = u }
}

// WithForecastURL overrides the forecast endpoint (tests).
func WithForecastURL(u string) Option {
	return func(w *Client) { w.forecastURL = u }
}

// NewClient creates a weather client against the production endpoints.
func NewClient(opts ...Option) *Client {
	c := &Client{
		httpClient:  &http.Client{Timeout: requestTimeout},
		geocodeURL:  defaultGeocodeURL,
		forecastURL: defaultForecastURL,
		log:         logging.L(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type geocodeResponse struct {
	Results []struct {
		Latitude  float64 `json:"latitude"`
		Longitude float64 `json:"longitude"`
		Name      string  `json:"name"`
		Country   string  `json:"country"`
	} `json:"results"`
}

type forecastResponse struct {
	Current struct {
		Temperature   float64 `json:"temperature_2m"`
		Humidity      int     `json:"relative_humidity_2m"`
		FeelsLike     float64 `json:"apparent_temperature"`
		Precipitation float64 `json:"precipitation"`
		WeatherCode   int     `json:"weather_code"`
		WindSpeed     float64 `json:"wind_speed_10m"`
	} `json:"current"`
	Daily struct {
		Time        []string  `json:"time"`
		WeatherCode []int     `json:"weather_code"`
		TempMax     []float64 `json:"temperature_2m_max"`
		TempMin     []float64 `json:"temperature_2m_min"`
	} `json:"daily"`
}

// Lookup resolves the location and returns its report. An unknown location
// yields a *NotFoundError.
func (c *Client) Lookup(ctx context.Context, location string) (*Report, error) {
	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	geo, err := c.geocode(ctx, location)
	if err != nil {
		return nil, err
	}

	q := url.Values{}
	q.Set("latitude", fmt.Sprintf("%g", geo.Latitude))
	q.Set("longitude", fmt.Sprintf("%g", geo.Longitude))
	q.Set("current", "temperature_2m,relative_humidity_2m,apparent_temperature,precipitation,weather_code,wind_speed_10m")
	q.Set("daily", "weather_code,temperature_2m_max,temperature_2m_min,precipitation_sum")
	q.Set("timezone", "auto")
	q.Set("forecast_days", fmt.Sprint(forecastDays))

	body, err := c.get(ctx, c.forecastURL+"?"+q.Encode())
	if err != nil {
		return nil, fmt.Errorf("fetch forecast: %w", err)
	}

	var parsed forecastResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("decode forecast: %w", err)
	}

	days := len(parsed.Daily.Time)
	if days > forecastDays {
		days = forecastDays
	}
	forecast := make([]DayForecast, 0, days)
	for i := 0; i < days; i++ {
		forecast = append(forecast, DayForecast{
			Date:      parsed.Daily.Time[i],
			Max:       int(math.Round(parsed.Daily.TempMax[i])),
			Min:       int(math.Round(parsed.Daily.TempMin[i])),
			Condition: Condition(parsed.Daily.WeatherCode[i]),
		})
	}

	return &Report{
		Location:      geo.Name + ", " + geo.Country,
		Temperature:   int(math.Round(parsed.Current.Temperature)),
		FeelsLike:     int(math.Round(parsed.Current.FeelsLike)),
		Humidity:      parsed.Current.Humidity,
		WindSpeed:     int(math.Round(parsed.Current.WindSpeed)),
		Condition:     Condition(parsed.Current.WeatherCode),
		Precipitation: parsed.Current.Precipitation,
		Forecast:      forecast,
	}, nil
}

type geocodeResult struct {
	Latitude  float64
	Longitude float64
	Name      string
	Country   string
}

func (c *Client) geocode(ctx context.Context, location string) (*geocodeResult, error) {
	q := url.Values{}
	q.Set("name", location)
	q.Set("count", "1")
	q.Set("language", "ar")
	q.Set("format", "json")

	body, err := c.get(ctx, c.geocodeURL+"?"+q.Encode())
	if err != nil {
		return nil, fmt.Errorf("geocode %q: %w", location, err)
	}

	var parsed geocodeResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("decode geocode response: %w", err)
	}
	if len(parsed.Results) == 0 {
		return nil, &NotFoundError{Location: location}
	}

	r := parsed.Results[0]
	return &geocodeResult{
		Latitude:  r.Latitude,
		Longitude: r.Longitude,
		Name:      r.Name,
		Country:   r.Country,
	}, nil
}

func (c *Client) get(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.log.Warn("weather upstream error",
			zap.String("url", rawURL),
			zap.Int("status", resp.StatusCode))
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return io.ReadAll(io.LimitReader(resp.Body, 1<<20))
}
