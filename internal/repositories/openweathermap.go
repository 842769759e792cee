package repositories

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"forecast-cli/internal/models"
	"forecast-cli/pkg/logger"
)

const (
	OpenWeatherMapBaseURL = "http://api.openweathermap.org/data/2.5/forecast"
)

// maxResponseBytes caps the body read. A full 5 day forecast is ~20 KiB.
var maxResponseBytes int64 = 4 << 20

type OpenWeatherMapRepository struct {
	BaseURL    string
	APIKey     string
	Units      models.Units
	httpClient HTTPClient
	l          *logger.Logger
}

// NewOpenWeatherMapRepository refuses an empty key so that a missing
// WEATHER_KEY is reported before any request goes out.
func NewOpenWeatherMapRepository(
	baseURL string,
	apiKey string,
	units models.Units,
	l *logger.Logger,
	httpClient HTTPClient,
) (*OpenWeatherMapRepository, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, ErrEmptyAPIKey
	}
	if baseURL == "" {
		baseURL = OpenWeatherMapBaseURL
	}
	if units == "" {
		units = models.Imperial
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	return &OpenWeatherMapRepository{
		BaseURL:    baseURL,
		APIKey:     apiKey,
		Units:      units,
		httpClient: httpClient,
		l:          l,
	}, nil
}

func (o *OpenWeatherMapRepository) Name() string {
	return "openweathermap"
}

func (o *OpenWeatherMapRepository) requestURL(location string) (string, error) {
	u, err := url.Parse(o.BaseURL)
	if err != nil {
		return "", fmt.Errorf("invalid base URL %q: %w", o.BaseURL, err)
	}

	q := u.Query()
	q.Set("q", location)
	q.Set("units", string(o.Units))
	q.Set("appid", o.APIKey)
	u.RawQuery = q.Encode()

	return u.String(), nil
}

func (o *OpenWeatherMapRepository) FetchForecast(ctx context.Context, location string) (models.ForecastResponse, error) {
	var forecast models.ForecastResponse

	reqURL, err := o.requestURL(location)
	if err != nil {
		return forecast, err
	}

	// the URL carries the key, so only the query is logged
	o.l.Info("making openweathermap API request", map[string]any{
		"location": location,
		"units":    o.Units,
	})

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return forecast, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := o.httpClient.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return forecast, ctxErr
		}
		return forecast, fmt.Errorf("%w: failed to do request: %s", ErrNetwork, redact(err.Error(), o.APIKey))
	}
	defer resp.Body.Close()

	o.l.Info("received openweathermap API response", map[string]any{
		"status":     resp.StatusCode,
		"statusText": resp.Status,
	})

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes+1))
	if err != nil {
		return forecast, fmt.Errorf("%w: failed to read response body: %v", ErrNetwork, err)
	}
	if int64(len(body)) > maxResponseBytes {
		return forecast, fmt.Errorf("%w: response body exceeds %d bytes", ErrMalformedResponse, maxResponseBytes)
	}

	if err := json.Unmarshal(body, &forecast); err != nil {
		// gateways in front of the provider answer 5xx with HTML
		if resp.StatusCode >= http.StatusInternalServerError {
			return forecast, fmt.Errorf("%w: HTTP error (status %d): %s", ErrNetwork, resp.StatusCode, resp.Status)
		}
		return forecast, fmt.Errorf("%w: failed to parse JSON response: %v", ErrMalformedResponse, err)
	}

	if forecast.Code == "" && resp.StatusCode != http.StatusOK {
		forecast.Code = models.StatusCode(strconv.Itoa(resp.StatusCode))
	}

	if !forecast.Code.IsSuccess() {
		return forecast, nil
	}

	if forecast.List == nil {
		return forecast, fmt.Errorf("%w: no forecast list in response", ErrMalformedResponse)
	}
	if err := forecast.Validate(); err != nil {
		return forecast, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}

	o.l.Info("parsed API response", map[string]any{
		"items": len(forecast.List),
	})

	return forecast, nil
}

// redact strips the API key from transport errors, which quote the URL.
func redact(s, secret string) string {
	if secret == "" {
		return s
	}
	return strings.ReplaceAll(s, secret, "***")
}
