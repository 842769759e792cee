package repositories

import (
	"context"
	"net/http"

	"github.com/pkg/errors"

	"forecast-cli/internal/models"
)

var (
	// ErrNetwork marks failures to reach the provider. They are transient.
	ErrNetwork = errors.New("network unavailable")
	// ErrMalformedResponse marks a reply that cannot be turned into a forecast.
	ErrMalformedResponse = errors.New("malformed forecast response")
	ErrEmptyAPIKey       = errors.New("API key cannot be empty")
)

// ForecastRepository fetches the forecast for a "<city>,<country-code>" query.
// Provider status codes other than success are reported in the response,
// not as errors.
type ForecastRepository interface {
	Name() string
	FetchForecast(ctx context.Context, location string) (models.ForecastResponse, error)
}

type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}
