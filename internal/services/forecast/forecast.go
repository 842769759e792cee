package forecast

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"forecast-cli/internal/models"
	"forecast-cli/internal/repositories"
	"forecast-cli/pkg/logger"
)

const (
	defaultMaxAttempts = 5
	defaultRetryDelay  = time.Second
)

// Kind classifies the outcome of a fetch.
type Kind int

const (
	Success Kind = iota
	NotFound
	AuthError
	NetworkError
	MalformedResponse
	ProviderError
	Canceled
)

func (k Kind) String() string {
	switch k {
	case Success:
		return "success"
	case NotFound:
		return "not-found"
	case AuthError:
		return "auth-error"
	case NetworkError:
		return "network-error"
	case MalformedResponse:
		return "malformed-response"
	case ProviderError:
		return "provider-error"
	case Canceled:
		return "canceled"
	}
	return "unknown"
}

// ErrInvalidAPIKey is the Err of an AuthError result.
var ErrInvalidAPIKey = errors.New("invalid API key or API key is not available")

type Result struct {
	Kind     Kind
	Location string
	Entries  []models.ForecastEntry
	// Message is the provider's explanation for a non-success status.
	Message  string
	Attempts int
	Err      error
}

// FailureFunc is called after every attempt that failed on the network.
type FailureFunc func(attempt int, err error)

type Options struct {
	MaxAttempts int
	// RetryDelay is the wait after the first failure, doubled on each
	// further failure up to MaxRetryDelay.
	RetryDelay    time.Duration
	MaxRetryDelay time.Duration
}

// Service runs the fetch flow: request, classify, retry on network failures.
type Service struct {
	repo  repositories.ForecastRepository
	opts  Options
	l     *logger.Logger
	sleep func(ctx context.Context, d time.Duration) error
}

func NewService(repo repositories.ForecastRepository, opts Options, l *logger.Logger) *Service {
	if opts.MaxAttempts < 1 {
		opts.MaxAttempts = defaultMaxAttempts
	}
	if opts.RetryDelay < 0 {
		opts.RetryDelay = defaultRetryDelay
	}
	if opts.MaxRetryDelay < opts.RetryDelay {
		opts.MaxRetryDelay = opts.RetryDelay
	}

	return &Service{
		repo:  repo,
		opts:  opts,
		l:     l,
		sleep: sleepContext,
	}
}

// Fetch retrieves the forecast for location. Only network failures are
// retried; every other outcome is final.
func (s *Service) Fetch(ctx context.Context, location string, onFailure FailureFunc) Result {
	result := Result{Location: location}

	for attempt := 1; attempt <= s.opts.MaxAttempts; attempt++ {
		result.Attempts = attempt

		s.l.Debug("fetching forecast", map[string]any{
			"repo":     s.repo.Name(),
			"location": location,
			"attempt":  attempt,
		})

		resp, err := s.repo.FetchForecast(ctx, location)
		if err == nil {
			return s.classify(result, resp)
		}

		switch {
		case ctx.Err() != nil:
			result.Kind = Canceled
			result.Err = ctx.Err()
			return result
		case errors.Is(err, repositories.ErrMalformedResponse):
			s.l.Error(errors.Wrap(err, "rejecting forecast"), map[string]any{"location": location})
			result.Kind = MalformedResponse
			result.Err = err
			return result
		case !errors.Is(err, repositories.ErrNetwork):
			// the request could not even be built, a retry would fail the same way
			s.l.Error(errors.Wrap(err, "forecast request failed"), map[string]any{"location": location})
			result.Kind = NetworkError
			result.Err = err
			return result
		}

		result.Kind = NetworkError
		result.Err = err

		s.l.Warning("forecast provider unreachable", map[string]any{
			"location": location,
			"attempt":  attempt,
			"err":      err.Error(),
		})
		if onFailure != nil {
			onFailure(attempt, err)
		}

		if attempt == s.opts.MaxAttempts {
			break
		}

		if err := s.sleep(ctx, s.backoff(attempt)); err != nil {
			result.Kind = Canceled
			result.Err = err
			return result
		}
	}

	s.l.Error(errors.Wrapf(result.Err, "giving up after %d attempts", result.Attempts), map[string]any{
		"location": location,
	})

	return result
}

func (s *Service) classify(result Result, resp models.ForecastResponse) Result {
	result.Message = resp.ProviderMessage()

	switch {
	case resp.Code == models.StatusUnauthorized:
		// the key itself is never logged
		s.l.Error(ErrInvalidAPIKey)
		result.Kind = AuthError
		result.Err = ErrInvalidAPIKey
	case resp.Code == models.StatusNotFound:
		s.l.Info("city not found", map[string]any{"location": result.Location})
		result.Kind = NotFound
	case resp.Code.IsSuccess():
		s.l.Info("successfully fetched forecast", map[string]any{
			"location": result.Location,
			"entries":  len(resp.List),
		})
		result.Kind = Success
		result.Entries = resp.List
	default:
		result.Kind = ProviderError
		result.Err = errors.Errorf("provider status %s: %s", resp.Code, result.Message)
		s.l.Error(result.Err, map[string]any{"location": result.Location})
	}

	return result
}

// backoff is the wait after the given failed attempt (1-based).
func (s *Service) backoff(attempt int) time.Duration {
	d := s.opts.RetryDelay
	for i := 1; i < attempt; i++ {
		d *= 2
		if d >= s.opts.MaxRetryDelay {
			return s.opts.MaxRetryDelay
		}
	}
	return d
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
