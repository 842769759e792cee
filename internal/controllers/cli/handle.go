package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/pkg/errors"

	"forecast-cli/internal/models"
	"forecast-cli/internal/services/forecast"
	"forecast-cli/pkg/logger"
)

const (
	Prompt = "Enter the name of location for temperature.\n" +
		"Enter in this format (city,country code). For example: minneapolis,us: "

	MsgCityNotFound  = "City not found."
	MsgNoInternet    = "Internet is not available."
	MsgMalformedData = "Received malformed forecast data."
	MsgServiceError  = "Forecast service error"
)

var ErrNoLocation = errors.New("no location entered")

// Fetcher is implemented by forecast.Service.
type Fetcher interface {
	Fetch(ctx context.Context, location string, onFailure forecast.FailureFunc) forecast.Result
}

// Handler is the interactive surface: it asks for a location, runs the
// fetch and writes the outcome for a human reader.
type Handler struct {
	service Fetcher
	units   models.Units
	in      *bufio.Reader
	out     io.Writer
	l       *logger.Logger
}

func NewHandler(service Fetcher, units models.Units, in io.Reader, out io.Writer, l *logger.Logger) *Handler {
	return &Handler{
		service: service,
		units:   units,
		in:      bufio.NewReader(in),
		out:     out,
		l:       l,
	}
}

// Run prompts once and prints the forecast. It returns nil when the user got
// an answer (a forecast or "City not found.") and an error otherwise.
func (h *Handler) Run(ctx context.Context) error {
	location, err := h.readLocation(ctx)
	if err != nil {
		return err
	}

	result := h.service.Fetch(ctx, location, func(int, error) {
		fmt.Fprintln(h.out, MsgNoInternet)
	})

	h.l.Debug("forecast fetch finished", map[string]any{
		"location": location,
		"kind":     result.Kind.String(),
		"attempts": result.Attempts,
	})

	switch result.Kind {
	case forecast.Success:
		for _, e := range result.Entries {
			fmt.Fprintln(h.out, models.FormatEntry(e, h.units))
		}
		return nil
	case forecast.NotFound:
		fmt.Fprintln(h.out, MsgCityNotFound)
		return nil
	case forecast.AuthError:
		// logged by the service; nothing for the user
		return result.Err
	case forecast.MalformedResponse:
		fmt.Fprintln(h.out, MsgMalformedData)
		return result.Err
	case forecast.ProviderError:
		if result.Message != "" {
			fmt.Fprintf(h.out, "%s: %s\n", MsgServiceError, result.Message)
		} else {
			fmt.Fprintf(h.out, "%s.\n", MsgServiceError)
		}
		return result.Err
	}

	return errors.Wrapf(result.Err, "%s after %d attempts", result.Kind, result.Attempts)
}

// readLocation gives up as soon as ctx is done. The pending read is left
// behind; it ends with the process or when the input is closed.
func (h *Handler) readLocation(ctx context.Context) (string, error) {
	fmt.Fprint(h.out, Prompt)

	type readResult struct {
		line string
		err  error
	}
	lineCh := make(chan readResult, 1)

	go func() {
		line, err := h.in.ReadString('\n')
		lineCh <- readResult{line: line, err: err}
	}()

	var r readResult
	select {
	case <-ctx.Done():
		fmt.Fprintln(h.out)
		return "", ctx.Err()
	case r = <-lineCh:
	}

	if r.err != nil && !errors.Is(r.err, io.EOF) {
		return "", errors.Wrap(r.err, "read location")
	}

	location := strings.TrimSpace(r.line)
	if location == "" {
		return "", ErrNoLocation
	}

	return location, nil
}
