package device

import (
	"context"

	"github.com/martinsuchenak/thingprobe/internal/model"
)

// Fetcher retrieves the thing description a device serves at its base URL
type Fetcher interface {
	// FetchBase performs one GET against BaseURL. A non-200 answer is reported
	// as an error wrapping thing.ErrAbsent.
	FetchBase(ctx context.Context) (model.Description, error)

	// BaseURL returns the URL FetchBase requests
	BaseURL() string
}

// FetcherFactory builds a Fetcher for a target
type FetcherFactory func(target model.Target) Fetcher
