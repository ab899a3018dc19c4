// Package probe sequences a base test: fetch the description, print the
// verdict, and build the device record.
package probe

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/martinsuchenak/thingprobe/internal/log"
	"github.com/martinsuchenak/thingprobe/internal/model"
	"github.com/martinsuchenak/thingprobe/internal/thing"
	"github.com/martinsuchenak/thingprobe/pkg/device"
)

const (
	verdictOK     = "BASE_TEST ok"
	verdictFailed = "BASE_TEST Failed"
)

// ErrBaseTestFailed is returned after "BASE_TEST Failed" has been printed
var ErrBaseTestFailed = errors.New("base test failed")

// Run performs one base test and writes the verdict line to out. A non-200
// answer prints the failure verdict and returns ErrBaseTestFailed. Transport
// and decode faults are returned without a verdict. A description lacking id
// or title prints the ok verdict, then returns the lookup error.
func Run(ctx context.Context, f device.Fetcher, out io.Writer) (model.Record, error) {
	desc, err := f.FetchBase(ctx)
	if err != nil {
		if errors.Is(err, thing.ErrAbsent) {
			fmt.Fprintln(out, verdictFailed)
			log.Debug("Base test failed", "url", f.BaseURL(), "error", err)
			return model.Record{}, fmt.Errorf("%w: %w", ErrBaseTestFailed, err)
		}
		return model.Record{}, err
	}

	fmt.Fprintln(out, verdictOK)

	rec, err := thing.NewRecord(desc)
	if err != nil {
		return model.Record{}, fmt.Errorf("building device record from %s: %w", f.BaseURL(), err)
	}

	log.Info("Device record populated", "url", f.BaseURL(), "id", rec.ID(), "title", rec.Title())
	return rec, nil
}

// Report runs a base test and summarises it without printing anything.
func Report(ctx context.Context, f device.Fetcher) model.Report {
	rep := model.Report{
		RunID:     generateID(),
		URL:       f.BaseURL(),
		CheckedAt: time.Now().UTC(),
	}

	rec, err := Run(ctx, f, io.Discard)
	if err != nil {
		rep.Error = err.Error()
		var se *thing.StatusError
		var de *thing.DecodeError
		if errors.As(err, &se) {
			rep.StatusCode = se.StatusCode
		} else if errors.As(err, &de) {
			rep.StatusCode = de.StatusCode
		} else if errors.Is(err, thing.ErrMissingField) {
			rep.StatusCode = http.StatusOK
		}
		log.Debug("Probe report", "run_id", rep.RunID, "url", rep.URL, "ok", false, "error", err)
		return rep
	}

	rep.OK = true
	rep.StatusCode = http.StatusOK
	rep.Record = &rec
	log.Debug("Probe report", "run_id", rep.RunID, "url", rep.URL, "ok", true)
	return rep
}

// generateID returns a UUIDv7 for a probe run
func generateID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.New().String()
	}
	return id.String()
}
