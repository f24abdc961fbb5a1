// Package tracking reports unexpected errors to Sentry.
package tracking

import (
	"net/http"
	"time"

	"github.com/getsentry/sentry-go"
)

// Reporter sends errors to Sentry. A Reporter built without a DSN is a no-op.
type Reporter struct {
	enabled bool
}

// New initialises the Sentry client. An empty dsn disables reporting.
func New(dsn, environment string) (*Reporter, error) {
	if dsn == "" {
		return &Reporter{}, nil
	}
	if environment == "" {
		environment = "development"
	}

	if err := sentry.Init(sentry.ClientOptions{
		Dsn:         dsn,
		Environment: environment,
	}); err != nil {
		return &Reporter{}, err
	}
	return &Reporter{enabled: true}, nil
}

func (r *Reporter) Enabled() bool {
	return r != nil && r.enabled
}

// CaptureRequestError reports err tagged with the request method and route.
func (r *Reporter) CaptureRequestError(err error, req *http.Request, route string) {
	if !r.Enabled() {
		return
	}
	hub := sentry.CurrentHub().Clone()
	hub.WithScope(func(scope *sentry.Scope) {
		scope.SetRequest(req)
		scope.SetTag("route", route)
		hub.CaptureException(err)
	})
}

// Flush waits up to timeout for queued events to be sent.
func (r *Reporter) Flush(timeout time.Duration) bool {
	if !r.Enabled() {
		return true
	}
	return sentry.Flush(timeout)
}
