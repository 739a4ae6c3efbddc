package mid

import (
	"context"
	"expvar"
	"net/http"
	"runtime"

	"github.com/karmacoin/node/foundation/web"
)

// m contains the single instance of the metrics the service publishes on
// the debug endpoint.
var m = struct {
	goroutines *expvar.Int
	requests   *expvar.Int
	errors     *expvar.Int
}{
	goroutines: expvar.NewInt("goroutines"),
	requests:   expvar.NewInt("requests"),
	errors:     expvar.NewInt("errors"),
}

// Metrics updates program counters.
func Metrics() web.Middleware {

	// This is the actual middleware function to be executed.
	mw := func(handler web.Handler) web.Handler {

		// Create the handler that will be attached in the middleware chain.
		h := func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
			err := handler(ctx, w, r)

			m.requests.Add(1)
			if m.requests.Value()%100 == 0 {
				m.goroutines.Set(int64(runtime.NumGoroutine()))
			}
			if err != nil {
				m.errors.Add(1)
			}

			return err
		}

		return h
	}

	return mw
}
