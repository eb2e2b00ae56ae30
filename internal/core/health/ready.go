// Package health serves liveness and readiness probes.
package health

import (
	"context"
	"encoding/json"
	"net/http"
	"time"
)

// Pinger is any dependency that can answer a cheap round trip.
type Pinger interface {
	Ping(ctx context.Context) error
}

// ReadinessReporter is implemented by background consumers that only become
// ready once they own partitions.
type ReadinessReporter interface {
	Readiness() (ready bool, partitions []int32)
}

func Liveness() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok\n"))
	}
}

// Readiness reports ready when the store answers a ping within timeout and
// the consumer, if any, has partitions assigned.
func Readiness(store Pinger, consumer ReadinessReporter, timeout time.Duration) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		type resp struct {
			Status     string  `json:"status"`
			Store      string  `json:"store"`
			Partitions []int32 `json:"partitions,omitempty"`
		}
		out := resp{Status: "ready", Store: "ok"}
		ready := true

		if store != nil {
			ctx, cancel := context.WithTimeout(r.Context(), timeout)
			err := store.Ping(ctx)
			cancel()
			if err != nil {
				ready = false
				out.Store = err.Error()
			}
		} else {
			out.Store = "disabled"
		}
		if consumer != nil {
			ok, parts := consumer.Readiness()
			if ok {
				out.Partitions = parts
			} else {
				ready = false
			}
		}
		if !ready {
			out.Status = "not_ready"
		}

		w.Header().Set("Content-Type", "application/json")
		if !ready {
			w.WriteHeader(http.StatusServiceUnavailable)
		}
		_ = json.NewEncoder(w).Encode(out)
	}
}
