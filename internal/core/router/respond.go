package router

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/mohammed-shakir/geomcore/internal/cache/featurestore"
	"github.com/mohammed-shakir/geomcore/internal/core/observability"
	mylog "github.com/mohammed-shakir/geomcore/internal/logger"
	"github.com/mohammed-shakir/geomcore/internal/mapper"
	"github.com/mohammed-shakir/geomcore/internal/polyline"
	"github.com/mohammed-shakir/geomcore/pkg/wkt"
)

var ErrBadRequest = errors.New("bad request")

// ErrNonFinite is returned when a result has a NaN or infinite coordinate,
// which WKT cannot carry.
var ErrNonFinite = errors.New("result has non-finite coordinates")

type errorBody struct {
	Error     string `json:"error"`
	RequestID string `json:"request_id,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func statusFor(err error) int {
	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, ErrBadRequest),
		errors.Is(err, wkt.ErrMalformed),
		errors.Is(err, featurestore.ErrInvalidLayer),
		errors.Is(err, featurestore.ErrInvalidID):
		return http.StatusBadRequest
	case errors.Is(err, featurestore.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, featurestore.ErrStale):
		return http.StatusConflict
	case errors.Is(err, mapper.ErrTooManyCells),
		errors.Is(err, mapper.ErrNotGeographic),
		errors.Is(err, polyline.ErrUnsupportedKind),
		errors.Is(err, polyline.ErrOutOfRange),
		errors.Is(err, ErrNonFinite):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func (h *Handlers) writeError(ctx context.Context, w http.ResponseWriter, err error) {
	status := statusFor(err)
	msg := err.Error()
	if status >= http.StatusInternalServerError {
		h.logger.ErrorContext(ctx, "request failed", "err", err)
		msg = http.StatusText(status)
	} else {
		h.logger.DebugContext(ctx, "request rejected", "status", status, "err", err)
	}
	writeJSON(w, status, errorBody{Error: msg, RequestID: mylog.RequestID(ctx)})
}

func decodeJSON(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return err
		}
		return fmt.Errorf("%w: decode body: %v", ErrBadRequest, err)
	}
	return nil
}

// serve decodes a JSON body into Req, runs fn and writes its result. fn
// reports the geometry kind it worked on for the operation metrics.
func serve[Req any](h *Handlers, op string, fn func(context.Context, Req) (any, string, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ctx := mylog.WithOperation(r.Context(), op)

		var req Req
		if err := decodeJSON(r, &req); err != nil {
			observability.ObserveGeometryOp(op, "", err, time.Since(start).Seconds())
			h.writeError(ctx, w, err)
			return
		}
		out, kind, err := fn(ctx, req)
		observability.ObserveGeometryOp(op, kind, err, time.Since(start).Seconds())
		if err != nil {
			h.writeError(ctx, w, err)
			return
		}
		writeJSON(w, http.StatusOK, out)
	}
}
