package router

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/mohammed-shakir/geomcore/internal/core/model"
	"github.com/mohammed-shakir/geomcore/internal/core/observability"
	mylog "github.com/mohammed-shakir/geomcore/internal/logger"
	"github.com/mohammed-shakir/geomcore/internal/polyline"
	"github.com/mohammed-shakir/geomcore/pkg/geomath"
	"github.com/mohammed-shakir/geomcore/pkg/geomfn"
	"github.com/mohammed-shakir/geomcore/pkg/geometry"
	"github.com/mohammed-shakir/geomcore/pkg/wkt"
)

const maxRes = 15

// parse reads text for the named field. A non-nil srid replaces the SRID
// carried by the text.
func (h *Handlers) parse(field, text string, srid *int) (geometry.Geometry, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("%w: %s is required", ErrBadRequest, field)
	}
	g, err := h.parser.Parse(text)
	if err != nil {
		observability.IncWKTParseError("http")
		return nil, fmt.Errorf("%s: %w", field, err)
	}
	if srid != nil {
		g = geometry.WithSRID(g, *srid)
	}
	return g, nil
}

func kindOf(g geometry.Geometry) string {
	if g == nil {
		return ""
	}
	return g.Kind().String()
}

func summarize(g geometry.Geometry) model.Summary {
	s := model.Summary{
		Kind:      g.Kind().String(),
		SRID:      g.Base().SRID,
		Empty:     geomfn.IsEmpty(g),
		NumPoints: geomfn.NumPoints(g),
		Valid:     geomfn.IsValid(g),
		Simple:    geomfn.IsSimple(g),
		Area:      geomfn.Area(g),
		Length:    geomfn.Length(g),
		WKT:       wkt.Marshal(g),
		EWKT:      wkt.MarshalEWKT(g),
	}
	if c, ok := geomfn.Centroid(g); ok {
		s.Centroid = &model.Point{X: c.X, Y: c.Y}
	}
	if b, ok := geomfn.Bounds(g); ok {
		s.Bounds = model.BoundsOf(b)
	}
	return s
}

func (h *Handlers) inspect(ctx context.Context, req model.GeometryRequest) (any, string, error) {
	g, err := h.parse("wkt", req.WKT, req.SRID)
	if err != nil {
		return nil, "", err
	}
	s := summarize(g)
	h.logger.DebugContext(mylog.WithGeometryKind(ctx, s.Kind), "inspected geometry",
		"num_points", s.NumPoints, "valid", s.Valid)
	return s, s.Kind, nil
}

func (h *Handlers) intersects(_ context.Context, req model.PairRequest) (any, string, error) {
	a, err := h.parse("a", req.A, nil)
	if err != nil {
		return nil, "", err
	}
	b, err := h.parse("b", req.B, nil)
	if err != nil {
		return nil, kindOf(a), err
	}
	return struct {
		Intersects bool `json:"intersects"`
	}{geomfn.Intersects(a, b)}, kindOf(a), nil
}

// equals compares structure and coordinates; headers are ignored.
func (h *Handlers) equals(_ context.Context, req model.PairRequest) (any, string, error) {
	if req.Tolerance < 0 {
		return nil, "", fmt.Errorf("%w: tolerance must not be negative", ErrBadRequest)
	}
	a, err := h.parse("a", req.A, nil)
	if err != nil {
		return nil, "", err
	}
	b, err := h.parse("b", req.B, nil)
	if err != nil {
		return nil, kindOf(a), err
	}
	return struct {
		Equals bool `json:"equals"`
	}{geomfn.Equals(a, b, req.Tolerance)}, kindOf(a), nil
}

// distance keeps the MaxFloat64 answer for a missing point or an empty
// geometry rather than failing.
func (h *Handlers) distance(_ context.Context, req model.DistanceRequest) (any, string, error) {
	g, err := h.parse("wkt", req.WKT, nil)
	if err != nil {
		return nil, "", err
	}
	return struct {
		Distance float64 `json:"distance"`
	}{geomfn.Distance(g, req.Point.Coordinate())}, kindOf(g), nil
}

func (h *Handlers) transform(_ context.Context, req model.TransformRequest) (any, string, error) {
	g, err := h.parse("wkt", req.WKT, nil)
	if err != nil {
		return nil, "", err
	}
	out := geomfn.Transform(g, req.Matrix.Geometry())
	for _, c := range geomfn.Coordinates(out) {
		if !c.IsFinite() {
			return nil, kindOf(g), fmt.Errorf("%w: transform produced %s", ErrNonFinite, c)
		}
	}
	resp := struct {
		WKT    string        `json:"wkt"`
		EWKT   string        `json:"ewkt"`
		Bounds *model.Bounds `json:"bounds,omitempty"`
	}{WKT: wkt.Marshal(out), EWKT: wkt.MarshalEWKT(out)}
	if b, ok := geomfn.Bounds(out); ok {
		resp.Bounds = model.BoundsOf(b)
	}
	return resp, kindOf(g), nil
}

func (h *Handlers) within(_ context.Context, req model.PointRequest) (any, string, error) {
	g, err := h.parse("wkt", req.WKT, nil)
	if err != nil {
		return nil, "", err
	}
	if req.Point == nil {
		return nil, kindOf(g), fmt.Errorf("%w: point is required", ErrBadRequest)
	}
	c := req.Point.Coordinate()
	return struct {
		Within  bool `json:"within"`
		Touches bool `json:"touches"`
	}{geomath.IsWithin(g, *c), geomath.Touches(g, *c)}, kindOf(g), nil
}

func (h *Handlers) cells(_ context.Context, req model.CellsRequest) (any, string, error) {
	g, err := h.parse("wkt", req.WKT, nil)
	if err != nil {
		return nil, "", err
	}
	res := h.cfg.H3Res
	if req.Res != nil {
		res = *req.Res
	}
	if res < 0 || res > maxRes {
		return nil, kindOf(g), fmt.Errorf("%w: res must be in [0,%d]", ErrBadRequest, maxRes)
	}
	cells, err := h.cover.CellsForGeometry(g, res)
	if err != nil {
		return nil, kindOf(g), err
	}
	if req.ParentRes != nil {
		pr := *req.ParentRes
		if pr < 0 || pr > res {
			return nil, kindOf(g), fmt.Errorf("%w: parent_res must be in [0,%d]", ErrBadRequest, res)
		}
		if req.ChildRes != nil {
			return nil, kindOf(g), fmt.Errorf("%w: parent_res and child_res are exclusive", ErrBadRequest)
		}
		if cells, err = h.cover.Parents(cells, pr); err != nil {
			return nil, kindOf(g), err
		}
		res = pr
	}
	if req.ChildRes != nil {
		cr := *req.ChildRes
		if cr < res || cr > maxRes {
			return nil, kindOf(g), fmt.Errorf("%w: child_res must be in [%d,%d]", ErrBadRequest, res, maxRes)
		}
		if cells, err = h.cover.Children(cells, cr); err != nil {
			return nil, kindOf(g), err
		}
		res = cr
	}
	return model.CellsResponse{Res: res, Cells: cells}, kindOf(g), nil
}

func (h *Handlers) polylineEncode(_ context.Context, req model.GeometryRequest) (any, string, error) {
	g, err := h.parse("wkt", req.WKT, nil)
	if err != nil {
		return nil, "", err
	}
	enc, err := polyline.Encode(g)
	if err != nil {
		return nil, kindOf(g), err
	}
	return struct {
		Encoded string `json:"encoded"`
	}{enc}, kindOf(g), nil
}

// polylineDecode serves GET ?encoded=...&srid=... and stamps the result
// with the default SRID unless one is given.
func (h *Handlers) polylineDecode(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	ctx := mylog.WithOperation(r.Context(), "polyline_decode")

	out, err := func() (any, error) {
		q := r.URL.Query()
		srid := h.cfg.DefaultSRID
		if s := q.Get("srid"); s != "" {
			v, err := strconv.Atoi(s)
			if err != nil {
				return nil, fmt.Errorf("%w: srid: %v", ErrBadRequest, err)
			}
			srid = v
		}
		l, err := polyline.Decode(q.Get("encoded"), srid)
		if err != nil && !errors.Is(err, polyline.ErrOutOfRange) {
			return nil, fmt.Errorf("%w: %v", ErrBadRequest, err)
		}
		if err != nil {
			return nil, err
		}
		return struct {
			WKT  string `json:"wkt"`
			EWKT string `json:"ewkt"`
		}{wkt.Marshal(l), wkt.MarshalEWKT(l)}, nil
	}()
	observability.ObserveGeometryOp("polyline_decode", geometry.KindLineString.String(), err, time.Since(start).Seconds())
	if err != nil {
		h.writeError(ctx, w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}
