// Package wkt converts geometries to and from Well-Known Text and its
// SRID-prefixed EWKT form.
package wkt

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/mohammed-shakir/geomcore/pkg/geometry"
)

const sridPrefix = "SRID="

// Unmarshal parses WKT or EWKT text. An EWKT SRID prefix is stamped on
// every node of the result; without one the SRID is 0. Parsed geometries
// carry geometry.UnspecifiedPrecision.
func Unmarshal(text string) (geometry.Geometry, error) {
	h := geometry.Header{Precision: geometry.UnspecifiedPrecision}
	offset := 0
	if len(text) >= len(sridPrefix) && strings.EqualFold(text[:len(sridPrefix)], sridPrefix) {
		semi := strings.IndexByte(text, ';')
		if semi < 0 {
			return nil, &ParseError{Input: text, Pos: len(text), Problem: "missing ';' after SRID"}
		}
		srid, err := strconv.Atoi(text[len(sridPrefix):semi])
		if err != nil {
			return nil, &ParseError{Input: text, Pos: len(sridPrefix), Problem: "invalid SRID " + strconv.Quote(text[len(sridPrefix):semi])}
		}
		h.SRID = srid
		offset = semi + 1
	}

	p := &parser{lex: lexer{line: text, pos: offset}, header: h}
	if err := p.advance(); err != nil {
		return nil, err
	}
	g, err := p.geometry()
	if err != nil {
		return nil, err
	}
	if p.tok.kind != tokEOF {
		return nil, p.errorf("unexpected %s after geometry", p.tok.kind)
	}
	return g, nil
}

type parser struct {
	lex    lexer
	tok    token
	header geometry.Header
}

func (p *parser) advance() error {
	tok, err := p.lex.lex()
	if err != nil {
		return err
	}
	p.tok = tok
	return nil
}

func (p *parser) errorf(format string, args ...any) *ParseError {
	return &ParseError{Input: p.lex.line, Pos: p.tok.pos, Problem: fmt.Sprintf(format, args...)}
}

func (p *parser) expect(k tokenKind) error {
	if p.tok.kind != k {
		return p.errorf("expected %s, found %s", k, p.describe())
	}
	return p.advance()
}

func (p *parser) describe() string {
	if p.tok.text == "" {
		return p.tok.kind.String()
	}
	return strconv.Quote(p.tok.text)
}

func (p *parser) atEmpty() bool {
	return p.tok.kind == tokWord && p.tok.text == "EMPTY"
}

func (p *parser) geometry() (geometry.Geometry, error) {
	if p.tok.kind != tokWord {
		return nil, p.errorf("expected geometry keyword, found %s", p.describe())
	}
	keyword, pos := p.tok.text, p.tok.pos
	if err := p.advance(); err != nil {
		return nil, err
	}
	switch keyword {
	case "POINT":
		// POINT(x y) is accepted without the space the formatter emits.
		if p.tok.gap > 1 {
			return nil, p.errorf("expected at most one space after POINT")
		}
		return p.point()
	case "LINESTRING":
		if err := p.keywordGap(keyword); err != nil {
			return nil, err
		}
		cs, err := p.lineBody()
		if err != nil {
			return nil, err
		}
		return geometry.LineString{Header: p.header, Coordinates: cs}, nil
	case "LINEARRING":
		if err := p.keywordGap(keyword); err != nil {
			return nil, err
		}
		cs, err := p.lineBody()
		if err != nil {
			return nil, err
		}
		return geometry.LinearRing{Header: p.header, Coordinates: cs}, nil
	case "POLYGON":
		if err := p.keywordGap(keyword); err != nil {
			return nil, err
		}
		return p.polygon()
	case "MULTIPOINT":
		if err := p.keywordGap(keyword); err != nil {
			return nil, err
		}
		return p.multiPoint()
	case "MULTILINESTRING":
		if err := p.keywordGap(keyword); err != nil {
			return nil, err
		}
		return p.multiLineString()
	case "MULTIPOLYGON":
		if err := p.keywordGap(keyword); err != nil {
			return nil, err
		}
		return p.multiPolygon()
	default:
		return nil, &ParseError{Input: p.lex.line, Pos: pos, Problem: "unknown geometry keyword " + strconv.Quote(keyword)}
	}
}

// keywordGap requires exactly one space between a keyword and its body.
func (p *parser) keywordGap(keyword string) error {
	if p.tok.gap != 1 {
		return p.errorf("expected one space after %s", keyword)
	}
	return nil
}

func (p *parser) coord() (geometry.Coordinate, error) {
	if p.tok.kind != tokNumber {
		return geometry.Coordinate{}, p.errorf("expected number, found %s", p.describe())
	}
	x := p.tok.num
	if err := p.advance(); err != nil {
		return geometry.Coordinate{}, err
	}
	if p.tok.kind != tokNumber {
		return geometry.Coordinate{}, p.errorf("expected number, found %s", p.describe())
	}
	y := p.tok.num
	if err := p.advance(); err != nil {
		return geometry.Coordinate{}, err
	}
	return geometry.Coordinate{X: x, Y: y}, nil
}

// coordList parses '(' coord (',' coord)* ')' with at least minCount coordinates.
func (p *parser) coordList(minCount int) ([]geometry.Coordinate, error) {
	if err := p.expect(tokLParen); err != nil {
		return nil, err
	}
	var cs []geometry.Coordinate
	for {
		c, err := p.coord()
		if err != nil {
			return nil, err
		}
		cs = append(cs, c)
		if p.tok.kind == tokComma {
			if err := p.advance(); err != nil {
				return nil, err
			}
			continue
		}
		if p.tok.kind != tokRParen {
			return nil, p.errorf("expected ',' or ')', found %s", p.describe())
		}
		if len(cs) < minCount {
			return nil, p.errorf("expected at least %d coordinates, found %d", minCount, len(cs))
		}
		return cs, p.advance()
	}
}

// members parses '(' (item | 'EMPTY') (',' (item | 'EMPTY'))* ')'. The
// caller has already handled a top-level EMPTY.
func (p *parser) members(item func(empty bool) error) error {
	if err := p.expect(tokLParen); err != nil {
		return err
	}
	for {
		if p.atEmpty() {
			if err := p.advance(); err != nil {
				return err
			}
			if err := item(true); err != nil {
				return err
			}
		} else if err := item(false); err != nil {
			return err
		}
		switch p.tok.kind {
		case tokComma:
			if err := p.advance(); err != nil {
				return err
			}
		case tokRParen:
			return p.advance()
		default:
			return p.errorf("expected ',' or ')', found %s", p.describe())
		}
	}
}

func (p *parser) point() (geometry.Geometry, error) {
	cs, err := p.pointBody()
	if err != nil {
		return nil, err
	}
	return geometry.Point{Header: p.header, Coordinates: cs}, nil
}

func (p *parser) pointBody() ([]geometry.Coordinate, error) {
	if p.atEmpty() {
		return nil, p.advance()
	}
	if err := p.expect(tokLParen); err != nil {
		return nil, err
	}
	c, err := p.coord()
	if err != nil {
		return nil, err
	}
	if p.tok.kind == tokComma {
		return nil, p.errorf("point must have exactly one coordinate")
	}
	if err := p.expect(tokRParen); err != nil {
		return nil, err
	}
	return []geometry.Coordinate{c}, nil
}

func (p *parser) lineBody() ([]geometry.Coordinate, error) {
	if p.atEmpty() {
		return nil, p.advance()
	}
	return p.coordList(1)
}

func (p *parser) polygonBody() ([]geometry.LinearRing, error) {
	if p.atEmpty() {
		return nil, p.advance()
	}
	var rings []geometry.LinearRing
	err := p.members(func(empty bool) error {
		r := geometry.LinearRing{Header: p.header}
		if !empty {
			cs, err := p.coordList(2)
			if err != nil {
				return err
			}
			r.Coordinates = cs
		}
		rings = append(rings, r)
		return nil
	})
	return rings, err
}

func (p *parser) polygon() (geometry.Geometry, error) {
	rings, err := p.polygonBody()
	if err != nil {
		return nil, err
	}
	return geometry.Polygon{Header: p.header, Rings: rings}, nil
}

func (p *parser) multiPoint() (geometry.Geometry, error) {
	mp := geometry.MultiPoint{Header: p.header}
	if p.atEmpty() {
		return mp, p.advance()
	}
	err := p.members(func(empty bool) error {
		pt := geometry.Point{Header: p.header}
		if !empty {
			if err := p.expect(tokLParen); err != nil {
				return err
			}
			c, err := p.coord()
			if err != nil {
				return err
			}
			if err := p.expect(tokRParen); err != nil {
				return err
			}
			pt.Coordinates = []geometry.Coordinate{c}
		}
		mp.Points = append(mp.Points, pt)
		return nil
	})
	return mp, err
}

func (p *parser) multiLineString() (geometry.Geometry, error) {
	ml := geometry.MultiLineString{Header: p.header}
	if p.atEmpty() {
		return ml, p.advance()
	}
	err := p.members(func(empty bool) error {
		l := geometry.LineString{Header: p.header}
		if !empty {
			cs, err := p.coordList(1)
			if err != nil {
				return err
			}
			l.Coordinates = cs
		}
		ml.LineStrings = append(ml.LineStrings, l)
		return nil
	})
	return ml, err
}

func (p *parser) multiPolygon() (geometry.Geometry, error) {
	mp := geometry.MultiPolygon{Header: p.header}
	if p.atEmpty() {
		return mp, p.advance()
	}
	err := p.members(func(empty bool) error {
		poly := geometry.Polygon{Header: p.header}
		if !empty {
			rings, err := p.polygonBody()
			if err != nil {
				return err
			}
			poly.Rings = rings
		}
		mp.Polygons = append(mp.Polygons, poly)
		return nil
	})
	return mp, err
}
