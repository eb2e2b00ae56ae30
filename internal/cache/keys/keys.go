// Package keys builds the Redis key layout shared by the feature store and
// its cell index.
//
//	feat:<layer>:<id>          feature record
//	cell:<layer>:<res>:<cell>  set of feature ids touching an H3 cell
//	ids:<layer>                set of every feature id in the layer
//	wide:<layer>               ids of features too large or not geographic to index
package keys

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/cespare/xxhash/v2"
)

const maxIDLen = 200

func FeatureKey(layer, id string) string {
	return "feat:" + sanitizeLayer(strings.TrimSpace(layer)) + ":" + featureID(id)
}

func CellKey(layer string, res int, cell string) string {
	return fmt.Sprintf("cell:%s:%d:%s", sanitizeLayer(strings.TrimSpace(layer)), res, cell)
}

func LayerIDsKey(layer string) string {
	return "ids:" + sanitizeLayer(strings.TrimSpace(layer))
}

func WideKey(layer string) string {
	return "wide:" + sanitizeLayer(strings.TrimSpace(layer))
}

// TextHash fingerprints raw geometry text for the parse cache. The text is
// not normalized: whitespace is significant to the WKT grammar.
func TextHash(text string) uint64 {
	return xxhash.Sum64String(text)
}

// featureID keeps ids readable in keys; overly long or unsafe ids are
// replaced by a sanitized prefix plus their hash.
func featureID(id string) string {
	id = strings.TrimSpace(id)
	safe := sanitizeForKey(id)
	if safe == id && len(id) <= maxIDLen {
		return id
	}
	if len(safe) > maxIDLen/2 {
		safe = safe[:maxIDLen/2]
	}
	return fmt.Sprintf("%s~%016x", safe, xxhash.Sum64String(id))
}

func sanitizeForKey(s string) string {
	if s == "" {
		return ""
	}
	var b strings.Builder
	b.Grow(len(s))

	var prev rune
	for _, r := range s {
		out := rune(0)
		switch {
		case isASCIIWhitespace(r):
			out = '_'
		case isAlphaNum(r) || r == '.' || r == '_' || r == '-':
			out = r
		default:
			// Any other rune (including non-ASCII and ':') becomes '-'
			out = '-'
		}
		if (out == '_' || out == '-') && out == prev {
			continue
		}
		b.WriteRune(out)
		prev = out
	}
	return b.String()
}

// ValidLayer reports whether a layer name survives sanitization unchanged.
func ValidLayer(s string) bool {
	return s != "" && sanitizeLayer(s) == s
}

func sanitizeLayer(s string) string {
	if s == "" {
		return ""
	}
	var b strings.Builder
	b.Grow(len(s))
	var prev rune
	for _, r := range s {
		out := rune(0)
		switch {
		case isASCIIWhitespace(r):
			out = '_'
		case isAlphaNum(r) || r == '_' || r == '-' || r == '.':
			out = r
		default:
			out = '-'
		}
		if (out == '_' || out == '-') && out == prev {
			continue
		}
		b.WriteRune(out)
		prev = out
	}
	return b.String()
}

func isASCIIWhitespace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\n' || r == '\r' || r == '\v' || r == '\f'
}

func isAlphaNum(r rune) bool {
	return (r >= 'a' && r <= 'z') ||
		(r >= 'A' && r <= 'Z') ||
		(r < unicode.MaxASCII && unicode.IsDigit(r))
}
