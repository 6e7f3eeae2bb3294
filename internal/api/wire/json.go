package wire

import (
	"encoding/json"
	"errors"
	"io"
	"strings"
)

// Sanitize trims raw and returns the first balanced {...} object in it, which
// drops trailing bytes some clients leave after the body. Braces inside JSON
// strings do not count toward depth. When no balanced object is found the
// trimmed input is returned unchanged and the parser reports the error.
func Sanitize(raw string) string {
	body := strings.TrimSpace(raw)
	start := strings.IndexByte(body, '{')
	if start < 0 {
		return body
	}

	depth := 0
	inString, escaped := false, false
	for i := start; i < len(body); i++ {
		c := body[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return body[start : i+1]
			}
		}
	}
	return body
}

var errTrailingData = errors.New("unexpected data after JSON object")

// Fields is a decoded JSON object read through loosely typed accessors. A field
// of the wrong type reads as absent.
type Fields map[string]any

// DecodeJSON sanitizes body and decodes it as a single JSON object. A literal
// null decodes to an empty Fields.
func DecodeJSON(body []byte) (Fields, error) {
	dec := json.NewDecoder(strings.NewReader(Sanitize(string(body))))
	dec.UseNumber()

	var f map[string]any
	if err := dec.Decode(&f); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, errTrailingData
	}
	if f == nil {
		f = map[string]any{}
	}
	return Fields(f), nil
}

// Has reports whether key is present with a non-null value.
func (f Fields) Has(key string) bool {
	v, ok := f[key]
	return ok && v != nil
}

// String returns the string stored at key, or "" when absent or not a string.
func (f Fields) String(key string) string {
	return f.StringOr(key, "")
}

// StringOr returns the string stored at key, or def when absent or not a string.
func (f Fields) StringOr(key, def string) string {
	if s, ok := f[key].(string); ok {
		return s
	}
	return def
}

// Int returns the integer stored at key. Fractional numbers, strings and other
// types report false.
func (f Fields) Int(key string) (int64, bool) {
	n, ok := f[key].(json.Number)
	if !ok {
		return 0, false
	}
	v, err := n.Int64()
	if err != nil {
		return 0, false
	}
	return v, true
}

// IntOr returns the integer stored at key, or def.
func (f Fields) IntOr(key string, def int64) int64 {
	if v, ok := f.Int(key); ok {
		return v
	}
	return def
}
