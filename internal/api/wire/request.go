// Package wire is the byte-level HTTP codec for the public listener.
//
// Decode never fails: a request line with fewer than two tokens yields an
// empty method and path, which no route matches. Only handlers that need a
// JSON body reject malformed input, via DecodeJSON.
package wire

import (
	"bytes"
	"strings"
)

const (
	MethodGet    = "GET"
	MethodPost   = "POST"
	MethodPut    = "PUT"
	MethodDelete = "DELETE"
)

// Param is one key/value pair of a query string, kept exactly as sent.
type Param struct {
	Key   string
	Value string
}

// Query holds query parameters in request order, duplicates included.
type Query []Param

// Get returns the value of the first parameter whose key equals key. Keys are
// compared literally; neither side is percent-decoded.
func (q Query) Get(key string) (string, bool) {
	for _, p := range q {
		if p.Key == key {
			return p.Value, true
		}
	}
	return "", false
}

// Request is a decoded request. It is not modified after Decode returns.
type Request struct {
	Method   string
	Path     string
	RawQuery string
	Query    Query
	// Headers maps the header name as sent to its value. A repeated header
	// keeps the last value.
	Headers map[string]string
	Body    []byte
}

// Header returns the value for name, matched case-sensitively.
func (r *Request) Header(name string) string {
	return r.Headers[name]
}

// Decode parses one request from the bytes of a single socket read. The body
// is whatever followed the blank line in buf; Content-Length is not consulted.
func Decode(buf []byte) *Request {
	head, body := splitHead(buf)

	req := &Request{Headers: make(map[string]string)}
	if len(body) > 0 {
		req.Body = append([]byte(nil), body...)
	}

	lines := strings.Split(string(head), "\n")
	for i := range lines {
		lines[i] = strings.TrimSuffix(lines[i], "\r")
	}

	if fields := strings.Fields(lines[0]); len(fields) >= 2 {
		req.Method = fields[0]
		req.Path, req.RawQuery, _ = strings.Cut(fields[1], "?")
		req.Query = ParseQuery(req.RawQuery)
	}

	for _, line := range lines[1:] {
		name, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		req.Headers[strings.TrimSpace(name)] = strings.TrimSpace(value)
	}

	return req
}

// ParseQuery splits raw on '&' and each pair on its first '='. Values are not
// percent-decoded. Empty pairs are skipped.
func ParseQuery(raw string) Query {
	if raw == "" {
		return nil
	}
	var q Query
	for _, pair := range strings.Split(raw, "&") {
		if pair == "" {
			continue
		}
		key, value, _ := strings.Cut(pair, "=")
		q = append(q, Param{Key: key, Value: value})
	}
	return q
}

var (
	crlfBlank = []byte("\r\n\r\n")
	lfBlank   = []byte("\n\n")
)

// splitHead separates the request head from the body at the first empty line.
// Without an empty line the whole buffer is head.
func splitHead(buf []byte) (head, body []byte) {
	cut, width := bytes.Index(buf, crlfBlank), len(crlfBlank)
	if lf := bytes.Index(buf, lfBlank); lf >= 0 && (cut < 0 || lf < cut) {
		cut, width = lf, len(lfBlank)
	}
	if cut < 0 {
		return buf, nil
	}
	return buf[:cut], buf[cut+width:]
}
