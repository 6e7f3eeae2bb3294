package wire

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

const (
	ContentTypeJSON = "application/json"
	ContentTypeHTML = "text/html"
	ContentTypeForm = "application/x-www-form-urlencoded"
)

var reasonPhrases = map[int]string{
	200: "OK",
	201: "Created",
	204: "No Content",
	400: "Bad Request",
	401: "Unauthorized",
	403: "Forbidden",
	404: "Not Found",
	405: "Method Not Allowed",
	409: "Conflict",
	415: "Unsupported Media Type",
	500: "Internal Server Error",
	503: "Service Unavailable",
}

// ReasonPhrase returns the phrase written after the status code.
func ReasonPhrase(status int) string {
	if p, ok := reasonPhrases[status]; ok {
		return p
	}
	return "Unknown"
}

// Header is one response header line. Responses keep headers in a slice so
// that a name may repeat, as Set-Cookie does.
type Header struct {
	Name  string
	Value string
}

// Response is an outgoing response. It is serialized once by Encode.
type Response struct {
	Status  int
	Headers []Header
	Body    []byte
}

func NewResponse(status int) *Response {
	return &Response{Status: status}
}

// AddHeader appends a header line, keeping any earlier line with the same name.
func (r *Response) AddHeader(name, value string) *Response {
	r.Headers = append(r.Headers, Header{Name: name, Value: value})
	return r
}

// Header returns the first value stored under name.
func (r *Response) Header(name string) string {
	for _, h := range r.Headers {
		if h.Name == name {
			return h.Value
		}
	}
	return ""
}

// Encode writes the status line, each header in insertion order, a blank line
// and the raw body. No Content-Length is added; the connection is closed after
// the write so the client reads the body to EOF.
func (r *Response) Encode() []byte {
	var b bytes.Buffer
	b.Grow(64 + len(r.Body))

	b.WriteString("HTTP/1.1 ")
	b.WriteString(strconv.Itoa(r.Status))
	b.WriteByte(' ')
	b.WriteString(ReasonPhrase(r.Status))
	b.WriteString("\r\n")

	for _, h := range r.Headers {
		b.WriteString(stripLineBreaks(h.Name))
		b.WriteString(": ")
		b.WriteString(stripLineBreaks(h.Value))
		b.WriteString("\r\n")
	}
	b.WriteString("\r\n")
	b.Write(r.Body)
	return b.Bytes()
}

var lineBreaks = strings.NewReplacer("\r", "", "\n", "")

// stripLineBreaks keeps a value that echoes user input, such as a cookie, from
// injecting extra header lines.
func stripLineBreaks(s string) string {
	if !strings.ContainsAny(s, "\r\n") {
		return s
	}
	return lineBreaks.Replace(s)
}

// JSON builds a response with a JSON-serialized body. A value that cannot be
// marshalled produces a 500 with the standard error envelope.
func JSON(status int, v any) *Response {
	body, err := json.Marshal(v)
	if err != nil {
		status = 500
		body = []byte(`{"error":"Internal server error"}`)
	}
	return &Response{
		Status:  status,
		Headers: []Header{{Name: "Content-Type", Value: ContentTypeJSON}},
		Body:    body,
	}
}

// Error builds the {"error": message} envelope used for every failure.
func Error(status int, message string) *Response {
	return JSON(status, map[string]string{"error": message})
}

// Message builds the {"message": message} envelope used for plain successes.
func Message(status int, message string) *Response {
	return JSON(status, map[string]string{"message": message})
}

// HTML builds a text/html response around body.
func HTML(status int, body []byte) *Response {
	return &Response{
		Status:  status,
		Headers: []Header{{Name: "Content-Type", Value: ContentTypeHTML}},
		Body:    body,
	}
}
