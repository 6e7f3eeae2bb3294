package wire

import (
	"bufio"
	"bytes"
	"io"
	"net/http"
	"testing"
)

func TestEncode_Layout(t *testing.T) {
	resp := NewResponse(200).
		AddHeader("Content-Type", ContentTypeJSON).
		AddHeader("Set-Cookie", "a=1").
		AddHeader("Set-Cookie", "b=2")
	resp.Body = []byte(`{"ok":true}`)

	want := "HTTP/1.1 200 OK\r\n" +
		"Content-Type: application/json\r\n" +
		"Set-Cookie: a=1\r\n" +
		"Set-Cookie: b=2\r\n" +
		"\r\n" +
		`{"ok":true}`
	if got := string(resp.Encode()); got != want {
		t.Fatalf("encode mismatch:\n got %q\nwant %q", got, want)
	}
}

func TestEncode_StripsLineBreaksFromHeaders(t *testing.T) {
	resp := NewResponse(200).AddHeader("Set-Cookie", "username=eve\r\nX-Injected: 1; Path=/")

	if bytes.Contains(resp.Encode(), []byte("\r\nX-Injected")) {
		t.Fatalf("header injection survived encoding: %q", resp.Encode())
	}
}

// A standard HTTP client must be able to read every encoded response,
// including repeated Set-Cookie lines and a body delimited by connection close.
func TestEncode_ReadableByNetHTTP(t *testing.T) {
	resp := Message(201, "created").
		AddHeader("Set-Cookie", "username=alice; Path=/; HttpOnly").
		AddHeader("Set-Cookie", "user_id=7; Path=/; HttpOnly")

	parsed, err := http.ReadResponse(bufio.NewReader(bytes.NewReader(resp.Encode())), nil)
	if err != nil {
		t.Fatalf("ReadResponse: %v", err)
	}
	defer parsed.Body.Close()

	if parsed.StatusCode != 201 || parsed.Status != "201 Created" {
		t.Fatalf("unexpected status %q", parsed.Status)
	}
	if ct := parsed.Header.Get("Content-Type"); ct != ContentTypeJSON {
		t.Fatalf("unexpected content type %q", ct)
	}
	cookies := parsed.Header.Values("Set-Cookie")
	if len(cookies) != 2 || cookies[0] != "username=alice; Path=/; HttpOnly" || cookies[1] != "user_id=7; Path=/; HttpOnly" {
		t.Fatalf("unexpected cookies %v", cookies)
	}
	body, err := io.ReadAll(parsed.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	if string(body) != `{"message":"created"}` {
		t.Fatalf("unexpected body %q", body)
	}
}

func TestDecodeEncode_RoundTripThroughClientRequest(t *testing.T) {
	req, err := http.NewRequest(http.MethodGet, "http://localhost/api/book?id=3", nil)
	if err != nil {
		t.Fatalf("NewRequest: %v", err)
	}
	req.Header.Set("X-Request-Id", "abc")
	var raw bytes.Buffer
	if err := req.Write(&raw); err != nil {
		t.Fatalf("write request: %v", err)
	}

	decoded := Decode(raw.Bytes())
	if decoded.Method != MethodGet || decoded.Path != "/api/book" {
		t.Fatalf("unexpected decode: %q %q", decoded.Method, decoded.Path)
	}
	if id, _ := decoded.Query.Get("id"); id != "3" {
		t.Fatalf("unexpected id %q", id)
	}
	if decoded.Header("X-Request-Id") != "abc" || decoded.Header("Host") != "localhost" {
		t.Fatalf("unexpected headers %v", decoded.Headers)
	}
}

func TestErrorEnvelopeAndReason(t *testing.T) {
	resp := Error(415, "nope")
	if resp.Header("Content-Type") != ContentTypeJSON || string(resp.Body) != `{"error":"nope"}` {
		t.Fatalf("unexpected error response %+v", resp)
	}
	if ReasonPhrase(415) != "Unsupported Media Type" || ReasonPhrase(799) != "Unknown" {
		t.Fatalf("unexpected reason phrases")
	}
}

func TestJSON_UnmarshalableValue(t *testing.T) {
	resp := JSON(200, map[string]any{"ch": make(chan int)})
	if resp.Status != 500 {
		t.Fatalf("expected 500, got %d", resp.Status)
	}
}
