package app

import (
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/openshelf/library-system/internal/infrastructure/db/sqlite"
	"github.com/openshelf/library-system/internal/pkg/config"
)

type testApp struct {
	base   string
	ops    string
	client *http.Client
}

func startApp(t *testing.T) *testApp {
	t.Helper()
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, "templates"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(root, "templates", "login.html"), []byte("<form></form>"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	cfg := &config.Config{
		StaticRoot:   filepath.Join(root, "static"),
		TemplateRoot: filepath.Join(root, "templates"),
		AuditWorkers: 1,
		Server:       config.ServerConfig{ReadBufferSize: 4096},
		DB:           config.DBConfig{Path: filepath.Join(root, "db", "library.db"), PoolSize: 5},
		Admin:        config.AdminConfig{Email: "admin@example.com", PasswordDigest: sqlite.DefaultAdminDigest},
	}

	a, err := New(context.Background(), cfg, zerolog.Nop(), WithRegisterer(prometheus.NewRegistry()))
	if err != nil {
		t.Fatalf("new app: %v", err)
	}

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	opsLn, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.Serve(ctx, ln, opsLn) }()
	t.Cleanup(func() {
		cancel()
		select {
		case err := <-done:
			if err != nil {
				t.Errorf("serve: %v", err)
			}
		case <-time.After(5 * time.Second):
			t.Errorf("app did not stop")
		}
	})

	return &testApp{
		base:   "http://" + ln.Addr().String(),
		ops:    "http://" + opsLn.Addr().String(),
		client: &http.Client{Transport: &http.Transport{DisableKeepAlives: true}, Timeout: 5 * time.Second},
	}
}

func (a *testApp) do(t *testing.T, method, path, contentType, body string) (int, []byte, *http.Response) {
	t.Helper()
	req, err := http.NewRequest(method, a.base+path, strings.NewReader(body))
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	resp, err := a.client.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()
	out, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, out, resp
}

func (a *testApp) json(t *testing.T, method, path, body string) (int, map[string]any) {
	t.Helper()
	status, raw, _ := a.do(t, method, path, "application/json", body)
	var out map[string]any
	if err := json.Unmarshal(raw, &out); err != nil {
		t.Fatalf("%s %s: invalid json %q", method, path, raw)
	}
	return status, out
}

func TestApp_RegisterThenLogin(t *testing.T) {
	a := startApp(t)

	status, body := a.json(t, "POST", "/api/auth/register", `{"username":"alice","email":"alice@example.com","password":"s3cret"}`)
	if status != 200 || body["status"] != "registered" || body["role"] != "lender" {
		t.Fatalf("register: %d %v", status, body)
	}

	status, body = a.json(t, "POST", "/api/auth/register", `{"username":"mallory","email":"m@example.com","password":"x","role":"admin"}`)
	if status != 403 || body["error"] != "Only lenders can register via this endpoint" {
		t.Fatalf("admin registration: %d %v", status, body)
	}

	status, raw, resp := a.do(t, "POST", "/api/auth/login", "application/json", `{"username":"alice","password":"s3cret","role":"lender"}`)
	if status != 200 {
		t.Fatalf("login: %d %s", status, raw)
	}
	if cookies := resp.Header.Values("Set-Cookie"); len(cookies) != 2 || cookies[0] != "username=alice; Path=/; HttpOnly" {
		t.Fatalf("unexpected cookies %v", cookies)
	}

	status, body = a.json(t, "POST", "/api/auth/login", `{"username":"alice","password":"wrong","role":"lender"}`)
	if status != 401 || body["error"] != "Invalid credentials" {
		t.Fatalf("bad password: %d %v", status, body)
	}
	status, body = a.json(t, "POST", "/api/auth/login", `{"username":"alice","password":"s3cret","role":"admin"}`)
	if status != 403 || body["error"] != "Role mismatch" {
		t.Fatalf("role mismatch: %d %v", status, body)
	}
	status, body = a.json(t, "POST", "/api/auth/login", `{"username":"nobody","password":"x","role":"lender"}`)
	if status != 404 || body["error"] != "User not found" {
		t.Fatalf("unknown user: %d %v", status, body)
	}

	form := url.Values{"username": {"admin"}, "password": {"admin123"}, "role": {"admin"}}.Encode()
	status, raw, _ = a.do(t, "POST", "/api/auth/login", "application/x-www-form-urlencoded", form)
	if status != 200 || !strings.Contains(string(raw), `"role":"admin"`) {
		t.Fatalf("admin form login: %d %s", status, raw)
	}
}

func TestApp_BorrowAndReturn(t *testing.T) {
	a := startApp(t)

	a.json(t, "POST", "/api/auth/register", `{"username":"bob","email":"bob@example.com","password":"pw"}`)
	status, body := a.json(t, "POST", "/api/book", `{"title":"Dune","author":"Frank Herbert","isbn":"9780441013593","publication_year":1965,"genre":"sf"}`)
	if status != 200 || body["status"] != "book added" {
		t.Fatalf("add book: %d %v", status, body)
	}

	status, body = a.json(t, "GET", "/api/book?id=1", "")
	if status != 200 || body["copies_available"] != float64(1) || body["status"] != "available" {
		t.Fatalf("get book: %d %v", status, body)
	}

	status, body = a.json(t, "POST", "/api/borrow", `{"user_id":2,"book_id":1}`)
	if status != 200 || body["status"] != "borrowed" {
		t.Fatalf("borrow: %d %v", status, body)
	}
	_, body = a.json(t, "GET", "/api/book?id=1", "")
	if body["copies_available"] != float64(0) {
		t.Fatalf("expected 0 copies after borrow, got %v", body["copies_available"])
	}

	status, body = a.json(t, "POST", "/api/borrow", `{"user_id":2,"book_id":1}`)
	if status != 400 || body["error"] != "No copies available" {
		t.Fatalf("second borrow: %d %v", status, body)
	}

	_, raw, _ := a.do(t, "GET", "/api/borrow?user_id=2", "", "")
	var loans []struct {
		ID         int64  `json:"id"`
		BorrowDate string `json:"borrow_date"`
		DueDate    string `json:"due_date"`
	}
	if err := json.Unmarshal(raw, &loans); err != nil || len(loans) != 1 {
		t.Fatalf("active loans: %s %v", raw, err)
	}
	borrowed, _ := time.Parse(time.RFC3339, loans[0].BorrowDate)
	due, _ := time.Parse(time.RFC3339, loans[0].DueDate)
	if due.Sub(borrowed) != 14*24*time.Hour {
		t.Fatalf("expected a 14 day loan, got %v", due.Sub(borrowed))
	}

	status, body = a.json(t, "PUT", "/api/borrow", `{"record_id":1}`)
	if status != 200 || body["status"] != "returned" {
		t.Fatalf("return: %d %v", status, body)
	}
	status, body = a.json(t, "PUT", "/api/borrow", `{"record_id":1}`)
	if status != 404 || body["error"] != "Borrow record not found or already returned" {
		t.Fatalf("double return: %d %v", status, body)
	}
	_, body = a.json(t, "GET", "/api/book?id=1", "")
	if body["copies_available"] != float64(1) {
		t.Fatalf("expected 1 copy after return, got %v", body["copies_available"])
	}

	status, _ = a.json(t, "POST", "/api/borrow", `{"user_id":999,"book_id":1}`)
	if status != 500 {
		t.Fatalf("borrow for unknown user: expected 500, got %d", status)
	}
	_, body = a.json(t, "GET", "/api/book?id=1", "")
	if body["copies_available"] != float64(1) {
		t.Fatalf("failed borrow changed copies_available to %v", body["copies_available"])
	}

	status, body = a.json(t, "GET", "/api/book?id=999", "")
	if status != 404 || body["error"] != "Book not found" {
		t.Fatalf("missing book: %d %v", status, body)
	}

	_, raw, _ = a.do(t, "GET", "/api/admin/borrowed", "", "")
	if string(raw) != "[]" {
		t.Fatalf("expected no open loans, got %s", raw)
	}
}

func TestApp_StaticAndOps(t *testing.T) {
	a := startApp(t)

	status, raw, resp := a.do(t, "GET", "/", "", "")
	if status != 200 || string(raw) != "<form></form>" || resp.Header.Get("Content-Type") != "text/html" {
		t.Fatalf("index: %d %q", status, raw)
	}
	status, raw, _ = a.do(t, "GET", "/api/nothing", "", "")
	if status != 404 || string(raw) != `{"error":"Not found"}` {
		t.Fatalf("unknown route: %d %s", status, raw)
	}

	resp, err := a.client.Get(a.ops + "/health/ready")
	if err != nil {
		t.Fatalf("ready: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != 200 {
		t.Fatalf("expected ready, got %d", resp.StatusCode)
	}
}
