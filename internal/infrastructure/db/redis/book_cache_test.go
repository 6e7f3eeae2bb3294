package redis

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/openshelf/library-system/internal/core/domain"
)

func TestBookKey(t *testing.T) {
	if got := bookKey(42); got != "book:42" {
		t.Fatalf("unexpected key %q", got)
	}
}

func TestDecodeBook(t *testing.T) {
	want := domain.Book{ID: 7, Title: "Dune", ISBN: "111", CopiesAvailable: 2, Status: domain.BookStatusAvailable}
	raw, _ := json.Marshal(want)

	got, err := decodeBook(raw)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if *got != want {
		t.Fatalf("got %+v, want %+v", *got, want)
	}

	if _, err := decodeBook([]byte("{")); err == nil {
		t.Fatalf("expected an error for a corrupt entry")
	}
}

func TestNewBookCache_DefaultTTL(t *testing.T) {
	c := NewBookCache(nil, 0).(*BookCache)
	if c.ttl != 30*time.Second {
		t.Fatalf("expected a 30s default ttl, got %v", c.ttl)
	}
	if c := NewBookCache(nil, time.Minute).(*BookCache); c.ttl != time.Minute {
		t.Fatalf("expected the configured ttl, got %v", c.ttl)
	}
}
