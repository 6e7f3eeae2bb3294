package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/openshelf/library-system/internal/api/metrics"
	"github.com/openshelf/library-system/internal/core/domain"
	"github.com/openshelf/library-system/internal/core/ports"
)

const defaultBookTTL = 30 * time.Second

// BookCache stores books by id as JSON.
// Key format: book:<id>
type BookCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewBookCache wraps client. A non-positive ttl falls back to defaultBookTTL.
func NewBookCache(client *redis.Client, ttl time.Duration) ports.BookCache {
	if ttl <= 0 {
		ttl = defaultBookTTL
	}
	return &BookCache{client: client, ttl: ttl}
}

// Get returns (nil, nil) on a miss.
func (c *BookCache) Get(ctx context.Context, id int64) (*domain.Book, error) {
	raw, err := c.client.Get(ctx, bookKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		metrics.BookCacheTotal.WithLabelValues("miss").Inc()
		return nil, nil
	}
	if err != nil {
		metrics.BookCacheTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("book cache get: %w", err)
	}

	book, err := decodeBook(raw)
	if err != nil {
		metrics.BookCacheTotal.WithLabelValues("error").Inc()
		return nil, err
	}
	metrics.BookCacheTotal.WithLabelValues("hit").Inc()
	return book, nil
}

func (c *BookCache) Set(ctx context.Context, book *domain.Book) error {
	raw, err := json.Marshal(book)
	if err != nil {
		return fmt.Errorf("book cache encode: %w", err)
	}
	return c.client.Set(ctx, bookKey(book.ID), raw, c.ttl).Err()
}

func (c *BookCache) Invalidate(ctx context.Context, id int64) error {
	return c.client.Del(ctx, bookKey(id)).Err()
}

func bookKey(id int64) string {
	return fmt.Sprintf("book:%d", id)
}

func decodeBook(raw []byte) (*domain.Book, error) {
	var book domain.Book
	if err := json.Unmarshal(raw, &book); err != nil {
		return nil, fmt.Errorf("book cache decode: %w", err)
	}
	return &book, nil
}
