package ports

import (
	"context"

	"github.com/openshelf/library-system/internal/core/domain"
)

// LedgerRepository persists circulation audit events.
type LedgerRepository interface {
	Insert(ctx context.Context, event *domain.LedgerEvent) error
}

// LedgerPublisher hands audit events off for asynchronous persistence.
// Publish must not block the request path.
type LedgerPublisher interface {
	Publish(event domain.LedgerEvent)
}
