package domain

import "time"

// LedgerAction is the kind of circulation event recorded in the audit trail.
type LedgerAction string

const (
	ActionBorrow LedgerAction = "borrow"
	ActionReturn LedgerAction = "return"
)

// LedgerEvent is an audit entry emitted after a borrow or return completes.
type LedgerEvent struct {
	Action     LedgerAction
	RecordID   int64
	UserID     int64
	BookID     int64
	OccurredAt time.Time
}
