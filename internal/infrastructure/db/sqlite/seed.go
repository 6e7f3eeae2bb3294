package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/openshelf/library-system/internal/core/domain"
)

// DefaultAdminDigest is the SHA-256 hex digest of "admin123".
const DefaultAdminDigest = "240be518fabd2724ddb6f04eeb1da5967448d7e831c08c8fa822809f74c720a9"

// SeedAdmin inserts the administrator account unless an admin already exists.
// It reports whether a row was written.
func SeedAdmin(ctx context.Context, db *sql.DB, email, digest string) (bool, error) {
	if digest == "" {
		digest = DefaultAdminDigest
	}

	res, err := db.ExecContext(ctx,
		`INSERT OR IGNORE INTO users (username, email, password, role)
		 SELECT ?, ?, ?, ?
		 WHERE NOT EXISTS (SELECT 1 FROM users WHERE role = ?)`,
		domain.AdminUsername, email, digest, domain.RoleAdmin, domain.RoleAdmin,
	)
	if err != nil {
		return false, fmt.Errorf("seed admin: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("seed admin: %w", err)
	}
	return n > 0, nil
}
