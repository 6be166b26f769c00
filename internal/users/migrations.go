package users

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"
)

// UserIndexes holds index creation statements applied on startup
var UserIndexes = []string{
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_users_email ON users (email)`,
}

// CreateTables creates the users table if it does not exist
func CreateTables(ctx context.Context, db *bun.DB) error {
	_, err := db.NewCreateTable().
		Model((*UserSchema)(nil)).
		IfNotExists().
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to create users table: %w", err)
	}

	return nil
}

// CreateIndexes creates the indexes required by the users table
func CreateIndexes(ctx context.Context, db *bun.DB) error {
	for _, indexSQL := range UserIndexes {
		_, err := db.ExecContext(ctx, indexSQL)
		if err != nil {
			return fmt.Errorf("failed to create index with SQL %q: %w", indexSQL, err)
		}
	}

	return nil
}
