package database

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// MaxBindParams is the PostgreSQL limit on bind parameters in one statement.
const MaxBindParams = 65535

// ChunkRows returns how many rows of a multi-row INSERT with the given number of
// columns fit into one statement.
func ChunkRows(columns int) int {
	if columns <= 0 {
		return MaxBindParams
	}
	return max(MaxBindParams/columns, 1)
}

// NamedExecChunked runs a multi-row named INSERT over rows, at most chunkRows rows per
// statement, inside one transaction. Either every row is stored or none is.
func NamedExecChunked[T any](ctx context.Context, db *sqlx.DB, query string, rows []T, chunkRows int) (err error) {
	if len(rows) == 0 {
		return nil
	}
	if chunkRows <= 0 {
		chunkRows = len(rows)
	}
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()
	for start := 0; start < len(rows); start += chunkRows {
		end := min(start+chunkRows, len(rows))
		if _, err = tx.NamedExecContext(ctx, query, rows[start:end]); err != nil {
			return err
		}
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}
