package postgres

import (
	"context"
	"fmt"
	"hash/fnv"
	"time"

	"github.com/jmoiron/sqlx"

	"stockcast/domain/core"
)

// nextBusinessNumber assigns the date-scoped business number for a new row:
// <PREFIX><YYYYMMDD><4-digit-seq>, where seq is the count of same-day rows
// plus one. Concurrent writers serialize on a per-table-per-day advisory
// lock held until the surrounding transaction commits, so each count runs
// after the previous number's insert is committed and the UNIQUE constraint
// on the number column never fires under parallel creates.
func nextBusinessNumber(ctx context.Context, tx *sqlx.Tx, table, column, prefix string, day time.Time) (string, error) {
	scope := prefix + day.Format("20060102")

	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, sequenceLockKey(table, scope)); err != nil {
		return "", fmt.Errorf("failed to lock %s number scope: %w", table, err)
	}

	var count int
	query := fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE %s LIKE $1`, table, column)
	if err := tx.GetContext(ctx, &count, query, scope+"%"); err != nil {
		return "", fmt.Errorf("failed to count %s numbers: %w", table, err)
	}

	return core.FormatBusinessNumber(prefix, day, count+1), nil
}

// sequenceLockKey derives the stable 64-bit advisory lock key for one
// table's daily numbering scope.
func sequenceLockKey(table, scope string) int64 {
	h := fnv.New64a()
	h.Write([]byte(table))
	h.Write([]byte{0})
	h.Write([]byte(scope))
	return int64(h.Sum64())
}
