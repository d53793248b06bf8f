// internal/adapters/out/db/sqlutil.go
package db

import (
	"errors"

	"github.com/lib/pq"
)

// IsUniqueViolation は PostgreSQL 一意制約違反（duplicate key）を検知します。
func IsUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}
