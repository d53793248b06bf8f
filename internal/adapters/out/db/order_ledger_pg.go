// internal/adapters/out/db/order_ledger_pg.go
package db

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"
	"github.com/sirupsen/logrus"

	orderdom "storefront/internal/domain/order"
	"storefront/internal/infra/logging"
)

// OrderLedgerPG mirrors every order write into Postgres for reporting.
// One row per (order, status); re-recording the same pair is a no-op.
type OrderLedgerPG struct {
	DB  *sql.DB
	log *logrus.Entry
}

var _ orderdom.Ledger = (*OrderLedgerPG)(nil)

func NewOrderLedgerPG(db *sql.DB) *OrderLedgerPG {
	return &OrderLedgerPG{DB: db, log: logging.For("order_ledger_pg")}
}

const ledgerSchema = `
CREATE TABLE IF NOT EXISTS order_events (
  id          BIGSERIAL PRIMARY KEY,
  order_id    TEXT          NOT NULL,
  user_id     TEXT          NOT NULL,
  status      TEXT          NOT NULL,
  total       NUMERIC(12,2) NOT NULL,
  product_ids TEXT[]        NOT NULL DEFAULT '{}',
  recorded_at TIMESTAMPTZ   NOT NULL,
  UNIQUE (order_id, status)
)`

// EnsureSchema creates the ledger table when missing.
func (r *OrderLedgerPG) EnsureSchema(ctx context.Context) error {
	if _, err := r.DB.ExecContext(ctx, ledgerSchema); err != nil {
		return fmt.Errorf("order ledger schema: %w", err)
	}
	return nil
}

func (r *OrderLedgerPG) Record(ctx context.Context, o orderdom.Order) error {
	const q = `
INSERT INTO order_events (order_id, user_id, status, total, product_ids, recorded_at)
VALUES ($1, $2, $3, $4, $5, $6)`

	productIDs := make([]string, 0, len(o.Items))
	for _, it := range o.Items {
		productIDs = append(productIDs, it.ProductID)
	}

	_, err := r.DB.ExecContext(ctx, q,
		o.ID,
		o.UserID,
		string(o.Status),
		o.Total.StringFixed(2),
		pq.Array(productIDs),
		o.UpdatedAt.UTC(),
	)
	if IsUniqueViolation(err) {
		r.log.Debugf("[order_ledger_pg] duplicate event order=%s status=%s", o.ID, o.Status)
		return nil
	}
	return err
}

// Summary counts orders and revenue by each order's latest recorded status.
func (r *OrderLedgerPG) Summary(ctx context.Context) ([]orderdom.StatusSummary, error) {
	const q = `
SELECT status, COUNT(*), COALESCE(SUM(total), 0)::float8
FROM (
  SELECT DISTINCT ON (order_id) order_id, status, total
  FROM order_events
  ORDER BY order_id, recorded_at DESC, id DESC
) latest
GROUP BY status
ORDER BY status`

	rows, err := r.DB.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []orderdom.StatusSummary{}
	for rows.Next() {
		var (
			s   orderdom.StatusSummary
			raw string
		)
		if err := rows.Scan(&raw, &s.Orders, &s.Revenue); err != nil {
			return nil, err
		}
		s.Status = orderdom.Status(raw)
		out = append(out, s)
	}
	return out, rows.Err()
}
