package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const createLedgerEntry = `
INSERT INTO ledger_entries (register_id, type, amount, description, payment_method)
VALUES ($1, $2, $3, $4, $5)
RETURNING id, register_id, type, amount, description, payment_method, created_at
`

type CreateLedgerEntryParams struct {
	RegisterID    uuid.UUID
	Type          string
	Amount        pgtype.Numeric
	Description   string
	PaymentMethod string
}

func (q *Queries) CreateLedgerEntry(ctx context.Context, arg CreateLedgerEntryParams) (LedgerEntry, error) {
	row := q.db.QueryRow(ctx, createLedgerEntry,
		arg.RegisterID, arg.Type, arg.Amount, arg.Description, arg.PaymentMethod)
	var e LedgerEntry
	err := row.Scan(&e.ID, &e.RegisterID, &e.Type, &e.Amount, &e.Description, &e.PaymentMethod, &e.CreatedAt)
	return e, err
}

const getLedgerEntry = `
SELECT id, register_id, type, amount, description, payment_method, created_at
FROM ledger_entries
WHERE id = $1
`

func (q *Queries) GetLedgerEntry(ctx context.Context, id uuid.UUID) (LedgerEntry, error) {
	row := q.db.QueryRow(ctx, getLedgerEntry, id)
	var e LedgerEntry
	err := row.Scan(&e.ID, &e.RegisterID, &e.Type, &e.Amount, &e.Description, &e.PaymentMethod, &e.CreatedAt)
	return e, err
}

const updateLedgerEntry = `
UPDATE ledger_entries
SET type = $2, amount = $3, description = $4, payment_method = $5
WHERE id = $1
RETURNING id, register_id, type, amount, description, payment_method, created_at
`

type UpdateLedgerEntryParams struct {
	ID            uuid.UUID
	Type          string
	Amount        pgtype.Numeric
	Description   string
	PaymentMethod string
}

func (q *Queries) UpdateLedgerEntry(ctx context.Context, arg UpdateLedgerEntryParams) (LedgerEntry, error) {
	row := q.db.QueryRow(ctx, updateLedgerEntry,
		arg.ID, arg.Type, arg.Amount, arg.Description, arg.PaymentMethod)
	var e LedgerEntry
	err := row.Scan(&e.ID, &e.RegisterID, &e.Type, &e.Amount, &e.Description, &e.PaymentMethod, &e.CreatedAt)
	return e, err
}

const deleteLedgerEntry = `
DELETE FROM ledger_entries WHERE id = $1
`

// DeleteLedgerEntry returns the number of rows removed (0 or 1).
func (q *Queries) DeleteLedgerEntry(ctx context.Context, id uuid.UUID) (int64, error) {
	tag, err := q.db.Exec(ctx, deleteLedgerEntry, id)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

const listLedgerEntriesBySession = `
SELECT id, register_id, type, amount, description, payment_method, created_at
FROM ledger_entries
WHERE register_id = $1
ORDER BY created_at DESC
`

func (q *Queries) ListLedgerEntriesBySession(ctx context.Context, registerID uuid.UUID) ([]LedgerEntry, error) {
	rows, err := q.db.Query(ctx, listLedgerEntriesBySession, registerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []LedgerEntry
	for rows.Next() {
		var e LedgerEntry
		if err := rows.Scan(&e.ID, &e.RegisterID, &e.Type, &e.Amount, &e.Description, &e.PaymentMethod, &e.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, e)
	}
	return items, rows.Err()
}
