package database

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const createRegisterSession = `
INSERT INTO register_sessions (store_id, operator_id, opening_amount, opened_at)
VALUES ($1, $2, $3, $4)
RETURNING id, store_id, operator_id, opening_amount, opened_at, closing_amount, closed_at, difference, notes
`

type CreateRegisterSessionParams struct {
	StoreID       uuid.UUID
	OperatorID    pgtype.UUID
	OpeningAmount pgtype.Numeric
	OpenedAt      time.Time
}

func (q *Queries) CreateRegisterSession(ctx context.Context, arg CreateRegisterSessionParams) (RegisterSession, error) {
	row := q.db.QueryRow(ctx, createRegisterSession,
		arg.StoreID, arg.OperatorID, arg.OpeningAmount, arg.OpenedAt)
	var s RegisterSession
	err := row.Scan(&s.ID, &s.StoreID, &s.OperatorID, &s.OpeningAmount, &s.OpenedAt,
		&s.ClosingAmount, &s.ClosedAt, &s.Difference, &s.Notes)
	return s, err
}

const getOpenRegisterSession = `
SELECT id, store_id, operator_id, opening_amount, opened_at, closing_amount, closed_at, difference, notes
FROM register_sessions
WHERE store_id = $1 AND closed_at IS NULL
`

func (q *Queries) GetOpenRegisterSession(ctx context.Context, storeID uuid.UUID) (RegisterSession, error) {
	row := q.db.QueryRow(ctx, getOpenRegisterSession, storeID)
	var s RegisterSession
	err := row.Scan(&s.ID, &s.StoreID, &s.OperatorID, &s.OpeningAmount, &s.OpenedAt,
		&s.ClosingAmount, &s.ClosedAt, &s.Difference, &s.Notes)
	return s, err
}

const getRegisterSession = `
SELECT id, store_id, operator_id, opening_amount, opened_at, closing_amount, closed_at, difference, notes
FROM register_sessions
WHERE id = $1
`

func (q *Queries) GetRegisterSession(ctx context.Context, id uuid.UUID) (RegisterSession, error) {
	row := q.db.QueryRow(ctx, getRegisterSession, id)
	var s RegisterSession
	err := row.Scan(&s.ID, &s.StoreID, &s.OperatorID, &s.OpeningAmount, &s.OpenedAt,
		&s.ClosingAmount, &s.ClosedAt, &s.Difference, &s.Notes)
	return s, err
}

const getRegisterSessionForUpdate = `
SELECT id, store_id, operator_id, opening_amount, opened_at, closing_amount, closed_at, difference, notes
FROM register_sessions
WHERE id = $1
FOR NO KEY UPDATE
`

// GetRegisterSessionForUpdate locks the session row so a concurrent close or
// entry insert serializes against this transaction.
func (q *Queries) GetRegisterSessionForUpdate(ctx context.Context, id uuid.UUID) (RegisterSession, error) {
	row := q.db.QueryRow(ctx, getRegisterSessionForUpdate, id)
	var s RegisterSession
	err := row.Scan(&s.ID, &s.StoreID, &s.OperatorID, &s.OpeningAmount, &s.OpenedAt,
		&s.ClosingAmount, &s.ClosedAt, &s.Difference, &s.Notes)
	return s, err
}

const closeRegisterSession = `
UPDATE register_sessions
SET closing_amount = $2, closed_at = $3, difference = $4, notes = $5
WHERE id = $1 AND closed_at IS NULL
RETURNING id, store_id, operator_id, opening_amount, opened_at, closing_amount, closed_at, difference, notes
`

type CloseRegisterSessionParams struct {
	ID            uuid.UUID
	ClosingAmount pgtype.Numeric
	ClosedAt      time.Time
	Difference    pgtype.Numeric
	Notes         pgtype.Text
}

// CloseRegisterSession is the one-way open→closed transition. The closed_at
// guard makes it a no-op (ErrNoRows) if another close won the race.
func (q *Queries) CloseRegisterSession(ctx context.Context, arg CloseRegisterSessionParams) (RegisterSession, error) {
	row := q.db.QueryRow(ctx, closeRegisterSession,
		arg.ID, arg.ClosingAmount, arg.ClosedAt, arg.Difference, arg.Notes)
	var s RegisterSession
	err := row.Scan(&s.ID, &s.StoreID, &s.OperatorID, &s.OpeningAmount, &s.OpenedAt,
		&s.ClosingAmount, &s.ClosedAt, &s.Difference, &s.Notes)
	return s, err
}

const listClosedRegisterSessions = `
SELECT id, store_id, operator_id, opening_amount, opened_at, closing_amount, closed_at, difference, notes
FROM register_sessions
WHERE store_id = $1 AND closed_at IS NOT NULL AND closed_at >= $2 AND closed_at < $3
ORDER BY closed_at
`

type ListClosedRegisterSessionsParams struct {
	StoreID    uuid.UUID
	ClosedAt   time.Time
	ClosedAt_2 time.Time
}

func (q *Queries) ListClosedRegisterSessions(ctx context.Context, arg ListClosedRegisterSessionsParams) ([]RegisterSession, error) {
	rows, err := q.db.Query(ctx, listClosedRegisterSessions, arg.StoreID, arg.ClosedAt, arg.ClosedAt_2)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []RegisterSession
	for rows.Next() {
		var s RegisterSession
		if err := rows.Scan(&s.ID, &s.StoreID, &s.OperatorID, &s.OpeningAmount, &s.OpenedAt,
			&s.ClosingAmount, &s.ClosedAt, &s.Difference, &s.Notes); err != nil {
			return nil, err
		}
		items = append(items, s)
	}
	return items, rows.Err()
}
