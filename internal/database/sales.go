package database

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// The three channel tables are read-only to the register core. Each query
// takes a half-open window [$2, $3) and excludes cancelled records itself,
// so a sale stamped exactly at a session's close never lands in two sessions.

const listCounterSalesInWindow = `
SELECT id, store_id, total_amount, payment_method, cancelled, occurred_at
FROM counter_sales
WHERE store_id = $1 AND occurred_at >= $2 AND occurred_at < $3 AND NOT cancelled
ORDER BY occurred_at
`

type ListCounterSalesInWindowParams struct {
	StoreID      uuid.UUID
	OccurredAt   time.Time
	OccurredAt_2 time.Time
}

func (q *Queries) ListCounterSalesInWindow(ctx context.Context, arg ListCounterSalesInWindowParams) ([]CounterSale, error) {
	rows, err := q.db.Query(ctx, listCounterSalesInWindow, arg.StoreID, arg.OccurredAt, arg.OccurredAt_2)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []CounterSale
	for rows.Next() {
		var s CounterSale
		if err := rows.Scan(&s.ID, &s.StoreID, &s.TotalAmount, &s.PaymentMethod, &s.Cancelled, &s.OccurredAt); err != nil {
			return nil, err
		}
		items = append(items, s)
	}
	return items, rows.Err()
}

const listDeliveryOrdersInWindow = `
SELECT id, store_id, total_amount, payment_method, status, created_at
FROM delivery_orders
WHERE store_id = $1 AND created_at >= $2 AND created_at < $3 AND status <> 'CANCELLED'
ORDER BY created_at
`

type ListDeliveryOrdersInWindowParams struct {
	StoreID     uuid.UUID
	CreatedAt   time.Time
	CreatedAt_2 time.Time
}

func (q *Queries) ListDeliveryOrdersInWindow(ctx context.Context, arg ListDeliveryOrdersInWindowParams) ([]DeliveryOrder, error) {
	rows, err := q.db.Query(ctx, listDeliveryOrdersInWindow, arg.StoreID, arg.CreatedAt, arg.CreatedAt_2)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []DeliveryOrder
	for rows.Next() {
		var o DeliveryOrder
		if err := rows.Scan(&o.ID, &o.StoreID, &o.TotalAmount, &o.PaymentMethod, &o.Status, &o.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, o)
	}
	return items, rows.Err()
}

const listTableSalesInWindow = `
SELECT id, store_id, total_amount, payment_method, cancelled, occurred_at
FROM table_sales
WHERE store_id = $1 AND occurred_at >= $2 AND occurred_at < $3 AND NOT cancelled
ORDER BY occurred_at
`

type ListTableSalesInWindowParams struct {
	StoreID      uuid.UUID
	OccurredAt   time.Time
	OccurredAt_2 time.Time
}

func (q *Queries) ListTableSalesInWindow(ctx context.Context, arg ListTableSalesInWindowParams) ([]TableSale, error) {
	rows, err := q.db.Query(ctx, listTableSalesInWindow, arg.StoreID, arg.OccurredAt, arg.OccurredAt_2)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []TableSale
	for rows.Next() {
		var s TableSale
		if err := rows.Scan(&s.ID, &s.StoreID, &s.TotalAmount, &s.PaymentMethod, &s.Cancelled, &s.OccurredAt); err != nil {
			return nil, err
		}
		items = append(items, s)
	}
	return items, rows.Err()
}
