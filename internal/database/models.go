package database

import (
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

// RegisterSession is one lifecycle of a physical cash drawer: counted opening
// float through counted closing float. ClosingAmount, ClosedAt and Difference
// are set together, once, when the session closes.
type RegisterSession struct {
	ID            uuid.UUID
	StoreID       uuid.UUID
	OperatorID    pgtype.UUID // null only for migrated/backfilled sessions
	OpeningAmount pgtype.Numeric
	OpenedAt      time.Time
	ClosingAmount pgtype.Numeric
	ClosedAt      pgtype.Timestamptz
	Difference    pgtype.Numeric
	Notes         pgtype.Text
}

// LedgerEntry is a manually recorded cash movement during an open session.
// Sign is carried by Type; Amount is always positive.
type LedgerEntry struct {
	ID            uuid.UUID
	RegisterID    uuid.UUID
	Type          string
	Amount        pgtype.Numeric
	Description   string
	PaymentMethod string
	CreatedAt     time.Time
}

type User struct {
	ID             uuid.UUID
	StoreID        uuid.UUID
	Email          string
	HashedPassword string
	FullName       string
	Role           string
	CreatedAt      time.Time
}

// CounterSale is a point-of-sale ticket rung up at the counter.
type CounterSale struct {
	ID            uuid.UUID
	StoreID       uuid.UUID
	TotalAmount   pgtype.Numeric
	PaymentMethod string
	Cancelled     bool
	OccurredAt    time.Time
}

// DeliveryOrder is a delivery-channel sale. Cancellation is carried by Status.
type DeliveryOrder struct {
	ID            uuid.UUID
	StoreID       uuid.UUID
	TotalAmount   pgtype.Numeric
	PaymentMethod string
	Status        string
	CreatedAt     time.Time
}

// TableSale is a dine-in table ticket.
type TableSale struct {
	ID            uuid.UUID
	StoreID       uuid.UUID
	TotalAmount   pgtype.Numeric
	PaymentMethod string
	Cancelled     bool
	OccurredAt    time.Time
}
