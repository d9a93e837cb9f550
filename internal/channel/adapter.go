// Package channel exposes the three sales channels (counter, delivery,
// table) behind a single read-only Adapter interface. Adapters exclude
// cancelled records and normalize channel-native payment labels to the
// canonical enum before records reach the reconciliation calculator.
package channel

import (
	"context"
	"strings"
	"time"

	"github.com/braseiro-pos/api/internal/database"
	"github.com/braseiro-pos/api/internal/enum"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
)

// SaleRecord is one non-cancelled sale, normalized to the canonical
// payment-method enum, inside a query window.
type SaleRecord struct {
	ID            uuid.UUID
	OccurredAt    time.Time
	TotalAmount   decimal.Decimal
	PaymentMethod string
	Cancelled     bool
}

// Adapter queries one sales channel for records in the half-open window
// [from, to). Implementations must exclude cancelled records themselves.
type Adapter interface {
	Channel() string
	Query(ctx context.Context, storeID uuid.UUID, from, to time.Time) ([]SaleRecord, error)
}

// normalizePaymentMethod maps the label vocabularies the channel systems
// actually emit onto the canonical enum. Unknown labels fall through to
// OTHER rather than silently counting as cash.
func normalizePaymentMethod(label string) string {
	if enum.IsValidPaymentMethod(label) {
		return label
	}
	switch strings.ToLower(strings.TrimSpace(label)) {
	case "cash", "money", "dinheiro":
		return enum.PaymentMethodCash
	case "pix":
		return enum.PaymentMethodPix
	case "credit", "credit_card", "creditcard", "credito", "crédito":
		return enum.PaymentMethodCreditCard
	case "debit", "debit_card", "debitcard", "debito", "débito":
		return enum.PaymentMethodDebitCard
	case "voucher", "vale", "meal_voucher":
		return enum.PaymentMethodVoucher
	case "mixed", "split", "misto":
		return enum.PaymentMethodMixed
	default:
		return enum.PaymentMethodOther
	}
}

func numericToDecimal(n pgtype.Numeric) decimal.Decimal {
	if !n.Valid {
		return decimal.Zero
	}
	val, err := n.Value()
	if err != nil || val == nil {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(val.(string))
	if err != nil {
		return decimal.Zero
	}
	return d
}

// --- Counter ---

// CounterStore defines the database methods the counter adapter needs.
type CounterStore interface {
	ListCounterSalesInWindow(ctx context.Context, arg database.ListCounterSalesInWindowParams) ([]database.CounterSale, error)
}

type CounterAdapter struct {
	store CounterStore
}

func NewCounterAdapter(store CounterStore) *CounterAdapter {
	return &CounterAdapter{store: store}
}

func (a *CounterAdapter) Channel() string { return enum.ChannelCounter }

func (a *CounterAdapter) Query(ctx context.Context, storeID uuid.UUID, from, to time.Time) ([]SaleRecord, error) {
	sales, err := a.store.ListCounterSalesInWindow(ctx, database.ListCounterSalesInWindowParams{
		StoreID:      storeID,
		OccurredAt:   from,
		OccurredAt_2: to,
	})
	if err != nil {
		return nil, err
	}
	records := make([]SaleRecord, len(sales))
	for i, s := range sales {
		records[i] = SaleRecord{
			ID:            s.ID,
			OccurredAt:    s.OccurredAt,
			TotalAmount:   numericToDecimal(s.TotalAmount),
			PaymentMethod: normalizePaymentMethod(s.PaymentMethod),
			Cancelled:     s.Cancelled,
		}
	}
	return records, nil
}

// --- Delivery ---

// DeliveryStore defines the database methods the delivery adapter needs.
type DeliveryStore interface {
	ListDeliveryOrdersInWindow(ctx context.Context, arg database.ListDeliveryOrdersInWindowParams) ([]database.DeliveryOrder, error)
}

type DeliveryAdapter struct {
	store DeliveryStore
}

func NewDeliveryAdapter(store DeliveryStore) *DeliveryAdapter {
	return &DeliveryAdapter{store: store}
}

func (a *DeliveryAdapter) Channel() string { return enum.ChannelDelivery }

func (a *DeliveryAdapter) Query(ctx context.Context, storeID uuid.UUID, from, to time.Time) ([]SaleRecord, error) {
	orders, err := a.store.ListDeliveryOrdersInWindow(ctx, database.ListDeliveryOrdersInWindowParams{
		StoreID:     storeID,
		CreatedAt:   from,
		CreatedAt_2: to,
	})
	if err != nil {
		return nil, err
	}
	records := make([]SaleRecord, len(orders))
	for i, o := range orders {
		records[i] = SaleRecord{
			ID:            o.ID,
			OccurredAt:    o.CreatedAt,
			TotalAmount:   numericToDecimal(o.TotalAmount),
			PaymentMethod: normalizePaymentMethod(o.PaymentMethod),
			Cancelled:     o.Status == "CANCELLED",
		}
	}
	return records, nil
}

// --- Table ---

// TableStore defines the database methods the table adapter needs.
type TableStore interface {
	ListTableSalesInWindow(ctx context.Context, arg database.ListTableSalesInWindowParams) ([]database.TableSale, error)
}

type TableAdapter struct {
	store TableStore
}

func NewTableAdapter(store TableStore) *TableAdapter {
	return &TableAdapter{store: store}
}

func (a *TableAdapter) Channel() string { return enum.ChannelTable }

func (a *TableAdapter) Query(ctx context.Context, storeID uuid.UUID, from, to time.Time) ([]SaleRecord, error) {
	sales, err := a.store.ListTableSalesInWindow(ctx, database.ListTableSalesInWindowParams{
		StoreID:      storeID,
		OccurredAt:   from,
		OccurredAt_2: to,
	})
	if err != nil {
		return nil, err
	}
	records := make([]SaleRecord, len(sales))
	for i, s := range sales {
		records[i] = SaleRecord{
			ID:            s.ID,
			OccurredAt:    s.OccurredAt,
			TotalAmount:   numericToDecimal(s.TotalAmount),
			PaymentMethod: normalizePaymentMethod(s.PaymentMethod),
			Cancelled:     s.Cancelled,
		}
	}
	return records, nil
}
