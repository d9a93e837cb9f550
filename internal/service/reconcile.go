package service

import (
	"context"
	"fmt"
	"log"
	"sort"
	"time"

	"github.com/braseiro-pos/api/internal/channel"
	"github.com/braseiro-pos/api/internal/database"
	"github.com/braseiro-pos/api/internal/enum"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ChannelTotals aggregates one sales channel inside a session window.
type ChannelTotals struct {
	Total     decimal.Decimal
	CashTotal decimal.Decimal
	Count     int64
}

// Summary is the reconciliation of one register session. It is derived on
// demand and never persisted; for an open session the window end advances
// with "now" until the session closes.
type Summary struct {
	SessionID     uuid.UUID
	WindowStart   time.Time
	WindowEnd     time.Time
	OpeningAmount decimal.Decimal

	Channels   map[string]ChannelTotals
	SalesTotal decimal.Decimal
	SalesCount int64

	OtherIncomeTotal decimal.Decimal
	CashIncomeTotal  decimal.Decimal
	ExpenseTotal     decimal.Decimal
	CashExpenseTotal decimal.Decimal

	// ExpectedBalance = opening + Σ cash channel totals + cash income − cash expense.
	ExpectedBalance decimal.Decimal
	// Difference = counted closing − expected; nil while the session is open.
	Difference *decimal.Decimal

	// Degraded marks a summary computed despite failed channel queries.
	// Failed channels contribute zero totals and are listed explicitly so
	// the shortfall is visible, never silently absorbed.
	Degraded       bool
	FailedChannels []string
}

// CalculatorStore defines the DB methods the calculator needs.
// Satisfied by *database.Queries.
type CalculatorStore interface {
	ListLedgerEntriesBySession(ctx context.Context, registerID uuid.UUID) ([]database.LedgerEntry, error)
}

// Calculator computes reconciliation summaries. The three channel queries
// fan out concurrently, each with its own timeout; a failing channel
// degrades the summary instead of blocking the operator.
type Calculator struct {
	store    CalculatorStore
	adapters []channel.Adapter
	timeout  time.Duration
}

func NewCalculator(store CalculatorStore, adapters []channel.Adapter, timeout time.Duration) *Calculator {
	return &Calculator{store: store, adapters: adapters, timeout: timeout}
}

// Summarize computes the summary with the window end at the session's close
// timestamp, or at "now" for an open session.
func (c *Calculator) Summarize(ctx context.Context, session database.RegisterSession) (Summary, error) {
	end := time.Now().UTC()
	if session.ClosedAt.Valid {
		end = session.ClosedAt.Time
	}
	summary, err := c.SummarizeAt(ctx, session, end)
	if err != nil {
		return Summary{}, err
	}
	if session.ClosedAt.Valid && session.ClosingAmount.Valid {
		d := numericToDecimal(session.ClosingAmount).Sub(summary.ExpectedBalance)
		summary.Difference = &d
	}
	return summary, nil
}

type channelResult struct {
	name   string
	totals ChannelTotals
	err    error
}

// SummarizeAt computes the summary over the half-open window
// [session.OpenedAt, end). A sale stamped exactly at end belongs to the next
// session, so adjacent sessions on the same drawer never double-count.
func (c *Calculator) SummarizeAt(ctx context.Context, session database.RegisterSession, end time.Time) (Summary, error) {
	from := session.OpenedAt

	results := make(chan channelResult, len(c.adapters))
	for _, a := range c.adapters {
		go func(a channel.Adapter) {
			results <- c.queryChannel(ctx, a, session.StoreID, from, end)
		}(a)
	}

	summary := Summary{
		SessionID:        session.ID,
		WindowStart:      from,
		WindowEnd:        end,
		OpeningAmount:    numericToDecimal(session.OpeningAmount),
		Channels:         make(map[string]ChannelTotals, len(c.adapters)),
		SalesTotal:       decimal.Zero,
		OtherIncomeTotal: decimal.Zero,
		CashIncomeTotal:  decimal.Zero,
		ExpenseTotal:     decimal.Zero,
		CashExpenseTotal: decimal.Zero,
	}

	cashSales := decimal.Zero
	for range c.adapters {
		res := <-results
		if res.err != nil {
			log.Printf("ERROR: channel %s query failed, degrading summary: %v", res.name, res.err)
			summary.Degraded = true
			summary.FailedChannels = append(summary.FailedChannels, res.name)
			summary.Channels[res.name] = ChannelTotals{Total: decimal.Zero, CashTotal: decimal.Zero}
			continue
		}
		summary.Channels[res.name] = res.totals
		summary.SalesTotal = summary.SalesTotal.Add(res.totals.Total)
		summary.SalesCount += res.totals.Count
		cashSales = cashSales.Add(res.totals.CashTotal)
	}
	sort.Strings(summary.FailedChannels)

	// Ledger failure is fatal: unlike a channel outage, the ledger belongs
	// to the session itself and a summary without it would be meaningless.
	entries, err := c.store.ListLedgerEntriesBySession(ctx, session.ID)
	if err != nil {
		return Summary{}, fmt.Errorf("list ledger entries: %w", err)
	}
	for _, e := range entries {
		amt := numericToDecimal(e.Amount)
		cash := e.PaymentMethod == enum.PaymentMethodCash
		switch e.Type {
		case enum.EntryTypeIncome:
			summary.OtherIncomeTotal = summary.OtherIncomeTotal.Add(amt)
			if cash {
				summary.CashIncomeTotal = summary.CashIncomeTotal.Add(amt)
			}
		case enum.EntryTypeExpense:
			summary.ExpenseTotal = summary.ExpenseTotal.Add(amt)
			if cash {
				summary.CashExpenseTotal = summary.CashExpenseTotal.Add(amt)
			}
		}
	}

	summary.ExpectedBalance = summary.OpeningAmount.
		Add(cashSales).
		Add(summary.CashIncomeTotal).
		Sub(summary.CashExpenseTotal)

	return summary, nil
}

// queryChannel runs one adapter with an individual timeout and folds its
// records into totals. Cancelled or out-of-window records are skipped even
// if an adapter returns them.
func (c *Calculator) queryChannel(ctx context.Context, a channel.Adapter, storeID uuid.UUID, from, to time.Time) channelResult {
	qctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	records, err := a.Query(qctx, storeID, from, to)
	if err != nil {
		return channelResult{name: a.Channel(), err: err}
	}

	totals := ChannelTotals{Total: decimal.Zero, CashTotal: decimal.Zero}
	for _, r := range records {
		if r.Cancelled || r.OccurredAt.Before(from) || !r.OccurredAt.Before(to) {
			continue
		}
		totals.Total = totals.Total.Add(r.TotalAmount)
		totals.Count++
		if r.PaymentMethod == enum.PaymentMethodCash {
			totals.CashTotal = totals.CashTotal.Add(r.TotalAmount)
		}
	}
	return channelResult{name: a.Channel(), totals: totals}
}
