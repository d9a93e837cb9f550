package service

import (
	"context"
	"fmt"
	"time"

	"github.com/braseiro-pos/api/internal/database"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// RollupStore defines the DB methods needed for period reports.
// Satisfied by *database.Queries.
type RollupStore interface {
	ListClosedRegisterSessions(ctx context.Context, arg database.ListClosedRegisterSessionsParams) ([]database.RegisterSession, error)
}

// SessionSummarizer reconciles a single session end to end.
type SessionSummarizer interface {
	Summarize(ctx context.Context, session database.RegisterSession) (Summary, error)
}

// Rollup aggregates the closed sessions of one period. It is a fold over
// per-session summaries, so every total here equals the sum of the
// corresponding per-session figures.
type Rollup struct {
	StoreID     uuid.UUID
	PeriodStart time.Time
	PeriodEnd   time.Time
	OperatorID  *uuid.UUID

	SessionCount int64

	OpeningTotal    decimal.Decimal
	ClosingTotal    decimal.Decimal
	ExpectedTotal   decimal.Decimal
	DifferenceTotal decimal.Decimal

	SalesTotal   decimal.Decimal
	SalesCount   int64
	Channels     map[string]ChannelTotals
	IncomeTotal  decimal.Decimal
	ExpenseTotal decimal.Decimal

	// Degraded propagates from any member summary: a rollup containing one
	// degraded session cannot claim complete sales figures either.
	Degraded bool
}

// RollupService produces per-period reports over closed sessions.
type RollupService struct {
	store RollupStore
	calc  SessionSummarizer
}

func NewRollupService(store RollupStore, calc SessionSummarizer) *RollupService {
	return &RollupService{store: store, calc: calc}
}

// Report folds the summaries of all sessions closed within [start, end) for
// a store, optionally restricted to a single operator. Open sessions never
// appear: a session joins the period its close falls in, so no session is
// ever counted in two adjacent periods.
func (s *RollupService) Report(ctx context.Context, storeID uuid.UUID, start, end time.Time, operatorID *uuid.UUID) (Rollup, error) {
	sessions, err := s.store.ListClosedRegisterSessions(ctx, database.ListClosedRegisterSessionsParams{
		StoreID:    storeID,
		ClosedAt:   start,
		ClosedAt_2: end,
	})
	if err != nil {
		return Rollup{}, fmt.Errorf("list closed register sessions: %w", err)
	}

	rollup := Rollup{
		StoreID:         storeID,
		PeriodStart:     start,
		PeriodEnd:       end,
		OperatorID:      operatorID,
		OpeningTotal:    decimal.Zero,
		ClosingTotal:    decimal.Zero,
		ExpectedTotal:   decimal.Zero,
		DifferenceTotal: decimal.Zero,
		SalesTotal:      decimal.Zero,
		Channels:        make(map[string]ChannelTotals),
		IncomeTotal:     decimal.Zero,
		ExpenseTotal:    decimal.Zero,
	}

	for _, session := range sessions {
		if operatorID != nil {
			if !session.OperatorID.Valid || uuid.UUID(session.OperatorID.Bytes) != *operatorID {
				continue
			}
		}

		summary, err := s.calc.Summarize(ctx, session)
		if err != nil {
			return Rollup{}, fmt.Errorf("summarize session %s: %w", session.ID, err)
		}

		rollup.SessionCount++
		rollup.OpeningTotal = rollup.OpeningTotal.Add(summary.OpeningAmount)
		rollup.ClosingTotal = rollup.ClosingTotal.Add(numericToDecimal(session.ClosingAmount))
		rollup.ExpectedTotal = rollup.ExpectedTotal.Add(summary.ExpectedBalance)
		if summary.Difference != nil {
			rollup.DifferenceTotal = rollup.DifferenceTotal.Add(*summary.Difference)
		}
		rollup.SalesTotal = rollup.SalesTotal.Add(summary.SalesTotal)
		rollup.SalesCount += summary.SalesCount
		for name, totals := range summary.Channels {
			acc := rollup.Channels[name]
			acc.Total = acc.Total.Add(totals.Total)
			acc.CashTotal = acc.CashTotal.Add(totals.CashTotal)
			acc.Count += totals.Count
			rollup.Channels[name] = acc
		}
		rollup.IncomeTotal = rollup.IncomeTotal.Add(summary.OtherIncomeTotal)
		rollup.ExpenseTotal = rollup.ExpenseTotal.Add(summary.ExpenseTotal)
		if summary.Degraded {
			rollup.Degraded = true
		}
	}

	return rollup, nil
}
