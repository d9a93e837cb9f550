package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/braseiro-pos/api/internal/database"
	"github.com/braseiro-pos/api/internal/enum"
	"github.com/braseiro-pos/api/internal/permission"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// LedgerStore defines the DB methods needed for manual cash movements.
// Satisfied by *database.Queries (and its WithTx variant).
type LedgerStore interface {
	GetRegisterSessionForUpdate(ctx context.Context, id uuid.UUID) (database.RegisterSession, error)
	CreateLedgerEntry(ctx context.Context, arg database.CreateLedgerEntryParams) (database.LedgerEntry, error)
	GetLedgerEntry(ctx context.Context, id uuid.UUID) (database.LedgerEntry, error)
	UpdateLedgerEntry(ctx context.Context, arg database.UpdateLedgerEntryParams) (database.LedgerEntry, error)
	DeleteLedgerEntry(ctx context.Context, id uuid.UUID) (int64, error)
	ListLedgerEntriesBySession(ctx context.Context, registerID uuid.UUID) ([]database.LedgerEntry, error)
}

// NewLedgerStore creates a LedgerStore from a DBTX (pool or tx).
type NewLedgerStore func(db database.DBTX) LedgerStore

// EntryPatch carries the fields an update may change. Nil means "leave as is".
type EntryPatch struct {
	Type          *string
	Amount        *decimal.Decimal
	Description   *string
	PaymentMethod *string
}

// LedgerService records and maintains manual cash movements on a session.
type LedgerService struct {
	store    LedgerStore
	pool     TxBeginner
	newStore NewLedgerStore
	oracle   permission.Oracle
}

func NewLedgerService(store LedgerStore, pool TxBeginner, newStore NewLedgerStore, oracle permission.Oracle) *LedgerService {
	return &LedgerService{store: store, pool: pool, newStore: newStore, oracle: oracle}
}

// AddEntry appends a cash movement to an open session. The session row is
// locked for the insert so an entry can never slip in after a concurrent
// close fixed the window end.
func (s *LedgerService) AddEntry(ctx context.Context, sessionID uuid.UUID, entryType string, amount decimal.Decimal, description, paymentMethod string) (database.LedgerEntry, error) {
	if !enum.IsValidEntryType(entryType) {
		return database.LedgerEntry{}, ErrInvalidEntryType
	}
	if !amount.IsPositive() || !centPrecision(amount) {
		return database.LedgerEntry{}, ErrInvalidAmount
	}
	description = strings.TrimSpace(description)
	if description == "" {
		return database.LedgerEntry{}, ErrEmptyDescription
	}
	if !enum.IsValidPaymentMethod(paymentMethod) {
		return database.LedgerEntry{}, ErrInvalidPaymentMethod
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return database.LedgerEntry{}, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	store := s.newStore(tx)

	session, err := store.GetRegisterSessionForUpdate(ctx, sessionID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return database.LedgerEntry{}, ErrSessionNotFound
		}
		return database.LedgerEntry{}, fmt.Errorf("get register session: %w", err)
	}
	if session.ClosedAt.Valid {
		return database.LedgerEntry{}, ErrSessionNotOpen
	}

	entry, err := store.CreateLedgerEntry(ctx, database.CreateLedgerEntryParams{
		RegisterID:    sessionID,
		Type:          entryType,
		Amount:        decimalToNumeric(amount),
		Description:   description,
		PaymentMethod: paymentMethod,
	})
	if err != nil {
		return database.LedgerEntry{}, fmt.Errorf("create ledger entry: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return database.LedgerEntry{}, fmt.Errorf("commit tx: %w", err)
	}
	return entry, nil
}

// UpdateEntry applies a patch under the capability rules: payment_method is
// mutable by anyone holding edit_cash_entries; type, amount and description
// only by holders of manage_cash_entries. Fields the actor may not touch are
// dropped silently so a payment-method-only correction needs no special
// casing on the caller side.
func (s *LedgerService) UpdateEntry(ctx context.Context, entryID uuid.UUID, patch EntryPatch, actorRole string) (database.LedgerEntry, error) {
	if !s.oracle.HasCapability(actorRole, permission.CapEditCashEntries) {
		return database.LedgerEntry{}, ErrPermissionDenied
	}

	entry, err := s.store.GetLedgerEntry(ctx, entryID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return database.LedgerEntry{}, ErrEntryNotFound
		}
		return database.LedgerEntry{}, fmt.Errorf("get ledger entry: %w", err)
	}

	arg := database.UpdateLedgerEntryParams{
		ID:            entry.ID,
		Type:          entry.Type,
		Amount:        entry.Amount,
		Description:   entry.Description,
		PaymentMethod: entry.PaymentMethod,
	}

	if patch.PaymentMethod != nil {
		if !enum.IsValidPaymentMethod(*patch.PaymentMethod) {
			return database.LedgerEntry{}, ErrInvalidPaymentMethod
		}
		arg.PaymentMethod = *patch.PaymentMethod
	}

	if s.oracle.HasCapability(actorRole, permission.CapManageCashEntries) {
		if patch.Type != nil {
			if !enum.IsValidEntryType(*patch.Type) {
				return database.LedgerEntry{}, ErrInvalidEntryType
			}
			arg.Type = *patch.Type
		}
		if patch.Amount != nil {
			if !patch.Amount.IsPositive() || !centPrecision(*patch.Amount) {
				return database.LedgerEntry{}, ErrInvalidAmount
			}
			arg.Amount = decimalToNumeric(*patch.Amount)
		}
		if patch.Description != nil {
			desc := strings.TrimSpace(*patch.Description)
			if desc == "" {
				return database.LedgerEntry{}, ErrEmptyDescription
			}
			arg.Description = desc
		}
	}

	updated, err := s.store.UpdateLedgerEntry(ctx, arg)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return database.LedgerEntry{}, ErrEntryNotFound
		}
		return database.LedgerEntry{}, fmt.Errorf("update ledger entry: %w", err)
	}
	return updated, nil
}

// GetEntry returns an entry by ID.
func (s *LedgerService) GetEntry(ctx context.Context, entryID uuid.UUID) (database.LedgerEntry, error) {
	entry, err := s.store.GetLedgerEntry(ctx, entryID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return database.LedgerEntry{}, ErrEntryNotFound
		}
		return database.LedgerEntry{}, fmt.Errorf("get ledger entry: %w", err)
	}
	return entry, nil
}

// DeleteEntry removes an entry for actors holding delete_cash_entries.
func (s *LedgerService) DeleteEntry(ctx context.Context, entryID uuid.UUID, actorRole string) error {
	if !s.oracle.HasCapability(actorRole, permission.CapDeleteCashEntries) {
		return ErrPermissionDenied
	}

	affected, err := s.store.DeleteLedgerEntry(ctx, entryID)
	if err != nil {
		return fmt.Errorf("delete ledger entry: %w", err)
	}
	if affected == 0 {
		return ErrEntryNotFound
	}
	return nil
}

// ListEntries returns a session's movements, newest first.
func (s *LedgerService) ListEntries(ctx context.Context, sessionID uuid.UUID) ([]database.LedgerEntry, error) {
	entries, err := s.store.ListLedgerEntriesBySession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("list ledger entries: %w", err)
	}
	return entries, nil
}
