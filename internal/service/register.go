package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/braseiro-pos/api/internal/database"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
)

// TxBeginner starts a new database transaction.
type TxBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// RegisterStore defines the DB methods needed to manage register sessions.
// Satisfied by *database.Queries (and its WithTx variant).
type RegisterStore interface {
	CreateRegisterSession(ctx context.Context, arg database.CreateRegisterSessionParams) (database.RegisterSession, error)
	GetOpenRegisterSession(ctx context.Context, storeID uuid.UUID) (database.RegisterSession, error)
	GetRegisterSession(ctx context.Context, id uuid.UUID) (database.RegisterSession, error)
	GetRegisterSessionForUpdate(ctx context.Context, id uuid.UUID) (database.RegisterSession, error)
	CloseRegisterSession(ctx context.Context, arg database.CloseRegisterSessionParams) (database.RegisterSession, error)
}

// NewRegisterStore creates a RegisterStore from a DBTX (pool or tx).
type NewRegisterStore func(db database.DBTX) RegisterStore

// Summarizer computes a reconciliation summary for a session with the
// window end pinned to a given instant.
type Summarizer interface {
	SummarizeAt(ctx context.Context, session database.RegisterSession, end time.Time) (Summary, error)
}

// RegisterService owns the session state machine: open → closed, one way,
// at most one open session per store.
type RegisterService struct {
	store    RegisterStore
	pool     TxBeginner
	newStore NewRegisterStore
	calc     Summarizer
}

func NewRegisterService(store RegisterStore, pool TxBeginner, newStore NewRegisterStore, calc Summarizer) *RegisterService {
	return &RegisterService{store: store, pool: pool, newStore: newStore, calc: calc}
}

// Open counts in the opening float and creates a session. The single-open
// invariant is enforced by the partial unique index on the sessions table,
// not by a check-then-write: two terminals racing to open the same drawer
// resolve at the database, and the loser gets ErrRegisterAlreadyOpen.
func (s *RegisterService) Open(ctx context.Context, storeID, operatorID uuid.UUID, openingAmount decimal.Decimal) (database.RegisterSession, error) {
	if openingAmount.IsNegative() || !centPrecision(openingAmount) {
		return database.RegisterSession{}, ErrInvalidAmount
	}

	session, err := s.store.CreateRegisterSession(ctx, database.CreateRegisterSessionParams{
		StoreID:       storeID,
		OperatorID:    pgtype.UUID{Bytes: operatorID, Valid: true},
		OpeningAmount: decimalToNumeric(openingAmount),
		OpenedAt:      time.Now().UTC(),
	})
	if err != nil {
		if isOpenSessionConflict(err) {
			return database.RegisterSession{}, ErrRegisterAlreadyOpen
		}
		return database.RegisterSession{}, fmt.Errorf("create register session: %w", err)
	}
	return session, nil
}

// isOpenSessionConflict checks for a unique violation on the partial index
// that allows one open session per store (pgconn error code 23505).
func isOpenSessionConflict(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505" && pgErr.ConstraintName == "register_sessions_store_open_key"
	}
	return false
}

// Close counts out the drawer and freezes the session. The expected balance
// is evaluated with the window end pinned to the close timestamp, inside the
// same transaction that flips the row, so movements arriving after the close
// instant can never leak into the frozen difference.
func (s *RegisterService) Close(ctx context.Context, sessionID uuid.UUID, closingAmount decimal.Decimal, notes string) (database.RegisterSession, Summary, error) {
	if closingAmount.IsNegative() || !centPrecision(closingAmount) {
		return database.RegisterSession{}, Summary{}, ErrInvalidAmount
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return database.RegisterSession{}, Summary{}, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	store := s.newStore(tx)

	// Lock the session row to serialize against concurrent closes and
	// concurrent ledger inserts, which take the same lock.
	session, err := store.GetRegisterSessionForUpdate(ctx, sessionID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return database.RegisterSession{}, Summary{}, ErrRegisterNotOpen
		}
		return database.RegisterSession{}, Summary{}, fmt.Errorf("get register session: %w", err)
	}
	if session.ClosedAt.Valid {
		return database.RegisterSession{}, Summary{}, ErrRegisterNotOpen
	}

	closedAt := time.Now().UTC()

	summary, err := s.calc.SummarizeAt(ctx, session, closedAt)
	if err != nil {
		return database.RegisterSession{}, Summary{}, fmt.Errorf("summarize session: %w", err)
	}

	difference := closingAmount.Sub(summary.ExpectedBalance)

	sessionNotes := pgtype.Text{}
	if notes != "" {
		sessionNotes = pgtype.Text{String: notes, Valid: true}
	}

	closed, err := store.CloseRegisterSession(ctx, database.CloseRegisterSessionParams{
		ID:            sessionID,
		ClosingAmount: decimalToNumeric(closingAmount),
		ClosedAt:      closedAt,
		Difference:    decimalToNumeric(difference),
		Notes:         sessionNotes,
	})
	if err != nil {
		// The closed_at guard means a concurrent close already won.
		if errors.Is(err, pgx.ErrNoRows) {
			return database.RegisterSession{}, Summary{}, ErrRegisterNotOpen
		}
		return database.RegisterSession{}, Summary{}, fmt.Errorf("close register session: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return database.RegisterSession{}, Summary{}, fmt.Errorf("commit tx: %w", err)
	}

	summary.Difference = &difference
	return closed, summary, nil
}

// Current returns the open session for a store, if any. Drawer state is a
// query against persisted rows, never in-memory state.
func (s *RegisterService) Current(ctx context.Context, storeID uuid.UUID) (database.RegisterSession, bool, error) {
	session, err := s.store.GetOpenRegisterSession(ctx, storeID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return database.RegisterSession{}, false, nil
		}
		return database.RegisterSession{}, false, fmt.Errorf("get open register session: %w", err)
	}
	return session, true, nil
}

// Get returns a session by ID.
func (s *RegisterService) Get(ctx context.Context, sessionID uuid.UUID) (database.RegisterSession, error) {
	session, err := s.store.GetRegisterSession(ctx, sessionID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return database.RegisterSession{}, ErrSessionNotFound
		}
		return database.RegisterSession{}, fmt.Errorf("get register session: %w", err)
	}
	return session, nil
}
