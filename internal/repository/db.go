package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrNotFound       = errors.New("record not found")
	ErrDuplicateEmail = errors.New("user with this email address already exists")
	ErrDuplicatePhone = errors.New("user profile with this phone number already exists")
)

// DBTX is the query surface shared by *pgxpool.Pool and pgx.Tx
type DBTX interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// TxStarter is a DBTX that can open transactions
type TxStarter interface {
	DBTX
	Begin(ctx context.Context) (pgx.Tx, error)
}

// Store groups the repositories over one connection or transaction
type Store interface {
	Users() UserRepository
	Profiles() ProfileRepository
	Tokens() TokenRepository
	// WithTx runs fn against a transactional Store, committing when fn returns nil.
	// Calls nested inside fn reuse the same transaction.
	WithTx(ctx context.Context, fn func(tx Store) error) error
}

type store struct {
	pool TxStarter
	db   DBTX
	inTx bool
}

// NewStore creates a Store backed by the given pool
func NewStore(pool TxStarter) Store {
	return &store{pool: pool, db: pool}
}

func (s *store) Users() UserRepository       { return NewUserRepository(s.db) }
func (s *store) Profiles() ProfileRepository { return NewProfileRepository(s.db) }
func (s *store) Tokens() TokenRepository     { return NewTokenRepository(s.db) }

func (s *store) WithTx(ctx context.Context, fn func(tx Store) error) (err error) {
	if s.inTx {
		return fn(s)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback(ctx)
			panic(p)
		}
		if err != nil {
			_ = tx.Rollback(ctx)
			return
		}
		if err = tx.Commit(ctx); err != nil {
			err = fmt.Errorf("failed to commit transaction: %w", translateError(err))
		}
	}()

	return fn(&store{pool: s.pool, db: tx, inTx: true})
}

// translateError maps unique violations to domain errors by constraint name
func translateError(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != pgerrcode.UniqueViolation {
		return err
	}
	switch pgErr.ConstraintName {
	case "users_email_key":
		return ErrDuplicateEmail
	case "profiles_phone_number_key":
		return ErrDuplicatePhone
	}
	return err
}
