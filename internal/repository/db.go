package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	// ErrNotFound is returned when no row matches the given id
	ErrNotFound = errors.New("not found")
	// ErrConflict is returned when a uniqueness guard or a conditional update fails
	ErrConflict = errors.New("conflict")
)

// DBTX is satisfied by both *pgxpool.Pool and pgx.Tx
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Queries groups every repository bound to the same connection or transaction
type Queries struct {
	*JobRepository
	*JobRequestRepository
	*ActiveJobRepository
	*DeliveredJobRepository
	*UserRoleRepository
	*ContactRepository
	*MessageRepository
	*LocationRepository
	*ReviewRepository
	*PushTokenRepository
}

// NewQueries binds all repositories to db
func NewQueries(db DBTX) *Queries {
	return &Queries{
		JobRepository:          NewJobRepository(db),
		JobRequestRepository:   NewJobRequestRepository(db),
		ActiveJobRepository:    NewActiveJobRepository(db),
		DeliveredJobRepository: NewDeliveredJobRepository(db),
		UserRoleRepository:     NewUserRoleRepository(db),
		ContactRepository:      NewContactRepository(db),
		MessageRepository:      NewMessageRepository(db),
		LocationRepository:     NewLocationRepository(db),
		ReviewRepository:       NewReviewRepository(db),
		PushTokenRepository:    NewPushTokenRepository(db),
	}
}

// Store owns the process-wide pool and hands out transaction-scoped queries
type Store struct {
	*Queries
	pool *pgxpool.Pool
}

// NewStore creates a new store on top of pool
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{
		Queries: NewQueries(pool),
		pool:    pool,
	}
}

// InTx runs fn in a single transaction. The transaction commits when fn
// returns nil and rolls back otherwise.
func (s *Store) InTx(ctx context.Context, fn func(q *Queries) error) error {
	err := pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		return fn(NewQueries(tx))
	})
	if err != nil {
		return err
	}
	return nil
}

// Ping checks the connection to the database
func (s *Store) Ping(ctx context.Context) error {
	if err := s.pool.Ping(ctx); err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}
	return nil
}

// isUniqueViolation reports whether err is a Postgres unique_violation
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// isInvalidID reports whether err is Postgres rejecting a malformed uuid
func isInvalidID(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "22P02"
}

// notFound wraps pgx.ErrNoRows into ErrNotFound, other errors into a failure message.
// A malformed id cannot match a row either.
func notFound(err error, entity string) error {
	if errors.Is(err, pgx.ErrNoRows) || isInvalidID(err) {
		return fmt.Errorf("%s %w", entity, ErrNotFound)
	}
	return fmt.Errorf("failed to get %s: %w", entity, err)
}
