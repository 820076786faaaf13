package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// querier is satisfied by both *pgxpool.Pool and pgx.Tx.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Postgres is the pgx backed storage backend.
type Postgres struct {
	pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

func (p *Postgres) Stores() Stores {
	return Stores{
		Records:    NewRecordRepository(p.pool),
		Trash:      NewTrashRepository(p.pool),
		Activities: NewActivityRepository(p.pool),
		Users:      NewUserRepository(p.pool),
	}
}

func (p *Postgres) WithTx(ctx context.Context, fn func(tx Stores) error) error {
	return p.runTx(ctx, pgx.TxOptions{}, fn)
}

// WithSnapshot uses a REPEATABLE READ read-only transaction so every statement sees the
// same snapshot.
func (p *Postgres) WithSnapshot(ctx context.Context, fn func(tx Stores) error) error {
	return p.runTx(ctx, pgx.TxOptions{IsoLevel: pgx.RepeatableRead, AccessMode: pgx.ReadOnly}, fn)
}

func (p *Postgres) runTx(ctx context.Context, opts pgx.TxOptions, fn func(tx Stores) error) error {
	tx, err := p.pool.BeginTx(ctx, opts)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(storesFor(tx)); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func storesFor(db querier) Stores {
	return Stores{
		Records:    &RecordRepository{db: db},
		Trash:      &TrashRepository{db: db},
		Activities: &ActivityRepository{db: db},
		Users:      &UserRepository{db: db},
	}
}
