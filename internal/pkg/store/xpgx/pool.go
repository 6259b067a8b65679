// Package xpgx adapts pgxpool to the squirrel builders the stores produce:
// queries go in as Sqlizers, rows come out as db-tagged structs.
package xpgx

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Sqlizer is the part of a squirrel builder the pool needs.
type Sqlizer interface {
	ToSql() (string, []interface{}, error)
}

type Pool struct {
	db *pgxpool.Pool
}

func NewPool(ctx context.Context, dsn string) (*Pool, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse dsn: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	db, err := pgxpool.NewWithConfig(pingCtx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}
	if err := db.Ping(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}

	return &Pool{db: db}, nil
}

func (p *Pool) Close() {
	p.db.Close()
}

func (p *Pool) Ping(ctx context.Context) error {
	return p.db.Ping(ctx)
}

// Execx runs a statement and reports affected rows.
func (p *Pool) Execx(ctx context.Context, q Sqlizer) (int64, error) {
	sql, args, err := q.ToSql()
	if err != nil {
		return 0, fmt.Errorf("build query: %w", err)
	}

	tag, err := p.db.Exec(ctx, sql, args...)
	if err != nil {
		return 0, err
	}

	return tag.RowsAffected(), nil
}

// Queryx runs a query and hands back raw rows. Prefer Getx/Selectx.
func (p *Pool) Queryx(ctx context.Context, q Sqlizer) (pgx.Rows, error) {
	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	return p.db.Query(ctx, sql, args...)
}

// Getx scans the single result row into T, matching columns to db tags.
// Returns pgx.ErrNoRows when the query matches nothing.
func Getx[T any](ctx context.Context, p *Pool, q Sqlizer) (*T, error) {
	rows, err := p.Queryx(ctx, q)
	if err != nil {
		return nil, err
	}

	return pgx.CollectOneRow(rows, pgx.RowToAddrOfStructByNameLax[T])
}

// Selectx scans all result rows into a slice of T.
func Selectx[T any](ctx context.Context, p *Pool, q Sqlizer) ([]*T, error) {
	rows, err := p.Queryx(ctx, q)
	if err != nil {
		return nil, err
	}

	return pgx.CollectRows(rows, pgx.RowToAddrOfStructByNameLax[T])
}
