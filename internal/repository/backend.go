package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
	"github.com/jackc/pgx/v5"
)

// sqliteInsertBatch keeps multi-row inserts under SQLite's bound-variable limit.
const sqliteInsertBatch = 200

// querier runs statements produced by the ent SQL builder.
type querier interface {
	exec(ctx context.Context, query string, args ...any) error
	query(ctx context.Context, query string, args []any, each func(scan func(dest ...any) error) error) error
	copyRows(ctx context.Context, table string, columns []string, rows [][]any) (int64, error)
}

type backend interface {
	querier
	inTx(ctx context.Context, fn func(q querier) error) error
	Ping(ctx context.Context) error
	Close() error
}

// SQLite

type sqlRunner interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

type sqliteQuerier struct {
	r sqlRunner
}

func (q sqliteQuerier) exec(ctx context.Context, query string, args ...any) error {
	_, err := q.r.ExecContext(ctx, query, args...)
	return err
}

func (q sqliteQuerier) query(ctx context.Context, query string, args []any, each func(scan func(dest ...any) error) error) error {
	rows, err := q.r.QueryContext(ctx, query, args...)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		if err := each(rows.Scan); err != nil {
			return err
		}
	}
	return rows.Err()
}

func (q sqliteQuerier) copyRows(ctx context.Context, table string, columns []string, rows [][]any) (int64, error) {
	var n int64
	for start := 0; start < len(rows); start += sqliteInsertBatch {
		end := min(start+sqliteInsertBatch, len(rows))
		ins := entsql.Dialect(dialect.SQLite).Insert(table).Columns(columns...)
		for _, row := range rows[start:end] {
			ins.Values(row...)
		}
		stmt, args := ins.Query()
		res, err := q.r.ExecContext(ctx, stmt, args...)
		if err != nil {
			return n, err
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return n, err
		}
		n += affected
	}
	return n, nil
}

type sqliteBackend struct {
	drv *entsql.Driver
}

func (b *sqliteBackend) runner() sqliteQuerier { return sqliteQuerier{r: b.drv.DB()} }

func (b *sqliteBackend) exec(ctx context.Context, query string, args ...any) error {
	return b.runner().exec(ctx, query, args...)
}

func (b *sqliteBackend) query(ctx context.Context, query string, args []any, each func(scan func(dest ...any) error) error) error {
	return b.runner().query(ctx, query, args, each)
}

func (b *sqliteBackend) copyRows(ctx context.Context, table string, columns []string, rows [][]any) (int64, error) {
	return b.runner().copyRows(ctx, table, columns, rows)
}

func (b *sqliteBackend) inTx(ctx context.Context, fn func(q querier) error) error {
	tx, err := b.drv.DB().BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	if err := fn(sqliteQuerier{r: tx}); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return errors.Join(err, fmt.Errorf("rollback: %w", rbErr))
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func (b *sqliteBackend) Ping(ctx context.Context) error { return b.drv.DB().PingContext(ctx) }

func (b *sqliteBackend) Close() error { return b.drv.Close() }

// Postgres

type pgQuerier struct {
	tx pgx.Tx
}

func (q pgQuerier) exec(ctx context.Context, query string, args ...any) error {
	_, err := q.tx.Exec(ctx, query, args...)
	return err
}

func (q pgQuerier) query(ctx context.Context, query string, args []any, each func(scan func(dest ...any) error) error) error {
	return pgQuery(ctx, q.tx.Query, query, args, each)
}

func (q pgQuerier) copyRows(ctx context.Context, table string, columns []string, rows [][]any) (int64, error) {
	return q.tx.CopyFrom(ctx, pgx.Identifier{table}, columns, pgx.CopyFromRows(rows))
}

type pgBackend struct {
	pool PgPool
}

func (b *pgBackend) exec(ctx context.Context, query string, args ...any) error {
	_, err := b.pool.Exec(ctx, query, args...)
	return err
}

func (b *pgBackend) query(ctx context.Context, query string, args []any, each func(scan func(dest ...any) error) error) error {
	return pgQuery(ctx, b.pool.Query, query, args, each)
}

func (b *pgBackend) copyRows(ctx context.Context, table string, columns []string, rows [][]any) (int64, error) {
	return b.pool.CopyFrom(ctx, pgx.Identifier{table}, columns, pgx.CopyFromRows(rows))
}

func (b *pgBackend) inTx(ctx context.Context, fn func(q querier) error) error {
	tx, err := b.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	if err := fn(pgQuerier{tx: tx}); err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil {
			return errors.Join(err, fmt.Errorf("rollback: %w", rbErr))
		}
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func (b *pgBackend) Ping(ctx context.Context) error { return b.pool.Ping(ctx) }

func (b *pgBackend) Close() error {
	b.pool.Close()
	return nil
}

type pgQueryFunc func(ctx context.Context, sql string, args ...any) (pgx.Rows, error)

func pgQuery(ctx context.Context, run pgQueryFunc, query string, args []any, each func(scan func(dest ...any) error) error) error {
	rows, err := run(ctx, query, args...)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		if err := each(rows.Scan); err != nil {
			return err
		}
	}
	return rows.Err()
}
