// Package sqlite implements the entity store contract on top of the
// migrated SQLite schema in internal/db. Queries are built with goqu.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/sqlite3"
	"github.com/doug-martin/goqu/v9/exp"

	"github.com/vbonduro/hbnb/internal/domain"
)

// scanFunc matches (*sql.Row).Scan and (*sql.Rows).Scan.
type scanFunc func(dest ...any) error

// codec maps one entity type onto its table.
type codec[T any] struct {
	table   string
	noun    string
	columns []any
	// attrs maps attribute names onto columns. Names not listed never match.
	attrs  map[string]string
	record func(T) (goqu.Record, error)
	scan   func(scanFunc) (T, error)
}

type Store[T domain.Entity[T]] struct {
	db    *sql.DB
	qb    *goqu.Database
	codec codec[T]
}

func newStore[T domain.Entity[T]](db *sql.DB, c codec[T]) *Store[T] {
	return &Store[T]{db: db, qb: goqu.New("sqlite3", db), codec: c}
}

// Add inserts entity, replacing any row with the same id.
func (s *Store[T]) Add(ctx context.Context, entity T) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin %s insert: %w", s.codec.noun, err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := s.upsert(ctx, tx, entity); err != nil {
		return fmt.Errorf("failed to add %s: %w", s.codec.noun, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit %s insert: %w", s.codec.noun, err)
	}
	return nil
}

func (s *Store[T]) Get(ctx context.Context, id string) (T, error) {
	e, err := s.getOne(ctx, s.db, goqu.Ex{"id": id})
	if err != nil {
		return e, fmt.Errorf("failed to get %s: %w", s.codec.noun, err)
	}
	return e, nil
}

func (s *Store[T]) GetAll(ctx context.Context) ([]T, error) {
	return s.list(ctx, nil)
}

func (s *Store[T]) Filter(ctx context.Context, keep func(T) bool) ([]T, error) {
	all, err := s.list(ctx, nil)
	if err != nil {
		return nil, err
	}
	if keep == nil {
		return all, nil
	}
	out := make([]T, 0, len(all))
	for _, e := range all {
		if keep(e) {
			out = append(out, e)
		}
	}
	return out, nil
}

// Update loads the row, runs mutate on it and writes it back in one
// transaction. An unknown id is a no-op that returns the zero value.
func (s *Store[T]) Update(ctx context.Context, id string, mutate func(T) error) (T, error) {
	var zero T
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return zero, fmt.Errorf("failed to begin %s update: %w", s.codec.noun, err)
	}
	defer func() { _ = tx.Rollback() }()

	cur, err := s.getOne(ctx, tx, goqu.Ex{"id": id})
	if err != nil {
		return zero, fmt.Errorf("failed to get %s: %w", s.codec.noun, err)
	}
	if isZero(cur) {
		return zero, nil
	}
	created := cur.Meta().CreatedAt
	if err := mutate(cur); err != nil {
		return zero, err
	}
	meta := cur.Meta()
	meta.ID = id
	meta.CreatedAt = created
	meta.Touch()

	if err := s.upsert(ctx, tx, cur); err != nil {
		return zero, fmt.Errorf("failed to update %s: %w", s.codec.noun, err)
	}
	if err := tx.Commit(); err != nil {
		return zero, fmt.Errorf("failed to commit %s update: %w", s.codec.noun, err)
	}
	return cur, nil
}

func (s *Store[T]) Delete(ctx context.Context, id string) error {
	query, args, err := s.qb.Delete(s.codec.table).Prepared(true).Where(goqu.Ex{"id": id}).ToSQL()
	if err != nil {
		return fmt.Errorf("failed to build %s delete: %w", s.codec.noun, err)
	}
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to delete %s: %w", s.codec.noun, err)
	}
	return nil
}

func (s *Store[T]) GetByAttribute(ctx context.Context, name string, value any) (T, error) {
	var zero T
	col, ok := s.codec.attrs[name]
	if !ok {
		return zero, nil
	}
	e, err := s.getOne(ctx, s.db, goqu.Ex{col: value})
	if err != nil {
		return zero, fmt.Errorf("failed to get %s by %s: %w", s.codec.noun, name, err)
	}
	return e, nil
}

func (s *Store[T]) GetAllByAttribute(ctx context.Context, name string, value any) ([]T, error) {
	col, ok := s.codec.attrs[name]
	if !ok {
		return []T{}, nil
	}
	return s.list(ctx, goqu.Ex{col: value})
}

func (s *Store[T]) Clear(ctx context.Context) error {
	query, args, err := s.qb.Delete(s.codec.table).Prepared(true).ToSQL()
	if err != nil {
		return fmt.Errorf("failed to build %s clear: %w", s.codec.noun, err)
	}
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to clear %s: %w", s.codec.table, err)
	}
	return nil
}

// querier is satisfied by *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// upsert updates the row with entity's id in place, inserting it when no
// such row exists. Updating in place keeps the row's insertion position.
func (s *Store[T]) upsert(ctx context.Context, q querier, entity T) error {
	rec, err := s.codec.record(entity)
	if err != nil {
		return err
	}
	id := entity.Meta().ID

	query, args, err := s.qb.Update(s.codec.table).Prepared(true).
		Set(rec).
		Where(goqu.Ex{"id": id}).
		ToSQL()
	if err != nil {
		return fmt.Errorf("failed to build update: %w", err)
	}
	res, err := q.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if n > 0 {
		return nil
	}

	query, args, err = s.qb.Insert(s.codec.table).Prepared(true).Rows(rec).ToSQL()
	if err != nil {
		return fmt.Errorf("failed to build insert: %w", err)
	}
	_, err = q.ExecContext(ctx, query, args...)
	return err
}

func (s *Store[T]) selectFrom() *goqu.SelectDataset {
	return s.qb.From(s.codec.table).Select(s.codec.columns...).Order(goqu.C("rowid").Asc())
}

// getOne returns the first matching row, or the zero value if none match.
func (s *Store[T]) getOne(ctx context.Context, q querier, where exp.Ex) (T, error) {
	var zero T
	query, args, err := s.selectFrom().Prepared(true).Where(where).Limit(1).ToSQL()
	if err != nil {
		return zero, fmt.Errorf("failed to build select: %w", err)
	}
	e, err := s.codec.scan(q.QueryRowContext(ctx, query, args...).Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return zero, nil
	}
	if err != nil {
		return zero, err
	}
	return e, nil
}

func (s *Store[T]) list(ctx context.Context, where exp.Ex) ([]T, error) {
	ds := s.selectFrom().Prepared(true)
	if where != nil {
		ds = ds.Where(where)
	}
	query, args, err := ds.ToSQL()
	if err != nil {
		return nil, fmt.Errorf("failed to build %s list: %w", s.codec.noun, err)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", s.codec.table, err)
	}
	defer rows.Close()

	out := []T{}
	for rows.Next() {
		e, err := s.codec.scan(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan %s: %w", s.codec.noun, err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating %s: %w", s.codec.table, err)
	}
	return out, nil
}

func isZero[T domain.Entity[T]](e T) bool {
	var zero T
	return any(e) == any(zero)
}

func scanMeta(m *domain.Metadata, created, updated string) error {
	var err error
	if m.CreatedAt, err = domain.ParseTimestamp(created); err != nil {
		return fmt.Errorf("failed to parse created_at: %w", err)
	}
	if m.UpdatedAt, err = domain.ParseTimestamp(updated); err != nil {
		return fmt.Errorf("failed to parse updated_at: %w", err)
	}
	return nil
}

func metaRecord(m *domain.Metadata, rec goqu.Record) goqu.Record {
	rec["id"] = m.ID
	rec["created_at"] = m.CreatedAt.String()
	rec["updated_at"] = m.UpdatedAt.String()
	return rec
}
