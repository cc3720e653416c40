package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/mesh-intelligence/socialdb/pkg/types"
)

// table implements types.Table for one entity type on top of a transaction.
// It is only valid inside the Backend callback that created it.
type table[T types.Record[T]] struct {
	tx       *sql.Tx
	codec    *codec[T]
	newID    func() string
	writable bool
}

func (t table[T]) selectList() string {
	names := make([]string, len(t.codec.columns))
	for i, col := range t.codec.columns {
		names[i] = col.name
	}
	return strings.Join(names, ", ")
}

// where builds the WHERE clause for filters. The boolean is false when some
// filter can never match, so the caller can skip the query.
func (t table[T]) where(filters []types.Filter) (string, []any, bool, error) {
	var conditions []string
	var args []any
	for _, f := range filters {
		if err := f.Validate(); err != nil {
			return "", nil, false, err
		}
		col, ok := t.codec.column(f.Key)
		if !ok {
			return "", nil, false, nil
		}
		switch f.Op {
		case types.OpEquals:
			if col.kind == kindList {
				return "", nil, false, nil
			}
			arg, ok := sqlValue(col.kind, f.Value)
			if !ok {
				return "", nil, false, nil
			}
			conditions = append(conditions, col.name+" = ?")
			args = append(args, arg)
		case types.OpInArray:
			s, ok := f.Value.(string)
			if col.kind != kindList || !ok {
				return "", nil, false, nil
			}
			conditions = append(conditions,
				fmt.Sprintf("EXISTS (SELECT 1 FROM json_each(%s.%s) WHERE json_each.value = ?)", t.codec.table, col.name))
			args = append(args, s)
		}
	}
	if len(conditions) == 0 {
		return "", nil, true, nil
	}
	return " WHERE " + strings.Join(conditions, " AND "), args, true, nil
}

func (t table[T]) query(filters []types.Filter, limit int) ([]T, error) {
	clause, args, satisfiable, err := t.where(filters)
	if err != nil {
		return nil, err
	}
	results := []T{}
	if !satisfiable {
		return results, nil
	}

	query := "SELECT " + t.selectList() + " FROM " + t.codec.table + clause + " ORDER BY seq ASC"
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", limit)
	}

	rows, err := t.tx.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", t.codec.table, err)
	}
	defer rows.Close()

	for rows.Next() {
		rec, err := t.codec.scan(rows)
		if err != nil {
			return nil, fmt.Errorf("hydrating %s: %w", t.codec.table, err)
		}
		results = append(results, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating %s: %w", t.codec.table, err)
	}
	return results, nil
}

// FindMany returns records matching every filter, ordered by insertion.
func (t table[T]) FindMany(filters ...types.Filter) ([]T, error) {
	return t.query(filters, 0)
}

// FindOne returns the first record whose field key equals value.
func (t table[T]) FindOne(key string, value any) (T, bool, error) {
	var zero T
	found, err := t.query([]types.Filter{types.Eq(key, value)}, 1)
	if err != nil {
		return zero, false, err
	}
	if len(found) == 0 {
		return zero, false, nil
	}
	return found[0], true, nil
}

func (t table[T]) get(id string) (T, error) {
	var zero T
	row := t.tx.QueryRow("SELECT "+t.selectList()+" FROM "+t.codec.table+" WHERE id = ?", id)
	rec, err := t.codec.scan(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return zero, fmt.Errorf("%s %s: %w", t.codec.table, id, types.ErrNotFound)
		}
		return zero, fmt.Errorf("getting %s %s: %w", t.codec.table, id, err)
	}
	return rec, nil
}

func (t table[T]) exists(id string) (bool, error) {
	var one int
	err := t.tx.QueryRow("SELECT 1 FROM "+t.codec.table+" WHERE id = ?", id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("checking %s existence: %w", t.codec.table, err)
	}
	return true, nil
}

// insert writes rec with its own ID.
func (t table[T]) insert(rec T) error {
	args, err := t.codec.values(rec)
	if err != nil {
		return err
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(args)), ", ")
	_, err = t.tx.Exec(
		"INSERT INTO "+t.codec.table+" ("+t.selectList()+") VALUES ("+placeholders+")",
		args...,
	)
	if err != nil {
		return fmt.Errorf("inserting %s: %w", t.codec.table, err)
	}
	return nil
}

// Create stores rec under a freshly generated ID.
func (t table[T]) Create(rec T) (T, error) {
	var zero T
	if err := t.check(); err != nil {
		return zero, err
	}
	id := t.newID()
	if id == "" {
		return zero, fmt.Errorf("%s: generated empty id", t.codec.table)
	}
	taken, err := t.exists(id)
	if err != nil {
		return zero, err
	}
	if taken {
		return zero, fmt.Errorf("%s %s: %w", t.codec.table, id, types.ErrConflict)
	}
	stored := rec.WithID(id)
	if err := t.insert(stored); err != nil {
		return zero, err
	}
	return stored.Clone(), nil
}

// Change applies fn to a copy of the record and writes every column back.
func (t table[T]) Change(id string, fn func(*T) error) (T, error) {
	var zero T
	if err := t.check(); err != nil {
		return zero, err
	}
	current, err := t.get(id)
	if err != nil {
		return zero, err
	}
	next := current.Clone()
	if err := fn(&next); err != nil {
		return zero, err
	}
	next = next.WithID(id)

	args, err := t.codec.values(next)
	if err != nil {
		return zero, err
	}
	sets := make([]string, 0, len(t.codec.columns)-1)
	for _, col := range t.codec.columns[1:] {
		sets = append(sets, col.name+" = ?")
	}
	args = append(args[1:], id)
	if _, err := t.tx.Exec("UPDATE "+t.codec.table+" SET "+strings.Join(sets, ", ")+" WHERE id = ?", args...); err != nil {
		return zero, fmt.Errorf("updating %s %s: %w", t.codec.table, id, err)
	}
	return next.Clone(), nil
}

// Delete removes the record with the given ID and returns it.
func (t table[T]) Delete(id string) (T, error) {
	var zero T
	if err := t.check(); err != nil {
		return zero, err
	}
	current, err := t.get(id)
	if err != nil {
		return zero, err
	}
	if _, err := t.tx.Exec("DELETE FROM "+t.codec.table+" WHERE id = ?", id); err != nil {
		return zero, fmt.Errorf("deleting %s %s: %w", t.codec.table, id, err)
	}
	return current, nil
}

func (t table[T]) check() error {
	if !t.writable {
		return fmt.Errorf("%s: %w", t.codec.table, types.ErrReadOnly)
	}
	return nil
}
