package recordstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Store is the record store client: a thin capability wrapper over the
// hosted relational store. Writes go through Upsert so every save is a
// single atomic statement; authorization and entitlement questions go
// through RPC so the database stays authoritative for them.
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// Upsert inserts or replaces a record keyed by conflictKey in one round
// trip and returns the stored row, including server-computed columns.
func (s *Store) Upsert(ctx context.Context, table string, record map[string]interface{}, conflictKey string) (map[string]interface{}, error) {
	query, args, err := buildUpsertSQL(table, record, conflictKey)
	if err != nil {
		return nil, err
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("upsert into %s failed: %w", table, err)
	}
	defer rows.Close()

	stored, err := scanOne(rows)
	if err != nil {
		return nil, fmt.Errorf("upsert into %s failed: %w", table, err)
	}

	return stored, nil
}

// Fetch returns the record matching id, or found=false when no row
// matches. Absence is never reported as an error.
func (s *Store) Fetch(ctx context.Context, table, keyColumn string, id interface{}) (map[string]interface{}, bool, error) {
	query, err := buildFetchSQL(table, keyColumn)
	if err != nil {
		return nil, false, err
	}

	rows, err := s.pool.Query(ctx, query, id)
	if err != nil {
		return nil, false, fmt.Errorf("fetch from %s failed: %w", table, err)
	}
	defer rows.Close()

	record, err := scanOne(rows)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("fetch from %s failed: %w", table, err)
	}

	return record, true, nil
}

// RPC invokes a database function with named arguments and returns its
// scalar result.
func (s *Store) RPC(ctx context.Context, name string, args map[string]interface{}) (interface{}, error) {
	query, values, err := buildRPCSQL(name, args)
	if err != nil {
		return nil, err
	}

	var result interface{}
	if err := s.pool.QueryRow(ctx, query, values...).Scan(&result); err != nil {
		return nil, fmt.Errorf("rpc %s failed: %w", name, err)
	}

	return result, nil
}

// scanOne reads the first row of a result set into a column map.
func scanOne(rows pgx.Rows) (map[string]interface{}, error) {
	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, err
		}
		return nil, pgx.ErrNoRows
	}

	values, err := rows.Values()
	if err != nil {
		return nil, err
	}

	record := make(map[string]interface{}, len(values))
	for i, fd := range rows.FieldDescriptions() {
		record[string(fd.Name)] = values[i]
	}

	return record, nil
}
