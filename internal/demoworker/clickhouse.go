package demoworker

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"

	_ "github.com/ClickHouse/clickhouse-go/v2" // registers the "clickhouse" database/sql driver
)

// ErrMissingQuery is returned when the request carries no "query" parameter.
var ErrMissingQuery = errors.New("demoworker: missing query parameter")

// ClickHouseWorker issues the request's "query" parameter against a real
// ClickHouse instance and returns each row as a map keyed by column name.
type ClickHouseWorker struct {
	db *sql.DB
}

// NewClickHouseWorker opens a connection pool against dsn. The connection
// is lazy: Open only validates the DSN, the first query establishes the
// actual network connection.
func NewClickHouseWorker(dsn string) (*ClickHouseWorker, error) {
	db, err := sql.Open("clickhouse", dsn)
	if err != nil {
		return nil, fmt.Errorf("demoworker: open clickhouse: %w", err)
	}
	return &ClickHouseWorker{db: db}, nil
}

// Close releases the underlying connection pool.
func (w *ClickHouseWorker) Close() error {
	return w.db.Close()
}

// Run executes query["query"] and returns its result set.
func (w *ClickHouseWorker) Run(ctx context.Context, query url.Values) (any, error) {
	sqlText := query.Get("query")
	if sqlText == "" {
		return nil, ErrMissingQuery
	}

	rows, err := w.db.QueryContext(ctx, sqlText)
	if err != nil {
		return nil, fmt.Errorf("demoworker: query failed: %w", err)
	}
	defer rows.Close()

	return scanRows(rows)
}

func scanRows(rows *sql.Rows) ([]map[string]any, error) {
	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("demoworker: read columns: %w", err)
	}

	var results []map[string]any
	for rows.Next() {
		values := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("demoworker: scan row: %w", err)
		}

		row := make(map[string]any, len(cols))
		for i, col := range cols {
			row[col] = values[i]
		}
		results = append(results, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("demoworker: iterate rows: %w", err)
	}
	return results, nil
}
