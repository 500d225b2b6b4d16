package source

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// SQLite reads source rows from an SQLite database file.
type SQLite struct {
	db *sql.DB
}

var _ Querier = (*SQLite)(nil)

// OpenSQLite opens the source database at the given path.
func OpenSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open source database: %w", err)
	}
	// sql.Open is lazy; fail fast if the file is unusable.
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to source database: %w", err)
	}
	return &SQLite{db: db}, nil
}

// Query runs an arbitrary query and materializes every returned row
// into a generic Row keyed by column name.
func (s *SQLite) Query(query string, args ...any) ([]Row, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("source query failed: %w", err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed to read columns: %w", err)
	}

	var result []Row
	for rows.Next() {
		values := make([]any, len(columns))
		pointers := make([]any, len(columns))
		for i := range values {
			pointers[i] = &values[i]
		}
		if err := rows.Scan(pointers...); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}

		row := make(Row, len(columns))
		for i, name := range columns {
			row[name] = values[i]
		}
		result = append(result, row)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}
	return result, nil
}

// Count runs an aggregate count query and returns its single value.
func (s *SQLite) Count(query string, args ...any) (int, error) {
	var n int
	if err := s.db.QueryRow(query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("source count failed: %w", err)
	}
	return n, nil
}

// Close closes the underlying connection.
func (s *SQLite) Close() error {
	return s.db.Close()
}
