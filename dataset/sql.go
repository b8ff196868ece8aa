package dataset

import (
	"context"
	"database/sql"
	"time"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"github.com/rotisserie/eris"

	"github.com/spektr-org/menulens/normalize"
)

// Supported database/sql driver names.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite3"
)

// SQLSource runs one query and maps every result column to a raw field.
type SQLSource struct {
	db    *sql.DB
	query string
	args  []any
}

// OpenSQL opens a Postgres or SQLite database and checks the connection.
func OpenSQL(ctx context.Context, driver, dsn, query string, args ...any) (*SQLSource, error) {
	switch driver {
	case DriverPostgres, DriverSQLite:
	default:
		return nil, eris.Errorf("dataset: unsupported driver %q", driver)
	}
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, eris.Wrapf(err, "dataset: open %s", driver)
	}
	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, eris.Wrapf(err, "dataset: ping %s", driver)
	}
	if driver == DriverSQLite {
		db.SetMaxOpenConns(1)
	}
	return NewSQLSource(db, query, args...), nil
}

// NewSQLSource wraps an existing connection.
func NewSQLSource(db *sql.DB, query string, args ...any) *SQLSource {
	return &SQLSource{db: db, query: query, args: args}
}

// Fetch runs the query. NULL columns are left out of the row.
func (s *SQLSource) Fetch(ctx context.Context) ([]normalize.RawRow, error) {
	rows, err := s.db.QueryContext(ctx, s.query, s.args...)
	if err != nil {
		return nil, eris.Wrap(err, "dataset: query")
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, eris.Wrap(err, "dataset: columns")
	}

	var out []normalize.RawRow
	for rows.Next() {
		values := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, eris.Wrap(err, "dataset: scan")
		}
		row := make(normalize.RawRow, len(cols))
		for i, c := range cols {
			switch v := values[i].(type) {
			case nil:
			case []byte:
				row[c] = string(v)
			default:
				row[c] = v
			}
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "dataset: iterate rows")
	}
	return out, nil
}

// Close releases the connection.
func (s *SQLSource) Close() error {
	return s.db.Close()
}
