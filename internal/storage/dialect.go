package storage

import (
	"fmt"

	sq "github.com/Masterminds/squirrel"
)

const (
	DialectSQLite   = "sqlite"
	DialectPostgres = "postgres"
)

// Dialect isolates the SQL that differs between backends. Timestamps are
// stored as UTC unix milliseconds in both.
type Dialect interface {
	Name() string
	DriverName() string
	Placeholder() sq.PlaceholderFormat
	// Year and Month extract the UTC calendar year and month (1-12) of a
	// millisecond timestamp column as integers.
	Year(col string) string
	Month(col string) string
	// Contains renders a case-sensitive substring test with one placeholder.
	Contains(col string) string
}

type sqliteDialect struct{}

func (sqliteDialect) Name() string                      { return DialectSQLite }
func (sqliteDialect) DriverName() string                { return "sqlite" }
func (sqliteDialect) Placeholder() sq.PlaceholderFormat { return sq.Question }

func (sqliteDialect) Year(col string) string {
	return fmt.Sprintf("CAST(strftime('%%Y', %s / 1000, 'unixepoch') AS INTEGER)", col)
}

func (sqliteDialect) Month(col string) string {
	return fmt.Sprintf("CAST(strftime('%%m', %s / 1000, 'unixepoch') AS INTEGER)", col)
}

func (sqliteDialect) Contains(col string) string {
	return fmt.Sprintf("instr(%s, ?) > 0", col)
}

type postgresDialect struct{}

func (postgresDialect) Name() string                      { return DialectPostgres }
func (postgresDialect) DriverName() string                { return "pgx" }
func (postgresDialect) Placeholder() sq.PlaceholderFormat { return sq.Dollar }

func (postgresDialect) Year(col string) string {
	return fmt.Sprintf("CAST(EXTRACT(YEAR FROM (to_timestamp(%s / 1000.0) AT TIME ZONE 'UTC')) AS INTEGER)", col)
}

func (postgresDialect) Month(col string) string {
	return fmt.Sprintf("CAST(EXTRACT(MONTH FROM (to_timestamp(%s / 1000.0) AT TIME ZONE 'UTC')) AS INTEGER)", col)
}

func (postgresDialect) Contains(col string) string {
	return fmt.Sprintf("strpos(%s, ?) > 0", col)
}

// SQLite and Postgres are the supported dialects.
var (
	SQLite   Dialect = sqliteDialect{}
	Postgres Dialect = postgresDialect{}
)
