package catalog

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/lib/pq"

	"github.com/viant/vecindex/db/sqliteutil"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverMySQL    = "mysql"
)

const (
	pqUniqueViolation    = "23505"
	mysqlDuplicateEntry  = 1062
	mysqlParseTimeOption = "parseTime=true"
)

type dialect struct {
	driver string
}

func newDialect(driver string) (dialect, error) {
	switch strings.ToLower(driver) {
	case DriverSQLite, "sqlite3":
		return dialect{driver: DriverSQLite}, nil
	case DriverPostgres, "postgresql", "pg":
		return dialect{driver: DriverPostgres}, nil
	case DriverMySQL:
		return dialect{driver: DriverMySQL}, nil
	}
	return dialect{}, fmt.Errorf("unsupported catalog driver %q", driver)
}

// bind rewrites ? placeholders for drivers using numbered parameters.
func (d dialect) bind(query string) string {
	if d.driver != DriverPostgres {
		return query
	}
	var builder strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			builder.WriteString(fmt.Sprintf("$%d", n))
			continue
		}
		builder.WriteRune(r)
	}
	return builder.String()
}

// dsn adds the parameters the catalog depends on.
func (d dialect) dsn(dsn string) string {
	switch d.driver {
	case DriverSQLite:
		return sqliteutil.EnsurePragmas(dsn, sqliteutil.DefaultOptions())
	case DriverMySQL:
		if !strings.Contains(dsn, "parseTime=") {
			if strings.Contains(dsn, "?") {
				return dsn + "&" + mysqlParseTimeOption
			}
			return dsn + "?" + mysqlParseTimeOption
		}
	}
	return dsn
}

// isUniqueViolation inspects the driver error code, never the message.
func (d dialect) isUniqueViolation(err error) bool {
	switch d.driver {
	case DriverSQLite:
		return sqliteutil.IsUniqueViolation(err)
	case DriverPostgres:
		var pqErr *pq.Error
		return errors.As(err, &pqErr) && pqErr.Code == pqUniqueViolation
	case DriverMySQL:
		var myErr *mysql.MySQLError
		return errors.As(err, &myErr) && myErr.Number == mysqlDuplicateEntry
	}
	return false
}

func (d dialect) schema() string {
	return `CREATE TABLE IF NOT EXISTS vector_index (
	name            VARCHAR(255) NOT NULL PRIMARY KEY,
	embedding_model VARCHAR(255) NOT NULL,
	text_splitter   VARCHAR(64)  NOT NULL,
	vector_db       VARCHAR(64)  NOT NULL,
	dedup_fields    TEXT,
	created_at      TIMESTAMP    NOT NULL
)`
}
