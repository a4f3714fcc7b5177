// Package sqliteutil holds helpers shared by the SQLite backed catalog and
// vector store.
package sqliteutil

import (
	"fmt"
	"strings"
)

// Options controls the connection parameters appended to a SQLite DSN.
type Options struct {
	// WAL enables write-ahead logging.
	WAL bool
	// BusyTimeoutMS bounds how long a writer waits for the database lock.
	BusyTimeoutMS int
	// ImmediateTx opens every transaction with BEGIN IMMEDIATE so concurrent
	// writers serialize on the lock instead of failing on upgrade.
	ImmediateTx bool
}

// DefaultOptions are used by the catalog and the sqlite vector store.
func DefaultOptions() Options {
	return Options{WAL: true, BusyTimeoutMS: 5000, ImmediateTx: true}
}

// EnsurePragmas appends SQLite pragmas to the DSN when missing.
// It is a no-op for in-memory databases.
func EnsurePragmas(dsn string, opts Options) string {
	if dsn == "" {
		return dsn
	}
	lower := strings.ToLower(dsn)
	if dsn == ":memory:" || strings.HasPrefix(lower, "file::memory:") {
		return dsn
	}
	if opts.WAL && !strings.Contains(lower, "_pragma=journal_mode") {
		dsn = addParam(dsn, "_pragma", "journal_mode(WAL)")
	}
	if opts.BusyTimeoutMS > 0 && !strings.Contains(lower, "_pragma=busy_timeout") {
		dsn = addParam(dsn, "_pragma", fmt.Sprintf("busy_timeout(%d)", opts.BusyTimeoutMS))
	}
	if opts.ImmediateTx && !strings.Contains(lower, "_txlock=") {
		dsn = addParam(dsn, "_txlock", "immediate")
	}
	return dsn
}

func addParam(dsn, key, value string) string {
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + key + "=" + value
}
