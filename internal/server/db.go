package server

import (
	"database/sql"
	"strings"

	_ "modernc.org/sqlite"
)

var dbPragmas = []string{
	"busy_timeout(5000)",
	"journal_mode(WAL)",
	"foreign_keys(ON)",
}

// OpenDB opens the SQLite database at path. Pragmas travel in the DSN so
// every pooled connection gets them; busy_timeout makes concurrent writers
// wait on SQLite's own lock instead of failing with SQLITE_BUSY.
func OpenDB(path string) (*sql.DB, error) {
	var dsn strings.Builder
	dsn.WriteString(path)
	for i, p := range dbPragmas {
		if i == 0 {
			dsn.WriteString("?")
		} else {
			dsn.WriteString("&")
		}
		dsn.WriteString("_pragma=" + p)
	}

	db, err := sql.Open("sqlite", dsn.String())
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}
