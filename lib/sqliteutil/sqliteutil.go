package sqliteutil

import (
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/tursodatabase/libsql-client-go/libsql"
	_ "modernc.org/sqlite"
)

// OpenDB opens a local sqlite database (or a remote libsql one when
// `url` is non-empty) and applies the given schema.
func OpenDB(schema, path, url string) (*sql.DB, error) {
	var db *sql.DB
	var err error

	if url != "" {
		db, err = sql.Open("libsql", url)
	} else {
		db, err = sql.Open("sqlite", fmt.Sprintf("file:%s", path))
	}
	if err != nil {
		return nil, err
	}

	_, err = db.Exec(schema)
	if err != nil && !strings.Contains(err.Error(), "already exists") {
		db.Close()
		return nil, err
	}
	return db, nil
}
