//go:build sqlite_cgo

package storage

import (
	// cgo SQLite driver, registered as "sqlite3". Selected with
	// -tags sqlite_cgo.
	_ "github.com/mattn/go-sqlite3"
)

const sqliteDriverName = "sqlite3"
