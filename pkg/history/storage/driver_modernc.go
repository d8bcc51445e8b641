//go:build !sqlite_cgo

package storage

import (
	// Pure-Go SQLite driver, registered as "sqlite". Keeps the default
	// build cgo-free.
	_ "modernc.org/sqlite"
)

const sqliteDriverName = "sqlite"
