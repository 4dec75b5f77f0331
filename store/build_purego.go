//go:build !cgo_sqlite

package store

// This file is compiled by default. It registers the pure Go SQLite driver,
// so no C compiler is required.
//
// Driver used: modernc.org/sqlite

import (
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

const (
	// SQLiteDriverName is the database/sql driver used for the sqlite dialect
	SQLiteDriverName = "sqlite"

	// BuildMode describes the current build configuration
	BuildMode = "purego"
)

func init() {
	// sqlx only knows the cgo driver's name; modernc uses ? placeholders too.
	sqlx.BindDriver(SQLiteDriverName, sqlx.QUESTION)
}
