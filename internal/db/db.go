package db

import "database/sql"

// DB wraps the shared sql handle so feature packages depend on a
// single local type instead of database/sql directly.
type DB struct {
	*sql.DB
}
