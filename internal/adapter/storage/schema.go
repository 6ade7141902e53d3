// internal/adapter/storage/schema.go

package storage

import (
	_ "embed"
)

//go:embed schema/postgres.sql
var postgresSchemaSQL string

//go:embed schema/sqlite_view.sql
var sqliteViewSQL string
