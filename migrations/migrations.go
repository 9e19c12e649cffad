// README: Embedded schema for the session and booking stores.
package migrations

import _ "embed"

//go:embed postgres.sql
var Postgres string

//go:embed sqlite.sql
var SQLite string
