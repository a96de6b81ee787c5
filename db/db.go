package db

import _ "embed"

// InitPGSchema creates the holdings table and its indexes. It is safe to run repeatedly.
//
//go:embed init_pg_db.sql
var InitPGSchema string
