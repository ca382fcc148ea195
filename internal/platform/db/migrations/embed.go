package migrations

import "embed"

// FS holds one directory of goose migrations per driver.
//
//go:embed postgres/*.sql mysql/*.sql sqlite/*.sql
var FS embed.FS
