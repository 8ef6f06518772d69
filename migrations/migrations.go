// Package migrations embeds the schema migrations, one directory per
// database driver.
package migrations

import "embed"

//go:embed postgres/*.sql sqlite3/*.sql
var FS embed.FS
