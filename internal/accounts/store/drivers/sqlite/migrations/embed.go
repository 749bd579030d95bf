// Package migrations embeds the SQL migration files so they ship inside the
// compiled binary and can be applied with golang-migrate's iofs source.
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS
