// Package db embeds the Postgres schema migrations.
package db

import "embed"

// Migrations holds the files under migrations/, applied in version order.
//
//go:embed migrations/*.sql
var Migrations embed.FS
