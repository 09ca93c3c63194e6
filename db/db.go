// Package db embeds the schema migrations applied with goose.
package db

import "embed"

// Migrations holds the Postgres schema under MigrationsDir.
//
//go:embed migrations/*.sql
var Migrations embed.FS

// SQLiteMigrations holds the sqlite schema under SQLiteMigrationsDir.
//
//go:embed sqlite/*.sql
var SQLiteMigrations embed.FS

const (
	MigrationsDir       = "migrations"
	SQLiteMigrationsDir = "sqlite"
)
