// Package migrations встраивает SQL-миграции базы истории прогонов
package migrations

import "embed"

// PostgresMigrations goose-миграции, каталог "postgres"
//
//go:embed postgres/*.sql
var PostgresMigrations embed.FS

// PostgresDir каталог миграций внутри PostgresMigrations
const PostgresDir = "postgres"
