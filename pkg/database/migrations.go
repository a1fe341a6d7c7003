// pkg/database/migrations.go
package database

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"netreliability/pkg/config"
	"netreliability/pkg/logger"
)

// Migrator применяет goose-миграции из встроенной файловой системы
type Migrator struct {
	pool       *pgxpool.Pool
	migrations fs.FS
	dir        string
}

// NewMigrator создаёт мигратор для каталога dir внутри migrations
func NewMigrator(pool *pgxpool.Pool, migrations fs.FS, dir string) *Migrator {
	return &Migrator{
		pool:       pool,
		migrations: migrations,
		dir:        dir,
	}
}

// withGoose открывает database/sql поверх пула и настраивает goose
func (m *Migrator) withGoose(fn func(db *sql.DB) error) error {
	db := stdlib.OpenDBFromPool(m.pool)
	defer db.Close()

	goose.SetBaseFS(m.migrations)
	defer goose.SetBaseFS(nil)

	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("failed to set dialect: %w", err)
	}
	return fn(db)
}

// Up применяет все ещё не применённые миграции
func (m *Migrator) Up(ctx context.Context) error {
	err := m.withGoose(func(db *sql.DB) error {
		return goose.UpContext(ctx, db, m.dir)
	})
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	logger.WithComponent("database").Info("migrations applied")
	return nil
}

// Down откатывает последнюю миграцию
func (m *Migrator) Down(ctx context.Context) error {
	err := m.withGoose(func(db *sql.DB) error {
		return goose.DownContext(ctx, db, m.dir)
	})
	if err != nil {
		return fmt.Errorf("failed to rollback migration: %w", err)
	}

	logger.WithComponent("database").Info("migration rolled back")
	return nil
}

// Version возвращает номер последней применённой миграции
func (m *Migrator) Version(ctx context.Context) (int64, error) {
	var version int64
	err := m.withGoose(func(db *sql.DB) error {
		v, err := goose.GetDBVersionContext(ctx, db)
		version = v
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("failed to read migration version: %w", err)
	}
	return version, nil
}

// RunMigrations применяет миграции, если это разрешено конфигурацией
func RunMigrations(ctx context.Context, pool *pgxpool.Pool, cfg *config.DatabaseConfig, migrations fs.FS, dir string) error {
	if !cfg.AutoMigrate {
		logger.WithComponent("database").Debug("auto-migration is disabled")
		return nil
	}
	return NewMigrator(pool, migrations, dir).Up(ctx)
}
