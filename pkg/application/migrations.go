package application

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"sort"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"
)

// MigrationManager applies module schema files in registration order.
// Each file runs at most once, tracked in the schema_migrations table.
type MigrationManager interface {
	RegisterSchema(module string, schemaFS embed.FS, dir string)
	Apply(ctx context.Context) error
}

type schemaSource struct {
	module string
	fsys   embed.FS
	dir    string
}

func NewMigrationManager(pool *pgxpool.Pool, logger *logrus.Logger) MigrationManager {
	return &migrationManager{pool: pool, logger: logger}
}

type migrationManager struct {
	pool    *pgxpool.Pool
	logger  *logrus.Logger
	sources []schemaSource
}

func (m *migrationManager) RegisterSchema(module string, schemaFS embed.FS, dir string) {
	m.sources = append(m.sources, schemaSource{module: module, fsys: schemaFS, dir: dir})
}

func (m *migrationManager) Apply(ctx context.Context) error {
	if _, err := m.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			module     varchar(255) NOT NULL,
			filename   varchar(255) NOT NULL,
			applied_at timestamptz  NOT NULL DEFAULT now(),
			PRIMARY KEY (module, filename)
		)`); err != nil {
		return fmt.Errorf("failed to ensure schema_migrations table: %w", err)
	}

	for _, source := range m.sources {
		files, err := fs.Glob(source.fsys, source.dir+"/*.sql")
		if err != nil {
			return fmt.Errorf("failed to list schema files for module %s: %w", source.module, err)
		}
		sort.Strings(files)

		for _, file := range files {
			applied, err := m.isApplied(ctx, source.module, file)
			if err != nil {
				return err
			}
			if applied {
				continue
			}
			contents, err := source.fsys.ReadFile(file)
			if err != nil {
				return fmt.Errorf("failed to read schema file %s: %w", file, err)
			}
			if err := m.applyOne(ctx, source.module, file, string(contents)); err != nil {
				return err
			}
			m.logger.WithFields(logrus.Fields{
				"module": source.module,
				"file":   file,
			}).Info("applied schema migration")
		}
	}
	return nil
}

func (m *migrationManager) isApplied(ctx context.Context, module, filename string) (bool, error) {
	var exists bool
	err := m.pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM schema_migrations WHERE module = $1 AND filename = $2
		)`, module, filename).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check schema migration %s/%s: %w", module, filename, err)
	}
	return exists, nil
}

func (m *migrationManager) applyOne(ctx context.Context, module, filename, sql string) error {
	tx, err := m.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()
	if _, err := tx.Exec(ctx, sql); err != nil {
		return fmt.Errorf("failed to apply schema %s/%s: %w", module, filename, err)
	}
	if _, err := tx.Exec(ctx,
		`INSERT INTO schema_migrations (module, filename) VALUES ($1, $2)`,
		module, filename,
	); err != nil {
		return fmt.Errorf("failed to record schema %s/%s: %w", module, filename, err)
	}
	return tx.Commit(ctx)
}
