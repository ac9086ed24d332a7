package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
)

// EnsureSchema creates the organization tables and indexes if they do not exist.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool, tables *TableNames, tablePrefix string) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS ` + tables.Folders + ` (
			id BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
			name VARCHAR(255) NOT NULL CHECK (name <> '' AND position('/' in name) = 0),
			parent_id BIGINT REFERENCES ` + tables.Folders + `(id) ON DELETE SET NULL,
			sort_order INTEGER NOT NULL DEFAULT 0,
			icon TEXT,
			color TEXT,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			deleted_at TIMESTAMPTZ,
			CHECK (parent_id IS NULL OR parent_id <> id)
		)`,
		`CREATE TABLE IF NOT EXISTS ` + tables.Agents + ` (
			row_id BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
			id UUID UNIQUE,
			name VARCHAR(255) NOT NULL UNIQUE,
			folder_id BIGINT REFERENCES ` + tables.Folders + `(id) ON DELETE SET NULL,
			sort_order INTEGER NOT NULL DEFAULT 0,
			visibility VARCHAR(16) NOT NULL DEFAULT 'PRIVATE'
				CHECK (visibility IN ('PUBLIC', 'PRIVATE', 'UNLISTED')),
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			deleted_at TIMESTAMPTZ
		)`,
		`CREATE INDEX IF NOT EXISTS idx_` + tablePrefix + `folders_parent ON ` + tables.Folders + `(parent_id) WHERE deleted_at IS NULL`,
		`CREATE INDEX IF NOT EXISTS idx_` + tablePrefix + `folders_deleted ON ` + tables.Folders + `(deleted_at) WHERE deleted_at IS NOT NULL`,
		`CREATE INDEX IF NOT EXISTS idx_` + tablePrefix + `agents_folder ON ` + tables.Agents + `(folder_id) WHERE deleted_at IS NULL`,
	}

	for _, stmt := range statements {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %s: %w", firstLine(stmt), err)
		}
	}

	return nil
}

// DropSchema drops the organization tables.
func DropSchema(ctx context.Context, pool *pgxpool.Pool, tables *TableNames) error {
	for _, table := range []string{tables.Agents, tables.Folders} {
		if _, err := pool.Exec(ctx, "DROP TABLE IF EXISTS "+table+" CASCADE"); err != nil {
			return fmt.Errorf("drop %s: %w", table, err)
		}
	}
	return nil
}

// ClearData deletes every folder and agent row, keeping the schema.
func ClearData(ctx context.Context, pool *pgxpool.Pool, tables *TableNames) error {
	for _, table := range []string{tables.Agents, tables.Folders} {
		if _, err := pool.Exec(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}
	return nil
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return strings.TrimSpace(s[:i])
	}
	return s
}
