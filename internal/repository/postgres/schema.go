package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
)

// EnsureSchema creates tables and indexes if they don't exist
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool, tables *TableNames) error {
	if _, err := pool.Exec(ctx, `CREATE EXTENSION IF NOT EXISTS "uuid-ossp"`); err != nil {
		return fmt.Errorf("enable uuid-ossp: %w", err)
	}

	createCommunities := `
		CREATE TABLE IF NOT EXISTS ` + tables.Communities + ` (
			id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
			name TEXT NOT NULL,
			slug TEXT NOT NULL UNIQUE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)
	`
	if _, err := pool.Exec(ctx, createCommunities); err != nil {
		return fmt.Errorf("create %s: %w", tables.Communities, err)
	}

	createCourses := `
		CREATE TABLE IF NOT EXISTS ` + tables.Courses + ` (
			id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
			community_id UUID NOT NULL REFERENCES ` + tables.Communities + `(id),
			instructor_id TEXT NOT NULL,
			title TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			category TEXT NOT NULL DEFAULT '',
			target_audience TEXT NOT NULL DEFAULT '',
			content_type TEXT NOT NULL DEFAULT '',
			status TEXT NOT NULL DEFAULT 'draft',
			thumbnail TEXT NOT NULL DEFAULT '',
			chapters JSONB NOT NULL DEFAULT '[]'::jsonb,
			students TEXT[] NOT NULL DEFAULT '{}',
			rating DOUBLE PRECISION NOT NULL DEFAULT 0,
			total_ratings INTEGER NOT NULL DEFAULT 0,
			price NUMERIC(12,2) NOT NULL DEFAULT 0,
			is_free BOOLEAN NOT NULL DEFAULT false,
			tags TEXT[] NOT NULL DEFAULT '{}',
			requirements TEXT[] NOT NULL DEFAULT '{}',
			learning_outcomes TEXT[] NOT NULL DEFAULT '{}',
			sort_order INTEGER NOT NULL DEFAULT 0,
			published_at TIMESTAMPTZ,
			archived_at TIMESTAMPTZ,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			CONSTRAINT ` + tables.Courses + `_status_check CHECK (status IN ('draft', 'published', 'archived'))
		)
	`
	if _, err := pool.Exec(ctx, createCourses); err != nil {
		return fmt.Errorf("create %s: %w", tables.Courses, err)
	}

	indexes := []string{
		`CREATE INDEX IF NOT EXISTS idx_` + tables.Courses + `_community_status_order ON ` + tables.Courses + `(community_id, status, sort_order)`,
		`CREATE INDEX IF NOT EXISTS idx_` + tables.Courses + `_published ON ` + tables.Courses + `(sort_order, created_at DESC) WHERE status = 'published'`,
	}
	for _, indexSQL := range indexes {
		if _, err := pool.Exec(ctx, indexSQL); err != nil {
			return fmt.Errorf("create index: %w", err)
		}
	}

	return nil
}

// DropSchema drops every table in reverse dependency order
func DropSchema(ctx context.Context, pool *pgxpool.Pool, tables *TableNames) error {
	for _, table := range []string{tables.Courses, tables.Communities} {
		if _, err := pool.Exec(ctx, "DROP TABLE IF EXISTS "+table+" CASCADE"); err != nil {
			return fmt.Errorf("drop %s: %w", table, err)
		}
	}
	return nil
}

// TruncateAll clears all rows but keeps the schema
func TruncateAll(ctx context.Context, pool *pgxpool.Pool, tables *TableNames) error {
	sql := "TRUNCATE " + strings.Join([]string{tables.Courses, tables.Communities}, ", ") + " CASCADE"
	if _, err := pool.Exec(ctx, sql); err != nil {
		return fmt.Errorf("truncate: %w", err)
	}
	return nil
}
