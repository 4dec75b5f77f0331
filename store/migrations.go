package store

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/semver/v3"
	"github.com/jmoiron/sqlx"
)

// Migration is one schema step. Each dialect lists its own statements,
// executed in order.
type Migration struct {
	Version string
	SQLite  []string
	MySQL   []string
}

func (m Migration) statements(d Dialect) []string {
	if d == DialectMySQL {
		return m.MySQL
	}
	return m.SQLite
}

// AllMigrations contains all database migrations in order
var AllMigrations = []Migration{
	{
		Version: "1.0.0",
		SQLite: []string{
			`CREATE TABLE IF NOT EXISTS products (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				name TEXT NOT NULL,
				description TEXT NOT NULL,
				price TEXT NOT NULL,
				retired INTEGER NOT NULL DEFAULT 0,
				created_on TEXT NOT NULL,
				last_updated TEXT NOT NULL
			)`,
			`CREATE TABLE IF NOT EXISTS categories (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				name TEXT NOT NULL,
				description TEXT NOT NULL,
				retired INTEGER NOT NULL DEFAULT 0,
				created_on TEXT NOT NULL,
				last_updated TEXT NOT NULL
			)`,
			`CREATE TABLE IF NOT EXISTS tags (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				name TEXT NOT NULL,
				description TEXT NOT NULL,
				retired INTEGER NOT NULL DEFAULT 0,
				created_on TEXT NOT NULL,
				last_updated TEXT NOT NULL
			)`,
			`CREATE TABLE IF NOT EXISTS product_categories (
				product_id INTEGER NOT NULL,
				category_id INTEGER NOT NULL,
				PRIMARY KEY (product_id, category_id)
			)`,
			`CREATE TABLE IF NOT EXISTS category_products (
				category_id INTEGER NOT NULL,
				product_id INTEGER NOT NULL,
				PRIMARY KEY (category_id, product_id)
			)`,
			`CREATE TABLE IF NOT EXISTS product_tags (
				product_id INTEGER NOT NULL,
				tag_id INTEGER NOT NULL,
				PRIMARY KEY (product_id, tag_id)
			)`,
			`CREATE TABLE IF NOT EXISTS tag_products (
				tag_id INTEGER NOT NULL,
				product_id INTEGER NOT NULL,
				PRIMARY KEY (tag_id, product_id)
			)`,
			`CREATE TABLE IF NOT EXISTS orders (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				status TEXT NOT NULL,
				created_on TEXT NOT NULL,
				last_updated TEXT NOT NULL
			)`,
			`CREATE TABLE IF NOT EXISTS order_line_items (
				order_id INTEGER NOT NULL,
				line_no INTEGER NOT NULL,
				product_id INTEGER NOT NULL,
				product_name TEXT NOT NULL,
				product_description TEXT NOT NULL,
				product_price TEXT NOT NULL,
				categories TEXT NOT NULL,
				tags TEXT NOT NULL,
				quantity INTEGER NOT NULL,
				PRIMARY KEY (order_id, line_no)
			)`,
		},
		MySQL: []string{
			`CREATE TABLE IF NOT EXISTS products (
				id BIGINT NOT NULL AUTO_INCREMENT PRIMARY KEY,
				name VARCHAR(255) NOT NULL,
				description TEXT NOT NULL,
				price DECIMAL(19,4) NOT NULL,
				retired TINYINT(1) NOT NULL DEFAULT 0,
				created_on VARCHAR(40) NOT NULL,
				last_updated VARCHAR(40) NOT NULL
			)`,
			`CREATE TABLE IF NOT EXISTS categories (
				id BIGINT NOT NULL AUTO_INCREMENT PRIMARY KEY,
				name VARCHAR(255) NOT NULL,
				description TEXT NOT NULL,
				retired TINYINT(1) NOT NULL DEFAULT 0,
				created_on VARCHAR(40) NOT NULL,
				last_updated VARCHAR(40) NOT NULL
			)`,
			`CREATE TABLE IF NOT EXISTS tags (
				id BIGINT NOT NULL AUTO_INCREMENT PRIMARY KEY,
				name VARCHAR(255) NOT NULL,
				description TEXT NOT NULL,
				retired TINYINT(1) NOT NULL DEFAULT 0,
				created_on VARCHAR(40) NOT NULL,
				last_updated VARCHAR(40) NOT NULL
			)`,
			`CREATE TABLE IF NOT EXISTS product_categories (
				product_id BIGINT NOT NULL,
				category_id BIGINT NOT NULL,
				PRIMARY KEY (product_id, category_id)
			)`,
			`CREATE TABLE IF NOT EXISTS category_products (
				category_id BIGINT NOT NULL,
				product_id BIGINT NOT NULL,
				PRIMARY KEY (category_id, product_id)
			)`,
			`CREATE TABLE IF NOT EXISTS product_tags (
				product_id BIGINT NOT NULL,
				tag_id BIGINT NOT NULL,
				PRIMARY KEY (product_id, tag_id)
			)`,
			`CREATE TABLE IF NOT EXISTS tag_products (
				tag_id BIGINT NOT NULL,
				product_id BIGINT NOT NULL,
				PRIMARY KEY (tag_id, product_id)
			)`,
			`CREATE TABLE IF NOT EXISTS orders (
				id BIGINT NOT NULL AUTO_INCREMENT PRIMARY KEY,
				status VARCHAR(32) NOT NULL,
				created_on VARCHAR(40) NOT NULL,
				last_updated VARCHAR(40) NOT NULL
			)`,
			`CREATE TABLE IF NOT EXISTS order_line_items (
				order_id BIGINT NOT NULL,
				line_no INT NOT NULL,
				product_id BIGINT NOT NULL,
				product_name VARCHAR(255) NOT NULL,
				product_description TEXT NOT NULL,
				product_price DECIMAL(19,4) NOT NULL,
				categories TEXT NOT NULL,
				tags TEXT NOT NULL,
				quantity INT NOT NULL,
				PRIMARY KEY (order_id, line_no)
			)`,
		},
	},
	{
		Version: "1.1.0",
		SQLite: []string{
			`CREATE TABLE IF NOT EXISTS payments (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				order_id INTEGER NOT NULL,
				amount TEXT NOT NULL,
				order_total TEXT NOT NULL,
				paid_on TEXT NOT NULL
			)`,
			`CREATE INDEX IF NOT EXISTS idx_product_categories_category ON product_categories (category_id)`,
			`CREATE INDEX IF NOT EXISTS idx_product_tags_tag ON product_tags (tag_id)`,
		},
		MySQL: []string{
			`CREATE TABLE IF NOT EXISTS payments (
				id BIGINT NOT NULL AUTO_INCREMENT PRIMARY KEY,
				order_id BIGINT NOT NULL,
				amount DECIMAL(19,4) NOT NULL,
				order_total DECIMAL(19,4) NOT NULL,
				paid_on VARCHAR(40) NOT NULL
			)`,
			`CREATE INDEX idx_product_categories_category ON product_categories (category_id)`,
			`CREATE INDEX idx_product_tags_tag ON product_tags (tag_id)`,
		},
	},
}

// CurrentSchemaVersion is the version of the last migration.
var CurrentSchemaVersion = AllMigrations[len(AllMigrations)-1].Version

// ApplyMigrations runs all pending migrations
func ApplyMigrations(ctx context.Context, db *sqlx.DB, d Dialect) error {
	if _, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS schema_version (
		version VARCHAR(32) NOT NULL PRIMARY KEY,
		applied_at VARCHAR(40) NOT NULL
	)`); err != nil {
		return fmt.Errorf("failed to create schema_version table: %w", err)
	}

	currentVersion, err := SchemaVersion(ctx, db)
	if err != nil {
		return err
	}

	// Run migrations in order
	for _, migration := range AllMigrations {
		migrationVersion, err := semver.NewVersion(migration.Version)
		if err != nil {
			return fmt.Errorf("invalid migration version %s: %w", migration.Version, err)
		}
		if !currentVersion.LessThan(migrationVersion) {
			continue // Already applied
		}

		tx, err := db.BeginTxx(ctx, nil)
		if err != nil {
			return err
		}
		for _, stmt := range migration.statements(d) {
			if _, err := tx.ExecContext(ctx, stmt); err != nil {
				_ = tx.Rollback()
				return fmt.Errorf("failed to apply migration %s: %w", migration.Version, err)
			}
		}
		if _, err := tx.ExecContext(ctx,
			tx.Rebind("INSERT INTO schema_version (version, applied_at) VALUES (?, ?)"),
			migration.Version, dbTime(time.Now().UTC())); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to record migration %s: %w", migration.Version, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("failed to commit migration %s: %w", migration.Version, err)
		}

		currentVersion = migrationVersion
	}
	return nil
}

// SchemaVersion returns the highest applied migration version, or 0.0.0.
func SchemaVersion(ctx context.Context, db *sqlx.DB) (*semver.Version, error) {
	var applied []string
	if err := db.SelectContext(ctx, &applied, "SELECT version FROM schema_version"); err != nil {
		return nil, fmt.Errorf("failed to read schema_version: %w", err)
	}
	current := semver.MustParse("0.0.0")
	for _, v := range applied {
		parsed, err := semver.NewVersion(v)
		if err != nil {
			return nil, fmt.Errorf("invalid current schema version %s: %w", v, err)
		}
		if parsed.GreaterThan(current) {
			current = parsed
		}
	}
	return current, nil
}
