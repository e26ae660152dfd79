// Package storage opens bun databases for the supported dialects and
// prepares the polycontent tables.
package storage

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/mattn/go-sqlite3"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"

	"github.com/goliatone/go-polycontent/internal/content"
	"github.com/goliatone/go-polycontent/internal/schema"
	"github.com/goliatone/go-polycontent/internal/translations"
	"github.com/goliatone/go-polycontent/internal/variants"
	"github.com/goliatone/go-polycontent/internal/versions"
)

const (
	DialectSQLite   = "sqlite"
	DialectPostgres = "postgres"
)

var ErrUnsupportedDialect = errors.New("storage: unsupported dialect")

//go:embed migrations/*/*.sql
var migrationsFS embed.FS

// Options describe a database connection.
type Options struct {
	Dialect string
	DSN     string
	// MaxOpenConns caps the pool; in-memory sqlite needs 1 to share state.
	MaxOpenConns int
}

// Open connects to the database and returns a bun handle for its dialect.
func Open(ctx context.Context, opts Options) (*bun.DB, error) {
	dialect := strings.ToLower(strings.TrimSpace(opts.Dialect))

	var (
		sqlDB *sql.DB
		db    *bun.DB
		err   error
	)
	switch dialect {
	case DialectSQLite, "":
		sqlDB, err = sql.Open("sqlite3", opts.DSN)
		if err != nil {
			return nil, fmt.Errorf("storage: open sqlite: %w", err)
		}
		db = bun.NewDB(sqlDB, sqlitedialect.New())
		if opts.MaxOpenConns == 0 {
			opts.MaxOpenConns = 1
		}
	case DialectPostgres:
		sqlDB, err = sql.Open("pgx", opts.DSN)
		if err != nil {
			return nil, fmt.Errorf("storage: open postgres: %w", err)
		}
		db = bun.NewDB(sqlDB, pgdialect.New())
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedDialect, opts.Dialect)
	}
	if opts.MaxOpenConns > 0 {
		db.SetMaxOpenConns(opts.MaxOpenConns)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("storage: ping %s: %w", dialect, err)
	}
	return db, nil
}

// Models lists every table model in creation order.
func Models() []any {
	return []any{
		(*schema.ContentTypeModel)(nil),
		(*content.Record)(nil),
		(*versions.Entry)(nil),
		(*variants.VariantModel)(nil),
		(*translations.TranslationModel)(nil),
	}
}

// EnsureSchema creates missing tables from the bun models.
func EnsureSchema(ctx context.Context, db *bun.DB) error {
	for _, model := range Models() {
		if _, err := db.NewCreateTable().Model(model).IfNotExists().Exec(ctx); err != nil {
			return fmt.Errorf("storage: create table %T: %w", model, err)
		}
	}
	_, err := db.NewCreateIndex().
		Model((*versions.Entry)(nil)).
		Index("content_versions_entity_sequence_idx").
		Unique().
		IfNotExists().
		Column("entity_type", "entity_id", "sequence").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("storage: create ledger index: %w", err)
	}
	return nil
}

// MigrationRecord marks an applied SQL migration.
type MigrationRecord struct {
	bun.BaseModel `bun:"table:polycontent_migrations"`

	Name      string    `bun:"name,pk"`
	AppliedAt time.Time `bun:"applied_at,notnull"`
}

// Migrations returns the embedded SQL files for dialect in apply order.
func Migrations(dialect string) ([]string, error) {
	dir, err := migrationDir(dialect)
	if err != nil {
		return nil, err
	}
	entries, err := fs.ReadDir(migrationsFS, dir)
	if err != nil {
		return nil, fmt.Errorf("storage: read migrations: %w", err)
	}
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".sql") {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

// Migrate applies pending embedded SQL migrations and returns the names it
// ran. Each file runs in its own transaction.
func Migrate(ctx context.Context, db *bun.DB, dialect string) ([]string, error) {
	dir, err := migrationDir(dialect)
	if err != nil {
		return nil, err
	}
	names, err := Migrations(dialect)
	if err != nil {
		return nil, err
	}
	if _, err := db.NewCreateTable().Model((*MigrationRecord)(nil)).IfNotExists().Exec(ctx); err != nil {
		return nil, fmt.Errorf("storage: create migrations table: %w", err)
	}

	var applied []string
	for _, name := range names {
		done, err := db.NewSelect().Model((*MigrationRecord)(nil)).Where("name = ?", name).Exists(ctx)
		if err != nil {
			return applied, fmt.Errorf("storage: check migration %s: %w", name, err)
		}
		if done {
			continue
		}
		body, err := migrationsFS.ReadFile(path.Join(dir, name))
		if err != nil {
			return applied, fmt.Errorf("storage: read migration %s: %w", name, err)
		}
		err = db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
			for _, stmt := range splitStatements(string(body)) {
				if _, err := tx.ExecContext(ctx, stmt); err != nil {
					return err
				}
			}
			_, err := tx.NewInsert().Model(&MigrationRecord{Name: name, AppliedAt: time.Now().UTC()}).Exec(ctx)
			return err
		})
		if err != nil {
			return applied, fmt.Errorf("storage: apply migration %s: %w", name, err)
		}
		applied = append(applied, name)
	}
	return applied, nil
}

func migrationDir(dialect string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(dialect)) {
	case DialectSQLite, "":
		return "migrations/sqlite", nil
	case DialectPostgres:
		return "migrations/postgres", nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedDialect, dialect)
	}
}

func splitStatements(body string) []string {
	parts := strings.Split(body, ";")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if stmt := strings.TrimSpace(part); stmt != "" {
			out = append(out, stmt)
		}
	}
	return out
}
