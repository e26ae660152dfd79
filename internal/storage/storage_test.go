package storage_test

import (
	"context"
	"errors"
	"testing"

	"github.com/goliatone/go-polycontent/internal/storage"
	"github.com/goliatone/go-polycontent/pkg/testsupport"
)

func TestOpenRejectsUnknownDialect(t *testing.T) {
	_, err := storage.Open(context.Background(), storage.Options{Dialect: "oracle", DSN: "x"})
	if !errors.Is(err, storage.ErrUnsupportedDialect) {
		t.Fatalf("expected ErrUnsupportedDialect, got %v", err)
	}
}

func TestMigrationsAreEmbeddedPerDialect(t *testing.T) {
	for _, dialect := range []string{storage.DialectSQLite, storage.DialectPostgres} {
		names, err := storage.Migrations(dialect)
		if err != nil {
			t.Fatalf("%s: %v", dialect, err)
		}
		if len(names) == 0 || names[0] != "0001_polycontent.sql" {
			t.Fatalf("%s: unexpected migrations %v", dialect, names)
		}
	}
}

func TestMigrateAppliesOnce(t *testing.T) {
	ctx := context.Background()
	db, err := storage.Open(ctx, storage.Options{Dialect: storage.DialectSQLite, DSN: testsupport.MemoryDSN(t)})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	applied, err := storage.Migrate(ctx, db, storage.DialectSQLite)
	if err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if len(applied) != 1 {
		t.Fatalf("expected one migration applied, got %v", applied)
	}

	applied, err = storage.Migrate(ctx, db, storage.DialectSQLite)
	if err != nil || len(applied) != 0 {
		t.Fatalf("expected no pending migrations, got %v %v", applied, err)
	}

	// model-driven creation is a no-op on a migrated database
	if err := storage.EnsureSchema(ctx, db); err != nil {
		t.Fatalf("ensure schema: %v", err)
	}
}
