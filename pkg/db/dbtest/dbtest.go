// Package dbtest opens migrated, isolated sqlite databases for repository tests.
package dbtest

import (
	"context"
	"testing"

	"github.com/angelmondragon/bookstore/pkg/config"
	"github.com/angelmondragon/bookstore/pkg/db"
	"github.com/angelmondragon/bookstore/pkg/migrate"
	"github.com/google/uuid"
)

// Open returns a fresh in-memory database with every migration applied, seed data included.
func Open(t testing.TB) *db.Client {
	t.Helper()

	ctx := context.Background()
	client, err := db.New(ctx, config.DBConfig{
		Driver: config.DriverSQLite,
		DSN:    "file:" + uuid.NewString() + "?mode=memory&cache=shared&_foreign_keys=on",
	}, nil)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = client.Close() })

	sqlDB, err := client.SQL()
	if err != nil {
		t.Fatalf("sql handle: %v", err)
	}
	if _, err := migrate.Up(ctx, sqlDB, client.Dialect(), nil); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return client
}
