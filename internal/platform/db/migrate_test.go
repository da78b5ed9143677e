package db

import (
	"testing"
	"testing/fstest"
)

func TestListMigrationsOrdersByVersion(t *testing.T) {
	fsys := fstest.MapFS{
		"0002_requests.sql": {Data: []byte("SELECT 2")},
		"0001_init.sql":     {Data: []byte("SELECT 1")},
		"README.md":         {Data: []byte("notes")},
		"archive/0000.sql":  {Data: []byte("SELECT 0")},
	}

	migrations, err := listMigrations(fsys)
	if err != nil {
		t.Fatalf("list migrations: %v", err)
	}
	if len(migrations) != 2 {
		t.Fatalf("expected 2 migrations, got %d", len(migrations))
	}
	if migrations[0].Version != "0001_init" || migrations[1].Version != "0002_requests" {
		t.Fatalf("unexpected order: %+v", migrations)
	}
}

func TestListMigrationsRepoSchema(t *testing.T) {
	migrations, err := listMigrations(osDir(t, "../../../migrations"))
	if err != nil {
		t.Fatalf("list migrations: %v", err)
	}
	if len(migrations) == 0 {
		t.Fatal("expected repository migrations")
	}
}
