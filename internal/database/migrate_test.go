package database

import (
	"strings"
	"testing"
	"testing/fstest"
)

func TestMigrationNamesSortedAndFiltered(t *testing.T) {
	fsys := fstest.MapFS{
		"migrations/002_votes.sql": {Data: []byte("SELECT 1;")},
		"migrations/001_init.sql":  {Data: []byte("SELECT 1;")},
		"migrations/README.md":     {Data: []byte("notes")},
		"migrations/old/000.sql":   {Data: []byte("SELECT 0;")},
	}
	got, err := migrationNames(fsys, "migrations")
	if err != nil {
		t.Fatalf("migrationNames: %v", err)
	}
	if strings.Join(got, ",") != "001_init.sql,002_votes.sql" {
		t.Fatalf("unexpected order %v", got)
	}
}

func TestEmbeddedMigrationsCreateCoreTables(t *testing.T) {
	names, err := migrationNames(migrationFiles, "migrations")
	if err != nil || len(names) == 0 {
		t.Fatalf("expected embedded migrations, got %v (%v)", names, err)
	}
	body, err := migrationFiles.ReadFile("migrations/" + names[0])
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	for _, table := range []string{"users", "sessions", "movies", "votes", "movie_schedules"} {
		if !strings.Contains(string(body), "CREATE TABLE IF NOT EXISTS "+table+" ") {
			t.Fatalf("missing table %s", table)
		}
	}
	if !strings.Contains(string(body), "UNIQUE KEY uq_votes_movie_user (movie_id, user_id)") {
		t.Fatalf("missing vote uniqueness")
	}
}

// Title keys are lower-cased before they are stored, so the columns must
// compare bytes; an accent-insensitive collation would merge "amélie" and
// "amelie".
func TestTitleKeyColumnsCompareBytes(t *testing.T) {
	body, err := migrationFiles.ReadFile("migrations/001_init.sql")
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	for _, col := range []string{
		"title_key            VARCHAR(255) COLLATE utf8mb4_bin NOT NULL",
		"pending_title_key    VARCHAR(255) COLLATE utf8mb4_bin AS",
	} {
		if !strings.Contains(string(body), col) {
			t.Fatalf("expected column definition %q", col)
		}
	}
}

// User ids are identity provider subjects and are not limited to UUIDs.
func TestUserIDColumnsAreWide(t *testing.T) {
	body, err := migrationFiles.ReadFile("migrations/001_init.sql")
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if strings.Contains(string(body), "user_id    CHAR(36)") || strings.Contains(string(body), "suggested_by_user_id CHAR(36)") {
		t.Fatalf("user reference columns must not be CHAR(36)")
	}
	if !strings.Contains(string(body), "id         VARCHAR(255) NOT NULL PRIMARY KEY") {
		t.Fatalf("users.id must be VARCHAR(255)")
	}
}

func TestDSN(t *testing.T) {
	dsn := DSN("app", "", "db", "3306", "movienight")
	if !strings.HasPrefix(dsn, "app@tcp(db:3306)/movienight?") {
		t.Fatalf("unexpected dsn %s", dsn)
	}
	for _, opt := range []string{"parseTime=true", "loc=UTC", "multiStatements=true"} {
		if !strings.Contains(dsn, opt) {
			t.Fatalf("dsn %s missing %s", dsn, opt)
		}
	}
	if got := DSN("app", "secret", "db", "3306", "x"); !strings.HasPrefix(got, "app:secret@") {
		t.Fatalf("unexpected dsn %s", got)
	}
}
