package store

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
)

// newTestDB builds a minimal chat.db lookalike with a couple of handles and
// messages.
func newTestDB(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "chat.db")

	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("opening test db: %v", err)
	}
	defer db.Close()

	stmts := []string{
		`CREATE TABLE handle (ROWID INTEGER PRIMARY KEY, id TEXT)`,
		`CREATE TABLE message (
			ROWID INTEGER PRIMARY KEY,
			date INTEGER,
			text TEXT,
			is_from_me INTEGER,
			handle_id INTEGER
		)`,
		`INSERT INTO handle (ROWID, id) VALUES (1, '+15551234567')`,
		`INSERT INTO handle (ROWID, id) VALUES (2, 'person@example.com')`,
		`INSERT INTO message (date, text, is_from_me, handle_id) VALUES
			(200, 'second', 0, 1),
			(100, 'first', 1, 1),
			(300, NULL, 0, 1),
			(400, 'other contact', 0, 2)`,
	}
	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			t.Fatalf("setting up test db: %v", err)
		}
	}
	return path
}

func openTest(t *testing.T) Store {
	t.Helper()
	s, err := Open(newTestDB(t), zerolog.Nop())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestResolveHandlesNormalizesFormatting(t *testing.T) {
	s := openTest(t)

	handles, err := s.ResolveHandles(context.Background(), "+1 (555) 123-4567")
	if err != nil {
		t.Fatalf("ResolveHandles: %v", err)
	}
	if len(handles) != 1 || handles[0].ID != 1 {
		t.Errorf("handles = %+v, want ROWID 1", handles)
	}
}

func TestResolveHandlesNoMatch(t *testing.T) {
	s := openTest(t)

	_, err := s.ResolveHandles(context.Background(), "+4400000000")
	if !errors.Is(err, ErrNoHandles) {
		t.Errorf("err = %v, want ErrNoHandles", err)
	}
}

func TestFetchRawOrdersByDateAndSkipsNull(t *testing.T) {
	s := openTest(t)

	raw, err := s.FetchRaw(context.Background(), []int64{1})
	if err != nil {
		t.Fatalf("FetchRaw: %v", err)
	}
	// NULL text row excluded, other contact's row excluded.
	if len(raw) != 2 {
		t.Fatalf("len(raw) = %d, want 2", len(raw))
	}
	if raw[0].Text.String != "first" || raw[1].Text.String != "second" {
		t.Errorf("rows out of date order: %+v", raw)
	}
	if !raw[0].FromMe || raw[1].FromMe {
		t.Errorf("is_from_me mapping wrong: %+v", raw)
	}
}

func TestFetchRawEmptyHandles(t *testing.T) {
	s := openTest(t)
	raw, err := s.FetchRaw(context.Background(), nil)
	if err != nil || raw != nil {
		t.Errorf("FetchRaw(nil) = %v, %v, want nil, nil", raw, err)
	}
}

func TestOpenMissingFile(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "absent.db"), zerolog.Nop())
	if err == nil {
		t.Fatal("expected error for missing database file")
	}
}

func TestNormalizeIdentifier(t *testing.T) {
	tests := []struct{ in, want string }{
		{"+1 (555) 123-4567", "+15551234567"},
		{"  person@example.com ", "person@example.com"},
		{"555-0100", "5550100"},
	}
	for _, tt := range tests {
		if got := NormalizeIdentifier(tt.in); got != tt.want {
			t.Errorf("NormalizeIdentifier(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
