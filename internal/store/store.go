// Package store reads the macOS Messages database (chat.db).
//
// The database is opened read-only and never written: handles resolve to
// ROWIDs, and raw message rows come back in date order for the pipeline to
// normalize. Apple's schema details (nanosecond dates, is_from_me) stay
// behind this package.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"

	"github.com/trirpi/imessage-analysis/internal/msg"
)

// DefaultDBPath is where macOS keeps the Messages database.
const DefaultDBPath = "~/Library/Messages/chat.db"

// ErrNoHandles means the contact identifier matched nothing in the handle
// table.
var ErrNoHandles = errors.New("no handles match the contact identifier")

// Handle is one row of Apple's handle table: a ROWID and the raw identifier
// (phone number or iCloud address). One contact often has several.
type Handle struct {
	ID         int64
	Identifier string
}

// Store is the read side of chat.db.
type Store interface {
	ResolveHandles(ctx context.Context, identifier string) ([]Handle, error)
	FetchRaw(ctx context.Context, handleIDs []int64) ([]msg.Raw, error)
	Close() error
}

// SQLiteStore implements Store over a local chat.db file.
type SQLiteStore struct {
	db     *sql.DB
	dbPath string
	log    zerolog.Logger
}

// Open opens the database at path, or the default Messages location when
// path is empty. The connection is read-only.
func Open(path string, log zerolog.Logger) (Store, error) {
	if path == "" {
		path = ExpandPath(DefaultDBPath)
	}
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("locating database: %w", err)
	}

	db, err := sql.Open("sqlite", "file:"+path+"?mode=ro")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}
	if _, err := db.Exec("PRAGMA busy_timeout=5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting busy timeout: %w", err)
	}

	log.Debug().Str("path", path).Msg("opened messages database")
	return &SQLiteStore{db: db, dbPath: path, log: log}, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// ResolveHandles finds every handle whose identifier contains the normalized
// contact identifier. Phone formatting characters (spaces, parentheses,
// dashes) are stripped before matching, so "+1 (555) 123-4567" resolves the
// same as "+15551234567".
func (s *SQLiteStore) ResolveHandles(ctx context.Context, identifier string) ([]Handle, error) {
	normalized := NormalizeIdentifier(identifier)
	if normalized == "" {
		return nil, ErrNoHandles
	}

	rows, err := s.db.QueryContext(ctx,
		"SELECT ROWID, id FROM handle WHERE id LIKE ?", "%"+normalized+"%")
	if err != nil {
		return nil, fmt.Errorf("querying handles: %w", err)
	}
	defer rows.Close()

	var handles []Handle
	for rows.Next() {
		var h Handle
		if err := rows.Scan(&h.ID, &h.Identifier); err != nil {
			return nil, fmt.Errorf("scanning handle: %w", err)
		}
		handles = append(handles, h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating handles: %w", err)
	}
	if len(handles) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoHandles, identifier)
	}

	s.log.Debug().Str("identifier", identifier).Int("handles", len(handles)).
		Msg("resolved contact handles")
	return handles, nil
}

// FetchRaw returns every non-null message row for the given handles, oldest
// first. Rows come back raw; normalization happens in the msg package.
func (s *SQLiteStore) FetchRaw(ctx context.Context, handleIDs []int64) ([]msg.Raw, error) {
	if len(handleIDs) == 0 {
		return nil, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(handleIDs)), ",")
	query := fmt.Sprintf(`
		SELECT date, text, is_from_me
		FROM message
		WHERE handle_id IN (%s)
		AND text IS NOT NULL
		ORDER BY date`, placeholders)

	args := make([]any, len(handleIDs))
	for i, id := range handleIDs {
		args[i] = id
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying messages: %w", err)
	}
	defer rows.Close()

	var raw []msg.Raw
	for rows.Next() {
		var r msg.Raw
		var fromMe sql.NullInt64
		if err := rows.Scan(&r.DateNS, &r.Text, &fromMe); err != nil {
			return nil, fmt.Errorf("scanning message: %w", err)
		}
		r.FromMe = fromMe.Valid && fromMe.Int64 != 0
		raw = append(raw, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating messages: %w", err)
	}

	s.log.Debug().Int("rows", len(raw)).Msg("fetched raw messages")
	return raw, nil
}

// NormalizeIdentifier strips phone formatting characters so the identifier
// can be substring-matched against handle.id.
func NormalizeIdentifier(identifier string) string {
	r := strings.NewReplacer(" ", "", "(", "", ")", "", "-", "")
	return r.Replace(strings.TrimSpace(identifier))
}

// ExpandPath expands a leading ~ to the home directory.
func ExpandPath(path string) string {
	if len(path) > 0 && path[0] == '~' {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[1:])
	}
	return path
}
