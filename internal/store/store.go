package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"codelab/pkg/interfaces"
	"codelab/pkg/types"
)

const schema = `
CREATE TABLE IF NOT EXISTS credentials (
	origin     TEXT PRIMARY KEY,
	token      TEXT NOT NULL,
	updated_at TIMESTAMP NOT NULL
);
CREATE TABLE IF NOT EXISTS preferences (
	key   TEXT PRIMARY KEY,
	value TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS drafts (
	lesson_id TEXT PRIMARY KEY,
	files     TEXT NOT NULL,
	saved_at  TIMESTAMP NOT NULL
);
`

const tutorStyleKey = "tutor_style"

// Store is the local persisted session storage: one SQLite file holding
// bearer tokens per backend origin, the tutor-style preference, and the
// last successfully saved draft per lesson. The workspace never reads
// drafts on its own; they exist for offline inspection and recovery.
type Store struct {
	db *sql.DB
}

// Open opens (and if needed initializes) the store at path.
func Open(path string, timeout time.Duration) (*Store, error) {
	db, err := sql.Open("sqlite3", path+"?_busy_timeout=5000&_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("failed to open session store: %w", err)
	}

	// One writer at a time keeps SQLite happy; this is a low-traffic
	// client-side store, not a service database.
	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(timeout)

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize session store schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Token returns the stored bearer token for a backend origin.
func (s *Store) Token(ctx context.Context, origin string) (string, error) {
	var token string
	err := s.db.QueryRowContext(ctx,
		"SELECT token FROM credentials WHERE origin = ?", origin).Scan(&token)
	if err == sql.ErrNoRows {
		return "", interfaces.ErrTokenNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to read token: %w", err)
	}
	return token, nil
}

// SetToken stores or replaces the bearer token for a backend origin.
func (s *Store) SetToken(ctx context.Context, origin, token string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO credentials (origin, token, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(origin) DO UPDATE SET token = excluded.token, updated_at = excluded.updated_at`,
		origin, token, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to store token: %w", err)
	}
	return nil
}

// TutorStyle returns the stored hint-style preference, defaulting to
// socratic when none has been chosen yet.
func (s *Store) TutorStyle(ctx context.Context) (types.TutorStyle, error) {
	var value string
	err := s.db.QueryRowContext(ctx,
		"SELECT value FROM preferences WHERE key = ?", tutorStyleKey).Scan(&value)
	if err == sql.ErrNoRows {
		return types.StyleSocratic, nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read tutor style: %w", err)
	}

	style := types.TutorStyle(value)
	if !style.Valid() {
		// A stale value from an older vocabulary falls back rather than
		// poisoning every hint request.
		return types.StyleSocratic, nil
	}
	return style, nil
}

// SetTutorStyle stores the hint-style preference.
func (s *Store) SetTutorStyle(ctx context.Context, style types.TutorStyle) error {
	if !style.Valid() {
		return types.ErrInvalidStyle
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO preferences (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		tutorStyleKey, string(style))
	if err != nil {
		return fmt.Errorf("failed to store tutor style: %w", err)
	}
	return nil
}

// SaveDraft records the last successfully saved file set for a lesson.
func (s *Store) SaveDraft(ctx context.Context, lessonID string, fileSet []types.WorkspaceFile) error {
	data, err := json.Marshal(fileSet)
	if err != nil {
		return fmt.Errorf("failed to encode draft: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO drafts (lesson_id, files, saved_at) VALUES (?, ?, ?)
		ON CONFLICT(lesson_id) DO UPDATE SET files = excluded.files, saved_at = excluded.saved_at`,
		lessonID, string(data), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to store draft: %w", err)
	}
	return nil
}

// Draft returns the stored draft for a lesson.
func (s *Store) Draft(ctx context.Context, lessonID string) ([]types.WorkspaceFile, error) {
	var data string
	err := s.db.QueryRowContext(ctx,
		"SELECT files FROM drafts WHERE lesson_id = ?", lessonID).Scan(&data)
	if err == sql.ErrNoRows {
		return nil, interfaces.ErrDraftNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read draft: %w", err)
	}

	var fileSet []types.WorkspaceFile
	if err := json.Unmarshal([]byte(data), &fileSet); err != nil {
		return nil, fmt.Errorf("failed to decode draft: %w", err)
	}
	return fileSet, nil
}

// HealthCheck verifies the store is reachable.
func (s *Store) HealthCheck(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close releases the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

var _ interfaces.SessionStore = (*Store)(nil)
