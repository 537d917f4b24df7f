// Package history persists completed translations so past sessions can be
// reviewed, searched, and exported.
package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/voxlate/voxlate/internal/event"
)

// DefaultRecentLimit caps a history listing when the caller passes no limit.
const DefaultRecentLimit = 50

// Entry is one recorded translation.
type Entry struct {
	ID             int64     `json:"id"`
	SourceText     string    `json:"source_text"`
	TranslatedText string    `json:"translated_text"`
	SourceLang     string    `json:"source_lang"`
	TargetLang     string    `json:"target_lang"`
	Mode           string    `json:"mode"`
	Backend        string    `json:"backend"`
	Confidence     float64   `json:"confidence"`
	DurationMS     int64     `json:"duration_ms"`
	CreatedAt      time.Time `json:"created_at"`
}

// Store records translations in the shared SQLite database.
type Store struct {
	db *sql.DB
	sq sq.StatementBuilderType
}

// NewStore wraps an opened storage database.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db, sq: sq.StatementBuilder}
}

// Add appends one completed translation.
func (s *Store) Add(ctx context.Context, tr *event.Translation) error {
	q := s.sq.Insert("translations").
		Columns("source_text", "translated_text", "source_lang", "target_lang",
			"mode", "backend", "confidence", "duration_ms", "created_at").
		Values(tr.SourceText, tr.TranslatedText, tr.SourceLang, tr.TargetLang,
			tr.Mode, tr.Backend, tr.Confidence, tr.DurationMS,
			tr.Timestamp.UTC().Format(time.RFC3339))
	sqlStr, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build history insert: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, sqlStr, args...); err != nil {
		return fmt.Errorf("record translation: %w", err)
	}
	return nil
}

// Recent returns the newest entries, optionally filtered by a substring match
// on either side of the translation.
func (s *Store) Recent(ctx context.Context, limit int, search string) ([]Entry, error) {
	if limit <= 0 {
		limit = DefaultRecentLimit
	}
	q := s.sq.Select("id", "source_text", "translated_text", "source_lang", "target_lang",
		"mode", "backend", "confidence", "duration_ms", "created_at").
		From("translations").
		OrderBy("id DESC").
		Limit(uint64(limit))
	if search != "" {
		pattern := "%" + search + "%"
		q = q.Where(sq.Or{
			sq.Like{"source_text": pattern},
			sq.Like{"translated_text": pattern},
		})
	}
	sqlStr, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build history query: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var e Entry
		var createdAt string
		if err := rows.Scan(&e.ID, &e.SourceText, &e.TranslatedText, &e.SourceLang, &e.TargetLang,
			&e.Mode, &e.Backend, &e.Confidence, &e.DurationMS, &createdAt); err != nil {
			return nil, fmt.Errorf("scan history row: %w", err)
		}
		e.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		out = append(out, e)
	}
	return out, rows.Err()
}

// Count returns the total number of recorded translations.
func (s *Store) Count(ctx context.Context) (int64, error) {
	var n int64
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM translations").Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count history: %w", err)
	}
	return n, nil
}

// Clear deletes all recorded translations.
func (s *Store) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM translations"); err != nil {
		return fmt.Errorf("clear history: %w", err)
	}
	return nil
}

// Export writes the full history to w as a JSON array, newest first.
func (s *Store) Export(ctx context.Context, w io.Writer) error {
	entries, err := s.Recent(ctx, 1<<20, "")
	if err != nil {
		return err
	}
	if entries == nil {
		entries = []Entry{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(entries)
}
