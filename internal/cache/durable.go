package cache

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/voxlate/voxlate/internal/event"
)

// Durable is the disk-backed tier. It never evicts: translation results are
// small strings and the tier is addressed by key hash, so growth is
// acceptable. Entries survive process restarts.
type Durable struct {
	db *sql.DB
	sq sq.StatementBuilderType
}

// NewDurable wraps an opened storage database.
func NewDurable(db *sql.DB) *Durable {
	return &Durable{db: db, sq: sq.StatementBuilder}
}

// Get looks up the key hash and bumps its access counters on a hit.
func (d *Durable) Get(ctx context.Context, key event.Key) (event.Result, bool, error) {
	q := d.sq.Select("translated_text", "confidence", "backend").
		From("translation_cache").
		Where(sq.Eq{"hash": key.Hash()}).
		Limit(1)
	sqlStr, args, err := q.ToSql()
	if err != nil {
		return event.Result{}, false, fmt.Errorf("%w: build query: %v", ErrDurableUnavailable, err)
	}

	var res event.Result
	row := d.db.QueryRowContext(ctx, sqlStr, args...)
	if err := row.Scan(&res.TranslatedText, &res.Confidence, &res.Backend); err != nil {
		if err == sql.ErrNoRows {
			return event.Result{}, false, nil
		}
		return event.Result{}, false, fmt.Errorf("%w: %v", ErrDurableUnavailable, err)
	}

	// Access bookkeeping is best-effort; a failed bump never fails the read.
	upd := d.sq.Update("translation_cache").
		Set("access_count", sq.Expr("access_count + 1")).
		Set("last_accessed", time.Now().UTC().Format(time.RFC3339)).
		Where(sq.Eq{"hash": key.Hash()})
	if sqlStr, args, err := upd.ToSql(); err == nil {
		_, _ = d.db.ExecContext(ctx, sqlStr, args...)
	}

	return res, true, nil
}

// Put upserts the result under the key hash.
func (d *Durable) Put(ctx context.Context, key event.Key, res event.Result) error {
	now := time.Now().UTC().Format(time.RFC3339)
	q := d.sq.Insert("translation_cache").
		Columns("hash", "source_text", "translated_text", "source_lang", "target_lang",
			"confidence", "backend", "created_at", "last_accessed").
		Values(key.Hash(), key.Text, res.TranslatedText, key.SourceLang, key.TargetLang,
			res.Confidence, res.Backend, now, now).
		Suffix(`ON CONFLICT(hash) DO UPDATE SET
			translated_text = excluded.translated_text,
			confidence      = excluded.confidence,
			backend         = excluded.backend,
			last_accessed   = excluded.last_accessed`)
	sqlStr, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("%w: build insert: %v", ErrDurableUnavailable, err)
	}
	if _, err := d.db.ExecContext(ctx, sqlStr, args...); err != nil {
		return fmt.Errorf("%w: %v", ErrDurableUnavailable, err)
	}
	return nil
}
