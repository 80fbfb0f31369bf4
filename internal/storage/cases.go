package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/hoanghai1803/casescout/internal/models"
)

// execer is satisfied by both *sql.DB and *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// UpsertCase inserts c, or refreshes the title, date and last_seen_at of the
// row with the same URL. A stored date is never replaced by a missing one.
// It reports whether a new row was inserted.
func (s *Store) UpsertCase(ctx context.Context, c models.Case, sourceURL string) (bool, error) {
	return upsertCase(ctx, s.db, c, sourceURL)
}

// SaveCases upserts all cases inside a single transaction and returns how
// many of them were new.
func (s *Store) SaveCases(ctx context.Context, cases []models.Case, sourceURL string) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // rollback after commit is a no-op

	inserted := 0
	for _, c := range cases {
		isNew, err := upsertCase(ctx, tx, c, sourceURL)
		if err != nil {
			return 0, err
		}
		if isNew {
			inserted++
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing transaction: %w", err)
	}
	return inserted, nil
}

func upsertCase(ctx context.Context, db execer, c models.Case, sourceURL string) (bool, error) {
	res, err := db.ExecContext(ctx,
		`INSERT INTO cases (url, title, published_at, source_url)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT(url) DO NOTHING`,
		c.URL, c.Title, c.PublishedAt, nullableString(sourceURL),
	)
	if err != nil {
		return false, fmt.Errorf("inserting case %q: %w", c.URL, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("checking rows affected for case %q: %w", c.URL, err)
	}
	if n > 0 {
		return true, nil
	}

	if _, err := db.ExecContext(ctx,
		`UPDATE cases SET
			title        = ?,
			published_at = COALESCE(?, published_at),
			source_url   = COALESCE(?, source_url),
			last_seen_at = datetime('now')
		 WHERE url = ?`,
		c.Title, c.PublishedAt, nullableString(sourceURL), c.URL,
	); err != nil {
		return false, fmt.Errorf("updating case %q: %w", c.URL, err)
	}
	return false, nil
}

// GetCaseByURL returns the archived case with the given URL.
// Returns nil, ErrNotFound if no matching row exists.
func (s *Store) GetCaseByURL(ctx context.Context, url string) (*models.StoredCase, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, url, title, published_at, source_url, first_seen_at, last_seen_at
		 FROM cases WHERE url = ?`, url)

	c, err := scanCase(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("getting case by url: %w", err)
	}
	return c, nil
}

// ListCases returns archived cases, newest publication date first and
// undated ones last, limited to limit rows.
func (s *Store) ListCases(ctx context.Context, limit int) ([]models.StoredCase, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, url, title, published_at, source_url, first_seen_at, last_seen_at
		 FROM cases
		 ORDER BY published_at IS NULL, published_at DESC, id
		 LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying cases: %w", err)
	}
	defer rows.Close()

	cases := []models.StoredCase{}
	for rows.Next() {
		c, err := scanCase(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning case row: %w", err)
		}
		cases = append(cases, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating case rows: %w", err)
	}
	return cases, nil
}

// scanner is a minimal interface satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanCase(row scanner) (*models.StoredCase, error) {
	var (
		c           models.StoredCase
		publishedAt sql.NullString
		sourceURL   sql.NullString
		firstSeenAt string
		lastSeenAt  string
	)

	if err := row.Scan(
		&c.ID, &c.URL, &c.Title, &publishedAt, &sourceURL, &firstSeenAt, &lastSeenAt,
	); err != nil {
		return nil, err
	}

	c.PublishedAt = nullStringToPtr(publishedAt)
	c.SourceURL = sourceURL.String
	c.FirstSeenAt = parseTime(firstSeenAt)
	c.LastSeenAt = parseTime(lastSeenAt)
	return &c, nil
}
