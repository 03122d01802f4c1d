// Package storage persists extracted products and reviews in SQLite.
// Reviews have no stable site-side identifier, so deduplication relies
// on a unique index over (product, date, rating, text prefix).
package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/sirupsen/logrus"
	_ "modernc.org/sqlite"

	"review-scraper/pkg/extract"
	"review-scraper/pkg/models"
)

const schema = `
CREATE TABLE IF NOT EXISTS products (
    id               INTEGER PRIMARY KEY AUTOINCREMENT,
    url              TEXT NOT NULL UNIQUE,
    external_id      TEXT,
    title            TEXT NOT NULL,
    brand            TEXT,
    sku              TEXT,
    description_html TEXT,
    description_text TEXT,
    specs_json       TEXT,
    created_at       TEXT NOT NULL DEFAULT (datetime('now')),
    updated_at       TEXT NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS reviews (
    id          INTEGER PRIMARY KEY AUTOINCREMENT,
    product_id  INTEGER NOT NULL REFERENCES products(id),
    source_url  TEXT NOT NULL,
    rating      INTEGER,
    review_date TEXT,
    text        TEXT,
    pros        TEXT,
    cons        TEXT,
    created_at  TEXT NOT NULL DEFAULT (datetime('now'))
);

CREATE UNIQUE INDEX IF NOT EXISTS reviews_dedup ON reviews (
    product_id,
    coalesce(review_date, ''),
    coalesce(rating, -1),
    substr(coalesce(text, ''), 1, 80)
);
`

// Store wraps the SQLite handle. Safe for concurrent use; SQLite's own
// locking serializes writers.
type Store struct {
	db  *sql.DB
	log *logrus.Entry
}

// Open opens (creating if needed) the database at path and applies the
// schema.
func Open(path string, log *logrus.Entry) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database %q: %w", path, err)
	}
	for _, pragma := range []string{"PRAGMA journal_mode = WAL", "PRAGMA foreign_keys = ON"} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("configuring database: %w", err)
		}
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("applying schema: %w", err)
	}
	return &Store{db: db, log: log}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// UpsertProduct inserts the product or refreshes an existing row keyed
// by URL, returning the row id either way.
func (s *Store) UpsertProduct(ctx context.Context, p models.Product) (int64, error) {
	specsJSON, err := json.Marshal(p.Specs)
	if err != nil {
		return 0, fmt.Errorf("encoding specs: %w", err)
	}

	var id int64
	err = s.db.QueryRowContext(ctx, `
		INSERT INTO products (url, external_id, title, brand, sku, description_html, description_text, specs_json)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(url) DO UPDATE SET
			external_id      = excluded.external_id,
			title            = excluded.title,
			brand            = excluded.brand,
			sku              = excluded.sku,
			description_html = excluded.description_html,
			description_text = excluded.description_text,
			specs_json       = excluded.specs_json,
			updated_at       = datetime('now')
		RETURNING id`,
		p.URL, p.ExternalID, p.Title, p.Brand, p.SKU,
		p.DescriptionHTML, p.DescriptionText, string(specsJSON),
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("upserting product %q: %w", p.URL, err)
	}
	return id, nil
}

// InsertReviews stores the reviews for one product, skipping rows the
// dedup index already holds. Returns how many rows were actually added.
// Localized dates are normalized to ISO form so the index treats the
// same date in either locale as equal.
func (s *Store) InsertReviews(ctx context.Context, productID int64, reviews []models.Review) (int64, error) {
	if len(reviews) == 0 {
		return 0, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("starting review transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR IGNORE INTO reviews (product_id, source_url, rating, review_date, text, pros, cons)
		VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("preparing review insert: %w", err)
	}
	defer stmt.Close()

	var inserted int64
	for _, r := range reviews {
		res, err := stmt.ExecContext(ctx, productID, r.SourceURL, r.Rating, isoDate(r.Date), r.Text, r.Pros, r.Cons)
		if err != nil {
			return inserted, fmt.Errorf("inserting review: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return inserted, fmt.Errorf("reading insert result: %w", err)
		}
		inserted += n
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing reviews: %w", err)
	}

	if skipped := int64(len(reviews)) - inserted; skipped > 0 {
		s.log.WithFields(logrus.Fields{"product_id": productID, "skipped": skipped}).
			Debug("Duplicate reviews skipped")
	}
	return inserted, nil
}

// isoDate converts a raw localized date to "2006-01-02", keeping the raw
// string when it cannot be parsed. Absent stays NULL.
func isoDate(raw *string) *string {
	if raw == nil {
		return nil
	}
	if t, ok := extract.ParseReviewDate(*raw); ok {
		s := t.Format("2006-01-02")
		return &s
	}
	return raw
}
