package models

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

var (
	// ErrSlugExists signals a create against an already-taken slug.
	ErrSlugExists = errors.New("slug already exists")
	// ErrNotFound signals a lookup or delete against an unknown slug.
	ErrNotFound = errors.New("link not found")
)

type Link struct {
	ID        int64     `json:"-"`
	Slug      string    `json:"slug"`
	URL       string    `json:"url"`
	CreatedAt time.Time `json:"created_at"`
}

func CreateLink(db *sql.DB, l *Link) error {
	res, err := db.Exec(`INSERT INTO links (slug, url) VALUES (?, ?)`, l.Slug, l.URL)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrSlugExists
		}
		return fmt.Errorf("insert link: %w", err)
	}
	id, _ := res.LastInsertId()
	l.ID = id

	// Re-read to get the assigned timestamp
	return getLinkByID(db, l)
}

func GetLinkBySlug(db *sql.DB, slug string) (*Link, error) {
	l := &Link{}
	row := db.QueryRow(`SELECT id, slug, url, created_at FROM links WHERE slug = ?`, slug)
	if err := row.Scan(&l.ID, &l.Slug, &l.URL, &l.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get link: %w", err)
	}
	return l, nil
}

func ListLinks(db *sql.DB) ([]Link, error) {
	rows, err := db.Query(`SELECT id, slug, url, created_at FROM links ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("list links: %w", err)
	}
	defer rows.Close()

	var links []Link
	for rows.Next() {
		var l Link
		if err := rows.Scan(&l.ID, &l.Slug, &l.URL, &l.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan link: %w", err)
		}
		links = append(links, l)
	}
	return links, rows.Err()
}

// DeleteLinkBySlug removes a mapping. Click rows are retained; history
// for the slug stops being queryable once the link row is gone.
func DeleteLinkBySlug(db *sql.DB, slug string) error {
	res, err := db.Exec(`DELETE FROM links WHERE slug = ?`, slug)
	if err != nil {
		return fmt.Errorf("delete link: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func getLinkByID(db *sql.DB, l *Link) error {
	row := db.QueryRow(`SELECT id, slug, url, created_at FROM links WHERE id = ?`, l.ID)
	return row.Scan(&l.ID, &l.Slug, &l.URL, &l.CreatedAt)
}

// isUniqueViolation matches the SQLite extended result code, never the
// error message text.
func isUniqueViolation(err error) bool {
	var se *sqlite.Error
	return errors.As(err, &se) && se.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE
}
