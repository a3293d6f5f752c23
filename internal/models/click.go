package models

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"
)

// Click is one recorded resolution of a slug. Metrics is an opaque JSON
// blob; the store writes it once and never parses it.
type Click struct {
	ID        int64           `json:"id"`
	LinkID    int64           `json:"-"`
	ClickedAt time.Time       `json:"clicked_at"`
	Metrics   json.RawMessage `json:"metrics"`
}

func BatchInsertClicks(db *sql.DB, clicks []Click) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`INSERT INTO clicks (link_id, clicked_at, metrics) VALUES (?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare: %w", err)
	}
	defer stmt.Close()

	for _, c := range clicks {
		metrics := c.Metrics
		if len(metrics) == 0 {
			metrics = json.RawMessage(`{}`)
		}
		if _, err := stmt.Exec(c.LinkID, c.ClickedAt, string(metrics)); err != nil {
			return fmt.Errorf("insert click: %w", err)
		}
	}

	return tx.Commit()
}

// ListClicksByLink returns a link's click history, newest first. The id
// tiebreak keeps same-timestamp events in stable reverse-insertion order.
func ListClicksByLink(db *sql.DB, linkID int64) ([]Click, error) {
	rows, err := db.Query(
		`SELECT id, link_id, clicked_at, metrics FROM clicks WHERE link_id = ? ORDER BY clicked_at DESC, id DESC`,
		linkID,
	)
	if err != nil {
		return nil, fmt.Errorf("list clicks: %w", err)
	}
	defer rows.Close()

	var clicks []Click
	for rows.Next() {
		var c Click
		var metrics string
		if err := rows.Scan(&c.ID, &c.LinkID, &c.ClickedAt, &metrics); err != nil {
			return nil, fmt.Errorf("scan click: %w", err)
		}
		c.Metrics = json.RawMessage(metrics)
		clicks = append(clicks, c)
	}
	return clicks, rows.Err()
}

func ClickCountForLink(db *sql.DB, linkID int64) (int, error) {
	var count int
	err := db.QueryRow(`SELECT COUNT(*) FROM clicks WHERE link_id = ?`, linkID).Scan(&count)
	return count, err
}
