package models

import (
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/stefanomitello/links-tracker/internal/db"
)

func testDB(t *testing.T) *sql.DB {
	t.Helper()
	database, err := db.Open(":memory:")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { database.Close() })
	return database
}

func TestCreateLink_SetsIDAndTimestamp(t *testing.T) {
	d := testDB(t)
	l := &Link{Slug: "abc", URL: "https://example.com"}

	if err := CreateLink(d, l); err != nil {
		t.Fatal(err)
	}
	if l.ID <= 0 {
		t.Errorf("ID = %d, want > 0", l.ID)
	}
	if l.CreatedAt.IsZero() {
		t.Error("CreatedAt is zero")
	}
}

func TestCreateLink_DuplicateSlug(t *testing.T) {
	d := testDB(t)
	if err := CreateLink(d, &Link{Slug: "dup", URL: "https://a.com"}); err != nil {
		t.Fatal(err)
	}

	err := CreateLink(d, &Link{Slug: "dup", URL: "https://b.com"})
	if !errors.Is(err, ErrSlugExists) {
		t.Fatalf("err = %v, want ErrSlugExists", err)
	}

	// Exactly one row stored, the first one wins
	got, err := GetLinkBySlug(d, "dup")
	if err != nil {
		t.Fatal(err)
	}
	if got.URL != "https://a.com" {
		t.Errorf("url = %q, want the first insert to win", got.URL)
	}
}

func TestGetLinkBySlug_RoundTrip(t *testing.T) {
	d := testDB(t)
	orig := &Link{Slug: "found", URL: "https://example.com/page"}
	if err := CreateLink(d, orig); err != nil {
		t.Fatal(err)
	}

	got, err := GetLinkBySlug(d, "found")
	if err != nil {
		t.Fatal(err)
	}
	if got.ID != orig.ID {
		t.Errorf("ID = %d, want %d", got.ID, orig.ID)
	}
	if got.URL != "https://example.com/page" {
		t.Errorf("URL = %q, want %q", got.URL, "https://example.com/page")
	}
}

func TestGetLinkBySlug_NotFound(t *testing.T) {
	d := testDB(t)
	_, err := GetLinkBySlug(d, "nope")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestListLinks_NewestFirst(t *testing.T) {
	d := testDB(t)
	for i := range 3 {
		l := &Link{Slug: fmt.Sprintf("l%d", i), URL: "https://example.com"}
		if err := CreateLink(d, l); err != nil {
			t.Fatal(err)
		}
		// Force distinct, ascending timestamps
		if _, err := d.Exec(`UPDATE links SET created_at = datetime('now', ?) WHERE id = ?`, fmt.Sprintf("+%d seconds", i), l.ID); err != nil {
			t.Fatal(err)
		}
	}

	links, err := ListLinks(d)
	if err != nil {
		t.Fatal(err)
	}
	if len(links) != 3 {
		t.Fatalf("len = %d, want 3", len(links))
	}
	if links[0].Slug != "l2" || links[2].Slug != "l0" {
		t.Errorf("order = [%s %s %s], want newest first", links[0].Slug, links[1].Slug, links[2].Slug)
	}
}

func TestDeleteLinkBySlug(t *testing.T) {
	d := testDB(t)
	if err := CreateLink(d, &Link{Slug: "gone", URL: "https://example.com"}); err != nil {
		t.Fatal(err)
	}

	if err := DeleteLinkBySlug(d, "gone"); err != nil {
		t.Fatal(err)
	}

	if _, err := GetLinkBySlug(d, "gone"); !errors.Is(err, ErrNotFound) {
		t.Errorf("lookup after delete: err = %v, want ErrNotFound", err)
	}

	links, err := ListLinks(d)
	if err != nil {
		t.Fatal(err)
	}
	if len(links) != 0 {
		t.Errorf("len = %d, want 0 after delete", len(links))
	}
}

func TestDeleteLinkBySlug_Unknown(t *testing.T) {
	d := testDB(t)
	// Deleting an unknown slug is an explicit not-found, not a no-op
	if err := DeleteLinkBySlug(d, "never-existed"); !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestDeleteThenRecreate(t *testing.T) {
	d := testDB(t)
	if err := CreateLink(d, &Link{Slug: "cycle", URL: "https://old.example.com"}); err != nil {
		t.Fatal(err)
	}
	if err := DeleteLinkBySlug(d, "cycle"); err != nil {
		t.Fatal(err)
	}
	if err := CreateLink(d, &Link{Slug: "cycle", URL: "https://new.example.com"}); err != nil {
		t.Fatalf("recreate after delete: %v", err)
	}

	got, err := GetLinkBySlug(d, "cycle")
	if err != nil {
		t.Fatal(err)
	}
	if got.URL != "https://new.example.com" {
		t.Errorf("url = %q, want the recreated destination", got.URL)
	}
}
