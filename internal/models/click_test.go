package models

import (
	"encoding/json"
	"testing"
	"time"
)

func TestBatchInsertClicks_RoundTrip(t *testing.T) {
	d := testDB(t)
	l := &Link{Slug: "clicked", URL: "https://example.com"}
	if err := CreateLink(d, l); err != nil {
		t.Fatal(err)
	}

	now := time.Now().UTC()
	clicks := []Click{
		{LinkID: l.ID, ClickedAt: now, Metrics: json.RawMessage(`{"utm_source":"news"}`)},
		{LinkID: l.ID, ClickedAt: now.Add(time.Second), Metrics: json.RawMessage(`{"ip":"203.0.113.9"}`)},
	}
	if err := BatchInsertClicks(d, clicks); err != nil {
		t.Fatal(err)
	}

	got, err := ListClicksByLink(d, l.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}

	// Newest first
	var first map[string]string
	if err := json.Unmarshal(got[0].Metrics, &first); err != nil {
		t.Fatalf("metrics blob is not valid JSON: %v", err)
	}
	if first["ip"] != "203.0.113.9" {
		t.Errorf("first event metrics = %s, want the later event first", got[0].Metrics)
	}
}

func TestBatchInsertClicks_EmptyMetricsStoredAsObject(t *testing.T) {
	d := testDB(t)
	l := &Link{Slug: "bare", URL: "https://example.com"}
	if err := CreateLink(d, l); err != nil {
		t.Fatal(err)
	}

	if err := BatchInsertClicks(d, []Click{{LinkID: l.ID, ClickedAt: time.Now().UTC()}}); err != nil {
		t.Fatal(err)
	}

	got, err := ListClicksByLink(d, l.ID)
	if err != nil {
		t.Fatal(err)
	}
	if string(got[0].Metrics) != "{}" {
		t.Errorf("metrics = %s, want {}", got[0].Metrics)
	}
}

func TestListClicksByLink_SameTimestampStableOrder(t *testing.T) {
	d := testDB(t)
	l := &Link{Slug: "burst", URL: "https://example.com"}
	if err := CreateLink(d, l); err != nil {
		t.Fatal(err)
	}

	at := time.Now().UTC().Truncate(time.Second)
	clicks := []Click{
		{LinkID: l.ID, ClickedAt: at, Metrics: json.RawMessage(`{"utm_source":"first"}`)},
		{LinkID: l.ID, ClickedAt: at, Metrics: json.RawMessage(`{"utm_source":"second"}`)},
	}
	if err := BatchInsertClicks(d, clicks); err != nil {
		t.Fatal(err)
	}

	got, err := ListClicksByLink(d, l.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	// Equal timestamps fall back to reverse insertion order
	if got[0].ID < got[1].ID {
		t.Errorf("order = [%d %d], want higher id first", got[0].ID, got[1].ID)
	}
}

func TestListClicksByLink_ScopedToLink(t *testing.T) {
	d := testDB(t)
	a := &Link{Slug: "a", URL: "https://a.example.com"}
	b := &Link{Slug: "b", URL: "https://b.example.com"}
	for _, l := range []*Link{a, b} {
		if err := CreateLink(d, l); err != nil {
			t.Fatal(err)
		}
	}

	now := time.Now().UTC()
	if err := BatchInsertClicks(d, []Click{
		{LinkID: a.ID, ClickedAt: now},
		{LinkID: a.ID, ClickedAt: now},
		{LinkID: b.ID, ClickedAt: now},
	}); err != nil {
		t.Fatal(err)
	}

	countA, err := ClickCountForLink(d, a.ID)
	if err != nil {
		t.Fatal(err)
	}
	if countA != 2 {
		t.Errorf("count(a) = %d, want 2", countA)
	}

	gotB, err := ListClicksByLink(d, b.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(gotB) != 1 {
		t.Errorf("len(b) = %d, want 1", len(gotB))
	}
}
