// Package analytics persists click events off the redirect hot path.
// Events are pushed without blocking, buffered in memory, and flushed to
// the store in batches; a failed flush is logged and never reaches the
// client.
package analytics

import (
	"database/sql"
	"encoding/json"
	"log"
	"time"

	"github.com/stefanomitello/links-tracker/internal/geo"
	"github.com/stefanomitello/links-tracker/internal/metrics"
	"github.com/stefanomitello/links-tracker/internal/models"
)

type RawClick struct {
	LinkID    int64
	ClickedAt time.Time
	Payload   metrics.Payload
}

type Collector struct {
	ch   chan RawClick
	stop chan struct{}
	done chan struct{}
	db   *sql.DB
	geo  *geo.Reader
}

func NewCollector(db *sql.DB, geoReader *geo.Reader, bufferSize int, flushInterval time.Duration) *Collector {
	c := &Collector{
		ch:   make(chan RawClick, bufferSize),
		stop: make(chan struct{}),
		done: make(chan struct{}),
		db:   db,
		geo:  geoReader,
	}
	go c.run(flushInterval)
	return c
}

// Push sends a click event non-blocking. Drops the event if buffer is full.
func (c *Collector) Push(click RawClick) {
	select {
	case c.ch <- click:
	default:
		// buffer full, drop event
	}
}

// Shutdown flushes remaining events and returns.
func (c *Collector) Shutdown() {
	close(c.stop)
	<-c.done
}

func (c *Collector) run(interval time.Duration) {
	defer close(c.done)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.flush()
		case <-c.stop:
			c.flush()
			return
		}
	}
}

func (c *Collector) flush() {
	var batch []RawClick
	for {
		select {
		case raw := <-c.ch:
			batch = append(batch, raw)
		default:
			goto done
		}
	}
done:
	if len(batch) == 0 {
		return
	}

	clicks := make([]models.Click, 0, len(batch))
	for _, raw := range batch {
		clicks = append(clicks, c.enrich(raw))
	}

	if err := models.BatchInsertClicks(c.db, clicks); err != nil {
		log.Printf("analytics flush error: %v", err)
	} else {
		log.Printf("analytics: flushed %d clicks", len(clicks))
	}
}

// enrich fills missing geolocation from the MaxMind reader. Edge-supplied
// hints always win; the local lookup only runs when none were present.
func (c *Collector) enrich(raw RawClick) models.Click {
	p := raw.Payload
	if p.Country == "" && p.City == "" && p.Latitude == nil {
		if g := c.geo.Lookup(p.IP); !g.IsZero() {
			p.Country = g.Country
			p.City = g.City
			lat, lon := g.Latitude, g.Longitude
			p.Latitude = &lat
			p.Longitude = &lon
		}
	}

	blob, err := json.Marshal(p)
	if err != nil {
		blob = []byte(`{}`)
	}

	return models.Click{
		LinkID:    raw.LinkID,
		ClickedAt: raw.ClickedAt,
		Metrics:   blob,
	}
}
