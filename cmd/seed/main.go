// Command seed fills a database with demo links and a plausible click
// history so the dashboard and analytics API have something to show.
package main

import (
	"encoding/json"
	"fmt"
	"log"
	"math/rand"
	"os"
	"time"

	"github.com/stefanomitello/links-tracker/internal/db"
	"github.com/stefanomitello/links-tracker/internal/metrics"
	"github.com/stefanomitello/links-tracker/internal/models"
	"github.com/stefanomitello/links-tracker/internal/slug"
)

type seedLink struct {
	slug string
	url  string
	// weight controls relative click volume (higher = more clicks)
	weight float64
}

var seedLinks = []seedLink{
	{"docs", "https://example.com/docs", 5.0},
	{"blog", "https://example.com/blog", 4.0},
	{"pricing", "https://example.com/pricing", 4.5},
	{"signup", "https://example.com/signup?plan=free", 3.5},
	{"github", "https://github.com/stefanomitello", 3.0},
	{"support", "https://example.com/help", 2.2},
	{"changelog", "https://example.com/changelog", 1.8},
	{"newsletter", "https://example.com/newsletter", 1.4},
}

var referrers = []struct {
	referer string
	weight  float64
}{
	{"https://google.com/", 30},
	{"", 20}, // direct traffic
	{"https://github.com/", 15},
	{"https://twitter.com/", 8},
	{"https://reddit.com/r/golang", 7},
	{"https://news.ycombinator.com/", 5},
	{"https://linkedin.com/", 4},
}

var countries = []struct {
	country string
	weight  float64
}{
	{"US", 25},
	{"IN", 20},
	{"DE", 8},
	{"GB", 7},
	{"BR", 6},
	{"FR", 5},
	{"CA", 4},
	{"AU", 3},
	{"NL", 2},
}

var agents = []struct {
	ua     string
	weight float64
}{
	{"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36", 45},
	{"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.0 Safari/605.1.15", 15},
	{"Mozilla/5.0 (X11; Linux x86_64; rv:121.0) Gecko/20100101 Firefox/121.0", 12},
	{"Mozilla/5.0 (iPhone; CPU iPhone OS 17_0 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.0 Mobile/15E148 Safari/604.1", 15},
	{"Mozilla/5.0 (Linux; Android 14; Pixel 8) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Mobile Safari/537.36", 10},
	{"Slackbot-LinkExpanding 1.0 (+https://api.slack.com/robots)", 3},
}

var campaigns = []struct {
	source, medium, campaign string
	weight                   float64
}{
	{"", "", "", 60}, // organic
	{"newsletter", "email", "launch", 15},
	{"twitter", "social", "launch", 10},
	{"google", "cpc", "brand", 10},
	{"partner", "referral", "spring-promo", 5},
}

func pick[T any](rng *rand.Rand, weights []float64, items []T) T {
	var total float64
	for _, w := range weights {
		total += w
	}
	r := rng.Float64() * total
	for i, w := range weights {
		r -= w
		if r <= 0 {
			return items[i]
		}
	}
	return items[len(items)-1]
}

func main() {
	dbPath := os.Getenv("LINKS_DB_PATH")
	if dbPath == "" {
		dbPath = "./links.db"
	}

	database, err := db.Open(dbPath)
	if err != nil {
		log.Fatalf("open db: %v", err)
	}
	defer database.Close()

	rng := rand.New(rand.NewSource(42)) // deterministic seed
	now := time.Now().UTC()
	threeMonthsAgo := now.AddDate(0, -3, 0)

	fmt.Println("Seeding links...")

	all := make([]seedLink, 0, len(seedLinks)+4)
	all = append(all, seedLinks...)
	// A few throwaway campaign links with generated slugs
	for range 4 {
		s, err := slug.Generate()
		if err != nil {
			log.Fatalf("generate slug: %v", err)
		}
		all = append(all, seedLink{s, "https://example.com/promo", 1.0})
	}

	created := make([]models.Link, 0, len(all))
	for i, sl := range all {
		link := models.Link{Slug: sl.slug, URL: sl.url}
		if err := models.CreateLink(database, &link); err != nil {
			log.Fatalf("create link %q: %v", sl.slug, err)
		}

		// Backdate creation, spread over the first weeks
		createdAt := threeMonthsAgo.Add(time.Duration(i*2) * 24 * time.Hour)
		if _, err := database.Exec(`UPDATE links SET created_at = ? WHERE id = ?`, createdAt, link.ID); err != nil {
			log.Fatalf("backdate link %q: %v", sl.slug, err)
		}
		link.CreatedAt = createdAt
		created = append(created, link)
		fmt.Printf("  [%2d] /%s → %s\n", link.ID, sl.slug, sl.url)
	}

	fmt.Println("\nGenerating clicks...")

	refWeights := make([]float64, len(referrers))
	for i, r := range referrers {
		refWeights[i] = r.weight
	}
	countryWeights := make([]float64, len(countries))
	for i, c := range countries {
		countryWeights[i] = c.weight
	}
	uaWeights := make([]float64, len(agents))
	for i, a := range agents {
		uaWeights[i] = a.weight
	}
	campWeights := make([]float64, len(campaigns))
	for i, c := range campaigns {
		campWeights[i] = c.weight
	}

	total := 0
	for i, link := range created {
		count := int(all[i].weight * float64(200+rng.Intn(100)))
		clicks := make([]models.Click, 0, count)
		for range count {
			span := now.Sub(link.CreatedAt)
			clickedAt := link.CreatedAt.Add(time.Duration(rng.Float64() * float64(span)))

			ref := pick(rng, refWeights, referrers)
			camp := pick(rng, campWeights, campaigns)
			p := metrics.Payload{
				IP:          fmt.Sprintf("203.0.113.%d", rng.Intn(255)),
				UserAgent:   pick(rng, uaWeights, agents).ua,
				Referer:     ref.referer,
				Country:     pick(rng, countryWeights, countries).country,
				UTMSource:   camp.source,
				UTMMedium:   camp.medium,
				UTMCampaign: camp.campaign,
			}
			blob, _ := json.Marshal(p)
			clicks = append(clicks, models.Click{
				LinkID:    link.ID,
				ClickedAt: clickedAt,
				Metrics:   blob,
			})
		}
		if err := models.BatchInsertClicks(database, clicks); err != nil {
			log.Fatalf("insert clicks for %q: %v", link.Slug, err)
		}
		total += count
		fmt.Printf("  /%s: %d clicks\n", link.Slug, count)
	}

	fmt.Printf("\nDone: %d links, %d clicks in %s\n", len(created), total, dbPath)
}
