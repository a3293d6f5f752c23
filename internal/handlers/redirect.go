package handlers

import (
	"database/sql"
	"errors"
	"log"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/stefanomitello/links-tracker/internal/analytics"
	"github.com/stefanomitello/links-tracker/internal/cache"
	"github.com/stefanomitello/links-tracker/internal/config"
	"github.com/stefanomitello/links-tracker/internal/metrics"
	"github.com/stefanomitello/links-tracker/internal/models"
)

// RedirectHandler resolves slug paths. It classifies the request, looks
// up the mapping, schedules the click event, and answers with a
// temporary redirect. The event write never delays or fails the response.
type RedirectHandler struct {
	DB        *sql.DB
	Cache     *cache.LinkCache
	Collector *analytics.Collector
	Assets    http.Handler
	Fallback  string
}

func (h *RedirectHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/")
	if path == "" {
		h.unresolved(w, r)
		return
	}

	// A literal dot marks a static asset path (favicon.ico, app.js).
	// Accepted trade-off: a slug containing a dot can never be created,
	// so this heuristic cannot shadow real mappings.
	if strings.Contains(path, ".") {
		h.Assets.ServeHTTP(w, r)
		return
	}

	// Slugs are single path segments; anything nested is unresolvable.
	if strings.Contains(path, "/") {
		h.unresolved(w, r)
		return
	}

	link, found := h.Cache.Get(path)
	if !found {
		var err error
		link, err = models.GetLinkBySlug(h.DB, path)
		if err != nil {
			if errors.Is(err, models.ErrNotFound) {
				h.unresolved(w, r)
				return
			}
			log.Printf("redirect: lookup %q: %v", path, err)
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		h.Cache.Set(path, link)
	}

	query := r.URL.Query()
	dest, err := forwardURL(link.URL, query)
	if err != nil {
		// Stored URLs are validated at create time, so this is a
		// programming error, not client input.
		log.Printf("redirect: destination %q: %v", link.URL, err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	// chi's RealIP middleware already sets RemoteAddr from X-Forwarded-For/X-Real-IP
	ip, _, _ := net.SplitHostPort(r.RemoteAddr)
	if ip == "" {
		ip = r.RemoteAddr
	}

	h.Collector.Push(analytics.RawClick{
		LinkID:    link.ID,
		ClickedAt: time.Now().UTC(),
		Payload:   metrics.Extract(ip, r.Header, query, metrics.HintFromHeaders(r.Header)),
	})

	// Always temporary: destinations are operator-editable and browsers
	// cache permanent redirects indefinitely.
	http.Redirect(w, r, dest, http.StatusFound)
}

// unresolved applies the configured policy for paths that match no slug.
func (h *RedirectHandler) unresolved(w http.ResponseWriter, r *http.Request) {
	if h.Fallback == config.FallbackAssets && h.Assets != nil {
		h.Assets.ServeHTTP(w, r)
		return
	}
	http.NotFound(w, r)
}

// forwardURL appends the request's non-UTM query parameters to the
// destination. utm_* parameters are consumed by the click event and never
// leak into the forwarded URL.
func forwardURL(dest string, query url.Values) (string, error) {
	u, err := url.Parse(dest)
	if err != nil {
		return "", err
	}
	q := u.Query()
	for key, vals := range query {
		if strings.HasPrefix(key, "utm_") {
			continue
		}
		for _, v := range vals {
			q.Add(key, v)
		}
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}
