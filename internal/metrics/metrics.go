// Package metrics turns inbound request metadata into the click-event
// payload persisted alongside each redirect. Extraction is a pure
// transformation: no storage or network access, and missing optional
// inputs simply leave fields absent.
package metrics

import (
	"net/http"
	"net/url"
	"strconv"

	"github.com/mssola/useragent"
)

// GeoHint carries upstream-trusted geolocation, typically stamped onto
// the request by the fronting proxy or CDN.
type GeoHint struct {
	Country   string
	City      string
	Latitude  *float64
	Longitude *float64
}

func (g GeoHint) IsZero() bool {
	return g.Country == "" && g.City == "" && g.Latitude == nil && g.Longitude == nil
}

// HintFromHeaders reads the X-Geo-* headers set by a trusted edge.
// Malformed coordinates are dropped, not surfaced.
func HintFromHeaders(h http.Header) GeoHint {
	hint := GeoHint{
		Country: h.Get("X-Geo-Country"),
		City:    h.Get("X-Geo-City"),
	}
	if lat, err := strconv.ParseFloat(h.Get("X-Geo-Latitude"), 64); err == nil {
		hint.Latitude = &lat
	}
	if lon, err := strconv.ParseFloat(h.Get("X-Geo-Longitude"), 64); err == nil {
		hint.Longitude = &lon
	}
	return hint
}

// Payload is the persisted click-event blob. Every field is optional;
// downstream consumers must treat additions as safe and removals as
// breaking.
type Payload struct {
	IP             string   `json:"ip,omitempty"`
	UserAgent      string   `json:"user_agent,omitempty"`
	Referer        string   `json:"referer,omitempty"`
	RefererDomain  string   `json:"referer_domain,omitempty"`
	Country        string   `json:"country,omitempty"`
	City           string   `json:"city,omitempty"`
	Latitude       *float64 `json:"latitude,omitempty"`
	Longitude      *float64 `json:"longitude,omitempty"`
	Browser        string   `json:"browser,omitempty"`
	BrowserVersion string   `json:"browser_version,omitempty"`
	OS             string   `json:"os,omitempty"`
	DeviceType     string   `json:"device_type,omitempty"`
	UTMSource      string   `json:"utm_source,omitempty"`
	UTMMedium      string   `json:"utm_medium,omitempty"`
	UTMCampaign    string   `json:"utm_campaign,omitempty"`
	UTMTerm        string   `json:"utm_term,omitempty"`
	UTMContent     string   `json:"utm_content,omitempty"`
	UTMPurpose     string   `json:"utm_purpose,omitempty"`
}

// Extract builds the payload from request metadata. The query's utm_*
// parameters are captured here; stripping them from the forwarded URL is
// the resolver's job.
func Extract(ip string, h http.Header, query url.Values, hint GeoHint) Payload {
	p := Payload{
		IP:          ip,
		UserAgent:   h.Get("User-Agent"),
		Referer:     h.Get("Referer"),
		Country:     hint.Country,
		City:        hint.City,
		Latitude:    hint.Latitude,
		Longitude:   hint.Longitude,
		UTMSource:   query.Get("utm_source"),
		UTMMedium:   query.Get("utm_medium"),
		UTMCampaign: query.Get("utm_campaign"),
		UTMTerm:     query.Get("utm_term"),
		UTMContent:  query.Get("utm_content"),
		UTMPurpose:  query.Get("utm_purpose"),
	}

	if p.Referer != "" {
		if u, err := url.Parse(p.Referer); err == nil {
			p.RefererDomain = u.Host
		}
	}

	if p.UserAgent != "" {
		ua := useragent.New(p.UserAgent)
		p.Browser, p.BrowserVersion = ua.Browser()
		p.OS = ua.OS()
		switch {
		case IsBot(p.UserAgent):
			p.DeviceType = "bot"
		case ua.Mobile():
			p.DeviceType = "mobile"
		default:
			p.DeviceType = "desktop"
		}
	}

	return p
}
