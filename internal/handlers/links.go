package handlers

import (
	"database/sql"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"github.com/stefanomitello/links-tracker/internal/cache"
	"github.com/stefanomitello/links-tracker/internal/models"
	"github.com/stefanomitello/links-tracker/internal/slug"
)

type LinkHandler struct {
	DB    *sql.DB
	Cache *cache.LinkCache
}

type linkRequest struct {
	Slug string `json:"slug"`
	URL  string `json:"url"`
}

func (h *LinkHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req linkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid JSON", http.StatusBadRequest)
		return
	}

	if req.Slug == "" || req.URL == "" {
		jsonError(w, "slug and url are required", http.StatusBadRequest)
		return
	}
	if !slug.IsValid(req.Slug) {
		jsonError(w, "slug may only contain letters, digits, - and _", http.StatusBadRequest)
		return
	}
	if !isValidDestination(req.URL) {
		jsonError(w, "url must be a valid http or https URL", http.StatusBadRequest)
		return
	}

	link := &models.Link{Slug: req.Slug, URL: req.URL}
	if err := models.CreateLink(h.DB, link); err != nil {
		if errors.Is(err, models.ErrSlugExists) {
			jsonError(w, "slug already exists", http.StatusConflict)
			return
		}
		log.Printf("links: create %q: %v", req.Slug, err)
		jsonError(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(link)
}

func (h *LinkHandler) List(w http.ResponseWriter, r *http.Request) {
	links, err := models.ListLinks(h.DB)
	if err != nil {
		log.Printf("links: list: %v", err)
		jsonError(w, "internal error", http.StatusInternalServerError)
		return
	}
	if links == nil {
		links = []models.Link{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(links)
}

func (h *LinkHandler) Delete(w http.ResponseWriter, r *http.Request) {
	var req linkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	if req.Slug == "" {
		jsonError(w, "slug is required", http.StatusBadRequest)
		return
	}

	if err := models.DeleteLinkBySlug(h.DB, req.Slug); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			jsonError(w, "not found", http.StatusNotFound)
			return
		}
		log.Printf("links: delete %q: %v", req.Slug, err)
		jsonError(w, "internal error", http.StatusInternalServerError)
		return
	}
	h.Cache.Invalidate(req.Slug)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"message": "link deleted"})
}

func (h *LinkHandler) Analytics(w http.ResponseWriter, r *http.Request) {
	s := chi.URLParam(r, "slug")

	link, err := models.GetLinkBySlug(h.DB, s)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			jsonError(w, "not found", http.StatusNotFound)
			return
		}
		log.Printf("links: analytics %q: %v", s, err)
		jsonError(w, "internal error", http.StatusInternalServerError)
		return
	}

	clicks, err := models.ListClicksByLink(h.DB, link.ID)
	if err != nil {
		log.Printf("links: analytics %q: %v", s, err)
		jsonError(w, "internal error", http.StatusInternalServerError)
		return
	}
	if clicks == nil {
		clicks = []models.Click{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(clicks)
}

func isValidDestination(raw string) bool {
	u, err := url.ParseRequestURI(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
