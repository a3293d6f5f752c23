package handlers

import (
	"net/http"
	"path/filepath"
)

// AssetHandler serves the dashboard files and any path the resolver
// classifies as a static asset.
type AssetHandler struct {
	fs  http.Handler
	dir string
}

func NewAssetHandler(dir string) *AssetHandler {
	return &AssetHandler{fs: http.FileServer(http.Dir(dir)), dir: dir}
}

func (h *AssetHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.fs.ServeHTTP(w, r)
}

// Page serves a single named file, used for the gated dashboard routes.
func (h *AssetHandler) Page(name string) http.HandlerFunc {
	path := filepath.Join(h.dir, name)
	return func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, path)
	}
}
