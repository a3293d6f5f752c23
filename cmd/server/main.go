package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/stefanomitello/links-tracker/internal/analytics"
	"github.com/stefanomitello/links-tracker/internal/cache"
	"github.com/stefanomitello/links-tracker/internal/config"
	"github.com/stefanomitello/links-tracker/internal/db"
	"github.com/stefanomitello/links-tracker/internal/geo"
	"github.com/stefanomitello/links-tracker/internal/handlers"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	database, err := db.Open(cfg.DBPath)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer database.Close()

	geoReader, err := geo.Open(cfg.GeoIPPath)
	if err != nil {
		log.Printf("geo: %v (geo lookups disabled)", err)
		geoReader, _ = geo.Open("")
	}
	defer geoReader.Close()

	linkCache, err := cache.New(cfg.CacheSize)
	if err != nil {
		log.Fatalf("cache: %v", err)
	}

	collector := analytics.NewCollector(database, geoReader, cfg.BufferSize, cfg.FlushInterval)

	assets := handlers.NewAssetHandler(cfg.AssetsDir)
	auth := handlers.AuthMiddleware(cfg.Username, cfg.Password)

	linkHandler := &handlers.LinkHandler{
		DB:    database,
		Cache: linkCache,
	}

	redirectHandler := &handlers.RedirectHandler{
		DB:        database,
		Cache:     linkCache,
		Collector: collector,
		Assets:    assets,
		Fallback:  cfg.Fallback,
	}

	r := chi.NewRouter()
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)

	// API routes (authenticated)
	r.Route("/api", func(r chi.Router) {
		r.Use(handlers.CORSMiddleware(cfg))
		r.Use(auth)
		r.Get("/links", linkHandler.List)
		r.Post("/links", linkHandler.Create)
		r.Delete("/links", linkHandler.Delete)
		r.Get("/links/{slug}/qr", linkHandler.QRCode)
		r.Get("/analytics/{slug}", linkHandler.Analytics)
	})

	// Dashboard pages (authenticated, statically served)
	r.With(auth).Get("/", assets.Page("index.html"))
	r.With(auth).Get("/analytics", assets.Page("stats.html"))

	// All other routes → slug resolver
	r.NotFound(redirectHandler.ServeHTTP)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	// Graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Printf("links-tracker listening on :%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server: %v", err)
		}
	}()

	<-stop
	log.Println("shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("server shutdown: %v", err)
	}

	collector.Shutdown()
	log.Println("goodbye")
}
