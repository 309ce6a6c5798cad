package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/MainePadFinder/padfinder/internal/auth"
	"github.com/MainePadFinder/padfinder/internal/config"
	"github.com/MainePadFinder/padfinder/internal/db"
	"github.com/MainePadFinder/padfinder/internal/listings"
	"github.com/MainePadFinder/padfinder/internal/messages"
	"github.com/MainePadFinder/padfinder/internal/middleware"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func RootHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	fmt.Fprintln(w, "Server is up!")
}

func newRouter(cfg config.Config) chi.Router {
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.Metrics)
	r.Use(middleware.CORSMiddleware(cfg.FrontendOrigin))

	r.Get("/", RootHandler)
	r.Get("/healthz", RootHandler)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		auth.SetupRoutes(r)
		listings.SetupRoutes(r)
		messages.SetupRoutes(r)
	})
	return r
}

func main() {
	_ = godotenv.Load(".env.local")
	cfg := config.Load()

	db.Connect(cfg)
	auth.Init(cfg)
	listings.Init()
	messages.Init()

	srv := &http.Server{
		Addr:              "0.0.0.0:" + cfg.Port,
		Handler:           newRouter(cfg),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		var err error
		if cfg.TLSEnabled() {
			log.Printf("Server listening on port :%s (TLS)...", cfg.Port)
			err = srv.ListenAndServeTLS(cfg.TLSCertPath, cfg.TLSKeyPath)
		} else {
			log.Printf("Server listening on port :%s...", cfg.Port)
			err = srv.ListenAndServe()
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server error: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown: %v", err)
	}
}
