package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"barcaja/backend/internal/config"
	"barcaja/backend/internal/draft"
	"barcaja/backend/internal/httpapi"
	"barcaja/backend/internal/metrics"
	"barcaja/backend/internal/service"
	"barcaja/backend/internal/store"
	"barcaja/backend/internal/store/memory"
	pgstore "barcaja/backend/internal/store/postgres"
)

func main() {
	cfg := config.Load()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var ledger store.Ledger
	closers := make([]func() error, 0, 2)

	if cfg.DatabaseURL != "" {
		pg, err := pgstore.New(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("postgres unavailable (%v) and DATABASE_URL is set; refusing to start with in-memory fallback", err)
		}
		ledger = pg
		closers = append(closers, pg.Close)
		log.Println("ledger: postgres")
	} else {
		ledger = memory.NewSeeded()
		log.Println("ledger: in-memory")
	}

	drafts := draft.Store(draft.NewMemoryStore())
	if cfg.RedisAddr != "" {
		redisDrafts := draft.NewRedisStore(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err := redisDrafts.Ping(ctx); err != nil {
			log.Printf("redis unavailable (%v), using in-memory draft store", err)
		} else {
			drafts = redisDrafts
			closers = append(closers, redisDrafts.Close)
			log.Println("drafts: redis")
		}
	} else {
		log.Println("drafts: in-memory")
	}

	m := metrics.New(prometheus.DefaultRegisterer)
	svc := service.New(ledger, drafts, m)
	api := httpapi.New(svc, cfg.AllowedOrigin, cfg.DefaultVenue)

	server := &http.Server{
		Addr:              cfg.Address(),
		Handler:           api.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Printf("barcaja backend listening on %s", cfg.Address())
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 8*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown error: %v", err)
	}

	for _, closeFn := range closers {
		if err := closeFn(); err != nil {
			log.Printf("close error: %v", err)
		}
	}

	log.Println("server stopped")
}
