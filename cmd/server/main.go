package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq" // PostgreSQL driver
	"github.com/redis/go-redis/v9"

	"github.com/personalizeai/engine/internal/api"
	"github.com/personalizeai/engine/internal/config"
	"github.com/personalizeai/engine/internal/content"
	"github.com/personalizeai/engine/internal/pkg/distlock"
	"github.com/personalizeai/engine/internal/repository/postgres"
	"github.com/personalizeai/engine/internal/repository/redisstore"
	"github.com/personalizeai/engine/internal/service/insights"
	"github.com/personalizeai/engine/internal/worker"
)

// checkPortAvailable verifies that the target port is not already in use.
// This prevents confusion from stale processes occupying the port.
func checkPortAvailable(host string, port int) error {
	addr := fmt.Sprintf("%s:%d", host, port)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("port %d is already in use (addr %s): %v\n"+
			"  Hint: Run 'lsof -i :%d' to find the blocking process", port, addr, err, port)
	}
	ln.Close()
	return nil
}

func main() {
	log.Println("PersonalizeAI Engine starting")

	cfg, err := config.LoadFromEnv("config/config.yaml")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if os.Getenv("DATABASE_URL") != "" {
		log.Println("[config] DATABASE_URL env override active")
	}

	host := cfg.Server.GetHost()
	port := cfg.Server.Port
	if port == 0 {
		port = 8080
	}
	if err := checkPortAvailable(host, port); err != nil {
		log.Fatalf("Pre-flight check FAILED: %v", err)
	}

	store, err := openStore(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize store: %v", err)
	}
	defer store.close()

	svc := insights.NewService(store.repo, cfg)

	ctx, cancelWorkers := context.WithCancel(context.Background())
	defer cancelWorkers()

	lock := distlock.NewLock(store.rdb, store.db, "profile-refresh", 10*time.Minute)
	refresher := worker.NewProfileRefresher(svc, lock, time.Hour)
	go refresher.Start(ctx)

	var importer *content.Importer
	if cfg.Feeds.URL != "" {
		importer = content.NewImporter(cfg.Feeds)
		log.Printf("Feed ingestion enabled: %s", cfg.Feeds.URL)
	}

	handlers := api.NewHandlers(svc, importer)
	router := api.SetupRoutes(handlers, cfg.Server)

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", host, port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
	}

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Printf("Starting server on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	<-done
	log.Println("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}
	log.Println("Server stopped")
}

// storeHandles bundles the selected repository with the raw client handles
// the lock and shutdown paths need.
type storeHandles struct {
	repo insights.Repository
	db   *sql.DB
	rdb  *redis.Client
}

func (s storeHandles) close() {
	if s.db != nil {
		s.db.Close()
	}
	if s.rdb != nil {
		s.rdb.Close()
	}
}

// openStore selects the subscriber/event store backend. Postgres wins when
// enabled, Redis is the default otherwise.
func openStore(cfg *config.Config) (storeHandles, error) {
	if cfg.Database.Enabled && cfg.Database.URL != "" {
		db, err := sql.Open("postgres", cfg.Database.URL)
		if err != nil {
			return storeHandles{}, fmt.Errorf("open postgres: %w", err)
		}
		if err := db.Ping(); err != nil {
			db.Close()
			return storeHandles{}, fmt.Errorf("ping postgres: %w", err)
		}
		log.Println("Using Postgres subscriber store")
		return storeHandles{repo: postgres.NewSubscriberRepo(db), db: db}, nil
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		rdb.Close()
		return storeHandles{}, fmt.Errorf("ping redis at %s: %w", cfg.Redis.Addr, err)
	}
	log.Println("Using Redis subscriber store")
	return storeHandles{repo: redisstore.NewStore(rdb), rdb: rdb}, nil
}
