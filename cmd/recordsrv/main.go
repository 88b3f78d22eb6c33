package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"recordsrv/internal/accesslog"
	"recordsrv/internal/server"
	"recordsrv/internal/shared"
)

func main() {
	configPath := flag.String("config", "", "path to server config json (optional)")
	writeConfig := flag.String("write-config", "", "write the effective config to this path and exit")
	memory := flag.Bool("memory", false, "keep records in memory instead of SQLite")
	flag.Parse()

	cfg, err := shared.LoadServerConfig(*configPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if err := cfg.ApplyEnv(); err != nil {
		log.Fatalf("config: %v", err)
	}

	if *writeConfig != "" {
		if err := shared.SaveServerConfig(*writeConfig, cfg); err != nil {
			log.Fatalf("write config %s: %v", *writeConfig, err)
		}
		log.Printf("config written to %s", *writeConfig)
		return
	}

	var store server.Store
	if *memory {
		store = server.NewMemoryStore()
		log.Printf("db: in-memory")
	} else {
		// Ensure DB directory exists
		dbDir := filepath.Dir(cfg.DBPath)
		if dbDir != "." && dbDir != "" {
			if err := os.MkdirAll(dbDir, 0700); err != nil {
				log.Fatalf("failed to create db dir %s: %v", dbDir, err)
			}
		}

		db, err := server.OpenDB(cfg.DBPath)
		if err != nil {
			log.Fatalf("failed to open db %s: %v", cfg.DBPath, err)
		}
		defer db.Close()

		if _, err := server.RunMigrations(db); err != nil {
			log.Fatalf("migrations failed: %v", err)
		}
		store = server.NewSQLiteStore(db)
		log.Printf("db: %s", cfg.DBPath)
	}

	srv := &server.Server{
		Addr: cfg.Addr,
		Handler: &server.API{
			Store:       store,
			OpenAPIPath: cfg.OpenAPIPath,
		},
		AccessLog:      accesslog.New(cfg.LogPath),
		MaxConns:       cfg.MaxConns,
		MaxRequestSize: cfg.MaxRequestBytes,
		ReadTimeout:    time.Duration(cfg.ReadTimeoutSecs) * time.Second,
		WriteTimeout:   time.Duration(cfg.WriteTimeoutSecs) * time.Second,
		ShutdownGrace:  time.Duration(cfg.ShutdownGraceSecs) * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Printf("recordsrv: max_conns=%d access_log=%s openapi=%s", cfg.MaxConns, cfg.LogPath, cfg.OpenAPIPath)
	if err := srv.ListenAndServe(ctx); err != nil {
		log.Fatalf("recordsrv: %v", err)
	}
	log.Printf("recordsrv: stopped")
}
