package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"recordsrv/internal/accesslog"
	"recordsrv/internal/shared"
)

func main() {
	path := flag.String("file", "", "access log to follow (default $RS_LOG_PATH or server.log)")
	interval := flag.Duration("interval", time.Second, "poll interval")
	flag.Parse()

	if *path == "" {
		cfg := shared.DefaultServerConfig()
		if err := cfg.ApplyEnv(); err != nil {
			log.Fatal(err)
		}
		*path = cfg.LogPath
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := accesslog.Follow(ctx, *path, os.Stdout, *interval); err != nil {
		log.Fatalf("follow %s: %v", *path, err)
	}
}
