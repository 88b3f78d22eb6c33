package main

import (
	"context"
	"fmt"
	"log"

	"recordsrv/internal/server"
	"recordsrv/internal/shared"
)

func main() {
	cfg, err := shared.LoadServerConfig("")
	if err != nil {
		log.Fatal(err)
	}
	if err := cfg.ApplyEnv(); err != nil {
		log.Fatal(err)
	}

	db, err := server.OpenDB(cfg.DBPath)
	if err != nil {
		log.Fatalf("OpenDB failed: %v", err)
	}
	defer db.Close()

	store := server.NewSQLiteStore(db)
	ctx := context.Background()

	tables, err := store.Tables(ctx)
	if err != nil {
		log.Fatalf("query failed: %v", err)
	}
	fmt.Println("Tables:")
	for _, name := range tables {
		fmt.Println(" -", name)
	}

	n, err := store.Count(ctx)
	if err != nil {
		log.Fatalf("count failed (run recordsrv once to migrate): %v", err)
	}
	fmt.Println("Records:", n)
}
