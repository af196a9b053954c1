package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/pamcare/pamcare"
)

func main() {
	configPath := flag.String("config", "", "path to TOML config file (defaults apply when empty)")
	dbPath := flag.String("db", "pamcare.db", "path to the SQLite database file")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [flags]\n\nFlags:\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	pool, err := pamcare.NewZombiezenPool(*dbPath, 0)
	if err != nil {
		slog.Error("failed to open database", "path", *dbPath, "err", err)
		os.Exit(1)
	}
	defer func() {
		if err := pool.Close(); err != nil {
			slog.Error("failed to close database pool", "err", err)
		}
	}()

	if err := pamcare.MigrateSchema(context.Background(), pool); err != nil {
		slog.Error("failed to apply schema", "err", err)
		os.Exit(1)
	}

	_, srv, err := pamcare.New(
		*configPath,
		pamcare.WithZombiezenPool(pool),
		pamcare.WithRouterServeMux(),
		pamcare.WithPhusLogger(nil),
	)
	if err != nil {
		slog.Error("failed to initialize application", "err", err)
		os.Exit(1)
	}

	srv.Run()
}
