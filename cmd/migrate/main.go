package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"os"

	"deliverytracker/cmd"
	"deliverytracker/internal/adapters/out/postgres/migrations"
	"deliverytracker/internal/pkg/logger"

	_ "github.com/lib/pq"
)

func main() {
	ctx := context.Background()
	logg := logger.New(logger.Options{ServiceName: "migrate"})

	command := flag.String("cmd", "up", "migration command: up|down|status|version|redo|reset|up-to|down-to")
	version := flag.String("version", "", "target version for up-to and down-to")
	flag.Parse()

	configs, err := cmd.LoadDatabaseConfig()
	requireResource(ctx, logg, "config", err)

	ctx = logg.WithFields(ctx, map[string]any{"cmd": *command, "db": configs.DBName})

	db, err := sql.Open("postgres", configs.DSN())
	requireResource(ctx, logg, "database", err)
	defer db.Close()
	requireResource(ctx, logg, "database", db.PingContext(ctx))

	var args []string
	if *command == "up-to" || *command == "down-to" {
		if *version == "" {
			fmt.Fprintf(os.Stderr, "missing -version for %s\n", *command)
			os.Exit(1)
		}
		args = append(args, *version)
	}

	if err = migrations.Run(ctx, db, *command, args...); err != nil {
		fmt.Fprintf(os.Stderr, "migration failed: %v\n", err)
		os.Exit(1)
	}
	logg.Info(ctx, "migrate done")
}

func requireResource(ctx context.Context, logg *logger.Logger, resource string, err error) {
	if err == nil {
		return
	}
	logg.Error(ctx, fmt.Sprintf("resource not working: %s", resource), err)
	os.Exit(1)
}
