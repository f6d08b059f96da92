package main

import (
	"context"
	"flag"
	"fmt"
	"io/fs"
	"os"

	"github.com/angelmondragon/bookstore/pkg/config"
	"github.com/angelmondragon/bookstore/pkg/db"
	"github.com/angelmondragon/bookstore/pkg/logger"
	"github.com/angelmondragon/bookstore/pkg/migrate"
	"github.com/joho/godotenv"
)

func main() {
	ctx := context.Background()
	// bootstrap logger early (then re-init after config load)
	logg := logger.New(logger.Options{ServiceName: "migrate"})

	_ = godotenv.Load()

	cmd := flag.String("cmd", "up", "migration command: up|down|status|version|goto|validate")
	dir := flag.String("dir", "", "read migrations from this directory instead of the embedded set")
	version := flag.String("version", "", "target version (YYYYMMDDHHMMSS) for -cmd=goto")
	flag.Parse()

	var fsys fs.FS
	if *dir != "" {
		fsys = os.DirFS(*dir)
	} else {
		fsys = migrate.Migrations()
	}

	// validate needs neither config nor a database
	if *cmd == "validate" {
		if err := migrate.Validate(fsys); err != nil {
			fmt.Fprintf(os.Stderr, "migration validation failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("migration validation passed")
		return
	}

	cfg, err := config.Load()
	requireResource(ctx, logg, "config", err)

	logg = logger.New(logger.Options{
		ServiceName: "migrate",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	ctx = logg.WithFields(context.Background(), map[string]any{
		"env":    cfg.App.Env,
		"cmd":    *cmd,
		"driver": cfg.DB.Driver,
	})

	dbClient, err := db.New(ctx, cfg.DB, logg)
	requireResource(ctx, logg, "database", err)
	defer dbClient.Close()

	sqlDB, err := dbClient.SQL()
	requireResource(ctx, logg, "sql database", err)

	logg.Info(ctx, "migrate ready")

	report := func(line string) { fmt.Println(line) }

	switch *cmd {
	case "up", "down", "status", "version":
		if err := migrate.Run(ctx, sqlDB, dbClient.Dialect(), fsys, *cmd, report); err != nil {
			fmt.Fprintf(os.Stderr, "goose %s failed: %v\n", *cmd, err)
			os.Exit(1)
		}

	case "goto":
		if *version == "" {
			fmt.Fprintln(os.Stderr, "missing -version for goto command")
			os.Exit(1)
		}
		if err := migrate.MigrateToVersion(ctx, sqlDB, dbClient.Dialect(), fsys, *version); err != nil {
			fmt.Fprintf(os.Stderr, "goose goto failed: %v\n", err)
			os.Exit(1)
		}

	default:
		fmt.Fprintln(os.Stderr, "unknown -cmd value:", *cmd)
		os.Exit(1)
	}
}

func requireResource(ctx context.Context, logg *logger.Logger, resource string, err error) {
	if err == nil {
		return
	}
	logg.Error(ctx, fmt.Sprintf("resource not working: %s", resource), err)
	os.Exit(1)
}
