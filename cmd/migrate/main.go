package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"github.com/angelmondragon/gudang-backend/pkg/config"
	"github.com/angelmondragon/gudang-backend/pkg/db"
	"github.com/angelmondragon/gudang-backend/pkg/logger"
	"github.com/angelmondragon/gudang-backend/pkg/migrate"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "migrate"})
	_ = godotenv.Load()

	cmd := flag.String("cmd", "up", "one of: "+strings.Join(append(migrate.Commands, "create", "validate"), "|"))
	dir := flag.String("dir", migrate.DefaultDir, "migrations directory; the default uses the copy embedded in the binary")
	name := flag.String("name", "", "migration name for -cmd=create")
	version := flag.String("version", "", "target version (YYYYMMDDHHMMSS); -cmd=version without it prints the current version")
	flag.Parse()

	ctx := logg.WithFields(context.Background(), map[string]any{"cmd": *cmd, "dir": *dir})

	// create and validate only touch the filesystem
	switch *cmd {
	case "create":
		if *name == "" {
			exit(ctx, logg, "missing -name for create", nil)
		}
		path, err := migrate.CreateSQLMigration(*dir, *name)
		if err != nil {
			exit(ctx, logg, "create migration failed", err)
		}
		fmt.Println("created migration:", path)
		return
	case "validate":
		if err := migrate.ValidateDir(*dir); err != nil {
			exit(ctx, logg, "migration validation failed", err)
		}
		fmt.Println("migrations ok")
		return
	}

	if !migrate.IsCommand(*cmd) {
		exit(ctx, logg, fmt.Sprintf("unknown -cmd %q", *cmd), nil)
	}
	if err := migrate.ValidateDir(*dir); err != nil {
		exit(ctx, logg, "refusing to run invalid migrations", err)
	}

	cfg, err := config.Load()
	if err != nil {
		exit(ctx, logg, "failed to load config", err)
	}
	logg = logger.New(logger.Options{
		ServiceName: "migrate",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})
	ctx = logg.WithFields(context.Background(), map[string]any{"env": cfg.App.Env, "cmd": *cmd, "dir": *dir})

	if cfg.DB.IsSQLite() {
		exit(ctx, logg, "goose migrations target postgres; sqlite is bootstrapped by the api in dev", nil)
	}

	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		exit(ctx, logg, "failed to connect database", err)
	}
	defer dbClient.Close()

	sqlDB, err := dbClient.DB().DB()
	if err != nil {
		exit(ctx, logg, "failed to open sql handle", err)
	}

	logg.Info(ctx, "running migrations")
	source := migrate.Source(*dir)
	var lines []string
	if *cmd == "version" && *version != "" {
		lines, err = migrate.MigrateToVersion(ctx, sqlDB, source, *version)
	} else {
		lines, err = migrate.Run(ctx, sqlDB, source, *cmd)
	}
	for _, line := range lines {
		fmt.Println(line)
	}
	if err != nil {
		exit(ctx, logg, "goose "+*cmd+" failed", err)
	}
	logg.Info(logg.WithField(ctx, "migrations", len(lines)), "migrations finished")
}

func exit(ctx context.Context, logg *logger.Logger, msg string, err error) {
	logg.Error(ctx, msg, err)
	fmt.Fprintln(os.Stderr, msg)
	os.Exit(1)
}
