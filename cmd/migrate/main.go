package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"survey-payout-be/internal/config"
	"survey-payout-be/migrations"
	"survey-payout-be/pkg/database"

	"github.com/fatih/color"
)

func main() {
	down := flag.Int("down", 0, "roll back this many migrations instead of applying")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fail("config", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := database.CheckDSN(ctx, cfg.Database.Connection); err != nil {
		fail("database", err)
	}

	db, err := database.NewGormDBFromDSN(cfg.Database.Connection, false)
	if err != nil {
		fail("database", err)
	}

	migrator, err := database.NewMigrator(db, migrations.FS)
	if err != nil {
		fail("migrator", err)
	}
	defer migrator.Close()

	if *down > 0 {
		color.Yellow("Rolling back %d migration(s)...", *down)
		err = migrator.Down(*down)
	} else {
		color.Cyan("Applying migrations...")
		err = migrator.Up()
	}
	if err != nil {
		fail("migrate", err)
	}

	version, dirty, err := migrator.Version()
	if err != nil {
		fail("version", err)
	}
	if dirty {
		color.Red("Schema version %d is dirty; fix it by hand before retrying", version)
		os.Exit(1)
	}
	color.Green("Schema at version %d", version)
}

func fail(step string, err error) {
	color.Red("%s: %v", step, err)
	fmt.Fprintln(os.Stderr)
	os.Exit(1)
}
