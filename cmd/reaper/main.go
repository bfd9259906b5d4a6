// Command reaper runs one timeout-reaper pass and exits. Suitable for cron.
package main

import (
	"context"
	"flag"
	"os"
	"time"

	"survey-payout-be/internal/config"
	"survey-payout-be/internal/pkg/logger"
	"survey-payout-be/internal/repository/unitofwork"
	"survey-payout-be/internal/service"
	"survey-payout-be/pkg/database"
	"survey-payout-be/pkg/eventbus"
	"survey-payout-be/pkg/metrics"

	"github.com/fatih/color"
	"github.com/prometheus/client_golang/prometheus"
)

func main() {
	thresholdHours := flag.Int("threshold-hours", 0, "override REAPER_THRESHOLD_HOURS")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		color.Red("config: %v", err)
		os.Exit(1)
	}
	threshold := cfg.Reaper.Threshold()
	if *thresholdHours > 0 {
		threshold = time.Duration(*thresholdHours) * time.Hour
	}

	log := logger.NewConsoleLogger()
	db, err := database.NewGormDBFromDSN(cfg.Database.Connection, false)
	if err != nil {
		color.Red("database: %v", err)
		os.Exit(1)
	}

	// Events have no subscribers in a one-shot run; the bus only keeps the
	// service contract.
	bus := eventbus.New(log)
	defer bus.Close()

	reaper := service.NewReaperService(
		unitofwork.NewRepositoryFactory(db),
		bus,
		metrics.New(prometheus.NewRegistry()),
		log,
		threshold,
	)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	res, err := reaper.Run(ctx)
	if err != nil {
		color.Red("reaper: %v", err)
		os.Exit(1)
	}
	color.Green("Reaped %d response(s) waiting since before %s (threshold %s)",
		res.Reaped, res.Cutoff.Format(time.RFC3339), res.Threshold)
}
