// Command events-tail follows the EVENTS JetStream stream and prints each
// domain event. Useful when EVENT_BROKER=nats.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"survey-payout-be/internal/config"
	"survey-payout-be/pkg/events"
	pktNats "survey-payout-be/pkg/nats"

	"github.com/fatih/color"
)

func main() {
	subject := flag.String("subject", pktNats.SubjectPrefix+">", "subject filter")
	durable := flag.String("durable", "events-tail", "durable consumer name")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		color.Red("config: %v", err)
		os.Exit(1)
	}

	sub, err := pktNats.NewSubscriber(cfg.Broker.NatsURL)
	if err != nil {
		color.Red("nats: %v", err)
		os.Exit(1)
	}
	defer sub.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	typeColor := color.New(color.FgCyan, color.Bold).SprintFunc()
	timeColor := color.New(color.FgHiBlack).SprintFunc()

	err = sub.Subscribe(ctx, *subject, *durable, func(_ context.Context, e events.Event) error {
		body, _ := json.Marshal(e.Payload())
		fmt.Printf("%s %s %s\n", timeColor(e.Timestamp().Format("15:04:05")), typeColor(e.EventType()), body)
		return nil
	})
	if err != nil {
		color.Red("subscribe: %v", err)
		os.Exit(1)
	}

	color.Green("Tailing %s on %s (Ctrl+C to stop)", *subject, cfg.Broker.NatsURL)
	<-ctx.Done()
}
