package main

import (
	"context"
	"log"

	"github.com/nats-io/nats.go"

	"github.com/dkoval/mailshare/internal/config"
	"github.com/dkoval/mailshare/internal/daemon"
)

func main() {

	ctx := context.Background()
	cfg := config.LoadConfig()

	nc, err := nats.Connect(cfg.NatsURL)
	if err != nil {
		log.Printf("nats connect: %v", err)
		return
	}
	defer nc.Close()

	app, err := daemon.NewApp(ctx, cfg, nc)
	if err != nil {
		log.Printf("%v", err)
		return
	}

	if err := app.Run(ctx, nc); err != nil {
		log.Printf("%v", err)
	}
}
