package main

import (
	"context"
	"flag"
	"log"
	"multifeed/internal/app"
	"multifeed/internal/config"
	"time"
)

func main() {
	configPath := flag.String("config", "config.json", "path to JSON config file")
	validateOnly := flag.Bool("validate", false, "check config and feed availability, then exit")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("FATAL: could not load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("FATAL: invalid config: %v", err)
	}
	application, err := app.New(cfg)
	if err != nil {
		log.Fatalf("FATAL: could not initialize app: %v", err)
	}
	if *validateOnly {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()
		if err := application.Activate(ctx); err != nil {
			log.Fatalf("FATAL: feed validation failed: %v", err)
		}
		log.Printf("config %s is valid, %d feeds reachable", *configPath, len(cfg.App.FeedURLs))
		return
	}
	if err := application.Run(); err != nil {
		log.Fatalf("FATAL: %v", err)
	}
}
