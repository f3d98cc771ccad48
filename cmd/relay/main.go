package main

import (
	"context"
	"flag"
	"log"

	"parley/internal/config"
	"parley/internal/relay"
)

func main() {
	cfgPath := flag.String("config", "", "path to a YAML config file")
	listen := flag.String("listen", "", "listen address (overrides config)")
	flag.Parse()

	cfg := config.Default()
	if *cfgPath != "" {
		var err error
		cfg, err = config.Load(*cfgPath)
		if err != nil {
			log.Fatalf("[RELAY] %v", err)
		}
	}
	if *listen != "" {
		cfg.Relay.ListenAddr = *listen
	}

	srv := relay.NewServer(cfg.Relay.ListenAddr, relay.DefaultWriteTimeout)
	if err := srv.ListenAndServe(context.Background()); err != nil {
		log.Fatalf("[RELAY] %v", err)
	}
}
