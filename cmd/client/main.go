package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"parley/internal/client"
	"parley/internal/config"
	"parley/internal/models"
	"parley/internal/ui"
)

func main() {
	cfgPath := flag.String("config", "", "path to a YAML config file")
	server := flag.String("server", "", "relay address (overrides config)")
	username := flag.String("username", "", "your username")
	room := flag.String("room", "", "the room to join")
	port := flag.Int("port", 0, "fixed local port for a stable identity (0 = ephemeral)")
	flag.Parse()

	cfg := config.Default()
	if *cfgPath != "" {
		var err error
		cfg, err = config.Load(*cfgPath)
		if err != nil {
			log.Fatalf("[CLIENT] %v", err)
		}
	}
	if *server != "" {
		cfg.Client.ServerAddr = *server
	}
	if *username != "" {
		cfg.Client.Username = *username
	}
	if *room != "" {
		cfg.Client.Room = *room
	}
	if *port != 0 {
		cfg.Client.LocalPort = *port
	}

	if cfg.Client.Username == "" || cfg.Client.Room == "" {
		fmt.Fprintln(os.Stderr, "a username and a room are required")
		flag.Usage()
		os.Exit(2)
	}

	// The TUI owns the terminal, so logs go to a file instead.
	logFile, err := os.OpenFile("parley-client.log", os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err == nil {
		defer logFile.Close()
		log.SetOutput(logFile)
	}

	conv := ui.NewConversation()
	screen := ui.NewScreen(conv, cfg.Client.Room)

	handlers := client.Handlers{
		PeerMessage: func(m models.PeerMessage) {
			conv.PeerMessage(m)
			screen.Refresh()
		},
		MessageSent: func(m models.OwnMessageSent) {
			conv.MessageSent(m)
		},
		MessageDelivered: func(m models.OwnMessageDelivered) {
			conv.MessageDelivered(m)
			screen.Refresh()
		},
		MessageRead: func(m models.OwnMessageRead) {
			conv.MessageRead(m)
			screen.Refresh()
		},
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	c, err := client.Dial(ctx, client.Config{
		ServerAddr: cfg.Client.ServerAddr,
		Username:   cfg.Client.Username,
		Room:       cfg.Client.Room,
		LocalPort:  cfg.Client.LocalPort,
	}, handlers)
	if err != nil {
		log.Fatalf("[CLIENT] %v", err)
	}
	defer c.Close()

	screen.OnSubmit = func(contents string) error {
		_, err := c.Send(contents)
		return err
	}

	go func() {
		if err := c.Run(ctx); err != nil {
			log.Printf("[CLIENT] connection lost: %v", err)
		}
		screen.App.Stop()
	}()

	if err := screen.App.Run(); err != nil {
		log.Fatalf("[CLIENT] %v", err)
	}
}
