package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aurelius-bot/aurelius"
	"github.com/aurelius-bot/aurelius/internal/storage"
)

func main() {
	configPath := flag.String("config", "./config/config.yaml", "config file path (.yaml or .toml)")
	addr := flag.String("addr", "", "listen address (overrides web.addr)")
	flag.Parse()

	cfg, err := storage.LoadConfig(*configPath)
	if err == nil {
		err = cfg.Validate()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "aurelius-web: %v\n", err)
		os.Exit(1)
	}
	if *addr != "" {
		cfg.Web.Addr = *addr
	}

	auth, err := newAuthenticator(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "aurelius-web: %v\n", err)
		os.Exit(1)
	}

	engine, err := aurelius.NewEngine(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "aurelius-web: %v\n", err)
		os.Exit(1)
	}
	defer engine.Close()

	srv := &http.Server{
		Addr:         cfg.Web.Addr,
		Handler:      requestID(logging(recovery(newRouter(engine, auth)))),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown on SIGINT/SIGTERM
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	go func() {
		log.Printf("aurelius-web: listening on %s (auth: %s)", cfg.Web.Addr, cfg.Web.AuthMode)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("aurelius-web: %v", err)
		}
	}()

	<-done
	log.Println("aurelius-web: shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("aurelius-web: shutdown error: %v", err)
	}
	log.Println("aurelius-web: stopped")
}
