package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/anragh/medialog/internal/api"
	"github.com/anragh/medialog/internal/catalog"
	"github.com/anragh/medialog/internal/core"
	"github.com/anragh/medialog/internal/refresh"
	"github.com/anragh/medialog/internal/store"
	"github.com/anragh/medialog/internal/websocket"
)

func main() {
	log.SetOutput(os.Stdout)
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	// Initialize the core application components
	app, err := core.New()
	if err != nil {
		log.Fatalf("Fatal error during application setup: %v", err)
	}
	defer app.Close()

	hub := websocket.NewHub()
	go hub.Run()

	// Start the periodic podcast feed refresh in the background
	st := store.New(app.DB())
	fetcher := catalog.New(app.Config.Catalog.BaseURL)
	refresher := refresh.NewService(st, fetcher)
	refresher.Start(app.Config.Refresh.IntervalHours)
	defer refresher.Stop()

	// Setup the API server
	server := api.NewServer(app, hub)
	addr := fmt.Sprintf(":%d", app.Config.Port)
	httpServer := &http.Server{
		Addr:    addr,
		Handler: server.Router(),
	}

	go func() {
		log.Printf("Starting web server on %s", addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for an interrupt and shut down cleanly.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}
}
