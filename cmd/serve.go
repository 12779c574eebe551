package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bwise1/complaint_portal/config"
	"github.com/bwise1/complaint_portal/internal/db"
	deps "github.com/bwise1/complaint_portal/internal/debs"
	api "github.com/bwise1/complaint_portal/internal/http/rest"
	"github.com/spf13/cobra"
)

const (
	allowConnectionsAfterShutdown = 1 * time.Second
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg := config.New()
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}

	if cfg.AutoMigrate {
		if err := db.MigrateUp(cmd.Context(), cfg.Dsn); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}

	dependencies, err := deps.New(cfg)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer dependencies.Close()

	a := &api.API{
		Config: cfg,
		Deps:   dependencies,
	}
	a.Init()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go dependencies.WebSocket.Run(ctx)
	go a.PruneVisitors(ctx, 5*time.Minute)

	serveErr := make(chan error, 1)
	go func() {
		log.Printf("Server running on port %v ...", cfg.Port)
		serveErr <- a.Serve()
	}()

	stopChan := make(chan os.Signal, 1)
	signal.Notify(stopChan, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serveErr:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-stopChan:
	}

	log.Println("Request to shutdown server. Doing nothing for ", allowConnectionsAfterShutdown)
	waitTimer := time.NewTimer(allowConnectionsAfterShutdown)
	<-waitTimer.C

	log.Println("Shutting down server...")
	if err := a.Shutdown(); err != nil {
		return err
	}
	log.Println("Server stopped, closing connections.")
	return nil
}
