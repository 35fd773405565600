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

	"github.com/coqui-pos/api/internal/auth"
	"github.com/coqui-pos/api/internal/catalog"
	"github.com/coqui-pos/api/internal/config"
	"github.com/coqui-pos/api/internal/database"
	"github.com/coqui-pos/api/internal/orderid"
	"github.com/coqui-pos/api/internal/pricing"
	"github.com/coqui-pos/api/internal/processor"
	"github.com/coqui-pos/api/internal/queue"
	"github.com/coqui-pos/api/internal/router"
	"github.com/coqui-pos/api/internal/service"
	"github.com/coqui-pos/api/internal/sink"
	"github.com/coqui-pos/api/internal/ws"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	menu, err := catalog.Load(cfg.MenuFile)
	if err != nil {
		log.Fatalf("Failed to load menu: %v", err)
	}

	calc, err := pricing.NewCalculator(cfg.TaxRate)
	if err != nil {
		log.Fatalf("Invalid tax rate: %v", err)
	}

	ids, err := orderid.New(cfg.NodeID)
	if err != nil {
		log.Fatalf("Failed to create order ID generator: %v", err)
	}

	// Credentials come from Postgres when configured, else from env hashes.
	var verifier auth.CredentialVerifier
	if cfg.DatabaseURL != "" {
		if err := database.Migrate(cfg.DatabaseURL); err != nil {
			log.Fatalf("Failed to migrate: %v", err)
		}
		pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("Unable to connect to database: %v", err)
		}
		defer pool.Close()
		verifier = auth.NewStoreVerifier(database.New(pool))
		log.Println("Using database credential store")
	} else {
		hv, err := auth.NewHashVerifier(map[auth.Role]string{
			auth.RoleManager:  cfg.ManagerPasswordHash,
			auth.RoleEmployee: cfg.EmployeePasswordHash,
		})
		if err != nil {
			log.Fatalf("Invalid credential hashes: %v", err)
		}
		verifier = hv
		log.Println("Using credential hashes from environment")
	}

	hub := ws.NewHub()
	display := ws.NewDisplay(hub)
	sinks := sink.Multi{display, sink.NewPrinter(os.Stdout)}

	if cfg.AMQPURL != "" {
		publisher, err := queue.Dial(cfg.AMQPURL)
		if err != nil {
			log.Fatalf("Failed to connect to RabbitMQ: %v", err)
		}
		defer publisher.Close()
		sinks = append(sinks, publisher)
		log.Println("Publishing session events to RabbitMQ")
	}

	sessions := service.NewRegistry(service.Deps{
		Calculator: calc,
		Processor:  processor.NewSimulated(cfg.CardAuthDelay, cfg.CardDeclineAbove),
		Receipts:   sinks,
		Events:     sinks,
		Watcher:    display,
		Verifier:   verifier,
		OrderIDs:   ids,
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Port),
		Handler:           router.New(cfg, verifier, menu, sessions, hub, display),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return hub.Run(ctx)
	})
	g.Go(func() error {
		log.Printf("Starting server on :%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		log.Println("Shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Fatalf("Server error: %v", err)
	}
	log.Println("Server stopped")
}
