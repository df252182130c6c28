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

	"github.com/kiwari-pos/tableside/internal/amqpbus"
	"github.com/kiwari-pos/tableside/internal/catalog"
	"github.com/kiwari-pos/tableside/internal/config"
	"github.com/kiwari-pos/tableside/internal/event"
	"github.com/kiwari-pos/tableside/internal/floor"
	"github.com/kiwari-pos/tableside/internal/natsbus"
	"github.com/kiwari-pos/tableside/internal/report"
	"github.com/kiwari-pos/tableside/internal/reservation"
	"github.com/kiwari-pos/tableside/internal/router"
	"github.com/kiwari-pos/tableside/internal/service"
	"github.com/kiwari-pos/tableside/internal/staff"
	"github.com/kiwari-pos/tableside/internal/ws"
)

func main() {
	cfg := config.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	hub := ws.NewHub()
	go hub.Run(ctx)

	publishers := event.Multi{hub}
	if cfg.NATSURL != "" {
		bus, err := natsbus.Connect(cfg.NATSURL, natsbus.DefaultPrefix)
		if err != nil {
			log.Fatalf("ERROR: %v", err)
		}
		defer bus.Close()
		publishers = append(publishers, bus)
		log.Printf("Publishing events to NATS at %s", cfg.NATSURL)
	}
	if cfg.AMQPURL != "" {
		broker, err := amqpbus.Connect(cfg.AMQPURL, amqpbus.DefaultExchange)
		if err != nil {
			log.Fatalf("ERROR: %v", err)
		}
		defer broker.Close()
		publishers = append(publishers, broker)
		log.Printf("Publishing events to RabbitMQ exchange %s", amqpbus.DefaultExchange)
	}

	menu := catalog.Demo()
	if cfg.MenuFile != "" {
		var err error
		if menu, err = catalog.LoadFile(cfg.MenuFile); err != nil {
			log.Fatalf("ERROR: load menu: %v", err)
		}
		log.Printf("Loaded %d menu items from %s", len(menu.Items()), cfg.MenuFile)
	}

	roster := staff.Demo()
	if _, err := roster.Add(staff.Member{Name: cfg.DefaultServer, Role: staff.RoleWaiter, Active: true}, time.Now()); err != nil && !errors.Is(err, staff.ErrDuplicateName) {
		log.Fatalf("ERROR: add default server to roster: %v", err)
	}

	svc := service.NewOrderService(
		menu,
		floor.New(cfg.TableCount, cfg.TableSeats),
		reservation.NewBook(),
		report.NewRecorder(),
		publishers,
		service.WithDefaultServer(cfg.DefaultServer),
		service.WithRoster(roster),
	)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Port),
		Handler: router.New(cfg, svc, roster, hub),
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("ERROR: shutdown: %v", err)
		}
	}()

	log.Printf("Starting server on :%s with %d tables and %d staff", cfg.Port, cfg.TableCount, len(roster.List()))
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal(err)
	}
}
