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

	"washcenter-backend/cache"
	"washcenter-backend/config"
	"washcenter-backend/events"
	"washcenter-backend/gateway"
	"washcenter-backend/obs"
	"washcenter-backend/routes"
	"washcenter-backend/services"
	"washcenter-backend/store"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	shutdownTracer, err := obs.InitTracer("washcenter-backend", cfg.OTLPEndpoint, cfg.Env)
	if err != nil {
		log.Fatalf("Failed to init tracer: %v", err)
	}

	st, err := openStore(cfg)
	if err != nil {
		log.Fatalf("Failed to open %s store: %v", cfg.StorageDriver, err)
	}
	defer st.Close()

	var centerCache cache.CenterCache
	if cfg.RedisAddr != "" {
		log.Printf("Connecting to Redis at %s...", cfg.RedisAddr)
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword})
		if err := rdb.Ping(context.Background()).Err(); err != nil {
			log.Fatalf("Failed to connect to Redis: %v", err)
		}
		defer rdb.Close()
		centerCache = cache.NewRedisCenterCache(rdb, cfg.CatalogCacheTTL)
	}

	publisher, err := openPublisher(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to %s: %v", cfg.EventBroker, err)
	}
	defer publisher.Close()

	catalog := services.NewCenterCatalog(st, centerCache)
	ledger := services.NewBookingLedger(st, catalog, publisher)

	var reminders *services.ReminderService
	if cfg.RemindersEnabled() {
		notifier := services.NewTwilioNotifier(cfg.TwilioAccountSID, cfg.TwilioAuthToken, cfg.TwilioFromNumber)
		reminders = services.NewReminderService(st, notifier)
		scheduler, err := reminders.StartScheduler(cfg.ReminderSchedule)
		if err != nil {
			log.Fatalf("Failed to start reminder scheduler: %v", err)
		}
		defer scheduler.Stop()
	} else {
		log.Println("Twilio credentials not set, daily reminders disabled")
	}

	r := routes.SetupRouter(cfg, gateway.New(catalog, ledger, reminders))
	printRoutes(r)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Printf("Server starting on port :%s", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server startup failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	<-quit
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}
	if err := shutdownTracer(ctx); err != nil {
		log.Printf("Tracer shutdown: %v", err)
	}

	log.Println("Server exiting")
}

func openStore(cfg config.App) (store.Store, error) {
	switch cfg.StorageDriver {
	case "postgres":
		db, err := config.ConnectDB(cfg.DBURL)
		if err != nil {
			return nil, err
		}
		s := store.NewGormStore(db)
		if err := s.Migrate(); err != nil {
			return nil, err
		}
		return s, nil
	case "pebble":
		return store.OpenPebble(cfg.PebbleDir)
	case "memory":
		return store.OpenPebbleInMemory()
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
	}
}

func openPublisher(cfg config.App) (events.Publisher, error) {
	switch cfg.EventBroker {
	case "", "none":
		return events.Noop{}, nil
	case "rabbitmq":
		return events.NewRabbitPublisher(cfg.RabbitURL, cfg.BookingExchange)
	case "kafka":
		return events.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic), nil
	default:
		return nil, fmt.Errorf("unknown event broker %q", cfg.EventBroker)
	}
}

func printRoutes(r *gin.Engine) {
	routes := r.Routes()
	for _, route := range routes {
		fmt.Printf("%-6s %s\n", route.Method, route.Path)
	}
}
