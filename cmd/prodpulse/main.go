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

	"github.com/redis/go-redis/v9"

	"prodpulse/config"
	"prodpulse/etl"
	"prodpulse/messaging"
	"prodpulse/store"
	"prodpulse/viewcache"
	"prodpulse/www"
)

var Version = "dev"

func main() {
	showVersion := flag.Bool("version", false, "print version and exit")
	configPath := flag.String("config", "prodpulse.yaml", "path to config file")
	runImport := flag.Bool("import", false, "run one import pass and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println("prodpulse", Version)
		return
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	// Database
	db, err := store.Open(&cfg.Database)
	if err != nil {
		log.Fatalf("open database: %v", err)
	}
	defer db.Close()
	log.Printf("prodpulse: database open (%s)", cfg.Database.Driver)

	// Redis
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Address,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.Printf("prodpulse: redis not available (%v), running without view cache", err)
		redisClient.Close()
		redisClient = nil
	} else {
		log.Printf("prodpulse: redis connected (%s)", cfg.Redis.Address)
		defer redisClient.Close()
	}
	cancel()

	cache := viewcache.New(redisClient, 0)

	// Messaging client
	msgClient := messaging.NewClient(&cfg.Messaging)
	if err := msgClient.Connect(); err != nil {
		log.Printf("prodpulse: messaging connect failed (%v), reports stay queued", err)
	} else {
		log.Printf("prodpulse: messaging connected (kafka)")
	}
	defer msgClient.Close()

	// Importer
	importer := etl.NewImporter(etl.ImporterConfig{
		DB:         db,
		Cache:      cache,
		SiteID:     cfg.Messaging.SiteID,
		Topic:      cfg.Messaging.ReportsTopic,
		SampleSize: cfg.Importer.RejectionSampleSize,
	})

	if *runImport {
		if _, err := importer.Run(context.Background()); err != nil {
			log.Fatalf("import: %v", err)
		}
		return
	}

	// Outbox drainer (outbound import reports)
	drainer := messaging.NewOutboxDrainer(db, msgClient, cfg.Messaging.OutboxDrainInterval)
	drainer.Start()
	defer drainer.Stop()

	// Web server
	handler := www.NewRouter(www.Deps{
		DB:            db,
		Cache:         cache,
		Importer:      importer,
		MsgClient:     msgClient,
		SessionSecret: cfg.Web.SessionSecret,
	})

	addr := fmt.Sprintf("%s:%d", cfg.Web.Host, cfg.Web.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: handler,
	}

	go func() {
		log.Printf("prodpulse: web server listening on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("web server: %v", err)
		}
	}()

	log.Printf("prodpulse: ready")

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Printf("prodpulse: shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	srv.Shutdown(shutdownCtx)

	log.Printf("prodpulse: stopped")
}
