package main

import (
	"context"
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/fairgrid/fairgrid/internal/blocklist"
	"github.com/fairgrid/fairgrid/internal/config"
	"github.com/fairgrid/fairgrid/internal/database"
	"github.com/fairgrid/fairgrid/internal/enrichment"
	"github.com/fairgrid/fairgrid/internal/handler"
	"github.com/fairgrid/fairgrid/internal/identity"
	"github.com/fairgrid/fairgrid/internal/lifecycle"
	"github.com/fairgrid/fairgrid/internal/metrics"
	"github.com/fairgrid/fairgrid/internal/middleware"
	"github.com/fairgrid/fairgrid/internal/repository"
	"github.com/fairgrid/fairgrid/internal/router"
	"github.com/fairgrid/fairgrid/internal/search"
	"github.com/fairgrid/fairgrid/internal/service"
	"github.com/fairgrid/fairgrid/internal/validation"
)

func main() {
	_ = godotenv.Load() // .env is optional; real deployments set the environment directly

	cfg := config.Load()
	searchCfg := config.LoadSearchConfig()
	rateCfg := config.LoadRateLimitConfig()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	rdb := config.NewRedisClient() // nil when Redis is unreachable; limiter and blocklist degrade

	collector, err := metrics.NewCollector()
	if err != nil {
		log.Fatalf("metrics: %v", err)
	}

	// Repositories.
	events := repository.NewEventRepo(db)
	editions := repository.NewEditionRepo(db)
	attributes := repository.NewAttributeRepo(db)
	categories := repository.NewCategoryRepo(db)
	contacts := repository.NewContactRepo(db)
	venues := repository.NewVenueRepo(db)
	users := repository.NewUserRepo(db)
	companies := repository.NewCompanyRepo(db)
	media := repository.NewMediaRepo(db)
	eventUpdates := repository.NewEventUpdateRepo(db)

	provider := identity.NewProvider(users, events, venues, companies, categories)
	pipeline := validation.NewPipeline(provider, provider, provider, provider, provider, cfg.InternalRole)

	// Search stack: one health cache instance shared for the lifetime of
	// the process.
	healthCache := search.NewHealthCache(searchCfg.HealthTTL)
	indexer := search.NewIndexer(searchCfg, healthCache, collector)

	orchestrator := &enrichment.Orchestrator{
		Categories: categories,
		Attributes: attributes,
		Editions:   editions,
		SalesLog:   eventUpdates,
		Venues:     provider,
		Actors:     provider,
		Contacts:   contacts,
		Blocklist:  blocklist.New(rdb, cfg.BlockedDomains),
		Media:      media,
		Metrics:    collector,
	}

	worker := &service.Worker{
		Orchestrator: orchestrator,
		Events:       events,
		Editions:     editions,
		Attributes:   attributes,
		Indexer:      indexer,
	}

	// Broker wiring.  Without a broker URL the manager runs enrichment
	// in-process and notifications are skipped.
	var jobs lifecycle.JobEnqueuer
	var alerter lifecycle.OperatorAlerter
	if cfg.AMQPURL != "" {
		publisher := service.NewPublisher(cfg.AMQPURL)
		jobs = publisher
		alerter = publisher
		worker.Notifier = publisher
		go func() {
			if err := worker.Consume(context.Background(), cfg.AMQPURL); err != nil {
				log.Printf("enrich-worker: stopped: %v", err)
			}
		}()
	} else {
		log.Printf("broker disabled: RABBITMQ_URL unset; enrichment runs in-process")
	}

	manager := lifecycle.NewManager(
		pipeline,
		editions,
		lifecycle.NewResolver(editions),
		lifecycle.NewTransactor(events, editions, attributes, cfg.TxBudget),
		jobs,
		alerter,
		worker,
	)

	e := echo.New()
	e.HideBanner = true

	router.RegisterPublic(e, &handler.SearchHealthHandler{Cache: healthCache}, collector.Handler())
	router.RegisterAPI(e,
		handler.NewEventHandler(manager, events, editions, attributes, contacts, categories, collector),
		&handler.ReindexHandler{Events: events, Editions: editions, Attributes: attributes, Indexer: indexer},
		cfg.JWTSecret,
		middleware.NewTokenBucket(rateCfg, rdb),
	)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
