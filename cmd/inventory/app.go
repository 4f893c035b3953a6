package main

import (
	"context"
	"fmt"
	"time"

	"github.com/fekuna/shelter-inventory-service/config"
	"github.com/fekuna/shelter-inventory-service/internal/broker"
	"github.com/fekuna/shelter-inventory-service/internal/consumption"
	consumptionUCPkg "github.com/fekuna/shelter-inventory-service/internal/consumption/usecase"
	"github.com/fekuna/shelter-inventory-service/internal/database"
	"github.com/fekuna/shelter-inventory-service/internal/database/postgres"
	"github.com/fekuna/shelter-inventory-service/internal/item"
	itemRepoPkg "github.com/fekuna/shelter-inventory-service/internal/item/repository"
	itemUCPkg "github.com/fekuna/shelter-inventory-service/internal/item/usecase"
	"github.com/fekuna/shelter-inventory-service/internal/ledger"
	ledgerRepoPkg "github.com/fekuna/shelter-inventory-service/internal/ledger/repository"
	ledgerUCPkg "github.com/fekuna/shelter-inventory-service/internal/ledger/usecase"
	"github.com/fekuna/shelter-inventory-service/internal/lock"
	"github.com/fekuna/shelter-inventory-service/internal/logger"
	"github.com/fekuna/shelter-inventory-service/internal/lot"
	lotRepoPkg "github.com/fekuna/shelter-inventory-service/internal/lot/repository"
	lotUCPkg "github.com/fekuna/shelter-inventory-service/internal/lot/usecase"
	"github.com/fekuna/shelter-inventory-service/internal/memstore"
	"github.com/fekuna/shelter-inventory-service/internal/metrics"
	"github.com/fekuna/shelter-inventory-service/internal/model"
	"github.com/fekuna/shelter-inventory-service/internal/procurement"
	procRepoPkg "github.com/fekuna/shelter-inventory-service/internal/procurement/repository"
	procUCPkg "github.com/fekuna/shelter-inventory-service/internal/procurement/usecase"
	"github.com/fekuna/shelter-inventory-service/internal/search"
	"github.com/fekuna/shelter-inventory-service/internal/stock"
	stockUCPkg "github.com/fekuna/shelter-inventory-service/internal/stock/usecase"
	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// app holds the wired repositories and usecases shared by every command.
type app struct {
	cfg      *config.Config
	logger   logger.ZapLogger
	registry *prometheus.Registry
	metrics  *metrics.Metrics

	db *sqlx.DB

	itemRepo  item.Repository
	lotRepo   lot.Repository
	txRepo    ledger.Repository
	orderRepo procurement.Repository
	txm       database.TxManager

	items       item.UseCase
	lots        lot.UseCase
	ledger      ledger.UseCase
	consumption consumption.UseCase
	procurement procurement.UseCase
	stock       stock.UseCase

	closers []func()
}

func newApp(cfg *config.Config, log logger.ZapLogger) (*app, error) {
	a := &app{cfg: cfg, logger: log}

	a.registry = prometheus.NewRegistry()
	a.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	a.metrics = metrics.New(a.registry)

	// 1. Storage
	if err := a.initStorage(); err != nil {
		a.Close()
		return nil, err
	}

	// 2. Locks
	locker := a.initLocker()

	// 3. Elasticsearch
	var esClient *search.Client
	if cfg.Elastic.Enabled {
		c, err := search.NewClient(&search.Config{
			Addresses: cfg.Elastic.Addresses,
			Username:  cfg.Elastic.Username,
			Password:  cfg.Elastic.Password,
		})
		if err != nil {
			log.Warn("Could not connect to Elasticsearch (item search falls back to the database)", zap.Error(err))
		} else {
			esClient = c
			log.Info("Connected to Elasticsearch", zap.Strings("addresses", cfg.Elastic.Addresses))
		}
	}

	// 4. Low-stock publisher
	var publisher ledger.EventPublisher
	if cfg.Kafka.Enabled {
		producer := broker.NewProducer(&broker.Config{
			Brokers: cfg.Kafka.Brokers,
			Topic:   cfg.Kafka.LowStockTopic,
		})
		a.closers = append(a.closers, func() { _ = producer.Close() })
		publisher = broker.NewLowStockPublisher(producer)
	}

	// 5. UseCases
	policy, err := model.ParseConsumptionPolicy(cfg.Inventory.ConsumptionPolicy)
	if err != nil {
		a.Close()
		return nil, err
	}

	a.ledger = ledgerUCPkg.NewLedgerUseCase(a.itemRepo, a.lotRepo, a.txRepo, a.txm, locker, publisher, a.metrics, log,
		ledgerUCPkg.Config{MaxAttempts: cfg.Inventory.LedgerMaxAttempts})
	a.items = itemUCPkg.NewItemUseCase(a.itemRepo, a.lotRepo, a.txm, locker, esClient, log)
	a.lots = lotUCPkg.NewLotUseCase(a.lotRepo, a.itemRepo, a.ledger, log)
	a.consumption = consumptionUCPkg.NewConsumptionUseCase(a.itemRepo, a.lotRepo, a.ledger, policy, log)
	a.procurement = procUCPkg.NewProcurementUseCase(a.orderRepo, a.itemRepo, a.lotRepo, a.ledger, a.txm, locker, log)
	a.stock = stockUCPkg.NewStockUseCase(a.itemRepo, a.lotRepo, a.txRepo, a.metrics, log)

	return a, nil
}

func (a *app) initStorage() error {
	switch a.cfg.Inventory.StorageDriver {
	case "memory":
		store := memstore.New()
		a.itemRepo = store.Items()
		a.lotRepo = store.Lots()
		a.txRepo = store.Ledger()
		a.orderRepo = store.PurchaseOrders()
		a.txm = store.TxManager()
		a.logger.Warn("Using in-memory storage, data is lost on exit")
		return nil
	case "postgres", "":
	default:
		return fmt.Errorf("unknown storage driver %q", a.cfg.Inventory.StorageDriver)
	}

	db, err := a.connectPostgres()
	if err != nil {
		return err
	}
	a.db = db
	a.closers = append(a.closers, func() { _ = db.Close() })

	if a.cfg.Postgres.AutoMigrate {
		if err := postgres.Migrate(db); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}

	a.itemRepo = itemRepoPkg.NewPGRepository(db)
	a.lotRepo = lotRepoPkg.NewPGRepository(db)
	a.txRepo = ledgerRepoPkg.NewPGRepository(db)
	a.orderRepo = procRepoPkg.NewPGRepository(db)
	a.txm = postgres.NewTxManager(db)
	return nil
}

func (a *app) connectPostgres() (*sqlx.DB, error) {
	cfg := a.cfg.Postgres
	db, err := postgres.NewPostgres(&postgres.Config{
		Host:            cfg.Host,
		Port:            cfg.Port,
		User:            cfg.User,
		Password:        cfg.Password,
		DBName:          cfg.DBName,
		SSLMode:         cfg.SSLMode,
		MaxOpenConns:    cfg.MaxOpenConns,
		MaxIdleConns:    cfg.MaxIdleConns,
		ConnMaxLifetime: time.Duration(cfg.ConnMaxLifetime) * time.Second,
		ConnMaxIdleTime: time.Duration(cfg.ConnMaxIdleTime) * time.Second,
	})
	if err != nil {
		return nil, fmt.Errorf("could not connect to database: %w", err)
	}
	a.logger.Info("Connected to PostgreSQL database", zap.String("db_name", cfg.DBName))
	return db, nil
}

// initLocker prefers Redis and falls back to in-process locks, which only
// serialize writers inside this process.
func (a *app) initLocker() lock.Locker {
	cfg := a.cfg
	if cfg.Redis.Addr == "" {
		return lock.NewLocalLocker()
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		a.logger.Warn("Could not connect to Redis, using in-process item locks", zap.Error(err))
		_ = client.Close()
		return lock.NewLocalLocker()
	}

	a.closers = append(a.closers, func() { _ = client.Close() })
	a.logger.Info("Connected to Redis", zap.String("addr", cfg.Redis.Addr))
	return lock.NewRedisLocker(client, lock.RedisConfig{
		TTL:      cfg.Inventory.LockTTL,
		Attempts: cfg.Inventory.LockAttempts,
		Backoff:  cfg.Inventory.LockBackoff,
	}, a.logger)
}

func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}
