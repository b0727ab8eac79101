// Command server runs the sponsorship funding engine: the case registry,
// the donation ledger, the transparency trail, and platform statistics
// behind one HTTP API.
package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus"

	"medfund/internal/directory"
	"medfund/internal/events"
	ledgerhandler "medfund/internal/ledger/handler"
	ledgerservice "medfund/internal/ledger/service"
	ledgerstore "medfund/internal/ledger/store"
	ledgermemory "medfund/internal/ledger/store/memory"
	ledgerpostgres "medfund/internal/ledger/store/postgres"
	"medfund/internal/platform/config"
	"medfund/internal/platform/httpserver"
	"medfund/internal/platform/logger"
	"medfund/internal/platform/metrics"
	"medfund/internal/platform/middleware"
	platformpostgres "medfund/internal/platform/postgres"
	platformredis "medfund/internal/platform/redis"
	registryhandler "medfund/internal/registry/handler"
	registryservice "medfund/internal/registry/service"
	casestore "medfund/internal/registry/store"
	casememory "medfund/internal/registry/store/memory"
	casepostgres "medfund/internal/registry/store/postgres"
	"medfund/internal/stats"
	transparencyhandler "medfund/internal/transparency/handler"
	transparencyservice "medfund/internal/transparency/service"
	transparencystore "medfund/internal/transparency/store"
	transparencymemory "medfund/internal/transparency/store/memory"
	transparencypostgres "medfund/internal/transparency/store/postgres"
	httptransport "medfund/internal/transport/http"
	"medfund/pkg/platform/circuit"
)

func main() {
	cfg := config.FromEnv()
	log := logger.New(cfg.LogLevel)

	if err := run(cfg, log); err != nil {
		log.Error("server exited", "error", err.Error())
		os.Exit(1)
	}
}

func run(cfg config.Config, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var (
		db        *sql.DB
		cases     casestore.CaseStore
		donations ledgerstore.DonationStore
		updates   transparencystore.UpdateStore
		invoices  transparencystore.InvoiceStore
	)
	if cfg.PostgresDSN != "" {
		var err error
		db, err = sql.Open("postgres", cfg.PostgresDSN)
		if err != nil {
			return err
		}
		defer db.Close()
		if err := db.PingContext(ctx); err != nil {
			return err
		}
		if err := platformpostgres.Migrate(ctx, db); err != nil {
			return err
		}
		cases = casepostgres.NewPostgres(db)
		donations = ledgerpostgres.NewPostgres(db)
		updates = transparencypostgres.NewUpdatePostgres(db)
		invoices = transparencypostgres.NewInvoicePostgres(db)
		log.Info("using postgres stores")
	} else {
		cases = casememory.NewInMemory()
		donations = ledgermemory.NewInMemory()
		updates = transparencymemory.NewInMemoryUpdates()
		invoices = transparencymemory.NewInMemoryInvoices()
		log.Info("using in-memory stores")
	}

	cache, err := platformredis.New(cfg.RedisURL)
	if err != nil {
		return err
	}
	if cache != nil {
		defer cache.Close()
		log.Info("stats cache enabled")
	}

	var sink events.Sink = events.NewMemorySink()
	if len(cfg.KafkaBrokers) > 0 {
		publisher, err := events.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic)
		if err != nil {
			return err
		}
		defer publisher.Close()
		sink = publisher
		log.Info("kafka event publisher enabled", "topic", cfg.KafkaTopic)
	}

	emitter := events.NewEmitter(256, log)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		emitter.Run(ctx, sink)
	}()

	m := metrics.New(prometheus.DefaultRegisterer)

	// Identity lives in the platform's account service; the funding engine
	// trusts the IDs it is handed.
	patients := directory.NewPermissivePatients()
	doctors := directory.NewPermissiveDoctors()
	donors := directory.NewPermissiveDonors()
	gateway := directory.NewBreakerGateway(directory.NewApprovingGateway(),
		circuit.New("payment-gateway", 5, 30*time.Second), log)

	registrySvc := registryservice.New(cases, patients, doctors, log,
		registryservice.WithMetrics(m),
		registryservice.WithEmitter(emitter),
		registryservice.WithVerificationGate(cfg.VerificationRequired),
	)
	ledgerSvc := ledgerservice.New(donations, cases, donors, gateway, log,
		ledgerservice.WithMetrics(m),
		ledgerservice.WithEmitter(emitter),
	)
	transparencySvc := transparencyservice.New(updates, invoices, cases, donations, log,
		transparencyservice.WithMetrics(m),
		transparencyservice.WithEmitter(emitter),
	)
	statsSvc := stats.New(cases, donations, cache, config.StatsCacheTTL, log)

	admin := middleware.RequireAdmin(middleware.NewAdminValidator(cfg.JWTSigningKey), log)

	router := httptransport.NewRouter(httptransport.Deps{
		Registry:     registryhandler.New(registrySvc, log, admin),
		Ledger:       ledgerhandler.New(ledgerSvc, log),
		Transparency: transparencyhandler.New(transparencySvc, log, admin),
		Stats:        stats.NewHandler(statsSvc, log),
		Metrics:      m,
		Logger:       log,
		Health: func() error {
			if db != nil {
				return db.Ping()
			}
			return nil
		},
	})

	server := httpserver.New(cfg.Addr, router)
	serverErr := make(chan error, 1)
	go func() {
		log.Info("listening", "addr", cfg.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case err := <-serverErr:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return err
	}
	wg.Wait()
	return nil
}
