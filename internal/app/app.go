package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/uptrace/opentelemetry-go-extra/otelsql"
	"github.com/uptrace/opentelemetry-go-extra/otelsqlx"
	"go.opentelemetry.io/otel/attribute"

	"github.com/nflsurvivor/survivor-pool/external/gridiron"
	"github.com/nflsurvivor/survivor-pool/internal/config"
	"github.com/nflsurvivor/survivor-pool/internal/domain/entry"
	"github.com/nflsurvivor/survivor-pool/internal/domain/match"
	"github.com/nflsurvivor/survivor-pool/internal/domain/pick"
	"github.com/nflsurvivor/survivor-pool/internal/domain/season"
	"github.com/nflsurvivor/survivor-pool/internal/domain/team"
	"github.com/nflsurvivor/survivor-pool/internal/domain/token"
	"github.com/nflsurvivor/survivor-pool/internal/infrastructure/account/identity"
	"github.com/nflsurvivor/survivor-pool/internal/infrastructure/jobqueue"
	cachedrepo "github.com/nflsurvivor/survivor-pool/internal/infrastructure/repository/cache"
	"github.com/nflsurvivor/survivor-pool/internal/infrastructure/repository/memory"
	"github.com/nflsurvivor/survivor-pool/internal/infrastructure/repository/postgres"
	"github.com/nflsurvivor/survivor-pool/internal/interfaces/httpapi"
	basecache "github.com/nflsurvivor/survivor-pool/internal/platform/cache"
	idgen "github.com/nflsurvivor/survivor-pool/internal/platform/id"
	"github.com/nflsurvivor/survivor-pool/internal/platform/logging"
	"github.com/nflsurvivor/survivor-pool/internal/platform/resilience"
	"github.com/nflsurvivor/survivor-pool/internal/usecase"
)

type repositories struct {
	seasons season.Repository
	teams   team.Repository
	matches match.Repository
	entries entry.Repository
	picks   pick.Repository
	tokens  token.Repository
}

// NewHTTPServer assembles storage, external clients, services and the
// router into a configured server. The returned cleanup releases the
// database pool and must run after Shutdown.
func NewHTTPServer(cfg config.Config, logger *logging.Logger, serviceLogger *slog.Logger) (*http.Server, func(), error) {
	if logger == nil {
		logger = logging.Default()
	}
	if serviceLogger == nil {
		serviceLogger = slog.Default()
	}

	repos, cleanup, err := buildRepositories(cfg, serviceLogger)
	if err != nil {
		return nil, nil, err
	}

	if cfg.CacheEnabled {
		store := basecache.NewStore(cfg.CacheTTL)
		repos.seasons = cachedrepo.NewSeasonRepository(repos.seasons, store)
		repos.teams = cachedrepo.NewTeamRepository(repos.teams, store)
		repos.matches = cachedrepo.NewMatchRepository(repos.matches, store)
	}

	idGenerator := idgen.NewRandomGenerator()

	resolverSvc := usecase.NewResolverService(repos.seasons, repos.matches, repos.picks, repos.entries, serviceLogger)
	seasonSvc := usecase.NewSeasonService(repos.seasons, repos.matches, serviceLogger)
	pickSvc := usecase.NewPickService(repos.seasons, repos.entries, repos.matches, repos.picks, idGenerator, serviceLogger)
	rankingSvc := usecase.NewRankingService(repos.seasons, repos.entries, repos.picks, repos.matches, resolverSvc, serviceLogger)
	summarySvc := usecase.NewSummaryService(repos.seasons, repos.entries, repos.matches, repos.picks, resolverSvc, serviceLogger)
	registrationSvc := usecase.NewRegistrationService(repos.seasons, repos.entries, repos.tokens, idGenerator, serviceLogger)
	ingestionSvc := usecase.NewIngestionService(repos.seasons, repos.matches, buildJobQueue(cfg, serviceLogger), serviceLogger)
	scheduleSyncSvc := usecase.NewScheduleSyncService(
		buildScheduleProvider(cfg, logger),
		repos.seasons,
		repos.teams,
		repos.matches,
		usecase.ScheduleSyncConfig{Enabled: cfg.GridironEnabled},
		serviceLogger,
	)

	verifier := identity.NewClient(
		&http.Client{Timeout: cfg.AccountTimeout},
		identity.Config{
			BaseURL:        cfg.AccountBaseURL,
			IntrospectPath: cfg.AccountIntrospectPath,
			AdminKey:       cfg.AccountAdminKey,
			CacheTTL:       cfg.AccountCacheTTL,
			CacheMaxSize:   cfg.AccountCacheMaxSize,
			CircuitBreaker: resilience.CircuitBreakerConfig{
				Enabled:          cfg.AccountCircuitEnabled,
				FailureThreshold: cfg.AccountCircuitFailureCount,
				OpenTimeout:      cfg.AccountCircuitOpenTimeout,
				HalfOpenMaxReq:   cfg.AccountCircuitHalfOpenMaxReq,
			},
		},
		serviceLogger,
	)

	handler := httpapi.NewHandler(
		seasonSvc,
		pickSvc,
		rankingSvc,
		summarySvc,
		registrationSvc,
		ingestionSvc,
		scheduleSyncSvc,
		resolverSvc,
		logger,
	)
	router := httpapi.NewRouter(handler, verifier, logger, cfg.SwaggerEnabled, cfg.CORSAllowedOrigins, cfg.InternalJobToken)

	if cfg.HTTPAddr == "" {
		cleanup()
		return nil, nil, fmt.Errorf("http server addr cannot be empty")
	}

	server := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	return server, cleanup, nil
}

// buildRepositories connects Postgres when DB_URL is set and falls back
// to seeded in-memory repositories otherwise, so the API can run without
// a database in local development.
func buildRepositories(cfg config.Config, logger *slog.Logger) (repositories, func(), error) {
	if cfg.DBURL == "" {
		logger.Info("DB_URL empty, using seeded in-memory repositories")
		return repositories{
			seasons: memory.NewSeasonRepository(memory.SeedSeasons()),
			teams:   memory.NewTeamRepository(memory.SeedTeams()),
			matches: memory.NewMatchRepository(memory.SeedMatches(time.Now())),
			entries: memory.NewEntryRepository(nil),
			picks:   memory.NewPickRepository(),
			tokens:  memory.NewTokenRepository(nil),
		}, func() {}, nil
	}

	db, err := openDB(cfg)
	if err != nil {
		return repositories{}, nil, fmt.Errorf("connect database: %w", err)
	}

	seedCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := postgres.BootstrapSeed(seedCtx, db); err != nil {
		_ = db.Close()
		return repositories{}, nil, fmt.Errorf("bootstrap seed: %w", err)
	}

	cleanup := func() {
		if err := db.Close(); err != nil {
			logger.Error("close database", "error", err)
		}
	}

	return repositories{
		seasons: postgres.NewSeasonRepository(db),
		teams:   postgres.NewTeamRepository(db),
		matches: postgres.NewMatchRepository(db),
		entries: postgres.NewEntryRepository(db),
		picks:   postgres.NewPickRepository(db),
		tokens:  postgres.NewTokenRepository(db),
	}, cleanup, nil
}

func openDB(cfg config.Config) (*sqlx.DB, error) {
	db, err := otelsqlx.Connect("postgres", normalizeDBURL(cfg.DBURL, cfg.DBDisablePreparedBinary),
		otelsql.WithAttributes(attribute.String("db.system", "postgresql")),
		otelsql.WithDBName(dbNameFromURL(cfg.DBURL)),
		otelsql.WithQueryFormatter(formatDBQueryForTrace),
	)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(20)
	db.SetMaxIdleConns(5)
	db.SetConnMaxIdleTime(5 * time.Minute)

	return db, nil
}

func buildScheduleProvider(cfg config.Config, logger *logging.Logger) usecase.ScheduleProvider {
	if !cfg.GridironEnabled {
		return nil
	}

	return gridiron.NewClient(gridiron.ClientConfig{
		BaseURL:    cfg.GridironBaseURL,
		APIKey:     cfg.GridironAPIKey,
		Timeout:    cfg.GridironTimeout,
		MaxRetries: cfg.GridironMaxRetries,
		Logger:     logger,
		CircuitBreaker: resilience.CircuitBreakerConfig{
			Enabled:          cfg.GridironCircuitEnabled,
			FailureThreshold: cfg.GridironCircuitFailureCount,
			OpenTimeout:      cfg.GridironCircuitOpenTimeout,
			HalfOpenMaxReq:   cfg.GridironCircuitHalfOpenMaxReq,
		},
	})
}

func buildJobQueue(cfg config.Config, logger *slog.Logger) usecase.JobQueue {
	if !cfg.QStashEnabled {
		return usecase.NewNoopJobQueue()
	}

	return jobqueue.NewQStashPublisher(jobqueue.QStashPublisherConfig{
		BaseURL:          cfg.QStashBaseURL,
		Token:            cfg.QStashToken,
		TargetBaseURL:    cfg.QStashTargetBaseURL,
		Retries:          cfg.QStashRetries,
		InternalJobToken: cfg.InternalJobToken,
	}, logger)
}
