package app

import (
	"fmt"
	"net/http"
	"time"

	"github.com/agsa/field-scheduler/internal/config"
	"github.com/agsa/field-scheduler/internal/domain/availability"
	"github.com/agsa/field-scheduler/internal/domain/league"
	"github.com/agsa/field-scheduler/internal/domain/schedule"
	"github.com/agsa/field-scheduler/internal/domain/slot"
	"github.com/agsa/field-scheduler/internal/domain/team"
	"github.com/agsa/field-scheduler/internal/infrastructure/notify"
	"github.com/agsa/field-scheduler/internal/infrastructure/repository/memory"
	"github.com/agsa/field-scheduler/internal/infrastructure/repository/postgres"
	"github.com/agsa/field-scheduler/internal/interfaces/httpapi"
	"github.com/agsa/field-scheduler/internal/platform/cache"
	idgen "github.com/agsa/field-scheduler/internal/platform/id"
	"github.com/agsa/field-scheduler/internal/platform/logging"
	"github.com/agsa/field-scheduler/internal/platform/resilience"
	"github.com/agsa/field-scheduler/internal/usecase"
)

type repositories struct {
	slots        slot.Repository
	slotRequests slot.RequestRepository
	leagues      league.Repository
	teams        team.Repository
	rules        availability.RuleRepository
	runs         schedule.RunRepository
}

func buildRepositories(cfg config.Config) (repositories, error) {
	switch cfg.StorageDriver {
	case config.StoragePostgres:
		db, err := openDB(cfg)
		if err != nil {
			return repositories{}, err
		}
		return repositories{
			slots:        postgres.NewSlotRepository(db),
			slotRequests: postgres.NewSlotRequestRepository(db),
			leagues:      postgres.NewLeagueRepository(db),
			teams:        postgres.NewTeamRepository(db),
			rules:        postgres.NewAvailabilityRepository(db),
			runs:         postgres.NewRunRepository(db),
		}, nil
	case config.StorageMemory:
		return repositories{
			slots:        memory.NewSlotRepository(),
			slotRequests: memory.NewSlotRequestRepository(),
			leagues:      memory.NewLeagueRepository(memory.SeedLeagues()),
			teams:        memory.NewTeamRepository(memory.SeedTeams()),
			rules:        memory.NewAvailabilityRepository(memory.SeedAvailabilityRules()),
			runs:         memory.NewRunRepository(),
		}, nil
	default:
		return repositories{}, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
	}
}

func NewHTTPServer(cfg config.Config, logger *logging.Logger) (*http.Server, error) {
	if logger == nil {
		logger = logging.Default()
	}

	repos, err := buildRepositories(cfg)
	if err != nil {
		return nil, err
	}

	// A nanosecond TTL expires entries before the next read, which
	// disables the preview cache without a second code path.
	previewTTL := cfg.CacheTTL
	if !cfg.CacheEnabled {
		previewTTL = time.Nanosecond
	}
	previewCache := cache.NewStore(previewTTL)

	idGenerator := idgen.NewRandomGenerator()

	slotService := usecase.NewSlotService(repos.slots, repos.slotRequests, repos.leagues, idGenerator, logger)
	availabilityService := usecase.NewAvailabilityService(repos.rules, repos.slots, repos.leagues, idGenerator, previewCache, logger)
	scheduleService := usecase.NewScheduleService(repos.slots, repos.teams, repos.leagues, repos.runs, availabilityService, idGenerator, logger)
	importService := usecase.NewImportService(repos.slots, repos.leagues, idGenerator, logger)

	if cfg.WebhookEnabled {
		publisher := notify.NewWebhookPublisher(notify.WebhookPublisherConfig{
			URL:     cfg.WebhookURL,
			Token:   cfg.WebhookToken,
			Timeout: cfg.WebhookTimeout,
			CircuitBreaker: resilience.CircuitBreakerConfig{
				Enabled:          cfg.WebhookCircuitEnabled,
				FailureThreshold: cfg.WebhookCircuitFailureCount,
				OpenTimeout:      cfg.WebhookCircuitOpenTimeout,
				HalfOpenMaxReq:   cfg.WebhookCircuitHalfOpenMax,
			},
		}, logger)
		scheduleService.SetEventPublisher(publisher)
	}

	handler := httpapi.NewHandler(slotService, availabilityService, scheduleService, importService, logger)
	router := httpapi.NewRouter(handler, logger, cfg.CORSAllowedOrigins, cfg.AdminToken)

	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadTimeout:       cfg.ReadTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		ReadHeaderTimeout: 5 * time.Second,
	}

	if server.Addr == "" {
		return nil, fmt.Errorf("http server addr cannot be empty")
	}

	return server, nil
}
