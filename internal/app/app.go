package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"sync"

	"github.com/Maniackaa/Bot-seller-link-2/internal/config"
	"github.com/Maniackaa/Bot-seller-link-2/internal/infra/telegram"
	"github.com/Maniackaa/Bot-seller-link-2/internal/repo/postgres"
	"github.com/Maniackaa/Bot-seller-link-2/internal/services/cashouts"
	linkssvc "github.com/Maniackaa/Bot-seller-link-2/internal/services/links"
	"github.com/Maniackaa/Bot-seller-link-2/internal/services/notify"
	"github.com/Maniackaa/Bot-seller-link-2/internal/services/registration"
	statssvc "github.com/Maniackaa/Bot-seller-link-2/internal/services/stats"
	"github.com/Maniackaa/Bot-seller-link-2/internal/services/worklinks"
)

type App struct {
	cfg    config.Config
	logger *slog.Logger
	db     *sql.DB
	tg     *telegram.Client

	usersRepo *postgres.UsersRepo

	registrationService *registration.Service
	linksService        *linkssvc.Service
	workLinksService    *worklinks.Service
	cashOutsService     *cashouts.Service
	statsService        *statssvc.Service
	notifier            *notify.Service

	surveyMu     sync.Mutex
	surveyByChat map[int64]surveyState

	inputMu     sync.Mutex
	inputByChat map[int64]inputState
}

func New(cfg config.Config, logger *slog.Logger) (*App, error) {
	if logger == nil {
		logger = slog.Default()
	}

	db, err := postgres.Open(context.Background(), cfg.DatabaseURL)
	if err != nil {
		logger.Warn("postgres unavailable, continuing without database", "error", err)
		db = nil
	}
	if db != nil {
		if err := postgres.EnsureSchema(context.Background(), db); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("ensure schema: %w", err)
		}
	}

	usersRepo := postgres.NewUsersRepo(db)
	requestsRepo := postgres.NewRequestsRepo(db)
	linksRepo := postgres.NewLinksRepo(db)
	workLinksRepo := postgres.NewWorkLinksRepo(db)
	cashOutsRepo := postgres.NewCashOutsRepo(db)
	statsRepo := postgres.NewStatsRepo(db)

	app := &App{
		cfg:                 cfg,
		logger:              logger,
		db:                  db,
		usersRepo:           usersRepo,
		registrationService: registration.NewService(requestsRepo, usersRepo),
		linksService:        linkssvc.NewService(linksRepo, usersRepo),
		workLinksService:    worklinks.NewService(workLinksRepo, usersRepo),
		cashOutsService:     cashouts.NewService(cashOutsRepo, usersRepo),
		statsService:        statssvc.NewService(statsRepo),
		surveyByChat:        make(map[int64]surveyState),
		inputByChat:         make(map[int64]inputState),
	}

	app.tg, err = telegram.NewClient(cfg.BotToken, cfg.PollTimeoutSeconds, logger, app.routeUpdate)
	if err != nil {
		if db != nil {
			_ = db.Close()
		}
		return nil, fmt.Errorf("create telegram client: %w", err)
	}
	app.notifier = notify.NewService(app.tg, cfg.GroupID, logger)

	return app, nil
}

func (a *App) Run(ctx context.Context) error {
	defer a.close()
	return a.tg.Start(ctx)
}

func (a *App) close() {
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.logger.Error("close postgres", "error", err)
		}
	}
}
