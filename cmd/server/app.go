package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/phrazzld/tasker-api/internal/config"
	"github.com/phrazzld/tasker-api/internal/domain"
	"github.com/phrazzld/tasker-api/internal/platform/logger"
	"github.com/phrazzld/tasker-api/internal/platform/memory"
	"github.com/phrazzld/tasker-api/internal/platform/metrics"
	"github.com/phrazzld/tasker-api/internal/platform/postgres"
	"github.com/phrazzld/tasker-api/internal/service"
	"github.com/phrazzld/tasker-api/internal/service/auth"
	"github.com/phrazzld/tasker-api/internal/store"
)

// application holds all the shared application dependencies to simplify management
// and ensure proper cleanup on shutdown.
type application struct {
	config *config.Config

	facade *logger.Facade
	logger *slog.Logger
	db     *sql.DB

	accountStore store.DocumentStore[domain.Account]
	taskStore    store.DocumentStore[domain.Task]
	commentStore store.DocumentStore[domain.Comment]

	jwtService     auth.JWTService
	accountService service.AccountService
	taskService    service.TaskService
	commentService service.CommentService
}

// newApplication builds logging, opens the configured document store and
// wires the services.
func newApplication(ctx context.Context, cfg *config.Config, provider config.Provider) (*application, error) {
	metrics.Init()

	facade, log := setupLogging(cfg, provider)
	app := &application{
		config: cfg,
		facade: facade,
		logger: log,
	}

	if err := app.setupStores(ctx); err != nil {
		app.cleanup()
		return nil, err
	}

	if err := app.setupServices(); err != nil {
		app.cleanup()
		return nil, err
	}

	log.Info("application initialized", slog.String("database_driver", cfg.Database.Driver))
	return app, nil
}

// setupStores opens the document collections for the configured driver.
func (app *application) setupStores(ctx context.Context) error {
	switch app.config.Database.Driver {
	case driverPostgres:
		db, err := setupAppDatabase(ctx, app.config, app.logger)
		if err != nil {
			return err
		}
		app.db = db

		if app.config.Database.AutoMigrate {
			if err := postgres.Migrate(ctx, db, postgres.MigrateUp, app.logger); err != nil {
				return fmt.Errorf("failed to apply migrations: %w", err)
			}
		}

		app.accountStore = postgres.NewDocumentStore[domain.Account](db, store.CollectionAccounts, app.logger)
		app.taskStore = postgres.NewDocumentStore[domain.Task](db, store.CollectionTasks, app.logger)
		app.commentStore = postgres.NewDocumentStore[domain.Comment](db, store.CollectionComments, app.logger)
	case driverMemory:
		app.logger.Warn("using in-memory document store; data is lost on shutdown")
		app.accountStore = memory.NewDocumentStore[domain.Account](store.CollectionAccounts)
		app.taskStore = memory.NewDocumentStore[domain.Task](store.CollectionTasks)
		app.commentStore = memory.NewDocumentStore[domain.Comment](store.CollectionComments)
	default:
		return fmt.Errorf("unsupported database driver %q", app.config.Database.Driver)
	}
	return nil
}

func (app *application) setupServices() error {
	var err error

	app.jwtService, err = auth.NewJWTService(app.config.Auth)
	if err != nil {
		return fmt.Errorf("failed to initialize JWT service: %w", err)
	}
	app.logger.Info("JWT authentication service initialized",
		slog.Int("token_lifetime_minutes", app.config.Auth.TokenLifetimeMinutes))

	app.accountService, err = service.NewAccountService(
		app.accountStore,
		auth.NewBcryptVerifier(app.config.Auth.BcryptCost),
		app.jwtService,
		app.logger,
	)
	if err != nil {
		return fmt.Errorf("failed to create account service: %w", err)
	}

	app.taskService, err = service.NewTaskService(app.taskStore, app.logger)
	if err != nil {
		return fmt.Errorf("failed to create task service: %w", err)
	}

	app.commentService, err = service.NewCommentService(app.commentStore, app.taskStore, app.logger)
	if err != nil {
		return fmt.Errorf("failed to create comment service: %w", err)
	}
	return nil
}

// Run serves HTTP until ctx is canceled, then shuts down and releases
// resources.
func (app *application) Run(ctx context.Context) error {
	err := app.startHTTPServer(ctx, app.setupRouter())
	app.cleanup()
	if err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// cleanup handles graceful shutdown of application resources. The facade
// is closed last so shutdown logging still reaches every transport.
func (app *application) cleanup() {
	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("error closing database connection", slog.Any("error", err))
		}
		app.db = nil
	}

	app.logger.Info("application shutdown completed")

	if app.facade != nil {
		if err := app.facade.Close(); err != nil {
			logger.Fallback().Error("failed to close log transports", slog.Any("error", err))
		}
		app.facade = nil
	}
}
