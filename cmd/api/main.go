package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"

	_ "github.com/fkhayef/chama/docs"
	"github.com/fkhayef/chama/internal/amqp"
	"github.com/fkhayef/chama/internal/auth"
	"github.com/fkhayef/chama/internal/config"
	"github.com/fkhayef/chama/internal/contribution"
	"github.com/fkhayef/chama/internal/database"
	"github.com/fkhayef/chama/internal/group"
	"github.com/fkhayef/chama/internal/member"
	"github.com/fkhayef/chama/internal/notification"
	"github.com/fkhayef/chama/internal/storage/memory"
	"github.com/fkhayef/chama/internal/user"
	"github.com/fkhayef/chama/pkg/logging"
	mw "github.com/fkhayef/chama/pkg/middleware"
)

// @title           Chama API
// @version         1.0
// @description     Savings groups, their members and member contributions.
// @BasePath        /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	if err := run(); err != nil {
		slog.Error("Server exited with error", "error", err)
		os.Exit(1)
	}
}

// repositories is one storage backend
type repositories struct {
	users         user.Repository
	groups        group.Repository
	members       member.Repository
	contributions contribution.Repository
	notifications notification.Repository
	close         func() error
}

func openRepositories(cfg *config.Config) (*repositories, error) {
	if cfg.StorageBackend == config.BackendMemory {
		store := memory.New()
		slog.Warn("Using in-memory storage, data is lost on restart")
		return &repositories{
			users:         store.Users(),
			groups:        store.Groups(),
			members:       store.Members(),
			contributions: store.Contributions(),
			notifications: store.Notifications(),
			close:         func() error { return nil },
		}, nil
	}

	db, err := database.NewPostgresConnection(cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := database.RunMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	slog.Info("Connected to database successfully")

	return postgresRepositories(db), nil
}

func postgresRepositories(db *sql.DB) *repositories {
	return &repositories{
		users:         user.NewPostgresRepository(db),
		groups:        group.NewPostgresRepository(db),
		members:       member.NewPostgresRepository(db),
		contributions: contribution.NewPostgresRepository(db),
		notifications: notification.NewPostgresRepository(db),
		close:         db.Close,
	}
}

func run() error {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found, using environment variables")
	}

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return err
	}
	logging.Setup(cfg.LogLevel, cfg.LogFormat)

	repos, err := openRepositories(cfg)
	if err != nil {
		return err
	}
	defer repos.close()

	var publisher notification.Publisher
	if cfg.AMQPURL != "" {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange)
		if err != nil {
			return fmt.Errorf("failed to connect to message broker: %w", err)
		}
		defer client.Close()
		publisher = client
		slog.Info("Publishing events", "exchange", cfg.AMQPExchange)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	dispatcher := notification.NewDispatcher(repos.notifications, publisher, cfg.NotificationBuffer)
	registry.MustRegister(dispatcher.Collectors()...)

	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.TokenTTL)

	// Feature wiring
	userService := user.NewService(repos.users, jwtManager, cfg.RegistrationEnabled)
	groupService := group.NewService(repos.groups, dispatcher)
	memberService := member.NewService(repos.members, groupService, dispatcher)
	contributionService := contribution.NewService(repos.contributions, memberService, groupService, dispatcher)
	notificationService := notification.NewService(repos.notifications)

	router := newRouter(handlers{
		users:         user.NewHandler(userService),
		groups:        group.NewHandler(groupService),
		members:       member.NewHandler(memberService),
		contributions: contribution.NewHandler(contributionService),
		notifications: notification.NewHandler(notificationService),
	}, jwtManager, mw.NewMetrics(registry), registry)

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return dispatcher.Run(ctx)
	})
	g.Go(func() error {
		slog.Info("Server starting", "addr", srv.Addr, "storage", cfg.StorageBackend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		slog.Info("Shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
