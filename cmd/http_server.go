package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/opsvista/opsvista/internal"
	"github.com/opsvista/opsvista/internal/alert"
	alertPostgres "github.com/opsvista/opsvista/internal/alert/postgres"
	"github.com/opsvista/opsvista/internal/auth"
	authPostgres "github.com/opsvista/opsvista/internal/auth/postgres"
	"github.com/opsvista/opsvista/internal/cluster"
	clusterPostgres "github.com/opsvista/opsvista/internal/cluster/postgres"
	"github.com/opsvista/opsvista/internal/core/events"
	"github.com/opsvista/opsvista/internal/integration"
	"github.com/opsvista/opsvista/internal/observability"
	"github.com/opsvista/opsvista/internal/organization"
	orgPostgres "github.com/opsvista/opsvista/internal/organization/postgres"
	"github.com/opsvista/opsvista/internal/pipeline"
	pipelinePostgres "github.com/opsvista/opsvista/internal/pipeline/postgres"
	"github.com/opsvista/opsvista/internal/project"
	projectPostgres "github.com/opsvista/opsvista/internal/project/postgres"
	"github.com/opsvista/opsvista/internal/rbac"
	rbacPostgres "github.com/opsvista/opsvista/internal/rbac/postgres"
	"github.com/opsvista/opsvista/internal/team"
	teamPostgres "github.com/opsvista/opsvista/internal/team/postgres"
	"github.com/opsvista/opsvista/internal/transport"
	"github.com/opsvista/opsvista/internal/transport/rest"
	"github.com/opsvista/opsvista/internal/user"
	userPostgres "github.com/opsvista/opsvista/internal/user/postgres"
	"github.com/opsvista/opsvista/internal/ws"
	"github.com/opsvista/opsvista/pkg/logger"
)

var httpServerCmd = &cobra.Command{
	Use:   "server",
	Short: "Start HTTP server",
	Long:  `Start the HTTP server to handle API requests`,
	Run: func(cmd *cobra.Command, args []string) {
		startHTTPServer()
	},
}

type Dependencies struct {
	Config   *internal.Config
	DB       *sqlx.DB
	GormDB   *gorm.DB
	Router   *chi.Mux
	Logger   *slog.Logger
	Cache    *rbac.DecisionCache
	Audit    *rbac.DBAuditRecorder
	Hub      *ws.Hub
	Handlers rest.Handlers
	Guard    *rbac.Guard
	Metrics  *observability.Metrics
}

func startHTTPServer() {
	deps, err := initializeDependencies()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize dependencies: %v\n", err)
		os.Exit(1)
	}

	go deps.Hub.Run()
	rest.RegisterAllRoutes(deps.Router, deps.DB.DB, deps.Handlers, deps.Guard, deps.Metrics, deps.Logger)

	addr := fmt.Sprintf(":%d", deps.Config.Server.Port)
	deps.Logger.Info("starting HTTP server", "address", addr)

	server := &http.Server{
		Addr:         addr,
		Handler:      deps.Router,
		ReadTimeout:  deps.Config.Server.ReadTimeout,
		WriteTimeout: deps.Config.Server.WriteTimeout,
		IdleTimeout:  deps.Config.Server.IdleTimeout,
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrChan := make(chan error, 1)
	go func() {
		serverErrChan <- server.ListenAndServe()
	}()

	select {
	case sig := <-sigChan:
		deps.Logger.Info("received signal, shutting down", "signal", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			deps.Logger.Error("server shutdown error", "error", err)
		}
		deps.Hub.Stop()
		deps.Cache.Stop()
		deps.Audit.Close()
		if err := deps.DB.Close(); err != nil {
			deps.Logger.Error("database close error", "error", err)
		}
	case err := <-serverErrChan:
		if err != nil && err != http.ErrServerClosed {
			deps.Logger.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}

	deps.Logger.Info("server stopped")
}

func initializeDependencies() (*Dependencies, error) {
	config, err := loadConfig(".")
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger.Init(os.Getenv("APP_ENV"))
	log := logger.LoggerWrapper()

	db, err := initDB(config.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	gormDB, err := gorm.Open(gormpostgres.New(gormpostgres.Config{Conn: db.DB}), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize gorm: %w", err)
	}

	// permission core
	registry, err := rbac.NewRegistry(rbac.RoleDefinitions())
	if err != nil {
		return nil, fmt.Errorf("failed to build role registry: %w", err)
	}

	cache := rbac.NewDecisionCache(config.RBAC.CacheTTL, rbac.WithMaxEntries(config.RBAC.CacheMaxEntries))
	cache.StartSweep(config.RBAC.SweepInterval)

	metrics := observability.NewMetrics()
	audit := rbac.NewDBAuditRecorder(gormDB, log, config.RBAC.AuditBufferSize)

	evaluator := rbac.NewEvaluator(registry, cache, log,
		rbac.WithAuditRecorder(audit),
		rbac.WithMetrics(metrics),
		rbac.WithSuperAdminPriority(config.RBAC.SuperAdminPriority),
	)

	// events and the websocket fanout
	bus := events.NewEventBus(log)
	hub := ws.NewHub(log)
	hub.SubscribeToEvents(bus)

	grants := rbacPostgres.NewGrantRepository(gormDB)
	rbacService := rbac.NewService(registry, cache, evaluator, grants, log,
		rbac.WithEventBus(bus),
		rbac.WithStatsStore(rbacPostgres.NewStatsRepository(gormDB)),
	)

	guard, err := rbac.NewGuard(rbacService, log, rbac.DefaultRouteRules(), rbac.DefaultPublicPaths())
	if err != nil {
		return nil, fmt.Errorf("failed to build route guard: %w", err)
	}

	// auth
	tokenGen := auth.NewJWTTokenGenerator(
		config.Security.AccessTokenSecret,
		config.Security.RefreshTokenSecret,
		auth.TokenTTLs{
			Access:  config.Security.AccessTokenDuration,
			Refresh: config.Security.RefreshTokenDuration,
		},
	)
	authService := auth.NewService(authPostgres.NewRepository(gormDB), tokenGen, config.Security.BCryptCost)
	authHandler := auth.NewHandler(authService)

	base := transport.NewBaseHandler(log)

	handlers := rest.Handlers{
		Auth:         authHandler,
		RBAC:         rbac.NewHandler(base, rbacService),
		Organization: organization.NewHandler(base, organization.NewService(orgPostgres.NewOrganizationRepository(gormDB), log)),
		User:         user.NewHandler(base, user.NewService(userPostgres.NewUserRepository(gormDB), registry, config.Security.BCryptCost, log)),
		Team:         team.NewHandler(base, team.NewService(teamPostgres.NewTeamRepository(gormDB), log)),
		Project:      project.NewHandler(base, project.NewService(projectPostgres.NewProjectRepository(gormDB), log)),
		Pipeline:     pipeline.NewHandler(base, pipeline.NewService(pipelinePostgres.NewPipelineRepository(gormDB), bus, log)),
		Cluster:      cluster.NewHandler(base, cluster.NewService(clusterPostgres.NewClusterRepository(gormDB), log)),
		Alert:        alert.NewHandler(base, alert.NewService(alertPostgres.NewAlertRepository(gormDB), bus, log)),
		Kubernetes:   integration.NewKubernetesHandler(base),
		Ansible:      integration.NewAnsibleHandler(base),
		Slack:        integration.NewSlackHandler(base),
		WS:           ws.NewHandler(base, hub),
	}

	return &Dependencies{
		Config:   config,
		DB:       db,
		GormDB:   gormDB,
		Router:   chi.NewRouter(),
		Logger:   log,
		Cache:    cache,
		Audit:    audit,
		Hub:      hub,
		Handlers: handlers,
		Guard:    guard,
		Metrics:  metrics,
	}, nil
}

// initDB opens the pgx-backed connection pool shared by sqlx and gorm.
func initDB(cfg internal.DatabaseConfig) (*sqlx.DB, error) {
	const driver = "pgx"

	dbConn, err := sqlx.Connect(driver, cfg.Source)
	if err != nil {
		return nil, fmt.Errorf("failed to open db connection: %w", err)
	}

	dbConn.SetMaxIdleConns(cfg.MaxIdleConns)
	dbConn.SetMaxOpenConns(cfg.MaxOpenConns)
	dbConn.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	dbConn.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	if err := dbConn.Ping(); err != nil {
		_ = dbConn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return dbConn, nil
}
