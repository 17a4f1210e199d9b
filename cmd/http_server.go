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

	"github.com/wiratama/access-management/internal"
	"github.com/wiratama/access-management/internal/audit"
	auditpg "github.com/wiratama/access-management/internal/audit/postgres"
	"github.com/wiratama/access-management/internal/auth"
	authpg "github.com/wiratama/access-management/internal/auth/postgres"
	"github.com/wiratama/access-management/internal/rbac"
	rbacpg "github.com/wiratama/access-management/internal/rbac/postgres"
	"github.com/wiratama/access-management/internal/transport/rest"
	"github.com/wiratama/access-management/internal/transport/swagger"
	"github.com/wiratama/access-management/internal/user"
	userpg "github.com/wiratama/access-management/internal/user/postgres"
	"github.com/wiratama/access-management/pkg/logger"

	"github.com/go-chi/chi"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
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
	Config       *internal.Config
	DB           *sqlx.DB
	Router       *chi.Mux
	Logger       *slog.Logger
	AuthHandler  *auth.Handler
	UserHandler  *user.Handler
	RBACHandler  *rbac.Handler
	AuditHandler *audit.Handler
	AuditService *audit.Service
	Gate         *rbac.Gate
}

func startHTTPServer() {
	deps, err := initializeDependencies()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize dependencies: %v\n", err)
		os.Exit(1)
	}

	rest.RegisterAllRoutes(
		deps.Router,
		deps.DB.DB,
		deps.AuthHandler,
		deps.UserHandler,
		deps.RBACHandler,
		deps.AuditHandler,
		deps.AuditService,
		deps.Gate,
		deps.Logger,
	)

	addr := fmt.Sprintf(":%d", deps.Config.Server.Port)
	deps.Logger.Info("Starting HTTP server", "address", addr)

	server := &http.Server{
		Addr:              addr,
		Handler:           deps.Router,
		ReadHeaderTimeout: deps.Config.Server.ReadHeaderTimeout,
		ReadTimeout:       deps.Config.Server.ReadTimeout,
		WriteTimeout:      deps.Config.Server.WriteTimeout,
		IdleTimeout:       deps.Config.Server.IdleTimeout,
	}

	// Signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrChan := make(chan error, 1)
	go func() {
		serverErrChan <- server.ListenAndServe()
	}()

	select {
	case sig := <-sigChan:
		deps.Logger.Info("Received signal, shutting down...", "signal", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			deps.Logger.Error("Server shutdown error", "error", err)
		}
		if err := deps.DB.Close(); err != nil {
			deps.Logger.Error("Database close error", "error", err)
		}
	case err := <-serverErrChan:
		if err != nil && err != http.ErrServerClosed {
			deps.Logger.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}

	deps.Logger.Info("Server stopped")
}

func initializeDependencies() (*Dependencies, error) {
	config, err := loadConfig(".")
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger.Init(config.Observability.Logging.Format)
	lg := logger.LoggerWrapper()

	// A broken API document should stop the server before it serves traffic.
	if _, err := swagger.LoadSpec(context.Background(), "api/openapi.yml"); err != nil {
		return nil, err
	}

	db, err := initDB(config.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	// gorm shares the pgx connection pool instead of opening its own.
	gormDB, err := gorm.Open(gormpostgres.New(gormpostgres.Config{Conn: db.DB}), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize orm: %w", err)
	}

	userRepo := authpg.NewRepository(gormDB)
	rbacRepo := rbacpg.NewRepository(gormDB)
	auditStore := auditpg.NewStore(gormDB)
	profileRepo := userpg.NewRepository(gormDB)

	rbacService := rbac.NewService(rbacRepo, lg)

	tokens := auth.NewTokenCodec(config.Security.JWTSecret, config.Security.AccessTokenTTL)
	hasher := auth.NewPasswordHasher(config.Security.BcryptCost)
	authService := auth.NewService(userRepo, tokens, rbacService, hasher)

	bus := audit.NewEventBus(lg)
	auditService := audit.NewService(auditStore, bus, lg)

	gate := rbac.NewGate(tokens, rbacService, auditService, lg)

	return &Dependencies{
		Config:       config,
		DB:           db,
		Router:       chi.NewRouter(),
		Logger:       lg,
		AuthHandler:  auth.NewHandler(authService),
		UserHandler:  user.NewHandler(user.NewService(profileRepo)),
		RBACHandler:  rbac.NewHandler(rbacService),
		AuditHandler: audit.NewHandler(auditService),
		AuditService: auditService,
		Gate:         gate,
	}, nil
}

// initDB initializes the database connection
func initDB(cfg internal.DatabaseConfig) (*sqlx.DB, error) {
	const driver = "pgx"

	dbConn, err := sqlx.Connect(driver, cfg.Source)
	if err != nil {
		return nil, fmt.Errorf("failed to open db connection: %w", err)
	}

	dbConn.SetMaxIdleConns(cfg.MaxIdleConns)
	dbConn.SetMaxOpenConns(cfg.MaxOpenConns)

	// verify connection; close underlying *sql.DB on failure
	if err := dbConn.Ping(); err != nil {
		_ = dbConn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return dbConn, nil
}
