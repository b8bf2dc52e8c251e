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

	"github.com/frahmantamala/civic-complaints/internal"
	"github.com/frahmantamala/civic-complaints/internal/auth"
	authPostgres "github.com/frahmantamala/civic-complaints/internal/auth/postgres"
	"github.com/frahmantamala/civic-complaints/internal/complaint"
	complaintPostgres "github.com/frahmantamala/civic-complaints/internal/complaint/postgres"
	"github.com/frahmantamala/civic-complaints/internal/core/events"
	"github.com/frahmantamala/civic-complaints/internal/department"
	departmentPostgres "github.com/frahmantamala/civic-complaints/internal/department/postgres"
	"github.com/frahmantamala/civic-complaints/internal/media"
	"github.com/frahmantamala/civic-complaints/internal/transport/rest"
	"github.com/frahmantamala/civic-complaints/internal/user"
	userPostgres "github.com/frahmantamala/civic-complaints/internal/user/postgres"
	"github.com/frahmantamala/civic-complaints/pkg/logger"

	"github.com/go-chi/chi"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
	gormPostgres "gorm.io/driver/postgres"
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
	Config *internal.Config
	DB     *sqlx.DB
	Router *chi.Mux
	Logger *slog.Logger
}

func startHTTPServer() {
	deps, err := initializeDependencies()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize dependencies: %v\n", err)
		os.Exit(1)
	}

	addr := fmt.Sprintf(":%d", deps.Config.Server.Port)
	slog.Info("Starting HTTP server", "address", addr)

	server := &http.Server{
		Addr:              addr,
		Handler:           deps.Router,
		ReadHeaderTimeout: deps.Config.Server.ReadHeaderTimeout,
		ReadTimeout:       deps.Config.Server.ReadTimeout,
		WriteTimeout:      deps.Config.Server.WriteTimeout,
		IdleTimeout:       deps.Config.Server.IdleTimeout,
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrChan := make(chan error, 1)
	go func() {
		serverErrChan <- server.ListenAndServe()
	}()

	select {
	case sig := <-sigChan:
		slog.Info("Received signal, shutting down...", "signal", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			slog.Error("Server shutdown error", "error", err)
		}
		if err := deps.DB.Close(); err != nil {
			slog.Error("Database close error", "error", err)
		}
	case err := <-serverErrChan:
		if err != nil && err != http.ErrServerClosed {
			slog.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}

	slog.Info("Server stopped")
}

func initializeDependencies() (*Dependencies, error) {
	config, err := loadConfig(".")
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger.Init(config.Observability.Logging.Level, config.Observability.Logging.Format)
	lg := logger.L()

	db, gdb, err := initDB(config.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	bus := events.NewEventBus(lg)

	tokenGen := auth.NewJWTTokenGenerator(config.Security.JWTSecret, config.Security.TokenDuration)
	authService := auth.NewService(authPostgres.NewRepository(gdb), tokenGen, config.Security.AdminSecretKey, config.Security.BCryptCost, lg)
	authHandler := auth.NewHandler(authService)

	userService := user.NewService(userPostgres.NewRepository(gdb), lg)
	userHandler := user.NewHandler(userService)

	store := media.NewStore(config.Storage.UploadDir, media.NewPolicy(config.Storage.MaxUploadBytes), lg)

	complaintRepo := complaintPostgres.NewRepository(gdb)
	complaintService := complaint.NewService(complaintRepo, store, bus, lg)
	statsService := complaint.NewStatsService(complaintRepo, lg)

	departmentService := department.NewService(departmentPostgres.NewRepository(gdb), statsService, lg)
	departmentHandler := department.NewHandler(departmentService)

	registerCounterRefresh(bus, departmentService)

	router := chi.NewRouter()
	rest.RegisterAllRoutes(router, rest.RouterDeps{
		DB:                 db.DB,
		AllowedOrigins:     config.Server.AllowedOrigins,
		UploadDir:          config.Storage.UploadDir,
		AuthHandler:        authHandler,
		UserHandler:        userHandler,
		DepartmentHandler:  departmentHandler,
		ComplaintHandler:   complaint.NewHandler(complaintService, statsService),
		AdminHandler:       complaint.NewAdminHandler(complaintService, statsService),
		DeptComplaintsHand: complaint.NewDepartmentHandler(complaintService, statsService),
		Logger:             lg,
	})

	return &Dependencies{
		Config: config,
		DB:     db,
		Router: router,
		Logger: lg,
	}, nil
}

// registerCounterRefresh keeps the cached department counters in step with
// the complaints table by recomputing them after every lifecycle event.
func registerCounterRefresh(bus *events.EventBus, departments *department.Service) {
	refresh := func(ctx context.Context, event events.Event) error {
		ce, ok := event.(*events.ComplaintEvent)
		if !ok {
			return nil
		}
		if err := departments.RefreshCounters(ctx, ce.Department); err != nil {
			return err
		}
		if ce.PreviousDepartment != "" && ce.PreviousDepartment != ce.Department {
			return departments.RefreshCounters(ctx, ce.PreviousDepartment)
		}
		return nil
	}

	for _, eventType := range []string{
		events.EventTypeComplaintCreated,
		events.EventTypeComplaintAssigned,
		events.EventTypeComplaintResolved,
		events.EventTypeComplaintRated,
	} {
		bus.Subscribe(eventType, refresh)
	}
}

// initDB opens the pgx-backed pool and layers gorm over the same
// connection, so raw sqlx access and the gorm repositories share one pool.
func initDB(cfg internal.DatabaseConfig) (*sqlx.DB, *gorm.DB, error) {
	const driver = "pgx"

	dbConn, err := sqlx.Connect(driver, cfg.Source)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open db connection: %w", err)
	}

	dbConn.SetMaxIdleConns(cfg.MaxIdleConns)
	dbConn.SetMaxOpenConns(cfg.MaxOpenConns)
	dbConn.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	dbConn.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	if err := dbConn.Ping(); err != nil {
		_ = dbConn.Close()
		return nil, nil, fmt.Errorf("failed to ping database: %w", err)
	}

	gdb, err := gorm.Open(gormPostgres.New(gormPostgres.Config{Conn: dbConn.DB}), &gorm.Config{})
	if err != nil {
		_ = dbConn.Close()
		return nil, nil, fmt.Errorf("failed to initialize orm: %w", err)
	}

	return dbConn, gdb, nil
}
