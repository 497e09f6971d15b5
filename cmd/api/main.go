package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/cmlabs-hris/attendance-normalizer/internal/config"
	"github.com/cmlabs-hris/attendance-normalizer/internal/domain/employee"
	"github.com/cmlabs-hris/attendance-normalizer/internal/domain/user"
	appHTTP "github.com/cmlabs-hris/attendance-normalizer/internal/handler/http"
	"github.com/cmlabs-hris/attendance-normalizer/internal/pkg/cron"
	"github.com/cmlabs-hris/attendance-normalizer/internal/pkg/database"
	"github.com/cmlabs-hris/attendance-normalizer/internal/pkg/jwt"
	"github.com/cmlabs-hris/attendance-normalizer/internal/pkg/sse"
	"github.com/cmlabs-hris/attendance-normalizer/internal/pkg/storage"
	"github.com/cmlabs-hris/attendance-normalizer/internal/repository/memory"
	"github.com/cmlabs-hris/attendance-normalizer/internal/repository/postgresql"
	serviceAuth "github.com/cmlabs-hris/attendance-normalizer/internal/service/auth"
	employeeService "github.com/cmlabs-hris/attendance-normalizer/internal/service/employee"
	"github.com/cmlabs-hris/attendance-normalizer/internal/service/file"
	ingestService "github.com/cmlabs-hris/attendance-normalizer/internal/service/ingest"
	reportService "github.com/cmlabs-hris/attendance-normalizer/internal/service/report"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Println("Error loading config:", err)
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var (
		employeeRepo employee.EmployeeRepository
		transactor   database.Transactor
	)
	if cfg.UsesDatabase() {
		db, err := database.NewPostgreSQLDB(cfg.DatabaseURL())
		if err != nil {
			fmt.Println("Error connecting to database:", err)
			return
		}
		defer db.Close()
		employeeRepo = postgresql.NewEmployeeRepository(db)
		transactor = postgresql.NewTransactor(db)
	} else {
		slog.Warn("DB_HOST is not set, employee records are kept in memory")
		store := memory.NewEmployeeStore()
		employeeRepo = store
		transactor = store
	}

	fileStorage, err := storage.NewLocalStorage(cfg.Storage.BasePath)
	if err != nil {
		log.Fatal("Failed to initialize local storage:", err)
	}
	fileService := file.NewFileService(fileStorage)

	accounts, err := serviceAuth.StaffAccounts(cfg.Auth.AdminUsers, cfg.Auth.ManagerUsers, cfg.Auth.PasswordHash)
	if err != nil {
		log.Fatal("Failed to prepare staff accounts:", err)
	}

	JWTService := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration)

	hub := sse.NewHub()

	// uploads, edits and the baseline sync share one write lock
	writeLock := &sync.Mutex{}
	employeeSvc := employeeService.NewEmployeeService(employeeRepo, transactor, writeLock)
	ingestSvc := ingestService.NewIngestService(employeeRepo, transactor, fileService, hub, writeLock, ingestService.MergeOptions{})
	reportSvc := reportService.NewReportService(employeeRepo)
	authService := serviceAuth.NewAuthService(JWTService, employeeRepo, accounts)

	scheduler := cron.NewScheduler(ctx)
	if cfg.Storage.BaselinePath != "" {
		scheduler.AddJob("baseline-sync", cfg.Storage.BaselineSyncInterval, func(ctx context.Context) error {
			return syncBaseline(ctx, cfg.Storage.BaselinePath, JWTService, employeeSvc)
		})
		if err := syncBaseline(ctx, cfg.Storage.BaselinePath, JWTService, employeeSvc); err != nil {
			slog.Error("Baseline sync failed, serving local records only", "path", cfg.Storage.BaselinePath, "error", err)
		}
	}
	scheduler.Start()
	defer scheduler.Stop()

	authHandler := appHTTP.NewAuthHandler(authService)
	uploadHandler := appHTTP.NewUploadHandler(ingestSvc)
	employeeHandler := appHTTP.NewEmployeeHandler(employeeSvc)
	notificationHandler := appHTTP.NewNotificationHandler(reportSvc, employeeSvc, hub)
	reportHandler := appHTTP.NewReportHandler(reportSvc)

	router := appHTTP.NewRouter(
		JWTService,
		authHandler,
		uploadHandler,
		employeeHandler,
		notificationHandler,
		reportHandler,
		appHTTP.RouterOptions{
			AllowedOrigins: cfg.App.AllowedOrigins,
			Env:            cfg.App.Env,
		},
	)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		fmt.Printf("Server running at http://localhost%s\n", server.Addr)
		errCh <- server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			fmt.Println("Server shutdown error:", err)
		}
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			fmt.Println("Server error:", err)
		}
	}
}

// syncBaseline reconciles the shared baseline into local state as the system
// administrator.
func syncBaseline(ctx context.Context, path string, jwtService jwt.Service, employeeSvc employee.EmployeeService) error {
	baseline, err := loadBaseline(path)
	if err != nil {
		return err
	}

	systemCtx, err := jwt.NewContext(ctx, jwtService.JWTAuth(), user.Principal{Username: "SYSTEM", Role: user.RoleAdmin})
	if err != nil {
		return err
	}

	result, err := employeeSvc.SyncBaseline(systemCtx, baseline)
	if err != nil {
		return err
	}

	slog.Info("Baseline synced",
		"local", result.LocalCount,
		"baseline", result.BaselineCount,
		"merged", result.MergedCount,
		"suppressed", result.SuppressedCount,
	)
	return nil
}
