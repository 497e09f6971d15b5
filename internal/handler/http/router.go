package http

import (
	"log/slog"
	"os"

	"github.com/cmlabs-hris/attendance-normalizer/internal/domain/user"
	"github.com/cmlabs-hris/attendance-normalizer/internal/handler/http/middleware"
	"github.com/cmlabs-hris/attendance-normalizer/internal/pkg/jwt"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"
)

// RouterOptions carries the deployment-specific settings of the router.
type RouterOptions struct {
	AllowedOrigins []string
	Env            string
}

func NewRouter(
	JWTService jwt.Service,
	authHandler AuthHandler,
	uploadHandler UploadHandler,
	employeeHandler EmployeeHandler,
	notificationHandler NotificationHandler,
	reportHandler ReportHandler,
	opts RouterOptions,
) *chi.Mux {
	r := chi.NewRouter()
	logFormat := httplog.SchemaECS.Concise(false)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", "attendance-normalizer"),
		slog.String("version", "v1.0.0"),
		slog.String("env", opts.Env),
	)

	allowedOrigins := opts.AllowedOrigins
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"http://localhost:3000"}
	}

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link", "Content-Disposition"},
		MaxAge:           300,
	}))

	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  slog.LevelDebug,
		Schema: httplog.SchemaECS,
	}))

	r.Use(chiMiddleware.AllowContentEncoding("application/json"))
	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/"))

	r.Route("/api/v1", func(r chi.Router) {

		r.Route("/auth", func(r chi.Router) {
			r.Post("/login", authHandler.Login)

			r.Group(func(r chi.Router) {
				r.Use(jwtauth.Verifier(JWTService.JWTAuth()))
				r.Use(middleware.AuthRequired(JWTService))
				r.Post("/logout", authHandler.Logout)
				r.Get("/me", authHandler.Me)
			})
		})

		r.Route("/notifications", func(r chi.Router) {
			// EventSource cannot send headers, the stream takes ?token=
			r.With(
				jwtauth.Verify(JWTService.JWTAuth(), middleware.TokenFromQuery),
				middleware.AuthRequired(JWTService),
			).Get("/stream", notificationHandler.Stream)

			r.Group(func(r chi.Router) {
				r.Use(jwtauth.Verifier(JWTService.JWTAuth()))
				r.Use(middleware.AuthRequired(JWTService))
				r.Get("/", notificationHandler.List)

				r.Group(func(r chi.Router) {
					r.Use(middleware.RequirePermission(user.PermissionAcknowledgeAlerts))
					r.Post("/read", notificationHandler.MarkAsRead)
					r.Post("/read-all", notificationHandler.MarkAllAsRead)
				})
			})
		})

		// Requires authentication
		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verifier(JWTService.JWTAuth()))
			r.Use(middleware.AuthRequired(JWTService))

			r.Route("/templates", func(r chi.Router) {
				r.Get("/attendance", reportHandler.GetAttendanceTemplate)
				r.Get("/personnel", reportHandler.GetPersonnelTemplate)
			})

			r.With(middleware.RequirePermission(user.PermissionUploadWorkbooks)).
				Post("/uploads/{category}", uploadHandler.Upload)

			r.Route("/employees", func(r chi.Router) {
				r.Get("/", employeeHandler.ListEmployees)
				r.Get("/{id}", employeeHandler.GetEmployee)

				// Manager only
				r.Group(func(r chi.Router) {
					r.Use(middleware.RequireManager)
					r.Post("/", employeeHandler.CreateEmployee)
					r.Put("/{id}", employeeHandler.UpdateEmployee)
					r.Delete("/{id}", employeeHandler.DeleteEmployee)
				})
			})

			r.Route("/reports", func(r chi.Router) {
				r.With(middleware.RequirePermission(user.PermissionReportsExport)).
					Get("/export", reportHandler.Export)
				r.Get("/analytics", reportHandler.GetMonthAnalytics)
				r.Get("/summary", reportHandler.GetSummary)
			})
		})
	})
	return r
}
