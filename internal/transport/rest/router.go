package rest

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/frahmantamala/civic-complaints/internal/auth"
	"github.com/frahmantamala/civic-complaints/internal/complaint"
	"github.com/frahmantamala/civic-complaints/internal/department"
	"github.com/frahmantamala/civic-complaints/internal/transport/middleware"
	"github.com/frahmantamala/civic-complaints/internal/transport/swagger"
	"github.com/frahmantamala/civic-complaints/internal/user"
	"github.com/go-chi/chi"
	chiMiddleware "github.com/go-chi/chi/middleware"
)

// RouterDeps bundles everything route registration needs.
type RouterDeps struct {
	DB                 *sql.DB
	AllowedOrigins     string
	UploadDir          string
	AuthHandler        *auth.Handler
	UserHandler        *user.Handler
	DepartmentHandler  *department.Handler
	ComplaintHandler   *complaint.Handler
	AdminHandler       *complaint.AdminHandler
	DeptComplaintsHand *complaint.DepartmentHandler
	Logger             *slog.Logger
}

// RegisterAllRoutes wires the complete HTTP surface: public auth and
// directory routes, then the citizen, admin and department groups, each
// behind authentication plus its role gate.
func RegisterAllRoutes(router *chi.Mux, deps RouterDeps) {
	healthHandler := NewHealthHandler(deps.DB)

	// Global middleware
	router.Use(middleware.CORS(deps.AllowedOrigins))
	router.Use(chiMiddleware.RequestID)
	router.Use(middleware.RequestID)
	router.Use(middleware.RecoveryMiddleware(deps.Logger))
	router.Use(middleware.LoggingMiddleware(deps.Logger))

	// OpenAPI spec and Swagger UI at root, outside the API prefix
	router.Get("/openapi.yml", func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, "./api/openapi.yml")
	})
	router.Handle("/swagger/*", swagger.Handler())

	// Uploaded complaint media is served statically.
	if deps.UploadDir != "" {
		fileServer := http.StripPrefix("/uploads/", http.FileServer(http.Dir(deps.UploadDir)))
		router.Handle("/uploads/*", fileServer)
	}

	router.Route("/api", func(r chi.Router) {
		r.Get("/health", healthHandler.healthCheckHandler)
		r.Get("/ping", healthHandler.pingHandler)

		// Public department directory
		if deps.DepartmentHandler != nil {
			r.Get("/departments", deps.DepartmentHandler.List)
			r.Get("/departments/{name}", deps.DepartmentHandler.Get)
		}

		if deps.AuthHandler == nil {
			return
		}

		r.Route("/auth", func(sr chi.Router) {
			sr.Post("/signup", deps.AuthHandler.Signup)
			sr.Post("/login", deps.AuthHandler.Login)
			sr.Post("/admin-login", deps.AuthHandler.AdminLogin)
			sr.Post("/department-login", deps.AuthHandler.DepartmentLogin)

			if deps.UserHandler != nil {
				sr.Group(func(pr chi.Router) {
					pr.Use(deps.AuthHandler.AuthMiddleware)
					pr.Get("/profile", deps.UserHandler.Profile)
				})
			}
		})

		// Citizen surface
		if deps.ComplaintHandler != nil {
			r.Route("/complaints", func(cr chi.Router) {
				cr.Use(deps.AuthHandler.AuthMiddleware)
				cr.Use(deps.AuthHandler.RequireRole(auth.RoleCitizen))

				cr.Post("/", deps.ComplaintHandler.Create)
				cr.Get("/my-complaints", deps.ComplaintHandler.MyComplaints)
				cr.Get("/stats/my-stats", deps.ComplaintHandler.MyStats)
				cr.Get("/{id}", deps.ComplaintHandler.Get)
				cr.Post("/{id}/rate", deps.ComplaintHandler.Rate)
			})
		}

		// Administration surface
		if deps.AdminHandler != nil {
			r.Route("/admin", func(ar chi.Router) {
				ar.Use(deps.AuthHandler.AuthMiddleware)
				ar.Use(deps.AuthHandler.RequireRole(auth.RoleAdmin))

				ar.Get("/complaints", deps.AdminHandler.ListComplaints)
				ar.Put("/complaints/{id}/priority", deps.AdminHandler.UpdatePriority)
				ar.Put("/complaints/{id}/assign", deps.AdminHandler.AssignDepartment)
				ar.Put("/complaints/{id}/status", deps.AdminHandler.UpdateStatus)
				ar.Get("/dashboard/stats", deps.AdminHandler.DashboardStats)

				if deps.UserHandler != nil {
					ar.Get("/users", deps.UserHandler.List)
				}
			})
		}

		// Department staff surface
		if deps.DeptComplaintsHand != nil {
			r.Route("/department", func(dr chi.Router) {
				dr.Use(deps.AuthHandler.AuthMiddleware)
				dr.Use(deps.AuthHandler.RequireRole(auth.RoleDepartment))

				dr.Get("/complaints", deps.DeptComplaintsHand.ListComplaints)
				dr.Get("/complaints/{id}", deps.DeptComplaintsHand.GetComplaint)
				dr.Put("/complaints/{id}/status", deps.DeptComplaintsHand.UpdateStatus)
				dr.Post("/complaints/{id}/resolve", deps.DeptComplaintsHand.SubmitResolution)
				dr.Get("/stats", deps.DeptComplaintsHand.DepartmentStats)
			})
		}
	})
}
