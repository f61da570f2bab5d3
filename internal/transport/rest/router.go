package rest

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	chiMiddleware "github.com/go-chi/chi/middleware"

	"github.com/fathurrohman/library-management/internal/account"
	"github.com/fathurrohman/library-management/internal/auth"
	"github.com/fathurrohman/library-management/internal/catalog"
	"github.com/fathurrohman/library-management/internal/lending"
	"github.com/fathurrohman/library-management/internal/notification"
	"github.com/fathurrohman/library-management/internal/transport/middleware"
	"github.com/fathurrohman/library-management/internal/transport/swagger"
)

// RegisterAllRoutes wires every handler onto the router. Role gates live here
// so one file shows the whole permission surface; the services still re-check
// anything that matters (admin approval is verified against the store, not
// the token).
func RegisterAllRoutes(
	router *chi.Mux,
	db *sql.DB,
	authHandler *auth.Handler,
	accountHandler *account.Handler,
	catalogHandler *catalog.Handler,
	lendingHandler *lending.Handler,
	notificationHandler *notification.Handler,
	dashboardHandler *DashboardHandler,
	logger *slog.Logger,
) {
	healthHandler := NewHealthHandler(db)

	router.Use(middleware.CORS)
	router.Use(chiMiddleware.RequestID)
	router.Use(middleware.RequestID)
	router.Use(middleware.RecoveryMiddleware(logger))
	router.Use(middleware.LoggingMiddleware(logger))

	router.Get("/openapi.yml", func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, "./api/openapi.yml")
	})
	router.Handle("/swagger/*", swagger.Handler())

	router.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", healthHandler.healthCheckHandler)
		r.Get("/ping", healthHandler.pingHandler)

		r.Route("/auth", func(sr chi.Router) {
			sr.Post("/login", authHandler.Login)
			sr.Post("/refresh", authHandler.RefreshToken)
			sr.Post("/logout", authHandler.Logout)
		})

		// Self-service signup, no token required. The account starts inactive.
		r.Post("/users/register", accountHandler.Register)

		r.Group(func(pr chi.Router) {
			pr.Use(authHandler.AuthMiddleware)

			pr.Get("/users/me", accountHandler.GetCurrentUser)

			pr.Route("/notifications", func(nr chi.Router) {
				nr.Get("/", notificationHandler.List)
				nr.Patch("/{id}/read", notificationHandler.MarkRead)
				nr.Delete("/{id}", notificationHandler.Delete)
			})

			pr.Route("/books", func(br chi.Router) {
				br.Get("/", catalogHandler.ListBooks)
				br.Get("/{id}", catalogHandler.GetBook)

				br.Group(func(lr chi.Router) {
					lr.Use(authHandler.RequireRole(account.RoleLibrarian, account.RoleAdmin))
					lr.Post("/", catalogHandler.AddBook)
					lr.Put("/{id}", catalogHandler.UpdateBook)
					lr.Delete("/{id}", catalogHandler.DeactivateBook)
				})
			})

			pr.Route("/loans", func(lr chi.Router) {
				lr.Get("/", lendingHandler.ListActiveLoans)

				lr.Group(func(mr chi.Router) {
					mr.Use(authHandler.RequireRole(account.RoleLibrarian, account.RoleAdmin))
					mr.Post("/", lendingHandler.IssueBook)
					mr.Patch("/{id}/return", lendingHandler.ReturnBook)
				})
			})

			pr.Group(func(sr chi.Router) {
				sr.Use(authHandler.RequireRole(account.RoleStudent))
				sr.Post("/book-requests", lendingHandler.RequestBook)
			})

			pr.Group(func(ar chi.Router) {
				ar.Use(authHandler.RequireRole(account.RoleAdmin))
				ar.Get("/users/pending", accountHandler.ListPending)
				ar.Patch("/users/{id}/active", accountHandler.SetActive)
				ar.Get("/fines", lendingHandler.ListFines)
				ar.Get("/dashboard", dashboardHandler.Summary)
			})
		})
	})
}
