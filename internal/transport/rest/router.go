package rest

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/fieldops/advance-settlement/internal/advance"
	"github.com/fieldops/advance-settlement/internal/auth"
	"github.com/fieldops/advance-settlement/internal/collection"
	"github.com/fieldops/advance-settlement/internal/expense"
	"github.com/fieldops/advance-settlement/internal/transport/middleware"
	"github.com/fieldops/advance-settlement/internal/transport/swagger"
	"github.com/fieldops/advance-settlement/internal/transportpay"
	"github.com/fieldops/advance-settlement/internal/user"
	"github.com/go-chi/chi"
	chiMiddleware "github.com/go-chi/chi/middleware"
)

func RegisterAllRoutes(
	router *chi.Mux,
	db *sql.DB,
	allowedOrigins string,
	authHandler *auth.Handler,
	userHandler *user.Handler,
	advanceHandler *advance.Handler,
	expenseHandler *expense.Handler,
	collectionHandler *collection.Handler,
	transportPayHandler *transportpay.Handler,
	logger *slog.Logger,
) {
	healthHandler := NewHealthHandler(db)

	// Apply global middleware
	router.Use(middleware.CORS(allowedOrigins))
	router.Use(chiMiddleware.RequestID)
	router.Use(middleware.RequestID)
	router.Use(middleware.LoggingMiddleware(logger))
	router.Use(middleware.RecoveryMiddleware(logger))

	// Serve OpenAPI spec at root (outside API prefix)
	router.Get("/openapi.yml", func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, "./api/openapi.yml")
	})
	// Swagger UI route at root
	router.Handle("/swagger/*", swagger.Handler())

	// Mount API under /api/v1 to match OpenAPI basePath
	router.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", healthHandler.healthCheckHandler)
		r.Get("/ping", healthHandler.pingHandler)

		// Auth routes
		if authHandler != nil {
			r.Route("/auth", func(sr chi.Router) {
				sr.Post("/login", authHandler.Login)
				sr.Post("/refresh", authHandler.RefreshToken)
				sr.Post("/logout", authHandler.Logout)
			})
		}

		if authHandler == nil {
			return
		}

		// Protected routes that require authentication
		r.Group(func(pr chi.Router) {
			pr.Use(authHandler.AuthMiddleware)

			// Current user
			if userHandler != nil {
				pr.Get("/users/me", userHandler.GetCurrentUser)
				pr.Group(func(ar chi.Router) {
					ar.Use(authHandler.RequireAdmin)
					ar.Get("/users/staff", userHandler.ListStaff)
				})
			}

			// Advance routes
			if advanceHandler != nil {
				pr.Route("/advances", func(er chi.Router) {
					er.Get("/", advanceHandler.ListAdvances)         // GET /advances
					er.Get("/{id}", advanceHandler.GetAdvance)       // GET /advances/:id
					er.Get("/{id}/balance", advanceHandler.GetBalance)

					// Admin routes: recording and settling advances
					er.Group(func(mr chi.Router) {
						mr.Use(authHandler.RequireAdmin)
						mr.Post("/", advanceHandler.CreateAdvance)          // POST /advances
						mr.Post("/{id}/settle", advanceHandler.SettleAdvance)
						mr.Post("/{id}/cancel", advanceHandler.CancelAdvance)
					})
				})
			}

			// Expense routes
			if expenseHandler != nil {
				pr.Route("/expenses", func(er chi.Router) {
					er.Post("/", expenseHandler.CreateExpense)   // POST /expenses
					er.Get("/", expenseHandler.ListExpenses)     // GET /expenses
					er.Get("/{id}", expenseHandler.GetExpense)   // GET /expenses/:id
					er.Put("/{id}", expenseHandler.UpdateExpense)
					er.Delete("/{id}", expenseHandler.DeleteExpense)

					er.Group(func(mr chi.Router) {
						mr.Use(authHandler.RequireAdmin)
						mr.Get("/unreconciled", expenseHandler.ListUnreconciled)
					})
				})
			}

			// Collection routes
			if collectionHandler != nil {
				pr.Route("/collections", func(cr chi.Router) {
					cr.Post("/", collectionHandler.CreateCollection)
					cr.Get("/", collectionHandler.ListCollections)

					cr.Group(func(mr chi.Router) {
						mr.Use(authHandler.RequireAdmin)
						mr.Get("/pending", collectionHandler.ListPendingApproval)
						mr.Post("/{id}/approve", collectionHandler.ApproveCollection)
					})
				})
			}

			// Transport payment routes
			if transportPayHandler != nil {
				pr.Route("/transport-payments", func(tr chi.Router) {
					tr.Post("/", transportPayHandler.CreatePayment)
					tr.Get("/", transportPayHandler.ListPayments)
					tr.Get("/{id}", transportPayHandler.GetPayment)
				})
			}
		})
	})
}
