package httpserver

import (
	"net/http"
	"time"

	"family-finance-go/internal/metrics"
	"family-finance-go/internal/transport/httpserver/handler"
	authmw "family-finance-go/internal/transport/httpserver/middleware"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
)

type RouterOptions struct {
	CORSOrigins []string
	Auth        *authmw.JWTAuth
	// Metrics is optional; nil disables /metrics and request instrumentation.
	Metrics *metrics.Metrics
}

func NewRouter(opts RouterOptions, handlers *handler.Handlers) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(30 * time.Second))
	r.Use(authmw.NewCORS(opts.CORSOrigins))
	if opts.Metrics != nil {
		r.Use(opts.Metrics.Middleware)
		r.Method(http.MethodGet, "/metrics", opts.Metrics.Handler())
	}

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", handlers.Common.Health)

		r.Group(func(r chi.Router) {
			r.Use(opts.Auth.Middleware)

			r.Get("/auth/me", handlers.Common.AuthMe)

			r.Get("/families", handlers.Common.GetFamilyMe)
			r.Get("/families/me", handlers.Common.GetFamilyMe)
			r.Post("/families", handlers.Common.CreateFamily)
			r.Post("/families/join", handlers.Common.JoinFamily)
			r.Post("/families/leave", handlers.Common.LeaveFamily)
			r.Patch("/families/me", handlers.Common.UpdateFamily)
			r.Get("/families/me/members", handlers.Common.ListFamilyMembers)
			r.Delete("/families/me/members/{user_id}", handlers.Common.RemoveFamilyMember)

			r.Get("/transactions", handlers.Transactions.ListTransactions)
			r.Post("/transactions", handlers.Transactions.CreateTransaction)
			r.Get("/transactions/{id}", handlers.Transactions.GetTransaction)
			r.Put("/transactions/{id}", handlers.Transactions.UpdateTransaction)
			r.Delete("/transactions/{id}", handlers.Transactions.DeleteTransaction)

			r.Get("/goals", handlers.Goals.ListGoals)
			r.Post("/goals", handlers.Goals.CreateGoal)
			r.Get("/goals/contributions/me", handlers.Goals.ListMyContributions)
			r.Get("/goals/{id}", handlers.Goals.GetGoal)
			r.Put("/goals/{id}", handlers.Goals.UpdateGoal)
			r.Delete("/goals/{id}", handlers.Goals.DeleteGoal)
			r.Post("/goals/{id}/contribute", handlers.Goals.Contribute)
			r.Get("/goals/{id}/progress", handlers.Goals.GetProgress)
			r.Get("/goals/{id}/contributions", handlers.Goals.ListContributions)

			r.Get("/notifications", handlers.Notifications.ListNotifications)
			r.Post("/notifications", handlers.Notifications.CreateNotification)
			r.Post("/notifications/read-all", handlers.Notifications.MarkAllRead)
			r.Post("/notifications/family", handlers.Notifications.BroadcastToFamily)
			r.Put("/notifications/{id}", handlers.Notifications.UpdateNotification)
			r.Delete("/notifications/{id}", handlers.Notifications.DeleteNotification)

			r.Post("/reports/generate", handlers.Reports.GenerateReport)
			r.Post("/reports/export", handlers.Reports.ExportReport)
			r.Get("/reports/categories", handlers.Reports.CategoryReport)
			r.Get("/reports/top-expenses", handlers.Reports.TopExpenses)
			r.Get("/reports/goals", handlers.Reports.GoalsReport)
			r.Get("/reports/spending-trends", handlers.Reports.SpendingTrends)
			r.Get("/reports/monthly-summary", handlers.Reports.MonthlySummary)
		})
	})

	return r
}
