package routes

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/campusshelf/library-backend/api/controllers"
	"github.com/campusshelf/library-backend/api/middleware"
	"github.com/campusshelf/library-backend/internal/auth"
	"github.com/campusshelf/library-backend/internal/books"
	"github.com/campusshelf/library-backend/internal/borrows"
	"github.com/campusshelf/library-backend/internal/reminders"
	"github.com/campusshelf/library-backend/internal/reports"
	"github.com/campusshelf/library-backend/internal/reviews"
	"github.com/campusshelf/library-backend/internal/settings"
	"github.com/campusshelf/library-backend/internal/users"
	"github.com/campusshelf/library-backend/pkg/auth/session"
	"github.com/campusshelf/library-backend/pkg/config"
	"github.com/campusshelf/library-backend/pkg/db"
	"github.com/campusshelf/library-backend/pkg/enums"
	"github.com/campusshelf/library-backend/pkg/logger"
	"github.com/campusshelf/library-backend/pkg/metrics"
)

// RedisStore is the slice of the redis client the HTTP layer touches.
type RedisStore interface {
	Ping(ctx context.Context) error
	IncrWithTTL(ctx context.Context, key string, ttl time.Duration) (int64, error)
}

// Deps carries everything the router wires into handlers. Nil services are
// tolerated; their handlers answer with an internal error.
type Deps struct {
	DB       db.Pinger
	Redis    RedisStore
	Sessions session.AccessSessionChecker
	Gatherer prometheus.Gatherer
	Metrics  *metrics.HTTPMetrics

	Auth      auth.Service
	Users     users.Service
	Books     books.Service
	Borrows   borrows.Service
	Settings  settings.Service
	Reviews   reviews.Service
	Reports   reports.Service
	Reminders reminders.Dispatcher
}

func NewRouter(cfg *config.Config, logg *logger.Logger, deps Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.Metrics(deps.Metrics),
		middleware.CORS(!cfg.App.IsProd(), cfg.App.CORSOrigins...),
	)

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginEmailLimit,
	)
	registerPolicy := middleware.NewAuthRateLimitPolicy(
		"register",
		cfg.AuthRateLimit.RegisterWindow,
		cfg.AuthRateLimit.RegisterIPLimit,
		cfg.AuthRateLimit.RegisterEmailLimit,
	)

	healthDeps := map[string]controllers.Pinger{}
	if deps.DB != nil {
		healthDeps["postgres"] = deps.DB
	}
	if deps.Redis != nil {
		healthDeps["redis"] = deps.Redis
	}
	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, healthDeps))
	})

	if deps.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Get("/api/public/ping", controllers.PublicPing())

	authenticate := middleware.Auth(cfg.JWT, deps.Sessions, logg)

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(registerPolicy, deps.Redis, logg)).Post("/register", controllers.AuthRegister(deps.Auth, logg))
		r.With(middleware.AuthRateLimit(loginPolicy, deps.Redis, logg)).Post("/login", controllers.AuthLogin(deps.Auth, logg))
		r.Post("/refresh", controllers.AuthRefresh(deps.Auth, logg))
		r.With(authenticate).Post("/logout", controllers.AuthLogout(deps.Auth, logg))
	})

	if !cfg.App.IsProd() {
		r.Post("/api/admin/v1/auth/register", controllers.AdminAuthRegister(deps.Auth, logg))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(authenticate)

		r.Get("/ping", controllers.PrivatePing())
		r.Get("/users/me", controllers.UserMe(deps.Users, logg))
		r.Get("/recommendations", controllers.Recommendations(deps.Reports, logg))

		r.Route("/books", func(r chi.Router) {
			r.Get("/", controllers.ListBooks(deps.Books, logg))
			r.Get("/genres", controllers.ListGenres(deps.Books, logg))
			r.Route("/{bookId}", func(r chi.Router) {
				r.Get("/", controllers.GetBook(deps.Books, logg))
				r.Get("/eligibility", controllers.BorrowEligibility(deps.Borrows, logg))
				r.Get("/reviews", controllers.ListBookReviews(deps.Reviews, logg))
				r.Get("/reviews/eligibility", controllers.CanReviewBook(deps.Reviews, logg))
				r.Post("/reviews", controllers.CreateReview(deps.Reviews, logg))
			})
		})

		r.Route("/reviews/{reviewId}", func(r chi.Router) {
			r.Put("/", controllers.UpdateReview(deps.Reviews, logg))
			r.Delete("/", controllers.DeleteReview(deps.Reviews, logg))
		})

		r.Route("/borrows", func(r chi.Router) {
			r.Post("/", controllers.BorrowRequest(deps.Borrows, logg))
			r.Get("/me", controllers.MyBorrows(deps.Borrows, logg))
			r.Route("/{recordId}", func(r chi.Router) {
				r.Get("/", controllers.GetBorrow(deps.Borrows, logg))
				r.Post("/return", controllers.BorrowReturn(deps.Borrows, logg))
				r.Post("/renew", controllers.BorrowRenew(deps.Borrows, logg))
			})
		})
	})

	r.Route("/api/admin/v1", func(r chi.Router) {
		r.Use(authenticate)
		r.Use(middleware.RequireAdmin(logg))

		r.Get("/ping", controllers.AdminPing())

		r.Route("/books", func(r chi.Router) {
			r.Post("/", controllers.AdminCreateBook(deps.Books, logg))
			r.Patch("/{bookId}", controllers.AdminUpdateBook(deps.Books, logg))
			r.Delete("/{bookId}", controllers.AdminDeactivateBook(deps.Books, logg))
		})

		r.Route("/borrows", func(r chi.Router) {
			r.Get("/", controllers.AdminListBorrows(deps.Borrows, logg))
			r.Route("/{recordId}", func(r chi.Router) {
				r.Get("/", controllers.GetBorrow(deps.Borrows, logg))
				r.Post("/approve", controllers.AdminApproveBorrow(deps.Borrows, logg))
				r.Post("/reject", controllers.AdminRejectBorrow(deps.Borrows, logg))
				r.Post("/return", controllers.BorrowReturn(deps.Borrows, logg))
				r.Post("/renew", controllers.BorrowRenew(deps.Borrows, logg))
			})
		})

		r.Route("/users", func(r chi.Router) {
			r.Get("/", controllers.AdminListUsers(deps.Users, logg))
			r.Post("/{userId}/approve", controllers.AdminSetUserStatus(deps.Users, enums.UserStatusApproved, logg))
			r.Post("/{userId}/reject", controllers.AdminSetUserStatus(deps.Users, enums.UserStatusRejected, logg))
			r.Post("/{userId}/suspend", controllers.AdminSetUserStatus(deps.Users, enums.UserStatusSuspended, logg))
		})

		r.Route("/fines", func(r chi.Router) {
			r.Get("/config", controllers.AdminGetFineConfig(deps.Settings, logg))
			r.Post("/config", controllers.AdminSetFineConfig(deps.Settings, logg))
			r.Post("/recalculate", controllers.AdminRecalculateFines(deps.Borrows, logg))
		})

		r.Route("/reports", func(r chi.Router) {
			r.Get("/summary", controllers.AdminReportSummary(deps.Reports, logg))
			r.Get("/popular", controllers.AdminReportPopular(deps.Reports, logg))
			r.Get("/genres", controllers.AdminReportGenres(deps.Reports, logg))
			r.Get("/export", controllers.AdminReportExport(deps.Reports, logg))
		})

		r.Post("/reminders/send", controllers.AdminSendReminders(deps.Reminders, logg))
	})

	return r
}
