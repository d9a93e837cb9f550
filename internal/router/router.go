package router

import (
	"net/http"

	"github.com/braseiro-pos/api/internal/channel"
	"github.com/braseiro-pos/api/internal/config"
	"github.com/braseiro-pos/api/internal/database"
	"github.com/braseiro-pos/api/internal/handler"
	mw "github.com/braseiro-pos/api/internal/middleware"
	"github.com/braseiro-pos/api/internal/permission"
	"github.com/braseiro-pos/api/internal/service"
	"github.com/braseiro-pos/api/internal/ws"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/jackc/pgx/v5/pgxpool"
)

// New creates a Chi router with all application routes wired up.
// Applies authentication, store scoping, and role-based middleware as needed.
func New(cfg *config.Config, queries *database.Queries, pool *pgxpool.Pool, hub *ws.Hub) chi.Router {
	r := chi.NewRouter()

	// Standard middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// CORS configuration
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{
			"http://localhost:5173",             // admin dev server
			"https://admin.braseiropos.com.br",  // Production admin
			"https://caixa.braseiropos.com.br",  // Register terminals
		},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300, // 5 minutes
	}))

	// Public routes
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok","version":"1.0.0"}`))
	})

	// Auth routes (public)
	authHandler := handler.NewAuthHandler(queries, cfg.JWTSecret)
	authHandler.RegisterRoutes(r)

	// WebSocket route (handles auth internally via query param)
	r.Get("/ws/stores/{sid}/register", func(w http.ResponseWriter, r *http.Request) {
		ws.ServeWS(hub, cfg.JWTSecret, w, r)
	})

	// Services shared across store-scoped routes
	adapters := []channel.Adapter{
		channel.NewCounterAdapter(queries),
		channel.NewDeliveryAdapter(queries),
		channel.NewTableAdapter(queries),
	}
	calc := service.NewCalculator(queries, adapters, cfg.ChannelQueryTimeout)

	registerService := service.NewRegisterService(
		queries,
		pool,
		func(db database.DBTX) service.RegisterStore { return database.New(db) },
		calc,
	)
	ledgerService := service.NewLedgerService(
		queries,
		pool,
		func(db database.DBTX) service.LedgerStore { return database.New(db) },
		permission.NewRoleOracle(),
	)
	rollupService := service.NewRollupService(queries, calc)

	// Protected routes (require authentication)
	r.Group(func(r chi.Router) {
		r.Use(mw.Authenticate(cfg.JWTSecret))

		// Store-scoped routes
		r.Route("/stores/{sid}", func(r chi.Router) {
			r.Use(mw.RequireStore)

			// Register sessions and ledger entries
			registerHandler := handler.NewRegisterHandler(registerService, calc, hub)
			ledgerHandler := handler.NewLedgerHandler(registerService, ledgerService, hub)
			r.Route("/register", func(r chi.Router) {
				registerHandler.RegisterRoutes(r)
				ledgerHandler.RegisterRoutes(r)
			})

			// Reports (ADMIN and MANAGER only)
			r.Group(func(r chi.Router) {
				r.Use(mw.RequireRole("ADMIN", "MANAGER"))
				reportsHandler := handler.NewReportsHandler(rollupService)
				r.Route("/reports", reportsHandler.RegisterRoutes)
			})
		})
	})

	return r
}
