package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/kiwari-pos/tableside/internal/config"
	"github.com/kiwari-pos/tableside/internal/handler"
	mw "github.com/kiwari-pos/tableside/internal/middleware"
	"github.com/kiwari-pos/tableside/internal/service"
	"github.com/kiwari-pos/tableside/internal/staff"
	"github.com/kiwari-pos/tableside/internal/ws"
)

// New creates a Chi router with all application routes wired up.
// Every floor route runs behind Identify so actions are attributed to the
// signed-in server, or the default server when nobody is signed in.
func New(cfg *config.Config, svc *service.OrderService, roster *staff.Roster, hub *ws.Hub) chi.Router {
	r := chi.NewRouter()

	// Standard middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
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

	r.Group(func(r chi.Router) {
		r.Use(mw.Identify(cfg.JWTSecret, cfg.DefaultServer))

		r.Route("/staff", func(r chi.Router) {
			handler.NewStaffHandler(cfg.JWTSecret, roster).RegisterRoutes(r)
			handler.NewRosterHandler(roster).RegisterRoutes(r)
		})

		// Live updates; the token may be passed as ?token= by browsers.
		r.Get("/ws", func(w http.ResponseWriter, r *http.Request) {
			ws.ServeWS(hub, w, r)
		})

		r.Route("/menu", handler.NewMenuHandler(svc).RegisterRoutes)

		r.Route("/tables", func(r chi.Router) {
			handler.NewTableHandler(svc).RegisterRoutes(r)
			r.Route("/{tid}/order", handler.NewOrderHandler(svc).RegisterRoutes)
			r.Route("/{tid}/payments", handler.NewPaymentHandler(svc).RegisterRoutes)
		})

		r.Route("/kitchen", handler.NewKitchenHandler(svc).RegisterRoutes)
		r.Route("/reservations", handler.NewReservationHandler(svc).RegisterRoutes)
		r.Route("/reports", handler.NewReportsHandler(svc).RegisterRoutes)
	})

	return r
}
