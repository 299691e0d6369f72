// FilePath: api/api.router.go
package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/verdantlabs/chainsense/api/middleware"
	"github.com/verdantlabs/chainsense/api/resources"
	"github.com/verdantlabs/chainsense/internal/chainservice"
	"github.com/verdantlabs/chainsense/internal/monitoring"
	"github.com/verdantlabs/chainsense/internal/throttle"
)

type Router struct {
	router    *mux.Router
	throttle  *middleware.ThrottleMiddleware
	resources *resources.Resources
}

func NewRouter(svc *chainservice.ChainService, limiter *throttle.Limiter, metrics *monitoring.Service) *Router {
	r := &Router{
		router:    mux.NewRouter(),
		throttle:  middleware.NewThrottleMiddleware(limiter, metrics),
		resources: resources.NewResources(svc),
	}

	r.setupRoutes()
	return r
}

func (r *Router) setupRoutes() {
	// API version prefix
	api := r.router.PathPrefix("/api/v1").Subrouter()

	// Read-only routes
	api.HandleFunc("/health", r.resources.HealthCheckHandler).Methods(http.MethodGet)
	api.HandleFunc("/metrics", r.resources.MetricsHandler).Methods(http.MethodGet)
	api.HandleFunc("/tx/context", r.resources.Transactions.GasContext).Methods(http.MethodGet)
	api.HandleFunc("/readings", r.resources.Readings.ListReadings).Methods(http.MethodGet)
	api.HandleFunc("/submissions", r.resources.Readings.ListSubmissions).Methods(http.MethodGet)

	// Mutating routes behind the throttle
	guarded := api.PathPrefix("").Subrouter()
	guarded.Use(r.throttle.Throttle)

	guarded.HandleFunc("/tx/build", r.resources.Transactions.BuildTransaction).Methods(http.MethodPost)
	guarded.HandleFunc("/tx/submit", r.resources.Transactions.SubmitTransaction).Methods(http.MethodPost)
	guarded.HandleFunc("/tx/sponsored", r.resources.Transactions.SponsoredTransaction).Methods(http.MethodPost)
	guarded.HandleFunc("/readings", r.resources.Readings.CreateReading).Methods(http.MethodPost)
}

// Resources exposes the handler set for wiring health and metrics
func (r *Router) Resources() *resources.Resources {
	return r.resources
}

func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.router.ServeHTTP(w, req)
}
