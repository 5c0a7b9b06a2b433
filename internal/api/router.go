package api

import (
	"net/http"
	"time"
	"trace-emissions-service/internal/api/handlers"
	"trace-emissions-service/internal/ports"
	"trace-emissions-service/internal/services"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// Deps are the collaborators the HTTP layer needs.
type Deps struct {
	Sessions     *services.SessionStore
	Facilities   ports.FacilityDirectory
	Catalog      ports.FootprintCatalog
	SessionTTL   time.Duration
	SecureCookie bool
	Logger       *zap.Logger
}

// NewRouter wires HTTP handlers with their dependencies and returns an http.Handler.
func NewRouter(d Deps) http.Handler {
	logger := d.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	facilityHandler := &handlers.FacilityHandler{Directory: d.Facilities}
	footprintHandler := &handlers.FootprintHandler{Catalog: d.Catalog}
	impactHandler := &handlers.ImpactHandler{
		Sessions:     d.Sessions,
		Catalog:      d.Catalog,
		SessionTTL:   d.SessionTTL,
		SecureCookie: d.SecureCookie,
	}

	r := chi.NewRouter()
	r.Use(requestContext(logger), accessLog, recoverer)
	r.MethodNotAllowed(handlers.MethodNotAllowed)
	r.NotFound(handlers.NotFound)

	r.Get("/health", handlers.Health)
	r.Get("/facilities", facilityHandler.List)
	r.Get("/footprints", footprintHandler.List)
	r.Post("/impact", impactHandler.Calculate)

	return r
}
