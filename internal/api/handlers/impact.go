package handlers

import (
	"net/http"
	"strings"
	"time"
	"trace-emissions-service/internal/api/dto"
	"trace-emissions-service/internal/domain"
	"trace-emissions-service/internal/platform/obs"
	"trace-emissions-service/internal/ports"
	"trace-emissions-service/internal/services"

	"go.uber.org/zap"
)

const (
	SessionCookie = "trace_session"

	defaultBrand = "coca-cola"
	defaultDrink = "water"
)

type ImpactHandler struct {
	Sessions     *services.SessionStore
	Catalog      ports.FootprintCatalog
	SessionTTL   time.Duration
	SecureCookie bool
}

// Calculate runs one impact calculation in the caller's session and returns
// its terminal state. Lookup failures never fail the request; they show up as
// absent legs and a degraded state.
func (h *ImpactHandler) Calculate(w http.ResponseWriter, r *http.Request) {
	var req dto.ImpactRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	brand := strings.ToLower(strings.TrimSpace(req.Brand))
	if brand == "" {
		brand = defaultBrand
	}
	drink := strings.ToLower(strings.TrimSpace(req.Drink))
	if drink == "" {
		drink = defaultDrink
	}
	location := strings.TrimSpace(req.Location)

	var userCoords *domain.Coordinates
	if req.UserCoordinates != nil {
		if req.UserCoordinates.Lat == nil || req.UserCoordinates.Lng == nil {
			writeError(w, r, http.StatusBadRequest, "user_coordinates requires lat and lng")
			return
		}
		c := domain.Coordinates{Lat: *req.UserCoordinates.Lat, Lng: *req.UserCoordinates.Lng}
		if err := c.Validate(); err != nil {
			writeError(w, r, http.StatusBadRequest, "user_coordinates out of range")
			return
		}
		userCoords = &c
	}

	if location == "" && userCoords == nil {
		writeError(w, r, http.StatusBadRequest, "location or user_coordinates is required")
		return
	}

	var sessionID string
	if c, err := r.Cookie(SessionCookie); err == nil {
		sessionID = c.Value
	}
	session := h.Sessions.Get(sessionID)
	h.setSessionCookie(w, session.ID)

	base, known := h.Catalog.Footprint(brand, drink)
	if !known {
		obs.FromContext(r.Context()).Info("unknown product, using default footprint",
			zap.String("brand", brand),
			zap.String("drink", drink),
		)
	}

	result := session.CalculateImpact(r.Context(), services.ImpactRequest{
		Location:        location,
		UserCoordinates: userCoords,
		Base:            base,
	})

	res := dto.ImpactResponse{
		SessionID:    session.ID,
		RunID:        result.RunID,
		Epoch:        result.Epoch,
		State:        string(result.State),
		ZIP:          result.ZIP,
		Brand:        brand,
		Drink:        drink,
		KnownProduct: known,
		Stops:        make([]dto.StopResponse, 0, len(result.Stops)),
		Route:        result.Route,
		Total:        result.Total,
	}
	for _, s := range result.Stops {
		res.Stops = append(res.Stops, dto.StopResponse{
			Role:        s.Role,
			Name:        s.Name,
			Address:     s.Address,
			Coordinates: s.Coordinates,
		})
	}
	if len(result.Polylines) > 0 {
		res.Polylines = make(map[string][]domain.Coordinates, len(result.Polylines))
		for leg, line := range result.Polylines {
			res.Polylines[string(leg)] = line
		}
	}

	writeJSON(w, r, http.StatusOK, res)
}

func (h *ImpactHandler) setSessionCookie(w http.ResponseWriter, id string) {
	c := &http.Cookie{
		Name:     SessionCookie,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.SecureCookie,
		SameSite: http.SameSiteLaxMode,
	}
	if h.SessionTTL > 0 {
		c.MaxAge = int(h.SessionTTL / time.Second)
	}
	http.SetCookie(w, c)
}
