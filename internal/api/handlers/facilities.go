package handlers

import (
	"net/http"
	"strings"
	"trace-emissions-service/internal/api/dto"
	"trace-emissions-service/internal/domain"
	"trace-emissions-service/internal/platform/obs"
	"trace-emissions-service/internal/ports"

	"go.uber.org/zap"
)

// FacilityHandler exposes the read-only facility directory.
type FacilityHandler struct {
	Directory ports.FacilityDirectory
}

func (h *FacilityHandler) List(w http.ResponseWriter, r *http.Request) {
	var filter domain.Category
	if raw := strings.TrimSpace(r.URL.Query().Get("category")); raw != "" {
		c, err := domain.ParseCategory(raw)
		if err != nil {
			writeError(w, r, http.StatusBadRequest, "category must be one of sales, production, manufacturing")
			return
		}
		filter = c
	}

	facilities, err := h.Directory.ListFacilities(r.Context())
	if err != nil {
		obs.FromContext(r.Context()).Error("list facilities failed", zap.Error(err))
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	res := dto.ListFacilitiesResponse{
		Facilities: make([]dto.FacilityResponse, 0, len(facilities)),
	}
	for _, f := range facilities {
		if filter != "" && f.Category != filter {
			continue
		}
		item := dto.FacilityResponse{
			ID:          f.ID,
			Name:        f.Name,
			Address:     f.Address,
			Category:    string(f.Category),
			Coordinates: f.Coordinates,
		}
		if !f.UpdatedAt.IsZero() {
			t := f.UpdatedAt
			item.UpdatedAt = &t
		}
		res.Facilities = append(res.Facilities, item)
	}

	writeJSON(w, r, http.StatusOK, res)
}
