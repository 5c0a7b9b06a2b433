package handlers

import (
	"net/http"
	"trace-emissions-service/internal/api/dto"
	"trace-emissions-service/internal/ports"
)

type FootprintHandler struct {
	Catalog ports.FootprintCatalog
}

func (h *FootprintHandler) List(w http.ResponseWriter, r *http.Request) {
	entries := h.Catalog.Entries()
	res := dto.ListFootprintsResponse{
		Footprints: make([]dto.FootprintResponse, 0, len(entries)),
	}
	for _, e := range entries {
		res.Footprints = append(res.Footprints, dto.FootprintResponse{
			Brand:     e.Brand,
			Drink:     e.Drink,
			Footprint: e.Footprint,
		})
	}

	writeJSON(w, r, http.StatusOK, res)
}
