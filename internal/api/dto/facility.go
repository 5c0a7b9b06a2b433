package dto

import (
	"time"
	"trace-emissions-service/internal/domain"
)

type FacilityResponse struct {
	ID          string              `json:"id"`
	Name        string              `json:"name"`
	Address     string              `json:"address"`
	Category    string              `json:"category"`
	Coordinates *domain.Coordinates `json:"coordinates"`
	UpdatedAt   *time.Time          `json:"updated_at,omitempty"`
}

type ListFacilitiesResponse struct {
	Facilities []FacilityResponse `json:"facilities"`
}
