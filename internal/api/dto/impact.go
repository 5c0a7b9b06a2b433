package dto

import "trace-emissions-service/internal/domain"

type CoordinatesRequest struct {
	Lat *float64 `json:"lat"`
	Lng *float64 `json:"lng"`
}

type ImpactRequest struct {
	Brand           string              `json:"brand"`
	Drink           string              `json:"drink"`
	Location        string              `json:"location"`
	UserCoordinates *CoordinatesRequest `json:"user_coordinates"`
}

type StopResponse struct {
	Role        string             `json:"role"`
	Name        string             `json:"name"`
	Address     string             `json:"address,omitempty"`
	Coordinates domain.Coordinates `json:"coordinates"`
}

type ImpactResponse struct {
	SessionID    string                          `json:"session_id"`
	RunID        string                          `json:"run_id"`
	Epoch        uint64                          `json:"epoch"`
	State        string                          `json:"state"`
	ZIP          string                          `json:"zip,omitempty"`
	Brand        string                          `json:"brand"`
	Drink        string                          `json:"drink"`
	KnownProduct bool                            `json:"known_product"`
	Stops        []StopResponse                  `json:"stops"`
	Route        domain.RouteEmissions           `json:"route"`
	Total        domain.TotalEmissions           `json:"total"`
	Polylines    map[string][]domain.Coordinates `json:"polylines,omitempty"`
}
