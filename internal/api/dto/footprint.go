package dto

import "trace-emissions-service/internal/domain"

type FootprintResponse struct {
	Brand     string                      `json:"brand"`
	Drink     string                      `json:"drink"`
	Footprint domain.BaseProductFootprint `json:"footprint"`
}

type ListFootprintsResponse struct {
	Footprints []FootprintResponse `json:"footprints"`
}
