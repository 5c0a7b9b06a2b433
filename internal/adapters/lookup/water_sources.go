package lookup

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"trace-emissions-service/internal/domain"
	"trace-emissions-service/internal/platform/obs"
	"trace-emissions-service/internal/ports"
)

// WaterSourceClient asks the water-source service for the municipal source and
// treatment center near a production site: POST <url> {"lat":..,"lng":..}.
//
// The service is generative and unreliable. Its answer may arrive wrapped in a
// markdown fence and is rejected unless every field the chain needs is present.
type WaterSourceClient struct {
	client
}

var _ ports.WaterSourceLookup = (*WaterSourceClient)(nil)

func NewWaterSourceClient(url string, opts ...Option) (*WaterSourceClient, error) {
	if strings.TrimSpace(url) == "" {
		return nil, errors.New("water source lookup url is empty")
	}
	return &WaterSourceClient{client: newClient(url, opts...)}, nil
}

type waterSiteResponse struct {
	Name        string           `json:"name"`
	Address     string           `json:"address"`
	Distance    string           `json:"distance"`
	Coordinates *wireCoordinates `json:"coordinates"`
}

type waterSourcesResponse struct {
	MunicipalWaterSource *waterSiteResponse `json:"municipalWaterSource"`
	WaterTreatmentCenter *waterSiteResponse `json:"waterTreatmentCenter"`
}

func (w *WaterSourceClient) LookupWaterSources(ctx context.Context, near domain.Coordinates) (_ domain.WaterSources, err error) {
	defer obs.Time(ctx, "lookup.LookupWaterSources")(&err)

	if err := near.Validate(); err != nil {
		return domain.WaterSources{}, fmt.Errorf("lookup water sources: %w", err)
	}

	data, err := w.send(ctx, http.MethodPost, w.url, near)
	if err != nil {
		return domain.WaterSources{}, fmt.Errorf("lookup water sources: %w", err)
	}

	var r waterSourcesResponse
	if err := json.Unmarshal(stripFences(data), &r); err != nil {
		return domain.WaterSources{}, fmt.Errorf("lookup water sources: decode: %w: %w", domain.ErrMalformedInput, err)
	}

	municipal, err := r.MunicipalWaterSource.site("municipalWaterSource")
	if err != nil {
		return domain.WaterSources{}, fmt.Errorf("lookup water sources: %w", err)
	}
	treatment, err := r.WaterTreatmentCenter.site("waterTreatmentCenter")
	if err != nil {
		return domain.WaterSources{}, fmt.Errorf("lookup water sources: %w", err)
	}

	out := domain.WaterSources{MunicipalSource: municipal, TreatmentCenter: treatment}
	if err := out.Validate(); err != nil {
		return domain.WaterSources{}, fmt.Errorf("lookup water sources: %w", err)
	}
	return out, nil
}

func (s *waterSiteResponse) site(field string) (domain.WaterSite, error) {
	if s == nil {
		return domain.WaterSite{}, fmt.Errorf("%s missing: %w", field, domain.ErrMalformedInput)
	}
	c, err := s.Coordinates.coordinates()
	if err != nil {
		return domain.WaterSite{}, fmt.Errorf("%s: %w", field, err)
	}
	return domain.WaterSite{
		Name:        strings.TrimSpace(s.Name),
		Address:     strings.TrimSpace(s.Address),
		Distance:    strings.TrimSpace(s.Distance),
		Coordinates: c,
	}, nil
}
