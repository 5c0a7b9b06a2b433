package geocoding

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"trace-emissions-service/internal/domain"
	"trace-emissions-service/internal/platform/obs"
	"trace-emissions-service/internal/ports"
)

type directionsResponse struct {
	Features []struct {
		Geometry struct {
			Coordinates [][]float64 `json:"coordinates"`
		} `json:"geometry"`
		Properties struct {
			Summary struct {
				Distance float64 `json:"distance"`
			} `json:"summary"`
		} `json:"properties"`
	} `json:"features"`
}

func lngLat(c domain.Coordinates) string {
	return strconv.FormatFloat(c.Lng, 'f', -1, 64) + "," + strconv.FormatFloat(c.Lat, 'f', -1, 64)
}

// Directions fetches the road route between two points from the
// OpenRouteService directions endpoint (GeoJSON flavour).
func (o *ORSClient) Directions(
	ctx context.Context,
	origin domain.Coordinates,
	destination domain.Coordinates,
) (_ ports.DirectionsResult, err error) {
	defer obs.Time(ctx, "ors.Directions")(&err)

	endpoint := fmt.Sprintf("%s/v2/directions/%s", o.baseURL, o.profile)

	resp, err := o.doWithRetry(ctx, func() (*http.Request, error) {
		req, err := o.newRequest(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return nil, err
		}
		q := req.URL.Query()
		q.Set("start", lngLat(origin))
		q.Set("end", lngLat(destination))
		req.URL.RawQuery = q.Encode()
		return req, nil
	})
	if err != nil {
		return ports.DirectionsResult{}, fmt.Errorf("directions request failed: %w", err)
	}
	defer resp.Body.Close()

	var dr directionsResponse
	if err := json.NewDecoder(resp.Body).Decode(&dr); err != nil {
		return ports.DirectionsResult{}, fmt.Errorf("decode directions response: %w: %w", domain.ErrMalformedInput, err)
	}

	if len(dr.Features) == 0 {
		return ports.DirectionsResult{}, fmt.Errorf("directions returned no route: %w", domain.ErrUnresolvable)
	}

	f := dr.Features[0]
	line := make([]domain.Coordinates, 0, len(f.Geometry.Coordinates))
	for i, p := range f.Geometry.Coordinates {
		// ORS may append elevation as a third element.
		if len(p) < 2 {
			return ports.DirectionsResult{}, fmt.Errorf("directions point %d has %d values: %w", i, len(p), domain.ErrMalformedInput)
		}
		line = append(line, domain.Coordinates{Lng: p[0], Lat: p[1]})
	}

	return ports.DirectionsResult{
		DistanceKm: f.Properties.Summary.Distance / 1000,
		Polyline:   line,
	}, nil
}
