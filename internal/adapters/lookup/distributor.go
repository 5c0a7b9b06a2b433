package lookup

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"trace-emissions-service/internal/domain"
	"trace-emissions-service/internal/platform/obs"
	"trace-emissions-service/internal/ports"
)

// DistributorClient asks the distributor service which sales facility serves a
// ZIP code: GET <url>?zip=NNNNN.
type DistributorClient struct {
	client
}

var _ ports.DistributorLookup = (*DistributorClient)(nil)

func NewDistributorClient(url string, opts ...Option) (*DistributorClient, error) {
	if strings.TrimSpace(url) == "" {
		return nil, errors.New("distributor lookup url is empty")
	}
	return &DistributorClient{client: newClient(url, opts...)}, nil
}

type distributorResponse struct {
	Name        string           `json:"name"`
	Address     string           `json:"address"`
	Phone       string           `json:"phone"`
	Coordinates *wireCoordinates `json:"coordinates"`
}

// LookupDistributor returns the distributor for zip. Coordinates are optional in
// the response; when present they must be valid.
func (d *DistributorClient) LookupDistributor(ctx context.Context, zip string) (_ domain.Distributor, err error) {
	defer obs.Time(ctx, "lookup.LookupDistributor")(&err)

	zip = strings.TrimSpace(zip)
	if zip == "" {
		return domain.Distributor{}, fmt.Errorf("lookup distributor: empty zip: %w", domain.ErrMalformedInput)
	}

	u, err := url.Parse(d.url)
	if err != nil {
		return domain.Distributor{}, fmt.Errorf("lookup distributor: parse url: %w", err)
	}
	q := u.Query()
	q.Set("zip", zip)
	u.RawQuery = q.Encode()

	data, err := d.send(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return domain.Distributor{}, fmt.Errorf("lookup distributor zip=%s: %w", zip, err)
	}

	var r distributorResponse
	if err := json.Unmarshal(stripFences(data), &r); err != nil {
		return domain.Distributor{}, fmt.Errorf("lookup distributor: decode: %w: %w", domain.ErrMalformedInput, err)
	}

	if strings.TrimSpace(r.Name) == "" {
		return domain.Distributor{}, fmt.Errorf("lookup distributor zip=%s: no distributor: %w", zip, domain.ErrUnresolvable)
	}

	out := domain.Distributor{
		Name:    strings.TrimSpace(r.Name),
		Address: strings.TrimSpace(r.Address),
		Phone:   strings.TrimSpace(r.Phone),
	}
	if r.Coordinates != nil {
		c, err := r.Coordinates.coordinates()
		if err != nil {
			return domain.Distributor{}, fmt.Errorf("lookup distributor zip=%s: %w", zip, err)
		}
		out.Coordinates = &c
	}
	if out.Coordinates == nil && out.Address == "" {
		return domain.Distributor{}, fmt.Errorf("lookup distributor zip=%s: neither coordinates nor address: %w", zip, domain.ErrMalformedInput)
	}

	return out, nil
}
