package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"leilao_scraper/httputil"
	"leilao_scraper/models"
)

const geocodeURL = "https://maps.googleapis.com/maps/api/geocode/json"

// Client validates raw address strings through the Google Geocoding API.
type Client struct {
	apiKey string
	http   *http.Client
}

func NewClient(apiKey string) *Client {
	return &Client{apiKey: apiKey, http: httputil.APIClient()}
}

type geocodeResponse struct {
	Status  string `json:"status"`
	Results []struct {
		FormattedAddress string `json:"formatted_address"`
		Geometry         struct {
			Location struct {
				Lat float64 `json:"lat"`
				Lng float64 `json:"lng"`
			} `json:"location"`
		} `json:"geometry"`
	} `json:"results"`
}

// Geocode resolves one raw address. ZERO_RESULTS comes back as a not_found
// record, not an error; transport and quota problems are errors.
func (c *Client) Geocode(ctx context.Context, address string) (*models.ValidatedAddress, error) {
	q := url.Values{}
	q.Set("address", address)
	q.Set("region", "br")
	q.Set("key", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, geocodeURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("geocode: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("geocode: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("geocode: status %d", resp.StatusCode)
	}

	var body geocodeResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("geocode: decode: %w", err)
	}

	if body.Status != "OK" || len(body.Results) == 0 {
		if body.Status == "ZERO_RESULTS" || body.Status == "OK" {
			return &models.ValidatedAddress{
				RawAddress: address,
				Status:     models.AddressStatusNotFound,
			}, nil
		}
		return nil, fmt.Errorf("geocode: api status %s", body.Status)
	}

	r := body.Results[0]
	lat, lng := r.Geometry.Location.Lat, r.Geometry.Location.Lng
	return &models.ValidatedAddress{
		RawAddress:       address,
		Status:           models.AddressStatusValidated,
		FormattedAddress: &r.FormattedAddress,
		Lat:              &lat,
		Lng:              &lng,
	}, nil
}
