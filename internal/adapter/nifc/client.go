// Package nifc implements domain.FireProvider on the NIFC WFIGS ArcGIS
// feature services for current incident locations and fire perimeters.
package nifc

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/couchcryptid/wildfire-risk-service/internal/domain"
	"golang.org/x/sync/errgroup"
)

// Client queries the incident and perimeter layers around a point.
type Client struct {
	httpClient    *http.Client
	incidentsURL  string
	perimetersURL string
	logger        *slog.Logger
}

// NewClient creates a client for the given layer query endpoints.
func NewClient(incidentsURL, perimetersURL string, timeout time.Duration, logger *slog.Logger) *Client {
	return &Client{
		httpClient:    &http.Client{Timeout: timeout},
		incidentsURL:  incidentsURL,
		perimetersURL: perimetersURL,
		logger:        logger,
	}
}

// ActiveFires runs both layer queries concurrently. Either failing fails the
// whole fetch.
func (c *Client) ActiveFires(ctx context.Context, at domain.Coordinate, radiusKm float64) (domain.FireReport, error) {
	var report domain.FireReport

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		features, err := c.query(gctx, c.incidentsURL, at, radiusKm, "incidents")
		if err != nil {
			return err
		}
		report.Incidents = c.incidents(features)
		return nil
	})
	g.Go(func() error {
		features, err := c.query(gctx, c.perimetersURL, at, radiusKm, "perimeters")
		if err != nil {
			return err
		}
		report.Perimeters = perimeters(features)
		return nil
	})
	if err := g.Wait(); err != nil {
		return domain.FireReport{}, err
	}
	return report, nil
}

func (c *Client) query(ctx context.Context, endpoint string, at domain.Coordinate, radiusKm float64, layer string) ([]feature, error) {
	params := url.Values{
		// ArcGIS point geometry is x,y (lon,lat).
		"geometry":       {strconv.FormatFloat(at.Longitude, 'f', 6, 64) + "," + strconv.FormatFloat(at.Latitude, 'f', 6, 64)},
		"geometryType":   {"esriGeometryPoint"},
		"inSR":           {"4326"},
		"spatialRel":     {"esriSpatialRelIntersects"},
		"distance":       {strconv.FormatFloat(radiusKm, 'f', -1, 64)},
		"units":          {"esriSRUnit_Kilometer"},
		"outFields":      {"*"},
		"returnGeometry": {"true"},
		"outSR":          {"4326"},
		"f":              {"json"},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s request: %w", domain.ErrUpstreamUnavailable, layer, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("%w: arcgis %s: status %d: %s", domain.ErrUpstreamUnavailable, layer, resp.StatusCode, body)
	}

	var qr queryResponse
	if err := json.NewDecoder(resp.Body).Decode(&qr); err != nil {
		return nil, fmt.Errorf("%w: decode %s response: %w", domain.ErrMalformedResponse, layer, err)
	}
	// ArcGIS reports query errors in a 200 body.
	if qr.Error != nil {
		return nil, fmt.Errorf("%w: arcgis %s: error %d: %s", domain.ErrUpstreamUnavailable, layer, qr.Error.Code, qr.Error.Message)
	}
	return qr.Features, nil
}

func (c *Client) incidents(features []feature) []domain.FireIncident {
	out := make([]domain.FireIncident, 0, len(features))
	for _, f := range features {
		if f.Geometry == nil || f.Geometry.X == nil || f.Geometry.Y == nil {
			c.logger.Debug("skipping incident without point geometry", "name", f.Attributes.IncidentName)
			continue
		}
		out = append(out, domain.FireIncident{
			Name:               f.Attributes.IncidentName,
			Location:           domain.Coordinate{Latitude: *f.Geometry.Y, Longitude: *f.Geometry.X},
			SizeAcres:          valueOrZero(f.Attributes.IncidentSize),
			ContainmentPercent: f.Attributes.PercentContained,
		})
	}
	return out
}

func perimeters(features []feature) []domain.FirePerimeter {
	out := make([]domain.FirePerimeter, 0, len(features))
	for _, f := range features {
		acres := f.Attributes.PolyGISAcres
		if acres == nil {
			acres = f.Attributes.AttrIncidentSize
		}
		out = append(out, domain.FirePerimeter{Acres: valueOrZero(acres)})
	}
	return out
}

func valueOrZero(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}

// ArcGIS query response types. Only the fields read above are declared.

type queryResponse struct {
	Features []feature `json:"features"`
	Error    *queryErr `json:"error"`
}

type queryErr struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type feature struct {
	Attributes attributes `json:"attributes"`
	Geometry   *point     `json:"geometry"`
}

type attributes struct {
	IncidentName     string   `json:"IncidentName"`
	IncidentSize     *float64 `json:"IncidentSize"`
	PercentContained *float64 `json:"PercentContained"`
	PolyGISAcres     *float64 `json:"poly_GISAcres"`
	AttrIncidentSize *float64 `json:"attr_IncidentSize"`
}

// point is an esri point; perimeter polygons decode with nil X and Y.
type point struct {
	X *float64 `json:"x"`
	Y *float64 `json:"y"`
}
