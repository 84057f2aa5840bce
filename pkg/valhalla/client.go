package valhalla

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/reroute/reroute-backend-go/internal/models"
	"github.com/reroute/reroute-backend-go/internal/planner"
)

// Client talks to a Valhalla-compatible routing service using
// pedestrian costing. It implements planner.Provider.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a routing client. The timeout applies per call so
// one slow provider call cannot exhaust the request budget before the
// fallback chains get a chance to run.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

type location struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

type routeRequest struct {
	Locations       []location             `json:"locations"`
	Costing         string                 `json:"costing"`
	Alternates      int                    `json:"alternates,omitempty"`
	CostingOptions  map[string]interface{} `json:"costing_options,omitempty"`
	ExcludePolygons [][][2]float64         `json:"exclude_polygons,omitempty"`
}

type trip struct {
	Legs []struct {
		Shape string `json:"shape"`
	} `json:"legs"`
	Summary struct {
		Time   float64 `json:"time"`   // seconds
		Length float64 `json:"length"` // kilometers
	} `json:"summary"`
}

type routeResponse struct {
	Trip       trip `json:"trip"`
	Alternates []struct {
		Trip trip `json:"trip"`
	} `json:"alternates"`
}

type apiError struct {
	ErrorCode int    `json:"error_code"`
	Error     string `json:"error"`
}

// Directions returns up to 1+alternatives pedestrian routes
func (c *Client) Directions(ctx context.Context, origin, destination models.LatLng, alternatives int, opts planner.RouteOptions) ([]planner.Route, error) {
	req := routeRequest{
		Locations: []location{
			{Lat: origin.Lat, Lon: origin.Lng},
			{Lat: destination.Lat, Lon: destination.Lng},
		},
		Costing:         "pedestrian",
		Alternates:      alternatives,
		CostingOptions:  costingOptions(opts),
		ExcludePolygons: encodePolygons(opts.AvoidPolygon),
	}

	var resp routeResponse
	if err := c.post(ctx, "/route", req, &resp); err != nil {
		return nil, err
	}

	routes := []planner.Route{tripToRoute(resp.Trip)}
	for _, alt := range resp.Alternates {
		routes = append(routes, tripToRoute(alt.Trip))
	}
	return routes, nil
}

// WaypointRoute returns one pedestrian route through the waypoints in order
func (c *Client) WaypointRoute(ctx context.Context, origin models.LatLng, waypoints []models.LatLng, opts planner.RouteOptions) (*planner.Route, error) {
	locations := make([]location, 0, len(waypoints)+1)
	locations = append(locations, location{Lat: origin.Lat, Lon: origin.Lng})
	for _, wp := range waypoints {
		locations = append(locations, location{Lat: wp.Lat, Lon: wp.Lng})
	}

	req := routeRequest{
		Locations:       locations,
		Costing:         "pedestrian",
		CostingOptions:  costingOptions(opts),
		ExcludePolygons: encodePolygons(opts.AvoidPolygon),
	}

	var resp routeResponse
	if err := c.post(ctx, "/route", req, &resp); err != nil {
		return nil, err
	}

	route := tripToRoute(resp.Trip)
	return &route, nil
}

type isochroneRequest struct {
	Locations []location    `json:"locations"`
	Costing   string        `json:"costing"`
	Contours  []contourSpec `json:"contours"`
	Polygons  bool          `json:"polygons"`
}

type contourSpec struct {
	Time float64 `json:"time"` // minutes
}

type isochroneResponse struct {
	Features []struct {
		Geometry struct {
			Coordinates [][2]float64 `json:"coordinates"`
		} `json:"geometry"`
	} `json:"features"`
}

// Isochrone returns the boundary ring reachable within the time budget
func (c *Client) Isochrone(ctx context.Context, origin models.LatLng, seconds int) ([]models.LatLng, error) {
	req := isochroneRequest{
		Locations: []location{{Lat: origin.Lat, Lon: origin.Lng}},
		Costing:   "pedestrian",
		Contours:  []contourSpec{{Time: float64(seconds) / 60}},
		Polygons:  false,
	}

	var resp isochroneResponse
	if err := c.post(ctx, "/isochrone", req, &resp); err != nil {
		return nil, err
	}
	if len(resp.Features) == 0 {
		return nil, fmt.Errorf("isochrone returned no contours")
	}

	coords := resp.Features[0].Geometry.Coordinates
	ring := make([]models.LatLng, len(coords))
	for i, coord := range coords {
		ring[i] = models.LatLng{Lng: coord[0], Lat: coord[1]}
	}
	return ring, nil
}

func (c *Client) post(ctx context.Context, path string, body, out interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("provider request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read provider response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var apiErr apiError
		if json.Unmarshal(data, &apiErr) == nil && isAvoidRejection(apiErr) {
			return fmt.Errorf("%w: %s", planner.ErrAvoidAreaUnsupported, apiErr.Error)
		}
		return fmt.Errorf("provider returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(data)))
	}

	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to decode provider response: %w", err)
	}
	return nil
}

// isAvoidRejection recognizes the provider errors raised for
// unsupported or oversized exclusion polygons
func isAvoidRejection(apiErr apiError) bool {
	if apiErr.ErrorCode == 104 || apiErr.ErrorCode == 107 {
		return true
	}
	return strings.Contains(strings.ToLower(apiErr.Error), "exclude_polygons")
}

func costingOptions(opts planner.RouteOptions) map[string]interface{} {
	if opts.QuietBias <= 0 {
		return nil
	}
	// Bias the pedestrian costing toward walkways and away from busy
	// roads; the provider treats these as soft multipliers
	return map[string]interface{}{
		"pedestrian": map[string]interface{}{
			"walkway_factor":     1.0 + opts.QuietBias,
			"driveway_factor":    5.0,
			"use_living_streets": 0.5 + opts.QuietBias/2,
		},
	}
}

func encodePolygons(polygon []models.LatLng) [][][2]float64 {
	if len(polygon) == 0 {
		return nil
	}
	ring := make([][2]float64, 0, len(polygon)+1)
	for _, p := range polygon {
		ring = append(ring, [2]float64{p.Lng, p.Lat})
	}
	// Close the ring
	ring = append(ring, ring[0])
	return [][][2]float64{ring}
}

func tripToRoute(t trip) planner.Route {
	var polyline models.Polyline
	for _, leg := range t.Legs {
		points := DecodePolyline(leg.Shape)
		if len(polyline) > 0 && len(points) > 0 {
			// Legs share their junction point
			points = points[1:]
		}
		polyline = append(polyline, points...)
	}

	return planner.Route{
		Polyline:        polyline,
		DurationSeconds: t.Summary.Time,
		DistanceMeters:  t.Summary.Length * 1000,
	}
}
