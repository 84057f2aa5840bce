package repository

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/reroute/reroute-backend-go/internal/models"
)

// GeoJSONRepository reads the exported dataset files directly, for
// deployments that ship barcelona_street_scores.geojson and
// POI.geojson instead of the sqlite database
type GeoJSONRepository struct {
	streetPath string
	poiPath    string
}

// NewGeoJSONRepository creates a repository over the two dataset files
func NewGeoJSONRepository(streetPath, poiPath string) *GeoJSONRepository {
	return &GeoJSONRepository{streetPath: streetPath, poiPath: poiPath}
}

type geoJSONFile struct {
	Features []geoJSONFeature `json:"features"`
}

type geoJSONFeature struct {
	Geometry struct {
		Type        string          `json:"type"`
		Coordinates json.RawMessage `json:"coordinates"`
	} `json:"geometry"`
	Properties map[string]interface{} `json:"properties"`
}

// StreetFeatures parses the scored street export. Geometries are
// LineString or MultiLineString; the four scores sit in properties.
func (r *GeoJSONRepository) StreetFeatures() ([]models.StreetFeature, error) {
	file, err := loadGeoJSON(r.streetPath)
	if err != nil {
		return nil, err
	}

	var features []models.StreetFeature
	for i, gf := range file.Features {
		paths, err := parseLinePaths(gf.Geometry.Type, gf.Geometry.Coordinates)
		if err != nil || len(paths) == 0 {
			continue
		}

		features = append(features, models.StreetFeature{
			ID:       int64(i + 1),
			Name:     propString(gf.Properties, "name"),
			Paths:    paths,
			Noise:    propFloat(gf.Properties, "noise_score"),
			Green:    propFloat(gf.Properties, "green_score"),
			Clean:    propFloat(gf.Properties, "clean_score"),
			Cultural: propFloat(gf.Properties, "cultural_score"),
		})
	}

	if len(features) == 0 {
		return nil, fmt.Errorf("no street features in %s", r.streetPath)
	}
	return features, nil
}

// POIFeatures parses the POI export. Only Point geometries are used;
// POIs with no category default to cultural.
func (r *GeoJSONRepository) POIFeatures() ([]models.POIFeature, error) {
	file, err := loadGeoJSON(r.poiPath)
	if err != nil {
		return nil, err
	}

	var pois []models.POIFeature
	for i, gf := range file.Features {
		if gf.Geometry.Type != "Point" {
			continue
		}

		var coord [2]float64
		if err := json.Unmarshal(gf.Geometry.Coordinates, &coord); err != nil {
			continue
		}

		category := propString(gf.Properties, "category")
		if category == "" {
			category = "cultural"
		}

		pois = append(pois, models.POIFeature{
			ID:       fmt.Sprintf("poi-%d", i+1),
			Name:     propString(gf.Properties, "name"),
			Category: category,
			Lng:      coord[0],
			Lat:      coord[1],
		})
	}

	return pois, nil
}

func loadGeoJSON(path string) (*geoJSONFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	var file geoJSONFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return &file, nil
}

// parseLinePaths normalizes LineString and MultiLineString coordinates
// into path lists
func parseLinePaths(geomType string, coords json.RawMessage) ([][]models.LatLng, error) {
	switch geomType {
	case "LineString":
		var raw [][2]float64
		if err := json.Unmarshal(coords, &raw); err != nil {
			return nil, err
		}
		return [][]models.LatLng{toLatLngs(raw)}, nil
	case "MultiLineString":
		var raw [][][2]float64
		if err := json.Unmarshal(coords, &raw); err != nil {
			return nil, err
		}
		paths := make([][]models.LatLng, len(raw))
		for i, line := range raw {
			paths[i] = toLatLngs(line)
		}
		return paths, nil
	default:
		return nil, fmt.Errorf("unsupported geometry type %s", geomType)
	}
}

func toLatLngs(raw [][2]float64) []models.LatLng {
	points := make([]models.LatLng, len(raw))
	for i, coord := range raw {
		points[i] = models.LatLng{Lng: coord[0], Lat: coord[1]}
	}
	return points
}

func propString(props map[string]interface{}, key string) string {
	if v, ok := props[key].(string); ok {
		return v
	}
	return ""
}

func propFloat(props map[string]interface{}, key string) float64 {
	if v, ok := props[key].(float64); ok {
		return v
	}
	return 0
}
