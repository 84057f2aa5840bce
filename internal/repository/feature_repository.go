package repository

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/reroute/reroute-backend-go/internal/models"
)

// DatasetSource supplies the street feature and POI batches the engine
// is built from. Both the sqlite and the GeoJSON repositories satisfy
// it; the core reads each collection once at startup.
type DatasetSource interface {
	StreetFeatures() ([]models.StreetFeature, error)
	POIFeatures() ([]models.POIFeature, error)
}

// FeatureRepository reads and writes the scored street dataset in sqlite
type FeatureRepository struct {
	db *sql.DB
}

// NewFeatureRepository creates a new feature repository
func NewFeatureRepository(db *sql.DB) *FeatureRepository {
	return &FeatureRepository{db: db}
}

// StreetFeatures loads the full scored street collection
func (r *FeatureRepository) StreetFeatures() ([]models.StreetFeature, error) {
	query := `SELECT id, name, paths, noise_score, green_score, clean_score, cultural_score
		FROM street_features`

	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query street features: %w", err)
	}
	defer rows.Close()

	var features []models.StreetFeature
	for rows.Next() {
		var f models.StreetFeature
		var name sql.NullString
		var pathsJSON string
		if err := rows.Scan(&f.ID, &name, &pathsJSON, &f.Noise, &f.Green, &f.Clean, &f.Cultural); err != nil {
			return nil, fmt.Errorf("failed to scan street feature: %w", err)
		}
		f.Name = name.String

		paths, err := decodePaths(pathsJSON)
		if err != nil {
			return nil, fmt.Errorf("failed to decode paths for feature %d: %w", f.ID, err)
		}
		f.Paths = paths
		features = append(features, f)
	}

	return features, rows.Err()
}

// POIFeatures loads the full POI collection
func (r *FeatureRepository) POIFeatures() ([]models.POIFeature, error) {
	rows, err := r.db.Query(`SELECT id, name, category, lat, lng FROM pois`)
	if err != nil {
		return nil, fmt.Errorf("failed to query pois: %w", err)
	}
	defer rows.Close()

	var pois []models.POIFeature
	for rows.Next() {
		var p models.POIFeature
		if err := rows.Scan(&p.ID, &p.Name, &p.Category, &p.Lat, &p.Lng); err != nil {
			return nil, fmt.Errorf("failed to scan poi: %w", err)
		}
		pois = append(pois, p)
	}

	return pois, rows.Err()
}

// InsertStreetFeatures replaces the street feature table contents.
// Used by the scoring pipeline, not the server.
func (r *FeatureRepository) InsertStreetFeatures(tx *sql.Tx, features []models.StreetFeature) error {
	if _, err := tx.Exec("DELETE FROM street_features"); err != nil {
		return fmt.Errorf("failed to clear street features: %w", err)
	}

	stmt, err := tx.Prepare(`INSERT INTO street_features
		(name, paths, noise_score, green_score, clean_score, cultural_score)
		VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, f := range features {
		pathsJSON, err := encodePaths(f.Paths)
		if err != nil {
			return fmt.Errorf("failed to encode paths: %w", err)
		}
		if _, err := stmt.Exec(f.Name, pathsJSON, f.Noise, f.Green, f.Clean, f.Cultural); err != nil {
			return fmt.Errorf("failed to insert street feature: %w", err)
		}
	}

	return nil
}

// InsertPOIs replaces the POI table contents
func (r *FeatureRepository) InsertPOIs(tx *sql.Tx, pois []models.POIFeature) error {
	if _, err := tx.Exec("DELETE FROM pois"); err != nil {
		return fmt.Errorf("failed to clear pois: %w", err)
	}

	stmt, err := tx.Prepare(`INSERT INTO pois (id, name, category, lat, lng) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, p := range pois {
		if _, err := stmt.Exec(p.ID, p.Name, p.Category, p.Lat, p.Lng); err != nil {
			return fmt.Errorf("failed to insert poi %s: %w", p.ID, err)
		}
	}

	return nil
}

// Paths are stored as GeoJSON-ordered coordinate arrays: [[[lng,lat],...],...]

func encodePaths(paths [][]models.LatLng) (string, error) {
	raw := make([][][2]float64, len(paths))
	for i, path := range paths {
		raw[i] = make([][2]float64, len(path))
		for j, pt := range path {
			raw[i][j] = [2]float64{pt.Lng, pt.Lat}
		}
	}
	data, err := json.Marshal(raw)
	return string(data), err
}

func decodePaths(pathsJSON string) ([][]models.LatLng, error) {
	var raw [][][2]float64
	if err := json.Unmarshal([]byte(pathsJSON), &raw); err != nil {
		return nil, err
	}

	paths := make([][]models.LatLng, len(raw))
	for i, path := range raw {
		paths[i] = make([]models.LatLng, len(path))
		for j, coord := range path {
			paths[i][j] = models.LatLng{Lng: coord[0], Lat: coord[1]}
		}
	}
	return paths, nil
}
