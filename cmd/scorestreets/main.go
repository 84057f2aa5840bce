package main

import (
	"database/sql"
	"encoding/csv"
	"flag"
	"fmt"
	"io"
	"log"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/reroute/reroute-backend-go/internal/database"
	"github.com/reroute/reroute-backend-go/internal/models"
	"github.com/reroute/reroute-backend-go/internal/planner"
	"github.com/reroute/reroute-backend-go/internal/repository"
	"github.com/reroute/reroute-backend-go/internal/spatial"
	"github.com/reroute/reroute-backend-go/internal/stats"
)

// 街道质量评分数据准备工具：将巴塞罗那开放数据（噪音、树木、
// 清洁、文化 POI）汇总为每条街道的四项评分，写入 sqlite 数据库。

const (
	bufferMeters = 25.0
	bufferDeg    = bufferMeters / 111000.0

	// Noise segments further than this from a street centroid keep the
	// default medium score
	noiseMatchDeg = 0.001

	defaultNoiseScore = 0.5

	noiseCSV      = "[Noise] 2017_tramer_mapa_estrategic_soroll_bcn.csv"
	streetTreeCSV = "[Trees on Streets] OD_Arbrat_Viari_BCN.csv"
	parkTreeCSV   = "[Trees in Parks] OD_Arbrat_Parcs_BCN.csv"
	cleaningCSV   = "[Cleaning] 5.-dadesoddesembre.csv"
	poiGeoJSON    = "POI.geojson"
)

func main() {
	dataDir := flag.String("data", "data", "目录：原始数据文件")
	streetsPath := flag.String("streets", "", "步行街道网络 GeoJSON（默认 <data>/barcelona_streets.geojson）")
	dbPath := flag.String("db", "./reroute.db", "输出 sqlite 数据库路径")
	flag.Parse()

	if *streetsPath == "" {
		*streetsPath = filepath.Join(*dataDir, "barcelona_streets.geojson")
	}

	// 街道网络与 POI 复用 GeoJSON 数据源（网络文件无评分，忽略其评分字段）
	source := repository.NewGeoJSONRepository(*streetsPath, filepath.Join(*dataDir, poiGeoJSON))

	streets, err := source.StreetFeatures()
	if err != nil {
		log.Fatal("Failed to load street network:", err)
	}
	log.Printf("[ScoreStreets] Loaded %d street segments", len(streets))

	pois, err := source.POIFeatures()
	if err != nil {
		log.Fatal("Failed to load POIs:", err)
	}
	log.Printf("[ScoreStreets] Loaded %d cultural POIs", len(pois))

	noise, err := loadNoiseSegments(filepath.Join(*dataDir, noiseCSV))
	if err != nil {
		log.Fatal("Failed to load noise data:", err)
	}
	log.Printf("[ScoreStreets] Loaded %d noise segments", len(noise))

	trees, err := loadPointCSV(filepath.Join(*dataDir, streetTreeCSV), "latitud", "longitud")
	if err != nil {
		log.Fatal("Failed to load street trees:", err)
	}
	parkTrees, err := loadPointCSV(filepath.Join(*dataDir, parkTreeCSV), "latitud", "longitud")
	if err != nil {
		log.Fatal("Failed to load park trees:", err)
	}
	trees = append(trees, parkTrees...)
	log.Printf("[ScoreStreets] Loaded %d trees", len(trees))

	cleaning, err := loadPointCSV(filepath.Join(*dataDir, cleaningCSV), "Latitud", "Longitud")
	if err != nil {
		log.Fatal("Failed to load cleaning spots:", err)
	}
	log.Printf("[ScoreStreets] Loaded %d cleaning spots", len(cleaning))

	poiPoints := make([]models.LatLng, len(pois))
	for i, p := range pois {
		poiPoints[i] = models.LatLng{Lat: p.Lat, Lng: p.Lng}
	}

	scored := scoreStreets(streets, noise, trees, cleaning, poiPoints)
	log.Printf("[ScoreStreets] Scored %d segments inside the supported area", len(scored))
	logScoreSummary(scored)

	if err := writeDatabase(*dbPath, scored, pois); err != nil {
		log.Fatal("Failed to write database:", err)
	}
	log.Printf("[ScoreStreets] Done: %s", *dbPath)
}

// noiseSegment is one row of the strategic noise map, reduced to its
// centroid and the midpoint of its dB band
type noiseSegment struct {
	Centroid models.LatLng
	DB       float64
}

// loadNoiseSegments reads the noise CSV. Geometry arrives as UTM 31N
// WKT; rows that fail to parse are skipped, matching the tolerant
// ingestion the rest of the pipeline uses.
func loadNoiseSegments(path string) ([]noiseSegment, error) {
	rows, err := readCSVRows(path)
	if err != nil {
		return nil, err
	}

	var segments []noiseSegment
	for _, row := range rows {
		db, err := parseDBRange(row["TOTAL_DEN"])
		if err != nil {
			continue
		}
		paths, err := parseWKTLines(row["GEOM_WKT"])
		if err != nil {
			continue
		}

		var points []models.LatLng
		for _, path := range paths {
			for _, coord := range path {
				lat, lng := utmToLatLng(coord[0], coord[1])
				points = append(points, models.LatLng{Lat: lat, Lng: lng})
			}
		}
		if len(points) == 0 {
			continue
		}

		segments = append(segments, noiseSegment{
			Centroid: spatial.Centroid(points),
			DB:       db,
		})
	}

	if len(segments) == 0 {
		return nil, fmt.Errorf("no usable noise segments in %s", path)
	}
	return segments, nil
}

// parseDBRange converts "70 - 75 dB(A)" to the band midpoint. "< 40
// dB(A)" is treated as the 35-40 band.
func parseDBRange(raw string) (float64, error) {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "<") {
		return 37.5, nil
	}

	raw = strings.TrimSpace(strings.ReplaceAll(raw, "dB(A)", ""))
	parts := strings.Split(raw, "-")
	if len(parts) != 2 {
		return 0, fmt.Errorf("malformed dB range: %q", raw)
	}

	low, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return 0, err
	}
	high, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return 0, err
	}
	return (low + high) / 2, nil
}

// loadPointCSV reads lat/lng point rows, keeping only plausible
// Barcelona coordinates
func loadPointCSV(path, latKey, lngKey string) ([]models.LatLng, error) {
	rows, err := readCSVRows(path)
	if err != nil {
		return nil, err
	}

	var points []models.LatLng
	for _, row := range rows {
		lat, err := strconv.ParseFloat(strings.TrimSpace(row[latKey]), 64)
		if err != nil {
			continue
		}
		lng, err := strconv.ParseFloat(strings.TrimSpace(row[lngKey]), 64)
		if err != nil {
			continue
		}
		if lat > 41.0 && lat < 42.0 && lng > 1.5 && lng < 2.5 {
			points = append(points, models.LatLng{Lat: lat, Lng: lng})
		}
	}
	return points, nil
}

// readCSVRows reads a CSV into header-keyed rows
func readCSVRows(path string) ([]map[string]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read header of %s: %w", path, err)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\uFEFF")
	}

	var rows []map[string]string
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}

		row := make(map[string]string, len(header))
		for i, key := range header {
			if i < len(record) {
				row[key] = record[i]
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// scoreStreets assigns the four quality scores to every street segment
// and keeps the segments whose centroid falls in the supported area
func scoreStreets(streets []models.StreetFeature, noise []noiseSegment, trees, cleaning, poiPoints []models.LatLng) []models.StreetFeature {
	treeGrid := buildPointGrid(trees)
	cleaningGrid := buildPointGrid(cleaning)
	poiGrid := buildPointGrid(poiPoints)
	noiseGrid := buildNoiseGrid(noise)

	treeCounts := make([]int, len(streets))
	cleaningCounts := make([]int, len(streets))
	poiCounts := make([]int, len(streets))
	noiseScores := make([]float64, len(streets))

	for i, street := range streets {
		vertices := flattenPaths(street.Paths)
		if len(vertices) == 0 {
			noiseScores[i] = defaultNoiseScore
			continue
		}
		centroid := spatial.Centroid(vertices)

		noiseScores[i] = defaultNoiseScore
		if db, ok := noiseGrid.nearestDB(centroid); ok {
			// Map 37.5-77.5 dB onto 1..0: quieter is better
			noiseScores[i] = clamp01(1 - (db-37.5)/40)
		}

		treeCounts[i] = treeGrid.countNear(vertices)
		cleaningCounts[i] = cleaningGrid.countNear(vertices)
		poiCounts[i] = poiGrid.countNear(vertices)
	}

	greenCap := normalizationCap(treeCounts)
	culturalCap := normalizationCap(poiCounts)

	var scored []models.StreetFeature
	for i, street := range streets {
		vertices := flattenPaths(street.Paths)
		if len(vertices) == 0 {
			continue
		}
		centroid := spatial.Centroid(vertices)
		if !planner.CentralBounds.Contains(centroid.Lat, centroid.Lng) {
			continue
		}

		street.Noise = round3(noiseScores[i])
		street.Green = round3(math.Min(float64(treeCounts[i])/greenCap, 1))
		street.Cultural = round3(math.Min(float64(poiCounts[i])/culturalCap, 1))

		// Most streets have no reported cleaning problems and score 1.0
		if cleaningCounts[i] == 0 {
			street.Clean = 1.0
		} else {
			street.Clean = round3(math.Max(0, 1-float64(cleaningCounts[i])*0.3))
		}

		scored = append(scored, street)
	}
	return scored
}

// normalizationCap is the 90th percentile of the positive counts, so a
// handful of extreme segments cannot flatten everyone else's score
func normalizationCap(counts []int) float64 {
	var positives []float64
	for _, c := range counts {
		if c > 0 {
			positives = append(positives, float64(c))
		}
	}
	if len(positives) == 0 {
		return 1
	}
	return math.Max(stats.Percentile(positives, 90), 1)
}

// logScoreSummary prints the distribution of each score column
func logScoreSummary(streets []models.StreetFeature) {
	columns := []struct {
		name string
		pick func(models.StreetFeature) float64
	}{
		{"noise", func(f models.StreetFeature) float64 { return f.Noise }},
		{"green", func(f models.StreetFeature) float64 { return f.Green }},
		{"clean", func(f models.StreetFeature) float64 { return f.Clean }},
		{"cultural", func(f models.StreetFeature) float64 { return f.Cultural }},
	}

	for _, col := range columns {
		values := make([]float64, len(streets))
		for i, f := range streets {
			values[i] = col.pick(f)
		}
		log.Printf("[ScoreStreets] %s: min=%.2f median=%.2f max=%.2f",
			col.name, stats.Min(values), stats.Median(values), stats.Max(values))
	}
}

func writeDatabase(path string, streets []models.StreetFeature, pois []models.POIFeature) error {
	if err := database.Init(database.Config{Path: path}); err != nil {
		return err
	}
	defer database.Close()

	if err := database.NewMigrationManager(database.GetDB()).Migrate(); err != nil {
		return err
	}

	repo := repository.NewFeatureRepository(database.GetDB())
	return database.Transaction(func(tx *sql.Tx) error {
		if err := repo.InsertStreetFeatures(tx, streets); err != nil {
			return err
		}
		return repo.InsertPOIs(tx, pois)
	})
}

func flattenPaths(paths [][]models.LatLng) []models.LatLng {
	var points []models.LatLng
	for _, path := range paths {
		points = append(points, path...)
	}
	return points
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
