package planner

import (
	"github.com/reroute/reroute-backend-go/internal/index"
	"github.com/reroute/reroute-backend-go/internal/models"
	"github.com/reroute/reroute-backend-go/internal/spatial"
)

const (
	// highlightSampleCount spaces the POI searches along the route
	highlightSampleCount = 20
	// HighlightRadiusMeters is the POI search radius per sample point
	HighlightRadiusMeters = 200.0
	// highlightDedupMeters collapses highlights closer than this
	highlightDedupMeters = 50.0
	// poiFocusedMaxHighlights lifts the cap for POI-focused requests
	poiFocusedMaxHighlights = 8
	// livelyCulturalDensity gates lively highlights on the street
	// neighborhood's cultural score
	livelyCulturalDensity = 0.3
)

// highlightCategories maps each intent to its POI category filter.
// The quick intent has no entry: it suppresses highlights entirely.
var highlightCategories = map[models.Intent][]string{
	models.IntentCalm:     {"park", "nature"},
	models.IntentNature:   {"park", "nature"},
	models.IntentDiscover: {"museum", "historic", "viewpoint"},
	models.IntentScenic:   {"museum", "historic", "viewpoint"},
	models.IntentCafe:     {"cafe", "restaurant"},
	models.IntentLively:   {"cultural", "market"},
	models.IntentExercise: {"park"},
}

// genericCategories back the complementary pass when an intent's own
// pass yields nothing after exclusions
var genericCategories = []string{"cultural", "park"}

// HighlightExtractor selects a small set of point-of-interest
// highlights along a scored route
type HighlightExtractor struct {
	streets *index.Index
	pois    *index.POIIndex
}

// NewHighlightExtractor creates a highlight extractor
func NewHighlightExtractor(streets *index.Index, pois *index.POIIndex) *HighlightExtractor {
	return &HighlightExtractor{streets: streets, pois: pois}
}

// Extract samples the polyline at ~20 evenly spaced points and picks
// the nearest unused POI matching the intent's category filter around
// each. Categories in excluded are skipped (the destination already
// covers them); when exclusions empty the intent's own pass, a generic
// complementary pass runs instead. Results are deduplicated within 50m
// and truncated to a distance-tiered cap.
func (e *HighlightExtractor) Extract(polyline models.Polyline, intent models.Intent, excluded []string, poiFocused bool) []models.Highlight {
	categories := highlightCategories[intent]
	if len(categories) == 0 || len(polyline) == 0 {
		return []models.Highlight{}
	}

	excludedSet := make(map[string]bool)
	for _, c := range excluded {
		excludedSet[c] = true
	}

	samples := spatial.EvenSamples(polyline, highlightSampleCount)

	highlights := e.collect(samples, intent, categories, excludedSet)
	if len(highlights) == 0 && len(excluded) > 0 {
		// Exclusions emptied the primary pass; surface complementary
		// cultural/park spots instead
		highlights = e.collect(samples, intent, genericCategories, nil)
	}

	highlights = dedupeHighlights(highlights, highlightDedupMeters)

	max := maxHighlightCount(spatial.PathLength(polyline), poiFocused)
	if len(highlights) > max {
		highlights = highlights[:max]
	}
	return highlights
}

// collect runs one pass over the sample points, picking the nearest
// unused-by-name POI match per sample
func (e *HighlightExtractor) collect(samples models.Polyline, intent models.Intent, categories []string, excluded map[string]bool) []models.Highlight {
	allowed := make(map[string]bool)
	for _, c := range categories {
		if !excluded[c] {
			allowed[c] = true
		}
	}
	if len(allowed) == 0 {
		return nil
	}

	var highlights []models.Highlight
	usedNames := make(map[string]bool)

	for _, sample := range samples {
		if intent == models.IntentLively && !e.denseEnough(sample) {
			continue
		}

		var best *models.POIFeature
		bestDist := HighlightRadiusMeters + 1
		for _, poi := range e.pois.Within(sample.Lat, sample.Lng) {
			if !allowed[poi.Category] || usedNames[poi.Name] {
				continue
			}
			d := spatial.HaversineDistance(sample.Lat, sample.Lng, poi.Lat, poi.Lng)
			if d < bestDist {
				bestDist = d
				best = poi
			}
		}
		if best == nil {
			continue
		}

		usedNames[best.Name] = true
		highlights = append(highlights, models.Highlight{
			Lat:      best.Lat,
			Lng:      best.Lng,
			Category: best.Category,
			Name:     best.Name,
		})
	}

	return highlights
}

// denseEnough checks the street neighborhood's cultural density for
// the lively intent
func (e *HighlightExtractor) denseEnough(p models.LatLng) bool {
	avg, ok := e.streets.NeighborhoodAverage(p.Lng, p.Lat, func(f *models.StreetFeature) float64 { return f.Cultural })
	return ok && avg > livelyCulturalDensity
}

// dedupeHighlights drops highlights within radius meters of an
// earlier one
func dedupeHighlights(highlights []models.Highlight, radius float64) []models.Highlight {
	var out []models.Highlight
	for _, h := range highlights {
		tooClose := false
		for _, kept := range out {
			if spatial.HaversineDistance(h.Lat, h.Lng, kept.Lat, kept.Lng) < radius {
				tooClose = true
				break
			}
		}
		if !tooClose {
			out = append(out, h)
		}
	}
	return out
}

// maxHighlightCount tiers the highlight cap by route distance
func maxHighlightCount(distanceMeters float64, poiFocused bool) int {
	if poiFocused {
		return poiFocusedMaxHighlights
	}
	switch {
	case distanceMeters < 1000:
		return 2
	case distanceMeters < 2000:
		return 3
	case distanceMeters < 4000:
		return 4
	default:
		return 6
	}
}
