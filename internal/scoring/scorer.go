package scoring

import (
	"math"

	"github.com/reroute/reroute-backend-go/internal/index"
	"github.com/reroute/reroute-backend-go/internal/models"
	"github.com/reroute/reroute-backend-go/internal/spatial"
)

const (
	// maxSamples bounds scoring cost on long routes
	maxSamples = 100
	// significantTurnDegrees is the heading change that counts as a turn
	significantTurnDegrees = 45.0
	// turnPenalty is subtracted per significant turn for calm/nature
	turnPenalty = 0.02
)

// averages holds the unrounded per-criterion means that drive
// weighting and tagging
type averages struct {
	noise    float64
	green    float64
	clean    float64
	cultural float64
}

// Scorer scores polylines against the street-quality index
type Scorer struct {
	index *index.Index
}

// NewScorer creates a new route scorer
func NewScorer(ix *index.Index) *Scorer {
	return &Scorer{index: ix}
}

// Score samples the polyline against the spatial index and produces a
// composite score, per-criterion breakdown and descriptive tags for
// the given intent. A polyline with no matching features scores zero;
// that is a valid result, not an error.
func (s *Scorer) Score(polyline models.Polyline, intent models.Intent, night models.NightState) models.ScoredRoute {
	route := models.ScoredRoute{
		Polyline: polyline.Clone(),
		Tags:     []string{},
	}
	if len(polyline) == 0 {
		return route
	}

	// Sample at a stride so at most ~100 points hit the index
	stride := len(polyline) / maxSamples
	if stride < 1 {
		stride = 1
	}

	var acc averages
	var samples models.Polyline
	matched := 0
	for i := 0; i < len(polyline); i += stride {
		pt := polyline[i]
		samples = append(samples, pt)

		f := s.index.NearestFeature(pt.Lng, pt.Lat)
		if f == nil {
			continue
		}
		acc.noise += f.Noise
		acc.green += f.Green
		acc.clean += f.Clean
		acc.cultural += f.Cultural
		matched++
	}

	if matched == 0 {
		return route
	}

	n := float64(matched)
	avg := averages{
		noise:    acc.noise / n,
		green:    acc.green / n,
		clean:    acc.clean / n,
		cultural: acc.cultural / n,
	}

	profile := ProfileFor(intent).nightAdjusted(night)
	score := avg.noise*profile.Noise +
		avg.green*profile.Green +
		avg.clean*profile.Clean +
		avg.cultural*profile.Cultural

	// Calm and nature walks prefer straighter, less fiddly paths
	if intent == models.IntentCalm || intent == models.IntentNature {
		score -= float64(countSignificantTurns(samples)) * turnPenalty
		if score < 0 {
			score = 0
		}
	}

	route.Score = score
	route.Breakdown = models.Breakdown{
		Noise:    round2(avg.noise),
		Green:    round2(avg.green),
		Clean:    round2(avg.clean),
		Cultural: round2(avg.cultural),
	}
	route.Tags = buildTags(avg, intent, night)
	return route
}

// countSignificantTurns counts heading changes above 45 degrees
// between consecutive segments of the sampled path
func countSignificantTurns(points models.Polyline) int {
	if len(points) < 3 {
		return 0
	}

	turns := 0
	prev := spatial.Bearing(points[0].Lat, points[0].Lng, points[1].Lat, points[1].Lng)
	for i := 2; i < len(points); i++ {
		next := spatial.Bearing(points[i-1].Lat, points[i-1].Lng, points[i].Lat, points[i].Lng)
		if spatial.HeadingChange(prev, next) > significantTurnDegrees {
			turns++
		}
		prev = next
	}
	return turns
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
