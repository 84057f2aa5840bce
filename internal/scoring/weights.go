package scoring

import (
	"github.com/reroute/reroute-backend-go/internal/models"
)

// WeightProfile is the four-way weighting used to combine averaged
// criterion scores into one composite score for an intent
type WeightProfile struct {
	Noise    float64 `json:"noise"`
	Green    float64 `json:"green"`
	Clean    float64 `json:"clean"`
	Cultural float64 `json:"cultural"`
}

// NightNoiseFloor is the minimum noise weight applied after dark. The
// floor only ever raises the weight, never lowers it.
const NightNoiseFloor = 0.35

// weightProfiles maps each intent to its fixed weight profile. Adding
// an intent is a data change here, not a control-flow change.
var weightProfiles = map[models.Intent]WeightProfile{
	models.IntentCalm:     {Noise: 0.45, Green: 0.30, Clean: 0.15, Cultural: 0.10},
	models.IntentNature:   {Noise: 0.20, Green: 0.55, Clean: 0.15, Cultural: 0.10},
	models.IntentDiscover: {Noise: 0.05, Green: 0.10, Clean: 0.10, Cultural: 0.75},
	models.IntentScenic:   {Noise: 0.15, Green: 0.40, Clean: 0.10, Cultural: 0.35},
	models.IntentLively:   {Noise: 0, Green: 0.05, Clean: 0.15, Cultural: 0.80},
	models.IntentExercise: {Noise: 0.10, Green: 0.30, Clean: 0.10, Cultural: 0.10},
	models.IntentCafe:     {Noise: 0.10, Green: 0.10, Clean: 0.20, Cultural: 0.60},
	models.IntentQuick:    {Noise: 0.10, Green: 0.10, Clean: 0.10, Cultural: 0.10},
}

// ProfileFor returns the weight profile for an intent
func ProfileFor(intent models.Intent) WeightProfile {
	if profile, ok := weightProfiles[intent]; ok {
		return profile
	}
	return weightProfiles[models.IntentScenic]
}

// nightAdjusted returns the profile with the night noise floor applied
func (w WeightProfile) nightAdjusted(night models.NightState) WeightProfile {
	if night.IsNight && w.Noise < NightNoiseFloor {
		w.Noise = NightNoiseFloor
	}
	return w
}
