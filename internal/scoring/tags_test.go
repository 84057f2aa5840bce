package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/reroute/reroute-backend-go/internal/models"
)

func TestBuildTagsPreferredOrdering(t *testing.T) {
	// nature prefers tree-lined ahead of quiet even when quiet has the
	// higher raw score
	avg := averages{noise: 0.9, green: 0.5, clean: 0.5, cultural: 0.1}

	tags := buildTags(avg, models.IntentNature, day)
	assert.Equal(t, []string{"tree-lined streets", "away from crowds", "quiet streets"}, tags)
}

func TestBuildTagsOverrideForCalm(t *testing.T) {
	avg := averages{noise: 0.3, green: 0.6, clean: 0.5, cultural: 0.1}

	tags := buildTags(avg, models.IntentCalm, day)
	assert.Contains(t, tags, "tree-lined paths")
	assert.NotContains(t, tags, "tree-lined streets")
}

func TestBuildTagsForbidden(t *testing.T) {
	noisy := averages{noise: 0.2, green: 0.2, clean: 0.5, cultural: 0.2}
	quiet := averages{noise: 0.9, green: 0.2, clean: 0.5, cultural: 0.2}

	assert.NotContains(t, buildTags(noisy, models.IntentCalm, day), "busy corridors")
	assert.NotContains(t, buildTags(quiet, models.IntentLively, day), "quiet streets")
	assert.NotContains(t, buildTags(quiet, models.IntentLively, day), "away from crowds")
	assert.NotContains(t, buildTags(quiet, models.IntentCafe, day), "quiet streets")
}

func TestBuildTagsNightSafetyPrepended(t *testing.T) {
	night := models.NightState{IsNight: true, ForceAvoidZones: true}
	avg := averages{noise: 0.6, green: 0.5, clean: 0.9, cultural: 0.4}

	tags := buildTags(avg, models.IntentScenic, night)
	assert.Equal(t, "well-lit streets", tags[0])
	assert.Equal(t, "busy corridors", tags[1])
	assert.Len(t, tags, 3)
}

func TestBuildTagsNightKeepsCalmIdentity(t *testing.T) {
	// calm and nature keep their own tags after dark
	night := models.NightState{IsNight: true, ForceAvoidZones: true}
	avg := averages{noise: 0.6, green: 0.5, clean: 0.5, cultural: 0.1}

	tags := buildTags(avg, models.IntentCalm, night)
	assert.NotContains(t, tags, "well-lit streets")
	assert.NotContains(t, tags, "busy corridors")
}

func TestBuildTagsCap(t *testing.T) {
	avg := averages{noise: 0.9, green: 0.9, clean: 0.95, cultural: 0.9}
	for _, intent := range models.AllIntents {
		tags := buildTags(avg, intent, day)
		assert.LessOrEqual(t, len(tags), maxTags, "intent %s", intent)
	}
}

func TestBuildTagsNoThresholdsMet(t *testing.T) {
	avg := averages{noise: 0.4, green: 0.3, clean: 0.5, cultural: 0.2}
	assert.Empty(t, buildTags(avg, models.IntentScenic, day))
}
