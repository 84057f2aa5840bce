package scoring

import (
	"sort"

	"github.com/reroute/reroute-backend-go/internal/models"
)

// maxTags caps how many descriptive tags a scored route carries
const maxTags = 3

// Tag texts
const (
	tagQuietStreets   = "quiet streets"
	tagTreeLined      = "tree-lined streets"
	tagHistoric       = "historic buildings"
	tagPleasant       = "pleasant streets"
	tagBusyCorridors  = "busy corridors"
	tagAwayFromCrowds = "away from crowds"
	tagWellLit        = "well-lit streets"
)

// tagCandidate is one threshold-gated tag with the raw score that
// produced it, used for ordering
type tagCandidate struct {
	text  string
	value float64
}

// forbiddenTags lists tags an intent must never carry
var forbiddenTags = map[models.Intent][]string{
	models.IntentCalm:   {tagBusyCorridors},
	models.IntentNature: {tagBusyCorridors},
	models.IntentLively: {tagQuietStreets, tagAwayFromCrowds},
	models.IntentCafe:   {tagQuietStreets},
}

// preferredTags orders tags ahead of the raw-score ordering, per intent
var preferredTags = map[models.Intent][]string{
	models.IntentCalm:     {tagQuietStreets, tagAwayFromCrowds, tagTreeLined},
	models.IntentNature:   {tagTreeLined, tagAwayFromCrowds, tagQuietStreets},
	models.IntentDiscover: {tagHistoric, tagBusyCorridors},
	models.IntentScenic:   {tagTreeLined, tagHistoric},
	models.IntentLively:   {tagBusyCorridors, tagHistoric},
	models.IntentCafe:     {tagBusyCorridors, tagHistoric},
	models.IntentExercise: {tagTreeLined, tagQuietStreets},
}

// tagOverrides re-labels a tag for a specific intent
var tagOverrides = map[models.Intent]map[string]string{
	models.IntentCalm: {tagTreeLined: "tree-lined paths"},
}

// tagCandidates evaluates the threshold table against the averaged
// criterion scores
func tagCandidates(avg averages, intent models.Intent) []tagCandidate {
	var candidates []tagCandidate

	if avg.noise > 0.5 {
		candidates = append(candidates, tagCandidate{tagQuietStreets, avg.noise})
	}
	if avg.green > 0.4 {
		candidates = append(candidates, tagCandidate{tagTreeLined, avg.green})
	}
	if avg.cultural > 0.3 {
		candidates = append(candidates, tagCandidate{tagHistoric, avg.cultural})
	}
	if avg.clean > 0.85 {
		candidates = append(candidates, tagCandidate{tagPleasant, avg.clean})
	}
	if avg.noise < 0.35 {
		candidates = append(candidates, tagCandidate{tagBusyCorridors, 1 - avg.noise})
	}
	if (intent == models.IntentCalm || intent == models.IntentNature) && avg.noise > 0.55 {
		candidates = append(candidates, tagCandidate{tagAwayFromCrowds, avg.noise})
	}

	return candidates
}

// buildTags assembles the final tag list: threshold candidates minus
// the intent's forbidden set, ordered by the intent's preferred list
// first and raw score second, capped at 3 distinct texts with the
// intent's label overrides applied. At night, non-calm/nature intents
// get safety-aware tags prepended ahead of the content tags.
func buildTags(avg averages, intent models.Intent, night models.NightState) []string {
	candidates := tagCandidates(avg, intent)

	// Drop forbidden tags
	forbidden := make(map[string]bool)
	for _, t := range forbiddenTags[intent] {
		forbidden[t] = true
	}
	kept := candidates[:0]
	for _, c := range candidates {
		if !forbidden[c.text] {
			kept = append(kept, c)
		}
	}

	// Preferred ordering first, raw score descending second
	rank := make(map[string]int)
	for i, t := range preferredTags[intent] {
		rank[t] = i + 1
	}
	sort.SliceStable(kept, func(i, j int) bool {
		ri, rj := rank[kept[i].text], rank[kept[j].text]
		if ri == 0 {
			ri = len(rank) + 2
		}
		if rj == 0 {
			rj = len(rank) + 2
		}
		if ri != rj {
			return ri < rj
		}
		return kept[i].value > kept[j].value
	})

	wantSafety := night.IsNight && intent != models.IntentCalm && intent != models.IntentNature

	var tags []string
	seen := make(map[string]bool)
	add := func(text string) {
		if override, ok := tagOverrides[intent][text]; ok {
			text = override
		}
		if len(tags) >= maxTags || seen[text] {
			return
		}
		seen[text] = true
		tags = append(tags, text)
	}

	if wantSafety {
		add(tagWellLit)
		add(tagBusyCorridors)
	}
	for _, c := range kept {
		add(c.text)
	}

	return tags
}
