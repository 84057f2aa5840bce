package models

// Intent is the desired mood/purpose of a walk. Each intent maps to a
// fixed scoring weight profile in the scoring package.
type Intent string

const (
	IntentCalm     Intent = "calm"
	IntentDiscover Intent = "discover"
	IntentNature   Intent = "nature"
	IntentScenic   Intent = "scenic"
	IntentLively   Intent = "lively"
	IntentExercise Intent = "exercise"
	IntentCafe     Intent = "cafe"
	IntentQuick    Intent = "quick"
)

// AllIntents lists every supported intent in presentation order
var AllIntents = []Intent{
	IntentCalm,
	IntentDiscover,
	IntentNature,
	IntentScenic,
	IntentLively,
	IntentExercise,
	IntentCafe,
	IntentQuick,
}

// ParseIntent normalizes a raw intent string. Unknown or empty values
// fall back to scenic, the most balanced profile.
func ParseIntent(raw string) Intent {
	for _, intent := range AllIntents {
		if string(intent) == raw {
			return intent
		}
	}
	return IntentScenic
}
