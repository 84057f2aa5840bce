package scoring

import (
	"time"

	"github.com/reroute/reroute-backend-go/internal/models"
)

// Night mode starts at 21:00 and ends at 06:00 local time
const (
	nightStartHour = 21
	nightEndHour   = 6
)

// ComputeNightState derives the night-safety state for one request.
// forceNight lets the caller override the clock (used by clients that
// know the walk will extend past dark). ForceAvoidZones is set for
// night walks and for callers flagged as night-sensitive.
func ComputeNightState(now time.Time, forceNight, vulnerable bool) models.NightState {
	hour := now.Hour()
	isNight := forceNight || hour >= nightStartHour || hour < nightEndHour

	return models.NightState{
		IsNight:         isNight,
		ForceAvoidZones: isNight || vulnerable,
	}
}
