package index

import (
	"fmt"
	"log"
	"sync"

	"github.com/reroute/reroute-backend-go/internal/models"
)

// Source supplies the street feature batch the index is built from
type Source interface {
	StreetFeatures() ([]models.StreetFeature, error)
}

var (
	shared    *Index
	sharedErr error
	once      sync.Once
)

// Load builds the process-wide index on first call and returns the
// shared handle afterwards. Concurrent first callers coalesce onto a
// single build; the index is never built twice. A load failure is
// fatal for route scoring and is returned to every caller.
func Load(source Source) (*Index, error) {
	once.Do(func() {
		features, err := source.StreetFeatures()
		if err != nil {
			sharedErr = fmt.Errorf("failed to load street features: %w", err)
			return
		}

		shared = Build(features)
		log.Printf("[Index] Built spatial index: %d features, %d cells", shared.FeatureCount(), len(shared.cells))
	})

	return shared, sharedErr
}
