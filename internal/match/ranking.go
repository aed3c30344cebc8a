package match

import (
	"math"
	"sort"

	"github.com/rollmates/dicematch-backend/pkg/db/models"
	"github.com/rollmates/dicematch-backend/pkg/geo"
)

// RankedCandidate is a candidate roll annotated with its distance to the
// submitter. DistanceMeters is nil when either side lacks a location.
type RankedCandidate struct {
	Event          models.RollEvent
	DistanceMeters *float64
}

// Rank orders candidates nearest first. Candidates without a computable
// distance sort last; ties break on the older roll, then on the id so the
// order is total and stable across nodes.
func Rank(submitter *models.RollEvent, candidates []models.RollEvent) []RankedCandidate {
	ranked := make([]RankedCandidate, 0, len(candidates))
	for _, c := range candidates {
		rc := RankedCandidate{Event: c}
		if submitter.Lat != nil && submitter.Lon != nil && c.Lat != nil && c.Lon != nil {
			d := geo.DistanceMeters(*submitter.Lat, *submitter.Lon, *c.Lat, *c.Lon)
			rc.DistanceMeters = &d
		}
		ranked = append(ranked, rc)
	}

	sort.Slice(ranked, func(i, j int) bool {
		di, dj := sortDistance(ranked[i]), sortDistance(ranked[j])
		if di != dj {
			return di < dj
		}
		ei, ej := ranked[i].Event, ranked[j].Event
		if !ei.CreatedAt.Equal(ej.CreatedAt) {
			return ei.CreatedAt.Before(ej.CreatedAt)
		}
		return ei.ID.String() < ej.ID.String()
	})
	return ranked
}

func sortDistance(c RankedCandidate) float64 {
	if c.DistanceMeters == nil {
		return math.Inf(1)
	}
	return *c.DistanceMeters
}
