package zones

import "beacon/pkg/geo"

// Evaluation is the outcome of checking a point against a guardian's zones.
// Zone is the first zone that contains the point, nil when outside all of
// them or when the guardian has none.
type Evaluation struct {
	Inside bool
	Zone   *SafeZone
}

// Evaluate checks the point against every zone in the list, stopping at the
// first one that contains it. An empty list evaluates to outside with no
// zone, which callers treat as "nothing to alert on".
func Evaluate(point geo.Point, zones []*SafeZone) Evaluation {
	for _, zone := range zones {
		if zone.Contains(point) {
			return Evaluation{Inside: true, Zone: zone}
		}
	}
	return Evaluation{}
}
