package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDistance_ZeroToSelf(t *testing.T) {
	p := Point{Latitude: 41.311081, Longitude: 69.279716}
	assert.Equal(t, 0.0, Distance(p, p))
}

func TestDistance_Symmetric(t *testing.T) {
	a := Point{Latitude: 41.311081, Longitude: 69.279716}
	b := Point{Latitude: 41.40, Longitude: 69.40}
	assert.Equal(t, Distance(a, b), Distance(b, a))
}

func TestDistance_KnownSeparation(t *testing.T) {
	// Tashkent city center to a point roughly 14km northeast.
	a := Point{Latitude: 41.311081, Longitude: 69.279716}
	b := Point{Latitude: 41.40, Longitude: 69.40}

	d := Distance(a, b)
	assert.InDelta(t, 14200, d, 500, "expected roughly 14km, got %.0fm", d)
}

func TestDistance_ShortRange(t *testing.T) {
	// ~111m per 0.001 degrees of latitude at any longitude.
	a := Point{Latitude: 41.311, Longitude: 69.28}
	b := Point{Latitude: 41.312, Longitude: 69.28}

	d := Distance(a, b)
	assert.InDelta(t, 111, d, 2)
}

func TestDistance_AcrossEquator(t *testing.T) {
	a := Point{Latitude: -0.01, Longitude: 10}
	b := Point{Latitude: 0.01, Longitude: 10}

	d := Distance(a, b)
	assert.InDelta(t, 2224, d, 20)
}
