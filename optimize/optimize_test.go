package optimize_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/katalvlaran/nestpack/geom"
	"github.com/katalvlaran/nestpack/optimize"
)

func TestMinimize1DFindsInteriorMinimum(t *testing.T) {
	f := func(x float64) float64 { return (x - 0.6) * (x - 0.6) }
	res := optimize.Minimize1D(f, 0.1, 0, 1, optimize.DefaultStopCriteria(0.65))

	assert.InDelta(t, 0.6, res.Optimum, 0.05)
	assert.Less(t, res.Score, 0.01)
}

func TestMinimize1DStaysWithinBounds(t *testing.T) {
	f := func(x float64) float64 { return -x } // minimized by growing x without bound
	res := optimize.Minimize1D(f, 0.5, 0, 1, optimize.DefaultStopCriteria(0.65))

	assert.GreaterOrEqual(t, res.Optimum, 0.0)
	assert.LessOrEqual(t, res.Optimum, 1.0)
}

func TestDefaultStopCriteriaScalesWithAccuracy(t *testing.T) {
	low := optimize.DefaultStopCriteria(0.1)
	high := optimize.DefaultStopCriteria(0.9)
	assert.Less(t, low.MaxIterations, high.MaxIterations)
}

func TestMinimizeEnclosingCircleContainsEveryVertex(t *testing.T) {
	ring := geom.Ring{{0, 0}, {10, 0}, {10, 10}, {0, 10}}
	c := optimize.MinimizeEnclosingCircle(ring)

	for _, v := range ring {
		dx, dy := v[0]-c.Center[0], v[1]-c.Center[1]
		dist := dx*dx + dy*dy
		assert.LessOrEqual(t, dist, (c.Radius+1e-6)*(c.Radius+1e-6))
	}
}
