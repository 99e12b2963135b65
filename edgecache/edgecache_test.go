package edgecache_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/nestpack/edgecache"
	"github.com/katalvlaran/nestpack/geom"
)

func square(s float64) geom.Polygon {
	return geom.Polygon{geom.Ring{
		{0, 0}, {s, 0}, {s, s}, {0, s},
	}}
}

func TestContourLengthMatchesPerimeter(t *testing.T) {
	c := edgecache.Build(square(10), 0.65)
	assert.InDelta(t, 40.0, c.ContourLength(), 1e-9)
}

func TestCoordsWrapsAroundPerimeter(t *testing.T) {
	c := edgecache.Build(square(10), 0.65)
	start := c.Coords(0)
	wrapped := c.Coords(1) // parameter 1.0 wraps to the same point as 0
	assert.Equal(t, start, wrapped)
}

func TestCoordsAtHalfPerimeterIsOppositeEdge(t *testing.T) {
	c := edgecache.Build(square(10), 0.65)
	p := c.Coords(0.5)
	assert.InDelta(t, 10.0, p[0], 1e-6)
	assert.InDelta(t, 10.0, p[1], 1e-6)
}

func TestCornersAreNonEmptyAndWithinRange(t *testing.T) {
	c := edgecache.Build(square(10), 0.65)
	corners := c.Corners()
	require.NotEmpty(t, corners)
	for _, t0 := range corners {
		assert.GreaterOrEqual(t, t0, 0.0)
		assert.Less(t, t0, 1.0)
	}
}

func TestHoleCornersTrackEachHoleIndependently(t *testing.T) {
	outer := square(20)
	hole := geom.Ring{{5, 5}, {10, 5}, {10, 10}, {5, 10}}
	c := edgecache.Build(geom.Polygon{outer[0], hole}, 0.65)
	assert.Equal(t, 1, c.HoleCount())
	assert.NotEmpty(t, c.HoleCorners(0))
	assert.Nil(t, c.HoleCorners(1))
}

func TestMoreAccuracyNeverProducesFewerCorners(t *testing.T) {
	coarse := edgecache.Build(square(100), 0.1).Corners()
	fine := edgecache.Build(square(100), 0.95).Corners()
	assert.LessOrEqual(t, len(coarse), len(fine))
}
