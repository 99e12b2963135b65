package geom_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/nestpack/geom"
)

func square(x, y, s float64) geom.Polygon {
	return geom.Polygon{geom.Ring{
		{x, y}, {x + s, y}, {x + s, y + s}, {x, y + s},
	}}
}

func TestAreaRectangle(t *testing.T) {
	p := square(0, 0, 10)
	assert.InDelta(t, 100.0, geom.Area(p), 1e-9)
}

func TestAreaSubtractsHoles(t *testing.T) {
	outer := square(0, 0, 10)
	hole := geom.Ring{{2, 2}, {4, 2}, {4, 4}, {2, 4}}
	p := append(geom.Polygon{}, outer[0])
	p = append(p, hole)
	assert.InDelta(t, 96.0, geom.Area(p), 1e-9)
}

func TestTranslateShiftsEveryVertex(t *testing.T) {
	p := square(0, 0, 5)
	out := geom.Translate(p, geom.Point{3, -2})
	want := geom.Ring{{3, -2}, {8, -2}, {8, 3}, {3, 3}}
	require.Len(t, out[0], len(want))
	for i := range want {
		assert.InDelta(t, want[i][0], out[0][i][0], 1e-9)
		assert.InDelta(t, want[i][1], out[0][i][1], 1e-9)
	}
}

func TestBoundingBoxUnionsHoles(t *testing.T) {
	outer := square(0, 0, 10)
	hole := geom.Ring{{-5, -5}, {-4, -5}, {-4, -4}, {-5, -4}}
	p := geom.Polygon{outer[0], hole}
	bb := geom.BoundingBox(p)
	assert.Equal(t, -5.0, bb.Min[0])
	assert.Equal(t, -5.0, bb.Min[1])
	assert.Equal(t, 10.0, bb.Max[0])
	assert.Equal(t, 10.0, bb.Max[1])
}

func TestConvexHullOfSquareIsItself(t *testing.T) {
	p := square(0, 0, 4)
	hull := geom.ConvexHull(p)
	assert.Len(t, hull, 4)
}

func TestConvexHullDropsInteriorPoints(t *testing.T) {
	pts := geom.Polygon{geom.Ring{
		{0, 0}, {4, 0}, {4, 4}, {0, 4}, {2, 2},
	}}
	hull := geom.ConvexHull(pts)
	assert.Len(t, hull, 4)
	for _, v := range hull {
		assert.NotEqual(t, geom.Point{2, 2}, v)
	}
}

func TestIsInsideTrueForNestedSquare(t *testing.T) {
	inner := square(2, 2, 2)
	outer := square(0, 0, 10)
	assert.True(t, geom.IsInside(inner, outer))
}

func TestIsInsideFalseWhenVertexEscapes(t *testing.T) {
	inner := square(8, 8, 5)
	outer := square(0, 0, 10)
	assert.False(t, geom.IsInside(inner, outer))
}

func TestContainsRespectsHoles(t *testing.T) {
	outer := square(0, 0, 10)
	hole := geom.Ring{{3, 3}, {7, 3}, {7, 7}, {3, 7}}
	p := geom.Polygon{outer[0], hole}
	assert.True(t, geom.Contains(p, geom.Point{1, 1}))
	assert.False(t, geom.Contains(p, geom.Point{5, 5}))
}

func TestUnionOfOverlappingSquaresMergesIntoOne(t *testing.T) {
	a := square(0, 0, 10)
	b := square(5, 5, 10)
	out := geom.Union(a, b)
	require.Len(t, out, 1)
	assert.Greater(t, geom.Area(out[0]), geom.Area(a))
}

func TestUnionOfDisjointSquaresStaysSeparate(t *testing.T) {
	a := square(0, 0, 2)
	b := square(100, 100, 2)
	out := geom.Union(a, b)
	assert.Len(t, out, 2)
}

func TestRotateByFullTurnIsIdentity(t *testing.T) {
	p := square(1, 1, 3)
	out := geom.Rotate(p, 2*3.141592653589793, geom.Point{0, 0})
	for i := range p[0] {
		assert.InDelta(t, p[0][i][0], out[0][i][0], 1e-6)
		assert.InDelta(t, p[0][i][1], out[0][i][1], 1e-6)
	}
}
