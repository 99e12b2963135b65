package nfp_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/nestpack/geom"
	"github.com/katalvlaran/nestpack/item"
	"github.com/katalvlaran/nestpack/nfp"
)

func square(s float64) geom.Polygon {
	return geom.Polygon{geom.Ring{
		{0, 0}, {s, 0}, {s, s}, {0, s},
	}}
}

func newSquareItem(t *testing.T, id string, s float64) *item.Item {
	t.Helper()
	it, err := item.New(id, square(s), 0)
	require.NoError(t, err)
	return it
}

func TestBuildRejectsNonConvex(t *testing.T) {
	star := geom.Polygon{geom.Ring{
		{0, 0}, {4, 1}, {8, 0}, {6, 4}, {8, 8}, {4, 6}, {0, 8}, {2, 4},
	}}
	orbiting, err := item.New("orbiting", star, 0)
	require.NoError(t, err)
	stationary := newSquareItem(t, "stationary", 10)

	_, err = nfp.Build(stationary, orbiting)
	assert.ErrorIs(t, err, nfp.ErrNonConvexUnsupported)
}

func TestBuildProducesNonEmptyContour(t *testing.T) {
	stationary := newSquareItem(t, "stationary", 10)
	orbiting := newSquareItem(t, "orbiting", 3)

	n, err := nfp.Build(stationary, orbiting)
	require.NoError(t, err)
	assert.NotEmpty(t, n.Contour)
}

func TestMergeOfSingleNFPReturnsOnePolygon(t *testing.T) {
	stationary := newSquareItem(t, "stationary", 10)
	orbiting := newSquareItem(t, "orbiting", 3)

	n, err := nfp.Build(stationary, orbiting)
	require.NoError(t, err)

	merged := nfp.Merge([]*nfp.NFP{n})
	require.Len(t, merged, 1)
}

func TestMergeOfNoNFPsIsEmpty(t *testing.T) {
	assert.Nil(t, nfp.Merge(nil))
}

// TestBuildMatchesWorkedExampleAndTouchesWithoutOverlap pins down the
// reference-point correction against a worked-by-hand example: a 3x3
// square orbiting a 10x10 square at the origin has NFP [0,13]x[0,13]. It
// then places the orbiting item's reference vertex at the NFP's
// lower-left corner and checks the two items touch rather than overlap,
// exercising the NFP as an actual non-overlap guarantee rather than just
// a non-empty polygon.
func TestBuildMatchesWorkedExampleAndTouchesWithoutOverlap(t *testing.T) {
	stationary := newSquareItem(t, "stationary", 10)
	orbiting := newSquareItem(t, "orbiting", 3)

	n, err := nfp.Build(stationary, orbiting)
	require.NoError(t, err)

	bb := geom.BoundingBox(geom.Polygon{n.Contour})
	assert.InDelta(t, 0, bb.Min[0], 1e-6)
	assert.InDelta(t, 0, bb.Min[1], 1e-6)
	assert.InDelta(t, 13, bb.Max[0], 1e-6)
	assert.InDelta(t, 13, bb.Max[1], 1e-6)

	refVertex := orbiting.RightmostTopVertex() // (3,3) in the orbiting item's own frame
	p := geom.Point{0, 0}                      // NFP's lower-left corner
	d := geom.Point{p[0] - refVertex[0], p[1] - refVertex[1]}
	orbiting.SetTransform(0, d)

	ob := geom.BoundingBox(orbiting.Transformed())
	sb := geom.BoundingBox(stationary.Transformed())
	overlap := ob.Max[0] > sb.Min[0]+1e-9 && sb.Max[0] > ob.Min[0]+1e-9 &&
		ob.Max[1] > sb.Min[1]+1e-9 && sb.Max[1] > ob.Min[1]+1e-9
	assert.False(t, overlap, "orbiting item overlaps stationary item at a touching NFP point")
}
