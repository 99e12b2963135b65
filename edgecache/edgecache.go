// Package edgecache implements a boundary-parametrization cache: a
// polygon's contour (and each hole) is walked once into a cumulative
// arc-length table, after which any point on the boundary can
// be recovered from a single [0,1) parameter in O(log n) via binary
// search, and a reduced "corner" subset can be sampled at a density
// controlled by the accuracy knob.
//
// Grounded on the original EdgeCache::createCache / coords / stride /
// fetchCorners family (nfpplacer.hpp): same cumulative-length table, same
// stride formula, same fmod-wrap-then-binary-search coordinate lookup.
package edgecache

import (
	"math"
	"sort"

	"github.com/katalvlaran/nestpack/geom"
)

// ring is the walked representation of one contour or hole: edges in
// order, with a cumulative arc-length table where cumulative[i] is the
// distance from the ring's start to the start of edges[i], and
// cumulative[len(edges)] is the ring's total perimeter.
type ring struct {
	verts      geom.Ring
	cumulative []float64 // len(verts)+1
}

func buildRing(verts geom.Ring) ring {
	n := len(verts)
	cum := make([]float64, n+1)
	for i := 0; i < n; i++ {
		a, b := verts[i], verts[(i+1)%n]
		dx, dy := b[0]-a[0], b[1]-a[1]
		cum[i+1] = cum[i] + math.Hypot(dx, dy)
	}
	return ring{verts: verts, cumulative: cum}
}

func (r ring) length() float64 {
	if len(r.cumulative) == 0 {
		return 0
	}
	return r.cumulative[len(r.cumulative)-1]
}

// coords maps an arc-length distance (wrapped modulo the ring's
// perimeter) to the boundary point at that distance, interpolating
// linearly along the edge the distance falls on and rounding the result
// to the integral grid, matching the original's std::round coordinate
// snapping.
func (r ring) coords(distance float64) geom.Point {
	n := len(r.verts)
	if n == 0 {
		return geom.Point{}
	}
	total := r.length()
	if total == 0 {
		return r.verts[0]
	}
	d := math.Mod(distance, total)
	if d < 0 {
		d += total
	}
	// lower_bound: first edge index whose cumulative start is > d, minus 1.
	i := sort.Search(len(r.cumulative), func(i int) bool { return r.cumulative[i] > d }) - 1
	if i < 0 {
		i = 0
	}
	if i >= n {
		i = n - 1
	}
	a, b := r.verts[i], r.verts[(i+1)%n]
	edgeLen := r.cumulative[i+1] - r.cumulative[i]
	if edgeLen == 0 {
		return geom.Round(a)
	}
	t := (d - r.cumulative[i]) / edgeLen
	p := geom.Point{a[0] + t*(b[0]-a[0]), a[1] + t*(b[1]-a[1])}
	return geom.Round(p)
}

// stride returns the vertex-index step used to subsample corners from a
// ring of n vertices at the given accuracy, matching the original's
// round(N / pow(N, pow(accuracy, 1/3))). accuracy closer to 1 samples
// every vertex; closer to 0 samples sparsely.
func stride(n int, accuracy float64) int {
	if n <= 0 {
		return 1
	}
	nf := float64(n)
	exp := math.Pow(accuracy, 1.0/3.0)
	s := math.Round(nf / math.Pow(nf, exp))
	if s < 1 {
		s = 1
	}
	// At accuracy 0 the raw formula collapses to stride == n, sampling only
	// index 0 and leaving the ring's far side with no corner at all. Capping
	// the stride at n/2 keeps at least two opposite corners in the sparsest
	// case instead of degenerating to one.
	if maxStride := n / 2; maxStride >= 1 && int(s) > maxStride {
		s = float64(maxStride)
	}
	return int(s)
}

// corners returns the arc-length distances, as fractions of the ring's
// perimeter in [0,1), of every stride-th vertex.
func (r ring) corners(accuracy float64) []float64 {
	n := len(r.verts)
	if n == 0 {
		return nil
	}
	total := r.length()
	if total == 0 {
		return []float64{0}
	}
	st := stride(n, accuracy)
	out := make([]float64, 0, n/st+1)
	for i := 0; i < n; i += st {
		out = append(out, r.cumulative[i]/total)
	}
	return out
}

// Cache is the edge-cache of a single item's current shape: the outer
// contour plus each hole, each walked independently.
type Cache struct {
	accuracy float64
	contour  ring
	holes    []ring
}

// Build walks shape's contour and holes into a fresh Cache at the given
// accuracy (the placer's default accuracy is 0.65).
func Build(shape geom.Polygon, accuracy float64) *Cache {
	c := &Cache{accuracy: accuracy}
	c.contour = buildRing(geom.Contour(shape))
	for _, h := range geom.Holes(shape) {
		c.holes = append(c.holes, buildRing(h))
	}
	return c
}

// ContourLength returns the outer contour's total perimeter.
func (c *Cache) ContourLength() float64 { return c.contour.length() }

// Coords returns the contour point at parameter t in [0,1), wrapping
// outside that range the same way the original's fmod-based lookup does.
func (c *Cache) Coords(t float64) geom.Point {
	return c.contour.coords(t * c.contour.length())
}

// HoleCoords returns the point on hole i at parameter t in [0,1).
func (c *Cache) HoleCoords(i int, t float64) geom.Point {
	if i < 0 || i >= len(c.holes) {
		return geom.Point{}
	}
	h := c.holes[i]
	return h.coords(t * h.length())
}

// Corners returns the contour's stride-sampled corner parameters,
// recomputed on every call.
func (c *Cache) Corners() []float64 {
	return c.contour.corners(c.accuracy)
}

// HoleCorners returns hole i's stride-sampled corner parameters. Holes are
// always searched: the original exposes an ExploreHoles toggle but walks
// hole corners unconditionally regardless of its value; this cache
// preserves that behavior and leaves gating to the caller.
func (c *Cache) HoleCorners(i int) []float64 {
	if i < 0 || i >= len(c.holes) {
		return nil
	}
	return c.holes[i].corners(c.accuracy)
}

// HoleCount reports how many holes this cache tracks.
func (c *Cache) HoleCount() int { return len(c.holes) }
