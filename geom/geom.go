// Package geom is the geometric-primitive collaborator: contour/hole
// iteration, translate, convex hull, polygon-in-polygon containment,
// union, bounding box and area. It is the one place in the module that
// talks to the external geometry ecosystem (github.com/paulmach/orb for
// points/rings/bounds, github.com/akavel/polyclip-go for boolean union) so
// the rest of the module can stay in terms of Polygon/Ring/Point.
//
// Convex-hull and union results are rounded to the integral grid, matching
// the coordinate rounding used by the geometry library; Translate, Rotate
// and BoundingBox return unrounded coordinates.
package geom

import (
	"errors"
	"math"
	"sort"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"

	"github.com/akavel/polyclip-go"
)

// ErrEmptyContour is returned by operations that require at least one vertex.
var ErrEmptyContour = errors.New("geom: polygon has an empty contour")

// Point is a 2-D coordinate. Aliased from orb so the rest of the module
// never imports orb directly.
type Point = orb.Point

// Ring is a closed sequence of points: Ring[0] is implicitly connected back
// to Ring[len-1].
type Ring = orb.Ring

// Polygon is a contour (index 0) plus zero or more holes (index 1..n).
type Polygon = orb.Polygon

// Box is an axis-aligned bounding box.
type Box = orb.Bound

// Circle is a center and radius.
type Circle struct {
	Center Point
	Radius float64
}

// Round snaps a coordinate to the integral grid, mirroring the rounding the
// original NFP/edge-cache arithmetic performs against its geometry kernel.
func Round(p Point) Point {
	return Point{math.Round(p[0]), math.Round(p[1])}
}

// Contour returns the outer ring of a polygon.
func Contour(p Polygon) Ring {
	if len(p) == 0 {
		return nil
	}
	return p[0]
}

// Holes returns the hole rings of a polygon (may be empty).
func Holes(p Polygon) []Ring {
	if len(p) <= 1 {
		return nil
	}
	return p[1:]
}

// ContourVertexCount returns the number of vertices on the outer contour.
func ContourVertexCount(p Polygon) int {
	return len(Contour(p))
}

// Translate returns a copy of p with every vertex (contour and holes)
// shifted by d.
func Translate(p Polygon, d Point) Polygon {
	out := make(Polygon, len(p))
	for i, ring := range p {
		nr := make(Ring, len(ring))
		for j, v := range ring {
			nr[j] = Point{v[0] + d[0], v[1] + d[1]}
		}
		out[i] = nr
	}
	return out
}

// TranslateRing translates a single ring by d.
func TranslateRing(r Ring, d Point) Ring {
	nr := make(Ring, len(r))
	for i, v := range r {
		nr[i] = Point{v[0] + d[0], v[1] + d[1]}
	}
	return nr
}

// Rotate returns a copy of p with every vertex rotated by angle radians
// about the origin, then translated by d.
func Rotate(p Polygon, angle float64, d Point) Polygon {
	s, c := math.Sin(angle), math.Cos(angle)
	out := make(Polygon, len(p))
	for i, ring := range p {
		nr := make(Ring, len(ring))
		for j, v := range ring {
			x := v[0]*c - v[1]*s
			y := v[0]*s + v[1]*c
			nr[j] = Point{x + d[0], y + d[1]}
		}
		out[i] = nr
	}
	return out
}

// BoundingBox returns the axis-aligned bounding box of a polygon (contour
// and holes both contribute, matching orb's union-of-rings semantics).
func BoundingBox(p Polygon) Box {
	b := orb.Bound{Min: orb.Point{math.Inf(1), math.Inf(1)}, Max: orb.Point{math.Inf(-1), math.Inf(-1)}}
	for _, ring := range p {
		for _, v := range ring {
			b = b.Extend(v)
		}
	}
	return b
}

// UnionBox returns the smallest box containing both a and b.
func UnionBox(a, b Box) Box {
	return a.Union(b)
}

// BoxesOverlap reports whether a and b share interior area (touching at an
// edge or corner is not overlap).
func BoxesOverlap(a, b Box) bool {
	return a.Max[0] > b.Min[0] && b.Max[0] > a.Min[0] &&
		a.Max[1] > b.Min[1] && b.Max[1] > a.Min[1]
}

// Area returns the (unsigned) area of a polygon: outer contour area minus
// the area of its holes.
func Area(p Polygon) float64 {
	if len(p) == 0 {
		return 0
	}
	total := math.Abs(planar.Area(Contour(p)))
	for _, h := range Holes(p) {
		total -= math.Abs(planar.Area(h))
	}
	if total < 0 {
		return 0
	}
	return total
}

// ConvexHull computes the convex hull of the union of every ring's vertices
// using Andrew's monotone chain. Convex hull has no mainstream pure-Go
// implementation in the retrieval pack or the wider ecosystem that doesn't
// pull in a full computational-geometry/CGO stack (e.g. CGAL bindings), so
// it is implemented directly here; see DESIGN.md.
func ConvexHull(polys ...Polygon) Ring {
	var pts []Point
	for _, p := range polys {
		for _, ring := range p {
			pts = append(pts, ring...)
		}
	}
	return convexHull(pts)
}

func convexHull(pts []Point) Ring {
	uniq := dedupe(pts)
	if len(uniq) < 3 {
		return Ring(uniq)
	}
	sort.Slice(uniq, func(i, j int) bool {
		if uniq[i][0] != uniq[j][0] {
			return uniq[i][0] < uniq[j][0]
		}
		return uniq[i][1] < uniq[j][1]
	})

	cross := func(o, a, b Point) float64 {
		return (a[0]-o[0])*(b[1]-o[1]) - (a[1]-o[1])*(b[0]-o[0])
	}

	n := len(uniq)
	hull := make([]Point, 0, 2*n)
	// lower
	for _, p := range uniq {
		for len(hull) >= 2 && cross(hull[len(hull)-2], hull[len(hull)-1], p) <= 0 {
			hull = hull[:len(hull)-1]
		}
		hull = append(hull, p)
	}
	// upper
	lower := len(hull) + 1
	for i := n - 2; i >= 0; i-- {
		p := uniq[i]
		for len(hull) >= lower && cross(hull[len(hull)-2], hull[len(hull)-1], p) <= 0 {
			hull = hull[:len(hull)-1]
		}
		hull = append(hull, p)
	}
	return Ring(hull[:len(hull)-1])
}

func dedupe(pts []Point) []Point {
	seen := make(map[Point]struct{}, len(pts))
	out := make([]Point, 0, len(pts))
	for _, p := range pts {
		p = Round(p)
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	return out
}

// IsInside reports whether polygon inner lies entirely within polygon
// outer. Implemented as a vertex-containment check (every vertex of inner
// inside outer's contour), which is exact when outer is convex. For a
// non-convex outer (such as a non-convex polygon bin) an edge of inner can
// leave outer between two inside vertices and still be reported inside;
// outer's holes are not checked.
func IsInside(inner Polygon, outer Polygon) bool {
	outerRing := Contour(outer)
	if len(outerRing) < 3 {
		return false
	}
	for _, ring := range inner {
		for _, v := range ring {
			if !pointInRing(v, outerRing) {
				return false
			}
		}
	}
	return true
}

// pointInRing is a standard ray-casting point-in-polygon test.
func pointInRing(pt Point, ring Ring) bool {
	inside := false
	n := len(ring)
	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		vi, vj := ring[i], ring[j]
		if (vi[1] > pt[1]) != (vj[1] > pt[1]) &&
			pt[0] < (vj[0]-vi[0])*(pt[1]-vi[1])/(vj[1]-vi[1])+vi[0] {
			inside = !inside
		}
	}
	return inside
}

// RightmostTop returns the vertex of r with the greatest x, breaking ties
// by greatest y — the NFP touching-vertex reference used by a stationary
// shape in NFP correction and, for an orbiting item, its placement
// reference vertex.
func RightmostTop(r Ring) Point {
	if len(r) == 0 {
		return Point{}
	}
	best := r[0]
	for _, v := range r[1:] {
		if v[0] > best[0] || (v[0] == best[0] && v[1] > best[1]) {
			best = v
		}
	}
	return best
}

// LeftmostBottom returns the vertex of r with the least x, breaking ties
// by least y — the NFP touching-vertex reference used by an orbiting
// shape in NFP correction.
func LeftmostBottom(r Ring) Point {
	if len(r) == 0 {
		return Point{}
	}
	best := r[0]
	for _, v := range r[1:] {
		if v[0] < best[0] || (v[0] == best[0] && v[1] < best[1]) {
			best = v
		}
	}
	return best
}

// Contains reports whether pt lies inside polygon p: inside the outer
// contour and outside every hole.
func Contains(p Polygon, pt Point) bool {
	contour := Contour(p)
	if len(contour) < 3 || !pointInRing(pt, contour) {
		return false
	}
	for _, h := range Holes(p) {
		if pointInRing(pt, h) {
			return false
		}
	}
	return true
}

// Union returns the boolean union of a set of polygons as a multi-polygon,
// delegating the Vatti clipping to polyclip-go.
func Union(polys ...Polygon) []Polygon {
	var acc polyclip.Polygon
	first := true
	for _, p := range polys {
		if len(Contour(p)) == 0 {
			continue
		}
		pc := toPolyclip(p)
		if first {
			acc = pc
			first = false
			continue
		}
		acc = acc.Construct(polyclip.UNION, pc)
	}
	if first {
		return nil
	}
	return fromPolyclip(acc)
}

func toPolyclip(p Polygon) polyclip.Polygon {
	pc := make(polyclip.Polygon, 0, len(p))
	for _, ring := range p {
		contour := make(polyclip.Contour, 0, len(ring))
		for _, v := range ring {
			contour = append(contour, polyclip.Point{X: v[0], Y: v[1]})
		}
		pc = append(pc, contour)
	}
	return pc
}

func fromPolyclip(pc polyclip.Polygon) []Polygon {
	if len(pc) == 0 {
		return nil
	}
	out := make([]Polygon, 0, len(pc))
	for _, contour := range pc {
		ring := make(Ring, 0, len(contour))
		for _, v := range contour {
			ring = append(ring, Round(Point{v.X, v.Y}))
		}
		out = append(out, Polygon{ring})
	}
	return out
}
