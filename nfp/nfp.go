// Package nfp builds the no-fit polygon between two convex shapes.
// An NFP's contour is the Minkowski sum of the stationary
// item's contour and the reflected orbiting item's contour; its position
// is corrected so that translating the orbiting item until its own
// "rightmost-top" vertex sits on any point of the NFP boundary leaves it
// touching, but not overlapping, the stationary item, matching the
// original source's correctNfpPosition.
//
// Only convex polygons are supported; non-convex input returns
// ErrNonConvexUnsupported rather than producing a wrong answer silently.
package nfp

import (
	"errors"
	"math"

	"github.com/katalvlaran/nestpack/geom"
	"github.com/katalvlaran/nestpack/item"
)

// ErrNonConvexUnsupported is returned when either input contour is not
// convex.
var ErrNonConvexUnsupported = errors.New("nfp: non-convex polygons are not supported")

// NFP is one pairwise no-fit polygon: the locus a reference vertex of the
// orbiting shape may occupy while touching, but not overlapping, the
// stationary shape.
type NFP struct {
	Contour   geom.Ring
	Reference geom.Point
}

// Build computes the NFP of orbiting around stationary. stationary is
// read from its current absolute transform (it has already been placed
// in the pile); orbiting is read from its rotation only, since an NFP
// records a relative locus independent of the orbiting item's last
// absolute position.
func Build(stationary, orbiting *item.Item) (*NFP, error) {
	sContour := geom.Contour(stationary.Transformed())
	oContour := geom.Contour(orbiting.RotationOnlyShape())

	if !isConvex(sContour) || !isConvex(oContour) {
		return nil, ErrNonConvexUnsupported
	}

	raw := minkowskiSum(sContour, reflect(oContour))
	if len(raw) == 0 {
		return nil, ErrNonConvexUnsupported
	}
	ref := geom.RightmostTop(raw)

	touchSh := geom.RightmostTop(sContour)
	touchOther := geom.LeftmostBottom(oContour)
	dtouch := geom.Point{touchSh[0] - touchOther[0], touchSh[1] - touchOther[1]}

	topOther := geom.RightmostTop(oContour)
	topOther = geom.Point{topOther[0] + dtouch[0], topOther[1] + dtouch[1]}

	dnfp := geom.Point{topOther[0] - ref[0], topOther[1] - ref[1]}

	corrected := geom.TranslateRing(raw, dnfp)
	correctedRef := geom.Point{ref[0] + dnfp[0], ref[1] + dnfp[1]}

	for i, p := range corrected {
		corrected[i] = geom.Round(p)
	}

	return &NFP{Contour: corrected, Reference: geom.Round(correctedRef)}, nil
}

// Merge unions a set of pairwise NFPs into the combined forbidden-region
// polygons the placer checks a candidate point against, matching the
// original calcnfp's per-placed-item NFP accumulation via nfp::merge.
func Merge(nfps []*NFP) []geom.Polygon {
	if len(nfps) == 0 {
		return nil
	}
	polys := make([]geom.Polygon, len(nfps))
	for i, n := range nfps {
		polys[i] = geom.Polygon{n.Contour}
	}
	return geom.Union(polys...)
}

func reflect(r geom.Ring) geom.Ring {
	out := make(geom.Ring, len(r))
	for i, v := range r {
		out[i] = geom.Point{-v[0], -v[1]}
	}
	return out
}

// signedArea is twice the polygon's signed area; positive for CCW.
func signedArea(r geom.Ring) float64 {
	var a float64
	n := len(r)
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		a += r[i][0]*r[j][1] - r[j][0]*r[i][1]
	}
	return a
}

func isConvex(r geom.Ring) bool {
	n := len(r)
	if n < 3 {
		return false
	}
	var sign float64
	for i := 0; i < n; i++ {
		o, a, b := r[i], r[(i+1)%n], r[(i+2)%n]
		cross := (a[0]-o[0])*(b[1]-o[1]) - (a[1]-o[1])*(b[0]-o[0])
		if cross == 0 {
			continue
		}
		if sign == 0 {
			sign = cross
		} else if (cross > 0) != (sign > 0) {
			return false
		}
	}
	return true
}

// ensureCCW returns r, reversed if necessary, so its signed area is
// non-negative.
func ensureCCW(r geom.Ring) geom.Ring {
	if signedArea(r) >= 0 {
		return r
	}
	out := make(geom.Ring, len(r))
	for i, v := range r {
		out[len(r)-1-i] = v
	}
	return out
}

// startIndex returns the index of the vertex with lowest y (ties broken
// by lowest x), the canonical Minkowski-sum merge starting vertex.
func startIndex(r geom.Ring) int {
	best := 0
	for i, v := range r {
		if v[1] < r[best][1] || (v[1] == r[best][1] && v[0] < r[best][0]) {
			best = i
		}
	}
	return best
}

func rotated(r geom.Ring, k int) geom.Ring {
	n := len(r)
	out := make(geom.Ring, n)
	for i := 0; i < n; i++ {
		out[i] = r[(i+k)%n]
	}
	return out
}

func edgeAngle(r geom.Ring, idx int) float64 {
	n := len(r)
	a, b := r[idx%n], r[(idx+1)%n]
	return math.Atan2(b[1]-a[1], b[0]-a[0])
}

// minkowskiSum computes the Minkowski sum of two convex polygons by
// merging their edge vectors in increasing polar-angle order, the
// standard O(n+m) convex Minkowski-sum algorithm.
func minkowskiSum(a, b geom.Ring) geom.Ring {
	a = ensureCCW(a)
	b = ensureCCW(b)
	a = rotated(a, startIndex(a))
	b = rotated(b, startIndex(b))
	n, m := len(a), len(b)

	result := make(geom.Ring, 0, n+m)
	i, j := 0, 0
	const twoPi = 2 * math.Pi
	for i < n || j < m {
		result = append(result, geom.Point{a[i%n][0] + b[j%m][0], a[i%n][1] + b[j%m][1]})
		switch {
		case i >= n:
			j++
		case j >= m:
			i++
		default:
			ea, eb := normalizeAngle(edgeAngle(a, i)), normalizeAngle(edgeAngle(b, j))
			switch {
			case ea < eb:
				i++
			case eb < ea:
				j++
			default:
				i++
				j++
			}
		}
	}
	return dedupeConsecutive(result)
}

func normalizeAngle(a float64) float64 {
	const twoPi = 2 * math.Pi
	for a < 0 {
		a += twoPi
	}
	for a >= twoPi {
		a -= twoPi
	}
	return a
}

func dedupeConsecutive(r geom.Ring) geom.Ring {
	if len(r) == 0 {
		return r
	}
	out := make(geom.Ring, 0, len(r))
	for i, v := range r {
		if i == 0 || v != out[len(out)-1] {
			out = append(out, v)
		}
	}
	if len(out) > 1 && out[0] == out[len(out)-1] {
		out = out[:len(out)-1]
	}
	return out
}
