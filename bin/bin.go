// Package bin implements a uniform contain/overfit interface over the
// three bin kinds (box, circle, polygon): every bin exposes its fit test
// through the same small Bin interface, regardless of shape.
//
// The three Overfit* overloads deliberately do NOT share a sign
// convention: box overfit is a non-negative excess magnitude, circle
// overfit is a signed radius excess, and polygon overfit is a ±1
// containment sentinel. Each bin kind's convention is reproduced exactly
// rather than unified, so Kind-specific methods exist instead of one
// polymorphic Overfit.
package bin

import (
	"math"

	"github.com/katalvlaran/nestpack/geom"
	"github.com/katalvlaran/nestpack/optimize"
)

// Kind identifies the concrete bin shape.
type Kind int

const (
	// KindBox is an axis-aligned rectangular bin.
	KindBox Kind = iota
	// KindCircle is a circular bin.
	KindCircle
	// KindPolygon is an arbitrary (possibly non-convex) polygonal bin.
	KindPolygon
)

// Bin is the uniform interface the placer and selector operate on.
type Bin interface {
	// Kind reports the concrete bin shape.
	Kind() Kind
	// BoundingBox returns the bin's own axis-aligned bounding box.
	BoundingBox() geom.Box
	// Area returns the bin's area, used as the placer's norming factor.
	Area() float64
	// OverfitBB scores a candidate bounding box against this bin.
	OverfitBB(bb geom.Box) float64
	// OverfitHull scores a candidate convex hull against this bin.
	OverfitHull(hull geom.Ring) float64
}

// Box is an axis-aligned rectangular bin of the given width and height,
// with its bounding box anchored at the origin.
type Box struct {
	W, H float64
}

func (b Box) Kind() Kind { return KindBox }

func (b Box) BoundingBox() geom.Box {
	return geom.Box{Min: geom.Point{0, 0}, Max: geom.Point{b.W, b.H}}
}

func (b Box) Area() float64 { return b.W * b.H }

// OverfitBB returns the sum of positive width/height excess, 0 if bb fits.
func (b Box) OverfitBB(bb geom.Box) float64 {
	wdiff := (bb.Max[0] - bb.Min[0]) - b.W
	hdiff := (bb.Max[1] - bb.Min[1]) - b.H
	var diff float64
	if wdiff > 0 {
		diff += wdiff
	}
	if hdiff > 0 {
		diff += hdiff
	}
	return diff
}

// OverfitHull delegates to OverfitBB on the hull's own bounding box,
// mirroring the original overfit(RawShape, Box) overload.
func (b Box) OverfitHull(hull geom.Ring) float64 {
	bb := geom.BoundingBox(geom.Polygon{hull})
	return b.OverfitBB(bb)
}

// Circle is a circular bin of the given radius, centered at the origin.
type Circle struct {
	Radius float64
}

func (c Circle) Kind() Kind { return KindCircle }

func (c Circle) BoundingBox() geom.Box {
	return geom.Box{Min: geom.Point{-c.Radius, -c.Radius}, Max: geom.Point{c.Radius, c.Radius}}
}

func (c Circle) Area() float64 { return math.Pi * c.Radius * c.Radius }

// OverfitBB returns the signed excess of the bounding box's circumscribed
// half-diagonal over the bin radius: negative means comfortably inside.
func (c Circle) OverfitBB(bb geom.Box) float64 {
	boxR := 0.5 * distance(bb.Min, bb.Max)
	return boxR - c.Radius
}

// OverfitHull returns the signed excess of the hull's minimum enclosing
// circle radius over the bin radius.
func (c Circle) OverfitHull(hull geom.Ring) float64 {
	mc := optimize.MinimizeEnclosingCircle(hull)
	return mc.Radius - c.Radius
}

// Polygon is an arbitrary polygonal bin (contour plus optional holes).
type Polygon struct {
	Shape geom.Polygon
}

func (p Polygon) Kind() Kind { return KindPolygon }

func (p Polygon) BoundingBox() geom.Box { return geom.BoundingBox(p.Shape) }

func (p Polygon) Area() float64 { return geom.Area(p.Shape) }

// centeredOn translates shape so its bounding-box center matches the bin's.
func (p Polygon) centeredOn(shapeBB geom.Box) geom.Point {
	bbin := p.BoundingBox()
	return geom.Point{
		bbin.Center()[0] - shapeBB.Center()[0],
		bbin.Center()[1] - shapeBB.Center()[1],
	}
}

// OverfitBB recenters a rectangle of bb's dimensions over the bin and
// returns the ±1 containment sentinel used for arbitrary polygon bins.
func (p Polygon) OverfitBB(bb geom.Box) float64 {
	d := p.centeredOn(bb)
	rect := geom.Polygon{geom.Ring{
		{bb.Min[0] + d[0], bb.Min[1] + d[1]},
		{bb.Max[0] + d[0], bb.Min[1] + d[1]},
		{bb.Max[0] + d[0], bb.Max[1] + d[1]},
		{bb.Min[0] + d[0], bb.Max[1] + d[1]},
	}}
	if geom.IsInside(rect, p.Shape) {
		return -1.0
	}
	return 1.0
}

// OverfitHull recenters hull over the bin and returns the ±1 containment
// sentinel.
func (p Polygon) OverfitHull(hull geom.Ring) float64 {
	hullPoly := geom.Polygon{hull}
	hullBB := geom.BoundingBox(hullPoly)
	d := p.centeredOn(hullBB)
	shifted := geom.Polygon{geom.TranslateRing(hull, d)}
	if geom.IsInside(shifted, p.Shape) {
		return -1.0
	}
	return 1.0
}

func distance(a, b geom.Point) float64 {
	dx, dy := a[0]-b[0], a[1]-b[1]
	return math.Sqrt(dx*dx + dy*dy)
}
