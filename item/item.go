// Package item implements the Item, Group and Pile data model:
// a single placeable shape with a cached current transform,
// an ordered collection of items awaiting placement, and the set of items
// already placed in one bin together with a spatial index for fast
// overlap/candidate queries.
//
// The Pile's spatial index is backed by github.com/dhconnelly/rtreego (an
// R-tree), grounded on the pack's beetlebugorg-s57, which already depends
// on it for exactly this kind of 2-D bounding-box candidate search.
package item

import (
	"errors"
	"sort"

	"github.com/dhconnelly/rtreego"

	"github.com/katalvlaran/nestpack/edgecache"
	"github.com/katalvlaran/nestpack/geom"
	"github.com/katalvlaran/nestpack/transform"
)

// ErrEmptyShape is returned when an item is constructed from a contour
// with fewer than 3 vertices.
var ErrEmptyShape = errors.New("item: shape has an empty or degenerate contour")

// NoFixedBin marks an item with no fixed bin assignment.
const NoFixedBin = -1

// Item is one placeable shape plus its current placement state.
type Item struct {
	ID       string
	Shape    geom.Polygon // original, untransformed shape
	Priority int
	FixedBin int // NoFixedBin, or the index of the bin this item must go in

	rotation    float64
	translation geom.Point
	transformed geom.Polygon
	area        float64
	hull        geom.Ring
	cache       *edgecache.Cache
}

// New constructs an Item at the identity transform.
func New(id string, shape geom.Polygon, priority int) (*Item, error) {
	if geom.ContourVertexCount(shape) < 3 {
		return nil, ErrEmptyShape
	}
	it := &Item{
		ID:          id,
		Shape:       shape,
		Priority:    priority,
		FixedBin:    NoFixedBin,
		transformed: shape,
		area:        geom.Area(shape),
	}
	it.hull = geom.ConvexHull(shape)
	return it, nil
}

// Area returns the item's shape area, computed once at construction.
func (it *Item) Area() float64 { return it.area }

// Rotation returns the item's current rotation angle in radians.
func (it *Item) Rotation() float64 { return it.rotation }

// Translation returns the item's current translation.
func (it *Item) Translation() geom.Point { return it.translation }

// Transformed returns the item's shape under its current rotation and
// translation.
func (it *Item) Transformed() geom.Polygon { return it.transformed }

// ConvexHull returns the convex hull of the item's current (transformed)
// shape.
func (it *Item) ConvexHull() geom.Ring { return it.hull }

// SetTransform rotates the original shape by angle radians about the
// origin, translates it by d, and refreshes every cache derived from the
// transformed shape (transformed polygon, convex hull, edge cache).
// Callers must invalidate the item's edge cache by calling this before
// any subsequent EdgeCache call at a new rotation.
func (it *Item) SetTransform(angle float64, d geom.Point) {
	it.rotation = angle
	it.translation = d
	aff := transform.RotationThenTranslation(angle, d)
	it.transformed = aff.ApplyPolygon(it.Shape)
	it.hull = geom.ConvexHull(it.transformed)
	it.cache = nil
}

// RotationOnlyShape returns the original shape rotated by the item's
// current rotation but not translated, i.e. the shape expressed in the
// item's own reference frame. NFP construction treats the orbiting item
// this way: the NFP records a relative locus, so only rotation (which
// changes the shape's geometry) matters, not the item's last absolute
// position.
func (it *Item) RotationOnlyShape() geom.Polygon {
	aff := transform.RotationThenTranslation(it.rotation, geom.Point{0, 0})
	return aff.ApplyPolygon(it.Shape)
}

// EdgeCache returns the edge cache for the item's current transformed
// shape, building it lazily on first access at the given accuracy; later
// calls return that cache until SetTransform clears it. The lazy build
// takes no lock.
func (it *Item) EdgeCache(accuracy float64) *edgecache.Cache {
	if it.cache == nil {
		it.cache = edgecache.Build(it.transformed, accuracy)
	}
	return it.cache
}

// RightmostTopVertex returns the vertex of the transformed contour with
// the greatest x, breaking ties by greatest y — the NFP touching-vertex
// reference used by the stationary shape in NFP correction.
func (it *Item) RightmostTopVertex() geom.Point {
	return geom.RightmostTop(geom.Contour(it.transformed))
}

// LeftmostBottomVertex returns the vertex of the transformed contour with
// the least x, breaking ties by least y — the NFP touching-vertex
// reference used by the orbiting shape in NFP correction.
func (it *Item) LeftmostBottomVertex() geom.Point {
	return geom.LeftmostBottom(geom.Contour(it.transformed))
}

// PlaceOutsideOfBin moves an item just past the top-right corner of bb,
// the deterministic "parking" position the placer uses for any item it
// rejects, so a rejected item still occupies predictable
// real estate for diagnostics rather than sit at the origin. Grounded on
// the original source's placeOutsideOfBin helper.
func PlaceOutsideOfBin(it *Item, bb geom.Box) {
	ibb := geom.BoundingBox(it.Transformed())
	d := geom.Point{
		bb.Max[0] - ibb.Min[0] + 1,
		bb.Max[1] - ibb.Min[1] + 1,
	}
	it.SetTransform(it.rotation, geom.Point{it.translation[0] + d[0], it.translation[1] + d[1]})
}

// Bounds implements rtreego.Spatial over the item's current transformed
// bounding box, letting a Pile index items directly.
func (it *Item) Bounds() rtreego.Rect {
	bb := geom.BoundingBox(it.transformed)
	return boxToRect(bb)
}

func boxToRect(bb geom.Box) rtreego.Rect {
	const eps = 1e-6
	w := bb.Max[0] - bb.Min[0]
	h := bb.Max[1] - bb.Min[1]
	if w <= 0 {
		w = eps
	}
	if h <= 0 {
		h = eps
	}
	rect, err := rtreego.NewRect(rtreego.Point{bb.Min[0], bb.Min[1]}, []float64{w, h})
	if err != nil {
		// Degenerate box; rtreego.NewRect only fails on non-positive
		// lengths, already guarded above.
		rect, _ = rtreego.NewRect(rtreego.Point{bb.Min[0], bb.Min[1]}, []float64{eps, eps})
	}
	return rect
}

// Group is an ordered collection of items awaiting placement.
type Group []*Item

// TotalArea sums the area of every item in the group.
func (g Group) TotalArea() float64 {
	var total float64
	for _, it := range g {
		total += it.Area()
	}
	return total
}

// SortByPriorityArea orders items by descending priority, then by
// descending area, matching the original selection's
// "sort by (priority, area), both descending" comparator.
func (g Group) SortByPriorityArea() {
	sort.SliceStable(g, func(i, j int) bool {
		if g[i].Priority != g[j].Priority {
			return g[i].Priority > g[j].Priority
		}
		return g[i].Area() > g[j].Area()
	})
}

// Pile is the set of items already placed into one bin, indexed for fast
// candidate queries during NFP construction and overlap checks.
type Pile struct {
	items []*Item
	tree  *rtreego.Rtree
}

// NewPile returns an empty Pile.
func NewPile() *Pile {
	return &Pile{tree: rtreego.NewTree(2, 3, 8)}
}

// Add inserts an item into the pile and its spatial index.
func (p *Pile) Add(it *Item) {
	p.items = append(p.items, it)
	p.tree.Insert(it)
}

// Remove deletes an item from the pile and its spatial index.
func (p *Pile) Remove(it *Item) {
	p.tree.Delete(it)
	for i, cur := range p.items {
		if cur == it {
			p.items = append(p.items[:i], p.items[i+1:]...)
			break
		}
	}
}

// Items returns the placed items in insertion order.
func (p *Pile) Items() []*Item { return p.items }

// Len reports how many items are in the pile.
func (p *Pile) Len() int { return len(p.items) }

// TotalArea sums the area of every placed item.
func (p *Pile) TotalArea() float64 {
	var total float64
	for _, it := range p.items {
		total += it.Area()
	}
	return total
}

// Candidates returns every placed item whose bounding box intersects bb,
// the pile's spatial pre-filter ahead of an exact overlap test.
func (p *Pile) Candidates(bb geom.Box) []*Item {
	hits := p.tree.SearchIntersect(boxToRect(bb))
	out := make([]*Item, 0, len(hits))
	for _, h := range hits {
		out = append(out, h.(*Item))
	}
	return out
}

// Clear empties the pile and resets its spatial index.
func (p *Pile) Clear() {
	p.items = nil
	p.tree = rtreego.NewTree(2, 3, 8)
}
