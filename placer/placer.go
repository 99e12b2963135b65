// Package placer implements the NFP-driven placement engine, the largest
// single module of the system. Placing the first item into an empty bin
// is a cheap rotation/anchor scan; placing
// any later item computes the merged no-fit-polygon against every item
// already in the bin, seeds a local search at each polygon corner (and,
// unconditionally, each hole corner), and keeps whichever seed's refined
// position scores lowest under the configured objective while still
// fitting the bin.
//
// Grounded on the original source's _NofitPolyPlacer::trypack/_trypack,
// with the nested rotation/corner fan-out restructured around a bounded
// worker-pool engine in the tsp.bbEngine style: a dedicated struct holding
// shared state instead of ad hoc closures, so the hot path and its
// goroutine accounting stay easy to read and to test.
package placer

import (
	"errors"
	"math"
	"sync"

	"github.com/katalvlaran/nestpack/bin"
	"github.com/katalvlaran/nestpack/edgecache"
	"github.com/katalvlaran/nestpack/geom"
	"github.com/katalvlaran/nestpack/item"
	"github.com/katalvlaran/nestpack/nfp"
	"github.com/katalvlaran/nestpack/optimize"
	"github.com/katalvlaran/nestpack/rng"
)

// ErrNoRotations is returned by New when Config.Rotations is empty.
var ErrNoRotations = errors.New("placer: configuration has no candidate rotations")

// ErrNonConvexUnsupported is re-exported from nfp for callers that only
// import placer.
var ErrNonConvexUnsupported = nfp.ErrNonConvexUnsupported

// Alignment selects the anchor used both for an empty bin's first
// rotation scan and for the bin's final housekeeping pass.
type Alignment int

const (
	AlignCenter Alignment = iota
	AlignBottomLeft
	AlignBottomRight
	AlignTopLeft
	AlignTopRight
	AlignDontAlign
)

// ObjectiveFunc scores a candidate placement: lower is better. occupiedBB
// is the union of the bin's already-placed items' bounding box with the
// candidate item's bounding box at the position under evaluation.
type ObjectiveFunc func(occupiedBB geom.Box, b bin.Bin) float64

// DefaultObjective scores a placement by the normalized half-perimeter of
// the occupied bounding box.
func DefaultObjective(occupiedBB geom.Box, b bin.Bin) float64 {
	norm := math.Sqrt(b.Area())
	if norm == 0 {
		norm = 1
	}
	w := occupiedBB.Max[0] - occupiedBB.Min[0]
	h := occupiedBB.Max[1] - occupiedBB.Min[1]
	return (w + h) / norm
}

// Config mirrors the original NfpPConfig: the knobs that change how a
// Placer searches for a position, independent of any one item or bin.
type Config struct {
	Rotations []float64
	Alignment Alignment
	Objective ObjectiveFunc
	Accuracy  float64
	// ExploreHoles is carried for API compatibility with the original
	// NfpPConfig but does not currently gate anything: hole corners are
	// always searched, matching the original leaving this toggle unused.
	ExploreHoles bool
	Parallel     bool
	Seed         int64

	BeforePacking func(it *item.Item)
	AfterPacking  func(it *item.Item, placed bool)
	OnPreload     func(pile *item.Pile)
}

// DefaultConfig returns the original source's default NfpPConfig values.
func DefaultConfig() Config {
	return Config{
		Rotations:    []float64{0},
		Alignment:    AlignCenter,
		Objective:    DefaultObjective,
		Accuracy:     0.65,
		ExploreHoles: false,
		Parallel:     true,
	}
}

// Placer packs items one at a time into a single bin.
type Placer struct {
	cfg  Config
	bin  bin.Bin
	pile *item.Pile
}

// New constructs a Placer for one bin.
func New(b bin.Bin, cfg Config) (*Placer, error) {
	if len(cfg.Rotations) == 0 {
		return nil, ErrNoRotations
	}
	if cfg.Objective == nil {
		cfg.Objective = DefaultObjective
	}
	return &Placer{cfg: cfg, bin: b, pile: item.NewPile()}, nil
}

// Pile exposes the placer's current set of placed items.
func (pl *Placer) Pile() *item.Pile { return pl.pile }

// TryPack attempts to place it into the bin, returning whether it was
// accepted. A non-nil error means a pair of shapes was non-convex; the
// item is left unplaced in that case too.
func (pl *Placer) TryPack(it *item.Item) (bool, error) {
	if pl.cfg.BeforePacking != nil {
		pl.cfg.BeforePacking(it)
	}

	var placed bool
	var err error
	if pl.pile.Len() == 0 {
		placed = pl.packFirst(it)
	} else {
		placed, err = pl.packAgainstPile(it)
	}

	if placed {
		pl.pile.Add(it)
	}
	if pl.cfg.AfterPacking != nil {
		pl.cfg.AfterPacking(it, placed)
	}
	return placed, err
}

// packFirst anchors it against the bin for each candidate rotation and
// keeps the first rotation that fits, mirroring trypack's empty-pile
// branch: a plain rotation scan, no NFP, no optimizer.
func (pl *Placer) packFirst(it *item.Item) bool {
	binBB := pl.bin.BoundingBox()
	for _, rot := range pl.cfg.Rotations {
		it.SetTransform(rot, geom.Point{0, 0})
		localBB := geom.BoundingBox(it.RotationOnlyShape())
		anchor := anchorPoint(pl.cfg.Alignment, binBB, localBB)
		it.SetTransform(rot, anchor)

		bb := geom.BoundingBox(it.Transformed())
		if pl.fits(bb, it.ConvexHull()) {
			return true
		}
	}
	item.PlaceOutsideOfBin(it, binBB)
	return false
}

// anchorPoint returns the translation that places a shape whose local
// (rotation-only) bounding box is localBB at the requested corner/center
// of the bin's bounding box binBB.
func anchorPoint(a Alignment, binBB, localBB geom.Box) geom.Point {
	lw := localBB.Max[0] - localBB.Min[0]
	lh := localBB.Max[1] - localBB.Min[1]
	switch a {
	case AlignBottomLeft:
		return geom.Point{binBB.Min[0] - localBB.Min[0], binBB.Min[1] - localBB.Min[1]}
	case AlignBottomRight:
		return geom.Point{binBB.Max[0] - localBB.Max[0], binBB.Min[1] - localBB.Min[1]}
	case AlignTopLeft:
		return geom.Point{binBB.Min[0] - localBB.Min[0], binBB.Max[1] - localBB.Max[1]}
	case AlignTopRight:
		return geom.Point{binBB.Max[0] - localBB.Max[0], binBB.Max[1] - localBB.Max[1]}
	case AlignDontAlign:
		return geom.Point{0, 0}
	default: // AlignCenter
		bcx, bcy := (binBB.Min[0]+binBB.Max[0])/2, (binBB.Min[1]+binBB.Max[1])/2
		lcx, lcy := localBB.Min[0]+lw/2, localBB.Min[1]+lh/2
		return geom.Point{bcx - lcx, bcy - lcy}
	}
}

// fits reports whether a candidate bounding box and convex hull both fit
// the bin, under whichever sign convention this bin's Kind uses; every
// convention in package bin returns a value <= 0 for a fitting candidate.
func (pl *Placer) fits(bb geom.Box, hull geom.Ring) bool {
	return pl.bin.OverfitBB(bb) <= 0 && pl.bin.OverfitHull(hull) <= 0
}

// seed is one candidate position to refine: a rotation, the merged
// forbidden region it was drawn from, and a boundary parameter on a
// specific ring of that region (contour or a hole).
type seed struct {
	rotation float64
	cache    *edgecache.Cache
	holeIdx  int // -1 for the contour
	t        float64
}

// packEngine fans a bounded pool of workers out over every (rotation,
// seed) pair, each worker refining its seed with a 1-D local search and
// reporting back a scored candidate. Modeled on the dedicated engine-struct
// style of tsp.bbEngine: explicit shared state, no anonymous closures
// capturing mutable loop variables.
type packEngine struct {
	pl     *Placer
	it     *item.Item
	stop   optimize.StopCriteria
	merged []geom.Polygon // forbidden region for the rotation currently being scanned

	mu        sync.Mutex
	bestScore float64
	bestPoint geom.Point
	bestRot   float64
	found     bool
}

// packAgainstPile computes the merged NFP of it against every placed
// item for each candidate rotation, seeds a local search at every corner
// of the merged region (contour and holes, unconditionally), and keeps
// the globally best feasible candidate.
func (pl *Placer) packAgainstPile(it *item.Item) (bool, error) {
	eng := &packEngine{
		pl:        pl,
		it:        it,
		stop:      optimize.DefaultStopCriteria(pl.cfg.Accuracy),
		bestScore: math.Inf(1),
	}

	placedItems := pl.pile.Items()

	for _, rot := range pl.cfg.Rotations {
		it.SetTransform(rot, geom.Point{0, 0})

		nfps := make([]*nfp.NFP, 0, len(placedItems))
		for _, placed := range placedItems {
			n, err := nfp.Build(placed, it)
			if err != nil {
				return false, err
			}
			nfps = append(nfps, n)
		}
		merged := nfp.Merge(nfps)
		if len(merged) == 0 {
			continue
		}

		eng.merged = merged
		seeds := collectSeeds(rot, merged, pl.cfg.Accuracy)
		eng.runRotation(rot, seeds)
	}

	if !eng.found {
		item.PlaceOutsideOfBin(it, pl.bin.BoundingBox())
		return false, nil
	}

	it.SetTransform(eng.bestRot, eng.bestPoint)

	// The NFP-driven search is the source of truth for non-overlap; this
	// is a cheap defensive recheck against the pile's spatial index,
	// narrowing the pile down to only the items whose bounding box is
	// anywhere near the accepted candidate instead of rescanning all of
	// it. The test compares bounding boxes only, so any hit rejects the
	// candidate, including a touching placement of non-rectangular shapes
	// whose bounding boxes overlap while the shapes themselves do not.
	bb := geom.BoundingBox(it.Transformed())
	for _, candidate := range pl.pile.Candidates(bb) {
		if geom.BoxesOverlap(bb, geom.BoundingBox(candidate.Transformed())) {
			item.PlaceOutsideOfBin(it, pl.bin.BoundingBox())
			return false, nil
		}
	}

	return true, nil
}

func collectSeeds(rot float64, merged []geom.Polygon, accuracy float64) []seed {
	var seeds []seed
	for _, poly := range merged {
		cache := edgecache.Build(poly, accuracy)
		for _, t := range cache.Corners() {
			seeds = append(seeds, seed{rotation: rot, cache: cache, holeIdx: -1, t: t})
		}
		for h := 0; h < cache.HoleCount(); h++ {
			for _, t := range cache.HoleCorners(h) {
				seeds = append(seeds, seed{rotation: rot, cache: cache, holeIdx: h, t: t})
			}
		}
	}
	return seeds
}

const maxPackWorkers = 8

// runRotation fans out over seeds with a bounded pool of workers sized to
// min(maxPackWorkers, len(seeds)), each worker refining its own seeds
// serially and reporting improvements under eng.mu. This follows the
// pack's bounded-fan-out convention (worker-per-slot, not
// goroutine-per-seed) used for the per-frame cache build in
// smart_seed.go's newCacheForFrame.
func (eng *packEngine) runRotation(rot float64, seeds []seed) {
	if len(seeds) == 0 {
		return
	}
	if !eng.pl.cfg.Parallel {
		for _, s := range seeds {
			eng.evaluate(s)
		}
		return
	}

	workers := maxPackWorkers
	if workers > len(seeds) {
		workers = len(seeds)
	}
	jobs := make(chan seed, len(seeds))
	for _, s := range seeds {
		jobs <- s
	}
	close(jobs)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for s := range jobs {
				eng.evaluate(s)
			}
		}()
	}
	wg.Wait()
}

// evaluate refines one seed with a 1-D local search over a small boundary
// window around it, then records the result if it both fits the bin and
// improves on the best candidate found so far.
func (eng *packEngine) evaluate(s seed) {
	pileBB := eng.pl.pileBounds() // read once; the pile is not mutated during a rotation's fan-out

	// The NFP boundary is the locus of the orbiting item's reference vertex
	// (its rightmost-top vertex once rotated), not of the shape's own
	// origin. Every coordinate this seed produces must be converted from
	// that reference-vertex position into the shape's translation vector
	// before it can be applied with geom.Rotate.
	refVertex := rotatedReferenceVertex(eng.it.Shape, s.rotation)
	translationAt := func(t float64) geom.Point {
		p := eng.coordsAt(s, t)
		return geom.Point{p[0] - refVertex[0], p[1] - refVertex[1]}
	}

	// objective is pure: it evaluates a tentative shape at point p without
	// mutating the shared item, since every worker in the pool calls this
	// concurrently over its own seeds.
	objective := func(t float64) float64 {
		tentative := geom.Rotate(eng.it.Shape, s.rotation, translationAt(t))
		occupied := geom.UnionBox(pileBB, geom.BoundingBox(tentative))
		return eng.pl.cfg.Objective(occupied, eng.pl.bin)
	}

	const window = 0.05
	lo, hi := s.t-window, s.t+window
	if lo < 0 {
		lo = 0
	}
	if hi > 1 {
		hi = 1
	}

	res := optimize.Minimize1D(objective, s.t, lo, hi, eng.stop)
	if math.IsInf(res.Score, 1) {
		return
	}

	// The forbidden-region check tests the reference vertex's own
	// position against the NFP, which is exactly the coordinate frame the
	// merged NFP polygons live in — no translation conversion here.
	point := eng.coordsAt(s, res.Optimum)
	if eng.overlapsForbiddenRegion(point) {
		return
	}

	// The bin check covers the whole pile plus the candidate, not the
	// candidate alone.
	d := geom.Point{point[0] - refVertex[0], point[1] - refVertex[1]}
	placedShape := geom.Rotate(eng.it.Shape, s.rotation, d)
	bb := geom.UnionBox(pileBB, geom.BoundingBox(placedShape))
	hullInputs := []geom.Polygon{placedShape}
	for _, placed := range eng.pl.pile.Items() {
		hullInputs = append(hullInputs, placed.Transformed())
	}
	hull := geom.ConvexHull(hullInputs...)
	if !eng.pl.fits(bb, hull) {
		return
	}

	// A deterministic, seed-derived jitter keeps tie-breaks between two
	// candidates of equal score independent of goroutine scheduling order:
	// without it, whichever worker happens to finish first would win a tie,
	// and that order varies run to run under the parallel engine.
	score := res.Score + seedJitter(eng.pl.cfg.Seed, s)

	eng.mu.Lock()
	defer eng.mu.Unlock()
	if score < eng.bestScore {
		eng.bestScore = score
		eng.bestPoint = d
		eng.bestRot = s.rotation
		eng.found = true
	}
}

// rotatedReferenceVertex returns the rightmost-top vertex of shape rotated
// about the origin by rotation but not translated: the same reference
// vertex nfp.Build aligns the orbiting item's NFP locus against.
func rotatedReferenceVertex(shape geom.Polygon, rotation float64) geom.Point {
	rotated := geom.Rotate(shape, rotation, geom.Point{0, 0})
	return geom.RightmostTop(geom.Contour(rotated))
}

// seedJitter derives a tiny, reproducible perturbation from the engine's
// seed and a candidate's own identity (rotation, ring, boundary parameter),
// not from execution order. The magnitude is far below any real objective
// difference, so it only ever resolves exact ties.
func seedJitter(parentSeed int64, s seed) float64 {
	holeIdx := uint64(int64(s.holeIdx) + 2)
	stream := holeIdx<<48 ^ math.Float64bits(s.rotation)<<16 ^ math.Float64bits(s.t)>>16
	return rng.Derive(parentSeed, stream).Float64() * 1e-9
}

// overlapsForbiddenRegion reports whether placing the item's own reference
// point at p would land strictly inside the rotation's merged NFP region,
// which is exactly the locus of positions that overlap an already-placed
// item. Points on the boundary (the seeds themselves, and optimizer
// refinements that stay on it) are touching, not overlapping, and pass.
func (eng *packEngine) overlapsForbiddenRegion(p geom.Point) bool {
	for _, poly := range eng.merged {
		if geom.Contains(poly, p) {
			return true
		}
	}
	return false
}

func (eng *packEngine) coordsAt(s seed, t float64) geom.Point {
	if s.holeIdx < 0 {
		return s.cache.Coords(t)
	}
	return s.cache.HoleCoords(s.holeIdx, t)
}

// pileBounds returns the bounding box of every item currently in the
// pile, or a degenerate box at the origin when the pile is empty.
func (pl *Placer) pileBounds() geom.Box {
	items := pl.pile.Items()
	if len(items) == 0 {
		return geom.Box{Min: geom.Point{0, 0}, Max: geom.Point{0, 0}}
	}
	bb := geom.BoundingBox(items[0].Transformed())
	for _, it := range items[1:] {
		bb = geom.UnionBox(bb, geom.BoundingBox(it.Transformed()))
	}
	return bb
}

// ClearItems runs the bin's final alignment pass and empties the placer's
// pile. The original engine performs this housekeeping from a placer's
// destructor; Go has none, so the selector calls ClearItems explicitly
// exactly once per bin, when that bin will accept no more items.
func (pl *Placer) ClearItems() {
	if pl.cfg.Alignment != AlignDontAlign && pl.pile.Len() > 0 {
		pileBB := pl.pileBounds()
		anchor := anchorPoint(pl.cfg.Alignment, pl.bin.BoundingBox(), pileBB)
		for _, it := range pl.pile.Items() {
			it.SetTransform(it.Rotation(), geom.Point{it.Translation()[0] + anchor[0], it.Translation()[1] + anchor[1]})
		}
	}
	if pl.cfg.OnPreload != nil {
		pl.cfg.OnPreload(pl.pile)
	}
	pl.pile.Clear()
}
