// Package selector implements the first-fit bin-selection driver:
// items are sorted once, then walked in order, each one
// offered to existing bins from the lowest index up, opening a fresh bin
// only when none of the existing ones accept it. Three scheduling modes
// control how the existing-bin scan overlaps its own placer work, but all
// three must agree on which bin wins: the lowest-indexed accepting one.
//
// Grounded on the original _FirstFitSelection::packItems (firstfit.hpp):
// same fixed/unfixed item split, same descending (priority, area) sort,
// same three scheduling modes (serial, "texture_parallel" one-ahead
// speculative lookahead, "texture_parallel_hard" full concurrent fan-out
// with in-order result collection).
package selector

import (
	"errors"
	"sync"

	"github.com/katalvlaran/nestpack/bin"
	"github.com/katalvlaran/nestpack/item"
	"github.com/katalvlaran/nestpack/placer"
)

// ErrNonConvexUnsupported is re-exported from placer/nfp for callers that
// only import selector.
var ErrNonConvexUnsupported = placer.ErrNonConvexUnsupported

// ErrFixedBinIndex is returned when an item names a negative FixedBin
// index other than NoFixedBin. A positive index beyond the open bins is
// not an error: every bin up to it is opened.
var ErrFixedBinIndex = errors.New("selector: fixed bin index is invalid")

// NoBinPacked is the Selector's LastPackedBin value before anything has
// been packed.
const NoBinPacked = -1

// Config mirrors the original _FirstFitSelection::Config.
type Config struct {
	// VerifyItems drops, before packing starts, any item whose area alone
	// exceeds a single bin's area: it could never fit regardless of shape.
	VerifyItems bool
	// TextureParallel launches one bin ahead of the bin currently being
	// tried, discarding the speculative work if the current bin accepts.
	TextureParallel bool
	// TextureParallelHard launches every existing bin concurrently and
	// takes the lowest-indexed success.
	TextureParallelHard bool
	// Progress, if set, is called exactly once for every item PackItems
	// actually places, with the count of items not yet processed at that
	// point. Successive calls report a strictly decreasing remaining
	// count, mirroring the original's per-item progress callback.
	Progress func(remaining int)
	// StopCond, if set, is polled between items and between individual
	// bin attempts within one item's placement. Once it reports true,
	// PackItems stops trying to place any further item (everything not
	// yet packed, including the item being evaluated, is returned
	// unpacked) without opening additional bins.
	StopCond func() bool
}

// DefaultConfig matches the original's defaults.
func DefaultConfig() Config {
	return Config{VerifyItems: true}
}

// Result records where one item ended up.
type Result struct {
	Item     *item.Item
	BinIndex int
}

// Selector packs a group of items into as many bins as needed, opening
// bins from a fixed template on demand.
type Selector struct {
	cfg           Config
	binArea       float64
	newBin        func() bin.Bin
	placerCfg     placer.Config
	placers       []*placer.Placer
	lastPackedBin int
}

// New constructs a Selector. newBin must return a fresh equivalent bin
// (same shape and size) each time it is called; placerCfg configures
// every placer opened for a new bin.
func New(cfg Config, newBin func() bin.Bin, placerCfg placer.Config) *Selector {
	return &Selector{
		cfg:           cfg,
		newBin:        newBin,
		placerCfg:     placerCfg,
		binArea:       newBin().Area(),
		lastPackedBin: NoBinPacked,
	}
}

// BinCount reports how many bins have been opened so far.
func (s *Selector) BinCount() int { return len(s.placers) }

// LastPackedBin returns the bin index the most recently packed item went
// into, or NoBinPacked if PackItems has not placed anything yet.
func (s *Selector) LastPackedBin() int { return s.lastPackedBin }

// stopRequested polls Config.StopCond, treating an unset predicate as
// "never stop".
func (s *Selector) stopRequested() bool {
	return s.cfg.StopCond != nil && s.cfg.StopCond()
}

// Placer returns the placer for bin index i, opening bins up to and
// including i if necessary.
func (s *Selector) Placer(i int) (*placer.Placer, error) {
	if i < 0 {
		return nil, ErrFixedBinIndex
	}
	for len(s.placers) <= i {
		pl, err := placer.New(s.newBin(), s.placerCfg)
		if err != nil {
			return nil, err
		}
		s.placers = append(s.placers, pl)
	}
	return s.placers[i], nil
}

// PackItems runs the first-fit algorithm over items, returning the
// accepted placements, the items left unpacked (items dropped by
// VerifyItems for exceeding a bin's area, items no bin would accept, or
// items skipped after StopCond fired), and the first error encountered,
// if any (a non-convex pair, or ErrFixedBinIndex).
func (s *Selector) PackItems(items item.Group) ([]Result, []*item.Item, error) {
	fixed, unfixed := partitionFixed(items)

	var unpacked []*item.Item
	if s.cfg.VerifyItems {
		var kept item.Group
		for _, it := range unfixed {
			if it.Area() > s.binArea {
				unpacked = append(unpacked, it)
				continue
			}
			kept = append(kept, it)
		}
		unfixed = kept
	}

	unfixed.SortByPriorityArea()

	var results []Result
	remaining := len(fixed) + len(unfixed)
	stopped := false

	pack := func(it *item.Item, place func(*item.Item) (int, bool, error)) error {
		if stopped || s.stopRequested() {
			stopped = true
			unpacked = append(unpacked, it)
			return nil
		}
		binIdx, ok, err := place(it)
		if err != nil {
			return err
		}
		remaining--
		if ok {
			s.lastPackedBin = binIdx
			results = append(results, Result{Item: it, BinIndex: binIdx})
			if s.cfg.Progress != nil {
				s.cfg.Progress(remaining)
			}
		} else {
			unpacked = append(unpacked, it)
		}
		return nil
	}

	for _, it := range fixed {
		err := pack(it, func(it *item.Item) (int, bool, error) {
			pl, err := s.Placer(it.FixedBin)
			if err != nil {
				return 0, false, err
			}
			ok, err := pl.TryPack(it)
			return it.FixedBin, ok, err
		})
		if err != nil {
			return results, unpacked, err
		}
	}

	for _, it := range unfixed {
		if err := pack(it, s.placeOne); err != nil {
			return results, unpacked, err
		}
	}

	for _, pl := range s.placers {
		pl.ClearItems()
	}

	return results, unpacked, nil
}

// placeOne tries every existing bin in index order, in whichever
// scheduling mode Config selects, and opens a new bin if none accept.
func (s *Selector) placeOne(it *item.Item) (int, bool, error) {
	switch {
	case s.cfg.TextureParallelHard:
		if idx, ok, err := s.tryHardParallel(it); ok || err != nil {
			return idx, ok, err
		}
	case s.cfg.TextureParallel:
		if idx, ok, err := s.tryOneAhead(it); ok || err != nil {
			return idx, ok, err
		}
	default:
		if idx, ok, err := s.trySerial(it); ok || err != nil {
			return idx, ok, err
		}
	}

	if s.stopRequested() {
		return 0, false, nil
	}

	pl, err := s.Placer(len(s.placers))
	if err != nil {
		return 0, false, err
	}
	ok, err := pl.TryPack(it)
	if err != nil {
		return 0, false, err
	}
	return len(s.placers) - 1, ok, nil
}

// trySerial is the original's "way to process items": try each existing
// bin in order, stop at the first accept.
func (s *Selector) trySerial(it *item.Item) (int, bool, error) {
	for i, pl := range s.placers {
		if s.stopRequested() {
			return 0, false, nil
		}
		ok, err := pl.TryPack(it)
		if err != nil {
			return 0, false, err
		}
		if ok {
			return i, true, nil
		}
	}
	return 0, false, nil
}

// tryOneAhead launches bin j+1's attempt speculatively while bin j is
// still being tried, discarding the speculative result whenever j
// accepts. Speculative work on a losing bin still mutates that bin's
// pile if it succeeds, so a discarded speculative accept must be undone.
type specResult struct {
	ok  bool
	err error
}

func (s *Selector) tryOneAhead(it *item.Item) (int, bool, error) {
	n := len(s.placers)
	for i := 0; i < n; i++ {
		if s.stopRequested() {
			return 0, false, nil
		}
		var specCh chan specResult
		var specItem *item.Item
		if i+1 < n {
			specCh = make(chan specResult, 1)
			specItem = cloneForSpeculation(it)
			go func(pl *placer.Placer, speculative *item.Item) {
				ok, err := pl.TryPack(speculative)
				specCh <- specResult{ok: ok, err: err}
			}(s.placers[i+1], specItem)
		}

		ok, err := s.placers[i].TryPack(it)
		if specCh != nil {
			res := <-specCh
			if !ok && res.err == nil && res.ok {
				// The speculative placement on i+1 is promoted: replace
				// the speculative clone's pile entry with the real item.
				s.placers[i+1].Pile().Remove(specItem)
				promoted, perr := s.placers[i+1].TryPack(it)
				if perr != nil {
					return 0, false, perr
				}
				if promoted {
					return i + 1, true, nil
				}
			} else if res.ok {
				// i accepted for real; undo the discarded speculative work.
				s.placers[i+1].Pile().Remove(specItem)
			}
		}
		if err != nil {
			return 0, false, err
		}
		if ok {
			return i, true, nil
		}
	}
	return 0, false, nil
}

// tryHardParallel launches every existing bin concurrently and takes the
// lowest-indexed success once all have finished.
func (s *Selector) tryHardParallel(it *item.Item) (int, bool, error) {
	n := len(s.placers)
	if n == 0 || s.stopRequested() {
		return 0, false, nil
	}
	type outcome struct {
		ok  bool
		err error
	}
	outcomes := make([]outcome, n)
	clones := make([]*item.Item, n)

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		clones[i] = cloneForSpeculation(it)
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			ok, err := s.placers[idx].TryPack(clones[idx])
			outcomes[idx] = outcome{ok: ok, err: err}
		}(i)
	}
	wg.Wait()

	for _, o := range outcomes {
		if o.err != nil {
			return 0, false, o.err
		}
	}
	for i, o := range outcomes {
		if o.ok {
			// Undo every other bin's speculative clone before replaying
			// the winning placement with the caller's real item.
			for j := 0; j < n; j++ {
				if j != i && outcomes[j].ok {
					s.placers[j].Pile().Remove(clones[j])
				}
			}
			s.placers[i].Pile().Remove(clones[i])
			ok, err := s.placers[i].TryPack(it)
			if err != nil {
				return 0, false, err
			}
			return i, ok, nil
		}
	}
	return 0, false, nil
}

// cloneForSpeculation copies an item's identity and shape so a
// speculative placement attempt can run without racing the real item,
// which may simultaneously be offered to a different bin.
func cloneForSpeculation(it *item.Item) *item.Item {
	clone, _ := item.New(it.ID, it.Shape, it.Priority)
	clone.FixedBin = it.FixedBin
	return clone
}

func partitionFixed(items item.Group) (fixed item.Group, unfixed item.Group) {
	for _, it := range items {
		if it.FixedBin != item.NoFixedBin {
			fixed = append(fixed, it)
		} else {
			unfixed = append(unfixed, it)
		}
	}
	return fixed, unfixed
}
