// Command nestpack demonstrates packing a handful of rectangular items
// into square bins with the first-fit selector.
//
// Scenario:
//
//	Two 100x100 bins are offered five boxes of varying size. The third
//	box is too large to share a bin with anything already placed, so it
//	forces the selector to open the second bin; the first-fit driver
//	picks that up automatically rather than failing the whole run.
package main

import (
	"fmt"
	"log"

	"github.com/katalvlaran/nestpack/bin"
	"github.com/katalvlaran/nestpack/geom"
	"github.com/katalvlaran/nestpack/item"
	"github.com/katalvlaran/nestpack/placer"
	"github.com/katalvlaran/nestpack/selector"
)

func rect(w, h float64) geom.Polygon {
	return geom.Polygon{geom.Ring{
		{0, 0}, {w, 0}, {w, h}, {0, h},
	}}
}

func main() {
	boxes := []struct {
		id   string
		w, h float64
	}{
		{"small-a", 20, 20},
		{"small-b", 30, 15},
		{"large", 90, 90},
		{"medium-a", 40, 40},
		{"medium-b", 35, 25},
	}

	var items item.Group
	for i, b := range boxes {
		it, err := item.New(b.id, rect(b.w, b.h), len(boxes)-i)
		if err != nil {
			log.Fatalf("nestpack: building item %s: %v", b.id, err)
		}
		items = append(items, it)
	}

	placerCfg := placer.DefaultConfig()
	placerCfg.Rotations = []float64{0}

	sel := selector.New(
		selector.DefaultConfig(),
		func() bin.Bin { return bin.Box{W: 100, H: 100} },
		placerCfg,
	)

	results, unpacked, err := sel.PackItems(items)
	if err != nil {
		log.Fatalf("nestpack: pack: %v", err)
	}

	fmt.Printf("packed %d item(s) into %d bin(s)\n", len(results), sel.BinCount())
	for _, r := range results {
		t := r.Item.Translation()
		fmt.Printf("  bin %d: %-10s at (%.0f, %.0f)\n", r.BinIndex, r.Item.ID, t[0], t[1])
	}
	if len(unpacked) > 0 {
		fmt.Printf("could not place %d item(s):\n", len(unpacked))
		for _, it := range unpacked {
			fmt.Printf("  %s\n", it.ID)
		}
	}
}
