// Package nestpack is the root of a 2-D irregular-shape bin-packing
// engine built around a no-fit-polygon placer and a first-fit bin
// selector.
//
// Layout:
//
//   - geom: point/ring/polygon vocabulary, convex hull, union, containment.
//   - edgecache: boundary arc-length parametrization and corner sampling.
//   - nfp: pairwise convex no-fit-polygon construction.
//   - item: placeable shapes, sortable groups, placed-item piles.
//   - bin: the box/circle/polygon bin abstraction and its overfit checks.
//   - optimize: the bounded 1-D and 2-D black-box minimizers the placer
//     uses to refine candidate positions.
//   - placer: the NFP-driven search that places one item into one bin.
//   - selector: the first-fit driver that packs a group of items across
//     as many bins as needed.
//
// cmd/nestpack is a runnable demonstration of the whole pipeline.
package nestpack
