package selector_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/nestpack/bin"
	"github.com/katalvlaran/nestpack/geom"
	"github.com/katalvlaran/nestpack/item"
	"github.com/katalvlaran/nestpack/placer"
	"github.com/katalvlaran/nestpack/selector"
)

func square(s float64) geom.Polygon {
	return geom.Polygon{geom.Ring{
		{0, 0}, {s, 0}, {s, s}, {0, s},
	}}
}

func newBinFactory() func() bin.Bin {
	return func() bin.Bin { return bin.Box{W: 100, H: 100} }
}

func TestFirstFitOpensSecondBinOnlyWhenNeeded(t *testing.T) {
	var items item.Group
	for _, id := range []string{"a", "b", "c"} {
		it, err := item.New(id, square(90), 0)
		require.NoError(t, err)
		items = append(items, it)
	}

	sel := selector.New(selector.DefaultConfig(), newBinFactory(), placer.DefaultConfig())
	results, unpacked, err := sel.PackItems(items)

	require.NoError(t, err)
	assert.Len(t, results, 3)
	assert.Empty(t, unpacked)
	assert.Equal(t, 3, sel.BinCount())
}

func TestFirstFitPrefersLowestIndexedBin(t *testing.T) {
	var items item.Group
	for _, s := range []float64{60, 60, 10} {
		it, err := item.New(itemName(len(items)), square(s), 0)
		require.NoError(t, err)
		items = append(items, it)
	}

	sel := selector.New(selector.DefaultConfig(), newBinFactory(), placer.DefaultConfig())
	results, unpacked, err := sel.PackItems(items)
	require.NoError(t, err)
	require.Empty(t, unpacked)
	require.Len(t, results, 3)

	// The third, small item should fit back into bin 0 alongside the
	// first 60x60 item rather than forcing a third bin.
	assert.LessOrEqual(t, sel.BinCount(), 2)
}

func TestVerifyItemsDropsOversizedItem(t *testing.T) {
	tooBig, err := item.New("huge", square(500), 0)
	require.NoError(t, err)
	fits, err := item.New("fits", square(10), 0)
	require.NoError(t, err)

	sel := selector.New(selector.DefaultConfig(), newBinFactory(), placer.DefaultConfig())
	results, unpacked, err := sel.PackItems(item.Group{tooBig, fits})

	require.NoError(t, err)
	require.Len(t, unpacked, 1)
	assert.Equal(t, "huge", unpacked[0].ID)
	require.Len(t, results, 1)
	assert.Equal(t, "fits", results[0].Item.ID)
}

func TestFixedBinPlacesItemInDeclaredBin(t *testing.T) {
	it, err := item.New("pinned", square(10), 0)
	require.NoError(t, err)
	it.FixedBin = 1

	sel := selector.New(selector.DefaultConfig(), newBinFactory(), placer.DefaultConfig())
	results, unpacked, err := sel.PackItems(item.Group{it})

	require.NoError(t, err)
	require.Empty(t, unpacked)
	require.Len(t, results, 1)
	assert.Equal(t, 1, results[0].BinIndex)
	assert.Equal(t, 2, sel.BinCount())
}

func TestTextureParallelModesAgreeOnLowestIndex(t *testing.T) {
	for _, cfg := range []selector.Config{
		{VerifyItems: true},
		{VerifyItems: true, TextureParallel: true},
		{VerifyItems: true, TextureParallelHard: true},
	} {
		var items item.Group
		for i, s := range []float64{60, 60, 10} {
			it, err := item.New(itemName(i), square(s), 0)
			require.NoError(t, err)
			items = append(items, it)
		}

		sel := selector.New(cfg, newBinFactory(), placer.DefaultConfig())
		results, unpacked, err := sel.PackItems(items)
		require.NoError(t, err)
		assert.Empty(t, unpacked)
		assert.LessOrEqual(t, sel.BinCount(), 3)
		assert.Len(t, results, 3)
	}
}

func itemName(i int) string {
	return string(rune('a' + i))
}

func TestProgressFiresOncePerPackedItemWithDecreasingRemaining(t *testing.T) {
	var items item.Group
	for _, id := range []string{"a", "b", "c"} {
		it, err := item.New(id, square(10), 0)
		require.NoError(t, err)
		items = append(items, it)
	}

	var remainders []int
	cfg := selector.DefaultConfig()
	cfg.Progress = func(remaining int) { remainders = append(remainders, remaining) }

	sel := selector.New(cfg, newBinFactory(), placer.DefaultConfig())
	results, unpacked, err := sel.PackItems(items)

	require.NoError(t, err)
	require.Empty(t, unpacked)
	require.Len(t, results, 3)
	require.Len(t, remainders, 3)
	for i := 1; i < len(remainders); i++ {
		assert.Less(t, remainders[i], remainders[i-1], "remaining must strictly decrease")
	}
	assert.Equal(t, 0, remainders[len(remainders)-1])
}

func TestStopCondHaltsFurtherPacking(t *testing.T) {
	var items item.Group
	for _, id := range []string{"a", "b", "c", "d"} {
		it, err := item.New(id, square(10), 0)
		require.NoError(t, err)
		items = append(items, it)
	}

	packed := 0
	cfg := selector.DefaultConfig()
	cfg.Progress = func(int) { packed++ }
	cfg.StopCond = func() bool { return packed >= 2 }

	sel := selector.New(cfg, newBinFactory(), placer.DefaultConfig())
	results, unpacked, err := sel.PackItems(items)

	require.NoError(t, err)
	assert.Len(t, results, 2)
	assert.Len(t, unpacked, 2)
}

func TestLastPackedBinTracksMostRecentPlacement(t *testing.T) {
	var items item.Group
	for _, s := range []float64{90, 90} {
		it, err := item.New(itemName(len(items)), square(s), 0)
		require.NoError(t, err)
		items = append(items, it)
	}

	sel := selector.New(selector.DefaultConfig(), newBinFactory(), placer.DefaultConfig())
	assert.Equal(t, selector.NoBinPacked, sel.LastPackedBin())

	results, unpacked, err := sel.PackItems(items)
	require.NoError(t, err)
	require.Empty(t, unpacked)
	require.Len(t, results, 2)
	assert.Equal(t, results[len(results)-1].BinIndex, sel.LastPackedBin())
}
