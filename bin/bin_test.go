package bin_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/katalvlaran/nestpack/bin"
	"github.com/katalvlaran/nestpack/geom"
)

func TestBoxOverfitZeroWhenExactFit(t *testing.T) {
	b := bin.Box{W: 10, H: 10}
	bb := geom.Box{Min: geom.Point{0, 0}, Max: geom.Point{10, 10}}
	assert.LessOrEqual(t, b.OverfitBB(bb), 0.0)
}

func TestBoxOverfitPositiveWhenTooBig(t *testing.T) {
	b := bin.Box{W: 10, H: 10}
	bb := geom.Box{Min: geom.Point{0, 0}, Max: geom.Point{11, 10}}
	assert.Greater(t, b.OverfitBB(bb), 0.0)
}

func TestCircleOverfitNegativeWhenWellInside(t *testing.T) {
	c := bin.Circle{Radius: 100}
	bb := geom.Box{Min: geom.Point{-1, -1}, Max: geom.Point{1, 1}}
	assert.Less(t, c.OverfitBB(bb), 0.0)
}

func TestCircleOverfitPositiveWhenTooBig(t *testing.T) {
	c := bin.Circle{Radius: 1}
	bb := geom.Box{Min: geom.Point{-100, -100}, Max: geom.Point{100, 100}}
	assert.Greater(t, c.OverfitBB(bb), 0.0)
}

func TestCircleOverfitHullUsesEnclosingCircle(t *testing.T) {
	c := bin.Circle{Radius: 50}
	hull := geom.Ring{{-1, -1}, {1, -1}, {1, 1}, {-1, 1}}
	assert.LessOrEqual(t, c.OverfitHull(hull), 0.0)
}

func TestPolygonOverfitSentinelValues(t *testing.T) {
	shape := geom.Polygon{geom.Ring{
		{0, 0}, {100, 0}, {100, 100}, {0, 100},
	}}
	p := bin.Polygon{Shape: shape}

	small := geom.Box{Min: geom.Point{-1, -1}, Max: geom.Point{1, 1}}
	assert.Equal(t, -1.0, p.OverfitBB(small))

	huge := geom.Box{Min: geom.Point{-1000, -1000}, Max: geom.Point{1000, 1000}}
	assert.Equal(t, 1.0, p.OverfitBB(huge))
}

func TestBinAreas(t *testing.T) {
	assert.Equal(t, 200.0, bin.Box{W: 20, H: 10}.Area())
	assert.InDelta(t, 314.159, bin.Circle{Radius: 10}.Area(), 1e-2)
}
