// Package transform provides the 3x3 homogeneous-coordinate matrix backing
// an Item's cached translation and rotation: a current translation vector,
// a current rotation angle, and a cached transformed shape derived from
// the input plus those two.
//
// The bounds-checked flat-array Dense layout and bounds-checking error
// convention are adapted from matrix.Dense; here the matrix is always 3x3
// and represents a single affine transform rather than a general
// linear-algebra operand.
package transform

import (
	"errors"
	"fmt"
	"math"

	"github.com/katalvlaran/nestpack/geom"
)

// ErrIndexOutOfBounds indicates a row or column index outside [0,3).
var ErrIndexOutOfBounds = errors.New("transform: index out of bounds")

// Affine is a row-major 3x3 homogeneous transform matrix:
//
//	[ a b tx ]   [x]
//	[ c d ty ] * [y]
//	[ 0 0 1  ]   [1]
type Affine struct {
	data [9]float64
}

// At retrieves the element at (row, col).
// Stage 1 (Validate): bounds check.
// Stage 2 (Execute): read from the flat backing array.
func (m Affine) At(row, col int) (float64, error) {
	idx, err := indexOf(row, col)
	if err != nil {
		return 0, err
	}
	return m.data[idx], nil
}

// Set assigns value v at (row, col).
// Stage 1 (Validate): bounds check.
// Stage 2 (Execute): write into the flat backing array.
func (m *Affine) Set(row, col int, v float64) error {
	idx, err := indexOf(row, col)
	if err != nil {
		return err
	}
	m.data[idx] = v
	return nil
}

// Clone returns a deep copy.
func (m Affine) Clone() Affine {
	return Affine{data: m.data}
}

func indexOf(row, col int) (int, error) {
	if row < 0 || row >= 3 || col < 0 || col >= 3 {
		return 0, fmt.Errorf("transform.Affine: (%d,%d): %w", row, col, ErrIndexOutOfBounds)
	}
	return row*3 + col, nil
}

// Identity returns the identity transform.
func Identity() Affine {
	return Affine{data: [9]float64{1, 0, 0, 0, 1, 0, 0, 0, 1}}
}

// RotationThenTranslation composes a rotation about the origin by angle
// radians followed by a translation by d, matching the order the placer
// applies to a candidate item (rotate the input shape, then translate it
// into position).
func RotationThenTranslation(angle float64, d geom.Point) Affine {
	s, c := math.Sin(angle), math.Cos(angle)
	return Affine{data: [9]float64{
		c, -s, d[0],
		s, c, d[1],
		0, 0, 1,
	}}
}

// Apply transforms a point through the affine matrix.
func (m Affine) Apply(p geom.Point) geom.Point {
	x := m.data[0]*p[0] + m.data[1]*p[1] + m.data[2]
	y := m.data[3]*p[0] + m.data[4]*p[1] + m.data[5]
	return geom.Point{x, y}
}

// ApplyPolygon transforms every vertex (contour and holes) of p.
func (m Affine) ApplyPolygon(p geom.Polygon) geom.Polygon {
	out := make(geom.Polygon, len(p))
	for i, ring := range p {
		nr := make(geom.Ring, len(ring))
		for j, v := range ring {
			nr[j] = m.Apply(v)
		}
		out[i] = nr
	}
	return out
}

// Translation extracts the (tx, ty) translation component.
func (m Affine) Translation() geom.Point {
	return geom.Point{m.data[2], m.data[5]}
}
