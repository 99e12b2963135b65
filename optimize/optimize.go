// Package optimize wraps gonum's derivative-free Nelder-Mead method
// (gonum.org/v1/gonum/optimize, grounded on the pack's kortschak-loopy
// which already depends on gonum.org/v1/gonum) as a bounded black-box
// 1-D minimizer:
//
//	optimize_min(f, x0, [lo, hi]) -> {optimum: x, score: f(x)}
//
// with an iteration cap and a relative-score stop criterion, and as the
// 2-D minimizer behind minimizeCircle / boundingCircle, used by the
// circular bin's hull overfit check (bin.Circle.OverfitHull).
//
// Nelder-Mead itself is unconstrained; box constraints are applied with a
// logistic (1-D) / hyperbolic-tangent (2-D) reparametrization so the
// search never leaves the domain the placer asks for, rather than
// rejecting or clamping out-of-bound trial points.
package optimize

import (
	"math"

	"gonum.org/v1/gonum/optimize"

	"github.com/katalvlaran/nestpack/geom"
)

// Result is one minimizer outcome for a single seed.
type Result struct {
	// Optimum is the argmin found, already mapped back into [lo, hi].
	Optimum float64
	// Score is f(Optimum). Minimizer failure is reported as +Inf so a
	// failed seed never wins a min-by-score selection.
	Score float64
}

// StopCriteria bounds one minimizer run.
type StopCriteria struct {
	MaxIterations           int
	RelativeScoreDifference float64
}

// DefaultStopCriteria matches the placer's Optimizer(accuracy) constructor
// in the original source: iterations = floor(1000*accuracy), relative
// score tolerance fixed at 1e-20.
func DefaultStopCriteria(accuracy float64) StopCriteria {
	return StopCriteria{
		MaxIterations:           int(math.Floor(1000 * accuracy)),
		RelativeScoreDifference: 1e-20,
	}
}

func sigmoid(t float64) float64 { return 1 / (1 + math.Exp(-t)) }

func logit(p float64) float64 {
	const eps = 1e-9
	if p < eps {
		p = eps
	}
	if p > 1-eps {
		p = 1 - eps
	}
	return math.Log(p / (1 - p))
}

// Minimize1D finds x in [lo, hi] minimizing f, starting from x0.
// A minimizer failure (gonum returning an error) is reported as a +Inf
// score rather than propagated: the seed's slot keeps the sentinel score
// and is skipped by the caller's min-by-score selection. A degenerate
// domain (hi <= lo) or a non-positive iteration cap runs no search and
// returns x0 with score f(x0).
func Minimize1D(f func(float64) float64, x0, lo, hi float64, stop StopCriteria) Result {
	if hi <= lo || stop.MaxIterations <= 0 {
		return Result{Optimum: x0, Score: f(x0)}
	}

	toU := func(t float64) float64 { return lo + (hi-lo)*sigmoid(t) }
	frac := (x0 - lo) / (hi - lo)
	t0 := logit(frac)

	problem := optimize.Problem{
		Func: func(x []float64) float64 { return f(toU(x[0])) },
	}

	settings := &optimize.Settings{
		MajorIterations: stop.MaxIterations,
		Converger: &optimize.FunctionConverge{
			Relative:   stop.RelativeScoreDifference,
			Iterations: 5,
		},
	}

	res, err := optimize.Minimize(problem, []float64{t0}, settings, &optimize.NelderMead{})
	if err != nil || res == nil {
		return Result{Optimum: x0, Score: math.Inf(1)}
	}

	u := toU(res.X[0])
	if u < lo {
		u = lo
	}
	if u > hi {
		u = hi
	}
	return Result{Optimum: u, Score: res.F}
}

// MinimizeEnclosingCircle fits the minimum enclosing circle of ring's
// vertices by minimizing, over a center (xf, yf) in a bounded search
// window, the maximum vertex distance from that center. This is the
// direct Go equivalent of the original minimizeCircle: a 2-D Nelder-Mead fit
// rather than a closed-form Welzl construction, preserving the original's
// approximate-but-deterministic behavior.
func MinimizeEnclosingCircle(ring geom.Ring) geom.Circle {
	if len(ring) == 0 {
		return geom.Circle{}
	}

	bb := geom.BoundingBox(geom.Polygon{ring})
	capprx := bb.Center()
	rapprx := distance(bb.Min, bb.Max)
	if rapprx == 0 {
		return geom.Circle{Center: capprx, Radius: 0}
	}

	dists := make([]float64, len(ring))
	toCenter := func(xf, yf float64) geom.Point {
		return geom.Point{capprx[0] + rapprx*xf, capprx[1] + rapprx*yf}
	}
	objective := func(x []float64) float64 {
		c := toCenter(math.Tanh(x[0]), math.Tanh(x[1]))
		maxd := 0.0
		for i, v := range ring {
			dists[i] = distance(v, c)
			if dists[i] > maxd {
				maxd = dists[i]
			}
		}
		return maxd
	}

	settings := &optimize.Settings{
		MajorIterations: 30,
		Converger: &optimize.FunctionConverge{
			Relative:   1e-3,
			Iterations: 5,
		},
	}

	res, err := optimize.Minimize(optimize.Problem{Func: objective}, []float64{0, 0}, settings, &optimize.NelderMead{})
	if err != nil || res == nil {
		c := toCenter(0, 0)
		return geom.Circle{Center: geom.Round(c), Radius: objective([]float64{0, 0})}
	}

	c := toCenter(math.Tanh(res.X[0]), math.Tanh(res.X[1]))
	return geom.Circle{Center: geom.Round(c), Radius: res.F}
}

func distance(a, b geom.Point) float64 {
	dx, dy := a[0]-b[0], a[1]-b[1]
	return math.Sqrt(dx*dx + dy*dy)
}
