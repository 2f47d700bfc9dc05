package forecast

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// polyModel is an ordinary least squares polynomial over a scaled day index
// t = i / scale, so t stays in [0, 1] across the fitted window.
type polyModel struct {
	coef      []float64     // β0..βp-1
	xtxInv    *mat.SymDense // (XᵀX)⁻¹, nil when not positive definite
	resStdErr float64       // sqrt(SSE / (n - p))
	scale     float64
	n         int
}

var errTooFewPoints = errors.New("need at least two points to fit a trend")

// fitPolynomial fits y against the day index. The degree is capped at n-1.
func fitPolynomial(y []float64, degree int) (*polyModel, error) {
	n := len(y)
	if n < 2 {
		return nil, errTooFewPoints
	}
	if degree > n-1 {
		degree = n - 1
	}
	p := degree + 1

	m := &polyModel{scale: float64(n - 1), n: n}

	X := mat.NewDense(n, p, nil)
	for i := 0; i < n; i++ {
		t := m.t(i)
		v := 1.0
		for j := 0; j < p; j++ {
			X.Set(i, j, v)
			v *= t
		}
	}
	yVec := mat.NewVecDense(n, append([]float64(nil), y...))

	// QR least squares
	var beta mat.VecDense
	var cond mat.Condition
	if err := beta.SolveVec(X, yVec); err != nil && !errors.As(err, &cond) {
		return nil, fmt.Errorf("least squares solve (degree %d): %w", degree, err)
	}
	m.coef = make([]float64, p)
	for j := 0; j < p; j++ {
		m.coef[j] = beta.AtVec(j)
	}

	var sse float64
	for i := 0; i < n; i++ {
		r := y[i] - m.eval(m.t(i))
		sse += r * r
	}
	if dof := n - p; dof > 0 {
		m.resStdErr = math.Sqrt(sse / float64(dof))
	}

	var xtx mat.SymDense
	xtx.SymOuterK(1, X.T())
	var chol mat.Cholesky
	if chol.Factorize(&xtx) {
		var inv mat.SymDense
		if err := chol.InverseTo(&inv); err == nil {
			m.xtxInv = &inv
		}
	}

	return m, nil
}

func (m *polyModel) t(i int) float64 {
	return float64(i) / m.scale
}

// eval evaluates the polynomial at t (Horner)
func (m *polyModel) eval(t float64) float64 {
	var v float64
	for j := len(m.coef) - 1; j >= 0; j-- {
		v = v*t + m.coef[j]
	}
	return v
}

// leverage returns vᵀ(XᵀX)⁻¹v for v = [1, t, t², ...]
func (m *polyModel) leverage(t float64) float64 {
	if m.xtxInv == nil {
		return 0
	}
	p := len(m.coef)
	v := mat.NewVecDense(p, nil)
	x := 1.0
	for j := 0; j < p; j++ {
		v.SetVec(j, x)
		x *= t
	}
	h := mat.Inner(v, m.xtxInv, v)
	if h < 0 || math.IsNaN(h) {
		return 0
	}
	return h
}

func (m *polyModel) degree() int {
	return len(m.coef) - 1
}
