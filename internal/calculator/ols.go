package calculator

import (
	"errors"
	"fmt"
	"math"
)

var (
	// ErrTooFewSamples is returned when a fit has fewer samples than coefficients.
	ErrTooFewSamples = errors.New("not enough samples for polynomial fit")
	// ErrSingular is returned when the design matrix is rank deficient.
	ErrSingular = errors.New("design matrix is singular")
)

// Polynomial holds coefficients c[0] + c[1]*x + ... + c[d]*x^d.
type Polynomial []float64

// Degree returns the polynomial degree.
func (p Polynomial) Degree() int { return len(p) - 1 }

// Eval evaluates the polynomial at x (Horner).
func (p Polynomial) Eval(x float64) float64 {
	y := 0.0
	for i := len(p) - 1; i >= 0; i-- {
		y = y*x + p[i]
	}
	return y
}

// FitPolynomial solves the least-squares problem for feature rows
// [1, x, ..., x^degree] without an additional intercept column, using a
// Householder QR decomposition of the design matrix.
func FitPolynomial(xs, ys []float64, degree int) (Polynomial, error) {
	if degree < 0 {
		return nil, fmt.Errorf("degree must be non-negative, got %d", degree)
	}
	if len(xs) != len(ys) {
		return nil, fmt.Errorf("length mismatch: %d x values, %d y values", len(xs), len(ys))
	}
	m, n := len(xs), degree+1
	if m < n {
		return nil, fmt.Errorf("%w: have %d, need %d", ErrTooFewSamples, m, n)
	}

	// a is m x n row-major, b is the right-hand side; both are reduced in place.
	a := make([]float64, m*n)
	b := make([]float64, m)
	for i, x := range xs {
		v := 1.0
		for j := 0; j < n; j++ {
			a[i*n+j] = v
			v *= x
		}
		b[i] = ys[i]
	}

	for k := 0; k < n; k++ {
		norm := 0.0
		for i := k; i < m; i++ {
			norm = math.Hypot(norm, a[i*n+k])
		}
		if norm == 0 {
			return nil, ErrSingular
		}
		if a[k*n+k] > 0 {
			norm = -norm
		}
		// Householder vector stored in column k below the diagonal.
		for i := k; i < m; i++ {
			a[i*n+k] /= -norm
		}
		a[k*n+k] += 1

		for j := k + 1; j < n; j++ {
			s := 0.0
			for i := k; i < m; i++ {
				s += a[i*n+k] * a[i*n+j]
			}
			s = -s / a[k*n+k]
			for i := k; i < m; i++ {
				a[i*n+j] += s * a[i*n+k]
			}
		}
		s := 0.0
		for i := k; i < m; i++ {
			s += a[i*n+k] * b[i]
		}
		s = -s / a[k*n+k]
		for i := k; i < m; i++ {
			b[i] += s * a[i*n+k]
		}
		// diagonal of R
		a[k*n+k] = norm
	}

	scale := 0.0
	for k := 0; k < n; k++ {
		scale = math.Max(scale, math.Abs(a[k*n+k]))
	}
	coef := make(Polynomial, n)
	for k := n - 1; k >= 0; k-- {
		d := a[k*n+k]
		if math.Abs(d) <= scale*1e-12 {
			return nil, ErrSingular
		}
		s := b[k]
		for j := k + 1; j < n; j++ {
			s -= a[k*n+j] * coef[j]
		}
		coef[k] = s / d
	}
	return coef, nil
}
