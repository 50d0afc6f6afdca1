package radiation

import "math"

// SolveShiftedSparse solves A x = y for the sparse Jacobian arising in the
// matter-radiation Newton iteration: A has a full first row, a full first
// column, and an otherwise diagonal interior. The solve eliminates the first
// column against the diagonal in closed form.
//
//	[ a00 a01 a02 ... ] [x0]   [y0]
//	[ a10 a11  0  ... ] [x1] = [y1]
//	[ a20  0  a22 ... ] [x2]   [y2]
func SolveShiftedSparse(a00 float64, a0i, ai0, aii, y []float64, y0 float64, x []float64) float64 {
	n := len(aii)
	num := y0
	den := a00
	for i := 0; i < n; i++ {
		ratio := a0i[i] / aii[i]
		num -= ratio * y[i]
		den -= ratio * ai0[i]
	}
	x0 := num / den
	if math.IsNaN(x0) {
		panic("radiation: singular Jacobian in source-term solve")
	}
	for i := 0; i < n; i++ {
		x[i] = (y[i] - ai0[i]*x0) / aii[i]
	}
	return x0
}

// Solve3x3 solves a dense 3x3 system in place by Gaussian elimination with
// the natural pivot order; the drag matrices it is used on are strictly
// diagonally dominant.
func Solve3x3(a *[3][3]float64, b *[3]float64) [3]float64 {
	m := *a
	r := *b
	for k := 0; k < 2; k++ {
		for i := k + 1; i < 3; i++ {
			f := m[i][k] / m[k][k]
			for j := k; j < 3; j++ {
				m[i][j] -= f * m[k][j]
			}
			r[i] -= f * r[k]
		}
	}
	var x [3]float64
	for i := 2; i >= 0; i-- {
		s := r[i]
		for j := i + 1; j < 3; j++ {
			s -= m[i][j] * x[j]
		}
		x[i] = s / m[i][i]
		if math.IsNaN(x[i]) {
			panic("radiation: singular 3x3 system in flux update")
		}
	}
	return x
}
