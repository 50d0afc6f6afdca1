package radiation

import (
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEddingtonFactor(t *testing.T) {
	// isotropic and free-streaming limits
	assert.True(t, near(1.0/3.0, ComputeEddingtonFactor(0)))
	assert.True(t, near(1.0, ComputeEddingtonFactor(1)))
	// clamped outside the physical range
	assert.True(t, near(1.0/3.0, ComputeEddingtonFactor(-0.5)))
	assert.True(t, near(1.0, ComputeEddingtonFactor(1.5)))
	// monotone and bounded on [0,1]
	prev := ComputeEddingtonFactor(0)
	for i := 1; i <= 100; i++ {
		chi := ComputeEddingtonFactor(float64(i) / 100.0)
		assert.True(t, chi >= prev)
		assert.True(t, chi >= 1.0/3.0 && chi <= 1.0)
		prev = chi
	}
}

func TestEddingtonTensor(t *testing.T) {
	{ // isotropic: T = I/3
		T := ComputeEddingtonTensor(0, 0, 0)
		for i := 0; i < 3; i++ {
			for j := 0; j < 3; j++ {
				if i == j {
					assert.True(t, near(1.0/3.0, T[i][j]))
				} else {
					assert.True(t, near(0.0, T[i][j]))
				}
			}
		}
	}
	{ // free streaming along x: T = diag(1,0,0)
		T := ComputeEddingtonTensor(1, 0, 0)
		assert.True(t, near(1.0, T[0][0]))
		assert.True(t, near(0.0, T[1][1]))
		assert.True(t, near(0.0, T[2][2]))
	}
	{ // unit trace for arbitrary reduced flux
		for _, f := range [][3]float64{{0.3, 0, 0}, {0.2, 0.4, 0.1}, {0, 0, 0.9}} {
			T := ComputeEddingtonTensor(f[0], f[1], f[2])
			assert.True(t, near(1.0, T[0][0]+T[1][1]+T[2][2]))
		}
	}
}

func TestRadPressure(t *testing.T) {
	{ // isotropic state: signal speed sqrt(1/3), flux vector is the pressure row
		r := ComputeRadPressure(X1, 2.0, 0, 0, 0, 0, 0, 0)
		assert.True(t, near(math.Sqrt(1.0/3.0), r.S))
		assert.True(t, near(0.0, r.F[0]))
		assert.True(t, near(2.0/3.0, r.F[1]))
	}
	{ // streaming perpendicular to the face: wavespeed floor engages
		r := ComputeRadPressure(X1, 1.0, 0, CLightCGS, 0, 0, 1, 0)
		assert.True(t, near(0.1, r.S))
	}
	assert.Panics(t, func() { ComputeRadPressure(X1, 0, 0, 0, 0, 0, 0, 0) })
}

func nearVec(a, b []float64, tol float64) (l bool) {
	for i, val := range a {
		if !near(b[i], val, tol) {
			fmt.Printf("Diff = %v, Left[%d] = %v, Right[%d] = %v\n", math.Abs(val-b[i]), i, val, i, b[i])
			return false
		}
	}
	return true
}

func near(a, b float64, tolI ...float64) (l bool) {
	var (
		tol float64
	)
	if len(tolI) == 0 {
		tol = 1.e-08
	} else {
		tol = tolI[0]
	}
	bound := math.Max(tol, tol*math.Abs(a))
	if math.Abs(a-b) <= bound {
		l = true
	}
	return
}
