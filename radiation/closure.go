package radiation

import "math"

// RadPressureResult holds the face-normal flux vector of the radiation
// pressure tensor and the maximum wavespeed of the radiation system.
type RadPressureResult struct {
	F [4]float64 // (F_n, T_nx*erad, T_ny*erad, T_nz*erad)
	S float64
}

func clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}

// ComputeEddingtonFactor evaluates the Levermore (1984) M1 closure, the
// closure derived from Lorentz invariance. f is the reduced flux |F|/(c*E)
// and is clamped to [0,1]; the result lies in [1/3, 1].
func ComputeEddingtonFactor(f float64) float64 {
	f = clamp(f, 0, 1)
	fFac := math.Sqrt(4.0 - 3.0*f*f)
	return (3.0 + 4.0*f*f) / (5.0 + 2.0*fFac)
}

// ComputeEddingtonTensor assembles the 3x3 Eddington tensor
// T_ij = (1-chi)/2 * delta_ij + (3chi-1)/2 * n_i n_j
// from the reduced flux components. If the flux direction is undefined the
// anisotropic term is dropped.
func ComputeEddingtonTensor(fx, fy, fz float64) [3][3]float64 {
	f := math.Sqrt(fx*fx + fy*fy + fz*fz)
	fvec := [3]float64{fx, fy, fz}

	var n [3]float64
	for i := 0; i < 3; i++ {
		if f > 0 {
			n[i] = fvec[i] / f
		}
	}

	chi := ComputeEddingtonFactor(f)
	Tdiag := (1.0 - chi) / 2.0
	Tf := (3.0*chi - 1.0) / 2.0

	var T [3][3]float64
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			if i == j {
				T[i][j] = Tdiag
			}
			T[i][j] += Tf * n[i] * n[j]
		}
	}
	return T
}

// ComputeRadPressure evaluates the frozen-Eddington-tensor flux vector and
// signal speed for one side of an interface, following Balsara (1999),
// Eq. 46. The 0.1 wavespeed floor avoids degenerate zero-wave states.
func ComputeRadPressure(dir Direction, erad, Fx, Fy, Fz, fx, fy, fz float64) RadPressureResult {
	if !(erad > 0) {
		panic("radiation: non-positive radiation energy in ComputeRadPressure")
	}
	T := ComputeEddingtonTensor(fx, fy, fz)

	var Fn float64
	var row [3]float64
	switch dir {
	case X1:
		Fn, row = Fx, T[0]
	case X2:
		Fn, row = Fy, T[1]
	case X3:
		Fn, row = Fz, T[2]
	}
	Tnn := row[int(dir)]

	return RadPressureResult{
		F: [4]float64{Fn, row[0] * erad, row[1] * erad, row[2] * erad},
		S: math.Max(0.1, math.Sqrt(Tnn)),
	}
}
