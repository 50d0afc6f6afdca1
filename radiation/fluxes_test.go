package radiation

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/twomomentrad/radmoment/eos"
)

// faceStates builds donor-cell face primitives for a 1D state: the left face
// state at face i is cell i-1, the right face state is cell i.
func faceStates(sys *System, u *State, K int) (left, right *Primitive) {
	prim := NewPrimitive(sys.NGroups, K)
	sys.ConservedToPrimitive(u, prim, 0, K)
	left = NewPrimitive(sys.NGroups, K+1)
	right = NewPrimitive(sys.NGroups, K+1)
	for g := 0; g < sys.NGroups; g++ {
		for i := 1; i < K; i++ {
			left.EradG[g][i] = prim.EradG[g][i-1]
			left.Fx[g][i] = prim.Fx[g][i-1]
			left.Fy[g][i] = prim.Fy[g][i-1]
			left.Fz[g][i] = prim.Fz[g][i-1]
			right.EradG[g][i] = prim.EradG[g][i]
			right.Fx[g][i] = prim.Fx[g][i]
			right.Fy[g][i] = prim.Fy[g][i]
			right.Fz[g][i] = prim.Fz[g][i]
		}
	}
	return
}

func TestUniformStateIsStationary(t *testing.T) {
	// a uniform isotropic field has equal and opposite wave contributions
	// at every face: zero energy flux, constant pressure, no evolution
	sys := newTestSystem(t, testConfig(1, nil))
	K := 8
	u := uniformState(sys, K, 1.0e-7, 1.0e6, 5.0e9, 0)
	left, right := faceStates(sys, u, K)

	flux := NewFluxSet(1, K+1)
	sys.ComputeFluxes(X1, flux, nil, left, right, u, 1.0, 1, K)

	prad := sys.CHat * sys.CLight * 5.0e9 / 3.0
	for i := 1; i < K; i++ {
		assert.True(t, near(0.0, flux.E[0][i], 1.e-10*prad))
		assert.True(t, near(prad, flux.Fx[0][i], 1.e-12))
		assert.True(t, near(0.0, flux.Fy[0][i]))
	}

	uNew := NewState(1, 0, K)
	uNew.CopyFrom(u)
	dims := []DimFlux{{Flux: flux, Dx: 1.0}}
	sys.PredictStep(u, uNew, dims, 1.0e-12, 1, K-1)
	for i := 1; i < K-1; i++ {
		assert.True(t, near(u.EradG[0][i], uNew.EradG[0][i], 1.e-10))
		assert.True(t, near(0.0, uNew.FradX[0][i], 1.e-10*5.0e9))
	}
}

func TestFluxConservation(t *testing.T) {
	// the finite-volume update telescopes: the interior energy change
	// equals the boundary flux imbalance exactly
	sys := newTestSystem(t, testConfig(1, nil))
	K := 16
	u := uniformState(sys, K, 1.0e-7, 1.0e6, 1.0e9, 0)
	for i := 0; i < K; i++ {
		x := float64(i) / float64(K)
		u.EradG[0][i] = 1.0e9 * (1.0 + 0.3*math.Sin(2.0*math.Pi*x))
		u.FradX[0][i] = 0.1 * sys.CLight * u.EradG[0][i]
	}
	left, right := faceStates(sys, u, K)

	flux := NewFluxSet(1, K+1)
	sys.ComputeFluxes(X1, flux, nil, left, right, u, 1.0, 1, K)

	lo, hi := 2, K-2
	dx, dt := 0.5, 1.0e-12
	uNew := NewState(1, 0, K)
	uNew.CopyFrom(u)
	sys.PredictStep(u, uNew, []DimFlux{{Flux: flux, Dx: dx}}, dt, lo, hi)

	var sumOld, sumNew float64
	for i := lo; i < hi; i++ {
		sumOld += u.EradG[0][i]
		sumNew += uNew.EradG[0][i]
	}
	want := dt / dx * (flux.E[0][lo] - flux.E[0][hi])
	assert.True(t, near(want, sumNew-sumOld, 1.e-6))
}

func TestAddFluxesRK2Reduction(t *testing.T) {
	// with identical stage fluxes and stage states the corrector reduces
	// to a forward-Euler step of size (1-a32) dt, the explicit weight
	// left over after the implicit source split
	cfg := testConfig(1, nil)
	cfg.A32 = 0.3
	sys := newTestSystem(t, cfg)
	K := 12
	u := uniformState(sys, K, 1.0e-7, 1.0e6, 1.0e9, 0)
	for i := 0; i < K; i++ {
		u.EradG[0][i] = 1.0e9 * (1.0 + 0.1*float64(i%3))
	}
	left, right := faceStates(sys, u, K)
	flux := NewFluxSet(1, K+1)
	sys.ComputeFluxes(X1, flux, nil, left, right, u, 1.0, 1, K)

	dims := []DimFlux{{Flux: flux, Dx: 1.0}}
	dt := 1.0e-12
	lo, hi := 2, K-2

	euler := NewState(1, 0, K)
	euler.CopyFrom(u)
	sys.PredictStep(u, euler, dims, (1.0-cfg.A32)*dt, lo, hi)

	rk2 := NewState(1, 0, K)
	rk2.CopyFrom(u)
	sys.AddFluxesRK2(rk2, u, u, dims, dims, dt, lo, hi)

	for i := lo; i < hi; i++ {
		assert.True(t, near(euler.EradG[0][i], rk2.EradG[0][i], 1.e-12))
		assert.True(t, near(euler.FradX[0][i], rk2.FradX[0][i], 1.e-10*sys.CLight*1.0e9))
	}
}

func TestFluxFallback(t *testing.T) {
	// an inadmissible reconstructed face state must not reach the
	// Riemann solver: the face falls back to the adjacent cell averages
	sys := newTestSystem(t, testConfig(1, nil))
	c, chat := sys.CLight, sys.CHat

	u := NewState(1, 0, 2)
	u.EradG[0][0] = 2.0e9
	u.FradX[0][0] = 0.3 * c * u.EradG[0][0]
	u.EradG[0][1] = 1.0e9
	u.FradX[0][1] = -0.2 * c * u.EradG[0][1]

	// donor-cell HLL flux assembled by hand from the cell averages
	eradL, eradR := u.EradG[0][0], u.EradG[0][1]
	FxL, FxR := u.FradX[0][0], u.FradX[0][1]
	pL := ComputeRadPressure(X1, eradL, FxL, 0, 0, FxL/(c*eradL), 0, 0)
	pR := ComputeRadPressure(X1, eradR, FxR, 0, 0, FxR/(c*eradR), 0, 0)
	FL, FR := pL.F, pR.F
	FL[0] *= chat / c
	FR[0] *= chat / c
	for n := 1; n < 4; n++ {
		FL[n] *= chat * c
		FR[n] *= chat * c
	}
	SL, SR := -chat*pL.S, chat*pR.S
	UL := [4]float64{eradL, FxL, 0, 0}
	UR := [4]float64{eradR, FxR, 0, 0}
	var want [4]float64
	for n := 0; n < 4; n++ {
		want[n] = (SR*FL[n] - SL*FR[n] + SR*SL*(UR[n]-UL[n])) / (SR - SL)
	}

	flux := NewFluxSet(1, 2)
	left := NewPrimitive(1, 2)
	right := NewPrimitive(1, 2)
	check := func() {
		sys.ComputeFluxes(X1, flux, nil, left, right, u, 1.0, 1, 2)
		assert.True(t, near(want[0], flux.E[0][1], 1.e-12))
		assert.True(t, near(want[1], flux.Fx[0][1], 1.e-12))
		assert.True(t, near(want[2], flux.Fy[0][1], 1.e-12))
		assert.True(t, near(want[3], flux.Fz[0][1], 1.e-12))
	}

	// superluminal left reconstruction, f = 1.5
	left.EradG[0][1], left.Fx[0][1] = eradL, 1.5
	right.EradG[0][1], right.Fx[0][1] = eradR, FxR/(c*eradR)
	check()

	// non-positive reconstructed energy on the right
	left.Fx[0][1] = FxL / (c * eradL)
	right.EradG[0][1] = 0
	check()
}

func TestStepperRepair(t *testing.T) {
	// the predictor repairs cells driven out of the admissible set; with
	// no energy floor the repair cannot restore positivity and is fatal
	cfg := testConfig(1, nil)
	cfg.EradFloor = 0
	sys := newTestSystem(t, cfg)

	u := uniformState(sys, 3, 1.0e-7, 1.0e6, 1.0e9, 0)
	flux := NewFluxSet(1, 4)
	flux.E[0][2] = 1.0 // outflow through the right face of cell 1 only
	dims := []DimFlux{{Flux: flux, Dx: 1.0}}

	uNew := NewState(1, 0, 3)
	uNew.CopyFrom(u)
	assert.Panics(t, func() { sys.PredictStep(u, uNew, dims, 2.0e9, 1, 2) })

	// with a positive floor the same update is repaired in place
	cfg.EradFloor = 1.0e-20
	sys = newTestSystem(t, cfg)
	uNew.CopyFrom(u)
	sys.PredictStep(u, uNew, dims, 2.0e9, 1, 2)
	assert.Equal(t, 1.0e-20, uNew.EradG[0][1])
	assert.Equal(t, 0.0, uNew.FradX[0][1])
}

func TestCellOpticalDepth(t *testing.T) {
	cfg := testConfig(1, nil)
	cfg.Opacity = &UserOpacity{
		Planck: func(rho, tgas float64) []float64 { return []float64{100.0} },
	}
	sys := newTestSystem(t, cfg)

	u := uniformState(sys, 2, 1.0e-7, 1.0e6, 1.0e9, 0)
	u.Rho[1] = 3.0e-7
	gas := sys.EOS.(eos.IdealGas)
	u.Eint[1] = gas.EintFromTgas(u.Rho[1], 1.0e6)
	u.Etot[1] = u.Eint[1]

	dl := 2.0
	tau := sys.ComputeCellOpticalDepth(u, dl, 1)
	tauL := dl * 1.0e-7 * 100.0
	tauR := dl * 3.0e-7 * 100.0
	want := 2.0 * tauL * tauR / (tauL + tauR)
	assert.True(t, near(want, tau[0], 1.e-12))

	// a flat piecewise power law carries the same flux-mean opacity,
	// single-group and multigroup alike
	flatPL := &PowerLawOpacity{
		ExponentsAndLowerValues: func(boundaries []float64, rho, tgas float64) (expo, lower []float64) {
			expo = make([]float64, len(boundaries)-1)
			lower = make([]float64, len(boundaries)-1)
			for g := range lower {
				lower[g] = 100.0
			}
			return
		},
	}
	cfg.Opacity = flatPL
	sysPL := newTestSystem(t, cfg)
	tauPL := sysPL.ComputeCellOpticalDepth(u, dl, 1)
	assert.True(t, near(want, tauPL[0], 1.e-12))

	cfgMG := testConfig(4, nil)
	cfgMG.Opacity = flatPL
	sysMG := newTestSystem(t, cfgMG)
	tauMG := sysMG.ComputeCellOpticalDepth(u, dl, 1)
	for g := 0; g < 4; g++ {
		assert.True(t, near(want, tauMG[g], 1.e-12))
	}
}

func TestWavespeedCorrection(t *testing.T) {
	// in an optically thick zone the even-face energy jump term damps by
	// 1/tau while odd faces and the diffusive flux keep the full term
	cfg := testConfig(1, nil)
	cfg.UseWavespeedCorrection = true
	cfg.Opacity = &UserOpacity{
		Planck: func(rho, tgas float64) []float64 { return []float64{1.0e4} },
	}
	sys := newTestSystem(t, cfg)

	K := 6
	u := uniformState(sys, K, 1.0, 1.0e6, 1.0e9, 0)
	for i := 0; i < K; i++ {
		u.EradG[0][i] = 1.0e9 * (1.0 + 0.2*float64(i))
	}
	left, right := faceStates(sys, u, K)

	flux := NewFluxSet(1, K+1)
	fdiff := NewFluxSet(1, K+1)
	sys.ComputeFluxes(X1, flux, fdiff, left, right, u, 1.0, 1, K)

	// tau = 1e4 per cell, epsilon = 1e-4: the even-face energy flux is
	// strongly suppressed relative to the diffusive flux
	assert.True(t, math.Abs(flux.E[0][2]) < 1.e-3*math.Abs(fdiff.E[0][2]))
	assert.True(t, near(fdiff.E[0][3], flux.E[0][3], 1.e-12))
	// momentum fluxes are never corrected
	assert.True(t, near(fdiff.Fx[0][2], flux.Fx[0][2], 1.e-12))
}
