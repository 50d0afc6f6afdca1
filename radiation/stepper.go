package radiation

import "fmt"

// DimFlux bundles the face fluxes along one coordinate direction with the
// cell width in that direction. For 1D problems the slice passed to the
// steppers has a single element.
type DimFlux struct {
	Flux          *FluxSet
	FluxDiffusive *FluxSet // informational; not consumed by the steppers
	Dx            float64
}

// By convention, the fluxes are defined on the left edge of each zone:
// flux(i) is the flux into zone i through its left interface, and
// -flux(i+1) is the flux into zone i through its right interface.

// PredictStep performs the forward-Euler predictor over cells [lo,hi),
// writing the radiation moments of consNew. Gas fields are not touched.
// Cells driven out of the admissible set are repaired in place.
func (sys *System) PredictStep(consOld, consNew *State, fluxes []DimFlux, dt float64, lo, hi int) {
	for g := 0; g < sys.NGroups; g++ {
		for i := lo; i < hi; i++ {
			E := consOld.EradG[g][i]
			Fx := consOld.FradX[g][i]
			Fy := consOld.FradY[g][i]
			Fz := consOld.FradZ[g][i]
			for _, df := range fluxes {
				fac := dt / df.Dx
				E += fac * (df.Flux.E[g][i] - df.Flux.E[g][i+1])
				Fx += fac * (df.Flux.Fx[g][i] - df.Flux.Fx[g][i+1])
				Fy += fac * (df.Flux.Fy[g][i] - df.Flux.Fy[g][i+1])
				Fz += fac * (df.Flux.Fz[g][i] - df.Flux.Fz[g][i+1])
			}
			consNew.EradG[g][i] = E
			consNew.FradX[g][i] = Fx
			consNew.FradY[g][i] = Fy
			consNew.FradZ[g][i] = Fz
		}
	}
	for i := lo; i < hi; i++ {
		if !sys.isStateValid(consNew, i) {
			sys.amendRadState(consNew, i)
			if !sys.isStateValid(consNew, i) {
				panic(fmt.Sprintf("radiation: cell %d invalid after repair in predictor", i))
			}
		}
	}
}

// AddFluxesRK2 performs the corrector combination of the IMEX PD-ARS scheme
// over cells [lo,hi):
//
//	U^new = (1-a32) U^0 + a32 U^1 + dt (0.5-a32) div F(U^0) + dt 0.5 div F(U^1)
//
// The remaining implicit source term dt (1-a32) S(U^new) is handled by
// AddSourceTerms, not here.
func (sys *System) AddFluxesRK2(uNew, u0, u1 *State, fluxesOld, fluxes []DimFlux, dt float64, lo, hi int) {
	a32 := sys.A32
	for g := 0; g < sys.NGroups; g++ {
		for i := lo; i < hi; i++ {
			E := (1.0-a32)*u0.EradG[g][i] + a32*u1.EradG[g][i]
			Fx := (1.0-a32)*u0.FradX[g][i] + a32*u1.FradX[g][i]
			Fy := (1.0-a32)*u0.FradY[g][i] + a32*u1.FradY[g][i]
			Fz := (1.0-a32)*u0.FradZ[g][i] + a32*u1.FradZ[g][i]
			for d := range fluxes {
				facOld := (0.5 - a32) * dt / fluxesOld[d].Dx
				fac := 0.5 * dt / fluxes[d].Dx
				fo, fn := fluxesOld[d].Flux, fluxes[d].Flux
				E += facOld*(fo.E[g][i]-fo.E[g][i+1]) + fac*(fn.E[g][i]-fn.E[g][i+1])
				Fx += facOld*(fo.Fx[g][i]-fo.Fx[g][i+1]) + fac*(fn.Fx[g][i]-fn.Fx[g][i+1])
				Fy += facOld*(fo.Fy[g][i]-fo.Fy[g][i+1]) + fac*(fn.Fy[g][i]-fn.Fy[g][i+1])
				Fz += facOld*(fo.Fz[g][i]-fo.Fz[g][i+1]) + fac*(fn.Fz[g][i]-fn.Fz[g][i+1])
			}
			uNew.EradG[g][i] = E
			uNew.FradX[g][i] = Fx
			uNew.FradY[g][i] = Fy
			uNew.FradZ[g][i] = Fz
		}
	}
	for i := lo; i < hi; i++ {
		if !sys.isStateValid(uNew, i) {
			sys.amendRadState(uNew, i)
			if !sys.isStateValid(uNew, i) {
				panic(fmt.Sprintf("radiation: cell %d invalid after repair in corrector", i))
			}
		}
	}
}
