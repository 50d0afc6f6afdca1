package radiation

import (
	"fmt"
	"math"
)

// FluxSet holds face-centered fluxes of the four radiation moments per
// group, [NGroups][K]. By convention face i carries the Riemann solution at
// the left edge of cell i.
type FluxSet struct {
	E          [][]float64
	Fx, Fy, Fz [][]float64
}

func NewFluxSet(nGroups, K int) *FluxSet {
	f := &FluxSet{
		E:  make([][]float64, nGroups),
		Fx: make([][]float64, nGroups),
		Fy: make([][]float64, nGroups),
		Fz: make([][]float64, nGroups),
	}
	for g := 0; g < nGroups; g++ {
		f.E[g] = make([]float64, K)
		f.Fx[g] = make([]float64, K)
		f.Fy[g] = make([]float64, K)
		f.Fz[g] = make([]float64, K)
	}
	return f
}

// fluxMeanOpacity evaluates the flux-mean opacity per group from the
// configured opacity model. For the piecewise power-law model the radiation
// spectrum is taken to be thermal at tgas.
func (sys *System) fluxMeanOpacity(rho, tgas float64) []float64 {
	switch o := sys.Opacity.(type) {
	case *UserOpacity:
		return o.fluxMean(rho, tgas)
	case *PowerLawOpacity:
		expo, lower := o.ExponentsAndLowerValues(sys.Boundaries, rho, tgas)
		if sys.NGroups == 1 {
			return lower
		}
		alpha := ComputeRadQuantityExponents(sys.PlanckEnergyFractions(tgas), sys.Boundaries)
		return ComputeGroupMeanOpacity(expo, lower, sys.boundaryRatios, alpha)
	}
	panic("radiation: unknown opacity model")
}

// ComputeCellOpticalDepth returns the interface-averaged optical depth per
// group at face i, the harmonic mean of dl*rho*kappa_F of the two adjacent
// cells (piecewise-constant reconstruction).
func (sys *System) ComputeCellOpticalDepth(cons *State, dl float64, i int) []float64 {
	rhoL, rhoR := cons.Rho[i-1], cons.Rho[i]
	tgasL := sys.EOS.TgasFromEint(rhoL, cons.Eint[i-1], cons.MassScalars(i-1))
	tgasR := sys.EOS.TgasFromEint(rhoR, cons.Eint[i], cons.MassScalars(i))

	kappaL := sys.fluxMeanOpacity(rhoL, tgasL)
	kappaR := sys.fluxMeanOpacity(rhoR, tgasR)

	tau := make([]float64, sys.NGroups)
	for g := range tau {
		tauL := dl * rhoL * kappaL[g]
		tauR := dl * rhoR * kappaR[g]
		tau[g] = (tauL * tauR * 2.0) / (tauL + tauR)
	}
	return tau
}

// ComputeFluxes solves the Riemann problem at faces [lo,hi) with an HLL
// solver (Toro 1998; Balsara 2017) using the frozen Eddington tensor of each
// side; eigenvalues follow Skinner & Ostriker (2013). left and right hold
// the reconstructed primitive states at each face; cons supplies the
// first-order fallback when a reconstructed state is inadmissible.
//
// fluxDiffusive, when non-nil, receives the uncorrected HLL flux for
// downstream flux-register accounting; it differs from flux only when the
// optically-thick wavespeed correction is enabled.
func (sys *System) ComputeFluxes(dir Direction, flux, fluxDiffusive *FluxSet, left, right *Primitive, cons *State, dl float64, lo, hi int) {
	c := sys.CLight
	chat := sys.CHat

	for i := lo; i < hi; i++ {
		// Optionally damp the energy wave in optically thick zones to
		// suppress the odd-even instability, similar to the
		// asymptotic-preserving correction of Skinner et al. (2019).
		var tauCell []float64
		if sys.UseWavespeedCorrection {
			tauCell = sys.ComputeCellOpticalDepth(cons, dl, i)
		}

		for g := 0; g < sys.NGroups; g++ {
			eradL := left.EradG[g][i]
			eradR := right.EradG[g][i]

			fxL, fyL, fzL := left.Fx[g][i], left.Fy[g][i], left.Fz[g][i]
			fxR, fyR, fzR := right.Fx[g][i], right.Fy[g][i], right.Fz[g][i]

			fL := math.Sqrt(fxL*fxL + fyL*fyL + fzL*fzL)
			fR := math.Sqrt(fxR*fxR + fyR*fyR + fzR*fzR)

			FxL, FyL, FzL := fxL*(c*eradL), fyL*(c*eradL), fzL*(c*eradL)
			FxR, FyR, FzR := fxR*(c*eradR), fyR*(c*eradR), fzR*(c*eradR)

			// fall back to first-order reconstruction when a face
			// state is not physically admissible
			if eradL <= 0 || eradR <= 0 || fL >= 1 || fR >= 1 {
				eradL = cons.EradG[g][i-1]
				eradR = cons.EradG[g][i]

				FxL, FyL, FzL = cons.FradX[g][i-1], cons.FradY[g][i-1], cons.FradZ[g][i-1]
				FxR, FyR, FzR = cons.FradX[g][i], cons.FradY[g][i], cons.FradZ[g][i]

				fxL, fyL, fzL = FxL/(c*eradL), FyL/(c*eradL), FzL/(c*eradL)
				fxR, fyR, fzR = FxR/(c*eradR), FyR/(c*eradR), FzR/(c*eradR)
			}

			pL := ComputeRadPressure(dir, eradL, FxL, FyL, FzL, fxL, fyL, fzL)
			pR := ComputeRadPressure(dir, eradR, FxR, FyR, FzR, fxR, fyR, fzR)

			FL, FR := pL.F, pR.F

			// correct for the reduced speed of light
			FL[0] *= chat / c
			FR[0] *= chat / c
			for n := 1; n < 4; n++ {
				FL[n] *= chat * c
				FR[n] *= chat * c
			}
			SL := -chat * pL.S
			SR := chat * pR.S

			UL := [4]float64{eradL, FxL, FyL, FzL}
			UR := [4]float64{eradR, FxR, FyR, FzR}

			epsilon := 1.0
			if sys.UseWavespeedCorrection && i%2 == 0 {
				epsilon = math.Min(1.0, 1.0/tauCell[g])
			}

			// frozen Eddington tensor: the solution is always in the
			// star region, F = F_star
			wL := SR / (SR - SL)
			wR := -SL / (SR - SL)
			wU := SR * SL / (SR - SL)

			var F, Fdiff [4]float64
			for n := 0; n < 4; n++ {
				jump := wU * (UR[n] - UL[n])
				Fdiff[n] = wL*FL[n] + wR*FR[n] + jump
				if n == 0 {
					jump *= epsilon
				}
				F[n] = wL*FL[n] + wR*FR[n] + jump
				if math.IsNaN(F[n]) {
					panic(fmt.Sprintf("radiation: NaN interface flux at face %d group %d", i, g))
				}
			}

			flux.E[g][i], flux.Fx[g][i], flux.Fy[g][i], flux.Fz[g][i] = F[0], F[1], F[2], F[3]
			if fluxDiffusive != nil {
				fluxDiffusive.E[g][i] = Fdiff[0]
				fluxDiffusive.Fx[g][i] = Fdiff[1]
				fluxDiffusive.Fy[g][i] = Fdiff[2]
				fluxDiffusive.Fz[g][i] = Fdiff[3]
			}
		}
	}
}
