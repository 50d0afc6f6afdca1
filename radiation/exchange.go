package radiation

import (
	"fmt"
	"math"
)

// Lagged work-term iteration limits. The outer loop re-evaluates the
// velocity work term from the updated flux and momentum; the inner
// Newton-Raphson loop solves the energy exchange with the work term held
// fixed.
const (
	maxOuterIter  = 5
	maxNewtonIter = 400
	newtonTol     = 1.0e-11
	workLagTol    = 1.0e-13
)

type exchangeScratch struct {
	src, erad0              []float64
	fourPiBoverC, eradGuess []float64
	kappaP, kappaE, kappaF  []float64
	kappaPoverE             []float64
	kappaExpo, kappaLower   []float64
	alphaB, alphaE, alphaF  []float64
	tau0, tau, dvec, rvec   []float64
	work, workPrev          []float64
	dFGdD, dFRdEgas, dFRdD  []float64
	deltaD, resid           []float64
	fradNew                 [3][]float64
}

func newExchangeScratch(nGroups int) *exchangeScratch {
	s := &exchangeScratch{}
	for _, p := range []*[]float64{
		&s.src, &s.erad0, &s.fourPiBoverC, &s.eradGuess,
		&s.kappaP, &s.kappaE, &s.kappaF, &s.kappaPoverE,
		&s.kappaExpo, &s.kappaLower, &s.alphaB, &s.alphaE, &s.alphaF,
		&s.tau0, &s.tau, &s.dvec, &s.rvec, &s.work, &s.workPrev,
		&s.dFGdD, &s.dFRdEgas, &s.dFRdD, &s.deltaD, &s.resid,
	} {
		*p = make([]float64, nGroups)
	}
	for n := 0; n < 3; n++ {
		s.fradNew[n] = make([]float64, nGroups)
	}
	return s
}

// AddSourceTerms applies the implicit matter-radiation exchange update to
// cells [lo,hi) of cons, in place, following Howell & Greenough (2003). The
// energy exchange is solved per cell by Newton-Raphson in the unknowns
// (Egas, D_g) with the velocity work term lagged across an outer iteration;
// the flux update and conservative momentum kick follow from the converged
// energies. stage selects the IMEX substep: stage 1 applies the gas update
// scaled by a32 over the full dt, stage 2 uses the remaining (1-a32) dt.
//
// radEnergySource, when non-nil, supplies a per-group radiation energy
// injection rate, [NGroups][K]; it must be non-negative.
func (sys *System) AddSourceTerms(cons *State, radEnergySource [][]float64, dt float64, stage int, lo, hi int) {
	if stage == 2 {
		dt = (1.0 - sys.A32) * dt
	}
	gasUpdateFactor := 1.0
	if stage == 1 {
		gasUpdateFactor = sys.A32
	}

	c := sys.CLight
	chat := sys.CHat
	nGroups := sys.NGroups
	sc := newExchangeScratch(nGroups)

	for i := lo; i < hi; i++ {
		rho := cons.Rho[i]
		gasMtm0 := [3]float64{cons.MomX[i], cons.MomY[i], cons.MomZ[i]}
		egastot0 := cons.Etot[i]
		massScalars := cons.MassScalars(i)

		erad0Sum := 0.0
		srcSum := 0.0
		for g := 0; g < nGroups; g++ {
			sc.erad0[g] = cons.EradG[g][i]
			if !(sc.erad0[g] > 0) {
				panic(fmt.Sprintf("radiation: non-positive radiation energy %g entering source update at cell %d group %d", sc.erad0[g], i, g))
			}
			erad0Sum += sc.erad0[g]
			sc.src[g] = 0
			if radEnergySource != nil {
				sc.src[g] = dt * chat * radEnergySource[g][i]
				if sc.src[g] < 0 {
					panic("radiation: negative radiation energy source")
				}
			}
			srcSum += sc.src[g]
			sc.eradGuess[g] = sc.erad0[g]
			sc.work[g] = 0
			sc.workPrev[g] = 0
		}

		egas0 := EintFromEtot(rho, gasMtm0[0], gasMtm0[1], gasMtm0[2], egastot0)
		etot0 := egas0 + (c/chat)*(erad0Sum+srcSum)

		betaSqr := (gasMtm0[0]*gasMtm0[0] + gasMtm0[1]*gasMtm0[1] + gasMtm0[2]*gasMtm0[2]) / (rho * rho * c * c)
		var lf, lfV, lfVV float64
		switch sys.BetaOrder {
		case 0, 1:
			lf, lfV, lfVV = 1.0, 1.0, 1.0
		case 2:
			lf, lfV, lfVV = 1.0+0.5*betaSqr, 1.0, 1.0
		case 3:
			lf, lfV, lfVV = 1.0+0.5*betaSqr, 1.0+0.5*betaSqr, 1.0
		default: // BetaOrderFull
			lf = 1.0 / math.Sqrt(1.0-betaSqr)
			lfV, lfVV = lf, lf
		}

		powerLaw, isPowerLaw := sys.Opacity.(*PowerLawOpacity)
		userModel, _ := sys.Opacity.(*UserOpacity)

		// evaluates emissivity at tgas into sc.fourPiBoverC
		thermal := func(tgas float64) {
			frac := sys.PlanckEnergyFractions(tgas)
			copy(sc.fourPiBoverC, sys.ThermalRadiation(tgas, frac))
		}
		// evaluates Planck- and energy-mean opacities at tgas; the
		// energy-mean spectrum shape is taken from eradRef
		opacitiesPE := func(tgas float64, eradRef []float64) {
			if isPowerLaw {
				expo, lower := powerLaw.ExponentsAndLowerValues(sys.Boundaries, rho, tgas)
				copy(sc.kappaExpo, expo)
				copy(sc.kappaLower, lower)
				if nGroups == 1 {
					sc.kappaP[0], sc.kappaE[0] = lower[0], lower[0]
				} else {
					copy(sc.alphaB, ComputeRadQuantityExponents(sc.fourPiBoverC, sys.Boundaries))
					copy(sc.alphaE, ComputeRadQuantityExponents(eradRef, sys.Boundaries))
					copy(sc.kappaP, ComputeGroupMeanOpacity(sc.kappaExpo, sc.kappaLower, sys.boundaryRatios, sc.alphaB))
					copy(sc.kappaE, ComputeGroupMeanOpacity(sc.kappaExpo, sc.kappaLower, sys.boundaryRatios, sc.alphaE))
				}
			} else {
				copy(sc.kappaP, userModel.planck(rho, tgas))
				copy(sc.kappaE, userModel.energyMean(rho, tgas))
			}
			for g := 0; g < nGroups; g++ {
				if sc.kappaE[g] > 0 {
					sc.kappaPoverE[g] = sc.kappaP[g] / sc.kappaE[g]
				} else {
					sc.kappaPoverE[g] = 1.0
				}
			}
		}
		// power-law flux-mean opacity weighted by exponents of quant
		powerLawFluxMean := func(quant []float64) []float64 {
			if nGroups == 1 {
				return sc.kappaLower
			}
			copy(sc.alphaF, ComputeRadQuantityExponents(quant, sys.Boundaries))
			return ComputeGroupMeanOpacity(sc.kappaExpo, sc.kappaLower, sys.boundaryRatios, sc.alphaF)
		}

		var egasGuess, tgas float64
		var dMomentum [3]float64
		var gasMom1 [3]float64
		ekin0 := 0.0

		ite := 0
		for ; ite < maxOuterIter; ite++ {
			ekin0 = egastot0 - egas0

			// 1. energy exchange, Newton-Raphson in (Egas, D_g) with
			// D_g = R_g / tau0_g. This base is better conditioned than
			// (Egas, Erad_g) and the Jacobian needs no opacity
			// temperature derivative since d/dT (kappa_P/kappa_E) is
			// taken to be zero; that assumption affects only the
			// convergence rate, never the converged solution.
			egasGuess = egas0
			tgas = sys.EOS.TgasFromEint(rho, egasGuess, massScalars)
			thermal(tgas)
			opacitiesPE(tgas, sc.erad0)

			if sys.BetaOrder != 0 && sys.IncludeWorkTerm && ite == 0 {
				// work term at the old state, v.F * chi
				if isPowerLaw {
					frad := [3][][]float64{cons.FradX, cons.FradY, cons.FradZ}
					for g := 0; g < nGroups; g++ {
						sc.work[g] = 0
					}
					for n := 0; n < 3; n++ {
						quant := sc.resid // reuse as gather buffer
						for g := 0; g < nGroups; g++ {
							quant[g] = frad[n][g][i]
						}
						kappaF := powerLawFluxMean(quant)
						for g := 0; g < nGroups; g++ {
							sc.work[g] += (sc.kappaExpo[g] + 1.0) * gasMtm0[n] * kappaF[g] * quant[g]
						}
					}
					for g := 0; g < nGroups; g++ {
						sc.work[g] *= chat / (c * c) * dt
					}
				} else {
					copy(sc.kappaF, userModel.fluxMean(rho, tgas))
					for g := 0; g < nGroups; g++ {
						vDotF := gasMtm0[0]*cons.FradX[g][i] + gasMtm0[1]*cons.FradY[g][i] + gasMtm0[2]*cons.FradZ[g][i]
						sc.work[g] = vDotF * (2.0*sc.kappaE[g] - sc.kappaF[g]) * chat / (c * c) * lfV * dt
					}
				}
			}

			for g := 0; g < nGroups; g++ {
				sc.tau0[g] = dt * rho * sc.kappaP[g] * chat * lf
				sc.rvec[g] = (sc.fourPiBoverC[g]-sc.erad0[g]/sc.kappaPoverE[g])*sc.tau0[g] + sc.work[g]
				if sys.UseDBasis {
					// tau0 becomes a pure scaling factor for R
					if sc.tau0[g] <= 1.0 {
						sc.tau0[g] = 1.0
					}
					sc.dvec[g] = sc.rvec[g] / sc.tau0[g]
				}
			}

			n := 0
			for ; n < maxNewtonIter; n++ {
				tgas = sys.EOS.TgasFromEint(rho, egasGuess, massScalars)
				thermal(tgas)
				opacitiesPE(tgas, sc.erad0)

				for g := 0; g < nGroups; g++ {
					sc.tau[g] = dt * rho * sc.kappaE[g] * chat * lf
					if sys.UseDBasis {
						sc.rvec[g] = sc.tau0[g] * sc.dvec[g]
					}
					// if tau = 0, Erad_guess must not change
					if sc.tau[g] > 0 {
						sc.eradGuess[g] = sc.kappaPoverE[g] * (sc.fourPiBoverC[g] - (sc.rvec[g]-sc.work[g])/sc.tau[g])
					}
				}

				fG := egasGuess - egas0
				fDAbsSum := 0.0
				for g := 0; g < nGroups; g++ {
					sc.resid[g] = sc.eradGuess[g] - sc.erad0[g] - (sc.rvec[g] + sc.src[g])
					if sc.tau[g] > 0 {
						fDAbsSum += math.Abs(sc.resid[g])
						fG += (c / chat) * sc.rvec[g]
					}
				}
				if math.Abs(fG/etot0) < newtonTol && (c/chat)*fDAbsSum/etot0 < newtonTol {
					break
				}

				cv := sys.EOS.EintTempDerivative(rho, tgas, massScalars)
				frac := sys.PlanckEnergyFractions(tgas)
				dBdT := sys.ThermalRadiationTempDerivative(tgas, frac)

				for g := 0; g < nGroups; g++ {
					if sc.tau[g] <= 0 {
						sc.dFRdD[g] = math.Inf(-1)
					} else {
						sc.dFRdD[g] = -(sc.kappaPoverE[g]/sc.tau[g] + 1.0)
					}
					if sys.UseDBasis {
						sc.dFGdD[g] = (c / chat) * sc.tau0[g]
						sc.dFRdD[g] *= sc.tau0[g]
					} else {
						sc.dFGdD[g] = c / chat
					}
					sc.dFRdEgas[g] = sc.kappaPoverE[g] * dBdT[g] / cv
					sc.resid[g] = -sc.resid[g]
				}
				deltaEgas := SolveShiftedSparse(1.0, sc.dFGdD, sc.dFRdEgas, sc.dFRdD, sc.resid, -fG, sc.deltaD)

				egasGuess += deltaEgas
				for g := 0; g < nGroups; g++ {
					if sys.UseDBasis {
						sc.dvec[g] += sc.deltaD[g]
					} else {
						sc.rvec[g] += sc.deltaD[g]
					}
				}
			}
			if n >= maxNewtonIter {
				panic(fmt.Sprintf("radiation: Newton-Raphson iteration failed to converge at cell %d", i))
			}
			if !(egasGuess > 0) {
				panic(fmt.Sprintf("radiation: non-positive gas internal energy after exchange at cell %d", i))
			}
			for g := 0; g < nGroups; g++ {
				if sc.eradGuess[g] < 0 {
					panic(fmt.Sprintf("radiation: negative radiation energy after exchange at cell %d group %d", i, g))
				}
			}

			// 2. flux update with the converged energies
			tgas = sys.EOS.TgasFromEint(rho, egasGuess, massScalars)
			thermal(tgas)
			opacitiesPE(tgas, sc.eradGuess)
			if isPowerLaw {
				// alpha_F is carried over from the work-term update
				if nGroups == 1 {
					copy(sc.kappaF, sc.kappaLower)
				} else {
					copy(sc.kappaF, ComputeGroupMeanOpacity(sc.kappaExpo, sc.kappaLower, sys.boundaryRatios, sc.alphaF))
				}
			} else {
				copy(sc.kappaF, userModel.fluxMean(rho, tgas))
			}

			dMomentum = [3]float64{}
			for g := 0; g < nGroups; g++ {
				frad0 := [3]float64{cons.FradX[g][i], cons.FradY[g][i], cons.FradZ[g][i]}

				if sys.BetaOrder != 0 {
					erad := sc.eradGuess[g]
					fx := frad0[0] / (c * erad)
					fy := frad0[1] / (c * erad)
					fz := frad0[2] / (c * erad)
					fCoeff := chat * rho * sc.kappaF[g] * dt * lf
					tedd := ComputeEddingtonTensor(fx, fy, fz)

					var vTerms [3]float64
					for n := 0; n < 3; n++ {
						var vTerm float64
						if isPowerLaw {
							vTerm = sc.kappaP[g] * sc.fourPiBoverC[g] * (2.0 - sc.kappaExpo[g] - sc.alphaB[g]) / 3.0
						} else {
							vTerm = sc.kappaP[g] * sc.fourPiBoverC[g] * lfV
							if sc.kappaF[g] != sc.kappaE[g] {
								vTerm += (sc.kappaF[g] - sc.kappaE[g]) * erad * lfV * lfV * lfV
							}
						}
						vTerm *= chat * dt * gasMtm0[n]

						pressureTerm := 0.0
						for z := 0; z < 3; z++ {
							pressureTerm += gasMtm0[z] * tedd[n][z] * erad
						}
						if isPowerLaw {
							pressureTerm *= chat * dt * sc.kappaE[g] * (sc.kappaExpo[g] + 1.0)
						} else {
							pressureTerm *= chat * dt * sc.kappaF[g] * lfV
						}
						vTerms[n] = vTerm + pressureTerm
					}

					if sys.BetaOrder == 1 || sc.kappaF[g] == sc.kappaE[g] {
						for n := 0; n < 3; n++ {
							sc.fradNew[n][g] = (frad0[n] + vTerms[n]) / (1.0 + fCoeff)
							dMomentum[n] += -(sc.fradNew[n][g] - frad0[n]) / (c * chat)
						}
					} else {
						// anisotropic drag along the gas velocity:
						// solve (delta_nz (1+F_coeff) + K0 v_n v_z) F_z = v_terms_n + F0_n
						gasVel := [3]float64{gasMtm0[0] / rho, gasMtm0[1] / rho, gasMtm0[2] / rho}
						K0 := 2.0 * rho * chat * dt * (sc.kappaF[g] - sc.kappaE[g]) / (c * c) * lfVV * lfVV * lfVV
						var A [3][3]float64
						var B [3]float64
						for n := 0; n < 3; n++ {
							for z := 0; z < 3; z++ {
								A[n][z] = K0 * gasVel[n] * gasVel[z]
							}
							A[n][n] += 1.0 + fCoeff
							B[n] = vTerms[n] + frad0[n]
						}
						sol := Solve3x3(&A, &B)
						for n := 0; n < 3; n++ {
							sc.fradNew[n][g] = sol[n]
							dMomentum[n] += -(sc.fradNew[n][g] - frad0[n]) / (c * chat)
						}
					}
				} else {
					for n := 0; n < 3; n++ {
						sc.fradNew[n][g] = frad0[n] / (1.0 + rho*sc.kappaF[g]*chat*dt)
						dMomentum[n] += -(sc.fradNew[n][g] - frad0[n]) / (c * chat)
					}
				}
			}

			for n := 0; n < 3; n++ {
				gasMom1[n] = gasMtm0[n] + dMomentum[n]
			}

			// 3. work-term accounting
			if sys.BetaOrder != 0 {
				egastot1 := EtotFromEint(rho, gasMom1[0], gasMom1[1], gasMom1[2], egasGuess)
				ekin1 := egastot1 - egasGuess
				dEkinWork := ekin1 - ekin0

				if sys.IncludeWorkTerm {
					// the work done by radiation landed in the internal
					// energy but belongs to the kinetic energy
					egasGuess -= dEkinWork
				} else {
					// apportion the lost radiation energy by kappa_F * (v.F)
					dEradWork := -(chat / c) * dEkinWork
					lossTot := 0.0
					for g := 0; g < nGroups; g++ {
						sc.resid[g] = sc.kappaF[g] * (gasMom1[0]*sc.fradNew[0][g] + gasMom1[1]*sc.fradNew[1][g] + gasMom1[2]*sc.fradNew[2][g])
						lossTot += sc.resid[g]
					}
					for g := 0; g < nGroups; g++ {
						frac := 0.0
						if nGroups == 1 {
							frac = 1.0
						} else if lossTot != 0 {
							frac = sc.resid[g] / lossTot
						}
						eradNew := sc.eradGuess[g] + dEradWork*frac
						if eradNew < sys.eradFloorGroup {
							egasGuess -= (sys.eradFloorGroup - eradNew) * (c / chat)
							eradNew = sys.eradFloorGroup
						}
						sc.eradGuess[g] = eradNew
					}
				}
			}

			if sys.BetaOrder == 0 || !sys.IncludeWorkTerm {
				break
			}

			// lag the work term: recompute it from the updated flux and
			// momentum, then iterate until it stops moving
			workDelta := 0.0
			workSum := 0.0
			rSum := 0.0
			copy(sc.workPrev, sc.work)
			if isPowerLaw {
				for g := 0; g < nGroups; g++ {
					sc.work[g] = 0
				}
				for n := 0; n < 3; n++ {
					kappaF := powerLawFluxMean(sc.fradNew[n])
					for g := 0; g < nGroups; g++ {
						sc.work[g] += (sc.kappaExpo[g] + 1.0) * gasMtm0[n] * kappaF[g] * sc.fradNew[n][g]
					}
				}
				for g := 0; g < nGroups; g++ {
					sc.work[g] *= chat * dt / (c * c)
				}
			} else {
				for g := 0; g < nGroups; g++ {
					vDotF := gasMom1[0]*sc.fradNew[0][g] + gasMom1[1]*sc.fradNew[1][g] + gasMom1[2]*sc.fradNew[2][g]
					sc.work[g] = vDotF * chat / (c * c) * lfV * (2.0*sc.kappaE[g] - sc.kappaF[g]) * dt
				}
			}
			for g := 0; g < nGroups; g++ {
				workSum += math.Abs(sc.work[g])
				workDelta += math.Abs(sc.work[g] - sc.workPrev[g])
				rSum += sc.rvec[g]
			}
			if workSum == 0 || (c/chat)*workDelta/etot0 < workLagTol || workDelta <= workLagTol*rSum {
				break
			}
		}
		if ite >= maxOuterIter {
			panic(fmt.Sprintf("radiation: work-term iteration failed to converge at cell %d", i))
		}

		// 4. store the new state. In stage 1 the gas quantities advance by
		// a32 of the full step; the radiation moments always take the full
		// update.
		for n := 0; n < 3; n++ {
			gasMom1[n] = gasMtm0[n] + dMomentum[n]*gasUpdateFactor
		}
		cons.MomX[i], cons.MomY[i], cons.MomZ[i] = gasMom1[0], gasMom1[1], gasMom1[2]
		egasGuess = egas0 + (egasGuess-egas0)*gasUpdateFactor
		cons.Eint[i] = egasGuess
		cons.Etot[i] = EtotFromEint(rho, gasMom1[0], gasMom1[1], gasMom1[2], egasGuess)
		for g := 0; g < nGroups; g++ {
			cons.EradG[g][i] = sc.eradGuess[g]
			cons.FradX[g][i] = sc.fradNew[0][g]
			cons.FradY[g][i] = sc.fradNew[1][g]
			cons.FradZ[g][i] = sc.fradNew[2][g]
		}
	}
}
