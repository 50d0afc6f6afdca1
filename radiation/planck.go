package radiation

import (
	"math"

	"gonum.org/v1/gonum/integrate/quad"
)

// planckIntegralTotal is Integrate[x^3/(Exp[x]-1), {x, 0, Infinity}] = pi^4/15.
const planckIntegralTotal = math.Pi * math.Pi * math.Pi * math.Pi / 15.0

// planckUpperCutoff bounds the quadrature interval; the integrand decays as
// x^3 exp(-x) and contributes nothing representable beyond this.
const planckUpperCutoff = 100.0

const planckQuadNodes = 64

func planckIntegrand(x float64) float64 {
	if x < 1e-8 {
		// x^3/(e^x - 1) -> x^2 as x -> 0
		return x * x
	}
	return x * x * x / math.Expm1(x)
}

// integratePlanck evaluates Integrate[x^3/(Exp[x]-1), {x, 0, t}] by fixed
// Gauss-Legendre quadrature.
func integratePlanck(t float64) float64 {
	if t <= 0 {
		return 0
	}
	if t >= planckUpperCutoff {
		return planckIntegralTotal
	}
	return quad.Fixed(planckIntegrand, 0, t, planckQuadNodes, nil, 0)
}

// PlanckEnergyFractions returns the fraction of blackbody energy at
// temperature tgas falling in each group. The single-group case is exactly
// [1.0]. Fractions are normalized so they sum to 1 whenever any group is
// nonempty.
func (sys *System) PlanckEnergyFractions(tgas float64) []float64 {
	nGroups := sys.NGroups
	frac := make([]float64, nGroups)
	if nGroups == 1 {
		frac[0] = 1.0
		return frac
	}
	kT := sys.Boltzmann * tgas
	if kT <= 0 {
		return frac
	}
	previous := integratePlanck(sys.Boundaries[0] * sys.EnergyUnit / kT)
	sum := 0.0
	for g := 0; g < nGroups; g++ {
		y := integratePlanck(sys.Boundaries[g+1] * sys.EnergyUnit / kT)
		frac[g] = y - previous
		previous = y
		sum += frac[g]
	}
	if sum <= 0 {
		return frac
	}
	for g := 0; g < nGroups; g++ {
		frac[g] /= sum
	}
	return frac
}

// ThermalRadiation returns the per-group thermal radiation energy
// a T^4 * fraction_g, floored at the per-group radiation energy floor.
func (sys *System) ThermalRadiation(tgas float64, fractions []float64) []float64 {
	aT4 := sys.RadConstant * tgas * tgas * tgas * tgas
	erad := make([]float64, sys.NGroups)
	for g := range erad {
		erad[g] = aT4 * fractions[g]
		if erad[g] < sys.eradFloorGroup {
			erad[g] = sys.eradFloorGroup
		}
	}
	return erad
}

// ThermalRadiationTempDerivative returns the per-group temperature
// derivative of the thermal emission, 4 emission / T, with the emission
// taken from ThermalRadiation including its floor.
func (sys *System) ThermalRadiationTempDerivative(tgas float64, fractions []float64) []float64 {
	deriv := sys.ThermalRadiation(tgas, fractions)
	for g := range deriv {
		deriv[g] *= 4.0 / tgas
	}
	return deriv
}
