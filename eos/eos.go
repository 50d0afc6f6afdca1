// Package eos provides the gamma-law ideal gas equation of state used to
// close the matter side of the radiation moment system.
package eos

import "math"

// IdealGas is a calorically perfect gas with constant mean molecular
// weight: Eint = rho * c_v * T with c_v = k_B / (mu * (gamma - 1)).
type IdealGas struct {
	Gamma     float64 // adiabatic index, > 1
	Mu        float64 // mean molecular weight in grams
	Boltzmann float64 // Boltzmann constant in matching units
}

func (g IdealGas) cv() float64 {
	return g.Boltzmann / (g.Mu * (g.Gamma - 1.0))
}

func (g IdealGas) TgasFromEint(rho, eint float64, _ []float64) float64 {
	return eint / (rho * g.cv())
}

func (g IdealGas) EintFromTgas(rho, tgas float64) float64 {
	return rho * g.cv() * tgas
}

// EintTempDerivative returns d(Eint)/dT = rho * c_v, the volumetric heat
// capacity.
func (g IdealGas) EintTempDerivative(rho, _ float64, _ []float64) float64 {
	return rho * g.cv()
}

// SoundSpeed returns the adiabatic sound speed for a gas at temperature
// tgas.
func (g IdealGas) SoundSpeed(tgas float64) float64 {
	cs2 := g.Gamma * g.Boltzmann * tgas / g.Mu
	if cs2 <= 0 {
		return 0
	}
	return math.Sqrt(cs2)
}
