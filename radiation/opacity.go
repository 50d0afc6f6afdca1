package radiation

import "math"

// OpacityModel is the pluggable opacity collaborator. Exactly two
// implementations exist: UserOpacity supplies group-mean opacities directly
// as functions of density and temperature, while PowerLawOpacity fits a
// piecewise power law on the fly and lets the solver integrate group means
// analytically.
type OpacityModel interface {
	opacityModel() // sealed
}

// UserOpacity supplies per-group Planck, energy-mean and flux-mean
// opacities. EnergyMean defaults to Planck when nil; FluxMean defaults to
// EnergyMean when nil.
type UserOpacity struct {
	Planck     func(rho, tgas float64) []float64
	EnergyMean func(rho, tgas float64) []float64
	FluxMean   func(rho, tgas float64) []float64
}

func (*UserOpacity) opacityModel() {}

func (o *UserOpacity) planck(rho, tgas float64) []float64 {
	return o.Planck(rho, tgas)
}

func (o *UserOpacity) energyMean(rho, tgas float64) []float64 {
	if o.EnergyMean == nil {
		return o.Planck(rho, tgas)
	}
	return o.EnergyMean(rho, tgas)
}

func (o *UserOpacity) fluxMean(rho, tgas float64) []float64 {
	if o.FluxMean == nil {
		return o.energyMean(rho, tgas)
	}
	return o.FluxMean(rho, tgas)
}

// PowerLawOpacity models the opacity within each group as kappa(E) =
// kappa_lower * (E/E_lower)^expo. ExponentsAndLowerValues returns, per
// group, the power-law exponent and the opacity at the lower bin edge for
// the given density and temperature.
type PowerLawOpacity struct {
	ExponentsAndLowerValues func(boundaries []float64, rho, tgas float64) (expo, lower []float64)
}

func (*PowerLawOpacity) opacityModel() {}

func minmod(a, b float64) float64 {
	return 0.5 * (sgn(a) + sgn(b)) * math.Min(math.Abs(a), math.Abs(b))
}

// MC is the monotonized-central slope limiter.
func MC(a, b float64) float64 {
	return 0.5 * (sgn(a) + sgn(b)) * math.Min(0.5*math.Abs(a+b), math.Min(2.0*math.Abs(a), 2.0*math.Abs(b)))
}

func sgn(x float64) float64 {
	switch {
	case x > 0:
		return 1
	case x < 0:
		return -1
	}
	return 0
}

// ComputeRadQuantityExponents fits a local power-law exponent per group to a
// tabulated group quantity (Planck function, radiation energy or flux) via a
// minmod-limited log-log finite difference between adjacent geometric bin
// centers. Boundary groups have no neighbor on one side and get exponent 0.
func ComputeRadQuantityExponents(quant, boundaries []float64) []float64 {
	nGroups := len(quant)
	binCenter := make([]float64, nGroups)
	quantMean := make([]float64, nGroups)
	logSlopes := make([]float64, nGroups-1)
	exponents := make([]float64, nGroups)
	for g := 0; g < nGroups; g++ {
		binCenter[g] = math.Sqrt(boundaries[g] * boundaries[g+1])
		quantMean[g] = quant[g] / (boundaries[g+1] - boundaries[g])
		if g > 0 {
			switch {
			case quantMean[g] == 0 && quantMean[g-1] == 0:
				logSlopes[g-1] = 0
			case quantMean[g-1]*quantMean[g] <= 0:
				if quantMean[g] > quantMean[g-1] {
					logSlopes[g-1] = math.Inf(1)
				} else {
					logSlopes[g-1] = math.Inf(-1)
				}
			default:
				logSlopes[g-1] = math.Log(math.Abs(quantMean[g]/quantMean[g-1])) / math.Log(binCenter[g]/binCenter[g-1])
			}
		}
	}
	for g := 0; g < nGroups; g++ {
		if g == 0 || g == nGroups-1 {
			exponents[g] = 0
		} else {
			exponents[g] = minmod(logSlopes[g-1], logSlopes[g])
		}
	}
	return exponents
}

// ComputeGroupMeanOpacity integrates the assumed power-law opacity against a
// power-law radiation quantity of exponent alphaQuant over each group,
// analytically. When an exponent sum lands within 1e-8 of the removable
// singularity at zero, the logarithmic limit of the integral is substituted.
func ComputeGroupMeanOpacity(expo, lower, boundaryRatios, alphaQuant []float64) []float64 {
	nGroups := len(expo)
	kappa := make([]float64, nGroups)
	powerIntegral := func(ratio, alpha float64) float64 {
		if math.Abs(alpha) < 1e-8 {
			return math.Log(ratio)
		}
		return (math.Pow(ratio, alpha) - 1.0) / alpha
	}
	for g := 0; g < nGroups; g++ {
		part1 := powerIntegral(boundaryRatios[g], alphaQuant[g]+1.0)
		part2 := powerIntegral(boundaryRatios[g], alphaQuant[g]+expo[g]+1.0)
		kappa[g] = lower[g] / part1 * part2
		if math.IsNaN(kappa[g]) {
			panic("radiation: NaN group-mean opacity")
		}
	}
	return kappa
}
