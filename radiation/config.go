package radiation

import (
	"fmt"
	"math"
)

// Direction selects the face-normal axis for interface flux computations.
type Direction int

const (
	X1 Direction = iota
	X2
	X3
)

// Lorentz-factor expansion orders for the relativistic correction terms.
// BetaOrderFull keeps the exact factor 1/sqrt(1-v^2/c^2).
const (
	BetaOrderFull = -1
)

// physical constants in CGS units
const (
	CLightCGS            = 2.99792458e10
	RadiationConstantCGS = 7.5646e-15
	BoltzmannCGS         = 1.380658e-16
	HydrogenMassCGS      = 1.6726231e-24
	ErgPerEV             = 1.602176634e-12
)

// Config collects every tunable of the radiation moment system. All fields
// are fixed before the run begins; the solver never mutates them.
type Config struct {
	NGroups    int
	Boundaries []float64 // photon energy bin edges, len NGroups+1, increasing; units of EnergyUnit

	CLight      float64 // speed of light c
	CHat        float64 // reduced signal speed c_hat <= c
	RadConstant float64 // radiation constant a
	EradFloor   float64 // minimum total radiation energy density, split evenly across groups
	EnergyUnit  float64 // converts Boundaries to erg when evaluating Planck fractions
	Boltzmann   float64

	BetaOrder int     // orders of v/c retained in the Lorentz expansion: 0..3 or BetaOrderFull
	A32       float64 // IMEX PD-ARS coupling coefficient, 0 < a32 <= 0.5 (a32=0 is SSP-RK2 + split exchange)

	UseWavespeedCorrection bool // odd/even HLL energy-wave damping in optically thick zones
	IncludeWorkTerm        bool // remove radiation work from Eint (true) or apportion it out of Erad (false)
	UseDBasis              bool // Newton unknowns (Egas, D_g=R_g/tau0_g) instead of (Egas, R_g)

	Opacity OpacityModel
	EOS     EquationOfState
}

// EquationOfState converts between gas internal energy and temperature.
// Mass scalars are passed through for composition-dependent implementations.
type EquationOfState interface {
	TgasFromEint(rho, eint float64, massScalars []float64) float64
	EintFromTgas(rho, tgas float64) float64
	EintTempDerivative(rho, tgas float64, massScalars []float64) float64
}

// DefaultConfig returns the CGS single-group configuration used unless a
// caller overrides specific fields before NewSystem.
func DefaultConfig() Config {
	return Config{
		NGroups:         1,
		Boundaries:      []float64{0, math.Inf(1)},
		CLight:          CLightCGS,
		CHat:            CLightCGS,
		RadConstant:     RadiationConstantCGS,
		EradFloor:       0,
		EnergyUnit:      ErgPerEV,
		Boltzmann:       BoltzmannCGS,
		BetaOrder:       1,
		A32:             0.5,
		IncludeWorkTerm: true,
		UseDBasis:       true,
	}
}

// System is the radiation moment solver for a fixed group structure and
// physics configuration. All methods are safe for concurrent use over
// disjoint cell/face ranges.
type System struct {
	Config

	eradFloorGroup float64   // per-group floor = EradFloor / NGroups
	boundaryRatios []float64 // Boundaries[g+1]/Boundaries[g], used by the piecewise power-law model
}

func NewSystem(cfg Config) (*System, error) {
	if cfg.NGroups < 1 {
		return nil, fmt.Errorf("radiation: NGroups must be >= 1, have %d", cfg.NGroups)
	}
	if len(cfg.Boundaries) != cfg.NGroups+1 {
		return nil, fmt.Errorf("radiation: need %d group boundaries, have %d", cfg.NGroups+1, len(cfg.Boundaries))
	}
	for g := 0; g < cfg.NGroups; g++ {
		if !(cfg.Boundaries[g+1] > cfg.Boundaries[g]) {
			return nil, fmt.Errorf("radiation: group boundaries must increase monotonically at g=%d", g)
		}
	}
	if cfg.CLight <= 0 || cfg.CHat <= 0 || cfg.CHat > cfg.CLight {
		return nil, fmt.Errorf("radiation: require 0 < c_hat <= c, have c=%g c_hat=%g", cfg.CLight, cfg.CHat)
	}
	if cfg.RadConstant <= 0 {
		return nil, fmt.Errorf("radiation: radiation constant must be positive")
	}
	if cfg.EradFloor < 0 {
		return nil, fmt.Errorf("radiation: EradFloor must be non-negative")
	}
	if cfg.A32 < 0 || cfg.A32 > 0.5 {
		return nil, fmt.Errorf("radiation: IMEX a32 must lie in [0, 0.5], have %g", cfg.A32)
	}
	if cfg.BetaOrder != BetaOrderFull && (cfg.BetaOrder < 0 || cfg.BetaOrder > 3) {
		return nil, fmt.Errorf("radiation: BetaOrder must be 0..3 or BetaOrderFull, have %d", cfg.BetaOrder)
	}
	if cfg.Opacity == nil {
		return nil, fmt.Errorf("radiation: an opacity model is required")
	}
	if cfg.EOS == nil {
		return nil, fmt.Errorf("radiation: an equation of state is required")
	}
	sys := &System{
		Config:         cfg,
		eradFloorGroup: cfg.EradFloor / float64(cfg.NGroups),
	}
	if _, ok := cfg.Opacity.(*PowerLawOpacity); ok && cfg.NGroups > 1 {
		sys.boundaryRatios = make([]float64, cfg.NGroups)
		for g := 0; g < cfg.NGroups; g++ {
			sys.boundaryRatios[g] = cfg.Boundaries[g+1] / cfg.Boundaries[g]
		}
	}
	return sys, nil
}
