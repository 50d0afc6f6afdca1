package radiation

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIntegratePlanck(t *testing.T) {
	assert.True(t, near(0.0, integratePlanck(0)))
	assert.True(t, near(planckIntegralTotal, integratePlanck(200.0)))
	// Integrate[x^3/(Exp[x]-1), {x, 0, 1}] from the Bernoulli series
	assert.True(t, near(0.224805, integratePlanck(1.0), 1.e-5))
	prev := 0.0
	for _, x := range []float64{0.1, 0.5, 1, 2, 5, 10, 50, 100} {
		y := integratePlanck(x)
		assert.True(t, y > prev)
		prev = y
	}
}

func TestPlanckEnergyFractions(t *testing.T) {
	{ // single group is exactly [1.0], no quadrature involved
		sys := newTestSystem(t, testConfig(1, nil))
		frac := sys.PlanckEnergyFractions(300.0)
		assert.Equal(t, []float64{1.0}, frac)
	}
	{ // two groups split at kT: known blackbody fraction below x=1
		cfg := testConfig(2, []float64{1.0e-3, 1.0, 1.0e3})
		sys := newTestSystem(t, cfg)
		tgas := ErgPerEV / BoltzmannCGS // kT = 1 eV
		frac := sys.PlanckEnergyFractions(tgas)
		assert.True(t, near(1.0, frac[0]+frac[1]))
		assert.True(t, near(0.224805/planckIntegralTotal, frac[0], 1.e-3))
	}
	{ // fractions sum to one across many groups
		n := 8
		cfg := testConfig(n, nil)
		sys := newTestSystem(t, cfg)
		frac := sys.PlanckEnergyFractions(1.0e4)
		sum := 0.0
		for _, f := range frac {
			assert.True(t, f >= 0 && f <= 1)
			sum += f
		}
		assert.True(t, near(1.0, sum))
	}
}

func TestThermalRadiation(t *testing.T) {
	sys := newTestSystem(t, testConfig(1, nil))
	tgas := 1.0e6
	erad := sys.ThermalRadiation(tgas, []float64{1.0})
	assert.True(t, near(sys.RadConstant*math.Pow(tgas, 4), erad[0]))
	// floor engages at zero temperature
	erad = sys.ThermalRadiation(0, []float64{0.0})
	assert.True(t, near(sys.eradFloorGroup, erad[0]))
	// derivative is 4 emission / T
	d := sys.ThermalRadiationTempDerivative(tgas, []float64{1.0})
	assert.True(t, near(4.0*sys.RadConstant*math.Pow(tgas, 3), d[0]))
	// when the floor engages the derivative follows the floored emission
	d = sys.ThermalRadiationTempDerivative(tgas, []float64{0.0})
	assert.True(t, near(4.0*sys.eradFloorGroup/tgas, d[0]))
}
