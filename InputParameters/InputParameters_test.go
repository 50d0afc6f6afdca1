package InputParameters

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParameters(t *testing.T) {
	var (
		rp   RadiationParameters
		data = `
Title: "Advecting Pulse"
CFL: 0.4
FinalTime: 4.8e-5
XMax: 1.e5
K: 128
InitType: pulse
NGroups: 4
GroupBoundaries: [1.e-3, 1., 10., 100., 1.e3]
CHatFactor: 0.1
Kappa: 180.
Rho0: 1.2
Tgas0: 1.e7
Trad0: 1.e7
A32: 0.5
UseWavespeedCorrection: true
`
	)
	assert.NoError(t, rp.Parse([]byte(data)))
	assert.Equal(t, "Advecting Pulse", rp.Title)
	assert.Equal(t, 0.4, rp.CFL)
	assert.Equal(t, 128, rp.K)
	assert.Equal(t, "pulse", rp.InitType)
	assert.Equal(t, 4, rp.NGroups)
	assert.Equal(t, []float64{1.e-3, 1., 10., 100., 1.e3}, rp.GroupBoundaries)
	assert.Equal(t, 0.1, rp.CHatFactor)
	assert.True(t, rp.UseWavespeedCorrection)
	rp.Print()
}
