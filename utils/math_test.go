package utils

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPOW(t *testing.T) {
	for p := -12; p <= 12; p++ {
		assert.InEpsilon(t, math.Pow(1.7, float64(p)), POW(1.7, p), 1.e-14)
	}
	assert.Equal(t, 1.0, POW(3.0, 0))

	v := ConstArray(4, 2.5)
	assert.Equal(t, []float64{2.5, 2.5, 2.5, 2.5}, v)
}
