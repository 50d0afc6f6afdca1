package radiation

import (
	"fmt"
	"math"
)

// State holds the cell-centered conserved fields of the coupled
// gas-radiation system for a flat range of cells (including any ghost
// cells the caller carries). Radiation fields are group-major.
type State struct {
	K int // number of cells, including ghosts

	// gas
	Rho, MomX, MomY, MomZ []float64
	Etot, Eint            []float64
	Scalars               [][]float64 // advected mass scalars, [nScalars][K]; may be empty

	// radiation, [NGroups][K]
	EradG               [][]float64 // radiation energy density per group
	FradX, FradY, FradZ [][]float64 // radiation flux per group
}

// NewState allocates zeroed storage for K cells.
func NewState(nGroups, nScalars, K int) *State {
	s := &State{
		K:       K,
		Rho:     make([]float64, K),
		MomX:    make([]float64, K),
		MomY:    make([]float64, K),
		MomZ:    make([]float64, K),
		Etot:    make([]float64, K),
		Eint:    make([]float64, K),
		Scalars: make([][]float64, nScalars),
		EradG:   make([][]float64, nGroups),
		FradX:   make([][]float64, nGroups),
		FradY:   make([][]float64, nGroups),
		FradZ:   make([][]float64, nGroups),
	}
	for n := range s.Scalars {
		s.Scalars[n] = make([]float64, K)
	}
	for g := 0; g < nGroups; g++ {
		s.EradG[g] = make([]float64, K)
		s.FradX[g] = make([]float64, K)
		s.FradY[g] = make([]float64, K)
		s.FradZ[g] = make([]float64, K)
	}
	return s
}

// CopyFrom copies every field of src into s. Shapes must match.
func (s *State) CopyFrom(src *State) {
	copy(s.Rho, src.Rho)
	copy(s.MomX, src.MomX)
	copy(s.MomY, src.MomY)
	copy(s.MomZ, src.MomZ)
	copy(s.Etot, src.Etot)
	copy(s.Eint, src.Eint)
	for n := range s.Scalars {
		copy(s.Scalars[n], src.Scalars[n])
	}
	for g := range s.EradG {
		copy(s.EradG[g], src.EradG[g])
		copy(s.FradX[g], src.FradX[g])
		copy(s.FradY[g], src.FradY[g])
		copy(s.FradZ[g], src.FradZ[g])
	}
}

// MassScalars gathers the mass-scalar values of cell i. Returns nil when the
// state carries none.
func (s *State) MassScalars(i int) []float64 {
	if len(s.Scalars) == 0 {
		return nil
	}
	ms := make([]float64, len(s.Scalars))
	for n := range s.Scalars {
		ms[n] = s.Scalars[n][i]
	}
	return ms
}

// Primitive holds the primitive radiation fields: energy density unchanged,
// fluxes divided by c*E to give the dimensionless reduced flux.
type Primitive struct {
	EradG      [][]float64
	Fx, Fy, Fz [][]float64 // reduced flux components
}

func NewPrimitive(nGroups, K int) *Primitive {
	p := &Primitive{
		EradG: make([][]float64, nGroups),
		Fx:    make([][]float64, nGroups),
		Fy:    make([][]float64, nGroups),
		Fz:    make([][]float64, nGroups),
	}
	for g := 0; g < nGroups; g++ {
		p.EradG[g] = make([]float64, K)
		p.Fx[g] = make([]float64, K)
		p.Fy[g] = make([]float64, K)
		p.Fz[g] = make([]float64, K)
	}
	return p
}

// ConservedToPrimitive converts cells [lo,hi) of cons into prim. A
// non-positive radiation energy indicates an upstream defect and is fatal.
func (sys *System) ConservedToPrimitive(cons *State, prim *Primitive, lo, hi int) {
	c := sys.CLight
	for g := 0; g < sys.NGroups; g++ {
		er, fx, fy, fz := cons.EradG[g], cons.FradX[g], cons.FradY[g], cons.FradZ[g]
		pe, px, py, pz := prim.EradG[g], prim.Fx[g], prim.Fy[g], prim.Fz[g]
		for i := lo; i < hi; i++ {
			E := er[i]
			if !(E > 0) {
				panic(fmt.Sprintf("radiation: non-positive radiation energy %g in cell %d group %d", E, i, g))
			}
			pe[i] = E
			px[i] = fx[i] / (c * E)
			py[i] = fy[i] / (c * E)
			pz[i] = fz[i] / (c * E)
		}
	}
}

// ComputeMaxSignalSpeed fills maxSignal for cells [lo,hi). The radiation
// system advances every characteristic at the reduced speed of light.
func (sys *System) ComputeMaxSignalSpeed(maxSignal []float64, lo, hi int) {
	for i := lo; i < hi; i++ {
		maxSignal[i] = sys.CHat
	}
}

// isStateValid reports whether cell i carries an admissible radiation state
// in every group: positive energy and a causal reduced flux f <= 1.
func (sys *System) isStateValid(cons *State, i int) bool {
	c := sys.CLight
	for g := 0; g < sys.NGroups; g++ {
		E := cons.EradG[g][i]
		Fx, Fy, Fz := cons.FradX[g][i], cons.FradY[g][i], cons.FradZ[g][i]
		Fnorm := math.Sqrt(Fx*Fx + Fy*Fy + Fz*Fz)
		if !(E > 0) || Fnorm/(c*E) > 1 {
			return false
		}
	}
	return true
}

// amendRadState repairs an inadmissible cell: the energy is floored and the
// flux rescaled onto the causal sphere |F| = c*E, preserving direction.
func (sys *System) amendRadState(cons *State, i int) {
	c := sys.CLight
	for g := 0; g < sys.NGroups; g++ {
		E := cons.EradG[g][i]
		if E < sys.eradFloorGroup {
			E = sys.eradFloorGroup
			cons.EradG[g][i] = E
		}
		Fx, Fy, Fz := cons.FradX[g][i], cons.FradY[g][i], cons.FradZ[g][i]
		if Fx*Fx+Fy*Fy+Fz*Fz > c*c*E*E {
			Fnorm := math.Sqrt(Fx*Fx + Fy*Fy + Fz*Fz)
			cons.FradX[g][i] = Fx / Fnorm * c * E
			cons.FradY[g][i] = Fy / Fnorm * c * E
			cons.FradZ[g][i] = Fz / Fnorm * c * E
		}
	}
}

// EintFromEtot subtracts the bulk kinetic energy from the total gas energy.
// A non-positive result indicates an unphysical state and is fatal.
func EintFromEtot(rho, momX, momY, momZ, etot float64) float64 {
	pSq := momX*momX + momY*momY + momZ*momZ
	eint := etot - pSq/(2.0*rho)
	if !(eint > 0) {
		panic("radiation: gas internal energy is not positive")
	}
	return eint
}

// EtotFromEint adds the bulk kinetic energy back onto the internal energy.
func EtotFromEint(rho, momX, momY, momZ, eint float64) float64 {
	pSq := momX*momX + momY*momY + momZ*momZ
	return eint + pSq/(2.0*rho)
}
