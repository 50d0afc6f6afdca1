package Radiation1D

import (
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/notargets/avs/chart2d"
	utils2 "github.com/notargets/avs/utils"
	"gonum.org/v1/gonum/floats"

	"github.com/twomomentrad/radmoment/eos"
	"github.com/twomomentrad/radmoment/radiation"
	"github.com/twomomentrad/radmoment/utils"
)

// NGhost is the number of ghost cells on each side of the domain, enough
// for piecewise-linear reconstruction at the boundary faces.
const NGhost = 2

type CaseType uint8

const (
	CASE_EQUILIBRIUM CaseType = iota
	CASE_PULSE
	CASE_STREAMING
	CASE_MARSHAK
)

var (
	case_names = []string{
		"Matter-Radiation Equilibration",
		"Advecting Radiation Pulse",
		"Free-Streaming Front",
		"Marshak Heating Wave",
	}
)

// Params collects the physical and numerical inputs of a 1D run. Zero
// values are replaced by per-case defaults in NewSolver.
type Params struct {
	CFL       float64
	FinalTime float64
	XMax      float64
	K         int // number of interior cells
	NSubsteps int

	NGroups    int
	Boundaries []float64 // photon energy bin edges in eV, len NGroups+1
	CHatFactor float64   // reduced speed of light, as a fraction of c

	Kappa float64 // constant gray opacity, cm^2/g
	Gamma float64 // adiabatic index
	Mu    float64 // mean molecular weight, g

	Rho0  float64 // background density
	Tgas0 float64 // background gas temperature
	Trad0 float64 // initial radiation temperature

	BetaOrder              int
	A32                    float64
	UseWavespeedCorrection bool

	// RadSource, when set, injects radiation energy at a per-group
	// volumetric rate as a function of position and time.
	RadSource func(x, t float64) []float64
}

type Solver struct {
	Params
	Case CaseType
	Sys  *radiation.System
	Gas  eos.IdealGas

	X      []float64 // cell centers, including ghosts
	Dx     float64
	NT     int     // total cells including ghosts
	Time   float64 // current simulation time
	U, U1  *radiation.State
	prim   *radiation.Primitive
	left   *radiation.Primitive // face-left reconstructed states
	right  *radiation.Primitive // face-right reconstructed states
	fluxA  *radiation.FluxSet
	fluxB  *radiation.FluxSet
	fdiffA *radiation.FluxSet
	fdiffB *radiation.FluxSet
	radSrc [][]float64 // per-group volumetric source, filled when RadSource is set
	maxSig []float64

	pm *utils.PartitionMap

	plotOnce   sync.Once
	chart      *chart2d.Chart2D
	colorMap   *utils2.ColorMap
	frameCount int
	eradScale  float64
	tgasScale  float64
}

func NewSolver(p Params, caseType CaseType, parallelDegree int) (c *Solver) {
	applyDefaults(&p, caseType)

	cfg := radiation.DefaultConfig()
	cfg.NGroups = p.NGroups
	cfg.Boundaries = p.Boundaries
	cfg.CHat = p.CHatFactor * cfg.CLight
	cfg.EradFloor = 1.0e-20
	cfg.BetaOrder = p.BetaOrder
	cfg.A32 = p.A32
	cfg.UseWavespeedCorrection = p.UseWavespeedCorrection

	gas := eos.IdealGas{Gamma: p.Gamma, Mu: p.Mu, Boltzmann: radiation.BoltzmannCGS}
	cfg.EOS = gas
	kappa := p.Kappa
	nGroups := p.NGroups
	cfg.Opacity = &radiation.UserOpacity{
		Planck: func(rho, tgas float64) []float64 {
			return utils.ConstArray(nGroups, kappa)
		},
	}

	sys, err := radiation.NewSystem(cfg)
	if err != nil {
		panic(err)
	}

	NT := p.K + 2*NGhost
	c = &Solver{
		Params: p,
		Case:   caseType,
		Sys:    sys,
		Gas:    gas,
		NT:     NT,
		Dx:     p.XMax / float64(p.K),
		X:      make([]float64, NT),
		U:      radiation.NewState(p.NGroups, 0, NT),
		U1:     radiation.NewState(p.NGroups, 0, NT),
		prim:   radiation.NewPrimitive(p.NGroups, NT),
		left:   radiation.NewPrimitive(p.NGroups, NT+1),
		right:  radiation.NewPrimitive(p.NGroups, NT+1),
		fluxA:  radiation.NewFluxSet(p.NGroups, NT+1),
		fluxB:  radiation.NewFluxSet(p.NGroups, NT+1),
		fdiffA: radiation.NewFluxSet(p.NGroups, NT+1),
		fdiffB: radiation.NewFluxSet(p.NGroups, NT+1),
		maxSig: make([]float64, NT),
		pm:     utils.NewPartitionMap(parallelDegree, p.K),
	}
	if p.RadSource != nil {
		c.radSrc = make([][]float64, p.NGroups)
		for g := range c.radSrc {
			c.radSrc[g] = make([]float64, NT)
		}
	}
	for i := 0; i < NT; i++ {
		c.X[i] = (float64(i-NGhost) + 0.5) * c.Dx
	}
	fmt.Printf("Two-Moment Radiation Transport in 1 Dimension\nCase: %s\n", case_names[c.Case])
	fmt.Printf("CFL = %8.4f, Num Groups = %d, Num Cells K = %d, c_hat/c = %6.4f\n\n", p.CFL, p.NGroups, p.K, p.CHatFactor)
	c.initialize()
	return
}

func applyDefaults(p *Params, caseType CaseType) {
	setF := func(v *float64, def float64) {
		if *v == 0 {
			*v = def
		}
	}
	setI := func(v *int, def int) {
		if *v == 0 {
			*v = def
		}
	}
	setI(&p.K, 100)
	setI(&p.NGroups, 1)
	setI(&p.NSubsteps, 1)
	setF(&p.CFL, 0.8)
	setF(&p.CHatFactor, 1.0)
	setF(&p.Gamma, 5.0/3.0)
	setF(&p.Mu, radiation.HydrogenMassCGS)
	setF(&p.A32, 0.5)
	if p.BetaOrder == 0 && caseType != CASE_STREAMING {
		p.BetaOrder = 1
	}
	if p.Boundaries == nil {
		p.Boundaries = logSpacedBoundaries(1.0e-3, 1.0e3, p.NGroups)
	}
	switch caseType {
	case CASE_EQUILIBRIUM:
		setF(&p.XMax, 1.0)
		setF(&p.FinalTime, 1.0e-7)
		setF(&p.Kappa, 100.0)
		setF(&p.Rho0, 1.0e-7)
		setF(&p.Tgas0, 1.0e6)
		setF(&p.Trad0, 1.0e7)
	case CASE_PULSE:
		setF(&p.XMax, 1.0e5)
		setF(&p.FinalTime, 4.8e-5)
		setF(&p.Kappa, 180.0)
		setF(&p.Rho0, 1.2)
		setF(&p.Tgas0, 1.0e7)
		setF(&p.Trad0, 1.0e7)
	case CASE_STREAMING:
		setF(&p.XMax, 1.0)
		setF(&p.FinalTime, 2.0e-11)
		setF(&p.Kappa, 1.0e-10)
		setF(&p.Rho0, 1.0)
		setF(&p.Tgas0, 1.0e4)
		setF(&p.Trad0, 1.0e4)
	case CASE_MARSHAK:
		setF(&p.XMax, 1.0)
		setF(&p.FinalTime, 3.0e-11)
		setF(&p.Kappa, 1.0e3)
		setF(&p.Rho0, 1.0e-2)
		setF(&p.Tgas0, 1.0e4)
		setF(&p.Trad0, 1.0e4)
	}
}

// logSpacedBoundaries builds nGroups log-spaced photon energy bins between
// eMin and eMax, in eV.
func logSpacedBoundaries(eMin, eMax float64, nGroups int) []float64 {
	b := make([]float64, nGroups+1)
	ratio := math.Pow(eMax/eMin, 1.0/float64(nGroups))
	b[0] = eMin
	for g := 1; g <= nGroups; g++ {
		b[g] = b[g-1] * ratio
	}
	return b
}

func (c *Solver) initialize() {
	var (
		sys  = c.Sys
		aRad = sys.RadConstant
	)
	for i := 0; i < c.NT; i++ {
		tgas := c.Tgas0
		trad := c.Trad0
		if c.Case == CASE_PULSE {
			// Gaussian temperature pulse in local equilibrium
			w := 0.05 * c.XMax
			x := c.X[i] - 0.5*c.XMax
			tgas = c.Tgas0 * (1.0 + 1.0*math.Exp(-x*x/(2.0*w*w)))
			trad = tgas
		}
		if c.Case == CASE_STREAMING {
			trad = 0 // cold, near-vacuum radiation field ahead of the front
		}
		// CASE_MARSHAK starts the absorbing medium in cold equilibrium,
		// trad = tgas
		c.U.Rho[i] = c.Rho0
		eint := c.Gas.EintFromTgas(c.Rho0, tgas)
		c.U.Eint[i] = eint
		c.U.Etot[i] = eint
		frac := sys.PlanckEnergyFractions(trad)
		erad := sys.ThermalRadiation(trad, frac)
		for g := 0; g < sys.NGroups; g++ {
			c.U.EradG[g][i] = erad[g]
		}
	}
	c.fillBoundaries(c.U)
	c.U1.CopyFrom(c.U)
	c.eradScale = maxField(c.U.EradG)
	c.tgasScale = c.Tgas0 * 2.5
}

func maxField(f [][]float64) (fmax float64) {
	for g := range f {
		fmax = math.Max(fmax, floats.Max(f[g]))
	}
	return
}

// fillBoundaries populates the ghost cells of u according to the case:
// periodic for the equilibration and pulse problems, an incident streaming
// field on the left and outflow on the right for the front and Marshak
// problems.
func (c *Solver) fillBoundaries(u *radiation.State) {
	var (
		sys = c.Sys
		ng  = NGhost
		K   = c.K
	)
	switch c.Case {
	case CASE_EQUILIBRIUM, CASE_PULSE:
		for n := 0; n < ng; n++ {
			c.copyCell(u, K+n, n)       // left ghosts from the right interior
			c.copyCell(u, ng+n, ng+K+n) // right ghosts from the left interior
		}
	case CASE_STREAMING, CASE_MARSHAK:
		eradInc := sys.RadConstant * utils.POW(c.Tgas0*3.0, 4)
		for n := 0; n < ng; n++ {
			c.copyCell(u, ng, n) // start from the first interior cell
			for g := 0; g < sys.NGroups; g++ {
				frac := sys.PlanckEnergyFractions(c.Tgas0 * 3.0)
				u.EradG[g][n] = eradInc * frac[g]
				u.FradX[g][n] = sys.CLight * u.EradG[g][n]
				u.FradY[g][n] = 0
				u.FradZ[g][n] = 0
			}
			c.copyCell(u, ng+K-1, ng+K+n) // outflow on the right
		}
	}
}

func (c *Solver) copyCell(u *radiation.State, from, to int) {
	u.Rho[to] = u.Rho[from]
	u.MomX[to] = u.MomX[from]
	u.MomY[to] = u.MomY[from]
	u.MomZ[to] = u.MomZ[from]
	u.Etot[to] = u.Etot[from]
	u.Eint[to] = u.Eint[from]
	for g := 0; g < c.Sys.NGroups; g++ {
		u.EradG[g][to] = u.EradG[g][from]
		u.FradX[g][to] = u.FradX[g][from]
		u.FradY[g][to] = u.FradY[g][from]
		u.FradZ[g][to] = u.FradZ[g][from]
	}
}

func (c *Solver) CalculateDT(Time float64) (dt float64) {
	c.Sys.ComputeMaxSignalSpeed(c.maxSig, NGhost, NGhost+c.K)
	dt = c.CFL * c.Dx / floats.Max(c.maxSig[NGhost:NGhost+c.K])
	if dt+Time > c.FinalTime {
		dt = c.FinalTime - Time
	}
	return
}

// parallelInterior runs f over the interior cell partitions, passing global
// [lo,hi) cell ranges.
func (c *Solver) parallelInterior(f func(lo, hi int)) {
	var wg sync.WaitGroup
	for np := 0; np < c.pm.ParallelDegree; np++ {
		kMin, kMax := c.pm.GetBucketRange(np)
		wg.Add(1)
		go func(lo, hi int) {
			defer wg.Done()
			f(lo, hi)
		}(NGhost+kMin, NGhost+kMax)
	}
	wg.Wait()
}

// parallelFaces runs f over face partitions; the final partition picks up
// the rightmost domain face.
func (c *Solver) parallelFaces(f func(lo, hi int)) {
	var wg sync.WaitGroup
	for np := 0; np < c.pm.ParallelDegree; np++ {
		kMin, kMax := c.pm.GetBucketRange(np)
		hi := NGhost + kMax
		if np == c.pm.ParallelDegree-1 {
			hi++
		}
		wg.Add(1)
		go func(lo, hi int) {
			defer wg.Done()
			f(lo, hi)
		}(NGhost+kMin, hi)
	}
	wg.Wait()
}

// computeFaceFluxes reconstructs face states from u and solves the Riemann
// problems into flux/fdiff.
func (c *Solver) computeFaceFluxes(u *radiation.State, flux, fdiff *radiation.FluxSet) {
	c.Sys.ConservedToPrimitive(u, c.prim, 0, c.NT)
	c.parallelFaces(func(lo, hi int) {
		c.reconstruct(lo, hi)
		c.Sys.ComputeFluxes(radiation.X1, flux, fdiff, c.left, c.right, u, c.Dx, lo, hi)
	})
}

// Step advances the solution by one IMEX PD-ARS time step of size dt.
func (c *Solver) Step(dt float64) {
	var (
		sys = c.Sys
		ng  = NGhost
		K   = c.K
	)
	if c.RadSource != nil {
		for i := ng; i < ng+K; i++ {
			rate := c.RadSource(c.X[i], c.Time)
			for g := 0; g < sys.NGroups; g++ {
				c.radSrc[g][i] = rate[g]
			}
		}
	}

	// Stage 1: forward-Euler predictor plus implicit exchange over dt,
	// with the gas update scaled by a32.
	c.fillBoundaries(c.U)
	c.computeFaceFluxes(c.U, c.fluxA, c.fdiffA)
	c.U1.CopyFrom(c.U)
	fluxOld := []radiation.DimFlux{{Flux: c.fluxA, FluxDiffusive: c.fdiffA, Dx: c.Dx}}
	c.parallelInterior(func(lo, hi int) {
		sys.PredictStep(c.U, c.U1, fluxOld, dt, lo, hi)
		sys.AddSourceTerms(c.U1, c.radSrc, dt, 1, lo, hi)
	})

	// Stage 2: corrector combination of both flux evaluations, then the
	// remaining implicit exchange over (1-a32) dt.
	c.fillBoundaries(c.U1)
	c.computeFaceFluxes(c.U1, c.fluxB, c.fdiffB)
	fluxNew := []radiation.DimFlux{{Flux: c.fluxB, FluxDiffusive: c.fdiffB, Dx: c.Dx}}
	c.parallelInterior(func(lo, hi int) {
		sys.AddFluxesRK2(c.U1, c.U, c.U1, fluxOld, fluxNew, dt, lo, hi)
		sys.AddSourceTerms(c.U1, c.radSrc, dt, 2, lo, hi)
	})

	// swap the updated interior into the running state
	for i := ng; i < ng+K; i++ {
		c.copyCellAcross(c.U1, c.U, i)
	}
}

func (c *Solver) copyCellAcross(from, to *radiation.State, i int) {
	to.Rho[i] = from.Rho[i]
	to.MomX[i] = from.MomX[i]
	to.MomY[i] = from.MomY[i]
	to.MomZ[i] = from.MomZ[i]
	to.Etot[i] = from.Etot[i]
	to.Eint[i] = from.Eint[i]
	for g := 0; g < c.Sys.NGroups; g++ {
		to.EradG[g][i] = from.EradG[g][i]
		to.FradX[g][i] = from.FradX[g][i]
		to.FradY[g][i] = from.FradY[g][i]
		to.FradZ[g][i] = from.FradZ[g][i]
	}
}

func (c *Solver) Run(showGraph bool, graphDelay ...time.Duration) {
	var (
		logFrequency = 50
		tstep        int
	)
	if c.NSubsteps >= 10000 {
		panic("Radiation1D: excessive substep count")
	}
	for c.Time < c.FinalTime {
		dt := c.CalculateDT(c.Time)
		dtSub := dt / float64(c.NSubsteps)
		for s := 0; s < c.NSubsteps; s++ {
			c.Step(dtSub)
			c.Time += dtSub
		}
		c.Plot(c.Time, showGraph, graphDelay)
		tstep++
		isDone := math.Abs(c.Time-c.FinalTime) < 1.e-12*c.FinalTime
		if tstep%logFrequency == 0 || isDone {
			mid := NGhost + c.K/2
			tgas := c.Gas.TgasFromEint(c.U.Rho[mid], c.U.Eint[mid], nil)
			eradTot := 0.0
			for g := 0; g < c.Sys.NGroups; g++ {
				eradTot += c.U.EradG[g][mid]
			}
			fmt.Printf("Time = %10.4e, dt = %10.4e, tstep = %6d, Tgas_mid = %10.4e, Erad_mid = %10.4e\n",
				c.Time, dt, tstep, tgas, eradTot)
		}
	}
	return
}

func (c *Solver) Plot(timeT float64, showGraph bool, graphDelay []time.Duration) {
	var (
		fmin, fmax = float32(-0.1), float32(2.6)
	)
	if !showGraph {
		return
	}
	c.plotOnce.Do(func() {
		c.chart = chart2d.NewChart2D(1920, 1280, float32(0), float32(c.XMax), fmin, fmax)
		c.colorMap = utils2.NewColorMap(-1, 1, 1)
		go c.chart.Plot()
	})
	x := make([]float64, c.K)
	eradN := make([]float64, c.K)
	tgasN := make([]float64, c.K)
	for k := 0; k < c.K; k++ {
		i := NGhost + k
		x[k] = c.X[i]
		for g := 0; g < c.Sys.NGroups; g++ {
			eradN[k] += c.U.EradG[g][i]
		}
		eradN[k] /= c.eradScale
		tgasN[k] = c.Gas.TgasFromEint(c.U.Rho[i], c.U.Eint[i], nil) / c.tgasScale
	}
	pSeries := func(field []float64, name string, color float32) {
		if err := c.chart.AddSeries(name, x, field,
			chart2d.NoGlyph, chart2d.Solid, c.colorMap.GetRGB(color)); err != nil {
			panic("unable to add graph series")
		}
	}
	pSeries(eradN, "Erad", -0.7)
	pSeries(tgasN, "Tgas", 0.7)
	c.frameCount++
	if len(graphDelay) != 0 {
		time.Sleep(graphDelay[0])
	}
	return
}
