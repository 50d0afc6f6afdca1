/*
Copyright © 2020 NAME HERE <EMAIL ADDRESS>

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"fmt"
	"io/ioutil"
	"runtime"
	"time"

	"github.com/pkg/profile"
	"github.com/spf13/cobra"

	"github.com/twomomentrad/radmoment/InputParameters"
	"github.com/twomomentrad/radmoment/model_problems/Radiation1D"
)

// OneDCmd represents the 1D command
var OneDCmd = &cobra.Command{
	Use:   "1D",
	Short: "One Dimensional Radiation Transport Solutions",
	Long: `
Executes the two-moment radiation transport solver for a variety of model problems,

radmoment 1D `,
	Run: func(cmd *cobra.Command, args []string) {
		m1d := &Model1D{}
		fmt.Println("1D called")
		caseInt, _ := cmd.Flags().GetInt("case")
		m1d.Case = Radiation1D.CaseType(caseInt)
		m1d.Params.K, _ = cmd.Flags().GetInt("k")
		m1d.Params.NGroups, _ = cmd.Flags().GetInt("nGroups")
		m1d.Params.CFL, _ = cmd.Flags().GetFloat64("CFL")
		m1d.Params.FinalTime, _ = cmd.Flags().GetFloat64("finalTime")
		m1d.Params.XMax, _ = cmd.Flags().GetFloat64("xMax")
		m1d.Params.CHatFactor, _ = cmd.Flags().GetFloat64("chatFactor")
		m1d.Params.Kappa, _ = cmd.Flags().GetFloat64("kappa")
		m1d.Params.NSubsteps, _ = cmd.Flags().GetInt("nSub")
		m1d.ParallelDegree, _ = cmd.Flags().GetInt("nCPU")
		m1d.Graph, _ = cmd.Flags().GetBool("graph")
		delay, _ := cmd.Flags().GetInt("delay")
		m1d.Delay = time.Duration(delay) * time.Millisecond
		if inputFile, _ := cmd.Flags().GetString("input"); inputFile != "" {
			loadInputFile(inputFile, m1d)
		}
		if prof, _ := cmd.Flags().GetBool("profile"); prof {
			defer profile.Start(profile.CPUProfile).Stop()
		}
		Run1D(m1d)
	},
}

func init() {
	rootCmd.AddCommand(OneDCmd)
	OneDCmd.Flags().IntP("case", "c", 0, "Case to run: 0 = Matter-Radiation Equilibration, 1 = Advecting Pulse, 2 = Free-Streaming Front, 3 = Marshak Heating Wave")
	OneDCmd.Flags().IntP("k", "k", 0, "Number of cells in model")
	OneDCmd.Flags().IntP("nGroups", "g", 0, "Number of photon groups")
	OneDCmd.Flags().IntP("nSub", "s", 0, "Radiation substeps per time step")
	OneDCmd.Flags().IntP("nCPU", "p", runtime.NumCPU(), "Parallel degree for the cell partition")
	OneDCmd.Flags().IntP("delay", "d", 0, "milliseconds of delay for plotting")
	OneDCmd.Flags().Float64("CFL", 0, "CFL - increase for speedup, decrease for stability")
	OneDCmd.Flags().Float64("finalTime", 0, "FinalTime - the target end time for the sim")
	OneDCmd.Flags().Float64("xMax", 0, "Domain length in cm")
	OneDCmd.Flags().Float64("chatFactor", 0, "Reduced speed of light as a fraction of c")
	OneDCmd.Flags().Float64("kappa", 0, "Gray opacity in cm^2/g")
	OneDCmd.Flags().StringP("input", "I", "", "YAML input file with run parameters")
	OneDCmd.Flags().Bool("graph", false, "display a graph while computing solution")
	OneDCmd.Flags().Bool("profile", false, "capture a CPU profile of the run")
}

type Model1D struct {
	Params         Radiation1D.Params
	Case           Radiation1D.CaseType
	ParallelDegree int
	Delay          time.Duration
	Graph          bool
}

func loadInputFile(fileName string, m1d *Model1D) {
	data, err := ioutil.ReadFile(fileName)
	if err != nil {
		panic(fmt.Errorf("unable to read input file %s: %w", fileName, err))
	}
	var rp InputParameters.RadiationParameters
	if err = rp.Parse(data); err != nil {
		panic(fmt.Errorf("unable to parse input file %s: %w", fileName, err))
	}
	rp.Print()
	m1d.Case = caseFromName(rp.InitType, m1d.Case)
	p := &m1d.Params
	p.CFL = pick(rp.CFL, p.CFL)
	p.FinalTime = pick(rp.FinalTime, p.FinalTime)
	p.XMax = pick(rp.XMax, p.XMax)
	p.CHatFactor = pick(rp.CHatFactor, p.CHatFactor)
	p.Kappa = pick(rp.Kappa, p.Kappa)
	p.Gamma = pick(rp.Gamma, p.Gamma)
	p.Mu = pick(rp.Mu, p.Mu)
	p.Rho0 = pick(rp.Rho0, p.Rho0)
	p.Tgas0 = pick(rp.Tgas0, p.Tgas0)
	p.Trad0 = pick(rp.Trad0, p.Trad0)
	p.A32 = pick(rp.A32, p.A32)
	if rp.K != 0 {
		p.K = rp.K
	}
	if rp.NGroups != 0 {
		p.NGroups = rp.NGroups
	}
	if rp.NSubsteps != 0 {
		p.NSubsteps = rp.NSubsteps
	}
	if rp.BetaOrder != 0 {
		p.BetaOrder = rp.BetaOrder
	}
	if len(rp.GroupBoundaries) != 0 {
		p.Boundaries = rp.GroupBoundaries
	}
	p.UseWavespeedCorrection = rp.UseWavespeedCorrection
}

func pick(fromFile, fromFlag float64) float64 {
	if fromFile != 0 {
		return fromFile
	}
	return fromFlag
}

func caseFromName(name string, fallback Radiation1D.CaseType) Radiation1D.CaseType {
	switch name {
	case "equilibrium":
		return Radiation1D.CASE_EQUILIBRIUM
	case "pulse":
		return Radiation1D.CASE_PULSE
	case "streaming":
		return Radiation1D.CASE_STREAMING
	case "marshak":
		return Radiation1D.CASE_MARSHAK
	case "":
		return fallback
	}
	panic(fmt.Sprintf("unknown InitType %q", name))
}

func Run1D(m1d *Model1D) {
	C := Radiation1D.NewSolver(m1d.Params, m1d.Case, m1d.ParallelDegree)
	C.Run(m1d.Graph, m1d.Delay)
}
