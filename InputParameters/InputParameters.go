package InputParameters

import (
	"fmt"

	"github.com/ghodss/yaml"
)

// Parameters obtained from the YAML input file
type RadiationParameters struct {
	Title                  string    `yaml:"Title"`
	CFL                    float64   `yaml:"CFL"`
	FinalTime              float64   `yaml:"FinalTime"`
	XMax                   float64   `yaml:"XMax"`
	K                      int       `yaml:"K"`
	NSubsteps              int       `yaml:"NSubsteps"`
	InitType               string    `yaml:"InitType"`
	NGroups                int       `yaml:"NGroups"`
	GroupBoundaries        []float64 `yaml:"GroupBoundaries"` // photon energy bin edges in eV
	CHatFactor             float64   `yaml:"CHatFactor"`      // reduced speed of light over c
	Kappa                  float64   `yaml:"Kappa"`           // gray opacity, cm^2/g
	Gamma                  float64   `yaml:"Gamma"`
	Mu                     float64   `yaml:"Mu"` // mean molecular weight, g
	Rho0                   float64   `yaml:"Rho0"`
	Tgas0                  float64   `yaml:"Tgas0"`
	Trad0                  float64   `yaml:"Trad0"`
	BetaOrder              int       `yaml:"BetaOrder"`
	A32                    float64   `yaml:"A32"`
	UseWavespeedCorrection bool      `yaml:"UseWavespeedCorrection"`
}

func (rp *RadiationParameters) Parse(data []byte) error {
	return yaml.Unmarshal(data, rp)
}

func (rp *RadiationParameters) Print() {
	fmt.Printf("\"%s\"\t\t= Title\n", rp.Title)
	fmt.Printf("%8.5f\t\t= CFL\n", rp.CFL)
	fmt.Printf("%8.5g\t\t= FinalTime\n", rp.FinalTime)
	fmt.Printf("%8.5g\t\t= XMax\n", rp.XMax)
	fmt.Printf("[%s]\t= InitType\n", rp.InitType)
	fmt.Printf("[%d]\t\t\t\t= K (number of cells)\n", rp.K)
	fmt.Printf("[%d]\t\t\t\t= NGroups\n", rp.NGroups)
	if len(rp.GroupBoundaries) != 0 {
		fmt.Printf("%v\t= GroupBoundaries (eV)\n", rp.GroupBoundaries)
	}
	fmt.Printf("%8.5f\t\t= CHatFactor\n", rp.CHatFactor)
	fmt.Printf("%8.5g\t\t= Kappa\n", rp.Kappa)
	fmt.Printf("%8.5g\t\t= Rho0\n", rp.Rho0)
	fmt.Printf("%8.5g\t\t= Tgas0\n", rp.Tgas0)
	fmt.Printf("%8.5g\t\t= Trad0\n", rp.Trad0)
}
