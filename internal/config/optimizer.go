package config

import (
	"fmt"
	"strings"

	"github.com/iwvelando/qc-net-income/pkg/constants"
	"github.com/iwvelando/qc-net-income/pkg/taxengine"
)

// GrossUpTarget asks for the gross income that yields TargetNet.
type GrossUpTarget struct {
	Name          string  `yaml:"name" mapstructure:"name"`
	TargetNet     float64 `yaml:"targetNet" mapstructure:"targetNet"`
	Year          int     `yaml:"year,omitempty" mapstructure:"year"`
	Tolerance     float64 `yaml:"tolerance,omitempty" mapstructure:"tolerance"`
	MaxIterations int     `yaml:"maxIterations,omitempty" mapstructure:"maxIterations"`
}

// Normalize ensures defaults are applied before the target is solved.
func (g *GrossUpTarget) Normalize() {
	if g == nil {
		return
	}

	g.Name = strings.TrimSpace(g.Name)
	if g.Name == "" {
		g.Name = fmt.Sprintf("net %.2f", g.TargetNet)
	}
	if g.Tolerance <= 0 {
		g.Tolerance = constants.DefaultSolverTolerance
	}
	if g.MaxIterations <= 0 {
		g.MaxIterations = constants.DefaultSolverMaxIterations
	}
}

// Validate returns an error when the target cannot be solved.
func (g *GrossUpTarget) Validate() error {
	if g == nil {
		return fmt.Errorf("gross-up target cannot be nil")
	}

	g.Normalize()

	if err := taxengine.ValidateIncome(g.TargetNet); err != nil {
		return fmt.Errorf("gross-up %q target: %w", g.Name, err)
	}
	if g.Tolerance >= 1 {
		return fmt.Errorf("gross-up %q tolerance %.2f must be below one dollar", g.Name, g.Tolerance)
	}
	if g.MaxIterations > constants.MaxSolverIterations {
		return fmt.Errorf("gross-up %q maxIterations %d exceeds the limit of %d",
			g.Name, g.MaxIterations, constants.MaxSolverIterations)
	}
	return nil
}
