// Package domain defines the design-space types shared by every stage of the
// hexsweep pipeline and the validation gate applied before any solver job is
// launched. All quantities use cm-based consistent units: force in N, length
// in cm, stress in N/cm², density in kg/cm³.
package domain

import (
	"fmt"
	"strings"
)

// Documented parameter bounds for the design space. Inside these bounds the
// generated lattice is guaranteed non-self-intersecting; outside them the
// generator refuses to run rather than guess.
const (
	BetaMin  = 1.0 / 20.0
	BetaMax  = 1.0 / 5.0
	ThetaMin = 10.0 // degrees
	ThetaMax = 30.0 // degrees
)

// Material holds the beam material constants.
type Material struct {
	YoungsModulus float64 `json:"youngs_modulus"` // E, N/cm²
	PoissonsRatio float64 `json:"poissons_ratio"`
	Density       float64 `json:"density"`      // kg/cm³
	YieldStress   float64 `json:"yield_stress"` // σ_yield, N/cm²
}

// AluminumB4C is the aluminum / boron-carbide composite the connecting-rod
// core is designed around: E = 70 GPa, σ_yield = 276 MPa, ρ = 2700 kg/m³.
var AluminumB4C = Material{
	YoungsModulus: 70e5,
	PoissonsRatio: 0.33,
	Density:       2.7e-6,
	YieldStress:   276e3,
}

// LatticeConfig describes one point of the design space: a honeycomb lattice
// of NumCols×NumRows hexagonal cells with side length SideLength, beam
// slenderness Beta (h/L) and configuration angle ThetaDeg. A config is a
// value type and is never mutated after construction.
type LatticeConfig struct {
	SideLength float64  `json:"side_length"` // L, cm
	Beta       float64  `json:"beta"`        // h/L
	ThetaDeg   float64  `json:"theta_deg"`
	NumCols    int      `json:"num_cols"`
	NumRows    int      `json:"num_rows"`
	Material   Material `json:"material"`
}

// BeamDiameter returns the circular cross-section diameter h = β·L.
func (c LatticeConfig) BeamDiameter() float64 { return c.Beta * c.SideLength }

// SectionRadius returns the beam section radius h/2.
func (c LatticeConfig) SectionRadius() float64 { return c.BeamDiameter() / 2 }

// Label returns a filesystem- and identifier-safe name for the design point,
// e.g. "b0_0667_t15".
func (c LatticeConfig) Label() string {
	b := strings.ReplaceAll(fmt.Sprintf("%.4f", c.Beta), ".", "_")
	return fmt.Sprintf("b%s_t%g", b, c.ThetaDeg)
}

// Validate reports whether the config describes a lattice the generator can
// build. Violations abort only the sweep point that carries the config.
func (c LatticeConfig) Validate() error {
	if c.SideLength <= 0 {
		return &GeometryError{Config: c, Wrapped: ErrBadSideLength}
	}
	if c.Beta < BetaMin || c.Beta > BetaMax {
		return &GeometryError{Config: c, Wrapped: ErrBetaOutOfRange}
	}
	if c.ThetaDeg < ThetaMin || c.ThetaDeg > ThetaMax {
		return &GeometryError{Config: c, Wrapped: ErrThetaOutOfRange}
	}
	if c.NumCols < 1 || c.NumRows < 1 {
		return &GeometryError{Config: c, Wrapped: ErrBadCellCount}
	}
	if c.Material.YoungsModulus <= 0 || c.Material.Density <= 0 || c.Material.YieldStress <= 0 {
		return &GeometryError{Config: c, Wrapped: ErrBadMaterial}
	}
	return nil
}
