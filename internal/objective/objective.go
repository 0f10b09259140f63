package objective

import (
	"fmt"
	"strings"
)

// Func scores a candidate vector. Higher is better: all built-in
// objectives are negated cost landscapes, so the global optimum scores 0.
type Func func(x []float64) float64

// Objective pairs a scoring function with its metadata.
type Objective struct {
	// Name identifies the objective in CLI flags and job configs.
	Name string

	// Dim is the required input dimension, or 0 if any dimension is valid.
	Dim int

	// Eval is the scoring function (maximization convention).
	Eval Func
}

// Score evaluates the objective, checking the input dimension first.
func (o Objective) Score(x []float64) (float64, error) {
	if o.Dim > 0 && len(x) != o.Dim {
		return 0, &DimensionError{Objective: o.Name, Want: o.Dim, Got: len(x)}
	}
	return o.Eval(x), nil
}

// DimensionError reports a mismatch between an objective's required
// dimension and the supplied vector.
type DimensionError struct {
	Objective string
	Want      int
	Got       int
}

func (e *DimensionError) Error() string {
	return fmt.Sprintf("objective %s requires dimension %d, got %d", e.Objective, e.Want, e.Got)
}

// Names lists the objectives resolvable by New.
func Names() []string {
	return []string{"sphere", "himmelblau", "styblinski-tang", "rastrigin"}
}

// New resolves an objective by name. Objectives that shift their optimum
// (sphere, rastrigin) take the target vector; the rest ignore it.
// The returned objective is validated against dim.
func New(name string, dim int, target []float64) (Objective, error) {
	if dim < 1 {
		return Objective{}, fmt.Errorf("dimension must be >= 1, got %d", dim)
	}

	var obj Objective
	switch strings.ToLower(name) {
	case "sphere":
		if len(target) == 0 {
			target = make([]float64, dim)
		}
		obj = Sphere(target)
	case "himmelblau":
		obj = Himmelblau()
	case "styblinski-tang", "styblinski_tang":
		obj = StyblinskiTang()
	case "rastrigin":
		if len(target) == 0 {
			target = make([]float64, dim)
		}
		obj = Rastrigin(target)
	default:
		return Objective{}, fmt.Errorf("unknown objective: %s (available: %s)", name, strings.Join(Names(), ", "))
	}

	if obj.Dim > 0 && obj.Dim != dim {
		return Objective{}, &DimensionError{Objective: obj.Name, Want: obj.Dim, Got: dim}
	}
	if len(target) > 0 && obj.Dim == 0 && len(target) != dim {
		return Objective{}, fmt.Errorf("target dimension %d does not match --dim %d", len(target), dim)
	}

	return obj, nil
}
