package es

import "fmt"

// InvalidParameterError reports a strategy parameter outside its valid range.
type InvalidParameterError struct {
	Param  string
	Reason string
}

func (e *InvalidParameterError) Error() string {
	return "invalid parameter: " + e.Param + " " + e.Reason
}

func (e *InvalidParameterError) Is(target error) bool {
	_, ok := target.(*InvalidParameterError)
	return ok
}

// ErrInvalidParameter matches any InvalidParameterError.
// Use errors.Is(err, ErrInvalidParameter) to check for this error.
var ErrInvalidParameter = &InvalidParameterError{}

// DegenerateFitnessError is returned when every candidate in a population
// scores identically, leaving the sample standard deviation at zero and
// the fitness normalization undefined.
type DegenerateFitnessError struct {
	NPop  int
	Score float64
}

func (e *DegenerateFitnessError) Error() string {
	return fmt.Sprintf("degenerate fitness: all %d candidates scored %g, cannot normalize", e.NPop, e.Score)
}

func (e *DegenerateFitnessError) Is(target error) bool {
	_, ok := target.(*DegenerateFitnessError)
	return ok
}

// ErrDegenerateFitness matches any DegenerateFitnessError.
var ErrDegenerateFitness = &DegenerateFitnessError{}
