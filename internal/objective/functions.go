package objective

import "math"

// Sphere returns the shifted sphere objective -sum((x-s)^2).
// Its global optimum is at s with score 0.
func Sphere(target []float64) Objective {
	s := append([]float64{}, target...)
	return Objective{
		Name: "sphere",
		Dim:  len(s),
		Eval: func(x []float64) float64 {
			var sum float64
			for i, v := range x {
				d := v - s[i]
				sum += d * d
			}
			return -sum
		},
	}
}

// Himmelblau returns the negated 2-D Himmelblau function
// -((x^2+y-11)^2 + (x+y^2-7)^2). All four minima of the classic
// function score 0 here, e.g. (3, 2).
func Himmelblau() Objective {
	return Objective{
		Name: "himmelblau",
		Dim:  2,
		Eval: func(x []float64) float64 {
			a := x[0]*x[0] + x[1] - 11
			b := x[0] + x[1]*x[1] - 7
			return -(a*a + b*b)
		},
	}
}

// StyblinskiTang returns the negated Styblinski-Tang function
// -(sum(x^4 - 16x^2 + 5x) / 2), valid for any dimension.
// The optimum is near x_i = -2.903534 for every coordinate.
func StyblinskiTang() Objective {
	return Objective{
		Name: "styblinski-tang",
		Eval: func(x []float64) float64 {
			var sum float64
			for _, v := range x {
				sum += v*v*v*v - 16*v*v + 5*v
			}
			return -sum / 2
		},
	}
}

// Rastrigin returns the shifted, negated Rastrigin function
// -(10d + sum((x-s)^2 - 10cos(2pi(x-s)))). Its global optimum is at s
// with score 0, surrounded by a dense grid of local optima.
func Rastrigin(target []float64) Objective {
	s := append([]float64{}, target...)
	return Objective{
		Name: "rastrigin",
		Dim:  len(s),
		Eval: func(x []float64) float64 {
			sum := 10 * float64(len(x))
			for i, v := range x {
				d := v - s[i]
				sum += d*d - 10*math.Cos(2*math.Pi*d)
			}
			return -sum
		},
	}
}
