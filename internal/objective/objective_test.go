package objective

import (
	"errors"
	"math"
	"testing"
)

func TestSphereAtTarget(t *testing.T) {
	target := []float64{3.5, -0.2}
	obj := Sphere(target)

	if got := obj.Eval(target); got != 0 {
		t.Errorf("sphere at target = %g, want 0", got)
	}

	// Off-target scores are strictly negative.
	if got := obj.Eval([]float64{0, 0}); got >= 0 {
		t.Errorf("sphere off target = %g, want < 0", got)
	}
}

func TestSphereValue(t *testing.T) {
	obj := Sphere([]float64{1, 2})

	// -( (3-1)^2 + (4-2)^2 ) = -8
	if got := obj.Eval([]float64{3, 4}); got != -8 {
		t.Errorf("sphere([3,4]) = %g, want -8", got)
	}
}

func TestHimmelblauMinima(t *testing.T) {
	obj := Himmelblau()

	// All four classic minima score 0 under the negated convention.
	minima := [][]float64{
		{3, 2},
		{-2.805118, 3.131312},
		{-3.779310, -3.283186},
		{3.584428, -1.848126},
	}

	for _, m := range minima {
		got := obj.Eval(m)
		if math.Abs(got) > 1e-3 {
			t.Errorf("himmelblau(%v) = %g, want ~0", m, got)
		}
	}

	if got := obj.Eval([]float64{3, 2}); got != 0 {
		t.Errorf("himmelblau([3,2]) = %g, want exactly 0", got)
	}

	if got := obj.Eval([]float64{0, 0}); got >= 0 {
		t.Errorf("himmelblau([0,0]) = %g, want < 0", got)
	}
}

func TestStyblinskiTang(t *testing.T) {
	obj := StyblinskiTang()

	// The known per-dimension optimum; score approaches 39.16617d.
	x := []float64{-2.903534, -2.903534}
	got := obj.Eval(x)
	want := 39.16617 * 2
	if math.Abs(got-want) > 1e-3 {
		t.Errorf("styblinski-tang at optimum = %g, want ~%g", got, want)
	}

	if got := obj.Eval([]float64{0, 0}); got != 0 {
		t.Errorf("styblinski-tang([0,0]) = %g, want 0", got)
	}
}

func TestRastriginAtTarget(t *testing.T) {
	target := []float64{1.5, -2.5, 0.25}
	obj := Rastrigin(target)

	if got := obj.Eval(target); math.Abs(got) > 1e-12 {
		t.Errorf("rastrigin at target = %g, want 0", got)
	}

	if got := obj.Eval([]float64{0, 0, 0}); got >= 0 {
		t.Errorf("rastrigin off target = %g, want < 0", got)
	}
}

func TestScoreDimensionCheck(t *testing.T) {
	obj := Himmelblau()

	if _, err := obj.Score([]float64{1, 2, 3}); err == nil {
		t.Error("expected dimension error for 3-D input to himmelblau")
	} else {
		var dimErr *DimensionError
		if !errors.As(err, &dimErr) {
			t.Errorf("expected DimensionError, got %T", err)
		}
	}

	got, err := obj.Score([]float64{3, 2})
	if err != nil {
		t.Fatalf("Score failed: %v", err)
	}
	if got != 0 {
		t.Errorf("Score([3,2]) = %g, want 0", got)
	}
}

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		objName string
		dim     int
		target  []float64
		wantErr bool
	}{
		{"sphere default target", "sphere", 3, nil, false},
		{"sphere explicit target", "sphere", 2, []float64{3.5, -0.2}, false},
		{"himmelblau 2d", "himmelblau", 2, nil, false},
		{"himmelblau wrong dim", "himmelblau", 3, nil, true},
		{"styblinski any dim", "styblinski-tang", 5, nil, false},
		{"styblinski underscore alias", "styblinski_tang", 2, nil, false},
		{"rastrigin", "rastrigin", 2, []float64{1, 1}, false},
		{"target dim mismatch", "sphere", 3, []float64{1, 2}, true},
		{"unknown objective", "rosenbrock", 2, nil, true},
		{"zero dim", "sphere", 0, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			obj, err := New(tt.objName, tt.dim, tt.target)
			if tt.wantErr {
				if err == nil {
					t.Errorf("New(%q, %d, %v) should fail", tt.objName, tt.dim, tt.target)
				}
				return
			}
			if err != nil {
				t.Fatalf("New(%q, %d, %v) failed: %v", tt.objName, tt.dim, tt.target, err)
			}
			if obj.Eval == nil {
				t.Error("resolved objective has nil Eval")
			}
		})
	}
}
