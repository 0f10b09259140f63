package es

import "math"

// ScoreTracker records the score history of a run and the best estimate
// seen so far. It is reporting-only: it never stops a run early.
type ScoreTracker struct {
	history      []float64
	bestScore    float64
	bestEstimate []float64
}

// NewScoreTracker creates an empty tracker.
func NewScoreTracker() *ScoreTracker {
	return &ScoreTracker{
		bestScore: math.Inf(-1),
	}
}

// Update records a score and its estimate, returning true if this is the
// best score seen so far.
func (t *ScoreTracker) Update(score float64, estimate []float64) bool {
	t.history = append(t.history, score)
	if score > t.bestScore {
		t.bestScore = score
		t.bestEstimate = append(t.bestEstimate[:0], estimate...)
		return true
	}
	return false
}

// BestScore returns the best score seen, or -Inf before any update.
func (t *ScoreTracker) BestScore() float64 {
	return t.bestScore
}

// BestEstimate returns a copy of the estimate that achieved BestScore.
func (t *ScoreTracker) BestEstimate() []float64 {
	if t.bestEstimate == nil {
		return nil
	}
	return append([]float64{}, t.bestEstimate...)
}

// History returns a copy of the full score history.
func (t *ScoreTracker) History() []float64 {
	return append([]float64{}, t.history...)
}

// Len returns the number of recorded scores.
func (t *ScoreTracker) Len() int {
	return len(t.history)
}

// Reset clears the tracker's state.
func (t *ScoreTracker) Reset() {
	t.history = nil
	t.bestScore = math.Inf(-1)
	t.bestEstimate = nil
}
