package granularity

// hysteresisBand is the relative span margin a new classification must
// survive before the selector flips. Keeps labels stable while the zoom
// factor hovers around a threshold.
const hysteresisBand = 0.1

// Selector holds the current granularity decision across render frames.
// Not safe for concurrent use; the interactive surface drives it from a
// single render loop.
type Selector struct {
	current Granularity
	primed  bool
}

// NewSelector creates an unprimed selector; the first Update adopts the
// raw classification.
func NewSelector() *Selector {
	return &Selector{}
}

// Current returns the last decision
func (s *Selector) Current() Granularity {
	return s.current
}

// Update re-evaluates the granularity for the visible span. The decision
// only flips when the new class also holds with the span perturbed by the
// hysteresis band in both directions, so a view sitting exactly on a
// threshold keeps its labels.
func (s *Selector) Update(spanDays float64, eventCount int) Granularity {
	next := Classify(spanDays, eventCount)
	if !s.primed {
		s.current = next
		s.primed = true
		return s.current
	}
	if next == s.current {
		return s.current
	}

	lo := Classify(spanDays*(1-hysteresisBand), eventCount)
	hi := Classify(spanDays*(1+hysteresisBand), eventCount)
	if lo == next && hi == next {
		s.current = next
	}
	return s.current
}
