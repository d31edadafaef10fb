package timescale

// Zoom factor bounds. Outside this window layouts degenerate: below MinZoom
// months collapse into single pixels, above MaxZoom single days span pages.
const (
	MinZoom = 0.4
	MaxZoom = 8.0
)

// Transform is an explicit zoom/pan state threaded through render calls.
// K scales positions multiplicatively, TranslateX shifts them afterwards.
type Transform struct {
	TranslateX float64
	K          float64
}

// Identity returns the no-op transform
func Identity() Transform {
	return Transform{TranslateX: 0, K: 1}
}

// Clamped bounds the zoom factor to [MinZoom, MaxZoom]. A zero-value
// transform clamps to MinZoom rather than collapsing the scale.
func (t Transform) Clamped() Transform {
	if t.K < MinZoom {
		t.K = MinZoom
	}
	if t.K > MaxZoom {
		t.K = MaxZoom
	}
	return t
}

// Zoomed returns the transform scaled by factor, clamped
func (t Transform) Zoomed(factor float64) Transform {
	t.K *= factor
	return t.Clamped()
}
