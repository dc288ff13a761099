package domain

// AnalysisMethod identifies which strategy produced an analysis.
type AnalysisMethod string

// Analysis methods.
const (
	// MethodHeuristic is the local keyword and pattern classifier.
	MethodHeuristic AnalysisMethod = "heuristic"

	// MethodRemote is the language-model assisted classifier.
	MethodRemote AnalysisMethod = "remote"

	// MethodFallback is the heuristic result used after a remote failure.
	MethodFallback AnalysisMethod = "heuristic-fallback"
)

// Analysis is the classification of one piece of complaint text.
type Analysis struct {
	Category   Category
	Urgency    Urgency
	SpamScore  float64
	Sentiment  Sentiment
	Confidence float64

	// Method, Matches and Scores are diagnostics and are not persisted.
	Method  AnalysisMethod
	Matches []string
	Scores  map[Category]float64

	// UrgencyScore is the raw intensity total that produced Urgency.
	UrgencyScore float64
}

// Degraded reports whether a fallback strategy produced the analysis.
func (a *Analysis) Degraded() bool {
	return a.Method == MethodFallback
}

// Clamp01 bounds v to the closed unit interval.
func Clamp01(v float64) float64 {
	return Clamp(v, 0, 1)
}

// Clamp bounds v to [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
