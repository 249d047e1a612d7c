package scoring

import "github.com/jonreiter/govader"

// VaderAnalyzer adapts the govader sentiment analyzer to the
// SentimentAnalyzer interface.
type VaderAnalyzer struct {
	analyzer *govader.SentimentIntensityAnalyzer
}

// NewVaderAnalyzer builds a VADER analyzer with the default lexicon.
func NewVaderAnalyzer() *VaderAnalyzer {
	return &VaderAnalyzer{analyzer: govader.NewSentimentIntensityAnalyzer()}
}

// Compound returns the normalized compound valence in [-1, 1]. Empty text
// yields 0 (neutral).
func (a *VaderAnalyzer) Compound(text string) float64 {
	return a.analyzer.PolarityScores(text).Compound
}
