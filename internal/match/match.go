// Package match grades free-text answers against accepted answers using
// normalized exact and fuzzy comparison.
package match

import (
	"github.com/adrg/strutil/metrics"

	"trivialan/internal/text"
)

// Matcher decides whether a submitted answer is close enough to one of a
// question's accepted answers.
type Matcher struct {
	threshold   float64 // similarity acceptance, 0-100
	levenshtein *metrics.Levenshtein
	jaroWinkler *metrics.JaroWinkler
}

// New returns a matcher accepting answers with similarity >= threshold.
func New(threshold float64) *Matcher {
	return &Matcher{
		threshold:   threshold,
		levenshtein: metrics.NewLevenshtein(),
		jaroWinkler: metrics.NewJaroWinkler(),
	}
}

// Similarity scores two normalized strings in [0, 100]. The edit-distance
// ratio underrates adjacent transpositions ("eisntein" vs "einstein" scores
// 75), so the score is the better of the Levenshtein ratio and Jaro-Winkler.
func (m *Matcher) Similarity(a, b string) float64 {
	lev := m.levenshtein.Compare(a, b)
	jw := m.jaroWinkler.Compare(a, b)
	return max(lev, jw) * 100
}

// IsCorrect reports whether userAnswer matches any accepted answer, in
// accepted-answers order: exact equality after normalization first, then
// fuzzy similarity against the threshold.
func (m *Matcher) IsCorrect(userAnswer string, acceptedAnswers []string) bool {
	user := text.Normalize(userAnswer)
	if user == "" {
		return false
	}

	for _, accepted := range acceptedAnswers {
		want := text.Normalize(accepted)

		if user == want {
			return true
		}
		if m.Similarity(user, want) >= m.threshold {
			return true
		}
	}
	return false
}
