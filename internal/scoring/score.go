// package scoring turns one issue record into a bounded severity score with
// an auditable breakdown. The engine is pure: all signals come from the
// issue fields and the injected sentiment analyzer, no I/O happens here.
package scoring

import (
	"fmt"
	"math"
	"strings"
	"unicode/utf8"

	"github.com/mkravets/mr-insight-service/internal/domain"
)

// ReasonNoIssue marks a score request with no issue record at all, which is
// distinct from a fetch failure.
const ReasonNoIssue = "no_issue"

// SentimentAnalyzer produces a compound valence value in [-1, 1] for a text.
type SentimentAnalyzer interface {
	Compound(text string) float64
}

// priorityWeights maps common tracker priority names to a severity
// multiplier. Names missing from the table fall back to defaultWeight.
var priorityWeights = map[string]float64{
	"Blocker": 1.0, "Highest": 1.0, "Critical": 1.0,
	"High": 0.9, "Major": 0.85,
	"Medium": 0.6, "Normal": 0.6,
	"Low": 0.3, "Minor": 0.3,
}

const defaultWeight = 0.6 // unknown priority is treated as Medium

// alarmingLabelParts are matched case-insensitively as substrings; every
// matching label adds a flat boost, with no cap on the total.
var alarmingLabelParts = []string{"urgent", "block", "critical", "security"}

const labelBoostStep = 10

// Engine computes severity scores.
type Engine struct {
	analyzer SentimentAnalyzer
}

// NewEngine creates a scoring engine over the given sentiment analyzer.
func NewEngine(analyzer SentimentAnalyzer) *Engine {
	return &Engine{analyzer: analyzer}
}

// Score maps an issue record to a score breakdown.
//
// An absent issue or a failure record yields an absent score with an
// explanatory reason. Otherwise four weak signals are combined:
// sentiment base in [0, 50] (more negative text scores higher), a
// saturating length contribution capped near 20, a flat boost per alarming
// label, and a priority multiplier applied to the sum. The result is
// rounded to two decimals and clamped to [0, 100].
func (e *Engine) Score(issue *domain.Issue) domain.ScoreResult {
	if issue == nil {
		return domain.ScoreResult{Reason: ReasonNoIssue}
	}

	if issue.Failed() {
		return domain.ScoreResult{
			Reason: fmt.Sprintf("jira_error:%d", issue.Failure.StatusCode),
		}
	}

	combined := issue.Summary + "\n" + issue.Description
	compound := e.analyzer.Compound(combined)

	sentBase := (1 - compound) / 2 * 50
	// length is measured in characters, not bytes, so non-ASCII text is not
	// inflated by its encoding.
	lengthScore := math.Tanh(float64(utf8.RuneCountInString(combined))/1000) * 20

	labelBoost := 0
	for _, label := range issue.Labels {
		ll := strings.ToLower(label)
		for _, part := range alarmingLabelParts {
			if strings.Contains(ll, part) {
				labelBoost += labelBoostStep
				break
			}
		}
	}

	priority := issue.Priority
	if priority == "" {
		priority = "Medium"
	}

	weight, ok := priorityWeights[priority]
	if !ok {
		weight = defaultWeight
	}

	raw := (sentBase + lengthScore + float64(labelBoost)) * weight
	final := clamp(round2(raw), 0, 100)

	reason := fmt.Sprintf("sent_base=%.2f len=%.2f labels=%d pwt=%.2f",
		round2(sentBase), round2(lengthScore), labelBoost, weight)

	return domain.ScoreResult{
		Score:     &final,
		Reason:    reason,
		Sentiment: compound,
		Priority:  priority,
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
