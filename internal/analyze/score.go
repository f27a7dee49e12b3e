package analyze

import "github.com/joebot/botprobe/internal/report"

// Severity weights. Unknown severities still cost a point so a
// malformed bug can never improve the score.
var severityWeights = map[string]int{
	report.SeverityHigh:   15,
	report.SeverityMedium: 5,
	report.SeverityLow:    2,
}

// HealthScore weights bugs into a single 0-100 metric. No bugs scores
// 100; the score never increases as bugs accumulate and floors at 0.
func HealthScore(bugs []report.Bug) int {
	if len(bugs) == 0 {
		return 100
	}
	penalty := 0
	for _, b := range bugs {
		w, ok := severityWeights[b.Severity]
		if !ok {
			w = 1
		}
		penalty += w
	}
	if penalty >= 100 {
		return 0
	}
	return 100 - penalty
}
