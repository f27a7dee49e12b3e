package analyze

import (
	"testing"

	"github.com/joebot/botprobe/internal/report"
)

func bugsOf(severities ...string) []report.Bug {
	var out []report.Bug
	for _, s := range severities {
		out = append(out, report.Bug{Severity: s, Type: "x"})
	}
	return out
}

func TestHealthScore(t *testing.T) {
	tests := []struct {
		name       string
		severities []string
		want       int
	}{
		{"no bugs", nil, 100},
		{"one high", []string{report.SeverityHigh}, 85},
		{"one of each", []string{report.SeverityHigh, report.SeverityMedium, report.SeverityLow}, 78},
		{"unknown severity weighs one", []string{"weird"}, 99},
	}
	for _, tt := range tests {
		if got := HealthScore(bugsOf(tt.severities...)); got != tt.want {
			t.Errorf("%s: HealthScore = %d, want %d", tt.name, got, tt.want)
		}
	}
}

func TestHealthScoreFloorsAtZero(t *testing.T) {
	var severities []string
	for i := 0; i < 10; i++ {
		severities = append(severities, report.SeverityHigh)
	}
	if got := HealthScore(bugsOf(severities...)); got != 0 {
		t.Errorf("HealthScore = %d, want 0", got)
	}
}

func TestHealthScoreMonotonic(t *testing.T) {
	base := HealthScore(bugsOf(report.SeverityMedium))
	worse := HealthScore(bugsOf(report.SeverityMedium, report.SeverityLow))
	if worse >= base {
		t.Errorf("more bugs did not lower the score: %d -> %d", base, worse)
	}
}
