package cli

import (
	"fmt"
	"strings"

	"github.com/joebot/botprobe/internal/report"
)

// RenderSummary returns a styled, human-oriented digest of a completed
// run. The full JSON blueprint stays on stdout; this goes to stderr so
// piping the JSON remains clean.
func RenderSummary(rep *report.Report) string {
	var sb strings.Builder

	sb.WriteString("\n")
	sb.WriteString(TitleStyle.Render(fmt.Sprintf("  %s botprobe %s %s", Logo, rep.Mode, rep.BotUsername)))
	sb.WriteString("\n\n")

	if !rep.OK {
		sb.WriteString("  " + ErrStyle.Render("Run failed: "+rep.Error) + "\n")
		return sb.String()
	}

	if rep.BotInfo != nil && rep.BotInfo.Error == "" {
		name := rep.BotInfo.FirstName
		if name == "" {
			name = rep.BotInfo.Username
		}
		sb.WriteString(fmt.Sprintf("  %-14s %s\n", "Bot", name))
	}

	if st := rep.Statistics; st != nil {
		sb.WriteString(fmt.Sprintf("  %-14s %d\n", "Interactions", st.TotalInteractions))
		sb.WriteString(fmt.Sprintf("  %-14s %d\n", "Responses", st.SuccessfulResponses))
		sb.WriteString(fmt.Sprintf("  %-14s %d\n", "Buttons", st.ButtonsExplored))
		sb.WriteString(fmt.Sprintf("  %-14s %d\n", "Commands", st.CommandsTested))
		if st.Timeouts > 0 {
			sb.WriteString(fmt.Sprintf("  %-14s %s\n", "Timeouts", WarnStyle.Render(fmt.Sprintf("%d", st.Timeouts))))
		}
		if st.Errors > 0 {
			sb.WriteString(fmt.Sprintf("  %-14s %s\n", "Errors", ErrStyle.Render(fmt.Sprintf("%d", st.Errors))))
		}
	}

	if rep.HealthScore != nil {
		sb.WriteString(fmt.Sprintf("  %-14s %s\n", "Health", renderScore(*rep.HealthScore)))
	}

	if len(rep.Bugs) > 0 {
		sb.WriteString("\n  " + BoldStyle.Render(fmt.Sprintf("Bugs (%d)", len(rep.Bugs))) + "\n")
		for _, bug := range rep.Bugs {
			label := SeverityStyle(bug.Severity).Render(fmt.Sprintf("%-6s", bug.Severity))
			sb.WriteString(fmt.Sprintf("    %s %s  %s\n", label, bug.Type, DimStyle.Render(bug.Location)))
		}
	} else if rep.Mode == report.ModeDebug {
		sb.WriteString("\n  " + OkStyle.Render("No bugs found") + "\n")
	}

	if len(rep.Steps) > 0 {
		sb.WriteString("\n  " + BoldStyle.Render(fmt.Sprintf("Path steps (%d)", len(rep.Steps))) + "\n")
		for _, step := range rep.Steps {
			target := step.Target
			if target == "" {
				target = step.Command
			}
			badge := StatusBadge(step.Error == "" && !step.TimedOut)
			sb.WriteString(fmt.Sprintf("    %s %s %s\n", badge, step.Action, target))
		}
	}

	if rep.SavedTo != "" {
		sb.WriteString("\n  " + DimStyle.Render("Saved to "+rep.SavedTo) + "\n")
	}

	return sb.String()
}

func renderScore(score int) string {
	text := fmt.Sprintf("%d/100", score)
	switch {
	case score >= 80:
		return OkStyle.Render(text)
	case score >= 50:
		return WarnStyle.Render(text)
	default:
		return ErrStyle.Render(text)
	}
}
