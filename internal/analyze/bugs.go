// Package analyze is the heuristic pass over a completed report: a
// fixed set of independent checks producing bug records, and the
// weighting of those records into a health score. Everything here is
// pure; nothing talks to a transport.
package analyze

import (
	"fmt"
	"strings"

	"github.com/joebot/botprobe/internal/blueprint"
	"github.com/joebot/botprobe/internal/report"
)

// Bug types emitted by Bugs. The taxonomy is stable output surface.
const (
	BugNoStartResponse    = "no_start_response"
	BugNoHelp             = "no_help"
	BugEmptyResponse      = "empty_response"
	BugErrorInResponse    = "error_in_response"
	BugBrokenButton       = "broken_button"
	BugFloodTriggered     = "flood_triggered"
	BugDeadButton         = "dead_button"
	BugCommandTimeout     = "command_timeout"
	BugNoFallback         = "no_fallback"
	BugInconsistentButton = "inconsistent_button"
)

// errorPatterns mark response text that looks like a leaked failure.
// Case-insensitive substring match, multi-language.
var errorPatterns = []string{
	"traceback", "error", "exception", "internal server error",
	"something went wrong", "unexpected error", "failed",
	"ошибка", "что-то пошло не так",
}

const snippetLimit = 200

// Bugs scans a completed report and returns every detected bug in
// check order. The input is never modified.
func Bugs(rep *report.Report) []report.Bug {
	if rep == nil || rep.Structure == nil {
		return nil
	}
	s := rep.Structure
	var bugs []report.Bug

	bugs = append(bugs, checkStart(s.Start)...)
	bugs = append(bugs, checkHelp(s.Help)...)
	bugs = append(bugs, checkButtonTree(s.ButtonTree)...)
	bugs = append(bugs, checkCommands(s.RegisteredCommands)...)
	bugs = append(bugs, checkCommands(s.DiscoveredCommands)...)
	bugs = append(bugs, checkInputHandling(s.InputHandling)...)
	bugs = append(bugs, checkButtonRepeat(s.ButtonRepeat)...)

	return bugs
}

func checkStart(start *blueprint.Interaction) []report.Bug {
	if start == nil {
		return nil
	}
	if start.TimedOut || !start.Responded() {
		return []report.Bug{{
			Severity:    report.SeverityHigh,
			Type:        BugNoStartResponse,
			Location:    "/start",
			Description: "/start command produced no response or timed out",
			Details:     map[string]any{"timed_out": start.TimedOut, "error": start.Error},
		}}
	}

	var bugs []report.Bug
	for i := range start.Responses {
		bugs = append(bugs, checkResponseBody(&start.Responses[i], "/start")...)
	}
	return bugs
}

func checkHelp(help *blueprint.Interaction) []report.Bug {
	if help == nil {
		return nil
	}
	if help.TimedOut || !help.Responded() {
		return []report.Bug{{
			Severity:    report.SeverityLow,
			Type:        BugNoHelp,
			Location:    "/help",
			Description: "/help command produced no response or timed out",
			Details:     map[string]any{"timed_out": help.TimedOut, "error": help.Error},
		}}
	}
	return nil
}

func checkButtonTree(tree []*blueprint.Node) []report.Bug {
	var bugs []report.Bug
	for _, node := range tree {
		if node.Error != "" {
			switch {
			case strings.Contains(node.Error, "DataInvalidError"),
				strings.Contains(node.Error, "MessageIdInvalidError"):
				bugs = append(bugs, report.Bug{
					Severity:    report.SeverityHigh,
					Type:        BugBrokenButton,
					Location:    node.Path,
					Description: fmt.Sprintf("Button click raised %s", errorLabel(node.Error)),
					Details: map[string]any{
						"button_text": node.ButtonText,
						"button_data": node.ButtonData,
						"error":       node.Error,
					},
				})
			case strings.Contains(node.Error, "FloodWaitError"):
				bugs = append(bugs, report.Bug{
					Severity:    report.SeverityLow,
					Type:        BugFloodTriggered,
					Location:    node.Path,
					Description: "Rate limit hit during button exploration",
					Details:     map[string]any{"error": node.Error},
				})
			}
			continue
		}

		if node.CallbackAnswer == nil && node.ResultMessage == nil && node.ResultEdited == nil {
			bugs = append(bugs, report.Bug{
				Severity:    report.SeverityHigh,
				Type:        BugDeadButton,
				Location:    node.Path,
				Description: "Button click produced no response at all (no answer, no message, no edit)",
				Details: map[string]any{
					"button_text": node.ButtonText,
					"button_data": node.ButtonData,
				},
			})
		}

		if node.ResultMessage != nil {
			bugs = append(bugs, checkResultBody(node.ResultMessage, node, "result_message")...)
		}
		if node.ResultEdited != nil {
			bugs = append(bugs, checkResultBody(node.ResultEdited, node, "result_edited")...)
		}
	}
	return bugs
}

func checkCommands(recs []*blueprint.Interaction) []report.Bug {
	var bugs []report.Bug
	for _, rec := range recs {
		cmd := rec.Sent
		if cmd == "" {
			cmd = "unknown"
		}
		if rec.TimedOut || !rec.Responded() {
			bugs = append(bugs, report.Bug{
				Severity:    report.SeverityMedium,
				Type:        BugCommandTimeout,
				Location:    cmd,
				Description: fmt.Sprintf("Command %s timed out or had no response", cmd),
				Details:     map[string]any{"timed_out": rec.TimedOut, "error": rec.Error},
			})
			continue
		}
		// An explicit "unknown command" reply is a working fallback,
		// not a defect; skip body checks for unrecognized probes.
		if rec.Recognized != nil && !*rec.Recognized {
			continue
		}
		for i := range rec.Responses {
			bugs = append(bugs, checkResponseBody(&rec.Responses[i], cmd)...)
		}
	}
	return bugs
}

// checkResponseBody flags empty and error-looking response text for a
// command interaction.
func checkResponseBody(msg *blueprint.Message, location string) []report.Bug {
	var bugs []report.Bug
	if msg.Text == "" && !msg.HasMedia {
		desc := fmt.Sprintf("Command %s returned an empty response (no text, no media)", location)
		bugs = append(bugs, report.Bug{
			Severity:    report.SeverityMedium,
			Type:        BugEmptyResponse,
			Location:    location,
			Description: desc,
			Details:     map[string]any{"message_id": msg.ID},
		})
	}
	if hasErrorText(msg.Text) {
		bugs = append(bugs, report.Bug{
			Severity:    report.SeverityMedium,
			Type:        BugErrorInResponse,
			Location:    location,
			Description: "Response text contains error-like patterns",
			Details:     map[string]any{"text_snippet": snippet(msg.Text)},
		})
	}
	return bugs
}

// checkResultBody is the click-result variant, carrying button context.
func checkResultBody(msg *blueprint.Message, node *blueprint.Node, label string) []report.Bug {
	var bugs []report.Bug
	if msg.Text == "" && !msg.HasMedia {
		bugs = append(bugs, report.Bug{
			Severity:    report.SeverityMedium,
			Type:        BugEmptyResponse,
			Location:    node.Path,
			Description: fmt.Sprintf("Button click returned empty response (%s)", label),
			Details:     map[string]any{"button_text": node.ButtonText, "message_id": msg.ID},
		})
	}
	if hasErrorText(msg.Text) {
		bugs = append(bugs, report.Bug{
			Severity:    report.SeverityMedium,
			Type:        BugErrorInResponse,
			Location:    node.Path,
			Description: fmt.Sprintf("Response contains error-like patterns (%s)", label),
			Details:     map[string]any{"button_text": node.ButtonText, "text_snippet": snippet(msg.Text)},
		})
	}
	return bugs
}

func checkInputHandling(recs []*blueprint.Interaction) []report.Bug {
	if len(recs) == 0 {
		return nil
	}
	responded := 0
	for _, rec := range recs {
		if rec.Responded() {
			responded++
		}
	}
	if responded > 0 {
		return nil
	}
	return []report.Bug{{
		Severity:    report.SeverityLow,
		Type:        BugNoFallback,
		Location:    "unexpected_input",
		Description: "Bot ignores all unexpected text input (no fallback handler detected)",
		Details:     map[string]any{"inputs_tested": len(recs), "responses_received": 0},
	}}
}

func checkButtonRepeat(probes []*blueprint.RepeatProbe) []report.Bug {
	var bugs []report.Bug
	for _, probe := range probes {
		if !probe.Inconsistent {
			continue
		}
		bugs = append(bugs, report.Bug{
			Severity:    report.SeverityMedium,
			Type:        BugInconsistentButton,
			Location:    probe.Path,
			Description: "Button produced different result on repeat click",
			Details: map[string]any{
				"button_text": probe.ButtonText,
				"button_data": probe.ButtonData,
				"difference":  probe.Difference,
			},
		})
	}
	return bugs
}

func hasErrorText(text string) bool {
	if text == "" {
		return false
	}
	t := strings.ToLower(text)
	for _, p := range errorPatterns {
		if strings.Contains(t, p) {
			return true
		}
	}
	return false
}

func errorLabel(errText string) string {
	if strings.Contains(errText, "DataInvalidError") {
		return "DataInvalidError"
	}
	return "MessageIdInvalidError"
}

// snippet bounds text for bug details.
func snippet(text string) string {
	runes := []rune(text)
	if len(runes) <= snippetLimit {
		return text
	}
	return string(runes[:snippetLimit])
}
