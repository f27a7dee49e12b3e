package analyze

import (
	"strings"
	"testing"

	"github.com/joebot/botprobe/internal/blueprint"
	"github.com/joebot/botprobe/internal/report"
)

func strPtr(s string) *string { return &s }
func boolPtr(b bool) *bool    { return &b }

func textMsg(id int, text string) blueprint.Message {
	return blueprint.Message{ID: id, Text: text}
}

func interaction(sent string, responses ...blueprint.Message) *blueprint.Interaction {
	return &blueprint.Interaction{Action: "send_message", Sent: sent, Responses: responses}
}

func silent(sent string) *blueprint.Interaction {
	return &blueprint.Interaction{Action: "send_message", Sent: sent, TimedOut: true}
}

func reportWith(s report.Structure) *report.Report {
	rep := report.New(report.ModeDebug, "@bot")
	*rep.Structure = s
	return rep
}

func bugTypes(bugs []report.Bug) []string {
	var out []string
	for _, b := range bugs {
		out = append(out, b.Type)
	}
	return out
}

func TestBugsNilSafe(t *testing.T) {
	if got := Bugs(nil); got != nil {
		t.Errorf("Bugs(nil) = %v", got)
	}
	if got := Bugs(&report.Report{}); got != nil {
		t.Errorf("Bugs on empty report = %v", got)
	}
}

func TestHealthyBotHasNoBugs(t *testing.T) {
	rep := reportWith(report.Structure{
		Start: interaction("/start", textMsg(1, "Welcome!")),
		Help:  interaction("/help", textMsg(2, "Commands: /start")),
		ButtonTree: []*blueprint.Node{{
			Path:           "/start > [Menu]",
			ButtonText:     "Menu",
			CallbackAnswer: strPtr(""),
			ResultMessage:  &blueprint.Message{ID: 3, Text: "Menu contents"},
		}},
		InputHandling: []*blueprint.Interaction{
			interaction("hello", textMsg(4, "I don't understand")),
		},
	})
	if bugs := Bugs(rep); len(bugs) != 0 {
		t.Errorf("healthy bot produced bugs: %v", bugTypes(bugs))
	}
}

func TestNoStartResponse(t *testing.T) {
	rep := reportWith(report.Structure{Start: silent("/start")})
	bugs := Bugs(rep)
	if len(bugs) != 1 {
		t.Fatalf("bugs = %v", bugTypes(bugs))
	}
	if bugs[0].Type != BugNoStartResponse || bugs[0].Severity != report.SeverityHigh {
		t.Errorf("bug = %+v", bugs[0])
	}
	if bugs[0].Location != "/start" {
		t.Errorf("location = %q", bugs[0].Location)
	}
}

func TestNoHelpIsLowSeverity(t *testing.T) {
	rep := reportWith(report.Structure{
		Start: interaction("/start", textMsg(1, "hi")),
		Help:  silent("/help"),
	})
	bugs := Bugs(rep)
	if len(bugs) != 1 || bugs[0].Type != BugNoHelp || bugs[0].Severity != report.SeverityLow {
		t.Errorf("bugs = %+v", bugs)
	}
}

func TestDeadButtonIsExactlyOneHighBug(t *testing.T) {
	rep := reportWith(report.Structure{
		ButtonTree: []*blueprint.Node{{
			Path:       "/start > [Dead]",
			ButtonText: "Dead",
			ButtonData: "dead",
			// No answer, no message, no edit, no error.
		}},
	})
	bugs := Bugs(rep)
	if len(bugs) != 1 {
		t.Fatalf("bugs = %v, want exactly one", bugTypes(bugs))
	}
	if bugs[0].Type != BugDeadButton || bugs[0].Severity != report.SeverityHigh {
		t.Errorf("bug = %+v", bugs[0])
	}
}

func TestEmptyAnswerIsNotDead(t *testing.T) {
	rep := reportWith(report.Structure{
		ButtonTree: []*blueprint.Node{{
			Path:           "/start > [Quiet]",
			CallbackAnswer: strPtr(""),
		}},
	})
	if bugs := Bugs(rep); len(bugs) != 0 {
		t.Errorf("empty callback answer flagged: %v", bugTypes(bugs))
	}
}

func TestBrokenButtonErrors(t *testing.T) {
	tests := []struct {
		errText  string
		wantType string
		wantSev  string
	}{
		{"DataInvalidError", BugBrokenButton, report.SeverityHigh},
		{"MessageIdInvalidError", BugBrokenButton, report.SeverityHigh},
		{"FloodWaitError: wait 30s", BugFloodTriggered, report.SeverityLow},
	}
	for _, tt := range tests {
		rep := reportWith(report.Structure{
			ButtonTree: []*blueprint.Node{{Path: "/start > [X]", Error: tt.errText}},
		})
		bugs := Bugs(rep)
		if len(bugs) != 1 || bugs[0].Type != tt.wantType || bugs[0].Severity != tt.wantSev {
			t.Errorf("error %q: bugs = %+v", tt.errText, bugs)
		}
	}

	// Transport errors outside the taxonomy are recorded but not bugs.
	rep := reportWith(report.Structure{
		ButtonTree: []*blueprint.Node{{Path: "/start > [X]", Error: "rpc: connection reset"}},
	})
	if bugs := Bugs(rep); len(bugs) != 0 {
		t.Errorf("unclassified error flagged: %v", bugTypes(bugs))
	}
}

func TestEmptyAndErrorResponseBodies(t *testing.T) {
	rep := reportWith(report.Structure{
		Start: interaction("/start",
			blueprint.Message{ID: 1},
			textMsg(2, "Traceback (most recent call last):"),
		),
	})
	bugs := Bugs(rep)
	got := bugTypes(bugs)
	if len(got) != 2 || got[0] != BugEmptyResponse || got[1] != BugErrorInResponse {
		t.Fatalf("bugs = %v", got)
	}
	for _, b := range bugs {
		if b.Severity != report.SeverityMedium {
			t.Errorf("%s severity = %s", b.Type, b.Severity)
		}
	}
}

func TestMediaOnlyResponseIsNotEmpty(t *testing.T) {
	rep := reportWith(report.Structure{
		Start: interaction("/start", blueprint.Message{ID: 1, HasMedia: true, MediaType: "messageMediaPhoto"}),
	})
	if bugs := Bugs(rep); len(bugs) != 0 {
		t.Errorf("media-only response flagged: %v", bugTypes(bugs))
	}
}

func TestErrorSnippetIsBounded(t *testing.T) {
	long := "error: " + strings.Repeat("я", 500)
	rep := reportWith(report.Structure{
		Start: interaction("/start", textMsg(1, long)),
	})
	bugs := Bugs(rep)
	if len(bugs) != 1 {
		t.Fatalf("bugs = %v", bugTypes(bugs))
	}
	snip, _ := bugs[0].Details["text_snippet"].(string)
	if got := len([]rune(snip)); got != snippetLimit {
		t.Errorf("snippet length = %d runes, want %d", got, snippetLimit)
	}
}

func TestCommandTimeout(t *testing.T) {
	rep := reportWith(report.Structure{
		RegisteredCommands: []*blueprint.Interaction{silent("/foo")},
		DiscoveredCommands: []*blueprint.Interaction{silent("/bar")},
	})
	bugs := Bugs(rep)
	if len(bugs) != 2 {
		t.Fatalf("bugs = %v", bugTypes(bugs))
	}
	for _, b := range bugs {
		if b.Type != BugCommandTimeout || b.Severity != report.SeverityMedium {
			t.Errorf("bug = %+v", b)
		}
	}
	if bugs[0].Location != "/foo" || bugs[1].Location != "/bar" {
		t.Errorf("locations = %q, %q", bugs[0].Location, bugs[1].Location)
	}
}

func TestUnrecognizedCommandReplyIsNotABug(t *testing.T) {
	rec := interaction("/guess", textMsg(1, "Unknown command"))
	rec.Recognized = boolPtr(false)
	rep := reportWith(report.Structure{
		DiscoveredCommands: []*blueprint.Interaction{rec},
	})
	// "Unknown command" would also trip no error pattern, but even an
	// empty body must be skipped for unrecognized probes.
	rec2 := interaction("/guess2", blueprint.Message{ID: 2})
	rec2.Recognized = boolPtr(false)
	rep.Structure.DiscoveredCommands = append(rep.Structure.DiscoveredCommands, rec2)

	if bugs := Bugs(rep); len(bugs) != 0 {
		t.Errorf("unrecognized probes flagged: %v", bugTypes(bugs))
	}
}

func TestNoFallback(t *testing.T) {
	rep := reportWith(report.Structure{
		InputHandling: []*blueprint.Interaction{
			silent("hello"), silent("12345"), silent("!@#$%"),
		},
	})
	bugs := Bugs(rep)
	if len(bugs) != 1 || bugs[0].Type != BugNoFallback || bugs[0].Severity != report.SeverityLow {
		t.Fatalf("bugs = %+v", bugs)
	}

	// One response anywhere clears the finding.
	rep.Structure.InputHandling[1] = interaction("12345", textMsg(1, "?"))
	if bugs := Bugs(rep); len(bugs) != 0 {
		t.Errorf("fallback present but flagged: %v", bugTypes(bugs))
	}
}

func TestInconsistentButton(t *testing.T) {
	rep := reportWith(report.Structure{
		ButtonRepeat: []*blueprint.RepeatProbe{
			{Path: "/start > [A]", Inconsistent: false},
			{
				Path:         "/start > [B]",
				ButtonText:   "B",
				Inconsistent: true,
				Difference:   "callback answer changed: none -> \"hi\"",
			},
		},
	})
	bugs := Bugs(rep)
	if len(bugs) != 1 || bugs[0].Type != BugInconsistentButton {
		t.Fatalf("bugs = %+v", bugs)
	}
	if bugs[0].Details["difference"] == "" {
		t.Error("difference detail missing")
	}
}

func TestBugOrderFollowsCheckOrder(t *testing.T) {
	rep := reportWith(report.Structure{
		Start: silent("/start"),
		Help:  silent("/help"),
		ButtonTree: []*blueprint.Node{
			{Path: "/start > [Dead]"},
		},
		RegisteredCommands: []*blueprint.Interaction{silent("/foo")},
		InputHandling:      []*blueprint.Interaction{silent("hello")},
		ButtonRepeat: []*blueprint.RepeatProbe{
			{Path: "/start > [B]", Inconsistent: true, Difference: "x"},
		},
	})
	got := bugTypes(Bugs(rep))
	want := []string{
		BugNoStartResponse, BugNoHelp, BugDeadButton,
		BugCommandTimeout, BugNoFallback, BugInconsistentButton,
	}
	if len(got) != len(want) {
		t.Fatalf("bugs = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("bugs[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}
