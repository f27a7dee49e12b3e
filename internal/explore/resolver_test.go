package explore

import (
	"context"
	"testing"

	"github.com/joebot/botprobe/internal/blueprint"
	"github.com/joebot/botprobe/internal/report"
	"github.com/joebot/botprobe/internal/transport"
)

func TestParsePath(t *testing.T) {
	tests := []struct {
		path string
		want []string
	}{
		{"/start", []string{"/start"}},
		{"/start > [Menu]", []string{"/start", "Menu"}},
		{"/start > [Menu] > [Settings]", []string{"/start", "Menu", "Settings"}},
		{"/start>Menu>Settings", []string{"/start", "Menu", "Settings"}},
		{"  /start  >  [ Spaced ]  ", []string{"/start", " Spaced "}},
	}
	for _, tt := range tests {
		got := ParsePath(tt.path)
		if len(got) != len(tt.want) {
			t.Errorf("ParsePath(%q) = %v, want %v", tt.path, got, tt.want)
			continue
		}
		for i := range tt.want {
			if got[i] != tt.want[i] {
				t.Errorf("ParsePath(%q)[%d] = %q, want %q", tt.path, i, got[i], tt.want[i])
			}
		}
	}
}

func TestFindButtonMatchPasses(t *testing.T) {
	responses := []blueprint.Message{
		{ID: 1, InlineButtons: [][]blueprint.Button{{
			cb("Settings", "s"),
			cb("⚙️ Options", "o"),
			cb("options", "lower"),
		}}},
	}

	tests := []struct {
		target   string
		wantData string
		wantText string
	}{
		// Exact match wins over the later case-insensitive candidate.
		{"Settings", "s", "Settings"},
		// Case-insensitive exact beats substring.
		{"OPTIONS", "lower", "options"},
		// Substring in either direction.
		{"⚙️ Options", "o", "⚙️ Options"},
		{"Setti", "s", "Settings"},
	}
	for _, tt := range tests {
		msgID, matched, data := findButton(responses, tt.target)
		if msgID != 1 || data != tt.wantData || matched != tt.wantText {
			t.Errorf("findButton(%q) = (%d, %q, %q), want (1, %q, %q)",
				tt.target, msgID, matched, data, tt.wantText, tt.wantData)
		}
	}

	if msgID, _, _ := findButton(responses, "Nothing Like This"); msgID != 0 {
		t.Errorf("findButton miss returned msgID %d", msgID)
	}
}

func TestFindButtonSkipsUnsentMessages(t *testing.T) {
	responses := []blueprint.Message{
		{ID: 0, InlineButtons: [][]blueprint.Button{{cb("Ghost", "g")}}},
	}
	if msgID, _, _ := findButton(responses, "Ghost"); msgID != 0 {
		t.Errorf("matched a button on an unsent message, msgID %d", msgID)
	}
}

func TestRunPathFollowsButtons(t *testing.T) {
	tr := newScriptedBot()
	e := New(tr, Options{})

	rep := e.RunPath(context.Background(), "@scriptedbot", "/start > [Menu A] > [Deeper]")
	if !rep.OK {
		t.Fatalf("run failed: %s", rep.Error)
	}
	if rep.Mode != report.ModeTargeted || rep.Path != "/start > [Menu A] > [Deeper]" {
		t.Errorf("report header = mode %q path %q", rep.Mode, rep.Path)
	}

	if len(rep.Steps) != 3 {
		t.Fatalf("steps = %d, want 3", len(rep.Steps))
	}
	if rep.Steps[0].Action != "send_command" || rep.Steps[0].Command != "/start" {
		t.Errorf("step[0] = %+v", rep.Steps[0])
	}
	if got := rep.Steps[0].AvailableButtons; len(got) != 2 || got[0] != "Menu A" {
		t.Errorf("step[0] available buttons = %v", got)
	}
	if rep.Steps[1].MatchedText != "Menu A" || rep.Steps[1].ButtonData != "a" {
		t.Errorf("step[1] = %+v", rep.Steps[1])
	}
	// The Deeper click is dead in the script: recorded, no result.
	if rep.Steps[2].Target != "Deeper" || rep.Steps[2].Error != "" {
		t.Errorf("step[2] = %+v", rep.Steps[2])
	}
}

func TestRunPathButtonNotFound(t *testing.T) {
	tr := newScriptedBot()
	e := New(tr, Options{})

	rep := e.RunPath(context.Background(), "@scriptedbot", "/start > [No Such Button]")
	if len(rep.Steps) != 2 {
		t.Fatalf("steps = %d, want 2", len(rep.Steps))
	}
	last := rep.Steps[1]
	if last.Error != `Button "No Such Button" not found in current response.` {
		t.Errorf("error = %q", last.Error)
	}
	if len(last.AvailableButtons) != 2 {
		t.Errorf("available buttons = %v", last.AvailableButtons)
	}
}

func TestRunPathSilentCommandStops(t *testing.T) {
	tr := newScriptedBot()
	e := New(tr, Options{})

	rep := e.RunPath(context.Background(), "@scriptedbot", "/nothing > [Menu A]")
	if len(rep.Steps) != 1 {
		t.Fatalf("steps = %d, want 1", len(rep.Steps))
	}
	if rep.Steps[0].Note != "Command /nothing produced no response, cannot continue path." {
		t.Errorf("note = %q", rep.Steps[0].Note)
	}
	if len(tr.clickedData) != 0 {
		t.Errorf("clicked after silent command: %v", tr.clickedData)
	}
}

func TestRunPathEmptyPath(t *testing.T) {
	e := New(&fakeTransport{}, Options{})
	rep := e.RunPath(context.Background(), "@bot", "   ")
	if rep.OK {
		t.Fatal("empty path accepted")
	}
}

func TestRunPathFloodWaitStops(t *testing.T) {
	tr := newScriptedBot()
	tr.click["a"] = transport.ClickResult{Err: &transport.FloodWaitError{Seconds: 10}}
	e := New(tr, Options{})

	rep := e.RunPath(context.Background(), "@scriptedbot", "/start > [Menu A] > [Deeper]")
	if len(rep.Steps) != 2 {
		t.Fatalf("steps = %d, want 2", len(rep.Steps))
	}
	if rep.Steps[1].Error != "FloodWaitError: wait 10s" {
		t.Errorf("step error = %q", rep.Steps[1].Error)
	}
}
