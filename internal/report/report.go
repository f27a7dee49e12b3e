// Package report assembles and persists the output of a probe run. A
// Report mirrors the JSON blueprint emitted on stdout; it is built up
// during the run and finalized exactly once.
package report

import (
	"time"

	"github.com/google/uuid"

	"github.com/joebot/botprobe/internal/blueprint"
	"github.com/joebot/botprobe/internal/transport"
)

// Run modes.
const (
	ModeBlueprint = "blueprint"
	ModeDebug     = "debug"
	ModeTargeted  = "targeted"
)

// Bug severities, in decreasing weight.
const (
	SeverityHigh   = "high"
	SeverityMedium = "medium"
	SeverityLow    = "low"
)

// Bug is one heuristic finding over the completed structure. Details is
// bounded context (button text, payload, message id, text snippet)
// sufficient to reproduce the finding.
type Bug struct {
	Severity    string         `json:"severity"`
	Type        string         `json:"type"`
	Location    string         `json:"location"`
	Description string         `json:"description"`
	Details     map[string]any `json:"details,omitempty"`
}

// Statistics are the run counters, updated by the engine as it goes.
type Statistics struct {
	TotalInteractions   int `json:"total_interactions"`
	SuccessfulResponses int `json:"successful_responses"`
	Timeouts            int `json:"timeouts"`
	Errors              int `json:"errors"`
	ButtonsExplored     int `json:"buttons_explored"`
	MaxDepthReached     int `json:"max_depth_reached"`
	CommandsTested      int `json:"commands_tested"`
}

// Structure is the per-phase record of everything the run observed.
type Structure struct {
	Start              *blueprint.Interaction   `json:"start,omitempty"`
	Help               *blueprint.Interaction   `json:"help,omitempty"`
	ButtonTree         []*blueprint.Node        `json:"button_tree,omitempty"`
	ReplyKeyboard      []*blueprint.Interaction `json:"reply_keyboard,omitempty"`
	RegisteredCommands []*blueprint.Interaction `json:"registered_commands,omitempty"`
	DiscoveredCommands []*blueprint.Interaction `json:"discovered_commands,omitempty"`
	CommonCommands     []*blueprint.Interaction `json:"common_commands,omitempty"`
	InputHandling      []*blueprint.Interaction `json:"input_handling,omitempty"`
	ButtonRepeat       []*blueprint.RepeatProbe `json:"button_repeat_test,omitempty"`
}

// Report is the full output of one run. OK is false only when the run
// could not start at all; every softer failure lands in the structure
// records or in Error with partial results retained.
type Report struct {
	OK          bool                  `json:"ok"`
	RunID       string                `json:"run_id,omitempty"`
	Mode        string                `json:"mode,omitempty"`
	BotUsername string                `json:"bot_username,omitempty"`
	Path        string                `json:"path,omitempty"`
	Started     string                `json:"test_started,omitempty"`
	Finished    string                `json:"test_finished,omitempty"`
	BotInfo     *transport.BotProfile `json:"bot_info,omitempty"`
	Structure   *Structure            `json:"structure,omitempty"`
	Steps       []*blueprint.Step     `json:"steps,omitempty"`
	Statistics  *Statistics           `json:"statistics,omitempty"`
	Bugs        []Bug                 `json:"bugs,omitempty"`
	HealthScore *int                  `json:"health_score,omitempty"`
	Error       string                `json:"error,omitempty"`
	SavedTo     string                `json:"saved_to,omitempty"`
}

// New creates a report for an exploration run.
func New(mode, botUsername string) *Report {
	return &Report{
		OK:          true,
		RunID:       uuid.NewString(),
		Mode:        mode,
		BotUsername: botUsername,
		Started:     time.Now().UTC().Format(time.RFC3339),
		Structure:   &Structure{},
		Statistics:  &Statistics{},
	}
}

// NewTargeted creates a report for a targeted path run. Targeted runs
// carry steps instead of a structure.
func NewTargeted(botUsername, path string) *Report {
	return &Report{
		OK:          true,
		RunID:       uuid.NewString(),
		Mode:        ModeTargeted,
		BotUsername: botUsername,
		Path:        path,
		Started:     time.Now().UTC().Format(time.RFC3339),
	}
}

// Failed creates a report for a run that could not start.
func Failed(mode, botUsername, errMsg string) *Report {
	return &Report{
		Mode:        mode,
		BotUsername: botUsername,
		Error:       errMsg,
	}
}

// Finish stamps the end time. The report is immutable afterwards by
// convention; nothing in the engine touches it again.
func (r *Report) Finish() {
	r.Finished = time.Now().UTC().Format(time.RFC3339)
}
