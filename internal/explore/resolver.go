package explore

import (
	"context"
	"fmt"
	"strings"

	"github.com/joebot/botprobe/internal/blueprint"
	"github.com/joebot/botprobe/internal/report"
	"github.com/joebot/botprobe/internal/transport"
)

// ParsePath splits a targeted path string into steps. The first step is
// the command to send; the rest are button texts to click in order.
// Grammar: command (" > [" buttonText "]")*. Surrounding brackets are
// optional on button steps.
func ParsePath(path string) []string {
	var steps []string
	for _, part := range strings.Split(path, ">") {
		part = strings.TrimSpace(part)
		if strings.HasPrefix(part, "[") && strings.HasSuffix(part, "]") {
			part = part[1 : len(part)-1]
		}
		steps = append(steps, part)
	}
	return steps
}

// RunPath sends the path's command, then clicks each button target in
// sequence, fuzzy-matching targets against the buttons actually on
// screen. Produces one step record per send or click.
func (e *Engine) RunPath(ctx context.Context, botUsername, path string) *report.Report {
	steps := ParsePath(path)
	if len(steps) == 0 || steps[0] == "" {
		return report.Failed(report.ModeTargeted, botUsername,
			"empty path, use format: /start > [Button A] > [Button B]")
	}

	if err := e.tr.Resolve(ctx, botUsername); err != nil {
		return report.Failed(report.ModeTargeted, botUsername,
			fmt.Sprintf("cannot find bot %q: %v", botUsername, err))
	}

	rep := report.NewTargeted(botUsername, path)
	command, targets := steps[0], steps[1:]

	rec := e.sendText(ctx, command)
	step := &blueprint.Step{
		Action:           "send_command",
		Command:          command,
		Responses:        rec.Responses,
		TimedOut:         rec.TimedOut,
		Error:            rec.Error,
		AvailableButtons: inlineTexts(rec.Responses),
	}
	rep.Steps = append(rep.Steps, step)

	if rec.TimedOut || !rec.Responded() {
		step.Note = fmt.Sprintf("Command %s produced no response, cannot continue path.", command)
		rep.Finish()
		return rep
	}

	current := rec.Responses
	for i, target := range targets {
		e.pace(ctx)

		msgID, matched, data := findButton(current, target)
		if msgID == 0 {
			rep.Steps = append(rep.Steps, &blueprint.Step{
				Action:           "click_button",
				Target:           target,
				Error:            fmt.Sprintf("Button %q not found in current response.", target),
				AvailableButtons: inlineTexts(current),
			})
			break
		}

		res := e.tr.ClickCallback(ctx, msgID, data)
		step := &blueprint.Step{
			Action:      "click_button",
			Target:      target,
			MatchedText: matched,
			ButtonData:  data,
		}
		if res.Err != nil {
			step.Error = res.Err.Error()
			if _, ok := transport.IsFloodWait(res.Err); ok {
				rep.Steps = append(rep.Steps, step)
				break
			}
		}
		step.CallbackAnswer = res.Answer
		step.NewMessage = res.NewMessage
		step.EditedMessage = res.EditedMessage

		var next []blueprint.Message
		if res.NewMessage != nil {
			next = append(next, *res.NewMessage)
		}
		if res.EditedMessage != nil {
			next = append(next, *res.EditedMessage)
		}
		step.AvailableButtons = inlineTexts(next)
		rep.Steps = append(rep.Steps, step)

		current = next
		if len(current) == 0 && i < len(targets)-1 {
			step.Note = "No new message or edit after click, cannot continue path."
			break
		}
	}

	rep.Finish()
	return rep
}

// findButton locates a clickable button matching target in the given
// responses. Three passes, first hit wins: exact text, case-insensitive
// text, then case-insensitive substring in either direction.
func findButton(responses []blueprint.Message, target string) (msgID int, matchedText, data string) {
	type match func(buttonText string) bool
	lower := strings.ToLower(target)
	passes := []match{
		func(t string) bool { return t == target },
		func(t string) bool { return strings.ToLower(t) == lower },
		func(t string) bool {
			lt := strings.ToLower(t)
			return strings.Contains(lt, lower) || strings.Contains(lower, lt)
		},
	}

	for _, matches := range passes {
		for i := range responses {
			if responses[i].ID == 0 {
				continue
			}
			for _, b := range responses[i].CallbackButtons() {
				if matches(b.Text) {
					return responses[i].ID, b.Text, b.Data
				}
			}
		}
	}
	return 0, "", ""
}

func inlineTexts(responses []blueprint.Message) []string {
	var out []string
	for i := range responses {
		out = append(out, responses[i].InlineTexts()...)
	}
	return out
}
