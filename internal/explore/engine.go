// Package explore drives the bot exploration run: ordered phases over a
// live transport, a bounded BFS over discovered callback buttons, and
// the targeted path resolver. The engine owns all traversal state for
// the duration of a run and executes strictly sequentially.
package explore

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"regexp"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/joebot/botprobe/internal/blueprint"
	"github.com/joebot/botprobe/internal/report"
	"github.com/joebot/botprobe/internal/transport"
)

// Options bound a run. Zero values fall back to the defaults used by
// the CLI; a zero Delay disables pacing, which tests rely on.
type Options struct {
	Mode       string
	Timeout    time.Duration
	MaxDepth   int
	MaxButtons int
	Delay      time.Duration
}

// Engine runs the exploration phases against one bot.
type Engine struct {
	tr      transport.Transport
	opts    Options
	limiter *rate.Limiter

	// sample picks k of n indexes for the repeat probe; swapped for a
	// deterministic function in tests.
	sample func(n, k int) []int
}

// New creates an engine over tr.
func New(tr transport.Transport, opts Options) *Engine {
	if opts.Mode == "" {
		opts.Mode = report.ModeBlueprint
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	if opts.MaxDepth <= 0 {
		opts.MaxDepth = 5
	}
	if opts.MaxButtons <= 0 {
		opts.MaxButtons = 100
	}

	e := &Engine{
		tr:     tr,
		opts:   opts,
		sample: randomSample,
	}
	if opts.Delay > 0 {
		e.limiter = rate.NewLimiter(rate.Every(opts.Delay), 1)
	}
	return e
}

// pace blocks for the politeness delay before a transport call.
func (e *Engine) pace(ctx context.Context) {
	if e.limiter == nil {
		return
	}
	e.limiter.Wait(ctx)
}

// Run executes the full phase sequence and returns the assembled
// report. Setup failures return an ok=false report with no structure;
// everything after that point is recovered into the structure itself.
func (e *Engine) Run(ctx context.Context, botUsername string) *report.Report {
	if err := e.tr.Resolve(ctx, botUsername); err != nil {
		return report.Failed(e.opts.Mode, botUsername,
			fmt.Sprintf("cannot find bot %q: %v", botUsername, err))
	}

	rep := report.New(e.opts.Mode, botUsername)
	stats := rep.Statistics

	if info, err := e.tr.BotInfo(ctx); err != nil {
		rep.BotInfo = &transport.BotProfile{Error: err.Error()}
	} else {
		rep.BotInfo = &info
	}

	// Phases 1 and 2: /start and /help.
	slog.Info("phase: start", "bot", botUsername)
	start := e.sendText(ctx, "/start")
	countCommand(stats, start)
	rep.Structure.Start = start

	slog.Info("phase: help")
	help := e.sendText(ctx, "/help")
	countCommand(stats, help)
	rep.Structure.Help = help

	// Phase 3: BFS over inline buttons seeded from /start and /help.
	tv := newTraversal(e.opts.MaxDepth, e.opts.MaxButtons)
	seedResponses(tv, start.Responses, "/start")
	seedResponses(tv, help.Responses, "/help")
	slog.Info("phase: button exploration", "frontier", len(tv.queue))
	e.drain(ctx, tv, rep)

	if e.fatal(ctx, rep) {
		return rep
	}

	// Phase 4: reply keyboard labels sent as plain text, one level deep.
	e.replyKeyboardPhase(ctx, rep)

	// Phases 5-7: registered, help-discovered, and common commands.
	tested := map[string]bool{"/start": true, "/help": true}
	e.registeredCommandsPhase(ctx, tv, rep, tested)
	e.discoveredCommandsPhase(ctx, tv, rep, tested)
	e.commonCommandsPhase(ctx, rep, tested)

	if e.fatal(ctx, rep) {
		return rep
	}

	// Phases 8 and 9 only probe for defects, so debug mode only.
	if e.opts.Mode == report.ModeDebug {
		e.inputProbePhase(ctx, rep)
		e.repeatProbePhase(ctx, rep)
	}

	rep.Finish()
	return rep
}

// fatal records a cancelled context as an engine-level error with
// partial results retained.
func (e *Engine) fatal(ctx context.Context, rep *report.Report) bool {
	if err := ctx.Err(); err != nil {
		rep.Error = fmt.Sprintf("run aborted: %v", err)
		rep.Finish()
		return true
	}
	return false
}

// sendText sends one text interaction and normalizes the outcome. A
// silent bot with no hard error counts as a timeout.
func (e *Engine) sendText(ctx context.Context, text string) *blueprint.Interaction {
	e.pace(ctx)
	res := e.tr.SendText(ctx, text, e.opts.Timeout)
	rec := &blueprint.Interaction{
		Action:    "send_message",
		Sent:      text,
		Responses: res.Responses,
		TimedOut:  res.TimedOut,
	}
	if res.Err != nil {
		rec.Error = res.Err.Error()
	}
	if !rec.Responded() && rec.Error == "" {
		rec.TimedOut = true
	}
	if rec.Responded() {
		slog.Debug("response", "sent", text, "snippet", truncate(res.Responses[0].Text, 200))
	}
	return rec
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}

// countCommand updates the counters for a plain command interaction.
func countCommand(stats *report.Statistics, rec *blueprint.Interaction) {
	stats.TotalInteractions++
	stats.CommandsTested++
	if rec.Responded() {
		stats.SuccessfulResponses++
	} else if rec.TimedOut {
		stats.Timeouts++
	}
}

func seedResponses(tv *traversal, responses []blueprint.Message, parentPath string) {
	for i := range responses {
		tv.seedFrom(&responses[i], 1, parentPath)
	}
}

// drain clicks frontier buttons oldest-first until the frontier empties
// or the global budget runs out. Items beyond the depth cap are
// discarded without a click. A flood-wait aborts only this drain: the
// triggering item is recorded as an error node and later phases still
// run with whatever budget remains.
func (e *Engine) drain(ctx context.Context, tv *traversal, rep *report.Report) {
	stats := rep.Statistics
	for tv.budgetLeft() {
		item, ok := tv.pop()
		if !ok {
			return
		}
		if item.depth > tv.maxDepth {
			continue
		}

		e.pace(ctx)
		stats.TotalInteractions++
		stats.ButtonsExplored++
		tv.clicked++

		path := pathLabel(item.parentPath, item.buttonText)
		node := &blueprint.Node{
			Path:       path,
			Depth:      item.depth,
			ButtonText: item.buttonText,
			ButtonData: item.buttonData,
		}

		res := e.tr.ClickCallback(ctx, item.msgID, item.buttonData)
		if res.Err != nil {
			node.Error = res.Err.Error()
			stats.Errors++
			rep.Structure.ButtonTree = append(rep.Structure.ButtonTree, node)
			if secs, ok := transport.IsFloodWait(res.Err); ok {
				slog.Warn("flood wait, aborting drain", "seconds", secs, "path", path)
				return
			}
			continue
		}

		node.CallbackAnswer = res.Answer
		stats.SuccessfulResponses++

		if res.NewMessage != nil {
			node.ResultMessage = res.NewMessage
			if item.depth < tv.maxDepth {
				tv.seedFrom(res.NewMessage, item.depth+1, path)
			}
		}
		if res.EditedMessage != nil {
			node.ResultEdited = res.EditedMessage
			if item.depth < tv.maxDepth {
				tv.seedFrom(res.EditedMessage, item.depth+1, path)
			}
		}
		if item.depth > stats.MaxDepthReached {
			stats.MaxDepthReached = item.depth
		}
		if text := node.ResultText(); text != "" {
			slog.Debug("click response", "path", path, "snippet", truncate(text, 200))
		} else {
			slog.Debug("click response", "path", path, "answer", describeAnswer(res.Answer))
		}
		rep.Structure.ButtonTree = append(rep.Structure.ButtonTree, node)
	}
}

// replyKeyboardPhase sends every distinct reply-keyboard label seen so
// far as plain text. Responses are captured but not explored further.
func (e *Engine) replyKeyboardPhase(ctx context.Context, rep *report.Report) {
	var labels []string
	collect := func(msg *blueprint.Message) {
		if msg != nil {
			labels = append(labels, msg.ReplyTexts()...)
		}
	}
	for _, phase := range []*blueprint.Interaction{rep.Structure.Start, rep.Structure.Help} {
		if phase == nil {
			continue
		}
		for i := range phase.Responses {
			collect(&phase.Responses[i])
		}
	}
	for _, node := range rep.Structure.ButtonTree {
		collect(node.ResultMessage)
		collect(node.ResultEdited)
	}

	slog.Info("phase: reply keyboard", "labels", len(labels))
	stats := rep.Statistics
	seen := make(map[string]bool)
	for _, label := range labels {
		if seen[label] {
			continue
		}
		seen[label] = true

		rec := e.sendText(ctx, label)
		rec.ButtonLabel = label
		rep.Structure.ReplyKeyboard = append(rep.Structure.ReplyKeyboard, rec)

		stats.TotalInteractions++
		stats.ButtonsExplored++
		if rec.Responded() {
			stats.SuccessfulResponses++
		} else if rec.TimedOut {
			stats.Timeouts++
		}
	}
}

// registeredCommandsPhase sends every bot-declared command not yet
// tested, then drains whatever new buttons the responses revealed.
func (e *Engine) registeredCommandsPhase(ctx context.Context, tv *traversal, rep *report.Report, tested map[string]bool) {
	if rep.BotInfo == nil {
		return
	}
	slog.Info("phase: registered commands", "count", len(rep.BotInfo.RegisteredCommands))
	stats := rep.Statistics
	for _, ci := range rep.BotInfo.RegisteredCommands {
		if tested[ci.Command] {
			continue
		}
		tested[ci.Command] = true

		rec := e.sendText(ctx, ci.Command)
		rec.CommandDescription = ci.Description
		rep.Structure.RegisteredCommands = append(rep.Structure.RegisteredCommands, rec)

		stats.TotalInteractions++
		stats.CommandsTested++
		if rec.Responded() {
			stats.SuccessfulResponses++
			seedResponses(tv, rec.Responses, ci.Command)
		} else if rec.TimedOut {
			stats.Timeouts++
		}
	}
	e.drain(ctx, tv, rep)
}

var commandToken = regexp.MustCompile(`/[a-zA-Z_][a-zA-Z0-9_]*`)

// extractCommands pulls slash-prefixed tokens out of help text,
// deduplicated in first-seen order.
func extractCommands(text string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, m := range commandToken.FindAllString(text, -1) {
		if !seen[m] {
			seen[m] = true
			out = append(out, m)
		}
	}
	return out
}

// discoveredCommandsPhase probes commands mentioned in the /help text,
// classifies recognition, and drains any new buttons.
func (e *Engine) discoveredCommandsPhase(ctx context.Context, tv *traversal, rep *report.Report, tested map[string]bool) {
	var helpText strings.Builder
	if rep.Structure.Help != nil {
		for _, resp := range rep.Structure.Help.Responses {
			helpText.WriteString(resp.Text)
			helpText.WriteString("\n")
		}
	}

	commands := extractCommands(helpText.String())
	slog.Info("phase: discovered commands", "count", len(commands))
	stats := rep.Statistics
	for _, cmd := range commands {
		if tested[cmd] {
			continue
		}
		tested[cmd] = true

		rec := e.sendText(ctx, cmd)
		stats.TotalInteractions++
		stats.CommandsTested++

		recognized := e.classify(rec)
		if recognized {
			stats.SuccessfulResponses++
			seedResponses(tv, rec.Responses, cmd)
		} else if rec.TimedOut {
			stats.Timeouts++
		}
		rep.Structure.DiscoveredCommands = append(rep.Structure.DiscoveredCommands, rec)
	}
	e.drain(ctx, tv, rep)
}

// commonCommandsPhase probes a fixed guess list. Results are recorded
// but never drained: an unrecognized guess is not a defect.
func (e *Engine) commonCommandsPhase(ctx context.Context, rep *report.Report, tested map[string]bool) {
	slog.Info("phase: common commands")
	stats := rep.Statistics
	for _, cmd := range commonCommands {
		if tested[cmd] {
			continue
		}
		tested[cmd] = true

		rec := e.sendText(ctx, cmd)
		stats.TotalInteractions++
		stats.CommandsTested++

		if e.classify(rec) {
			stats.SuccessfulResponses++
		} else if rec.TimedOut {
			stats.Timeouts++
		}
		rep.Structure.CommonCommands = append(rep.Structure.CommonCommands, rec)
	}
}

// classify marks an interaction as recognized unless the bot stayed
// silent or replied with an unknown-command phrase.
func (e *Engine) classify(rec *blueprint.Interaction) bool {
	firstText := ""
	if rec.Responded() {
		firstText = rec.Responses[0].Text
	}
	recognized := rec.Responded() && !isUnknownResponse(firstText)
	rec.Recognized = &recognized
	return recognized
}

// inputProbePhase sends adversarial inputs to detect a missing fallback
// handler. Debug mode only.
func (e *Engine) inputProbePhase(ctx context.Context, rep *report.Report) {
	slog.Info("phase: input handling probes", "inputs", len(debugInputs))
	stats := rep.Statistics
	for _, inp := range debugInputs {
		rec := e.sendText(ctx, inp.Value)
		rec.InputLabel = inp.Label
		rep.Structure.InputHandling = append(rep.Structure.InputHandling, rec)

		stats.TotalInteractions++
		if rec.Responded() {
			stats.SuccessfulResponses++
		} else if rec.TimedOut {
			stats.Timeouts++
		}
	}
}

// repeatProbePhase re-clicks up to ten previously visited buttons and
// diffs the outcome against the original node. A button payload is only
// re-clickable if some recent message still exposes it. Debug mode only.
func (e *Engine) repeatProbePhase(ctx context.Context, rep *report.Report) {
	var candidates []*blueprint.Node
	for _, node := range rep.Structure.ButtonTree {
		if node.Error != "" || node.ButtonData == "" {
			continue
		}
		if node.ResultMessage != nil || node.ResultEdited != nil || node.CallbackAnswer != nil {
			candidates = append(candidates, node)
		}
	}

	picked := candidates
	if len(candidates) > 10 {
		picked = make([]*blueprint.Node, 0, 10)
		for _, i := range e.sample(len(candidates), 10) {
			picked = append(picked, candidates[i])
		}
	}

	slog.Info("phase: button repeat probes", "candidates", len(candidates), "picked", len(picked))
	stats := rep.Statistics
	for _, original := range picked {
		e.pace(ctx)

		msgID := e.findLiveMessage(ctx, original.ButtonData)
		if msgID == 0 {
			continue
		}

		res := e.tr.ClickCallback(ctx, msgID, original.ButtonData)
		if secs, ok := transport.IsFloodWait(res.Err); ok {
			rep.Structure.ButtonRepeat = append(rep.Structure.ButtonRepeat, &blueprint.RepeatProbe{
				Path:       original.Path,
				ButtonText: original.ButtonText,
				ButtonData: original.ButtonData,
				Error:      res.Err.Error(),
			})
			stats.Errors++
			slog.Warn("flood wait, aborting repeat probes", "seconds", secs)
			return
		}

		stats.TotalInteractions++
		stats.ButtonsExplored++

		inconsistent, difference := repeatDiff(original, res)

		probe := &blueprint.RepeatProbe{
			Path:         original.Path,
			ButtonText:   original.ButtonText,
			ButtonData:   original.ButtonData,
			Inconsistent: inconsistent,
			Difference:   difference,
		}
		if res.Err != nil {
			probe.Error = res.Err.Error()
			stats.Errors++
		} else {
			stats.SuccessfulResponses++
		}
		rep.Structure.ButtonRepeat = append(rep.Structure.ButtonRepeat, probe)
	}
}

// findLiveMessage scans recent messages for one still exposing the
// payload and returns its id, or 0.
func (e *Engine) findLiveMessage(ctx context.Context, data string) int {
	msgs, err := e.tr.RecentMessages(ctx, 20)
	if err != nil {
		return 0
	}
	for i := range msgs {
		if _, ok := msgs[i].FindCallback(data); ok {
			return msgs[i].ID
		}
	}
	return 0
}

// repeatDiff applies the consistency rule: callback answers are compared
// first; if equal, the result-message text decides. Presence of an
// answer counts, not just its content.
func repeatDiff(original *blueprint.Node, res transport.ClickResult) (bool, string) {
	origText := original.ResultText()
	newText := ""
	if res.NewMessage != nil {
		newText = res.NewMessage.Text
	}
	if res.EditedMessage != nil {
		newText = res.EditedMessage.Text
	}

	switch {
	case !answersEqual(original.CallbackAnswer, res.Answer):
		return true, fmt.Sprintf("callback answer changed: %s -> %s",
			describeAnswer(original.CallbackAnswer), describeAnswer(res.Answer))
	case origText != "" && newText != "" && origText != newText:
		return true, fmt.Sprintf("response text changed (first: %d chars, repeat: %d chars)",
			len([]rune(origText)), len([]rune(newText)))
	case (origText != "") != (newText != ""):
		return true, fmt.Sprintf("response presence changed (first had text: %t, repeat: %t)",
			origText != "", newText != "")
	}
	return false, ""
}

func answersEqual(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func describeAnswer(a *string) string {
	if a == nil {
		return "none"
	}
	return fmt.Sprintf("%q", *a)
}

func randomSample(n, k int) []int {
	return rand.Perm(n)[:k]
}
