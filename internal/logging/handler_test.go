package logging

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestHandlerPlainLine(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(NewHandler(&buf, &Options{Level: slog.LevelInfo}))

	logger.Info("phase: start", "bot", "@somebot")

	out := buf.String()
	if !strings.Contains(out, " INF phase: start bot=@somebot\n") {
		t.Errorf("output = %q", out)
	}
	if strings.Contains(out, "\033[") {
		t.Error("plain handler emitted ANSI codes")
	}
}

func TestHandlerLevelGate(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(NewHandler(&buf, &Options{Level: slog.LevelInfo}))

	logger.Debug("click response", "path", "/start > [Menu]")
	if buf.Len() != 0 {
		t.Errorf("debug record written below level: %q", buf.String())
	}
}

func TestHandlerSnippetBlock(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(NewHandler(&buf, &Options{Level: slog.LevelDebug}))

	logger.Debug("click response", "path", "/start > [Menu]", "snippet", "first line\nsecond line")

	out := buf.String()
	if strings.Contains(out, "snippet=") {
		t.Errorf("snippet rendered inline: %q", out)
	}
	if !strings.Contains(out, "| first line\n") || !strings.Contains(out, "| second line\n") {
		t.Errorf("snippet block missing: %q", out)
	}
	if !strings.Contains(out, "path=/start > [Menu]") {
		t.Errorf("inline attr missing: %q", out)
	}
}

func TestInlineValueBounds(t *testing.T) {
	if got := inlineValue("one\ntwo"); got != "one two" {
		t.Errorf("inlineValue = %q", got)
	}
	long := strings.Repeat("x", inlineValueLimit+50)
	got := inlineValue(long)
	if want := strings.Repeat("x", inlineValueLimit) + "..."; got != want {
		t.Errorf("long value not bounded: %d chars", len(got))
	}
	if short := strings.Repeat("x", inlineValueLimit); inlineValue(short) != short {
		t.Error("value at the limit was cut")
	}
}

func TestHandlerWithAttrs(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(NewHandler(&buf, &Options{Level: slog.LevelInfo})).With("bot", "@somebot")

	logger.Info("phase: help")
	if !strings.Contains(buf.String(), "bot=@somebot") {
		t.Errorf("bound attr missing: %q", buf.String())
	}
}

func TestFanoutSplitsByLevel(t *testing.T) {
	var term, file bytes.Buffer
	fan := Fanout{
		NewHandler(&term, &Options{Level: slog.LevelInfo}),
		NewHandler(&file, &Options{Level: slog.LevelDebug}),
	}
	logger := slog.New(fan)

	logger.Debug("click response", "path", "/start > [Menu]")
	logger.Info("phase: start")

	if strings.Contains(term.String(), "click response") {
		t.Errorf("debug record reached the info handler: %q", term.String())
	}
	if !strings.Contains(file.String(), "click response") {
		t.Errorf("debug record missing from the debug handler: %q", file.String())
	}
	if !strings.Contains(term.String(), "phase: start") || !strings.Contains(file.String(), "phase: start") {
		t.Error("info record not duplicated to both handlers")
	}
}
