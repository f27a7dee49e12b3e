package explore

import "strings"

// unknownPatterns classify a response as "the bot did not recognize the
// command". Case-insensitive substring match, multi-language. The list
// is part of the recorded-label vocabulary and must stay stable.
var unknownPatterns = []string{
	"unknown command", "i don't understand", "i don't know that command",
	"unrecognized command", "invalid command", "command not found",
	"не понимаю", "неизвестная команда",
}

// commonCommands are guesses probed in the last command phase.
var commonCommands = []string{
	"/settings", "/menu", "/info", "/about", "/status",
	"/profile", "/language", "/lang", "/cancel",
}

// probeInput is one adversarial text input for the fallback-handler
// check in debug mode.
type probeInput struct {
	Label string
	Value string
}

var debugInputs = []probeInput{
	{Label: "random_text", Value: "hello"},
	{Label: "random_text", Value: "asdfgh"},
	{Label: "numbers_only", Value: "12345"},
	{Label: "special_chars", Value: "!@#$%"},
	{Label: "long_text", Value: strings.Repeat("A", 500)},
	{Label: "emoji_only", Value: "\U0001F600\U0001F389\U0001F525"},
	{Label: "empty_like", Value: " "},
	{Label: "empty_like", Value: "."},
}

// isUnknownResponse reports whether text looks like an "unknown
// command" reply.
func isUnknownResponse(text string) bool {
	if text == "" {
		return false
	}
	t := strings.ToLower(text)
	for _, p := range unknownPatterns {
		if strings.Contains(t, p) {
			return true
		}
	}
	return false
}
