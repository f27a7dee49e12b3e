package telegram

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/gotd/td/tg"

	"github.com/joebot/botprobe/internal/blueprint"
)

// Normalize converts a wire message into the canonical blueprint
// record: text, timestamp, the full button layout with rows and types
// preserved, and a media tag. Pure, no side effects.
func Normalize(m *tg.Message) blueprint.Message {
	out := blueprint.Message{
		ID:   m.ID,
		Text: m.Message,
	}
	if m.Date > 0 {
		out.Date = time.Unix(int64(m.Date), 0).UTC().Format(time.RFC3339)
	}

	if markup, ok := m.GetReplyMarkup(); ok {
		switch mk := markup.(type) {
		case *tg.ReplyInlineMarkup:
			out.InlineButtons = inlineRows(mk.Rows)
		case *tg.ReplyKeyboardMarkup:
			out.ReplyKeyboard = keyboardRows(mk.Rows)
		}
	}

	if media, ok := m.GetMedia(); ok {
		out.HasMedia = true
		out.MediaType = media.TypeName()
	}
	return out
}

func inlineRows(rows []tg.KeyboardButtonRow) [][]blueprint.Button {
	out := make([][]blueprint.Button, 0, len(rows))
	for _, row := range rows {
		btns := make([]blueprint.Button, 0, len(row.Buttons))
		for _, b := range row.Buttons {
			btns = append(btns, classifyInline(b))
		}
		out = append(out, btns)
	}
	return out
}

// classifyInline maps a wire button onto the blueprint taxonomy by its
// capability. Unknown kinds keep the raw type name for diagnostics.
func classifyInline(b tg.KeyboardButtonClass) blueprint.Button {
	switch btn := b.(type) {
	case *tg.KeyboardButtonCallback:
		return blueprint.Button{Text: btn.Text, Type: blueprint.ButtonCallback, Data: decodePayload(btn.Data)}
	case *tg.KeyboardButtonURL:
		return blueprint.Button{Text: btn.Text, Type: blueprint.ButtonURL, URL: btn.URL}
	case *tg.KeyboardButtonSwitchInline:
		return blueprint.Button{Text: btn.Text, Type: blueprint.ButtonSwitchInline, Query: btn.Query}
	case *tg.KeyboardButtonRequestPhone:
		return blueprint.Button{Text: btn.Text, Type: blueprint.ButtonSharePhone}
	case *tg.KeyboardButtonRequestGeoLocation:
		return blueprint.Button{Text: btn.Text, Type: blueprint.ButtonShareGeo}
	default:
		return blueprint.Button{Text: buttonText(b), Type: b.TypeName()}
	}
}

func keyboardRows(rows []tg.KeyboardButtonRow) [][]blueprint.Button {
	out := make([][]blueprint.Button, 0, len(rows))
	for _, row := range rows {
		btns := make([]blueprint.Button, 0, len(row.Buttons))
		for _, b := range row.Buttons {
			switch btn := b.(type) {
			case *tg.KeyboardButtonRequestPhone:
				btns = append(btns, blueprint.Button{Text: btn.Text, Type: blueprint.ButtonSharePhone})
			case *tg.KeyboardButtonRequestGeoLocation:
				btns = append(btns, blueprint.Button{Text: btn.Text, Type: blueprint.ButtonShareGeo})
			default:
				btns = append(btns, blueprint.Button{Text: buttonText(b), Type: blueprint.ButtonText})
			}
		}
		out = append(out, btns)
	}
	return out
}

func buttonText(b tg.KeyboardButtonClass) string {
	if t, ok := b.(interface{ GetText() string }); ok {
		return t.GetText()
	}
	return ""
}

// decodePayload renders callback bytes as text. Lossy: each invalid
// byte becomes its own replacement rune, so binary payloads that differ
// only inside an invalid run still decode to distinct strings. Never
// fails.
func decodePayload(data []byte) string {
	if utf8.Valid(data) {
		return string(data)
	}
	var b strings.Builder
	b.Grow(len(data))
	for len(data) > 0 {
		r, size := utf8.DecodeRune(data)
		if r == utf8.RuneError && size == 1 {
			b.WriteRune(utf8.RuneError)
		} else {
			b.WriteRune(r)
		}
		data = data[size:]
	}
	return b.String()
}
