package blueprint

// Message is the canonical record of one bot message: text, the exact
// button layout (rows preserved, in order) and a media tag. It is
// produced once by the transport normalizer and never mutated.
type Message struct {
	ID            int        `json:"id"`
	Text          string     `json:"text"`
	Date          string     `json:"date,omitempty"`
	InlineButtons [][]Button `json:"inline_buttons,omitempty"`
	ReplyKeyboard [][]Button `json:"reply_keyboard,omitempty"`
	HasMedia      bool       `json:"has_media"`
	MediaType     string     `json:"media_type,omitempty"`
}

// CallbackButtons returns the clickable inline buttons in layout order.
func (m *Message) CallbackButtons() []Button {
	var out []Button
	for _, row := range m.InlineButtons {
		for _, b := range row {
			if b.IsCallback() {
				out = append(out, b)
			}
		}
	}
	return out
}

// InlineTexts returns the text of every inline button, clickable or not,
// in layout order.
func (m *Message) InlineTexts() []string {
	var out []string
	for _, row := range m.InlineButtons {
		for _, b := range row {
			out = append(out, b.Text)
		}
	}
	return out
}

// ReplyTexts returns the plain-text reply keyboard labels in layout
// order. Share-phone and share-geo buttons are skipped: sending their
// label as text does not trigger them.
func (m *Message) ReplyTexts() []string {
	var out []string
	for _, row := range m.ReplyKeyboard {
		for _, b := range row {
			if b.Type == ButtonText {
				out = append(out, b.Text)
			}
		}
	}
	return out
}

// FindCallback returns the callback button carrying the given payload,
// if the message still exposes it.
func (m *Message) FindCallback(data string) (Button, bool) {
	for _, b := range m.CallbackButtons() {
		if b.Data == data {
			return b, true
		}
	}
	return Button{}, false
}
