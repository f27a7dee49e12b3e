package blueprint

// Interaction records one text message sent to the bot and everything
// that came back. Responses keep arrival order.
type Interaction struct {
	Action    string    `json:"action"`
	Sent      string    `json:"sent"`
	Responses []Message `json:"responses"`
	Error     string    `json:"error,omitempty"`
	TimedOut  bool      `json:"timed_out"`

	// Phase-specific annotations.
	ButtonLabel        string `json:"button_label,omitempty"`
	CommandDescription string `json:"command_description,omitempty"`
	InputLabel         string `json:"input_label,omitempty"`
	Recognized         *bool  `json:"recognized,omitempty"`
}

// Responded reports whether the bot answered at all.
func (r *Interaction) Responded() bool {
	return len(r.Responses) > 0
}

// Node is one clicked callback button in the conversation graph. Path is
// the route from the initiating command, built with " > [text]" segments.
// CallbackAnswer is nil when the bot sent no answer, which is distinct
// from an empty answer string.
type Node struct {
	Path           string   `json:"path"`
	Depth          int      `json:"depth"`
	ButtonText     string   `json:"button_text"`
	ButtonData     string   `json:"button_data"`
	CallbackAnswer *string  `json:"callback_answer"`
	ResultMessage  *Message `json:"result_message,omitempty"`
	ResultEdited   *Message `json:"result_edited,omitempty"`
	Error          string   `json:"error,omitempty"`
}

// ResultText returns the text of whichever result message carried one,
// preferring the edited message when both are present.
func (n *Node) ResultText() string {
	text := ""
	if n.ResultMessage != nil {
		text = n.ResultMessage.Text
	}
	if n.ResultEdited != nil {
		text = n.ResultEdited.Text
	}
	return text
}

// RepeatProbe records one re-click of a previously visited button and
// whether the outcome drifted from the original.
type RepeatProbe struct {
	Path         string `json:"path"`
	ButtonText   string `json:"button_text"`
	ButtonData   string `json:"button_data"`
	Inconsistent bool   `json:"inconsistent"`
	Difference   string `json:"difference,omitempty"`
	Error        string `json:"error,omitempty"`
}

// Step is one action of a targeted path run: the initial command send,
// or a button click further along the path.
type Step struct {
	Action           string    `json:"action"`
	Command          string    `json:"command,omitempty"`
	Target           string    `json:"target,omitempty"`
	MatchedText      string    `json:"matched_text,omitempty"`
	ButtonData       string    `json:"button_data,omitempty"`
	Responses        []Message `json:"responses,omitempty"`
	CallbackAnswer   *string   `json:"callback_answer,omitempty"`
	NewMessage       *Message  `json:"new_message,omitempty"`
	EditedMessage    *Message  `json:"edited_message,omitempty"`
	AvailableButtons []string  `json:"available_buttons,omitempty"`
	TimedOut         bool      `json:"timed_out,omitempty"`
	Error            string    `json:"error,omitempty"`
	Note             string    `json:"note,omitempty"`
}
