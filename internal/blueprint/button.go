package blueprint

// Button type tags. Unknown inline button kinds carry the raw transport
// type name instead, so nothing is lost in the blueprint.
const (
	ButtonCallback     = "callback"
	ButtonURL          = "url"
	ButtonSwitchInline = "switch_inline"
	ButtonSharePhone   = "share_phone"
	ButtonShareGeo     = "share_geo"
	ButtonText         = "text"
)

// Button is a single button in an inline or reply keyboard layout.
// Exactly one of Data, URL or Query is set depending on Type.
type Button struct {
	Text  string `json:"text"`
	Type  string `json:"type"`
	Data  string `json:"data,omitempty"`
	URL   string `json:"url,omitempty"`
	Query string `json:"query,omitempty"`
}

// IsCallback reports whether the button sends an opaque payload when
// clicked. Buttons with an empty payload are not clickable.
func (b Button) IsCallback() bool {
	return b.Type == ButtonCallback && b.Data != ""
}
