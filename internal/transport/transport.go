// Package transport defines the boundary between the exploration engine
// and the messaging backend. Implementations are bot-scoped: Resolve
// binds the transport to one bot, every later call targets it.
package transport

import (
	"context"
	"time"

	"github.com/joebot/botprobe/internal/blueprint"
)

// BotCommand is one command the bot registered with the platform.
type BotCommand struct {
	Command     string `json:"command"`
	Description string `json:"description"`
}

// BotProfile is the bot metadata visible before any interaction. It
// degrades to partial data on failure, with Error set.
type BotProfile struct {
	ID                 int64        `json:"id,omitempty"`
	FirstName          string       `json:"first_name,omitempty"`
	Username           string       `json:"username,omitempty"`
	IsBot              bool         `json:"is_bot,omitempty"`
	Description        string       `json:"description,omitempty"`
	RegisteredCommands []BotCommand `json:"registered_commands"`
	Error              string       `json:"error,omitempty"`
}

// SendResult is the outcome of sending one text message. TimedOut is set
// when the capture window closed without any response and no harder
// error occurred.
type SendResult struct {
	Responses []blueprint.Message
	TimedOut  bool
	Err       error
}

// ClickResult is the outcome of one callback button click. Answer is nil
// when the bot sent no callback answer; alert and URL answers arrive
// with "[ALERT] " and "[URL] " prefixes. NewMessage and EditedMessage
// are whatever the click produced within the capture window.
type ClickResult struct {
	Answer        *string
	NewMessage    *blueprint.Message
	EditedMessage *blueprint.Message
	Err           error
}

// Transport is a live connection to the messaging platform, scoped to a
// single bot after Resolve succeeds.
type Transport interface {
	// Resolve binds the transport to the bot behind identifier.
	// Returns ErrNotFound when no such bot exists.
	Resolve(ctx context.Context, identifier string) error

	// BotInfo fetches the bot profile and registered commands.
	BotInfo(ctx context.Context) (BotProfile, error)

	// SendText sends plain text and captures responses until the bot
	// goes quiet or timeout elapses.
	SendText(ctx context.Context, text string, timeout time.Duration) SendResult

	// ClickCallback presses the callback button with the given payload
	// on the given message.
	ClickCallback(ctx context.Context, msgID int, data string) ClickResult

	// RecentMessages returns up to limit incoming messages,
	// newest first, each with its full button layout.
	RecentMessages(ctx context.Context, limit int) ([]blueprint.Message, error)
}
