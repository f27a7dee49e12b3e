package telegram

import (
	"context"
	"fmt"
	"math/rand"
	"sort"
	"strings"
	"time"

	"github.com/gotd/td/tg"
	"github.com/gotd/td/tgerr"

	"github.com/joebot/botprobe/internal/blueprint"
	"github.com/joebot/botprobe/internal/transport"
)

// Resolve binds the client to the bot behind identifier.
func (c *Client) Resolve(ctx context.Context, identifier string) error {
	username := strings.TrimPrefix(identifier, "@")
	res, err := c.api.ContactsResolveUsername(ctx, &tg.ContactsResolveUsernameRequest{
		Username: username,
	})
	if err != nil {
		if tgerr.Is(err, "USERNAME_NOT_OCCUPIED") || tgerr.Is(err, "USERNAME_INVALID") {
			return transport.ErrNotFound
		}
		return fmt.Errorf("resolve %q: %w", identifier, err)
	}

	for _, u := range res.Users {
		user, ok := u.(*tg.User)
		if !ok {
			continue
		}
		if strings.EqualFold(user.Username, username) {
			c.user = user
			c.peer = &tg.InputPeerUser{UserID: user.ID, AccessHash: user.AccessHash}
			return nil
		}
	}
	return transport.ErrNotFound
}

// BotInfo fetches the profile and registered commands. The basic fields
// come from the resolved user, so a failed full-user lookup still
// yields a partial profile.
func (c *Client) BotInfo(ctx context.Context) (transport.BotProfile, error) {
	profile := transport.BotProfile{
		ID:                 c.user.ID,
		FirstName:          c.user.FirstName,
		Username:           c.user.Username,
		IsBot:              c.user.Bot,
		RegisteredCommands: []transport.BotCommand{},
	}

	full, err := c.api.UsersGetFullUser(ctx, &tg.InputUser{
		UserID:     c.user.ID,
		AccessHash: c.user.AccessHash,
	})
	if err != nil {
		return profile, fmt.Errorf("full user: %w", err)
	}

	profile.Description = full.FullUser.About
	if bi, ok := full.FullUser.GetBotInfo(); ok {
		if bi.Description != "" {
			profile.Description = bi.Description
		}
		for _, cmd := range bi.Commands {
			profile.RegisteredCommands = append(profile.RegisteredCommands, transport.BotCommand{
				Command:     "/" + cmd.Command,
				Description: cmd.Description,
			})
		}
	}
	return profile, nil
}

// SendText sends plain text and captures every response that arrives
// before the bot goes quiet or timeout elapses.
func (c *Client) SendText(ctx context.Context, text string, timeout time.Duration) transport.SendResult {
	baseline := c.latestMessageID(ctx)

	_, err := c.api.MessagesSendMessage(ctx, &tg.MessagesSendMessageRequest{
		Peer:     c.peer,
		Message:  text,
		RandomID: rand.Int63(),
	})
	if err != nil {
		return transport.SendResult{Err: classify(err)}
	}

	responses := c.captureResponses(ctx, baseline, timeout)
	res := transport.SendResult{Responses: responses}
	if len(responses) == 0 {
		res.TimedOut = true
	}
	return res
}

// captureResponses polls history for incoming messages newer than
// baseline, stopping on the quiet window or the deadline.
func (c *Client) captureResponses(ctx context.Context, baseline int, timeout time.Duration) []blueprint.Message {
	deadline := time.Now().Add(timeout)
	seen := make(map[int]bool)
	var out []blueprint.Message
	lastArrival := time.Now()

	for time.Now().Before(deadline) {
		select {
		case <-ctx.Done():
			return sortByID(out)
		case <-time.After(captureInterval):
		}

		msgs, err := c.historyRaw(ctx, 10)
		if err != nil {
			continue
		}
		for _, m := range msgs {
			if m.Out || m.ID <= baseline || seen[m.ID] {
				continue
			}
			seen[m.ID] = true
			out = append(out, Normalize(m))
			lastArrival = time.Now()
		}
		if len(out) > 0 && time.Since(lastArrival) > quietWindow {
			break
		}
	}
	return sortByID(out)
}

// ClickCallback presses a callback button and reports the answer plus
// whatever new or edited message the click produced.
func (c *Client) ClickCallback(ctx context.Context, msgID int, data string) transport.ClickResult {
	pre, err := c.recentIncomingIDs(ctx, 3)
	if err != nil {
		return transport.ClickResult{Err: classify(err)}
	}

	req := &tg.MessagesGetBotCallbackAnswerRequest{Peer: c.peer, MsgID: msgID}
	req.SetData([]byte(data))

	var result transport.ClickResult
	answer, err := c.api.MessagesGetBotCallbackAnswer(ctx, req)
	switch {
	case err == nil:
		result.Answer = formatAnswer(answer)
	case tgerr.Is(err, "BOT_RESPONSE_TIMEOUT"):
		// The bot never answered the callback; new messages may still
		// arrive, so keep going with a nil answer.
	default:
		result.Err = classify(err)
		return result
	}

	select {
	case <-ctx.Done():
		return result
	case <-time.After(settleDelay):
	}

	// New message: the freshest incoming message that was not there
	// before the click. Scanning stops at our own last outgoing
	// message so stale history is never mistaken for a reaction.
	if msgs, err := c.historyRaw(ctx, 5); err == nil {
		for _, m := range msgs {
			if m.Out {
				break
			}
			if !pre[m.ID] {
				nm := Normalize(m)
				result.NewMessage = &nm
				break
			}
		}
	}

	// The origin message counts as edited only when it carries an edit
	// timestamp.
	if m := c.messageByID(ctx, msgID); m != nil && m.EditDate > 0 {
		em := Normalize(m)
		result.EditedMessage = &em
	}

	return result
}

// RecentMessages returns up to limit incoming messages, newest first.
func (c *Client) RecentMessages(ctx context.Context, limit int) ([]blueprint.Message, error) {
	msgs, err := c.historyRaw(ctx, limit)
	if err != nil {
		return nil, classify(err)
	}
	var out []blueprint.Message
	for _, m := range msgs {
		if m.Out {
			continue
		}
		out = append(out, Normalize(m))
	}
	return out, nil
}

// formatAnswer mirrors the answer shape the rest of the system expects:
// alerts and URLs are prefixed, a missing answer stays nil.
func formatAnswer(answer *tg.MessagesBotCallbackAnswer) *string {
	var out *string
	if msg, ok := answer.GetMessage(); ok {
		s := msg
		if answer.Alert {
			s = "[ALERT] " + msg
		}
		out = &s
	}
	if url, ok := answer.GetURL(); ok && url != "" {
		s := "[URL] " + url
		out = &s
	}
	return out
}

// classify maps wire errors onto the stable label vocabulary.
func classify(err error) error {
	if d, ok := tgerr.AsFloodWait(err); ok {
		return &transport.FloodWaitError{Seconds: int(d.Seconds())}
	}
	if tgerr.Is(err, "MESSAGE_ID_INVALID") {
		return transport.ErrMessageIDInvalid
	}
	if tgerr.Is(err, "DATA_INVALID") {
		return transport.ErrDataInvalid
	}
	return err
}

// historyRaw fetches recent messages in both directions, newest first.
func (c *Client) historyRaw(ctx context.Context, limit int) ([]*tg.Message, error) {
	res, err := c.api.MessagesGetHistory(ctx, &tg.MessagesGetHistoryRequest{
		Peer:  c.peer,
		Limit: limit,
	})
	if err != nil {
		return nil, err
	}
	modified, ok := res.AsModified()
	if !ok {
		return nil, fmt.Errorf("unexpected history response %T", res)
	}
	var out []*tg.Message
	for _, m := range modified.GetMessages() {
		if msg, ok := m.(*tg.Message); ok {
			out = append(out, msg)
		}
	}
	return out, nil
}

func (c *Client) latestMessageID(ctx context.Context) int {
	msgs, err := c.historyRaw(ctx, 1)
	if err != nil || len(msgs) == 0 {
		return 0
	}
	return msgs[0].ID
}

func (c *Client) recentIncomingIDs(ctx context.Context, limit int) (map[int]bool, error) {
	msgs, err := c.historyRaw(ctx, limit)
	if err != nil {
		return nil, err
	}
	ids := make(map[int]bool, len(msgs))
	for _, m := range msgs {
		if !m.Out {
			ids[m.ID] = true
		}
	}
	return ids, nil
}

func (c *Client) messageByID(ctx context.Context, msgID int) *tg.Message {
	res, err := c.api.MessagesGetMessages(ctx, []tg.InputMessageClass{
		&tg.InputMessageID{ID: msgID},
	})
	if err != nil {
		return nil
	}
	modified, ok := res.AsModified()
	if !ok {
		return nil
	}
	for _, m := range modified.GetMessages() {
		if msg, ok := m.(*tg.Message); ok && msg.ID == msgID {
			return msg
		}
	}
	return nil
}

func sortByID(msgs []blueprint.Message) []blueprint.Message {
	sort.Slice(msgs, func(i, j int) bool { return msgs[i].ID < msgs[j].ID })
	return msgs
}
