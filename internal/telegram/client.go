// Package telegram implements the transport boundary over the MTProto
// user API via gotd. It is the only package that knows about wire
// types; everything it hands back is already normalized.
package telegram

import (
	"context"
	"fmt"
	"time"

	"github.com/gotd/td/session"
	"github.com/gotd/td/telegram"
	"github.com/gotd/td/tg"

	"github.com/joebot/botprobe/internal/transport"
)

const (
	// captureInterval is how often the response poller re-reads history.
	captureInterval = 500 * time.Millisecond
	// quietWindow closes the capture once responses stop arriving.
	quietWindow = 3 * time.Second
	// settleDelay gives the bot time to react to a callback click
	// before new/edited messages are collected.
	settleDelay = 2 * time.Second
)

// Client is a live user session bound to one bot after Resolve.
type Client struct {
	client *telegram.Client
	api    *tg.Client
	user   *tg.User
	peer   *tg.InputPeerUser
}

// New creates a client with a file-backed session.
func New(apiID int, apiHash, sessionPath string) *Client {
	return &Client{
		client: telegram.NewClient(apiID, apiHash, telegram.Options{
			SessionStorage: &session.FileStorage{Path: sessionPath},
		}),
	}
}

// Run connects, verifies the stored session is authorized, and executes
// fn while the connection is up. Returns ErrNotAuthorized before fn
// runs when the session is missing or expired.
func (c *Client) Run(ctx context.Context, fn func(ctx context.Context) error) error {
	return c.client.Run(ctx, func(ctx context.Context) error {
		status, err := c.client.Auth().Status(ctx)
		if err != nil {
			return fmt.Errorf("auth status: %w", err)
		}
		if !status.Authorized {
			return transport.ErrNotAuthorized
		}
		c.api = c.client.API()
		return fn(ctx)
	})
}
