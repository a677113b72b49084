// Package client is the Go SDK for the campus chat server: a websocket
// client with automatic reconnect plus the Timeline reconciler that merges
// pushed and fetched messages into one consistent view.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"math/rand"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"nhooyr.io/websocket"

	"campus-chat/models"
)

// Config configures a Client.
type Config struct {
	BaseURL string // e.g. http://localhost:3001
	Token   string

	AutoReconnect        bool
	MaxReconnectAttempts int
	ReconnectBaseDelay   time.Duration
	ReconnectMaxDelay    time.Duration
	HTTPClient           *http.Client
}

func (c *Config) defaults() {
	if c.ReconnectBaseDelay == 0 {
		c.ReconnectBaseDelay = time.Second
	}
	if c.ReconnectMaxDelay == 0 {
		c.ReconnectMaxDelay = 30 * time.Second
	}
	if c.MaxReconnectAttempts == 0 {
		c.MaxReconnectAttempts = 10
	}
	if c.HTTPClient == nil {
		c.HTTPClient = http.DefaultClient
	}
}

// Client talks to the chat server over one websocket plus the history HTTP
// API. On reconnect it re-issues every join the application made, then
// invokes OnReconnected so the application can re-fetch the latest history
// page and close any gap from the disconnected interval.
type Client struct {
	config Config

	mu      sync.Mutex
	conn    *websocket.Conn
	baseCtx context.Context // parent for every read loop context
	cancel  context.CancelFunc
	closed  bool
	attempt int

	joined map[string]models.ClientEvent // room key -> join event to replay

	// Handlers are set before Connect and not mutated afterwards.
	OnMessage       func(models.Message)
	OnDirectMessage func(models.Message)
	OnMessageError  func(code, details string)
	OnReconnected   func()
}

func New(config Config) *Client {
	config.defaults()
	return &Client{
		config: config,
		joined: make(map[string]models.ClientEvent),
	}
}

// Connect dials the websocket and starts the read loop.
func (c *Client) Connect(ctx context.Context) error {
	conn, err := c.dial(ctx)
	if err != nil {
		return err
	}

	loopCtx, cancel := context.WithCancel(ctx)
	c.mu.Lock()
	if c.cancel != nil {
		c.cancel()
	}
	c.baseCtx = ctx
	c.conn = conn
	c.cancel = cancel
	c.attempt = 0
	c.mu.Unlock()

	go c.readLoop(loopCtx, conn)
	return nil
}

func (c *Client) dial(ctx context.Context) (*websocket.Conn, error) {
	wsURL := strings.Replace(c.config.BaseURL, "https://", "wss://", 1)
	wsURL = strings.Replace(wsURL, "http://", "ws://", 1)
	wsURL += "/ws?access_token=" + url.QueryEscape(c.config.Token)

	conn, _, err := websocket.Dial(ctx, wsURL, nil)
	if err != nil {
		return nil, fmt.Errorf("websocket dial: %w", err)
	}
	return conn, nil
}

// Close shuts the connection down for good; no reconnect follows.
func (c *Client) Close() error {
	c.mu.Lock()
	c.closed = true
	if c.cancel != nil {
		c.cancel()
	}
	conn := c.conn
	c.conn = nil
	c.mu.Unlock()

	if conn != nil {
		return conn.Close(websocket.StatusNormalClosure, "client close")
	}
	return nil
}

// JoinUser subscribes to a user's personal room (normally the caller's own).
func (c *Client) JoinUser(ctx context.Context, userID string) error {
	ev := models.ClientEvent{Event: models.EventJoinUser, UserID: userID}
	if err := c.send(ctx, ev); err != nil {
		return err
	}
	c.mu.Lock()
	c.joined[models.PersonalRoom(userID)] = ev
	c.mu.Unlock()
	return nil
}

func (c *Client) LeaveUser(ctx context.Context, userID string) error {
	c.mu.Lock()
	delete(c.joined, models.PersonalRoom(userID))
	c.mu.Unlock()
	return c.send(ctx, models.ClientEvent{Event: models.EventLeaveUser, UserID: userID})
}

func (c *Client) JoinGroup(ctx context.Context, groupID string) error {
	ev := models.ClientEvent{Event: models.EventJoinGroup, GroupID: groupID}
	if err := c.send(ctx, ev); err != nil {
		return err
	}
	c.mu.Lock()
	c.joined[models.GroupRoom(groupID)] = ev
	c.mu.Unlock()
	return nil
}

func (c *Client) LeaveGroup(ctx context.Context, groupID string) error {
	c.mu.Lock()
	delete(c.joined, models.GroupRoom(groupID))
	c.mu.Unlock()
	return c.send(ctx, models.ClientEvent{Event: models.EventLeaveGroup, GroupID: groupID})
}

// SendMessage sends a group message. The persisted record, including the
// sender's own copy, arrives back through the message push.
func (c *Client) SendMessage(ctx context.Context, groupID, text string) error {
	return c.send(ctx, models.ClientEvent{Event: models.EventSend, GroupID: groupID, Text: text})
}

// SendDirectMessage sends a 1:1 message.
func (c *Client) SendDirectMessage(ctx context.Context, receiverID, text string) error {
	return c.send(ctx, models.ClientEvent{Event: models.EventSendDirect, ReceiverID: receiverID, Text: text})
}

func (c *Client) send(ctx context.Context, ev models.ClientEvent) error {
	c.mu.Lock()
	conn := c.conn
	c.mu.Unlock()
	if conn == nil {
		return fmt.Errorf("not connected")
	}

	data, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	return conn.Write(ctx, websocket.MessageText, data)
}

// GroupHistory fetches one page of a group room's history.
func (c *Client) GroupHistory(ctx context.Context, groupID string, page, limit int) (*models.HistoryPage, error) {
	return c.history(ctx, "/api/history/group/"+url.PathEscape(groupID), page, limit)
}

// DirectHistory fetches one page of a direct conversation's history.
func (c *Client) DirectHistory(ctx context.Context, userA, userB string, page, limit int) (*models.HistoryPage, error) {
	return c.history(ctx, "/api/history/direct/"+url.PathEscape(userA)+"/"+url.PathEscape(userB), page, limit)
}

func (c *Client) history(ctx context.Context, path string, page, limit int) (*models.HistoryPage, error) {
	u := c.config.BaseURL + path + "?page=" + strconv.Itoa(page)
	if limit > 0 {
		u += "&limit=" + strconv.Itoa(limit)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.config.Token)

	resp, err := c.config.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch history: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch history: status %d", resp.StatusCode)
	}

	var pageResp models.HistoryPage
	if err := json.NewDecoder(resp.Body).Decode(&pageResp); err != nil {
		return nil, fmt.Errorf("decode history: %w", err)
	}
	return &pageResp, nil
}

// LoadOlder is the backward-scroll path: when the timeline says an older
// page is due, fetch it and prepend. fetch is one of GroupHistory or
// DirectHistory curried by the caller.
func (c *Client) LoadOlder(ctx context.Context, t *Timeline, fetch func(ctx context.Context, page int) (*models.HistoryPage, error)) error {
	page := t.BeginLoad()
	result, err := fetch(ctx, page)
	if err != nil {
		t.AbortLoad()
		return err
	}
	t.ApplyHistoryPage(result, page == 1)
	return nil
}

func (c *Client) readLoop(ctx context.Context, conn *websocket.Conn) {
	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			c.mu.Lock()
			closed := c.closed
			if c.conn == conn {
				c.conn = nil
			}
			c.mu.Unlock()
			if closed || ctx.Err() != nil {
				return
			}
			if c.config.AutoReconnect {
				c.reconnect()
			}
			return
		}

		var ev models.ServerEvent
		if json.Unmarshal(data, &ev) != nil {
			continue
		}

		switch ev.Event {
		case models.EventMessage:
			if c.OnMessage != nil && ev.Message != nil {
				c.OnMessage(*ev.Message)
			}
		case models.EventDirect:
			if c.OnDirectMessage != nil && ev.Message != nil {
				c.OnDirectMessage(*ev.Message)
			}
		case models.EventError:
			if c.OnMessageError != nil {
				c.OnMessageError(ev.Error, ev.Details)
			}
		}
	}
}

// reconnect redials with jittered exponential backoff. After a successful
// dial it replays every recorded join, then hands control to OnReconnected;
// re-fetching the latest history page there closes the push gap from the
// disconnected interval.
func (c *Client) reconnect() {
	c.mu.Lock()
	ctx := c.baseCtx
	c.mu.Unlock()

	for {
		c.mu.Lock()
		if c.closed || c.attempt >= c.config.MaxReconnectAttempts {
			c.mu.Unlock()
			return
		}
		attempt := c.attempt
		c.attempt++
		c.mu.Unlock()

		jitter := time.Duration(rand.Float64() * float64(c.config.ReconnectBaseDelay) * 0.5)
		delay := time.Duration(math.Min(
			float64(c.config.ReconnectBaseDelay)*math.Pow(2, float64(attempt))+float64(jitter),
			float64(c.config.ReconnectMaxDelay),
		))

		select {
		case <-ctx.Done():
			return
		case <-time.After(delay):
		}

		conn, err := c.dial(ctx)
		if err != nil {
			continue
		}

		loopCtx, cancel := context.WithCancel(ctx)
		c.mu.Lock()
		if c.cancel != nil {
			c.cancel()
		}
		c.conn = conn
		c.cancel = cancel
		c.attempt = 0
		rejoin := make([]models.ClientEvent, 0, len(c.joined))
		for _, ev := range c.joined {
			rejoin = append(rejoin, ev)
		}
		c.mu.Unlock()

		for _, ev := range rejoin {
			if err := c.send(ctx, ev); err != nil {
				break
			}
		}

		go c.readLoop(loopCtx, conn)

		if c.OnReconnected != nil {
			c.OnReconnected()
		}
		return
	}
}
