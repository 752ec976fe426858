// Package obs is a minimal obs-websocket v5 client: it authenticates,
// delivers the recording-stopped and replay-saved events, and issues
// requests.
package obs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/oklog/ulid/v2"
)

var (
	// ErrAuthRequired is returned when the server asks for a password and
	// none is configured.
	ErrAuthRequired = errors.New("obs: server requires a password")
	// ErrProtocol is returned for out-of-order or malformed handshake
	// messages.
	ErrProtocol = errors.New("obs: protocol error")
	// ErrRequestFailed is returned when a request completes with a failed
	// status.
	ErrRequestFailed = errors.New("obs: request failed")
	// ErrClosed is returned by calls on a closed connection.
	ErrClosed = errors.New("obs: connection closed")
)

const handshakeTimeout = 10 * time.Second

// EventKind is the host event a rename task reacts to.
type EventKind int

const (
	RecordingStopped EventKind = iota
	ReplaySaved
)

func (k EventKind) String() string {
	if k == ReplaySaved {
		return "replay saved"
	}
	return "recording stopped"
}

// Event is a finished recording or a saved replay.
type Event struct {
	Kind EventKind
	// Type is the host's event name.
	Type string
	// Path is the file the host wrote.
	Path string
}

// Client is one identified connection.
type Client struct {
	// Version is the server's obs-websocket version.
	Version string

	conn    *websocket.Conn
	writeMu sync.Mutex
	events  chan Event

	mu      sync.Mutex
	pending map[string]chan responseData
	err     error

	done      chan struct{}
	closing   chan struct{}
	closeOnce sync.Once
}

// Dial connects to url and completes the Hello/Identify handshake.
func Dial(ctx context.Context, url, password string) (*Client, error) {
	dialer := websocket.Dialer{
		Proxy:            http.ProxyFromEnvironment,
		HandshakeTimeout: handshakeTimeout,
		Subprotocols:     []string{Subprotocol},
	}
	conn, _, err := dialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("obs: dial %s: %w", url, err)
	}

	c := &Client{
		conn:    conn,
		events:  make(chan Event, 64),
		pending: make(map[string]chan responseData),
		done:    make(chan struct{}),
		closing: make(chan struct{}),
	}
	if err := c.identify(ctx, password); err != nil {
		conn.Close()
		return nil, err
	}
	go c.readLoop()
	return c, nil
}

func (c *Client) identify(ctx context.Context, password string) error {
	deadline := time.Now().Add(handshakeTimeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	_ = c.conn.SetReadDeadline(deadline)
	defer c.conn.SetReadDeadline(time.Time{})

	var msg envelope
	if err := c.conn.ReadJSON(&msg); err != nil {
		return fmt.Errorf("obs: read hello: %w", err)
	}
	if msg.Op != opHello {
		return fmt.Errorf("%w: expected hello, got op %d", ErrProtocol, msg.Op)
	}
	var hello helloData
	if err := json.Unmarshal(msg.D, &hello); err != nil {
		return fmt.Errorf("%w: hello: %v", ErrProtocol, err)
	}
	c.Version = hello.OBSWebSocketVersion

	id := identifyData{RPCVersion: rpcVersion, EventSubscriptions: subscriptionOutputs}
	if hello.Authentication != nil {
		if password == "" {
			return ErrAuthRequired
		}
		id.Authentication = authString(password, hello.Authentication.Salt, hello.Authentication.Challenge)
	}
	if err := c.write(opIdentify, id); err != nil {
		return fmt.Errorf("obs: identify: %w", err)
	}

	if err := c.conn.ReadJSON(&msg); err != nil {
		// The server closes with 4009 when authentication fails.
		return fmt.Errorf("obs: identify rejected: %w", err)
	}
	if msg.Op != opIdentified {
		return fmt.Errorf("%w: expected identified, got op %d", ErrProtocol, msg.Op)
	}
	var ok identifiedData
	if err := json.Unmarshal(msg.D, &ok); err != nil {
		return fmt.Errorf("%w: identified: %v", ErrProtocol, err)
	}
	return nil
}

// Events delivers recording-stopped and replay-saved events. The channel
// is closed when the connection ends.
func (c *Client) Events() <-chan Event { return c.events }

// Done is closed when the connection ends.
func (c *Client) Done() <-chan struct{} { return c.done }

// Err reports why the connection ended.
func (c *Client) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}

// Call sends a request and waits for its response data.
func (c *Client) Call(ctx context.Context, requestType string, data any) (json.RawMessage, error) {
	id := ulid.Make().String()
	ch := make(chan responseData, 1)

	c.mu.Lock()
	if c.err != nil {
		c.mu.Unlock()
		return nil, ErrClosed
	}
	c.pending[id] = ch
	c.mu.Unlock()
	defer func() {
		c.mu.Lock()
		delete(c.pending, id)
		c.mu.Unlock()
	}()

	if err := c.write(opRequest, requestData{RequestType: requestType, RequestID: id, RequestData: data}); err != nil {
		return nil, fmt.Errorf("obs: %s: %w", requestType, err)
	}

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-c.done:
		return nil, ErrClosed
	case resp := <-ch:
		st := resp.RequestStatus
		if !st.Result {
			return nil, fmt.Errorf("%w: %s (code %d) %s", ErrRequestFailed, requestType, st.Code, st.Comment)
		}
		return resp.ResponseData, nil
	}
}

// Close ends the connection and waits for the reader to stop.
func (c *Client) Close() error {
	c.closeOnce.Do(func() { close(c.closing) })
	c.mu.Lock()
	if c.err == nil {
		c.err = ErrClosed
	}
	c.mu.Unlock()

	c.writeMu.Lock()
	_ = c.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(time.Second))
	c.writeMu.Unlock()
	err := c.conn.Close()
	<-c.done
	return err
}

func (c *Client) write(op int, d any) error {
	msg, err := encode(op, d)
	if err != nil {
		return err
	}
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.conn.WriteJSON(msg)
}

func (c *Client) readLoop() {
	var err error
	defer func() {
		c.mu.Lock()
		if c.err == nil {
			c.err = err
		}
		c.mu.Unlock()
		close(c.done)
		close(c.events)
	}()

	for {
		var msg envelope
		if err = c.conn.ReadJSON(&msg); err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure) {
				err = ErrClosed
			}
			return
		}
		switch msg.Op {
		case opEvent:
			var ev eventData
			if json.Unmarshal(msg.D, &ev) != nil {
				continue
			}
			if e, ok := decodeEvent(ev); ok {
				select {
				case c.events <- e:
				case <-c.closing:
					err = ErrClosed
					return
				}
			}
		case opRequestResponse:
			var resp responseData
			if json.Unmarshal(msg.D, &resp) != nil {
				continue
			}
			c.mu.Lock()
			ch := c.pending[resp.RequestID]
			c.mu.Unlock()
			if ch != nil {
				ch <- resp
			}
		}
	}
}
