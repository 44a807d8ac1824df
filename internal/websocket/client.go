package websocket

import (
	"encoding/json"
	"strings"
	"sync/atomic"
	"time"

	"github.com/gofiber/websocket/v2"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 8192
)

// Frame types exchanged with the browser.
const (
	FrameAsk    = "ask"
	FrameAnswer = "answer"
	FrameError  = "error"
)

// Inbound is a frame sent by the browser.
type Inbound struct {
	Type     string `json:"type"`
	Question string `json:"question"`
}

// Outbound is a frame sent to the browser.
type Outbound struct {
	Type    string      `json:"type"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

// Client is a middleman between the websocket connection and the hub.
type Client struct {
	Hub *Hub

	// The websocket connection.
	Conn *websocket.Conn

	SessionID string

	// Buffered channel of outbound messages.
	Send chan []byte

	// busy is set while a question of this socket is being answered.
	busy atomic.Bool
}

func newClient(hub *Hub, conn *websocket.Conn, sessionID string) *Client {
	return &Client{Hub: hub, Conn: conn, SessionID: sessionID, Send: make(chan []byte, 16)}
}

// ParseInbound decodes a browser frame. Plain text is treated as a question.
func ParseInbound(raw []byte) (Inbound, error) {
	trimmed := strings.TrimSpace(string(raw))
	if !strings.HasPrefix(trimmed, "{") {
		return Inbound{Type: FrameAsk, Question: trimmed}, nil
	}

	var in Inbound
	if err := json.Unmarshal(raw, &in); err != nil {
		return Inbound{}, err
	}
	if in.Type == "" {
		in.Type = FrameAsk
	}
	return in, nil
}

func encodeFrame(out Outbound) []byte {
	data, _ := json.Marshal(out)
	return data
}

// reply queues a frame for this socket only.
func (c *Client) reply(out Outbound) {
	c.Hub.sendTo(c, encodeFrame(out))
}

// readPump pumps frames from the websocket connection to onFrame.
func (c *Client) readPump(onFrame func(*Client, Inbound)) {
	defer func() {
		c.Hub.leave(c)
		c.Conn.Close()
	}()
	c.Conn.SetReadLimit(maxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, raw, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.Hub.logger.Warn("WS", "Socket closed unexpectedly", map[string]interface{}{
					"session_id": c.SessionID,
					"error":      err.Error(),
				})
			}
			break
		}

		in, err := ParseInbound(raw)
		if err != nil {
			c.reply(Outbound{Type: FrameError, Message: "invalid frame"})
			continue
		}
		onFrame(c, in)
	}
}

// writePump pumps messages from the hub to the websocket connection.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The hub closed the channel.
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
