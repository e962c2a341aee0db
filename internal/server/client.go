package server

import (
	"bytes"
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"teamhub/internal/domain/user"
	"teamhub/internal/events"
	"teamhub/internal/services"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512 * 1024
)

var (
	newline = []byte{'\n'}
	space   = []byte{' '}
)

// Client represents a single WebSocket connection
type Client struct {
	hub      *Hub
	conn     *websocket.Conn
	send     chan []byte
	userID   uuid.UUID
	username string
	clientID string

	// dests tracks this connection's subscriptions; guarded by hub.mu.
	dests map[events.Destination]struct{}

	chat         *services.ChatService
	lastActivity time.Time
	logger       *WebSocketLogger
}

// ClientMessage is the inbound wire shape. Which fields matter depends on
// Type; unexpected extras are ignored.
type ClientMessage struct {
	Type        string `json:"type"`
	Message     string `json:"message,omitempty"`
	Room        string `json:"room,omitempty"`
	RecipientID string `json:"recipient_id,omitempty"`
	ParentID    string `json:"parent_id,omitempty"`
	MessageID   string `json:"message_id,omitempty"`
	Emoji       string `json:"emoji,omitempty"`
	Status      string `json:"status,omitempty"`
}

func NewClient(hub *Hub, conn *websocket.Conn, u user.User, clientID string, chat *services.ChatService, logger *WebSocketLogger) *Client {
	return &Client{
		hub:          hub,
		conn:         conn,
		send:         make(chan []byte, 256),
		userID:       u.ID,
		username:     u.Username,
		clientID:     clientID,
		dests:        make(map[events.Destination]struct{}),
		chat:         chat,
		lastActivity: time.Now(),
		logger:       logger,
	}
}

func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		c.lastActivity = time.Now()
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.Error("websocket unexpected close", c.userID, c.clientID, err)
			}
			break
		}

		message = bytes.TrimSpace(bytes.Replace(message, newline, space, -1))
		c.lastActivity = time.Now()

		if err := c.handleMessage(message); err != nil {
			c.logger.Error("websocket handle message failed", c.userID, c.clientID, err)
		}
	}
}

func (c *Client) handleMessage(message []byte) error {
	var msg ClientMessage
	if err := json.Unmarshal(message, &msg); err != nil {
		return err
	}

	ctx := context.Background()

	switch msg.Type {
	case "join_room":
		return c.handleJoinRoom(ctx, msg)
	case "leave_room":
		return c.handleLeaveRoom(ctx, msg)
	case "send_message":
		return c.chat.Send(ctx, services.SendMessageInput{
			SenderID:    c.userID,
			Content:     msg.Message,
			Room:        msg.Room,
			RecipientID: msg.RecipientID,
		})
	case "reply_message":
		return c.chat.Reply(ctx, services.SendMessageInput{
			SenderID:    c.userID,
			Content:     msg.Message,
			Room:        msg.Room,
			RecipientID: msg.RecipientID,
			ParentID:    msg.ParentID,
		})
	case "add_reaction":
		return c.chat.AddReaction(ctx, c.userID, msg.MessageID, msg.Emoji)
	case "remove_reaction":
		return c.chat.RemoveReaction(ctx, c.userID, msg.MessageID, msg.Emoji)
	case "start_typing":
		c.chat.StartTyping(ctx, c.username, c.clientID, msg.Room)
		return nil
	case "stop_typing":
		c.chat.StopTyping(ctx, c.clientID, msg.Room)
		return nil
	case "set_status":
		return c.chat.SetStatus(ctx, c.userID, msg.Status)
	case "ping":
		return c.handlePing()
	default:
		c.logger.Warn("unknown message type", c.userID, c.clientID, zap.String("msg_type", msg.Type))
		return nil
	}
}

func (c *Client) handleJoinRoom(ctx context.Context, msg ClientMessage) error {
	dest, ok := c.chat.ResolveRoomDestination(ctx, msg.Room, c.userID)
	if !ok {
		c.logger.Warn("join for unknown room", c.userID, c.clientID, zap.String("room", msg.Room))
		return nil
	}
	c.hub.Subscribe(c, dest)
	return nil
}

func (c *Client) handleLeaveRoom(ctx context.Context, msg ClientMessage) error {
	dest, ok := c.chat.ResolveRoomDestination(ctx, msg.Room, c.userID)
	if !ok {
		return nil
	}
	c.hub.Unsubscribe(c, dest)
	return nil
}

func (c *Client) handlePing() error {
	select {
	case c.send <- []byte(`{"type":"pong"}`):
	default:
	}
	return nil
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := c.conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)

			n := len(c.send)
			for i := 0; i < n; i++ {
				w.Write(newline)
				w.Write(<-c.send)
			}

			if err := w.Close(); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

			if time.Since(c.lastActivity) > pongWait*2 {
				c.logger.Info("client idle timeout", c.userID, c.clientID)
				return
			}
		}
	}
}
