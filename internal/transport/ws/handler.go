// Package ws exposes the bot over websockets for local development: each
// connection acts as one chat, speaking JSON frames instead of a real
// chat platform.
package ws

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"quizhub-service/internal/domain"
	"quizhub-service/internal/transport/command"
	"quizhub-service/internal/transport/telegram"
)

// Handler upgrades connections and doubles as app.Transport for every
// chat that is currently connected.
type Handler struct {
	router   *command.Router
	sink     telegram.AnswerSink
	upgrader websocket.Upgrader

	mu    sync.RWMutex
	chats map[string]*chatConn
}

type chatConn struct {
	mu   sync.Mutex // gorilla allows one concurrent writer
	conn *websocket.Conn
}

func (c *chatConn) writeJSON(v interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteJSON(v)
}

func NewHandler() *Handler {
	return &Handler{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		chats: make(map[string]*chatConn),
	}
}

// Attach wires the router and answer sink after service construction.
func (h *Handler) Attach(router *command.Router, sink telegram.AnswerSink) {
	h.router = router
	h.sink = sink
}

type inboundFrame struct {
	Type     string `json:"type"` // "message" or "answer"
	UserID   string `json:"userId"`
	Username string `json:"username,omitempty"`
	Text     string `json:"text,omitempty"`
	Pool     string `json:"pool,omitempty"`
	Correct  bool   `json:"correct,omitempty"`
}

type outboundFrame struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

type questionPayload struct {
	Pool    string   `json:"pool"`
	Text    string   `json:"text"`
	Options []string `json:"options"`
}

// SendText implements app.Transport. Delivery to a chat with no live
// connection is a per-item failure, which is exactly what broadcast
// isolation needs to be exercised against.
func (h *Handler) SendText(_ context.Context, chatID, text string) error {
	conn, ok := h.chat(chatID)
	if !ok {
		return fmt.Errorf("chat %s not connected: %w", chatID, domain.ErrDeliveryFailed)
	}
	return conn.writeJSON(outboundFrame{Type: "text", Payload: text})
}

// SendQuestion implements app.Transport.
func (h *Handler) SendQuestion(_ context.Context, chatID string, pool string, q domain.Question) error {
	conn, ok := h.chat(chatID)
	if !ok {
		return fmt.Errorf("chat %s not connected: %w", chatID, domain.ErrDeliveryFailed)
	}
	return conn.writeJSON(outboundFrame{Type: "question", Payload: questionPayload{
		Pool:    pool,
		Text:    q.Text,
		Options: q.Options,
	}})
}

// ServeWS registers the connection as a chat and feeds its frames into
// the command router.
func (h *Handler) ServeWS(w http.ResponseWriter, r *http.Request) {
	chatID := r.URL.Query().Get("chatId")
	if chatID == "" {
		http.Error(w, "missing chatId", http.StatusBadRequest)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	cc := &chatConn{conn: conn}
	h.mu.Lock()
	h.chats[chatID] = cc
	h.mu.Unlock()
	defer func() {
		h.mu.Lock()
		delete(h.chats, chatID)
		h.mu.Unlock()
	}()

	for {
		var frame inboundFrame
		if err := conn.ReadJSON(&frame); err != nil {
			return
		}
		switch frame.Type {
		case "message":
			replies := h.router.Handle(r.Context(), command.Event{
				ChatID:   chatID,
				UserID:   frame.UserID,
				Username: frame.Username,
				Text:     frame.Text,
			})
			for _, reply := range replies {
				if err := cc.writeJSON(outboundFrame{Type: "text", Payload: reply}); err != nil {
					return
				}
			}
		case "answer":
			if _, err := h.sink.RecordAnswer(r.Context(), frame.UserID, frame.Pool, frame.Correct); err != nil {
				_ = cc.writeJSON(outboundFrame{Type: "error", Payload: err.Error()})
			}
		default:
			_ = cc.writeJSON(outboundFrame{Type: "error", Payload: "unsupported frame type"})
		}
	}
}

func (h *Handler) chat(chatID string) (*chatConn, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	conn, ok := h.chats[chatID]
	return conn, ok
}
