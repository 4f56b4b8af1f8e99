package ws_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"quizhub-service/internal/app"
	"quizhub-service/internal/domain"
	"quizhub-service/internal/infra/memory"
	"quizhub-service/internal/transport/command"
	"quizhub-service/internal/transport/ws"
)

type frame struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

func newTestServer(t *testing.T) (*httptest.Server, *ws.Handler) {
	t.Helper()
	handler := ws.NewHandler()
	service := app.NewService(
		memory.NewUserStore(),
		memory.NewPoolRepository(memory.NewStaticPoolLoader(map[string]domain.Pool{
			"PoolA": {
				Name: "PoolA",
				Questions: []domain.Question{
					{Text: "What is 2 + 2?", Options: []string{"3", "4"}, Correct: 1},
				},
			},
		}), time.Minute),
		memory.NewChatRegistry(),
		memory.NewSessionStore(),
		handler,
		app.Options{},
	)
	handler.Attach(command.NewRouter(service, "admin"), service)

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", handler.ServeWS)
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server, handler
}

func dial(t *testing.T, server *httptest.Server, chatID string) *websocket.Conn {
	t.Helper()
	url := "ws" + server.URL[len("http"):] + "/ws?chatId=" + chatID
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial %s: %v", url, err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readNext(t *testing.T, conn *websocket.Conn) frame {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	var f frame
	if err := conn.ReadJSON(&f); err != nil {
		t.Fatalf("read frame: %v", err)
	}
	return f
}

func sendMessage(t *testing.T, conn *websocket.Conn, userID, username, text string) {
	t.Helper()
	err := conn.WriteJSON(map[string]string{
		"type": "message", "userId": userID, "username": username, "text": text,
	})
	if err != nil {
		t.Fatalf("write frame: %v", err)
	}
}

func textPayload(t *testing.T, f frame) string {
	t.Helper()
	if f.Type != "text" {
		t.Fatalf("expected text frame, got %q", f.Type)
	}
	var s string
	if err := json.Unmarshal(f.Payload, &s); err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	return s
}

func TestMissingChatIDRejected(t *testing.T) {
	server, _ := newTestServer(t)

	resp, err := http.Get(server.URL + "/ws")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestSignupOverWebsocket(t *testing.T) {
	server, _ := newTestServer(t)
	conn := dial(t, server, "c1")

	sendMessage(t, conn, "u1", "alice", "/signup Alice")
	if got := textPayload(t, readNext(t, conn)); got != "🎉 Registered as Alice!" {
		t.Fatalf("unexpected reply: %q", got)
	}
}

func TestQuizDeliveredAsQuestionFrame(t *testing.T) {
	server, _ := newTestServer(t)
	conn := dial(t, server, "c1")

	sendMessage(t, conn, "u1", "alice", "/quiz")
	if got := textPayload(t, readNext(t, conn)); !strings.Contains(got, "PoolA") {
		t.Fatalf("unexpected prompt: %q", got)
	}

	sendMessage(t, conn, "u1", "alice", "PoolA")
	f := readNext(t, conn)
	if f.Type != "question" {
		t.Fatalf("expected question frame, got %q", f.Type)
	}
	var q struct {
		Pool    string   `json:"pool"`
		Text    string   `json:"text"`
		Options []string `json:"options"`
	}
	if err := json.Unmarshal(f.Payload, &q); err != nil {
		t.Fatalf("decode question: %v", err)
	}
	if q.Pool != "PoolA" || q.Text == "" || len(q.Options) != 2 {
		t.Fatalf("unexpected question payload: %+v", q)
	}
}

func TestAnswerFrameUpdatesScore(t *testing.T) {
	server, _ := newTestServer(t)
	conn := dial(t, server, "c1")

	sendMessage(t, conn, "u1", "alice", "/signup Alice")
	readNext(t, conn)

	err := conn.WriteJSON(map[string]interface{}{
		"type": "answer", "userId": "u1", "pool": "PoolA", "correct": true,
	})
	if err != nil {
		t.Fatalf("write answer: %v", err)
	}

	sendMessage(t, conn, "u1", "alice", "/myscore")
	got := textPayload(t, readNext(t, conn))
	if !strings.Contains(got, "PoolA: ✅ 1 | ❌ 0") {
		t.Fatalf("expected recorded answer in profile:\n%s", got)
	}
}

func TestAnswerFromUnknownUserReturnsError(t *testing.T) {
	server, _ := newTestServer(t)
	conn := dial(t, server, "c1")

	err := conn.WriteJSON(map[string]interface{}{
		"type": "answer", "userId": "ghost", "pool": "PoolA", "correct": true,
	})
	if err != nil {
		t.Fatalf("write answer: %v", err)
	}
	if f := readNext(t, conn); f.Type != "error" {
		t.Fatalf("expected error frame, got %q", f.Type)
	}
}

func TestSendToDisconnectedChatFails(t *testing.T) {
	_, handler := newTestServer(t)

	err := handler.SendText(context.Background(), "nobody", "hello")
	if !errors.Is(err, domain.ErrDeliveryFailed) {
		t.Fatalf("expected ErrDeliveryFailed, got %v", err)
	}
}

func TestConnectionRemovedOnClose(t *testing.T) {
	server, handler := newTestServer(t)
	conn := dial(t, server, "c9")

	sendMessage(t, conn, "u1", "alice", "/start")
	readNext(t, conn)

	conn.Close()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if err := handler.SendText(context.Background(), "c9", "x"); errors.Is(err, domain.ErrDeliveryFailed) {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("expected chat c9 to be deregistered after close")
}
