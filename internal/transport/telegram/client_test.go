package telegram

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func newFakeAPI(t *testing.T, handler func(method string, body map[string]interface{}) (interface{}, *APIError)) *Client {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]interface{}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		method := r.URL.Path[len("/bottest-token/"):]
		result, apiErr := handler(method, body)
		w.Header().Set("Content-Type", "application/json")
		if apiErr != nil {
			_ = json.NewEncoder(w).Encode(map[string]interface{}{
				"ok": false, "error_code": apiErr.Code, "description": apiErr.Description,
			})
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]interface{}{"ok": true, "result": result})
	}))
	t.Cleanup(server.Close)
	return NewClientWithBaseURL("test-token", server.URL)
}

func TestSendMessage(t *testing.T) {
	var gotChat, gotText string
	client := newFakeAPI(t, func(method string, body map[string]interface{}) (interface{}, *APIError) {
		if method != "sendMessage" {
			t.Fatalf("unexpected method %q", method)
		}
		gotChat, _ = body["chat_id"].(string)
		gotText, _ = body["text"].(string)
		return map[string]interface{}{"message_id": 1}, nil
	})

	if err := client.SendMessage(context.Background(), "42", "hello"); err != nil {
		t.Fatalf("send message: %v", err)
	}
	if gotChat != "42" || gotText != "hello" {
		t.Fatalf("unexpected request: chat=%q text=%q", gotChat, gotText)
	}
}

func TestSendQuizPollReturnsPollID(t *testing.T) {
	client := newFakeAPI(t, func(method string, body map[string]interface{}) (interface{}, *APIError) {
		if method != "sendPoll" {
			t.Fatalf("unexpected method %q", method)
		}
		if body["type"] != "quiz" {
			t.Fatalf("expected quiz poll, got %v", body["type"])
		}
		if anon, _ := body["is_anonymous"].(bool); anon {
			t.Fatalf("quiz polls must not be anonymous")
		}
		return map[string]interface{}{
			"message_id": 2,
			"poll":       map[string]interface{}{"id": "poll-1"},
		}, nil
	})

	id, err := client.SendQuizPoll(context.Background(), "42", "What is 2 + 2?", []string{"3", "4"}, 1)
	if err != nil {
		t.Fatalf("send poll: %v", err)
	}
	if id != "poll-1" {
		t.Fatalf("expected poll-1, got %q", id)
	}
}

func TestAPIErrorSurfaces(t *testing.T) {
	client := newFakeAPI(t, func(string, map[string]interface{}) (interface{}, *APIError) {
		return nil, &APIError{Code: 403, Description: "bot was blocked by the user"}
	})

	err := client.SendMessage(context.Background(), "42", "hello")
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.Code != 403 {
		t.Fatalf("expected 403 APIError, got %v", err)
	}
}

func TestGetUpdates(t *testing.T) {
	client := newFakeAPI(t, func(method string, body map[string]interface{}) (interface{}, *APIError) {
		if method != "getUpdates" {
			t.Fatalf("unexpected method %q", method)
		}
		if offset, _ := body["offset"].(float64); offset != 7 {
			t.Fatalf("expected offset 7, got %v", body["offset"])
		}
		return []map[string]interface{}{
			{
				"update_id": 7,
				"message": map[string]interface{}{
					"message_id": 1,
					"from":       map[string]interface{}{"id": 10, "username": "alice"},
					"chat":       map[string]interface{}{"id": 42, "type": "group"},
					"text":       "/help",
				},
			},
			{
				"update_id": 8,
				"poll_answer": map[string]interface{}{
					"poll_id":    "poll-1",
					"user":       map[string]interface{}{"id": 10},
					"option_ids": []int{1},
				},
			},
		}, nil
	})

	updates, err := client.GetUpdates(context.Background(), 7, 0)
	if err != nil {
		t.Fatalf("get updates: %v", err)
	}
	if len(updates) != 2 {
		t.Fatalf("expected 2 updates, got %d", len(updates))
	}
	if updates[0].Message == nil || updates[0].Message.Text != "/help" {
		t.Fatalf("unexpected message update: %+v", updates[0])
	}
	if updates[1].PollAnswer == nil || updates[1].PollAnswer.PollID != "poll-1" {
		t.Fatalf("unexpected poll answer update: %+v", updates[1])
	}
}
