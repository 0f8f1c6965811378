package services_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"ship-swift-backend/internal/services"

	"github.com/gorilla/websocket"
)

// hubServer registers every connection under the user query parameter
func hubServer(t *testing.T, hub *services.WSHub) *httptest.Server {
	t.Helper()
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		userID := r.URL.Query().Get("user")
		hub.Register(userID, conn)
		defer hub.Unregister(userID, conn)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func dial(t *testing.T, srv *httptest.Server, userID string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "?user=" + userID
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func waitOnline(t *testing.T, hub *services.WSHub, userID string, want bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for hub.IsOnline(userID) != want {
		if time.Now().After(deadline) {
			t.Fatalf("%s online = %v, want %v", userID, !want, want)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestWSHub_SendToUser(t *testing.T) {
	hub := services.NewWSHub()
	defer hub.Close()
	srv := hubServer(t, hub)

	if err := hub.SendToUser("u1", services.WSMessage{Type: services.EventPong}); err == nil {
		t.Fatalf("send to offline user should fail")
	}

	conn := dial(t, srv, "u1")
	waitOnline(t, hub, "u1", true)

	if err := hub.SendToUser("u1", services.WSMessage{Type: services.EventMessageCreated, ContactID: "c1", Body: "hi"}); err != nil {
		t.Fatalf("send: %v", err)
	}

	var got services.WSMessage
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	if err := conn.ReadJSON(&got); err != nil {
		t.Fatalf("read: %v", err)
	}
	if got.Type != services.EventMessageCreated || got.ContactID != "c1" || got.Body != "hi" {
		t.Fatalf("unexpected frame: %+v", got)
	}

	conn.Close()
	waitOnline(t, hub, "u1", false)
}

func TestWSHub_NewConnectionReplacesOld(t *testing.T) {
	hub := services.NewWSHub()
	defer hub.Close()
	srv := hubServer(t, hub)

	old := dial(t, srv, "u1")
	waitOnline(t, hub, "u1", true)
	fresh := dial(t, srv, "u1")

	// the old connection is closed by the server once the new one registers
	_ = old.SetReadDeadline(time.Now().Add(2 * time.Second))
	if _, _, err := old.ReadMessage(); err == nil {
		t.Fatalf("old connection still open")
	}

	if err := hub.SendToUser("u1", services.WSMessage{Type: services.EventPong}); err != nil {
		t.Fatalf("send: %v", err)
	}
	var got services.WSMessage
	_ = fresh.SetReadDeadline(time.Now().Add(2 * time.Second))
	if err := fresh.ReadJSON(&got); err != nil || got.Type != services.EventPong {
		t.Fatalf("fresh connection: %+v %v", got, err)
	}
	if !hub.IsOnline("u1") {
		t.Fatalf("unregistering the old connection dropped the new one")
	}
}
