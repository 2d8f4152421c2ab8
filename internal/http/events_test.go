package httpserver

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/Clark-Hu/cinescope/internal/favorites"
)

func TestFavoriteEventsStream(t *testing.T) {
	ts := buildTestServer(t)
	httpSrv := httptest.NewServer(ts.srv.Handler())
	defer httpSrv.Close()

	wsURL := "ws" + strings.TrimPrefix(httpSrv.URL, "http") + "/api/favorites/events?client_id=tab-1"
	conn, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()
	if resp.StatusCode != http.StatusSwitchingProtocols {
		t.Fatalf("status = %d", resp.StatusCode)
	}

	hub := ts.srv.favorites.Hub()
	deadline := time.Now().Add(5 * time.Second)
	for hub.Subscribers("client:tab-1") == 0 {
		if time.Now().After(deadline) {
			t.Fatal("subscription never registered")
		}
		time.Sleep(5 * time.Millisecond)
	}

	// A change in another namespace must not be delivered.
	ts.do(t, http.MethodPost, "/api/favorites", `{"id":9,"title":"Nine"}`, clientIDHeader, "tab-2")
	ts.do(t, http.MethodPost, "/api/favorites", `{"id":42,"title":"Answer"}`, clientIDHeader, "tab-1")

	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	var evt favorites.Event
	if err := conn.ReadJSON(&evt); err != nil {
		t.Fatalf("read event: %v", err)
	}
	if evt.Kind != favorites.EventAdded || evt.MovieID != 42 || len(evt.Favorites) != 1 {
		t.Fatalf("event = %+v", evt)
	}
}

func TestFavoriteEventsRequireIdentity(t *testing.T) {
	ts := buildTestServer(t)
	httpSrv := httptest.NewServer(ts.srv.Handler())
	defer httpSrv.Close()

	wsURL := "ws" + strings.TrimPrefix(httpSrv.URL, "http") + "/api/favorites/events"
	_, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err == nil {
		t.Fatal("expected handshake failure")
	}
	if resp == nil || resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("resp = %+v, want 401", resp)
	}
}
