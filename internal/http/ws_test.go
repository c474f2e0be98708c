package http

import (
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"camlytics/internal/model"
)

func dialLiveFeed(t *testing.T, hub *Hub, userID uuid.UUID) *websocket.Conn {
	t.Helper()
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.GET("/live", func(c *gin.Context) {
		hub.Serve(c, userID)
	})
	server := httptest.NewServer(router)
	t.Cleanup(server.Close)

	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/live"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("failed to dial live feed: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	return conn
}

// countMessages increments the counter for every message delivered until
// the connection is closed.
func countMessages(conn *websocket.Conn, count *atomic.Int64) {
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
		count.Add(1)
	}
}

// Concurrent detections by the same user must not corrupt that user's
// live connection: every write is serialized through the hub goroutine.
func TestHubConcurrentNotifications(t *testing.T) {
	hub := NewHub(zerolog.Nop())
	go hub.Run()

	userID := uuid.New()
	conn := dialLiveFeed(t, hub, userID)

	var received atomic.Int64
	go countMessages(conn, &received)

	detection := &model.Detection{ID: uuid.New(), UserID: userID, Plate: "KA01AB"}

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				hub.NotifyDetection(userID, detection)
			}
		}()
	}
	wg.Wait()

	// Notifications sent before the registration landed are dropped, so
	// keep nudging until delivery is observed.
	deadline := time.Now().Add(5 * time.Second)
	for received.Load() == 0 && time.Now().Before(deadline) {
		hub.NotifyDetection(userID, detection)
		time.Sleep(10 * time.Millisecond)
	}

	if received.Load() == 0 {
		t.Fatal("live feed delivered no messages after concurrent notifications")
	}
}

func TestHubNotifiesOwnerOnly(t *testing.T) {
	hub := NewHub(zerolog.Nop())
	go hub.Run()

	owner := uuid.New()
	other := uuid.New()

	ownerConn := dialLiveFeed(t, hub, owner)
	otherConn := dialLiveFeed(t, hub, other)

	var ownerReceived, otherReceived atomic.Int64
	go countMessages(ownerConn, &ownerReceived)
	go countMessages(otherConn, &otherReceived)

	detection := &model.Detection{ID: uuid.New(), UserID: owner, Plate: "KA01AB"}

	deadline := time.Now().Add(5 * time.Second)
	for ownerReceived.Load() == 0 && time.Now().Before(deadline) {
		hub.NotifyDetection(owner, detection)
		time.Sleep(10 * time.Millisecond)
	}

	if ownerReceived.Load() == 0 {
		t.Fatal("owner received no messages")
	}

	// Give any misrouted message time to arrive before asserting.
	time.Sleep(100 * time.Millisecond)
	if got := otherReceived.Load(); got != 0 {
		t.Errorf("other user received %d messages, want 0", got)
	}
}
