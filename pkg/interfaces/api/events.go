package api

import (
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/vsinha/supplyplan/pkg/infrastructure/events"
)

const (
	writeWait    = 10 * time.Second
	pongWait     = 60 * time.Second
	pingInterval = (pongWait * 9) / 10

	subscriberBuffer = 64

	// StreamConnectedEvent is sent once the connection is subscribed
	StreamConnectedEvent = "stream.connected"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// eventSubscriber forwards pipeline events to one websocket connection.
// Events are dropped when the client falls behind.
type eventSubscriber struct {
	send chan events.Event
}

func (s *eventSubscriber) Handle(event events.Event) error {
	select {
	case s.send <- event:
	default:
	}
	return nil
}

func (s *eventSubscriber) CanHandle(string) bool {
	return true
}

// StreamEvents upgrades to a websocket and pushes every pipeline event as JSON
// GET /api/events
func (h *Handler) StreamEvents(c *gin.Context) {
	if h.eventStore == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "event stream not enabled"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("⚠️  Websocket upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	sub := &eventSubscriber{send: make(chan events.Event, subscriberBuffer)}
	if err := h.eventStore.Subscribe(events.AllEventTypes, sub); err != nil {
		log.Printf("⚠️  Failed to subscribe to events: %v", err)
		return
	}
	defer h.eventStore.Unsubscribe(sub)
	log.Printf("🔌 Event stream client connected: %s", c.ClientIP())

	hello, err := events.Marshal(events.NewEvent(StreamConnectedEvent, "", gin.H{"types": events.AllEventTypes}))
	if err != nil {
		log.Printf("⚠️  Failed to encode %s: %v", StreamConnectedEvent, err)
		return
	}
	conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := conn.WriteMessage(websocket.TextMessage, hello); err != nil {
		return
	}

	// the read loop only handles pongs and notices the client going away
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		conn.SetReadDeadline(time.Now().Add(pongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(pongWait))
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-closed:
			log.Printf("🔌 Event stream client disconnected: %s", c.ClientIP())
			return
		case event := <-sub.send:
			payload, err := events.Marshal(event)
			if err != nil {
				log.Printf("⚠️  Failed to encode event %s: %v", event.Type(), err)
				continue
			}
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
