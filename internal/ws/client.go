package ws

import (
	"encoding/json"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"github.com/kiwari-pos/tableside/internal/event"
)

const (
	writeWait    = 10 * time.Second
	pongWait     = 60 * time.Second
	pingPeriod   = (pongWait * 9) / 10
	readLimit    = 512
	sendCapacity = 256
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Terminals and kitchen displays run on the local network
	},
}

// Client is one subscribed display: a kitchen screen, a floor map or a
// cashier terminal. Each queued message is one JSON encoded event.
type Client struct {
	hub    *Hub
	conn   *websocket.Conn
	topics []string
	send   chan []byte
}

func newClient(hub *Hub, conn *websocket.Conn, topics []string) *Client {
	return &Client{
		hub:    hub,
		conn:   conn,
		topics: topics,
		send:   make(chan []byte, sendCapacity),
	}
}

// welcome is the first frame a display receives. It echoes the topics the
// connection was subscribed to.
type welcome struct {
	Type   string   `json:"type"`
	Topics []string `json:"topics"`
	At     string   `json:"at"`
}

// ReadPump only watches for pongs and disconnects; displays never send
// commands over the socket. It unregisters the client when the peer goes
// away.
func (c *Client) ReadPump() {
	defer func() {
		c.hub.leave(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(readLimit)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, _, err := c.conn.ReadMessage()
		if err == nil {
			continue
		}
		if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
			log.Printf("ERROR: websocket read (topics %v): %v", c.topics, err)
		}
		return
	}
}

// WritePump writes one text frame per event so browser consumers can
// JSON.parse each frame directly. It also keeps the connection alive with
// pings.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			if !ok {
				c.write(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.write(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			if err := c.write(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *Client) write(messageType int, data []byte) error {
	c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteMessage(messageType, data)
}

// subscribed reports whether an event with topic reaches this client.
func (c *Client) subscribed(topic string) bool {
	for _, t := range c.topics {
		if t == topic || t == event.TopicAll {
			return true
		}
	}
	return false
}

// ParseTopics splits a comma separated topic list. An empty list subscribes
// to every topic.
func ParseTopics(s string) []string {
	var topics []string
	seen := map[string]bool{}
	for _, t := range strings.Split(s, ",") {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		topics = append(topics, t)
	}
	if len(topics) == 0 {
		return []string{event.TopicAll}
	}
	return topics
}

// ServeWS upgrades the request and subscribes the connection.
// Endpoint: WS /ws?topics=line,item
func ServeWS(hub *Hub, w http.ResponseWriter, r *http.Request) {
	topics := ParseTopics(r.URL.Query().Get("topics"))

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ERROR: websocket upgrade: %v", err)
		return
	}

	client := newClient(hub, conn, topics)
	hello, _ := json.Marshal(welcome{Type: "welcome", Topics: topics, At: time.Now().UTC().Format(time.RFC3339)})
	client.send <- hello
	if !hub.join(client) {
		conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, "shutting down"))
		conn.Close()
		return
	}

	go client.WritePump()
	go client.ReadPump()
}
