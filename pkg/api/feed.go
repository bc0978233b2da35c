package api

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/AbidHayat/tubewell-project/pkg/types"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		// The dashboard is served from another origin on the LAN.
		return true
	},
}

// Feed broadcasts every applied record to connected websocket clients.
type Feed struct {
	mu      sync.RWMutex
	clients map[*websocket.Conn]bool
}

func NewFeed() *Feed {
	return &Feed{clients: make(map[*websocket.Conn]bool)}
}

type feedEvent struct {
	TubewellID int           `json:"tubewell_id"`
	Record     *types.Record `json:"record"`
}

// Broadcast fans the record out to all clients, dropping dead ones.
func (f *Feed) Broadcast(slot int, rec *types.Record) {
	f.mu.RLock()
	clients := make([]*websocket.Conn, 0, len(f.clients))
	for c := range f.clients {
		clients = append(clients, c)
	}
	f.mu.RUnlock()

	if len(clients) == 0 {
		return
	}

	data, err := json.Marshal(feedEvent{TubewellID: slot, Record: rec})
	if err != nil {
		log.Printf("[api] marshal feed event: %v", err)
		return
	}

	for _, c := range clients {
		if err := c.WriteMessage(websocket.TextMessage, data); err != nil {
			f.remove(c)
		}
	}
}

func (f *Feed) add(conn *websocket.Conn) {
	f.mu.Lock()
	f.clients[conn] = true
	f.mu.Unlock()
}

func (f *Feed) remove(conn *websocket.Conn) {
	f.mu.Lock()
	delete(f.clients, conn)
	f.mu.Unlock()
	conn.Close()
}

// serveWS upgrades the connection and parks it in the client set until
// the peer goes away.
func (f *Feed) serveWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[api] websocket upgrade failed: %v", err)
		return
	}
	f.add(conn)

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			f.remove(conn)
			return
		}
	}
}
