// Package ws pushes change events to connected browsers so open pages
// learn that their collections went stale. The hub never sends row
// data; clients react by re-fetching over the REST API, which keeps a
// lost or duplicated push harmless.
package ws

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	stdsync "sync"
	"time"

	"github.com/coder/websocket"
	"github.com/sirupsen/logrus"

	"hospital-portal/internal/notify"
	"hospital-portal/pkg/jwt"
)

const writeTimeout = 5 * time.Second

// Hub fans one subscription on the change notification channel out to
// every connected browser, filtered per connection by sector.
type Hub struct {
	channel  notify.Channel
	verifier *jwt.Verifier
	log      *logrus.Logger

	mu      stdsync.RWMutex
	clients map[*websocket.Conn]notify.Filter

	ctx    context.Context
	cancel context.CancelFunc
	wg     stdsync.WaitGroup
}

func NewHub(channel notify.Channel, verifier *jwt.Verifier, log *logrus.Logger) *Hub {
	ctx, cancel := context.WithCancel(context.Background())

	return &Hub{
		channel:  channel,
		verifier: verifier,
		log:      log,
		clients:  make(map[*websocket.Conn]notify.Filter),
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Start subscribes to every table and begins relaying events
func (h *Hub) Start() error {
	sub, err := h.channel.Subscribe(h.ctx, notify.Filter{})
	if err != nil {
		return fmt.Errorf("failed to subscribe push hub: %w", err)
	}

	h.wg.Add(1)
	go h.relayLoop(sub)

	return nil
}

func (h *Hub) relayLoop(sub *notify.Subscription) {
	defer h.wg.Done()
	defer sub.Close()

	for {
		select {
		case <-h.ctx.Done():
			return
		case <-sub.Done():
			return
		case event := <-sub.Events():
			h.broadcast(event)
		}
	}
}

func (h *Hub) broadcast(event notify.Event) {
	payload, err := json.Marshal(event)
	if err != nil {
		h.log.Warnf("Failed to marshal change event: %+v", err)
		return
	}

	h.mu.RLock()
	conns := make([]*websocket.Conn, 0, len(h.clients))
	for conn, filter := range h.clients {
		if filter.Matches(event) {
			conns = append(conns, conn)
		}
	}
	h.mu.RUnlock()

	// Writes happen outside the lock so one slow client cannot stall
	// registration of new ones.
	for _, conn := range conns {
		ctx, cancel := context.WithTimeout(h.ctx, writeTimeout)
		err := conn.Write(ctx, websocket.MessageText, payload)
		cancel()
		if err != nil {
			h.remove(conn)
		}
	}
}

// HandleWS authenticates and upgrades a browser connection. Browsers
// cannot set an Authorization header on a WebSocket, so the token rides
// the query string. An optional sector parameter narrows the feed.
func (h *Hub) HandleWS(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		http.Error(w, "missing token", http.StatusUnauthorized)
		return
	}
	if _, err := h.verifier.VerifyToken(token); err != nil {
		http.Error(w, "invalid token", http.StatusUnauthorized)
		return
	}

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		h.log.Warnf("Failed to accept websocket: %+v", err)
		return
	}

	filter := notify.Filter{Sector: r.URL.Query().Get("sector")}

	h.mu.Lock()
	h.clients[conn] = filter
	count := len(h.clients)
	h.mu.Unlock()

	h.log.Infof("Browser connected to change feed (%d online)", count)

	h.wg.Add(1)
	go h.readLoop(conn)
}

// readLoop drains client frames to detect disconnects; inbound
// messages carry no meaning and are dropped.
func (h *Hub) readLoop(conn *websocket.Conn) {
	defer h.wg.Done()
	defer h.remove(conn)

	for {
		if _, _, err := conn.Read(h.ctx); err != nil {
			return
		}
	}
}

func (h *Hub) remove(conn *websocket.Conn) {
	h.mu.Lock()
	_, ok := h.clients[conn]
	if ok {
		delete(h.clients, conn)
	}
	count := len(h.clients)
	h.mu.Unlock()

	if ok {
		_ = conn.Close(websocket.StatusNormalClosure, "")
		h.log.Infof("Browser left change feed (%d online)", count)
	}
}

// ClientCount reports how many browsers are connected
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Stop closes every connection and ends the relay loop.
func (h *Hub) Stop() {
	h.cancel()

	h.mu.Lock()
	conns := make([]*websocket.Conn, 0, len(h.clients))
	for conn := range h.clients {
		conns = append(conns, conn)
	}
	h.clients = make(map[*websocket.Conn]notify.Filter)
	h.mu.Unlock()

	for _, conn := range conns {
		_ = conn.Close(websocket.StatusGoingAway, "server shutting down")
	}

	h.wg.Wait()
	h.log.Info("Change feed hub stopped")
}
