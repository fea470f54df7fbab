package handlers

import (
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// WebSocket upgrader with default settings
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Allow all origins (can be restricted in production)
		return true
	},
}

// StatsStreamManager manages active stats stream connections
type StatsStreamManager struct {
	handlers    *Handlers
	interval    time.Duration
	connections map[string]*statsStreamConnection
	nextID      int
	mu          sync.Mutex
}

// statsStreamConnection represents one active WebSocket subscriber
type statsStreamConnection struct {
	id       string
	conn     *websocket.Conn
	stopChan chan struct{}
	stopOnce sync.Once
}

// NewStatsStreamManager creates a new stats stream manager.
// Each connection receives the combined stats snapshot every interval.
func NewStatsStreamManager(h *Handlers, interval time.Duration) *StatsStreamManager {
	if interval <= 0 {
		interval = time.Second
	}
	return &StatsStreamManager{
		handlers:    h,
		interval:    interval,
		connections: make(map[string]*statsStreamConnection),
	}
}

// HandleStatsStream upgrades the request and starts streaming snapshots
func (m *StatsStreamManager) HandleStatsStream(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("websocket upgrade failed: %v", err)
		return
	}

	m.mu.Lock()
	m.nextID++
	sc := &statsStreamConnection{
		id:       fmt.Sprintf("stats-%d", m.nextID),
		conn:     conn,
		stopChan: make(chan struct{}),
	}
	m.connections[sc.id] = sc
	m.mu.Unlock()

	go m.readLoop(sc)
	go m.writeLoop(sc)
}

// readLoop discards client messages and detects disconnects
func (m *StatsStreamManager) readLoop(sc *statsStreamConnection) {
	defer m.closeConnection(sc)

	for {
		if _, _, err := sc.conn.ReadMessage(); err != nil {
			return
		}
	}
}

// writeLoop pushes one snapshot immediately and then one per interval
func (m *StatsStreamManager) writeLoop(sc *statsStreamConnection) {
	defer m.closeConnection(sc)

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	if err := m.sendSnapshot(sc); err != nil {
		return
	}

	for {
		select {
		case <-sc.stopChan:
			return
		case <-ticker.C:
			if err := m.sendSnapshot(sc); err != nil {
				return
			}
		}
	}
}

// sendSnapshot writes the current stats as one JSON message
func (m *StatsStreamManager) sendSnapshot(sc *statsStreamConnection) error {
	return sc.conn.WriteJSON(StatsResponse{
		Pool:    m.handlers.pool.Stats(),
		Metrics: m.handlers.collector.GetSnapshot(),
	})
}

// closeConnection unregisters and closes one subscriber
func (m *StatsStreamManager) closeConnection(sc *statsStreamConnection) {
	sc.stopOnce.Do(func() {
		close(sc.stopChan)
		sc.conn.Close()

		m.mu.Lock()
		delete(m.connections, sc.id)
		m.mu.Unlock()
	})
}

// Close terminates all active stream connections
func (m *StatsStreamManager) Close() {
	m.mu.Lock()
	conns := make([]*statsStreamConnection, 0, len(m.connections))
	for _, sc := range m.connections {
		conns = append(conns, sc)
	}
	m.mu.Unlock()

	for _, sc := range conns {
		m.closeConnection(sc)
	}
}

// ConnectionCount returns the number of active subscribers
func (m *StatsStreamManager) ConnectionCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.connections)
}
