package ws

import (
	"sync"

	"github.com/collab-edit/collab-service/internal/event"
)

type Conn interface {
	ID() string
	Send(msg event.Message) error
	Close() error
}

// Hub — реализация транспортной способности ядра: connID -> соединение и
// roomID -> группа соединений. Членство в группах меняет только presence-
// протокол (JoinGroup/LeaveGroup), регистрацию соединений — сам сервер.
type Hub struct {
	mu    sync.RWMutex
	conns map[string]Conn
	rooms map[string]map[string]struct{}
}

func NewHub() *Hub {
	return &Hub{
		conns: make(map[string]Conn),
		rooms: make(map[string]map[string]struct{}),
	}
}

// Register привязывает соединение к его id на время жизни сокета.
func (h *Hub) Register(c Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.conns[c.ID()] = c
}

// Unregister убирает соединение отовсюду; повторный вызов — no-op.
func (h *Hub) Unregister(connID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	delete(h.conns, connID)
	for roomID, rs := range h.rooms {
		if _, ok := rs[connID]; ok {
			delete(rs, connID)
			if len(rs) == 0 {
				delete(h.rooms, roomID)
			}
		}
	}
}

func (h *Hub) JoinGroup(roomID, connID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	rs, ok := h.rooms[roomID]
	if !ok {
		rs = make(map[string]struct{})
		h.rooms[roomID] = rs
	}
	rs[connID] = struct{}{}
}

func (h *Hub) LeaveGroup(roomID, connID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if rs, ok := h.rooms[roomID]; ok {
		delete(rs, connID)
		if len(rs) == 0 {
			delete(h.rooms, roomID)
		}
	}
}

// ToConnection — unicast одному соединению.
func (h *Hub) ToConnection(connID string, msg event.Message) error {
	h.mu.RLock()
	c, ok := h.conns[connID]
	h.mu.RUnlock()
	if !ok {
		return nil // адресат уже отключился — событие просто теряется
	}
	return c.Send(msg)
}

// ToGroup — рассылка группе комнаты, кроме except. Доставка независимая:
// сбой на одном получателе не трогает остальных.
func (h *Hub) ToGroup(roomID, except string, msg event.Message) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	rs, ok := h.rooms[roomID]
	if !ok {
		return
	}
	for connID := range rs {
		if connID == except {
			continue
		}
		if c, ok := h.conns[connID]; ok {
			_ = c.Send(msg) // best-effort
		}
	}
}
