package ws

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"runtime/debug"
	"strings"
	"time"

	"github.com/collab-edit/collab-service/internal/domain"
	"github.com/collab-edit/collab-service/internal/event"
	"github.com/collab-edit/collab-service/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// Options — тюнинг соединений из секции ws конфига.
type Options struct {
	PingInterval time.Duration
	WriteTimeout time.Duration
	ReadLimit    int64
}

type Server struct {
	upgrader websocket.Upgrader
	hub      *Hub
	presence *service.PresenceService
	router   *service.RouterService

	pingEvery    time.Duration
	writeTimeout time.Duration
	readLimit    int64
}

func NewServer(hub *Hub, presence *service.PresenceService, router *service.RouterService, opts Options) *Server {
	if opts.PingInterval <= 0 {
		opts.PingInterval = 15 * time.Second
	}
	if opts.WriteTimeout <= 0 {
		opts.WriteTimeout = 5 * time.Second
	}
	if opts.ReadLimit <= 0 {
		opts.ReadLimit = 1 << 20
	}
	return &Server{
		hub:      hub,
		presence: presence,
		router:   router,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		pingEvery:    opts.PingInterval,
		writeTimeout: opts.WriteTimeout,
		readLimit:    opts.ReadLimit,
	}
}

// WS endpoint: GET /ws/rooms/{id}?connection_id=... (также GET /ws).
// connection_id опционален: без него id назначает сервер. Комната из пути —
// подсказка по умолчанию; roomId внутри join-request имеет приоритет.
func (s *Server) HandleWS(w http.ResponseWriter, r *http.Request) {
	connID := strings.TrimSpace(r.URL.Query().Get("connection_id"))
	if connID == "" {
		connID = uuid.NewString()
	}
	roomHint := strings.TrimSpace(chi.URLParam(r, "id"))

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("ws upgrade failed", "err", err)
		return
	}

	c := newWsConn(conn, connID, s.writeTimeout)
	c.roomHint = roomHint
	s.hub.Register(c)
	slog.Debug("ws connected", "conn", connID)

	go s.writeLoop(c)
	s.readLoop(c)

	// disconnect: соединение исчезает из hub-а, presence чистит реестр
	// и оповещает комнату
	s.hub.Unregister(connID)
	s.presence.Leave(connID)

	if err := c.Close(); err != nil {
		slog.Debug("ws close failed", "conn", connID, "err", err)
	}
	slog.Debug("ws disconnected", "conn", connID)
}

func (s *Server) readLoop(c *wsConn) {
	defer func() { _ = c.Close() }()

	c.conn.SetReadLimit(s.readLimit)
	c.conn.SetReadDeadline(time.Now().Add(2 * s.pingEvery))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(2 * s.pingEvery))
		return nil
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			break
		}
		var msg event.Message
		if err := json.Unmarshal(data, &msg); err != nil {
			slog.Debug("ws drop malformed frame", "conn", c.id, "err", err)
			continue
		}
		s.dispatch(c, msg)
	}
}

func (s *Server) writeLoop(c *wsConn) {
	ticker := time.NewTicker(s.pingEvery)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			_ = c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(s.writeTimeout))
		case <-c.closed:
			return
		}
	}
}

// dispatch разбирает payload на границе и зовёт ядро. Паника в одном
// хендлере не роняет ни соединение, ни реестр.
func (s *Server) dispatch(c *wsConn, msg event.Message) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("ws handler panic",
				"conn", c.id,
				"type", msg.Type,
				"panic", r,
				"stack", string(debug.Stack()))
		}
	}()

	switch msg.Type {
	case event.TypeJoinRequest:
		var req event.JoinRequest
		if err := event.Decode(msg, &req); err != nil {
			slog.Debug("ws bad join-request", "conn", c.id, "err", err)
			return
		}
		if strings.TrimSpace(req.RoomID) == "" {
			req.RoomID = c.roomHint
		}
		if _, err := s.presence.Join(c.id, req); err != nil {
			s.replyJoinError(c, err)
		}

	case event.TypeLeaving:
		s.presence.Leave(c.id)

	case event.TypeSendMessage:
		var p event.SendMessage
		if err := event.Decode(msg, &p); err != nil {
			return
		}
		s.router.Broadcast(c.id, event.Outbound(event.TypeReceiveMessage, event.ReceiveMessage{Message: p.Message}))

	case event.TypeTypingStart:
		var p event.TypingStart
		if err := event.Decode(msg, &p); err != nil {
			return
		}
		s.router.TypingStart(c.id, p.CursorPosition)

	case event.TypeTypingPause:
		s.router.TypingPause(c.id)

	case event.TypeUserOnline:
		var p event.StatusChange
		if err := event.Decode(msg, &p); err != nil {
			return
		}
		s.router.SetOnline(c.id, p.ConnectionID)

	case event.TypeUserOffline:
		var p event.StatusChange
		if err := event.Decode(msg, &p); err != nil {
			return
		}
		s.router.SetOffline(c.id, p.ConnectionID)

	case event.TypeFileUpdated:
		var p event.FileChange
		if err := event.Decode(msg, &p); err != nil {
			return
		}
		s.router.FileUpdated(c.id, p.FileID, msg)

	case event.TypeFileDeleted:
		var p event.FileChange
		if err := event.Decode(msg, &p); err != nil {
			return
		}
		s.router.FileDeleted(c.id, p.FileID, msg)

	case event.TypeFileCreated, event.TypeFileRenamed,
		event.TypeDirectoryCreated, event.TypeDirectoryUpdated,
		event.TypeDirectoryRenamed, event.TypeDirectoryDeleted,
		event.TypeDrawingUpdate:
		// структурные и drawing-события ретранслируются как есть
		s.router.Broadcast(c.id, msg)

	case event.TypeSyncFileStructure:
		var p event.SyncFileStructure
		if err := event.Decode(msg, &p); err != nil {
			return
		}
		s.router.Unicast(p.TargetConnectionID, msg)

	case event.TypeSyncDrawing:
		var p event.SyncDrawing
		if err := event.Decode(msg, &p); err != nil {
			return
		}
		s.router.Unicast(p.TargetConnectionID, msg)

	case event.TypeRequestDrawing:
		s.router.RequestDrawing(c.id)

	default:
		slog.Debug("ws unknown event", "conn", c.id, "type", msg.Type)
	}
}

// replyJoinError — ошибки валидации видит только запросившее соединение.
func (s *Server) replyJoinError(c *wsConn, err error) {
	var typ string
	switch {
	case errors.Is(err, domain.ErrRoomRequired):
		typ = event.TypeRoomRequired
	case errors.Is(err, domain.ErrUsernameExists):
		typ = event.TypeUsernameExists
	case errors.Is(err, domain.ErrAlreadyJoined):
		typ = event.TypeAlreadyJoined
	default:
		// duplicate connection id и прочее уже зашумело в лог в ядре
		return
	}
	if sendErr := c.Send(event.Outbound(typ, event.ErrorPayload{Message: err.Error()})); sendErr != nil {
		slog.Debug("ws join error reply failed", "conn", c.id, "err", sendErr)
	}
}
