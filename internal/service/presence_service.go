package service

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/collab-edit/collab-service/internal/domain"
	"github.com/collab-edit/collab-service/internal/event"
	"github.com/collab-edit/collab-service/internal/registry"
)

// PresenceService — конечный автомат жизненного цикла участника:
// PENDING (соединение открыто) → JOINED (строка в реестре) → CLOSED.
type PresenceService struct {
	reg       *registry.Registry
	transport Transport
	sink      Sink // может быть nil — журнал опционален

	sinkTimeout time.Duration
}

func NewPresenceService(reg *registry.Registry, transport Transport, sink Sink) *PresenceService {
	return &PresenceService{
		reg:         reg,
		transport:   transport,
		sink:        sink,
		sinkTimeout: 5 * time.Second,
	}
}

// Join проводит соединение через PENDING → JOINED.
// Порядок шагов фиксирован: проверка имени идёт до вставки в реестр,
// чтобы отклонённый участник не мелькал в чужих ростерах; уведомление
// остальных уходит раньше ответа вступающему, и вступающий узнаёт о себе
// только из join-accepted, а не из user-joined.
func (s *PresenceService) Join(connID string, req event.JoinRequest) (domain.Participant, error) {
	roomID := strings.TrimSpace(req.RoomID)
	username := strings.TrimSpace(req.Username)
	if roomID == "" {
		return domain.Participant{}, domain.ErrRoomRequired
	}

	// повторный join на уже присоединённом соединении — явная ошибка,
	// а не молчаливая перезапись членства
	if _, ok := s.reg.FindByConnection(connID); ok {
		return domain.Participant{}, domain.ErrAlreadyJoined
	}

	// проверка online-тёзки и вставка — одна атомарная операция реестра:
	// join-ы идут из readLoop-горутин разных соединений параллельно
	p := domain.NewParticipant(connID, roomID, username)
	if err := s.reg.InsertIfUsernameFree(p); err != nil {
		return domain.Participant{}, err
	}

	s.transport.JoinGroup(roomID, connID)
	s.transport.ToGroup(roomID, connID, event.Outbound(event.TypeUserJoined, event.UserPayload{User: p}))

	users := s.reg.MembersOf(roomID)
	if err := s.transport.ToConnection(connID, event.Outbound(event.TypeJoinAccepted, event.JoinAccepted{User: p, Users: users})); err != nil {
		slog.Warn("join-accepted delivery failed", "conn", connID, "err", err)
	}

	s.persistAsync("create", connID, func(ctx context.Context) error {
		return s.sink.CreateUserRecord(ctx, p)
	})

	return p, nil
}

// Leave проводит соединение в CLOSED: и явный leaving, и transport
// disconnect сходятся сюда. Отсутствующая строка — нормальный исход гонки.
func (s *PresenceService) Leave(connID string) {
	last, ok := s.reg.Remove(connID)
	if !ok {
		return
	}

	s.transport.LeaveGroup(last.RoomID, connID)
	s.transport.ToGroup(last.RoomID, connID,
		event.Outbound(event.TypeUserDisconnected, event.UserPayload{User: last}))

	s.persistAsync("delete", connID, func(ctx context.Context) error {
		return s.sink.DeleteUserRecord(ctx, connID)
	})
}

// persistAsync — запись в журнал вне критического пути: собственный
// контекст с таймаутом, ошибки только логируются.
func (s *PresenceService) persistAsync(op, connID string, fn func(context.Context) error) {
	if s.sink == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.sinkTimeout)
		defer cancel()
		if err := fn(ctx); err != nil {
			slog.Warn("user log write failed", "op", op, "conn", connID, "err", err)
		}
	}()
}
