package service

import (
	"context"

	"github.com/collab-edit/collab-service/internal/domain"
	"github.com/collab-edit/collab-service/internal/event"
)

// Transport — абстракция push-канала, против которой написано ядро.
// Реализация живёт в internal/transport/ws; ядро про WebSocket не знает.
type Transport interface {
	JoinGroup(roomID, connID string)
	LeaveGroup(roomID, connID string)
	// ToConnection — доставка одному соединению; ошибка значит лишь, что
	// этот адресат сообщение не получил.
	ToConnection(connID string, msg event.Message) error
	// ToGroup — доставка всем участникам комнаты, кроме except.
	// Best-effort: сбой на одном получателе не прерывает остальных.
	ToGroup(roomID, except string, msg event.Message)
}

// Sink — внешний журнал активности пользователей. Ядро пишет в него
// fire-and-forget и никогда не читает обратно на пути принятия решений.
type Sink interface {
	CreateUserRecord(ctx context.Context, p domain.Participant) error
	DeleteUserRecord(ctx context.Context, connID string) error
}
