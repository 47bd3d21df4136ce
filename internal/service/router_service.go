package service

import (
	"log/slog"

	"github.com/collab-edit/collab-service/internal/domain"
	"github.com/collab-edit/collab-service/internal/event"
	"github.com/collab-edit/collab-service/internal/registry"
)

// RouterService вычисляет аудиторию события и доставляет его: комнате без
// отправителя, одному адресату или никому. Без очередей и повторов —
// отключившийся участник событие просто пропускает.
type RouterService struct {
	reg       *registry.Registry
	transport Transport
}

func NewRouterService(reg *registry.Registry, transport Transport) *RouterService {
	return &RouterService{reg: reg, transport: transport}
}

// Broadcast — ретрансляция события всем участникам комнаты отправителя,
// кроме него самого. Отправитель без комнаты — тихий drop: обычная гонка
// между disconnect и событиями в полёте.
func (r *RouterService) Broadcast(senderID string, msg event.Message) {
	roomID, ok := r.reg.FindRoom(senderID)
	if !ok {
		slog.Debug("drop event from roomless connection", "conn", senderID, "type", msg.Type)
		return
	}
	r.transport.ToGroup(roomID, senderID, msg)
}

// Unicast — доставка одному названному соединению.
func (r *RouterService) Unicast(targetID string, msg event.Message) {
	if err := r.transport.ToConnection(targetID, msg); err != nil {
		slog.Debug("unicast delivery failed", "conn", targetID, "type", msg.Type)
	}
}

// TypingStart обновляет строку отправителя до рассылки, чтобы любой
// снимок ростера после события уже видел новое состояние.
func (r *RouterService) TypingStart(senderID string, cursorPosition int) {
	r.reg.SetCursor(senderID, cursorPosition)
	r.reg.SetTyping(senderID, true)
	r.broadcastUser(senderID, event.TypeTypingStart)
}

func (r *RouterService) TypingPause(senderID string) {
	r.reg.SetTyping(senderID, false)
	r.broadcastUser(senderID, event.TypeTypingPause)
}

func (r *RouterService) broadcastUser(senderID, typ string) {
	p, ok := r.reg.FindByConnection(senderID)
	if !ok {
		return
	}
	r.Broadcast(senderID, event.Outbound(typ, event.UserPayload{User: p}))
}

// SetOnline/SetOffline меняют статус явно названного соединения (не
// обязательно отправителя) и рассылают событие по комнате отправителя.
func (r *RouterService) SetOnline(senderID, targetID string) {
	r.reg.SetStatus(targetID, domain.StatusOnline)
	r.Broadcast(senderID, event.Outbound(event.TypeUserOnline, event.StatusChange{ConnectionID: targetID}))
}

func (r *RouterService) SetOffline(senderID, targetID string) {
	r.reg.SetStatus(targetID, domain.StatusOffline)
	r.Broadcast(senderID, event.Outbound(event.TypeUserOffline, event.StatusChange{ConnectionID: targetID}))
}

// FileUpdated: правка файла делает его текущим файлом отправителя, затем
// событие уходит комнате как есть.
func (r *RouterService) FileUpdated(senderID, fileID string, msg event.Message) {
	if fileID != "" {
		id := fileID
		r.reg.SetFile(senderID, &id)
	}
	r.Broadcast(senderID, msg)
}

// FileDeleted сбрасывает currentFile у отправителя, если он удалил
// открытый у себя файл.
func (r *RouterService) FileDeleted(senderID, fileID string, msg event.Message) {
	if p, ok := r.reg.FindByConnection(senderID); ok {
		if p.CurrentFile != nil && *p.CurrentFile == fileID {
			r.reg.SetFile(senderID, nil)
		}
	}
	r.Broadcast(senderID, msg)
}

// RequestDrawing просит у комнаты текущий холст; в payload уходит id
// запросившего, чтобы ответ вернулся unicast-ом.
func (r *RouterService) RequestDrawing(senderID string) {
	r.Broadcast(senderID, event.Outbound(event.TypeRequestDrawing, event.RequestDrawing{ConnectionID: senderID}))
}
