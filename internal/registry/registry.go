package registry

import (
	"sync"

	"github.com/collab-edit/collab-service/internal/domain"
)

// Registry — единственный источник правды о живых участниках.
// Одна на процесс, защищена одним mutex: мутации атомарны относительно
// друг друга, как в исходной run-to-completion модели.
type Registry struct {
	mu    sync.RWMutex
	conns map[string]*domain.Participant // connectionID -> row
	rooms map[string]map[string]struct{} // roomID -> set of connectionIDs
}

func New() *Registry {
	return &Registry{
		conns: make(map[string]*domain.Participant),
		rooms: make(map[string]map[string]struct{}),
	}
}

// Insert добавляет новую строку. Повторный connectionID — ошибка уровня
// программиста: отклоняем, вызывающий логирует, процесс живёт дальше.
func (r *Registry) Insert(p domain.Participant) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.conns[p.ConnectionID]; ok {
		return domain.ErrDuplicateConnection
	}

	row := p
	r.conns[p.ConnectionID] = &row

	rs, ok := r.rooms[p.RoomID]
	if !ok {
		rs = make(map[string]struct{})
		r.rooms[p.RoomID] = rs
	}
	rs[p.ConnectionID] = struct{}{}

	return nil
}

// InsertIfUsernameFree — составная операция join-а: проверка online-тёзки
// и вставка под одним Lock. Раздельные MembersOf+Insert оставляли бы окно,
// в котором два конкурентных join-а с одним именем проходят проверку оба.
func (r *Registry) InsertIfUsernameFree(p domain.Participant) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.conns[p.ConnectionID]; ok {
		return domain.ErrDuplicateConnection
	}
	if rs, ok := r.rooms[p.RoomID]; ok {
		for connID := range rs {
			row, ok := r.conns[connID]
			if !ok {
				continue
			}
			if row.Status == domain.StatusOnline && row.Username == p.Username {
				return domain.ErrUsernameExists
			}
		}
	}

	row := p
	r.conns[p.ConnectionID] = &row

	rs, ok := r.rooms[p.RoomID]
	if !ok {
		rs = make(map[string]struct{})
		r.rooms[p.RoomID] = rs
	}
	rs[p.ConnectionID] = struct{}{}

	return nil
}

// Remove удаляет строку и возвращает её последнее состояние.
// Отсутствие — не ошибка: disconnect-хендлеры гоняются с явным leave.
func (r *Registry) Remove(connID string) (domain.Participant, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	row, ok := r.conns[connID]
	if !ok {
		return domain.Participant{}, false
	}
	delete(r.conns, connID)

	if rs, ok := r.rooms[row.RoomID]; ok {
		delete(rs, connID)
		// комната живёт, пока в ней есть хотя бы один участник
		if len(rs) == 0 {
			delete(r.rooms, row.RoomID)
		}
	}

	return *row, true
}

func (r *Registry) FindByConnection(connID string) (domain.Participant, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	row, ok := r.conns[connID]
	if !ok {
		return domain.Participant{}, false
	}
	return *row, true
}

func (r *Registry) FindRoom(connID string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	row, ok := r.conns[connID]
	if !ok {
		return "", false
	}
	return row.RoomID, true
}

// MembersOf возвращает копии строк комнаты. Пустой срез — валидный ответ:
// такой комнаты сейчас нет.
func (r *Registry) MembersOf(roomID string) []domain.Participant {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rs, ok := r.rooms[roomID]
	if !ok {
		return nil
	}
	out := make([]domain.Participant, 0, len(rs))
	for connID := range rs {
		if row, ok := r.conns[connID]; ok {
			out = append(out, *row)
		}
	}
	return out
}

// update — частичная мутация; no-op, если соединения уже нет.
func (r *Registry) update(connID string, fn func(*domain.Participant)) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	row, ok := r.conns[connID]
	if !ok {
		return false
	}
	fn(row)
	return true
}

func (r *Registry) SetStatus(connID string, st domain.Status) bool {
	return r.update(connID, func(p *domain.Participant) { p.Status = st })
}

func (r *Registry) SetCursor(connID string, pos int) bool {
	if pos < 0 {
		pos = 0
	}
	return r.update(connID, func(p *domain.Participant) { p.CursorPosition = pos })
}

func (r *Registry) SetTyping(connID string, typing bool) bool {
	return r.update(connID, func(p *domain.Participant) { p.Typing = typing })
}

func (r *Registry) SetFile(connID string, fileID *string) bool {
	return r.update(connID, func(p *domain.Participant) { p.CurrentFile = fileID })
}

// Rooms возвращает идентификаторы активных комнат.
func (r *Registry) Rooms() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]string, 0, len(r.rooms))
	for id := range r.rooms {
		out = append(out, id)
	}
	return out
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.conns)
}
