package event

import (
	"encoding/json"
	"fmt"

	"github.com/collab-edit/collab-service/internal/domain"
)

// Имена событий на проводе. Вход и выход используют один и тот же конверт
// Message; payload валидируется на границе транспорта, до ядра доходит
// только типизированная форма.
const (
	// присоединение / выход
	TypeJoinRequest      = "join-request"
	TypeJoinAccepted     = "join-accepted"
	TypeUsernameExists   = "username-exists"
	TypeRoomRequired     = "room-required"
	TypeAlreadyJoined    = "already-joined"
	TypeUserJoined       = "user-joined"
	TypeUserDisconnected = "user-disconnected"
	TypeLeaving          = "leaving"

	// чат
	TypeSendMessage    = "send-message"
	TypeReceiveMessage = "receive-message"

	// набор текста / присутствие
	TypeTypingStart = "typing-start"
	TypeTypingPause = "typing-pause"
	TypeUserOnline  = "user-online"
	TypeUserOffline = "user-offline"

	// файловая структура
	TypeFileCreated       = "file-created"
	TypeFileUpdated       = "file-updated"
	TypeFileRenamed       = "file-renamed"
	TypeFileDeleted       = "file-deleted"
	TypeDirectoryCreated  = "directory-created"
	TypeDirectoryUpdated  = "directory-updated"
	TypeDirectoryRenamed  = "directory-renamed"
	TypeDirectoryDeleted  = "directory-deleted"
	TypeSyncFileStructure = "sync-file-structure"

	// рисование
	TypeRequestDrawing = "request-drawing"
	TypeSyncDrawing    = "sync-drawing"
	TypeDrawingUpdate  = "drawing-update"
)

type Message struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Outbound собирает конверт из уже готового payload-а.
func Outbound(typ string, payload any) Message {
	b, err := json.Marshal(payload)
	if err != nil {
		// payload-ы — собственные структуры, сюда попадать не должны
		return Message{Type: typ}
	}
	return Message{Type: typ, Payload: b}
}

// Decode разбирает payload входящего события в dst.
func Decode(m Message, dst any) error {
	if len(m.Payload) == 0 {
		return fmt.Errorf("event %q: empty payload", m.Type)
	}
	if err := json.Unmarshal(m.Payload, dst); err != nil {
		return fmt.Errorf("event %q: %w", m.Type, err)
	}
	return nil
}

// --- payload-ы входящих событий ---

type JoinRequest struct {
	RoomID       string `json:"roomId"`
	Username     string `json:"username"`
	ConnectionID string `json:"connectionId,omitempty"`
}

type SendMessage struct {
	Message json.RawMessage `json:"message"`
}

type TypingStart struct {
	CursorPosition int `json:"cursorPosition"`
}

type StatusChange struct {
	ConnectionID string `json:"connectionId"`
}

type FileChange struct {
	FileID      string          `json:"fileId,omitempty"`
	DirectoryID string          `json:"directoryId,omitempty"`
	ParentID    string          `json:"parentId,omitempty"`
	Name        string          `json:"name,omitempty"`
	NewName     string          `json:"newName,omitempty"`
	Content     json.RawMessage `json:"content,omitempty"`
	Children    json.RawMessage `json:"children,omitempty"`
}

type SyncFileStructure struct {
	FileStructure      json.RawMessage `json:"fileStructure"`
	OpenFiles          json.RawMessage `json:"openFiles"`
	ActiveFile         json.RawMessage `json:"activeFile"`
	TargetConnectionID string          `json:"targetConnectionId"`
}

type SyncDrawing struct {
	DrawingData        json.RawMessage `json:"drawingData"`
	TargetConnectionID string          `json:"targetConnectionId"`
}

type DrawingUpdate struct {
	Snapshot json.RawMessage `json:"snapshot"`
}

// --- payload-ы исходящих событий ---

type JoinAccepted struct {
	User  domain.Participant   `json:"user"`
	Users []domain.Participant `json:"users"`
}

type UserPayload struct {
	User domain.Participant `json:"user"`
}

type ReceiveMessage struct {
	Message json.RawMessage `json:"message"`
}

type RequestDrawing struct {
	ConnectionID string `json:"connectionId"`
}

type ErrorPayload struct {
	Message string `json:"message"`
}
