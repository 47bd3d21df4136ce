package domain

// Status — состояние присутствия участника в комнате.
type Status string

const (
	StatusOnline  Status = "online"
	StatusAway    Status = "away"
	StatusOffline Status = "offline"
)

// Participant — одна строка реестра: живое соединение внутри комнаты.
// ConnectionID стабилен на время жизни одного transport-соединения.
type Participant struct {
	ConnectionID   string  `json:"connectionId"`
	RoomID         string  `json:"roomId"`
	Username       string  `json:"username"`
	Status         Status  `json:"status"`
	CursorPosition int     `json:"cursorPosition"`
	Typing         bool    `json:"typing"`
	CurrentFile    *string `json:"currentFile"`
}

// NewParticipant возвращает участника в начальном состоянии протокола:
// online, курсор в нуле, файл не открыт.
func NewParticipant(connID, roomID, username string) Participant {
	return Participant{
		ConnectionID: connID,
		RoomID:       roomID,
		Username:     username,
		Status:       StatusOnline,
	}
}
