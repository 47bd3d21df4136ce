package http

import (
	"time"

	"github.com/collab-edit/collab-service/internal/domain"
)

type ErrorResponse struct {
	Error string `json:"error"`
}

type CreateUserRecordRequest struct {
	ConnectionID string `json:"connectionId"`
	RoomID       string `json:"roomId"`
	Username     string `json:"username"`
}

type UserRecordItem struct {
	ID           string     `json:"id"`
	ConnectionID string     `json:"connectionId"`
	RoomID       string     `json:"roomId"`
	Username     string     `json:"username"`
	JoinedAt     time.Time  `json:"joinedAt"`
	LeftAt       *time.Time `json:"leftAt,omitempty"`
}

type UserRecordsResponse struct {
	Items      []UserRecordItem `json:"items"`
	NextCursor string           `json:"next_cursor,omitempty"`
}

type RoomItem struct {
	RoomID  string `json:"roomId"`
	Members int    `json:"members"`
}

type RoomsResponse struct {
	Items []RoomItem `json:"items"`
}

type ParticipantsResponse struct {
	Items []domain.Participant `json:"items"`
}
