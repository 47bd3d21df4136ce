package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/collab-edit/collab-service/internal/domain"
	"github.com/collab-edit/collab-service/internal/postgres"
	"github.com/collab-edit/collab-service/internal/registry"

	"github.com/go-chi/chi/v5"
)

// Handler — периферийный HTTP-срез: журнал активности и read-only
// интроспекция живого реестра. Ядро присутствия от него не зависит.
type Handler struct {
	userLog *postgres.UserLogRepository
	reg     *registry.Registry
}

func NewHandler(userLog *postgres.UserLogRepository, reg *registry.Registry) *Handler {
	return &Handler{userLog: userLog, reg: reg}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// POST /users
func (h *Handler) CreateUserRecord(w http.ResponseWriter, r *http.Request) {
	if h.userLog == nil {
		writeJSON(w, http.StatusNotImplemented, ErrorResponse{Error: "user log disabled"})
		return
	}
	var req CreateUserRecordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid json"})
		return
	}
	if strings.TrimSpace(req.ConnectionID) == "" || strings.TrimSpace(req.RoomID) == "" {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "connectionId and roomId are required"})
		return
	}

	p := domain.NewParticipant(req.ConnectionID, req.RoomID, req.Username)
	if err := h.userLog.CreateUserRecord(r.Context(), p); err != nil {
		slog.Error("handler.CreateUserRecord:", slog.Any("err", err))
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{"status": "created"})
}

// GET /users?limit=&cursor=
func (h *Handler) ListUserRecords(w http.ResponseWriter, r *http.Request) {
	if h.userLog == nil {
		writeJSON(w, http.StatusNotImplemented, ErrorResponse{Error: "user log disabled"})
		return
	}
	limit := 50
	if s := r.URL.Query().Get("limit"); s != "" {
		if n, err := strconv.Atoi(s); err == nil {
			limit = n
		}
	}
	cursor := r.URL.Query().Get("cursor")

	items, next, err := h.userLog.List(r.Context(), limit, cursor)
	if err != nil {
		if errors.Is(err, postgres.ErrInvalidCursor) {
			writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid_cursor"})
			return
		}
		slog.Error("handler.ListUserRecords:", slog.Any("err", err))
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}

	resp := UserRecordsResponse{Items: make([]UserRecordItem, 0, len(items)), NextCursor: next}
	for _, rec := range items {
		resp.Items = append(resp.Items, mapUserRecord(rec))
	}
	writeJSON(w, http.StatusOK, resp)
}

// GET /users/{username}
func (h *Handler) GetUserRecord(w http.ResponseWriter, r *http.Request) {
	if h.userLog == nil {
		writeJSON(w, http.StatusNotImplemented, ErrorResponse{Error: "user log disabled"})
		return
	}
	username := chi.URLParam(r, "username")

	rec, err := h.userLog.FindByUsername(r.Context(), username)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, ErrorResponse{Error: "user record not found"})
			return
		}
		slog.Error("handler.GetUserRecord:", slog.Any("err", err))
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, mapUserRecord(*rec))
}

// DELETE /users/{id}
func (h *Handler) DeleteUserRecord(w http.ResponseWriter, r *http.Request) {
	if h.userLog == nil {
		writeJSON(w, http.StatusNotImplemented, ErrorResponse{Error: "user log disabled"})
		return
	}
	id := chi.URLParam(r, "id")

	if err := h.userLog.Delete(r.Context(), id); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, ErrorResponse{Error: "user record not found"})
			return
		}
		slog.Error("handler.DeleteUserRecord:", slog.Any("err", err))
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// GET /rooms — активные комнаты из реестра (снимок, без персистентности)
func (h *Handler) ListActiveRooms(w http.ResponseWriter, r *http.Request) {
	ids := h.reg.Rooms()
	resp := RoomsResponse{Items: make([]RoomItem, 0, len(ids))}
	for _, id := range ids {
		resp.Items = append(resp.Items, RoomItem{
			RoomID:  id,
			Members: len(h.reg.MembersOf(id)),
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

// GET /rooms/{id}/participants — текущий ростер комнаты
func (h *Handler) GetRoomParticipants(w http.ResponseWriter, r *http.Request) {
	roomID := chi.URLParam(r, "id")
	members := h.reg.MembersOf(roomID)

	resp := ParticipantsResponse{Items: members}
	if resp.Items == nil {
		resp.Items = []domain.Participant{}
	}
	writeJSON(w, http.StatusOK, resp)
}

func mapUserRecord(rec postgres.UserRecord) UserRecordItem {
	return UserRecordItem{
		ID:           rec.ID,
		ConnectionID: rec.ConnectionID,
		RoomID:       rec.RoomID,
		Username:     rec.Username,
		JoinedAt:     rec.JoinedAt,
		LeftAt:       rec.LeftAt,
	}
}
