package http

import (
	"net/http"
	"time"

	"github.com/collab-edit/collab-service/internal/transport/ws"

	"github.com/go-chi/chi/v5"
	middlewareChi "github.com/go-chi/chi/v5/middleware"
)

func NewRouter(h *Handler, wsServer *ws.Server) http.Handler {
	r := chi.NewRouter()
	r.Use(middlewareChi.RequestID)
	r.Use(middlewareChi.RealIP)
	r.Use(middlewareChi.Recoverer)

	// WS endpoint: комната — в пути или в join-request
	r.Get("/ws", wsServer.HandleWS)
	r.Get("/ws/rooms/{id}", wsServer.HandleWS)

	r.Group(func(pr chi.Router) {
		pr.Use(middlewareChi.Timeout(30 * time.Second))

		pr.Route("/users", func(ur chi.Router) {
			ur.Post("/", h.CreateUserRecord)
			ur.Get("/", h.ListUserRecords)
			ur.Get("/{username}", h.GetUserRecord)
			ur.Delete("/{id}", h.DeleteUserRecord)
		})

		pr.Route("/rooms", func(rm chi.Router) {
			rm.Get("/", h.ListActiveRooms)
			rm.Get("/{id}/participants", h.GetRoomParticipants)
		})
	})

	// health
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	return r
}
