package http

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/collab-edit/collab-service/internal/registry"
	"github.com/collab-edit/collab-service/internal/service"
	"github.com/collab-edit/collab-service/internal/transport/ws"
)

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	reg := registry.New()
	hub := ws.NewHub()
	presence := service.NewPresenceService(reg, hub, nil)
	router := service.NewRouterService(reg, hub)
	wsServer := ws.NewServer(hub, presence, router, ws.Options{})
	return NewRouter(NewHandler(nil, reg), wsServer)
}

func TestRouterRoutes(t *testing.T) {
	r := newTestRouter(t)

	cases := []struct {
		path string
		want int
	}{
		{"/healthz", http.StatusOK},
		{"/rooms", http.StatusOK},
		// WS-маршруты зарегистрированы: без Upgrade-заголовков апгрейд
		// отклоняется, но не 404
		{"/ws", http.StatusBadRequest},
		{"/ws/rooms/r1", http.StatusBadRequest},
		{"/nope", http.StatusNotFound},
	}
	for _, tc := range cases {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tc.path, nil))
		if rec.Code != tc.want {
			t.Fatalf("GET %s: status %d, want %d", tc.path, rec.Code, tc.want)
		}
	}
}
