package api

import (
	"net/http"

	"github.com/adeebik/eraser/internal/middleware"

	"github.com/gorilla/mux"
)

// SetupRoutes builds the HTTP router. Tracing runs first so every
// request gets a span, then panic recovery, then CORS. The /api
// subrouter requires a bearer token; the websocket route authenticates
// itself via the token query parameter.
func SetupRoutes(h *Handler, jwtSecret string) *mux.Router {
	r := mux.NewRouter()

	r.Use(middleware.TracingMiddleware)
	r.Use(middleware.ErrorRecoveryMiddleware)
	r.Use(middleware.CORSMiddleware)

	// Registered before the /api subrouter so it stays reachable
	// without a token.
	r.HandleFunc("/api/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")

	api := r.PathPrefix("/api").Subrouter()
	api.Use(middleware.AuthMiddleware(jwtSecret))

	api.HandleFunc("/rooms", h.CreateRoom).Methods("POST")
	api.HandleFunc("/rooms", h.ListRooms).Methods("GET")
	api.HandleFunc("/rooms/share", h.ShareRoom).Methods("POST")
	api.HandleFunc("/rooms/join/{link}", h.JoinByLink).Methods("POST")
	api.HandleFunc("/rooms/leave", h.LeaveRoom).Methods("POST")
	api.HandleFunc("/rooms/{id}", h.DeleteRoom).Methods("DELETE")

	api.HandleFunc("/chats/{roomId}", h.GetChats).Methods("GET")

	r.HandleFunc("/ws", h.HandleWebSocket)

	return r
}
