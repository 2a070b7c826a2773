package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/adeebik/eraser/internal/middleware"
	"github.com/adeebik/eraser/internal/repository"
	"github.com/adeebik/eraser/internal/services/collaboration"

	"github.com/gorilla/mux"
	"github.com/segmentio/ksuid"
)

// shareLinkLength truncates the KSUID token used for share links.
const shareLinkLength = 14

// Handler handles HTTP requests for the room directory and the
// mutation-log read path.
type Handler struct {
	rooms     RoomDirectory
	chats     ChatLog
	wsHandler *collaboration.WebSocketHandler
}

// NewHandler wires the HTTP surface to its stores and the websocket
// upgrade handler.
func NewHandler(rooms RoomDirectory, chats ChatLog, wsHandler *collaboration.WebSocketHandler) *Handler {
	return &Handler{
		rooms:     rooms,
		chats:     chats,
		wsHandler: wsHandler,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// requireUser pulls the authenticated user ID injected by the auth
// middleware.
func requireUser(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return "", false
	}
	return userID, true
}

// CreateRoom creates a room with the caller as admin. Slugs are unique;
// a duplicate answers 409.
func (h *Handler) CreateRoom(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var body struct {
		Slug string `json:"slug"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Slug == "" {
		http.Error(w, "slug is required", http.StatusBadRequest)
		return
	}

	room, err := h.rooms.Create(r.Context(), body.Slug, userID)
	if err != nil {
		middleware.AddSpanError(r.Context(), err)
		http.Error(w, "room already exists or could not be created", http.StatusConflict)
		return
	}

	writeJSON(w, http.StatusCreated, room)
}

// ListRooms returns every room the caller belongs to.
func (h *Handler) ListRooms(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	rooms, err := h.rooms.ListForUser(r.Context(), userID)
	if err != nil {
		middleware.AddSpanError(r.Context(), err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"rooms": rooms})
}

// ShareRoom mints a share-link token for a room the caller administers.
func (h *Handler) ShareRoom(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var body struct {
		RoomID string `json:"roomId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.RoomID == "" {
		http.Error(w, "roomId is required", http.StatusBadRequest)
		return
	}

	link := ksuid.New().String()[:shareLinkLength]
	if err := h.rooms.SetShareLink(r.Context(), body.RoomID, userID, link); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			http.Error(w, "room not found or not administered by caller", http.StatusNotFound)
			return
		}
		middleware.AddSpanError(r.Context(), err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"link": link})
}

// JoinByLink resolves a share-link token and adds the caller as a
// member. Joining a room the caller already belongs to is a no-op.
func (h *Handler) JoinByLink(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	link := mux.Vars(r)["link"]
	room, err := h.rooms.FindByShareLink(r.Context(), link)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			http.Error(w, "invalid share link", http.StatusNotFound)
			return
		}
		middleware.AddSpanError(r.Context(), err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	joined, err := h.rooms.FindMembership(r.Context(), room.ID, userID)
	if err != nil {
		middleware.AddSpanError(r.Context(), err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if !joined {
		if err := h.rooms.AddMember(r.Context(), room.ID, userID); err != nil {
			middleware.AddSpanError(r.Context(), err)
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
	}

	writeJSON(w, http.StatusOK, room)
}

// LeaveRoom removes the caller's membership. The admin cannot leave;
// deleting the room is the admin's exit.
func (h *Handler) LeaveRoom(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var body struct {
		RoomID string `json:"roomId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.RoomID == "" {
		http.Error(w, "roomId is required", http.StatusBadRequest)
		return
	}

	room, err := h.rooms.FindByID(r.Context(), body.RoomID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			http.Error(w, "room not found", http.StatusNotFound)
			return
		}
		middleware.AddSpanError(r.Context(), err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if room.AdminID == userID {
		http.Error(w, "admin cannot leave; delete the room instead", http.StatusForbidden)
		return
	}

	if err := h.rooms.RemoveMember(r.Context(), body.RoomID, userID); err != nil {
		middleware.AddSpanError(r.Context(), err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "left"})
}

// DeleteRoom removes a room the caller administers, with its
// memberships and mutation log.
func (h *Handler) DeleteRoom(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	roomID := mux.Vars(r)["id"]
	if err := h.rooms.Delete(r.Context(), roomID, userID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			http.Error(w, "room not found or not administered by caller", http.StatusNotFound)
			return
		}
		middleware.AddSpanError(r.Context(), err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// GetChats returns a room's mutation log in append order. Clients replay
// it to rebuild the scene on join.
func (h *Handler) GetChats(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	roomID := mux.Vars(r)["roomId"]
	room, err := h.rooms.FindByID(r.Context(), roomID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			http.Error(w, "room not found", http.StatusNotFound)
			return
		}
		middleware.AddSpanError(r.Context(), err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	if room.AdminID != userID {
		member, err := h.rooms.FindMembership(r.Context(), roomID, userID)
		if err != nil {
			middleware.AddSpanError(r.Context(), err)
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		if !member {
			http.Error(w, "access denied", http.StatusForbidden)
			return
		}
	}

	chats, err := h.chats.Log(r.Context(), roomID)
	if err != nil {
		middleware.AddSpanError(r.Context(), err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"messages": chats})
}

// HandleWebSocket upgrades to the realtime coordinator connection.
func (h *Handler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	h.wsHandler.HandleConnection(w, r)
}
