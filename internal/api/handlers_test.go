package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/adeebik/eraser/internal/middleware"
	"github.com/adeebik/eraser/internal/models"
	"github.com/adeebik/eraser/internal/repository"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeDirectory struct {
	rooms   map[string]*models.Room
	members map[string]bool
	nextID  int
}

func newFakeDirectory() *fakeDirectory {
	return &fakeDirectory{rooms: make(map[string]*models.Room), members: make(map[string]bool)}
}

func (f *fakeDirectory) addRoom(id, slug, adminID string) {
	f.rooms[id] = &models.Room{ID: id, Slug: slug, AdminID: adminID}
	f.members[id+"/"+adminID] = true
}

func (f *fakeDirectory) Create(ctx context.Context, slug, adminID string) (*models.Room, error) {
	for _, r := range f.rooms {
		if r.Slug == slug {
			return nil, repository.ErrNotFound
		}
	}
	f.nextID++
	id := strings.Repeat("0", f.nextID) // distinct, stable ids
	f.addRoom(id, slug, adminID)
	return f.rooms[id], nil
}

func (f *fakeDirectory) FindByID(ctx context.Context, roomID string) (*models.Room, error) {
	r, ok := f.rooms[roomID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return r, nil
}

func (f *fakeDirectory) FindByShareLink(ctx context.Context, link string) (*models.Room, error) {
	for _, r := range f.rooms {
		if r.Shared != "" && r.Shared == link {
			return r, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeDirectory) SetShareLink(ctx context.Context, roomID, adminID, link string) error {
	r, ok := f.rooms[roomID]
	if !ok || r.AdminID != adminID {
		return repository.ErrNotFound
	}
	r.Shared = link
	return nil
}

func (f *fakeDirectory) Delete(ctx context.Context, roomID, adminID string) error {
	r, ok := f.rooms[roomID]
	if !ok || r.AdminID != adminID {
		return repository.ErrNotFound
	}
	delete(f.rooms, roomID)
	return nil
}

func (f *fakeDirectory) AddMember(ctx context.Context, roomID, userID string) error {
	f.members[roomID+"/"+userID] = true
	return nil
}

func (f *fakeDirectory) RemoveMember(ctx context.Context, roomID, userID string) error {
	delete(f.members, roomID+"/"+userID)
	return nil
}

func (f *fakeDirectory) FindMembership(ctx context.Context, roomID, userID string) (bool, error) {
	return f.members[roomID+"/"+userID], nil
}

func (f *fakeDirectory) ListForUser(ctx context.Context, userID string) ([]models.Room, error) {
	var out []models.Room
	for id, r := range f.rooms {
		if f.members[id+"/"+userID] {
			out = append(out, *r)
		}
	}
	return out, nil
}

type fakeChatLog struct {
	logs map[string][]models.Chat
}

func (f *fakeChatLog) Log(ctx context.Context, roomID string) ([]models.Chat, error) {
	return f.logs[roomID], nil
}

func authedRequest(method, target, userID string, body string) *http.Request {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	ctx := context.WithValue(req.Context(), middleware.UserIDKey, userID)
	return req.WithContext(ctx)
}

func TestCreateRoom(t *testing.T) {
	dir := newFakeDirectory()
	h := NewHandler(dir, &fakeChatLog{}, nil)

	rec := httptest.NewRecorder()
	h.CreateRoom(rec, authedRequest("POST", "/api/rooms", "u1", `{"slug":"my-canvas"}`))

	require.Equal(t, http.StatusCreated, rec.Code)
	var room models.Room
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&room))
	assert.Equal(t, "my-canvas", room.Slug)
	assert.Equal(t, "u1", room.AdminID)

	// Creator is a member of their own room.
	member, err := dir.FindMembership(context.Background(), room.ID, "u1")
	require.NoError(t, err)
	assert.True(t, member)
}

func TestCreateRoomRequiresSlug(t *testing.T) {
	h := NewHandler(newFakeDirectory(), &fakeChatLog{}, nil)

	rec := httptest.NewRecorder()
	h.CreateRoom(rec, authedRequest("POST", "/api/rooms", "u1", `{}`))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateRoomDuplicateSlugConflicts(t *testing.T) {
	dir := newFakeDirectory()
	dir.addRoom("r1", "taken", "other")
	h := NewHandler(dir, &fakeChatLog{}, nil)

	rec := httptest.NewRecorder()
	h.CreateRoom(rec, authedRequest("POST", "/api/rooms", "u1", `{"slug":"taken"}`))
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestShareRoomMintsLink(t *testing.T) {
	dir := newFakeDirectory()
	dir.addRoom("r1", "canvas", "u1")
	h := NewHandler(dir, &fakeChatLog{}, nil)

	rec := httptest.NewRecorder()
	h.ShareRoom(rec, authedRequest("POST", "/api/rooms/share", "u1", `{"roomId":"r1"}`))

	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]string
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Len(t, body["link"], shareLinkLength)
	assert.Equal(t, body["link"], dir.rooms["r1"].Shared)
}

func TestShareRoomAdminOnly(t *testing.T) {
	dir := newFakeDirectory()
	dir.addRoom("r1", "canvas", "u1")
	h := NewHandler(dir, &fakeChatLog{}, nil)

	rec := httptest.NewRecorder()
	h.ShareRoom(rec, authedRequest("POST", "/api/rooms/share", "intruder", `{"roomId":"r1"}`))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Empty(t, dir.rooms["r1"].Shared)
}

func TestJoinByLink(t *testing.T) {
	dir := newFakeDirectory()
	dir.addRoom("r1", "canvas", "u1")
	dir.rooms["r1"].Shared = "tok-12345"
	h := NewHandler(dir, &fakeChatLog{}, nil)

	req := authedRequest("POST", "/api/rooms/join/tok-12345", "u2", "")
	req = mux.SetURLVars(req, map[string]string{"link": "tok-12345"})
	rec := httptest.NewRecorder()
	h.JoinByLink(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	member, err := dir.FindMembership(context.Background(), "r1", "u2")
	require.NoError(t, err)
	assert.True(t, member)
}

func TestJoinByLinkInvalidToken(t *testing.T) {
	h := NewHandler(newFakeDirectory(), &fakeChatLog{}, nil)

	req := authedRequest("POST", "/api/rooms/join/nope", "u2", "")
	req = mux.SetURLVars(req, map[string]string{"link": "nope"})
	rec := httptest.NewRecorder()
	h.JoinByLink(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestLeaveRoom(t *testing.T) {
	dir := newFakeDirectory()
	dir.addRoom("r1", "canvas", "u1")
	dir.members["r1/u2"] = true
	h := NewHandler(dir, &fakeChatLog{}, nil)

	rec := httptest.NewRecorder()
	h.LeaveRoom(rec, authedRequest("POST", "/api/rooms/leave", "u2", `{"roomId":"r1"}`))

	require.Equal(t, http.StatusOK, rec.Code)
	member, err := dir.FindMembership(context.Background(), "r1", "u2")
	require.NoError(t, err)
	assert.False(t, member)
}

func TestLeaveRoomAdminForbidden(t *testing.T) {
	dir := newFakeDirectory()
	dir.addRoom("r1", "canvas", "u1")
	h := NewHandler(dir, &fakeChatLog{}, nil)

	rec := httptest.NewRecorder()
	h.LeaveRoom(rec, authedRequest("POST", "/api/rooms/leave", "u1", `{"roomId":"r1"}`))
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestDeleteRoom(t *testing.T) {
	dir := newFakeDirectory()
	dir.addRoom("r1", "canvas", "u1")
	h := NewHandler(dir, &fakeChatLog{}, nil)

	req := authedRequest("DELETE", "/api/rooms/r1", "u1", "")
	req = mux.SetURLVars(req, map[string]string{"id": "r1"})
	rec := httptest.NewRecorder()
	h.DeleteRoom(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, dir.rooms, "r1")
}

func TestDeleteRoomAdminOnly(t *testing.T) {
	dir := newFakeDirectory()
	dir.addRoom("r1", "canvas", "u1")
	h := NewHandler(dir, &fakeChatLog{}, nil)

	req := authedRequest("DELETE", "/api/rooms/r1", "intruder", "")
	req = mux.SetURLVars(req, map[string]string{"id": "r1"})
	rec := httptest.NewRecorder()
	h.DeleteRoom(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, dir.rooms, "r1")
}

func TestGetChatsRequiresMembership(t *testing.T) {
	dir := newFakeDirectory()
	dir.addRoom("r1", "canvas", "u1")
	chats := &fakeChatLog{logs: map[string][]models.Chat{
		"r1": {{ID: 1, RoomID: "r1", UserID: "u1", Message: `{"type":"rect"}`}},
	}}
	h := NewHandler(dir, chats, nil)

	req := authedRequest("GET", "/api/chats/r1", "u1", "")
	req = mux.SetURLVars(req, map[string]string{"roomId": "r1"})
	rec := httptest.NewRecorder()
	h.GetChats(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Messages []models.Chat `json:"messages"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	require.Len(t, body.Messages, 1)
	assert.Equal(t, `{"type":"rect"}`, body.Messages[0].Message)

	req = authedRequest("GET", "/api/chats/r1", "stranger", "")
	req = mux.SetURLVars(req, map[string]string{"roomId": "r1"})
	rec = httptest.NewRecorder()
	h.GetChats(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestListRooms(t *testing.T) {
	dir := newFakeDirectory()
	dir.addRoom("r1", "mine", "u1")
	dir.addRoom("r2", "other", "u2")
	h := NewHandler(dir, &fakeChatLog{}, nil)

	rec := httptest.NewRecorder()
	h.ListRooms(rec, authedRequest("GET", "/api/rooms", "u1", ""))

	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Rooms []models.Room `json:"rooms"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	require.Len(t, body.Rooms, 1)
	assert.Equal(t, "mine", body.Rooms[0].Slug)
}

func TestHealthEndpointNeedsNoToken(t *testing.T) {
	h := NewHandler(newFakeDirectory(), &fakeChatLog{}, nil)
	router := SetupRoutes(h, "secret")

	req := httptest.NewRequest("GET", "/api/health", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestAPIRoutesRejectMissingToken(t *testing.T) {
	h := NewHandler(newFakeDirectory(), &fakeChatLog{}, nil)
	router := SetupRoutes(h, "secret")

	req := httptest.NewRequest("GET", "/api/rooms", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
