package client

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"

	"github.com/adeebik/eraser/internal/canvas"
	"github.com/adeebik/eraser/internal/models"
)

// SceneLoader fetches a room's persisted mutation log over HTTP so a
// joining client can rebuild the scene before applying live mutations.
type SceneLoader struct {
	baseURL string
	token   string
	http    *http.Client
}

// NewSceneLoader builds a loader against the HTTP API at baseURL.
func NewSceneLoader(baseURL, token string, httpClient *http.Client) *SceneLoader {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &SceneLoader{baseURL: baseURL, token: token, http: httpClient}
}

// Load replays the room's log into a slice of shapes in append order.
// Rows that do not parse as shapes are skipped rather than failing the
// whole load.
func (l *SceneLoader) Load(ctx context.Context, roomID string) ([]canvas.Shape, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		fmt.Sprintf("%s/api/chats/%s", l.baseURL, roomID), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build scene request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+l.token)

	resp, err := l.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch scene: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("scene fetch answered %d", resp.StatusCode)
	}

	var body struct {
		Messages []models.Chat `json:"messages"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("failed to decode scene response: %w", err)
	}

	shapes := make([]canvas.Shape, 0, len(body.Messages))
	for _, m := range body.Messages {
		shape, err := canvas.UnmarshalShape(m.Message)
		if err != nil {
			log.Printf("skipping unparseable log row %d in room %s: %v", m.ID, roomID, err)
			continue
		}
		shapes = append(shapes, shape)
	}
	return shapes, nil
}

// Bootstrap loads the room's scene and seeds the session's controller
// with it as the initial undo entry.
func (l *SceneLoader) Bootstrap(ctx context.Context, s *EditSession) error {
	shapes, err := l.Load(ctx, s.roomID)
	if err != nil {
		return err
	}
	s.controller.LoadScene(shapes)
	return nil
}
