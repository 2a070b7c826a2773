package canvas

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sceneWith(ids ...string) *Scene {
	sc := NewScene()
	for _, id := range ids {
		sc.Append(Shape{ID: id, Type: ShapeRect, Width: 10, Height: 10})
	}
	return sc
}

func TestHistoryEntryZeroIsFloor(t *testing.T) {
	h := NewHistory(DefaultHistorySize)
	h.Push(sceneWith("initial"))

	// The load snapshot is not itself undoable.
	assert.False(t, h.CanUndo())
	assert.False(t, h.CanRedo())

	h.Push(sceneWith("initial", "a"))
	assert.True(t, h.CanUndo())

	shapes, ok := h.Undo()
	require.True(t, ok)
	require.Len(t, shapes, 1)
	assert.Equal(t, "initial", shapes[0].ID)
	assert.False(t, h.CanUndo())
}

func TestHistoryUndoRedoInverse(t *testing.T) {
	h := NewHistory(DefaultHistorySize)
	h.Push(sceneWith())
	h.Push(sceneWith("a"))
	h.Push(sceneWith("a", "b"))

	back, ok := h.Undo()
	require.True(t, ok)
	assert.Len(t, back, 1)

	forward, ok := h.Redo()
	require.True(t, ok)
	require.Len(t, forward, 2)
	assert.Equal(t, "b", forward[1].ID)
	assert.False(t, h.CanRedo())
}

func TestHistoryPushTruncatesRedoTail(t *testing.T) {
	h := NewHistory(DefaultHistorySize)
	h.Push(sceneWith())
	h.Push(sceneWith("a"))
	h.Push(sceneWith("a", "b"))

	_, ok := h.Undo()
	require.True(t, ok)

	h.Push(sceneWith("a", "c"))
	assert.False(t, h.CanRedo())

	shapes, ok := h.Undo()
	require.True(t, ok)
	require.Len(t, shapes, 1)
	assert.Equal(t, "a", shapes[0].ID)
}

func TestHistoryCapDiscardsOldest(t *testing.T) {
	h := NewHistory(3)
	for i := 0; i < 5; i++ {
		h.Push(sceneWith(fmt.Sprintf("s%d", i)))
	}

	assert.Equal(t, 3, h.Len())

	// Undo floor is now the oldest surviving entry, s2.
	_, ok := h.Undo()
	require.True(t, ok)
	shapes, ok := h.Undo()
	require.True(t, ok)
	assert.Equal(t, "s2", shapes[0].ID)
	assert.False(t, h.CanUndo())
}

func TestHistorySnapshotsAreIsolated(t *testing.T) {
	h := NewHistory(DefaultHistorySize)
	sc := sceneWith("a")
	h.Push(sc)
	h.Push(sc)

	// Mutating the live scene must not reach stored snapshots.
	sc.At(0).X = 999

	shapes, ok := h.Undo()
	require.True(t, ok)
	assert.Equal(t, 0.0, shapes[0].X)
}
