package canvas

// DefaultHistorySize bounds the undo/redo stack.
const DefaultHistorySize = 50

// History is a bounded stack of deep scene snapshots with a cursor.
// Entry 0 is the scene as loaded from the room log; undo never steps
// past it. A push after undo truncates the redo tail, and pushes beyond
// the cap discard the oldest entry.
type History struct {
	entries [][]Shape
	cursor  int
	maxSize int
}

// NewHistory returns an empty history bounded to maxSize entries. A
// non-positive maxSize falls back to DefaultHistorySize.
func NewHistory(maxSize int) *History {
	if maxSize <= 0 {
		maxSize = DefaultHistorySize
	}
	return &History{cursor: -1, maxSize: maxSize}
}

// Push records a deep copy of the scene as the new newest entry.
func (h *History) Push(sc *Scene) {
	h.entries = h.entries[:h.cursor+1]
	h.entries = append(h.entries, sc.Snapshot())
	if len(h.entries) > h.maxSize {
		h.entries = h.entries[1:]
	} else {
		h.cursor++
	}
}

// CanUndo reports whether an older snapshot exists.
func (h *History) CanUndo() bool {
	return h.cursor > 0
}

// CanRedo reports whether a newer snapshot exists.
func (h *History) CanRedo() bool {
	return h.cursor < len(h.entries)-1
}

// Undo steps the cursor back and returns a deep copy of that snapshot.
func (h *History) Undo() ([]Shape, bool) {
	if !h.CanUndo() {
		return nil, false
	}
	h.cursor--
	return h.current(), true
}

// Redo steps the cursor forward and returns a deep copy of that snapshot.
func (h *History) Redo() ([]Shape, bool) {
	if !h.CanRedo() {
		return nil, false
	}
	h.cursor++
	return h.current(), true
}

// Len returns the number of stored snapshots.
func (h *History) Len() int {
	return len(h.entries)
}

func (h *History) current() []Shape {
	snapshot := h.entries[h.cursor]
	out := make([]Shape, len(snapshot))
	for i, s := range snapshot {
		out[i] = s.Clone()
	}
	return out
}
