package escalation

import "github.com/sentinel-seed/sentinel/pkg/types"

// TurnWindow is a fixed-capacity ring buffer of conversation turns. Callers
// that track sessions can maintain one per session and hand its contents to
// the validator; history never grows unbounded.
type TurnWindow struct {
	turns []types.Turn
	head  int
	size  int
}

func NewTurnWindow(capacity int) *TurnWindow {
	if capacity < 1 {
		capacity = 1
	}
	return &TurnWindow{turns: make([]types.Turn, capacity)}
}

// Add appends a turn, evicting the oldest when full.
func (w *TurnWindow) Add(turn types.Turn) {
	w.turns[(w.head+w.size)%len(w.turns)] = turn
	if w.size < len(w.turns) {
		w.size++
	} else {
		w.head = (w.head + 1) % len(w.turns)
	}
}

// Len returns the number of buffered turns.
func (w *TurnWindow) Len() int {
	return w.size
}

// Turns returns the buffered turns oldest-first.
func (w *TurnWindow) Turns() []types.Turn {
	out := make([]types.Turn, 0, w.size)
	for i := 0; i < w.size; i++ {
		out = append(out, w.turns[(w.head+i)%len(w.turns)])
	}
	return out
}
