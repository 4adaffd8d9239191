package world

import (
	"sync"

	"github.com/kasuganosora/rmmvinterp/game/interp"
)

// Input holds the pressed buttons ("ok", "cancel", "up", ...).
type Input struct {
	mu      sync.RWMutex
	pressed map[string]bool
}

var _ interp.Input = (*Input)(nil)

func newInput() *Input { return &Input{pressed: make(map[string]bool)} }

func (in *Input) IsPressed(button string) bool {
	in.mu.RLock()
	defer in.mu.RUnlock()
	return in.pressed[button]
}

// Press holds a button down until Release.
func (in *Input) Press(button string) {
	in.mu.Lock()
	defer in.mu.Unlock()
	in.pressed[button] = true
}

func (in *Input) Release(button string) {
	in.mu.Lock()
	defer in.mu.Unlock()
	delete(in.pressed, button)
}
