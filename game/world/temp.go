package world

import (
	"sync"

	"github.com/kasuganosora/rmmvinterp/game/interp"
)

// Temp keeps the reserved common event ($gameTemp). It is safe for
// concurrent use since the host reserves events from API calls.
type Temp struct {
	mu            sync.Mutex
	commonEventID int
}

var _ interp.Temp = (*Temp)(nil)

func (t *Temp) IsCommonEventReserved() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.commonEventID > 0
}

func (t *Temp) ReservedCommonEventID() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.commonEventID
}

func (t *Temp) ReserveCommonEvent(commonEventID int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.commonEventID = commonEventID
}

func (t *Temp) ClearCommonEvent() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.commonEventID = 0
}
