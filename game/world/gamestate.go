package world

import (
	"fmt"
	"sync"
	"time"

	"github.com/kasuganosora/rmmvinterp/game/interp"
	"github.com/kasuganosora/rmmvinterp/model"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DefaultFlushInterval is how often pending state changes are written.
const DefaultFlushInterval = 5 * time.Second

// selfSwitchKey uniquely identifies a self-switch for one event on one map.
type selfSwitchKey struct {
	MapID   int
	EventID int
	Ch      string // "A","B","C","D"
}

type changeKind int

const (
	changeSwitch changeKind = iota
	changeVariable
	changeSelfSwitch
)

// pendingChange represents a pending database write.
type pendingChange struct {
	kind   changeKind
	id     int
	self   selfSwitchKey
	on     bool
	number int
}

// GameStateReader provides read access to switches, variables, and self-switches.
type GameStateReader interface {
	GetSwitch(id int) bool
	GetVariable(id int) int
	GetSelfSwitch(mapID, eventID int, ch string) bool
}

// GameState holds game switches, variables, and self-switches.
// Self-switches are per (map, event, channel).
//
// State is persisted to the database: loaded on startup, saved with batching.
type GameState struct {
	mu           sync.RWMutex
	switches     map[int]bool
	variables    map[int]int
	selfSwitches map[selfSwitchKey]bool
	db           *gorm.DB // nil = no persistence (tests, debug runs)
	logger       *zap.Logger
	onChange     func()

	// Batch persistence
	pending     map[string]pendingChange
	pendingMu   sync.Mutex
	flushTicker *time.Ticker
	stopCh      chan struct{}
	stopOnce    sync.Once
}

var _ interp.GameStateAccessor = (*GameState)(nil)

// NewGameState creates an empty GameState. When db is non-nil, pending
// changes are flushed every flushInterval (DefaultFlushInterval if zero).
func NewGameState(db *gorm.DB, flushInterval time.Duration, logger *zap.Logger) *GameState {
	if logger == nil {
		logger = zap.NewNop()
	}
	gs := &GameState{
		switches:     make(map[int]bool),
		variables:    make(map[int]int),
		selfSwitches: make(map[selfSwitchKey]bool),
		db:           db,
		logger:       logger,
		pending:      make(map[string]pendingChange),
		stopCh:       make(chan struct{}),
	}

	if db != nil {
		if flushInterval <= 0 {
			flushInterval = DefaultFlushInterval
		}
		gs.flushTicker = time.NewTicker(flushInterval)
		go gs.batchFlusher()
	}

	return gs
}

// Stop stops the background flusher and flushes remaining changes.
func (gs *GameState) Stop() {
	if gs.flushTicker == nil {
		return
	}
	gs.stopOnce.Do(func() {
		gs.flushTicker.Stop()
		close(gs.stopCh)
		if err := gs.Flush(); err != nil {
			gs.logger.Error("failed to flush game state", zap.Error(err))
		}
	})
}

func (gs *GameState) batchFlusher() {
	for {
		select {
		case <-gs.flushTicker.C:
			if err := gs.Flush(); err != nil {
				gs.logger.Error("failed to flush game state", zap.Error(err))
			}
		case <-gs.stopCh:
			return
		}
	}
}

// Flush writes all pending changes to the database. Failed batches are
// re-queued unless a newer value was set in the meantime.
func (gs *GameState) Flush() error {
	if gs.db == nil {
		return nil
	}

	gs.pendingMu.Lock()
	if len(gs.pending) == 0 {
		gs.pendingMu.Unlock()
		return nil
	}
	batch := gs.pending
	gs.pending = make(map[string]pendingChange)
	gs.pendingMu.Unlock()

	upsert := clause.OnConflict{DoUpdates: clause.AssignmentColumns([]string{"value"})}
	err := gs.db.Transaction(func(tx *gorm.DB) error {
		for _, ch := range batch {
			var row interface{}
			switch ch.kind {
			case changeSwitch:
				row = &model.GameSwitch{SwitchID: ch.id, Value: ch.on}
			case changeVariable:
				row = &model.GameVariable{VariableID: ch.id, Value: ch.number}
			case changeSelfSwitch:
				row = &model.GameSelfSwitch{MapID: ch.self.MapID, EventID: ch.self.EventID, Ch: ch.self.Ch, Value: ch.on}
			}
			if err := tx.Clauses(upsert).Create(row).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		gs.pendingMu.Lock()
		for k, ch := range batch {
			if _, newer := gs.pending[k]; !newer {
				gs.pending[k] = ch
			}
		}
		gs.pendingMu.Unlock()
		return fmt.Errorf("world: flush game state: %w", err)
	}
	return nil
}

func (gs *GameState) queueChange(key string, change pendingChange) {
	if gs.db == nil {
		return
	}
	gs.pendingMu.Lock()
	gs.pending[key] = change
	gs.pendingMu.Unlock()
}

// LoadFromDB populates the in-memory state from the database.
// Call once at startup after NewGameState.
func (gs *GameState) LoadFromDB() error {
	if gs.db == nil {
		return nil
	}
	gs.mu.Lock()
	defer gs.mu.Unlock()

	var switches []model.GameSwitch
	if err := gs.db.Find(&switches).Error; err != nil {
		return fmt.Errorf("world: load switches: %w", err)
	}
	for _, s := range switches {
		gs.switches[s.SwitchID] = s.Value
	}

	var vars []model.GameVariable
	if err := gs.db.Find(&vars).Error; err != nil {
		return fmt.Errorf("world: load variables: %w", err)
	}
	for _, v := range vars {
		gs.variables[v.VariableID] = v.Value
	}

	var selfSwitches []model.GameSelfSwitch
	if err := gs.db.Find(&selfSwitches).Error; err != nil {
		return fmt.Errorf("world: load self switches: %w", err)
	}
	for _, ss := range selfSwitches {
		gs.selfSwitches[selfSwitchKey{MapID: ss.MapID, EventID: ss.EventID, Ch: ss.Ch}] = ss.Value
	}

	return nil
}

// OnChange registers fn to run after every write. The map uses it to
// re-evaluate event pages.
func (gs *GameState) OnChange(fn func()) {
	gs.mu.Lock()
	defer gs.mu.Unlock()
	gs.onChange = fn
}

func (gs *GameState) changed() {
	gs.mu.RLock()
	fn := gs.onChange
	gs.mu.RUnlock()
	if fn != nil {
		fn()
	}
}

// GetSwitch returns the value of a switch.
func (gs *GameState) GetSwitch(id int) bool {
	gs.mu.RLock()
	defer gs.mu.RUnlock()
	return gs.switches[id]
}

// SetSwitch sets the value of a switch and queues it for persistence.
func (gs *GameState) SetSwitch(id int, val bool) {
	gs.mu.Lock()
	gs.switches[id] = val
	gs.mu.Unlock()
	gs.changed()

	gs.queueChange(fmt.Sprintf("sw:%d", id), pendingChange{kind: changeSwitch, id: id, on: val})
}

// GetVariable returns the value of a variable.
func (gs *GameState) GetVariable(id int) int {
	gs.mu.RLock()
	defer gs.mu.RUnlock()
	return gs.variables[id]
}

// SetVariable sets the value of a variable and queues it for persistence.
func (gs *GameState) SetVariable(id int, val int) {
	gs.mu.Lock()
	gs.variables[id] = val
	gs.mu.Unlock()
	gs.changed()

	gs.queueChange(fmt.Sprintf("var:%d", id), pendingChange{kind: changeVariable, id: id, number: val})
}

// GetSelfSwitch returns the value of a self-switch for a specific event.
func (gs *GameState) GetSelfSwitch(mapID, eventID int, ch string) bool {
	gs.mu.RLock()
	defer gs.mu.RUnlock()
	return gs.selfSwitches[selfSwitchKey{MapID: mapID, EventID: eventID, Ch: ch}]
}

// SetSelfSwitch sets the value of a self-switch and queues it for persistence.
func (gs *GameState) SetSelfSwitch(mapID, eventID int, ch string, val bool) {
	key := selfSwitchKey{MapID: mapID, EventID: eventID, Ch: ch}
	gs.mu.Lock()
	gs.selfSwitches[key] = val
	gs.mu.Unlock()
	gs.changed()

	gs.queueChange(fmt.Sprintf("ss:%d:%d:%s", mapID, eventID, ch), pendingChange{kind: changeSelfSwitch, self: key, on: val})
}

// StateSnapshot is a point-in-time copy of the state, keyed for JSON.
type StateSnapshot struct {
	Switches     map[int]bool    `json:"switches"`
	Variables    map[int]int     `json:"variables"`
	SelfSwitches map[string]bool `json:"self_switches"`
}

// Snapshot copies the non-default values. Self-switch keys are
// "map:event:ch".
func (gs *GameState) Snapshot() StateSnapshot {
	gs.mu.RLock()
	defer gs.mu.RUnlock()
	s := StateSnapshot{
		Switches:     make(map[int]bool),
		Variables:    make(map[int]int),
		SelfSwitches: make(map[string]bool),
	}
	for id, v := range gs.switches {
		if v {
			s.Switches[id] = v
		}
	}
	for id, v := range gs.variables {
		if v != 0 {
			s.Variables[id] = v
		}
	}
	for k, v := range gs.selfSwitches {
		if v {
			s.SelfSwitches[fmt.Sprintf("%d:%d:%s", k.MapID, k.EventID, k.Ch)] = true
		}
	}
	return s
}
