package world

import (
	"sort"

	"github.com/kasuganosora/rmmvinterp/game/interp"
)

const (
	deathStateID = 1
	maxTP        = 100
	paramCount   = 8
)

// ForcedAction is a skill queued by Force Action (339).
type ForcedAction struct {
	SkillID     int `json:"skill_id"`
	TargetIndex int `json:"target_index"`
}

// battler holds the HP/MP/TP and state bookkeeping shared by actors and
// enemies. mhp/mmp come from the owner through params.
type battler struct {
	hp, mp, tp int
	states     map[int]bool
	hidden     bool
	collapsed  bool
	forced     *ForcedAction
	params     func(paramID int) int
}

func newBattler(params func(int) int) battler {
	return battler{states: make(map[int]bool), params: params}
}

func (b *battler) Param(paramID int) int {
	if b.params == nil || paramID < 0 || paramID >= paramCount {
		return 0
	}
	v := b.params(paramID)
	if paramID == 0 && v < 1 {
		return 1
	}
	if v < 0 {
		return 0
	}
	return v
}

func (b *battler) mhp() int { return b.Param(0) }
func (b *battler) mmp() int { return b.Param(1) }

func (b *battler) IsDeathStateAffected() bool { return b.states[deathStateID] }
func (b *battler) IsAlive() bool              { return !b.hidden && !b.IsDeathStateAffected() }
func (b *battler) IsDead() bool               { return !b.hidden && b.IsDeathStateAffected() }
func (b *battler) HP() int                    { return b.hp }
func (b *battler) MP() int                    { return b.mp }

// TP returns the tactical points.
func (b *battler) TP() int { return b.tp }

func (b *battler) HPRate() float64 {
	return float64(b.hp) / float64(b.mhp())
}

func (b *battler) setHP(hp int) {
	b.hp = hp
	b.refresh()
}

func (b *battler) GainHP(v int) { b.setHP(b.hp + v) }

func (b *battler) GainMP(v int) {
	b.mp += v
	b.refresh()
}

func (b *battler) GainTP(v int) {
	b.tp = clamp(b.tp+v, 0, maxTP)
}

// refresh clamps HP/MP and keeps the death state in sync with HP.
func (b *battler) refresh() {
	b.hp = clamp(b.hp, 0, b.mhp())
	b.mp = clamp(b.mp, 0, b.mmp())
	if b.hp == 0 {
		b.addDeath()
	} else {
		delete(b.states, deathStateID)
	}
}

func (b *battler) addDeath() {
	if b.states[deathStateID] {
		return
	}
	b.states = map[int]bool{deathStateID: true}
	b.hp = 0
	b.forced = nil
}

func (b *battler) AddState(stateID int) {
	if stateID <= 0 || b.hidden {
		return
	}
	if stateID == deathStateID {
		b.addDeath()
		return
	}
	if b.IsDeathStateAffected() {
		return
	}
	b.states[stateID] = true
}

func (b *battler) RemoveState(stateID int) {
	if !b.states[stateID] {
		return
	}
	delete(b.states, stateID)
	if stateID == deathStateID && b.hp == 0 {
		b.hp = 1
	}
}

func (b *battler) IsStateAffected(stateID int) bool { return b.states[stateID] }

// StateIDs returns the active states in ascending order.
func (b *battler) StateIDs() []int {
	ids := make([]int, 0, len(b.states))
	for id := range b.states {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

func (b *battler) RecoverAll() {
	b.states = make(map[int]bool)
	b.hp = b.mhp()
	b.mp = b.mmp()
	b.collapsed = false
}

func (b *battler) PerformCollapse() { b.collapsed = true }

// Collapsed reports whether the collapse effect was played.
func (b *battler) Collapsed() bool { return b.collapsed }

func (b *battler) ClearResult() {}

func (b *battler) ForceAction(skillID, targetIndex int) {
	b.forced = &ForcedAction{SkillID: skillID, TargetIndex: targetIndex}
}

// Forced returns the queued forced action, or nil.
func (b *battler) Forced() *ForcedAction { return b.forced }

func (b *battler) clearForced() { b.forced = nil }

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

var (
	_ interp.Battler = (*Actor)(nil)
	_ interp.Battler = (*Enemy)(nil)
)
