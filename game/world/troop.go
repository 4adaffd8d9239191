package world

import (
	"github.com/kasuganosora/rmmvinterp/game/interp"
	"github.com/kasuganosora/rmmvinterp/resource"
)

// Enemy is one member of the current troop.
type Enemy struct {
	battler
	w         *World
	enemyID   int
	letter    string
	plural    bool
	animation []int
}

var _ interp.Enemy = (*Enemy)(nil)

func newEnemy(w *World, enemyID int, hidden bool) *Enemy {
	e := &Enemy{w: w, enemyID: enemyID}
	e.battler = newBattler(e.param)
	e.hidden = hidden
	e.RecoverAll()
	return e
}

func (e *Enemy) data() *resource.Enemy {
	if e.w.Data == nil {
		return nil
	}
	return e.w.Data.EnemyByID(e.enemyID)
}

func (e *Enemy) param(paramID int) int {
	if d := e.data(); d != nil && paramID < len(d.Params) {
		return d.Params[paramID]
	}
	return 0
}

// EnemyID returns the database enemy.
func (e *Enemy) EnemyID() int { return e.enemyID }

// Name returns the display name with its letter suffix.
func (e *Enemy) Name() string {
	d := e.data()
	if d == nil {
		return ""
	}
	return d.Name + e.letter
}

// Hidden reports whether the enemy has not appeared yet.
func (e *Enemy) Hidden() bool { return e.hidden }

func (e *Enemy) Appear() { e.hidden = false }

// Transform changes the enemy type. HP and MP carry over, clamped.
func (e *Enemy) Transform(enemyID int) {
	before := e.data()
	e.enemyID = enemyID
	if after := e.data(); before == nil || after == nil || before.Name != after.Name {
		e.letter = ""
		e.plural = false
	}
	e.refresh()
}

func (e *Enemy) StartAnimation(animationID int, mirror bool, delay int) {
	e.animation = append(e.animation, animationID)
}

// Animations returns the animations requested on this enemy.
func (e *Enemy) Animations() []int { return e.animation }

// Troop is the enemy troop of the current battle ($gameTroop).
type Troop struct {
	w       *World
	troopID int
	enemies []*Enemy
	turn    int
}

var _ interp.Troop = (*Troop)(nil)

func newTroop(w *World) *Troop { return &Troop{w: w} }

// Setup fills the troop from the database. Unknown troops are empty.
func (t *Troop) Setup(troopID int) {
	t.troopID = troopID
	t.enemies = nil
	t.turn = 0
	if t.w.Data == nil {
		return
	}
	data := t.w.Data.TroopByID(troopID)
	if data == nil {
		return
	}
	for _, m := range data.Members {
		if t.w.Data.EnemyByID(m.EnemyID) == nil {
			continue
		}
		t.enemies = append(t.enemies, newEnemy(t.w, m.EnemyID, m.Hidden))
	}
	t.MakeUniqueNames()
}

// TroopID returns the current troop.
func (t *Troop) TroopID() int { return t.troopID }

func (t *Troop) Members() []interp.Enemy {
	out := make([]interp.Enemy, len(t.enemies))
	for i, e := range t.enemies {
		out[i] = e
	}
	return out
}

// Enemies returns the concrete members.
func (t *Troop) Enemies() []*Enemy { return t.enemies }

// MakeUniqueNames gives A, B, C... suffixes to visible enemies that share
// a name.
func (t *Troop) MakeUniqueNames() {
	const letters = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	count := make(map[string]int)
	for _, e := range t.enemies {
		if d := e.data(); d != nil && !e.hidden {
			count[d.Name]++
		}
	}
	next := make(map[string]int)
	for _, e := range t.enemies {
		d := e.data()
		if d == nil || e.hidden || e.letter != "" {
			continue
		}
		if count[d.Name] >= 2 {
			e.plural = true
			i := next[d.Name]
			next[d.Name]++
			if i < len(letters) {
				e.letter = " " + letters[i:i+1]
			}
		}
	}
}

func (t *Troop) TurnCount() int { return t.turn }

func (t *Troop) IncreaseTurn() { t.turn++ }

// IsAllDead reports whether no enemy is alive.
func (t *Troop) IsAllDead() bool {
	for _, e := range t.enemies {
		if e.IsAlive() {
			return false
		}
	}
	return true
}

// Clear drops the troop after battle.
func (t *Troop) Clear() {
	t.troopID = 0
	t.enemies = nil
	t.turn = 0
}
