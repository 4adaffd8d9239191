package world

import (
	"context"

	"github.com/kasuganosora/rmmvinterp/game/interp"
	"github.com/kasuganosora/rmmvinterp/resource"
	"go.uber.org/zap"
)

// BattleRunner runs troop battle events. *interp.Host implements it.
type BattleRunner interface {
	SetupBattle(troopID int) error
	UpdateBattle(ctx context.Context) (bool, error)
	IncreaseTurn()
	EndBattle()
}

// BattleResolver decides the outcome once a turn has ended: one of
// interp.BattleWin, interp.BattleEscape, interp.BattleLose, or -1 to play
// another turn.
type BattleResolver func(w *World) int

// DefaultBattleResolver loses when the party is wiped out and wins
// otherwise.
func DefaultBattleResolver(w *World) int {
	for _, m := range w.Party.Members() {
		if m.IsAlive() {
			return interp.BattleWin
		}
	}
	if w.Party.Size() == 0 {
		return interp.BattleWin
	}
	return interp.BattleLose
}

type battlePhase int

const (
	phaseInput battlePhase = iota
	phaseTurnEnd
)

// Battle is the headless BattleManager. Each turn takes two frames: one
// for actions and one for the turn end, with troop events running in
// between.
type Battle struct {
	w         *World
	active    bool
	troopID   int
	canEscape bool
	canLose   bool
	callback  func(result int)
	forced    []interp.Battler
	phase     battlePhase
	aborting  bool
	savedBGM  resource.AudioFile
	savedBGS  resource.AudioFile
	runner    BattleRunner
	resolve   BattleResolver
	lastErr   error
}

var _ interp.Battle = (*Battle)(nil)

func (b *Battle) Setup(troopID int, canEscape, canLose bool) {
	b.troopID = troopID
	b.canEscape = canEscape
	b.canLose = canLose
	b.callback = nil
	b.forced = nil
	b.phase = phaseInput
	b.aborting = false
	b.w.Troop.Setup(troopID)
}

func (b *Battle) SetEventCallback(fn func(result int)) { b.callback = fn }

func (b *Battle) ForceAction(battler interp.Battler) {
	b.forced = append(b.forced, battler)
}

func (b *Battle) IsActionForced() bool { return len(b.forced) > 0 }

func (b *Battle) IsTurnEnd() bool { return b.phase == phaseTurnEnd }

// Abort ends the battle as an escape on the next frame.
func (b *Battle) Abort() {
	if b.active {
		b.aborting = true
	}
}

// Active reports whether a battle is in progress.
func (b *Battle) Active() bool { return b.active }

// TroopID returns the troop of the current or last battle.
func (b *Battle) TroopID() int { return b.troopID }

// SetRunner attaches the runner of troop events.
func (b *Battle) SetRunner(r BattleRunner) { b.runner = r }

// SetResolver replaces DefaultBattleResolver.
func (b *Battle) SetResolver(r BattleResolver) { b.resolve = r }

// start enters the battle scene.
func (b *Battle) start() {
	b.active = true
	b.savedBGM, b.savedBGS = b.w.Audio.CurrentBGM(), b.w.Audio.CurrentBGS()
	b.w.Audio.PlayBGM(b.w.System.BattleBGM())
	b.w.System.onBattleStart()
	if b.runner != nil {
		if err := b.runner.SetupBattle(b.troopID); err != nil {
			b.w.logger.Warn("battle events unavailable", zap.Int("troop_id", b.troopID), zap.Error(err))
		}
	}
	b.w.logger.Debug("battle started", zap.Int("troop_id", b.troopID))
}

func (b *Battle) tick(ctx context.Context) {
	if !b.active {
		return
	}
	if b.runner != nil {
		running, err := b.runner.UpdateBattle(ctx)
		if err != nil {
			b.lastErr = err
		}
		if running {
			return
		}
	}
	if b.aborting {
		b.end(interp.BattleEscape)
		return
	}
	switch b.phase {
	case phaseInput:
		for _, f := range b.forced {
			if bt, ok := f.(interface{ clearForced() }); ok {
				bt.clearForced()
			}
		}
		b.forced = nil
		b.phase = phaseTurnEnd
	case phaseTurnEnd:
		resolve := b.resolve
		if resolve == nil {
			resolve = DefaultBattleResolver
		}
		if result := resolve(b.w); result >= 0 {
			b.end(result)
			return
		}
		b.phase = phaseInput
		if b.runner != nil {
			b.runner.IncreaseTurn()
		} else {
			b.w.Troop.IncreaseTurn()
		}
	}
}

func (b *Battle) end(result int) {
	switch result {
	case interp.BattleWin:
		b.w.System.onBattleWin()
		b.w.Audio.PlayME(b.w.System.VictoryME())
	case interp.BattleEscape:
		b.w.System.onBattleEscape()
	case interp.BattleLose:
		b.w.Audio.PlayME(b.w.System.DefeatME())
	}
	if b.callback != nil {
		b.callback(result)
		b.callback = nil
	}
	if b.runner != nil {
		b.runner.EndBattle()
	}
	b.active = false
	b.aborting = false
	b.forced = nil
	b.phase = phaseInput
	b.w.Scenes.pop()
	b.w.logger.Debug("battle ended", zap.Int("troop_id", b.troopID), zap.Int("result", result))
	if result == interp.BattleLose && !b.canLose {
		b.w.Scenes.Goto(interp.SceneGameover)
		return
	}
	b.w.Audio.PlayBGM(b.savedBGM)
	b.w.Audio.PlayBGS(b.savedBGS)
}

// LastError returns the last troop event error.
func (b *Battle) LastError() error { return b.lastErr }
