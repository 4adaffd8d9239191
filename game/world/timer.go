package world

import "github.com/kasuganosora/rmmvinterp/game/interp"

// Timer is the countdown timer ($gameTimer).
type Timer struct {
	w       *World
	frames  int
	working bool
}

var _ interp.Timer = (*Timer)(nil)

func (t *Timer) Start(frames int) {
	t.frames = frames
	t.working = true
}

func (t *Timer) Stop() { t.working = false }

func (t *Timer) IsWorking() bool { return t.working }

func (t *Timer) Seconds() int { return t.frames / 60 }

// tick counts down. Expiry during battle aborts the battle.
func (t *Timer) tick() {
	if !t.working || t.frames <= 0 {
		return
	}
	t.frames--
	if t.frames == 0 {
		t.working = false
		if t.w.Battle.active {
			t.w.Battle.Abort()
		}
	}
}
