package interp

import (
	"context"
	"errors"
	"testing"

	"github.com/kasuganosora/rmmvinterp/resource"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// appendDigit 把 var1 变为 var1*10+d，用于记录执行顺序。
func appendDigit(d int) []*resource.EventCommand {
	return listOf(
		cmd(CmdControlVariables, 0, 1, 1, 3, 0, 10),
		cmd(CmdControlVariables, 0, 1, 1, 1, 0, d),
	)
}

func incVar(id int) *resource.EventCommand {
	return cmd(CmdControlVariables, 0, id, id, 1, 0, 1)
}

func TestHost_StartOrder(t *testing.T) {
	w, f := newFakeWorld()
	f.addCommonEvent(1, resource.TriggerNone, 0, appendDigit(1)...)
	f.addCommonEvent(2, resource.TriggerAutorun, 10, append(appendDigit(4), cmd(CmdControlSwitches, 0, 10, 10, 1))...)
	f.state.sw[10] = true
	f.temp.reserved = 1
	f.gameMap.starting = []StartingEvent{{
		EventID: 3,
		List:    appendDigit(3),
		Info:    MapEventInfo{MapID: 1, EventID: 3, Page: 1},
	}}

	h := NewHost(w, nil)
	h.QueueTestEvent(appendDigit(2))
	require.NoError(t, h.Update(context.Background()))

	assert.Equal(t, 1234, f.state.vars[1])
	assert.Equal(t, []int{3}, f.gameMap.unlocked)
	assert.Equal(t, 0, f.temp.reserved)
	assert.Equal(t, 5, f.gameMap.refreshes)
	assert.False(t, h.Main().IsRunning())
}

func TestHost_WaitingMainBlocksStarts(t *testing.T) {
	w, f := newFakeWorld()
	f.gameMap.starting = []StartingEvent{
		{EventID: 1, List: listOf(cmd(CmdWait, 0, 2)), Info: MapEventInfo{MapID: 1, EventID: 1, Page: 1}},
		{EventID: 2, List: listOf(incVar(1)), Info: MapEventInfo{MapID: 1, EventID: 2, Page: 2}},
	}
	h := NewHost(w, nil)
	require.NoError(t, h.Update(context.Background()))
	assert.Len(t, f.gameMap.starting, 1)
	assert.Equal(t, 1, h.Main().EventID())
	assert.Empty(t, f.gameMap.unlocked)

	for i := 0; i < 3; i++ {
		require.NoError(t, h.Update(context.Background()))
	}
	assert.Equal(t, []int{1, 2}, f.gameMap.unlocked)
	assert.Equal(t, 1, f.state.vars[1])
}

func TestHost_ParallelEvents(t *testing.T) {
	w, f := newFakeWorld()
	f.gameMap.parallel = []StartingEvent{{EventID: 5, List: listOf(incVar(2)), Info: MapEventInfo{MapID: 1, EventID: 5, Page: 1}}}
	f.addCommonEvent(3, resource.TriggerParallel, 20, incVar(3))
	f.state.sw[20] = true

	h := NewHost(w, nil)
	for i := 0; i < 3; i++ {
		require.NoError(t, h.Update(context.Background()))
	}
	assert.Equal(t, 3, f.state.vars[2])
	assert.Equal(t, 3, f.state.vars[3])
	assert.Equal(t, 2, h.Status().Parallel)

	f.state.sw[20] = false
	require.NoError(t, h.Update(context.Background()))
	assert.Equal(t, 3, f.state.vars[3])
	assert.Equal(t, 1, h.Status().Parallel)

	f.gameMap.parallel = nil
	require.NoError(t, h.Update(context.Background()))
	assert.Equal(t, 4, f.state.vars[2])
	assert.Equal(t, 0, h.Status().Parallel)
}

func TestHost_FailureTerminatesOnlyFailingInterpreter(t *testing.T) {
	w, f := newFakeWorld()
	f.gameMap.parallel = []StartingEvent{{EventID: 5, List: listOf(incVar(2)), Info: MapEventInfo{MapID: 1, EventID: 5, Page: 1}}}
	h := NewHost(w, nil)
	h.QueueTestEvent(listOf(cmd(CmdScript, 0, "boom()"), incVar(1)))

	err := h.Update(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, errNoScriptEngine)
	var ie *Error
	require.ErrorAs(t, err, &ie)
	assert.Equal(t, TestEventInfo{}, ie.Info)
	assert.Equal(t, 0, f.state.vars[1])
	assert.Equal(t, 1, f.state.vars[2])
	assert.False(t, h.Main().IsRunning())
	assert.Equal(t, ie.Error(), h.Status().LastError)

	require.NoError(t, h.Update(context.Background()))
	assert.Equal(t, 0, f.state.vars[1])
	assert.Equal(t, 2, f.state.vars[2])
	assert.ErrorIs(t, h.LastError(), errNoScriptEngine)
}

func TestHost_AutorunStartsAreCappedPerFrame(t *testing.T) {
	w, f := newFakeWorld()
	f.addCommonEvent(1, resource.TriggerAutorun, 1, incVar(1))
	f.state.sw[1] = true
	m := NewMetrics(prometheus.NewRegistry())

	h := NewHost(w, &Options{Metrics: m})
	require.NoError(t, h.Update(context.Background()))
	assert.Equal(t, maxStartsPerFrame-1, f.state.vars[1])
	assert.Equal(t, 1.0, testutil.ToFloat64(m.fuseTrips))
}

func TestHost_ReserveCommonEvent(t *testing.T) {
	w, f := newFakeWorld()
	f.addCommonEvent(4, resource.TriggerNone, 0, incVar(1))
	h := NewHost(w, nil)

	assert.ErrorIs(t, h.ReserveCommonEvent(9), ErrNoCommonEvent)
	assert.Equal(t, 0, f.temp.reserved)

	require.NoError(t, h.ReserveCommonEvent(4))
	assert.Equal(t, 4, f.temp.reserved)
	require.NoError(t, h.Update(context.Background()))
	assert.Equal(t, 1, f.state.vars[1])
}

func TestHost_Status(t *testing.T) {
	w, f := newFakeWorld()
	f.addCommonEvent(1, resource.TriggerNone, 0, cmd(CmdWait, 0, 5))
	f.gameMap.starting = []StartingEvent{{
		EventID: 3,
		List:    listOf(cmd(CmdCallCommonEvent, 0, 1)),
		Info:    MapEventInfo{MapID: 1, EventID: 3, Page: 2},
	}}
	h := NewHost(w, nil)
	require.NoError(t, h.Update(context.Background()))

	s := h.Status()
	assert.Equal(t, uint64(1), s.Frames)
	assert.True(t, s.Running)
	assert.Equal(t, 3, s.EventID)
	assert.Equal(t, "map_event", s.EventType)
	assert.Equal(t, MapEventInfo{MapID: 1, EventID: 3, Page: 2}, s.EventInfo)
	assert.Equal(t, 1, s.Depth)
	assert.Empty(t, s.LastError)
}

func TestHost_MapSidePausedInBattle(t *testing.T) {
	w, f := newFakeWorld()
	f.addCommonEvent(1, resource.TriggerParallel, 20, incVar(2))
	f.state.sw[20] = true
	h := NewHost(w, nil)
	h.QueueTestEvent(listOf(incVar(1)))

	f.party.inBattle = true
	require.NoError(t, h.Update(context.Background()))
	assert.Zero(t, f.state.vars[1])
	assert.Zero(t, f.state.vars[2])

	f.party.inBattle = false
	require.NoError(t, h.Update(context.Background()))
	assert.Equal(t, 1, f.state.vars[1])
	assert.Equal(t, 1, f.state.vars[2])
}

// ---- 战斗事件 ----

func battleHost(t *testing.T) (*Host, *fakes) {
	t.Helper()
	w, f := newFakeWorld()
	f.party.inBattle = true
	f.data.Troops = []*resource.Troop{nil, {
		ID: 1,
		Pages: []*resource.TroopPage{
			{List: listOf(incVar(4))},
			{Conditions: resource.TroopConditions{TurnValid: true}, Span: 0, List: listOf(incVar(5))},
			{Conditions: resource.TroopConditions{SwitchValid: true, SwitchID: 30}, Span: 1, List: listOf(incVar(6))},
			{Conditions: resource.TroopConditions{TurnEnding: true}, Span: 2, List: listOf(incVar(7))},
		},
	}}
	h := NewHost(w, nil)
	require.NoError(t, h.SetupBattle(1))
	return h, f
}

func updateBattle(t *testing.T, h *Host) bool {
	t.Helper()
	running, err := h.UpdateBattle(context.Background())
	require.NoError(t, err)
	return running
}

func TestHost_BattlePageSpans(t *testing.T) {
	h, f := battleHost(t)

	assert.True(t, updateBattle(t, h))
	assert.False(t, updateBattle(t, h))
	assert.Equal(t, 1, f.state.vars[5])
	assert.False(t, updateBattle(t, h))

	f.state.sw[30] = true
	assert.True(t, updateBattle(t, h))
	assert.False(t, updateBattle(t, h))
	assert.False(t, updateBattle(t, h))
	assert.Equal(t, 1, f.state.vars[6])

	h.IncreaseTurn()
	assert.Equal(t, 1, f.troop.turn)
	assert.True(t, updateBattle(t, h))
	assert.False(t, updateBattle(t, h))
	assert.Equal(t, 2, f.state.vars[6])

	f.battle.turnEnd = true
	assert.True(t, updateBattle(t, h))
	assert.True(t, updateBattle(t, h))
	assert.True(t, updateBattle(t, h))
	assert.Equal(t, 2, f.state.vars[7])

	f.battle.turnEnd = false
	assert.False(t, updateBattle(t, h))
	assert.Equal(t, 3, f.state.vars[7])
	assert.Equal(t, 0, f.state.vars[4])
	assert.Equal(t, 1, f.state.vars[5])
	assert.Equal(t, 1, h.Status().BattleTroop)

	h.EndBattle()
	assert.False(t, updateBattle(t, h))
	assert.Equal(t, 0, h.Status().BattleTroop)
}

func TestHost_SetupBattle_MissingTroop(t *testing.T) {
	w, _ := newFakeWorld()
	h := NewHost(w, nil)
	assert.ErrorIs(t, h.SetupBattle(3), errNoTroop)
	assert.False(t, updateBattle(t, h))
}

func TestHost_BattleEventInfo(t *testing.T) {
	h, _ := battleHost(t)
	updateBattle(t, h)
	assert.Equal(t, BattleEventInfo{TroopID: 1, Page: 2}, h.troop.EventInfo())
}

func TestMeetsConditions(t *testing.T) {
	cases := []struct {
		name  string
		cond  resource.TroopConditions
		setup func(f *fakes)
		want  bool
	}{
		{"no condition", resource.TroopConditions{}, nil, false},
		{"turn ending not reached", resource.TroopConditions{TurnEnding: true}, nil, false},
		{"turn ending", resource.TroopConditions{TurnEnding: true}, func(f *fakes) { f.battle.turnEnd = true }, true},
		{"exact turn", resource.TroopConditions{TurnValid: true, TurnA: 2}, func(f *fakes) { f.troop.turn = 2 }, true},
		{"exact turn missed", resource.TroopConditions{TurnValid: true, TurnA: 2}, func(f *fakes) { f.troop.turn = 3 }, false},
		{"periodic turn", resource.TroopConditions{TurnValid: true, TurnA: 1, TurnB: 2}, func(f *fakes) { f.troop.turn = 5 }, true},
		{"periodic turn off cycle", resource.TroopConditions{TurnValid: true, TurnA: 1, TurnB: 2}, func(f *fakes) { f.troop.turn = 4 }, false},
		{"periodic turn zero", resource.TroopConditions{TurnValid: true, TurnA: 0, TurnB: 2}, func(f *fakes) { f.troop.turn = 0 }, false},
		{"enemy hp low", resource.TroopConditions{EnemyValid: true, EnemyHp: 50}, func(f *fakes) {
			e := newFakeEnemy(1, 40)
			e.hp = 20
			f.troop.enemies = []*fakeEnemy{e}
		}, true},
		{"enemy hp high", resource.TroopConditions{EnemyValid: true, EnemyHp: 50}, func(f *fakes) {
			e := newFakeEnemy(1, 40)
			e.hp = 30
			f.troop.enemies = []*fakeEnemy{e}
		}, false},
		{"enemy missing", resource.TroopConditions{EnemyValid: true, EnemyIndex: 5, EnemyHp: 100}, nil, false},
		{"actor hp low", resource.TroopConditions{ActorValid: true, ActorID: 1, ActorHp: 30}, func(f *fakes) { f.actors[1].hp = 30 }, true},
		{"actor hp high", resource.TroopConditions{ActorValid: true, ActorID: 1, ActorHp: 30}, nil, false},
		{"actor missing", resource.TroopConditions{ActorValid: true, ActorID: 9, ActorHp: 100}, nil, false},
		{"switch on", resource.TroopConditions{SwitchValid: true, SwitchID: 3}, func(f *fakes) { f.state.sw[3] = true }, true},
		{"switch off", resource.TroopConditions{SwitchValid: true, SwitchID: 3}, nil, false},
		{"all must hold", resource.TroopConditions{SwitchValid: true, SwitchID: 3, TurnEnding: true}, func(f *fakes) { f.state.sw[3] = true }, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w, f := newFakeWorld()
			if tc.setup != nil {
				tc.setup(f)
			}
			h := NewHost(w, nil)
			assert.Equal(t, tc.want, h.meetsConditions(&resource.TroopPage{Conditions: tc.cond}))
		})
	}
}

func TestReports(t *testing.T) {
	assert.Nil(t, Reports(nil))

	w, _ := newFakeWorld()
	h := NewHost(w, nil)
	h.QueueTestEvent(listOf(incVar(1), cmd(CmdScript, 0, "boom()")))
	err := h.Update(context.Background())
	require.Error(t, err)

	reports := Reports(err)
	require.Len(t, reports, 1)
	r := reports[0]
	assert.Equal(t, "test_event", r.EventType)
	assert.Equal(t, TestEventInfo{}, r.EventInfo)
	assert.Equal(t, SourceScript, r.EventCommand)
	assert.Equal(t, "2-2", r.Line)
	assert.Equal(t, "boom()\n", r.Content)
	assert.Equal(t, errNoScriptEngine.Error(), r.Message)

	plain := Reports(errors.Join(errNoTroop, nil))
	require.Len(t, plain, 1)
	assert.Equal(t, errNoTroop.Error(), plain[0].Message)
	assert.Empty(t, plain[0].EventType)
}
