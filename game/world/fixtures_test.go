package world

import (
	"context"
	"testing"

	"github.com/kasuganosora/rmmvinterp/resource"
	"go.uber.org/zap"
)

// ---- Helpers ----

var testCtx = context.Background()

func ec(code, indent int, params ...interface{}) *resource.EventCommand {
	if params == nil {
		params = []interface{}{}
	}
	return &resource.EventCommand{Code: code, Indent: indent, Parameters: params}
}

func flatRow(v int) []int {
	row := make([]int, 100)
	for i := range row {
		row[i] = v
	}
	return row
}

// newTestData builds a small database: two actors in the party, a
// slime troop, and a 10x10 map with a door event and a switch-gated NPC.
func newTestData() *resource.ResourceLoader {
	rl := resource.NewLoader("", "")
	rl.System = &resource.SystemData{
		GameTitle:    "Test",
		StartMapID:   1,
		StartX:       2,
		StartY:       3,
		PartyMembers: []int{1, 2},
		BattleBgm:    resource.AudioFile{Name: "Battle1", Volume: 90, Pitch: 100},
		VictoryMe:    resource.AudioFile{Name: "Victory1"},
		DefeatMe:     resource.AudioFile{Name: "Defeat1"},
		Boat:         resource.VehicleData{CharacterName: "Vehicle", StartMapID: 1, StartX: 5, StartY: 5},
	}
	rl.Classes = []*resource.Class{nil, {
		ID:   1,
		Name: "Hero",
		Params: [][]int{
			flatRow(100), flatRow(20), flatRow(10), flatRow(10),
			flatRow(10), flatRow(10), flatRow(10), flatRow(10),
		},
		Learnings: []resource.ClassLearning{{Level: 1, SkillID: 1}, {Level: 5, SkillID: 2}},
	}}
	rl.Actors = []*resource.Actor{nil,
		{ID: 1, Name: "Harold", ClassID: 1, InitialLevel: 1, MaxLevel: 99, CharacterName: "Actor1", CharacterIndex: 0, Equips: []int{1, 0, 0, 0, 0}},
		{ID: 2, Name: "Therese", ClassID: 1, InitialLevel: 3, MaxLevel: 99, CharacterName: "Actor1", CharacterIndex: 7},
		{ID: 3, Name: "Marsha", ClassID: 1, InitialLevel: 1, MaxLevel: 99, CharacterName: "Actor2"},
	}
	rl.Weapons = []*resource.Weapon{nil,
		{ID: 1, Name: "Sword", Params: []int{0, 0, 5, 0, 0, 0, 0, 0}, EtypeID: 1},
		{ID: 2, Name: "Axe", Params: []int{0, 0, 8, 0, 0, 0, 0, 0}, EtypeID: 1},
	}
	rl.Armors = []*resource.Armor{nil, {ID: 1, Name: "Shield", Params: []int{0, 0, 0, 3, 0, 0, 0, 0}, EtypeID: 2}}
	rl.Items = []*resource.Item{nil, {ID: 1, Name: "Potion", Consumable: true}}
	rl.Enemies = []*resource.Enemy{nil,
		{ID: 1, Name: "Slime", Params: []int{50, 0, 5, 5, 5, 5, 5, 5}},
		{ID: 2, Name: "Bat", Params: []int{30, 0, 5, 5, 5, 5, 5, 5}},
	}
	rl.Troops = []*resource.Troop{nil, {
		ID:   1,
		Name: "Slime*2",
		Members: []resource.TroopMember{
			{EnemyID: 1}, {EnemyID: 1}, {EnemyID: 2, Hidden: true},
		},
	}}
	rl.Tilesets = []*resource.Tileset{nil, {ID: 1, Name: "Field", Flags: make([]int, 8192)}}
	rl.Maps[1] = &resource.MapData{
		ID:            1,
		Width:         10,
		Height:        10,
		TilesetID:     1,
		EncounterStep: 30,
		EncounterList: []resource.Encounter{{TroopID: 1, Weight: 10}},
		Events: []*resource.MapEvent{nil,
			{ID: 1, Name: "Door", X: 4, Y: 3, Pages: []*resource.EventPage{{
				Trigger: triggerPlayer,
				List: []*resource.EventCommand{
					ec(201, 0, 0, 2, 1, 1, 2, 0),
					ec(0, 0),
				},
			}}},
			{ID: 2, Name: "NPC", X: 6, Y: 6, Pages: []*resource.EventPage{
				{Trigger: triggerAction, Image: resource.EventImage{CharacterName: "People1"}, List: []*resource.EventCommand{ec(0, 0)}},
				{
					Conditions: resource.EventPageConditions{Switch1Valid: true, Switch1ID: 5},
					Trigger:    triggerAction,
					Image:      resource.EventImage{CharacterName: "People2", Direction: 4},
					List:       []*resource.EventCommand{ec(101, 0, "", 0, 0, 2), ec(401, 0, "hi"), ec(0, 0)},
				},
			}},
		},
	}
	rl.Maps[2] = &resource.MapData{ID: 2, Width: 5, Height: 5, TilesetID: 1}
	return rl
}

func newTestWorld(t *testing.T) *World {
	t.Helper()
	w := New(newTestData(), nil, nil, nil, zap.NewNop())
	w.SetRand(func(n int) int { return 0 })
	return w
}

// tickN advances the world n frames.
func tickN(w *World, n int) {
	for i := 0; i < n; i++ {
		w.Tick(testCtx)
	}
}
