// Package world provides headless implementations of every collaborator
// the event interpreter needs. A World advances its timed effects one
// frame per Tick, so waits finish without a renderer.
package world

import (
	"context"
	"math/rand/v2"
	"sync"

	"github.com/kasuganosora/rmmvinterp/game/interp"
	"github.com/kasuganosora/rmmvinterp/resource"
	"go.uber.org/zap"
)

// World owns the game objects of one running game.
type World struct {
	mu     sync.Mutex
	logger *zap.Logger
	rand   func(n int) int
	frames uint64
	iw     *interp.World

	Data    *resource.ResourceLoader
	State   *GameState
	System  *SystemState
	Assets  interp.Assets
	Message *Message
	Actors  *Actors
	Party   *Party
	Troop   *Troop
	Map     *Map
	Player  *Player
	Screen  *Screen
	Audio   *Audio
	Timer   *Timer
	Scenes  *Scenes
	Battle  *Battle
	Video   *Video
	Input   *Input
	Temp    *Temp
}

// New assembles a world. gs and sys may be nil for a throwaway world
// without persistence. The player starts at the System.json start point.
func New(res *resource.ResourceLoader, gs *GameState, sys *SystemState, assets interp.Assets, logger *zap.Logger) *World {
	if logger == nil {
		logger = zap.NewNop()
	}
	if gs == nil {
		gs = NewGameState(nil, 0, logger)
	}
	if sys == nil {
		sys = NewSystemState(nil, logger)
	}
	w := &World{
		logger: logger,
		rand:   rand.IntN,
		Data:   res,
		State:  gs,
		System: sys,
		Assets: assets,
		Audio:  newAudio(),
		Screen: newScreen(),
		Video:  &Video{},
		Input:  newInput(),
		Temp:   &Temp{},
	}
	var sysData *resource.SystemData
	if res != nil {
		sysData = res.System
	}
	sys.bind(sysData, w.Audio)

	w.Message = newMessage(w)
	w.Timer = &Timer{w: w}
	w.Scenes = &Scenes{w: w}
	w.Battle = &Battle{w: w}
	w.Actors = newActors(w)
	w.Troop = newTroop(w)
	w.Map = newMap(w)
	w.Player = newPlayer(w)
	w.Party = newParty(w)
	w.Player.Refresh()

	if sysData != nil && sysData.StartMapID > 0 {
		w.Player.ReserveTransfer(sysData.StartMapID, sysData.StartX, sysData.StartY, dirDown, 0)
		w.Player.performTransfer()
	}
	gs.OnChange(w.Map.RequestRefresh)

	w.iw = &interp.World{
		State:   w.State,
		Data:    w.Data,
		Message: w.Message,
		Actors:  w.Actors,
		Party:   w.Party,
		Troop:   w.Troop,
		Map:     w.Map,
		Player:  w.Player,
		Screen:  w.Screen,
		Audio:   w.Audio,
		System:  w.System,
		Timer:   w.Timer,
		Scenes:  w.Scenes,
		Battle:  w.Battle,
		Video:   w.Video,
		Input:   w.Input,
		Assets:  w.Assets,
		Temp:    w.Temp,
	}
	if assets == nil {
		w.iw.Assets = noAssets{}
	}
	return w
}

// Interp returns the collaborator set handed to interpreters.
func (w *World) Interp() *interp.World { return w.iw }

// SetRand replaces the random source, for deterministic runs.
func (w *World) SetRand(fn func(n int) int) { w.rand = fn }

func (w *World) randIntN(n int) int {
	if n <= 0 {
		return 0
	}
	return w.rand(n)
}

// Do runs fn while holding the world lock. Frame updates and snapshots
// taken from other goroutines go through it.
func (w *World) Do(fn func()) {
	w.mu.Lock()
	defer w.mu.Unlock()
	fn()
}

// Frames returns the number of ticks so far.
func (w *World) Frames() uint64 { return w.frames }

// Tick advances every collaborator by one frame. Call it after the
// interpreters have run for the frame.
func (w *World) Tick(ctx context.Context) {
	w.frames++
	w.System.tick()
	w.Timer.tick()
	w.Battle.tick(ctx)
	w.Scenes.tick()
	w.Screen.tick()
	w.Audio.tick()
	w.Video.tick()
	if w.Player.IsTransferring() {
		w.Player.performTransfer()
	}
	if !w.Battle.active {
		w.Map.tick()
		w.Player.tick()
	}
	w.Message.tick()
}

// Step runs one frame under the world lock: the host's interpreters
// first, then Tick. It returns the interpreter errors of the frame.
func (w *World) Step(ctx context.Context, h *interp.Host) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	err := h.Update(ctx)
	w.Tick(ctx)
	return err
}

func (w *World) onCharacterMoved(c *Character) {
	if w.Player != nil && c == w.Player.Character {
		w.Player.onMoved()
	}
}

// Snapshot is the world state reported by the debug API.
type Snapshot struct {
	Frames    uint64         `json:"frames"`
	Scene     interp.Scene   `json:"scene"`
	Ended     bool           `json:"ended"`
	State     StateSnapshot  `json:"state"`
	System    SystemSettings `json:"system"`
	Map       MapSnapshot    `json:"map"`
	Player    PlayerState    `json:"player"`
	Party     []int          `json:"party"`
	Inventory Inventory      `json:"inventory"`
	Screen    ScreenSnapshot `json:"screen"`
	Audio     AudioSnapshot  `json:"audio"`
	Messages  []MessageEntry `json:"messages"`
	Scenes    []SceneRequest `json:"scenes"`
	Movies    []string       `json:"movies,omitempty"`
	Timer     int            `json:"timer,omitempty"`
	Battle    int            `json:"battle_troop,omitempty"`
}

// PlayerState is the player position in a Snapshot.
type PlayerState struct {
	MapID     int `json:"map_id"`
	X         int `json:"x"`
	Y         int `json:"y"`
	Direction int `json:"direction"`
	Vehicle   int `json:"vehicle"`
	Steps     int `json:"steps"`
}

// Snapshot copies the world state. Callers on other goroutines wrap it in
// Do.
func (w *World) Snapshot() Snapshot {
	s := Snapshot{
		Frames:    w.frames,
		Scene:     w.Scenes.Current(),
		Ended:     w.Scenes.Ended(),
		State:     w.State.Snapshot(),
		System:    w.System.Settings(),
		Map:       w.Map.Snapshot(),
		Party:     w.Party.MemberIDs(),
		Inventory: w.Party.Inventory(),
		Screen:    w.Screen.Snapshot(),
		Audio:     w.Audio.Snapshot(),
		Messages:  w.Message.Log(),
		Scenes:    w.Scenes.Log(),
		Movies:    w.Video.Played(),
	}
	s.Player = PlayerState{
		MapID:     w.Map.MapID(),
		X:         w.Player.X(),
		Y:         w.Player.Y(),
		Direction: w.Player.Direction(),
		Vehicle:   w.Player.vehicleKind,
		Steps:     w.Party.Steps(),
	}
	if w.Timer.IsWorking() {
		s.Timer = w.Timer.Seconds()
	}
	if w.Battle.active {
		s.Battle = w.Battle.troopID
	}
	return s
}

// noAssets treats every image as loaded.
type noAssets struct{}

func (noAssets) Request(interp.AssetKind, string, int)              {}
func (noAssets) Reserve(interp.AssetKind, string, int, string) bool { return true }
func (noAssets) ReleaseReservation(string)                          {}
func (noAssets) IsReady() bool                                      { return true }
