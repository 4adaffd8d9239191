package world

import (
	"math"
	"sort"

	"github.com/kasuganosora/rmmvinterp/game/interp"
	"github.com/kasuganosora/rmmvinterp/resource"
	"go.uber.org/zap"
)

// Event page triggers.
const (
	triggerAction   = 0
	triggerPlayer   = 1
	triggerEvent    = 2
	triggerAutorun  = 3
	triggerParallel = 4
)

// Vehicle kinds.
const (
	VehicleBoat = iota
	VehicleShip
	VehicleAirship
)

// Event is a map event with its active page.
type Event struct {
	*Character
	id         int
	data       *resource.MapEvent
	mapID      int
	pageIndex  int // -1 = no page
	erased     bool
	starting   bool
	locked     bool
	prelockDir int
}

// ID returns the event ID.
func (e *Event) ID() int { return e.id }

// Page returns the active page, or nil.
func (e *Event) Page() *resource.EventPage {
	if e.pageIndex < 0 || e.erased {
		return nil
	}
	return e.data.Pages[e.pageIndex]
}

func (e *Event) list() []*resource.EventCommand {
	if p := e.Page(); p != nil {
		return p.List
	}
	return nil
}

func (e *Event) trigger() int {
	if p := e.Page(); p != nil {
		return p.Trigger
	}
	return -1
}

// start marks the event as starting when its page has commands.
// Action and touch triggers lock the event facing the player.
func (e *Event) start() {
	if len(e.list()) <= 1 {
		return
	}
	e.starting = true
	switch e.trigger() {
	case triggerAction, triggerPlayer, triggerEvent:
		e.lock()
	}
}

func (e *Event) lock() {
	if e.locked {
		return
	}
	e.prelockDir = e.dir
	if d := e.directionToPlayer(); d != 0 {
		e.SetDirection(d)
	}
	e.locked = true
}

func (e *Event) unlock() {
	if !e.locked {
		return
	}
	e.locked = false
	e.SetDirection(e.prelockDir)
}

func (e *Event) refresh(state GameStateReader, party *Party) {
	idx := -1
	if !e.erased {
		idx = findPageIndex(e.data, e.mapID, state, party)
	}
	if idx == e.pageIndex {
		return
	}
	e.pageIndex = idx
	e.setupPage()
}

func (e *Event) setupPage() {
	p := e.Page()
	if p == nil {
		e.setImage("", 0)
		e.through = true
		e.starting = false
		return
	}
	e.setImage(p.Image.CharacterName, p.Image.CharacterIndex)
	if p.Image.Direction > 0 {
		fix := e.dirFix
		e.dirFix = false
		e.SetDirection(p.Image.Direction)
		e.dirFix = fix
	}
	e.through = p.Through
	if p.Trigger == triggerAutorun {
		e.start()
	}
}

func (e *Event) info() interp.MapEventInfo {
	return interp.MapEventInfo{MapID: e.mapID, EventID: e.id, Page: e.pageIndex + 1}
}

// findPageIndex chooses the highest-index page whose conditions are met.
// RMMV convention: pages are checked from last to first; the first match wins.
func findPageIndex(ev *resource.MapEvent, mapID int, state GameStateReader, party *Party) int {
	for i := len(ev.Pages) - 1; i >= 0; i-- {
		page := ev.Pages[i]
		if page == nil {
			continue
		}
		if meetsConditions(&page.Conditions, mapID, ev.ID, state, party) {
			return i
		}
	}
	return -1
}

// meetsConditions checks whether all enabled conditions on a page are satisfied.
func meetsConditions(cond *resource.EventPageConditions, mapID, eventID int, state GameStateReader, party *Party) bool {
	if cond.Switch1Valid && !state.GetSwitch(cond.Switch1ID) {
		return false
	}
	if cond.Switch2Valid && !state.GetSwitch(cond.Switch2ID) {
		return false
	}
	if cond.VariableValid && state.GetVariable(cond.VariableID) < cond.VariableValue {
		return false
	}
	if cond.SelfSwitchValid && !state.GetSelfSwitch(mapID, eventID, cond.SelfSwitchCh) {
		return false
	}
	if cond.ItemValid && (party == nil || !party.HasItem(interp.ItemRef{Kind: interp.ItemKindItem, ID: cond.ItemID}, false)) {
		return false
	}
	if cond.ActorValid && (party == nil || !party.hasMember(cond.ActorID)) {
		return false
	}
	return true
}

// Vehicle is a boat, ship, or airship.
type Vehicle struct {
	*Character
	kind  int
	mapID int
	bgm   resource.AudioFile
}

var _ interp.Vehicle = (*Vehicle)(nil)

func (v *Vehicle) SetBGM(bgm resource.AudioFile) { v.bgm = bgm }

// BGM returns the vehicle music.
func (v *Vehicle) BGM() resource.AudioFile { return v.bgm }

func (v *Vehicle) SetLocation(mapID, x, y int) {
	v.mapID = mapID
	v.Locate(x, y)
}

// MapID returns the map the vehicle is parked on.
func (v *Vehicle) MapID() int { return v.mapID }

func (v *Vehicle) SetImage(name string, index int) { v.setImage(name, index) }

// Map is the current map with its events and vehicles.
type Map struct {
	w *World

	mapID        int
	data         *resource.MapData
	events       map[int]*Event
	vehicles     [3]*Vehicle
	needsRefresh bool

	tilesetID   int
	battleback1 string
	battleback2 string
	nameDisplay bool

	parallaxName  string
	parallaxLoopX bool
	parallaxLoopY bool
	parallaxSx    int
	parallaxSy    int

	displayX, displayY float64
	scrollDirection    int
	scrollRest         float64
	scrollSpeed        int
}

var _ interp.GameMap = (*Map)(nil)

func newMap(w *World) *Map {
	m := &Map{w: w, events: make(map[int]*Event), nameDisplay: true}
	var defs [3]resource.VehicleData
	if w.Data != nil && w.Data.System != nil {
		defs = [3]resource.VehicleData{w.Data.System.Boat, w.Data.System.Ship, w.Data.System.Airship}
	}
	for kind, def := range defs {
		v := &Vehicle{Character: newCharacter(w), kind: kind}
		v.setImage(def.CharacterName, def.CharacterIndex)
		v.bgm = def.BGM
		v.SetLocation(def.StartMapID, def.StartX, def.StartY)
		m.vehicles[kind] = v
	}
	return m
}

// Setup loads a map and its events. Unknown maps leave an empty map.
func (m *Map) Setup(mapID int) {
	m.mapID = mapID
	m.data = nil
	m.events = make(map[int]*Event)
	m.displayX, m.displayY = 0, 0
	m.scrollRest = 0
	m.tilesetID = 0
	m.battleback1, m.battleback2 = "", ""
	m.parallaxName = ""
	m.parallaxLoopX, m.parallaxLoopY = false, false
	m.parallaxSx, m.parallaxSy = 0, 0
	if m.w.Data != nil {
		m.data = m.w.Data.MapByID(mapID)
	}
	if m.data == nil {
		m.w.logger.Warn("map not loaded", zap.Int("map_id", mapID))
		return
	}
	m.tilesetID = m.data.TilesetID
	m.battleback1, m.battleback2 = m.data.Battleback1Name, m.data.Battleback2Name
	m.parallaxName = m.data.ParallaxName
	m.parallaxLoopX, m.parallaxLoopY = m.data.ParallaxLoopX, m.data.ParallaxLoopY
	m.parallaxSx, m.parallaxSy = m.data.ParallaxSx, m.data.ParallaxSy
	for _, ev := range m.data.Events {
		if ev == nil {
			continue
		}
		e := &Event{Character: newCharacter(m.w), id: ev.ID, data: ev, mapID: mapID, pageIndex: -1}
		e.Locate(ev.X, ev.Y)
		m.events[ev.ID] = e
	}
	m.refresh()
}

func (m *Map) MapID() int { return m.mapID }

// Data returns the loaded map data, or nil.
func (m *Map) Data() *resource.MapData { return m.data }

func (m *Map) Event(eventID int) interp.Character {
	if e, ok := m.events[eventID]; ok {
		return e
	}
	return nil
}

// GameEvent returns the concrete event, or nil.
func (m *Map) GameEvent(eventID int) *Event { return m.events[eventID] }

func (m *Map) EraseEvent(eventID int) {
	if e, ok := m.events[eventID]; ok {
		e.erased = true
		e.refresh(m.w.State, m.w.Party)
	}
}

func (m *Map) UnlockEvent(eventID int) {
	if e, ok := m.events[eventID]; ok {
		e.unlock()
	}
}

func (m *Map) Vehicle(kind int) interp.Vehicle {
	if kind < 0 || kind >= len(m.vehicles) {
		return nil
	}
	return m.vehicles[kind]
}

// RequestRefresh makes the next RefreshIfNeeded re-evaluate event pages.
func (m *Map) RequestRefresh() { m.needsRefresh = true }

func (m *Map) RefreshIfNeeded() {
	if m.needsRefresh {
		m.refresh()
	}
}

func (m *Map) refresh() {
	m.needsRefresh = false
	for _, e := range m.sortedEvents() {
		e.refresh(m.w.State, m.w.Party)
	}
}

func (m *Map) sortedEvents() []*Event {
	out := make([]*Event, 0, len(m.events))
	for _, e := range m.events {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].id < out[j].id })
	return out
}

func (m *Map) IsScrolling() bool { return m.scrollRest > 0 }

func (m *Map) StartScroll(direction, distance, speed int) {
	m.scrollDirection = direction
	m.scrollRest = float64(distance)
	m.scrollSpeed = speed
}

func (m *Map) scrollDistance() float64 {
	return math.Pow(2, float64(m.scrollSpeed)) / 256
}

func (m *Map) updateScroll() {
	if !m.IsScrolling() {
		return
	}
	d := math.Min(m.scrollDistance(), m.scrollRest)
	switch m.scrollDirection {
	case dirDown:
		m.displayY += d
	case dirLeft:
		m.displayX -= d
	case dirRight:
		m.displayX += d
	case dirUp:
		m.displayY -= d
	}
	m.scrollRest -= d
}

// DisplayPos returns the top-left tile of the view.
func (m *Map) DisplayPos() (float64, float64) { return m.displayX, m.displayY }

func (m *Map) SetNameDisplay(enabled bool) { m.nameDisplay = enabled }

// NameDisplayEnabled reports whether the map name window is shown.
func (m *Map) NameDisplayEnabled() bool { return m.nameDisplay }

func (m *Map) ChangeTileset(tilesetID int) {
	m.tilesetID = tilesetID
	m.RequestRefresh()
}

// TilesetID returns the active tileset.
func (m *Map) TilesetID() int { return m.tilesetID }

func (m *Map) ChangeBattleback(name1, name2 string) {
	m.battleback1, m.battleback2 = name1, name2
}

// Battlebacks returns the battleback image names.
func (m *Map) Battlebacks() (string, string) { return m.battleback1, m.battleback2 }

func (m *Map) ChangeParallax(name string, loopX, loopY bool, sx, sy int) {
	m.parallaxName = name
	m.parallaxLoopX, m.parallaxLoopY = loopX, loopY
	m.parallaxSx, m.parallaxSy = sx, sy
}

// ParallaxName returns the parallax image name.
func (m *Map) ParallaxName() string { return m.parallaxName }

func (m *Map) tilesetFlags() []int {
	if m.w.Data == nil {
		return nil
	}
	if ts := m.w.Data.TilesetByID(m.tilesetID); ts != nil {
		return ts.Flags
	}
	return nil
}

func (m *Map) TerrainTag(x, y int) int {
	return m.data.TerrainTag(x, y, m.tilesetFlags())
}

// EventIDXY returns the lowest-ID event at (x, y), or 0.
func (m *Map) EventIDXY(x, y int) int {
	for _, e := range m.sortedEvents() {
		if !e.erased && e.x == x && e.y == y {
			return e.id
		}
	}
	return 0
}

func (m *Map) TileID(x, y, z int) int { return m.data.TileID(x, y, z) }

func (m *Map) RegionID(x, y int) int { return m.data.RegionID(x, y) }

func (m *Map) TakeStartingEvent() (interp.StartingEvent, bool) {
	for _, e := range m.sortedEvents() {
		if !e.starting {
			continue
		}
		e.starting = false
		return interp.StartingEvent{EventID: e.id, List: e.list(), Info: e.info()}, true
	}
	return interp.StartingEvent{}, false
}

func (m *Map) ParallelEvents() []interp.StartingEvent {
	var out []interp.StartingEvent
	for _, e := range m.sortedEvents() {
		if e.trigger() == triggerParallel && len(e.list()) > 1 {
			out = append(out, interp.StartingEvent{EventID: e.id, List: e.list(), Info: e.info()})
		}
	}
	return out
}

// StartEvent triggers an event as if the player had activated it.
// It reports whether the event will start.
func (m *Map) StartEvent(eventID int) bool {
	e, ok := m.events[eventID]
	if !ok || e.erased {
		return false
	}
	e.start()
	return e.starting
}

func (m *Map) tick() {
	m.updateScroll()
	for _, e := range m.sortedEvents() {
		e.tick()
		if e.trigger() == triggerAutorun && !e.locked {
			e.start()
		}
	}
	for _, v := range m.vehicles {
		v.tick()
	}
}

// checkTouch starts player-touch events at (x, y).
func (m *Map) checkTouch(x, y int) {
	for _, e := range m.sortedEvents() {
		if e.x == x && e.y == y && !e.erased {
			switch e.trigger() {
			case triggerPlayer, triggerEvent:
				e.start()
			}
		}
	}
}

// MapSnapshot is the map state reported by the debug API.
type MapSnapshot struct {
	MapID       int          `json:"map_id"`
	TilesetID   int          `json:"tileset_id"`
	Parallax    string       `json:"parallax"`
	Battleback1 string       `json:"battleback1"`
	Battleback2 string       `json:"battleback2"`
	DisplayX    float64      `json:"display_x"`
	DisplayY    float64      `json:"display_y"`
	Events      []EventState `json:"events"`
}

// EventState is one event in a MapSnapshot.
type EventState struct {
	ID        int    `json:"id"`
	X         int    `json:"x"`
	Y         int    `json:"y"`
	Direction int    `json:"direction"`
	Page      int    `json:"page"`
	Image     string `json:"image"`
	Erased    bool   `json:"erased"`
}

// Snapshot copies the map state.
func (m *Map) Snapshot() MapSnapshot {
	s := MapSnapshot{
		MapID:       m.mapID,
		TilesetID:   m.tilesetID,
		Parallax:    m.parallaxName,
		Battleback1: m.battleback1,
		Battleback2: m.battleback2,
		DisplayX:    m.displayX,
		DisplayY:    m.displayY,
		Events:      []EventState{},
	}
	for _, e := range m.sortedEvents() {
		s.Events = append(s.Events, EventState{
			ID:        e.id,
			X:         e.x,
			Y:         e.y,
			Direction: e.dir,
			Page:      e.pageIndex + 1,
			Image:     e.name,
			Erased:    e.erased,
		})
	}
	return s
}
