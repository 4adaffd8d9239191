package interp

import (
	"context"
	"fmt"
	"testing"

	"github.com/kasuganosora/rmmvinterp/resource"
	"github.com/stretchr/testify/require"
)

// ---- 指令构造 ----

func cmd(code, indent int, params ...interface{}) *resource.EventCommand {
	if params == nil {
		params = []interface{}{}
	}
	return &resource.EventCommand{Code: code, Indent: indent, Parameters: params}
}

func end(indent int) *resource.EventCommand { return cmd(CmdEnd, indent) }

func listOf(cmds ...*resource.EventCommand) []*resource.EventCommand { return cmds }

// ---- 调用记录 ----

type recorder struct{ calls []string }

func (r *recorder) rec(format string, args ...interface{}) {
	r.calls = append(r.calls, fmt.Sprintf(format, args...))
}

// ---- 游戏状态 ----

type fakeState struct {
	sw   map[int]bool
	vars map[int]int
	self map[string]bool
}

func newFakeState() *fakeState {
	return &fakeState{sw: map[int]bool{}, vars: map[int]int{}, self: map[string]bool{}}
}

func selfKey(m, e int, ch string) string { return fmt.Sprintf("%d,%d,%s", m, e, ch) }

func (s *fakeState) GetSwitch(id int) bool            { return s.sw[id] }
func (s *fakeState) SetSwitch(id int, v bool)         { s.sw[id] = v }
func (s *fakeState) GetVariable(id int) int           { return s.vars[id] }
func (s *fakeState) SetVariable(id int, v int)        { s.vars[id] = v }
func (s *fakeState) GetSelfSwitch(m, e int, ch string) bool {
	return s.self[selfKey(m, e, ch)]
}
func (s *fakeState) SetSelfSwitch(m, e int, ch string, v bool) {
	s.self[selfKey(m, e, ch)] = v
}

// ---- 消息 ----

type fakeMessage struct {
	lines                                  []string
	face                                   string
	faceIndex, background, position        int
	choices                                []string
	choiceDefault, choiceCancel            int
	choiceBackground, choicePosition       int
	choiceCB                               func(int)
	numVar, numDigits, itemVar, itemType   int
	scrollSpeed                            int
	scrollNoFast, scrolling, inputting     bool
}

func (m *fakeMessage) IsBusy() bool {
	return len(m.lines) > 0 || len(m.choices) > 0 || m.inputting
}
func (m *fakeMessage) SetFaceImage(name string, index int) { m.face, m.faceIndex = name, index }
func (m *fakeMessage) SetBackground(bg int)                { m.background = bg }
func (m *fakeMessage) SetPositionType(pos int)             { m.position = pos }
func (m *fakeMessage) Add(text string)                     { m.lines = append(m.lines, text) }
func (m *fakeMessage) SetChoices(choices []string, def, cancel int) {
	m.choices, m.choiceDefault, m.choiceCancel = choices, def, cancel
}
func (m *fakeMessage) SetChoiceBackground(bg int)      { m.choiceBackground = bg }
func (m *fakeMessage) SetChoicePositionType(pos int)   { m.choicePosition = pos }
func (m *fakeMessage) SetChoiceCallback(fn func(int))  { m.choiceCB = fn }
func (m *fakeMessage) SetNumberInput(v, digits int) {
	m.numVar, m.numDigits, m.inputting = v, digits, true
}
func (m *fakeMessage) SetItemChoice(v, itemType int) {
	m.itemVar, m.itemType, m.inputting = v, itemType, true
}
func (m *fakeMessage) SetScroll(speed int, noFast bool) {
	m.scrollSpeed, m.scrollNoFast, m.scrolling = speed, noFast, true
}

// close 关闭窗口；有选项时以 n 回调。
func (m *fakeMessage) close(n int) {
	if len(m.choices) > 0 && m.choiceCB != nil {
		m.choiceCB(n)
	}
	m.lines, m.choices, m.choiceCB, m.inputting, m.scrolling = nil, nil, nil, false, false
}

// ---- 战斗者 ----

const deathState = 1

type fakeBattler struct {
	hp, mhp, mp, tp int
	states          map[int]bool
	params          [8]int
	collapses       int
	clears          int
	forced          []int
}

func newFakeBattler(hp, mhp int) *fakeBattler {
	return &fakeBattler{hp: hp, mhp: mhp, states: map[int]bool{}}
}

func (b *fakeBattler) IsDeathStateAffected() bool { return b.states[deathState] }
func (b *fakeBattler) IsDead() bool               { return b.IsDeathStateAffected() }
func (b *fakeBattler) IsAlive() bool              { return !b.IsDead() }
func (b *fakeBattler) HP() int                    { return b.hp }
func (b *fakeBattler) MP() int                    { return b.mp }
func (b *fakeBattler) HPRate() float64 {
	if b.mhp == 0 {
		return 0
	}
	return float64(b.hp) / float64(b.mhp)
}
func (b *fakeBattler) GainHP(v int) {
	b.hp = min(max(b.hp+v, 0), b.mhp)
	if b.hp == 0 {
		b.states[deathState] = true
	}
}
func (b *fakeBattler) GainMP(v int)                { b.mp += v }
func (b *fakeBattler) GainTP(v int)                { b.tp += v }
func (b *fakeBattler) AddState(id int)             { b.states[id] = true }
func (b *fakeBattler) RemoveState(id int)          { delete(b.states, id) }
func (b *fakeBattler) IsStateAffected(id int) bool { return b.states[id] }
func (b *fakeBattler) RecoverAll() {
	b.hp = b.mhp
	b.states = map[int]bool{}
}
func (b *fakeBattler) PerformCollapse()                { b.collapses++ }
func (b *fakeBattler) ClearResult()                    { b.clears++ }
func (b *fakeBattler) Param(id int) int                { return b.params[id] }
func (b *fakeBattler) ForceAction(skill, target int)   { b.forced = []int{skill, target} }

type fakeActor struct {
	*fakeBattler
	id                       int
	name, nickname, profile  string
	level, exp, classID      int
	skills                   map[int]bool
	weapons, armors          map[int]bool
	equips                   map[int]int
	paramPlus                map[int]int
	charName, face, battler  string
	charIndex, faceIndex     int
	setups                   int
}

func newFakeActor(id int, name string) *fakeActor {
	return &fakeActor{
		fakeBattler: newFakeBattler(100, 100),
		id:          id,
		name:        name,
		level:       1,
		skills:      map[int]bool{},
		weapons:     map[int]bool{},
		armors:      map[int]bool{},
		equips:      map[int]int{},
		paramPlus:   map[int]int{},
		charName:    fmt.Sprintf("Actor%d", id),
	}
}

func (a *fakeActor) ActorID() int                  { return a.id }
func (a *fakeActor) Name() string                  { return a.name }
func (a *fakeActor) SetName(n string)              { a.name = n }
func (a *fakeActor) SetNickname(n string)          { a.nickname = n }
func (a *fakeActor) SetProfile(p string)           { a.profile = p }
func (a *fakeActor) Setup(int)                     { a.setups++ }
func (a *fakeActor) Level() int                    { return a.level }
func (a *fakeActor) CurrentExp() int               { return a.exp }
func (a *fakeActor) ChangeExp(exp int, _ bool)     { a.exp = exp }
func (a *fakeActor) ChangeLevel(level int, _ bool) { a.level = level }
func (a *fakeActor) IsClass(id int) bool           { return a.classID == id }
func (a *fakeActor) ChangeClass(id int, _ bool)    { a.classID = id }
func (a *fakeActor) HasSkill(id int) bool          { return a.skills[id] }
func (a *fakeActor) LearnSkill(id int)             { a.skills[id] = true }
func (a *fakeActor) ForgetSkill(id int)            { delete(a.skills, id) }
func (a *fakeActor) HasWeapon(id int) bool         { return a.weapons[id] }
func (a *fakeActor) HasArmor(id int) bool          { return a.armors[id] }
func (a *fakeActor) ChangeEquipByID(etype, id int) { a.equips[etype] = id }
func (a *fakeActor) AddParam(id, v int)            { a.paramPlus[id] += v }
func (a *fakeActor) CharacterName() string         { return a.charName }
func (a *fakeActor) SetCharacterImage(n string, i int) {
	a.charName, a.charIndex = n, i
}
func (a *fakeActor) SetFaceImage(n string, i int) { a.face, a.faceIndex = n, i }
func (a *fakeActor) SetBattlerImage(n string)     { a.battler = n }

type fakeEnemy struct {
	*fakeBattler
	enemyID  int
	hidden   bool
	anims    []int
}

func newFakeEnemy(enemyID, hp int) *fakeEnemy {
	return &fakeEnemy{fakeBattler: newFakeBattler(hp, hp), enemyID: enemyID}
}

func (e *fakeEnemy) Appear()          { e.hidden = false }
func (e *fakeEnemy) Transform(id int) { e.enemyID = id }
func (e *fakeEnemy) StartAnimation(id int, _ bool, _ int) {
	e.anims = append(e.anims, id)
}

type fakeActors map[int]*fakeActor

func (f fakeActors) Actor(id int) Actor {
	if a, ok := f[id]; ok {
		return a
	}
	return nil
}

type fakeParty struct {
	actors   fakeActors
	ids      []int
	inBattle bool
	gold     int
	steps    int
	items    map[ItemRef]int
	equipped map[ItemRef]bool
	// lastIncludeEquip 记录最近一次 GainItem 的 includeEquip。
	lastIncludeEquip bool
}

func (p *fakeParty) Members() []Actor {
	out := make([]Actor, 0, len(p.ids))
	for _, id := range p.ids {
		out = append(out, p.actors[id])
	}
	return out
}
func (p *fakeParty) Size() int           { return len(p.ids) }
func (p *fakeParty) InBattle() bool      { return p.inBattle }
func (p *fakeParty) Gold() int           { return p.gold }
func (p *fakeParty) GainGold(n int)      { p.gold += n }
func (p *fakeParty) Steps() int          { return p.steps }
func (p *fakeParty) NumItems(i ItemRef) int { return p.items[i] }
func (p *fakeParty) HasItem(i ItemRef, includeEquip bool) bool {
	return p.items[i] > 0 || (includeEquip && p.equipped[i])
}
func (p *fakeParty) GainItem(i ItemRef, n int, includeEquip bool) {
	p.items[i] += n
	p.lastIncludeEquip = includeEquip
}
func (p *fakeParty) AddActor(id int) {
	for _, x := range p.ids {
		if x == id {
			return
		}
	}
	p.ids = append(p.ids, id)
}
func (p *fakeParty) RemoveActor(id int) {
	out := p.ids[:0]
	for _, x := range p.ids {
		if x != id {
			out = append(out, x)
		}
	}
	p.ids = out
}

type fakeTroop struct {
	enemies []*fakeEnemy
	uniques int
	turn    int
}

func (t *fakeTroop) Members() []Enemy {
	out := make([]Enemy, len(t.enemies))
	for i, e := range t.enemies {
		out[i] = e
	}
	return out
}
func (t *fakeTroop) MakeUniqueNames() { t.uniques++ }
func (t *fakeTroop) TurnCount() int   { return t.turn }
func (t *fakeTroop) IncreaseTurn()    { t.turn++ }

// ---- 地图角色 ----

type fakeChar struct {
	x, y, d        int
	route          *resource.MoveRoute
	forcing        bool
	callerInfo     EventInfo
	callerLine     int
	anim, balloon  int
	animPlaying    bool
	balloonPlaying bool
	transparent    bool
}

func (c *fakeChar) X() int             { return c.x }
func (c *fakeChar) Y() int             { return c.y }
func (c *fakeChar) Direction() int     { return c.d }
func (c *fakeChar) ScreenX() int       { return c.x*48 + 24 }
func (c *fakeChar) ScreenY() int       { return c.y*48 + 48 }
func (c *fakeChar) Locate(x, y int)    { c.x, c.y = x, y }
func (c *fakeChar) SetDirection(d int) { c.d = d }
func (c *fakeChar) Swap(o Character) {
	ox, oy := o.X(), o.Y()
	o.Locate(c.x, c.y)
	c.Locate(ox, oy)
}
func (c *fakeChar) ForceMoveRoute(r *resource.MoveRoute) { c.route, c.forcing = r, true }
func (c *fakeChar) IsMoveRouteForcing() bool             { return c.forcing }
func (c *fakeChar) SetCallerEventInfo(info EventInfo, line int) {
	c.callerInfo, c.callerLine = info, line
}
func (c *fakeChar) RequestAnimation(id int) { c.anim, c.animPlaying = id, true }
func (c *fakeChar) IsAnimationPlaying() bool { return c.animPlaying }
func (c *fakeChar) RequestBalloon(id int)    { c.balloon, c.balloonPlaying = id, true }
func (c *fakeChar) IsBalloonPlaying() bool   { return c.balloonPlaying }
func (c *fakeChar) SetTransparent(t bool)    { c.transparent = t }

type fakePlayer struct {
	fakeChar
	transferring     bool
	transfer         []int
	encounterCounts  int
	encounterTroop   int
	getOnOff         int
	vehicle          int
	followersVisible bool
	gathering        bool
	gathers          int
	refreshes        int
	followers        []string
}

func (p *fakePlayer) IsTransferring() bool { return p.transferring }
func (p *fakePlayer) ReserveTransfer(m, x, y, d, fade int) {
	p.transfer, p.transferring = []int{m, x, y, d, fade}, true
}
func (p *fakePlayer) MakeEncounterCount()              { p.encounterCounts++ }
func (p *fakePlayer) MakeEncounterTroopID() int        { return p.encounterTroop }
func (p *fakePlayer) GetOnOffVehicle()                 { p.getOnOff++ }
func (p *fakePlayer) InVehicle(kind int) bool          { return p.vehicle == kind }
func (p *fakePlayer) ShowFollowers()                   { p.followersVisible = true }
func (p *fakePlayer) HideFollowers()                   { p.followersVisible = false }
func (p *fakePlayer) GatherFollowers()                 { p.gathers++; p.gathering = true }
func (p *fakePlayer) AreFollowersGathering() bool      { return p.gathering }
func (p *fakePlayer) FollowerCharacterNames() []string { return p.followers }
func (p *fakePlayer) Refresh()                         { p.refreshes++ }

type fakeVehicle struct {
	bgm      resource.AudioFile
	location []int
	image    string
	index    int
}

func (v *fakeVehicle) SetBGM(a resource.AudioFile)   { v.bgm = a }
func (v *fakeVehicle) SetLocation(m, x, y int)       { v.location = []int{m, x, y} }
func (v *fakeVehicle) SetImage(name string, i int)   { v.image, v.index = name, i }
func (v *fakeVehicle) CharacterName() string         { return v.image }

type fakeMap struct {
	recorder
	id        int
	events    map[int]*fakeChar
	erased    []int
	unlocked  []int
	vehicles  [3]*fakeVehicle
	scrolling bool
	refreshes int
	starting  []StartingEvent
	parallel  []StartingEvent
}

func (m *fakeMap) MapID() int { return m.id }
func (m *fakeMap) Event(id int) Character {
	if e, ok := m.events[id]; ok {
		return e
	}
	return nil
}
func (m *fakeMap) EraseEvent(id int)  { m.erased = append(m.erased, id) }
func (m *fakeMap) UnlockEvent(id int) { m.unlocked = append(m.unlocked, id) }
func (m *fakeMap) Vehicle(kind int) Vehicle {
	if kind < 0 || kind >= len(m.vehicles) || m.vehicles[kind] == nil {
		return nil
	}
	return m.vehicles[kind]
}
func (m *fakeMap) RefreshIfNeeded() { m.refreshes++ }
func (m *fakeMap) IsScrolling() bool { return m.scrolling }
func (m *fakeMap) StartScroll(d, dist, speed int) {
	m.rec("scroll %d %d %d", d, dist, speed)
	m.scrolling = true
}
func (m *fakeMap) SetNameDisplay(on bool)  { m.rec("nameDisplay %v", on) }
func (m *fakeMap) ChangeTileset(id int)    { m.rec("tileset %d", id) }
func (m *fakeMap) ChangeBattleback(a, b string) {
	m.rec("battleback %s %s", a, b)
}
func (m *fakeMap) ChangeParallax(name string, lx, ly bool, sx, sy int) {
	m.rec("parallax %s %v %v %d %d", name, lx, ly, sx, sy)
}
func (m *fakeMap) TerrainTag(x, y int) int { return 1 }
func (m *fakeMap) EventIDXY(x, y int) int {
	for id, e := range m.events {
		if e.x == x && e.y == y {
			return id
		}
	}
	return 0
}
func (m *fakeMap) TileID(x, y, z int) int { return 1000*z + 10*x + y }
func (m *fakeMap) RegionID(x, y int) int  { return 7 }
func (m *fakeMap) TakeStartingEvent() (StartingEvent, bool) {
	if len(m.starting) == 0 {
		return StartingEvent{}, false
	}
	ev := m.starting[0]
	m.starting = m.starting[1:]
	return ev, true
}
func (m *fakeMap) ParallelEvents() []StartingEvent { return m.parallel }

// ---- 画面、声音、系统 ----

type fakeScreen struct{ recorder }

func (s *fakeScreen) StartFadeOut(d int)                { s.rec("fadeOut %d", d) }
func (s *fakeScreen) StartFadeIn(d int)                 { s.rec("fadeIn %d", d) }
func (s *fakeScreen) StartTint(tone []int, d int)       { s.rec("tint %v %d", tone, d) }
func (s *fakeScreen) StartFlash(color []int, d int)     { s.rec("flash %v %d", color, d) }
func (s *fakeScreen) StartShake(p, sp, d int)           { s.rec("shake %d %d %d", p, sp, d) }
func (s *fakeScreen) ShowPicture(id int, p PictureParams) {
	s.rec("show %d %+v", id, p)
}
func (s *fakeScreen) MovePicture(id int, p PictureParams, d int) {
	s.rec("move %d %+v %d", id, p, d)
}
func (s *fakeScreen) RotatePicture(id, speed int)           { s.rec("rotate %d %d", id, speed) }
func (s *fakeScreen) TintPicture(id int, tone []int, d int) { s.rec("tintPicture %d %v %d", id, tone, d) }
func (s *fakeScreen) ErasePicture(id int)                   { s.rec("erase %d", id) }
func (s *fakeScreen) ChangeWeather(k string, p, d int)      { s.rec("weather %s %d %d", k, p, d) }

type fakeAudio struct{ recorder }

func (a *fakeAudio) PlayBGM(f resource.AudioFile) { a.rec("bgm %s", f.Name) }
func (a *fakeAudio) FadeOutBGM(s int)             { a.rec("fadeBgm %d", s) }
func (a *fakeAudio) PlayBGS(f resource.AudioFile) { a.rec("bgs %s", f.Name) }
func (a *fakeAudio) FadeOutBGS(s int)             { a.rec("fadeBgs %d", s) }
func (a *fakeAudio) PlayME(f resource.AudioFile)  { a.rec("me %s", f.Name) }
func (a *fakeAudio) PlaySE(f resource.AudioFile)  { a.rec("se %s", f.Name) }
func (a *fakeAudio) StopSE()                      { a.rec("stopSe") }

type fakeSystem struct {
	recorder
	sideView bool
	counts   [6]int // playtime, save, battle, win, escape, spare
}

func (s *fakeSystem) SetBattleBGM(a resource.AudioFile) { s.rec("battleBgm %s", a.Name) }
func (s *fakeSystem) SetVictoryME(a resource.AudioFile) { s.rec("victoryMe %s", a.Name) }
func (s *fakeSystem) SetDefeatME(a resource.AudioFile)  { s.rec("defeatMe %s", a.Name) }
func (s *fakeSystem) SetSaveEnabled(on bool)            { s.rec("save %v", on) }
func (s *fakeSystem) SetMenuEnabled(on bool)            { s.rec("menu %v", on) }
func (s *fakeSystem) SetEncounterEnabled(on bool)       { s.rec("encounter %v", on) }
func (s *fakeSystem) SetFormationEnabled(on bool)       { s.rec("formation %v", on) }
func (s *fakeSystem) SetWindowTone(t []int)             { s.rec("windowTone %v", t) }
func (s *fakeSystem) SaveBGM()                          { s.rec("saveBgm") }
func (s *fakeSystem) ReplayBGM()                        { s.rec("replayBgm") }
func (s *fakeSystem) IsSideView() bool                  { return s.sideView }
func (s *fakeSystem) Playtime() int                     { return s.counts[0] }
func (s *fakeSystem) SaveCount() int                    { return s.counts[1] }
func (s *fakeSystem) BattleCount() int                  { return s.counts[2] }
func (s *fakeSystem) WinCount() int                     { return s.counts[3] }
func (s *fakeSystem) EscapeCount() int                  { return s.counts[4] }

type fakeTimer struct {
	working bool
	frames  int
}

func (t *fakeTimer) Start(f int)     { t.frames, t.working = f, true }
func (t *fakeTimer) Stop()           { t.working = false }
func (t *fakeTimer) IsWorking() bool { return t.working }
func (t *fakeTimer) Seconds() int    { return t.frames / 60 }

type fakeScenes struct {
	recorder
	changing bool
	// changeOnPush 为真时 Push 进入场景切换状态。
	changeOnPush bool
	args         [][]interface{}
}

func (s *fakeScenes) IsSceneChanging() bool { return s.changing }
func (s *fakeScenes) Push(sc Scene, args ...interface{}) {
	s.rec("push %s", sc)
	s.args = append(s.args, args)
	s.changing = s.changing || s.changeOnPush
}
func (s *fakeScenes) Goto(sc Scene) { s.rec("goto %s", sc) }

type fakeBattle struct {
	recorder
	cb      func(int)
	forced  bool
	turnEnd bool
}

func (b *fakeBattle) Setup(troop int, esc, lose bool) { b.rec("setup %d %v %v", troop, esc, lose) }
func (b *fakeBattle) SetEventCallback(fn func(int))   { b.cb = fn }
func (b *fakeBattle) ForceAction(Battler)             { b.rec("force"); b.forced = true }
func (b *fakeBattle) IsActionForced() bool            { return b.forced }
func (b *fakeBattle) IsTurnEnd() bool                 { return b.turnEnd }
func (b *fakeBattle) Abort()                          { b.rec("abort") }

type fakeVideo struct {
	src     string
	playing bool
}

func (v *fakeVideo) Play(src string)  { v.src, v.playing = src, true }
func (v *fakeVideo) IsPlaying() bool  { return v.playing }
func (v *fakeVideo) FileExt() string  { return ".webm" }

type fakeInput map[string]bool

func (f fakeInput) IsPressed(b string) bool { return f[b] }

type fakeAssets struct {
	requests []string
	ready    map[string]bool
	reserved map[string][]string
	released []string
	pending  bool
}

func (a *fakeAssets) Request(k AssetKind, name string, hue int) {
	a.requests = append(a.requests, fmt.Sprintf("%s/%s:%d", k, name, hue))
}
func (a *fakeAssets) Reserve(k AssetKind, name string, hue int, id string) bool {
	a.reserved[id] = append(a.reserved[id], name)
	return a.ready[name]
}
func (a *fakeAssets) ReleaseReservation(id string) { a.released = append(a.released, id) }
func (a *fakeAssets) IsReady() bool                { return !a.pending }

type fakeTemp struct{ reserved int }

func (t *fakeTemp) IsCommonEventReserved() bool { return t.reserved > 0 }
func (t *fakeTemp) ReservedCommonEventID() int  { return t.reserved }
func (t *fakeTemp) ReserveCommonEvent(id int)   { t.reserved = id }
func (t *fakeTemp) ClearCommonEvent()           { t.reserved = 0 }

// ---- 组装 ----

type fakes struct {
	state   *fakeState
	data    *resource.ResourceLoader
	msg     *fakeMessage
	actors  fakeActors
	party   *fakeParty
	troop   *fakeTroop
	gameMap *fakeMap
	player  *fakePlayer
	screen  *fakeScreen
	audio   *fakeAudio
	system  *fakeSystem
	timer   *fakeTimer
	scenes  *fakeScenes
	battle  *fakeBattle
	video   *fakeVideo
	input   fakeInput
	assets  *fakeAssets
	temp    *fakeTemp
}

func newFakeWorld() (*World, *fakes) {
	actors := fakeActors{1: newFakeActor(1, "Harold"), 2: newFakeActor(2, "Therese")}
	f := &fakes{
		state:  newFakeState(),
		data:   resource.NewLoader("", ""),
		msg:    &fakeMessage{},
		actors: actors,
		party: &fakeParty{
			actors:   actors,
			ids:      []int{1},
			items:    map[ItemRef]int{},
			equipped: map[ItemRef]bool{},
		},
		troop: &fakeTroop{},
		gameMap: &fakeMap{
			id:     1,
			events: map[int]*fakeChar{1: {x: 3, y: 4, d: 2}, 2: {x: 5, y: 6, d: 8}},
		},
		player: &fakePlayer{fakeChar: fakeChar{x: 1, y: 1, d: 2}, vehicle: -1},
		screen: &fakeScreen{},
		audio:  &fakeAudio{},
		system: &fakeSystem{},
		timer:  &fakeTimer{},
		scenes: &fakeScenes{},
		battle: &fakeBattle{},
		video:  &fakeVideo{},
		input:  fakeInput{},
		assets: &fakeAssets{ready: map[string]bool{}, reserved: map[string][]string{}},
		temp:   &fakeTemp{},
	}
	w := &World{
		State:   f.state,
		Data:    f.data,
		Message: f.msg,
		Actors:  f.actors,
		Party:   f.party,
		Troop:   f.troop,
		Map:     f.gameMap,
		Player:  f.player,
		Screen:  f.screen,
		Audio:   f.audio,
		System:  f.system,
		Timer:   f.timer,
		Scenes:  f.scenes,
		Battle:  f.battle,
		Video:   f.video,
		Input:   f.input,
		Assets:  f.assets,
		Temp:    f.temp,
	}
	return w, f
}

// newTest 创建载入 list 的顶层解释器，事件 ID 为 1。
func newTest(t *testing.T, w *World, opts *Options, list ...*resource.EventCommand) *Interpreter {
	t.Helper()
	it, err := New(w, 0, opts)
	require.NoError(t, err)
	it.Setup(list, 1)
	it.SetEventInfo(MapEventInfo{MapID: 1, EventID: 1, Page: 1})
	return it
}

// tick 执行 n 帧，要求无错误。
func tick(t *testing.T, it *Interpreter, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		require.NoError(t, it.Update(context.Background()))
	}
}

// runToEnd 执行直到结束，最多 limit 帧，返回所用帧数。
func runToEnd(t *testing.T, it *Interpreter, limit int) int {
	t.Helper()
	for i := 1; i <= limit; i++ {
		require.NoError(t, it.Update(context.Background()))
		if !it.IsRunning() {
			return i
		}
	}
	t.Fatalf("still running after %d frames", limit)
	return limit
}

func (f *fakes) addCommonEvent(id int, trigger, switchID int, list ...*resource.EventCommand) {
	for len(f.data.CommonEvents) <= id {
		f.data.CommonEvents = append(f.data.CommonEvents, nil)
	}
	f.data.CommonEvents[id] = &resource.CommonEvent{ID: id, Trigger: trigger, SwitchID: switchID, List: list}
}
