package interp

import (
	"github.com/kasuganosora/rmmvinterp/resource"
)

// ---- 协作者接口 ----
// 解释器只通过这些接口读写游戏世界。实现返回“不存在”时必须返回无类型的 nil，
// 不能返回包着 nil 指针的接口值。

// GameStateAccessor 提供开关、变量、独立开关的读写访问。
type GameStateAccessor interface {
	GetSwitch(id int) bool
	SetSwitch(id int, val bool)
	GetVariable(id int) int
	SetVariable(id int, val int)
	GetSelfSwitch(mapID, eventID int, ch string) bool
	SetSelfSwitch(mapID, eventID int, ch string, val bool)
}

// Message 是对话窗口状态（文本、选项、数值输入、物品选择、滚动文本）。
type Message interface {
	IsBusy() bool
	SetFaceImage(name string, index int)
	SetBackground(bg int)
	SetPositionType(pos int)
	Add(text string)
	SetChoices(choices []string, defaultType, cancelType int)
	SetChoiceBackground(bg int)
	SetChoicePositionType(pos int)
	// SetChoiceCallback 注册选项结果回调，n 为选中序号，取消时为 cancelType。
	SetChoiceCallback(fn func(n int))
	SetNumberInput(variableID, digits int)
	SetItemChoice(variableID, itemType int)
	SetScroll(speed int, noFast bool)
}

// Battler 是角色与敌人的公共部分。
type Battler interface {
	IsAlive() bool
	IsDead() bool
	IsDeathStateAffected() bool
	HP() int
	MP() int
	HPRate() float64
	GainHP(v int)
	GainMP(v int)
	GainTP(v int)
	AddState(stateID int)
	RemoveState(stateID int)
	IsStateAffected(stateID int) bool
	RecoverAll()
	PerformCollapse()
	ClearResult()
	// Param 返回 0..7 号能力值（mhp, mmp, atk, def, mat, mdf, agi, luk）。
	Param(paramID int) int
	ForceAction(skillID, targetIndex int)
}

// Actor 是数据库角色的运行时实例。
type Actor interface {
	Battler
	ActorID() int
	Name() string
	SetName(name string)
	SetNickname(nickname string)
	SetProfile(profile string)
	Setup(actorID int)
	Level() int
	CurrentExp() int
	ChangeExp(exp int, show bool)
	ChangeLevel(level int, show bool)
	IsClass(classID int) bool
	ChangeClass(classID int, keepExp bool)
	HasSkill(skillID int) bool
	LearnSkill(skillID int)
	ForgetSkill(skillID int)
	HasWeapon(weaponID int) bool
	HasArmor(armorID int) bool
	ChangeEquipByID(etypeID, itemID int)
	AddParam(paramID, value int)
	CharacterName() string
	SetCharacterImage(name string, index int)
	SetFaceImage(name string, index int)
	SetBattlerImage(name string)
}

// Enemy 是敌群中的一个敌人。
type Enemy interface {
	Battler
	Appear()
	Transform(enemyID int)
	StartAnimation(animationID int, mirror bool, delay int)
}

// Actors 按 ID 返回角色实例，数据库中不存在时为 nil。
type Actors interface {
	Actor(actorID int) Actor
}

// ItemKind 区分物品、武器、护甲。
type ItemKind int

const (
	ItemKindItem ItemKind = iota
	ItemKindWeapon
	ItemKindArmor
)

// ItemRef 指向数据库中的一件物品。
type ItemRef struct {
	Kind ItemKind
	ID   int
}

// Party 是玩家队伍。
type Party interface {
	Members() []Actor
	Size() int
	InBattle() bool
	Gold() int
	GainGold(amount int)
	Steps() int
	NumItems(item ItemRef) int
	HasItem(item ItemRef, includeEquip bool) bool
	GainItem(item ItemRef, amount int, includeEquip bool)
	AddActor(actorID int)
	RemoveActor(actorID int)
}

// Troop 是当前战斗的敌群。
type Troop interface {
	Members() []Enemy
	MakeUniqueNames()
	TurnCount() int
	IncreaseTurn()
}

// Character 是地图上的角色（玩家或事件）。
type Character interface {
	X() int
	Y() int
	Direction() int
	ScreenX() int
	ScreenY() int
	Locate(x, y int)
	SetDirection(d int)
	// Swap 与另一角色交换位置。
	Swap(other Character)
	ForceMoveRoute(route *resource.MoveRoute)
	IsMoveRouteForcing() bool
	// SetCallerEventInfo 记录强制移动路线的来源，用于错误定位。
	SetCallerEventInfo(info EventInfo, line int)
	RequestAnimation(animationID int)
	IsAnimationPlaying() bool
	RequestBalloon(balloonID int)
	IsBalloonPlaying() bool
	SetTransparent(transparent bool)
}

// Player 是玩家角色，附带场所移动、载具与跟随者。
type Player interface {
	Character
	IsTransferring() bool
	ReserveTransfer(mapID, x, y, d, fadeType int)
	MakeEncounterCount()
	MakeEncounterTroopID() int
	GetOnOffVehicle()
	InVehicle(kind int) bool
	ShowFollowers()
	HideFollowers()
	GatherFollowers()
	AreFollowersGathering() bool
	// FollowerCharacterNames 返回跟随者的行走图名（预取用）。
	FollowerCharacterNames() []string
	Refresh()
}

// Vehicle 是小船、大船、飞艇之一。
type Vehicle interface {
	SetBGM(bgm resource.AudioFile)
	SetLocation(mapID, x, y int)
	SetImage(name string, index int)
	CharacterName() string
}

// GameMap 是当前地图。
type GameMap interface {
	MapID() int
	Event(eventID int) Character
	EraseEvent(eventID int)
	UnlockEvent(eventID int)
	// Vehicle 返回载具，kind 无效时为 nil。
	Vehicle(kind int) Vehicle
	RefreshIfNeeded()
	IsScrolling() bool
	StartScroll(direction, distance, speed int)
	SetNameDisplay(enabled bool)
	ChangeTileset(tilesetID int)
	ChangeBattleback(name1, name2 string)
	ChangeParallax(name string, loopX, loopY bool, sx, sy int)
	TerrainTag(x, y int) int
	EventIDXY(x, y int) int
	TileID(x, y, z int) int
	RegionID(x, y int) int
	// TakeStartingEvent 取出一个已触发的事件并清除其启动标记。
	TakeStartingEvent() (StartingEvent, bool)
	// ParallelEvents 返回当前页为并行触发的事件。
	ParallelEvents() []StartingEvent
}

// StartingEvent 是地图事件当前页的指令列表。
type StartingEvent struct {
	EventID int
	List    []*resource.EventCommand
	Info    MapEventInfo
}

// PictureParams 是显示/移动图片的参数。
type PictureParams struct {
	Name      string
	Origin    int
	X         int
	Y         int
	ScaleX    int
	ScaleY    int
	Opacity   int
	BlendMode int
}

// Screen 是画面效果与图片。
type Screen interface {
	StartFadeOut(duration int)
	StartFadeIn(duration int)
	StartTint(tone []int, duration int)
	StartFlash(color []int, duration int)
	StartShake(power, speed, duration int)
	ShowPicture(pictureID int, p PictureParams)
	MovePicture(pictureID int, p PictureParams, duration int)
	RotatePicture(pictureID, speed int)
	TintPicture(pictureID int, tone []int, duration int)
	ErasePicture(pictureID int)
	ChangeWeather(kind string, power, duration int)
}

// Audio 是声音播放。
type Audio interface {
	PlayBGM(a resource.AudioFile)
	FadeOutBGM(seconds int)
	PlayBGS(a resource.AudioFile)
	FadeOutBGS(seconds int)
	PlayME(a resource.AudioFile)
	PlaySE(a resource.AudioFile)
	StopSE()
}

// System 是系统设置与统计。
type System interface {
	SetBattleBGM(a resource.AudioFile)
	SetVictoryME(a resource.AudioFile)
	SetDefeatME(a resource.AudioFile)
	SetSaveEnabled(enabled bool)
	SetMenuEnabled(enabled bool)
	SetEncounterEnabled(enabled bool)
	SetFormationEnabled(enabled bool)
	SetWindowTone(tone []int)
	SaveBGM()
	ReplayBGM()
	IsSideView() bool
	// Playtime 以秒为单位。
	Playtime() int
	SaveCount() int
	BattleCount() int
	WinCount() int
	EscapeCount() int
}

// Timer 是计时器。
type Timer interface {
	Start(frames int)
	Stop()
	IsWorking() bool
	Seconds() int
}

// Scene 标识场景切换的目标。
type Scene string

const (
	SceneBattle   Scene = "battle"
	SceneShop     Scene = "shop"
	SceneName     Scene = "name"
	SceneMenu     Scene = "menu"
	SceneSave     Scene = "save"
	SceneGameover Scene = "gameover"
	SceneTitle    Scene = "title"
)

// Scenes 是场景栈。
type Scenes interface {
	IsSceneChanging() bool
	Push(scene Scene, args ...interface{})
	Goto(scene Scene)
}

// Battle 是战斗管理。
type Battle interface {
	Setup(troopID int, canEscape, canLose bool)
	// SetEventCallback 注册战斗结果回调（BattleWin/BattleEscape/BattleLose）。
	SetEventCallback(fn func(result int))
	ForceAction(b Battler)
	IsActionForced() bool
	IsTurnEnd() bool
	Abort()
}

// Video 是影片播放。
type Video interface {
	Play(src string)
	IsPlaying() bool
	FileExt() string
}

// Input 是按键状态。
type Input interface {
	IsPressed(button string) bool
}

// AssetKind 是 img/ 下的资源目录。
type AssetKind string

const (
	AssetFaces       AssetKind = "faces"
	AssetCharacters  AssetKind = "characters"
	AssetAnimations  AssetKind = "animations"
	AssetPictures    AssetKind = "pictures"
	AssetTilesets    AssetKind = "tilesets"
	AssetBattleback1 AssetKind = "battlebacks1"
	AssetBattleback2 AssetKind = "battlebacks2"
	AssetParallaxes  AssetKind = "parallaxes"
	AssetSvActors    AssetKind = "sv_actors"
	AssetSvEnemies   AssetKind = "sv_enemies"
	AssetEnemies     AssetKind = "enemies"
)

// Assets 是图片缓存。请求是非阻塞的，加载失败不会反馈给解释器。
type Assets interface {
	Request(kind AssetKind, name string, hue int)
	// Reserve 请求并保留资源直到 ReleaseReservation，返回是否已就绪。
	Reserve(kind AssetKind, name string, hue int, reservationID string) bool
	ReleaseReservation(reservationID string)
	IsReady() bool
}

// Temp 保存预约的公共事件。
type Temp interface {
	IsCommonEventReserved() bool
	ReservedCommonEventID() int
	ReserveCommonEvent(commonEventID int)
	ClearCommonEvent()
}

// World 汇总解释器需要的全部协作者与数据库。
type World struct {
	State   GameStateAccessor
	Data    *resource.ResourceLoader
	Message Message
	Actors  Actors
	Party   Party
	Troop   Troop
	Map     GameMap
	Player  Player
	Screen  Screen
	Audio   Audio
	System  System
	Timer   Timer
	Scenes  Scenes
	Battle  Battle
	Video   Video
	Input   Input
	Assets  Assets
	Temp    Temp
}
