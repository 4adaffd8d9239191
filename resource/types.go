package resource

import "encoding/json"

// ---- RMMV Data Structures ----

// AudioFile is the {name, volume, pitch, pan} record RMMV uses for BGM/BGS/ME/SE.
type AudioFile struct {
	Name   string `json:"name"`
	Volume int    `json:"volume"`
	Pitch  int    `json:"pitch"`
	Pan    int    `json:"pan"`
}

// VehicleData is the System.json definition of boat / ship / airship.
type VehicleData struct {
	BGM            AudioFile `json:"bgm"`
	CharacterIndex int       `json:"characterIndex"`
	CharacterName  string    `json:"characterName"`
	StartMapID     int       `json:"startMapId"`
	StartX         int       `json:"startX"`
	StartY         int       `json:"startY"`
}

type SystemData struct {
	GameTitle    string      `json:"gameTitle"`
	CurrencyUnit string      `json:"currencyUnit"`
	StartMapID   int         `json:"startMapId"`
	StartX       int         `json:"startX"`
	StartY       int         `json:"startY"`
	PartyMembers []int       `json:"partyMembers"`
	OptSideView  bool        `json:"optSideView"`
	BattleBgm    AudioFile   `json:"battleBgm"`
	VictoryMe    AudioFile   `json:"victoryMe"`
	DefeatMe     AudioFile   `json:"defeatMe"`
	WindowTone   []int       `json:"windowTone"`
	Boat         VehicleData `json:"boat"`
	Ship         VehicleData `json:"ship"`
	Airship      VehicleData `json:"airship"`
	Switches     []string    `json:"switches"`
	Variables    []string    `json:"variables"`
}

type Actor struct {
	ID             int    `json:"id"`
	Name           string `json:"name"`
	Nickname       string `json:"nickname"`
	Profile        string `json:"profile"`
	ClassID        int    `json:"classId"`
	InitialLevel   int    `json:"initialLevel"`
	MaxLevel       int    `json:"maxLevel"`
	CharacterName  string `json:"characterName"`
	CharacterIndex int    `json:"characterIndex"`
	FaceName       string `json:"faceName"`
	FaceIndex      int    `json:"faceIndex"`
	BattlerName    string `json:"battlerName"`
	Equips         []int  `json:"equips"`
}

// ClassLearning represents a skill learned at a certain level.
type ClassLearning struct {
	Level   int    `json:"level"`
	SkillID int    `json:"skillId"`
	Note    string `json:"note"`
}

// Class params is a 2D array: [param_id][level] = value
// params[0] = max HP, [1] = max MP, [2] = ATK, [3] = DEF, [4] = MAT, [5] = MDF, [6] = AGI, [7] = LUK
type Class struct {
	ID        int             `json:"id"`
	Name      string          `json:"name"`
	Params    [][]int         `json:"params"`
	Learnings []ClassLearning `json:"learnings"`
	// ExpParams is [basis, extra, accelerationA, accelerationB].
	ExpParams []int `json:"expParams"`
}

// ParamAt returns the class parameter for the given level, or 0 if absent.
func (c *Class) ParamAt(paramID, level int) int {
	if c == nil || paramID < 0 || paramID >= len(c.Params) {
		return 0
	}
	row := c.Params[paramID]
	if level < 0 || level >= len(row) {
		return 0
	}
	return row[level]
}

type Skill struct {
	ID        int    `json:"id"`
	Name      string `json:"name"`
	MPCost    int    `json:"mpCost"`
	IconIndex int    `json:"iconIndex"`
}

type Item struct {
	ID         int    `json:"id"`
	Name       string `json:"name"`
	Price      int    `json:"price"`
	Consumable bool   `json:"consumable"`
}

type Weapon struct {
	ID      int    `json:"id"`
	Name    string `json:"name"`
	Price   int    `json:"price"`
	Params  []int  `json:"params"`
	EtypeID int    `json:"etypeId"`
	WtypeID int    `json:"wtypeId"`
}

type Armor struct {
	ID      int    `json:"id"`
	Name    string `json:"name"`
	Price   int    `json:"price"`
	Params  []int  `json:"params"`
	EtypeID int    `json:"etypeId"` // 1=shield,2=helmet,3=body,4=accessory
	AtypeID int    `json:"atypeId"`
}

type Enemy struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	BattlerName string `json:"battlerName"`
	BattlerHue  int    `json:"battlerHue"`
	Params      []int  `json:"params"` // mhp, mmp, atk, def, mat, mdf, agi, luk
	Exp         int    `json:"exp"`
	Gold        int    `json:"gold"`
}

// TroopMember is one enemy slot of a troop.
type TroopMember struct {
	EnemyID int  `json:"enemyId"`
	X       int  `json:"x"`
	Y       int  `json:"y"`
	Hidden  bool `json:"hidden"`
}

// TroopConditions are the activation conditions of a battle event page.
type TroopConditions struct {
	TurnEnding  bool `json:"turnEnding"`
	TurnValid   bool `json:"turnValid"`
	TurnA       int  `json:"turnA"`
	TurnB       int  `json:"turnB"`
	EnemyValid  bool `json:"enemyValid"`
	EnemyIndex  int  `json:"enemyIndex"`
	EnemyHp     int  `json:"enemyHp"`
	ActorValid  bool `json:"actorValid"`
	ActorID     int  `json:"actorId"`
	ActorHp     int  `json:"actorHp"`
	SwitchValid bool `json:"switchValid"`
	SwitchID    int  `json:"switchId"`
}

// Any reports whether at least one condition is set. Pages with no
// condition never run.
func (c TroopConditions) Any() bool {
	return c.TurnEnding || c.TurnValid || c.EnemyValid || c.ActorValid || c.SwitchValid
}

// TroopPage is one battle event page. Span: 0=battle, 1=turn, 2=moment.
type TroopPage struct {
	Conditions TroopConditions `json:"conditions"`
	Span       int             `json:"span"`
	List       []*EventCommand `json:"list"`
}

type Troop struct {
	ID      int           `json:"id"`
	Name    string        `json:"name"`
	Members []TroopMember `json:"members"`
	Pages   []*TroopPage  `json:"pages"`
}

type State struct {
	ID        int    `json:"id"`
	Name      string `json:"name"`
	IconIndex int    `json:"iconIndex"`
}

type Animation struct {
	ID             int    `json:"id"`
	Name           string `json:"name"`
	Animation1Name string `json:"animation1Name"`
	Animation1Hue  int    `json:"animation1Hue"`
	Animation2Name string `json:"animation2Name"`
	Animation2Hue  int    `json:"animation2Hue"`
	// Frames is kept raw; only its length is used.
	Frames []json.RawMessage `json:"frames"`
}

// EventCommand is a single RMMV event command.
// Parameters is []interface{} because RMMV mixes int/string/bool.
type EventCommand struct {
	Code       int           `json:"code"`
	Indent     int           `json:"indent"`
	Parameters []interface{} `json:"parameters"`
}

// EventPageConditions holds the activation conditions for an event page.
type EventPageConditions struct {
	Switch1Valid    bool   `json:"switch1Valid"`
	Switch1ID       int    `json:"switch1Id"`
	Switch2Valid    bool   `json:"switch2Valid"`
	Switch2ID       int    `json:"switch2Id"`
	VariableValid   bool   `json:"variableValid"`
	VariableID      int    `json:"variableId"`
	VariableValue   int    `json:"variableValue"`
	SelfSwitchValid bool   `json:"selfSwitchValid"`
	SelfSwitchCh    string `json:"selfSwitchCh"`
	ActorValid      bool   `json:"actorValid"`
	ActorID         int    `json:"actorId"`
	ItemValid       bool   `json:"itemValid"`
	ItemID          int    `json:"itemId"`
}

// EventImage holds the character sprite image for an event page.
type EventImage struct {
	TileID         int    `json:"tileId"`
	CharacterName  string `json:"characterName"`
	CharacterIndex int    `json:"characterIndex"`
	Direction      int    `json:"direction"`
	Pattern        int    `json:"pattern"`
}

// MoveCommand is a single command in a move route.
type MoveCommand struct {
	Code       int           `json:"code"`
	Parameters []interface{} `json:"parameters"`
}

// RouteChangeImage is the move-route command that swaps the character sheet.
const RouteChangeImage = 41

// MoveRoute defines a custom movement path for an event.
type MoveRoute struct {
	List      []*MoveCommand `json:"list"`
	Repeat    bool           `json:"repeat"`
	Skippable bool           `json:"skippable"`
	Wait      bool           `json:"wait"`
}

// EventPage is one page of an event's command list.
// Trigger: 0=ActionButton, 1=PlayerTouch, 2=EventTouch, 3=Autorun, 4=Parallel
type EventPage struct {
	Conditions    EventPageConditions `json:"conditions"`
	Image         EventImage          `json:"image"`
	Trigger       int                 `json:"trigger"`
	List          []*EventCommand     `json:"list"`
	MoveType      int                 `json:"moveType"`
	MoveSpeed     int                 `json:"moveSpeed"`
	MoveFrequency int                 `json:"moveFrequency"`
	MoveRoute     *MoveRoute          `json:"moveRoute"`
	PriorityType  int                 `json:"priorityType"`
	Through       bool                `json:"through"`
}

// MapEvent is an event object placed on a map.
type MapEvent struct {
	ID    int          `json:"id"`
	Name  string       `json:"name"`
	Note  string       `json:"note"`
	X     int          `json:"x"`
	Y     int          `json:"y"`
	Pages []*EventPage `json:"pages"`
}

type MapInfo struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	ParentID int    `json:"parentId"`
}

// Common event triggers.
const (
	TriggerNone     = 0
	TriggerAutorun  = 1
	TriggerParallel = 2
)

type CommonEvent struct {
	ID       int             `json:"id"`
	Name     string          `json:"name"`
	Trigger  int             `json:"trigger"`
	SwitchID int             `json:"switchId"`
	List     []*EventCommand `json:"list"`
}

type Tileset struct {
	ID           int      `json:"id"`
	Name         string   `json:"name"`
	TilesetNames []string `json:"tilesetNames"`
	Flags        []int    `json:"flags"`
}
