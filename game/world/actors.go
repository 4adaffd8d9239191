package world

import (
	"math"

	"github.com/kasuganosora/rmmvinterp/game/interp"
	"github.com/kasuganosora/rmmvinterp/resource"
	"go.uber.org/zap"
)

const (
	defaultMaxLevel = 99
	// equip slots follow etypeId: 1 weapon, 2 shield, 3 head, 4 body, 5 accessory
	equipSlots = 5
)

// Actor is the runtime state of a database actor ($gameActors).
type Actor struct {
	battler
	w *World

	actorID        int
	name           string
	nickname       string
	profile        string
	classID        int
	level          int
	exp            map[int]int // by class
	skills         map[int]bool
	equips         [equipSlots]int
	paramPlus      [paramCount]int
	characterName  string
	characterIndex int
	faceName       string
	faceIndex      int
	battlerName    string
}

var _ interp.Actor = (*Actor)(nil)

func newActor(w *World, actorID int) *Actor {
	a := &Actor{w: w}
	a.battler = newBattler(a.param)
	a.Setup(actorID)
	return a
}

func (a *Actor) data() *resource.Actor {
	if a.w.Data == nil {
		return nil
	}
	return a.w.Data.ActorByID(a.actorID)
}

func (a *Actor) class() *resource.Class {
	if a.w.Data == nil {
		return nil
	}
	return a.w.Data.ClassByID(a.classID)
}

// Setup resets the actor to its database definition.
func (a *Actor) Setup(actorID int) {
	a.actorID = actorID
	a.exp = make(map[int]int)
	a.skills = make(map[int]bool)
	a.states = make(map[int]bool)
	a.paramPlus = [paramCount]int{}
	a.equips = [equipSlots]int{}
	a.forced = nil
	a.collapsed = false
	d := a.data()
	if d == nil {
		return
	}
	a.name, a.nickname, a.profile = d.Name, d.Nickname, d.Profile
	a.classID = d.ClassID
	a.level = max(d.InitialLevel, 1)
	a.characterName, a.characterIndex = d.CharacterName, d.CharacterIndex
	a.faceName, a.faceIndex = d.FaceName, d.FaceIndex
	a.battlerName = d.BattlerName
	for i, id := range d.Equips {
		if i < equipSlots {
			a.equips[i] = id
		}
	}
	a.exp[a.classID] = a.expForLevel(a.level)
	a.learnUpTo(a.level)
	a.RecoverAll()
}

func (a *Actor) param(paramID int) int {
	v := a.class().ParamAt(paramID, a.level) + a.paramPlus[paramID]
	if a.w.Data == nil {
		return v
	}
	for slot, id := range a.equips {
		if id == 0 {
			continue
		}
		var params []int
		if slot == 0 {
			if wpn := a.w.Data.WeaponByID(id); wpn != nil {
				params = wpn.Params
			}
		} else if arm := a.w.Data.ArmorByID(id); arm != nil {
			params = arm.Params
		}
		if paramID < len(params) {
			v += params[paramID]
		}
	}
	return v
}

func (a *Actor) ActorID() int          { return a.actorID }
func (a *Actor) Name() string          { return a.name }
func (a *Actor) SetName(name string)   { a.name = name }
func (a *Actor) SetNickname(n string)  { a.nickname = n }
func (a *Actor) SetProfile(p string)   { a.profile = p }
func (a *Actor) Level() int            { return a.level }
func (a *Actor) IsClass(id int) bool   { return a.classID == id }
func (a *Actor) HasSkill(id int) bool  { return a.skills[id] }
func (a *Actor) LearnSkill(id int)     { a.skills[id] = true }
func (a *Actor) ForgetSkill(id int)    { delete(a.skills, id) }
func (a *Actor) CharacterName() string { return a.characterName }

// Nickname returns the actor nickname.
func (a *Actor) Nickname() string { return a.nickname }

// Profile returns the actor profile text.
func (a *Actor) Profile() string { return a.profile }

// ClassID returns the current class.
func (a *Actor) ClassID() int { return a.classID }

// FaceName returns the face image name.
func (a *Actor) FaceName() string { return a.faceName }

// BattlerName returns the side-view battler image name.
func (a *Actor) BattlerName() string { return a.battlerName }

func (a *Actor) maxLevel() int {
	if d := a.data(); d != nil && d.MaxLevel > 0 {
		return d.MaxLevel
	}
	return defaultMaxLevel
}

// expForLevel is the RMMV experience curve of the current class.
func (a *Actor) expForLevel(level int) int {
	c := a.class()
	basis, extra, accA, accB := 30.0, 20.0, 30.0, 30.0
	if c != nil && len(c.ExpParams) >= 4 {
		basis, extra = float64(c.ExpParams[0]), float64(c.ExpParams[1])
		accA, accB = float64(c.ExpParams[2]), float64(c.ExpParams[3])
	}
	lv := float64(level)
	return int(math.Round(basis*math.Pow(lv-1, 0.9+accA/250)*lv*(lv+1)/
		(6+math.Pow(lv, 2)/50/accB) + (lv-1)*extra))
}

func (a *Actor) CurrentExp() int { return a.exp[a.classID] }

// ChangeExp sets the experience and levels up or down to match.
func (a *Actor) ChangeExp(exp int, show bool) {
	a.exp[a.classID] = max(exp, 0)
	last := a.level
	for a.level < a.maxLevel() && a.CurrentExp() >= a.expForLevel(a.level+1) {
		a.level++
		a.learnUpTo(a.level)
	}
	for a.level > 1 && a.CurrentExp() < a.expForLevel(a.level) {
		a.level--
	}
	if show && a.level > last {
		a.w.logger.Debug("actor level up", zap.Int("actor_id", a.actorID), zap.Int("level", a.level))
	}
	a.refresh()
}

func (a *Actor) ChangeLevel(level int, show bool) {
	level = clamp(level, 1, a.maxLevel())
	a.ChangeExp(a.expForLevel(level), show)
}

func (a *Actor) learnUpTo(level int) {
	if a.w.Data == nil {
		return
	}
	for _, id := range a.w.Data.SkillsForLevel(a.classID, level) {
		a.skills[id] = true
	}
}

func (a *Actor) ChangeClass(classID int, keepExp bool) {
	if keepExp {
		a.exp[classID] = a.CurrentExp()
	}
	a.classID = classID
	a.ChangeExp(a.exp[classID], false)
}

func (a *Actor) HasWeapon(id int) bool { return a.equips[0] == id && id > 0 }

func (a *Actor) HasArmor(id int) bool {
	if id <= 0 {
		return false
	}
	for _, eq := range a.equips[1:] {
		if eq == id {
			return true
		}
	}
	return false
}

// Equips returns the equipped item IDs by slot.
func (a *Actor) Equips() [equipSlots]int { return a.equips }

// ChangeEquipByID equips itemID in the slot for etypeID, trading the item
// with the party inventory. Items the party does not hold are refused.
func (a *Actor) ChangeEquipByID(etypeID, itemID int) {
	slot := etypeID - 1
	if slot < 0 || slot >= equipSlots {
		return
	}
	kind := interp.ItemKindArmor
	if slot == 0 {
		kind = interp.ItemKindWeapon
	}
	party := a.w.Party
	if itemID > 0 && !party.HasItem(interp.ItemRef{Kind: kind, ID: itemID}, false) {
		return
	}
	if old := a.equips[slot]; old > 0 {
		party.GainItem(interp.ItemRef{Kind: kind, ID: old}, 1, false)
	}
	if itemID > 0 {
		party.GainItem(interp.ItemRef{Kind: kind, ID: itemID}, -1, false)
	}
	a.equips[slot] = itemID
	a.refresh()
}

func (a *Actor) discardEquip(kind interp.ItemKind, id int) bool {
	for slot, eq := range a.equips {
		if eq != id || id == 0 {
			continue
		}
		if (slot == 0) != (kind == interp.ItemKindWeapon) {
			continue
		}
		a.equips[slot] = 0
		a.refresh()
		return true
	}
	return false
}

func (a *Actor) AddParam(paramID, value int) {
	if paramID < 0 || paramID >= paramCount {
		return
	}
	a.paramPlus[paramID] += value
	a.refresh()
}

func (a *Actor) SetCharacterImage(name string, index int) {
	a.characterName, a.characterIndex = name, index
}

func (a *Actor) SetFaceImage(name string, index int) {
	a.faceName, a.faceIndex = name, index
}

func (a *Actor) SetBattlerImage(name string) { a.battlerName = name }

// Actors lazily creates actors on first access ($gameActors).
type Actors struct {
	w      *World
	actors map[int]*Actor
}

func newActors(w *World) *Actors {
	return &Actors{w: w, actors: make(map[int]*Actor)}
}

// Actor returns the actor, or an untyped nil when the database lacks it.
func (as *Actors) Actor(actorID int) interp.Actor {
	if a := as.get(actorID); a != nil {
		return a
	}
	return nil
}

func (as *Actors) get(actorID int) *Actor {
	if as.w.Data == nil || as.w.Data.ActorByID(actorID) == nil {
		return nil
	}
	a, ok := as.actors[actorID]
	if !ok {
		a = newActor(as.w, actorID)
		as.actors[actorID] = a
	}
	return a
}
