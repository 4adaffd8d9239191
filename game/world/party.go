package world

import (
	"github.com/kasuganosora/rmmvinterp/game/interp"
)

const (
	maxGold  = 99999999
	maxItems = 99
)

// Party is the player party with its inventory ($gameParty).
type Party struct {
	w       *World
	members []int
	gold    int
	steps   int
	items   [3]map[int]int // by interp.ItemKind
}

var _ interp.Party = (*Party)(nil)

func newParty(w *World) *Party {
	p := &Party{w: w}
	for i := range p.items {
		p.items[i] = make(map[int]int)
	}
	if w.Data != nil && w.Data.System != nil {
		for _, id := range w.Data.System.PartyMembers {
			if !p.hasMember(id) && w.Actors.get(id) != nil {
				p.members = append(p.members, id)
			}
		}
	}
	return p
}

func (p *Party) Members() []interp.Actor {
	out := make([]interp.Actor, 0, len(p.members))
	for _, id := range p.members {
		if a := p.w.Actors.get(id); a != nil {
			out = append(out, a)
		}
	}
	return out
}

// MemberIDs returns the actor IDs in party order.
func (p *Party) MemberIDs() []int {
	return append([]int(nil), p.members...)
}

func (p *Party) hasMember(actorID int) bool {
	for _, id := range p.members {
		if id == actorID {
			return true
		}
	}
	return false
}

func (p *Party) Size() int { return len(p.members) }

func (p *Party) InBattle() bool { return p.w.Battle != nil && p.w.Battle.active }

func (p *Party) Gold() int { return p.gold }

func (p *Party) GainGold(amount int) {
	p.gold = clamp(p.gold+amount, 0, maxGold)
}

func (p *Party) Steps() int { return p.steps }

func (p *Party) increaseSteps() { p.steps++ }

func (p *Party) NumItems(item interp.ItemRef) int {
	if item.Kind < 0 || int(item.Kind) >= len(p.items) {
		return 0
	}
	return p.items[item.Kind][item.ID]
}

func (p *Party) HasItem(item interp.ItemRef, includeEquip bool) bool {
	if p.NumItems(item) > 0 {
		return true
	}
	if includeEquip && item.Kind != interp.ItemKindItem {
		for _, m := range p.Members() {
			a := m.(*Actor)
			if (item.Kind == interp.ItemKindWeapon && a.HasWeapon(item.ID)) ||
				(item.Kind == interp.ItemKindArmor && a.HasArmor(item.ID)) {
				return true
			}
		}
	}
	return false
}

// GainItem adds or removes items. When includeEquip is set and the party
// holds fewer than removed, the rest is taken from members' equipment.
func (p *Party) GainItem(item interp.ItemRef, amount int, includeEquip bool) {
	if item.Kind < 0 || int(item.Kind) >= len(p.items) || item.ID <= 0 {
		return
	}
	n := p.items[item.Kind][item.ID] + amount
	if n > 0 {
		p.items[item.Kind][item.ID] = min(n, maxItems)
	} else {
		delete(p.items[item.Kind], item.ID)
	}
	if includeEquip && n < 0 {
		p.discardMembersEquip(item, -n)
	}
	p.w.Map.RequestRefresh()
}

func (p *Party) discardMembersEquip(item interp.ItemRef, amount int) {
	for _, m := range p.Members() {
		if amount <= 0 {
			return
		}
		if m.(*Actor).discardEquip(item.Kind, item.ID) {
			amount--
		}
	}
}

func (p *Party) AddActor(actorID int) {
	if p.hasMember(actorID) || p.w.Actors.get(actorID) == nil {
		return
	}
	p.members = append(p.members, actorID)
	p.onMembersChanged()
}

func (p *Party) RemoveActor(actorID int) {
	for i, id := range p.members {
		if id == actorID {
			p.members = append(p.members[:i], p.members[i+1:]...)
			p.onMembersChanged()
			return
		}
	}
}

func (p *Party) onMembersChanged() {
	if p.w.Player != nil {
		p.w.Player.Refresh()
	}
	if p.w.Map != nil {
		p.w.Map.RequestRefresh()
	}
}

// Inventory is the party inventory by kind for the debug API.
type Inventory struct {
	Gold    int         `json:"gold"`
	Items   map[int]int `json:"items"`
	Weapons map[int]int `json:"weapons"`
	Armors  map[int]int `json:"armors"`
}

// Inventory copies the inventory.
func (p *Party) Inventory() Inventory {
	cp := func(m map[int]int) map[int]int {
		out := make(map[int]int, len(m))
		for k, v := range m {
			out[k] = v
		}
		return out
	}
	return Inventory{
		Gold:    p.gold,
		Items:   cp(p.items[interp.ItemKindItem]),
		Weapons: cp(p.items[interp.ItemKindWeapon]),
		Armors:  cp(p.items[interp.ItemKindArmor]),
	}
}
