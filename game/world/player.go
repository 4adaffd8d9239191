package world

import (
	"github.com/kasuganosora/rmmvinterp/game/interp"
)

// Player is the party leader on the map.
type Player struct {
	*Character

	transferring  bool
	newMapID      int
	newX, newY    int
	newDirection  int
	fadeType      int
	vehicleKind   int // -1 = walking
	followersOn   bool
	gathering     bool
	encounterLeft int
}

var _ interp.Player = (*Player)(nil)

func newPlayer(w *World) *Player {
	return &Player{Character: newCharacter(w), vehicleKind: -1, followersOn: true}
}

func (p *Player) IsTransferring() bool { return p.transferring }

func (p *Player) ReserveTransfer(mapID, x, y, d, fadeType int) {
	p.transferring = true
	p.newMapID = mapID
	p.newX, p.newY = x, y
	p.newDirection = d
	p.fadeType = fadeType
}

// performTransfer moves the player to the reserved location, loading the
// new map when it differs from the current one.
func (p *Player) performTransfer() {
	if !p.transferring {
		return
	}
	p.SetDirection(p.newDirection)
	if p.newMapID != p.w.Map.MapID() {
		p.w.Map.Setup(p.newMapID)
	}
	p.Locate(p.newX, p.newY)
	if v := p.vehicle(); v != nil {
		v.SetLocation(p.newMapID, p.newX, p.newY)
	}
	p.Refresh()
	p.transferring = false
}

func (p *Player) vehicle() *Vehicle {
	if p.vehicleKind < 0 {
		return nil
	}
	return p.w.Map.vehicles[p.vehicleKind]
}

// MakeEncounterCount rolls the steps until the next random encounter.
func (p *Player) MakeEncounterCount() {
	n := 30
	if d := p.w.Map.data; d != nil && d.EncounterStep > 0 {
		n = d.EncounterStep
	}
	p.encounterLeft = p.w.randIntN(n) + p.w.randIntN(n) + 1
}

// EncounterCount returns the remaining steps before an encounter.
func (p *Player) EncounterCount() int { return p.encounterLeft }

// MakeEncounterTroopID picks a troop from the map encounter list weighted
// by entry weight, restricted to entries valid for the current region.
func (p *Player) MakeEncounterTroopID() int {
	d := p.w.Map.data
	if d == nil {
		return 0
	}
	region := d.RegionID(p.x, p.y)
	total := 0
	var candidates []int
	for i, enc := range d.EncounterList {
		if p.meetsEncounterRegion(enc.RegionSet, region) && enc.Weight > 0 {
			candidates = append(candidates, i)
			total += enc.Weight
		}
	}
	if total == 0 {
		return 0
	}
	r := p.w.randIntN(total)
	for _, i := range candidates {
		r -= d.EncounterList[i].Weight
		if r < 0 {
			return d.EncounterList[i].TroopID
		}
	}
	return 0
}

func (p *Player) meetsEncounterRegion(set []int, region int) bool {
	if len(set) == 0 {
		return true
	}
	for _, r := range set {
		if r == region {
			return true
		}
	}
	return false
}

// GetOnOffVehicle leaves the current vehicle, or boards a vehicle parked
// on the player tile or the tile in front.
func (p *Player) GetOnOffVehicle() {
	if p.vehicleKind >= 0 {
		p.vehicleKind = -1
		p.SetTransparent(false)
		p.w.System.ReplayBGM()
		return
	}
	dx, dy := dirDelta(p.dir)
	for kind, v := range p.w.Map.vehicles {
		if v.mapID != p.w.Map.MapID() {
			continue
		}
		onTile := v.x == p.x && v.y == p.y
		ahead := v.x == p.x+dx && v.y == p.y+dy
		if (kind == VehicleAirship && onTile) || (kind != VehicleAirship && ahead) {
			p.vehicleKind = kind
			p.Locate(v.x, v.y)
			p.SetTransparent(true)
			p.w.System.SaveBGM()
			p.w.Audio.PlayBGM(v.bgm)
			return
		}
	}
}

func (p *Player) InVehicle(kind int) bool { return p.vehicleKind == kind }

// InAnyVehicle reports whether the player rides any vehicle.
func (p *Player) InAnyVehicle() bool { return p.vehicleKind >= 0 }

func (p *Player) ShowFollowers() { p.followersOn = true }
func (p *Player) HideFollowers() { p.followersOn = false }

func (p *Player) GatherFollowers() {
	if p.followersOn && p.w.Party.Size() > 1 {
		p.gathering = true
	}
}

func (p *Player) AreFollowersGathering() bool { return p.gathering }

// FollowerCharacterNames returns the walking sprites of party members
// after the leader.
func (p *Player) FollowerCharacterNames() []string {
	members := p.w.Party.Members()
	if len(members) <= 1 {
		return nil
	}
	names := make([]string, 0, len(members)-1)
	for _, a := range members[1:] {
		names = append(names, a.CharacterName())
	}
	return names
}

// Refresh takes the sprite of the party leader.
func (p *Player) Refresh() {
	members := p.w.Party.Members()
	if len(members) == 0 {
		p.setImage("", 0)
		return
	}
	if a, ok := members[0].(*Actor); ok {
		p.setImage(a.CharacterName(), a.characterIndex)
	}
}

func (p *Player) tick() {
	p.gathering = false
	p.Character.tick()
	if v := p.vehicle(); v != nil {
		v.Locate(p.x, p.y)
	}
}

// onMoved counts a step and starts touch events at the new tile.
func (p *Player) onMoved() {
	if p.transferring {
		return
	}
	p.w.Party.increaseSteps()
	p.w.Map.checkTouch(p.x, p.y)
}
