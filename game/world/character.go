package world

import (
	"math"
	"strings"

	"github.com/kasuganosora/rmmvinterp/game/interp"
	"github.com/kasuganosora/rmmvinterp/resource"
	"go.uber.org/zap"
)

// RMMV directions
const (
	dirDown  = 2
	dirLeft  = 4
	dirRight = 6
	dirUp    = 8
)

const (
	tileSize       = 48
	balloonFrames  = 8*8 + 12
	animationRate  = 4
	objectShiftY   = 0
	characterShift = 6
)

// RMMV move route command codes.
const (
	moveRouteEnd        = 0
	moveDown            = 1
	moveLeft            = 2
	moveRight           = 3
	moveUp              = 4
	moveLowerLeft       = 5
	moveLowerRight      = 6
	moveUpperLeft       = 7
	moveUpperRight      = 8
	moveRandom          = 9
	moveToward          = 10
	moveAway            = 11
	moveForward         = 12
	moveBackward        = 13
	moveJump            = 14
	moveWait            = 15
	turnDown            = 16
	turnLeft            = 17
	turnRight           = 18
	turnUp              = 19
	turn90Right         = 20
	turn90Left          = 21
	turn180             = 22
	turn90RightOrLeft   = 23
	turnRandom          = 24
	turnToward          = 25
	turnAway            = 26
	routeSwitchOn       = 27
	routeSwitchOff      = 28
	routeDirFixOn       = 35
	routeDirFixOff      = 36
	routeThroughOn      = 37
	routeThroughOff     = 38
	routeTransparentOn  = 39
	routeTransparentOff = 40
	routeChangeImage    = resource.RouteChangeImage
	routePlaySE         = 44
	routeScript         = 45
)

// dx/dy for each direction.
func dirDelta(dir int) (dx, dy int) {
	switch dir {
	case dirDown:
		return 0, 1
	case dirLeft:
		return -1, 0
	case dirRight:
		return 1, 0
	case dirUp:
		return 0, -1
	}
	return 0, 0
}

// reverseDir returns the opposite RMMV direction.
func reverseDir(dir int) int {
	switch dir {
	case dirDown:
		return dirUp
	case dirUp:
		return dirDown
	case dirLeft:
		return dirRight
	case dirRight:
		return dirLeft
	}
	return dir
}

func turnRight90(dir int) int {
	switch dir {
	case dirDown:
		return dirLeft
	case dirLeft:
		return dirUp
	case dirRight:
		return dirDown
	case dirUp:
		return dirRight
	}
	return dir
}

func turnLeft90(dir int) int {
	switch dir {
	case dirDown:
		return dirRight
	case dirLeft:
		return dirDown
	case dirRight:
		return dirUp
	case dirUp:
		return dirLeft
	}
	return dir
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// Character is the map position and effect state shared by the player and
// map events. Movement is instantaneous: one route command per tick.
type Character struct {
	w *World

	x, y      int
	dir       int
	name      string
	index     int
	dirFix    bool
	through   bool
	invisible bool

	route      *resource.MoveRoute
	routeIndex int
	forcing    bool
	waitCount  int
	moveFailed bool
	callerInfo interp.EventInfo
	callerLine int

	animationID     int
	animationFrames int
	balloonID       int
	balloonFrames   int
}

var _ interp.Character = (*Character)(nil)

func newCharacter(w *World) *Character {
	return &Character{w: w, dir: dirDown}
}

func (c *Character) base() *Character { return c }

func (c *Character) X() int         { return c.x }
func (c *Character) Y() int         { return c.y }
func (c *Character) Direction() int { return c.dir }

// ScreenX is the sprite center in pixels relative to the map display origin.
func (c *Character) ScreenX() int {
	dx := 0.0
	if c.w != nil && c.w.Map != nil {
		dx = c.w.Map.displayX
	}
	return int(math.Round((float64(c.x)-dx)*tileSize + tileSize/2))
}

// ScreenY is the sprite foot in pixels relative to the map display origin.
func (c *Character) ScreenY() int {
	dy := 0.0
	if c.w != nil && c.w.Map != nil {
		dy = c.w.Map.displayY
	}
	shift := characterShift
	if strings.HasPrefix(c.name, "!") {
		shift = objectShiftY
	}
	return int(math.Round((float64(c.y)-dy)*tileSize+tileSize)) - shift
}

func (c *Character) Locate(x, y int) {
	c.x, c.y = x, y
}

func (c *Character) SetDirection(d int) {
	if !c.dirFix && d != 0 {
		c.dir = d
	}
}

// Swap exchanges positions with another character of this world.
func (c *Character) Swap(other interp.Character) {
	o, ok := other.(interface{ base() *Character })
	if !ok || o.base() == nil {
		return
	}
	ob := o.base()
	c.x, c.y, ob.x, ob.y = ob.x, ob.y, c.x, c.y
}

// CharacterName returns the sprite sheet name.
func (c *Character) CharacterName() string { return c.name }

// CharacterIndex returns the sprite index in the sheet.
func (c *Character) CharacterIndex() int { return c.index }

func (c *Character) setImage(name string, index int) {
	c.name, c.index = name, index
}

func (c *Character) ForceMoveRoute(route *resource.MoveRoute) {
	if route == nil {
		return
	}
	c.route = route
	c.routeIndex = 0
	c.forcing = true
	c.waitCount = 0
}

func (c *Character) IsMoveRouteForcing() bool { return c.forcing }

func (c *Character) SetCallerEventInfo(info interp.EventInfo, line int) {
	c.callerInfo, c.callerLine = info, line
}

func (c *Character) RequestAnimation(animationID int) {
	c.animationID = animationID
	frames := 1
	if c.w != nil && c.w.Data != nil {
		if a := c.w.Data.AnimationByID(animationID); a != nil {
			frames = len(a.Frames)*animationRate + 1
		}
	}
	c.animationFrames = frames
}

func (c *Character) IsAnimationPlaying() bool { return c.animationFrames > 0 }

func (c *Character) RequestBalloon(balloonID int) {
	c.balloonID = balloonID
	c.balloonFrames = balloonFrames
}

func (c *Character) IsBalloonPlaying() bool { return c.balloonFrames > 0 }

func (c *Character) SetTransparent(transparent bool) { c.invisible = transparent }

// IsTransparent reports whether the sprite is hidden.
func (c *Character) IsTransparent() bool { return c.invisible }

func (c *Character) tick() {
	if c.animationFrames > 0 {
		if c.animationFrames--; c.animationFrames == 0 {
			c.animationID = 0
		}
	}
	if c.balloonFrames > 0 {
		if c.balloonFrames--; c.balloonFrames == 0 {
			c.balloonID = 0
		}
	}
	if c.forcing {
		c.updateRoute()
	}
}

func (c *Character) updateRoute() {
	if c.waitCount > 0 {
		c.waitCount--
		return
	}
	if c.route == nil || c.routeIndex >= len(c.route.List) {
		c.forcing = false
		return
	}
	c.moveFailed = false
	cmd := c.route.List[c.routeIndex]
	if cmd != nil {
		if cmd.Code == moveRouteEnd {
			c.processRouteEnd()
			return
		}
		c.processMoveCommand(cmd)
	}
	if c.route.Skippable || !c.moveFailed {
		c.routeIndex++
		if c.route.Repeat && c.routeIndex >= len(c.route.List)-1 {
			c.routeIndex = 0
		}
	}
}

func (c *Character) processRouteEnd() {
	if c.route.Repeat {
		c.routeIndex = 0
		return
	}
	c.forcing = false
	c.route = nil
	c.routeIndex = 0
}

func (c *Character) processMoveCommand(cmd *resource.MoveCommand) {
	p := cmd.Parameters
	switch cmd.Code {
	case moveDown:
		c.moveStraight(dirDown)
	case moveLeft:
		c.moveStraight(dirLeft)
	case moveRight:
		c.moveStraight(dirRight)
	case moveUp:
		c.moveStraight(dirUp)
	case moveLowerLeft:
		c.moveDiagonal(dirLeft, dirDown)
	case moveLowerRight:
		c.moveDiagonal(dirRight, dirDown)
	case moveUpperLeft:
		c.moveDiagonal(dirLeft, dirUp)
	case moveUpperRight:
		c.moveDiagonal(dirRight, dirUp)
	case moveRandom:
		c.moveStraight(2 + 2*c.w.randIntN(4))
	case moveToward:
		c.moveTowardPlayer(false)
	case moveAway:
		c.moveTowardPlayer(true)
	case moveForward:
		c.moveStraight(c.dir)
	case moveBackward:
		fix := c.dirFix
		c.dirFix = true
		c.moveStraight(reverseDir(c.dir))
		c.dirFix = fix
	case moveJump:
		c.jump(resource.ParamInt(p, 0), resource.ParamInt(p, 1))
	case moveWait:
		c.waitCount = resource.ParamInt(p, 0) - 1
	case turnDown:
		c.SetDirection(dirDown)
	case turnLeft:
		c.SetDirection(dirLeft)
	case turnRight:
		c.SetDirection(dirRight)
	case turnUp:
		c.SetDirection(dirUp)
	case turn90Right:
		c.SetDirection(turnRight90(c.dir))
	case turn90Left:
		c.SetDirection(turnLeft90(c.dir))
	case turn180:
		c.SetDirection(reverseDir(c.dir))
	case turn90RightOrLeft:
		if c.w.randIntN(2) == 0 {
			c.SetDirection(turnRight90(c.dir))
		} else {
			c.SetDirection(turnLeft90(c.dir))
		}
	case turnRandom:
		c.SetDirection(2 + 2*c.w.randIntN(4))
	case turnToward, turnAway:
		if d := c.directionToPlayer(); d != 0 {
			if cmd.Code == turnAway {
				d = reverseDir(d)
			}
			c.SetDirection(d)
		}
	case routeSwitchOn:
		c.w.State.SetSwitch(resource.ParamInt(p, 0), true)
	case routeSwitchOff:
		c.w.State.SetSwitch(resource.ParamInt(p, 0), false)
	case routeDirFixOn:
		c.dirFix = true
	case routeDirFixOff:
		c.dirFix = false
	case routeThroughOn:
		c.through = true
	case routeThroughOff:
		c.through = false
	case routeTransparentOn:
		c.invisible = true
	case routeTransparentOff:
		c.invisible = false
	case routeChangeImage:
		c.setImage(resource.ParamStr(p, 0), resource.ParamInt(p, 1))
	case routePlaySE:
		c.w.Audio.PlaySE(resource.ParamAudio(p, 0))
	case routeScript:
		c.w.logger.Debug("move route script skipped", zap.String("script", resource.ParamStr(p, 0)))
	}
}

func (c *Character) canStand(x, y int) bool {
	if c.w.Map == nil || c.w.Map.data == nil {
		return true
	}
	return c.w.Map.data.Valid(x, y)
}

func (c *Character) moveStraight(d int) {
	c.SetDirection(d)
	dx, dy := dirDelta(d)
	if !c.canStand(c.x+dx, c.y+dy) {
		c.moveFailed = true
		return
	}
	c.x += dx
	c.y += dy
	c.w.onCharacterMoved(c)
}

func (c *Character) moveDiagonal(horz, vert int) {
	hx, _ := dirDelta(horz)
	_, vy := dirDelta(vert)
	if !c.canStand(c.x+hx, c.y+vy) {
		c.moveFailed = true
		return
	}
	c.x += hx
	c.y += vy
	switch c.dir {
	case reverseDir(horz):
		c.SetDirection(horz)
	case reverseDir(vert):
		c.SetDirection(vert)
	}
	c.w.onCharacterMoved(c)
}

func (c *Character) jump(dx, dy int) {
	switch {
	case abs(dx) > abs(dy) && dx < 0:
		c.SetDirection(dirLeft)
	case abs(dx) > abs(dy):
		c.SetDirection(dirRight)
	case dy < 0:
		c.SetDirection(dirUp)
	case dy > 0:
		c.SetDirection(dirDown)
	}
	c.x += dx
	c.y += dy
	c.w.onCharacterMoved(c)
}

// directionToPlayer picks the axis with greater distance, vertical if equal.
func (c *Character) directionToPlayer() int {
	if c.w.Player == nil || c.w.Player.base() == c {
		return 0
	}
	sx := c.x - c.w.Player.x
	sy := c.y - c.w.Player.y
	if sx == 0 && sy == 0 {
		return 0
	}
	if abs(sx) > abs(sy) {
		if sx > 0 {
			return dirLeft
		}
		return dirRight
	}
	if sy > 0 {
		return dirUp
	}
	return dirDown
}

func (c *Character) moveTowardPlayer(away bool) {
	d := c.directionToPlayer()
	if d == 0 {
		return
	}
	if away {
		d = reverseDir(d)
	}
	c.moveStraight(d)
}
