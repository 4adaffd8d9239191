// Package interp 在服务端执行 RPG Maker MV 的事件指令列表：扁平缩进控制流、
// 公共事件调用栈、资源预取，以及驱动地图、并行与战斗事件的 Host。
package interp

import (
	"context"
	"math/rand/v2"

	"github.com/google/uuid"
	"github.com/kasuganosora/rmmvinterp/game/script"
	"github.com/kasuganosora/rmmvinterp/plugin/hook"
	"github.com/kasuganosora/rmmvinterp/resource"
	"go.uber.org/zap"
)

// MaxDepth 公共事件嵌套调用上限。
const MaxDepth = 100

// DefaultMaxCommandsPerTick 单帧指令预算的默认值。
const DefaultMaxCommandsPerTick = 100000

// ScriptEngine 执行脚本指令与脚本操作数。game/script 的 Sandbox 与 ExprEngine 都实现此接口。
type ScriptEngine interface {
	Eval(ctx context.Context, src string, sc *script.ScriptContext) (interface{}, error)
	Exec(ctx context.Context, src string, sc *script.ScriptContext) error
}

// Options 是解释器链共享的配置。
type Options struct {
	Logger  *zap.Logger
	Script  ScriptEngine
	Hooks   *hook.HookCenter
	Metrics *Metrics
	// MaxCommandsPerTick 单帧内最多执行的指令数，用尽后本帧结束。
	MaxCommandsPerTick int
	// RandomInt 返回 [0, max) 的随机数。
	RandomInt func(max int) int
	// NewReservationID 生成图片保留 ID（更换图块组）。
	NewReservationID func() string
}

func (o *Options) withDefaults() *Options {
	out := Options{}
	if o != nil {
		out = *o
	}
	if out.Logger == nil {
		out.Logger = zap.NewNop()
	}
	if out.MaxCommandsPerTick <= 0 {
		out.MaxCommandsPerTick = DefaultMaxCommandsPerTick
	}
	if out.RandomInt == nil {
		out.RandomInt = func(max int) int {
			if max <= 0 {
				return 0
			}
			return rand.IntN(max)
		}
	}
	if out.NewReservationID == nil {
		out.NewReservationID = uuid.NewString
	}
	return &out
}

// handler 执行一条指令。返回 false 表示本帧结束且不前进指令指针。
type handler func(it *Interpreter, ctx context.Context) (bool, error)

// Interpreter 逐帧执行一个事件指令列表。
type Interpreter struct {
	w     *World
	opts  *Options
	depth int

	mapID     int
	eventID   int
	list      []*resource.EventCommand
	index     int
	waitCount int
	waitMode  WaitMode
	comments  []string
	eventInfo EventInfo
	character Character
	child     *Interpreter

	// branch 按缩进保存分支结果：条件分支为 bool，选项与战斗结果为 int。
	branch map[int]interface{}
	params []interface{}
	indent int

	imageReservationID string
}

// New 创建深度为 depth 的解释器。depth 达到 MaxDepth 时返回 ErrCallDepthExceeded。
func New(w *World, depth int, opts *Options) (*Interpreter, error) {
	if depth >= MaxDepth {
		return nil, ErrCallDepthExceeded
	}
	o := opts.withDefaults()
	o.Metrics.depth(depth)
	return newWithOptions(w, depth, o), nil
}

func newWithOptions(w *World, depth int, o *Options) *Interpreter {
	return &Interpreter{
		w:      w,
		opts:   o,
		depth:  depth,
		branch: make(map[int]interface{}),
	}
}

// Clear 重置执行状态，分支表保留。
func (it *Interpreter) Clear() {
	it.mapID = 0
	it.eventID = 0
	it.list = nil
	it.index = 0
	it.waitCount = 0
	it.waitMode = WaitNone
	it.comments = nil
	it.eventInfo = nil
	it.character = nil
	it.child = nil
}

// Setup 载入指令列表并预取其引用的图片。
func (it *Interpreter) Setup(list []*resource.EventCommand, eventID int) {
	it.Clear()
	if it.w.Map != nil {
		it.mapID = it.w.Map.MapID()
	}
	it.eventID = eventID
	it.list = list
	Prefetch(context.Background(), it.w, it.opts.Hooks, list, nil)
}

// SetupReservedCommonEvent 载入预约的公共事件。没有预约时返回 false。
func (it *Interpreter) SetupReservedCommonEvent() bool {
	if it.w.Temp == nil || !it.w.Temp.IsCommonEventReserved() {
		return false
	}
	id := it.w.Temp.ReservedCommonEventID()
	var list []*resource.EventCommand
	if ce := it.commonEvent(id); ce != nil {
		list = ce.List
	}
	it.Setup(list, 0)
	it.SetEventInfo(CommonEventInfo{CommonEventID: id})
	it.w.Temp.ClearCommonEvent()
	return true
}

func (it *Interpreter) EventID() int { return it.eventID }

func (it *Interpreter) SetEventInfo(info EventInfo) { it.eventInfo = info }

func (it *Interpreter) EventInfo() EventInfo { return it.eventInfo }

// Depth 返回调用深度，顶层为 0。
func (it *Interpreter) Depth() int { return it.depth }

// Index 返回当前指令位置。
func (it *Interpreter) Index() int { return it.index }

// WaitMode 返回当前等待模式。
func (it *Interpreter) WaitMode() WaitMode { return it.waitMode }

// Comments 返回最近一条注释指令的内容。
func (it *Interpreter) Comments() []string { return it.comments }

// Child 返回正在运行的公共事件子解释器。
func (it *Interpreter) Child() *Interpreter { return it.child }

// IsRunning 报告是否载入了指令列表。空列表也视为运行中，下一次执行时终止。
func (it *Interpreter) IsRunning() bool { return it.list != nil }

func (it *Interpreter) isOnCurrentMap() bool {
	return it.w.Map != nil && it.mapID == it.w.Map.MapID()
}

// Terminate 结束当前列表。
func (it *Interpreter) Terminate() {
	it.list = nil
	it.comments = nil
}

// Update 执行一帧：在等待、子解释器运行、场景切换或指令要求暂停之前
// 连续执行指令。返回的 *Error 附带出错位置。
func (it *Interpreter) Update(ctx context.Context) error {
	budget := it.opts.MaxCommandsPerTick
	for it.IsRunning() {
		if err := ctx.Err(); err != nil {
			return err
		}
		running, err := it.updateChild(ctx)
		if err != nil {
			return err
		}
		if running || it.updateWait() {
			break
		}
		if it.w.Scenes != nil && it.w.Scenes.IsSceneChanging() {
			break
		}
		cont, err := it.executeCommand(ctx)
		if err != nil {
			return err
		}
		if !cont {
			break
		}
		if budget--; budget <= 0 {
			it.opts.Logger.Warn("command budget exhausted, yielding tick",
				append(infoFields(it.eventInfo),
					zap.Int("index", it.index),
					zap.Int("budget", it.opts.MaxCommandsPerTick))...)
			it.opts.Metrics.fuseTrip()
			break
		}
	}
	return nil
}

func (it *Interpreter) updateChild(ctx context.Context) (bool, error) {
	if it.child == nil {
		return false, nil
	}
	if err := it.child.Update(ctx); err != nil {
		return true, err
	}
	if it.child.IsRunning() {
		return true, nil
	}
	it.child = nil
	return false, nil
}

func (it *Interpreter) currentCommand() *resource.EventCommand {
	if it.index < 0 || it.index >= len(it.list) {
		return nil
	}
	return it.list[it.index]
}

func (it *Interpreter) nextEventCode() int {
	i := it.index + 1
	if i < 0 || i >= len(it.list) || it.list[i] == nil {
		return 0
	}
	return it.list[i].Code
}

func (it *Interpreter) executeCommand(ctx context.Context) (bool, error) {
	cmd := it.currentCommand()
	if cmd == nil {
		it.Terminate()
		return true, nil
	}
	it.params = cmd.Parameters
	it.indent = cmd.Indent
	if fn, ok := dispatch[cmd.Code]; ok {
		it.opts.Metrics.command(cmd.Code)
		cont, err := fn(it, ctx)
		if err != nil {
			ie := it.enrich(err)
			it.opts.Metrics.error(ie.EventCommand)
			return false, ie
		}
		if !cont {
			return false, nil
		}
	}
	it.index++
	return true, nil
}

// setupChild 以 depth+1 创建子解释器执行公共事件。
func (it *Interpreter) setupChild(list []*resource.EventCommand, eventID, commonEventID int) error {
	if it.depth+1 >= MaxDepth {
		return ErrCallDepthExceeded
	}
	it.opts.Metrics.depth(it.depth + 1)
	child := newWithOptions(it.w, it.depth+1, it.opts)
	child.Setup(list, eventID)
	child.SetEventInfo(CommonEventInfo{CommonEventID: commonEventID})
	it.child = child
	return nil
}

func (it *Interpreter) commonEvent(id int) *resource.CommonEvent {
	if it.w.Data == nil {
		return nil
	}
	return it.w.Data.CommonEventByID(id)
}

// ---- 参数读取 ----

func (it *Interpreter) pInt(i int) int                  { return resource.ParamInt(it.params, i) }
func (it *Interpreter) pStr(i int) string               { return resource.ParamStr(it.params, i) }
func (it *Interpreter) pBool(i int) bool                { return resource.ParamBool(it.params, i) }
func (it *Interpreter) pInts(i int) []int               { return resource.ParamInts(it.params, i) }
func (it *Interpreter) pHas(i int) bool                 { return i < len(it.params) }
func (it *Interpreter) pAudio(i int) resource.AudioFile { return resource.ParamAudio(it.params, i) }

// ---- 角色迭代 ----

func (it *Interpreter) inBattle() bool {
	return it.w.Party != nil && it.w.Party.InBattle()
}

// characterFor 返回 param 指定的地图角色：-1 为玩家，0 为本事件。战斗中为 nil。
func (it *Interpreter) characterFor(param int) Character {
	switch {
	case it.inBattle():
		return nil
	case param < 0:
		if it.w.Player == nil {
			return nil
		}
		return it.w.Player
	case it.isOnCurrentMap():
		id := param
		if id == 0 {
			id = it.eventID
		}
		return it.w.Map.Event(id)
	}
	return nil
}

func (it *Interpreter) iterateActorID(param int, fn func(a Actor)) {
	if param == 0 {
		for _, a := range it.w.Party.Members() {
			fn(a)
		}
		return
	}
	if a := it.w.Actors.Actor(param); a != nil {
		fn(a)
	}
}

// iterateActorEx：param1 为 0 时 param2 是角色 ID，否则 param2 是存放角色 ID 的变量。
func (it *Interpreter) iterateActorEx(param1, param2 int, fn func(a Actor)) {
	if param1 == 0 {
		it.iterateActorID(param2, fn)
		return
	}
	it.iterateActorID(it.w.State.GetVariable(param2), fn)
}

func (it *Interpreter) iterateActorIndex(param int, fn func(a Actor)) {
	members := it.w.Party.Members()
	if param < 0 {
		for _, a := range members {
			fn(a)
		}
		return
	}
	if param < len(members) && members[param] != nil {
		fn(members[param])
	}
}

func (it *Interpreter) iterateEnemyIndex(param int, fn func(e Enemy)) {
	if it.w.Troop == nil {
		return
	}
	members := it.w.Troop.Members()
	if param < 0 {
		for _, e := range members {
			fn(e)
		}
		return
	}
	if param < len(members) && members[param] != nil {
		fn(members[param])
	}
}

func (it *Interpreter) iterateBattler(param1, param2 int, fn func(b Battler)) {
	if !it.inBattle() {
		return
	}
	if param1 == 0 {
		it.iterateEnemyIndex(param2, func(e Enemy) { fn(e) })
		return
	}
	it.iterateActorID(param2, func(a Actor) { fn(a) })
}

// operateValue：operandType 为 0 时是常量，否则读变量；operation 非 0 时取负。
func (it *Interpreter) operateValue(operation, operandType, operand int) int {
	value := operand
	if operandType != 0 {
		value = it.w.State.GetVariable(operand)
	}
	if operation != 0 {
		return -value
	}
	return value
}

// changeHP 不允许死亡时至少保留 1 点 HP。
func changeHP(target Battler, value int, allowDeath bool) {
	if !target.IsAlive() {
		return
	}
	if !allowDeath && target.HP() <= -value {
		value = 1 - target.HP()
	}
	target.GainHP(value)
	if target.IsDead() {
		target.PerformCollapse()
	}
}

// scriptContext 把游戏状态暴露给脚本引擎。
func (it *Interpreter) scriptContext() *script.ScriptContext {
	st := it.w.State
	return &script.ScriptContext{
		GetVariable:   st.GetVariable,
		SetVariable:   st.SetVariable,
		GetSwitch:     st.GetSwitch,
		SetSwitch:     st.SetSwitch,
		GetSelfSwitch: st.GetSelfSwitch,
		SetSelfSwitch: st.SetSelfSwitch,
		RandomInt:     it.opts.RandomInt,
		MapID:         it.mapID,
		EventID:       it.eventID,
	}
}
