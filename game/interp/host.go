package interp

import (
	"context"
	"errors"
	"sync"

	"github.com/kasuganosora/rmmvinterp/resource"
	"go.uber.org/zap"
)

// Host 按 RMMV 的规则决定何时启动哪个事件，并每帧驱动所有解释器。
// 所有方法并发安全。
type Host struct {
	mu     sync.Mutex
	w      *World
	opts   *Options
	logger *zap.Logger

	main         *Interpreter
	testEvent    []*resource.EventCommand
	commonEvents map[int]*Interpreter // 并行公共事件，按公共事件 ID
	mapEvents    map[int]*Interpreter // 并行地图事件，按事件 ID

	troop      *Interpreter
	troopID    int
	eventFlags []bool

	frames  uint64
	lastErr error
}

// NewHost 创建宿主。
func NewHost(w *World, opts *Options) *Host {
	o := opts.withDefaults()
	return &Host{
		w:            w,
		opts:         o,
		logger:       o.Logger,
		main:         newWithOptions(w, 0, o),
		commonEvents: make(map[int]*Interpreter),
		mapEvents:    make(map[int]*Interpreter),
	}
}

// Main 返回地图主解释器。
func (h *Host) Main() *Interpreter { return h.main }

// QueueTestEvent 排队一个测试事件，主解释器空闲时执行。
func (h *Host) QueueTestEvent(list []*resource.EventCommand) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.testEvent = list
}

// ReserveCommonEvent 预约公共事件，主解释器空闲时优先执行。
func (h *Host) ReserveCommonEvent(id int) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.w.Data == nil || h.w.Data.CommonEventByID(id) == nil {
		return ErrNoCommonEvent
	}
	h.w.Temp.ReserveCommonEvent(id)
	return nil
}

// Update 执行一帧：主解释器、并行地图事件、并行公共事件。
// 任何解释器出错时该解释器被终止，错误被记录，其余解释器本帧仍会执行。
// 战斗中地图侧的解释器全部暂停，战斗事件由 UpdateBattle 驱动。
func (h *Host) Update(ctx context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.frames++
	if h.w.Party != nil && h.w.Party.InBattle() {
		return nil
	}

	var errs []error
	if err := h.updateMain(ctx); err != nil {
		errs = append(errs, err)
	}
	if err := h.updateMapEvents(ctx); err != nil {
		errs = append(errs, err)
	}
	if err := h.updateCommonEvents(ctx); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// maxStartsPerFrame 限制一帧内主解释器连续启动事件的次数，
// 开关未关闭的空自动执行公共事件会无限重启。
const maxStartsPerFrame = 1000

func (h *Host) updateMain(ctx context.Context) error {
	for starts := 0; ; starts++ {
		if starts >= maxStartsPerFrame {
			h.logger.Warn("too many events started in one frame", infoFields(h.main.EventInfo())...)
			h.opts.Metrics.fuseTrip()
			return nil
		}
		if err := h.main.Update(ctx); err != nil {
			return h.fail(h.main, err)
		}
		if h.main.IsRunning() {
			return nil
		}
		if id := h.main.EventID(); id > 0 {
			if h.w.Map != nil {
				h.w.Map.UnlockEvent(id)
			}
			h.main.Clear()
		}
		if !h.setupStartingEvent() {
			return nil
		}
	}
}

func (h *Host) setupStartingEvent() bool {
	if h.w.Map != nil {
		h.w.Map.RefreshIfNeeded()
	}
	if h.main.SetupReservedCommonEvent() {
		return true
	}
	if h.testEvent != nil {
		h.main.Setup(h.testEvent, 0)
		h.main.SetEventInfo(TestEventInfo{})
		h.testEvent = nil
		return true
	}
	if h.w.Map != nil {
		if ev, ok := h.w.Map.TakeStartingEvent(); ok {
			h.main.Setup(ev.List, ev.EventID)
			h.main.SetEventInfo(ev.Info)
			return true
		}
	}
	return h.setupAutorunCommonEvent()
}

func (h *Host) setupAutorunCommonEvent() bool {
	if h.w.Data == nil {
		return false
	}
	for id, ce := range h.w.Data.CommonEvents {
		if ce != nil && ce.Trigger == resource.TriggerAutorun && h.w.State.GetSwitch(ce.SwitchID) {
			h.main.Setup(ce.List, 0)
			h.main.SetEventInfo(CommonEventInfo{CommonEventID: id})
			return true
		}
	}
	return false
}

// updateMapEvents 驱动并行触发的地图事件，列表结束后重新开始。
func (h *Host) updateMapEvents(ctx context.Context) error {
	if h.w.Map == nil {
		return nil
	}
	var errs []error
	seen := make(map[int]bool)
	for _, ev := range h.w.Map.ParallelEvents() {
		seen[ev.EventID] = true
		it := h.mapEvents[ev.EventID]
		if it == nil {
			it = newWithOptions(h.w, 0, h.opts)
			h.mapEvents[ev.EventID] = it
		}
		if !it.IsRunning() {
			it.Setup(ev.List, ev.EventID)
			it.SetEventInfo(ev.Info)
		}
		if err := it.Update(ctx); err != nil {
			errs = append(errs, h.fail(it, err))
		}
	}
	for id := range h.mapEvents {
		if !seen[id] {
			delete(h.mapEvents, id)
		}
	}
	return errors.Join(errs...)
}

// updateCommonEvents 驱动开关打开的并行公共事件。开关关闭时丢弃其解释器。
func (h *Host) updateCommonEvents(ctx context.Context) error {
	if h.w.Data == nil {
		return nil
	}
	var errs []error
	for id, ce := range h.w.Data.CommonEvents {
		if ce == nil || ce.Trigger != resource.TriggerParallel {
			continue
		}
		if !h.w.State.GetSwitch(ce.SwitchID) {
			delete(h.commonEvents, id)
			continue
		}
		it := h.commonEvents[id]
		if it == nil {
			it = newWithOptions(h.w, 0, h.opts)
			h.commonEvents[id] = it
		}
		if !it.IsRunning() {
			it.Setup(ce.List, 0)
			it.SetEventInfo(CommonEventInfo{CommonEventID: id})
		}
		if err := it.Update(ctx); err != nil {
			errs = append(errs, h.fail(it, err))
		}
	}
	return errors.Join(errs...)
}

// fail 终止出错的解释器并记录错误。
func (h *Host) fail(it *Interpreter, err error) error {
	it.Terminate()
	h.lastErr = err
	var ie *Error
	if errors.As(err, &ie) {
		h.logger.Error("event command failed", ie.Fields()...)
	} else {
		h.logger.Error("event command failed", append(infoFields(it.EventInfo()), zap.Error(err))...)
	}
	return err
}

// ---- 战斗事件 ----

// SetupBattle 为敌群 troopID 准备战斗事件。
func (h *Host) SetupBattle(troopID int) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.w.Data == nil {
		return errNoTroop
	}
	troop := h.w.Data.TroopByID(troopID)
	if troop == nil {
		return errNoTroop
	}
	h.troop = newWithOptions(h.w, 0, h.opts)
	h.troopID = troopID
	h.eventFlags = make([]bool, len(troop.Pages))
	return nil
}

var errNoTroop = errors.New("troop not found")

// EndBattle 丢弃战斗事件解释器。
func (h *Host) EndBattle() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.troop = nil
	h.troopID = 0
	h.eventFlags = nil
}

// UpdateBattle 执行一帧战斗事件：解释器空闲时启动满足条件的下一页。
// 返回战斗事件是否在运行。
func (h *Host) UpdateBattle(ctx context.Context) (bool, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.troop == nil {
		return false, nil
	}
	if err := h.troop.Update(ctx); err != nil {
		return false, h.fail(h.troop, err)
	}
	if h.troop.IsRunning() {
		return true, nil
	}
	h.setupBattleEvent()
	return h.troop.IsRunning(), nil
}

func (h *Host) setupBattleEvent() {
	if h.troop.IsRunning() {
		return
	}
	if h.troop.SetupReservedCommonEvent() {
		return
	}
	troop := h.w.Data.TroopByID(h.troopID)
	if troop == nil {
		return
	}
	for i, page := range troop.Pages {
		if page == nil || h.eventFlags[i] || !h.meetsConditions(page) {
			continue
		}
		h.troop.Setup(page.List, 0)
		h.troop.SetEventInfo(BattleEventInfo{TroopID: h.troopID, Page: i + 1})
		if page.Span <= 1 {
			h.eventFlags[i] = true
		}
		return
	}
}

// IncreaseTurn 进入下一回合：清除“回合”跨度页的已执行标记。
func (h *Host) IncreaseTurn() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.troop == nil {
		return
	}
	if troop := h.w.Data.TroopByID(h.troopID); troop != nil {
		for i, page := range troop.Pages {
			if page != nil && page.Span == 1 {
				h.eventFlags[i] = false
			}
		}
	}
	h.w.Troop.IncreaseTurn()
}

// meetsConditions 判断战斗事件页的条件。没有任何条件的页永远不执行。
func (h *Host) meetsConditions(page *resource.TroopPage) bool {
	c := page.Conditions
	if !c.Any() {
		return false
	}
	if c.TurnEnding && !h.w.Battle.IsTurnEnd() {
		return false
	}
	if c.TurnValid {
		n, a, b := h.w.Troop.TurnCount(), c.TurnA, c.TurnB
		if b == 0 && n != a {
			return false
		}
		if b > 0 && (n < 1 || n < a || n%b != a%b) {
			return false
		}
	}
	if c.EnemyValid {
		members := h.w.Troop.Members()
		if c.EnemyIndex < 0 || c.EnemyIndex >= len(members) || members[c.EnemyIndex] == nil {
			return false
		}
		if members[c.EnemyIndex].HPRate()*100 > float64(c.EnemyHp) {
			return false
		}
	}
	if c.ActorValid {
		actor := h.w.Actors.Actor(c.ActorID)
		if actor == nil || actor.HPRate()*100 > float64(c.ActorHp) {
			return false
		}
	}
	if c.SwitchValid && !h.w.State.GetSwitch(c.SwitchID) {
		return false
	}
	return true
}

// ---- 状态 ----

// Status 是宿主的快照，供调试接口使用。
type Status struct {
	Frames      uint64    `json:"frames"`
	Running     bool      `json:"running"`
	EventID     int       `json:"event_id"`
	EventType   string    `json:"event_type,omitempty"`
	EventInfo   EventInfo `json:"event_info,omitempty"`
	Index       int       `json:"index"`
	WaitMode    string    `json:"wait_mode,omitempty"`
	Depth       int       `json:"depth"`
	Parallel    int       `json:"parallel"`
	BattleTroop int       `json:"battle_troop,omitempty"`
	LastError   string    `json:"last_error,omitempty"`
}

// Status 返回主解释器的状态。Depth 为当前公共事件调用链的深度。
func (h *Host) Status() Status {
	h.mu.Lock()
	defer h.mu.Unlock()
	s := Status{
		Frames:      h.frames,
		Running:     h.main.IsRunning(),
		EventID:     h.main.EventID(),
		EventInfo:   h.main.EventInfo(),
		Index:       h.main.Index(),
		WaitMode:    h.main.WaitMode().String(),
		Parallel:    len(h.commonEvents) + len(h.mapEvents),
		BattleTroop: h.troopID,
	}
	if s.EventInfo != nil {
		s.EventType = s.EventInfo.EventType()
	}
	for it := h.main; it.Child() != nil; it = it.Child() {
		s.Depth = it.Child().Depth()
	}
	if h.lastErr != nil {
		s.LastError = h.lastErr.Error()
	}
	return s
}

// LastError 返回最近一次执行错误。
func (h *Host) LastError() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.lastErr
}
