// Package script provides the engines behind the Script (355) command and the
// script operands of Conditional Branch and Control Variables: a goja VM pool
// and a whitelist expression evaluator built on govaluate.
package script

import (
	"context"
	"errors"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/dop251/goja"
	"go.uber.org/zap"
)

// Engine is implemented by Sandbox and ExprEngine.
type Engine interface {
	Eval(ctx context.Context, src string, sc *ScriptContext) (interface{}, error)
	Exec(ctx context.Context, src string, sc *ScriptContext) error
}

// ErrTimeout is returned when a script exceeds the execution time limit.
var ErrTimeout = errors.New("script: execution timed out")

// ErrPanic is returned when a script throws an uncaught exception.
var ErrPanic = errors.New("script: uncaught exception")

// ScriptContext provides game-state accessors available inside scripts.
type ScriptContext struct {
	// GetVariable returns a game variable value by ID.
	GetVariable func(id int) int
	// SetVariable sets a game variable value.
	SetVariable func(id int, value int)
	// GetSwitch returns a game switch state.
	GetSwitch func(id int) bool
	// SetSwitch sets a game switch state.
	SetSwitch func(id int, value bool)
	// GetSelfSwitch / SetSelfSwitch address (map, event, letter) self-switches.
	GetSelfSwitch func(mapID, eventID int, ch string) bool
	SetSelfSwitch func(mapID, eventID int, ch string, value bool)
	// RandomInt returns a value in [0, max). Nil yields 0.
	RandomInt func(max int) int
	MapID     int
	EventID   int
}

func (sc *ScriptContext) randomInt(max int) int {
	if sc == nil || sc.RandomInt == nil || max <= 0 {
		return 0
	}
	return sc.RandomInt(max)
}

// VMPool is a thread-safe pool of pre-initialised goja runtimes.
type VMPool struct {
	pool    chan *goja.Runtime
	timeout time.Duration
	logger  *zap.Logger
	mu      sync.Mutex
	size    int
}

// NewVMPool creates a VMPool with the given concurrency size and per-script timeout.
func NewVMPool(size int, timeout time.Duration, logger *zap.Logger) *VMPool {
	if size <= 0 {
		size = 4
	}
	if timeout <= 0 {
		timeout = 500 * time.Millisecond
	}
	p := &VMPool{
		pool:    make(chan *goja.Runtime, size),
		timeout: timeout,
		logger:  logger,
		size:    size,
	}
	for i := 0; i < size; i++ {
		p.pool <- newSafeVM()
	}
	return p
}

// Run executes src inside a pooled VM with the given ScriptContext.
// Returns the value of the last expression evaluated, or an error.
func (p *VMPool) Run(ctx context.Context, src string, sc *ScriptContext) (interface{}, error) {
	select {
	case vm := <-p.pool:
		// returnToPool is set to false by runVM when the VM is tainted by a
		// timeout and must be discarded rather than returned to the pool.
		returnToPool := true
		defer func() {
			if returnToPool {
				p.pool <- vm
			}
		}()
		return p.runVM(ctx, vm, src, sc, &returnToPool)
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (p *VMPool) runVM(ctx context.Context, vm *goja.Runtime, src string, sc *ScriptContext, returnToPool *bool) (interface{}, error) {
	injectContext(vm, sc)

	// Set up timeout interrupt.
	timer := time.AfterFunc(p.timeout, func() {
		vm.Interrupt(ErrTimeout)
	})
	defer func() {
		timer.Stop()
		// Clear interrupt so the VM is clean for the next caller (only reached
		// when returnToPool is still true).
		if *returnToPool {
			vm.ClearInterrupt()
		}
	}()

	// Recover panics from goja.
	var result goja.Value
	var runErr error
	func() {
		defer func() {
			if r := recover(); r != nil {
				runErr = ErrPanic
			}
		}()
		result, runErr = vm.RunString(src)
	}()

	if runErr != nil {
		if runErr == ErrTimeout {
			// VM is tainted after an interrupt; discard it and add a fresh one.
			*returnToPool = false
			p.pool <- newSafeVM()
			return nil, ErrTimeout
		}
		if ex, ok := runErr.(*goja.Exception); ok {
			return nil, errors.New(ex.Error())
		}
		return nil, runErr
	}

	if result == nil || goja.IsUndefined(result) || goja.IsNull(result) {
		return nil, nil
	}
	return result.Export(), nil
}

// newSafeVM creates a goja Runtime with dangerous globals removed. The
// built-in Math object is kept; Math.randomInt is added per run.
func newSafeVM() *goja.Runtime {
	vm := goja.New()
	// Block dangerous globals.
	for _, name := range []string{"require", "process", "fetch", "XMLHttpRequest", "eval", "Function"} {
		vm.Set(name, goja.Undefined())
	}
	return vm
}

// randResolution is the number of steps Math.random draws from RandomInt.
const randResolution = 1 << 30

// randSource feeds Math.random from sc.RandomInt, or from math/rand/v2 when
// the context has no random source.
func randSource(sc *ScriptContext) goja.RandSource {
	if sc == nil || sc.RandomInt == nil {
		return rand.Float64
	}
	return func() float64 { return float64(sc.RandomInt(randResolution)) / randResolution }
}

// injectContext binds ScriptContext accessors into the VM as $game* globals.
// Globals left by a previous run on the same pooled VM are reset. The event
// and map IDs are also exposed as _eventId and _mapId so that top-level
// this._eventId resolves as in an event script.
func injectContext(vm *goja.Runtime, sc *ScriptContext) {
	if sc == nil {
		sc = &ScriptContext{}
	}
	vm.SetRandSource(randSource(sc))

	if sc.GetVariable != nil && sc.SetVariable != nil {
		vars := vm.NewObject()
		_ = vars.Set("value", func(id int) int { return sc.GetVariable(id) })
		_ = vars.Set("setValue", func(id int, v goja.Value) { sc.SetVariable(id, int(v.ToInteger())) })
		vm.Set("$gameVariables", vars)
	} else {
		vm.Set("$gameVariables", goja.Undefined())
	}
	if sc.GetSwitch != nil && sc.SetSwitch != nil {
		sw := vm.NewObject()
		_ = sw.Set("value", func(id int) bool { return sc.GetSwitch(id) })
		_ = sw.Set("setValue", func(id int, v goja.Value) { sc.SetSwitch(id, v.ToBoolean()) })
		vm.Set("$gameSwitches", sw)
	} else {
		vm.Set("$gameSwitches", goja.Undefined())
	}
	if sc.GetSelfSwitch != nil && sc.SetSelfSwitch != nil {
		ss := vm.NewObject()
		_ = ss.Set("value", func(key []interface{}) bool {
			m, e, ch := selfSwitchKey(key)
			return sc.GetSelfSwitch(m, e, ch)
		})
		_ = ss.Set("setValue", func(key []interface{}, v goja.Value) {
			m, e, ch := selfSwitchKey(key)
			sc.SetSelfSwitch(m, e, ch, v.ToBoolean())
		})
		vm.Set("$gameSelfSwitches", ss)
	} else {
		vm.Set("$gameSelfSwitches", goja.Undefined())
	}
	gm := vm.NewObject()
	_ = gm.Set("mapId", func() int { return sc.MapID })
	vm.Set("$gameMap", gm)
	vm.Set("eventId", sc.EventID)
	vm.Set("_eventId", sc.EventID)
	vm.Set("_mapId", sc.MapID)
	if m, ok := vm.Get("Math").(*goja.Object); ok {
		_ = m.Set("randomInt", func(max int) int { return sc.randomInt(max) })
	}
}

// selfSwitchKey unpacks a [mapId, eventId, "A"] key.
func selfSwitchKey(key []interface{}) (int, int, string) {
	var m, e int
	var ch string
	if len(key) > 0 {
		m = toInt(key[0])
	}
	if len(key) > 1 {
		e = toInt(key[1])
	}
	if len(key) > 2 {
		ch, _ = key[2].(string)
	}
	return m, e, ch
}

func toInt(v interface{}) int {
	switch n := v.(type) {
	case int64:
		return int(n)
	case int:
		return n
	case float64:
		return int(n)
	}
	return 0
}

// Sandbox wraps a VMPool and provides a simple Run interface with context support.
type Sandbox struct {
	pool   *VMPool
	logger *zap.Logger
}

// NewSandbox creates a Sandbox backed by a VMPool.
func NewSandbox(size int, timeout time.Duration, logger *zap.Logger) *Sandbox {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Sandbox{
		pool:   NewVMPool(size, timeout, logger),
		logger: logger,
	}
}

// Eval executes src with the given ScriptContext, returning the result.
func (sb *Sandbox) Eval(ctx context.Context, src string, sc *ScriptContext) (interface{}, error) {
	result, err := sb.pool.Run(ctx, src, sc)
	if err != nil {
		sb.logger.Warn("script execution error",
			zap.String("src_preview", truncate(src, 80)),
			zap.Error(err))
	}
	return result, err
}

// Exec runs src for its side effects.
func (sb *Sandbox) Exec(ctx context.Context, src string, sc *ScriptContext) error {
	_, err := sb.Eval(ctx, src, sc)
	return err
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
