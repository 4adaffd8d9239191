package rest

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kasuganosora/rmmvinterp/audit"
	"github.com/kasuganosora/rmmvinterp/game/asset"
	"github.com/kasuganosora/rmmvinterp/game/interp"
	"github.com/kasuganosora/rmmvinterp/game/world"
	mw "github.com/kasuganosora/rmmvinterp/middleware"
	"github.com/kasuganosora/rmmvinterp/resource"
	"go.uber.org/zap"
)

// DefaultMaxRunTicks caps POST /api/debug/run when no limit is configured.
const DefaultMaxRunTicks = 600

// DebugHandler serves the interpreter debug endpoints. Handlers that read
// the live world go through World.Do so they never race the frame loop.
type DebugHandler struct {
	world       *world.World
	host        *interp.Host
	res         *resource.ResourceLoader
	assets      *asset.Manager
	audit       *audit.Service
	runOpts     interp.Options
	maxRunTicks int
	logger      *zap.Logger
}

// NewDebugHandler creates a DebugHandler for the live world w driven by
// host. assets and auditSvc may be nil. runOpts configures the
// interpreters of isolated runs.
func NewDebugHandler(
	w *world.World,
	host *interp.Host,
	assets *asset.Manager,
	auditSvc *audit.Service,
	runOpts *interp.Options,
	maxRunTicks int,
	logger *zap.Logger,
) *DebugHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if maxRunTicks <= 0 {
		maxRunTicks = DefaultMaxRunTicks
	}
	h := &DebugHandler{
		world:       w,
		host:        host,
		res:         w.Data,
		assets:      assets,
		audit:       auditSvc,
		maxRunTicks: maxRunTicks,
		logger:      logger,
	}
	if runOpts != nil {
		h.runOpts = *runOpts
	}
	if h.runOpts.Logger == nil {
		h.runOpts.Logger = logger
	}
	return h
}

// Status returns the host status and a snapshot of the live world.
// GET /api/debug/status
func (h *DebugHandler) Status(c *gin.Context) {
	status := h.host.Status()
	var snap world.Snapshot
	h.world.Do(func() { snap = h.world.Snapshot() })
	c.JSON(http.StatusOK, gin.H{"host": status, "world": snap})
}

// eventRequest carries a command list in RMMV's JSON layout.
type eventRequest struct {
	List []*resource.EventCommand `json:"list"`
}

var errEmptyList = errors.New("list must contain at least one command")

func validateList(list []*resource.EventCommand) error {
	if len(list) == 0 {
		return errEmptyList
	}
	for i, cmd := range list {
		if cmd == nil {
			return fmt.Errorf("list[%d] is null", i)
		}
	}
	return nil
}

// QueueTestEvent queues a command list on the live map interpreter. It
// starts once the interpreter is idle.
// POST /api/debug/test-event
func (h *DebugHandler) QueueTestEvent(c *gin.Context) {
	start := time.Now()
	var req eventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad request"})
		return
	}
	if err := validateList(req.List); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	h.host.QueueTestEvent(req.List)
	resp := gin.H{"queued": len(req.List)}
	h.record(c, audit.AuditEntry{
		Action:    "test_event",
		EventType: interp.TestEventInfo{}.EventType(),
		Request:   req,
		Response:  resp,
	}, nil, start)
	c.JSON(http.StatusAccepted, resp)
}

// ReserveCommonEvent reserves a common event on the live world.
// POST /api/debug/common-events/:id/reserve
func (h *DebugHandler) ReserveCommonEvent(c *gin.Context) {
	start := time.Now()
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	if err := h.host.ReserveCommonEvent(id); err != nil {
		if errors.Is(err, interp.ErrNoCommonEvent) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	resp := gin.H{"reserved": id}
	h.record(c, audit.AuditEntry{
		Action:    "reserve_common_event",
		EventType: interp.CommonEventInfo{}.EventType(),
		EventID:   id,
		Response:  resp,
	}, nil, start)
	c.JSON(http.StatusAccepted, resp)
}

type runRequest struct {
	List      []*resource.EventCommand `json:"list"`
	MaxTicks  int                      `json:"max_ticks"`
	Switches  map[int]bool             `json:"switches"`
	Variables map[int]int              `json:"variables"`
}

// RunResult is the outcome of an isolated run.
type RunResult struct {
	Ticks     int                  `json:"ticks"`
	Finished  bool                 `json:"finished"`
	Switches  map[int]bool         `json:"switches"`
	Variables map[int]int          `json:"variables"`
	Messages  []world.MessageEntry `json:"messages"`
	World     world.Snapshot       `json:"world"`
	Errors    []interp.Report      `json:"errors,omitempty"`
}

// Run executes a command list on a fresh world that shares only the
// loaded database, and reports the resulting state.
// POST /api/debug/run
func (h *DebugHandler) Run(c *gin.Context) {
	start := time.Now()
	var req runRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad request"})
		return
	}
	if err := validateList(req.List); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.MaxTicks <= 0 || req.MaxTicks > h.maxRunTicks {
		req.MaxTicks = h.maxRunTicks
	}

	result := h.run(c.Request.Context(), req)
	var runErr error
	if len(result.Errors) > 0 {
		runErr = errors.New(result.Errors[0].Message)
	}
	h.record(c, audit.AuditEntry{
		Action:    "run",
		EventType: interp.TestEventInfo{}.EventType(),
		Request:   req,
		Response:  gin.H{"ticks": result.Ticks, "finished": result.Finished},
	}, runErr, start)
	c.JSON(http.StatusOK, result)
}

func (h *DebugHandler) run(ctx context.Context, req runRequest) RunResult {
	w := world.New(h.res, nil, nil, nil, h.logger)
	for id, on := range req.Switches {
		w.State.SetSwitch(id, on)
	}
	for id, v := range req.Variables {
		w.State.SetVariable(id, v)
	}
	opts := h.runOpts
	host := interp.NewHost(w.Interp(), &opts)
	w.Battle.SetRunner(host)
	host.QueueTestEvent(req.List)

	var result RunResult
	for result.Ticks < req.MaxTicks && ctx.Err() == nil {
		err := w.Step(ctx, host)
		result.Ticks++
		if err != nil {
			result.Errors = interp.Reports(err)
			break
		}
		if !host.Main().IsRunning() {
			result.Finished = true
			break
		}
	}

	result.World = w.Snapshot()
	result.Switches = result.World.State.Switches
	result.Variables = result.World.State.Variables
	result.Messages = result.World.Messages
	return result
}

// Assets returns the asset cache status.
// GET /api/debug/assets
func (h *DebugHandler) Assets(c *gin.Context) {
	if h.assets == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "asset manager disabled"})
		return
	}
	snap, err := h.assets.Status(c.Request.Context())
	if err != nil {
		h.logger.Error("asset status failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "cache error"})
		return
	}
	c.JSON(http.StatusOK, snap)
}

func (h *DebugHandler) record(c *gin.Context, entry audit.AuditEntry, err error, start time.Time) {
	if h.audit == nil {
		return
	}
	entry.TraceID = mw.GetTraceID(c)
	entry.IP = c.ClientIP()
	entry.DurationMs = int(time.Since(start).Milliseconds())
	if err != nil {
		entry.Error = err.Error()
	}
	h.audit.Log(entry)
}
