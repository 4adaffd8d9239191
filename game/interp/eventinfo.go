package interp

import (
	"errors"
	"fmt"
	"strconv"

	"go.uber.org/zap"
)

// EventInfo 描述解释器正在执行的指令列表的来源，用于错误定位。
type EventInfo interface {
	EventType() string
	Fields() []zap.Field
}

// MapEventInfo 地图事件。Page 从 1 开始。
type MapEventInfo struct {
	MapID   int `json:"map_id"`
	EventID int `json:"event_id"`
	Page    int `json:"page"`
}

func (MapEventInfo) EventType() string { return "map_event" }

func (i MapEventInfo) Fields() []zap.Field {
	return []zap.Field{
		zap.String("event_type", i.EventType()),
		zap.Int("map_id", i.MapID),
		zap.Int("event_id", i.EventID),
		zap.Int("page", i.Page),
	}
}

// CommonEventInfo 公共事件。
type CommonEventInfo struct {
	CommonEventID int `json:"common_event_id"`
}

func (CommonEventInfo) EventType() string { return "common_event" }

func (i CommonEventInfo) Fields() []zap.Field {
	return []zap.Field{zap.String("event_type", i.EventType()), zap.Int("common_event_id", i.CommonEventID)}
}

// BattleEventInfo 敌群战斗事件。Page 从 1 开始。
type BattleEventInfo struct {
	TroopID int `json:"troop_id"`
	Page    int `json:"page"`
}

func (BattleEventInfo) EventType() string { return "battle_event" }

func (i BattleEventInfo) Fields() []zap.Field {
	return []zap.Field{
		zap.String("event_type", i.EventType()),
		zap.Int("troop_id", i.TroopID),
		zap.Int("page", i.Page),
	}
}

// TestEventInfo 编辑器测试事件。
type TestEventInfo struct{}

func (TestEventInfo) EventType() string { return "test_event" }

func (i TestEventInfo) Fields() []zap.Field {
	return []zap.Field{zap.String("event_type", i.EventType())}
}

func infoFields(info EventInfo) []zap.Field {
	if info == nil {
		return nil
	}
	return info.Fields()
}

// ---- 错误 ----

// ErrCallDepthExceeded 公共事件嵌套调用超过上限。
var ErrCallDepthExceeded = errors.New("common event calls exceeded the limit")

// ErrNoCommonEvent 指定的公共事件不存在。
var ErrNoCommonEvent = errors.New("common event not found")

var errNoScriptEngine = errors.New("no script engine configured")

// 错误来源标签（Error.EventCommand）。
const (
	SourceOther             = "other"
	SourceScript            = "script"
	SourceConditionalScript = "conditional_branch_script"
	SourceControlVariables  = "control_variables"
	SourcePluginCommand     = "plugin_command"
)

// Error 是附带事件位置的执行错误。由执行该指令的解释器填充，
// 子解释器的错误原样向上传递。
type Error struct {
	Info         EventInfo
	EventCommand string
	Content      string
	// Line 为 1 起的行号，脚本指令为 "起始-结束"。
	Line string
	Err  error
}

func (e *Error) Error() string {
	where := "unknown"
	if e.Info != nil {
		where = e.Info.EventType()
	}
	return fmt.Sprintf("interp: %s line %s (%s): %v", where, e.Line, e.EventCommand, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Fields 返回用于日志的字段。
func (e *Error) Fields() []zap.Field {
	fs := append(infoFields(e.Info),
		zap.String("event_command", e.EventCommand),
		zap.String("line", e.Line),
	)
	if e.Content != "" {
		fs = append(fs, zap.String("content", e.Content))
	}
	return append(fs, zap.Error(e.Err))
}

// enrich 用当前解释器的位置补全错误中未设置的字段。
func (it *Interpreter) enrich(err error) *Error {
	ie, ok := err.(*Error)
	if !ok {
		ie = &Error{Err: err}
	}
	if ie.Info == nil {
		ie.Info = it.eventInfo
	}
	if ie.EventCommand == "" {
		ie.EventCommand = SourceOther
	}
	if ie.Line == "" {
		ie.Line = strconv.Itoa(it.index + 1)
	}
	return ie
}

// Report 是执行错误的 JSON 形式，供调试接口与审计日志使用。
type Report struct {
	EventType    string    `json:"event_type,omitempty"`
	EventInfo    EventInfo `json:"event_info,omitempty"`
	EventCommand string    `json:"event_command,omitempty"`
	Line         string    `json:"line,omitempty"`
	Content      string    `json:"content,omitempty"`
	Message      string    `json:"message"`
}

// Reports 展开 err（包括 Host.Update 合并的多个错误）。err 为 nil 时返回 nil。
func Reports(err error) []Report {
	if err == nil {
		return nil
	}
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		var out []Report
		for _, e := range joined.Unwrap() {
			out = append(out, Reports(e)...)
		}
		return out
	}
	r := Report{Message: err.Error()}
	var ie *Error
	if errors.As(err, &ie) {
		r.EventInfo = ie.Info
		r.EventCommand = ie.EventCommand
		r.Line = ie.Line
		r.Content = ie.Content
		r.Message = ie.Err.Error()
		if ie.Info != nil {
			r.EventType = ie.Info.EventType()
		}
	}
	return []Report{r}
}
