package interp

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/kasuganosora/rmmvinterp/plugin/hook"
	"go.uber.org/zap"
)

func (it *Interpreter) cmdOpenMenu(context.Context) (bool, error) {
	if !it.inBattle() {
		it.w.Scenes.Push(SceneMenu)
	}
	return true, nil
}

func (it *Interpreter) cmdOpenSave(context.Context) (bool, error) {
	if !it.inBattle() {
		it.w.Scenes.Push(SceneSave)
	}
	return true, nil
}

func (it *Interpreter) cmdGameOver(context.Context) (bool, error) {
	it.w.Scenes.Goto(SceneGameover)
	return true, nil
}

func (it *Interpreter) cmdReturnToTitle(context.Context) (bool, error) {
	it.w.Scenes.Goto(SceneTitle)
	return true, nil
}

// 脚本：本行与后续 655 行拼接为一段脚本执行，错误行号为 "起始-结束"。
func (it *Interpreter) cmdScript(ctx context.Context) (bool, error) {
	start := it.index + 1
	var sb strings.Builder
	sb.WriteString(it.pStr(0))
	sb.WriteByte('\n')
	for it.nextEventCode() == CmdScriptCont {
		it.index++
		sb.WriteString(paramStrAt(it.list[it.index], 0))
		sb.WriteByte('\n')
	}
	end := it.index + 1
	src := sb.String()

	var err error
	if it.opts.Script == nil {
		err = errNoScriptEngine
	} else {
		err = it.opts.Script.Exec(ctx, src, it.scriptContext())
	}
	if err != nil {
		return false, &Error{
			EventCommand: SourceScript,
			Content:      src,
			Line:         fmt.Sprintf("%d-%d", start, end),
			Err:          err,
		}
	}
	return true, nil
}

// 插件指令：按空格拆分，第一个词为指令名，交给 hook 中心的 plugin_command:<名> 处理。
func (it *Interpreter) cmdPluginCommand(ctx context.Context) (bool, error) {
	raw := it.pStr(0)
	args := strings.Split(raw, " ")
	name, args := args[0], args[1:]

	hooks := it.opts.Hooks
	event := hook.PluginCommandEvent(name)
	if hooks == nil || !hooks.Has(event) {
		it.opts.Logger.Debug("unhandled plugin command",
			append(infoFields(it.eventInfo), zap.String("command", name), zap.Strings("args", args))...)
		return true, nil
	}
	_, err := hooks.Trigger(ctx, event, &hook.PluginCommand{
		Name:    name,
		Args:    args,
		MapID:   it.mapID,
		EventID: it.eventID,
	})
	if err != nil && !errors.Is(err, hook.ErrInterrupt) {
		return false, &Error{EventCommand: SourcePluginCommand, Content: raw, Err: err}
	}
	return true, nil
}
