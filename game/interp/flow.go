package interp

import (
	"context"
)

// skipBranch 跳过缩进大于当前指令的后续指令，停在块结束前。不会越过列表末尾。
func (it *Interpreter) skipBranch() {
	for it.index+1 < len(it.list) {
		next := it.list[it.index+1]
		if next == nil || next.Indent <= it.indent {
			return
		}
		it.index++
	}
}

// jumpTo 移动到 index，经过的每个缩进层级的分支结果都被清为 nil。
func (it *Interpreter) jumpTo(index int) {
	start, end := min(index, it.index), max(index, it.index)
	indent := it.indent
	for i := start; i <= end && i < len(it.list); i++ {
		if it.list[i] == nil {
			continue
		}
		if n := it.list[i].Indent; n != indent {
			it.branch[indent] = nil
			indent = n
		}
	}
	it.index = index
}

// 条件分支
func (it *Interpreter) cmdConditionalBranch(ctx context.Context) (bool, error) {
	result, err := it.evalCondition(ctx)
	if err != nil {
		return false, err
	}
	it.branch[it.indent] = result
	if !result {
		it.skipBranch()
	}
	return true, nil
}

// 否则：仅当同层条件为 false 时进入。
func (it *Interpreter) cmdElse(context.Context) (bool, error) {
	if v, ok := it.branch[it.indent].(bool); !ok || v {
		it.skipBranch()
	}
	return true, nil
}

// 选项 When [n]
func (it *Interpreter) cmdWhen(context.Context) (bool, error) {
	if v, ok := it.branch[it.indent].(int); !ok || v != it.pInt(0) {
		it.skipBranch()
	}
	return true, nil
}

// 选项取消：已选中某一项（结果 >= 0）时跳过。被跳转清除的结果同样跳过，
// 从未设置的结果不跳过。
func (it *Interpreter) cmdWhenCancel(context.Context) (bool, error) {
	v, set := it.branch[it.indent]
	switch v := v.(type) {
	case int:
		if v >= 0 {
			it.skipBranch()
		}
	default:
		if set {
			it.skipBranch()
		}
	}
	return true, nil
}

func (it *Interpreter) cmdLoop(context.Context) (bool, error) { return true, nil }

// 以上反复：回到前方最近的同缩进指令（循环开始）。
func (it *Interpreter) cmdRepeatAbove(context.Context) (bool, error) {
	for it.index > 0 {
		it.index--
		if c := it.list[it.index]; c != nil && c.Indent == it.indent {
			break
		}
	}
	return true, nil
}

// 跳出循环：向前找到与之配对的以上反复，嵌套循环计数。
func (it *Interpreter) cmdBreakLoop(context.Context) (bool, error) {
	depth := 0
	for it.index < len(it.list)-1 {
		it.index++
		c := it.list[it.index]
		if c == nil {
			continue
		}
		if c.Code == CmdLoop {
			depth++
		}
		if c.Code == CmdRepeatAbove {
			if depth == 0 {
				break
			}
			depth--
		}
	}
	return true, nil
}

// 中止事件处理
func (it *Interpreter) cmdExitEvent(context.Context) (bool, error) {
	it.index = len(it.list)
	return true, nil
}

// 公共事件：不存在时为空操作。
func (it *Interpreter) cmdCallCommonEvent(context.Context) (bool, error) {
	id := it.pInt(0)
	ce := it.commonEvent(id)
	if ce == nil {
		return true, nil
	}
	eventID := 0
	if it.isOnCurrentMap() {
		eventID = it.eventID
	}
	if err := it.setupChild(ce.List, eventID, id); err != nil {
		return false, err
	}
	return true, nil
}

func (it *Interpreter) cmdLabel(context.Context) (bool, error) { return true, nil }

// 跳转标签：命中后本帧结束，下一帧从标签处继续。
func (it *Interpreter) cmdJumpToLabel(context.Context) (bool, error) {
	name := it.pStr(0)
	for i, c := range it.list {
		if c != nil && c.Code == CmdLabel && labelName(c.Parameters) == name {
			it.jumpTo(i)
			return false, nil
		}
	}
	return true, nil
}

func labelName(params []interface{}) string {
	if len(params) == 0 {
		return ""
	}
	s, _ := params[0].(string)
	return s
}

// 注释
func (it *Interpreter) cmdComment(context.Context) (bool, error) {
	it.comments = []string{it.pStr(0)}
	for it.nextEventCode() == CmdCommentCont {
		it.index++
		it.comments = append(it.comments, paramStrAt(it.list[it.index], 0))
	}
	return true, nil
}
