package interp

import (
	"context"

	"github.com/kasuganosora/rmmvinterp/resource"
)

// 显示文字：连续的 401 行合并为一条消息，紧随的 102/103/104 一并处理。
func (it *Interpreter) cmdShowText(context.Context) (bool, error) {
	msg := it.w.Message
	if msg.IsBusy() {
		return false, nil
	}
	msg.SetFaceImage(it.pStr(0), it.pInt(1))
	msg.SetBackground(it.pInt(2))
	msg.SetPositionType(it.pInt(3))
	for it.nextEventCode() == CmdShowTextLine {
		it.index++
		msg.Add(paramStrAt(it.list[it.index], 0))
	}
	switch it.nextEventCode() {
	case CmdShowChoices:
		it.index++
		it.setupChoices(paramsOf(it.list[it.index]))
	case CmdInputNumber:
		it.index++
		it.setupNumInput(paramsOf(it.list[it.index]))
	case CmdSelectItem:
		it.index++
		it.setupItemChoice(paramsOf(it.list[it.index]))
	}
	it.index++
	it.setWaitMode(WaitMessage)
	return false, nil
}

// 显示选项
func (it *Interpreter) cmdShowChoices(context.Context) (bool, error) {
	if it.w.Message.IsBusy() {
		return false, nil
	}
	it.setupChoices(it.params)
	it.index++
	it.setWaitMode(WaitMessage)
	return false, nil
}

// setupChoices 参数：[选项, 取消类型, 默认, 位置, 背景]。取消类型越界时为 -2（不允许取消）。
func (it *Interpreter) setupChoices(params []interface{}) {
	choices := resource.ParamStrings(params, 0)
	cancelType := resource.ParamInt(params, 1)
	defaultType := 0
	if len(params) > 2 {
		defaultType = resource.ParamInt(params, 2)
	}
	positionType := 2
	if len(params) > 3 {
		positionType = resource.ParamInt(params, 3)
	}
	background := 0
	if len(params) > 4 {
		background = resource.ParamInt(params, 4)
	}
	if cancelType >= len(choices) {
		cancelType = -2
	}
	msg := it.w.Message
	msg.SetChoices(choices, defaultType, cancelType)
	msg.SetChoiceBackground(background)
	msg.SetChoicePositionType(positionType)
	indent := it.indent
	msg.SetChoiceCallback(func(n int) {
		it.branch[indent] = n
	})
}

// 数值输入
func (it *Interpreter) cmdInputNumber(context.Context) (bool, error) {
	if it.w.Message.IsBusy() {
		return false, nil
	}
	it.setupNumInput(it.params)
	it.index++
	it.setWaitMode(WaitMessage)
	return false, nil
}

func (it *Interpreter) setupNumInput(params []interface{}) {
	it.w.Message.SetNumberInput(resource.ParamInt(params, 0), resource.ParamInt(params, 1))
}

// 物品选择
func (it *Interpreter) cmdSelectItem(context.Context) (bool, error) {
	if it.w.Message.IsBusy() {
		return false, nil
	}
	it.setupItemChoice(it.params)
	it.index++
	it.setWaitMode(WaitMessage)
	return false, nil
}

// setupItemChoice 物品类型缺省为 2（关键道具）。
func (it *Interpreter) setupItemChoice(params []interface{}) {
	itemType := resource.ParamInt(params, 1)
	if itemType == 0 {
		itemType = 2
	}
	it.w.Message.SetItemChoice(resource.ParamInt(params, 0), itemType)
}

// 显示滚动文字
func (it *Interpreter) cmdShowScrollingText(context.Context) (bool, error) {
	msg := it.w.Message
	if msg.IsBusy() {
		return false, nil
	}
	msg.SetScroll(it.pInt(0), it.pBool(1))
	for it.nextEventCode() == CmdScrollTextLine {
		it.index++
		msg.Add(paramStrAt(it.list[it.index], 0))
	}
	it.index++
	it.setWaitMode(WaitMessage)
	return false, nil
}
