package interp

import (
	"context"

	"github.com/kasuganosora/rmmvinterp/resource"
)

// locationParams 读取 [模式, 地图, x, y] 形式的位置参数，模式非 0 时从变量读取。
func (it *Interpreter) locationParams(mode, at int) (mapID, x, y int) {
	mapID, x, y = it.pInt(at), it.pInt(at+1), it.pInt(at+2)
	if mode != 0 {
		st := it.w.State
		mapID, x, y = st.GetVariable(mapID), st.GetVariable(x), st.GetVariable(y)
	}
	return mapID, x, y
}

// 场所移动：预约移动后等待移动完成。
func (it *Interpreter) cmdTransferPlayer(context.Context) (bool, error) {
	if it.inBattle() || it.w.Message.IsBusy() {
		return false, nil
	}
	mapID, x, y := it.locationParams(it.pInt(0), 1)
	it.w.Player.ReserveTransfer(mapID, x, y, it.pInt(4), it.pInt(5))
	it.setWaitMode(WaitTransfer)
	it.index++
	return false, nil
}

// 设置载具位置
func (it *Interpreter) cmdSetVehicleLocation(context.Context) (bool, error) {
	mapID, x, y := it.locationParams(it.pInt(1), 2)
	if v := it.w.Map.Vehicle(it.pInt(0)); v != nil {
		v.SetLocation(mapID, x, y)
	}
	return true, nil
}

// 设置事件位置：p1 为 0 直接指定, 1 变量指定, 2 与另一事件交换。
func (it *Interpreter) cmdSetEventLocation(context.Context) (bool, error) {
	c := it.characterFor(it.pInt(0))
	if c == nil {
		return true, nil
	}
	switch it.pInt(1) {
	case 0:
		c.Locate(it.pInt(2), it.pInt(3))
	case 1:
		c.Locate(it.w.State.GetVariable(it.pInt(2)), it.w.State.GetVariable(it.pInt(3)))
	default:
		if other := it.characterFor(it.pInt(2)); other != nil {
			c.Swap(other)
		}
	}
	if d := it.pInt(4); d > 0 {
		c.SetDirection(d)
	}
	return true, nil
}

// 滚动地图：上一次滚动未结束时先等待。
func (it *Interpreter) cmdScrollMap(context.Context) (bool, error) {
	if it.inBattle() {
		return true, nil
	}
	if it.w.Map.IsScrolling() {
		it.setWaitMode(WaitScroll)
		return false, nil
	}
	it.w.Map.StartScroll(it.pInt(0), it.pInt(1), it.pInt(2))
	return true, nil
}

// 设置移动路线
func (it *Interpreter) cmdSetMoveRoute(context.Context) (bool, error) {
	it.w.Map.RefreshIfNeeded()
	it.character = it.characterFor(it.pInt(0))
	if it.character == nil {
		return true, nil
	}
	route := resource.ParamMoveRoute(it.params, 1)
	if route == nil {
		return true, nil
	}
	it.character.ForceMoveRoute(route)
	it.character.SetCallerEventInfo(it.eventInfo, it.index+1)
	if route.Wait {
		it.setWaitMode(WaitRoute)
	}
	return true, nil
}

// 载具乘降
func (it *Interpreter) cmdGetOnOffVehicle(context.Context) (bool, error) {
	it.w.Player.GetOnOffVehicle()
	return true, nil
}

// 更改透明状态
func (it *Interpreter) cmdChangeTransparency(context.Context) (bool, error) {
	it.w.Player.SetTransparent(it.pInt(0) == 0)
	return true, nil
}

// 显示动画
func (it *Interpreter) cmdShowAnimation(context.Context) (bool, error) {
	it.character = it.characterFor(it.pInt(0))
	if it.character != nil {
		it.character.RequestAnimation(it.pInt(1))
		if it.pBool(2) {
			it.setWaitMode(WaitAnimation)
		}
	}
	return true, nil
}

// 显示心情图标
func (it *Interpreter) cmdShowBalloon(context.Context) (bool, error) {
	it.character = it.characterFor(it.pInt(0))
	if it.character != nil {
		it.character.RequestBalloon(it.pInt(1))
		if it.pBool(2) {
			it.setWaitMode(WaitBalloon)
		}
	}
	return true, nil
}

// 暂时消除事件
func (it *Interpreter) cmdEraseEvent(context.Context) (bool, error) {
	if it.isOnCurrentMap() && it.eventID > 0 {
		it.w.Map.EraseEvent(it.eventID)
	}
	return true, nil
}

// 更改跟随者显示
func (it *Interpreter) cmdChangeFollowers(context.Context) (bool, error) {
	if it.pInt(0) == 0 {
		it.w.Player.ShowFollowers()
	} else {
		it.w.Player.HideFollowers()
	}
	it.w.Player.Refresh()
	return true, nil
}

// 集合跟随者
func (it *Interpreter) cmdGatherFollowers(context.Context) (bool, error) {
	if !it.inBattle() {
		it.w.Player.GatherFollowers()
		it.setWaitMode(WaitGather)
	}
	return true, nil
}
