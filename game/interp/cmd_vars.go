package interp

import (
	"context"
)

// 开关操作：p0..p1 范围内的开关，p2 为 0 时打开。
func (it *Interpreter) cmdControlSwitches(context.Context) (bool, error) {
	on := it.pInt(2) == 0
	for i := it.pInt(0); i <= it.pInt(1); i++ {
		it.w.State.SetSwitch(i, on)
	}
	return true, nil
}

// 变量操作：[起始, 结束, 运算, 操作数类型, 操作数...]。
func (it *Interpreter) cmdControlVariables(ctx context.Context) (bool, error) {
	st := it.w.State
	first, last, op := it.pInt(0), it.pInt(1), it.pInt(2)
	value := 0
	switch it.pInt(3) {
	case 0: // 常量
		value = it.pInt(4)
	case 1: // 变量
		value = st.GetVariable(it.pInt(4))
	case 2: // 随机数，每个变量单独取值
		lo := it.pInt(4)
		span := it.pInt(5) - lo + 1
		for i := first; i <= last; i++ {
			it.operateVariable(i, op, lo+it.randomInt(span))
		}
		return true, nil
	case 3: // 游戏数据
		value = it.gameDataOperand(it.pInt(4), it.pInt(5), it.pInt(6))
	case 4: // 脚本
		src := it.pStr(4)
		v, err := it.evalScript(ctx, src)
		if err != nil {
			return false, &Error{EventCommand: SourceControlVariables, Content: src, Err: err}
		}
		value = scriptInt(v)
	}
	for i := first; i <= last; i++ {
		it.operateVariable(i, op, value)
	}
	return true, nil
}

func (it *Interpreter) randomInt(max int) int {
	if max <= 0 {
		return 0
	}
	return it.opts.RandomInt(max)
}

// operateVariable 运算：0 赋值, 1 加, 2 减, 3 乘, 4 除, 5 取余。除数为 0 时结果为 0，除法向下取整。
func (it *Interpreter) operateVariable(id, op, value int) {
	st := it.w.State
	old := st.GetVariable(id)
	switch op {
	case 0:
		st.SetVariable(id, value)
	case 1:
		st.SetVariable(id, old+value)
	case 2:
		st.SetVariable(id, old-value)
	case 3:
		st.SetVariable(id, old*value)
	case 4:
		if value == 0 {
			st.SetVariable(id, 0)
			return
		}
		st.SetVariable(id, floorDiv(old, value))
	case 5:
		if value == 0 {
			st.SetVariable(id, 0)
			return
		}
		st.SetVariable(id, old%value)
	}
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

// gameDataOperand 读取游戏数据作为变量操作数。
func (it *Interpreter) gameDataOperand(kind, param1, param2 int) int {
	switch kind {
	case 0:
		return it.w.Party.NumItems(ItemRef{Kind: ItemKindItem, ID: param1})
	case 1:
		return it.w.Party.NumItems(ItemRef{Kind: ItemKindWeapon, ID: param1})
	case 2:
		return it.w.Party.NumItems(ItemRef{Kind: ItemKindArmor, ID: param1})
	case 3: // 角色
		actor := it.w.Actors.Actor(param1)
		if actor == nil {
			return 0
		}
		switch param2 {
		case 0:
			return actor.Level()
		case 1:
			return actor.CurrentExp()
		case 2:
			return actor.HP()
		case 3:
			return actor.MP()
		}
		if param2 >= 4 && param2 <= 11 {
			return actor.Param(param2 - 4)
		}
	case 4: // 敌人
		members := it.w.Troop.Members()
		if param1 < 0 || param1 >= len(members) || members[param1] == nil {
			return 0
		}
		enemy := members[param1]
		switch param2 {
		case 0:
			return enemy.HP()
		case 1:
			return enemy.MP()
		}
		if param2 >= 2 && param2 <= 9 {
			return enemy.Param(param2 - 2)
		}
	case 5: // 地图角色
		c := it.characterFor(param1)
		if c == nil {
			return 0
		}
		switch param2 {
		case 0:
			return c.X()
		case 1:
			return c.Y()
		case 2:
			return c.Direction()
		case 3:
			return c.ScreenX()
		case 4:
			return c.ScreenY()
		}
	case 6: // 队伍成员
		members := it.w.Party.Members()
		if param1 >= 0 && param1 < len(members) && members[param1] != nil {
			return members[param1].ActorID()
		}
	case 7: // 其他
		return it.otherOperand(param1)
	}
	return 0
}

func (it *Interpreter) otherOperand(param int) int {
	switch param {
	case 0:
		return it.w.Map.MapID()
	case 1:
		return it.w.Party.Size()
	case 2:
		return it.w.Party.Gold()
	case 3:
		return it.w.Party.Steps()
	case 4:
		return it.w.System.Playtime()
	case 5:
		return it.w.Timer.Seconds()
	case 6:
		return it.w.System.SaveCount()
	case 7:
		return it.w.System.BattleCount()
	case 8:
		return it.w.System.WinCount()
	case 9:
		return it.w.System.EscapeCount()
	}
	return 0
}

// 独立开关操作：仅对地图事件有效。
func (it *Interpreter) cmdControlSelfSwitch(context.Context) (bool, error) {
	if it.eventID > 0 {
		it.w.State.SetSelfSwitch(it.mapID, it.eventID, it.pStr(0), it.pInt(1) == 0)
	}
	return true, nil
}

// 计时器操作：p1 为秒数。
func (it *Interpreter) cmdControlTimer(context.Context) (bool, error) {
	if it.pInt(0) == 0 {
		it.w.Timer.Start(it.pInt(1) * 60)
	} else {
		it.w.Timer.Stop()
	}
	return true, nil
}

// 增减金币
func (it *Interpreter) cmdChangeGold(context.Context) (bool, error) {
	it.w.Party.GainGold(it.operateValue(it.pInt(0), it.pInt(1), it.pInt(2)))
	return true, nil
}

func (it *Interpreter) changeItems(kind ItemKind) {
	value := it.operateValue(it.pInt(1), it.pInt(2), it.pInt(3))
	includeEquip := kind != ItemKindItem && it.pBool(4)
	it.w.Party.GainItem(ItemRef{Kind: kind, ID: it.pInt(0)}, value, includeEquip)
}

func (it *Interpreter) cmdChangeItems(context.Context) (bool, error) {
	it.changeItems(ItemKindItem)
	return true, nil
}

func (it *Interpreter) cmdChangeWeapons(context.Context) (bool, error) {
	it.changeItems(ItemKindWeapon)
	return true, nil
}

func (it *Interpreter) cmdChangeArmors(context.Context) (bool, error) {
	it.changeItems(ItemKindArmor)
	return true, nil
}

// 队伍成员变更：p1 为 0 时加入（p2 为真时先初始化），否则离开。
func (it *Interpreter) cmdChangePartyMember(context.Context) (bool, error) {
	id := it.pInt(0)
	actor := it.w.Actors.Actor(id)
	if actor == nil {
		return true, nil
	}
	if it.pInt(1) == 0 {
		if it.pBool(2) {
			actor.Setup(id)
		}
		it.w.Party.AddActor(id)
	} else {
		it.w.Party.RemoveActor(id)
	}
	return true, nil
}
