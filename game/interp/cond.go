package interp

import (
	"context"
	"math"
	"slices"
)

// evalCondition 计算条件分支（111）的结果。
func (it *Interpreter) evalCondition(ctx context.Context) (bool, error) {
	st := it.w.State
	switch it.pInt(0) {
	case 0: // 开关
		return st.GetSwitch(it.pInt(1)) == (it.pInt(2) == 0), nil
	case 1: // 变量
		v1 := st.GetVariable(it.pInt(1))
		v2 := it.pInt(3)
		if it.pInt(2) != 0 {
			v2 = st.GetVariable(it.pInt(3))
		}
		return compareInt(it.pInt(4), v1, v2), nil
	case 2: // 独立开关
		if it.eventID > 0 {
			return st.GetSelfSwitch(it.mapID, it.eventID, it.pStr(1)) == (it.pInt(2) == 0), nil
		}
	case 3: // 计时器
		if it.w.Timer.IsWorking() {
			if it.pInt(2) == 0 {
				return it.w.Timer.Seconds() >= it.pInt(1), nil
			}
			return it.w.Timer.Seconds() <= it.pInt(1), nil
		}
	case 4: // 角色
		return it.actorCondition(), nil
	case 5: // 敌人
		members := it.w.Troop.Members()
		idx := it.pInt(1)
		if idx < 0 || idx >= len(members) || members[idx] == nil {
			return false, nil
		}
		switch it.pInt(2) {
		case 0:
			return members[idx].IsAlive(), nil
		case 1:
			return members[idx].IsStateAffected(it.pInt(3)), nil
		}
	case 6: // 角色朝向
		if c := it.characterFor(it.pInt(1)); c != nil {
			return c.Direction() == it.pInt(2), nil
		}
	case 7: // 金币
		gold := it.w.Party.Gold()
		switch it.pInt(2) {
		case 0:
			return gold >= it.pInt(1), nil
		case 1:
			return gold <= it.pInt(1), nil
		case 2:
			return gold < it.pInt(1), nil
		}
	case 8: // 物品
		return it.w.Party.HasItem(ItemRef{Kind: ItemKindItem, ID: it.pInt(1)}, false), nil
	case 9: // 武器
		return it.w.Party.HasItem(ItemRef{Kind: ItemKindWeapon, ID: it.pInt(1)}, it.pBool(2)), nil
	case 10: // 护甲
		return it.w.Party.HasItem(ItemRef{Kind: ItemKindArmor, ID: it.pInt(1)}, it.pBool(2)), nil
	case 11: // 按键
		return it.w.Input.IsPressed(it.pStr(1)), nil
	case 12: // 脚本
		src := it.pStr(1)
		v, err := it.evalScript(ctx, src)
		if err != nil {
			return false, &Error{EventCommand: SourceConditionalScript, Content: src, Err: err}
		}
		return truthy(v), nil
	case 13: // 载具
		return it.w.Player.InVehicle(it.pInt(1)), nil
	}
	return false, nil
}

func (it *Interpreter) actorCondition() bool {
	actor := it.w.Actors.Actor(it.pInt(1))
	if actor == nil {
		return false
	}
	n := it.pInt(3)
	switch it.pInt(2) {
	case 0: // 在队伍中
		return slices.ContainsFunc(it.w.Party.Members(), func(a Actor) bool {
			return a != nil && a.ActorID() == actor.ActorID()
		})
	case 1: // 名字
		return actor.Name() == it.pStr(3)
	case 2: // 职业
		return actor.IsClass(n)
	case 3: // 技能
		return actor.HasSkill(n)
	case 4: // 武器
		return actor.HasWeapon(n)
	case 5: // 护甲
		return actor.HasArmor(n)
	case 6: // 状态
		return actor.IsStateAffected(n)
	}
	return false
}

// compareInt 按 RMMV 的比较类型比较：0 等于, 1 大于等于, 2 小于等于, 3 大于, 4 小于, 5 不等于。
func compareInt(op, a, b int) bool {
	switch op {
	case 0:
		return a == b
	case 1:
		return a >= b
	case 2:
		return a <= b
	case 3:
		return a > b
	case 4:
		return a < b
	case 5:
		return a != b
	}
	return false
}

func (it *Interpreter) evalScript(ctx context.Context, src string) (interface{}, error) {
	if it.opts.Script == nil {
		return nil, errNoScriptEngine
	}
	return it.opts.Script.Eval(ctx, src, it.scriptContext())
}

// truthy 按 JS 规则把脚本结果转为布尔值。
func truthy(v interface{}) bool {
	switch x := v.(type) {
	case nil:
		return false
	case bool:
		return x
	case float64:
		return x != 0 && !math.IsNaN(x)
	case int:
		return x != 0
	case int64:
		return x != 0
	case string:
		return x != ""
	}
	return true
}

// scriptInt 把脚本结果转为变量值，非数值为 0，小数向下取整。
func scriptInt(v interface{}) int {
	switch x := v.(type) {
	case float64:
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return 0
		}
		return int(math.Floor(x))
	case int:
		return x
	case int64:
		return int(x)
	case bool:
		if x {
			return 1
		}
	}
	return 0
}
