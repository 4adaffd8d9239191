package interp

import (
	"context"
)

// 战斗处理：p0 为 0 直接指定敌群, 1 变量指定, 其余与随机遇敌相同。
func (it *Interpreter) cmdBattleProcessing(context.Context) (bool, error) {
	if it.inBattle() {
		return true, nil
	}
	var troopID int
	switch it.pInt(0) {
	case 0:
		troopID = it.pInt(1)
	case 1:
		troopID = it.w.State.GetVariable(it.pInt(1))
	default:
		troopID = it.w.Player.MakeEncounterTroopID()
	}
	if it.w.Data == nil || it.w.Data.TroopByID(troopID) == nil {
		return true, nil
	}
	it.w.Battle.Setup(troopID, it.pBool(2), it.pBool(3))
	indent := it.indent
	it.w.Battle.SetEventCallback(func(result int) {
		it.branch[indent] = result
	})
	it.w.Player.MakeEncounterCount()
	it.w.Scenes.Push(SceneBattle)
	return true, nil
}

func (it *Interpreter) battleResultIs(result int) {
	if v, ok := it.branch[it.indent].(int); !ok || v != result {
		it.skipBranch()
	}
}

// 胜利时
func (it *Interpreter) cmdIfWin(context.Context) (bool, error) {
	it.battleResultIs(BattleWin)
	return true, nil
}

// 逃跑时
func (it *Interpreter) cmdIfEscape(context.Context) (bool, error) {
	it.battleResultIs(BattleEscape)
	return true, nil
}

// 失败时
func (it *Interpreter) cmdIfLose(context.Context) (bool, error) {
	it.battleResultIs(BattleLose)
	return true, nil
}

// 商店处理：本指令的参数为第一件商品，后续 605 行为其余商品。p4 为仅限购买。
func (it *Interpreter) cmdShopProcessing(context.Context) (bool, error) {
	if it.inBattle() {
		return true, nil
	}
	goods := [][]interface{}{it.params}
	for it.nextEventCode() == CmdShopItem {
		it.index++
		goods = append(goods, paramsOf(it.list[it.index]))
	}
	it.w.Scenes.Push(SceneShop, goods, it.pBool(4))
	return true, nil
}

// 名字输入处理
func (it *Interpreter) cmdNameInput(context.Context) (bool, error) {
	if it.inBattle() {
		return true, nil
	}
	if it.w.Data != nil && it.w.Data.ActorByID(it.pInt(0)) != nil {
		it.w.Scenes.Push(SceneName, it.pInt(0), it.pInt(1))
	}
	return true, nil
}

// ---- 角色 ----

// 增减 HP：p5 为允许战斗不能。
func (it *Interpreter) cmdChangeHP(context.Context) (bool, error) {
	value := it.operateValue(it.pInt(2), it.pInt(3), it.pInt(4))
	allowDeath := it.pBool(5)
	it.iterateActorEx(it.pInt(0), it.pInt(1), func(a Actor) {
		changeHP(a, value, allowDeath)
	})
	return true, nil
}

func (it *Interpreter) cmdChangeMP(context.Context) (bool, error) {
	value := it.operateValue(it.pInt(2), it.pInt(3), it.pInt(4))
	it.iterateActorEx(it.pInt(0), it.pInt(1), func(a Actor) { a.GainMP(value) })
	return true, nil
}

func (it *Interpreter) cmdChangeTP(context.Context) (bool, error) {
	value := it.operateValue(it.pInt(2), it.pInt(3), it.pInt(4))
	it.iterateActorEx(it.pInt(0), it.pInt(1), func(a Actor) { a.GainTP(value) })
	return true, nil
}

// changeState 附加或解除状态，新进入战斗不能时执行倒下效果。
func changeState(b Battler, remove bool, stateID int) {
	alreadyDead := b.IsDead()
	if remove {
		b.RemoveState(stateID)
	} else {
		b.AddState(stateID)
	}
	if b.IsDead() && !alreadyDead {
		b.PerformCollapse()
	}
	b.ClearResult()
}

func (it *Interpreter) cmdChangeState(context.Context) (bool, error) {
	remove, stateID := it.pInt(2) != 0, it.pInt(3)
	it.iterateActorEx(it.pInt(0), it.pInt(1), func(a Actor) { changeState(a, remove, stateID) })
	return true, nil
}

func (it *Interpreter) cmdRecoverAll(context.Context) (bool, error) {
	it.iterateActorEx(it.pInt(0), it.pInt(1), func(a Actor) { a.RecoverAll() })
	return true, nil
}

func (it *Interpreter) cmdChangeEXP(context.Context) (bool, error) {
	value := it.operateValue(it.pInt(2), it.pInt(3), it.pInt(4))
	show := it.pBool(5)
	it.iterateActorEx(it.pInt(0), it.pInt(1), func(a Actor) {
		a.ChangeExp(a.CurrentExp()+value, show)
	})
	return true, nil
}

func (it *Interpreter) cmdChangeLevel(context.Context) (bool, error) {
	value := it.operateValue(it.pInt(2), it.pInt(3), it.pInt(4))
	show := it.pBool(5)
	it.iterateActorEx(it.pInt(0), it.pInt(1), func(a Actor) {
		a.ChangeLevel(a.Level()+value, show)
	})
	return true, nil
}

// 增减能力值：p2 为能力编号，操作数在 p3–p5。
func (it *Interpreter) cmdChangeParameter(context.Context) (bool, error) {
	value := it.operateValue(it.pInt(3), it.pInt(4), it.pInt(5))
	paramID := it.pInt(2)
	it.iterateActorEx(it.pInt(0), it.pInt(1), func(a Actor) { a.AddParam(paramID, value) })
	return true, nil
}

func (it *Interpreter) cmdChangeSkill(context.Context) (bool, error) {
	forget, skillID := it.pInt(2) != 0, it.pInt(3)
	it.iterateActorEx(it.pInt(0), it.pInt(1), func(a Actor) {
		if forget {
			a.ForgetSkill(skillID)
		} else {
			a.LearnSkill(skillID)
		}
	})
	return true, nil
}

func (it *Interpreter) cmdChangeEquipment(context.Context) (bool, error) {
	if a := it.w.Actors.Actor(it.pInt(0)); a != nil {
		a.ChangeEquipByID(it.pInt(1), it.pInt(2))
	}
	return true, nil
}

func (it *Interpreter) cmdChangeName(context.Context) (bool, error) {
	if a := it.w.Actors.Actor(it.pInt(0)); a != nil {
		a.SetName(it.pStr(1))
	}
	return true, nil
}

func (it *Interpreter) cmdChangeNickname(context.Context) (bool, error) {
	if a := it.w.Actors.Actor(it.pInt(0)); a != nil {
		a.SetNickname(it.pStr(1))
	}
	return true, nil
}

func (it *Interpreter) cmdChangeProfile(context.Context) (bool, error) {
	if a := it.w.Actors.Actor(it.pInt(0)); a != nil {
		a.SetProfile(it.pStr(1))
	}
	return true, nil
}

// 更改职业：p2 为保留经验值。
func (it *Interpreter) cmdChangeClass(context.Context) (bool, error) {
	a := it.w.Actors.Actor(it.pInt(0))
	if a != nil && it.w.Data != nil && it.w.Data.ClassByID(it.pInt(1)) != nil {
		a.ChangeClass(it.pInt(1), it.pBool(2))
	}
	return true, nil
}

// 更改角色图像：行走图 p1/p2，脸图 p3/p4，SV 战斗图 p5。
func (it *Interpreter) cmdChangeActorImages(context.Context) (bool, error) {
	if a := it.w.Actors.Actor(it.pInt(0)); a != nil {
		a.SetCharacterImage(it.pStr(1), it.pInt(2))
		a.SetFaceImage(it.pStr(3), it.pInt(4))
		a.SetBattlerImage(it.pStr(5))
	}
	it.w.Player.Refresh()
	return true, nil
}

func (it *Interpreter) cmdChangeVehicleImage(context.Context) (bool, error) {
	if v := it.w.Map.Vehicle(it.pInt(0)); v != nil {
		v.SetImage(it.pStr(1), it.pInt(2))
	}
	return true, nil
}

// ---- 敌人 ----

func (it *Interpreter) cmdChangeEnemyHP(context.Context) (bool, error) {
	value := it.operateValue(it.pInt(1), it.pInt(2), it.pInt(3))
	allowDeath := it.pBool(4)
	it.iterateEnemyIndex(it.pInt(0), func(e Enemy) { changeHP(e, value, allowDeath) })
	return true, nil
}

func (it *Interpreter) cmdChangeEnemyMP(context.Context) (bool, error) {
	value := it.operateValue(it.pInt(1), it.pInt(2), it.pInt(3))
	it.iterateEnemyIndex(it.pInt(0), func(e Enemy) { e.GainMP(value) })
	return true, nil
}

func (it *Interpreter) cmdChangeEnemyTP(context.Context) (bool, error) {
	value := it.operateValue(it.pInt(1), it.pInt(2), it.pInt(3))
	it.iterateEnemyIndex(it.pInt(0), func(e Enemy) { e.GainTP(value) })
	return true, nil
}

func (it *Interpreter) cmdChangeEnemyState(context.Context) (bool, error) {
	remove, stateID := it.pInt(1) != 0, it.pInt(2)
	it.iterateEnemyIndex(it.pInt(0), func(e Enemy) { changeState(e, remove, stateID) })
	return true, nil
}

func (it *Interpreter) cmdEnemyRecoverAll(context.Context) (bool, error) {
	it.iterateEnemyIndex(it.pInt(0), func(e Enemy) { e.RecoverAll() })
	return true, nil
}

func (it *Interpreter) cmdEnemyAppear(context.Context) (bool, error) {
	it.iterateEnemyIndex(it.pInt(0), func(e Enemy) {
		e.Appear()
		it.w.Troop.MakeUniqueNames()
	})
	return true, nil
}

func (it *Interpreter) cmdEnemyTransform(context.Context) (bool, error) {
	enemyID := it.pInt(1)
	it.iterateEnemyIndex(it.pInt(0), func(e Enemy) {
		e.Transform(enemyID)
		it.w.Troop.MakeUniqueNames()
	})
	return true, nil
}

// 显示战斗动画：p2 为真时对全部敌人。
func (it *Interpreter) cmdShowBattleAnimation(context.Context) (bool, error) {
	index := it.pInt(0)
	if it.pBool(2) {
		index = -1
	}
	animationID := it.pInt(1)
	it.iterateEnemyIndex(index, func(e Enemy) {
		if e.IsAlive() {
			e.StartAnimation(animationID, false, 0)
		}
	})
	return true, nil
}

// 强制战斗行动：p0 为 0 时 p1 是敌人序号，否则是角色 ID。
func (it *Interpreter) cmdForceAction(context.Context) (bool, error) {
	skillID, target := it.pInt(2), it.pInt(3)
	it.iterateBattler(it.pInt(0), it.pInt(1), func(b Battler) {
		if b.IsDeathStateAffected() {
			return
		}
		b.ForceAction(skillID, target)
		it.w.Battle.ForceAction(b)
		it.setWaitMode(WaitAction)
	})
	return true, nil
}

// 中止战斗
func (it *Interpreter) cmdAbortBattle(context.Context) (bool, error) {
	it.w.Battle.Abort()
	return true, nil
}
