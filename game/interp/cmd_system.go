package interp

import (
	"context"
)

// 更改战斗 BGM
func (it *Interpreter) cmdChangeBattleBGM(context.Context) (bool, error) {
	it.w.System.SetBattleBGM(it.pAudio(0))
	return true, nil
}

// 更改胜利 ME
func (it *Interpreter) cmdChangeVictoryME(context.Context) (bool, error) {
	it.w.System.SetVictoryME(it.pAudio(0))
	return true, nil
}

// 更改战败 ME
func (it *Interpreter) cmdChangeDefeatME(context.Context) (bool, error) {
	it.w.System.SetDefeatME(it.pAudio(0))
	return true, nil
}

// 134–137：p0 为 0 时禁止，否则允许。
func (it *Interpreter) cmdChangeSaveAccess(context.Context) (bool, error) {
	it.w.System.SetSaveEnabled(it.pInt(0) != 0)
	return true, nil
}

func (it *Interpreter) cmdChangeMenuAccess(context.Context) (bool, error) {
	it.w.System.SetMenuEnabled(it.pInt(0) != 0)
	return true, nil
}

func (it *Interpreter) cmdChangeEncounter(context.Context) (bool, error) {
	it.w.System.SetEncounterEnabled(it.pInt(0) != 0)
	it.w.Player.MakeEncounterCount()
	return true, nil
}

func (it *Interpreter) cmdChangeFormation(context.Context) (bool, error) {
	it.w.System.SetFormationEnabled(it.pInt(0) != 0)
	return true, nil
}

// 更改窗口颜色
func (it *Interpreter) cmdChangeWindowColor(context.Context) (bool, error) {
	it.w.System.SetWindowTone(it.pInts(0))
	return true, nil
}

// 更改载具 BGM
func (it *Interpreter) cmdChangeVehicleBGM(context.Context) (bool, error) {
	if v := it.w.Map.Vehicle(it.pInt(0)); v != nil {
		v.SetBGM(it.pAudio(1))
	}
	return true, nil
}

// 地图名称显示
func (it *Interpreter) cmdChangeMapNameDisplay(context.Context) (bool, error) {
	it.w.Map.SetNameDisplay(it.pInt(0) == 0)
	return true, nil
}

// 更改图块组：所有图块图片就绪后才切换，否则本帧结束并在下一帧重试。
func (it *Interpreter) cmdChangeTileset(context.Context) (bool, error) {
	id := it.pInt(0)
	if it.w.Data == nil {
		return true, nil
	}
	tileset := it.w.Data.TilesetByID(id)
	if tileset == nil {
		return true, nil
	}
	if it.imageReservationID == "" {
		it.imageReservationID = it.opts.NewReservationID()
	}
	allReady := true
	for _, name := range tileset.TilesetNames {
		if !it.w.Assets.Reserve(AssetTilesets, name, 0, it.imageReservationID) {
			allReady = false
		}
	}
	if !allReady {
		return false, nil
	}
	it.w.Map.ChangeTileset(id)
	it.w.Assets.ReleaseReservation(it.imageReservationID)
	it.imageReservationID = ""
	return true, nil
}

// 更改战斗背景
func (it *Interpreter) cmdChangeBattleBack(context.Context) (bool, error) {
	it.w.Map.ChangeBattleback(it.pStr(0), it.pStr(1))
	return true, nil
}

// 更改远景
func (it *Interpreter) cmdChangeParallax(context.Context) (bool, error) {
	it.w.Map.ChangeParallax(it.pStr(0), it.pBool(1), it.pBool(2), it.pInt(3), it.pInt(4))
	return true, nil
}

// 获取指定位置的信息：p1 为 0 地形标志, 1 事件 ID, 2–5 图块 ID（图层 1–4）, 其余为区域 ID。
func (it *Interpreter) cmdGetLocationInfo(context.Context) (bool, error) {
	x, y := it.pInt(3), it.pInt(4)
	if it.pInt(2) != 0 {
		x = it.w.State.GetVariable(x)
		y = it.w.State.GetVariable(y)
	}
	m := it.w.Map
	var value int
	switch kind := it.pInt(1); kind {
	case 0:
		value = m.TerrainTag(x, y)
	case 1:
		value = m.EventIDXY(x, y)
	case 2, 3, 4, 5:
		value = m.TileID(x, y, kind-2)
	default:
		value = m.RegionID(x, y)
	}
	it.w.State.SetVariable(it.pInt(0), value)
	return true, nil
}
