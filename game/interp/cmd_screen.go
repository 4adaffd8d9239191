package interp

import (
	"context"
)

// 淡出画面
func (it *Interpreter) cmdFadeoutScreen(context.Context) (bool, error) {
	if it.w.Message.IsBusy() {
		return false, nil
	}
	it.w.Screen.StartFadeOut(it.fadeSpeed())
	it.wait(it.fadeSpeed())
	it.index++
	return false, nil
}

// 淡入画面
func (it *Interpreter) cmdFadeinScreen(context.Context) (bool, error) {
	if it.w.Message.IsBusy() {
		return false, nil
	}
	it.w.Screen.StartFadeIn(it.fadeSpeed())
	it.wait(it.fadeSpeed())
	it.index++
	return false, nil
}

// 更改画面色调
func (it *Interpreter) cmdTintScreen(context.Context) (bool, error) {
	it.w.Screen.StartTint(it.pInts(0), it.pInt(1))
	if it.pBool(2) {
		it.wait(it.pInt(1))
	}
	return true, nil
}

// 画面闪烁
func (it *Interpreter) cmdFlashScreen(context.Context) (bool, error) {
	it.w.Screen.StartFlash(it.pInts(0), it.pInt(1))
	if it.pBool(2) {
		it.wait(it.pInt(1))
	}
	return true, nil
}

// 画面震动
func (it *Interpreter) cmdShakeScreen(context.Context) (bool, error) {
	it.w.Screen.StartShake(it.pInt(0), it.pInt(1), it.pInt(2))
	if it.pBool(3) {
		it.wait(it.pInt(2))
	}
	return true, nil
}

// 等待
func (it *Interpreter) cmdWait(context.Context) (bool, error) {
	it.wait(it.pInt(0))
	return true, nil
}

// pictureParams 读取 231/232 的公共参数：p3 为坐标指定方式，p4/p5 坐标，p6–p9 缩放、不透明度、合成方式。
func (it *Interpreter) pictureParams() PictureParams {
	x, y := it.pInt(4), it.pInt(5)
	if it.pInt(3) != 0 {
		x, y = it.w.State.GetVariable(x), it.w.State.GetVariable(y)
	}
	return PictureParams{
		Origin:    it.pInt(2),
		X:         x,
		Y:         y,
		ScaleX:    it.pInt(6),
		ScaleY:    it.pInt(7),
		Opacity:   it.pInt(8),
		BlendMode: it.pInt(9),
	}
}

// 显示图片
func (it *Interpreter) cmdShowPicture(context.Context) (bool, error) {
	p := it.pictureParams()
	p.Name = it.pStr(1)
	it.w.Screen.ShowPicture(it.pInt(0), p)
	return true, nil
}

// 移动图片
func (it *Interpreter) cmdMovePicture(context.Context) (bool, error) {
	it.w.Screen.MovePicture(it.pInt(0), it.pictureParams(), it.pInt(10))
	if it.pBool(11) {
		it.wait(it.pInt(10))
	}
	return true, nil
}

// 旋转图片
func (it *Interpreter) cmdRotatePicture(context.Context) (bool, error) {
	it.w.Screen.RotatePicture(it.pInt(0), it.pInt(1))
	return true, nil
}

// 更改图片色调
func (it *Interpreter) cmdTintPicture(context.Context) (bool, error) {
	it.w.Screen.TintPicture(it.pInt(0), it.pInts(1), it.pInt(2))
	if it.pBool(3) {
		it.wait(it.pInt(2))
	}
	return true, nil
}

// 消除图片
func (it *Interpreter) cmdErasePicture(context.Context) (bool, error) {
	it.w.Screen.ErasePicture(it.pInt(0))
	return true, nil
}

// 设置天气
func (it *Interpreter) cmdSetWeather(context.Context) (bool, error) {
	if it.inBattle() {
		return true, nil
	}
	it.w.Screen.ChangeWeather(it.pStr(0), it.pInt(1), it.pInt(2))
	if it.pBool(3) {
		it.wait(it.pInt(2))
	}
	return true, nil
}

// ---- 声音 ----

func (it *Interpreter) cmdPlayBGM(context.Context) (bool, error) {
	it.w.Audio.PlayBGM(it.pAudio(0))
	return true, nil
}

func (it *Interpreter) cmdFadeoutBGM(context.Context) (bool, error) {
	it.w.Audio.FadeOutBGM(it.pInt(0))
	return true, nil
}

func (it *Interpreter) cmdSaveBGM(context.Context) (bool, error) {
	it.w.System.SaveBGM()
	return true, nil
}

func (it *Interpreter) cmdResumeBGM(context.Context) (bool, error) {
	it.w.System.ReplayBGM()
	return true, nil
}

func (it *Interpreter) cmdPlayBGS(context.Context) (bool, error) {
	it.w.Audio.PlayBGS(it.pAudio(0))
	return true, nil
}

func (it *Interpreter) cmdFadeoutBGS(context.Context) (bool, error) {
	it.w.Audio.FadeOutBGS(it.pInt(0))
	return true, nil
}

func (it *Interpreter) cmdPlayME(context.Context) (bool, error) {
	it.w.Audio.PlayME(it.pAudio(0))
	return true, nil
}

func (it *Interpreter) cmdPlaySE(context.Context) (bool, error) {
	it.w.Audio.PlaySE(it.pAudio(0))
	return true, nil
}

func (it *Interpreter) cmdStopSE(context.Context) (bool, error) {
	it.w.Audio.StopSE()
	return true, nil
}

// 播放影片：文件名为空时只前进。
func (it *Interpreter) cmdPlayMovie(context.Context) (bool, error) {
	if it.w.Message.IsBusy() {
		return false, nil
	}
	if name := it.pStr(0); name != "" {
		it.w.Video.Play("movies/" + name + it.w.Video.FileExt())
		it.setWaitMode(WaitVideo)
	}
	it.index++
	return false, nil
}
