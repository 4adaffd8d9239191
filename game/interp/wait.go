package interp

// WaitMode 是解释器等待的外部条件。
type WaitMode int

const (
	WaitNone WaitMode = iota
	WaitMessage
	WaitTransfer
	WaitScroll
	WaitRoute
	WaitAnimation
	WaitBalloon
	WaitGather
	WaitAction
	WaitVideo
	WaitImage
)

var waitModeNames = [...]string{"", "message", "transfer", "scroll", "route", "animation", "balloon", "gather", "action", "video", "image"}

func (m WaitMode) String() string {
	if m < 0 || int(m) >= len(waitModeNames) {
		return "unknown"
	}
	return waitModeNames[m]
}

func (it *Interpreter) setWaitMode(m WaitMode) { it.waitMode = m }

func (it *Interpreter) wait(frames int) { it.waitCount = frames }

// fadeSpeed 淡入淡出的帧数。
func (it *Interpreter) fadeSpeed() int { return 24 }

func (it *Interpreter) updateWait() bool {
	return it.updateWaitCount() || it.updateWaitMode()
}

func (it *Interpreter) updateWaitCount() bool {
	if it.waitCount > 0 {
		it.waitCount--
		return true
	}
	return false
}

func (it *Interpreter) updateWaitMode() bool {
	waiting := false
	switch it.waitMode {
	case WaitMessage:
		waiting = it.w.Message.IsBusy()
	case WaitTransfer:
		waiting = it.w.Player.IsTransferring()
	case WaitScroll:
		waiting = it.w.Map.IsScrolling()
	case WaitRoute:
		waiting = it.character != nil && it.character.IsMoveRouteForcing()
	case WaitAnimation:
		waiting = it.character != nil && it.character.IsAnimationPlaying()
	case WaitBalloon:
		waiting = it.character != nil && it.character.IsBalloonPlaying()
	case WaitGather:
		waiting = it.w.Player.AreFollowersGathering()
	case WaitAction:
		waiting = it.w.Battle.IsActionForced()
	case WaitVideo:
		waiting = it.w.Video.IsPlaying()
	case WaitImage:
		waiting = !it.w.Assets.IsReady()
	}
	if !waiting {
		it.waitMode = WaitNone
	}
	return waiting
}
