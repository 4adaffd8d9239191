package world

import (
	"github.com/kasuganosora/rmmvinterp/game/interp"
	"github.com/kasuganosora/rmmvinterp/resource"
)

// maxLogEntries bounds the histories kept for the debug API.
const maxLogEntries = 64

// Audio records what would be playing ($gameSystem / AudioManager).
// Fade-outs stop the track after the given number of seconds.
type Audio struct {
	bgm       resource.AudioFile
	bgs       resource.AudioFile
	bgmFade   int // frames left
	bgsFade   int
	me        []resource.AudioFile
	se        []resource.AudioFile
	seStopped int
}

var _ interp.Audio = (*Audio)(nil)

func newAudio() *Audio { return &Audio{} }

func (a *Audio) PlayBGM(f resource.AudioFile) {
	a.bgm = f
	a.bgmFade = 0
}

func (a *Audio) FadeOutBGM(seconds int) {
	if a.bgm.Name == "" {
		return
	}
	if seconds <= 0 {
		a.bgm = resource.AudioFile{}
		return
	}
	a.bgmFade = seconds * 60
}

func (a *Audio) PlayBGS(f resource.AudioFile) {
	a.bgs = f
	a.bgsFade = 0
}

func (a *Audio) FadeOutBGS(seconds int) {
	if a.bgs.Name == "" {
		return
	}
	if seconds <= 0 {
		a.bgs = resource.AudioFile{}
		return
	}
	a.bgsFade = seconds * 60
}

func (a *Audio) PlayME(f resource.AudioFile) {
	a.me = appendSound(a.me, f)
}

func (a *Audio) PlaySE(f resource.AudioFile) {
	if f.Name == "" {
		return
	}
	a.se = appendSound(a.se, f)
}

func (a *Audio) StopSE() { a.seStopped++ }

func appendSound(log []resource.AudioFile, f resource.AudioFile) []resource.AudioFile {
	log = append(log, f)
	if len(log) > maxLogEntries {
		log = log[len(log)-maxLogEntries:]
	}
	return log
}

// CurrentBGM returns the playing BGM. A zero value means silence.
func (a *Audio) CurrentBGM() resource.AudioFile { return a.bgm }

// CurrentBGS returns the playing BGS.
func (a *Audio) CurrentBGS() resource.AudioFile { return a.bgs }

func (a *Audio) tick() {
	if a.bgmFade > 0 {
		a.bgmFade--
		if a.bgmFade == 0 {
			a.bgm = resource.AudioFile{}
		}
	}
	if a.bgsFade > 0 {
		a.bgsFade--
		if a.bgsFade == 0 {
			a.bgs = resource.AudioFile{}
		}
	}
}

// AudioSnapshot is the audio state reported by the debug API.
type AudioSnapshot struct {
	BGM       resource.AudioFile   `json:"bgm"`
	BGS       resource.AudioFile   `json:"bgs"`
	ME        []resource.AudioFile `json:"me"`
	SE        []resource.AudioFile `json:"se"`
	SEStopped int                  `json:"se_stopped"`
}

func (a *Audio) Snapshot() AudioSnapshot {
	return AudioSnapshot{
		BGM:       a.bgm,
		BGS:       a.bgs,
		ME:        append([]resource.AudioFile{}, a.me...),
		SE:        append([]resource.AudioFile{}, a.se...),
		SEStopped: a.seStopped,
	}
}
