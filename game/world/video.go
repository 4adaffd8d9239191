package world

import "github.com/kasuganosora/rmmvinterp/game/interp"

// defaultMovieFrames is how long a movie plays headless.
const defaultMovieFrames = 60

// Video records movie playback. A movie plays for a fixed number of
// frames.
type Video struct {
	src    string
	frames int
	played []string
}

var _ interp.Video = (*Video)(nil)

func (v *Video) Play(src string) {
	v.src = src
	v.frames = defaultMovieFrames
	v.played = append(v.played, src)
}

func (v *Video) IsPlaying() bool { return v.frames > 0 }

func (v *Video) FileExt() string { return ".webm" }

// Played returns the sources played so far.
func (v *Video) Played() []string { return append([]string(nil), v.played...) }

func (v *Video) tick() {
	if v.frames > 0 {
		v.frames--
	}
}
