package world

import (
	"sort"

	"github.com/kasuganosora/rmmvinterp/game/interp"
)

const maxPictures = 100

// Picture is one shown picture. Moves and tints settle after Duration
// frames.
type Picture struct {
	interp.PictureParams
	Angle         int   `json:"angle"`
	RotationSpeed int   `json:"rotation_speed"`
	Tone          []int `json:"tone,omitempty"`
	moveFrames    int
	tintFrames    int
	target        interp.PictureParams
	toneTarget    []int
}

// Screen tracks screen effects ($gameScreen). Effects are modelled as
// frame countdowns that settle to their target value.
type Screen struct {
	brightness  int
	fadeOut     int
	fadeIn      int
	tone        []int
	toneTarget  []int
	toneFrames  int
	flashColor  []int
	flashFrames int
	shakePower  int
	shakeSpeed  int
	shakeFrames int

	weatherType   string
	weatherPower  int
	weatherTarget int
	weatherFrames int

	pictures map[int]*Picture
}

var _ interp.Screen = (*Screen)(nil)

func newScreen() *Screen {
	return &Screen{brightness: 255, tone: []int{0, 0, 0, 0}, pictures: make(map[int]*Picture)}
}

func (s *Screen) StartFadeOut(duration int) {
	s.fadeIn = 0
	s.fadeOut = max(duration, 1)
}

func (s *Screen) StartFadeIn(duration int) {
	s.fadeOut = 0
	s.fadeIn = max(duration, 1)
}

func (s *Screen) StartTint(tone []int, duration int) {
	s.toneTarget = append([]int(nil), tone...)
	s.toneFrames = duration
	if duration <= 0 {
		s.tone, s.toneTarget = s.toneTarget, nil
	}
}

func (s *Screen) StartFlash(color []int, duration int) {
	s.flashColor = append([]int(nil), color...)
	s.flashFrames = duration
}

func (s *Screen) StartShake(power, speed, duration int) {
	s.shakePower, s.shakeSpeed, s.shakeFrames = power, speed, duration
}

func validPicture(id int) bool { return id > 0 && id <= maxPictures }

func (s *Screen) ShowPicture(pictureID int, p interp.PictureParams) {
	if !validPicture(pictureID) {
		return
	}
	s.pictures[pictureID] = &Picture{PictureParams: p, target: p}
}

func (s *Screen) MovePicture(pictureID int, p interp.PictureParams, duration int) {
	pic := s.pictures[pictureID]
	if pic == nil {
		return
	}
	p.Name = pic.Name
	pic.target = p
	pic.moveFrames = duration
	if duration <= 0 {
		pic.PictureParams = p
	}
}

func (s *Screen) RotatePicture(pictureID, speed int) {
	if pic := s.pictures[pictureID]; pic != nil {
		pic.RotationSpeed = speed
	}
}

func (s *Screen) TintPicture(pictureID int, tone []int, duration int) {
	pic := s.pictures[pictureID]
	if pic == nil {
		return
	}
	pic.toneTarget = append([]int(nil), tone...)
	pic.tintFrames = duration
	if duration <= 0 {
		pic.Tone, pic.toneTarget = pic.toneTarget, nil
	}
}

func (s *Screen) ErasePicture(pictureID int) { delete(s.pictures, pictureID) }

// ChangeWeather sets the weather. "none" clears it once the power has
// faded out.
func (s *Screen) ChangeWeather(kind string, power, duration int) {
	if kind != "none" || duration == 0 {
		s.weatherType = kind
	}
	s.weatherTarget = power
	if kind == "none" {
		s.weatherTarget = 0
	}
	s.weatherFrames = duration
	if duration <= 0 {
		s.weatherPower = s.weatherTarget
	}
}

// ClearPictures erases all pictures, as on map transfer.
func (s *Screen) ClearPictures() { s.pictures = make(map[int]*Picture) }

func (s *Screen) tick() {
	if s.fadeOut > 0 {
		s.brightness = max(s.brightness-ceilDiv(s.brightness, s.fadeOut), 0)
		s.fadeOut--
	}
	if s.fadeIn > 0 {
		s.brightness = min(s.brightness+ceilDiv(255-s.brightness, s.fadeIn), 255)
		s.fadeIn--
	}
	if s.toneFrames > 0 {
		s.toneFrames--
		if s.toneFrames == 0 {
			s.tone, s.toneTarget = s.toneTarget, nil
		}
	}
	if s.flashFrames > 0 {
		s.flashFrames--
	}
	if s.shakeFrames > 0 {
		s.shakeFrames--
	}
	if s.weatherFrames > 0 {
		s.weatherFrames--
		if s.weatherFrames == 0 {
			s.weatherPower = s.weatherTarget
			if s.weatherTarget == 0 {
				s.weatherType = "none"
			}
		}
	}
	for _, pic := range s.pictures {
		pic.Angle += pic.RotationSpeed / 2
		if pic.moveFrames > 0 {
			pic.moveFrames--
			if pic.moveFrames == 0 {
				pic.PictureParams = pic.target
			}
		}
		if pic.tintFrames > 0 {
			pic.tintFrames--
			if pic.tintFrames == 0 {
				pic.Tone, pic.toneTarget = pic.toneTarget, nil
			}
		}
	}
}

func ceilDiv(a, b int) int {
	if b <= 0 {
		return a
	}
	return (a + b - 1) / b
}

// ScreenSnapshot is the screen state reported by the debug API.
type ScreenSnapshot struct {
	Brightness int              `json:"brightness"`
	Tone       []int            `json:"tone"`
	Flashing   bool             `json:"flashing"`
	Shaking    bool             `json:"shaking"`
	Weather    string           `json:"weather,omitempty"`
	Power      int              `json:"weather_power"`
	Pictures   map[int]*Picture `json:"pictures"`
}

func (s *Screen) Snapshot() ScreenSnapshot {
	snap := ScreenSnapshot{
		Brightness: s.brightness,
		Tone:       append([]int(nil), s.tone...),
		Flashing:   s.flashFrames > 0,
		Shaking:    s.shakeFrames > 0,
		Weather:    s.weatherType,
		Power:      s.weatherPower,
		Pictures:   make(map[int]*Picture, len(s.pictures)),
	}
	for id, pic := range s.pictures {
		cp := *pic
		snap.Pictures[id] = &cp
	}
	return snap
}

// PictureIDs returns the shown picture IDs in order.
func (s *Screen) PictureIDs() []int {
	ids := make([]int, 0, len(s.pictures))
	for id := range s.pictures {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// Picture returns a shown picture, or nil.
func (s *Screen) Picture(pictureID int) *Picture { return s.pictures[pictureID] }

// Brightness returns the fade level, 0 to 255.
func (s *Screen) Brightness() int { return s.brightness }
