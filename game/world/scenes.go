package world

import (
	"github.com/kasuganosora/rmmvinterp/game/interp"
	"go.uber.org/zap"
)

// SceneRequest is a scene change asked for by an event command.
type SceneRequest struct {
	Scene interp.Scene  `json:"scene"`
	Args  []interface{} `json:"args,omitempty"`
	Goto  bool          `json:"goto"`
}

// Scenes is the headless SceneManager. A requested scene is entered on
// the next tick, so IsSceneChanging holds for exactly one frame. Battle
// hands over to Battle; other scenes close right away.
type Scenes struct {
	w       *World
	pending *SceneRequest
	stack   []interp.Scene
	log     []SceneRequest
	ended   bool
}

var _ interp.Scenes = (*Scenes)(nil)

func (s *Scenes) IsSceneChanging() bool { return s.pending != nil }

func (s *Scenes) Push(scene interp.Scene, args ...interface{}) {
	s.request(SceneRequest{Scene: scene, Args: args})
}

func (s *Scenes) Goto(scene interp.Scene) {
	s.request(SceneRequest{Scene: scene, Goto: true})
}

func (s *Scenes) request(r SceneRequest) {
	s.pending = &r
	s.log = append(s.log, r)
	if len(s.log) > maxLogEntries {
		s.log = s.log[len(s.log)-maxLogEntries:]
	}
}

// Current returns the active scene, "map" when the stack is empty.
func (s *Scenes) Current() interp.Scene {
	if len(s.stack) == 0 {
		return "map"
	}
	return s.stack[len(s.stack)-1]
}

// Ended reports whether the game reached the game over or title scene.
func (s *Scenes) Ended() bool { return s.ended }

// Log returns the recent scene requests.
func (s *Scenes) Log() []SceneRequest { return append([]SceneRequest(nil), s.log...) }

func (s *Scenes) tick() {
	r := s.pending
	if r == nil {
		return
	}
	s.pending = nil
	s.w.logger.Debug("scene change", zap.String("scene", string(r.Scene)), zap.Bool("goto", r.Goto))
	switch r.Scene {
	case interp.SceneBattle:
		s.stack = append(s.stack, r.Scene)
		s.w.Battle.start()
	case interp.SceneGameover, interp.SceneTitle:
		s.stack = []interp.Scene{r.Scene}
		s.ended = true
	case interp.SceneSave:
		s.w.System.onSave()
	}
}

// pop leaves the scene on top of the stack.
func (s *Scenes) pop() {
	if len(s.stack) > 0 && !s.ended {
		s.stack = s.stack[:len(s.stack)-1]
	}
}
