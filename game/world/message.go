package world

import (
	"strings"

	"github.com/kasuganosora/rmmvinterp/game/interp"
)

// ChoicePolicy picks the answer to a choice list. It returns an index into
// choices, or cancelType to cancel.
type ChoicePolicy func(choices []string, defaultType, cancelType int) int

// DefaultChoicePolicy picks the default choice, or the first one when
// there is no default.
func DefaultChoicePolicy(choices []string, defaultType, cancelType int) int {
	if defaultType < 0 || defaultType >= len(choices) {
		return 0
	}
	return defaultType
}

// MessageEntry is one closed message window.
type MessageEntry struct {
	Face       string   `json:"face,omitempty"`
	FaceIndex  int      `json:"face_index,omitempty"`
	Background int      `json:"background"`
	Position   int      `json:"position"`
	Text       string   `json:"text,omitempty"`
	Choices    []string `json:"choices,omitempty"`
	Chosen     int      `json:"chosen,omitempty"`
	NumberVar  int      `json:"number_variable,omitempty"`
	ItemVar    int      `json:"item_variable,omitempty"`
	Scroll     bool     `json:"scroll,omitempty"`
}

// Message is the headless message window ($gameMessage). Windows close by
// themselves after AdvanceFrames frames. Choices go through the
// ChoicePolicy. Item choice stores 0 while number input leaves its
// variable alone.
type Message struct {
	w             *World
	advanceFrames int
	policy        ChoicePolicy

	face           string
	faceIndex      int
	background     int
	position       int
	lines          []string
	choices        []string
	choiceDefault  int
	choiceCancel   int
	choiceCallback func(n int)
	numberVar      int
	numberDigits   int
	itemVar        int
	itemType       int
	scroll         bool
	scrollSpeed    int
	waitFrames     int

	log []MessageEntry
}

var _ interp.Message = (*Message)(nil)

func newMessage(w *World) *Message {
	return &Message{w: w, advanceFrames: 1, policy: DefaultChoicePolicy, position: 2}
}

// SetAdvanceFrames sets how long a window stays open.
func (m *Message) SetAdvanceFrames(n int) { m.advanceFrames = max(n, 1) }

// SetChoicePolicy replaces DefaultChoicePolicy.
func (m *Message) SetChoicePolicy(p ChoicePolicy) {
	if p == nil {
		p = DefaultChoicePolicy
	}
	m.policy = p
}

func (m *Message) hasText() bool { return len(m.lines) > 0 }

func (m *Message) IsBusy() bool {
	return m.hasText() || len(m.choices) > 0 || m.numberVar > 0 || m.itemVar > 0
}

func (m *Message) SetFaceImage(name string, index int) { m.face, m.faceIndex = name, index }
func (m *Message) SetBackground(bg int)                { m.background = bg }
func (m *Message) SetPositionType(pos int)             { m.position = pos }
func (m *Message) SetChoiceBackground(bg int)          {}
func (m *Message) SetChoicePositionType(pos int)       {}
func (m *Message) SetChoiceCallback(fn func(n int))    { m.choiceCallback = fn }

func (m *Message) Add(text string) {
	m.lines = append(m.lines, text)
	m.arm()
}

func (m *Message) SetChoices(choices []string, defaultType, cancelType int) {
	m.choices = append([]string(nil), choices...)
	m.choiceDefault = defaultType
	m.choiceCancel = cancelType
	m.arm()
}

func (m *Message) SetNumberInput(variableID, digits int) {
	m.numberVar, m.numberDigits = variableID, digits
	m.arm()
}

func (m *Message) SetItemChoice(variableID, itemType int) {
	m.itemVar, m.itemType = variableID, itemType
	m.arm()
}

func (m *Message) SetScroll(speed int, noFast bool) {
	m.scroll = true
	m.scrollSpeed = speed
}

func (m *Message) arm() {
	if m.waitFrames == 0 {
		m.waitFrames = m.advanceFrames
	}
}

func (m *Message) tick() {
	if !m.IsBusy() {
		return
	}
	if m.waitFrames > 1 {
		m.waitFrames--
		return
	}
	m.close()
}

// close answers pending input and clears the window.
func (m *Message) close() {
	entry := MessageEntry{
		Face:       m.face,
		FaceIndex:  m.faceIndex,
		Background: m.background,
		Position:   m.position,
		Text:       strings.Join(m.lines, "\n"),
		Choices:    m.choices,
		NumberVar:  m.numberVar,
		ItemVar:    m.itemVar,
		Scroll:     m.scroll,
	}
	callback := m.choiceCallback
	var chosen int
	if len(m.choices) > 0 {
		chosen = m.policy(m.choices, m.choiceDefault, m.choiceCancel)
		entry.Chosen = chosen
	}
	if m.itemVar > 0 {
		m.w.State.SetVariable(m.itemVar, 0)
	}
	m.log = append(m.log, entry)
	if len(m.log) > maxLogEntries {
		m.log = m.log[len(m.log)-maxLogEntries:]
	}
	m.clear()
	if len(entry.Choices) > 0 && callback != nil {
		callback(chosen)
	}
}

func (m *Message) clear() {
	m.face, m.faceIndex = "", 0
	m.background, m.position = 0, 2
	m.lines = nil
	m.choices = nil
	m.choiceCallback = nil
	m.numberVar, m.numberDigits = 0, 0
	m.itemVar, m.itemType = 0, 0
	m.scroll = false
	m.waitFrames = 0
}

// Log returns the recently closed windows.
func (m *Message) Log() []MessageEntry { return append([]MessageEntry(nil), m.log...) }
