package world

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/kasuganosora/rmmvinterp/game/interp"
	"github.com/kasuganosora/rmmvinterp/model"
	"github.com/kasuganosora/rmmvinterp/resource"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SystemSettings is the persisted part of the system state.
type SystemSettings struct {
	SaveEnabled      bool                `json:"save_enabled"`
	MenuEnabled      bool                `json:"menu_enabled"`
	EncounterEnabled bool                `json:"encounter_enabled"`
	FormationEnabled bool                `json:"formation_enabled"`
	BattleBGM        *resource.AudioFile `json:"battle_bgm,omitempty"`
	VictoryME        *resource.AudioFile `json:"victory_me,omitempty"`
	DefeatME         *resource.AudioFile `json:"defeat_me,omitempty"`
	WindowTone       []int               `json:"window_tone,omitempty"`
	SavedBGM         *resource.AudioFile `json:"saved_bgm,omitempty"`
	PlayFrames       int                 `json:"play_frames"`
	SaveCount        int                 `json:"save_count"`
	BattleCount      int                 `json:"battle_count"`
	WinCount         int                 `json:"win_count"`
	EscapeCount      int                 `json:"escape_count"`
}

func defaultSystemSettings() SystemSettings {
	return SystemSettings{
		SaveEnabled:      true,
		MenuEnabled:      true,
		EncounterEnabled: true,
		FormationEnabled: true,
	}
}

// SystemState holds system flags and counters ($gameSystem). It is stored
// as the single model.GameSystem row.
type SystemState struct {
	mu       sync.RWMutex
	settings SystemSettings
	sideView bool
	defaults *resource.SystemData
	audio    *Audio
	db       *gorm.DB
	logger   *zap.Logger
	dirty    bool
}

var _ interp.System = (*SystemState)(nil)

// NewSystemState creates a system state with default flags. db may be nil.
func NewSystemState(db *gorm.DB, logger *zap.Logger) *SystemState {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SystemState{settings: defaultSystemSettings(), db: db, logger: logger}
}

// bind attaches the database defaults and the audio player of a world.
func (s *SystemState) bind(data *resource.SystemData, audio *Audio) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.defaults = data
	s.audio = audio
	if data != nil {
		s.sideView = data.OptSideView
	}
}

// Load reads the persisted row. A missing row keeps the defaults.
func (s *SystemState) Load(ctx context.Context) error {
	if s.db == nil {
		return nil
	}
	var row model.GameSystem
	err := s.db.WithContext(ctx).First(&row, model.GameSystemID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("world: load system: %w", err)
	}
	settings := defaultSystemSettings()
	if len(row.Settings) > 0 {
		if err := json.Unmarshal(row.Settings, &settings); err != nil {
			return fmt.Errorf("world: decode system settings: %w", err)
		}
	}
	s.mu.Lock()
	s.settings = settings
	s.dirty = false
	s.mu.Unlock()
	s.logger.Info("system settings loaded", zap.Int("save_count", settings.SaveCount),
		zap.Int("battle_count", settings.BattleCount))
	return nil
}

// Save upserts the row when anything changed since the last save.
func (s *SystemState) Save(ctx context.Context) error {
	if s.db == nil {
		return nil
	}
	s.mu.RLock()
	if !s.dirty {
		s.mu.RUnlock()
		return nil
	}
	raw, err := json.Marshal(s.settings)
	s.mu.RUnlock()
	if err != nil {
		return err
	}
	row := model.GameSystem{ID: model.GameSystemID, Settings: raw}
	err = s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"settings", "updated_at"}),
	}).Create(&row).Error
	if err != nil {
		return fmt.Errorf("world: save system: %w", err)
	}
	s.mu.Lock()
	s.dirty = false
	s.mu.Unlock()
	return nil
}

func (s *SystemState) update(fn func(st *SystemSettings)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(&s.settings)
	s.dirty = true
}

func (s *SystemState) SetBattleBGM(a resource.AudioFile) {
	s.update(func(st *SystemSettings) { st.BattleBGM = &a })
}

func (s *SystemState) SetVictoryME(a resource.AudioFile) {
	s.update(func(st *SystemSettings) { st.VictoryME = &a })
}

func (s *SystemState) SetDefeatME(a resource.AudioFile) {
	s.update(func(st *SystemSettings) { st.DefeatME = &a })
}

func (s *SystemState) SetSaveEnabled(enabled bool) {
	s.update(func(st *SystemSettings) { st.SaveEnabled = enabled })
}

func (s *SystemState) SetMenuEnabled(enabled bool) {
	s.update(func(st *SystemSettings) { st.MenuEnabled = enabled })
}

func (s *SystemState) SetEncounterEnabled(enabled bool) {
	s.update(func(st *SystemSettings) { st.EncounterEnabled = enabled })
}

func (s *SystemState) SetFormationEnabled(enabled bool) {
	s.update(func(st *SystemSettings) { st.FormationEnabled = enabled })
}

func (s *SystemState) SetWindowTone(tone []int) {
	tone = append([]int(nil), tone...)
	s.update(func(st *SystemSettings) { st.WindowTone = tone })
}

// BattleBGM returns the battle BGM, falling back to System.json.
func (s *SystemState) BattleBGM() resource.AudioFile {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.settings.BattleBGM != nil {
		return *s.settings.BattleBGM
	}
	if s.defaults != nil {
		return s.defaults.BattleBgm
	}
	return resource.AudioFile{}
}

// VictoryME returns the victory ME, falling back to System.json.
func (s *SystemState) VictoryME() resource.AudioFile {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.settings.VictoryME != nil {
		return *s.settings.VictoryME
	}
	if s.defaults != nil {
		return s.defaults.VictoryMe
	}
	return resource.AudioFile{}
}

// DefeatME returns the defeat ME, falling back to System.json.
func (s *SystemState) DefeatME() resource.AudioFile {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.settings.DefeatME != nil {
		return *s.settings.DefeatME
	}
	if s.defaults != nil {
		return s.defaults.DefeatMe
	}
	return resource.AudioFile{}
}

// SaveBGM remembers the playing BGM.
func (s *SystemState) SaveBGM() {
	if s.audio == nil {
		return
	}
	bgm := s.audio.CurrentBGM()
	s.update(func(st *SystemSettings) { st.SavedBGM = &bgm })
}

// ReplayBGM plays the BGM stored by SaveBGM.
func (s *SystemState) ReplayBGM() {
	s.mu.RLock()
	saved := s.settings.SavedBGM
	s.mu.RUnlock()
	if saved != nil && s.audio != nil {
		s.audio.PlayBGM(*saved)
	}
}

func (s *SystemState) IsSideView() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sideView
}

// Playtime returns whole seconds at 60 frames per second.
func (s *SystemState) Playtime() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.settings.PlayFrames / 60
}

func (s *SystemState) SaveCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.settings.SaveCount
}

func (s *SystemState) BattleCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.settings.BattleCount
}

func (s *SystemState) WinCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.settings.WinCount
}

func (s *SystemState) EscapeCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.settings.EscapeCount
}

func (s *SystemState) tick() {
	s.update(func(st *SystemSettings) { st.PlayFrames++ })
}

func (s *SystemState) onBattleStart() {
	s.update(func(st *SystemSettings) { st.BattleCount++ })
}

func (s *SystemState) onBattleWin() {
	s.update(func(st *SystemSettings) { st.WinCount++ })
}

func (s *SystemState) onBattleEscape() {
	s.update(func(st *SystemSettings) { st.EscapeCount++ })
}

func (s *SystemState) onSave() {
	s.update(func(st *SystemSettings) { st.SaveCount++ })
}

// Settings copies the current settings.
func (s *SystemState) Settings() SystemSettings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st := s.settings
	st.WindowTone = append([]int(nil), st.WindowTone...)
	return st
}
