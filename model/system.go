package model

import (
	"time"

	"gorm.io/datatypes"
)

// GameSystem stores the singleton system settings row ($gameSystem).
// Settings holds flags, audio settings and the window tone as JSON.
type GameSystem struct {
	ID        int            `gorm:"primaryKey" json:"id"`
	Settings  datatypes.JSON `json:"settings"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime:milli" json:"updated_at"`
}

func (GameSystem) TableName() string { return "game_system" }

// GameSystemID is the primary key of the only GameSystem row.
const GameSystemID = 1
