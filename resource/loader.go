package resource

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// ---- ResourceLoader ----

// ResourceLoader reads and holds all RMMV data files.
// Array fields follow the RMMV convention: index == ID, index 0 is nil.
type ResourceLoader struct {
	DataPath     string
	ImgPath      string
	System       *SystemData
	Actors       []*Actor
	Classes      []*Class
	Skills       []*Skill
	Items        []*Item
	Weapons      []*Weapon
	Armors       []*Armor
	Enemies      []*Enemy
	Troops       []*Troop
	States       []*State
	Animations   []*Animation
	Maps         map[int]*MapData
	MapInfos     []*MapInfo
	CommonEvents []*CommonEvent
	Tilesets     []*Tileset
	// Plugins lists the plugins.js entries; nil when the game ships none.
	Plugins []*PluginEntry
}

// NewLoader creates a ResourceLoader for the given RMMV data directory.
func NewLoader(dataPath, imgPath string) *ResourceLoader {
	return &ResourceLoader{
		DataPath: dataPath,
		ImgPath:  imgPath,
		System:   &SystemData{},
		Maps:     make(map[int]*MapData),
	}
}

// Load reads all RMMV data files.
func (rl *ResourceLoader) Load() error {
	loaders := []func() error{
		rl.loadSystem,
		rl.loadActors,
		rl.loadClasses,
		rl.loadSkills,
		rl.loadItems,
		rl.loadWeapons,
		rl.loadArmors,
		rl.loadEnemies,
		rl.loadTroops,
		rl.loadStates,
		rl.loadAnimations,
		rl.loadMapInfos,
		rl.loadTilesets,
		rl.loadCommonEvents,
		rl.loadMaps,
		rl.loadPlugins,
	}
	for _, fn := range loaders {
		if err := fn(); err != nil {
			return err
		}
	}
	return nil
}

func (rl *ResourceLoader) path(file string) string {
	return filepath.Join(rl.DataPath, file)
}

func loadJSONArray[T any](path string) ([]*T, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("resource: read %s: %w", path, err)
	}
	var arr []*T
	if err := json.Unmarshal(data, &arr); err != nil {
		return nil, fmt.Errorf("resource: parse %s: %w", path, err)
	}
	return arr, nil
}

func loadJSONObject[T any](path string, out *T) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("resource: read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("resource: parse %s: %w", path, err)
	}
	return nil
}

func (rl *ResourceLoader) loadSystem() error {
	rl.System = &SystemData{}
	return loadJSONObject(rl.path("System.json"), rl.System)
}

func (rl *ResourceLoader) loadActors() error {
	var err error
	rl.Actors, err = loadJSONArray[Actor](rl.path("Actors.json"))
	return err
}

func (rl *ResourceLoader) loadClasses() error {
	var err error
	rl.Classes, err = loadJSONArray[Class](rl.path("Classes.json"))
	return err
}

func (rl *ResourceLoader) loadSkills() error {
	var err error
	rl.Skills, err = loadJSONArray[Skill](rl.path("Skills.json"))
	return err
}

func (rl *ResourceLoader) loadItems() error {
	var err error
	rl.Items, err = loadJSONArray[Item](rl.path("Items.json"))
	return err
}

func (rl *ResourceLoader) loadWeapons() error {
	var err error
	rl.Weapons, err = loadJSONArray[Weapon](rl.path("Weapons.json"))
	return err
}

func (rl *ResourceLoader) loadArmors() error {
	var err error
	rl.Armors, err = loadJSONArray[Armor](rl.path("Armors.json"))
	return err
}

func (rl *ResourceLoader) loadEnemies() error {
	var err error
	rl.Enemies, err = loadJSONArray[Enemy](rl.path("Enemies.json"))
	return err
}

func (rl *ResourceLoader) loadTroops() error {
	var err error
	rl.Troops, err = loadJSONArray[Troop](rl.path("Troops.json"))
	return err
}

func (rl *ResourceLoader) loadStates() error {
	var err error
	rl.States, err = loadJSONArray[State](rl.path("States.json"))
	return err
}

func (rl *ResourceLoader) loadAnimations() error {
	var err error
	rl.Animations, err = loadJSONArray[Animation](rl.path("Animations.json"))
	return err
}

func (rl *ResourceLoader) loadMapInfos() error {
	var err error
	rl.MapInfos, err = loadJSONArray[MapInfo](rl.path("MapInfos.json"))
	return err
}

func (rl *ResourceLoader) loadTilesets() error {
	var err error
	rl.Tilesets, err = loadJSONArray[Tileset](rl.path("Tilesets.json"))
	return err
}

func (rl *ResourceLoader) loadCommonEvents() error {
	var err error
	rl.CommonEvents, err = loadJSONArray[CommonEvent](rl.path("CommonEvents.json"))
	return err
}

var mapFileRegex = regexp.MustCompile(`^Map(\d+)\.json$`)

func (rl *ResourceLoader) loadMaps() error {
	entries, err := os.ReadDir(rl.DataPath)
	if err != nil {
		return fmt.Errorf("resource: readdir %s: %w", rl.DataPath, err)
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		m := mapFileRegex.FindStringSubmatch(e.Name())
		if m == nil {
			continue
		}
		var mapID int
		fmt.Sscanf(m[1], "%d", &mapID)

		md := &MapData{}
		if err := loadJSONObject(filepath.Join(rl.DataPath, e.Name()), md); err != nil {
			return err
		}
		md.ID = mapID
		rl.Maps[mapID] = md
	}
	return nil
}

// ---- Plugin Detection ----

// PluginEntry represents one entry from RMMV's plugins.js.
type PluginEntry struct {
	Name       string            `json:"name"`
	Status     bool              `json:"status"`
	Parameters map[string]string `json:"parameters"`
}

// loadPlugins reads the game's js/plugins.js (a sibling of data/).
// The file format is: var $plugins = [ {...}, {...}, ... ];
func (rl *ResourceLoader) loadPlugins() error {
	jsPath := filepath.Join(filepath.Dir(rl.DataPath), "js", "plugins.js")
	data, err := os.ReadFile(jsPath)
	if err != nil {
		return nil // no plugins.js → no plugins
	}
	content := strings.TrimSpace(string(data))
	idx := strings.Index(content, "[")
	if idx < 0 {
		return nil
	}
	content = strings.TrimRight(content[idx:], "; \t\r\n")

	var entries []*PluginEntry
	if err := json.Unmarshal([]byte(content), &entries); err != nil {
		return fmt.Errorf("resource: parse plugins.js: %w", err)
	}
	rl.Plugins = entries
	return nil
}

// ActivePlugins returns the names of enabled plugins in load order.
func (rl *ResourceLoader) ActivePlugins() []string {
	var names []string
	for _, p := range rl.Plugins {
		if p != nil && p.Status {
			names = append(names, p.Name)
		}
	}
	return names
}

// ---- Lookups ----

func byID[T any](arr []*T, id int) *T {
	if id <= 0 || id >= len(arr) {
		return nil
	}
	return arr[id]
}

// ActorByID returns the Actor with the given ID, or nil.
func (rl *ResourceLoader) ActorByID(id int) *Actor { return byID(rl.Actors, id) }

// ClassByID returns the Class with the given ID, or nil.
func (rl *ResourceLoader) ClassByID(id int) *Class { return byID(rl.Classes, id) }

func (rl *ResourceLoader) SkillByID(id int) *Skill             { return byID(rl.Skills, id) }
func (rl *ResourceLoader) ItemByID(id int) *Item               { return byID(rl.Items, id) }
func (rl *ResourceLoader) WeaponByID(id int) *Weapon           { return byID(rl.Weapons, id) }
func (rl *ResourceLoader) ArmorByID(id int) *Armor             { return byID(rl.Armors, id) }
func (rl *ResourceLoader) EnemyByID(id int) *Enemy             { return byID(rl.Enemies, id) }
func (rl *ResourceLoader) TroopByID(id int) *Troop             { return byID(rl.Troops, id) }
func (rl *ResourceLoader) AnimationByID(id int) *Animation     { return byID(rl.Animations, id) }
func (rl *ResourceLoader) TilesetByID(id int) *Tileset         { return byID(rl.Tilesets, id) }
func (rl *ResourceLoader) CommonEventByID(id int) *CommonEvent { return byID(rl.CommonEvents, id) }

// MapByID returns a loaded map, or nil.
func (rl *ResourceLoader) MapByID(id int) *MapData {
	return rl.Maps[id]
}

// SkillsForLevel returns skill IDs a class learns at or below the given level.
func (rl *ResourceLoader) SkillsForLevel(classID, level int) []int {
	cls := rl.ClassByID(classID)
	if cls == nil {
		return nil
	}
	var ids []int
	for _, l := range cls.Learnings {
		if l.Level <= level {
			ids = append(ids, l.SkillID)
		}
	}
	return ids
}

// ImagePath returns img/<folder>/<name>.png under ImgPath.
func (rl *ResourceLoader) ImagePath(folder, name string) string {
	return filepath.Join(rl.ImgPath, folder, name+".png")
}

// ImageExists checks that img/<folder>/<name>.png is present.
// With no img path configured every name is accepted.
func (rl *ResourceLoader) ImageExists(folder, name string) bool {
	if rl.ImgPath == "" {
		return true
	}
	_, err := os.Stat(rl.ImagePath(folder, name))
	return err == nil
}
