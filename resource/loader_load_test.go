package resource

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeJSON writes v as JSON to path/filename.
func writeJSON(t *testing.T, dir, filename string, v interface{}) {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, filename), data, 0644))
}

// setupMinimalDataDir creates a temp directory with the minimal set of RMMV JSON files
// required for ResourceLoader.Load() to succeed.
func setupMinimalDataDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	// System.json
	writeJSON(t, dir, "System.json", map[string]interface{}{
		"gameTitle":    "TestGame",
		"currencyUnit": "G",
		"startMapId":   1,
		"startX":       0,
		"startY":       0,
	})

	nullArray := []interface{}{nil}

	// All array files: first element is null (RMMV convention, ID 0 unused).
	for _, name := range []string{
		"Actors.json", "Classes.json", "Skills.json", "Items.json",
		"Weapons.json", "Armors.json", "Enemies.json", "Troops.json",
		"States.json", "Animations.json", "MapInfos.json",
		"Tilesets.json", "CommonEvents.json",
	} {
		writeJSON(t, dir, name, nullArray)
	}

	return dir
}

// ---- Load() success path ----

func TestLoader_Load_Success(t *testing.T) {
	dir := setupMinimalDataDir(t)
	rl := NewLoader(dir, "")
	err := rl.Load()
	require.NoError(t, err)

	require.NotNil(t, rl.System)
	assert.Equal(t, "TestGame", rl.System.GameTitle)
	assert.Equal(t, "G", rl.System.CurrencyUnit)
}

func TestLoader_Load_PopulatesCollections(t *testing.T) {
	dir := setupMinimalDataDir(t)

	// Add one actor and one class
	writeJSON(t, dir, "Actors.json", []*Actor{
		nil,
		{ID: 1, Name: "Hero", ClassID: 1},
	})
	writeJSON(t, dir, "Classes.json", []*Class{
		nil,
		{ID: 1, Name: "Fighter", Params: [][]int{}},
	})

	rl := NewLoader(dir, "")
	require.NoError(t, rl.Load())

	require.Len(t, rl.Actors, 2)
	assert.Equal(t, "Hero", rl.Actors[1].Name)
	require.Len(t, rl.Classes, 2)
	assert.Equal(t, "Fighter", rl.Classes[1].Name)
}

func TestLoader_Load_LoadsMap(t *testing.T) {
	dir := setupMinimalDataDir(t)

	// Write a minimal map file
	writeJSON(t, dir, "Map001.json", map[string]interface{}{
		"id":          1,
		"displayName": "Village",
		"width":       4,
		"height":      4,
		"data":        make([]int, 4*4),
		"tilesetId":   1,
		"events":      []interface{}{},
	})

	rl := NewLoader(dir, "")
	require.NoError(t, rl.Load())

	md, ok := rl.Maps[1]
	require.True(t, ok)
	assert.Equal(t, "Village", md.DisplayName)
	assert.Equal(t, 4, md.Width)
	assert.Equal(t, 4, md.Height)
}

// ---- Load() failure paths ----

func TestLoader_Load_MissingSystemJSON(t *testing.T) {
	dir := t.TempDir()
	// Don't write System.json
	rl := NewLoader(dir, "")
	err := rl.Load()
	assert.Error(t, err)
}

func TestLoader_Load_InvalidJSON(t *testing.T) {
	dir := t.TempDir()
	// Write invalid JSON for System.json
	require.NoError(t, os.WriteFile(filepath.Join(dir, "System.json"), []byte("not json"), 0644))
	rl := NewLoader(dir, "")
	err := rl.Load()
	assert.Error(t, err)
}

func TestLoader_Load_InvalidActorsJSON(t *testing.T) {
	dir := t.TempDir()
	// Write valid System.json but invalid Actors.json
	writeJSON(t, dir, "System.json", map[string]interface{}{
		"gameTitle": "Test", "currencyUnit": "G", "startMapId": 1,
	})
	require.NoError(t, os.WriteFile(filepath.Join(dir, "Actors.json"), []byte("{not array}"), 0644))
	rl := NewLoader(dir, "")
	err := rl.Load()
	assert.Error(t, err)
}

// ---- ClassByID with loaded data ----

func TestClassByID_AfterLoad(t *testing.T) {
	dir := setupMinimalDataDir(t)
	writeJSON(t, dir, "Classes.json", []*Class{
		nil,
		{ID: 1, Name: "Warrior"},
		{ID: 2, Name: "Mage"},
	})

	rl := NewLoader(dir, "")
	require.NoError(t, rl.Load())

	c1 := rl.ClassByID(1)
	require.NotNil(t, c1)
	assert.Equal(t, "Warrior", c1.Name)

	c2 := rl.ClassByID(2)
	require.NotNil(t, c2)
	assert.Equal(t, "Mage", c2.Name)

	assert.Nil(t, rl.ClassByID(99))
}

// ---- ImageExists with img path ----

func TestImageExists_FileExists(t *testing.T) {
	imgDir := t.TempDir()
	charDir := filepath.Join(imgDir, "characters")
	require.NoError(t, os.MkdirAll(charDir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(charDir, "Hero.png"), []byte{}, 0644))

	rl := NewLoader("", imgDir)
	assert.True(t, rl.ImageExists("characters", "Hero"))
	assert.False(t, rl.ImageExists("characters", "Missing"))
	assert.False(t, rl.ImageExists("faces", "Hero"))
}

// ---- Troop pages / common events ----

func TestLoader_Load_TroopPagesAndCommonEvents(t *testing.T) {
	dir := setupMinimalDataDir(t)
	writeJSON(t, dir, "Troops.json", []interface{}{
		nil,
		map[string]interface{}{
			"id": 1, "name": "Slime*2",
			"members": []interface{}{map[string]interface{}{"enemyId": 1, "x": 10, "y": 20}},
			"pages": []interface{}{
				map[string]interface{}{
					"conditions": map[string]interface{}{"turnValid": true, "turnA": 1, "turnB": 2},
					"span":       1,
					"list": []interface{}{
						map[string]interface{}{"code": 121, "indent": 0, "parameters": []interface{}{1, 1, 0}},
						map[string]interface{}{"code": 0, "indent": 0, "parameters": []interface{}{}},
					},
				},
			},
		},
	})
	writeJSON(t, dir, "CommonEvents.json", []interface{}{
		nil,
		map[string]interface{}{"id": 1, "name": "Heal", "trigger": 2, "switchId": 5, "list": []interface{}{}},
	})

	rl := NewLoader(dir, "")
	require.NoError(t, rl.Load())

	tr := rl.TroopByID(1)
	require.NotNil(t, tr)
	require.Len(t, tr.Pages, 1)
	assert.True(t, tr.Pages[0].Conditions.TurnValid)
	assert.Equal(t, 2, tr.Pages[0].Conditions.TurnB)
	assert.Equal(t, 1, tr.Pages[0].Span)
	require.Len(t, tr.Pages[0].List, 2)
	assert.Equal(t, 121, tr.Pages[0].List[0].Code)

	ce := rl.CommonEventByID(1)
	require.NotNil(t, ce)
	assert.Equal(t, TriggerParallel, ce.Trigger)
	assert.Equal(t, 5, ce.SwitchID)
	assert.Nil(t, rl.CommonEventByID(2))
	assert.Nil(t, rl.CommonEventByID(0))
}

// ---- plugins.js ----

func TestLoader_Load_Plugins(t *testing.T) {
	root := t.TempDir()
	dataDir := filepath.Join(root, "data")
	require.NoError(t, os.MkdirAll(dataDir, 0755))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "js"), 0755))
	writeJSON(t, dataDir, "System.json", map[string]interface{}{"gameTitle": "P"})
	for _, name := range []string{
		"Actors.json", "Classes.json", "Skills.json", "Items.json",
		"Weapons.json", "Armors.json", "Enemies.json", "Troops.json",
		"States.json", "Animations.json", "MapInfos.json",
		"Tilesets.json", "CommonEvents.json",
	} {
		writeJSON(t, dataDir, name, []interface{}{nil})
	}
	js := `var $plugins =
[
{"name":"Community_Basic","status":true,"description":"","parameters":{"cacheLimit":"10"}},
{"name":"Disabled","status":false,"description":"","parameters":{}}
];
`
	require.NoError(t, os.WriteFile(filepath.Join(root, "js", "plugins.js"), []byte(js), 0644))

	rl := NewLoader(dataDir, "")
	require.NoError(t, rl.Load())
	require.Len(t, rl.Plugins, 2)
	assert.Equal(t, "10", rl.Plugins[0].Parameters["cacheLimit"])
	assert.Equal(t, []string{"Community_Basic"}, rl.ActivePlugins())
}
