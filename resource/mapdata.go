package resource

// MapData represents an RMMV Map*.json file.
type MapData struct {
	ID              int         `json:"id"` // set after load from filename
	DisplayName     string      `json:"displayName"`
	Width           int         `json:"width"`
	Height          int         `json:"height"`
	Data            []int       `json:"data"` // tileId array: [layer * height * width + y * width + x]
	TilesetID       int         `json:"tilesetId"`
	ParallaxName    string      `json:"parallaxName"`
	ParallaxLoopX   bool        `json:"parallaxLoopX"`
	ParallaxLoopY   bool        `json:"parallaxLoopY"`
	ParallaxSx      int         `json:"parallaxSx"`
	ParallaxSy      int         `json:"parallaxSy"`
	Battleback1Name string      `json:"battleback1Name"`
	Battleback2Name string      `json:"battleback2Name"`
	EncounterList   []Encounter `json:"encounterList"`
	EncounterStep   int         `json:"encounterStep"`
	Events          []*MapEvent `json:"events"` // nil entries are possible (RMMV uses 1-based IDs)
}

// Encounter is one random-encounter entry. An empty RegionSet matches
// every region.
type Encounter struct {
	TroopID   int   `json:"troopId"`
	Weight    int   `json:"weight"`
	RegionSet []int `json:"regionSet"`
}

// Valid reports whether (x, y) lies inside the map.
func (md *MapData) Valid(x, y int) bool {
	return md != nil && x >= 0 && x < md.Width && y >= 0 && y < md.Height
}

// TileID returns the tile at (x, y) on layer z, or 0 outside the data.
// Layers 0-3 are tiles, 4 is shadows, 5 is regions.
func (md *MapData) TileID(x, y, z int) int {
	if !md.Valid(x, y) || z < 0 {
		return 0
	}
	i := (z*md.Height+y)*md.Width + x
	if i >= len(md.Data) {
		return 0
	}
	return md.Data[i]
}

// RegionID returns the region painted at (x, y).
func (md *MapData) RegionID(x, y int) int {
	return md.TileID(x, y, 5)
}

// TerrainTag scans the tile layers from top to bottom and returns the first
// non-zero terrain tag (flag >> 12).
func (md *MapData) TerrainTag(x, y int, flags []int) int {
	if !md.Valid(x, y) {
		return 0
	}
	for z := 3; z >= 0; z-- {
		id := md.TileID(x, y, z)
		if id < 0 || id >= len(flags) {
			continue
		}
		if tag := flags[id] >> 12; tag > 0 {
			return tag
		}
	}
	return 0
}
