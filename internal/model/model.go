package model

// GamelistState tells apart a missing gamelist from one that failed to parse.
type GamelistState string

const (
	GamelistMissing   GamelistState = "missing"
	GamelistOK        GamelistState = "ok"
	GamelistMalformed GamelistState = "malformed"
)

// System is one managed game-system directory as seen by a single scan.
type System struct {
	ID            string        `json:"id"`
	Name          string        `json:"name"`
	RootPath      string        `json:"root_path"`
	GamelistPath  string        `json:"gamelist_path"`
	GamelistState GamelistState `json:"gamelist_state"`
	GamelistError string        `json:"gamelist_error,omitempty"`
	Games         []*GameEntry  `json:"games"`
	Stats         SystemStats   `json:"stats"`
	ScanTime      int64         `json:"scan_time"`
}

// GameEntry is the correlation unit between a ROM file and a gamelist record.
type GameEntry struct {
	ID         string `json:"id"`
	SystemID   string `json:"system_id"`
	Name       string `json:"name"`
	Desc       string `json:"desc,omitempty"`
	RomPath    string `json:"rom_path"`
	RomAbsPath string `json:"rom_abs_path,omitempty"`

	Image   string `json:"image,omitempty"`
	Video   string `json:"video,omitempty"`
	Marquee string `json:"marquee,omitempty"`
	Manual  string `json:"manual,omitempty"`

	RomExists     bool `json:"rom_exists"`
	ImageExists   bool `json:"image_exists"`
	VideoExists   bool `json:"video_exists"`
	MarqueeExists bool `json:"marquee_exists"`
	ManualExists  bool `json:"manual_exists"`

	// Display-only file URIs, empty when the matching flag is false.
	ImagePath   string `json:"image_path,omitempty"`
	VideoPath   string `json:"video_path,omitempty"`
	MarqueePath string `json:"marquee_path,omitempty"`
	ManualPath  string `json:"manual_path,omitempty"`

	InGamelist  bool `json:"in_gamelist"`
	OutsideRoot bool `json:"outside_root,omitempty"`

	// absolute media paths that resolved to existing files; used for orphan detection.
	mediaRefs []string
}

// AddMediaRef records an existing media file referenced by the entry.
func (g *GameEntry) AddMediaRef(abs string) {
	g.mediaRefs = append(g.mediaRefs, abs)
}

// MediaRefs returns the absolute media paths referenced by the entry.
func (g *GameEntry) MediaRefs() []string {
	return g.mediaRefs
}

// SystemStats is derived wholesale from the entries of one scan.
type SystemStats struct {
	TotalRoms            int `json:"total_roms"`
	TotalGamelistEntries int `json:"total_gamelist_entries"`
	MissingImages        int `json:"missing_images"`
	MissingVideos        int `json:"missing_videos"`
	RomsWithoutEntry     int `json:"roms_without_entry"`
	EntriesWithoutRom    int `json:"entries_without_rom"`
	OrphanedMedia        int `json:"orphaned_media"`
}

// ScanResult carries every system found under the base path.
type ScanResult struct {
	Systems []*System `json:"systems"`
	Error   string    `json:"error,omitempty"`
}

// FindSystem returns the system with the given id or nil.
func (r *ScanResult) FindSystem(id string) *System {
	if r == nil {
		return nil
	}
	for _, sys := range r.Systems {
		if sys.ID == id {
			return sys
		}
	}
	return nil
}
