package constant

const (
	DefaultGamelistFile = "gamelist.xml"
	BackupSuffix        = ".bak-"
	LockFile            = ".romdoctor.lock"
)

// DefaultRomExts lists extensions treated as ROM candidates.
var DefaultRomExts = []string{
	".zip", ".7z", ".nes", ".sfc", ".smc", ".iso", ".bin", ".cue",
	".gba", ".gb", ".gbc", ".md", ".rvz", ".chd",
}

// DefaultMediaExts lists extensions treated as media candidates.
var DefaultMediaExts = []string{
	".png", ".jpg", ".jpeg", ".gif", ".webp", ".mp4", ".mkv", ".pdf",
}

var ImageExts = []string{".png", ".jpg", ".jpeg", ".gif", ".webp"}

var VideoExts = []string{".mp4", ".mkv"}

var ManualExts = []string{".pdf"}

// MediaDirNames are descended exactly one level by the walker.
var MediaDirNames = []string{
	"media", "images", "videos", "boxart", "snap", "snaps",
	"screenshots", "marquees", "manuals", "covers", "wheel",
}

// LinkMediaFolders is searched in declared order when auto-linking media.
var LinkMediaFolders = []string{
	"media", "images", "boxart", "videos", "snap",
	"media/images", "media/videos", "media/boxart", "media/marquees", "media/manuals",
}

// SkippedSystemDirs are never treated as systems during discovery.
var SkippedSystemDirs = []string{"media", "images", "bios"}
