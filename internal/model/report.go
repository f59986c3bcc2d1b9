package model

// FixAction names one corrective operation of the fix pipeline.
type FixAction string

const (
	ActionSyncGamelist FixAction = "SYNC_GAMELIST"
	ActionLinkMedia    FixAction = "LINK_MEDIA"
	ActionCleanMedia   FixAction = "CLEAN_MEDIA"
)

// FixResult is the full transcript of a fix action.
type FixResult struct {
	Logs    []string `json:"logs"`
	Success bool     `json:"success"`
}

// DuplicateFile is one member of a duplicate group.
type DuplicateFile struct {
	AbsolutePath string `json:"absolute_path"`
	Filename     string `json:"filename"`
	SystemID     string `json:"system_id"`
	Size         int64  `json:"size"`
}

// DuplicateGroup always holds at least two files sharing a normalized title.
type DuplicateGroup struct {
	Name  string          `json:"name"`
	Files []DuplicateFile `json:"files"`
}

// BiosDefinition describes a required firmware file.
type BiosDefinition struct {
	System      string `json:"system"`
	Filename    string `json:"filename"`
	Description string `json:"description"`
	IsOptional  bool   `json:"is_optional"`
}

// BiosResult pairs a definition with what was found on disk.
type BiosResult struct {
	Definition BiosDefinition `json:"definition"`
	Found      bool           `json:"found"`
	Path       string         `json:"path,omitempty"`
}

// DeleteResult reports a best-effort bulk delete.
type DeleteResult struct {
	Deleted []string `json:"deleted"`
	Failed  []string `json:"failed"`
}
