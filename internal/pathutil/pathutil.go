package pathutil

import (
	"net/url"
	"os"
	"path/filepath"
	"strings"
)

// Resolved is the outcome of resolving a gamelist-stored path against a system root.
type Resolved struct {
	Abs    string
	Exists bool
	Inside bool
}

// StripDotSlash removes exactly one leading "./" (or ".\") from a stored path.
func StripDotSlash(value string) string {
	val := strings.TrimSpace(value)
	if strings.HasPrefix(val, "./") || strings.HasPrefix(val, ".\\") {
		return val[2:]
	}
	return val
}

// Abs turns a stored path into a cleaned absolute path under root.
// Absolute stored paths are kept as they are. Empty input yields "".
func Abs(root, value string) string {
	val := StripDotSlash(value)
	if val == "" {
		return ""
	}
	val = filepath.FromSlash(val)
	if filepath.IsAbs(val) {
		return filepath.Clean(val)
	}
	return filepath.Join(root, filepath.Clean(val))
}

// Resolve computes the absolute path of a stored reference, whether it stays
// inside root and whether a regular file currently exists there.
func Resolve(root, value string) Resolved {
	abs := Abs(root, value)
	if abs == "" {
		return Resolved{}
	}
	return Resolved{
		Abs:    abs,
		Exists: FileExists(abs),
		Inside: Within(root, abs),
	}
}

// Within reports whether path lies under root after cleaning.
func Within(root, path string) bool {
	rel, err := filepath.Rel(filepath.Clean(root), filepath.Clean(path))
	if err != nil {
		return false
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return false
	}
	return !filepath.IsAbs(rel)
}

// FileExists is true for an existing non-directory path.
func FileExists(path string) bool {
	if path == "" {
		return false
	}
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}

// DirExists is true for an existing directory.
func DirExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.IsDir()
}

// Ref renders abs as a "./"-prefixed, slash separated reference relative to root.
func Ref(root, abs string) string {
	rel, err := filepath.Rel(root, abs)
	if err != nil {
		return filepath.ToSlash(abs)
	}
	return "./" + filepath.ToSlash(rel)
}

// Stem returns the file name without directory and extension.
func Stem(path string) string {
	base := filepath.Base(filepath.FromSlash(path))
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// FileURI renders an absolute path as a file:// URI for display.
func FileURI(abs string) string {
	p := filepath.ToSlash(abs)
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	u := url.URL{Scheme: "file", Path: p}
	return u.String()
}

// HasExt matches the lower-cased extension of path against exts.
func HasExt(path string, exts []string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	if ext == "" {
		return false
	}
	for _, e := range exts {
		if strings.EqualFold(e, ext) {
			return true
		}
	}
	return false
}
