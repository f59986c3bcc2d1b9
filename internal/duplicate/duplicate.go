package duplicate

import (
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/xxxsen/romdoctor/internal/model"
	"github.com/xxxsen/romdoctor/internal/pathutil"
	"golang.org/x/text/unicode/norm"
)

var (
	bracketRe = regexp.MustCompile(`\[.*?\]`)
	parenRe   = regexp.MustCompile(`\(.*?\)`)
	versionRe = regexp.MustCompile(`(?i)v\d+(\.\d+)?`)
)

// NormalizeName derives the grouping key of a ROM file name: the extension,
// every [...] and (...) tag and every v<digits>(.<digits>) token are removed,
// then the rest is trimmed and lower-cased. Inner spacing is kept as is.
func NormalizeName(filename string) string {
	name := norm.NFC.String(pathutil.Stem(filename))
	name = bracketRe.ReplaceAllString(name, "")
	name = parenRe.ReplaceAllString(name, "")
	name = versionRe.ReplaceAllString(name, "")
	return strings.ToLower(strings.TrimSpace(name))
}

// Find groups the existing ROMs of every system by normalized name. Only
// groups with at least two files are kept; systems without any are omitted.
func Find(systems []*model.System) map[string][]model.DuplicateGroup {
	out := make(map[string][]model.DuplicateGroup)
	for _, sys := range systems {
		if sys == nil {
			continue
		}
		if groups := findInSystem(sys); len(groups) > 0 {
			out[sys.ID] = groups
		}
	}
	return out
}

func findInSystem(sys *model.System) []model.DuplicateGroup {
	index := make(map[string]int)
	var groups []model.DuplicateGroup
	seen := make(map[string]struct{})
	for _, g := range sys.Games {
		if !g.RomExists || g.RomAbsPath == "" {
			continue
		}
		if _, ok := seen[g.RomAbsPath]; ok {
			continue
		}
		seen[g.RomAbsPath] = struct{}{}

		filename := filepath.Base(g.RomAbsPath)
		key := NormalizeName(filename)
		file := model.DuplicateFile{
			AbsolutePath: g.RomAbsPath,
			Filename:     filename,
			SystemID:     sys.ID,
			Size:         fileSize(g.RomAbsPath),
		}
		idx, ok := index[key]
		if !ok {
			idx = len(groups)
			index[key] = idx
			groups = append(groups, model.DuplicateGroup{Name: key})
		}
		groups[idx].Files = append(groups[idx].Files, file)
	}

	out := groups[:0]
	for _, grp := range groups {
		if len(grp.Files) > 1 {
			out = append(out, grp)
		}
	}
	return out
}

func fileSize(path string) int64 {
	info, err := os.Stat(path)
	if err != nil {
		return 0
	}
	return info.Size()
}

// KeepFirst is the explicit keep-first heuristic: for each group the first
// file is kept and every other file is returned for removal.
func KeepFirst(result map[string][]model.DuplicateGroup) []string {
	ids := make([]string, 0, len(result))
	for id := range result {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var extra []string
	for _, id := range ids {
		for _, grp := range result[id] {
			for _, f := range grp.Files[1:] {
				extra = append(extra, f.AbsolutePath)
			}
		}
	}
	return extra
}
