package scanner

import (
	"path/filepath"

	"github.com/xxxsen/romdoctor/internal/gamelist"
	"github.com/xxxsen/romdoctor/internal/model"
	"github.com/xxxsen/romdoctor/internal/pathutil"
)

// BuildEntries merges gamelist records and walked ROM files into one entry
// list: records first in document order, then unclaimed ROMs in walk order.
func BuildEntries(systemID, root string, roms []string, records []*gamelist.Record) []*model.GameEntry {
	entries := make([]*model.GameEntry, 0, len(records)+len(roms))
	claimed := make(map[string]struct{}, len(records))

	for _, rec := range records {
		entry := entryFromRecord(systemID, root, rec)
		if entry.RomExists {
			claimed[entry.RomAbsPath] = struct{}{}
		}
		entries = append(entries, entry)
	}

	for _, abs := range roms {
		if _, ok := claimed[filepath.Clean(abs)]; ok {
			continue
		}
		rel, err := filepath.Rel(root, abs)
		if err != nil {
			rel = abs
		}
		stem := pathutil.Stem(abs)
		entries = append(entries, &model.GameEntry{
			ID:         stem,
			SystemID:   systemID,
			Name:       stem,
			RomPath:    filepath.ToSlash(rel),
			RomAbsPath: abs,
			RomExists:  true,
		})
	}
	return entries
}

func entryFromRecord(systemID, root string, rec *gamelist.Record) *model.GameEntry {
	rawPath := rec.Path()
	rom := pathutil.Resolve(root, rawPath)
	id := ""
	if rawPath != "" {
		id = pathutil.Stem(pathutil.StripDotSlash(rawPath))
	}
	name := rec.Name()
	if name == "" {
		name = id
	}

	entry := &model.GameEntry{
		ID:         id,
		SystemID:   systemID,
		Name:       name,
		Desc:       rec.Get(gamelist.DescElement),
		RomPath:    rawPath,
		RomAbsPath: rom.Abs,
		RomExists:  rom.Exists,
		InGamelist: true,
	}
	if rom.Abs != "" && !rom.Inside {
		entry.OutsideRoot = true
	}

	for _, field := range gamelist.MediaElements {
		raw := rec.Get(field)
		res := pathutil.Resolve(root, raw)
		if res.Abs != "" && !res.Inside {
			entry.OutsideRoot = true
		}
		uri := ""
		if res.Exists {
			uri = pathutil.FileURI(res.Abs)
			entry.AddMediaRef(res.Abs)
		}
		switch field {
		case gamelist.ImageElement:
			entry.Image, entry.ImageExists, entry.ImagePath = raw, res.Exists, uri
		case gamelist.VideoElement:
			entry.Video, entry.VideoExists, entry.VideoPath = raw, res.Exists, uri
		case gamelist.MarqueeElement:
			entry.Marquee, entry.MarqueeExists, entry.MarqueePath = raw, res.Exists, uri
		case gamelist.ManualElement:
			entry.Manual, entry.ManualExists, entry.ManualPath = raw, res.Exists, uri
		}
	}
	return entry
}

// ComputeStats derives the aggregate counters in a single pass over entries.
func ComputeStats(entries []*model.GameEntry, roms, media []string, recordCount int) model.SystemStats {
	stats := model.SystemStats{
		TotalRoms:            len(roms),
		TotalGamelistEntries: recordCount,
	}
	referenced := make(map[string]struct{})
	for _, g := range entries {
		if g.RomExists && !g.ImageExists {
			stats.MissingImages++
		}
		if g.RomExists && !g.VideoExists {
			stats.MissingVideos++
		}
		if g.RomExists && !g.InGamelist {
			stats.RomsWithoutEntry++
		}
		if !g.RomExists && g.InGamelist {
			stats.EntriesWithoutRom++
		}
		for _, ref := range g.MediaRefs() {
			referenced[filepath.Clean(ref)] = struct{}{}
		}
	}
	stats.OrphanedMedia = len(OrphanMedia(media, referenced))
	return stats
}

// OrphanMedia returns the media files whose cleaned absolute path is not referenced.
func OrphanMedia(media []string, referenced map[string]struct{}) []string {
	var orphans []string
	for _, m := range media {
		if _, ok := referenced[filepath.Clean(m)]; ok {
			continue
		}
		orphans = append(orphans, m)
	}
	return orphans
}
