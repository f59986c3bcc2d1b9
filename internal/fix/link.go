package fix

import (
	"errors"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/xxxsen/common/logutil"
	"github.com/xxxsen/romdoctor/internal/constant"
	"github.com/xxxsen/romdoctor/internal/gamelist"
	"github.com/xxxsen/romdoctor/internal/pathutil"
	"go.uber.org/zap"
)

var mediaLabels = map[string]string{
	gamelist.ImageElement:   "Image",
	gamelist.VideoElement:   "Video",
	gamelist.MarqueeElement: "Marquee",
	gamelist.ManualElement:  "Manual",
}

type mediaFolder struct {
	name  string
	files []string
}

// linkMedia fills empty media fields from conventional media folders. The
// first matching file per field wins, following the folder order.
func (r *runner) linkMedia() error {
	r.logf("Scanning for matching media files...")
	doc, exists, err := r.loadGamelist()
	if err != nil {
		return err
	}
	if !exists {
		r.logf("No gamelist found to link.")
		return nil
	}
	folders := r.listMediaFolders()

	updates := 0
	for _, rec := range doc.Records() {
		if rec.Get(gamelist.ImageElement) != "" && rec.Get(gamelist.VideoElement) != "" {
			continue
		}
		romPath := rec.Path()
		if romPath == "" {
			continue
		}
		stem := pathutil.Stem(pathutil.StripDotSlash(romPath))
		filled := make(map[string]bool, len(gamelist.MediaElements))
		for _, field := range gamelist.MediaElements {
			filled[field] = rec.Get(field) != ""
		}

		for _, folder := range folders {
			for _, name := range folder.files {
				if pathutil.Stem(name) != stem {
					continue
				}
				kind := mediaKind(folder.name, name)
				if kind == "" || filled[kind] {
					continue
				}
				ref := "./" + path.Join(folder.name, name)
				r.logf("[LINK] Found %s for %s: %s", mediaLabels[kind], stem, ref)
				filled[kind] = true
				updates++
				if !r.req.DryRun {
					rec.Set(kind, ref)
				}
			}
		}
	}

	if r.req.DryRun {
		r.logf("Found %d potential media links.", updates)
		return nil
	}
	if updates == 0 {
		r.logf("No changes needed.")
		return nil
	}
	if err := r.commit(doc, exists); err != nil {
		return err
	}
	r.logf("Updated %d media links in %s", updates, filepath.Base(r.gamelistPath))
	return nil
}

// listMediaFolders reads each link folder once. Missing folders are skipped
// quietly, unreadable ones with a warning.
func (r *runner) listMediaFolders() []mediaFolder {
	logger := logutil.GetLogger(r.ctx)
	out := make([]mediaFolder, 0, len(constant.LinkMediaFolders))
	for _, name := range constant.LinkMediaFolders {
		dir := filepath.Join(r.req.Root, filepath.FromSlash(name))
		entries, err := os.ReadDir(dir)
		if err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				logger.Warn("read media folder failed", zap.String("dir", filepath.ToSlash(dir)), zap.Error(err))
				r.logf("[!] Cannot read media folder %s: %v", name, err)
			}
			continue
		}
		folder := mediaFolder{name: name}
		for _, e := range entries {
			if e.IsDir() {
				continue
			}
			folder.files = append(folder.files, e.Name())
		}
		out = append(out, folder)
	}
	return out
}

// mediaKind picks the gamelist field a media file belongs to, or "".
func mediaKind(folder, name string) string {
	base := strings.ToLower(path.Base(folder))
	isImage := pathutil.HasExt(name, constant.ImageExts)
	switch {
	case pathutil.HasExt(name, constant.ManualExts):
		return gamelist.ManualElement
	case base == "manuals" && isImage:
		return gamelist.ManualElement
	case base == "marquees" && isImage:
		return gamelist.MarqueeElement
	case isImage:
		return gamelist.ImageElement
	case pathutil.HasExt(name, constant.VideoExts):
		return gamelist.VideoElement
	}
	return ""
}
