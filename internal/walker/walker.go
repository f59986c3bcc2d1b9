package walker

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/xxxsen/common/logutil"
	"github.com/xxxsen/romdoctor/internal/constant"
	"github.com/xxxsen/romdoctor/internal/pathutil"
	"go.uber.org/zap"
)

// Options controls classification and descent.
type Options struct {
	RomExts   []string
	MediaExts []string
	MediaDirs []string
}

// DefaultOptions uses the built-in extension and media directory lists.
func DefaultOptions() Options {
	return Options{
		RomExts:   constant.DefaultRomExts,
		MediaExts: constant.DefaultMediaExts,
		MediaDirs: constant.MediaDirNames,
	}
}

// Result holds absolute paths of classified files in enumeration order.
type Result struct {
	Roms    []string
	Media   []string
	Skipped []string
}

type walker struct {
	opts      Options
	mediaDirs map[string]struct{}
	res       *Result
}

// Walk enumerates root. Directories that cannot be listed are recorded in
// Result.Skipped and never abort the walk; only context cancellation does.
func Walk(ctx context.Context, root string, opts Options) (*Result, error) {
	w := &walker{
		opts:      opts,
		mediaDirs: make(map[string]struct{}, len(opts.MediaDirs)),
		res:       &Result{},
	}
	for _, name := range opts.MediaDirs {
		w.mediaDirs[strings.ToLower(name)] = struct{}{}
	}
	if err := w.walkDir(ctx, root); err != nil {
		return nil, err
	}
	return w.res, nil
}

func (w *walker) walkDir(ctx context.Context, dir string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	entries, ok := w.readDir(ctx, dir)
	if !ok {
		return nil
	}
	for _, entry := range entries {
		full := filepath.Join(dir, entry.Name())
		if !entry.IsDir() {
			w.classify(full)
			continue
		}
		if _, isMedia := w.mediaDirs[strings.ToLower(entry.Name())]; isMedia {
			w.collectShallow(ctx, full)
			continue
		}
		if err := w.walkDir(ctx, full); err != nil {
			return err
		}
	}
	return nil
}

// collectShallow gathers the immediate files of a media-like directory.
func (w *walker) collectShallow(ctx context.Context, dir string) {
	entries, ok := w.readDir(ctx, dir)
	if !ok {
		return
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		w.classify(filepath.Join(dir, entry.Name()))
	}
}

func (w *walker) readDir(ctx context.Context, dir string) ([]os.DirEntry, bool) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		logutil.GetLogger(ctx).Warn("skip unreadable dir",
			zap.String("dir", filepath.ToSlash(dir)),
			zap.Error(err),
		)
		w.res.Skipped = append(w.res.Skipped, dir)
		return nil, false
	}
	return entries, true
}

func (w *walker) classify(path string) {
	switch {
	case pathutil.HasExt(path, w.opts.RomExts):
		w.res.Roms = append(w.res.Roms, path)
	case pathutil.HasExt(path, w.opts.MediaExts):
		w.res.Media = append(w.res.Media, path)
	}
}
