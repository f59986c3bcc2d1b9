package scanner

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/xxxsen/common/logutil"
	"github.com/xxxsen/romdoctor/internal/constant"
	"github.com/xxxsen/romdoctor/internal/gamelist"
	"github.com/xxxsen/romdoctor/internal/model"
	"github.com/xxxsen/romdoctor/internal/walker"
	"go.uber.org/atomic"
	"go.uber.org/zap"
)

const defaultConcurrency = 4

// Options configures discovery and correlation.
type Options struct {
	Walker       walker.Options
	GamelistFile string
	Concurrency  int
	Now          func() time.Time
}

// DefaultOptions returns the built-in scan configuration.
func DefaultOptions() Options {
	return Options{
		Walker:       walker.DefaultOptions(),
		GamelistFile: constant.DefaultGamelistFile,
		Concurrency:  defaultConcurrency,
		Now:          time.Now,
	}
}

func (o Options) normalized() Options {
	if o.GamelistFile == "" {
		o.GamelistFile = constant.DefaultGamelistFile
	}
	if o.Concurrency <= 0 {
		o.Concurrency = defaultConcurrency
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	return o
}

// ScanAll rebuilds the catalog of every system directory under basePath.
// Only a failure to list basePath itself is an error; the returned result is
// then empty with Error set.
func ScanAll(ctx context.Context, basePath string, opts Options) (*model.ScanResult, error) {
	opts = opts.normalized()
	logger := logutil.GetLogger(ctx)

	dirs, err := discoverSystems(basePath)
	if err != nil {
		err = fmt.Errorf("read base dir %s: %w", basePath, err)
		return &model.ScanResult{Systems: []*model.System{}, Error: err.Error()}, err
	}

	systems := make([]*model.System, len(dirs))
	errs := make([]error, len(dirs))
	totalRoms := atomic.NewInt64(0)
	orphaned := atomic.NewInt64(0)

	semaphore := make(chan struct{}, opts.Concurrency)
	var wg sync.WaitGroup
	for i, name := range dirs {
		wg.Add(1)
		go func(idx int, id string) {
			defer wg.Done()
			semaphore <- struct{}{}
			defer func() { <-semaphore }()

			sys, err := ScanSystem(ctx, id, filepath.Join(basePath, id), opts)
			if err != nil {
				errs[idx] = err
				return
			}
			totalRoms.Add(int64(sys.Stats.TotalRoms))
			orphaned.Add(int64(sys.Stats.OrphanedMedia))
			systems[idx] = sys
		}(i, name)
	}
	wg.Wait()

	if err := errors.Join(errs...); err != nil {
		return &model.ScanResult{Systems: []*model.System{}, Error: err.Error()}, err
	}

	logger.Info("scan completed",
		zap.String("base", filepath.ToSlash(basePath)),
		zap.Int("systems", len(systems)),
		zap.Int64("roms", totalRoms.Load()),
		zap.Int64("orphaned_media", orphaned.Load()),
	)
	return &model.ScanResult{Systems: systems}, nil
}

func discoverSystems(basePath string) ([]string, error) {
	entries, err := os.ReadDir(basePath)
	if err != nil {
		return nil, err
	}
	var dirs []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasPrefix(name, ".") || isSkippedSystemDir(name) {
			continue
		}
		if !entry.IsDir() {
			if entry.Type()&os.ModeSymlink == 0 {
				continue
			}
			info, err := os.Stat(filepath.Join(basePath, name))
			if err != nil || !info.IsDir() {
				continue
			}
		}
		dirs = append(dirs, name)
	}
	return dirs, nil
}

func isSkippedSystemDir(name string) bool {
	for _, skip := range constant.SkippedSystemDirs {
		if strings.EqualFold(skip, name) {
			return true
		}
	}
	return false
}

// ScanSystem walks one system directory, reads its gamelist and correlates both.
func ScanSystem(ctx context.Context, id, root string, opts Options) (*model.System, error) {
	opts = opts.normalized()
	logger := logutil.GetLogger(ctx)

	walked, err := walker.Walk(ctx, root, opts.Walker)
	if err != nil {
		return nil, err
	}

	sys := &model.System{
		ID:            id,
		Name:          strings.ToUpper(id),
		RootPath:      root,
		GamelistPath:  filepath.Join(root, opts.GamelistFile),
		GamelistState: model.GamelistOK,
		ScanTime:      opts.Now().UnixMilli(),
	}

	var records []*gamelist.Record
	doc, exists, err := gamelist.ReadFile(sys.GamelistPath)
	switch {
	case err != nil:
		sys.GamelistState = model.GamelistMalformed
		sys.GamelistError = err.Error()
		logger.Warn("gamelist unusable, treated as empty",
			zap.String("system", id),
			zap.String("path", filepath.ToSlash(sys.GamelistPath)),
			zap.Error(err),
		)
	case !exists:
		sys.GamelistState = model.GamelistMissing
	default:
		records = doc.Records()
	}

	sys.Games = BuildEntries(id, root, walked.Roms, records)
	sys.Stats = ComputeStats(sys.Games, walked.Roms, walked.Media, len(records))

	logger.Debug("system scanned",
		zap.String("system", id),
		zap.String("gamelist_state", string(sys.GamelistState)),
		zap.Int("games", len(sys.Games)),
		zap.Int("skipped_dirs", len(walked.Skipped)),
	)
	return sys, nil
}
