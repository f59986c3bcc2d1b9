package engine

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/xxxsen/common/logutil"
	"github.com/xxxsen/romdoctor/internal/bios"
	"github.com/xxxsen/romdoctor/internal/config"
	"github.com/xxxsen/romdoctor/internal/constant"
	"github.com/xxxsen/romdoctor/internal/duplicate"
	"github.com/xxxsen/romdoctor/internal/fileutil"
	"github.com/xxxsen/romdoctor/internal/fix"
	"github.com/xxxsen/romdoctor/internal/model"
	"github.com/xxxsen/romdoctor/internal/pathutil"
	"github.com/xxxsen/romdoctor/internal/scanner"
	"github.com/xxxsen/romdoctor/internal/walker"
	"go.uber.org/zap"
)

var (
	ErrNoBasePath     = errors.New("no base path configured")
	ErrSystemNotFound = errors.New("system not found")
)

// Options are shared by every operation of a session.
type Options struct {
	Walker       walker.Options
	GamelistFile string
	Concurrency  int
	MirrorPrefix string
	Now          func() time.Time
}

// DefaultOptions returns the built-in engine configuration.
func DefaultOptions() Options {
	return Options{
		Walker:       walker.DefaultOptions(),
		GamelistFile: constant.DefaultGamelistFile,
		Concurrency:  scanner.DefaultOptions().Concurrency,
		Now:          time.Now,
	}
}

// OptionsFromConfig maps the loaded configuration onto engine options.
func OptionsFromConfig(cfg *config.Config) Options {
	opts := DefaultOptions()
	if cfg == nil {
		return opts
	}
	if len(cfg.RomExtensions) > 0 {
		opts.Walker.RomExts = cfg.RomExtensions
	}
	if len(cfg.MediaExtensions) > 0 {
		opts.Walker.MediaExts = cfg.MediaExtensions
	}
	if cfg.GamelistFile != "" {
		opts.GamelistFile = cfg.GamelistFile
	}
	if cfg.Concurrency > 0 {
		opts.Concurrency = cfg.Concurrency
	}
	opts.MirrorPrefix = cfg.S3.Prefix
	return opts
}

// Session carries the base path explicitly into every operation; nothing is
// kept between calls.
type Session struct {
	BasePath string
	Options  Options
	Mirror   fix.Mirror
}

// NewSession builds a session rooted at basePath.
func NewSession(basePath string, opts Options, mirror fix.Mirror) *Session {
	return &Session{BasePath: basePath, Options: opts, Mirror: mirror}
}

func (s *Session) scanOptions() scanner.Options {
	return scanner.Options{
		Walker:       s.Options.Walker,
		GamelistFile: s.Options.GamelistFile,
		Concurrency:  s.Options.Concurrency,
		Now:          s.Options.Now,
	}
}

func (s *Session) fixOptions() fix.Options {
	return fix.Options{
		Walker:       s.Options.Walker,
		GamelistFile: s.Options.GamelistFile,
		Now:          s.Options.Now,
		Mirror:       s.Mirror,
		MirrorPrefix: s.Options.MirrorPrefix,
	}
}

// Scan rebuilds the catalog of every system. Failures come back as an empty
// result with Error set, alongside the error itself.
func (s *Session) Scan(ctx context.Context) (*model.ScanResult, error) {
	if s.BasePath == "" {
		return &model.ScanResult{Systems: []*model.System{}, Error: ErrNoBasePath.Error()}, ErrNoBasePath
	}
	return scanner.ScanAll(ctx, s.BasePath, s.scanOptions())
}

// SystemRoot validates a system id and returns its directory.
func (s *Session) SystemRoot(systemID string) (string, error) {
	if s.BasePath == "" {
		return "", ErrNoBasePath
	}
	if systemID == "" || systemID == "." || systemID == ".." || strings.ContainsAny(systemID, `/\`) {
		return "", fmt.Errorf("invalid system id %q: %w", systemID, ErrSystemNotFound)
	}
	root := filepath.Join(s.BasePath, systemID)
	if !pathutil.DirExists(root) {
		return "", fmt.Errorf("system %s: %w", systemID, ErrSystemNotFound)
	}
	return root, nil
}

// Fix runs one fix action against a system. Precondition failures are
// reported through the transcript with Success=false.
func (s *Session) Fix(ctx context.Context, systemID string, action model.FixAction, dryRun bool) *model.FixResult {
	root, err := s.SystemRoot(systemID)
	if err != nil {
		logutil.GetLogger(ctx).Error("fix precondition failed",
			zap.String("system", systemID),
			zap.String("action", string(action)),
			zap.Error(err),
		)
		return &model.FixResult{
			Logs: []string{
				fmt.Sprintf("Action: %s, DryRun: %t", action, dryRun),
				fmt.Sprintf("Error: %v", err),
			},
			Success: false,
		}
	}
	return fix.Run(ctx, fix.Request{SystemID: systemID, Root: root, Action: action, DryRun: dryRun}, s.fixOptions())
}

// FindDuplicates groups existing ROMs of the given systems by normalized name.
func (s *Session) FindDuplicates(systems []*model.System) map[string][]model.DuplicateGroup {
	return duplicate.Find(systems)
}

// DeleteFiles removes the given files on a best-effort basis. With a base
// path set, anything outside it is refused.
func (s *Session) DeleteFiles(ctx context.Context, paths []string) *model.DeleteResult {
	if s.BasePath == "" {
		return fileutil.DeleteFiles(ctx, paths)
	}
	var inside, outside []string
	for _, p := range paths {
		if filepath.IsAbs(p) && pathutil.Within(s.BasePath, p) {
			inside = append(inside, p)
			continue
		}
		logutil.GetLogger(ctx).Warn("refuse to delete outside base path",
			zap.String("path", p),
			zap.String("base", s.BasePath),
		)
		outside = append(outside, p)
	}
	res := fileutil.DeleteFiles(ctx, inside)
	res.Failed = append(res.Failed, outside...)
	return res
}

// CheckBios reports which known firmware files are present near the base path.
func (s *Session) CheckBios(ctx context.Context) ([]model.BiosResult, error) {
	if s.BasePath == "" {
		return nil, ErrNoBasePath
	}
	return bios.Check(ctx, s.BasePath), nil
}
