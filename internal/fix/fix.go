package fix

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/xxxsen/common/logutil"
	"github.com/xxxsen/romdoctor/internal/constant"
	"github.com/xxxsen/romdoctor/internal/gamelist"
	"github.com/xxxsen/romdoctor/internal/model"
	"github.com/xxxsen/romdoctor/internal/walker"
	"go.uber.org/zap"
)

// Mirror receives a copy of every gamelist backup created by a live fix.
type Mirror interface {
	UploadFile(ctx context.Context, key, filePath string, contentType string) error
}

// Options configures the fix pipeline.
type Options struct {
	Walker       walker.Options
	GamelistFile string
	Now          func() time.Time
	Mirror       Mirror
	MirrorPrefix string
}

// DefaultOptions returns the built-in fix configuration without a mirror.
func DefaultOptions() Options {
	return Options{
		Walker:       walker.DefaultOptions(),
		GamelistFile: constant.DefaultGamelistFile,
		Now:          time.Now,
	}
}

func (o Options) normalized() Options {
	if o.GamelistFile == "" {
		o.GamelistFile = constant.DefaultGamelistFile
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	return o
}

// Request identifies one fix invocation against a system directory.
type Request struct {
	SystemID string
	Root     string
	Action   model.FixAction
	DryRun   bool
}

type runner struct {
	ctx          context.Context
	req          Request
	opts         Options
	gamelistPath string
	logs         []string
}

func (r *runner) logf(format string, args ...interface{}) {
	line := fmt.Sprintf(format, args...)
	r.logs = append(r.logs, line)
	logutil.GetLogger(r.ctx).Debug("fix transcript",
		zap.String("system", r.req.SystemID),
		zap.String("action", string(r.req.Action)),
		zap.String("line", line),
	)
}

// Run executes one fix action. It never returns an error: failures end up in
// the transcript with Success=false.
func Run(ctx context.Context, req Request, opts Options) *model.FixResult {
	opts = opts.normalized()
	r := &runner{
		ctx:          ctx,
		req:          req,
		opts:         opts,
		gamelistPath: filepath.Join(req.Root, opts.GamelistFile),
	}
	r.logf("Action: %s, DryRun: %t", req.Action, req.DryRun)
	r.logf("Target: %s", filepath.ToSlash(req.Root))

	var err error
	switch req.Action {
	case model.ActionSyncGamelist:
		err = r.syncGamelist()
	case model.ActionLinkMedia:
		err = r.linkMedia()
	case model.ActionCleanMedia:
		err = r.cleanMedia()
	default:
		r.logf("Action not recognized: %s", req.Action)
		return &model.FixResult{Logs: r.logs, Success: false}
	}
	if err != nil {
		r.logf("Error: %v", err)
		logutil.GetLogger(ctx).Error("fix action failed",
			zap.String("system", req.SystemID),
			zap.String("action", string(req.Action)),
			zap.Error(err),
		)
		return &model.FixResult{Logs: r.logs, Success: false}
	}
	return &model.FixResult{Logs: r.logs, Success: true}
}

// loadGamelist reads the current gamelist, refusing to go on with one that
// exists but cannot be parsed.
func (r *runner) loadGamelist() (*gamelist.Document, bool, error) {
	doc, exists, err := gamelist.ReadFile(r.gamelistPath)
	if err != nil {
		r.logf("Gamelist cannot be parsed, leaving it untouched: %s", filepath.Base(r.gamelistPath))
		return nil, exists, err
	}
	return doc, exists, nil
}
