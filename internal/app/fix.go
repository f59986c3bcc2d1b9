package app

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/gofrs/flock"
	"github.com/spf13/pflag"
	"github.com/xxxsen/common/logutil"
	"github.com/xxxsen/romdoctor/internal/constant"
	"github.com/xxxsen/romdoctor/internal/model"
	"go.uber.org/zap"
)

var actionAliases = map[string]model.FixAction{
	"sync":  model.ActionSyncGamelist,
	"link":  model.ActionLinkMedia,
	"clean": model.ActionCleanMedia,
}

// FixCommand runs one fix action against a system directory.
type FixCommand struct {
	baseCommand
	system string
	action string
	all    bool
	dryRun bool

	lock *flock.Flock
}

func NewFixCommand() *FixCommand {
	return &FixCommand{}
}

func (c *FixCommand) Name() string { return "fix" }

func (c *FixCommand) Desc() string {
	return "修复 gamelist：同步条目、关联媒体、清理孤立媒体"
}

func (c *FixCommand) Init(f *pflag.FlagSet) {
	c.initBase(f)
	f.StringVar(&c.system, "system", "", "目标系统目录名")
	f.BoolVar(&c.all, "all", false, "对所有系统执行")
	f.StringVar(&c.action, "action", "sync", "修复动作: sync|link|clean")
	f.BoolVar(&c.dryRun, "dryrun", false, "仅模拟执行，不写入任何文件")
}

func parseAction(v string) model.FixAction {
	v = strings.TrimSpace(v)
	if a, ok := actionAliases[strings.ToLower(v)]; ok {
		return a
	}
	return model.FixAction(strings.ToUpper(v))
}

func (c *FixCommand) PreRun(ctx context.Context) error {
	if strings.TrimSpace(c.system) == "" && !c.all {
		return errors.New("fix requires --system or --all")
	}
	if err := c.prepare(ctx, c.Name()); err != nil {
		return err
	}
	if c.dryRun {
		return nil
	}
	lockPath := filepath.Join(c.session.BasePath, constant.LockFile)
	lock := flock.New(lockPath)
	ok, err := lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock %s: %w", lockPath, err)
	}
	if !ok {
		return fmt.Errorf("another live fix holds %s", lockPath)
	}
	c.lock = lock
	logutil.GetLogger(ctx).Info("fix lock acquired", zap.String("lock", filepath.ToSlash(lockPath)))
	return nil
}

func (c *FixCommand) targets(ctx context.Context) ([]string, error) {
	if !c.all {
		return []string{c.system}, nil
	}
	res, err := c.session.Scan(ctx)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(res.Systems))
	for _, sys := range res.Systems {
		ids = append(ids, sys.ID)
	}
	return ids, nil
}

func (c *FixCommand) Run(ctx context.Context) error {
	action := parseAction(c.action)
	ids, err := c.targets(ctx)
	if err != nil {
		return err
	}

	w := c.stdout()
	results := make(map[string]*model.FixResult, len(ids))
	var failed []string
	for _, id := range ids {
		res := c.session.Fix(ctx, id, action, c.dryRun)
		results[id] = res
		fmt.Fprintf(w, "== %s ==\n", id)
		for _, line := range res.Logs {
			fmt.Fprintln(w, line)
		}
		if !res.Success {
			failed = append(failed, id)
		}
	}
	if err := c.writeOutput(ctx, results); err != nil {
		return err
	}
	if len(failed) > 0 {
		return fmt.Errorf("fix %s failed for: %s", action, strings.Join(failed, ", "))
	}
	return nil
}

func (c *FixCommand) PostRun(ctx context.Context) error {
	if c.lock == nil {
		return nil
	}
	if err := c.lock.Unlock(); err != nil {
		logutil.GetLogger(ctx).Warn("release fix lock failed", zap.Error(err))
	}
	c.lock = nil
	return nil
}

func init() {
	RegisterRunner("fix", func() IRunner { return NewFixCommand() })
}
