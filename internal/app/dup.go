package app

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/dustin/go-humanize"
	"github.com/spf13/pflag"
	"github.com/xxxsen/common/logutil"
	"github.com/xxxsen/romdoctor/internal/duplicate"
	"github.com/xxxsen/romdoctor/internal/model"
	"go.uber.org/zap"
)

// DupCommand reports ROM files that share a normalized title.
type DupCommand struct {
	baseCommand
	system string
	prune  bool
	apply  bool
}

func NewDupCommand() *DupCommand {
	return &DupCommand{}
}

func (c *DupCommand) Name() string { return "dup" }

func (c *DupCommand) Desc() string {
	return "按规范化名称查找重复 ROM"
}

func (c *DupCommand) Init(f *pflag.FlagSet) {
	c.initBase(f)
	f.StringVar(&c.system, "system", "", "只检查指定系统")
	f.BoolVar(&c.prune, "prune", false, "每组保留第一个文件，列出其余待删除文件")
	f.BoolVar(&c.apply, "apply", false, "配合 --prune 实际删除文件")
}

func (c *DupCommand) PreRun(ctx context.Context) error {
	if c.apply && !c.prune {
		return errors.New("dup --apply requires --prune")
	}
	return c.prepare(ctx, c.Name())
}

func (c *DupCommand) Run(ctx context.Context) error {
	res, err := c.session.Scan(ctx)
	if err != nil {
		return err
	}
	systems := res.Systems
	if c.system != "" {
		sys := res.FindSystem(c.system)
		if sys == nil {
			return fmt.Errorf("system %s not found under %s", c.system, c.session.BasePath)
		}
		systems = []*model.System{sys}
	}

	dups := c.session.FindDuplicates(systems)
	w := c.stdout()
	if len(dups) == 0 {
		fmt.Fprintln(w, "No duplicates found.")
		return c.writeOutput(ctx, dups)
	}
	fmt.Fprintln(w, dupTable.render(reportStyle(w), dupRows(dups)))

	if c.prune {
		extra := duplicate.KeepFirst(dups)
		if !c.apply {
			fmt.Fprintf(w, "Would delete %d files (first file of each group is kept):\n", len(extra))
			for _, p := range extra {
				fmt.Fprintln(w, "  "+p)
			}
		} else {
			del := c.session.DeleteFiles(ctx, extra)
			printDeleteResult(w, del)
			logutil.GetLogger(ctx).Info("duplicates pruned",
				zap.Int("deleted", len(del.Deleted)),
				zap.Int("failed", len(del.Failed)),
			)
			if len(del.Failed) > 0 {
				return fmt.Errorf("failed to delete %d files", len(del.Failed))
			}
		}
	}
	return c.writeOutput(ctx, dups)
}

func (c *DupCommand) PostRun(ctx context.Context) error { return nil }

var dupTable = newReportTable("System", "Title", "File", "Size").withNumeric("Size")

func dupRows(dups map[string][]model.DuplicateGroup) [][]string {
	ids := make([]string, 0, len(dups))
	for id := range dups {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var rows [][]string
	for _, id := range ids {
		groups := append([]model.DuplicateGroup(nil), dups[id]...)
		sort.SliceStable(groups, func(i, j int) bool {
			return sortKey(groups[i].Name) < sortKey(groups[j].Name)
		})
		for _, grp := range groups {
			for _, f := range grp.Files {
				rows = append(rows, []string{id, grp.Name, f.Filename, humanize.Bytes(uint64(f.Size))})
			}
		}
	}
	return rows
}

func init() {
	RegisterRunner("dup", func() IRunner { return NewDupCommand() })
}
