package app

import (
	"context"
	"fmt"

	"github.com/spf13/pflag"
	"github.com/xxxsen/romdoctor/internal/model"
)

// BiosCommand checks the presence of known firmware files.
type BiosCommand struct {
	baseCommand
	missingOnly bool
}

func NewBiosCommand() *BiosCommand {
	return &BiosCommand{}
}

func (c *BiosCommand) Name() string { return "bios" }

func (c *BiosCommand) Desc() string {
	return "检查常见模拟器 BIOS 文件是否存在"
}

func (c *BiosCommand) Init(f *pflag.FlagSet) {
	c.initBase(f)
	f.BoolVar(&c.missingOnly, "missing", false, "只显示缺失的 BIOS")
}

func (c *BiosCommand) PreRun(ctx context.Context) error {
	return c.prepare(ctx, c.Name())
}

func (c *BiosCommand) Run(ctx context.Context) error {
	results, err := c.session.CheckBios(ctx)
	if err != nil {
		return err
	}
	var rows [][]string
	missingRequired := 0
	for _, r := range results {
		if !r.Found && !r.Definition.IsOptional {
			missingRequired++
		}
		if c.missingOnly && r.Found {
			continue
		}
		rows = append(rows, biosRow(r))
	}
	w := c.stdout()
	fmt.Fprintln(w, biosTable.render(reportStyle(w), rows))
	fmt.Fprintf(w, "%d required BIOS files missing.\n", missingRequired)
	return c.writeOutput(ctx, results)
}

func (c *BiosCommand) PostRun(ctx context.Context) error { return nil }

var biosTable = newReportTable("System", "File", "Description", "Optional", "Status", "Path")

func biosRow(r model.BiosResult) []string {
	status := "missing"
	if r.Found {
		status = "found"
	}
	return []string{
		r.Definition.System,
		r.Definition.Filename,
		r.Definition.Description,
		yesNo(r.Definition.IsOptional),
		status,
		r.Path,
	}
}

func init() {
	RegisterRunner("bios", func() IRunner { return NewBiosCommand() })
}
