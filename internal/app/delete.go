package app

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"
	"github.com/xxxsen/romdoctor/internal/model"
)

// DeleteCommand removes files on a best-effort basis.
type DeleteCommand struct {
	baseCommand
	files    []string
	listFile string
}

func NewDeleteCommand() *DeleteCommand {
	return &DeleteCommand{}
}

func (c *DeleteCommand) Name() string { return "delete" }

func (c *DeleteCommand) Desc() string {
	return "批量删除文件（仅限 ROM 根目录内）"
}

func (c *DeleteCommand) Init(f *pflag.FlagSet) {
	c.initBase(f)
	f.StringSliceVar(&c.files, "file", nil, "待删除的文件，可重复指定")
	f.StringVar(&c.listFile, "list", "", "每行一个待删除文件路径的列表文件")
}

func (c *DeleteCommand) PreRun(ctx context.Context) error {
	if c.listFile != "" {
		paths, err := readPathList(c.listFile)
		if err != nil {
			return err
		}
		c.files = append(c.files, paths...)
	}
	if len(c.files) == 0 {
		return errors.New("delete requires --file or --list")
	}
	for i, p := range c.files {
		if abs, err := filepath.Abs(p); err == nil {
			c.files[i] = abs
		}
	}
	return c.prepare(ctx, c.Name())
}

func (c *DeleteCommand) Run(ctx context.Context) error {
	res := c.session.DeleteFiles(ctx, c.files)
	printDeleteResult(c.stdout(), res)
	if err := c.writeOutput(ctx, res); err != nil {
		return err
	}
	if len(res.Failed) > 0 {
		return fmt.Errorf("failed to delete %d files", len(res.Failed))
	}
	return nil
}

func (c *DeleteCommand) PostRun(ctx context.Context) error { return nil }

func readPathList(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open list %s: %w", path, err)
	}
	defer f.Close()

	var out []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		out = append(out, line)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read list %s: %w", path, err)
	}
	return out, nil
}

func printDeleteResult(w io.Writer, res *model.DeleteResult) {
	for _, p := range res.Deleted {
		fmt.Fprintln(w, "deleted: "+p)
	}
	for _, p := range res.Failed {
		fmt.Fprintln(w, "failed: "+p)
	}
	fmt.Fprintf(w, "Deleted %d, failed %d.\n", len(res.Deleted), len(res.Failed))
}

func init() {
	RegisterRunner("delete", func() IRunner { return NewDeleteCommand() })
}
