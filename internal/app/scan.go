package app

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/pflag"
	"github.com/xxxsen/common/logutil"
	"github.com/xxxsen/romdoctor/internal/model"
	"go.uber.org/zap"
)

// ScanCommand rebuilds the catalog and prints per-system statistics.
type ScanCommand struct {
	baseCommand
	system string
	games  bool
}

func NewScanCommand() *ScanCommand {
	return &ScanCommand{}
}

func (c *ScanCommand) Name() string { return "scan" }

func (c *ScanCommand) Desc() string {
	return "扫描 ROM 目录，统计 gamelist 与磁盘文件的差异"
}

func (c *ScanCommand) Init(f *pflag.FlagSet) {
	c.initBase(f)
	f.StringVar(&c.system, "system", "", "只显示指定系统")
	f.BoolVar(&c.games, "games", false, "列出每个游戏的对应状态")
}

func (c *ScanCommand) PreRun(ctx context.Context) error {
	return c.prepare(ctx, c.Name())
}

func (c *ScanCommand) Run(ctx context.Context) error {
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

	w := c.stdout()
	style := reportStyle(w)
	fmt.Fprintln(w, scanTable.render(style, scanRows(systems)))
	if c.games {
		for _, sys := range systems {
			fmt.Fprintf(w, "\n%s (%s)\n", sys.Name, sys.ID)
			fmt.Fprintln(w, gameTable.render(style, gameRows(sys)))
		}
	}
	for _, sys := range systems {
		if sys.GamelistState == model.GamelistMalformed {
			fmt.Fprintf(w, "warning: %s gamelist is malformed: %s\n", sys.ID, sys.GamelistError)
		}
	}

	logutil.GetLogger(ctx).Info("scan command finished", zap.Int("systems", len(systems)))
	return c.writeOutput(ctx, &model.ScanResult{Systems: systems})
}

func (c *ScanCommand) PostRun(ctx context.Context) error { return nil }

var (
	scanTable = newReportTable("System", "Gamelist", "ROMs", "Entries", "No entry", "No ROM", "No image", "No video", "Orphan media").
			withNumeric("ROMs", "Entries", "No entry", "No ROM", "No image", "No video", "Orphan media")
	gameTable = newReportTable("ID", "Name", "In gamelist", "ROM", "Image", "Video", "Path")
)

func scanRows(systems []*model.System) [][]string {
	rows := make([][]string, 0, len(systems))
	for _, sys := range systems {
		st := sys.Stats
		rows = append(rows, []string{
			sys.ID,
			string(sys.GamelistState),
			strconv.Itoa(st.TotalRoms),
			strconv.Itoa(st.TotalGamelistEntries),
			strconv.Itoa(st.RomsWithoutEntry),
			strconv.Itoa(st.EntriesWithoutRom),
			strconv.Itoa(st.MissingImages),
			strconv.Itoa(st.MissingVideos),
			strconv.Itoa(st.OrphanedMedia),
		})
	}
	return rows
}

func gameRows(sys *model.System) [][]string {
	rows := make([][]string, 0, len(sys.Games))
	for _, g := range sys.Games {
		path := g.RomPath
		if g.OutsideRoot {
			path += " (outside root)"
		}
		rows = append(rows, []string{
			g.ID,
			g.Name,
			yesNo(g.InGamelist),
			yesNo(g.RomExists),
			yesNo(g.ImageExists),
			yesNo(g.VideoExists),
			path,
		})
	}
	return rows
}

func init() {
	RegisterRunner("scan", func() IRunner { return NewScanCommand() })
}
