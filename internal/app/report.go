package app

import (
	"io"
	"os"
	"strings"
	"unicode"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/mattn/go-isatty"
	"github.com/mozillazg/go-pinyin"
)

// isTerminal reports whether w is an interactive terminal.
func isTerminal(w io.Writer) bool {
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// reportStyle picks rounded boxes for a terminal and plain ascii for pipes
// and files.
func reportStyle(w io.Writer) table.Style {
	if isTerminal(w) {
		return table.StyleRounded
	}
	return table.StyleDefault
}

// reportTable is the column layout of one report; counters and sizes are
// right aligned, everything else reads left to right.
type reportTable struct {
	headers []string
	numeric map[int]bool
}

func newReportTable(headers ...string) *reportTable {
	return &reportTable{headers: headers, numeric: map[int]bool{}}
}

// withNumeric marks columns, by header name, as right aligned.
func (t *reportTable) withNumeric(names ...string) *reportTable {
	for _, name := range names {
		for i, h := range t.headers {
			if h == name {
				t.numeric[i] = true
			}
		}
	}
	return t
}

// render draws rows under the layout. Short rows are padded and extra cells
// are dropped so every line has the header's width.
func (t *reportTable) render(style table.Style, rows [][]string) string {
	if len(t.headers) == 0 {
		return ""
	}
	tw := table.NewWriter()
	tw.SetStyle(style)
	tw.AppendHeader(t.toRow(t.headers))
	for _, row := range rows {
		tw.AppendRow(t.toRow(row))
	}
	configs := make([]table.ColumnConfig, 0, len(t.numeric))
	for i := range t.headers {
		if !t.numeric[i] {
			continue
		}
		configs = append(configs, table.ColumnConfig{
			Number:      i + 1,
			Align:       text.AlignRight,
			AlignHeader: text.AlignLeft,
		})
	}
	tw.SetColumnConfigs(configs)
	return tw.Render()
}

func (t *reportTable) toRow(cells []string) table.Row {
	r := make(table.Row, len(t.headers))
	for i := range r {
		if i < len(cells) {
			r[i] = cells[i]
		} else {
			r[i] = ""
		}
	}
	return r
}

var pinyinArgs = pinyin.NewArgs()

// sortKey orders titles with Han characters by their pinyin reading.
func sortKey(name string) string {
	var b strings.Builder
	for _, r := range name {
		if unicode.Is(unicode.Han, r) {
			if py := pinyin.SinglePinyin(r, pinyinArgs); len(py) > 0 {
				b.WriteString(py[0])
				continue
			}
		}
		b.WriteRune(unicode.ToLower(r))
	}
	return b.String()
}

func yesNo(v bool) string {
	if v {
		return "yes"
	}
	return "no"
}
