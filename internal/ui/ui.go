package ui

import (
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/fatih/color"
)

var (
	Green  = color.New(color.FgGreen).SprintFunc()
	Yellow = color.New(color.FgYellow).SprintFunc()
	Blue   = color.New(color.FgBlue).SprintFunc()
	Bold   = color.New(color.Bold).SprintFunc()
)

var ansiPattern = regexp.MustCompile("\x1b\\[[0-9;]*m")

// PrintTable writes rows to w with columns padded to their widest cell.
// Width math ignores color codes so colored cells still align.
func PrintTable(w io.Writer, rows [][]string, indent int) {
	if len(rows) == 0 {
		return
	}

	var widths []int
	for _, row := range rows {
		for i, cell := range row {
			if i >= len(widths) {
				widths = append(widths, 0)
			}
			if n := len(stripAnsi(cell)); n > widths[i] {
				widths[i] = n
			}
		}
	}

	prefix := strings.Repeat(" ", indent)
	for _, row := range rows {
		var line strings.Builder
		line.WriteString(prefix)
		for i, cell := range row {
			if i > 0 {
				line.WriteString("  ")
			}
			line.WriteString(cell)
			if i < len(row)-1 {
				line.WriteString(strings.Repeat(" ", widths[i]-len(stripAnsi(cell))))
			}
		}
		fmt.Fprintln(w, line.String())
	}
}

func stripAnsi(s string) string {
	return ansiPattern.ReplaceAllString(s, "")
}
