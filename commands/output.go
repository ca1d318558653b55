package commands

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/fatih/color"
)

// Output is where commands report to the user.
type Output struct {
	w       io.Writer
	success *color.Color
	failure *color.Color
	warning *color.Color
}

func NewOutput(w io.Writer) *Output {
	return &Output{
		w:       w,
		success: color.New(color.FgGreen),
		failure: color.New(color.FgRed),
		warning: color.New(color.FgYellow),
	}
}

// DisableColor prints plain text, for pipes and tests.
func (o *Output) DisableColor() *Output {
	o.success.DisableColor()
	o.failure.DisableColor()
	o.warning.DisableColor()
	return o
}

func (o *Output) Success(format string, args ...any) {
	o.success.Fprintf(o.w, format+"\n", args...)
}

func (o *Output) Failure(format string, args ...any) {
	o.failure.Fprintf(o.w, format+"\n", args...)
}

func (o *Output) Warning(format string, args ...any) {
	o.warning.Fprintf(o.w, format+"\n", args...)
}

func (o *Output) Println(args ...any) {
	fmt.Fprintln(o.w, args...)
}

// Table prints rows under headers with box drawing borders.
func (o *Output) Table(headers []string, rows [][]string) {
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = utf8.RuneCountInString(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			if i < len(widths) {
				widths[i] = max(widths[i], utf8.RuneCountInString(cell))
			}
		}
	}

	separator := func(left, mid, right string) {
		fmt.Fprint(o.w, left)
		for i, width := range widths {
			fmt.Fprint(o.w, strings.Repeat("─", width+2))
			if i < len(widths)-1 {
				fmt.Fprint(o.w, mid)
			}
		}
		fmt.Fprintln(o.w, right)
	}
	line := func(row []string) {
		fmt.Fprint(o.w, "│")
		for i, cell := range row {
			if i < len(widths) {
				fmt.Fprintf(o.w, " %-*s │", widths[i], cell)
			}
		}
		fmt.Fprintln(o.w)
	}

	separator("┌", "┬", "┐")
	line(headers)
	separator("├", "┼", "┤")
	for _, row := range rows {
		line(row)
	}
	separator("└", "┴", "┘")
}
