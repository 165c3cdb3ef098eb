package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"

	"tickethub/internal/remote"
)

// Printer handles formatted output to the terminal
type Printer struct {
	out       io.Writer
	err       io.Writer
	useColors bool
}

func NewPrinter(out, errOut io.Writer, useColors bool) *Printer {
	return &Printer{out: out, err: errOut, useColors: useColors}
}

func (p *Printer) colored(w io.Writer, attr color.Attribute, format string, args ...any) {
	if p.useColors {
		c := color.New(attr)
		c.EnableColor()
		_, _ = c.Fprintf(w, format+"\n", args...)
		return
	}
	_, _ = fmt.Fprintf(w, format+"\n", args...)
}

func (p *Printer) Success(format string, args ...any) {
	p.colored(p.out, color.FgGreen, format, args...)
}

func (p *Printer) Info(format string, args ...any) {
	p.colored(p.out, color.FgCyan, format, args...)
}

func (p *Printer) Warning(format string, args ...any) {
	p.colored(p.err, color.FgYellow, format, args...)
}

func (p *Printer) Error(format string, args ...any) {
	p.colored(p.err, color.FgRed, format, args...)
}

// Result prints the remote message and returns the result as an error
// when it is not a success.
func (p *Printer) Result(res remote.Result) error {
	switch res.Status {
	case remote.StatusOK:
		p.Success("%s", res.Message)
	case remote.StatusRejected:
		p.Warning("%s", res.Message)
	default:
		p.Error("%s", res.Message)
	}
	return res.Err()
}

// JSON writes v indented.
func (p *Printer) JSON(v any) error {
	enc := json.NewEncoder(p.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// Table renders rows under headers without borders.
func (p *Printer) Table(headers []string, rows [][]string) error {
	table := tablewriter.NewTable(p.out,
		tablewriter.WithConfig(tablewriter.Config{
			Row: tw.CellConfig{
				Formatting: tw.CellFormatting{AutoWrap: tw.WrapNone},
				Alignment:  tw.CellAlignment{Global: tw.AlignLeft},
			},
			Header: tw.CellConfig{
				Formatting: tw.CellFormatting{AutoFormat: tw.On},
				Alignment:  tw.CellAlignment{Global: tw.AlignLeft},
			},
		}),
		tablewriter.WithRendition(tw.Rendition{
			Borders: tw.BorderNone,
			Settings: tw.Settings{
				Separators: tw.Separators{ShowHeader: tw.Off},
			},
		}),
	)
	table.Header(headers)
	if err := table.Bulk(rows); err != nil {
		return err
	}
	return table.Render()
}
