package cli

import (
	"fmt"
	"io"

	"github.com/fatih/color"

	"github.com/jacoelho/dq/internal/document"
)

// printer writes values in the selected output format. YAML documents after
// the first are separated by "---".
type printer struct {
	w      io.Writer
	format string
	raw    bool
	count  int
}

func (c *Context) printer(raw bool) *printer {
	return &printer{w: c.Stdout, format: c.Output, raw: raw}
}

func (p *printer) value(v any) error {
	defer func() { p.count++ }()

	if s, ok := v.(string); ok && p.raw {
		_, err := fmt.Fprintln(p.w, s)
		return err
	}

	if p.format == "yaml" {
		if p.count > 0 {
			if _, err := fmt.Fprintln(p.w, "---"); err != nil {
				return err
			}
		}
		return document.WriteYAML(p.w, v)
	}
	return document.WriteJSON(p.w, v)
}

func (p *printer) line(s string) error {
	_, err := fmt.Fprintln(p.w, s)
	return err
}

// verdict prints true in green or false in red.
func (c *Context) verdict(ok bool) error {
	col := c.colored(color.FgRed)
	if ok {
		col = c.colored(color.FgGreen)
	}
	_, err := col.Fprintln(c.Stdout, ok)
	return err
}
