package cli

import (
	"bytes"
	"io"
	"iter"
	"os"

	"github.com/jacoelho/dq/internal/document"
	"github.com/jacoelho/dq/internal/exit"
)

const stdinName = "-"

// Input names the document source of a command. An empty file or "-" reads
// standard input.
type Input struct {
	File string `arg:"" optional:"" help:"Input file; standard input when omitted or '-'."`
}

func (in Input) name() string {
	if in.File == "" {
		return stdinName
	}
	return in.File
}

func (in Input) format(c *Context) document.Format {
	if c.Format != "" {
		return c.Format
	}
	if in.name() == stdinName {
		return document.FormatJSON
	}
	return document.FormatFor(in.File)
}

func (in Input) open(c *Context) (io.ReadCloser, error) {
	if in.name() == stdinName {
		return io.NopCloser(c.Stdin), nil
	}
	f, err := os.Open(in.File)
	if err != nil {
		return nil, exit.IOf("%v", err)
	}
	return f, nil
}

// ReadAll returns the raw bytes of the input.
func (in Input) ReadAll(c *Context) ([]byte, error) {
	r, err := in.open(c)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, exit.IOf("read %s: %v", in.name(), err)
	}
	return data, nil
}

// Documents lazily yields every document of the input. Loading stops when
// the command context is cancelled.
func (in Input) Documents(c *Context) iter.Seq2[any, error] {
	return func(yield func(any, error) bool) {
		r, err := in.open(c)
		if err != nil {
			yield(nil, err)
			return
		}
		defer r.Close()

		format := in.format(c)
		c.Logger.Debug("loading documents", "input", in.name(), "format", format)

		n := 0
		for doc, err := range document.Decode(r, format) {
			if err == nil {
				err = c.Ctx.Err()
			}
			if err != nil {
				yield(nil, exit.IOf("%s: %v", in.name(), err))
				return
			}
			n++
			if !yield(doc, nil) {
				return
			}
		}
		c.Logger.Debug("documents loaded", "input", in.name(), "count", n)
	}
}

// decoded decodes raw bytes already read from the input.
func (in Input) decoded(c *Context, data []byte) iter.Seq2[any, error] {
	return func(yield func(any, error) bool) {
		for doc, err := range document.Decode(bytes.NewReader(data), in.format(c)) {
			if err != nil {
				yield(nil, exit.IOf("%s: %v", in.name(), err))
				return
			}
			if !yield(doc, nil) {
				return
			}
		}
	}
}
