package cli

import (
	"github.com/jacoelho/dq/internal/collection"
	"github.com/jacoelho/dq/internal/document"
	"github.com/jacoelho/dq/internal/dotpath"
	"github.com/jacoelho/dq/internal/exit"
	"github.com/jacoelho/dq/internal/rawjson"
)

// GetCmd prints the first value selected in each document.
type GetCmd struct {
	Path  string `arg:"" help:"Path to read, for example users[0].name."`
	Input `embed:""`
	Raw   bool `help:"Print strings without JSON quoting." short:"r"`
}

// Run executes the get command.
func (cmd *GetCmd) Run(c *Context) error {
	p, err := c.Registry.Parse(cmd.Path)
	if err != nil {
		return err
	}
	out := c.printer(cmd.Raw)

	docs := cmd.Documents(c)
	if p.IsExact() && cmd.format(c) == document.FormatJSON {
		data, err := cmd.ReadAll(c)
		if err != nil {
			return err
		}
		if rawjson.Valid(data) {
			v, ok, err := rawjson.Get(data, p)
			if err != nil {
				return err
			}
			c.Logger.Debug("raw lookup", "path", p.String(), "found", ok)
			if !ok {
				return exit.False()
			}
			return out.value(v)
		}
		docs = cmd.decoded(c, data)
	}

	ev := c.Evaluator()
	found := false
	for doc, err := range docs {
		if err != nil {
			return err
		}
		v, ok, err := ev.GetFirst(p, doc)
		if err != nil {
			return err
		}
		if !ok {
			continue
		}
		found = true
		if err := out.value(v); err != nil {
			return err
		}
	}

	if !found {
		return exit.False()
	}
	return nil
}

// FindCmd prints every value selected in each document.
type FindCmd struct {
	Path     string `arg:"" help:"Path to evaluate, for example **.price."`
	Input    `embed:""`
	First    bool `help:"Stop after the first match."`
	Paths    bool `help:"Print the concrete location of each match instead of its value."`
	FromJSON bool `help:"Read the path as a JSON syntax tree as printed by 'dq ast'." name:"from-json"`
	Raw      bool `help:"Print strings without JSON quoting." short:"r"`
}

// Run executes the find command.
func (cmd *FindCmd) Run(c *Context) error {
	p, err := cmd.path(c)
	if err != nil {
		return err
	}
	c.Logger.Debug("path parsed", "path", p.String())

	out := c.printer(cmd.Raw)
	ev := c.Evaluator()
	matches := 0

	for doc, err := range cmd.Documents(c) {
		if err != nil {
			return err
		}
		results, err := ev.Select(p, doc)
		if err != nil {
			return err
		}

		for _, r := range results {
			matches++
			if cmd.Paths {
				err = out.line(r.Location.String())
			} else {
				err = out.value(r.Value)
			}
			if err != nil {
				return err
			}
			if cmd.First {
				return nil
			}
		}
	}

	c.Logger.Debug("find finished", "matches", matches)
	if matches == 0 {
		return exit.False()
	}
	return nil
}

func (cmd *FindCmd) path(c *Context) (dotpath.Path, error) {
	if !cmd.FromJSON {
		return c.Registry.Parse(cmd.Path)
	}
	p, err := dotpath.UnmarshalPath([]byte(cmd.Path))
	if err != nil {
		return dotpath.Path{}, exit.Usagef("invalid path tree: %v", err)
	}
	return p, nil
}

// ExistsCmd reports whether a path selects anything in any document.
type ExistsCmd struct {
	Path  string `arg:"" help:"Path to look for."`
	Input `embed:""`
	Quiet bool `help:"Only set the exit code." short:"q"`
}

// Run executes the exists command.
func (cmd *ExistsCmd) Run(c *Context) error {
	p, err := c.Registry.Parse(cmd.Path)
	if err != nil {
		return err
	}

	ev := c.Evaluator()
	found := false
	for doc, err := range cmd.Documents(c) {
		if err != nil {
			return err
		}
		if found, err = ev.Exists(p, doc); err != nil {
			return err
		}
		if found {
			break
		}
	}

	return c.conclude(found, cmd.Quiet)
}

// QueryCmd prints the documents matching a query, in input order.
type QueryCmd struct {
	Query    string `arg:"" help:"Query, for example \"age >= 18 and not role == 'guest'\"."`
	Input    `embed:""`
	Exclude  bool `help:"Print the documents that do not match instead."`
	Count    bool `help:"Print the number of matching documents."`
	First    bool `help:"Print only the first matching document."`
	FromJSON bool `help:"Read the query as a JSON syntax tree as printed by 'dq ast --query'." name:"from-json"`
}

// Run executes the query command.
func (cmd *QueryCmd) Run(c *Context) error {
	n, err := parseQuery(c, cmd.Query, cmd.FromJSON)
	if err != nil {
		return err
	}
	c.Logger.Debug("query parsed", "query", n.String())

	set := collection.New(cmd.Documents(c), c.Evaluator())
	if cmd.Exclude {
		set = set.Exclude(n)
	} else {
		set = set.Filter(n)
	}

	out := c.printer(false)
	switch {
	case cmd.Count:
		count, err := set.Count()
		if err != nil {
			return err
		}
		if err := out.value(count); err != nil {
			return err
		}
		if count == 0 {
			return exit.False()
		}
		return nil
	case cmd.First:
		doc, ok, err := set.First()
		if err != nil {
			return err
		}
		if !ok {
			return exit.False()
		}
		return out.value(doc)
	}

	matched := 0
	for doc, err := range set.All() {
		if err != nil {
			return err
		}
		matched++
		if err := out.value(doc); err != nil {
			return err
		}
	}
	if matched == 0 {
		return exit.False()
	}
	return nil
}

// TestCmd evaluates a query against every document.
type TestCmd struct {
	Query    string `arg:"" help:"Query to evaluate."`
	Input    `embed:""`
	Quiet    bool `help:"Only set the exit code." short:"q"`
	FromJSON bool `help:"Read the query as a JSON syntax tree." name:"from-json"`
}

// Run executes the test command. The query holds when there is at least one
// document and every document matches.
func (cmd *TestCmd) Run(c *Context) error {
	n, err := parseQuery(c, cmd.Query, cmd.FromJSON)
	if err != nil {
		return err
	}

	ev := c.Evaluator()
	seen, holds := 0, true
	for doc, err := range cmd.Documents(c) {
		if err != nil {
			return err
		}
		seen++
		ok, err := ev.Match(n, doc)
		if err != nil {
			return err
		}
		if !ok {
			holds = false
			break
		}
	}

	return c.conclude(seen > 0 && holds, cmd.Quiet)
}

func parseQuery(c *Context, text string, fromJSON bool) (dotpath.Node, error) {
	if !fromJSON {
		return c.Registry.ParseQuery(text)
	}
	n, err := dotpath.UnmarshalNode([]byte(text))
	if err != nil {
		return nil, exit.Usagef("invalid query tree: %v", err)
	}
	return n, nil
}

// conclude prints the verdict unless quiet and turns false into exit code 1.
func (c *Context) conclude(ok, quiet bool) error {
	if !quiet {
		if err := c.verdict(ok); err != nil {
			return err
		}
	}
	if !ok {
		return exit.False()
	}
	return nil
}

// SetCmd replaces every value a path selects in a single JSON document.
type SetCmd struct {
	Path   string `arg:"" help:"Path selecting the values to replace."`
	Value  string `arg:"" help:"New value as JSON."`
	Input  `embed:""`
	String bool `help:"Use the value as a literal string instead of JSON." short:"s"`
}

// Run executes the set command.
func (cmd *SetCmd) Run(c *Context) error {
	if f := cmd.format(c); f != document.FormatJSON {
		return exit.Usagef("set only supports JSON input, got %s", f)
	}

	p, err := c.Registry.Parse(cmd.Path)
	if err != nil {
		return err
	}
	value, err := cmd.value()
	if err != nil {
		return err
	}

	data, err := cmd.ReadAll(c)
	if err != nil {
		return err
	}
	doc, err := document.DecodeJSON(data)
	if err != nil {
		return exit.IOf("%s: %v", cmd.name(), err)
	}

	results, err := c.Evaluator().Select(p, doc)
	if err != nil {
		return err
	}
	c.Logger.Debug("set targets", "path", p.String(), "count", len(results))

	updated, err := rawjson.SetAll(data, results.Locations(), value)
	if err != nil {
		return err
	}

	if err := cmd.write(c, updated); err != nil {
		return err
	}
	if len(results) == 0 {
		return exit.False()
	}
	return nil
}

func (cmd *SetCmd) value() (any, error) {
	if cmd.String {
		return cmd.Value, nil
	}
	v, err := document.DecodeJSON([]byte(cmd.Value))
	if err != nil {
		return nil, exit.Usagef("invalid JSON value %q (use --string for text)", cmd.Value)
	}
	return v, nil
}

func (cmd *SetCmd) write(c *Context, data []byte) error {
	if c.Output == "yaml" {
		doc, err := document.DecodeJSON(data)
		if err != nil {
			return err
		}
		return c.printer(false).value(doc)
	}

	if len(data) > 0 && data[len(data)-1] != '\n' {
		data = append(data, '\n')
	}
	_, err := c.Stdout.Write(data)
	return err
}

// AstCmd prints the syntax tree of a path or query.
type AstCmd struct {
	Text  string `arg:"" help:"Path or query text."`
	Query bool   `help:"Parse the text as a query instead of a path." short:"q"`
}

// Run executes the ast command.
func (cmd *AstCmd) Run(c *Context) error {
	var tree []byte
	if cmd.Query {
		n, err := c.Registry.ParseQuery(cmd.Text)
		if err != nil {
			return err
		}
		if tree, err = dotpath.MarshalNode(n); err != nil {
			return err
		}
	} else {
		p, err := c.Registry.Parse(cmd.Text)
		if err != nil {
			return err
		}
		if tree, err = dotpath.MarshalPath(p); err != nil {
			return err
		}
	}

	v, err := document.DecodeJSON(tree)
	if err != nil {
		return err
	}
	return c.printer(false).value(v)
}
