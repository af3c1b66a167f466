package interp

import (
	"sort"

	"github.com/rubiojr/bangtag/parser"
)

// Handler executes one command. raw is the directive body as written,
// before field splitting.
type Handler func(p *Pass, cmd parser.Command, raw string)

// Builtin describes a directive the interpreter understands.
type Builtin struct {
	// Name is the first field that selects this builtin (e.g. "var").
	Name string
	// Usage is a synopsis of the fields (e.g. "var:<name>[:-|:<value>...]").
	Usage string
	// Doc is a one-line description.
	Doc string
	Run Handler
}

var registry = make(map[string]*Builtin)

// register adds a builtin to the global registry.
func register(b *Builtin) {
	registry[b.Name] = b
}

// Lookup returns a builtin by name.
func Lookup(name string) (*Builtin, bool) {
	b, ok := registry[name]
	return b, ok
}

// Commands returns every builtin sorted by name.
func Commands() []*Builtin {
	out := make([]*Builtin, 0, len(registry))
	for _, b := range registry {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func (p *Pass) dispatch(cmd parser.Command, raw string) {
	name := cmd.Name()
	if name == "" {
		return
	}
	b, ok := registry[name]
	if !ok {
		p.debug("dropping unknown directive", cmd)
		return
	}
	b.Run(p, cmd, raw)
}

// aliasOf registers the same handler under another name.
func aliasOf(name string, b *Builtin) *Builtin {
	return &Builtin{Name: name, Usage: b.Usage, Doc: "alias of " + b.Name, Run: b.Run}
}
