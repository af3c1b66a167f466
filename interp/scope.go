package interp

import (
	"strings"

	"github.com/rubiojr/bangtag/parser"
)

type scopeKind byte

const (
	captureScope scopeKind = iota + 1
	transformScope
	hideScope
	commentScope
)

func (k scopeKind) String() string {
	switch k {
	case captureScope:
		return "var"
	case transformScope:
		return "tf"
	case hideScope:
		return "hide"
	case commentScope:
		return "comment"
	}
	return "?"
}

// scope is one entry of the nesting stack. Only the fields matching kind
// are set.
type scope struct {
	kind scopeKind
	name string    // captureScope
	tf   transform // transformScope
}

func (p *Pass) push(s scope) {
	p.scopes = append(p.scopes, s)
}

// popTop closes the most recently opened scope of any kind.
func (p *Pass) popTop() {
	if len(p.scopes) == 0 {
		return
	}
	p.close(len(p.scopes) - 1)
}

// popKind closes the most recently opened scope of kind k, leaving scopes
// of other kinds where they are.
func (p *Pass) popKind(k scopeKind) {
	for i := len(p.scopes) - 1; i >= 0; i-- {
		if p.scopes[i].kind == k {
			p.close(i)
			return
		}
	}
}

// clearKind closes every open scope of kind k, innermost first.
func (p *Pass) clearKind(k scopeKind) {
	for i := len(p.scopes) - 1; i >= 0; i-- {
		if p.scopes[i].kind == k {
			p.close(i)
		}
	}
}

// clearAll closes every open scope, innermost first.
func (p *Pass) clearAll() {
	for len(p.scopes) > 0 {
		p.close(len(p.scopes) - 1)
	}
}

func (p *Pass) close(i int) {
	s := p.scopes[i]
	p.scopes = append(p.scopes[:i], p.scopes[i+1:]...)
	if s.kind == captureScope {
		p.vars[s.name] = strings.TrimSpace(p.vars[s.name])
	}
}

// openCapture starts collecting chunks into name, discarding its old value.
func (p *Pass) openCapture(name string) {
	p.vars[name] = ""
	p.push(scope{kind: captureScope, name: name})
}

// sink returns the innermost scope that swallows output, or nil when
// chunks go to the output.
func (p *Pass) sink() *scope {
	for i := len(p.scopes) - 1; i >= 0; i-- {
		switch p.scopes[i].kind {
		case captureScope, hideScope, commentScope:
			return &p.scopes[i]
		}
	}
	return nil
}

func (p *Pass) inComment() bool {
	s := p.sink()
	return s != nil && s.kind == commentScope
}

// closeScoped handles the closing spellings shared by var, tf and hide.
// It reports whether word was one of them.
func (p *Pass) closeScoped(k scopeKind, word string) bool {
	switch strings.ToLower(word) {
	case "end", "stop":
		p.popKind(k)
	case "endall", "stopall":
		p.clearKind(k)
	default:
		return false
	}
	return true
}

func isCommentClose(cmd parser.Command) bool {
	if cmd.Name() != "comment" || len(cmd) != 2 {
		return false
	}
	switch strings.ToLower(cmd[1]) {
	case "end", "stop", "endall", "stopall":
		return true
	}
	return false
}
