package interp

import (
	"strings"

	"github.com/rubiojr/bangtag/parser"
)

func init() {
	register(&Builtin{
		Name:  "var",
		Usage: "var:<name> | var:<name>:- | var:<name>:<value>... | var:end | var:endall",
		Doc:   "Read, capture into, or set a variable",
		Run:   runVar,
	})
	register(&Builtin{
		Name:  "tf",
		Usage: "tf:<verb>:<pattern>:<replacement>... | tf:end | tf:endall",
		Doc:   "Rewrite everything that follows with replace/replaceall",
		Run:   runTf,
	})
	end := &Builtin{
		Name:  "end",
		Usage: "end",
		Doc:   "Close the most recently opened scope",
		Run:   func(p *Pass, _ parser.Command, _ string) { p.popTop() },
	}
	endall := &Builtin{
		Name:  "endall",
		Usage: "endall",
		Doc:   "Close every open scope",
		Run:   func(p *Pass, _ parser.Command, _ string) { p.clearAll() },
	}
	register(end)
	register(aliasOf("stop", end))
	register(endall)
	register(aliasOf("stopall", endall))
	register(&Builtin{
		Name:  "hide",
		Usage: "hide | hide:end | hide:endall",
		Doc:   "Discard output until closed",
		Run:   runHide,
	})
	register(&Builtin{
		Name:  "comment",
		Usage: "comment ... comment:end",
		Doc:   "Ignore text and directives until comment:end",
		Run:   runComment,
	})
}

func runVar(p *Pass, cmd parser.Command, _ string) {
	name := cmd.Arg(1)
	if name == "" {
		p.debug("var without a name", cmd)
		return
	}
	if p.closeScoped(captureScope, name) {
		return
	}
	rest := cmd[2:]
	switch {
	case len(rest) == 0:
		p.emit(p.vars[name])
	case len(rest) == 1 && strings.HasPrefix(rest[0], "-"):
		// var:x:- opens a capture; var:x:-text opens it with text inside.
		p.openCapture(name)
		p.emit(rest[0][1:])
	default:
		p.vars[name] = strings.Join(rest, parser.Delim)
	}
}

func runTf(p *Pass, cmd parser.Command, _ string) {
	verb := strings.ToLower(cmd.Arg(1))
	if verb == "" {
		p.debug("tf without a verb", cmd)
		return
	}
	if p.closeScoped(transformScope, verb) {
		return
	}
	args := append([]string(nil), cmd[2:]...)
	p.push(scope{kind: transformScope, tf: transform{verb: verb, args: args}})
}

func runHide(p *Pass, cmd parser.Command, _ string) {
	if len(cmd) > 1 {
		if !p.closeScoped(hideScope, cmd[1]) {
			p.debug("unknown hide argument", cmd)
		}
		return
	}
	p.push(scope{kind: hideScope})
}

// runComment opens a comment scope. With arguments the directive is an
// inline comment and does nothing.
func runComment(p *Pass, cmd parser.Command, _ string) {
	if len(cmd) > 1 {
		return
	}
	p.push(scope{kind: commentScope})
}
