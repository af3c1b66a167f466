package interp

import (
	"math"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/rubiojr/bangtag/parser"
	"github.com/rubiojr/bangtag/scanner"
)

func init() {
	register(&Builtin{
		Name:  "char",
		Usage: "char:<name-or-hex>...",
		Doc:   "Insert characters by name or hex code point",
		Run:   runChar,
	})
	register(&Builtin{
		Name:  "join",
		Usage: "join:<separator>:<item>...",
		Doc:   "Join items with a named or literal separator",
		Run:   runJoin,
	})
	register(&Builtin{
		Name:  "shrug",
		Usage: "shrug",
		Doc:   "Insert " + Shrug,
		Run:   func(p *Pass, _ parser.Command, _ string) { p.emit(Shrug) },
	})
	register(&Builtin{
		Name:  "keysmash",
		Usage: "keysmash",
		Doc:   "Insert a random keyboard smash",
		Run:   func(p *Pass, _ parser.Command, _ string) { p.emit(p.in.keysmash()) },
	})
	register(&Builtin{
		Name:  "bangtag",
		Usage: "bangtag:<directive>",
		Doc:   "Show a directive literally instead of running it",
		Run:   runBangtag,
	})
}

func runChar(p *Pass, cmd parser.Command, _ string) {
	for _, arg := range cmd.Args() {
		if c, ok := charNames[strings.ToLower(arg)]; ok {
			p.emit(c)
			continue
		}
		if !hexPattern.MatchString(arg) {
			continue
		}
		n, err := strconv.ParseUint(arg, 16, 32)
		if err != nil || n == 0 {
			continue
		}
		r := rune(n)
		if !utf8.ValidRune(r) {
			p.emit("?")
			continue
		}
		p.emit(string(r))
	}
}

func runJoin(p *Pass, cmd parser.Command, _ string) {
	if len(cmd) < 3 {
		return
	}
	sep, ok := separators[strings.ToLower(cmd[1])]
	if !ok {
		sep = cmd[1]
	}
	p.emit(strings.Join(cmd[2:], sep))
}

// runBangtag emits the rest of the directive as text. Its delimiters are
// escaped and its marker is inert, so it can never run as a directive.
func runBangtag(p *Pass, _ parser.Command, raw string) {
	rest := ""
	if i := strings.Index(raw, parser.Delim); i >= 0 {
		rest = raw[i+len(parser.Delim):]
	}
	p.emit(scanner.Inert() + parser.EscapeField(rest))
}

// keysmash returns 6 to 33 characters walked across neighbouring keys.
// Short smashes are far more likely than long ones.
func (in *Interpreter) keysmash() string {
	in.randMu.Lock()
	defer in.randMu.Unlock()

	n := 6 + int(math.Floor(math.Pow(in.rand.Float64(), 3)*28))
	if n > 33 {
		n = 33
	}
	var sb strings.Builder
	key := homeRow[in.rand.IntN(len(homeRow))]
	for sb.Len() < n {
		sb.WriteByte(key)
		next := keyboard[key]
		key = next[in.rand.IntN(len(next))]
	}
	return sb.String()
}
