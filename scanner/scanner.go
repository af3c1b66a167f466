// Package scanner splits message text into literal spans and directive
// spans. A directive starts with the #! marker and takes one of three
// forms, tried in order:
//
//	#!var:x::some text:!#   terminated: runs to the nearest :!#
//	#!{tag:a:b}             braced: runs to the matching }
//	#!shrug                 bare: runs until whitespace, # or !
//
// The scan is monotonic: every byte of the input lands in exactly one span
// and spans come back in input order.
package scanner

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	// Marker opens a directive.
	Marker = "#!"
	// Terminator closes a terminated directive.
	Terminator = ":!#"
	// EscapedMarker is what users type to get a literal #! in the output.
	EscapedMarker = "#!!"

	// inertMarker replaces EscapedMarker before scanning. It cannot match
	// Marker and is turned back into #! by Unescape.
	inertMarker = "#\uE000!"
)

// Kind distinguishes literal text from directives.
type Kind byte

const (
	Literal Kind = iota
	Directive
)

func (k Kind) String() string {
	if k == Directive {
		return "directive"
	}
	return "literal"
}

// Form is the delimiter form a directive span was recognized with.
type Form byte

const (
	NoForm Form = iota
	Terminated
	Braced
	Bare
)

func (f Form) String() string {
	switch f {
	case Terminated:
		return "terminated"
	case Braced:
		return "braced"
	case Bare:
		return "bare"
	}
	return ""
}

// Span is one piece of scanned text.
type Span struct {
	Kind Kind
	Form Form
	// Text is the raw span including marker and terminator.
	Text string
	// Pos is the byte offset of Text in the scanned source.
	Pos int
}

// Body returns the directive text with marker, braces and terminator
// removed. For literal spans it returns Text unchanged.
func (s Span) Body() string {
	switch s.Form {
	case Terminated:
		return s.Text[len(Marker) : len(s.Text)-len(Terminator)]
	case Braced:
		return s.Text[len(Marker)+1 : len(s.Text)-1]
	case Bare:
		return s.Text[len(Marker):]
	}
	return s.Text
}

// DirectiveScanner walks source text span by span.
type DirectiveScanner struct {
	src string
	pos int
}

// New creates a DirectiveScanner for src. The caller is expected to have
// applied Escape already; Split does both.
func New(src string) *DirectiveScanner {
	return &DirectiveScanner{src: src}
}

// Next returns the next span, or false at end of input.
func (s *DirectiveScanner) Next() (Span, bool) {
	if s.pos >= len(s.src) {
		return Span{}, false
	}
	start := s.pos
	from := s.pos
	for {
		i := strings.Index(s.src[from:], Marker)
		if i < 0 {
			s.pos = len(s.src)
			return Span{Kind: Literal, Text: s.src[start:], Pos: start}, true
		}
		at := from + i
		end, form := s.match(at)
		if form == NoForm {
			// A marker with nothing usable after it stays literal.
			from = at + len(Marker)
			continue
		}
		if at > start {
			s.pos = at
			return Span{Kind: Literal, Text: s.src[start:at], Pos: start}, true
		}
		s.pos = end
		return Span{Kind: Directive, Form: form, Text: s.src[at:end], Pos: at}, true
	}
}

// Pos returns the byte offset the next span will start at.
func (s *DirectiveScanner) Pos() int { return s.pos }

// Src returns the full source text being scanned.
func (s *DirectiveScanner) Src() string { return s.src }

// match tries the three directive forms at offset at, which must point at
// Marker. It returns the end offset (exclusive) and the form, or NoForm.
func (s *DirectiveScanner) match(at int) (int, Form) {
	body := at + len(Marker)
	rest := s.src[body:]

	if t := strings.Index(rest, Terminator); t >= 0 {
		// The nearest terminator wins, and it must belong to this marker.
		if m := strings.Index(rest, Marker); m < 0 || m > t {
			return body + t + len(Terminator), Terminated
		}
	}

	if strings.HasPrefix(rest, "{") {
		if end := matchBrace(rest); end > 0 {
			return body + end, Braced
		}
	}

	n := 0
	for n < len(rest) {
		r, size := utf8.DecodeRuneInString(rest[n:])
		if unicode.IsSpace(r) || r == '#' || r == '!' {
			break
		}
		n += size
	}
	if n == 0 {
		return 0, NoForm
	}
	return body + n, Bare
}

// matchBrace returns the offset just past the } balancing the { at s[0],
// or -1.
func matchBrace(s string) int {
	depth := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i + 1
			}
		}
	}
	return -1
}

// Split escapes text and splits it into spans.
func Split(text string) []Span {
	var spans []Span
	sc := New(Escape(text))
	for sp, ok := sc.Next(); ok; sp, ok = sc.Next() {
		spans = append(spans, sp)
	}
	return spans
}

// HasDirective reports whether text contains the directive marker at all.
// Text without it is never touched by the interpreter.
func HasDirective(text string) bool {
	return strings.Contains(text, Marker)
}

// Escape rewrites every #!! into a form the scanner cannot match.
func Escape(text string) string {
	return strings.ReplaceAll(text, EscapedMarker, inertMarker)
}

// Unescape turns escaped markers back into a literal #!.
func Unescape(text string) string {
	return strings.ReplaceAll(text, inertMarker, Marker)
}

// Inert returns a literal #! that survives Unescape but will not be picked
// up if the result is scanned again before Unescape runs.
func Inert() string { return inertMarker }
