package interp

import "strings"

// transform is one entry of the transform stack: a verb and its arguments.
type transform struct {
	verb string
	args []string
}

// apply rewrites s. Arguments are consumed as (pattern, replacement)
// pairs; a trailing unpaired argument is ignored, as are unknown verbs.
// Patterns are plain text, not regular expressions.
func (t transform) apply(s string) string {
	n := 0
	switch t.verb {
	case "replace", "sub", "s":
		n = 1
	case "replaceall", "gsub", "gs":
		n = -1
	default:
		return s
	}
	for i := 0; i+1 < len(t.args); i += 2 {
		if t.args[i] == "" {
			continue
		}
		s = strings.Replace(s, t.args[i], t.args[i+1], n)
	}
	return s
}

// transform applies every active transform in the order they were opened.
func (p *Pass) transform(chunk string) string {
	for _, s := range p.scopes {
		if s.kind == transformScope {
			chunk = s.tf.apply(chunk)
		}
	}
	return chunk
}
