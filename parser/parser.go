// Package parser turns the body of a directive span into a Command: an
// ordered list of string fields.
//
// Fields are separated by a three-tier delimiter. ":::" splits the body
// into top-level groups; only the first group is split further by "::",
// and only the first piece of that by ":". Everything after a "::" or
// ":::" is therefore a single field that may contain colons:
//
//	var:x::hello: world   -> [var x "hello: world"]
//	tag:a:b               -> [tag a b]
//
// A backslash before a colon keeps it from splitting and is removed once
// the fields are cut.
package parser

import "strings"

const (
	// Delim separates fields.
	Delim = ":"
	// Escape protects the delimiter that follows it.
	Escape = `\`

	escapedDelim = Escape + Delim
)

// Command is a parsed directive. An empty Command is a no-op.
type Command []string

// Name returns the lowercased first field, or "".
func (c Command) Name() string {
	if len(c) == 0 {
		return ""
	}
	return strings.ToLower(c[0])
}

// Arg returns field i, or "" when the command is shorter.
func (c Command) Arg(i int) string {
	if i < 0 || i >= len(c) {
		return ""
	}
	return c[i]
}

// Args returns every field after the name.
func (c Command) Args() []string {
	if len(c) < 2 {
		return nil
	}
	return c[1:]
}

// Shift drops the first field.
func (c Command) Shift() Command {
	if len(c) == 0 {
		return c
	}
	return c[1:]
}

func (c Command) String() string {
	parts := make([]string, len(c))
	for i, f := range c {
		parts[i] = EscapeField(f)
	}
	return strings.Join(parts, Delim)
}

// Parse splits body into fields and applies prefix expansion and aliases.
func Parse(body string) Command {
	return Expand(Split(body))
}

// Split cuts body into fields without expanding anything.
func Split(body string) Command {
	if strings.TrimSpace(body) == "" {
		return nil
	}
	groups := splitUnescaped(body, Delim+Delim+Delim)
	pairs := splitUnescaped(groups[0], Delim+Delim)
	fields := splitUnescaped(pairs[0], Delim)

	cmd := make(Command, 0, len(fields)+len(pairs)+len(groups)-2)
	cmd = append(cmd, fields...)
	cmd = append(cmd, pairs[1:]...)
	cmd = append(cmd, groups[1:]...)
	for i, f := range cmd {
		cmd[i] = strings.ReplaceAll(f, escapedDelim, Delim)
	}
	return cmd
}

// splitUnescaped splits s on sep, skipping occurrences whose first byte is
// preceded by Escape.
func splitUnescaped(s, sep string) []string {
	var parts []string
	start := 0
	for i := 0; i < len(s); {
		if strings.HasPrefix(s[i:], escapedDelim) {
			i += len(escapedDelim)
			continue
		}
		if strings.HasPrefix(s[i:], sep) {
			parts = append(parts, s[start:i])
			i += len(sep)
			start = i
			continue
		}
		i++
	}
	return append(parts, s[start:])
}

// EscapeField protects every delimiter in s so it reads back as one field.
func EscapeField(s string) string {
	return strings.ReplaceAll(s, Delim, escapedDelim)
}
