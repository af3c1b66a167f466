package parser

import "strings"

// prefixes maps a first field to the fields that get prepended to it, so
// that common commands can be written without their namespace.
var prefixes = map[string][]string{
	"admins":     {"ping"},
	"mods":       {"ping"},
	"staff":      {"ping"},
	"permalink":  {"link"},
	"reall":      {"thread"},
	"s":          {"tf"},
	"sub":        {"tf"},
	"gs":         {"tf"},
	"gsub":       {"tf"},
	"replace":    {"tf"},
	"replaceall": {"tf"},
	"shortcode":  {"emoji"},
}

type alias struct {
	from []string
	to   []string
}

// aliases are tried in order; the first whose from-run matches the leading
// fields of a command replaces that run.
var aliases = []alias{
	{[]string{"parent", "avatar"}, []string{"emojify", "parent"}},
	{[]string{"emojify", "self"}, []string{"emojify", "avatar"}},
	{[]string{"ping", "admin"}, []string{"ping", "admins"}},
	{[]string{"ping", "moderators"}, []string{"ping", "mods"}},
	{[]string{"parent", "link"}, []string{"parent", "permalink"}},
	{[]string{"privacy"}, []string{"visibility"}},
	{[]string{"thread", "mentions"}, []string{"thread", "reall"}},
	{[]string{"link", "status"}, []string{"link", "permalink"}},
}

// Expand applies the prefix table and then at most one alias.
func Expand(cmd Command) Command {
	if len(cmd) == 0 {
		return cmd
	}
	if pre, ok := prefixes[cmd.Name()]; ok {
		cmd = append(append(Command{}, pre...), cmd...)
	}
	for _, a := range aliases {
		if !hasPrefixFold(cmd, a.from) {
			continue
		}
		out := make(Command, 0, len(a.to)+len(cmd)-len(a.from))
		out = append(out, a.to...)
		return append(out, cmd[len(a.from):]...)
	}
	return cmd
}

func hasPrefixFold(cmd Command, run []string) bool {
	if len(cmd) < len(run) {
		return false
	}
	for i, f := range run {
		if !strings.EqualFold(cmd[i], f) {
			return false
		}
	}
	return true
}
