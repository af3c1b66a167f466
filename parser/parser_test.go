package parser

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
)

func TestSplit_Tiers(t *testing.T) {
	tests := []struct {
		in   string
		want Command
	}{
		{"shrug", Command{"shrug"}},
		{"tag:foo:bar", Command{"tag", "foo", "bar"}},
		{"var:x::hello: world", Command{"var", "x", "hello: world"}},
		{"var:x::a::b:c", Command{"var", "x", "a", "b:c"}},
		{"tf:s:::a::b:c", Command{"tf", "s", "a::b:c"}},
		{"tf:s::x:::y:z", Command{"tf", "s", "x", "y:z"}},
		{`tag:a\:b:c`, Command{"tag", "a:b", "c"}},
		{`var:x::keep\ this`, Command{"var", "x", `keep\ this`}},
		{"var:x:", Command{"var", "x", ""}},
		{"", nil},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, Split(tt.in)); diff != "" {
				t.Errorf("Split(%q) mismatch (-want +got):\n%s", tt.in, diff)
			}
		})
	}
}

func TestExpand_Prefixes(t *testing.T) {
	assert.Equal(t, Command{"ping", "admins"}, Parse("admins"))
	assert.Equal(t, Command{"ping", "staff"}, Parse("staff"))
	assert.Equal(t, Command{"link", "permalink"}, Parse("permalink"))
	assert.Equal(t, Command{"tf", "s", "a", "b"}, Parse("s:a:b"))
	assert.Equal(t, Command{"thread", "reall", "@x"}, Parse("reall:@x"))
}

func TestExpand_Aliases(t *testing.T) {
	assert.Equal(t, Command{"emojify", "parent", "pfp"}, Parse("parent:avatar:pfp"))
	assert.Equal(t, Command{"ping", "admins"}, Parse("ping:admin"))
	assert.Equal(t, Command{"visibility", "dm"}, Parse("privacy:dm"))
	assert.Equal(t, Command{"visibility", "dm"}, Parse("Privacy:dm"))
	assert.Equal(t, Command{"link", "permalink"}, Parse("link:status"))
}

func TestExpand_OnlyOneAlias(t *testing.T) {
	// emojify:self becomes emojify:avatar; nothing maps it further.
	assert.Equal(t, Command{"emojify", "avatar"}, Parse("emojify:self"))
}

func TestExpand_KeepsTrailingFields(t *testing.T) {
	assert.Equal(t, Command{"thread", "reall", "@a", "@b"}, Parse("thread:mentions:@a:@b"))
}

func TestCommand_Accessors(t *testing.T) {
	cmd := Command{"Var", "x", "y"}
	assert.Equal(t, "var", cmd.Name())
	assert.Equal(t, "x", cmd.Arg(1))
	assert.Equal(t, "", cmd.Arg(5))
	assert.Equal(t, []string{"x", "y"}, cmd.Args())
	assert.Equal(t, Command{"x", "y"}, cmd.Shift())

	var empty Command
	assert.Equal(t, "", empty.Name())
	assert.Nil(t, empty.Args())
}

func TestCommand_StringEscapes(t *testing.T) {
	cmd := Command{"tag", "a:b"}
	assert.Equal(t, `tag:a\:b`, cmd.String())
	assert.Equal(t, cmd, Split(cmd.String()))
}
