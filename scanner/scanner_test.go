package scanner

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type kt struct {
	Kind Kind
	Text string
}

func kinds(spans []Span) []kt {
	out := make([]kt, len(spans))
	for i, s := range spans {
		out[i] = kt{s.Kind, s.Text}
	}
	return out
}

func TestSplit_Forms(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []kt
	}{
		{"plain", "hello world", []kt{{Literal, "hello world"}}},
		{"bare", "hello #!shrug world", []kt{
			{Literal, "hello "}, {Directive, "#!shrug"}, {Literal, " world"},
		}},
		{"bare stops at bang", "#!var:greeting!", []kt{
			{Directive, "#!var:greeting"}, {Literal, "!"},
		}},
		{"bare stops at hash", "#!shrug#tag", []kt{
			{Directive, "#!shrug"}, {Literal, "#tag"},
		}},
		{"braced", "a #!{var:x::hello world} b", []kt{
			{Literal, "a "}, {Directive, "#!{var:x::hello world}"}, {Literal, " b"},
		}},
		{"braced nests", "#!{tf:s:{a}:b}!", []kt{
			{Directive, "#!{tf:s:{a}:b}"}, {Literal, "!"},
		}},
		{"terminated", "#!var:x::one two:!# tail", []kt{
			{Directive, "#!var:x::one two:!#"}, {Literal, " tail"},
		}},
		{"terminator belongs to later marker", "#!shrug then #!var:x::y:!#", []kt{
			{Directive, "#!shrug"}, {Literal, " then "}, {Directive, "#!var:x::y:!#"},
		}},
		{"lone marker", "a #! b", []kt{{Literal, "a #! b"}}},
		{"adjacent", "#!var:a:-Hi#!var:end", []kt{
			{Directive, "#!var:a:-Hi"}, {Directive, "#!var:end"},
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := kinds(Split(tt.in))
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Split(%q) mismatch (-want +got):\n%s", tt.in, diff)
			}
		})
	}
}

func TestSplit_PreservesEveryByte(t *testing.T) {
	inputs := []string{
		"",
		"no markers here",
		"#!a #!b:c #!{d} #!e::f:!# g #!",
		"multi\nline #!var:x::a\nb:!# done",
		"ünïcödé #!char:2603 ☃",
	}
	for _, in := range inputs {
		var sb strings.Builder
		for _, sp := range Split(in) {
			sb.WriteString(sp.Text)
		}
		assert.Equal(t, Escape(in), sb.String())
	}
}

func TestSplit_Positions(t *testing.T) {
	spans := Split("ab #!cd ef")
	require.Len(t, spans, 3)
	assert.Equal(t, 0, spans[0].Pos)
	assert.Equal(t, 3, spans[1].Pos)
	assert.Equal(t, 7, spans[2].Pos)
}

func TestEscape_DoubleBang(t *testing.T) {
	spans := Split("literal #!!shrug here")
	require.Len(t, spans, 1)
	assert.Equal(t, Literal, spans[0].Kind)
	assert.Equal(t, "literal #!shrug here", Unescape(spans[0].Text))
}

func TestSpan_Body(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"#!shrug", "shrug"},
		{"#!{tag:a:b}", "tag:a:b"},
		{"#!var:x::y z:!#", "var:x::y z"},
	}
	for _, tt := range tests {
		spans := Split(tt.in)
		require.Len(t, spans, 1, tt.in)
		assert.Equal(t, tt.want, spans[0].Body())
	}
}

func TestDirectiveScanner_Next(t *testing.T) {
	sc := New("x #!y")
	sp, ok := sc.Next()
	require.True(t, ok)
	assert.Equal(t, "x ", sp.Text)
	assert.Equal(t, 2, sc.Pos())

	sp, ok = sc.Next()
	require.True(t, ok)
	assert.Equal(t, Directive, sp.Kind)
	assert.Equal(t, Bare, sp.Form)

	_, ok = sc.Next()
	assert.False(t, ok)
}

func TestHasDirective(t *testing.T) {
	assert.False(t, HasDirective("plain text"))
	assert.True(t, HasDirective("a #!b"))
	assert.True(t, HasDirective("a #!!b"))
}
