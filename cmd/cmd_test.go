package cmd

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rubiojr/bangtag/config"
	"github.com/rubiojr/bangtag/fixture"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const replyFixture = `
accounts:
  - {username: alice}
  - {username: bob}
  - {username: root, role: admin}
thread:
  - {author: bob, text: "what do you think?"}
status:
  author: alice
  reply: true
  media: [""]
  text: "#!thread:reall no idea #!shrug #!tag:opinions #!{media:1:desc:a chart}"
`

func runRender(t *testing.T, cfg *config.Config) (string, string) {
	t.Helper()
	f, err := fixture.Read(strings.NewReader(replyFixture))
	require.NoError(t, err)
	var out, summary bytes.Buffer
	require.NoError(t, render(context.Background(), cfg, f, zap.NewNop(), &out, &summary))
	return out.String(), summary.String()
}

func TestRender(t *testing.T) {
	cfg := config.Default()
	cfg.Instance.BaseURL = "https://social.example"
	out, summary := runRender(t, cfg)
	assert.Equal(t, "@bob no idea ¯\\_(ツ)_/¯\n", out)
	assert.Contains(t, summary, "visibility    public")
	assert.Contains(t, summary, "#opinions")
	assert.Contains(t, summary, "@bob")
	assert.Contains(t, summary, `"a chart"`)
}

func TestRender_SQLite(t *testing.T) {
	cfg := config.Default()
	cfg.Store = config.StoreConfig{Driver: "sqlite", Path: filepath.Join(t.TempDir(), "bangtag.db")}
	out, summary := runRender(t, cfg)
	assert.Equal(t, "@bob no idea ¯\\_(ツ)_/¯\n", out)
	assert.Contains(t, summary, "#opinions")
	assert.Contains(t, summary, "@bob")
}

func TestWriteTokens(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeTokens(&buf, "hi #!var:x:-a b #!!shrug", false))
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[0], `literal  "hi "`)
	assert.Contains(t, lines[1], "bare")
	assert.Contains(t, lines[1], `"var" "x" "-a"`)
	assert.Contains(t, lines[2], `" b #!shrug"`)
	assert.NotContains(t, buf.String(), "\033[")
}

func TestWriteTokens_Color(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeTokens(&buf, "#!shrug", true))
	assert.Contains(t, buf.String(), colorDirective)
	assert.Contains(t, buf.String(), colorReset)
}

func TestWriteCommands(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeCommands(&buf))
	out := buf.String()
	for _, name := range []string{"var", "tf", "shrug", "media", "ping", "draft"} {
		assert.Contains(t, out, "\n"+name+" ")
	}
}

func TestWriteCommand(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeCommand(&buf, "Shrug"))
	assert.Equal(t, "#!shrug\n    Insert ¯\\_(ツ)_/¯\n", buf.String())

	assert.ErrorContains(t, writeCommand(&buf, "nope"), `unknown directive "nope"`)
}
