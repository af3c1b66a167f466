package fixture

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rubiojr/bangtag/status"
	"github.com/rubiojr/bangtag/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const thread = `
accounts:
  - {username: alice, avatar: "https://img.example/a.png"}
  - {username: bob, domain: R.example}
  - {username: root, role: admin}
emojis:
  - {shortcode: blob, domain: r.example, image: "https://r.example/blob.png"}
thread:
  - author: bob@r.example
    text: first!
    emojis: [{shortcode: blob, domain: r.example}]
  - author: alice
    text: second
status:
  author: alice
  reply: true
  visibility: unlisted
  content_type: text/markdown
  media: ["", "old"]
  text: "#!thread:reall"
`

func TestRead(t *testing.T) {
	f, err := Read(strings.NewReader(thread))
	require.NoError(t, err)
	assert.Len(t, f.Accounts, 3)
	assert.Len(t, f.Thread, 2)
	assert.NotEmpty(t, f.RunID)
	assert.True(t, f.Status.Reply)

	f, err = Read(strings.NewReader("run_id: fixed\nstatus: {author: alice}\n"))
	require.NoError(t, err)
	assert.Equal(t, "fixed", f.RunID)
}

func TestRead_Errors(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{"empty", "", "empty fixture"},
		{"unknown field", "status: {author: a, colour: red}", "field colour not found"},
		{"no author", "status: {text: hi}", "status.author is required"},
		{"reply without thread", "status: {author: a, reply: true}", "needs at least one thread message"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Read(strings.NewReader(tt.text))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestReadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "status.yaml")
	require.NoError(t, os.WriteFile(path, []byte(thread), 0o644))
	f, err := ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "alice", f.Status.Author)

	_, err = ReadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorContains(t, err, "cannot read")
}

func testApply(t *testing.T, s store.Store) {
	t.Helper()
	ctx := context.Background()
	f, err := Read(strings.NewReader(thread))
	require.NoError(t, err)

	msg, err := f.Apply(ctx, s)
	require.NoError(t, err)
	assert.Zero(t, msg.ID)
	assert.Equal(t, "alice", msg.Author.Username)
	assert.Equal(t, status.Unlisted, msg.Visibility)
	assert.Equal(t, status.Markdown, msg.ContentType)
	require.Len(t, msg.Media, 2)
	assert.Equal(t, "old", msg.Media[1].Description)

	require.NotNil(t, msg.InReplyTo)
	assert.Equal(t, "second", msg.InReplyTo.Text)
	assert.NotZero(t, msg.Conversation)

	conv, err := s.Messages(ctx, msg.Conversation)
	require.NoError(t, err)
	require.Len(t, conv, 2)
	assert.Equal(t, "bob@r.example", conv[0].Author.Acct())
	require.Len(t, conv[0].Emojis, 1)
	assert.Equal(t, "r.example", conv[0].Emojis[0].Domain)

	admins, err := s.Administrators(ctx)
	require.NoError(t, err)
	require.Len(t, admins, 1)
	assert.Equal(t, "root", admins[0].Username)
}

func TestApply_Memory(t *testing.T) {
	testApply(t, store.NewMemory())
}

func TestApply_SQLite(t *testing.T) {
	s, err := store.OpenSQLite(filepath.Join(t.TempDir(), "bangtag.db"))
	require.NoError(t, err)
	defer s.Close()
	testApply(t, s)
}

func TestApply_UnknownAuthor(t *testing.T) {
	f, err := Read(strings.NewReader("status: {author: ghost}"))
	require.NoError(t, err)
	_, err = f.Apply(context.Background(), store.NewMemory())
	require.ErrorIs(t, err, store.ErrNotFound)
	assert.Contains(t, err.Error(), `author "ghost"`)
}

func TestApply_BadVisibility(t *testing.T) {
	f, err := Read(strings.NewReader("accounts: [{username: a}]\nstatus: {author: a, visibility: secret}"))
	require.NoError(t, err)
	_, err = f.Apply(context.Background(), store.NewMemory())
	assert.ErrorContains(t, err, "unknown visibility")
}
