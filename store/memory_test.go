package store

import (
	"context"
	"testing"
	"time"

	"github.com/rubiojr/bangtag/status"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemory_Roles(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	require.NoError(t, m.PutAccount(ctx, &status.Account{Username: "zed"}, RoleAdmin))
	require.NoError(t, m.PutAccount(ctx, &status.Account{Username: "amy"}, RoleAdmin))
	require.NoError(t, m.PutAccount(ctx, &status.Account{Username: "mo"}, RoleModerator))
	require.NoError(t, m.PutAccount(ctx, &status.Account{Username: "joe"}, RoleUser))

	admins, err := m.Administrators(ctx)
	require.NoError(t, err)
	require.Len(t, admins, 2)
	assert.Equal(t, "amy", admins[0].Username)
	assert.Equal(t, "zed", admins[1].Username)

	mods, err := m.Moderators(ctx)
	require.NoError(t, err)
	require.Len(t, mods, 1)
	assert.Equal(t, "mo", mods[0].Username)
}

func TestMemory_AccountLookup(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	bob := &status.Account{Username: "bob", Domain: "Remote.Example"}
	require.NoError(t, m.PutAccount(ctx, bob, RoleUser))
	assert.NotZero(t, bob.ID)

	got, err := m.Account(ctx, "@bob@remote.example")
	require.NoError(t, err)
	assert.Same(t, bob, got)

	_, err = m.Account(ctx, "nobody")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemory_Emoji(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	require.NoError(t, m.PutEmoji(ctx, status.Emoji{Shortcode: "blob", Domain: "b.example", Image: "b.png"}))
	require.NoError(t, m.PutEmoji(ctx, status.Emoji{Shortcode: "blob", Domain: "a.example", Image: "a.png"}))

	local, err := m.FindLocal(ctx, "blob")
	require.NoError(t, err)
	assert.Nil(t, local)

	first, err := m.FindRemote(ctx, "blob", "")
	require.NoError(t, err)
	require.NotNil(t, first)
	assert.Equal(t, "a.example", first.Domain)

	b, err := m.FindRemote(ctx, "blob", "B.example")
	require.NoError(t, err)
	require.NotNil(t, b)
	assert.Equal(t, "b.png", b.Image)

	require.NoError(t, m.CreateLocal(ctx, "blob", b.Image))
	local, err = m.FindLocal(ctx, "blob")
	require.NoError(t, err)
	require.NotNil(t, local)
	assert.Equal(t, "b.png", local.Image)
	assert.Len(t, m.LocalEmojis(), 1)
}

func TestMemory_TagsAndMentions(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	alice := &status.Account{Username: "alice"}
	require.NoError(t, m.PutAccount(ctx, alice, RoleUser))
	msg := &status.Message{Author: alice}
	require.NoError(t, m.Save(ctx, msg))

	t1, err := m.FindOrCreate(ctx, "Go")
	require.NoError(t, err)
	t2, err := m.FindOrCreate(ctx, "go")
	require.NoError(t, err)
	assert.Equal(t, t1.ID, t2.ID)

	require.NoError(t, m.Attach(ctx, msg, t1))
	require.NoError(t, m.Attach(ctx, msg, t2))
	assert.Len(t, msg.Tags, 1)

	at := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	require.NoError(t, m.RecordUse(ctx, t1, alice, at))
	assert.Equal(t, []TagUse{{Tag: "Go", Account: "alice", At: at}}, m.TagUses())

	bob := &status.Account{Username: "bob"}
	require.NoError(t, m.Mention(ctx, msg, bob))
	require.NoError(t, m.Mention(ctx, msg, bob))
	mentioned, err := m.MentionedAccounts(ctx, msg.ID)
	require.NoError(t, err)
	assert.Len(t, mentioned, 1)
}

func TestMemory_Conversation(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	require.NoError(t, m.Save(ctx, &status.Message{ID: 7, Conversation: 1}))
	require.NoError(t, m.Save(ctx, &status.Message{ID: 3, Conversation: 1}))
	require.NoError(t, m.Save(ctx, &status.Message{ID: 5, Conversation: 2}))
	fresh := &status.Message{Conversation: 1}
	require.NoError(t, m.Save(ctx, fresh))
	assert.Equal(t, int64(8), fresh.ID)

	msgs, err := m.Messages(ctx, 1)
	require.NoError(t, err)
	require.Len(t, msgs, 3)
	assert.Equal(t, int64(3), msgs[0].ID)
	assert.Equal(t, int64(7), msgs[1].ID)
	assert.Equal(t, int64(8), msgs[2].ID)
}

func TestLinks_URLFor(t *testing.T) {
	l := Links{BaseURL: "https://social.example/"}
	assert.Equal(t, "https://social.example/@alice/42",
		l.URLFor(&status.Message{ID: 42, Author: &status.Account{Username: "alice"}}))
	assert.Equal(t, "https://social.example/@bob@r.example/1",
		l.URLFor(&status.Message{ID: 1, Author: &status.Account{Username: "bob", Domain: "r.example"}}))
	assert.Equal(t, "https://social.example/statuses/9", l.URLFor(&status.Message{ID: 9}))
}

func TestParseRole(t *testing.T) {
	r, err := ParseRole("Admin")
	require.NoError(t, err)
	assert.Equal(t, RoleAdmin, r)
	_, err = ParseRole("owner")
	assert.Error(t, err)
}

func TestOpen_Drivers(t *testing.T) {
	s, err := Open("memory", "")
	require.NoError(t, err)
	assert.IsType(t, &Memory{}, s)
	_, err = Open("postgres", "")
	assert.Error(t, err)
}
