package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/rubiojr/bangtag/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

const sample = `
[instance]
domain = "social.example"

[log]
level = "debug"
json = true

[store]
driver = "memory"

[[accounts]]
username = "root"
role = "admin"

[[accounts]]
username = "Bob"
domain = "Remote.Example"
avatar = "https://remote.example/bob.png"

[[emojis]]
shortcode = "blob"
domain = "r.example"
image = "https://r.example/blob.png"
`

func writeConfig(t *testing.T, text string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, os.WriteFile(path, []byte(text), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	c, err := Load(writeConfig(t, sample))
	require.NoError(t, err)
	assert.Equal(t, "social.example", c.Instance.Domain)
	assert.Equal(t, "https://social.example", c.BaseURL())
	assert.Equal(t, "debug", c.Log.Level)
	assert.True(t, c.Log.JSON)
	require.Len(t, c.Accounts, 2)
	assert.Equal(t, "admin", c.Accounts[0].Role)
	require.Len(t, c.Emojis, 1)
	assert.NotEmpty(t, c.Path)
}

func TestLoad_Defaults(t *testing.T) {
	c, err := Load(writeConfig(t, ""))
	require.NoError(t, err)
	assert.Equal(t, Default().Instance, c.Instance)
	assert.Equal(t, "info", c.Log.Level)
	assert.Equal(t, "memory", c.Store.Driver)
	assert.Equal(t, "https://localhost", c.BaseURL())
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{"syntax", "[instance", "parse error"},
		{"unknown key", "[instance]\nhost = \"x\"", "unknown keys: instance.host"},
		{"bad level", "[log]\nlevel = \"loud\"", "log.level"},
		{"bad driver", "[store]\ndriver = \"redis\"", "unknown driver"},
		{"sqlite without path", "[store]\ndriver = \"sqlite\"", "store.path is required"},
		{"bad role", "[[accounts]]\nusername = \"x\"\nrole = \"owner\"", "unknown role"},
		{"nameless account", "[[accounts]]\nrole = \"admin\"", "username is required"},
		{"imageless emoji", "[[emojis]]\nshortcode = \"x\"", "shortcode and image"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.text))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cannot read")
}

func TestApplyEnv(t *testing.T) {
	c := Default()
	env := map[string]string{
		EnvLogLevel: "warn",
		EnvDB:       "/tmp/bangtag.db",
	}
	c.applyEnv(func(k string) string { return env[k] })
	assert.Equal(t, "warn", c.Log.Level)
	assert.Equal(t, "sqlite", c.Store.Driver)
	assert.Equal(t, "/tmp/bangtag.db", c.Store.Path)
	require.NoError(t, c.Validate())
}

func TestLoadOrDefault_EnvOverride(t *testing.T) {
	t.Setenv(EnvLogLevel, "error")
	t.Chdir(t.TempDir())
	c, err := LoadOrDefault("")
	require.NoError(t, err)
	assert.Equal(t, "error", c.Log.Level)
	assert.Empty(t, c.Path)
}

func TestSeed(t *testing.T) {
	c, err := Parse(sample)
	require.NoError(t, err)
	ctx := context.Background()
	s, err := c.OpenStore(ctx)
	require.NoError(t, err)
	defer s.Close()

	admins, err := s.Administrators(ctx)
	require.NoError(t, err)
	require.Len(t, admins, 1)
	assert.Equal(t, "root", admins[0].Username)

	bob, err := s.Account(ctx, "Bob@remote.example")
	require.NoError(t, err)
	assert.Equal(t, "https://remote.example/bob.png", bob.Avatar)

	blob, err := s.FindRemote(ctx, "blob", "r.example")
	require.NoError(t, err)
	require.NotNil(t, blob)
	_, ok := s.(*store.Memory)
	assert.True(t, ok)
}

func TestNewLogger(t *testing.T) {
	logger, err := NewLogger(LogConfig{Level: "warn"})
	require.NoError(t, err)
	assert.False(t, logger.Core().Enabled(zapcore.InfoLevel))
	assert.True(t, logger.Core().Enabled(zapcore.WarnLevel))

	logger, err = NewLogger(LogConfig{Level: "debug", JSON: true})
	require.NoError(t, err)
	assert.True(t, logger.Core().Enabled(zapcore.DebugLevel))

	_, err = NewLogger(LogConfig{Level: "chatty"})
	assert.Error(t, err)
}
