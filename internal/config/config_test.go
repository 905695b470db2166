package config

import (
	"testing"

	"github.com/caarlos0/env/v11"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDefaults(t *testing.T) {
	cfg, err := Parse(env.Options{Environment: map[string]string{"DISCORD_TOKEN": "abc"}})
	require.NoError(t, err)

	assert.Equal(t, "abc", cfg.DiscordToken)
	assert.Empty(t, cfg.GuildIDs)
	assert.True(t, cfg.SyncCommands)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "data/commands", cfg.HashDir)
	assert.Equal(t, zerolog.InfoLevel, cfg.Level())
}

func TestParseValues(t *testing.T) {
	cfg, err := Parse(env.Options{Environment: map[string]string{
		"DISCORD_TOKEN":     "abc",
		"DISCORD_GUILD_IDS": "1,2",
		"SYNC_COMMANDS":     "false",
		"LOG_LEVEL":         "debug",
	}})
	require.NoError(t, err)

	assert.Equal(t, []string{"1", "2"}, cfg.GuildIDs)
	assert.False(t, cfg.SyncCommands)
	assert.Equal(t, zerolog.DebugLevel, cfg.Level())
}

func TestParseRequiresToken(t *testing.T) {
	_, err := Parse(env.Options{Environment: map[string]string{}})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "DISCORD_TOKEN")
}

func TestLevelFallback(t *testing.T) {
	assert.Equal(t, zerolog.InfoLevel, (&Config{LogLevel: "loud"}).Level())
}

func TestHashCachePath(t *testing.T) {
	dir := t.TempDir() + "/hashes"
	path, ok := (&Config{HashDir: dir}).HashCachePath()
	assert.True(t, ok)
	assert.Equal(t, dir, path)
	assert.DirExists(t, dir)

	_, ok = (&Config{}).HashCachePath()
	assert.False(t, ok)
}
