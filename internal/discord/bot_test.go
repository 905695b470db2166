package discord

import (
	"context"
	"errors"
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/keshon/classcmd/internal/config"
	"github.com/keshon/classcmd/pkg/appcmd"
	"github.com/keshon/classcmd/pkg/classcmd"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type syncSession struct {
	appcmd.Session
	calls map[string]int
	err   error
}

func (s *syncSession) ApplicationCommandBulkOverwrite(appID, guildID string, cmds []*discordgo.ApplicationCommand, _ ...discordgo.RequestOption) ([]*discordgo.ApplicationCommand, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.calls[guildID]++
	return cmds, nil
}

type hello struct {
	classcmd.SlashCommand `description:"Say hello"`
}

func (c *hello) Callback(ctx context.Context) error { return c.Reply("hello", false) }

func newBot(t *testing.T, cfg *config.Config) *Bot {
	t.Helper()
	tree := classcmd.NewTree(appcmd.WithLogger(zerolog.Nop()))
	require.NoError(t, tree.Declare(hello{}))
	return NewBot(cfg, tree, zerolog.Nop())
}

func TestSyncOnce(t *testing.T) {
	b := newBot(t, &config.Config{SyncCommands: true, GuildIDs: []string{"7"}})
	s := &syncSession{calls: map[string]int{}}

	require.NoError(t, b.Sync(context.Background(), s, "app"))
	require.NoError(t, b.Sync(context.Background(), s, "app"))

	assert.Equal(t, map[string]int{"": 1, "7": 1}, s.calls)
}

func TestSyncDisabled(t *testing.T) {
	b := newBot(t, &config.Config{SyncCommands: false})
	s := &syncSession{calls: map[string]int{}}

	require.NoError(t, b.Sync(context.Background(), s, "app"))
	assert.Empty(t, s.calls)
}

func TestSyncRetriesAfterError(t *testing.T) {
	b := newBot(t, &config.Config{SyncCommands: true})
	s := &syncSession{calls: map[string]int{}, err: errors.New("boom")}

	assert.Error(t, b.Sync(context.Background(), s, "app"))
	s.err = nil
	require.NoError(t, b.Sync(context.Background(), s, "app"))
	assert.Equal(t, 1, s.calls[""])
}
