package discord

import (
	"context"
	"sync"

	"github.com/bwmarrin/discordgo"
	"github.com/keshon/classcmd/internal/config"
	"github.com/keshon/classcmd/pkg/appcmd"
	"github.com/keshon/classcmd/pkg/classcmd"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// Bot is a Discord bot serving the commands of a tree
type Bot struct {
	cfg    *config.Config
	tree   *classcmd.Tree
	logger zerolog.Logger

	mu     sync.Mutex
	synced bool
}

// NewBot returns a bot for tree
func NewBot(cfg *config.Config, tree *classcmd.Tree, logger zerolog.Logger) *Bot {
	return &Bot{cfg: cfg, tree: tree, logger: logger}
}

// Run opens the session and blocks until ctx is done
func (b *Bot) Run(ctx context.Context) error {
	dg, err := discordgo.New("Bot " + b.cfg.DiscordToken)
	if err != nil {
		return errors.Wrap(err, "failed to create session")
	}
	dg.Identify.Intents = discordgo.IntentsGuilds

	dg.AddHandler(func(s *discordgo.Session, r *discordgo.Ready) {
		b.onReady(ctx, s, r)
	})
	dg.AddHandler(b.onGuildCreate)
	dg.AddHandler(b.tree.Handler())

	if err := dg.Open(); err != nil {
		return errors.Wrap(err, "failed to open Discord session")
	}
	defer dg.Close()

	<-ctx.Done()
	b.logger.Info().Msg("❎ Shutdown signal received. Cleaning up...")
	return nil
}

// onReady syncs the commands once per process; reconnects fire Ready again
func (b *Bot) onReady(ctx context.Context, s *discordgo.Session, r *discordgo.Ready) {
	b.logger.Info().Str("user", r.User.Username).Int("guilds", len(r.Guilds)).Msg("✅ Discord bot is running")

	if err := b.Sync(ctx, s, r.User.ID); err != nil {
		b.logger.Error().Err(err).Msg("failed to sync commands")
	}
}

// Sync pushes the tree's commands to Discord unless disabled or already done.
func (b *Bot) Sync(ctx context.Context, s appcmd.Session, appID string) error {
	if !b.cfg.SyncCommands {
		b.logger.Info().Msg("command sync skipped")
		return nil
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.synced {
		return nil
	}
	if err := b.tree.Sync(ctx, s, appID, b.cfg.GuildIDs...); err != nil {
		return err
	}
	b.synced = true
	return nil
}

func (b *Bot) onGuildCreate(s *discordgo.Session, g *discordgo.GuildCreate) {
	b.logger.Info().Str("guild", g.ID).Str("name", g.Name).Msg("guild available")
}
