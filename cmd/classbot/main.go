package main

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/keshon/classcmd/internal/commands"
	"github.com/keshon/classcmd/internal/config"
	"github.com/keshon/classcmd/internal/discord"
	"github.com/keshon/classcmd/pkg/appcmd"
	"github.com/keshon/classcmd/pkg/classcmd"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gopkg.in/natefinch/lumberjack.v2"
)

func setupLogger(cfg *config.Config) {
	var out io.Writer = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.DateTime}
	if cfg.LogFile != "" {
		out = zerolog.MultiLevelWriter(out, &lumberjack.Logger{
			Filename:   cfg.LogFile,
			MaxSize:    10,
			MaxBackups: 3,
			MaxAge:     28,
		})
	}
	log.Logger = zerolog.New(out).With().Timestamp().Logger()
	zerolog.SetGlobalLevel(cfg.Level())
}

func main() {
	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.DateTime}).With().Timestamp().Logger()

	cfg, err := config.New()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	setupLogger(cfg)
	log.Info().Msg("Starting classbot...")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	treeOpts := []appcmd.TreeOption{appcmd.WithLogger(log.Logger)}
	if dir, ok := cfg.HashCachePath(); ok {
		treeOpts = append(treeOpts, appcmd.WithHashCache(appcmd.NewFileHashCache(dir)))
	}
	tree := classcmd.NewTree(treeOpts...)
	tree.Use(appcmd.WithCommandLogger(log.Logger), appcmd.WithGuildOnly())

	var scope []appcmd.AddOption
	if len(cfg.GuildIDs) > 0 {
		scope = append(scope, appcmd.Guilds(cfg.GuildIDs...))
	}
	if _, err := commands.Register(tree, scope...); err != nil {
		log.Fatal().Err(err).Msg("failed to declare commands")
	}

	bot := discord.NewBot(cfg, tree, log.Logger)

	errCh := make(chan error, 1)
	go func() {
		if err := bot.Run(ctx); err != nil {
			errCh <- err
		}
		close(errCh)
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)

	select {
	case s := <-sig:
		log.Info().Str("signal", s.String()).Msg("Received signal, shutting down...")
		cancel()
		<-errCh
	case err := <-errCh:
		if err != nil {
			log.Error().Err(err).Msg("Discord bot error")
		}
		cancel()
	}

	log.Info().Msg("Discord bot exited cleanly")
}
