package appcmd

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// Invocation describes one dispatched command for middleware.
type Invocation struct {
	// Name is the qualified command name ("group sub" for subcommands).
	Name        string
	Type        AppCommandKind
	Interaction *Interaction
	GuildOnly   bool
}

// AppCommandKind distinguishes what a middleware is wrapping.
type AppCommandKind int

const (
	KindChatInput AppCommandKind = iota + 1
	KindUser
	KindMessage
	KindAutocomplete
)

func (k AppCommandKind) String() string {
	switch k {
	case KindChatInput:
		return "chat_input"
	case KindUser:
		return "user"
	case KindMessage:
		return "message"
	case KindAutocomplete:
		return "autocomplete"
	default:
		return "unknown"
	}
}

// Handler runs an invocation.
type Handler func(ctx context.Context, inv *Invocation) error

// Middleware wraps a handler (logging, guild checks, metrics).
type Middleware func(Handler) Handler

// Apply applies middlewares in order; the first in the list is the outermost.
func Apply(h Handler, mws ...Middleware) Handler {
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	return h
}

// WithGuildOnly rejects guild-only commands used outside a guild.
func WithGuildOnly() Middleware {
	return func(next Handler) Handler {
		return func(ctx context.Context, inv *Invocation) error {
			if inv.GuildOnly && inv.Interaction.GuildID() == "" {
				if inv.Type == KindAutocomplete {
					return nil
				}
				return inv.Interaction.Reply("This command can only be used in a server.", true)
			}
			return next(ctx, inv)
		}
	}
}

// WithCommandLogger logs every invocation with its outcome and duration.
func WithCommandLogger(logger zerolog.Logger) Middleware {
	return func(next Handler) Handler {
		return func(ctx context.Context, inv *Invocation) error {
			start := time.Now()
			err := next(ctx, inv)

			if inv.Type == KindAutocomplete {
				return err
			}
			ev := logger.Info()
			if err != nil {
				ev = logger.Warn().Err(err)
			}
			user := inv.Interaction.User()
			userID, username := "unknown", "Unknown"
			if user != nil {
				userID, username = user.ID, user.Username
			}
			ev.Str("command", inv.Name).
				Stringer("type", inv.Type).
				Str("guild", inv.Interaction.GuildID()).
				Str("channel", inv.Interaction.Event.ChannelID).
				Str("user_id", userID).
				Str("user", username).
				Dur("took", time.Since(start)).
				Msg("command executed")
			return err
		}
	}
}
