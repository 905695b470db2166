package classcmd

import (
	"context"
	"fmt"
	"reflect"

	"github.com/bwmarrin/discordgo"
	"github.com/keshon/classcmd/pkg/appcmd"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Kind is the kind of command a declaration produces.
type Kind int

const (
	KindSlash Kind = iota + 1
	KindUser
	KindMessage
)

func (k Kind) String() string {
	switch k {
	case KindSlash:
		return "slash"
	case KindUser:
		return "user"
	case KindMessage:
		return "message"
	default:
		return "unknown"
	}
}

// Maybe is an optional parameter value.
type Maybe[T any] = appcmd.Maybe[T]

// Declaration is implemented by pointers to structs embedding one of the base
// types and defining Callback.
type Declaration interface {
	Callback(ctx context.Context) error
	OnError(ctx context.Context, err error)
	kind() Kind
}

type autocompleter interface {
	Autocomplete(ctx context.Context, focused string) ([]*discordgo.ApplicationCommandOptionChoice, error)
}

type documented interface {
	Doc() string
}

type optioned interface {
	Options() map[string]Option
}

type typed interface {
	Types() map[string]reflect.Type
}

// binder is implemented by the base types.
type binder interface {
	bind(it *appcmd.Interaction, target any)
}

// invocation holds what every declaration gets per interaction.
type invocation struct {
	// Interaction is the interaction being handled.
	Interaction *appcmd.Interaction
}

func (c *invocation) bindInteraction(it *appcmd.Interaction) { c.Interaction = it }

// CommandID returns the id of the invoked application command.
func (c *invocation) CommandID() string {
	if c.Interaction == nil || c.Interaction.Event == nil {
		return ""
	}
	return c.Interaction.Event.ApplicationCommandData().ID
}

// Send replies using the first delivery path still available.
func (c *invocation) Send(msg *appcmd.Message) (*discordgo.Message, error) {
	return c.Interaction.Send(msg)
}

// Reply sends a text reply.
func (c *invocation) Reply(content string, ephemeral bool) error {
	return c.Interaction.Reply(content, ephemeral)
}

// Defer acknowledges the interaction.
func (c *invocation) Defer(ephemeral bool) error {
	return c.Interaction.Defer(ephemeral)
}

// OnError is called with errors raised by Callback or Autocomplete. The default
// logs the error with its stack.
func (c *invocation) OnError(ctx context.Context, err error) {
	logger := zerolog.Ctx(ctx)
	if logger.GetLevel() == zerolog.Disabled {
		logger = &log.Logger
	}
	ev := logger.Error().Str("error_type", fmt.Sprintf("%T", err))
	if c.Interaction != nil {
		ev = ev.Str("guild", c.Interaction.GuildID())
	}
	ev.Msgf("ignoring error in command: %+v", err)
}

// SlashCommand is embedded by chat input declarations.
type SlashCommand struct {
	invocation
}

func (SlashCommand) kind() Kind { return KindSlash }

func (c *SlashCommand) bind(it *appcmd.Interaction, _ any) { c.bindInteraction(it) }

// Autocomplete returns suggestions for the focused field. The default has none.
func (c *SlashCommand) Autocomplete(ctx context.Context, focused string) ([]*discordgo.ApplicationCommandOptionChoice, error) {
	return nil, nil
}

// UserCommand is embedded by user context menu declarations.
type UserCommand struct {
	invocation

	// Target is the user the menu was used on.
	Target *discordgo.User

	member *discordgo.Member
}

func (UserCommand) kind() Kind { return KindUser }

func (c *UserCommand) bind(it *appcmd.Interaction, target any) {
	c.bindInteraction(it)
	c.Target, _ = target.(*discordgo.User)
	if it == nil || it.Event == nil || c.Target == nil {
		return
	}
	if data, ok := it.Event.Data.(discordgo.ApplicationCommandInteractionData); ok && data.Resolved != nil {
		c.member = data.Resolved.Members[c.Target.ID]
	}
}

// Member returns the target as a guild member, nil outside guilds.
func (c *UserCommand) Member() *discordgo.Member {
	if c.member != nil && c.member.User == nil {
		c.member.User = c.Target
	}
	return c.member
}

// MessageCommand is embedded by message context menu declarations.
type MessageCommand struct {
	invocation

	// Target is the message the menu was used on.
	Target *discordgo.Message
}

func (MessageCommand) kind() Kind { return KindMessage }

func (c *MessageCommand) bind(it *appcmd.Interaction, target any) {
	c.bindInteraction(it)
	c.Target, _ = target.(*discordgo.Message)
}

var (
	slashType   = reflect.TypeOf(SlashCommand{})
	userType    = reflect.TypeOf(UserCommand{})
	messageType = reflect.TypeOf(MessageCommand{})
)

func baseKind(t reflect.Type) (Kind, bool) {
	switch t {
	case slashType:
		return KindSlash, true
	case userType:
		return KindUser, true
	case messageType:
		return KindMessage, true
	}
	return 0, false
}
