package appcmd

import (
	"sync/atomic"
	"time"

	"github.com/bwmarrin/discordgo"
)

// InteractionLifetime is how long Discord accepts responses and followups for an
// interaction token.
const InteractionLifetime = 15 * time.Minute

// Session is the subset of *discordgo.Session the tree and interactions use.
// *discordgo.Session satisfies it; tests pass a fake.
type Session interface {
	InteractionRespond(interaction *discordgo.Interaction, resp *discordgo.InteractionResponse, options ...discordgo.RequestOption) error
	InteractionResponse(interaction *discordgo.Interaction, options ...discordgo.RequestOption) (*discordgo.Message, error)
	FollowupMessageCreate(interaction *discordgo.Interaction, wait bool, data *discordgo.WebhookParams, options ...discordgo.RequestOption) (*discordgo.Message, error)
	ChannelMessageSendComplex(channelID string, data *discordgo.MessageSend, options ...discordgo.RequestOption) (*discordgo.Message, error)
	ApplicationCommandBulkOverwrite(appID string, guildID string, commands []*discordgo.ApplicationCommand, options ...discordgo.RequestOption) ([]*discordgo.ApplicationCommand, error)
}

// Interaction is what the tree hands to callbacks: the session plus the event.
type Interaction struct {
	Session Session
	Event   *discordgo.InteractionCreate

	responded atomic.Bool
	now       func() time.Time
}

// NewInteraction wraps an event.
func NewInteraction(s Session, e *discordgo.InteractionCreate) *Interaction {
	return &Interaction{Session: s, Event: e, now: time.Now}
}

// Message is the content of a reply.
type Message struct {
	Content         string
	TTS             bool
	Embeds          []*discordgo.MessageEmbed
	Files           []*discordgo.File
	Components      []discordgo.MessageComponent
	AllowedMentions *discordgo.MessageAllowedMentions
	SuppressEmbeds  bool
	Ephemeral       bool
}

func (m *Message) flags() discordgo.MessageFlags {
	var f discordgo.MessageFlags
	if m.SuppressEmbeds {
		f |= discordgo.MessageFlagsSuppressEmbeds
	}
	if m.Ephemeral {
		f |= discordgo.MessageFlagsEphemeral
	}
	return f
}

// GuildID returns the guild the interaction happened in, empty in DMs.
func (it *Interaction) GuildID() string { return it.Event.GuildID }

// User returns the invoking user, from the member in guilds.
func (it *Interaction) User() *discordgo.User {
	if it.Event.Member != nil && it.Event.Member.User != nil {
		return it.Event.Member.User
	}
	return it.Event.User
}

// Responded reports whether an initial response was already sent.
func (it *Interaction) Responded() bool { return it.responded.Load() }

// Expired reports whether the interaction token is no longer usable.
func (it *Interaction) Expired() bool {
	created, err := discordgo.SnowflakeTimestamp(it.Event.ID)
	if err != nil {
		return false
	}
	now := time.Now
	if it.now != nil {
		now = it.now
	}
	return now().After(created.Add(InteractionLifetime))
}

// Respond sends the initial response.
func (it *Interaction) Respond(resp *discordgo.InteractionResponse) error {
	if err := it.Session.InteractionRespond(it.Event.Interaction, resp); err != nil {
		return err
	}
	it.responded.Store(true)
	return nil
}

// Defer acknowledges the interaction; the reply follows later.
func (it *Interaction) Defer(ephemeral bool) error {
	data := &discordgo.InteractionResponseData{}
	if ephemeral {
		data.Flags = discordgo.MessageFlagsEphemeral
	}
	return it.Respond(&discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
		Data: data,
	})
}

// Send replies with the first delivery path still available: a plain channel
// message once the token expired, a followup after a response, otherwise the
// initial response.
func (it *Interaction) Send(msg *Message) (*discordgo.Message, error) {
	if it.Expired() {
		return it.Session.ChannelMessageSendComplex(it.Event.ChannelID, &discordgo.MessageSend{
			Content:         msg.Content,
			TTS:             msg.TTS,
			Embeds:          msg.Embeds,
			Files:           msg.Files,
			Components:      msg.Components,
			AllowedMentions: msg.AllowedMentions,
			Flags:           msg.flags() &^ discordgo.MessageFlagsEphemeral,
		})
	}

	if it.Responded() {
		return it.Session.FollowupMessageCreate(it.Event.Interaction, true, &discordgo.WebhookParams{
			Content:         msg.Content,
			TTS:             msg.TTS,
			Embeds:          msg.Embeds,
			Files:           msg.Files,
			Components:      msg.Components,
			AllowedMentions: msg.AllowedMentions,
			Flags:           msg.flags(),
		})
	}

	err := it.Respond(&discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content:         msg.Content,
			TTS:             msg.TTS,
			Embeds:          msg.Embeds,
			Files:           msg.Files,
			Components:      msg.Components,
			AllowedMentions: msg.AllowedMentions,
			Flags:           msg.flags(),
		},
	})
	if err != nil {
		return nil, err
	}
	return it.Session.InteractionResponse(it.Event.Interaction)
}

// Reply is a shortcut for Send with text content.
func (it *Interaction) Reply(content string, ephemeral bool) error {
	_, err := it.Send(&Message{Content: content, Ephemeral: ephemeral})
	return err
}
