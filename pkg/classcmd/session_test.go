package classcmd

import (
	"strconv"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog"
)

// fakeSession records interaction responses instead of sending them.
type fakeSession struct {
	mu        sync.Mutex
	responses []*discordgo.InteractionResponse
	overwrite map[string][]*discordgo.ApplicationCommand
}

func newFakeSession() *fakeSession {
	return &fakeSession{overwrite: make(map[string][]*discordgo.ApplicationCommand)}
}

func (f *fakeSession) InteractionRespond(_ *discordgo.Interaction, resp *discordgo.InteractionResponse, _ ...discordgo.RequestOption) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.responses = append(f.responses, resp)
	return nil
}

func (f *fakeSession) InteractionResponse(_ *discordgo.Interaction, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	return &discordgo.Message{ID: "original"}, nil
}

func (f *fakeSession) FollowupMessageCreate(_ *discordgo.Interaction, _ bool, data *discordgo.WebhookParams, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	return &discordgo.Message{ID: "followup", Content: data.Content}, nil
}

func (f *fakeSession) ChannelMessageSendComplex(channelID string, data *discordgo.MessageSend, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	return &discordgo.Message{ID: "sent", ChannelID: channelID, Content: data.Content}, nil
}

func (f *fakeSession) ApplicationCommandBulkOverwrite(_ string, guildID string, commands []*discordgo.ApplicationCommand, _ ...discordgo.RequestOption) ([]*discordgo.ApplicationCommand, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.overwrite[guildID] = commands
	return commands, nil
}

func (f *fakeSession) last() *discordgo.InteractionResponse {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.responses) == 0 {
		return nil
	}
	return f.responses[len(f.responses)-1]
}

func discardLogger() zerolog.Logger { return zerolog.Nop() }

func interactionID() string {
	ms := time.Now().UnixMilli() - 1420070400000
	return strconv.FormatInt(ms<<22, 10)
}

func chatEvent(name string, opts ...*discordgo.ApplicationCommandInteractionDataOption) *discordgo.InteractionCreate {
	return &discordgo.InteractionCreate{Interaction: &discordgo.Interaction{
		ID:        interactionID(),
		Type:      discordgo.InteractionApplicationCommand,
		GuildID:   "g",
		ChannelID: "chan",
		Member:    &discordgo.Member{User: &discordgo.User{ID: "u1", Username: "alice"}},
		Data: discordgo.ApplicationCommandInteractionData{
			ID:          "cmd-" + name,
			Name:        name,
			CommandType: discordgo.ChatApplicationCommand,
			Options:     opts,
		},
	}}
}

func autocompleteEvent(name string, opts ...*discordgo.ApplicationCommandInteractionDataOption) *discordgo.InteractionCreate {
	ev := chatEvent(name, opts...)
	ev.Type = discordgo.InteractionApplicationCommandAutocomplete
	return ev
}

func menuEvent(name string, typ discordgo.ApplicationCommandType, targetID string, resolved *discordgo.ApplicationCommandInteractionDataResolved) *discordgo.InteractionCreate {
	ev := chatEvent(name)
	data := ev.Data.(discordgo.ApplicationCommandInteractionData)
	data.CommandType = typ
	data.TargetID = targetID
	data.Resolved = resolved
	ev.Data = data
	return ev
}

func option(name string, typ discordgo.ApplicationCommandOptionType, value any) *discordgo.ApplicationCommandInteractionDataOption {
	return &discordgo.ApplicationCommandInteractionDataOption{Name: name, Type: typ, Value: value}
}

func focused(o *discordgo.ApplicationCommandInteractionDataOption) *discordgo.ApplicationCommandInteractionDataOption {
	o.Focused = true
	return o
}
