package commands

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"
	"github.com/keshon/classcmd/pkg/classcmd"
)

// Avatar shows the avatar of a user.
type Avatar struct {
	classcmd.UserCommand `name:"Show Avatar"`
}

func (c *Avatar) Callback(ctx context.Context) error {
	name := c.Target.Username
	if m := c.Member(); m != nil && m.Nick != "" {
		name = m.Nick
	}
	return respondEmbedEphemeral(c, &discordgo.MessageEmbed{
		Title: name,
		Image: &discordgo.MessageEmbedImage{URL: c.Target.AvatarURL("256")},
	})
}

// Quote reposts a message as an embed.
type Quote struct {
	classcmd.MessageCommand `guild_only:"true"`
}

func (c *Quote) Callback(ctx context.Context) error {
	if c.Target.Content == "" {
		return respondEmbedEphemeral(c, &discordgo.MessageEmbed{Description: "Nothing to quote."})
	}
	embed := &discordgo.MessageEmbed{Description: c.Target.Content}
	if c.Target.Author != nil {
		embed.Author = &discordgo.MessageEmbedAuthor{
			Name:    c.Target.Author.Username,
			IconURL: c.Target.Author.AvatarURL("64"),
		}
	}
	if c.Target.ChannelID != "" && c.Interaction.GuildID() != "" {
		embed.URL = fmt.Sprintf("https://discord.com/channels/%s/%s/%s", c.Interaction.GuildID(), c.Target.ChannelID, c.Target.ID)
		embed.Title = "Jump to message"
	}
	return respondEmbed(c, embed)
}
