package commands

import (
	"github.com/bwmarrin/discordgo"
	"github.com/keshon/classcmd/pkg/appcmd"
)

const EmbedColor = 0xb01e66

type sender interface {
	Send(msg *appcmd.Message) (*discordgo.Message, error)
}

func respondEmbed(s sender, embed *discordgo.MessageEmbed) error {
	if embed.Color == 0 {
		embed.Color = EmbedColor
	}
	_, err := s.Send(&appcmd.Message{Embeds: []*discordgo.MessageEmbed{embed}})
	return err
}

func respondEmbedEphemeral(s sender, embed *discordgo.MessageEmbed) error {
	if embed.Color == 0 {
		embed.Color = EmbedColor
	}
	_, err := s.Send(&appcmd.Message{Embeds: []*discordgo.MessageEmbed{embed}, Ephemeral: true})
	return err
}
