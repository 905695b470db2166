package commands

import (
	"context"
	"sync"

	"github.com/bwmarrin/discordgo"
	"github.com/keshon/classcmd/pkg/classcmd"
)

var (
	helpMu   sync.RWMutex
	helpText string
)

func setHelp(text string) {
	helpMu.Lock()
	helpText = text
	helpMu.Unlock()
}

// Help lists the commands of the bot by category.
type Help struct {
	classcmd.SlashCommand `description:"Get a list of available commands"`
}

func (c *Help) Callback(ctx context.Context) error {
	helpMu.RLock()
	text := helpText
	helpMu.RUnlock()
	if text == "" {
		text = "No commands registered."
	}

	if err := c.Defer(true); err != nil {
		return err
	}
	return respondEmbedEphemeral(c, &discordgo.MessageEmbed{
		Title:       "Help",
		Description: text,
	})
}
