package commands

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"
	"github.com/keshon/classcmd/pkg/classcmd"
)

// Ping reports the gateway latency.
type Ping struct {
	classcmd.SlashCommand `description:"Pong!"`
}

func (c *Ping) Callback(ctx context.Context) error {
	msg := "🏓 Pong!"
	if s, ok := c.Interaction.Session.(*discordgo.Session); ok {
		msg = fmt.Sprintf("🏓 Pong! Response time: `%dms`", s.HeartbeatLatency().Milliseconds())
	}
	return c.Reply(msg, false)
}
