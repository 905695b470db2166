package commands

import (
	"context"
	"fmt"
	"math/rand"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/keshon/classcmd/pkg/classcmd"
)

var shuffle = rand.Shuffle

// Coin flips a coin.
type Coin struct {
	classcmd.SlashCommand `description:"Flip a coin"`
}

func (c *Coin) Callback(ctx context.Context) error {
	side := "Heads"
	if rollDie(2) == 2 {
		side = "Tails"
	}
	return respondEmbed(c, &discordgo.MessageEmbed{Title: "🪙 " + side})
}

// Pick picks entries from a comma separated list.
type Pick struct {
	classcmd.SlashCommand

	Items string
	Count classcmd.Maybe[int] `min:"1" max:"10"`
}

func (Pick) Doc() string {
	return `Pick random entries from a list.

	:param Items: Entries separated by commas.
	:param Count: How many to pick, one by default.
	`
}

func (c *Pick) Callback(ctx context.Context) error {
	var items []string
	for _, it := range strings.Split(c.Items, ",") {
		if it = strings.TrimSpace(it); it != "" {
			items = append(items, it)
		}
	}
	if len(items) == 0 {
		return respondEmbedEphemeral(c, &discordgo.MessageEmbed{Description: "Nothing to pick from."})
	}

	n := min(max(c.Count.Or(1), 1), len(items))
	shuffle(len(items), func(i, j int) { items[i], items[j] = items[j], items[i] })

	return respondEmbed(c, &discordgo.MessageEmbed{
		Title:       fmt.Sprintf("🎯 Picked %d of %d", n, len(items)),
		Description: strings.Join(items[:n], "\n"),
	})
}
