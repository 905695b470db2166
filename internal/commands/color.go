package commands

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/keshon/classcmd/pkg/classcmd"
)

var palette = map[string]int{
	"amber":    0xffbf00,
	"azure":    0x007fff,
	"crimson":  0xdc143c,
	"emerald":  0x50c878,
	"fuchsia":  0xff00ff,
	"indigo":   0x4b0082,
	"magenta":  0xb01e66,
	"mint":     0x3eb489,
	"navy":     0x000080,
	"orange":   0xffa500,
	"sapphire": 0x0f52ba,
	"teal":     0x008080,
}

// Color shows a named color.
type Color struct {
	classcmd.SlashCommand `description:"Show a color from the palette"`

	Name string `description:"Color name" autocomplete:"true"`
}

func (c *Color) Callback(ctx context.Context) error {
	value, ok := palette[strings.ToLower(c.Name)]
	if !ok {
		return respondEmbedEphemeral(c, &discordgo.MessageEmbed{
			Description: fmt.Sprintf("Unknown color `%s`.", c.Name),
		})
	}
	return respondEmbed(c, &discordgo.MessageEmbed{
		Title:       c.Name,
		Description: fmt.Sprintf("`#%06x`", value),
		Color:       value,
	})
}

func (c *Color) Autocomplete(ctx context.Context, focused string) ([]*discordgo.ApplicationCommandOptionChoice, error) {
	prefix := strings.ToLower(c.Name)
	var names []string
	for name := range palette {
		if strings.HasPrefix(name, prefix) {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	choices := make([]*discordgo.ApplicationCommandOptionChoice, len(names))
	for i, name := range names {
		choices[i] = classcmd.Choice(name, name)
	}
	return choices, nil
}
