package classcmd

import (
	"github.com/bwmarrin/discordgo"
	"github.com/keshon/classcmd/pkg/appcmd"
)

// Option describes one parameter. Declarations return them from Options(),
// keyed by field name; set fields override the field's tags.
type Option struct {
	// Default makes the parameter optional.
	Default      appcmd.Maybe[any]
	Name         string
	Description  string
	Autocomplete bool
	Choices      []*discordgo.ApplicationCommandOptionChoice

	MinValue     *float64
	MaxValue     *float64
	MinLength    *int
	MaxLength    *int
	ChannelTypes []discordgo.ChannelType
}

// Default is a shortcut for an Option with only a default value.
func Default(v any) Option {
	return Option{Default: appcmd.Some(v)}
}

// Choice builds a choice.
func Choice(name string, value any) *discordgo.ApplicationCommandOptionChoice {
	return &discordgo.ApplicationCommandOptionChoice{Name: name, Value: value}
}

// merge lays o over base, field by field.
func (o Option) merge(base Option) Option {
	if o.Default.Present() {
		base.Default = o.Default
	}
	if o.Name != "" {
		base.Name = o.Name
	}
	if o.Description != "" {
		base.Description = o.Description
	}
	if o.Autocomplete {
		base.Autocomplete = true
	}
	if o.Choices != nil {
		base.Choices = o.Choices
	}
	if o.MinValue != nil {
		base.MinValue = o.MinValue
	}
	if o.MaxValue != nil {
		base.MaxValue = o.MaxValue
	}
	if o.MinLength != nil {
		base.MinLength = o.MinLength
	}
	if o.MaxLength != nil {
		base.MaxLength = o.MaxLength
	}
	if o.ChannelTypes != nil {
		base.ChannelTypes = o.ChannelTypes
	}
	return base
}
