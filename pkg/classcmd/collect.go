package classcmd

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/keshon/classcmd/pkg/appcmd"
)

// contextField is the field name reserved for the interaction.
const contextField = "Interaction"

// descriptor is one collected parameter, before its type is resolved.
type descriptor struct {
	Field string
	Index []int
	// FieldType is the Go type of the struct field.
	FieldType reflect.Type
	// Annotation is the raw type expression of a type tag, empty when the field
	// type itself is the annotation.
	Annotation string
	Default    appcmd.Maybe[any]

	// tag values that can only be parsed once the type is known
	rawDefault appcmd.Maybe[string]
	rawChoices string
}

// collected is what the collector hands to the synthesizer.
type collected struct {
	decl      reflect.Type
	kind      Kind
	baseIndex int
	baseTag   reflect.StructTag

	params []descriptor

	renames       map[string]string
	descriptions  map[string]string
	choices       map[string][]*discordgo.ApplicationCommandOptionChoice
	autocompleted map[string]bool
	minValues     map[string]*float64
	maxValues     map[string]*float64
	minLengths    map[string]*int
	maxLengths    map[string]*int
	channelTypes  map[string][]discordgo.ChannelType
}

func (c *collected) name() string { return c.decl.Name() }

func (c *collected) errorf(field string, err error) error {
	return &ConfigError{Declaration: c.name(), Field: field, Err: err}
}

// collect walks the fields of a declaration type.
func collect(t reflect.Type) (*collected, error) {
	if t.Kind() != reflect.Struct {
		return nil, &ConfigError{Declaration: t.String(), Err: ErrNotCommandSource}
	}

	c := &collected{
		decl:          t,
		baseIndex:     -1,
		renames:       map[string]string{},
		descriptions:  map[string]string{},
		choices:       map[string][]*discordgo.ApplicationCommandOptionChoice{},
		autocompleted: map[string]bool{},
		minValues:     map[string]*float64{},
		maxValues:     map[string]*float64{},
		minLengths:    map[string]*int{},
		maxLengths:    map[string]*int{},
		channelTypes:  map[string][]discordgo.ChannelType{},
	}
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.Anonymous {
			continue
		}
		if k, ok := baseKind(f.Type); ok {
			if c.baseIndex >= 0 {
				return nil, c.errorf("", ErrNoBase)
			}
			c.kind, c.baseIndex, c.baseTag = k, i, f.Tag
		}
	}
	if c.baseIndex < 0 {
		return nil, c.errorf("", ErrNoBase)
	}

	var side map[string]Option
	if o, ok := reflect.New(t).Interface().(optioned); ok {
		side = o.Options()
	}

	for _, f := range reflect.VisibleFields(t) {
		if f.Anonymous || !f.IsExported() || f.Index[0] == c.baseIndex {
			continue
		}
		if f.Name == contextField || f.Type.Kind() == reflect.Func || f.Tag.Get("cmd") == "-" {
			continue
		}
		if throughPointer(t, f.Index) {
			continue
		}

		d := descriptor{
			Field:      f.Name,
			Index:      f.Index,
			FieldType:  f.Type,
			Annotation: f.Tag.Get("type"),
			rawChoices: f.Tag.Get("choices"),
		}
		if v, ok := f.Tag.Lookup("default"); ok {
			d.rawDefault = appcmd.Some(v)
		}

		opt, err := tagOption(f.Tag)
		if err != nil {
			return nil, c.errorf(f.Name, err)
		}
		if extra, ok := side[f.Name]; ok {
			opt = extra.merge(opt)
			if extra.Default.Present() {
				d.rawDefault = appcmd.None[string]()
			}
			if extra.Choices != nil {
				d.rawChoices = ""
			}
		}
		d.Default = opt.Default

		c.params = append(c.params, d)
		c.record(f.Name, opt)
	}

	// The base's Target is the one implicit argument of a context menu.
	if c.kind != KindSlash && 1+len(c.params) > 1 {
		return nil, c.errorf(c.params[0].Field, ErrTargetParameters)
	}
	return c, nil
}

// throughPointer reports whether a promoted field is reached through an
// embedded pointer, which is nil on a fresh instance.
func throughPointer(t reflect.Type, index []int) bool {
	for _, i := range index[:len(index)-1] {
		f := t.Field(i)
		if f.Type.Kind() == reflect.Pointer {
			return true
		}
		t = f.Type
	}
	return false
}

func (c *collected) record(field string, opt Option) {
	if opt.Name != "" {
		c.renames[field] = opt.Name
	}
	if opt.Description != "" {
		c.descriptions[field] = opt.Description
	}
	if opt.Choices != nil {
		c.choices[field] = opt.Choices
	}
	if opt.Autocomplete {
		c.autocompleted[field] = true
	}
	if opt.MinValue != nil {
		c.minValues[field] = opt.MinValue
	}
	if opt.MaxValue != nil {
		c.maxValues[field] = opt.MaxValue
	}
	if opt.MinLength != nil {
		c.minLengths[field] = opt.MinLength
	}
	if opt.MaxLength != nil {
		c.maxLengths[field] = opt.MaxLength
	}
	if opt.ChannelTypes != nil {
		c.channelTypes[field] = opt.ChannelTypes
	}
}

// tagOption reads the tags that do not depend on the parameter type.
func tagOption(tag reflect.StructTag) (Option, error) {
	opt := Option{
		Name:        tag.Get("name"),
		Description: tag.Get("description"),
	}
	if v, ok := tag.Lookup("autocomplete"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return opt, fmt.Errorf("%w: autocomplete=%q", ErrBadTag, v)
		}
		opt.Autocomplete = b
	}
	for key, dst := range map[string]**float64{"min": &opt.MinValue, "max": &opt.MaxValue} {
		if v, ok := tag.Lookup(key); ok {
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return opt, fmt.Errorf("%w: %s=%q", ErrBadTag, key, v)
			}
			*dst = &f
		}
	}
	for key, dst := range map[string]**int{"minlen": &opt.MinLength, "maxlen": &opt.MaxLength} {
		if v, ok := tag.Lookup(key); ok {
			n, err := strconv.Atoi(v)
			if err != nil || n < 0 {
				return opt, fmt.Errorf("%w: %s=%q", ErrBadTag, key, v)
			}
			*dst = &n
		}
	}
	if v, ok := tag.Lookup("channels"); ok {
		types, err := parseChannelTypes(v)
		if err != nil {
			return opt, err
		}
		opt.ChannelTypes = types
	}
	return opt, nil
}

var channelTypeNames = map[string]discordgo.ChannelType{
	"text":           discordgo.ChannelTypeGuildText,
	"dm":             discordgo.ChannelTypeDM,
	"voice":          discordgo.ChannelTypeGuildVoice,
	"group_dm":       discordgo.ChannelTypeGroupDM,
	"category":       discordgo.ChannelTypeGuildCategory,
	"news":           discordgo.ChannelTypeGuildNews,
	"news_thread":    discordgo.ChannelTypeGuildNewsThread,
	"public_thread":  discordgo.ChannelTypeGuildPublicThread,
	"private_thread": discordgo.ChannelTypeGuildPrivateThread,
	"stage":          discordgo.ChannelTypeGuildStageVoice,
	"forum":          discordgo.ChannelTypeGuildForum,
}

func parseChannelTypes(s string) ([]discordgo.ChannelType, error) {
	var out []discordgo.ChannelType
	for _, name := range splitList(s) {
		ct, ok := channelTypeNames[strings.ToLower(name)]
		if !ok {
			return nil, fmt.Errorf("%w: unknown channel type %q", ErrBadTag, name)
		}
		out = append(out, ct)
	}
	return out, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
