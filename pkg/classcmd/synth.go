package classcmd

import (
	"fmt"
	"reflect"
	"sort"
	"strconv"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/keshon/classcmd/pkg/appcmd"
)

var builtinTypes = map[string]reflect.Type{
	"str":         reflect.TypeOf(""),
	"string":      reflect.TypeOf(""),
	"int":         reflect.TypeOf(int64(0)),
	"integer":     reflect.TypeOf(int64(0)),
	"float":       reflect.TypeOf(float64(0)),
	"number":      reflect.TypeOf(float64(0)),
	"bool":        reflect.TypeOf(false),
	"boolean":     reflect.TypeOf(false),
	"user":        reflect.TypeOf((*discordgo.User)(nil)),
	"member":      reflect.TypeOf((*discordgo.Member)(nil)),
	"channel":     reflect.TypeOf((*discordgo.Channel)(nil)),
	"role":        reflect.TypeOf((*discordgo.Role)(nil)),
	"attachment":  reflect.TypeOf((*discordgo.MessageAttachment)(nil)),
	"mentionable": reflect.TypeOf(appcmd.Mentionable{}),
}

type resolved struct {
	typ      reflect.Type
	optional bool
}

// resolver turns type expressions from type tags into types. Names declared by
// the declaration's Types() win over the built-in names.
type resolver struct {
	local map[string]reflect.Type
	cache map[string]resolved
}

func newResolver(decl reflect.Type) *resolver {
	r := &resolver{cache: make(map[string]resolved)}
	if t, ok := reflect.New(decl).Interface().(typed); ok {
		r.local = t.Types()
	}
	return r
}

func (r *resolver) resolve(expr string) (resolved, error) {
	if res, ok := r.cache[expr]; ok {
		return res, nil
	}

	var res resolved
	inner := strings.TrimSpace(expr)
	if strings.HasPrefix(inner, "Optional[") && strings.HasSuffix(inner, "]") {
		inner = strings.TrimSpace(inner[len("Optional[") : len(inner)-1])
		res.optional = true
	}
	if t, ok := r.local[inner]; ok && t != nil {
		res.typ = t
	} else if t, ok := builtinTypes[inner]; ok {
		res.typ = t
	} else {
		return resolved{}, fmt.Errorf("%w: %q", ErrUnresolvedType, expr)
	}

	r.cache[expr] = res
	return res, nil
}

// binding ties a parameter to the struct field its value is stored in.
type binding struct {
	field string
	index []int
}

// synthesis is the finished signature of a declaration.
type synthesis struct {
	decl      reflect.Type
	kind      Kind
	baseIndex int

	name        string
	description string
	scope       appcmd.Scope
	parent      *appcmd.Group

	// params in the order Discord sees them, required first.
	params []*appcmd.Parameter
	// fields in declaration order.
	fields []binding
	index  map[string][]int
}

func synthesize(c *collected, o *buildOptions) (*synthesis, error) {
	s := &synthesis{
		decl:      c.decl,
		kind:      c.kind,
		baseIndex: c.baseIndex,
		index:     make(map[string][]int, len(c.params)),
	}
	if err := s.metadata(c, o); err != nil {
		return nil, err
	}

	var docArgs map[string]string
	if d, ok := reflect.New(c.decl).Interface().(documented); ok {
		docArgs = parseDocArgs(d.Doc())
	}

	r := newResolver(c.decl)
	for _, d := range c.params {
		p, err := s.parameter(c, r, d)
		if err != nil {
			return nil, err
		}
		s.params = append(s.params, p)
		s.fields = append(s.fields, binding{field: d.Field, index: d.Index})
		s.index[d.Field] = d.Index
	}

	sort.SliceStable(s.params, func(i, j int) bool {
		return s.params[i].Required && !s.params[j].Required
	})

	for _, p := range s.params {
		f := p.Field
		switch {
		case c.descriptions[f] != "":
			p.Description = c.descriptions[f]
		case docArgs[f] != "":
			p.Description = shorten(docArgs[f])
		case docArgs[p.Name] != "":
			p.Description = shorten(docArgs[p.Name])
		}
		if p.Description == "" {
			p.Description = ellipsis
		}
		if name, ok := c.renames[f]; ok {
			p.Name = name
		}
		if choices, ok := c.choices[f]; ok {
			for _, ch := range choices {
				if err := appcmd.CheckValue(p.GoType, ch.Value); err != nil {
					return nil, c.errorf(f, fmt.Errorf("%w: choice %q: %v", ErrAnnotationMismatch, ch.Name, err))
				}
			}
			p.Choices = choices
		}
		if c.autocompleted[f] {
			p.Autocomplete = s.autocomplete
		}
		if v, ok := c.minValues[f]; ok {
			p.MinValue = v
		}
		if v, ok := c.maxValues[f]; ok {
			p.MaxValue = v
		}
		if v, ok := c.minLengths[f]; ok {
			p.MinLength = v
		}
		if v, ok := c.maxLengths[f]; ok {
			p.MaxLength = v
		}
		if v, ok := c.channelTypes[f]; ok {
			p.ChannelTypes = v
		}
	}
	return s, nil
}

func (s *synthesis) parameter(c *collected, r *resolver, d descriptor) (*appcmd.Parameter, error) {
	annotation := d.FieldType
	optional := false
	if d.Annotation != "" {
		res, err := r.resolve(d.Annotation)
		if err != nil {
			return nil, c.errorf(d.Field, err)
		}
		target := d.FieldType
		if elem, ok := appcmd.OptionalElem(target); ok {
			target, optional = elem, true
		}
		if !res.typ.AssignableTo(target) {
			return nil, c.errorf(d.Field, fmt.Errorf("%w: %s is not assignable to %s", ErrAnnotationMismatch, res.typ, d.FieldType))
		}
		if res.optional && target.Kind() != reflect.Interface && !optional {
			return nil, c.errorf(d.Field, fmt.Errorf("%w: Optional needs a Maybe or interface field", ErrAnnotationMismatch))
		}
		annotation = res.typ
		optional = optional || res.optional
	} else if d.FieldType.Kind() == reflect.Interface {
		return nil, c.errorf(d.Field, ErrMissingAnnotation)
	}

	p, err := appcmd.ParameterFor(parameterName(d.Field), annotation)
	if err != nil {
		return nil, c.errorf(d.Field, err)
	}
	p.Field = d.Field
	if optional {
		p.Required = false
	}

	if v, ok := d.Default.Get(); ok {
		if err := appcmd.CheckValue(p.GoType, v); err != nil {
			return nil, c.errorf(d.Field, fmt.Errorf("%w: default: %v", ErrAnnotationMismatch, err))
		}
		p.SetDefault(v)
	} else if raw, ok := d.rawDefault.Get(); ok {
		v, err := parseScalar(raw, p.GoType)
		if err != nil {
			return nil, c.errorf(d.Field, fmt.Errorf("%w: default=%q: %v", ErrBadTag, raw, err))
		}
		p.SetDefault(v)
	}

	if d.rawChoices != "" {
		choices, err := parseChoices(d.rawChoices, p.GoType)
		if err != nil {
			return nil, c.errorf(d.Field, err)
		}
		p.Choices = choices
	}
	return p, nil
}

func (s *synthesis) metadata(c *collected, o *buildOptions) error {
	tag := c.baseTag

	s.name = o.name.Or(tag.Get("name"))
	if s.name == "" {
		if c.kind == KindSlash {
			s.name = commandName(c.name())
		} else {
			s.name = menuName(c.name())
		}
	}

	desc, hasDesc := o.description.Get()
	if !hasDesc {
		desc, hasDesc = tag.Lookup("description")
	}
	if c.kind != KindSlash {
		if hasDesc || o.parent != nil {
			return c.errorf("", ErrContextMenuDescription)
		}
	} else {
		if !hasDesc {
			if d, ok := reflect.New(c.decl).Interface().(documented); ok {
				desc = shorten(d.Doc())
			}
		}
		if desc == "" {
			desc = ellipsis
		}
		s.description = desc
		s.parent = o.parent
	}

	_, hasGuild := tag.Lookup("guild")
	_, hasGuilds := tag.Lookup("guilds")
	if hasGuild && hasGuilds {
		return c.errorf("", appcmd.ErrGuildScopeConflict)
	}
	declared := splitList(tag.Get("guild") + "," + tag.Get("guilds"))
	guilds, err := appcmd.ScopeGuilds(declared, o.scope...)
	if err != nil {
		return c.errorf("", err)
	}
	s.scope.GuildIDs = guilds

	if p, ok := o.permissions.Get(); ok {
		s.scope.DefaultPermissions = &p
	} else if v, ok := tag.Lookup("permissions"); ok {
		p, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return c.errorf("", fmt.Errorf("%w: permissions=%q", ErrBadTag, v))
		}
		s.scope.DefaultPermissions = &p
	}

	for key, dst := range map[string]*bool{"guild_only": &s.scope.GuildOnly, "nsfw": &s.scope.NSFW} {
		if v, ok := tag.Lookup(key); ok {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return c.errorf("", fmt.Errorf("%w: %s=%q", ErrBadTag, key, v))
			}
			*dst = b
		}
	}
	s.scope.GuildOnly = s.scope.GuildOnly || o.guildOnly
	s.scope.NSFW = s.scope.NSFW || o.nsfw
	return nil
}

// parseScalar parses a tag value as t.
func parseScalar(raw string, t reflect.Type) (any, error) {
	var v reflect.Value
	switch t.Kind() {
	case reflect.String:
		v = reflect.ValueOf(raw)
	case reflect.Bool:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, err
		}
		v = reflect.ValueOf(b)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := strconv.ParseInt(raw, 10, t.Bits())
		if err != nil {
			return nil, err
		}
		v = reflect.ValueOf(n)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n, err := strconv.ParseUint(raw, 10, t.Bits())
		if err != nil {
			return nil, err
		}
		v = reflect.ValueOf(n)
	case reflect.Float32, reflect.Float64:
		f, err := strconv.ParseFloat(raw, t.Bits())
		if err != nil {
			return nil, err
		}
		v = reflect.ValueOf(f)
	default:
		return nil, fmt.Errorf("no tag syntax for %s", t)
	}
	return v.Convert(t).Interface(), nil
}

// parseChoices parses "Label=value,Label=value". A bare entry is its own label.
func parseChoices(raw string, t reflect.Type) ([]*discordgo.ApplicationCommandOptionChoice, error) {
	var out []*discordgo.ApplicationCommandOptionChoice
	for _, entry := range splitList(raw) {
		label, value, found := strings.Cut(entry, "=")
		if !found {
			value = label
		}
		label, value = strings.TrimSpace(label), strings.TrimSpace(value)

		v, err := parseScalar(value, t)
		if err != nil {
			return nil, fmt.Errorf("%w: choice %q: %v", ErrBadTag, entry, err)
		}
		out = append(out, Choice(label, v))
	}
	return out, nil
}
