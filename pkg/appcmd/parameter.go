package appcmd

import (
	"fmt"
	"math"
	"reflect"

	"github.com/bwmarrin/discordgo"
)

// Mentionable is the value of a mentionable option: a user or a role.
type Mentionable struct {
	ID     string
	User   *discordgo.User
	Member *discordgo.Member
	Role   *discordgo.Role
}

// Choicer is implemented by named types that restrict their values to a fixed set,
// the way an enum would.
type Choicer interface {
	Choices() []*discordgo.ApplicationCommandOptionChoice
}

// Parameter is one resolved command option.
type Parameter struct {
	// Name is the name Discord shows.
	Name string
	// Field is the name the value is bound to on the callback side.
	Field        string
	Description  string
	Type         discordgo.ApplicationCommandOptionType
	Required     bool
	Default      Maybe[any]
	Choices      []*discordgo.ApplicationCommandOptionChoice
	ChannelTypes []discordgo.ChannelType
	MinValue     *float64
	MaxValue     *float64
	MinLength    *int
	MaxLength    *int
	Autocomplete AutocompleteCallback

	// GoType is the type the converted value has.
	GoType reflect.Type
}

var (
	userType        = reflect.TypeOf((*discordgo.User)(nil))
	memberType      = reflect.TypeOf((*discordgo.Member)(nil))
	channelType     = reflect.TypeOf((*discordgo.Channel)(nil))
	roleType        = reflect.TypeOf((*discordgo.Role)(nil))
	attachmentType  = reflect.TypeOf((*discordgo.MessageAttachment)(nil))
	messageType     = reflect.TypeOf((*discordgo.Message)(nil))
	mentionableType = reflect.TypeOf(Mentionable{})
	choicerType     = reflect.TypeOf((*Choicer)(nil)).Elem()
)

// ParameterFor maps a Go type to a parameter. Maybe[T] unwraps to T and makes the
// parameter optional. Types implementing Choicer contribute their choices.
func ParameterFor(name string, t reflect.Type) (*Parameter, error) {
	p := &Parameter{Name: name, Field: name, Required: true}
	if elem, ok := OptionalElem(t); ok {
		t = elem
		p.Required = false
	}
	p.GoType = t

	switch t {
	case userType, memberType:
		p.Type = discordgo.ApplicationCommandOptionUser
	case channelType:
		p.Type = discordgo.ApplicationCommandOptionChannel
	case roleType:
		p.Type = discordgo.ApplicationCommandOptionRole
	case attachmentType:
		p.Type = discordgo.ApplicationCommandOptionAttachment
	case mentionableType:
		p.Type = discordgo.ApplicationCommandOptionMentionable
	default:
		switch t.Kind() {
		case reflect.String:
			p.Type = discordgo.ApplicationCommandOptionString
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
			reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
			p.Type = discordgo.ApplicationCommandOptionInteger
		case reflect.Float32, reflect.Float64:
			p.Type = discordgo.ApplicationCommandOptionNumber
		case reflect.Bool:
			p.Type = discordgo.ApplicationCommandOptionBoolean
		default:
			return nil, fmt.Errorf("%w: %s", ErrUnsupportedType, t)
		}
	}

	if t.Implements(choicerType) {
		p.Choices = reflect.Zero(t).Interface().(Choicer).Choices()
	}
	return p, nil
}

// SetDefault makes the parameter optional with the given default.
func (p *Parameter) SetDefault(v any) {
	p.Default = Some(v)
	p.Required = false
}

func (p *Parameter) validate() error {
	if !optionNameRe.MatchString(p.Name) {
		return fmt.Errorf("%w: parameter %q", ErrInvalidName, p.Name)
	}
	if n := len([]rune(p.Description)); n == 0 || n > 100 {
		return fmt.Errorf("%w: parameter %q must be 1-100 characters", ErrInvalidDescription, p.Name)
	}
	if len(p.Choices) > 25 {
		return fmt.Errorf("%w: parameter %q has %d", ErrTooManyChoices, p.Name, len(p.Choices))
	}
	if len(p.Choices) > 0 && p.Autocomplete != nil {
		return fmt.Errorf("%w: %q", ErrChoicesAutocomplete, p.Name)
	}
	return nil
}

func (p *Parameter) option() *discordgo.ApplicationCommandOption {
	o := &discordgo.ApplicationCommandOption{
		Type:         p.Type,
		Name:         p.Name,
		Description:  p.Description,
		Required:     p.Required,
		Choices:      p.Choices,
		ChannelTypes: p.ChannelTypes,
		Autocomplete: p.Autocomplete != nil,
		MinValue:     p.MinValue,
		MinLength:    p.MinLength,
	}
	if p.MaxValue != nil {
		o.MaxValue = *p.MaxValue
	}
	if p.MaxLength != nil {
		o.MaxLength = *p.MaxLength
	}
	return o
}

// Convert turns a received option into a value of GoType, looking objects up in
// the resolved data of the interaction.
func (p *Parameter) Convert(opt *discordgo.ApplicationCommandInteractionDataOption, resolved *discordgo.ApplicationCommandInteractionDataResolved) (any, error) {
	v, err := p.convert(opt.Value, resolved)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrBadArgument, p.Name, err)
	}
	return v, nil
}

func (p *Parameter) convert(raw any, resolved *discordgo.ApplicationCommandInteractionDataResolved) (any, error) {
	if resolved == nil {
		resolved = &discordgo.ApplicationCommandInteractionDataResolved{}
	}
	switch p.GoType {
	case userType:
		id, err := snowflake(raw)
		if err != nil {
			return nil, err
		}
		return resolveUser(id, resolved), nil
	case memberType:
		id, err := snowflake(raw)
		if err != nil {
			return nil, err
		}
		return resolveMember(id, resolved), nil
	case channelType:
		id, err := snowflake(raw)
		if err != nil {
			return nil, err
		}
		if c, ok := resolved.Channels[id]; ok {
			return c, nil
		}
		return &discordgo.Channel{ID: id}, nil
	case roleType:
		id, err := snowflake(raw)
		if err != nil {
			return nil, err
		}
		if r, ok := resolved.Roles[id]; ok {
			return r, nil
		}
		return &discordgo.Role{ID: id}, nil
	case attachmentType:
		id, err := snowflake(raw)
		if err != nil {
			return nil, err
		}
		if a, ok := resolved.Attachments[id]; ok {
			return a, nil
		}
		return &discordgo.MessageAttachment{ID: id}, nil
	case mentionableType:
		id, err := snowflake(raw)
		if err != nil {
			return nil, err
		}
		m := Mentionable{ID: id}
		if r, ok := resolved.Roles[id]; ok {
			m.Role = r
			return m, nil
		}
		m.User = resolveUser(id, resolved)
		m.Member = resolved.Members[id]
		return m, nil
	}

	rv := reflect.ValueOf(raw)
	if !rv.IsValid() {
		return nil, fmt.Errorf("no value")
	}
	switch p.GoType.Kind() {
	case reflect.String:
		s, ok := raw.(string)
		if !ok {
			return nil, fmt.Errorf("expected string, got %T", raw)
		}
		return reflect.ValueOf(s).Convert(p.GoType).Interface(), nil
	case reflect.Bool:
		b, ok := raw.(bool)
		if !ok {
			return nil, fmt.Errorf("expected bool, got %T", raw)
		}
		return reflect.ValueOf(b).Convert(p.GoType).Interface(), nil
	default:
		// JSON numbers arrive as float64.
		if !rv.CanConvert(p.GoType) || rv.Kind() == reflect.String || rv.Kind() == reflect.Bool {
			return nil, fmt.Errorf("expected number, got %T", raw)
		}
		if err := checkRange(rv, p.GoType); err != nil {
			return nil, err
		}
		return rv.Convert(p.GoType).Interface(), nil
	}
}

type valueClass int

const (
	classOther valueClass = iota
	classString
	classBool
	classInteger
	classFloat
)

func classOf(k reflect.Kind) valueClass {
	switch k {
	case reflect.String:
		return classString
	case reflect.Bool:
		return classBool
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return classInteger
	case reflect.Float32, reflect.Float64:
		return classFloat
	}
	return classOther
}

// CheckValue reports whether v can be stored as t. Scalars may change their
// named type but not their kind, integers may become floats, and numbers must
// be in range for t.
func CheckValue(t reflect.Type, v any) error {
	if v == nil {
		switch t.Kind() {
		case reflect.Pointer, reflect.Interface:
			return nil
		}
		return fmt.Errorf("%w: nil for %s", ErrValueMismatch, t)
	}
	rv := reflect.ValueOf(v)
	if rv.Type().AssignableTo(t) {
		return nil
	}
	from, to := classOf(rv.Kind()), classOf(t.Kind())
	if from == classOther || (from != to && !(from == classInteger && to == classFloat)) || !rv.CanConvert(t) {
		return fmt.Errorf("%w: %T for %s", ErrValueMismatch, v, t)
	}
	if err := checkRange(rv, t); err != nil {
		return fmt.Errorf("%w: %v", ErrValueMismatch, err)
	}
	return nil
}

// checkRange rejects numbers that t cannot hold, including fractions for
// integer types.
func checkRange(rv reflect.Value, t reflect.Type) error {
	zero := reflect.Zero(t)
	switch classOf(t.Kind()) {
	case classInteger:
		var f float64
		switch {
		case rv.CanInt():
			f = float64(rv.Int())
			if t.Kind() <= reflect.Int64 && !zero.OverflowInt(rv.Int()) {
				return nil
			}
			if t.Kind() >= reflect.Uint && rv.Int() >= 0 && !zero.OverflowUint(uint64(rv.Int())) {
				return nil
			}
		case rv.CanUint():
			f = float64(rv.Uint())
			if t.Kind() >= reflect.Uint && !zero.OverflowUint(rv.Uint()) {
				return nil
			}
			if t.Kind() <= reflect.Int64 && rv.Uint() <= math.MaxInt64 && !zero.OverflowInt(int64(rv.Uint())) {
				return nil
			}
		case rv.CanFloat():
			f = rv.Float()
			if f != math.Trunc(f) {
				return fmt.Errorf("%v is not a whole number", f)
			}
			if t.Kind() <= reflect.Int64 && f >= math.MinInt64 && f < math.MaxInt64 && !zero.OverflowInt(int64(f)) {
				return nil
			}
			if t.Kind() >= reflect.Uint && f >= 0 && f < math.MaxUint64 && !zero.OverflowUint(uint64(f)) {
				return nil
			}
		default:
			return nil
		}
		return fmt.Errorf("%v is out of range for %s", f, t)
	case classFloat:
		if rv.CanFloat() && zero.OverflowFloat(rv.Float()) {
			return fmt.Errorf("%v is out of range for %s", rv.Float(), t)
		}
	}
	return nil
}

func snowflake(raw any) (string, error) {
	id, ok := raw.(string)
	if !ok || id == "" {
		return "", fmt.Errorf("expected snowflake, got %T", raw)
	}
	return id, nil
}

func resolveUser(id string, resolved *discordgo.ApplicationCommandInteractionDataResolved) *discordgo.User {
	if u, ok := resolved.Users[id]; ok {
		return u
	}
	if m, ok := resolved.Members[id]; ok && m.User != nil {
		return m.User
	}
	return &discordgo.User{ID: id}
}

func resolveMember(id string, resolved *discordgo.ApplicationCommandInteractionDataResolved) *discordgo.Member {
	m, ok := resolved.Members[id]
	if !ok {
		m = &discordgo.Member{}
	}
	if m.User == nil {
		m.User = resolveUser(id, resolved)
	}
	return m
}
