// Package appcmd is a small application command framework on top of discordgo:
// command objects with typed parameters, context menus, groups, and a Tree that
// registers them with Discord and dispatches interactions to their callbacks.
package appcmd

import (
	"context"
	"fmt"
	"regexp"
	"sync"

	"github.com/bwmarrin/discordgo"
)

var (
	commandNameRe = regexp.MustCompile(`^[-_\p{Ll}\p{Lo}\p{N}\p{Devanagari}\p{Thai}]{1,32}$`)
	optionNameRe  = commandNameRe
)

// Args maps Parameter.Field to converted argument values.
type Args map[string]any

type (
	// CommandCallback runs a chat input command.
	CommandCallback func(ctx context.Context, it *Interaction, args Args) error
	// ContextMenuCallback runs a context menu command. target is a *discordgo.User
	// (or *discordgo.Member in guilds when requested) or a *discordgo.Message.
	ContextMenuCallback func(ctx context.Context, it *Interaction, target any) error
	// UserMenuCallback is the plain function form of a user context menu.
	UserMenuCallback func(ctx context.Context, it *Interaction, user *discordgo.User) error
	// MessageMenuCallback is the plain function form of a message context menu.
	MessageMenuCallback func(ctx context.Context, it *Interaction, msg *discordgo.Message) error
	// ErrorCallback receives errors raised by a command's callback.
	ErrorCallback func(ctx context.Context, it *Interaction, err error)
	// AutocompleteCallback returns suggestions for the focused option. namespace
	// holds the values filled in so far, current the focused option's value.
	AutocompleteCallback func(ctx context.Context, it *Interaction, namespace Args, current any) ([]*discordgo.ApplicationCommandOptionChoice, error)
)

// AppCommand is anything a Tree can hold.
type AppCommand interface {
	CommandName() string
	CommandType() discordgo.ApplicationCommandType
	Definition() *discordgo.ApplicationCommand
}

// Scope carries command level metadata shared by commands and context menus.
type Scope struct {
	GuildIDs           []string
	DefaultPermissions *int64
	GuildOnly          bool
	NSFW               bool
}

func (s *Scope) apply(def *discordgo.ApplicationCommand) {
	def.DefaultMemberPermissions = s.DefaultPermissions
	if s.GuildOnly {
		dm := false
		def.DMPermission = &dm
	}
	if s.NSFW {
		nsfw := true
		def.NSFW = &nsfw
	}
}

// Command is a chat input (slash) command.
type Command struct {
	Scope

	Name        string
	Description string
	Parent      *Group

	mu       sync.RWMutex
	params   []*Parameter
	paramsOK bool
	callback CommandCallback
	onError  ErrorCallback
}

// NewCommand validates name and description and returns a command without
// parameters.
func NewCommand(name, description string, callback CommandCallback) (*Command, error) {
	if !commandNameRe.MatchString(name) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	if n := len([]rune(description)); n == 0 || n > 100 {
		return nil, fmt.Errorf("%w: %q must be 1-100 characters", ErrInvalidDescription, name)
	}
	if callback == nil {
		return nil, fmt.Errorf("%w: %q", ErrNoCallback, name)
	}
	return &Command{Name: name, Description: description, callback: callback}, nil
}

func (c *Command) CommandName() string { return c.Name }

func (c *Command) CommandType() discordgo.ApplicationCommandType {
	return discordgo.ChatApplicationCommand
}

// QualifiedName includes parent group names.
func (c *Command) QualifiedName() string {
	if c.Parent == nil {
		return c.Name
	}
	return c.Parent.QualifiedName() + " " + c.Name
}

// SetParameters installs the ordered parameters. It can only be done once.
func (c *Command) SetParameters(params []*Parameter) error {
	if len(params) > 25 {
		return fmt.Errorf("%w: %q has %d", ErrTooManyParameters, c.Name, len(params))
	}
	seen := make(map[string]bool, len(params))
	for _, p := range params {
		if err := p.validate(); err != nil {
			return fmt.Errorf("command %q: %w", c.Name, err)
		}
		if seen[p.Name] {
			return fmt.Errorf("command %q: %w: %q", c.Name, ErrDuplicateParameter, p.Name)
		}
		seen[p.Name] = true
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.paramsOK {
		return fmt.Errorf("%w: %q", ErrParametersSet, c.Name)
	}
	c.params = append([]*Parameter(nil), params...)
	c.paramsOK = true
	return nil
}

// Parameters returns the parameters in registration order.
func (c *Command) Parameters() []*Parameter {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]*Parameter(nil), c.params...)
}

// Parameter looks a parameter up by its display name.
func (c *Command) Parameter(name string) *Parameter {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, p := range c.params {
		if p.Name == name {
			return p
		}
	}
	return nil
}

// SetCallback replaces the callback.
func (c *Command) SetCallback(cb CommandCallback) {
	c.mu.Lock()
	c.callback = cb
	c.mu.Unlock()
}

// Error sets the command's error handler.
func (c *Command) Error(fn ErrorCallback) {
	c.mu.Lock()
	c.onError = fn
	c.mu.Unlock()
}

func (c *Command) handlers() (CommandCallback, ErrorCallback) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.callback, c.onError
}

// Definition returns the payload Discord expects for a top level command.
func (c *Command) Definition() *discordgo.ApplicationCommand {
	def := &discordgo.ApplicationCommand{
		Type:        discordgo.ChatApplicationCommand,
		Name:        c.Name,
		Description: c.Description,
		Options:     c.options(),
	}
	c.Scope.apply(def)
	return def
}

func (c *Command) options() []*discordgo.ApplicationCommandOption {
	params := c.Parameters()
	if len(params) == 0 {
		return nil
	}
	opts := make([]*discordgo.ApplicationCommandOption, len(params))
	for i, p := range params {
		opts[i] = p.option()
	}
	return opts
}

func (c *Command) option() *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionSubCommand,
		Name:        c.Name,
		Description: c.Description,
		Options:     c.options(),
	}
}

// ContextMenu is a user or message context menu command.
type ContextMenu struct {
	Scope

	Name string
	Type discordgo.ApplicationCommandType

	mu       sync.RWMutex
	callback ContextMenuCallback
	onError  ErrorCallback
}

// NewContextMenu validates the name and returns a context menu of the given type.
func NewContextMenu(name string, typ discordgo.ApplicationCommandType, callback ContextMenuCallback) (*ContextMenu, error) {
	if n := len([]rune(name)); n == 0 || n > 32 {
		return nil, fmt.Errorf("%w: %q must be 1-32 characters", ErrInvalidName, name)
	}
	if typ != discordgo.UserApplicationCommand && typ != discordgo.MessageApplicationCommand {
		return nil, fmt.Errorf("%w: context menu %q has type %d", ErrInvalidName, name, typ)
	}
	if callback == nil {
		return nil, fmt.Errorf("%w: %q", ErrNoCallback, name)
	}
	return &ContextMenu{Name: name, Type: typ, callback: callback}, nil
}

func (m *ContextMenu) CommandName() string { return m.Name }

func (m *ContextMenu) CommandType() discordgo.ApplicationCommandType { return m.Type }

// SetCallback replaces the callback.
func (m *ContextMenu) SetCallback(cb ContextMenuCallback) {
	m.mu.Lock()
	m.callback = cb
	m.mu.Unlock()
}

// Error sets the menu's error handler.
func (m *ContextMenu) Error(fn ErrorCallback) {
	m.mu.Lock()
	m.onError = fn
	m.mu.Unlock()
}

func (m *ContextMenu) handlers() (ContextMenuCallback, ErrorCallback) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.callback, m.onError
}

func (m *ContextMenu) Definition() *discordgo.ApplicationCommand {
	def := &discordgo.ApplicationCommand{Type: m.Type, Name: m.Name}
	m.Scope.apply(def)
	return def
}

// Group is a chat input command with subcommands.
type Group struct {
	Scope

	Name        string
	Description string
	Parent      *Group

	mu       sync.RWMutex
	order    []string
	children map[string]any
}

// NewGroup returns an empty group. parent may be nil.
func NewGroup(name, description string, parent *Group) (*Group, error) {
	if !commandNameRe.MatchString(name) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	if n := len([]rune(description)); n == 0 || n > 100 {
		return nil, fmt.Errorf("%w: %q must be 1-100 characters", ErrInvalidDescription, name)
	}
	g := &Group{Name: name, Description: description, children: make(map[string]any)}
	if parent != nil {
		if parent.Parent != nil {
			return nil, fmt.Errorf("%w: %q", ErrGroupDepth, name)
		}
		if err := parent.add(name, g); err != nil {
			return nil, err
		}
		g.Parent = parent
	}
	return g, nil
}

func (g *Group) CommandName() string { return g.Name }

func (g *Group) CommandType() discordgo.ApplicationCommandType {
	return discordgo.ChatApplicationCommand
}

// QualifiedName includes parent group names.
func (g *Group) QualifiedName() string {
	if g.Parent == nil {
		return g.Name
	}
	return g.Parent.QualifiedName() + " " + g.Name
}

// AddCommand attaches a subcommand.
func (g *Group) AddCommand(c *Command) error {
	if err := g.add(c.Name, c); err != nil {
		return err
	}
	c.Parent = g
	return nil
}

func (g *Group) add(name string, child any) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, ok := g.children[name]; ok {
		return fmt.Errorf("%w: %q in group %q", ErrCommandExists, name, g.Name)
	}
	if len(g.order) >= 25 {
		return fmt.Errorf("%w: group %q", ErrTooManyParameters, g.Name)
	}
	g.children[name] = child
	g.order = append(g.order, name)
	return nil
}

// Child returns a subcommand (*Command) or subgroup (*Group) by name.
func (g *Group) Child(name string) any {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.children[name]
}

// Commands returns the direct subcommands in insertion order.
func (g *Group) Commands() []*Command {
	g.mu.RLock()
	defer g.mu.RUnlock()
	var out []*Command
	for _, name := range g.order {
		if c, ok := g.children[name].(*Command); ok {
			out = append(out, c)
		}
	}
	return out
}

func (g *Group) Definition() *discordgo.ApplicationCommand {
	def := &discordgo.ApplicationCommand{
		Type:        discordgo.ChatApplicationCommand,
		Name:        g.Name,
		Description: g.Description,
		Options:     g.options(),
	}
	g.Scope.apply(def)
	return def
}

func (g *Group) options() []*discordgo.ApplicationCommandOption {
	g.mu.RLock()
	defer g.mu.RUnlock()
	opts := make([]*discordgo.ApplicationCommandOption, 0, len(g.order))
	for _, name := range g.order {
		switch child := g.children[name].(type) {
		case *Command:
			opts = append(opts, child.option())
		case *Group:
			opts = append(opts, &discordgo.ApplicationCommandOption{
				Type:        discordgo.ApplicationCommandOptionSubCommandGroup,
				Name:        child.Name,
				Description: child.Description,
				Options:     child.options(),
			})
		}
	}
	return opts
}
