package classcmd

import (
	"context"
	"fmt"
	"reflect"
	"regexp"
	"runtime"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/keshon/classcmd/pkg/appcmd"
)

// BuildOption overrides what a declaration or callback says about itself.
type BuildOption func(*buildOptions)

type buildOptions struct {
	name        appcmd.Maybe[string]
	description appcmd.Maybe[string]
	scope       []appcmd.AddOption
	parent      *appcmd.Group
	permissions appcmd.Maybe[int64]
	guildOnly   bool
	nsfw        bool
}

func newBuildOptions(opts []BuildOption) *buildOptions {
	o := &buildOptions{}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Name sets the command name.
func Name(name string) BuildOption {
	return func(o *buildOptions) { o.name = appcmd.Some(name) }
}

// Description sets the command description. Context menus reject it.
func Description(desc string) BuildOption {
	return func(o *buildOptions) { o.description = appcmd.Some(desc) }
}

// Guild scopes the command to one guild. It cannot be mixed with Guilds.
func Guild(id string) BuildOption {
	return func(o *buildOptions) { o.scope = append(o.scope, appcmd.Guild(id)) }
}

// Guilds scopes the command to several guilds.
func Guilds(ids ...string) BuildOption {
	return func(o *buildOptions) { o.scope = append(o.scope, appcmd.Guilds(ids...)) }
}

// Parent makes the command a subcommand of g. Context menus reject it.
func Parent(g *appcmd.Group) BuildOption {
	return func(o *buildOptions) { o.parent = g }
}

// DefaultPermissions sets the permissions members need by default.
func DefaultPermissions(p int64) BuildOption {
	return func(o *buildOptions) { o.permissions = appcmd.Some(p) }
}

// GuildOnly hides the command in DMs.
func GuildOnly() BuildOption {
	return func(o *buildOptions) { o.guildOnly = true }
}

// NSFW marks the command age-restricted.
func NSFW() BuildOption {
	return func(o *buildOptions) { o.nsfw = true }
}

var declarationType = reflect.TypeOf((*Declaration)(nil)).Elem()

// New builds the command for declaration type T.
func New[T any, PT interface {
	*T
	Declaration
}](opts ...BuildOption) (appcmd.AppCommand, error) {
	return build(reflect.TypeOf((*T)(nil)).Elem(), newBuildOptions(opts))
}

// MustNew is New that panics on configuration errors, for package level vars.
func MustNew[T any, PT interface {
	*T
	Declaration
}](opts ...BuildOption) appcmd.AppCommand {
	cmd, err := New[T, PT](opts...)
	if err != nil {
		panic(err)
	}
	return cmd
}

// Build builds the command for a declaration value (Ban{} or &Ban{}) or its
// reflect.Type.
func Build(decl any, opts ...BuildOption) (appcmd.AppCommand, error) {
	t, err := declType(decl)
	if err != nil {
		return nil, err
	}
	return build(t, newBuildOptions(opts))
}

func declType(src any) (reflect.Type, error) {
	if src == nil {
		return nil, &ConfigError{Declaration: "<nil>", Err: ErrNotCommandSource}
	}
	t, ok := src.(reflect.Type)
	if !ok {
		t = reflect.TypeOf(src)
	}
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct || !reflect.PointerTo(t).Implements(declarationType) {
		return nil, &ConfigError{Declaration: t.String(), Err: ErrNotCommandSource}
	}
	return t, nil
}

func build(t reflect.Type, o *buildOptions) (appcmd.AppCommand, error) {
	c, err := collect(t)
	if err != nil {
		return nil, err
	}
	s, err := synthesize(c, o)
	if err != nil {
		return nil, err
	}

	if s.kind != KindSlash {
		typ := discordgo.UserApplicationCommand
		if s.kind == KindMessage {
			typ = discordgo.MessageApplicationCommand
		}
		menu, err := appcmd.NewContextMenu(s.name, typ, s.target)
		if err != nil {
			return nil, c.errorf("", err)
		}
		menu.Scope = s.scope
		menu.Error(s.onError)
		return menu, nil
	}

	cmd, err := appcmd.NewCommand(s.name, s.description, placeholder)
	if err != nil {
		return nil, c.errorf("", err)
	}
	cmd.Scope = s.scope
	if err := cmd.SetParameters(s.params); err != nil {
		return nil, c.errorf("", err)
	}
	cmd.SetCallback(s.keyword)
	cmd.Error(s.onError)

	if s.parent != nil {
		if err := s.parent.AddCommand(cmd); err != nil {
			return nil, c.errorf("", err)
		}
	}
	return cmd, nil
}

// Command builds a slash command from a callback function or a slash
// declaration. Functions are named after themselves unless Name is given.
func Command(src any, opts ...BuildOption) (*appcmd.Command, error) {
	o := newBuildOptions(opts)

	var fn appcmd.CommandCallback
	switch f := src.(type) {
	case appcmd.CommandCallback:
		fn = f
	case func(context.Context, *appcmd.Interaction, appcmd.Args) error:
		fn = f
	}
	if fn != nil {
		return commandFromFunc(fn, o)
	}

	t, err := declType(src)
	if err != nil {
		return nil, err
	}
	built, err := build(t, o)
	if err != nil {
		return nil, err
	}
	cmd, ok := built.(*appcmd.Command)
	if !ok {
		return nil, &ConfigError{Declaration: t.Name(), Err: fmt.Errorf("%w: %s is a context menu", ErrNotCommandSource, t.Name())}
	}
	return cmd, nil
}

func commandFromFunc(fn appcmd.CommandCallback, o *buildOptions) (*appcmd.Command, error) {
	name, ok := o.name.Get()
	if !ok {
		fname, err := funcName(fn)
		if err != nil {
			return nil, err
		}
		name = commandName(fname)
	}
	cmd, err := appcmd.NewCommand(name, o.description.Or(ellipsis), fn)
	if err != nil {
		return nil, &ConfigError{Declaration: name, Err: err}
	}

	guilds, err := appcmd.ScopeGuilds(nil, o.scope...)
	if err != nil {
		return nil, &ConfigError{Declaration: name, Err: err}
	}
	cmd.GuildIDs = guilds
	if p, ok := o.permissions.Get(); ok {
		cmd.DefaultPermissions = &p
	}
	cmd.GuildOnly, cmd.NSFW = o.guildOnly, o.nsfw

	if o.parent != nil {
		if err := o.parent.AddCommand(cmd); err != nil {
			return nil, &ConfigError{Declaration: name, Err: err}
		}
	}
	return cmd, nil
}

// ContextMenu builds a context menu from a UserMenuCallback, a
// MessageMenuCallback or a user/message declaration.
func ContextMenu(src any, opts ...BuildOption) (*appcmd.ContextMenu, error) {
	o := newBuildOptions(opts)

	switch f := src.(type) {
	case appcmd.UserMenuCallback:
		return menuFromFunc(f, discordgo.UserApplicationCommand, userTarget(f), o)
	case func(context.Context, *appcmd.Interaction, *discordgo.User) error:
		return menuFromFunc(f, discordgo.UserApplicationCommand, userTarget(f), o)
	case appcmd.MessageMenuCallback:
		return menuFromFunc(f, discordgo.MessageApplicationCommand, messageTarget(f), o)
	case func(context.Context, *appcmd.Interaction, *discordgo.Message) error:
		return menuFromFunc(f, discordgo.MessageApplicationCommand, messageTarget(f), o)
	}

	t, err := declType(src)
	if err != nil {
		return nil, err
	}
	built, err := build(t, o)
	if err != nil {
		return nil, err
	}
	menu, ok := built.(*appcmd.ContextMenu)
	if !ok {
		return nil, &ConfigError{Declaration: t.Name(), Err: fmt.Errorf("%w: %s is a slash command", ErrNotCommandSource, t.Name())}
	}
	return menu, nil
}

func userTarget(fn appcmd.UserMenuCallback) appcmd.ContextMenuCallback {
	return func(ctx context.Context, it *appcmd.Interaction, target any) error {
		u, _ := target.(*discordgo.User)
		return fn(ctx, it, u)
	}
}

func messageTarget(fn appcmd.MessageMenuCallback) appcmd.ContextMenuCallback {
	return func(ctx context.Context, it *appcmd.Interaction, target any) error {
		m, _ := target.(*discordgo.Message)
		return fn(ctx, it, m)
	}
}

func menuFromFunc(fn any, typ discordgo.ApplicationCommandType, cb appcmd.ContextMenuCallback, o *buildOptions) (*appcmd.ContextMenu, error) {
	name, ok := o.name.Get()
	if !ok {
		fname, err := funcName(fn)
		if err != nil {
			return nil, err
		}
		name = menuName(fname)
	}
	if o.description.Present() || o.parent != nil {
		return nil, &ConfigError{Declaration: name, Err: ErrContextMenuDescription}
	}
	menu, err := appcmd.NewContextMenu(name, typ, cb)
	if err != nil {
		return nil, &ConfigError{Declaration: name, Err: err}
	}

	guilds, err := appcmd.ScopeGuilds(nil, o.scope...)
	if err != nil {
		return nil, &ConfigError{Declaration: name, Err: err}
	}
	menu.GuildIDs = guilds
	if p, ok := o.permissions.Get(); ok {
		menu.DefaultPermissions = &p
	}
	menu.GuildOnly, menu.NSFW = o.guildOnly, o.nsfw
	return menu, nil
}

var closureName = regexp.MustCompile(`^(func)?\d+$`)

// funcName returns the bare name of a named function or method value.
func funcName(fn any) (string, error) {
	f := runtime.FuncForPC(reflect.ValueOf(fn).Pointer())
	if f == nil {
		return "", &ConfigError{Declaration: "<func>", Err: fmt.Errorf("%w: cannot name callback", appcmd.ErrInvalidName)}
	}
	full := strings.TrimSuffix(f.Name(), "-fm")
	name := full[strings.LastIndex(full, ".")+1:]
	if closureName.MatchString(name) {
		return "", &ConfigError{Declaration: full, Err: fmt.Errorf("%w: anonymous functions need the Name option", appcmd.ErrInvalidName)}
	}
	return name, nil
}

// GroupCommand builds a slash command as a subcommand of g.
func GroupCommand(g *appcmd.Group, src any, opts ...BuildOption) (*appcmd.Command, error) {
	return Command(src, append(opts, Parent(g))...)
}
