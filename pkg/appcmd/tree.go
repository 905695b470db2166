package appcmd

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/bwmarrin/discordgo"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type commandKey struct {
	name string
	typ  discordgo.ApplicationCommandType
}

// Tree holds application commands per scope (global or guild), syncs them with
// Discord and dispatches interactions to them.
type Tree struct {
	mu      sync.RWMutex
	global  map[commandKey]AppCommand
	guilds  map[string]map[commandKey]AppCommand
	mws     []Middleware
	onError ErrorCallback

	logger  zerolog.Logger
	limiter *AdaptiveLimiter
	cache   HashCache
	workers int
}

// TreeOption configures a Tree.
type TreeOption func(*Tree)

// WithLogger sets the tree's logger.
func WithLogger(l zerolog.Logger) TreeOption {
	return func(t *Tree) { t.logger = l }
}

// WithHashCache sets where synced hashes are remembered.
func WithHashCache(c HashCache) TreeOption {
	return func(t *Tree) { t.cache = c }
}

// WithLimiter sets the limiter used for sync calls.
func WithLimiter(l *AdaptiveLimiter) TreeOption {
	return func(t *Tree) { t.limiter = l }
}

// WithSyncWorkers bounds how many scopes are synced concurrently.
func WithSyncWorkers(n int) TreeOption {
	return func(t *Tree) { t.workers = n }
}

// NewTree returns an empty tree.
func NewTree(opts ...TreeOption) *Tree {
	t := &Tree{
		global:  make(map[commandKey]AppCommand),
		guilds:  make(map[string]map[commandKey]AppCommand),
		logger:  log.Logger,
		limiter: NewAdaptiveLimiter(5, 1, 20, 1, 0.5),
		cache:   NewMemoryHashCache(),
		workers: 4,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// AddOption scopes a registration.
type AddOption func(*addOptions)

type addOptions struct {
	guild     string
	guildSet  bool
	guilds    []string
	guildsSet bool
	override  bool
}

// Guild registers the command in a single guild.
func Guild(id string) AddOption {
	return func(o *addOptions) { o.guild, o.guildSet = id, true }
}

// Guilds registers the command in several guilds.
func Guilds(ids ...string) AddOption {
	return func(o *addOptions) { o.guilds, o.guildsSet = ids, true }
}

// Override replaces an existing command with the same name and type.
func Override() AddOption {
	return func(o *addOptions) { o.override = true }
}

// ScopeGuilds resolves the guild ids from Guild/Guilds options, falling back to
// the ids a command declares itself. nil means global.
func ScopeGuilds(declared []string, opts ...AddOption) ([]string, error) {
	var o addOptions
	for _, opt := range opts {
		opt(&o)
	}
	return o.scope(declared)
}

func (o *addOptions) scope(declared []string) ([]string, error) {
	if o.guildSet && o.guildsSet {
		return nil, ErrGuildScopeConflict
	}
	switch {
	case o.guildSet:
		if o.guild == "" {
			return nil, nil
		}
		return []string{o.guild}, nil
	case o.guildsSet:
		if len(o.guilds) == 0 {
			return nil, nil
		}
		return o.guilds, nil
	}
	if len(declared) == 0 {
		return nil, nil
	}
	return declared, nil
}

func scopeOf(c AppCommand) *Scope {
	switch v := c.(type) {
	case *Command:
		return &v.Scope
	case *ContextMenu:
		return &v.Scope
	case *Group:
		return &v.Scope
	}
	return nil
}

// AddCommand registers a top level command, context menu or group.
func (t *Tree) AddCommand(c AppCommand, opts ...AddOption) error {
	switch v := c.(type) {
	case *Command:
		if v.Parent != nil {
			return fmt.Errorf("command %q belongs to group %q: add the group instead", v.Name, v.Parent.Name)
		}
	case *Group:
		if v.Parent != nil {
			return fmt.Errorf("%w: %q", ErrGroupDepth, v.Name)
		}
	}

	var o addOptions
	for _, opt := range opts {
		opt(&o)
	}
	var declared []string
	if s := scopeOf(c); s != nil {
		declared = s.GuildIDs
	}
	guildIDs, err := o.scope(declared)
	if err != nil {
		return err
	}

	key := commandKey{c.CommandName(), c.CommandType()}

	t.mu.Lock()
	defer t.mu.Unlock()

	if guildIDs == nil {
		if _, exists := t.global[key]; exists && !o.override {
			return fmt.Errorf("%w: %q", ErrCommandExists, key.name)
		}
		t.global[key] = c
		return nil
	}

	for _, id := range guildIDs {
		if _, exists := t.guilds[id][key]; exists && !o.override {
			return fmt.Errorf("%w: %q in guild %s", ErrCommandExists, key.name, id)
		}
	}
	for _, id := range guildIDs {
		if t.guilds[id] == nil {
			t.guilds[id] = make(map[commandKey]AppCommand)
		}
		t.guilds[id][key] = c
	}
	return nil
}

// RemoveCommand unregisters a command from a scope and returns it.
func (t *Tree) RemoveCommand(name string, typ discordgo.ApplicationCommandType, guildID string) AppCommand {
	key := commandKey{name, typ}
	t.mu.Lock()
	defer t.mu.Unlock()
	m := t.global
	if guildID != "" {
		m = t.guilds[guildID]
	}
	c, ok := m[key]
	if !ok {
		return nil
	}
	delete(m, key)
	return c
}

// Get returns the command visible in a guild: guild scoped first, then global.
func (t *Tree) Get(name string, typ discordgo.ApplicationCommandType, guildID string) AppCommand {
	key := commandKey{name, typ}
	t.mu.RLock()
	defer t.mu.RUnlock()
	if guildID != "" {
		if c, ok := t.guilds[guildID][key]; ok {
			return c
		}
	}
	return t.global[key]
}

// Commands returns the commands of one scope sorted by type and name.
func (t *Tree) Commands(guildID string) []AppCommand {
	t.mu.RLock()
	m := t.global
	if guildID != "" {
		m = t.guilds[guildID]
	}
	list := make([]AppCommand, 0, len(m))
	for _, c := range m {
		list = append(list, c)
	}
	t.mu.RUnlock()

	sort.Slice(list, func(i, j int) bool {
		if list[i].CommandType() != list[j].CommandType() {
			return list[i].CommandType() < list[j].CommandType()
		}
		return list[i].CommandName() < list[j].CommandName()
	})
	return list
}

// Definitions returns the payloads of one scope.
func (t *Tree) Definitions(guildID string) []*discordgo.ApplicationCommand {
	cmds := t.Commands(guildID)
	defs := make([]*discordgo.ApplicationCommand, len(cmds))
	for i, c := range cmds {
		defs[i] = c.Definition()
	}
	return defs
}

// GuildIDs returns the guilds that have scoped commands.
func (t *Tree) GuildIDs() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	ids := make([]string, 0, len(t.guilds))
	for id := range t.guilds {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Use appends middlewares run around every invocation.
func (t *Tree) Use(mws ...Middleware) {
	t.mu.Lock()
	t.mws = append(t.mws, mws...)
	t.mu.Unlock()
}

// OnError sets the handler for errors of commands without their own handler.
func (t *Tree) OnError(fn ErrorCallback) {
	t.mu.Lock()
	t.onError = fn
	t.mu.Unlock()
}

// Logger returns the tree's logger.
func (t *Tree) Logger() zerolog.Logger { return t.logger }

// Handler returns a function for (*discordgo.Session).AddHandler.
func (t *Tree) Handler() func(*discordgo.Session, *discordgo.InteractionCreate) {
	return func(s *discordgo.Session, i *discordgo.InteractionCreate) {
		if err := t.Dispatch(context.Background(), s, i); err != nil {
			t.logger.Debug().Err(err).Msg("interaction finished with error")
		}
	}
}

// Dispatch routes one interaction. Errors are handed to the command's error
// handler (or the tree's) and also returned.
func (t *Tree) Dispatch(ctx context.Context, s Session, ev *discordgo.InteractionCreate) error {
	logger := t.logger.With().Str("dispatch", uuid.NewString()).Logger()
	ctx = logger.WithContext(ctx)
	it := NewInteraction(s, ev)

	switch ev.Type {
	case discordgo.InteractionApplicationCommand:
		data := ev.ApplicationCommandData()
		switch data.CommandType {
		case discordgo.ChatApplicationCommand:
			return t.dispatchChat(ctx, it, data)
		case discordgo.UserApplicationCommand, discordgo.MessageApplicationCommand:
			return t.dispatchMenu(ctx, it, data)
		}
	case discordgo.InteractionApplicationCommandAutocomplete:
		return t.dispatchAutocomplete(ctx, it, ev.ApplicationCommandData())
	}
	return nil
}

func (t *Tree) resolveChat(data discordgo.ApplicationCommandInteractionData, guildID string) (*Command, []*discordgo.ApplicationCommandInteractionDataOption, bool, error) {
	item := t.Get(data.Name, discordgo.ChatApplicationCommand, guildID)
	if item == nil {
		return nil, nil, false, fmt.Errorf("%w: %q", ErrUnknownCommand, data.Name)
	}
	guildOnly := scopeOf(item).GuildOnly
	opts := data.Options

	for {
		switch v := item.(type) {
		case *Command:
			return v, opts, guildOnly, nil
		case *Group:
			if len(opts) == 0 {
				return nil, nil, false, fmt.Errorf("%w: group %q invoked without subcommand", ErrUnknownCommand, v.Name)
			}
			child, ok := v.Child(opts[0].Name).(AppCommand)
			if !ok {
				return nil, nil, false, fmt.Errorf("%w: %q", ErrUnknownCommand, v.QualifiedName()+" "+opts[0].Name)
			}
			item, opts = child, opts[0].Options
		default:
			return nil, nil, false, fmt.Errorf("%w: %q", ErrUnknownCommand, data.Name)
		}
	}
}

func (t *Tree) dispatchChat(ctx context.Context, it *Interaction, data discordgo.ApplicationCommandInteractionData) error {
	cmd, opts, guildOnly, err := t.resolveChat(data, it.GuildID())
	if err != nil {
		t.logger.Warn().Err(err).Msg("unknown command")
		return err
	}
	callback, onError := cmd.handlers()

	inv := &Invocation{Name: cmd.QualifiedName(), Type: KindChatInput, Interaction: it, GuildOnly: guildOnly}
	err = t.invoke(ctx, inv, func(ctx context.Context, inv *Invocation) error {
		args, err := buildArgs(cmd, opts, data.Resolved)
		if err != nil {
			return err
		}
		return callback(ctx, it, args)
	})
	if err != nil {
		t.handleError(ctx, it, onError, err)
	}
	return err
}

func buildArgs(cmd *Command, opts []*discordgo.ApplicationCommandInteractionDataOption, resolved *discordgo.ApplicationCommandInteractionDataResolved) (Args, error) {
	byName := make(map[string]*discordgo.ApplicationCommandInteractionDataOption, len(opts))
	for _, o := range opts {
		byName[o.Name] = o
	}

	args := make(Args)
	for _, p := range cmd.Parameters() {
		if o, ok := byName[p.Name]; ok {
			v, err := p.Convert(o, resolved)
			if err != nil {
				return nil, err
			}
			args[p.Field] = v
			continue
		}
		if v, ok := p.Default.Get(); ok {
			args[p.Field] = v
			continue
		}
		if p.Required {
			return nil, fmt.Errorf("%w: %s", ErrMissingArgument, p.Name)
		}
	}
	return args, nil
}

func (t *Tree) dispatchMenu(ctx context.Context, it *Interaction, data discordgo.ApplicationCommandInteractionData) error {
	item := t.Get(data.Name, data.CommandType, it.GuildID())
	menu, ok := item.(*ContextMenu)
	if !ok {
		err := fmt.Errorf("%w: %q", ErrUnknownCommand, data.Name)
		t.logger.Warn().Err(err).Msg("unknown context menu")
		return err
	}
	callback, onError := menu.handlers()

	kind := KindUser
	if data.CommandType == discordgo.MessageApplicationCommand {
		kind = KindMessage
	}
	inv := &Invocation{Name: menu.Name, Type: kind, Interaction: it, GuildOnly: menu.GuildOnly}
	err := t.invoke(ctx, inv, func(ctx context.Context, inv *Invocation) error {
		return callback(ctx, it, menuTarget(data))
	})
	if err != nil {
		t.handleError(ctx, it, onError, err)
	}
	return err
}

func menuTarget(data discordgo.ApplicationCommandInteractionData) any {
	resolved := data.Resolved
	if resolved == nil {
		resolved = &discordgo.ApplicationCommandInteractionDataResolved{}
	}
	if data.CommandType == discordgo.MessageApplicationCommand {
		if m, ok := resolved.Messages[data.TargetID]; ok {
			return m
		}
		return &discordgo.Message{ID: data.TargetID}
	}
	return resolveUser(data.TargetID, resolved)
}

func (t *Tree) dispatchAutocomplete(ctx context.Context, it *Interaction, data discordgo.ApplicationCommandInteractionData) error {
	cmd, opts, guildOnly, err := t.resolveChat(data, it.GuildID())
	if err != nil {
		return err
	}

	var focused *discordgo.ApplicationCommandInteractionDataOption
	namespace := make(Args)
	for _, o := range opts {
		p := cmd.Parameter(o.Name)
		if p == nil {
			continue
		}
		v, err := p.Convert(o, data.Resolved)
		if err != nil {
			// Partial input is not validated by Discord yet.
			v = o.Value
		}
		namespace[p.Field] = v
		if o.Focused {
			focused = o
		}
	}

	var choices []*discordgo.ApplicationCommandOptionChoice
	if focused != nil {
		p := cmd.Parameter(focused.Name)
		if p.Autocomplete != nil {
			_, onError := cmd.handlers()
			inv := &Invocation{Name: cmd.QualifiedName(), Type: KindAutocomplete, Interaction: it, GuildOnly: guildOnly}
			err := t.invoke(ctx, inv, func(ctx context.Context, inv *Invocation) error {
				var err error
				choices, err = p.Autocomplete(ctx, it, namespace, namespace[p.Field])
				return err
			})
			if err != nil {
				t.handleError(ctx, it, onError, err)
				return err
			}
		}
	}

	if len(choices) > 25 {
		choices = choices[:25]
	}
	if choices == nil {
		choices = []*discordgo.ApplicationCommandOptionChoice{}
	}
	return it.Respond(&discordgo.InteractionResponse{
		Type: discordgo.InteractionApplicationCommandAutocompleteResult,
		Data: &discordgo.InteractionResponseData{Choices: choices},
	})
}

func (t *Tree) middlewares() []Middleware {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return append([]Middleware(nil), t.mws...)
}

// invoke runs h through the middlewares. Returned errors and panics come back
// as *InvokeError with a stack trace.
func (t *Tree) invoke(ctx context.Context, inv *Invocation, h Handler) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &InvokeError{Command: inv.Name, Err: errors.Errorf("panic: %v", r)}
		}
	}()
	if err := Apply(h, t.middlewares()...)(ctx, inv); err != nil {
		return &InvokeError{Command: inv.Name, Err: errors.WithStack(err)}
	}
	return nil
}

func (t *Tree) handleError(ctx context.Context, it *Interaction, onError ErrorCallback, err error) {
	if onError == nil {
		t.mu.RLock()
		onError = t.onError
		t.mu.RUnlock()
	}
	if onError == nil {
		zerolog.Ctx(ctx).Error().Msgf("%+v", err)
		return
	}

	defer func() {
		if r := recover(); r != nil {
			zerolog.Ctx(ctx).Error().Interface("panic", r).Msg("error handler panicked")
		}
	}()
	onError(ctx, it, err)
}

// Sync overwrites the commands of the global scope and of every guild with
// scoped commands, plus the extra guildIDs given (which clears guilds that no
// longer have commands). Scopes whose definitions did not change since the
// last sync are skipped.
func (t *Tree) Sync(ctx context.Context, s Session, appID string, guildIDs ...string) error {
	scopes := []string{""}
	seen := map[string]bool{"": true}
	for _, id := range append(t.GuildIDs(), guildIDs...) {
		if !seen[id] {
			seen[id] = true
			scopes = append(scopes, id)
		}
	}

	return parallel(ctx, scopes, t.workers, func(ctx context.Context, scope string) error {
		return t.syncScope(ctx, s, appID, scope)
	})
}

func (t *Tree) syncScope(ctx context.Context, s Session, appID, scope string) error {
	logger := t.logger.With().Str("scope", scopeName(scope)).Logger()
	defs := t.Definitions(scope)
	hash := hashCommands(defs)
	if cached, ok := t.cache.Load(scope); ok && cached == hash {
		logger.Debug().Int("commands", len(defs)).Msg("commands unchanged, skipping sync")
		return nil
	}

	if err := t.limiter.Wait(ctx); err != nil {
		return err
	}
	_, err := s.ApplicationCommandBulkOverwrite(appID, scope, defs)
	t.limiter.Observe(err)
	if err != nil {
		return fmt.Errorf("sync %s: %w", scopeName(scope), err)
	}
	if err := t.cache.Store(scope, hash); err != nil {
		logger.Warn().Err(err).Msg("failed to store command hash")
	}
	logger.Info().Int("commands", len(defs)).Msg("commands synced")
	return nil
}

func scopeName(scope string) string {
	if scope == "" {
		return "global"
	}
	return scope
}
