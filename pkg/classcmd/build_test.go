package classcmd

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/keshon/classcmd/pkg/appcmd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustCommand(t *testing.T, src any, opts ...BuildOption) *appcmd.Command {
	t.Helper()
	cmd, err := Command(src, opts...)
	require.NoError(t, err)
	return cmd
}

func names(params []*appcmd.Parameter) []string {
	out := make([]string, len(params))
	for i, p := range params {
		out[i] = p.Name
	}
	return out
}

func TestRequiredBeforeOptional(t *testing.T) {
	cmd := mustCommand(t, Mixed{})
	params := cmd.Parameters()

	assert.Equal(t, []string{"second", "fourth", "fifth_value", "first", "third"}, names(params))
	seenOptional := false
	for _, p := range params {
		if !p.Required {
			seenOptional = true
			continue
		}
		assert.False(t, seenOptional, "required %s after an optional parameter", p.Name)
	}
}

func TestAddSignature(t *testing.T) {
	cmd := mustCommand(t, &Add{})
	params := cmd.Parameters()

	require.Equal(t, []string{"a", "b"}, names(params))
	assert.True(t, params[0].Required)
	assert.False(t, params[1].Required)
	def, ok := params[1].Default.Get()
	require.True(t, ok)
	assert.Equal(t, 5, def)
	assert.Equal(t, "add", cmd.Name)
}

func TestRenameKeepsField(t *testing.T) {
	cmd := mustCommand(t, Renamed{})
	p := cmd.Parameter("search")
	require.NotNil(t, p)
	assert.Equal(t, "Query", p.Field)
	assert.Equal(t, "What to look for", p.Description)
	assert.Nil(t, cmd.Parameter("ignored"))

	tree := NewTree(appcmd.WithLogger(discardLogger()))
	require.NoError(t, tree.AddCommand(cmd))

	calls.reset()
	ev := chatEvent("renamed", option("search", discordgo.ApplicationCommandOptionString, "cats"))
	require.NoError(t, tree.Dispatch(context.Background(), newFakeSession(), ev))
	assert.Equal(t, []any{"cats"}, calls.all())
}

func TestPlaceholderDescriptions(t *testing.T) {
	cmd := mustCommand(t, Plain{})
	assert.Equal(t, "…", cmd.Description)
	assert.Equal(t, "…", cmd.Parameter("value").Description)
}

func TestTargetCommandRejectsParameters(t *testing.T) {
	cmd, err := Build(TooMany{})
	assert.Nil(t, cmd)
	assert.ErrorIs(t, err, ErrTargetParameters)

	var cfg *ConfigError
	require.ErrorAs(t, err, &cfg)
	assert.Equal(t, "TooMany", cfg.Declaration)
}

func TestMissingAnnotation(t *testing.T) {
	_, err := Build(Untyped{})
	require.ErrorIs(t, err, ErrMissingAnnotation)

	var cfg *ConfigError
	require.ErrorAs(t, err, &cfg)
	assert.Equal(t, "Thing", cfg.Field)
	assert.Equal(t, "Untyped", cfg.Declaration)
	assert.Contains(t, err.Error(), "Thing")
}

func TestContextMenus(t *testing.T) {
	menu, err := ContextMenu(Inspect{})
	require.NoError(t, err)
	assert.Equal(t, "Inspect", menu.Name)
	assert.Equal(t, discordgo.UserApplicationCommand, menu.Type)

	menu, err = ContextMenu(&QuoteMessage{})
	require.NoError(t, err)
	assert.Equal(t, "Quote", menu.Name)
	assert.Equal(t, discordgo.MessageApplicationCommand, menu.Type)

	_, err = ContextMenu(DescribedMenu{})
	assert.ErrorIs(t, err, ErrContextMenuDescription)

	g, _ := appcmd.NewGroup("tools", "Tools", nil)
	_, err = ContextMenu(Inspect{}, Parent(g))
	assert.ErrorIs(t, err, ErrContextMenuDescription)

	_, err = ContextMenu(Inspect{}, Description("nope"))
	assert.ErrorIs(t, err, ErrContextMenuDescription)

	_, err = Command(Inspect{})
	assert.ErrorIs(t, err, ErrNotCommandSource)
	_, err = ContextMenu(Plain{})
	assert.ErrorIs(t, err, ErrNotCommandSource)
}

func TestNotCommandSource(t *testing.T) {
	for _, src := range []any{42, "ping", nil, struct{}{}, func() {}} {
		_, err := Command(src)
		assert.ErrorIs(t, err, ErrNotCommandSource, "%T", src)
	}
	_, err := ContextMenu(42)
	assert.ErrorIs(t, err, ErrNotCommandSource)
}

func TestAmbiguousBase(t *testing.T) {
	_, err := collect(reflect.TypeOf(Twice{}))
	assert.ErrorIs(t, err, ErrNoBase)
}

func TestOrderMetadata(t *testing.T) {
	cmd := mustCommand(t, Order{})
	def := cmd.Definition()

	assert.Equal(t, "order", def.Name)
	assert.Equal(t, "Order something", def.Description)
	require.NotNil(t, def.DMPermission)
	assert.False(t, *def.DMPermission)
	assert.Equal(t, int64(8), *def.DefaultMemberPermissions)

	assert.Equal(t, []string{"item", "shop", "quantity", "kind", "size", "where", "note"}, names(cmd.Parameters()))

	item := cmd.Parameter("item")
	assert.NotNil(t, item.Autocomplete)
	assert.Nil(t, cmd.Parameter("quantity").Autocomplete)

	qty := cmd.Parameter("quantity")
	assert.Equal(t, 1.0, *qty.MinValue)
	assert.Equal(t, 10.0, *qty.MaxValue)

	kind := cmd.Parameter("kind")
	require.Len(t, kind.Choices, 2)
	assert.Equal(t, "apple", kind.Choices[0].Value)

	size := cmd.Parameter("size")
	require.Len(t, size.Choices, 2)
	assert.Equal(t, "Large", size.Choices[1].Name)
	assert.Equal(t, "l", size.Choices[1].Value)

	note := cmd.Parameter("note")
	assert.False(t, note.Required)
	assert.Equal(t, discordgo.ApplicationCommandOptionString, note.Type)

	where := cmd.Parameter("where")
	assert.Equal(t, []discordgo.ChannelType{discordgo.ChannelTypeGuildText, discordgo.ChannelTypeGuildForum}, where.ChannelTypes)

	assert.Nil(t, cmd.Parameter("internal"))
	assert.Nil(t, cmd.Parameter("hook"))
	assert.Nil(t, cmd.Parameter("hidden"))
}

func TestDocDescriptions(t *testing.T) {
	cmd := mustCommand(t, Documented{})
	assert.Equal(t, "Count things in the current channel.", cmd.Description)
	assert.Equal(t, "How many things to count.", cmd.Parameter("count").Description)
	assert.Equal(t, "Why you are counting.", cmd.Parameter("reason").Description)
}

func TestEmbeddedFields(t *testing.T) {
	cmd := mustCommand(t, Embedded{})
	assert.Equal(t, []string{"verbose", "target"}, names(cmd.Parameters()))
}

func TestBuildOptions(t *testing.T) {
	cmd := mustCommand(t, Plain{}, Name("simple"), Description("Plain text"), Guilds("1", "2"), DefaultPermissions(4), NSFW())
	assert.Equal(t, "simple", cmd.Name)
	assert.Equal(t, "Plain text", cmd.Description)
	assert.Equal(t, []string{"1", "2"}, cmd.GuildIDs)
	assert.True(t, cmd.NSFW)
	assert.Equal(t, int64(4), *cmd.DefaultPermissions)

	_, err := Command(Plain{}, Guild("1"), Guilds("2"))
	assert.ErrorIs(t, err, appcmd.ErrGuildScopeConflict)
}

func TestGroupCommand(t *testing.T) {
	g, err := appcmd.NewGroup("math", "Math", nil)
	require.NoError(t, err)

	cmd, err := GroupCommand(g, Add{})
	require.NoError(t, err)
	assert.Same(t, g, cmd.Parent)
	assert.Equal(t, "math add", cmd.QualifiedName())
	assert.Equal(t, []*appcmd.Command{cmd}, g.Commands())
}

func pingCommand(context.Context, *appcmd.Interaction, appcmd.Args) error { return nil }

func reportUser(context.Context, *appcmd.Interaction, *discordgo.User) error { return nil }

func TestFunctionSources(t *testing.T) {
	cmd := mustCommand(t, pingCommand)
	assert.Equal(t, "ping-command", cmd.Name)
	assert.Equal(t, "…", cmd.Description)

	cmd = mustCommand(t, appcmd.CommandCallback(pingCommand), Name("ping"), Description("Pong"))
	assert.Equal(t, "ping", cmd.Name)

	_, err := Command(func(context.Context, *appcmd.Interaction, appcmd.Args) error { return nil })
	assert.ErrorIs(t, err, appcmd.ErrInvalidName)

	menu, err := ContextMenu(reportUser)
	require.NoError(t, err)
	assert.Equal(t, "Report User", menu.Name)
	assert.Equal(t, discordgo.UserApplicationCommand, menu.Type)

	_, err = ContextMenu(reportUser, Description("x"))
	assert.ErrorIs(t, err, ErrContextMenuDescription)
}

func TestNewGeneric(t *testing.T) {
	cmd, err := New[Add]()
	require.NoError(t, err)
	assert.Equal(t, "add", cmd.CommandName())

	assert.Panics(t, func() { MustNew[Untyped]() })
}

func TestSynthesisIsIdempotent(t *testing.T) {
	for _, decl := range []any{Order{}, Mixed{}, Add{}, Documented{}} {
		first := mustCommand(t, decl)
		second := mustCommand(t, decl)

		assert.Equal(t, appcmd.HashCommand(first.Definition()), appcmd.HashCommand(second.Definition()))
		assert.Equal(t, first.Definition(), second.Definition())

		a, b := first.Parameters(), second.Parameters()
		require.Equal(t, len(a), len(b))
		for i := range a {
			assert.Equal(t, a[i].Autocomplete == nil, b[i].Autocomplete == nil)
			pa, pb := *a[i], *b[i]
			pa.Autocomplete, pb.Autocomplete = nil, nil
			assert.Equal(t, pa, pb)
		}
	}
}

func TestBadTags(t *testing.T) {
	type badDefault struct {
		SlashCommand
		N int `default:"many"`
	}
	_, err := collectAndSynthesize(reflect.TypeOf(badDefault{}))
	assert.ErrorIs(t, err, ErrBadTag)

	type badType struct {
		SlashCommand
		N int `type:"Mystery"`
	}
	_, err = collectAndSynthesize(reflect.TypeOf(badType{}))
	assert.ErrorIs(t, err, ErrUnresolvedType)

	type mismatch struct {
		SlashCommand
		N int `type:"string"`
	}
	_, err = collectAndSynthesize(reflect.TypeOf(mismatch{}))
	assert.ErrorIs(t, err, ErrAnnotationMismatch)

	type badChannels struct {
		SlashCommand
		C *discordgo.Channel `channels:"basement"`
	}
	_, err = collect(reflect.TypeOf(badChannels{}))
	assert.ErrorIs(t, err, ErrBadTag)

	type conflict struct {
		SlashCommand `guild:"1" guilds:"2,3"`
	}
	_, err = collectAndSynthesize(reflect.TypeOf(conflict{}))
	assert.True(t, errors.Is(err, appcmd.ErrGuildScopeConflict))
}

func collectAndSynthesize(t reflect.Type) (*synthesis, error) {
	c, err := collect(t)
	if err != nil {
		return nil, err
	}
	return synthesize(c, newBuildOptions(nil))
}

func TestResolverCache(t *testing.T) {
	r := newResolver(reflect.TypeOf(Order{}))
	first, err := r.resolve("Text")
	require.NoError(t, err)
	assert.Equal(t, reflect.TypeOf(""), first.typ)

	_, err = r.resolve("Optional[user]")
	require.NoError(t, err)
	assert.Len(t, r.cache, 2)
	assert.True(t, r.cache["Optional[user]"].optional)

	r.local["Text"] = reflect.TypeOf(0)
	again, _ := r.resolve("Text")
	assert.Equal(t, first, again)
}

func TestDuplicateParameterNames(t *testing.T) {
	_, err := Build(Clash{})
	require.Error(t, err)
	assert.ErrorIs(t, err, appcmd.ErrDuplicateParameter)

	var cfg *ConfigError
	require.ErrorAs(t, err, &cfg)
	assert.Equal(t, "Clash", cfg.Declaration)
}

func TestOptionDefaultsMatchType(t *testing.T) {
	_, err := Build(WordDefault{})
	assert.ErrorIs(t, err, ErrAnnotationMismatch)

	_, err = Build(NumberDefault{})
	assert.ErrorIs(t, err, ErrAnnotationMismatch)

	cmd := mustCommand(t, Scaled{})
	v, ok := cmd.Parameter("factor").Default.Get()
	require.True(t, ok)
	assert.Equal(t, 2, v)
	assert.Len(t, cmd.Parameter("level").Choices, 2)
}

func TestOptionChoicesMatchType(t *testing.T) {
	_, err := Build(StringChoices{})
	assert.ErrorIs(t, err, ErrAnnotationMismatch)

	_, err = Build(OverflowChoices{})
	assert.ErrorIs(t, err, ErrAnnotationMismatch)
	assert.ErrorIs(t, err, appcmd.ErrValueMismatch)
}

func TestExplicitDescriptionsAreKept(t *testing.T) {
	cmd := mustCommand(t, Wordy{})
	assert.Equal(t, "Kept as written.\n\nEven the second paragraph.", cmd.Parameter("text").Description)

	_, err := Build(Rambling{})
	assert.ErrorIs(t, err, appcmd.ErrInvalidDescription)
}
