package classcmd

import (
	"context"
	"reflect"
	"strings"
	"sync"

	"github.com/bwmarrin/discordgo"
	"github.com/keshon/classcmd/pkg/appcmd"
)

// recorder keeps the instances callbacks ran on.
type recorder struct {
	mu    sync.Mutex
	calls []any
}

func (r *recorder) add(v any) {
	r.mu.Lock()
	r.calls = append(r.calls, v)
	r.mu.Unlock()
}

func (r *recorder) reset() {
	r.mu.Lock()
	r.calls = nil
	r.mu.Unlock()
}

func (r *recorder) all() []any {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]any(nil), r.calls...)
}

var calls recorder

type Add struct {
	SlashCommand

	A int
	B int
}

func (Add) Options() map[string]Option {
	return map[string]Option{"B": Default(5)}
}

func (c *Add) Callback(ctx context.Context) error {
	calls.add(c)
	return nil
}

type Mixed struct {
	SlashCommand

	First  Maybe[string]
	Second string
	Third  int `default:"3"`
	Fourth bool
	Fifth  float64 `name:"fifth_value"`
}

func (c *Mixed) Callback(ctx context.Context) error { return nil }

type Renamed struct {
	SlashCommand

	Query string
}

func (Renamed) Options() map[string]Option {
	return map[string]Option{
		"Query":   {Name: "search", Description: "What to look for"},
		"Missing": {Name: "ignored"},
	}
}

func (c *Renamed) Callback(ctx context.Context) error {
	calls.add(c.Query)
	return nil
}

type Plain struct {
	SlashCommand

	Value string
}

func (c *Plain) Callback(ctx context.Context) error { return nil }

type Untyped struct {
	SlashCommand

	Thing any
}

func (c *Untyped) Callback(ctx context.Context) error { return nil }

type TooMany struct {
	UserCommand

	Extra string
}

func (c *TooMany) Callback(ctx context.Context) error { return nil }

type Inspect struct {
	UserCommand
}

func (c *Inspect) Callback(ctx context.Context) error {
	calls.add(c)
	return nil
}

type QuoteMessage struct {
	MessageCommand `name:"Quote"`
}

func (c *QuoteMessage) Callback(ctx context.Context) error {
	calls.add(c.Target)
	return nil
}

type DescribedMenu struct {
	UserCommand `description:"menus have none"`
}

func (c *DescribedMenu) Callback(ctx context.Context) error { return nil }

type Fruit string

func (Fruit) Choices() []*discordgo.ApplicationCommandOptionChoice {
	return []*discordgo.ApplicationCommandOptionChoice{
		{Name: "Apple", Value: "apple"},
		{Name: "Pear", Value: "pear"},
	}
}

type Order struct {
	SlashCommand `name:"order" description:"Order something" guild_only:"true" permissions:"8"`

	Item     string `autocomplete:"true"`
	Shop     string `autocomplete:"true"`
	Quantity int    `min:"1" max:"10"`
	Kind     Fruit
	Size     string `choices:"Small=s,Large=l"`
	Note     any    `type:"Optional[Text]"`
	Where    *discordgo.Channel `channels:"text,forum"`
	Internal string             `cmd:"-"`
	Hook     func()
	hidden   int
}

func (Order) Types() map[string]reflect.Type {
	return map[string]reflect.Type{"Text": reflect.TypeOf("")}
}

func (c *Order) Callback(ctx context.Context) error {
	calls.add(c)
	return nil
}

func (c *Order) Autocomplete(ctx context.Context, focused string) ([]*discordgo.ApplicationCommandOptionChoice, error) {
	return []*discordgo.ApplicationCommandOptionChoice{Choice("focused", focused)}, nil
}

type Documented struct {
	SlashCommand

	Count  int
	Reason Maybe[string]
}

func (Documented) Doc() string {
	return `Count things in the current channel.

	Args:
	    Count (int): How many things
	        to count.
	    reason: Why you are counting.
	`
}

func (c *Documented) Callback(ctx context.Context) error { return nil }

type Failing struct {
	SlashCommand

	Fail bool
}

var errFailing = &failure{}

type failure struct{}

func (*failure) Error() string { return "failing on purpose" }

func (c *Failing) Callback(ctx context.Context) error {
	if c.Fail {
		return errFailing
	}
	return nil
}

func (c *Failing) OnError(ctx context.Context, err error) {
	calls.add(err)
	calls.add(c.Fail)
}

type shared struct {
	Verbose bool
}

type Embedded struct {
	SlashCommand
	shared

	Target string
}

func (c *Embedded) Callback(ctx context.Context) error {
	calls.add(c)
	return nil
}

type Twice struct {
	SlashCommand
	UserCommand
}

func (c *Twice) Callback(ctx context.Context) error { return nil }

func newTestInteraction() *appcmd.Interaction {
	return appcmd.NewInteraction(nil, &discordgo.InteractionCreate{Interaction: &discordgo.Interaction{
		ID:      "1",
		Type:    discordgo.InteractionApplicationCommand,
		GuildID: "g",
		Data:    discordgo.ApplicationCommandInteractionData{ID: "cmd-1", Name: "add"},
	}})
}

type Clash struct {
	SlashCommand

	A string
	B string
}

func (Clash) Options() map[string]Option {
	return map[string]Option{"B": {Name: "a"}}
}

func (c *Clash) Callback(ctx context.Context) error { return nil }

type WordDefault struct {
	SlashCommand

	A int
	B int
}

func (WordDefault) Options() map[string]Option {
	return map[string]Option{"B": Default("five")}
}

func (c *WordDefault) Callback(ctx context.Context) error { return nil }

type NumberDefault struct {
	SlashCommand

	Letter string
}

func (NumberDefault) Options() map[string]Option {
	return map[string]Option{"Letter": Default(int64(65))}
}

func (c *NumberDefault) Callback(ctx context.Context) error { return nil }

type Scaled struct {
	SlashCommand

	Factor float64
	Level  int8
}

func (Scaled) Options() map[string]Option {
	levels := []*discordgo.ApplicationCommandOptionChoice{Choice("Low", 1), Choice("High", int64(100))}
	return map[string]Option{
		"Factor": Default(2),
		"Level":  {Choices: levels},
	}
}

func (c *Scaled) Callback(ctx context.Context) error { return nil }

type StringChoices struct {
	SlashCommand

	Level int
}

func (StringChoices) Options() map[string]Option {
	return map[string]Option{
		"Level": {Choices: []*discordgo.ApplicationCommandOptionChoice{Choice("One", "1")}},
	}
}

func (c *StringChoices) Callback(ctx context.Context) error { return nil }

type OverflowChoices struct {
	SlashCommand

	Level int8
}

func (OverflowChoices) Options() map[string]Option {
	return map[string]Option{
		"Level": {Choices: []*discordgo.ApplicationCommandOptionChoice{Choice("Max", 300)}},
	}
}

func (c *OverflowChoices) Callback(ctx context.Context) error { return nil }

type Wordy struct {
	SlashCommand

	Text string
}

func (Wordy) Options() map[string]Option {
	return map[string]Option{
		"Text": {Description: "Kept as written.\n\nEven the second paragraph."},
	}
}

func (c *Wordy) Callback(ctx context.Context) error { return nil }

type Rambling struct {
	SlashCommand

	Note string
}

func (Rambling) Options() map[string]Option {
	return map[string]Option{"Note": {Description: strings.Repeat("long ", 30)}}
}

func (c *Rambling) Callback(ctx context.Context) error { return nil }
