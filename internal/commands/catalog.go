// Package commands holds the declared commands of the example bot.
package commands

import (
	"github.com/keshon/classcmd/internal/config"
	"github.com/keshon/classcmd/internal/docs"
	"github.com/keshon/classcmd/pkg/appcmd"
	"github.com/keshon/classcmd/pkg/classcmd"
)

// Entry is a declaration and the category it is listed under.
type Entry struct {
	Decl     any
	Category string
}

// Catalog lists the top level declarations.
var Catalog = []Entry{
	{&Help{}, "🕯️ Information"},
	{&Ping{}, "🕯️ Information"},
	{&Color{}, "📢 Utilities"},
	{&Roll{}, "🎲 Gameplay"},
	{&Avatar{}, "🧰 Context"},
	{&Quote{}, "🧰 Context"},
}

// RandomGroup lists the subcommands of /random.
var RandomGroup = []any{&Coin{}, &Pick{}}

// Register declares every command on tree and prepares the help text. opts
// apply to every top level command. It returns the category of every command
// keyed by qualified name.
func Register(tree *classcmd.Tree, opts ...appcmd.AddOption) (map[string]string, error) {
	categories := make(map[string]string)
	for _, e := range Catalog {
		cmd, err := classcmd.Build(e.Decl)
		if err != nil {
			return nil, err
		}
		if err := tree.AddCommand(cmd, opts...); err != nil {
			return nil, err
		}
		categories[cmd.CommandName()] = e.Category
	}

	group, err := appcmd.NewGroup("random", "Random helpers", nil)
	if err != nil {
		return nil, err
	}
	for _, decl := range RandomGroup {
		cmd, err := classcmd.GroupCommand(group, decl)
		if err != nil {
			return nil, err
		}
		categories[cmd.QualifiedName()] = "🎲 Gameplay"
	}
	if err := tree.AddCommand(group, opts...); err != nil {
		return nil, err
	}

	setHelp(docs.Sections(tree.Tree, categories, config.CategoryWeights))
	return categories, nil
}
