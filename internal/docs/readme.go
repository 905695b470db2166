// Package docs renders the command list of a tree into README.md.
package docs

import (
	"bytes"
	"fmt"
	"os"
	"sort"
	"text/template"

	"github.com/bwmarrin/discordgo"
	"github.com/keshon/classcmd/pkg/appcmd"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// Entry is one listed command.
type Entry struct {
	Name        string
	Description string
	Category    string
}

// Entries flattens the commands of every scope of tree. Groups are replaced by
// their subcommands. categories is keyed by qualified name.
func Entries(tree *appcmd.Tree, categories map[string]string) []Entry {
	seen := make(map[string]bool)
	var out []Entry
	add := func(e Entry) {
		if seen[e.Name] {
			return
		}
		seen[e.Name] = true
		out = append(out, e)
	}

	scopes := append([]string{""}, tree.GuildIDs()...)
	for _, scope := range scopes {
		for _, c := range tree.Commands(scope) {
			switch v := c.(type) {
			case *appcmd.Command:
				add(Entry{Name: "/" + v.QualifiedName(), Description: v.Description, Category: categories[v.QualifiedName()]})
			case *appcmd.Group:
				for _, sub := range v.Commands() {
					add(Entry{Name: "/" + sub.QualifiedName(), Description: sub.Description, Category: categories[sub.QualifiedName()]})
				}
			case *appcmd.ContextMenu:
				desc := "User context menu"
				if v.Type == discordgo.MessageApplicationCommand {
					desc = "Message context menu"
				}
				add(Entry{Name: v.Name, Description: desc, Category: categories[v.Name]})
			}
		}
	}
	return out
}

// Sections renders the entries grouped by category, ordered by weight (lower
// first) and then by name.
func Sections(tree *appcmd.Tree, categories map[string]string, weights map[string]int) string {
	entries := Entries(tree, categories)
	sort.SliceStable(entries, func(i, j int) bool {
		wi, wj := weights[entries[i].Category], weights[entries[j].Category]
		if wi != wj {
			return wi < wj
		}
		if entries[i].Category != entries[j].Category {
			return entries[i].Category < entries[j].Category
		}
		return entries[i].Name < entries[j].Name
	})

	var buf bytes.Buffer
	current := ""
	for i, e := range entries {
		if i == 0 || e.Category != current {
			if i > 0 {
				buf.WriteString("\n")
			}
			current = e.Category
			cat := current
			if cat == "" {
				cat = "Other"
			}
			fmt.Fprintf(&buf, "### %s\n\n", cat)
		}
		fmt.Fprintf(&buf, "- **%s** - %s\n", e.Name, e.Description)
	}
	return buf.String()
}

// UpdateReadme renders tmplPath into outPath. The template gets the command
// list as {{.CommandSections}}.
func UpdateReadme(tree *appcmd.Tree, categories map[string]string, weights map[string]int, tmplPath, outPath string) error {
	tmpl, err := template.ParseFiles(tmplPath)
	if err != nil {
		return errors.Wrap(err, "parse readme template")
	}

	data := struct {
		CommandSections string
	}{
		CommandSections: Sections(tree, categories, weights),
	}

	var out bytes.Buffer
	if err := tmpl.Execute(&out, data); err != nil {
		return errors.Wrap(err, "render readme")
	}
	if err := os.WriteFile(outPath, out.Bytes(), 0o644); err != nil {
		return errors.Wrap(err, "write readme")
	}

	log.Info().Str("path", outPath).Msg("README updated with current commands")
	return nil
}
