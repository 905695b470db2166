package classcmd

import (
	"github.com/keshon/classcmd/pkg/appcmd"
)

// Tree is an appcmd.Tree that also accepts declarations.
type Tree struct {
	*appcmd.Tree
}

// NewTree returns an empty tree.
func NewTree(opts ...appcmd.TreeOption) *Tree {
	return &Tree{Tree: appcmd.NewTree(opts...)}
}

// Command builds a slash command from a callback or declaration and adds it to
// the tree. Subcommands (Parent option) are attached to their group instead.
func (t *Tree) Command(src any, opts ...BuildOption) (*appcmd.Command, error) {
	cmd, err := Command(src, opts...)
	if err != nil {
		return nil, err
	}
	if cmd.Parent != nil {
		return cmd, nil
	}
	if err := t.AddCommand(cmd); err != nil {
		return nil, err
	}
	return cmd, nil
}

// ContextMenu builds a context menu and adds it to the tree.
func (t *Tree) ContextMenu(src any, opts ...BuildOption) (*appcmd.ContextMenu, error) {
	menu, err := ContextMenu(src, opts...)
	if err != nil {
		return nil, err
	}
	if err := t.AddCommand(menu); err != nil {
		return nil, err
	}
	return menu, nil
}

// Declare adds declarations of any kind.
func (t *Tree) Declare(decls ...any) error {
	for _, d := range decls {
		cmd, err := Build(d)
		if err != nil {
			return err
		}
		if err := t.AddCommand(cmd); err != nil {
			return err
		}
	}
	return nil
}
