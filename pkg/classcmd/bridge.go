package classcmd

import (
	"context"
	"fmt"
	"reflect"

	"github.com/bwmarrin/discordgo"
	"github.com/keshon/classcmd/pkg/appcmd"
)

// placeholder stands in for the callback until the synthesized one is set.
func placeholder(context.Context, *appcmd.Interaction, appcmd.Args) error { return nil }

// instance allocates a fresh declaration for one interaction.
func (s *synthesis) instance(it *appcmd.Interaction, target any) (reflect.Value, Declaration) {
	v := reflect.New(s.decl)
	v.Elem().Field(s.baseIndex).Addr().Interface().(binder).bind(it, target)
	return v, v.Interface().(Declaration)
}

// keyword runs Callback with the arguments set on their fields.
func (s *synthesis) keyword(ctx context.Context, it *appcmd.Interaction, args appcmd.Args) error {
	v, decl := s.instance(it, nil)
	elem := v.Elem()
	for field, value := range args {
		index, ok := s.index[field]
		if !ok {
			continue
		}
		if err := appcmd.Assign(elem.FieldByIndex(index), value); err != nil {
			return fmt.Errorf("%w: %s: %v", appcmd.ErrBadArgument, field, err)
		}
	}
	return decl.Callback(ctx)
}

// target runs Callback of a context menu declaration.
func (s *synthesis) target(ctx context.Context, it *appcmd.Interaction, target any) error {
	_, decl := s.instance(it, target)
	return decl.Callback(ctx)
}

// onError hands err to OnError of a new instance. The instance that failed is
// gone by now.
func (s *synthesis) onError(ctx context.Context, it *appcmd.Interaction, err error) {
	_, decl := s.instance(it, nil)
	decl.OnError(ctx, err)
}

// autocomplete fills the fields from the options typed so far, then calls
// Autocomplete with the first field, in declaration order, whose value equals
// current. Without a match there are no suggestions.
func (s *synthesis) autocomplete(ctx context.Context, it *appcmd.Interaction, namespace appcmd.Args, current any) ([]*discordgo.ApplicationCommandOptionChoice, error) {
	v, decl := s.instance(it, nil)
	ac, ok := decl.(autocompleter)
	if !ok {
		return []*discordgo.ApplicationCommandOptionChoice{}, nil
	}

	elem := v.Elem()
	for _, b := range s.fields {
		if value, ok := namespace[b.field]; ok {
			// Unvalidated input may not fit the field; it then stays unset.
			_ = appcmd.Assign(elem.FieldByIndex(b.index), value)
		}
	}

	for _, b := range s.fields {
		if _, ok := namespace[b.field]; !ok {
			continue
		}
		got, ok := appcmd.Value(elem.FieldByIndex(b.index))
		if ok && reflect.DeepEqual(got, current) {
			return ac.Autocomplete(ctx, b.field)
		}
	}
	return []*discordgo.ApplicationCommandOptionChoice{}, nil
}
