package classcmd

import (
	"errors"
	"fmt"
)

var (
	ErrMissingAnnotation      = errors.New("annotation must be given")
	ErrUnresolvedType         = errors.New("unknown type expression")
	ErrAnnotationMismatch     = errors.New("annotation does not fit the field")
	ErrTargetParameters       = errors.New("context menu commands must take exactly one argument")
	ErrContextMenuDescription = errors.New("context menu commands cannot have a description or parent")
	ErrNotCommandSource       = errors.New("expected a callback function or a command declaration")
	ErrNoBase                 = errors.New("declaration must embed exactly one of SlashCommand, UserCommand or MessageCommand")
	ErrBadTag                 = errors.New("malformed tag")
)

// ConfigError reports a declaration that cannot be turned into a command.
type ConfigError struct {
	Declaration string
	Field       string
	Err         error
}

func (e *ConfigError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("command %s, field %s: %v", e.Declaration, e.Field, e.Err)
	}
	return fmt.Sprintf("command %s: %v", e.Declaration, e.Err)
}

func (e *ConfigError) Unwrap() error { return e.Err }
