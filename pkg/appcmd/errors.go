package appcmd

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidName         = errors.New("invalid command name")
	ErrInvalidDescription  = errors.New("invalid command description")
	ErrTooManyParameters   = errors.New("too many parameters")
	ErrTooManyChoices      = errors.New("too many choices")
	ErrChoicesAutocomplete = errors.New("parameter cannot have both choices and autocomplete")
	ErrParametersSet       = errors.New("parameters already set")
	ErrDuplicateParameter  = errors.New("duplicate parameter name")
	ErrUnsupportedType     = errors.New("unsupported parameter type")
	ErrGuildScopeConflict  = errors.New("cannot mix Guild and Guilds")
	ErrCommandExists       = errors.New("command already registered")
	ErrGroupDepth          = errors.New("groups can only be nested one level deep")
	ErrUnknownCommand      = errors.New("unknown command")
	ErrMissingArgument     = errors.New("missing required argument")
	ErrBadArgument         = errors.New("bad argument")
	ErrValueMismatch       = errors.New("value does not fit the parameter type")
	ErrNoCallback          = errors.New("callback is required")
)

// InvokeError wraps an error returned (or a panic raised) by a command callback.
// The wrapped error carries a stack trace.
type InvokeError struct {
	Command string
	Err     error
}

func (e *InvokeError) Error() string {
	return fmt.Sprintf("command %q raised an error: %v", e.Command, e.Err)
}

func (e *InvokeError) Unwrap() error { return e.Err }

// Format prints the stack of the wrapped error with %+v.
func (e *InvokeError) Format(s fmt.State, verb rune) {
	if verb == 'v' && s.Flag('+') {
		fmt.Fprintf(s, "command %q raised an error: %+v", e.Command, e.Err)
		return
	}
	fmt.Fprint(s, e.Error())
}
