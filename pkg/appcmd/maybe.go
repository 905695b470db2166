package appcmd

import (
	"fmt"
	"reflect"
)

// Maybe holds a value that may be absent. It replaces "unset" sentinels for
// defaults and optional parameters.
type Maybe[T any] struct {
	value T
	ok    bool
}

// Some returns a present Maybe.
func Some[T any](v T) Maybe[T] {
	return Maybe[T]{value: v, ok: true}
}

// None returns an absent Maybe.
func None[T any]() Maybe[T] {
	return Maybe[T]{}
}

// Get returns the value and whether it is present.
func (m Maybe[T]) Get() (T, bool) { return m.value, m.ok }

// Present reports whether a value is set.
func (m Maybe[T]) Present() bool { return m.ok }

// Or returns the value, or fallback when absent.
func (m Maybe[T]) Or(fallback T) T {
	if m.ok {
		return m.value
	}
	return fallback
}

func (m Maybe[T]) String() string {
	if !m.ok {
		return "None"
	}
	return fmt.Sprintf("Some(%v)", m.value)
}

// ElemType returns the reflect type of T.
func (Maybe[T]) ElemType() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}

// AnyValue returns the value as any, for reflection based callers.
func (m Maybe[T]) AnyValue() (any, bool) { return m.value, m.ok }

// SetAny stores v, which must be assignable or convertible to T.
func (m *Maybe[T]) SetAny(v any) error {
	if v == nil {
		*m = Maybe[T]{}
		return nil
	}
	if t, ok := v.(T); ok {
		*m = Some(t)
		return nil
	}
	rv := reflect.ValueOf(v)
	et := m.ElemType()
	if !rv.Type().ConvertibleTo(et) {
		return fmt.Errorf("cannot use %T as %s", v, et)
	}
	*m = Some(rv.Convert(et).Interface().(T))
	return nil
}

// Optional is implemented by *Maybe[T]. Reflection code uses it to detect and fill
// optional fields without knowing T.
type Optional interface {
	ElemType() reflect.Type
	AnyValue() (any, bool)
	SetAny(v any) error
}

var optionalType = reflect.TypeOf((*Optional)(nil)).Elem()

// OptionalElem reports whether t is a Maybe type and returns its element type.
func OptionalElem(t reflect.Type) (reflect.Type, bool) {
	if t.Kind() == reflect.Pointer || !reflect.PointerTo(t).Implements(optionalType) {
		return nil, false
	}
	return reflect.New(t).Interface().(Optional).ElemType(), true
}

// Assign stores v into dst, unwrapping Maybe fields and converting between
// compatible kinds (e.g. int64 into int32).
func Assign(dst reflect.Value, v any) error {
	if opt, ok := dst.Addr().Interface().(Optional); ok {
		return opt.SetAny(v)
	}
	if v == nil {
		dst.Set(reflect.Zero(dst.Type()))
		return nil
	}
	rv := reflect.ValueOf(v)
	switch {
	case rv.Type().AssignableTo(dst.Type()):
		dst.Set(rv)
	case rv.Type().ConvertibleTo(dst.Type()):
		dst.Set(rv.Convert(dst.Type()))
	default:
		return fmt.Errorf("cannot assign %T to %s", v, dst.Type())
	}
	return nil
}

// Value returns the plain value held by a field, unwrapping Maybe. Absent Maybe
// values report ok=false.
func Value(field reflect.Value) (any, bool) {
	if field.CanAddr() {
		if opt, ok := field.Addr().Interface().(Optional); ok {
			return opt.AnyValue()
		}
	}
	return field.Interface(), true
}
