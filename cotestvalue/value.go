// Package cotestvalue provides the boxed-value type cotest uses to carry
// mock-call arguments and return values between a coroutine and the
// scheduler.
//
// Other boxed-value designs wrap values in a protobuf wire Any because
// they cross a network boundary and may later durably resume from them.
// Cotest has no such boundary — everything lives in one process for the
// lifetime of one test — so Value simply retains the native Go value and
// uses reflection plus go-cmp for structural comparisons instead.
package cotestvalue

import (
	"fmt"
	"reflect"

	"github.com/google/go-cmp/cmp"
)

// Value is a boxed argument or return value of unknown static type at the
// point it is stored, recovered with a known type at the point it is read.
type Value struct {
	v     any
	boxed bool
}

// Nil is the Value representing an absent/void value.
func Nil() Value { return Value{} }

// Of boxes a Go value.
func Of(v any) Value { return Value{v: v, boxed: true} }

// Present reports whether the value holds anything (false for Nil, and
// for a void return).
func (b Value) Present() bool { return b.boxed }

// Interface returns the boxed value as an any.
func (b Value) Interface() any { return b.v }

// Unmarshal copies the boxed value into *out. out must be a non-nil
// pointer; the boxed value must be assignable or convertible to its
// pointee type, or Unmarshal returns an error describing the mismatch.
func (b Value) Unmarshal(out any) error {
	rv := reflect.ValueOf(out)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		panic("cotestvalue: Unmarshal expects a non-nil pointer")
	}
	if !b.boxed {
		return fmt.Errorf("cotestvalue: value is absent")
	}
	elem := rv.Elem()
	src := reflect.ValueOf(b.v)
	if !src.IsValid() {
		elem.SetZero()
		return nil
	}
	if !src.Type().AssignableTo(elem.Type()) {
		if src.Type().ConvertibleTo(elem.Type()) {
			elem.Set(src.Convert(elem.Type()))
			return nil
		}
		return fmt.Errorf("cotestvalue: cannot unmarshal %s into %s", src.Type(), elem.Type())
	}
	elem.Set(src)
	return nil
}

// String is a human-readable representation, used in diagnostics.
func (b Value) String() string {
	if !b.boxed {
		return "<absent>"
	}
	return fmt.Sprintf("%v", b.v)
}

// Equal reports whether two Values hold structurally equal Go values,
// via go-cmp. It is the default argument matcher used by watches and
// WaitFor* interior filters when the caller supplies a literal argument
// rather than a Matcher.
func Equal(a, b Value) bool {
	if a.boxed != b.boxed {
		return false
	}
	if !a.boxed {
		return true
	}
	return cmp.Equal(a.v, b.v)
}

// TypeOf returns the reflect.Type of the boxed value, or nil if absent.
func (b Value) TypeOf() reflect.Type {
	if !b.boxed {
		return nil
	}
	return reflect.TypeOf(b.v)
}
