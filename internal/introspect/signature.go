// Package introspect describes plugin constructors and methods: their
// argument structs, the parameters those structs declare, and the help
// text attached to them.
package introspect

import (
	"context"
	"encoding"
	"errors"
	"fmt"
	"reflect"
	"sort"
)

// ErrUnsupportedSignature marks callables the CLI cannot describe. It is
// a defect in the plugin, reported when the CLI is built.
var ErrUnsupportedSignature = errors.New("unsupported signature")

var (
	contextType         = reflect.TypeOf((*context.Context)(nil)).Elem()
	errorType           = reflect.TypeOf((*error)(nil)).Elem()
	textUnmarshalerType = reflect.TypeOf((*encoding.TextUnmarshaler)(nil)).Elem()
)

// Methods that describe or present a plugin rather than operate on it.
// They never become subcommands.
const (
	DocMethod    = "Doc"
	StringMethod = "String"
)

// Signature is the shape of a constructor or method
type Signature struct {
	// Context is set when the callable takes a leading context.Context.
	Context bool
	// Args is the struct type holding the parameters, nil when the
	// callable takes none.
	Args reflect.Type
	// Result is set when the callable returns a value besides an error.
	Result bool
	// Error is set when the last return value is an error.
	Error bool
}

// Analyze inspects a function type. When receiver is true the first
// input is a method receiver and is skipped.
func Analyze(fnType reflect.Type, receiver bool) (*Signature, error) {
	if fnType.Kind() != reflect.Func {
		return nil, fmt.Errorf("%w: %s is not a function", ErrUnsupportedSignature, fnType)
	}
	if fnType.IsVariadic() {
		return nil, fmt.Errorf("%w: variadic %s", ErrUnsupportedSignature, fnType)
	}

	in := 0
	if receiver {
		in = 1
	}

	sig := &Signature{}
	if in < fnType.NumIn() && fnType.In(in) == contextType {
		sig.Context = true
		in++
	}
	if in < fnType.NumIn() {
		argType := fnType.In(in)
		if argType.Kind() != reflect.Struct {
			return nil, fmt.Errorf("%w: argument of %s must be a struct, got %s", ErrUnsupportedSignature, fnType, argType)
		}
		sig.Args = argType
		in++
	}
	if in != fnType.NumIn() {
		return nil, fmt.Errorf("%w: %s takes more than one argument struct", ErrUnsupportedSignature, fnType)
	}

	switch fnType.NumOut() {
	case 0:
	case 1:
		if fnType.Out(0) == errorType {
			sig.Error = true
		} else {
			sig.Result = true
		}
	case 2:
		if fnType.Out(1) != errorType {
			return nil, fmt.Errorf("%w: second result of %s must be error", ErrUnsupportedSignature, fnType)
		}
		sig.Result = true
		sig.Error = true
	default:
		return nil, fmt.Errorf("%w: %s returns more than two values", ErrUnsupportedSignature, fnType)
	}

	return sig, nil
}

// Constructed returns the type a constructor builds. Only named struct
// types, or pointers to them, can be commands.
func Constructed(fnType reflect.Type) (reflect.Type, error) {
	if fnType.Kind() != reflect.Func || fnType.NumOut() == 0 || fnType.Out(0) == errorType {
		return nil, fmt.Errorf("%w: constructor %s must return the plugin type", ErrUnsupportedSignature, fnType)
	}
	out := fnType.Out(0)
	named := out
	if named.Kind() == reflect.Pointer {
		named = named.Elem()
	}
	if named.Kind() != reflect.Struct || named.Name() == "" {
		return nil, fmt.Errorf("%w: constructor %s must return a named struct type", ErrUnsupportedSignature, fnType)
	}
	return out, nil
}

// TypeName returns the bare name of a constructed type
func TypeName(t reflect.Type) string {
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t.Name()
}

// Methods returns the exported methods callable on an instance of t,
// sorted by name. Values are addressed through a pointer so that
// pointer-receiver methods are included. Doc and String are skipped.
func Methods(t reflect.Type) []reflect.Method {
	if t.Kind() != reflect.Pointer {
		t = reflect.PointerTo(t)
	}
	methods := make([]reflect.Method, 0, t.NumMethod())
	for i := 0; i < t.NumMethod(); i++ {
		method := t.Method(i)
		if !method.IsExported() || method.Name == DocMethod || method.Name == StringMethod {
			continue
		}
		methods = append(methods, method)
	}
	sort.Slice(methods, func(i, j int) bool { return methods[i].Name < methods[j].Name })
	return methods
}
