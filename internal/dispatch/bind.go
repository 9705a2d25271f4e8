package dispatch

import (
	"encoding"
	"fmt"
	"reflect"

	"github.com/example/plugincli/internal/introspect"
)

// bind allocates a new argument struct and fills the fields of params from
// args. Parameters missing from args keep the zero value.
func bind(structType reflect.Type, params []introspect.Param, args map[string]any) (reflect.Value, error) {
	target := reflect.New(structType).Elem()
	for _, param := range params {
		value, ok := args[param.Name]
		if !ok || value == nil {
			continue
		}
		if err := assign(target.FieldByIndex(param.Index), value); err != nil {
			return reflect.Value{}, fmt.Errorf("parameter %s: %w", param.Name, err)
		}
	}
	return target, nil
}

func assign(field reflect.Value, value any) error {
	if u, ok := field.Addr().Interface().(encoding.TextUnmarshaler); ok {
		text, ok := value.(string)
		if !ok {
			return fmt.Errorf("cannot use %T as text", value)
		}
		return u.UnmarshalText([]byte(text))
	}

	switch field.Kind() {
	case reflect.String:
		text, ok := value.(string)
		if !ok {
			return fmt.Errorf("cannot use %T as string", value)
		}
		field.SetString(text)
	case reflect.Bool:
		flag, ok := value.(bool)
		if !ok {
			return fmt.Errorf("cannot use %T as bool", value)
		}
		field.SetBool(flag)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, ok := value.(int)
		if !ok {
			return fmt.Errorf("cannot use %T as integer", value)
		}
		if field.OverflowInt(int64(n)) {
			return fmt.Errorf("%d overflows %s", n, field.Type())
		}
		field.SetInt(int64(n))
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n, ok := value.(int)
		if !ok {
			return fmt.Errorf("cannot use %T as integer", value)
		}
		if n < 0 || field.OverflowUint(uint64(n)) {
			return fmt.Errorf("%d overflows %s", n, field.Type())
		}
		field.SetUint(uint64(n))
	default:
		return fmt.Errorf("unsupported field type %s", field.Type())
	}
	return nil
}
