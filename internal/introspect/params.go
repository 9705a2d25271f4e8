package introspect

import (
	"fmt"
	"reflect"
	"strconv"

	"github.com/example/plugincli/pkg/plugin"
	"github.com/iancoleman/strcase"
)

// Param is a described parameter together with the struct field that
// receives its value.
type Param struct {
	plugin.ParameterSpec
	// Index is the field path inside the argument struct, usable with
	// reflect.Value.FieldByIndex.
	Index []int
}

// Describe returns the parameters declared by an argument struct, in
// field order. doc is the documentation block of the owning callable and
// supplies help for fields without a help tag.
//
// # Struct tags
//
//   - arg:"name" overrides the parameter name (default: snake_case of the
//     field name). arg:"-" skips the field.
//   - default:"value" makes the parameter optional. The value is parsed
//     according to the field type; an empty value is a valid default.
//   - help:"text" sets the help text.
//
// Boolean fields are always optional and default to false.
func Describe(args reflect.Type, doc string) ([]Param, error) {
	if args == nil {
		return nil, nil
	}
	var params []Param
	if err := describeFields(args, nil, doc, &params); err != nil {
		return nil, err
	}

	seen := make(map[string]bool, len(params))
	for _, param := range params {
		if seen[param.Name] {
			return nil, fmt.Errorf("%w: %s declares parameter %q twice", ErrUnsupportedSignature, args, param.Name)
		}
		seen[param.Name] = true
	}
	return params, nil
}

func describeFields(structType reflect.Type, index []int, doc string, out *[]Param) error {
	for i := 0; i < structType.NumField(); i++ {
		field := structType.Field(i)
		path := append(append([]int(nil), index...), i)

		// Exported fields of an embedded struct are promoted even when
		// the embedded type itself is unexported.
		if field.Anonymous && field.Type.Kind() == reflect.Struct {
			if err := describeFields(field.Type, path, doc, out); err != nil {
				return fmt.Errorf("embedded %s: %w", field.Name, err)
			}
			continue
		}
		if !field.IsExported() {
			continue
		}

		name := field.Tag.Get("arg")
		if name == "-" {
			continue
		}
		if name == "" {
			name = strcase.ToSnake(field.Name)
		}

		spec, err := describeField(field, name, doc)
		if err != nil {
			return fmt.Errorf("field %s: %w", field.Name, err)
		}
		*out = append(*out, Param{ParameterSpec: spec, Index: path})
	}
	return nil
}

func describeField(field reflect.StructField, name, doc string) (plugin.ParameterSpec, error) {
	paramType, err := typeOf(field.Type)
	if err != nil {
		return plugin.ParameterSpec{}, err
	}

	spec := plugin.ParameterSpec{
		Name: name,
		Type: paramType,
		Help: field.Tag.Get("help"),
	}
	if spec.Help == "" {
		spec.Help = ParamHelp(doc, name)
	}

	raw, hasDefault := field.Tag.Lookup("default")
	switch {
	case paramType == plugin.TypeBoolean:
		spec.Default, err = parseDefault(paramType, raw)
	case hasDefault:
		spec.Default, err = parseDefault(paramType, raw)
	default:
		spec.Required = true
	}
	if err != nil {
		return plugin.ParameterSpec{}, fmt.Errorf("default for %s: %w", name, err)
	}

	if err := spec.Validate(); err != nil {
		return plugin.ParameterSpec{}, fmt.Errorf("%w: %v", ErrUnsupportedSignature, err)
	}
	return spec, nil
}

// typeOf maps a field type to its command-line type. Types that can
// unmarshal themselves from text are taken as text.
func typeOf(t reflect.Type) (plugin.ParamType, error) {
	if reflect.PointerTo(t).Implements(textUnmarshalerType) {
		return plugin.TypeText, nil
	}
	switch t.Kind() {
	case reflect.String:
		return plugin.TypeText, nil
	case reflect.Bool:
		return plugin.TypeBoolean, nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return plugin.TypeInteger, nil
	}
	return "", fmt.Errorf("%w: field type %s", ErrUnsupportedSignature, t)
}

func parseDefault(paramType plugin.ParamType, raw string) (any, error) {
	switch paramType {
	case plugin.TypeBoolean:
		if raw == "" {
			return false, nil
		}
		return strconv.ParseBool(raw)
	case plugin.TypeInteger:
		if raw == "" {
			return 0, nil
		}
		return strconv.Atoi(raw)
	default:
		return raw, nil
	}
}
