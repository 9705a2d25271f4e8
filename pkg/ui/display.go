package ui

import (
	"encoding/json"
	"fmt"
	"io"
	"reflect"
	"strings"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/encoding/prototext"
	"google.golang.org/protobuf/proto"
	"gopkg.in/yaml.v3"
)

// Output formats understood by Render
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// Render writes a command result to w in the given format. A nil result
// writes nothing.
func Render(w io.Writer, result any, format string) error {
	if isNil(result) {
		return nil
	}

	switch format {
	case FormatJSON:
		data, err := marshalJSON(result)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintf(w, "%s\n", data)
		return err
	case FormatYAML:
		data, err := marshalYAML(result)
		if err != nil {
			return err
		}
		_, err = w.Write(data)
		return err
	case FormatText, "":
		_, err := fmt.Fprintln(w, text(result))
		return err
	}
	return fmt.Errorf("unsupported output format: %s", format)
}

func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Interface:
		return rv.IsNil()
	}
	return false
}

func marshalJSON(result any) ([]byte, error) {
	if msg, ok := result.(proto.Message); ok {
		data, err := protojson.MarshalOptions{Multiline: true, Indent: "  "}.Marshal(msg)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal result: %w", err)
		}
		return data, nil
	}
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal result: %w", err)
	}
	return data, nil
}

// marshalYAML goes through protojson for protobuf messages so field names
// match their JSON form.
func marshalYAML(result any) ([]byte, error) {
	if msg, ok := result.(proto.Message); ok {
		data, err := protojson.Marshal(msg)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal result: %w", err)
		}
		var generic any
		if err := json.Unmarshal(data, &generic); err != nil {
			return nil, fmt.Errorf("failed to marshal result: %w", err)
		}
		result = generic
	}
	data, err := yaml.Marshal(result)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal result: %w", err)
	}
	return data, nil
}

func text(result any) string {
	switch v := result.(type) {
	case proto.Message:
		return strings.TrimSpace(prototext.MarshalOptions{Multiline: true}.Format(v))
	case fmt.Stringer:
		return v.String()
	case string:
		return v
	case []string:
		return strings.Join(v, "\n")
	case error:
		return v.Error()
	}
	return fmt.Sprintf("%+v", result)
}
