package plugins

import (
	"fmt"

	"github.com/example/plugincli/pkg/plugin"
)

var greetings = map[string]string{
	"en": "Hello",
	"es": "Hola",
	"fr": "Bonjour",
	"de": "Hallo",
}

// Hello greets someone
type Hello struct {
	Message  string `json:"message" yaml:"message"`
	Language string `json:"language" yaml:"language"`
	Greeting string `json:"greeting" yaml:"greeting"`
}

// HelloOptions are the options of the hello command
type HelloOptions struct {
	Message  string `default:"World"`
	Language string `default:"en"`
}

// NewHello builds the greeting. The language must be one of en, es, fr
// or de.
func NewHello(opts HelloOptions) (*Hello, error) {
	greeting, ok := greetings[opts.Language]
	if !ok {
		return nil, fmt.Errorf("unsupported language: %s (supported: en, es, fr, de)", opts.Language)
	}
	return &Hello{
		Message:  opts.Message,
		Language: opts.Language,
		Greeting: fmt.Sprintf("%s, %s!", greeting, opts.Message),
	}, nil
}

func (h *Hello) String() string {
	return h.Greeting
}

// Doc implements plugin.Documented
func (h *Hello) Doc(member string) string {
	switch member {
	case "":
		return "A friendly plugin that greets you"
	case plugin.ConstructorDoc:
		return `Greet someone.

		:param message: the name or message to greet
		:param language: the language to use for greeting (en, es, fr, de)`
	}
	return ""
}
