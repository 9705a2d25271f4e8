package plugin

import (
	"sync"
)

// APIVersion is the version of the plugin registration contract
const APIVersion = "2.0.0"

// Namespace is an explicit registry of plugin constructors. Each
// constructor becomes one command named after the lower-cased type it
// constructs; the exported methods of that type become subcommands.
//
// A constructor has the shape
//
//	func([context.Context], [Options]) (*T | T, [error])
//
// where Options is a struct whose exported fields are the command's
// parameters. Methods follow the same rule with an Args struct:
//
//	func (t *T) Compile([context.Context], [Args]) ([R], [error])
//
// Registration is not validated here; the schema builder reports every
// malformed constructor when the CLI is built.
type Namespace struct {
	name         string
	mu           sync.Mutex
	constructors []any
}

// NewNamespace creates an empty namespace
func NewNamespace(name string) *Namespace {
	return &Namespace{name: name}
}

// Name returns the namespace name
func (n *Namespace) Name() string {
	return n.name
}

// Register adds constructors to the namespace
func (n *Namespace) Register(constructors ...any) *Namespace {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.constructors = append(n.constructors, constructors...)
	return n
}

// Constructors returns the registered constructors in registration order
func (n *Namespace) Constructors() []any {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]any, len(n.constructors))
	copy(out, n.constructors)
	return out
}
