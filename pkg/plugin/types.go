package plugin

// ParamType is the value type of a parameter as seen on the command line
type ParamType string

const (
	// TypeText consumes one token and keeps it as a string
	TypeText ParamType = "text"
	// TypeInteger consumes one token and parses it as a base-10 integer
	TypeInteger ParamType = "integer"
	// TypeBoolean is a presence flag and never consumes a token
	TypeBoolean ParamType = "boolean"
)

// ParameterSpec describes one parameter of a plugin operation
type ParameterSpec struct {
	// Name is the destination key used when the parsed value is handed
	// back to the plugin. Underscores are kept.
	Name     string
	Required bool
	// Default is the value used when an optional parameter is omitted.
	// It is nil for required parameters.
	Default any
	Type    ParamType
	Help    string
}

// Documented is implemented by plugin types that carry help text. Go
// keeps no doc comments at runtime, so a plugin returns the documentation
// block of a member on request.
//
// Doc("") returns the block for the type itself, Doc(ConstructorDoc) the
// block for its constructor and Doc("Compile") the block for the Compile
// method. Lines of the form
//
//	:param <name>: <text>
//
// give per-parameter help; every other line is summary text.
type Documented interface {
	Doc(member string) string
}

// ConstructorDoc selects the constructor block in Documented.Doc.
const ConstructorDoc = "New"
