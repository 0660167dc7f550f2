// Package contract declares the CallAnalysis response shape once and derives
// from it the schema sent to the generation backend, the JSON Schema served to
// the dashboard and the validator applied to every reply.
package contract

// Kind is the JSON type of a field.
type Kind int

const (
	String Kind = iota
	Integer
	Number
	Boolean
	Array
	Object
)

func (k Kind) String() string {
	switch k {
	case String:
		return "string"
	case Integer:
		return "integer"
	case Number:
		return "number"
	case Boolean:
		return "boolean"
	case Array:
		return "array"
	case Object:
		return "object"
	default:
		return "unknown"
	}
}

// Field describes one node of the contract. Items is set for arrays and
// Properties for objects; Enum, Min and Max constrain scalars. MinLength counts
// the characters a string must carry once surrounding whitespace is trimmed.
type Field struct {
	Name        string
	Kind        Kind
	Required    bool
	Enum        []string
	MinLength   int
	Min         *float64
	Max         *float64
	Items       *Field
	Properties  []Field
	Description string
}

// Property returns the named child of an object field.
func (f Field) Property(name string) (Field, bool) {
	for _, p := range f.Properties {
		if p.Name == name {
			return p, true
		}
	}
	return Field{}, false
}

func bound(v float64) *float64 { return &v }

func str(name, desc string) Field {
	return Field{Name: name, Kind: String, Required: true, Description: desc}
}

// text is a required string that must not be blank.
func text(name, desc string) Field {
	f := str(name, desc)
	f.MinLength = 1
	return f
}

func enum(name, desc string, values ...string) Field {
	return Field{Name: name, Kind: String, Required: true, Enum: values, Description: desc}
}

func score(name, desc string) Field {
	return Field{Name: name, Kind: Integer, Required: true, Min: bound(0), Max: bound(100), Description: desc}
}

func percent(name, desc string) Field {
	return Field{Name: name, Kind: Number, Required: true, Min: bound(0), Max: bound(100), Description: desc}
}

func list(name, desc string, items Field) Field {
	return Field{Name: name, Kind: Array, Required: true, Items: &items, Description: desc}
}

func object(name, desc string, props ...Field) Field {
	return Field{Name: name, Kind: Object, Required: true, Properties: props, Description: desc}
}

func optional(f Field) Field {
	f.Required = false
	return f
}
