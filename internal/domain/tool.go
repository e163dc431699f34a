package domain

import "net/http"

// ArgType is the JSON type an argument accepts.
type ArgType string

const (
	ArgString  ArgType = "string"
	ArgInteger ArgType = "integer"
	ArgNumber  ArgType = "number"
	ArgBoolean ArgType = "boolean"
	ArgObject  ArgType = "object"
	ArgArray   ArgType = "array"
)

// ArgTarget selects where an argument lands in the outbound request. Targets
// combine, e.g. an identifier that is both a path segment and a body field.
type ArgTarget uint8

const (
	TargetPath ArgTarget = 1 << iota
	TargetQuery
	TargetBody
)

func (t ArgTarget) Has(target ArgTarget) bool {
	return t&target != 0
}

// ResponseKind declares how an endpoint's body is normalized.
type ResponseKind string

const (
	ResponseStructured ResponseKind = "structured_record"
	ResponseTabular    ResponseKind = "tabular_text"
)

// ArgSpec declares one tool argument and how it maps onto the wire.
type ArgSpec struct {
	Name        string
	Type        ArgType
	Description string
	Required    bool
	// Default is sent when the argument is absent. Nil means absent arguments
	// are omitted from the request entirely.
	Default any
	Target  ArgTarget
	// Wire is the outbound field name; empty means Name.
	Wire string
	// Negate flips a boolean before it is sent.
	Negate bool
	// OmitZero treats a supplied zero value ("" / 0 / false / empty list or
	// object) as absent.
	OmitZero bool
	Enum     []string
	Minimum  *float64
	// Items is the element type for array arguments.
	Items ArgType
}

// WireName returns the outbound field name.
func (a ArgSpec) WireName() string {
	if a.Wire != "" {
		return a.Wire
	}
	return a.Name
}

// EndpointSpec is the upstream call a tool maps to. Path placeholders use
// {name} and are filled from path-targeted arguments.
type EndpointSpec struct {
	Method string
	Path   string
}

// ToolHints are advisory annotations surfaced to callers.
type ToolHints struct {
	ReadOnly    bool
	Destructive bool
	Idempotent  bool
}

// ToolSpec is one entry of the declarative tool catalog.
type ToolSpec struct {
	Name        string
	Title       string
	Description string
	Args        []ArgSpec
	Endpoint    EndpointSpec
	Response    ResponseKind
	Hints       ToolHints
}

// Arg looks up a declared argument by name.
func (t ToolSpec) Arg(name string) (ArgSpec, bool) {
	for _, arg := range t.Args {
		if arg.Name == name {
			return arg, true
		}
	}
	return ArgSpec{}, false
}

// ReadOnly reports whether the endpoint is a plain read.
func (t ToolSpec) ReadOnly() bool {
	return t.Hints.ReadOnly || t.Endpoint.Method == http.MethodGet
}

// ResourceSpec is a static document served by URI.
type ResourceSpec struct {
	URI         string
	Name        string
	Title       string
	Description string
	MIMEType    string
	Content     func() string
}
