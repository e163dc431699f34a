// Package request turns a tool's declared arguments into an upstream HTTP
// request.
//
// Each tool is compiled once: its endpoint template is checked against the
// argument list and its input schema is resolved. Building is then a pure
// function of the argument bag, with no I/O. Absent optional arguments never
// reach the wire; the upstream API treats a missing field differently from an
// empty one for partial updates and filters.
package request

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/google/jsonschema-go/jsonschema"

	"dunemcp/internal/domain"
)

const maxPathSegmentLength = 256

var (
	placeholderPattern = regexp.MustCompile(`\{([A-Za-z0-9_]+)\}`)
	// Dots only between segments: rejects ".", ".." and anything with a
	// separator, percent-escape or control character.
	identifierPattern = regexp.MustCompile(`^[A-Za-z0-9_-]+(\.[A-Za-z0-9_-]+)*$`)
)

var allowedMethods = map[string]struct{}{
	http.MethodGet:    {},
	http.MethodPost:   {},
	http.MethodPatch:  {},
	http.MethodPut:    {},
	http.MethodDelete: {},
}

// Compiled is a tool spec whose endpoint template and schema were validated.
type Compiled struct {
	spec         domain.ToolSpec
	schema       *jsonschema.Schema
	resolved     *jsonschema.Resolved
	placeholders []string
}

// Compile checks the spec's invariants and resolves its input schema.
func Compile(spec domain.ToolSpec) (*Compiled, error) {
	if errs := validateSpec(spec); len(errs) > 0 {
		return nil, fmt.Errorf("tool %q: %s", spec.Name, strings.Join(errs, "; "))
	}
	schema, err := InputSchema(spec)
	if err != nil {
		return nil, fmt.Errorf("tool %q: %w", spec.Name, err)
	}
	resolved, err := schema.Resolve(nil)
	if err != nil {
		return nil, fmt.Errorf("tool %q: resolve schema: %w", spec.Name, err)
	}
	return &Compiled{
		spec:         spec,
		schema:       schema,
		resolved:     resolved,
		placeholders: placeholders(spec.Endpoint.Path),
	}, nil
}

// Spec returns the compiled tool spec.
func (c *Compiled) Spec() domain.ToolSpec {
	return c.spec
}

// Schema returns the advertised input schema.
func (c *Compiled) Schema() *jsonschema.Schema {
	return c.schema
}

// Build shapes args into a transport request. Every failure is an
// INVALID_ARGUMENT error raised before any network activity.
func (c *Compiled) Build(args map[string]any) (domain.TransportRequest, error) {
	name := c.spec.Name

	values, err := canonicalArgs(name, args)
	if err != nil {
		return domain.TransportRequest{}, err
	}
	if err := c.checkNames(values); err != nil {
		return domain.TransportRequest{}, err
	}
	for _, arg := range c.spec.Args {
		if _, ok := values[arg.Name]; !ok && arg.Required {
			return domain.TransportRequest{}, invalid(name, arg.Name, "missing required argument %q", arg.Name)
		}
	}
	if err := c.resolved.Validate(values); err != nil {
		return domain.TransportRequest{}, domain.E(domain.CodeInvalidArgument, name, err.Error(), nil)
	}

	req := domain.TransportRequest{
		Method: c.spec.Endpoint.Method,
		Query:  url.Values{},
	}
	pathValues := make(map[string]string, len(c.placeholders))
	for _, arg := range c.spec.Args {
		value, ok := values[arg.Name]
		if ok && arg.OmitZero && isZero(value) {
			ok = false
		}
		if !ok {
			if arg.Default == nil {
				continue
			}
			value = arg.Default
		}
		if arg.Negate {
			flag, isBool := value.(bool)
			if !isBool {
				return domain.TransportRequest{}, invalid(name, arg.Name, "argument %q must be a boolean", arg.Name)
			}
			value = !flag
		}

		if arg.Target.Has(domain.TargetPath) {
			segment, err := pathSegment(value)
			if err != nil {
				return domain.TransportRequest{}, invalid(name, arg.Name, "argument %q: %v", arg.Name, err)
			}
			pathValues[arg.Name] = segment
		}
		if arg.Target.Has(domain.TargetQuery) {
			req.Query.Set(arg.WireName(), QueryString(value))
		}
		if arg.Target.Has(domain.TargetBody) {
			if req.Body == nil {
				req.Body = make(map[string]any)
			}
			req.Body[arg.WireName()] = value
		}
	}

	req.Path = placeholderPattern.ReplaceAllStringFunc(c.spec.Endpoint.Path, func(match string) string {
		key := match[1 : len(match)-1]
		return url.PathEscape(pathValues[key])
	})
	if len(req.Query) == 0 {
		req.Query = nil
	}
	return req, nil
}

func (c *Compiled) checkNames(values map[string]any) error {
	var unknown []string
	for key := range values {
		if _, ok := c.spec.Arg(key); !ok {
			unknown = append(unknown, key)
		}
	}
	if len(unknown) == 0 {
		return nil
	}
	sort.Strings(unknown)
	return invalid(c.spec.Name, unknown[0], "unknown argument(s): %s", strings.Join(unknown, ", "))
}

// canonicalArgs normalizes caller values to plain JSON values (float64,
// string, bool, []any, map[string]any) and drops explicit nulls, which count
// as absent.
func canonicalArgs(tool string, args map[string]any) (map[string]any, error) {
	out := make(map[string]any, len(args))
	if len(args) == 0 {
		return out, nil
	}
	raw, err := json.Marshal(args)
	if err != nil {
		return nil, domain.E(domain.CodeInvalidArgument, tool, "arguments are not valid JSON values", err)
	}
	var decoded map[string]any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return nil, domain.E(domain.CodeInvalidArgument, tool, "arguments are not valid JSON values", err)
	}
	for key, value := range decoded {
		if value == nil {
			continue
		}
		out[key] = value
	}
	return out, nil
}

func pathSegment(value any) (string, error) {
	switch v := value.(type) {
	case string, float64, json.Number:
	default:
		return "", fmt.Errorf("path value must be a string or integer, got %T", v)
	}
	segment := QueryString(value)
	if segment == "" {
		return "", errors.New("path value must not be empty")
	}
	if len(segment) > maxPathSegmentLength {
		return "", fmt.Errorf("path value longer than %d characters", maxPathSegmentLength)
	}
	if !identifierPattern.MatchString(segment) {
		return "", fmt.Errorf("path value %q contains characters outside [A-Za-z0-9_.-]", segment)
	}
	return segment, nil
}

// QueryString serializes a value the way the upstream expects it in a query
// string: lowercase booleans, integers as decimal text.
func QueryString(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case bool:
		return strconv.FormatBool(v)
	case float64:
		if v == math.Trunc(v) && !math.IsInf(v, 0) {
			return strconv.FormatFloat(v, 'f', -1, 64)
		}
		return strconv.FormatFloat(v, 'g', -1, 64)
	case json.Number:
		return v.String()
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	default:
		raw, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprint(v)
		}
		return string(raw)
	}
}

func isZero(value any) bool {
	switch v := value.(type) {
	case nil:
		return true
	case string:
		return v == ""
	case bool:
		return !v
	case float64:
		return v == 0
	case []any:
		return len(v) == 0
	case map[string]any:
		return len(v) == 0
	default:
		return false
	}
}

func invalid(tool, argument, format string, args ...any) error {
	return domain.Errorf(domain.CodeInvalidArgument, tool, format, args...).WithMeta(domain.MetaArgument, argument)
}

func placeholders(path string) []string {
	matches := placeholderPattern.FindAllStringSubmatch(path, -1)
	out := make([]string, 0, len(matches))
	for _, match := range matches {
		out = append(out, match[1])
	}
	return out
}

func validateSpec(spec domain.ToolSpec) []string {
	var errs []string
	if strings.TrimSpace(spec.Name) == "" {
		errs = append(errs, "name is required")
	}
	if _, ok := allowedMethods[spec.Endpoint.Method]; !ok {
		errs = append(errs, fmt.Sprintf("unsupported method %q", spec.Endpoint.Method))
	}
	if !strings.HasPrefix(spec.Endpoint.Path, "/") {
		errs = append(errs, "endpoint path must start with /")
	}
	switch spec.Response {
	case domain.ResponseStructured, domain.ResponseTabular:
	default:
		errs = append(errs, fmt.Sprintf("unknown response kind %q", spec.Response))
	}

	seen := make(map[string]struct{}, len(spec.Args))
	wire := map[domain.ArgTarget]map[string]struct{}{
		domain.TargetQuery: {},
		domain.TargetBody:  {},
	}
	for i, arg := range spec.Args {
		if arg.Name == "" {
			errs = append(errs, fmt.Sprintf("args[%d]: name is required", i))
			continue
		}
		if _, dup := seen[arg.Name]; dup {
			errs = append(errs, fmt.Sprintf("args[%d]: duplicate argument %q", i, arg.Name))
		}
		seen[arg.Name] = struct{}{}
		switch arg.Type {
		case domain.ArgString, domain.ArgInteger, domain.ArgNumber, domain.ArgBoolean, domain.ArgObject, domain.ArgArray:
		default:
			errs = append(errs, fmt.Sprintf("args[%d]: unknown type %q", i, arg.Type))
		}
		if arg.Target == 0 {
			errs = append(errs, fmt.Sprintf("args[%d]: target is required", i))
		}
		if arg.Negate && arg.Type != domain.ArgBoolean {
			errs = append(errs, fmt.Sprintf("args[%d]: negate requires a boolean argument", i))
		}
		if arg.Target.Has(domain.TargetPath) {
			if !arg.Required {
				errs = append(errs, fmt.Sprintf("args[%d]: path argument %q must be required", i, arg.Name))
			}
			if !strings.Contains(spec.Endpoint.Path, "{"+arg.Name+"}") {
				errs = append(errs, fmt.Sprintf("args[%d]: path argument %q has no placeholder", i, arg.Name))
			}
		}
		for target, names := range wire {
			if !arg.Target.Has(target) {
				continue
			}
			if _, dup := names[arg.WireName()]; dup {
				errs = append(errs, fmt.Sprintf("args[%d]: duplicate wire field %q", i, arg.WireName()))
			}
			names[arg.WireName()] = struct{}{}
		}
	}

	for _, name := range placeholders(spec.Endpoint.Path) {
		arg, ok := spec.Arg(name)
		if !ok || !arg.Target.Has(domain.TargetPath) {
			errs = append(errs, fmt.Sprintf("placeholder {%s} has no path argument", name))
		}
	}
	return errs
}
