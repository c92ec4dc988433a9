package harness

import (
	"bytes"
	"net/http"
	"os"
	"strings"

	"github.com/cockroachdb/errors"
	"gopkg.in/yaml.v3"

	"github.com/roach88/stringsvc/internal/config"
)

// Scenario defines an end-to-end test scenario.
type Scenario struct {
	// Name uniquely identifies this scenario. It also names the golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Backend selects the store backend: "memory" (default) or "sqlite".
	Backend string `yaml:"backend,omitempty"`

	// Setup lists values stored through POST /strings before the flow.
	// Each must be created (201), otherwise the run fails.
	Setup []string `yaml:"setup,omitempty"`

	// Flow contains the requests under test, each with an optional expect.
	Flow []FlowStep `yaml:"flow"`

	// Assertions validate the final trace and store contents.
	Assertions []Assertion `yaml:"assertions,omitempty"`
}

// FlowStep is one HTTP request.
type FlowStep struct {
	// Request is "METHOD /path". The path is unescaped; it is escaped
	// when the request is built.
	Request string `yaml:"request"`

	// Query holds query parameters.
	Query map[string]string `yaml:"query,omitempty"`

	// Body is encoded as the JSON request body.
	Body any `yaml:"body,omitempty"`

	// Raw is sent verbatim as the request body. Mutually exclusive with Body.
	Raw string `yaml:"raw,omitempty"`

	// Header holds extra request headers.
	Header map[string]string `yaml:"header,omitempty"`

	// Expect specifies the expected response.
	// If nil, no validation is performed.
	Expect *ExpectClause `yaml:"expect,omitempty"`
}

// ExpectClause specifies the expected response.
type ExpectClause struct {
	// Status is the expected HTTP status code.
	Status int `yaml:"status"`

	// Body is a subset of the expected JSON response body.
	Body any `yaml:"body,omitempty"`

	// Header lists expected response header values.
	Header map[string]string `yaml:"header,omitempty"`
}

// Assertion validates the trace or the final store contents.
type Assertion struct {
	// Type specifies the assertion type:
	// - "trace_contains": Check a request was issued
	// - "trace_order": Check requests were issued in order
	// - "trace_count": Check a request was issued exactly N times
	// - "final_state": Check a stored record
	Type string `yaml:"type"`

	// Request is "METHOD /path" (trace_contains, trace_count).
	Request string `yaml:"request,omitempty"`

	// Status optionally narrows trace_contains to responses with this status.
	Status int `yaml:"status,omitempty"`

	// Requests is the expected order (trace_order).
	Requests []string `yaml:"requests,omitempty"`

	// Count is the expected number of occurrences (trace_count).
	Count int `yaml:"count,omitempty"`

	// Value identifies the record (final_state).
	Value string `yaml:"value,omitempty"`

	// Expect is a subset of the record's JSON form (final_state).
	Expect map[string]any `yaml:"expect,omitempty"`

	// Absent asserts that no record exists for Value (final_state).
	Absent bool `yaml:"absent,omitempty"`
}

// Assertion type constants.
const (
	AssertTraceContains = "trace_contains"
	AssertTraceOrder    = "trace_order"
	AssertTraceCount    = "trace_count"
	AssertFinalState    = "final_state"
)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read scenario file")
	}
	return ParseScenario(data)
}

// ParseScenario parses and validates scenario YAML.
func ParseScenario(data []byte) (*Scenario, error) {
	// Strict field validation catches typos like "assertion:" vs "assertions:"
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, errors.Wrap(err, "failed to parse YAML")
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, errors.Wrap(err, "invalid scenario")
	}
	return &scenario, nil
}

// splitRequest splits "METHOD /path" into its parts.
func splitRequest(request string) (method, path string, err error) {
	method, path, ok := strings.Cut(strings.TrimSpace(request), " ")
	if !ok || method == "" || !strings.HasPrefix(path, "/") {
		return "", "", errors.Newf("request %q must be \"METHOD /path\"", request)
	}
	switch method {
	case http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodPut,
		http.MethodPatch, http.MethodHead, http.MethodOptions:
		return method, path, nil
	}
	return "", "", errors.Newf("request %q: unknown method %q", request, method)
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return errors.New("name is required")
	}

	if s.Description == "" {
		return errors.New("description is required")
	}

	switch s.Backend {
	case "", config.BackendMemory, config.BackendSQLite:
	default:
		return errors.Newf("unknown backend %q", s.Backend)
	}

	if len(s.Flow) == 0 {
		return errors.New("flow list is required and must be non-empty")
	}

	for i, step := range s.Flow {
		if _, _, err := splitRequest(step.Request); err != nil {
			return errors.Wrapf(err, "flow[%d]", i)
		}
		if step.Body != nil && step.Raw != "" {
			return errors.Newf("flow[%d]: body and raw are mutually exclusive", i)
		}
		if step.Expect != nil && step.Expect.Status == 0 {
			return errors.Newf("flow[%d].expect: status is required", i)
		}
	}

	for i := range s.Assertions {
		if err := validateAssertion(i, &s.Assertions[i]); err != nil {
			return err
		}
	}

	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return errors.Newf("assertions[%d]: type is required", index)
	}

	switch a.Type {
	case AssertTraceContains:
		if a.Request == "" {
			return errors.Newf("assertions[%d]: request is required for trace_contains", index)
		}
	case AssertTraceOrder:
		if len(a.Requests) == 0 {
			return errors.Newf("assertions[%d]: requests list is required for trace_order", index)
		}
	case AssertTraceCount:
		if a.Request == "" {
			return errors.Newf("assertions[%d]: request is required for trace_count", index)
		}
		if a.Count < 0 {
			return errors.Newf("assertions[%d]: count must be non-negative for trace_count", index)
		}
	case AssertFinalState:
		if a.Absent && len(a.Expect) > 0 {
			return errors.Newf("assertions[%d]: absent and expect are mutually exclusive", index)
		}
		if !a.Absent && len(a.Expect) == 0 {
			return errors.Newf("assertions[%d]: expect or absent is required for final_state", index)
		}
	default:
		return errors.Newf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}

	return nil
}
