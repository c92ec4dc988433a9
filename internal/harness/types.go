package harness

// Trace event types.
const (
	EventRequest  = "request"
	EventResponse = "response"
)

// TraceEvent records one request sent to the server or one response
// received from it.
type TraceEvent struct {
	Type    string `json:"type"`    // "request" or "response"
	Request string `json:"request"` // "METHOD /path", without query
	Target  string `json:"target"`  // escaped path and query as sent
	Status  int    `json:"status,omitempty"`
	Body    any    `json:"body,omitempty"` // decoded JSON response body
	Seq     int64  `json:"seq"`
}

// Result is the outcome of a test scenario execution.
type Result struct {
	// Pass indicates overall test success.
	// True if every expect clause and assertion matched.
	Pass bool `json:"pass"`

	// Trace contains all requests and responses in order.
	Trace []TraceEvent `json:"trace"`

	// Errors contains validation error messages.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []TraceEvent{},
		Errors: []string{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// AddRequestTrace adds a request to the trace. Events are numbered from 1
// in the order they are added.
func (r *Result) AddRequestTrace(request, target string) {
	r.Trace = append(r.Trace, TraceEvent{
		Type:    EventRequest,
		Request: request,
		Target:  target,
		Seq:     int64(len(r.Trace) + 1),
	})
}

// AddResponseTrace adds a response to the trace.
func (r *Result) AddResponseTrace(request, target string, status int, body any) {
	r.Trace = append(r.Trace, TraceEvent{
		Type:    EventResponse,
		Request: request,
		Target:  target,
		Status:  status,
		Body:    body,
		Seq:     int64(len(r.Trace) + 1),
	})
}
