package harness

// TraceEvent is one entry of a run trace: an invocation of an action or
// the completion that answered it.
type TraceEvent struct {
	Type   string         `json:"type"` // "invocation" or "completion"
	Action string         `json:"action,omitempty"`
	Args   map[string]any `json:"args,omitempty"`
	Case   string         `json:"case,omitempty"`
	Result map[string]any `json:"result,omitempty"`
	Seq    int64          `json:"seq"`
}

const (
	eventInvocation = "invocation"
	eventCompletion = "completion"
)

// Result is the outcome of a scenario run.
type Result struct {
	// Pass is true when every expect clause and assertion held.
	Pass bool `json:"pass"`

	// Trace holds every invocation and completion in order.
	Trace []TraceEvent `json:"trace"`

	// Errors lists failed expectations and assertions.
	Errors []string `json:"errors,omitempty"`

	// State holds the decoded final document of every stored slot.
	State map[string]any `json:"state,omitempty"`
}

// NewResult creates a passing result with an empty trace.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []TraceEvent{},
		Errors: []string{},
		State:  make(map[string]any),
	}
}

// AddError records a failure and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// AddInvocation appends an invocation to the trace.
func (r *Result) AddInvocation(action string, args map[string]any, seq int64) {
	r.Trace = append(r.Trace, TraceEvent{
		Type:   eventInvocation,
		Action: action,
		Args:   args,
		Seq:    seq,
	})
}

// AddCompletion appends a completion to the trace.
func (r *Result) AddCompletion(action, outcome string, result map[string]any, seq int64) {
	r.Trace = append(r.Trace, TraceEvent{
		Type:   eventCompletion,
		Action: action,
		Case:   outcome,
		Result: result,
		Seq:    seq,
	})
}
