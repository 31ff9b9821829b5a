package contract

// Query is a single inbound request. It lives for the duration of one
// route call and is never persisted.
type Query struct {
	Text      string `json:"text"`
	SessionID string `json:"session_id,omitempty"`
	// AgentHint pins the query to one capability id, bypassing classification.
	AgentHint string `json:"agent,omitempty"`
}

// Descriptor is the static metadata an agent advertises at registration
// time. Immutable after startup.
type Descriptor struct {
	ID          string   `json:"id"`
	Keywords    []string `json:"keywords"`
	Description string   `json:"description"`
}

// DecisionEntry is one (capability, confidence, sub-query) tuple of a
// dispatch decision.
type DecisionEntry struct {
	Capability string  `json:"capability"`
	Confidence float64 `json:"confidence"`
	SubQuery   string  `json:"sub_query"`
}

// Decision is the classifier output. An empty entry list is the
// "no matching agent" sentinel.
type Decision struct {
	Entries []DecisionEntry `json:"entries,omitempty"`
}

func (d Decision) Unhandled() bool {
	return len(d.Entries) == 0
}

type Status string

const (
	StatusSuccess   Status = "success"
	StatusPartial   Status = "partial"
	StatusFailure   Status = "failure"
	StatusUnhandled Status = "unhandled"
)

// Response is the normalized output of one agent invocation.
// A failure never carries a payload; a success always does.
type Response struct {
	Status     Status `json:"status"`
	Payload    any    `json:"payload,omitempty"`
	Diagnostic string `json:"diagnostic,omitempty"`
}

// Success builds a success response. Payload must be non-nil.
func Success(payload any) Response {
	return Response{Status: StatusSuccess, Payload: payload}
}

// Failure builds a failure response carrying only a diagnostic.
func Failure(diagnostic string) Response {
	return Response{Status: StatusFailure, Diagnostic: diagnostic}
}

// CallContext is the per-request context threaded through Handle calls
// in place of process-wide singletons. Meta carries opaque values for
// downstream delegations (credentials, locale, channel hints).
type CallContext struct {
	SessionID string
	Meta      map[string]string
}

// AgentResult pairs one agent response with the capability that produced it.
type AgentResult struct {
	Capability string   `json:"capability"`
	Response   Response `json:"response"`
}

// RouteResponse is the aggregate the router returns for one query.
// Results follow the dispatch decision's capability order.
type RouteResponse struct {
	Status  Status        `json:"status"`
	Results []AgentResult `json:"results,omitempty"`
	Message string        `json:"message,omitempty"`
}
