package audit

import (
	"sort"

	"github.com/google/uuid"
)

// UnknownSessionID is the session id carried by events that did not originate
// from an authenticated session (every replayed HTTP request).
const UnknownSessionID = "000000000000000000000000000"

// Kind identifies the concrete shape of a value handed to a formatter.
type Kind string

const (
	KindAuditEvent        Kind = "AuditEvent"
	KindHTTPEvent         Kind = "HttpAuditEvent"
	KindExtendedHTTPEvent Kind = "ExtendedHttpAuditEvent"
	KindRPCEvent          Kind = "RpcAuditEvent"
	KindSSHEvent          Kind = "SshAuditEvent"
	KindUser              Kind = "AuditUser"
)

func (k Kind) String() string { return string(k) }

// Tagged is implemented by every audit domain value that can be routed
// through a format dispatcher.
type Tagged interface {
	FormatKind() Kind
}

// UUID is the opaque identity of an event.
type UUID struct {
	Value string
}

// NewUUID returns a random event identity in the "audit:<uuid>" form.
func NewUUID() UUID {
	return UUID{Value: "audit:" + uuid.NewString()}
}

func (u UUID) String() string { return u.Value }

// HTTPData is the protocol payload of HTTP, extended HTTP and RPC events.
type HTTPData struct {
	Method string
	Status int
	// Input is the request body captured on the live path. Replayed events
	// never carry one.
	Input any
}

// Event is the canonical, normalized audit record. It is built once per
// line and never mutated afterwards.
type Event struct {
	Kind        Kind
	UUID        UUID
	SessionID   string
	Who         Actor
	What        string
	Params      Params
	Result      any
	When        int64
	TimeAtStart int64
	Elapsed     int64

	HTTP *HTTPData
}

// FormatKind implements Tagged.
func (e *Event) FormatKind() Kind {
	if e.Kind == "" {
		return KindAuditEvent
	}
	return e.Kind
}

// Params maps a parameter name to one or more values.
type Params map[string][]string

// Add appends a value to the named parameter.
func (p Params) Add(name, value string) {
	p[name] = append(p[name], value)
}

// Keys returns parameter names in lexicographic order.
func (p Params) Keys() []string {
	keys := make([]string, 0, len(p))
	for k := range p {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
