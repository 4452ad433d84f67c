package render

import (
	"fmt"
	"reflect"

	"github.com/cyra/logaudit/internal/audit"
)

// FormatFunc renders one value routed to it by a Dispatcher.
type FormatFunc func(v any) string

// Dispatcher routes a value to the formatter registered for its exact kind.
// There is no fallback to a broader kind: ExtendedHttpAuditEvent needs its own
// entry even when it shares the HttpAuditEvent formatter. Unregistered kinds
// and untagged values are stringified with fmt.
//
// A Dispatcher is built once and never modified, so concurrent Format calls
// need no locking.
type Dispatcher struct {
	formatters map[audit.Kind]FormatFunc
}

// NewDispatcher copies the given registrations into a new Dispatcher.
func NewDispatcher(formatters map[audit.Kind]FormatFunc) *Dispatcher {
	m := make(map[audit.Kind]FormatFunc, len(formatters))
	for k, fn := range formatters {
		m[k] = fn
	}
	return &Dispatcher{formatters: m}
}

// With returns a copy of d with an extra registration; d itself is unchanged.
func (d *Dispatcher) With(kind audit.Kind, fn FormatFunc) *Dispatcher {
	next := NewDispatcher(d.formatters)
	next.formatters[kind] = fn
	return next
}

// Lookup returns the formatter registered for kind.
func (d *Dispatcher) Lookup(kind audit.Kind) (FormatFunc, bool) {
	fn, ok := d.formatters[kind]
	return fn, ok
}

// Format renders v, returning "" for nil.
func (d *Dispatcher) Format(v any) string {
	if isNil(v) {
		return ""
	}
	if t, ok := v.(audit.Tagged); ok {
		if fn, ok := d.formatters[t.FormatKind()]; ok {
			return fn(v)
		}
	}
	return fmt.Sprint(v)
}

func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Interface, reflect.Func:
		return rv.IsNil()
	}
	return false
}

// CSVFormatters is the default registration used by the CSV renderer.
func CSVFormatters() map[audit.Kind]FormatFunc {
	return map[audit.Kind]FormatFunc{
		audit.KindHTTPEvent:         httpEventFormat("HTTP"),
		audit.KindExtendedHTTPEvent: httpEventFormat("HTTP"),
		audit.KindRPCEvent:          httpEventFormat("RPC"),
		audit.KindSSHEvent:          func(any) string { return "SSH" },
		audit.KindAuditEvent:        func(any) string { return "" },
		audit.KindUser:              userFormat,
	}
}

func httpEventFormat(prefix string) FormatFunc {
	return func(v any) string {
		ev, ok := v.(*audit.Event)
		if !ok || ev.HTTP == nil {
			return prefix
		}
		return fmt.Sprintf("%s-%s, Status:%d", prefix, ev.HTTP.Method, ev.HTTP.Status)
	}
}

func userFormat(v any) string {
	actor, ok := v.(audit.Actor)
	if !ok {
		return fmt.Sprint(v)
	}
	if id, ok := actor.AccountID(); ok {
		return fmt.Sprint(id)
	}
	if actor.IsAnonymous() {
		return "ANONYMOUS"
	}
	return actor.UserName()
}
