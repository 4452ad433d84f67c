package render

import (
	"fmt"
	"strings"
	"time"

	"github.com/cyra/logaudit/internal/audit"
)

const csvHeaders = "EventId | EventTS | SessionId | User | Protocol data | Action | Parameters | Result | StartTS | Elapsed"

// csvTimeLayout uses the 12-hour "03" hour field without an AM/PM marker:
// 13:05 and 01:05 print the same hour.
const csvTimeLayout = "2006/01/02 03:04:05"

// CSV renders events as ten " | " separated columns.
type CSV struct {
	loc        *time.Location
	dispatcher *Dispatcher
}

// CSVOption configures a CSV renderer.
type CSVOption func(*CSV)

// WithLocation sets the zone timestamps are printed in. nil means UTC.
func WithLocation(loc *time.Location) CSVOption {
	return func(c *CSV) {
		if loc != nil {
			c.loc = loc
		}
	}
}

// WithDispatcher replaces the default field formatters.
func WithDispatcher(d *Dispatcher) CSVOption {
	return func(c *CSV) {
		c.dispatcher = d
	}
}

// NewCSV creates a CSV renderer with the default formatter registrations.
func NewCSV(opts ...CSVOption) *CSV {
	c := &CSV{
		loc:        time.UTC,
		dispatcher: NewDispatcher(CSVFormatters()),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *CSV) Render(ev *audit.Event) (string, error) {
	return safely(ev, func() (string, error) {
		return fmt.Sprintf("%s | %s | %s | %s | %s | %s | %s | %s | %s | %d",
			ev.UUID,
			c.FormatTimestamp(ev.When),
			ev.SessionID,
			c.dispatcher.Format(ev.Who),
			c.dispatcher.Format(ev),
			ev.What,
			c.FormatParams(ev.Params),
			c.dispatcher.Format(ev.Result),
			c.FormatTimestamp(ev.TimeAtStart),
			ev.Elapsed,
		), nil
	})
}

// RenderAs ignores kind: CSV lines carry no type discriminator.
func (c *CSV) RenderAs(ev *audit.Event, _ audit.Kind) (string, error) {
	return c.Render(ev)
}

func (c *CSV) Headers() (string, bool) {
	return csvHeaders, true
}

// FormatTimestamp prints epoch milliseconds as yyyy/MM/dd hh:mm:ss.SSSS.
func (c *CSV) FormatTimestamp(ms int64) string {
	t := time.UnixMilli(ms).In(c.loc)
	return fmt.Sprintf("%s.%04d", t.Format(csvTimeLayout), t.Nanosecond()/int(time.Millisecond))
}

// FormatParams prints params as [k1=v,k2=[v1,v2]] with keys sorted; an empty
// map is "[]".
func (c *CSV) FormatParams(params audit.Params) string {
	if len(params) == 0 {
		return "[]"
	}

	var b strings.Builder
	b.WriteByte('[')
	for i, name := range params.Keys() {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(name)
		b.WriteByte('=')
		b.WriteString(c.formatValues(params[name]))
	}
	b.WriteByte(']')
	return b.String()
}

func (c *CSV) formatValues(values []string) string {
	formatted := make([]string, len(values))
	for i, v := range values {
		formatted[i] = c.dispatcher.Format(v)
	}
	joined := strings.Join(formatted, ",")
	if len(values) > 1 {
		return "[" + joined + "]"
	}
	return joined
}
