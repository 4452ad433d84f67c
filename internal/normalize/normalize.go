package normalize

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/cyra/logaudit/internal/apperrors"
	"github.com/cyra/logaudit/internal/audit"
	"github.com/cyra/logaudit/internal/parser"
)

// Timestamp layouts of the two log sources. The httpd_log hour field holds
// 00-23, so it is read with a 24-hour layout.
const (
	HTTPTimeLayout = "02/Jan/2006:15:04:05 -0700"
	SSHTimeLayout  = "2006-01-02 15:04:05,000 -0700"
)

// Normalizer converts parsed records into audit events. It holds no state
// besides the identity generator and is safe for concurrent use.
type Normalizer struct {
	newID func() audit.UUID
}

// Option configures a Normalizer.
type Option func(*Normalizer)

// WithIDGenerator replaces the random event identity generator.
func WithIDGenerator(fn func() audit.UUID) Option {
	return func(n *Normalizer) {
		n.newID = fn
	}
}

// New creates a Normalizer.
func New(opts ...Option) *Normalizer {
	n := &Normalizer{newID: audit.NewUUID}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Normalize dispatches on the record's concrete type.
func (n *Normalizer) Normalize(rec parser.Record) (*audit.Event, error) {
	switch r := rec.(type) {
	case *parser.HTTPRecord:
		return n.HTTP(r)
	case *parser.SSHRecord:
		return n.SSH(r)
	default:
		return nil, apperrors.NewNormalize(fmt.Sprintf("unsupported record type %T", rec), nil)
	}
}

// HTTP builds an HttpAuditEvent for git clients and an ExtendedHttpAuditEvent
// for everything else.
func (n *Normalizer) HTTP(rec *parser.HTTPRecord) (*audit.Event, error) {
	when, err := epochMillis(HTTPTimeLayout, rec.Timestamp)
	if err != nil {
		return nil, err
	}

	path := ClassifyHTTP(rec.UserAgent)
	kind := audit.KindHTTPEvent
	if path == audit.AccessPathRESTAPI {
		kind = audit.KindExtendedHTTPEvent
	}

	return &audit.Event{
		Kind:        kind,
		UUID:        n.newID(),
		SessionID:   audit.UnknownSessionID,
		Who:         &audit.User{Name: rec.User, Path: path},
		What:        rec.Resource,
		Params:      queryParams(rec.Resource),
		Result:      rec.Status,
		When:        when,
		TimeAtStart: when,
		HTTP: &audit.HTTPData{
			Method: rec.Method,
			Status: rec.Status,
		},
	}, nil
}

// SSH builds an SshAuditEvent.
func (n *Normalizer) SSH(rec *parser.SSHRecord) (*audit.Event, error) {
	when, err := epochMillis(SSHTimeLayout, rec.Timestamp)
	if err != nil {
		return nil, err
	}

	return &audit.Event{
		Kind:      audit.KindSSHEvent,
		UUID:      n.newID(),
		SessionID: rec.SessionID,
		Who: &audit.User{
			Name:    rec.User,
			Path:    ClassifySSH(),
			Account: accountNumber(rec.AccountID),
		},
		What:        rec.Command,
		Params:      audit.Params{},
		Result:      rec.ResultCode,
		When:        when,
		TimeAtStart: when,
		Elapsed:     millis(rec.ExecTime),
	}, nil
}

func epochMillis(layout, value string) (int64, error) {
	ts, err := time.Parse(layout, value)
	if err != nil {
		return 0, apperrors.NewNormalize(fmt.Sprintf("can't parse timestamp '%s'", value), err)
	}
	return ts.UnixMilli(), nil
}

// accountNumber extracts 1000000 from "a/1000000"; anything else is 0.
func accountNumber(accountID string) int {
	digits, ok := strings.CutPrefix(accountID, "a/")
	if !ok {
		return 0
	}
	id, err := strconv.Atoi(digits)
	if err != nil || id < 0 {
		return 0
	}
	return id
}

// millis reads "303ms" as 303.
func millis(v string) int64 {
	n, err := strconv.ParseInt(strings.TrimSuffix(v, "ms"), 10, 64)
	if err != nil {
		return 0
	}
	return n
}

func queryParams(resource string) audit.Params {
	params := audit.Params{}
	_, rawQuery, ok := strings.Cut(resource, "?")
	if !ok {
		return params
	}
	values, err := url.ParseQuery(rawQuery)
	if err != nil {
		return params
	}
	for name, vs := range values {
		for _, v := range vs {
			params.Add(name, v)
		}
	}
	return params
}
