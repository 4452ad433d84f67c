package render

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/cyra/logaudit/internal/apperrors"
	"github.com/cyra/logaudit/internal/audit"
)

type CSVTestSuite struct {
	suite.Suite

	r *CSV
}

func (s *CSVTestSuite) SetupTest() {
	s.r = NewCSV()
}

func (s *CSVTestSuite) TestRenderSSH() {
	out, err := s.r.Render(sshEvent())

	s.Require().NoError(err)
	s.Equal("audit:fixed | 2019/01/23 11:44:26.0665 | 70e3031f | 1000000 | SSH | LOGOUT | [] | 0 | 2019/01/23 11:44:26.0665 | 0", out)
}

func (s *CSVTestSuite) TestRenderHTTP() {
	tests := []struct {
		name string
		ev   *audit.Event
		want string
	}{
		{
			name: "when REST event from a named user",
			ev:   httpEvent(audit.KindExtendedHTTPEvent, "jdoe", audit.AccessPathRESTAPI),
			want: "audit:http | 2019/01/19 12:00:00.0000 | 000000000000000000000000000 | jdoe | HTTP-GET, Status:200 | /changes/?q=status:open | [q=status:open] | 200 | 2019/01/19 12:00:00.0000 | 0",
		},
		{
			name: "when git event from an anonymous user",
			ev:   httpEvent(audit.KindHTTPEvent, "-", audit.AccessPathGit),
			want: "audit:http | 2019/01/19 12:00:00.0000 | 000000000000000000000000000 | ANONYMOUS | HTTP-GET, Status:200 | /changes/?q=status:open | [q=status:open] | 200 | 2019/01/19 12:00:00.0000 | 0",
		},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			out, err := s.r.Render(tt.ev)

			s.Require().NoError(err)
			s.Equal(tt.want, out)
		})
	}
}

func (s *CSVTestSuite) TestRenderHasTenColumns() {
	out, err := s.r.Render(httpEvent(audit.KindHTTPEvent, "jdoe", audit.AccessPathGit))

	s.Require().NoError(err)
	s.Len(strings.Split(out, " | "), 10)
}

func (s *CSVTestSuite) TestRenderIsIdempotent() {
	ev := sshEvent()

	first, err := s.r.Render(ev)
	s.Require().NoError(err)
	second, err := s.r.Render(ev)
	s.Require().NoError(err)

	s.Equal(first, second)
}

func (s *CSVTestSuite) TestRenderAsIgnoresKind() {
	ev := sshEvent()

	plain, err := s.r.Render(ev)
	s.Require().NoError(err)
	as, err := s.r.RenderAs(ev, audit.KindExtendedHTTPEvent)
	s.Require().NoError(err)

	s.Equal(plain, as)
}

func (s *CSVTestSuite) TestHeaders() {
	h, ok := s.r.Headers()

	s.True(ok)
	s.Equal("EventId | EventTS | SessionId | User | Protocol data | Action | Parameters | Result | StartTS | Elapsed", h)
	s.Len(strings.Split(h, " | "), 10)
}

// The hour column is printed on a 12-hour clock with no AM/PM marker.
func (s *CSVTestSuite) TestFormatTimestampTwelveHourClock() {
	tests := []struct {
		name string
		ms   int64
		want string
	}{
		{
			name: "when midnight",
			ms:   midnight,
			want: "2019/01/19 12:00:00.0000",
		},
		{
			name: "when 01:05 in the morning",
			ms:   midnight + (1*60+5)*60*1000,
			want: "2019/01/19 01:05:00.0000",
		},
		{
			name: "when 13:05 in the afternoon",
			ms:   midnight + (13*60+5)*60*1000,
			want: "2019/01/19 01:05:00.0000",
		},
		{
			name: "when milliseconds are present",
			ms:   midnight + 42,
			want: "2019/01/19 12:00:00.0042",
		},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			s.Equal(tt.want, s.r.FormatTimestamp(tt.ms))
		})
	}
}

func (s *CSVTestSuite) TestFormatTimestampLocation() {
	rome, err := time.LoadLocation("Europe/Rome")
	s.Require().NoError(err)

	r := NewCSV(WithLocation(rome))

	s.Equal("2019/01/19 01:00:00.0000", r.FormatTimestamp(midnight))
}

func (s *CSVTestSuite) TestFormatParams() {
	tests := []struct {
		name   string
		params audit.Params
		want   string
	}{
		{
			name:   "when params are nil",
			params: nil,
			want:   "[]",
		},
		{
			name:   "when params are empty",
			params: audit.Params{},
			want:   "[]",
		},
		{
			name:   "when one key has one value",
			params: audit.Params{"a": {"x"}},
			want:   "[a=x]",
		},
		{
			name:   "when one key has many values",
			params: audit.Params{"a": {"x", "y"}},
			want:   "[a=[x,y]]",
		},
		{
			name:   "when keys are unordered",
			params: audit.Params{"z": {"1"}, "a": {"2"}, "m": {"3", "4"}},
			want:   "[a=2,m=[3,4],z=1]",
		},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			s.Equal(tt.want, s.r.FormatParams(tt.params))
		})
	}
}

func (s *CSVTestSuite) TestRenderRecoversFromFormatterPanic() {
	d := NewDispatcher(CSVFormatters()).With(audit.KindUser, func(any) string {
		panic("boom")
	})
	r := NewCSV(WithDispatcher(d))

	out, err := r.Render(sshEvent())

	s.Empty(out)
	s.ErrorIs(err, apperrors.Render)
	s.Contains(err.Error(), "audit:fixed")
}

func TestCSVTestSuite(t *testing.T) {
	suite.Run(t, new(CSVTestSuite))
}
