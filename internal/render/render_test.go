package render

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cyra/logaudit/internal/apperrors"
	"github.com/cyra/logaudit/internal/audit"
)

const midnight = int64(1547856000000) // 2019-01-19T00:00:00Z

func sshEvent() *audit.Event {
	return &audit.Event{
		Kind:      audit.KindSSHEvent,
		UUID:      audit.UUID{Value: "audit:fixed"},
		SessionID: "70e3031f",
		Who: &audit.User{
			Name:    "admin",
			Path:    audit.AccessPathSSHCommand,
			Account: 1000000,
		},
		What:        "LOGOUT",
		Params:      audit.Params{},
		Result:      "0",
		When:        1548243866665,
		TimeAtStart: 1548243866665,
	}
}

func httpEvent(kind audit.Kind, user string, path audit.AccessPath) *audit.Event {
	return &audit.Event{
		Kind:        kind,
		UUID:        audit.UUID{Value: "audit:http"},
		SessionID:   audit.UnknownSessionID,
		Who:         &audit.User{Name: user, Path: path},
		What:        "/changes/?q=status:open",
		Params:      audit.Params{"q": {"status:open"}},
		Result:      200,
		When:        midnight,
		TimeAtStart: midnight,
		HTTP:        &audit.HTTPData{Method: "GET", Status: 200},
	}
}

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		format  string
		want    any
		wantErr bool
	}{
		{name: "when format is empty", format: "", want: &CSV{}},
		{name: "when format is csv", format: FormatCSV, want: &CSV{}},
		{name: "when format is json", format: FormatJSON, want: &JSON{}},
		{name: "when format is unknown", format: "xml", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := New(tt.format, time.UTC)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrUnknownFormat)
				assert.ErrorIs(t, err, apperrors.InvalidArgument)
				return
			}
			require.NoError(t, err)
			assert.IsType(t, tt.want, r)
		})
	}
}

func TestRenderNilEvent(t *testing.T) {
	for _, r := range []Renderer{NewCSV(), NewJSON()} {
		out, err := r.Render(nil)
		assert.Empty(t, out)
		assert.ErrorIs(t, err, apperrors.Render)
	}
}
