package render

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/cyra/logaudit/internal/apperrors"
	"github.com/cyra/logaudit/internal/audit"
)

// JSON renders events as a {"type": ..., "event": {...}} object. Only the
// fields listed in jsonEvent are written, and the free-form Result and Input
// values are kept only when their type is on the allow-list.
type JSON struct{}

// NewJSON creates a JSON renderer.
func NewJSON() *JSON {
	return &JSON{}
}

type jsonRecord struct {
	Type  string    `json:"type"`
	Event jsonEvent `json:"event"`
}

type jsonEvent struct {
	HTTPMethod  string              `json:"http_method,omitempty"`
	HTTPStatus  int                 `json:"http_status,omitempty"`
	Input       any                 `json:"input,omitempty"`
	UUID        jsonUUID            `json:"uuid"`
	SessionID   string              `json:"session_id"`
	Who         *jsonActor          `json:"who,omitempty"`
	When        int64               `json:"when"`
	What        string              `json:"what"`
	Params      map[string][]string `json:"params,omitempty"`
	Result      any                 `json:"result,omitempty"`
	TimeAtStart int64               `json:"time_at_start"`
	Elapsed     int64               `json:"elapsed"`
}

type jsonUUID struct {
	UUID string `json:"uuid"`
}

// jsonActor is the only shape an actor is ever written in. DisplayName is
// never written.
type jsonActor struct {
	AccessPath     audit.AccessPath `json:"access_path"`
	Name           string           `json:"name"`
	InternalUser   bool             `json:"internal_user"`
	IdentifiedUser bool             `json:"identified_user"`
	Impersonating  bool             `json:"impersonating"`
	AccountID      *int             `json:"account_id,omitempty"`
}

func (j *JSON) Render(ev *audit.Event) (string, error) {
	return safely(ev, func() (string, error) {
		return j.encode(ev, ev.FormatKind())
	})
}

func (j *JSON) RenderAs(ev *audit.Event, kind audit.Kind) (string, error) {
	return safely(ev, func() (string, error) {
		return j.encode(ev, kind)
	})
}

// Headers reports no header line.
func (j *JSON) Headers() (string, bool) {
	return "", false
}

func (j *JSON) encode(ev *audit.Event, kind audit.Kind) (string, error) {
	rec := jsonRecord{
		Type: kind.String(),
		Event: jsonEvent{
			UUID:        jsonUUID{UUID: ev.UUID.String()},
			SessionID:   ev.SessionID,
			Who:         projectActor(ev.Who),
			When:        ev.When,
			What:        ev.What,
			Result:      allowed(ev.Result),
			TimeAtStart: ev.TimeAtStart,
			Elapsed:     ev.Elapsed,
		},
	}
	if len(ev.Params) > 0 {
		rec.Event.Params = ev.Params
	}
	if ev.HTTP != nil {
		rec.Event.HTTPMethod = ev.HTTP.Method
		rec.Event.HTTPStatus = ev.HTTP.Status
		rec.Event.Input = allowed(ev.HTTP.Input)
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(rec); err != nil {
		return "", apperrors.NewRender("encoding event "+ev.UUID.String(), err)
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}

func projectActor(actor audit.Actor) *jsonActor {
	if isNil(actor) {
		return nil
	}
	out := &jsonActor{
		AccessPath:     actor.AccessPath(),
		Name:           actor.UserName(),
		IdentifiedUser: actor.IsIdentified(),
	}
	if id, ok := actor.AccountID(); ok {
		out.AccountID = &id
	}
	return out
}

// allowed returns v when its type may be serialized and nil otherwise.
// Scalars and audit domain values pass; anything else is dropped.
func allowed(v any) any {
	switch t := v.(type) {
	case nil:
		return nil
	case string, int, int32, int64, bool, audit.AccessPath:
		return t
	case audit.Actor:
		if isNil(t) {
			return nil
		}
		return projectActor(t)
	case audit.UUID:
		return jsonUUID{UUID: t.String()}
	default:
		return nil
	}
}
