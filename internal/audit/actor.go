package audit

import "fmt"

// AccessPath classifies how an actor reached the server.
type AccessPath string

const (
	AccessPathUnknown    AccessPath = "UNKNOWN"
	AccessPathGit        AccessPath = "GIT"
	AccessPathRESTAPI    AccessPath = "REST_API"
	AccessPathSSHCommand AccessPath = "SSH_COMMAND"
)

func (p AccessPath) String() string { return string(p) }

// Actor is the capability set renderers need from whoever performed an action.
type Actor interface {
	Tagged
	UserName() string
	AccessPath() AccessPath
	IsIdentified() bool
	IsAnonymous() bool
	AccountID() (int, bool)
}

// User is the actor reconstructed from a log record.
type User struct {
	Name string
	Path AccessPath
	// Account is the numeric account id; zero means the user is not identified.
	Account int
	// DisplayName is the server-side label for anonymous users. It is internal
	// and never rendered.
	DisplayName string
}

var _ Actor = (*User)(nil)

// FormatKind implements Tagged.
func (u *User) FormatKind() Kind { return KindUser }

func (u *User) UserName() string { return u.Name }

func (u *User) AccessPath() AccessPath {
	if u.Path == "" {
		return AccessPathUnknown
	}
	return u.Path
}

func (u *User) IsIdentified() bool { return u.Account > 0 }

// IsAnonymous reports whether the log carried no user at all ("-" or empty).
func (u *User) IsAnonymous() bool {
	return !u.IsIdentified() && (u.Name == "" || u.Name == "-")
}

func (u *User) AccountID() (int, bool) {
	return u.Account, u.IsIdentified()
}

func (u *User) String() string {
	if id, ok := u.AccountID(); ok {
		return fmt.Sprintf("AuditUser[%s, account %d]", u.Name, id)
	}
	return fmt.Sprintf("AuditUser[%s]", u.Name)
}
