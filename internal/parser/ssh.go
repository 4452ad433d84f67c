package parser

import (
	"regexp"
)

// DefaultResultCode is reported for sshd_log lines that carry no result,
// such as LOGIN, LOGOUT and AUTH FAILURE.
const DefaultResultCode = "0"

// sshd_log examples:
// [2019-01-23 12:44:26,665 +0100] 70e3031f admin a/1000000 LOGOUT
// [2019-01-01 00:00:05,613 +0000] e126989b spdk-bot a/1011203 LOGIN FROM 172.19.0.1
// [2018-09-03 18:14:43,831 +0000] f540bf46 - AUTH FAILURE FROM 172.19.0.1 user-not-found
// [2019-01-20 00:20:24,277 +0000] e4e82e5e spdk-bot a/1011203 gerrit.query.--format.json status:open 1ms 1ms 0
// [2018-09-22 15:44:30,539 +0000] ce2a2263 vogella-jenkins a/1012807 gerrit.review.426428,1.--message.Build Failed
var (
	sshAuthRe = regexp.MustCompile(`^\[(?P<timestamp>[^\]]+)\]\s(?P<session>\S+)\s(?P<user>\S+)\s(?P<accountId>\S+)\s` +
		`(?P<command>LOGIN|LOGOUT)(?:\sFROM\s(?P<from>\S+))?$`)
	sshAuthFailureRe = regexp.MustCompile(`^\[(?P<timestamp>[^\]]+)\]\s(?P<session>\S+)\s(?P<user>-)\s` +
		`(?P<command>AUTH FAILURE)\sFROM\s(?P<from>\S+)(?:\s(?P<reason>.*))?$`)
	sshTimedRe = regexp.MustCompile(`^\[(?P<timestamp>[^\]]+)\]\s(?P<session>\S+)\s(?P<user>\S+)\s(?P<accountId>\S+)\s` +
		`(?P<command>.+)\s(?P<waitTime>\d+ms)\s(?P<execTime>\d+ms)\s(?P<resultCode>\S+)$`)
	sshUntimedRe = regexp.MustCompile(`^\[(?P<timestamp>[^\]]+)\]\s(?P<session>\S+)\s(?P<user>\S+)\s(?P<accountId>\S+)\s` +
		`(?P<command>.+)$`)
)

// grammars are tried in order; the first match wins.
var sshGrammars = []*regexp.Regexp{sshAuthRe, sshAuthFailureRe, sshTimedRe, sshUntimedRe}

// SSHRecord holds the fields of one sshd_log line. WaitTime and ExecTime are
// empty for lines without timing.
type SSHRecord struct {
	Timestamp  string
	SessionID  string
	User       string
	AccountID  string
	Command    string
	WaitTime   string
	ExecTime   string
	ResultCode string

	// RemoteAddr is the client address of LOGIN and AUTH FAILURE lines.
	RemoteAddr string
	// Reason is the trailing AUTH FAILURE explanation, e.g. "user-not-found".
	Reason string
}

func (*SSHRecord) Source() string { return SourceSSH }

// Timed reports whether the line carried wait/exec times and a result code.
func (r *SSHRecord) Timed() bool {
	return r.ExecTime != ""
}

// ParseSSH extracts an SSHRecord from a line using the first grammar that matches.
func ParseSSH(line string) (*SSHRecord, error) {
	for _, re := range sshGrammars {
		m := re.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		rec := &SSHRecord{ResultCode: DefaultResultCode}
		for i, name := range re.SubexpNames() {
			if name == "" || m[i] == "" {
				continue
			}
			switch name {
			case "timestamp":
				rec.Timestamp = m[i]
			case "session":
				rec.SessionID = m[i]
			case "user":
				rec.User = m[i]
			case "accountId":
				rec.AccountID = m[i]
			case "command":
				rec.Command = m[i]
			case "waitTime":
				rec.WaitTime = m[i]
			case "execTime":
				rec.ExecTime = m[i]
			case "resultCode":
				rec.ResultCode = m[i]
			case "from":
				rec.RemoteAddr = m[i]
			case "reason":
				rec.Reason = m[i]
			}
		}
		return rec, nil
	}
	return nil, noMatch(SourceSSH, line)
}
