package normalize

import (
	"strings"

	"github.com/cyra/logaudit/internal/audit"
)

// ClassifyHTTP derives the access path from a captured user agent: git
// clients ("git/1.8.3.1") use the git protocol, everything else is treated
// as a REST API client.
func ClassifyHTTP(userAgent string) audit.AccessPath {
	ua := strings.TrimPrefix(userAgent, `"`)
	if strings.HasPrefix(ua, "git") {
		return audit.AccessPathGit
	}
	return audit.AccessPathRESTAPI
}

// ClassifySSH returns the access path of every sshd_log record.
func ClassifySSH() audit.AccessPath {
	return audit.AccessPathSSHCommand
}
